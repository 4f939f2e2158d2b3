package presentation

import "strings"

const DefaultLanguage = "en"

// Dictionary holds the labels of one language.
type Dictionary struct {
	Lang   string
	Dir    string
	labels map[string]string
}

// T returns the label for key, or key itself when the dictionary has none.
func (d Dictionary) T(key string) string {
	if v, ok := d.labels[key]; ok {
		return v
	}
	if v, ok := dictionaries[DefaultLanguage].labels[key]; ok {
		return v
	}
	return key
}

// Ready reports whether the dictionary has labels to render with.
func (d Dictionary) Ready() bool {
	return len(d.labels) > 0
}

// LookupDictionary returns the dictionary for lang. An empty lang selects
// the default language; an unsupported one reports false.
func LookupDictionary(lang string) (Dictionary, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		lang = DefaultLanguage
	}
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	d, ok := dictionaries[lang]
	return d, ok
}

// Languages lists the supported language codes.
func Languages() []string {
	return []string{"en", "fr", "ar"}
}

var dictionaries = map[string]Dictionary{
	"en": {Lang: "en", Dir: "ltr", labels: map[string]string{
		"tab.overview":            "Overview",
		"tab.academic":            "Academic",
		"tab.payments":            "Payments",
		"tab.communication":       "Messages",
		"tab.documents":           "Documents",
		"tab.tasks":               "Tasks",
		"tab.reports":             "Reports",
		"tab.schedule":            "Schedule",
		"tab.settings":            "Settings",
		"panel.loading":           "Loading profile",
		"panel.unauthenticated":   "Sign in required",
		"panel.unauthenticated.m": "Sign in to view this profile.",
		"panel.setup":             "Profile setup required",
		"panel.setup.m":           "Your account does not have a school role yet. Contact an administrator.",
		"panel.error":             "Failed to load profile",
		"panel.unconfigured":      "Profile not configured",
		"panel.unconfigured.m":    "This profile has no details for its role yet.",
		"timeline.today":          "Today",
		"timeline.yesterday":      "Yesterday",
		"hl.gpa":                  "GPA",
		"hl.attendance":           "Attendance",
		"hl.pending_assignments":  "Pending assignments",
		"hl.outstanding_fees":     "Outstanding fees",
		"hl.classes":              "Classes",
		"hl.students":             "Students",
		"hl.average_class_score":  "Average class score",
		"hl.open_tasks":           "Open tasks",
		"hl.children":             "Children",
		"hl.average_gpa":          "Average GPA",
		"hl.payment_progress":     "Payment progress",
		"hl.tasks_completed":      "Tasks completed",
		"hl.tasks_pending":        "Tasks pending",
		"hl.efficiency":           "Efficiency",
		"hl.hours_this_month":     "Hours this month",
		"hl.student_number":       "Student number",
		"hl.achievements":         "Achievements",
		"hl.employee_id":          "Employee ID",
		"hl.experience":           "Experience",
		"hl.subjects":             "Subjects",
		"hl.responsibilities":     "Responsibilities",
		"unit.class.one":          "class",
		"unit.class.many":         "classes",
		"unit.child.one":          "child",
		"unit.child.many":         "children",
		"unit.year.one":           "year",
		"unit.year.many":          "years",
	}},
	"fr": {Lang: "fr", Dir: "ltr", labels: map[string]string{
		"tab.overview":            "Aperçu",
		"tab.academic":            "Scolarité",
		"tab.payments":            "Paiements",
		"tab.communication":       "Messages",
		"tab.documents":           "Documents",
		"tab.tasks":               "Tâches",
		"tab.reports":             "Rapports",
		"tab.schedule":            "Emploi du temps",
		"tab.settings":            "Paramètres",
		"panel.loading":           "Chargement du profil",
		"panel.unauthenticated":   "Connexion requise",
		"panel.unauthenticated.m": "Connectez-vous pour voir ce profil.",
		"panel.setup":             "Configuration du profil requise",
		"panel.setup.m":           "Votre compte n'a pas encore de rôle scolaire. Contactez un administrateur.",
		"panel.error":             "Échec du chargement du profil",
		"panel.unconfigured":      "Profil non configuré",
		"panel.unconfigured.m":    "Ce profil n'a pas encore de détails pour son rôle.",
		"timeline.today":          "Aujourd'hui",
		"timeline.yesterday":      "Hier",
		"hl.gpa":                  "Moyenne",
		"hl.attendance":           "Assiduité",
		"hl.pending_assignments":  "Devoirs à rendre",
		"hl.outstanding_fees":     "Frais impayés",
		"hl.classes":              "Classes",
		"hl.students":             "Élèves",
		"hl.average_class_score":  "Moyenne des classes",
		"hl.open_tasks":           "Tâches ouvertes",
		"hl.children":             "Enfants",
		"hl.average_gpa":          "Moyenne générale",
		"hl.payment_progress":     "Avancement des paiements",
		"hl.tasks_completed":      "Tâches terminées",
		"hl.tasks_pending":        "Tâches en attente",
		"hl.efficiency":           "Efficacité",
		"hl.hours_this_month":     "Heures ce mois-ci",
		"hl.student_number":       "Numéro d'élève",
		"hl.achievements":         "Distinctions",
		"hl.employee_id":          "Matricule",
		"hl.experience":           "Expérience",
		"hl.subjects":             "Matières",
		"hl.responsibilities":     "Responsabilités",
		"unit.class.one":          "classe",
		"unit.class.many":         "classes",
		"unit.child.one":          "enfant",
		"unit.child.many":         "enfants",
		"unit.year.one":           "an",
		"unit.year.many":          "ans",
	}},
	"ar": {Lang: "ar", Dir: "rtl", labels: map[string]string{
		"tab.overview":          "نظرة عامة",
		"tab.academic":          "الدراسة",
		"tab.payments":          "المدفوعات",
		"tab.communication":     "الرسائل",
		"tab.documents":         "المستندات",
		"tab.tasks":             "المهام",
		"tab.reports":           "التقارير",
		"tab.schedule":          "الجدول",
		"tab.settings":          "الإعدادات",
		"panel.loading":         "جار تحميل الملف الشخصي",
		"panel.unauthenticated": "تسجيل الدخول مطلوب",
		"panel.setup":           "إعداد الملف الشخصي مطلوب",
		"panel.error":           "تعذر تحميل الملف الشخصي",
		"panel.unconfigured":    "الملف الشخصي غير مكتمل",
		"timeline.today":        "اليوم",
		"timeline.yesterday":    "أمس",
		"hl.gpa":                "المعدل",
		"hl.attendance":         "الحضور",
		"hl.children":           "الأبناء",
		"hl.average_gpa":        "متوسط المعدل",
		"hl.payment_progress":   "تقدم الدفع",
		"hl.classes":            "الفصول",
		"hl.students":           "الطلاب",
		"hl.efficiency":         "الكفاءة",
	}},
}
