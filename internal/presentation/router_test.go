package presentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

func TestDispatchRoutesEveryKnownRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		role     string
		composer domain.ProfileType
		elevated bool
	}{
		{role: "STUDENT", composer: domain.ProfileTypeStudent},
		{role: "TEACHER", composer: domain.ProfileTypeTeacher},
		{role: "GUARDIAN", composer: domain.ProfileTypeParent},
		{role: "STAFF", composer: domain.ProfileTypeStaff},
		{role: "ACCOUNTANT", composer: domain.ProfileTypeStaff},
		{role: "ADMIN", composer: domain.ProfileTypeStaff, elevated: true},
		{role: "DEVELOPER", composer: domain.ProfileTypeStaff, elevated: true},
		{role: " teacher ", composer: domain.ProfileTypeTeacher},
	}
	for _, tc := range cases {
		route := Dispatch(&Session{UserID: "u-1", Role: tc.role}, true)
		assert.Equal(t, StateReady, route.State, tc.role)
		assert.Equal(t, tc.composer, route.Composer, tc.role)
		assert.Equal(t, tc.elevated, route.Elevated, tc.role)
	}
}

func TestDispatchFallsBackToSetupRequired(t *testing.T) {
	t.Parallel()

	for _, role := range []string{"USER", "", "PRINCIPAL"} {
		route := Dispatch(&Session{UserID: "u-1", Role: role}, true)
		assert.Equal(t, StateSetupRequired, route.State, role)
		assert.Empty(t, route.Composer, role)
	}
}

func TestDispatchStateOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, StateLoading, Dispatch(nil, false).State)
	assert.Equal(t, StateLoading, Dispatch(&Session{UserID: "u-1", Role: "STUDENT"}, false).State)
	assert.Equal(t, StateUnauthenticated, Dispatch(nil, true).State)
	assert.Equal(t, StateUnauthenticated, Dispatch(&Session{Role: "STUDENT"}, true).State)
}

func TestLoadingPageUsesDictionary(t *testing.T) {
	t.Parallel()

	assert.False(t, Dictionary{}.Ready())
	dict, ok := LookupDictionary("fr")
	require.True(t, ok)
	require.True(t, dict.Ready())

	page := LoadingPage(dict)
	assert.Equal(t, StateLoading, page.State)
	assert.Equal(t, "fr", page.Lang)
	require.NotNil(t, page.Panel)
	assert.Equal(t, "Chargement du profil", page.Panel.Title)
}

func TestSetupRequiredPageCarriesDiagnostics(t *testing.T) {
	t.Parallel()

	dict, ok := LookupDictionary("en")
	require.True(t, ok)
	page := SetupRequiredPage(dict, Session{UserID: "u-9", Email: "x@school.test", Role: "USER"})
	require.NotNil(t, page.Panel)
	assert.Equal(t, StateSetupRequired, page.State)
	assert.Equal(t, map[string]string{"id": "u-9", "email": "x@school.test", "role": "USER"}, page.Panel.Diagnostics)
}

func TestLookupDictionary(t *testing.T) {
	t.Parallel()

	dict, ok := LookupDictionary("fr-CA")
	require.True(t, ok)
	assert.Equal(t, "fr", dict.Lang)
	assert.Equal(t, "Paramètres", dict.T("tab.settings"))

	ar, ok := LookupDictionary("ar")
	require.True(t, ok)
	assert.Equal(t, "rtl", ar.Dir)

	_, ok = LookupDictionary("xx")
	assert.False(t, ok)

	assert.Equal(t, "missing.key", dict.T("missing.key"))
}
