package presentation

import (
	"sort"

	"github.com/viralforge/mesh/services/education/M120-school-profile-service/internal/domain"
)

type CommunicationView struct {
	Messages   []domain.Message `json:"messages"`
	Unread     int              `json:"unread"`
	CanCompose bool             `json:"canCompose"`
}

type DocumentsView struct {
	Documents  []domain.Document `json:"documents"`
	Categories []string          `json:"categories"`
	CanUpload  bool              `json:"canUpload"`
}

func communicationTab(p domain.Profile, ctx tabContext) any {
	var messages []domain.Message
	switch {
	case p.Student != nil:
		messages = p.Student.Messages
	case p.Teacher != nil:
		messages = p.Teacher.Messages
	case p.Parent != nil:
		messages = p.Parent.Messages
	case p.Staff != nil:
		messages = p.Staff.Messages
	}
	out := append([]domain.Message{}, messages...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SentAt.After(out[j].SentAt) })
	return CommunicationView{
		Messages:   out,
		Unread:     countUnread(out),
		CanCompose: ctx.isOwner || ctx.opts.Permissions.CanMessage,
	}
}

func documentsTab(p domain.Profile, ctx tabContext) any {
	var docs []domain.Document
	switch {
	case p.Student != nil:
		docs = p.Student.Documents
	case p.Teacher != nil:
		docs = p.Teacher.Documents
	case p.Parent != nil:
		docs = p.Parent.Documents
	case p.Staff != nil:
		docs = p.Staff.Documents
	}
	out := append([]domain.Document{}, docs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	categories := make([]string, 0, len(out))
	for _, d := range out {
		categories = append(categories, d.Category)
	}
	return DocumentsView{
		Documents:  out,
		Categories: uniqueSorted(categories),
		CanUpload:  ctx.isOwner,
	}
}
