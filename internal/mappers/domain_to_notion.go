package mappers

import (
	"canvas-notion-sync/internal/config"
	"canvas-notion-sync/internal/domain"
)

// ToNotionProperties maps a record onto the configured database columns.
// URL, points and due date are only written when present, so an update never
// blanks a column Canvas stopped sending. A due value no layout can parse is
// left out of the date column; the record itself is still written.
func ToNotionProperties(r domain.AssignmentRecord, f config.FieldNames) domain.Properties {
	props := domain.Properties{
		f.Title:    domain.TitleValue(r.Name),
		f.Course:   domain.RichTextValue(r.Course),
		f.Identity: domain.RichTextValue(r.ID),
		f.Status:   domain.RichTextValue(r.Status()),
	}
	if r.URL != "" {
		props[f.URL] = domain.URLValue(r.URL)
	}
	if r.Points != nil {
		props[f.Points] = domain.NumberValue(*r.Points)
	}
	if due, ok := r.Due(); ok {
		props[f.Due] = domain.DateValue(due)
	}
	return props
}

// IdentityFilter looks a record up by its Canvas ID.
func IdentityFilter(id string, f config.FieldNames) domain.Filter {
	return domain.Filter{Property: f.Identity, Kind: domain.PropRichText, Equals: id}
}

// TitleFilter looks a page up by its title column.
func TitleFilter(title string, f config.FieldNames) domain.Filter {
	return domain.Filter{Property: f.Title, Kind: domain.PropTitle, Equals: title}
}
