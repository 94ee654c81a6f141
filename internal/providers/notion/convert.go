package notion

import (
	"github.com/jomei/notionapi"

	"canvas-notion-sync/internal/domain"
)

func richText(content, link string) []notionapi.RichText {
	r := []rune(content)
	if len(r) > maxRichTextLen {
		content = string(r[:maxRichTextLen])
	}
	text := &notionapi.Text{Content: content}
	if link != "" {
		text.Link = &notionapi.Link{Url: link}
	}
	return []notionapi.RichText{{Type: notionapi.ObjectTypeText, Text: text}}
}

func toProperties(props domain.Properties) notionapi.Properties {
	out := make(notionapi.Properties, len(props))
	for name, v := range props {
		switch v.Kind {
		case domain.PropTitle:
			out[name] = notionapi.TitleProperty{Type: notionapi.PropertyTypeTitle, Title: richText(v.Text, "")}
		case domain.PropRichText:
			out[name] = notionapi.RichTextProperty{Type: notionapi.PropertyTypeRichText, RichText: richText(v.Text, "")}
		case domain.PropURL:
			out[name] = notionapi.URLProperty{Type: notionapi.PropertyTypeURL, URL: v.Text}
		case domain.PropNumber:
			out[name] = notionapi.NumberProperty{Type: notionapi.PropertyTypeNumber, Number: v.Number}
		case domain.PropDate:
			start := notionapi.Date(v.Date)
			out[name] = notionapi.DateProperty{Type: notionapi.PropertyTypeDate, Date: &notionapi.DateObject{Start: &start}}
		}
	}
	return out
}

func toBlocks(blocks []domain.Block) []notionapi.Block {
	out := make([]notionapi.Block, 0, len(blocks))
	for _, b := range blocks {
		switch b.Kind {
		case domain.BlockHeading:
			out = append(out, notionapi.Heading2Block{
				BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeHeading2},
				Heading2:   notionapi.Heading{RichText: richText(b.Text, b.Link)},
			})
		default:
			out = append(out, notionapi.BulletedListItemBlock{
				BasicBlock:       notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeBulletedListItem},
				BulletedListItem: notionapi.ListItem{RichText: richText(b.Text, b.Link)},
			})
		}
	}
	return out
}

func toFilter(f domain.Filter) notionapi.PropertyFilter {
	cond := &notionapi.TextFilterCondition{Equals: f.Equals}
	if f.Kind == domain.PropTitle {
		return notionapi.PropertyFilter{Property: f.Property, Title: cond}
	}
	return notionapi.PropertyFilter{Property: f.Property, RichText: cond}
}
