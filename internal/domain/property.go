package domain

import "time"

// PropertyKind selects how a value is written to a Notion database property.
type PropertyKind int

const (
	PropTitle PropertyKind = iota
	PropRichText
	PropURL
	PropNumber
	PropDate
)

// PropertyValue is a destination-neutral property value.
type PropertyValue struct {
	Kind   PropertyKind
	Text   string
	Number float64
	Date   time.Time
}

// Properties maps destination property names to values.
type Properties map[string]PropertyValue

func TitleValue(s string) PropertyValue { return PropertyValue{Kind: PropTitle, Text: s} }
func RichTextValue(s string) PropertyValue { return PropertyValue{Kind: PropRichText, Text: s} }
func URLValue(s string) PropertyValue { return PropertyValue{Kind: PropURL, Text: s} }
func NumberValue(f float64) PropertyValue { return PropertyValue{Kind: PropNumber, Number: f} }
func DateValue(t time.Time) PropertyValue { return PropertyValue{Kind: PropDate, Date: t} }

// Filter is an equality lookup on a title or rich-text property.
type Filter struct {
	Property string
	Kind     PropertyKind
	Equals   string
}
