package stats

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders counts as locale-grouped integers, e.g. 1234567 as
// "1,234,567" for English.
type Formatter struct {
	printer *message.Printer
}

func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

func (f *Formatter) FormatInt(v int64) string {
	return f.printer.Sprintf("%d", v)
}
