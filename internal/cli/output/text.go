package output

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Field is one labelled line of text output.
type Field struct {
	Label string
	Value any
}

// Fields renders as aligned "label: value" lines.
type Fields []Field

// TextFormatter formats data for a terminal.
type TextFormatter struct{}

// Format writes Fields as aligned lines and anything else with %v.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	fields, ok := data.(Fields)
	if !ok {
		_, err := fmt.Fprintf(w, "%v\n", data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	for _, field := range fields {
		fmt.Fprintf(tw, "%s:\t%v\n", field.Label, field.Value)
	}
	return tw.Flush()
}
