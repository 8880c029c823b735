package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/glassline/internal/entry"
)

// DateLayouts are accepted for the date prompt, in order.
var DateLayouts = []string{"2006-01-02", "02-01-2006", "02/01/2006"}

// Form asks for the fields of a new rejection entry on the terminal.
type Form struct {
	reader *LineReader
	writer io.Writer
	now    func() time.Time
}

// NewForm creates a form reading answers from in and writing prompts to out.
func NewForm(in io.Reader, out io.Writer) *Form {
	return &Form{reader: NewLineReader(in), writer: out, now: time.Now}
}

// Fill prompts for every field, showing the current value of in as the default.
// An empty answer keeps the default. Date and qty are asked again until they parse.
func (f *Form) Fill(ctx context.Context, in entry.Input) (entry.Input, error) {
	if in.Date.IsZero() {
		in.Date = f.now()
	}
	if in.Qty == 0 {
		in.Qty = 1
	}

	date, err := f.askDate(ctx, in.Date)
	if err != nil {
		return in, err
	}
	in.Date = date

	text := []struct {
		label string
		dst   *string
	}{
		{"Size", &in.Size},
		{"Thickness", &in.Thickness},
		{"Type", &in.GlassType},
		{"Reason", &in.Reason},
	}
	for _, field := range text {
		if *field.dst, err = f.ask(ctx, field.label, *field.dst); err != nil {
			return in, err
		}
	}

	if in.Qty, err = f.askQty(ctx, in.Qty); err != nil {
		return in, err
	}

	text = []struct {
		label string
		dst   *string
	}{
		{"Vendor", &in.Vendor},
		{"SO", &in.SO},
		{"Dept.", &in.Dept},
	}
	for _, field := range text {
		if *field.dst, err = f.ask(ctx, field.label, *field.dst); err != nil {
			return in, err
		}
	}

	return in, nil
}

func (f *Form) ask(ctx context.Context, label, current string) (string, error) {
	prompt := label
	if current != "" {
		prompt = fmt.Sprintf("%s [%s]", label, current)
	}
	fmt.Fprint(f.writer, FormatPrompt(prompt))

	answer, err := f.reader.ReadLine(ctx)
	if err != nil {
		return current, err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func (f *Form) askDate(ctx context.Context, current time.Time) (time.Time, error) {
	for {
		answer, err := f.ask(ctx, "Date", current.Format(DateLayouts[0]))
		if err != nil {
			return current, err
		}
		if date, ok := ParseFormDate(answer); ok {
			return date, nil
		}
		fmt.Fprintln(f.writer, FormatWarning("Use a date like "+DateLayouts[0]))
	}
}

func (f *Form) askQty(ctx context.Context, current int) (int, error) {
	for {
		answer, err := f.ask(ctx, "Qty", strconv.Itoa(current))
		if err != nil {
			return current, err
		}
		if n, convErr := strconv.Atoi(answer); convErr == nil && n >= 1 {
			return n, nil
		}
		fmt.Fprintln(f.writer, FormatWarning("Qty must be a whole number of at least 1"))
	}
}

// ParseFormDate parses a date typed by the user in any of DateLayouts.
func ParseFormDate(s string) (time.Time, bool) {
	for _, layout := range DateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
