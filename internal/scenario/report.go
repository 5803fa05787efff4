package scenario

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
)

// WriteReport prints a per-case summary of res to w
func WriteReport(w io.Writer, res Result, colored bool) error {
	pass := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	skip := color.New(color.FgYellow)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{pass, fail, skip, dim} {
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	if _, err := fmt.Fprintf(w, "run %s against %s\n", res.RunID, res.BaseURL); err != nil {
		return err
	}

	for _, c := range res.Cases {
		var label string
		switch c.Status {
		case StatusPassed:
			label = pass.Sprint("PASS")
		case StatusFailed:
			label = fail.Sprint("FAIL")
		default:
			label = skip.Sprint("SKIP")
		}
		if _, err := fmt.Fprintf(w, "  %s  %s  %s %s\n",
			label, c.Name, c.DisplayName, dim.Sprintf("(%s)", c.Duration.Round(time.Millisecond))); err != nil {
			return err
		}
		if c.Status == StatusPassed {
			continue
		}

		detail := c.Message
		if c.Step != "" {
			detail = fmt.Sprintf("%s [%s]: %s", c.Step, c.Kind, c.Message)
		}
		if _, err := fmt.Fprintf(w, "        %s\n", detail); err != nil {
			return err
		}
	}

	passed, failed, skipped := res.Counts()
	_, err := fmt.Fprintf(w, "%d passed, %d failed, %d skipped; final state %s in %s\n",
		passed, failed, skipped, res.FinalState, res.Duration.Round(time.Millisecond))
	return err
}
