package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"llm-investment-agent/internal/types"
)

const title = "Investment Agent Recommendations"

// Entry pairs a tracked company with the recommendation produced for it.
type Entry struct {
	Company        types.Company
	Recommendation types.Recommendation
}

// CycleStarted prints the cycle start line.
func CycleStarted(w io.Writer, at time.Time) error {
	_, err := fmt.Fprintf(w, "\n--- Running Investment Agent Analysis Cycle (%s) ---\n", at.Format(time.DateTime))
	return err
}

// CycleCompleted prints the cycle completion line.
func CycleCompleted(w io.Writer) error {
	_, err := fmt.Fprint(w, "\n--- Analysis Cycle Completed ---\n")
	return err
}

// Write prints the recommendations banner followed by one block per entry,
// in the order given.
func Write(w io.Writer, entries []Entry) error {
	var b strings.Builder

	rule := strings.Repeat("=", 70)
	b.WriteString("\n" + rule + "\n")
	b.WriteString(center(title, 70) + "\n")
	b.WriteString(rule + "\n")

	for _, e := range entries {
		rec := e.Recommendation
		fmt.Fprintf(&b, "\nCompany: %s (%s)\n", e.Company.Name, rec.Symbol)
		fmt.Fprintf(&b, "Recommendation: %s\n", rec.Action)
		fmt.Fprintf(&b, "Justification: %s\n", rec.Justification)
		fmt.Fprintf(&b, "Risks: %s\n", strings.Join(rec.Risks, ", "))
		b.WriteString(strings.Repeat("-", 60) + "\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func center(s string, width int) string {
	pad := width - len(s)
	if pad <= 0 {
		return s
	}
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}
