package wizard

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/partplan/partplan/internal/plan"
)

// RunReview launches the interactive plan review and returns the number
// of tables whose enabled flag changed. The document is modified in
// place; a cancelled session leaves it untouched.
func RunReview(doc *plan.Document) (int, error) {
	m := NewReviewModel(doc)
	p := tea.NewProgram(m, tea.WithAltScreen())

	final, err := p.Run()
	if err != nil {
		return 0, fmt.Errorf("running plan review: %w", err)
	}

	rm, ok := final.(ReviewModel)
	if !ok {
		return 0, fmt.Errorf("unexpected model type %T", final)
	}
	if rm.Cancelled() {
		return 0, nil
	}
	return rm.ChangedCount(), nil
}
