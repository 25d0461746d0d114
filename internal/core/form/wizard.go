package form

import (
	"errors"
	"fmt"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
)

var (
	// ErrStepNotSkippable is returned by Skip on a mandatory step.
	ErrStepNotSkippable = errors.New("step cannot be skipped")
	// ErrNoSteps is returned by NewWizard for an empty step table.
	ErrNoSteps = errors.New("wizard needs at least one step")
)

// StepID names a wizard step.
type StepID string

// Step is one page of a category wizard.
type Step struct {
	ID        StepID
	Title     string
	Skippable bool
}

var (
	TravelSteps = []Step{
		{ID: "basics", Title: "Basic information"},
		{ID: "trip", Title: "Trip details"},
		{ID: "costs", Title: "Cost breakdown", Skippable: true},
		{ID: "purpose", Title: "Business purpose"},
		{ID: "review", Title: "Review and submit"},
	}
	MaintenanceSteps = []Step{
		{ID: "basics", Title: "Basic information"},
		{ID: "service", Title: "Service category"},
		{ID: "vendor", Title: "Vendor and invoice"},
		{ID: "assets", Title: "Asset and vehicle", Skippable: true},
		{ID: "purpose", Title: "Business purpose"},
		{ID: "review", Title: "Review and submit"},
	}
	RequisitionSteps = []Step{
		{ID: "basics", Title: "Basic information"},
		{ID: "service", Title: "Service request"},
		{ID: "schedule", Title: "Schedule and urgency"},
		{ID: "pricing", Title: "Quantity and pricing"},
		{ID: "vendor", Title: "Preferred vendor", Skippable: true},
		{ID: "purpose", Title: "Business purpose"},
		{ID: "review", Title: "Review and submit"},
	}
)

// StepsFor returns the step table of an expense type.
func StepsFor(t domain.ExpenseType) ([]Step, error) {
	switch t {
	case domain.TypeTravel:
		return TravelSteps, nil
	case domain.TypeMaintenance:
		return MaintenanceSteps, nil
	case domain.TypeRequisition:
		return RequisitionSteps, nil
	default:
		return nil, fmt.Errorf("steps for %q: %w", t, apperrors.ErrUnknownExpenseType)
	}
}

// Wizard tracks the active, completed and skipped steps of one category flow.
// It is owned by a single UI loop and is not safe for concurrent use.
type Wizard struct {
	steps     []Step
	active    int
	completed map[int]bool
	skipped   map[int]bool
}

// NewWizard starts at the first of steps. An empty table is rejected.
func NewWizard(steps []Step) (*Wizard, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	return &Wizard{
		steps:     steps,
		completed: map[int]bool{},
		skipped:   map[int]bool{},
	}, nil
}

func (w *Wizard) Steps() []Step    { return w.steps }
func (w *Wizard) Active() int      { return w.active }
func (w *Wizard) ActiveStep() Step { return w.steps[w.active] }

// IsFinal reports whether the active step is the last one.
func (w *Wizard) IsFinal() bool { return w.active == len(w.steps)-1 }

func (w *Wizard) IsCompleted(i int) bool { return w.completed[i] }
func (w *Wizard) IsSkipped(i int) bool   { return w.skipped[i] }

// Complete marks the active step done and advances by one unless it is final.
func (w *Wizard) Complete() {
	w.completed[w.active] = true
	delete(w.skipped, w.active)
	if !w.IsFinal() {
		w.active++
	}
}

// Skip passes over an optional active step.
func (w *Wizard) Skip() error {
	step := w.ActiveStep()
	if !step.Skippable {
		return fmt.Errorf("%s: %w", step.ID, ErrStepNotSkippable)
	}
	w.skipped[w.active] = true
	delete(w.completed, w.active)
	if !w.IsFinal() {
		w.active++
	}
	return nil
}

// Back moves to the previous step, if any.
func (w *Wizard) Back() {
	if w.active > 0 {
		w.active--
	}
}

// GoTo jumps to step i. Forward jumps are limited to steps already reached.
func (w *Wizard) GoTo(i int) error {
	if i < 0 || i >= len(w.steps) {
		return fmt.Errorf("step %d out of range", i)
	}
	if i > w.active && !w.reached(i) {
		return fmt.Errorf("step %d not reached yet", i)
	}
	w.active = i
	return nil
}

// reached reports whether every step before i is completed or skipped.
func (w *Wizard) reached(i int) bool {
	for j := 0; j < i; j++ {
		if !w.completed[j] && !w.skipped[j] {
			return false
		}
	}
	return true
}
