// Package form holds the client-side expense form state machine and the
// per-category wizard step tracker.
package form

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/validation"
)

// State is an immutable snapshot of the form. Reduce never mutates its input.
type State struct {
	Draft      domain.ExpenseForm
	Step       int
	Dirty      bool
	LastSaved  *time.Time
	Errors     map[string]string
	Generation uint64
	// Epoch changes whenever the draft is replaced by another expense.
	Epoch uint64
}

// NewState returns the empty travel draft.
func NewState() State {
	return State{Draft: domain.NewEmptyForm()}
}

// Action is a state transition request.
type Action interface {
	actionName() string
}

// SetExpense merges Patch (a JSON object of ExpenseForm fields) into the draft.
type SetExpense struct {
	Patch json.RawMessage
}

// SetStep moves the wizard position.
type SetStep struct {
	Step int
}

// MarkSaved clears the dirty flag when Generation is still current. ID is the
// server-assigned id of a first save. It is adopted by a newer generation of the
// same draft but never across a ResetForm or LoadExpense.
type MarkSaved struct {
	At         time.Time
	Generation uint64
	Epoch      uint64
	ID         string
}

// LoadExpense replaces the draft with a persisted form. The result is clean.
type LoadExpense struct {
	Form domain.ExpenseForm
}

// ResetForm restores the empty travel draft.
type ResetForm struct{}

func (SetExpense) actionName() string  { return "set_expense" }
func (SetStep) actionName() string     { return "set_step" }
func (MarkSaved) actionName() string   { return "mark_saved" }
func (LoadExpense) actionName() string { return "load_expense" }
func (ResetForm) actionName() string   { return "reset_form" }

// ActionName returns a stable identifier for logging.
func ActionName(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionName()
}

// PatchOf marshals a field map into a SetExpense action.
func PatchOf(fields map[string]any) (SetExpense, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return SetExpense{}, fmt.Errorf("encode patch: %w", err)
	}
	return SetExpense{Patch: raw}, nil
}

// Reduce applies a to s. Invalid actions leave s unchanged.
func Reduce(s State, a Action) State {
	next, err := Apply(s, a)
	if err != nil {
		return s
	}
	return next
}

// Apply is Reduce with the reason an action was rejected.
func Apply(s State, a Action) (State, error) {
	switch act := a.(type) {
	case SetExpense:
		draft, err := mergePatch(s.Draft, act.Patch)
		if err != nil {
			return s, err
		}
		s.Draft = draft
		s.Dirty = true
		s.Generation++
		s.Errors = validation.Validate(draft).Errors
		return s, nil
	case SetStep:
		if act.Step < 0 {
			return s, fmt.Errorf("step %d out of range", act.Step)
		}
		s.Step = act.Step
		return s, nil
	case MarkSaved:
		if act.Epoch == s.Epoch && s.Draft.ID == "" && act.ID != "" {
			s.Draft.ID = act.ID
		}
		if act.Generation != s.Generation {
			return s, nil
		}
		at := act.At
		s.Dirty = false
		s.LastSaved = &at
		return s, nil
	case LoadExpense:
		s.Draft = cloneForm(act.Form)
		s.Dirty = false
		s.Generation++
		s.Epoch++
		s.Errors = validation.Validate(s.Draft).Errors
		return s, nil
	case ResetForm:
		return State{Draft: domain.NewEmptyForm(), Generation: s.Generation + 1, Epoch: s.Epoch + 1}, nil
	default:
		return s, fmt.Errorf("unknown form action %T", a)
	}
}

func mergePatch(draft domain.ExpenseForm, patch json.RawMessage) (domain.ExpenseForm, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(patch, &fields); err != nil {
		return draft, fmt.Errorf("patch must be a JSON object: %w", err)
	}
	next := cloneForm(draft)
	if err := json.Unmarshal(patch, &next); err != nil {
		return draft, fmt.Errorf("apply patch: %w", err)
	}
	return next, nil
}

// cloneForm detaches pointer fields so decoding into the copy cannot reach
// the previous snapshot.
func cloneForm(f domain.ExpenseForm) domain.ExpenseForm {
	if f.AssetID != nil {
		v := *f.AssetID
		f.AssetID = &v
	}
	if f.VehicleID != nil {
		v := *f.VehicleID
		f.VehicleID = &v
	}
	return f
}
