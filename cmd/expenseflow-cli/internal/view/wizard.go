// Package view holds the terminal screens of the expense wizard.
package view

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/SscSPs/expenseflow/internal/client"
	"github.com/SscSPs/expenseflow/internal/core/autosave"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/form"
	"github.com/SscSPs/expenseflow/internal/core/validation"
	"github.com/charmbracelet/huh"
)

// ErrQuit is returned when the user leaves the wizard. A saveable draft is saved first.
var ErrQuit = errors.New("wizard closed")

const (
	navContinue = "continue"
	navBack     = "back"
	navSkip     = "skip"
	navQuit     = "quit"
)

// Wizard walks one expense through its category steps, auto-saving the draft.
type Wizard struct {
	api     *client.Client
	userID  string
	delay   time.Duration
	logger  *slog.Logger
	machine *form.Machine
	steps   *form.Wizard
	saver   *autosave.Scheduler

	mu     sync.Mutex
	status string
}

// NewWizard prepares a wizard for a new expense of type t, or for editing existing.
func NewWizard(api *client.Client, userID string, t domain.ExpenseType, existing *domain.Expense, delay time.Duration, logger *slog.Logger) (*Wizard, error) {
	state := form.NewState()
	if existing != nil {
		state = form.Reduce(state, form.LoadExpense{Form: domain.RecordToForm(*existing)})
		t = existing.Type
	} else {
		patch, err := form.PatchOf(map[string]any{"type": t})
		if err != nil {
			return nil, err
		}
		state = form.Reduce(state, patch)
	}

	table, err := form.StepsFor(t)
	if err != nil {
		return nil, err
	}
	steps, err := form.NewWizard(table)
	if err != nil {
		return nil, err
	}

	w := &Wizard{
		api:     api,
		userID:  userID,
		delay:   delay,
		logger:  logger,
		machine: form.NewMachine(state),
		steps:   steps,
	}
	return w, nil
}

// Run shows the steps until the expense is submitted or the user quits.
func (w *Wizard) Run(ctx context.Context) (*domain.Expense, error) {
	w.saver = autosave.New(w.machine, w.api, w.userID,
		autosave.WithDelay(w.delay),
		autosave.WithLogger(w.logger),
		autosave.WithReadyCheck(draftSaveable),
		autosave.WithOnSaved(func(e domain.Expense) {
			w.setStatus("Draft saved at " + time.Now().Format("15:04:05"))
		}),
		autosave.WithOnError(func(err error) {
			w.setStatus("Auto-save failed, will retry: " + err.Error())
		}),
	)
	w.saver.Start()
	defer w.saver.Stop()

	for {
		step := w.steps.ActiveStep()
		if step.ID == "review" {
			submitted, err := w.review(ctx)
			if errors.Is(err, errBackToEdit) {
				w.steps.Back()
				continue
			}
			return submitted, err
		}

		nav, err := w.runStep(ctx, step)
		if err != nil {
			return nil, w.leave(ctx, err)
		}
		switch nav {
		case navBack:
			w.steps.Back()
		case navSkip:
			if err := w.steps.Skip(); err != nil {
				w.setStatus(err.Error())
			}
		case navQuit:
			if !w.confirmQuit(ctx) {
				continue
			}
			return nil, w.leave(ctx, ErrQuit)
		default:
			w.steps.Complete()
		}
	}
}

func (w *Wizard) runStep(ctx context.Context, step form.Step) (string, error) {
	state := w.machine.State()
	t := state.Draft.Type

	fields, err := buildStep(step.ID, t, state.Draft)
	if err != nil {
		return "", err
	}

	fmt.Println(w.header(step))
	if errs := stepErrors(state.Errors, fields.fields); len(errs) > 0 {
		fmt.Println(errorStyle.Render(strings.Join(errs, "\n")))
	}

	nav := navContinue
	options := []huh.Option[string]{huh.NewOption("Continue", navContinue)}
	if step.Skippable {
		options = append(options, huh.NewOption("Skip this step", navSkip))
	}
	if w.steps.Active() > 0 {
		options = append(options, huh.NewOption("Back", navBack))
	}
	options = append(options, huh.NewOption("Save and quit", navQuit))

	f := huh.NewForm(
		fields.group,
		huh.NewGroup(huh.NewSelect[string]().Title("Next").Options(options...).Value(&nav)),
	)
	if err := f.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return navQuit, nil
		}
		return "", err
	}
	if nav == navSkip {
		return nav, nil
	}

	patch, err := fields.patch()
	if err != nil {
		w.setStatus(err.Error())
		return navContinue, nil
	}
	action, err := form.PatchOf(patch)
	if err != nil {
		return "", err
	}
	if _, err := w.machine.Dispatch(action); err != nil {
		return "", err
	}
	return nav, nil
}

var errBackToEdit = errors.New("back to edit")

// review shows the draft, collects the confirmations and submits.
func (w *Wizard) review(ctx context.Context) (*domain.Expense, error) {
	state := w.machine.State()
	fmt.Println(w.header(w.steps.ActiveStep()))
	fmt.Println(renderSummary(state.Draft))

	var confirmations domain.Confirmations
	submit := true
	f := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().Title("The information is accurate").Value(&confirmations.Accuracy),
		huh.NewConfirm().Title("All receipts are attached").Value(&confirmations.ReceiptsAttached),
		huh.NewConfirm().Title("This is a legitimate business expense").Value(&confirmations.Legitimacy),
		huh.NewConfirm().Title("Submit now?").Affirmative("Submit").Negative("Back").Value(&submit),
	))
	if err := f.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, w.leave(ctx, ErrQuit)
		}
		return nil, err
	}
	if !submit {
		return nil, errBackToEdit
	}

	if res := validation.ValidateForSubmission(state.Draft, confirmations); !res.Valid() {
		fmt.Println(errorStyle.Render(renderErrors(res.Errors)))
		return nil, errBackToEdit
	}

	if err := w.saver.Flush(ctx); err != nil {
		return nil, fmt.Errorf("save draft before submit: %w", err)
	}
	id := w.machine.State().Draft.ID
	if id == "" {
		return nil, errors.New("draft has not been saved")
	}

	expense, message, err := w.api.SubmitExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	fmt.Println(successStyle.Render(message))
	return expense, nil
}

// leave flushes the pending draft so nothing typed is lost.
func (w *Wizard) leave(ctx context.Context, cause error) error {
	flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	err := w.saver.Flush(flushCtx)
	switch {
	case err == nil:
		return cause
	case errors.Is(err, autosave.ErrNotReady):
		fmt.Println(faintStyle.Render("Draft discarded: " + notSaveableHint))
		return cause
	default:
		w.logger.Warn("Failed to save draft on exit", slog.String("error", err.Error()))
		return errors.Join(cause, err)
	}
}

// confirmQuit asks before leaving a draft that cannot be stored yet.
func (w *Wizard) confirmQuit(ctx context.Context) bool {
	state := w.machine.State()
	if !state.Dirty || draftSaveable(state.Draft) {
		return true
	}
	quit := false
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title("This draft cannot be saved yet").
			Description(notSaveableHint).
			Affirmative("Quit anyway").
			Negative("Keep editing").
			Value(&quit),
	)).RunWithContext(ctx)
	return err != nil || quit
}

const notSaveableHint = "fill in the required fields and a business purpose of at least 200 characters to save it"

// draftSaveable mirrors the server checks on draft writes: a first save needs
// the business purpose minimum, later updates need the schemas only.
func draftSaveable(f domain.ExpenseForm) bool {
	if f.ID == "" {
		return validation.ValidateForCreate(f).Valid()
	}
	return validation.Validate(f).Valid()
}

// saveStatus describes the auto-save state when no save has reported yet.
func saveStatus(s form.State) string {
	if s.Dirty && !draftSaveable(s.Draft) {
		return "Not saved yet: " + notSaveableHint
	}
	return ""
}

func (w *Wizard) header(step form.Step) string {
	var b strings.Builder
	for i, s := range w.steps.Steps() {
		marker := "○"
		switch {
		case i == w.steps.Active():
			marker = "●"
		case w.steps.IsCompleted(i):
			marker = "✓"
		case w.steps.IsSkipped(i):
			marker = "-"
		}
		b.WriteString(marker + " " + s.Title)
		if i < len(w.steps.Steps())-1 {
			b.WriteString("  ")
		}
	}
	out := titleStyle.Render(step.Title) + "\n" + faintStyle.Render(b.String())
	status := saveStatus(w.machine.State())
	if status == "" {
		status = w.currentStatus()
	}
	if status != "" {
		out += "\n" + faintStyle.Render(status)
	}
	return out
}

// setStatus is called from the auto-save goroutine as well as the UI loop.
func (w *Wizard) setStatus(s string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.status = s
}

func (w *Wizard) currentStatus() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}
