package view

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SscSPs/expenseflow/internal/client"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/charmbracelet/huh"
)

const skipDecision = ""

// ReviewPending walks the caller's approval queue one expense at a time.
func ReviewPending(ctx context.Context, api *client.Client) error {
	pending, err := api.PendingApprovals(ctx)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		fmt.Println(faintStyle.Render("Nothing is waiting for your approval."))
		return nil
	}

	for _, e := range pending {
		fmt.Println(titleStyle.Render(fmt.Sprintf("%s · %s", e.ExpenseNumber, e.Type)))
		fmt.Println(renderSummary(domain.RecordToForm(e)))

		action := skipDecision
		var notes string
		f := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().Title("Decision").Options(
				huh.NewOption("Approve", string(domain.ActionApprove)),
				huh.NewOption("Reject", string(domain.ActionReject)),
				huh.NewOption("Decide later", skipDecision),
			).Value(&action),
			huh.NewText().Title("Notes").Value(&notes),
		))
		if err := f.RunWithContext(ctx); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
		if action == skipDecision {
			continue
		}

		var notesPtr *string
		if trimmed := strings.TrimSpace(notes); trimmed != "" {
			notesPtr = &trimmed
		}
		status, err := api.Decide(ctx, e.ID, domain.ApprovalAction(action), notesPtr)
		if err != nil {
			var apiErr *client.APIError
			if errors.As(err, &apiErr) {
				fmt.Println(Failure(apiErr.Message))
				continue
			}
			return err
		}
		fmt.Println(Success(fmt.Sprintf("%s %s", e.ExpenseNumber, status)))
	}
	return nil
}
