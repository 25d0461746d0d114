package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/policy"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/core/validation"
)

// MaxNoteLength bounds an approval note.
const MaxNoteLength = 1000

// expenseNumberAttempts bounds retries on an expense number collision.
const expenseNumberAttempts = 3

const (
	EventExpenseCreated      = "expense_created"
	EventExpenseSubmitted    = "expense_submitted"
	EventExpenseSelfApproved = "expense_self_approved"
	EventExpenseDecided      = "expense_decided"
)

// submissionService implements portssvc.SubmissionSvc
type submissionService struct {
	BaseService
	expenseRepo  portsrepo.ExpenseRepositoryFacade
	userRepo     portsrepo.UserReader
	approvalRepo portsrepo.ApprovalRepository
	notifier     portssvc.NotificationSvc
	tracker      portssvc.EventTracker
}

// SubmissionServiceOption configures optional collaborators.
type SubmissionServiceOption func(*submissionService)

// WithNotifier sends owner and manager notifications on workflow steps.
func WithNotifier(n portssvc.NotificationSvc) SubmissionServiceOption {
	return func(s *submissionService) { s.notifier = n }
}

// WithEventTracker records workflow analytics events.
func WithEventTracker(t portssvc.EventTracker) SubmissionServiceOption {
	return func(s *submissionService) { s.tracker = t }
}

// NewSubmissionService creates the submission protocol service.
func NewSubmissionService(expenseRepo portsrepo.ExpenseRepositoryFacade, userRepo portsrepo.UserReader, approvalRepo portsrepo.ApprovalRepository, opts ...SubmissionServiceOption) *submissionService {
	s := &submissionService{
		BaseService:  newBaseService(),
		expenseRepo:  expenseRepo,
		userRepo:     userRepo,
		approvalRepo: approvalRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.SubmissionSvc = (*submissionService)(nil)

func (s *submissionService) CreateDraft(ctx context.Context, identity domain.Identity, form domain.ExpenseForm) (*domain.Expense, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}

	record, err := domain.FormToRecord(form, identity.UserID)
	if err != nil {
		return nil, typeError(err)
	}
	if err := validation.ValidateSubmittable(record); err != nil {
		return nil, typeError(err)
	}

	now := s.Now()
	record.Status = domain.StatusDraft
	record.CreatedAt = now
	record.UpdatedAt = now
	record.SubmittedAt, record.ApprovedAt, record.ApproverID, record.ApprovalNotes = nil, nil, nil, nil

	for attempt := 1; ; attempt++ {
		record.ID = newID()
		record.ExpenseNumber, err = newExpenseNumber(now.Format("20060102"))
		if err != nil {
			return nil, err
		}
		err = s.expenseRepo.SaveExpense(ctx, record)
		if err == nil {
			break
		}
		if errors.Is(err, apperrors.ErrDuplicate) && attempt < expenseNumberAttempts {
			s.LogDebug(ctx, "Expense number collision, retrying", slog.String("expense_number", record.ExpenseNumber))
			continue
		}
		s.LogError(ctx, err, "Failed to save draft", slog.String("user_id", identity.UserID))
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}

	s.LogInfo(ctx, "Draft created", slog.String("expense_id", record.ID), slog.String("type", string(record.Type)))
	s.track(identity.UserID, EventExpenseCreated, record)
	return &record, nil
}

func (s *submissionService) Submit(ctx context.Context, identity domain.Identity, expenseID string) (*domain.Expense, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if !expense.IsOwnedBy(identity.UserID) {
		return nil, apperrors.NewForbiddenError("Only the owner can submit this expense")
	}
	if expense.Status != domain.StatusDraft {
		return nil, apperrors.NewInvalidStateError("Only draft expenses can be submitted")
	}
	if err := validation.ValidateSubmittable(*expense); err != nil {
		return nil, typeError(err)
	}

	submitted, err := s.expenseRepo.MarkSubmitted(ctx, expenseID, s.Now())
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidState):
			return nil, apperrors.NewInvalidStateError("Only draft expenses can be submitted")
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NewNotFoundError("Expense not found")
		}
		s.LogError(ctx, err, "Failed to submit expense", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to submit expense: %w", err)
	}
	s.LogInfo(ctx, "Expense submitted", slog.String("expense_id", expenseID))
	s.track(identity.UserID, EventExpenseSubmitted, *submitted)

	submitter, err := s.userRepo.FindUserByID(ctx, identity.UserID)
	if err != nil {
		s.LogError(ctx, err, "Submitter profile unavailable, skipping self-approval", slog.String("expense_id", expenseID))
		return submitted, nil
	}

	if policy.CanSelfApprove(submitter, submitted.TotalAmount) {
		approved, err := s.selfApprove(ctx, submitted)
		if err != nil {
			// The submission stands; the expense waits for a manual decision.
			s.LogError(ctx, err, "Self-approval failed, expense left submitted", slog.String("expense_id", expenseID))
		} else {
			return approved, nil
		}
	}

	s.notifyManager(ctx, submitter, submitted)
	return submitted, nil
}

func (s *submissionService) selfApprove(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	comment := domain.SelfApprovalComment
	approved, _, err := s.expenseRepo.RecordDecision(ctx, domain.Decision{
		ExpenseID:      expense.ID,
		ApproverID:     expense.UserID,
		Status:         domain.StatusApproved,
		Notes:          &comment,
		IsSelfApproval: true,
		At:             s.Now(),
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Expense self-approved", slog.String("expense_id", expense.ID))
	s.track(expense.UserID, EventExpenseSelfApproved, *approved)
	return approved, nil
}

func (s *submissionService) Decide(ctx context.Context, identity domain.Identity, expenseID string, action domain.ApprovalAction, notes *string) (*domain.Expense, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	action, ok := domain.ParseApprovalAction(string(action))
	if !ok {
		return nil, apperrors.NewBadRequestError("Action must be approved or rejected")
	}

	approver, err := loadProfile(ctx, s.userRepo, identity.UserID)
	if err != nil {
		return nil, err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if !policy.HasRole(approver, domain.RoleManager, domain.RoleAdmin) || !approver.IsActive {
		return nil, apperrors.NewForbiddenError("Insufficient role to approve expenses")
	}
	if expense.IsOwnedBy(approver.ID) {
		return nil, apperrors.NewForbiddenError("You cannot decide your own expense")
	}
	if expense.Status != domain.StatusSubmitted {
		return nil, apperrors.NewInvalidStateError("Expense is not submitted for approval")
	}
	if !policy.CanApproveExpense(approver, expense.TotalAmount) {
		return nil, apperrors.NewForbiddenError("Expense amount exceeds your approval limit")
	}

	notes = trimmedOrNil(notes)
	decided, _, err := s.expenseRepo.RecordDecision(ctx, domain.Decision{
		ExpenseID:  expenseID,
		ApproverID: approver.ID,
		Status:     action.ResultingStatus(),
		Notes:      notes,
		At:         s.Now(),
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidState):
			return nil, apperrors.NewInvalidStateError("Expense is not submitted for approval")
		case errors.Is(err, apperrors.ErrNotFound):
			return nil, apperrors.NewNotFoundError("Expense not found")
		}
		s.LogError(ctx, err, "Failed to record decision", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to record decision: %w", err)
	}

	s.LogInfo(ctx, "Expense decided", slog.String("expense_id", expenseID), slog.String("status", string(decided.Status)))
	s.track(approver.ID, EventExpenseDecided, *decided)
	s.notifyOwner(ctx, decided)
	return decided, nil
}

func (s *submissionService) AppendNote(ctx context.Context, identity domain.Identity, expenseID, note string) (*domain.ApprovalNote, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	switch {
	case note == "":
		return nil, apperrors.NewValidationError(map[string]string{"note": "Note is required"})
	case len([]rune(note)) > MaxNoteLength:
		return nil, apperrors.NewValidationError(map[string]string{"note": fmt.Sprintf("Note must be at most %d characters", MaxNoteLength)})
	}

	author, err := loadProfile(ctx, s.userRepo, identity.UserID)
	if err != nil {
		return nil, err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if !policy.HasRole(author, domain.RoleManager, domain.RoleAdmin) || !author.IsActive {
		return nil, apperrors.NewForbiddenError("Only approvers can add approval notes")
	}
	if !expense.Status.IsTerminal() {
		return nil, apperrors.NewInvalidStateError("Notes can only be added to decided expenses")
	}

	n := domain.ApprovalNote{
		ID:        newID(),
		ExpenseID: expenseID,
		AuthorID:  author.ID,
		Note:      note,
		CreatedAt: s.Now(),
	}
	if err := s.approvalRepo.SaveNote(ctx, n); err != nil {
		s.LogError(ctx, err, "Failed to save approval note", slog.String("expense_id", expenseID))
		return nil, fmt.Errorf("failed to save approval note: %w", err)
	}
	return &n, nil
}

func (s *submissionService) ListPendingApprovals(ctx context.Context, identity domain.Identity) ([]domain.Expense, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	profile, err := loadProfile(ctx, s.userRepo, identity.UserID)
	if err != nil {
		return nil, err
	}
	if !profile.IsActive {
		return nil, apperrors.NewForbiddenError("Account is inactive")
	}

	var pending []domain.Expense
	switch profile.Role {
	case domain.RoleAdmin:
		pending, err = s.expenseRepo.ListAllSubmitted(ctx)
	case domain.RoleManager:
		pending, err = s.expenseRepo.ListSubmittedByManager(ctx, profile.ID)
	default:
		return nil, apperrors.NewForbiddenError("Insufficient role to view approvals")
	}
	if err != nil {
		s.LogError(ctx, err, "Failed to list pending approvals")
		return nil, fmt.Errorf("failed to list pending approvals: %w", err)
	}
	if pending == nil {
		pending = []domain.Expense{}
	}
	checkStored(ctx, pending...)
	return pending, nil
}

func (s *submissionService) ListApprovals(ctx context.Context, identity domain.Identity, expenseID string) (*domain.ApprovalHistory, error) {
	if err := s.RequireIdentity(identity); err != nil {
		return nil, err
	}
	expense, err := loadExpense(ctx, s.expenseRepo, expenseID)
	if err != nil {
		return nil, err
	}
	if err := authorizeView(ctx, s.userRepo, identity, expense); err != nil {
		return nil, err
	}

	approvals, err := s.approvalRepo.ListApprovalsByExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	notes, err := s.approvalRepo.ListNotesByExpense(ctx, expenseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval notes: %w", err)
	}
	if approvals == nil {
		approvals = []domain.Approval{}
	}
	if notes == nil {
		notes = []domain.ApprovalNote{}
	}
	return &domain.ApprovalHistory{Approvals: approvals, Notes: notes}, nil
}

func (s *submissionService) notifyManager(ctx context.Context, submitter *domain.UserProfile, expense *domain.Expense) {
	if s.notifier == nil || submitter == nil || submitter.ManagerID == nil {
		return
	}
	manager, err := s.userRepo.FindUserByID(ctx, *submitter.ManagerID)
	if err != nil {
		s.LogError(ctx, err, "Manager profile unavailable for notification", slog.String("manager_id", *submitter.ManagerID))
		return
	}
	expenseID := expense.ID
	title := "Expense awaiting approval"
	message := fmt.Sprintf("%s submitted %s for %s %s.", displayName(submitter), expense.ExpenseNumber, expense.TotalAmount.StringFixed(2), expense.Currency)
	s.notifier.NotifyUser(ctx, domain.Notification{
		UserID:    manager.ID,
		Type:      domain.NotificationExpenseSubmitted,
		Title:     title,
		Message:   message,
		ExpenseID: &expenseID,
	}, &domain.Email{To: manager.Email, Subject: title, HTML: emailBody(title, message)})
}

func (s *submissionService) notifyOwner(ctx context.Context, expense *domain.Expense) {
	if s.notifier == nil {
		return
	}
	owner, err := s.userRepo.FindUserByID(ctx, expense.UserID)
	if err != nil {
		s.LogError(ctx, err, "Owner profile unavailable for notification", slog.String("expense_id", expense.ID))
		return
	}

	notificationType := domain.NotificationExpenseApproved
	title := "Expense approved"
	if expense.Status == domain.StatusRejected {
		notificationType = domain.NotificationExpenseRejected
		title = "Expense rejected"
	}
	message := fmt.Sprintf("Your expense %s was %s.", expense.ExpenseNumber, expense.Status)
	if expense.ApprovalNotes != nil {
		message += " Notes: " + *expense.ApprovalNotes
	}
	expenseID := expense.ID
	s.notifier.NotifyUser(ctx, domain.Notification{
		UserID:    owner.ID,
		Type:      notificationType,
		Title:     title,
		Message:   message,
		ExpenseID: &expenseID,
	}, &domain.Email{To: owner.Email, Subject: title, HTML: emailBody(title, message)})
}

func (s *submissionService) track(userID, event string, expense domain.Expense) {
	if s.tracker == nil {
		return
	}
	s.tracker.Track(userID, event, map[string]any{
		"expense_id": expense.ID,
		"type":       string(expense.Type),
		"status":     string(expense.Status),
		"amount":     expense.TotalAmount.String(),
		"currency":   expense.Currency,
	})
}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func displayName(p *domain.UserProfile) string {
	if p.FullName != "" {
		return p.FullName
	}
	return p.Email
}
