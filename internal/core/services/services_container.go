package services

import (
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/platform/config"
)

// infrastructure collects the adapters the container wires into services.
type infrastructure struct {
	storage portssvc.BlobStorage
	mailer  portssvc.Mailer
	tracker portssvc.EventTracker
}

// ContainerOption supplies an infrastructure adapter to NewServiceContainer.
type ContainerOption func(*infrastructure)

// WithBlobStorage sets the receipt storage. Without it attachments are unavailable.
func WithBlobStorage(storage portssvc.BlobStorage) ContainerOption {
	return func(i *infrastructure) { i.storage = storage }
}

// WithMailer enables notification email delivery.
func WithMailer(mailer portssvc.Mailer) ContainerOption {
	return func(i *infrastructure) { i.mailer = mailer }
}

// WithTracker enables workflow analytics.
func WithTracker(tracker portssvc.EventTracker) ContainerOption {
	return func(i *infrastructure) { i.tracker = tracker }
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ContainerOption) *portssvc.ServiceContainer {
	infra := &infrastructure{}
	for _, opt := range opts {
		opt(infra)
	}

	container := &portssvc.ServiceContainer{}

	container.User = NewUserService(repos.UserRepo)
	container.Notification = NewNotificationService(repos.NotificationRepo, infra.mailer)

	submissionOpts := []SubmissionServiceOption{WithNotifier(container.Notification)}
	if infra.tracker != nil {
		submissionOpts = append(submissionOpts, WithEventTracker(infra.tracker))
	}
	container.Submission = NewSubmissionService(repos.ExpenseRepo, repos.UserRepo, repos.ApprovalRepo, submissionOpts...)

	var expenseOpts []ExpenseServiceOption
	if infra.storage != nil {
		expenseOpts = append(expenseOpts, WithReceiptCleanup(repos.AttachmentRepo, infra.storage))
		container.Attachment = NewAttachmentService(repos.AttachmentRepo, repos.ExpenseRepo, repos.UserRepo, infra.storage)
	}
	container.Expense = NewExpenseService(repos.ExpenseRepo, repos.UserRepo, expenseOpts...)

	container.Reporting = NewReportingService(repos.ReportingRepo, repos.ExpenseRepo, repos.UserRepo, cfg.DefaultCurrency)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	container.TokenService = NewTokenService(cfg, container.User)
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
