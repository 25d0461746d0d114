package pgsql

import (
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		ExpenseRepo:      newPgxExpenseRepository(dbPool),
		UserRepo:         newPgxUserRepository(dbPool),
		ApprovalRepo:     newPgxApprovalRepository(dbPool),
		NotificationRepo: newPgxNotificationRepository(dbPool),
		AttachmentRepo:   newPgxAttachmentRepository(dbPool),
		APITokenRepo:     newPgxAPITokenRepository(dbPool),
		ReportingRepo:    newReportingRepository(dbPool),
	}
}
