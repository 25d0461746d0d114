package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNotificationService_SendPersistsThenEmails(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	mailer := new(MockMailer)
	repo.On("SaveNotification", ctx, mock.MatchedBy(func(n domain.Notification) bool {
		return n.UserID == "u-2" && n.Type == domain.NotificationGeneral && !n.IsRead && n.ID != ""
	})).Return(nil).Once()
	mailer.On("Send", ctx, domain.Email{To: "u2@example.com", Subject: "Hi", HTML: "<p>x</p>"}).Return(assert.AnError).Once()

	saved, err := services.NewNotificationService(repo, mailer).Send(ctx, identityOf("u-1"),
		domain.Notification{UserID: "u-2", Title: "Hello"},
		&domain.Email{To: "u2@example.com", Subject: "Hi", HTML: "<p>x</p>"})

	require.NoError(t, err, "email failures are not surfaced")
	assert.Equal(t, "Hello", saved.Title)
	repo.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestNotificationService_SendPersistenceFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	repo.On("SaveNotification", ctx, mock.Anything).Return(assert.AnError).Once()

	_, err := services.NewNotificationService(repo, nil).Send(ctx, identityOf("u-1"), domain.Notification{UserID: "u-2", Title: "Hello"}, nil)

	assert.ErrorIs(t, err, assert.AnError)
}

func TestNotificationService_SendValidation(t *testing.T) {
	svc := services.NewNotificationService(new(MockNotificationRepository), nil)

	_, err := svc.Send(context.Background(), identityOf("u-1"), domain.Notification{}, nil)
	fields, ok := apperrors.FieldErrors(err)
	require.True(t, ok)
	assert.Contains(t, fields, "notification.userId")
	assert.Contains(t, fields, "notification.title")

	_, err = svc.Send(context.Background(), domain.Identity{}, domain.Notification{UserID: "u", Title: "t"}, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestNotificationService_Inbox(t *testing.T) {
	ctx := context.Background()
	repo := new(MockNotificationRepository)
	repo.On("ListNotificationsByUser", ctx, "u-1", true, 100).Return(nil, nil).Once()
	repo.On("MarkRead", ctx, "n-1", "u-1").Return(apperrors.ErrNotFound).Once()
	svc := services.NewNotificationService(repo, nil)

	list, err := svc.ListNotifications(ctx, identityOf("u-1"), true, 0)
	require.NoError(t, err)
	assert.NotNil(t, list)

	err = svc.MarkRead(ctx, identityOf("u-1"), "n-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
