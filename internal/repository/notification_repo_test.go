package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/noah-isme/nexus-api/internal/models"
)

func TestNotificationRepositoryUnreadAndMarkRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()

	first := &models.Notification{UserID: "u1", Type: models.NotificationTypeDoubtResolved, Message: "one"}
	second := &models.Notification{UserID: "u1", Type: models.NotificationTypeDoubtResolved, Message: "two"}
	other := &models.Notification{UserID: "u2", Type: models.NotificationTypeDoubtResolved, Message: "three"}
	for _, n := range []*models.Notification{first, second, other} {
		require.NoError(t, repo.Create(ctx, n))
	}

	unread, err := repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(2), unread)

	updated, err := repo.MarkRead(ctx, first.ID, "u1")
	require.NoError(t, err)
	require.True(t, updated.Read)

	again, err := repo.MarkRead(ctx, first.ID, "u1")
	require.NoError(t, err)
	require.True(t, again.Read)

	unread, err = repo.CountUnread(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, int64(1), unread)

	_, err = repo.MarkRead(ctx, other.ID, "u1")
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	listed, err := repo.ListByUser(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	require.Equal(t, second.ID, listed[0].ID)
}
