package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/mineralmarket-backend/pkg/db/dbtest"
	"github.com/angelmondragon/mineralmarket-backend/pkg/db/models"
	"github.com/angelmondragon/mineralmarket-backend/pkg/enums"
	"github.com/angelmondragon/mineralmarket-backend/pkg/pagination"
)

func seedNotification(t *testing.T, r Repository, userID uuid.UUID, created time.Time, read bool) *models.Notification {
	t.Helper()
	n := &models.Notification{
		UserID:    userID,
		Type:      enums.NotificationTypeOrderShipped,
		Title:     "Order shipped",
		Message:   "The seller marked your order as shipped.",
		CreatedAt: created,
	}
	if read {
		at := created.Add(time.Minute)
		n.ReadAt = &at
	}
	require.NoError(t, r.Create(context.Background(), n))
	return n
}

func TestRepositoryListPagesByCreatedAt(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	svc := newServiceWithRepo(r)
	ctx := context.Background()
	userID := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 5; i++ {
		n := seedNotification(t, r, userID, base.Add(time.Duration(i)*time.Minute), false)
		ids = append(ids, n.ID)
	}
	seedNotification(t, r, uuid.New(), base, false)

	page, err := svc.List(ctx, ListParams{UserID: userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[4], page.Items[0].ID)
	assert.Equal(t, ids[3], page.Items[1].ID)
	require.NotEmpty(t, page.Cursor)

	page, err = svc.List(ctx, ListParams{UserID: userID, Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, ids[2], page.Items[0].ID)
	assert.Equal(t, ids[1], page.Items[1].ID)

	page, err = svc.List(ctx, ListParams{UserID: userID, Limit: 2, Cursor: page.Cursor})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.Empty(t, page.Cursor)
}

func TestRepositoryMarkReadAndCleanup(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	userID := uuid.New()
	old := time.Now().UTC().Add(-100 * 24 * time.Hour)

	unread := seedNotification(t, r, userID, old, false)
	seedNotification(t, r, userID, old, true)
	seedNotification(t, r, userID, time.Now().UTC(), true)

	res, err := r.MarkRead(ctx, uuid.New(), unread.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.False(t, res.Found, "other users cannot mark it")

	res, err = r.MarkRead(ctx, userID, unread.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.True(t, res.Updated)

	res, err = r.MarkRead(ctx, userID, unread.ID, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.False(t, res.Updated)

	deleted, err := r.DeleteReadBefore(ctx, time.Now().UTC().Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	rows, err := r.List(ctx, listNotificationsParams{UserID: userID, Limit: pagination.LimitWithBuffer(10)})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestRepositoryUnreadOnlyAndMarkAll(t *testing.T) {
	r := NewRepository(dbtest.Open(t))
	ctx := context.Background()
	userID := uuid.New()
	now := time.Now().UTC()

	seedNotification(t, r, userID, now.Add(-time.Hour), false)
	seedNotification(t, r, userID, now.Add(-2*time.Hour), false)
	seedNotification(t, r, userID, now.Add(-3*time.Hour), true)

	rows, err := r.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	count, err := r.MarkAllRead(ctx, userID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	rows, err = r.List(ctx, listNotificationsParams{UserID: userID, Limit: 10, UnreadOnly: true})
	require.NoError(t, err)
	assert.Empty(t, rows)
}
