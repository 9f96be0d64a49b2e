package service

import (
	"context"
	"encoding/json"
	"testing"

	"esporthub/internal/microservices/http-api/models"
	"esporthub/internal/shared"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// fixtures run without Redis: the nil cache operates in no-op mode, every
// count goes to the repository.
func newNotificationFixture() (*MockNotificationRepository, *recordingPublisher, NotificationService) {
	repo := new(MockNotificationRepository)
	publisher := &recordingPublisher{}
	svc := NewNotificationService(repo, nil, publisher)
	return repo, publisher, svc
}

func TestGetRecent_CapsAtFifty(t *testing.T) {
	repo, _, svc := newNotificationFixture()

	// a limit beyond the cap clamps to 50
	repo.On("GetRecentByUser", mock.Anything, "user-1", 50).
		Return([]models.Notification{
			{ID: "n-1", UserID: "user-1", Type: models.NotificationLike, Read: false},
			{ID: "n-2", UserID: "user-1", Type: models.NotificationSystem, Read: true},
		}, nil)
	repo.On("UnreadCount", mock.Anything, "user-1").Return(int64(1), nil)

	resp, err := svc.GetRecent(context.Background(), "user-1", 500)

	assert.NoError(t, err)
	assert.Len(t, resp.Notifications, 2)
	assert.Equal(t, int64(1), resp.Unread)
	repo.AssertExpectations(t)
}

func TestGetRecent_HonorsSmallerLimit(t *testing.T) {
	repo, _, svc := newNotificationFixture()

	repo.On("GetRecentByUser", mock.Anything, "user-1", 10).
		Return([]models.Notification{}, nil)
	repo.On("UnreadCount", mock.Anything, "user-1").Return(int64(0), nil)

	_, err := svc.GetRecent(context.Background(), "user-1", 10)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestUnreadCount_FallsThroughToStore(t *testing.T) {
	repo, _, svc := newNotificationFixture()

	repo.On("UnreadCount", mock.Anything, "user-1").Return(int64(4), nil)

	count, err := svc.UnreadCount(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(4), count)
}

func TestMarkAsRead_PublishesUpdate(t *testing.T) {
	repo, publisher, svc := newNotificationFixture()

	repo.On("MarkAsRead", mock.Anything, "user-1", "n-1").Return(int64(1), nil)

	err := svc.MarkAsRead(context.Background(), "user-1", "n-1")

	assert.NoError(t, err)
	if assert.Len(t, publisher.events, 1) {
		event := publisher.events[0]
		assert.Equal(t, shared.EventNotificationUpdated, event.Type)
		assert.Equal(t, "user-1", event.UserID)

		var payload map[string]any
		json.Unmarshal(event.Payload, &payload)
		assert.Equal(t, "n-1", payload["id"])
		assert.Equal(t, true, payload["read"])
	}
}

func TestMarkAsRead_NotFound(t *testing.T) {
	repo, publisher, svc := newNotificationFixture()

	// zero rows: missing or owned by someone else, same answer either way
	repo.On("MarkAsRead", mock.Anything, "user-1", "n-x").Return(int64(0), nil)

	err := svc.MarkAsRead(context.Background(), "user-1", "n-x")

	assert.ErrorIs(t, err, ErrNotificationNotFound)
	assert.Empty(t, publisher.events)
}

func TestMarkAllAsRead_SingleBulkEvent(t *testing.T) {
	repo, publisher, svc := newNotificationFixture()

	repo.On("MarkAllAsRead", mock.Anything, "user-1").Return(int64(12), nil)

	updated, err := svc.MarkAllAsRead(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(12), updated)
	// one event for the whole sweep, not twelve
	assert.Len(t, publisher.events, 1)
}

func TestMarkAllAsRead_NothingUnreadNoEvent(t *testing.T) {
	repo, publisher, svc := newNotificationFixture()

	repo.On("MarkAllAsRead", mock.Anything, "user-1").Return(int64(0), nil)

	updated, err := svc.MarkAllAsRead(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(0), updated)
	assert.Empty(t, publisher.events)
}

func TestDelete_NoEventEmitted(t *testing.T) {
	repo, publisher, svc := newNotificationFixture()

	repo.On("Delete", mock.Anything, "user-1", "n-1").Return(int64(1), nil)

	err := svc.Delete(context.Background(), "user-1", "n-1")

	assert.NoError(t, err)
	assert.Empty(t, publisher.events)
}

func TestClearAll_NoEventEmitted(t *testing.T) {
	repo, publisher, svc := newNotificationFixture()

	repo.On("ClearAll", mock.Anything, "user-1").Return(nil)

	err := svc.ClearAll(context.Background(), "user-1")

	assert.NoError(t, err)
	assert.Empty(t, publisher.events)
}
