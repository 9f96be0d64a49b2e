package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"esporthub/internal/microservices/http-api/dto"
	"esporthub/internal/microservices/http-api/repository"
	"esporthub/internal/shared"
)

// recentNotificationLimit is both the default and the hard cap for the
// recent listing; clients cannot page past it.
const recentNotificationLimit = 50

var ErrNotificationNotFound = errors.New("notification not found")

// Publisher pushes realtime events to a user's live connections.
// Satisfied by websocket.Hub.
type Publisher interface {
	Publish(userID string, event *shared.Event)
}

type NotificationService interface {
	GetRecent(ctx context.Context, userID string, limit int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkAsRead(ctx context.Context, userID, notificationID string) error
	MarkAllAsRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, notificationID string) error
	ClearAll(ctx context.Context, userID string) error
}

type notificationService struct {
	repo      repository.NotificationRepository
	cache     *repository.UnreadCacheRedis
	publisher Publisher
}

func NewNotificationService(repo repository.NotificationRepository, cache *repository.UnreadCacheRedis, publisher Publisher) NotificationService {
	return &notificationService{repo: repo, cache: cache, publisher: publisher}
}

// GetRecent returns the user's most recent notifications, newest first,
// together with the unread total.
func (s *notificationService) GetRecent(ctx context.Context, userID string, limit int) (*dto.NotificationListResponse, error) {
	if limit < 1 || limit > recentNotificationLimit {
		limit = recentNotificationLimit
	}

	notifications, err := s.repo.GetRecentByUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}

	unread, err := s.UnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.NotificationResponse, 0, len(notifications))
	for i := range notifications {
		responses = append(responses, *dto.FromModelToNotificationResponse(&notifications[i]))
	}

	return &dto.NotificationListResponse{
		Notifications: responses,
		Unread:        unread,
	}, nil
}

// UnreadCount serves the badge counter from the cache when possible and
// falls through to the store on a miss, repopulating the cache afterwards.
func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if count, ok := s.cache.Get(ctx, userID); ok {
		return count, nil
	}

	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.cache.Set(ctx, userID, count)
	return count, nil
}

// MarkAsRead flips a single notification, invalidates the badge cache and
// pushes an update event so other open tabs converge.
func (s *notificationService) MarkAsRead(ctx context.Context, userID, notificationID string) error {
	rows, err := s.repo.MarkAsRead(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	s.cache.Invalidate(ctx, userID)
	s.publishUpdated(userID, map[string]any{"id": notificationID, "read": true})
	return nil
}

// MarkAllAsRead flips every unread notification of the user and emits a
// single bulk update event rather than one per row.
func (s *notificationService) MarkAllAsRead(ctx context.Context, userID string) (int64, error) {
	rows, err := s.repo.MarkAllAsRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, userID)
	if rows > 0 {
		s.publishUpdated(userID, map[string]any{"all": true, "read": true})
	}
	return rows, nil
}

// Delete removes a single notification. No realtime event is emitted for
// deletions; live clients converge on their next list fetch.
func (s *notificationService) Delete(ctx context.Context, userID, notificationID string) error {
	rows, err := s.repo.Delete(ctx, userID, notificationID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotificationNotFound
	}

	s.cache.Invalidate(ctx, userID)
	return nil
}

// ClearAll removes every notification of the user. Like Delete, clears emit
// no realtime event.
func (s *notificationService) ClearAll(ctx context.Context, userID string) error {
	if err := s.repo.ClearAll(ctx, userID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userID)
	return nil
}

func (s *notificationService) publishUpdated(userID string, payload map[string]any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to build notification update event", "user_id", userID, "error", err)
		return
	}
	s.publisher.Publish(userID, shared.NewEvent(shared.EventNotificationUpdated, userID, raw))
}
