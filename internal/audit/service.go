package audit

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Event actions recorded by the application.
const (
	ActionRegister     = "register"
	ActionLogin        = "login"
	ActionLogout       = "logout"
	ActionBookAdd      = "book_add"
	ActionBookUpdate   = "book_update"
	ActionBookDelete   = "book_delete"
	ActionBorrow       = "borrow"
	ActionLibraryAdd   = "library_add"
	ActionReviewDelete = "review_delete"
	ActionProfileEdit  = "profile_update"
)

// EventStore persists audit events.
type EventStore interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
	GetEvents(ctx context.Context, filter entities.AuditEventFilter) ([]entities.AuditEvent, int64, error)
	DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error)
}

// Service records audit events without blocking the request that caused them.
type Service struct {
	store  EventStore
	logger *zap.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

func NewService(store EventStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger, now: time.Now}
}

// Log records an event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	return s.store.LogEvent(ctx, event)
}

// LogAsync records an event in the background. Failures are logged and dropped.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.store.LogEvent(context.Background(), event); err != nil {
			s.logger.Warn("failed to log audit event",
				zap.String("event_type", string(event.EventType)),
				zap.String("action", event.Action),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until every pending asynchronous event has been written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogAuth records a registration, login or logout attempt.
func (s *Service) LogAuth(userID, action, email, ipAddr, userAgent string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventAuth,
		Action:      action,
		Description: truncate(email, 500),
		EntityType:  "user",
		EntityID:    userID,
		IPAddress:   ipAddr,
		UserAgent:   truncate(userAgent, 500),
	}
	s.LogAsync(withOutcome(event, err))
}

// LogCatalog records a change to a book.
func (s *Service) LogCatalog(userID, action, bookID, title string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventCatalog,
		Action:      action,
		Description: truncate(title, 500),
		EntityType:  "book",
		EntityID:    bookID,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogBorrow records a borrowing or a library addition.
func (s *Service) LogBorrow(userID, action, bookID string, accessType entities.AccessType, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventBorrowing,
		Action:      action,
		Description: string(accessType),
		EntityType:  "book",
		EntityID:    bookID,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogReview records a review deletion.
func (s *Service) LogReview(userID, action, reviewID string, err error) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventReview,
		Action:     action,
		EntityType: "review",
		EntityID:   reviewID,
	}
	s.LogAsync(withOutcome(event, err))
}

// LogProfile records a profile update.
func (s *Service) LogProfile(userID string, err error) {
	event := &entities.AuditEvent{
		UserID:     userID,
		EventType:  entities.AuditEventProfile,
		Action:     ActionProfileEdit,
		EntityType: "user",
		EntityID:   userID,
	}
	s.LogAsync(withOutcome(event, err))
}

// GetEvents returns one page of events, newest first, and the total match count.
func (s *Service) GetEvents(ctx context.Context, filter entities.AuditEventFilter) ([]entities.AuditEvent, int64, error) {
	return s.store.GetEvents(ctx, filter.Normalize())
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	return s.store.DeleteOldEvents(ctx, s.now().Add(-retention))
}

func withOutcome(event *entities.AuditEvent, err error) *entities.AuditEvent {
	event.Status = entities.AuditStatusSuccess
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
