package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/cache"
	"github.com/spec-kit/user-service/internal/events"
)

// AuditService records account and login events and keeps the user cache
// consistent with writes.
type AuditService struct {
	dispatcher events.Dispatcher
	cache      *cache.UserCache
	logger     *zap.Logger
}

// NewAuditService creates the service.
func NewAuditService(dispatcher events.Dispatcher, userCache *cache.UserCache, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		cache:      userCache,
		logger:     logger.Named("audit"),
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventUserCreated, a.handleUserCreated)
	a.dispatcher.Subscribe(events.EventUserUpdated, a.handleUserUpdated)
	a.dispatcher.Subscribe(events.EventUserDeleted, a.handleUserDeleted)
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLogin)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLogin)
}

func (a *AuditService) handleUserCreated(ctx context.Context, event events.Event) error {
	a.record(event)
	return nil
}

func (a *AuditService) handleUserUpdated(ctx context.Context, event events.Event) error {
	fields := eventFields(event)
	if p, ok := event.Payload.(events.UserUpdatedPayload); ok && p.OldUsername != p.NewUsername {
		fields = append(fields, zap.String("old_username", p.OldUsername))
	}
	a.logger.Info(string(event.Type), fields...)
	return a.cache.Invalidate(ctx, event.UserID)
}

func (a *AuditService) handleUserDeleted(ctx context.Context, event events.Event) error {
	a.record(event)
	return a.cache.Invalidate(ctx, event.UserID)
}

func (a *AuditService) handleLogin(ctx context.Context, event events.Event) error {
	if event.Type == events.EventLoginFailed {
		a.logger.Warn(string(event.Type), eventFields(event)...)
		return nil
	}
	a.record(event)
	return nil
}

func (a *AuditService) record(event events.Event) {
	a.logger.Info(string(event.Type), eventFields(event)...)
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.Time("at", event.Timestamp),
	}
	if event.UserID != 0 {
		fields = append(fields, zap.Int64("user_id", event.UserID))
	}
	if event.Username != "" {
		fields = append(fields, zap.String("username", event.Username))
	}
	return fields
}
