package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/user-service/internal/cache"
	"github.com/spec-kit/user-service/internal/domain"
	"github.com/spec-kit/user-service/internal/events"
	"github.com/spec-kit/user-service/internal/repository"
	apperrors "github.com/spec-kit/user-service/pkg/util"
)

// CredentialDeriver turns a plaintext password into a stored credential.
type CredentialDeriver interface {
	Derive(plaintext string) (domain.Credential, error)
}

// UserService coordinates account workflows.
type UserService struct {
	users      repository.UserRepository
	hasher     CredentialDeriver
	cache      *cache.UserCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     CredentialDeriver
	Cache      *cache.UserCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewUserService constructs the service. Cache and Dispatcher are optional.
func NewUserService(deps UserDependencies) *UserService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		users:      deps.UserRepo,
		hasher:     deps.Hasher,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Register creates an account with a freshly derived credential.
func (s *UserService) Register(ctx context.Context, username, password string) (domain.PublicUser, error) {
	if err := validateUsername(username); err != nil {
		return domain.PublicUser{}, err
	}

	cred, err := s.hasher.Derive(password)
	if err != nil {
		return domain.PublicUser{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{Username: username, Credential: cred}
	if err := s.users.Insert(ctx, user); err != nil {
		return domain.PublicUser{}, mapUserWriteError(err, username)
	}

	s.publish(ctx, events.Event{Type: events.EventUserCreated, UserID: user.ID, Username: user.Username})
	return user.Public(), nil
}

// Get returns one user, consulting the cache first.
func (s *UserService) Get(ctx context.Context, id int64) (domain.PublicUser, error) {
	if cached, ok := s.cache.Get(ctx, id); ok {
		return cached, nil
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, apperrors.MapError(err)
	}

	view := user.Public()
	s.cache.Set(ctx, view)
	return view, nil
}

// List returns every user, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	views := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		views = append(views, u.Public())
	}
	return views, nil
}

// Update replaces the username and password of an existing user.
func (s *UserService) Update(ctx context.Context, id int64, username, password string) (domain.PublicUser, error) {
	if err := validateUsername(username); err != nil {
		return domain.PublicUser{}, err
	}

	existing, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.PublicUser{}, apperrors.MapError(err)
	}

	cred, err := s.hasher.Derive(password)
	if err != nil {
		return domain.PublicUser{}, apperrors.NewInternalError(err)
	}

	user := &domain.User{Username: username, Credential: cred}
	if err := s.users.UpdateByID(ctx, id, user); err != nil {
		return domain.PublicUser{}, mapUserWriteError(err, username)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventUserUpdated,
		UserID:   user.ID,
		Username: user.Username,
		Payload:  events.UserUpdatedPayload{OldUsername: existing.Username, NewUsername: user.Username},
	})
	return user.Public(), nil
}

// Delete removes a user.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	if err := s.users.DeleteByID(ctx, id); err != nil {
		return apperrors.MapError(err)
	}
	s.publish(ctx, events.Event{Type: events.EventUserDeleted, UserID: id})
	return nil
}

// publish never fails the calling operation; the write already happened.
func (s *UserService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed",
			zap.String("event_type", string(event.Type)),
			zap.Int64("user_id", event.UserID),
			zap.Error(err))
	}
}

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return apperrors.NewValidationError("username is required", map[string]any{"field": "username"})
	}
	return nil
}

func mapUserWriteError(err error, username string) error {
	if errors.Is(err, repository.ErrUsernameTaken) {
		return apperrors.NewConflict("username already taken", map[string]any{"username": username})
	}
	return apperrors.MapError(err)
}
