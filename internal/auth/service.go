// Package auth implements sign-in, sign-up, sign-out and token refresh on
// top of the users and refresh_tokens tables, and publishes a session
// change event for each of them.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/propconsole/internal/model"
	"github.com/iliyamo/propconsole/internal/repository"
	"github.com/iliyamo/propconsole/internal/utils"
)

var (
	// ErrMissingCredentials is returned when email or password is blank.
	ErrMissingCredentials = errors.New("email and password are required")
	// ErrInvalidCredentials hides whether the email or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid login credentials")
	// ErrUserExists is returned by SignUp for an email that is taken.
	ErrUserExists = errors.New("user already registered")
	// ErrInvalidRefresh is returned for unknown, revoked or expired refresh tokens.
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

// UserStore is the subset of repository.UserRepo the service needs.
type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

// TokenStore is the subset of repository.TokenRepo the service needs.
type TokenStore interface {
	StoreRefresh(ctx context.Context, userID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	ConsumeRefresh(ctx context.Context, tokenHash string) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}

// Options configure token lifetimes and hashing cost.
type Options struct {
	Secret         string
	AccessTTL      time.Duration
	RefreshTTLDays int
	BcryptCost     int
}

// Service issues and revokes sessions.
type Service struct {
	users  UserStore
	tokens TokenStore
	opts   Options
	events broker
}

func NewService(users UserStore, tokens TokenStore, opts Options) *Service {
	if users == nil || tokens == nil {
		panic("nil store passed to auth.NewService")
	}
	if opts.AccessTTL <= 0 {
		opts.AccessTTL = 15 * time.Minute
	}
	if opts.RefreshTTLDays <= 0 {
		opts.RefreshTTLDays = 7
	}
	return &Service{users: users, tokens: tokens, opts: opts}
}

// Subscribe registers fn for every session change.  fn runs synchronously
// on the goroutine that caused the change and must not block.
func (s *Service) Subscribe(fn func(Event)) *Subscription {
	return s.events.add(fn)
}

// Secret returns the access-token signing secret.
func (s *Service) Secret() string { return s.opts.Secret }

// SignIn verifies credentials and opens a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	sess, err := s.issue(ctx, "", model.SessionUser{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	s.events.publish(Event{Type: SignedIn, SessionID: sess.ID, UserID: u.ID, Session: sess})
	return sess, nil
}

// SignUp creates an account and signs it in immediately.
func (s *Service) SignUp(ctx context.Context, email, password string) (*model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	u, err := s.users.Create(ctx, email, password, s.opts.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	sess, err := s.issue(ctx, "", model.SessionUser{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	s.events.publish(Event{Type: SignedIn, SessionID: sess.ID, UserID: u.ID, Session: sess})
	return sess, nil
}

// Refresh exchanges a refresh token for a new token pair.  The old
// refresh token is consumed atomically, so it can be exchanged at most
// once even when two requests present it together.  When sessionID is
// empty a new session id is minted.
func (s *Service) Refresh(ctx context.Context, sessionID, rawRefresh string) (*model.Session, error) {
	rawRefresh = strings.TrimSpace(rawRefresh)
	if rawRefresh == "" {
		return nil, ErrInvalidRefresh
	}
	hash := utils.HashRefreshRaw(rawRefresh)
	userID, err := s.tokens.ValidateRefresh(ctx, hash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("validate refresh: %w", err)
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	if err := s.tokens.ConsumeRefresh(ctx, hash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidRefresh
		}
		return nil, fmt.Errorf("consume refresh: %w", err)
	}
	sess, err := s.issue(ctx, sessionID, model.SessionUser{ID: u.ID, Email: u.Email})
	if err != nil {
		return nil, err
	}
	s.events.publish(Event{Type: TokenRefreshed, SessionID: sess.ID, UserID: u.ID, Session: sess})
	return sess, nil
}

// SignOut revokes the session's refresh token and announces the sign-out.
// The SignedOut event is published even when revocation fails so that
// local state never outlives a sign-out request.
func (s *Service) SignOut(ctx context.Context, sess *model.Session) error {
	if sess == nil {
		return nil
	}
	var err error
	if sess.RefreshToken != "" {
		err = s.tokens.RevokeByHash(ctx, utils.HashRefreshRaw(sess.RefreshToken))
	}
	s.events.publish(Event{Type: SignedOut, SessionID: sess.ID, UserID: sess.User.ID})
	if err != nil {
		return fmt.Errorf("revoke refresh: %w", err)
	}
	return nil
}

// SignOutAll revokes every refresh token of the session's user, ending
// the user's sessions on all devices, and announces sess as signed out.
// Other sessions of the user fail at their next refresh.
func (s *Service) SignOutAll(ctx context.Context, sess *model.Session) error {
	if sess == nil || sess.User.ID == "" {
		return nil
	}
	err := s.tokens.RevokeAllForUser(ctx, sess.User.ID)
	s.events.publish(Event{Type: SignedOut, SessionID: sess.ID, UserID: sess.User.ID})
	if err != nil {
		return fmt.Errorf("revoke all: %w", err)
	}
	return nil
}

func (s *Service) issue(ctx context.Context, sessionID string, user model.SessionUser) (*model.Session, error) {
	if sessionID == "" {
		id, err := utils.NewSessionID()
		if err != nil {
			return nil, fmt.Errorf("session id: %w", err)
		}
		sessionID = id
	}
	access, err := utils.NewAccessToken(s.opts.Secret, user.ID, user.Email, sessionID, s.opts.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access: %w", err)
	}
	refresh, err := utils.NewRefreshToken(s.opts.RefreshTTLDays)
	if err != nil {
		return nil, fmt.Errorf("issue refresh: %w", err)
	}
	if err := s.tokens.StoreRefresh(ctx, user.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, fmt.Errorf("save refresh: %w", err)
	}
	return &model.Session{
		ID:               sessionID,
		User:             user,
		AccessToken:      access.Token,
		AccessExpiresAt:  access.Exp,
		RefreshToken:     refresh.Raw,
		RefreshExpiresAt: refresh.Exp,
	}, nil
}
