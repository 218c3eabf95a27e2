package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/hkarim/account-service/internal/auth"
	"github.com/hkarim/account-service/internal/mailer"
	"github.com/hkarim/account-service/pkg/logger"
)

// Common errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyInUse  = errors.New("email already in use")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAvatarNotFound     = errors.New("avatar not found")
	ErrSessionNotFound    = errors.New("session not found")
)

// Service handles account business logic
type Service struct {
	repo   Store
	hasher *auth.Hasher
	tokens *auth.TokenManager
	mail   mailer.Mailer
	log    *logger.Logger
}

// NewService creates a new account service with its collaborators injected
func NewService(repo Store, hasher *auth.Hasher, tokens *auth.TokenManager, mail mailer.Mailer, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		hasher: hasher,
		tokens: tokens,
		mail:   mail,
		log:    log,
	}
}

// Register creates a new account, triggers the welcome mail and issues the
// first session token. The email existence check and the insert are not
// atomic; the database unique index backstops the race.
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*User, string, error) {
	existing, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if existing != nil {
		return nil, "", ErrEmailAlreadyInUse
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Name:     req.Name,
		Email:    req.Email,
		Password: hashed,
		Age:      req.Age,
	}

	// Fire-and-forget: registration does not wait for, or fail on, mail delivery.
	mailCtx := context.WithoutCancel(ctx)
	go func() {
		if err := s.mail.SendWelcome(mailCtx, u.Email, u.Name); err != nil {
			s.log.Error().Err(err).Str("email", u.Email).Msg("failed to send welcome email")
		}
	}()

	created, err := s.repo.Create(ctx, u)
	if err != nil {
		return nil, "", err
	}

	// The token subject is the server-assigned id, so it can only be issued
	// once the row exists.
	token, err := s.tokens.Issue(created.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	created.Tokens = append(created.Tokens, token)
	if err := s.repo.SaveTokens(ctx, created.ID, created.Tokens); err != nil {
		return nil, "", err
	}

	return created, token, nil
}

// Login authenticates by email and password and appends a fresh session
// token. Unknown email and wrong password are indistinguishable to the
// caller so the endpoint cannot be used to enumerate accounts.
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*User, string, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, "", err
	}
	if u == nil {
		return nil, "", ErrInvalidCredentials
	}

	if !s.hasher.Compare(u.Password, req.Password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue token: %w", err)
	}

	u.Tokens = append(u.Tokens, token)
	if err := s.repo.SaveTokens(ctx, u.ID, u.Tokens); err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Logout removes exactly the presented token from the user's session
// collection; any other active sessions stay valid.
func (s *Service) Logout(ctx context.Context, userID int64, token string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	u.RemoveToken(token)
	return s.repo.SaveTokens(ctx, u.ID, u.Tokens)
}

// LogoutAll clears the user's entire session collection.
func (s *Service) LogoutAll(ctx context.Context, userID int64) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrUserNotFound
	}

	return s.repo.SaveTokens(ctx, u.ID, []string{})
}

// ValidateSession confirms the token is still in the user's active session
// collection. Satisfies the middleware.SessionValidator interface.
func (s *Service) ValidateSession(ctx context.Context, userID int64, token string) error {
	u, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil || !u.HasToken(token) {
		return ErrSessionNotFound
	}
	return nil
}

// List retrieves every user record, unfiltered and unpaginated.
func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

// GetByID retrieves a user by their ID
func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// Update applies the profile fields only when name, email, password and age
// are all present and non-zero; a partial request changes nothing yet still
// succeeds. The incoming password is hashed before that check is made,
// mirroring the contract downstream consumers already depend on.
func (s *Service) Update(ctx context.Context, id int64, req *UpdateUserRequest) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	hashed, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if !req.complete() {
		return u, nil
	}

	u.Name = req.Name
	u.Email = req.Email
	u.Password = hashed
	u.Age = req.Age

	return s.repo.Update(ctx, u)
}

// Delete removes the user and returns the deleted record. The avatar is
// stored on the row, so it is discarded with it.
func (s *Service) Delete(ctx context.Context, id int64) (*User, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if deleted == nil {
		return nil, ErrUserNotFound
	}
	return deleted, nil
}

// UploadAvatar normalizes the uploaded image to a 300x300 PNG and stores it
// as the user's avatar.
func (s *Service) UploadAvatar(ctx context.Context, id int64, data []byte) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	processed, err := processAvatar(data)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveAvatar(ctx, u.ID, processed); err != nil {
		return nil, err
	}

	u.Avatar = processed
	return u, nil
}

// DeleteAvatar clears the stored avatar field.
func (s *Service) DeleteAvatar(ctx context.Context, id int64) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}

	if err := s.repo.SaveAvatar(ctx, u.ID, nil); err != nil {
		return nil, err
	}

	u.Avatar = nil
	return u, nil
}

// GetAvatar returns the stored avatar bytes.
func (s *Service) GetAvatar(ctx context.Context, id int64) ([]byte, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil || len(u.Avatar) == 0 {
		return nil, ErrAvatarNotFound
	}
	return u.Avatar, nil
}
