package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"vidtube/internal/model"
	"vidtube/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserExists         = errors.New("user with email or username already exists")
	ErrUserNotFound       = errors.New("user does not exist")
	ErrInvalidCredential  = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized request")
	ErrInvalidAccessToken = errors.New("invalid access token")
	ErrTokenExpiredOrUsed = errors.New("refresh token is expired or used")
	ErrWrongOldPassword   = errors.New("invalid old password")
)

// TokenConfig carries the signing material and expiries for both token
// kinds. Separate secrets bound the blast radius of a leaked access token.
type TokenConfig struct {
	AccessSecret  string
	AccessExpiry  time.Duration
	RefreshSecret string
	RefreshExpiry time.Duration
}

// CredentialStore is the slice of the user repository the auth flows need.
type CredentialStore interface {
	GetByID(id uint) (*model.User, error)
	GetByUsernameOrEmail(username, email string) (*model.User, error)
	UpdateRefreshToken(userID uint, token *string) error
	SwapRefreshToken(userID uint, current, next string) (bool, error)
	UpdatePasswordHash(userID uint, hash string) error
}

type AuthService struct {
	users  CredentialStore
	tokens TokenConfig
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type AuthResult struct {
	User   *model.User
	Tokens TokenPair
}

func NewAuthService(users CredentialStore, tokens TokenConfig) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Login verifies credentials and issues a fresh token pair. The identifier
// may be a username or an email; stored values are lowercase so the lookup
// lowercases the input.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if (username == "" && email == "") || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByUsernameOrEmail(username, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredential
	}

	pair, err := s.issueTokenPair(user.ID)
	if err != nil {
		return nil, err
	}

	Sanitize(user)
	return &AuthResult{User: user, Tokens: *pair}, nil
}

// Logout unsets the stored refresh token so a later rotation attempt finds
// nothing to match and fails closed.
func (s *AuthService) Logout(userID uint) error {
	return s.users.UpdateRefreshToken(userID, nil)
}

// RotateRefreshToken exchanges a valid refresh token for a new pair. The
// incoming token must exactly match the stored one; the swap is atomic, so
// a superseded token (or a second concurrent rotation) fails with
// ErrTokenExpiredOrUsed. A refresh token is single-use per rotation cycle.
func (s *AuthService) RotateRefreshToken(incoming string) (*TokenPair, error) {
	if incoming == "" {
		return nil, ErrUnauthorized
	}

	claims, err := jwtutil.ParseRefreshToken(s.tokens.RefreshSecret, incoming)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthorized
	}

	accessToken, refreshToken, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	swapped, err := s.users.SwapRefreshToken(user.ID, incoming, refreshToken)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, ErrTokenExpiredOrUsed
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// ChangePassword rehashes only when the old password verifies; nothing else
// on the record is validated or touched.
func (s *AuthService) ChangePassword(userID uint, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return ErrInvalidInput
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return ErrWrongOldPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password failed: %w", err)
	}
	return s.users.UpdatePasswordHash(userID, string(hash))
}

// ResolveSessionUser maps a verified access-token subject to the stored
// user, scrubbed of password hash and refresh token before it is attached
// to a request context.
func (s *AuthService) ResolveSessionUser(userID uint) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidAccessToken
	}
	Sanitize(user)
	return user, nil
}

// ParseAccessToken verifies signature and expiry against the access secret.
func (s *AuthService) ParseAccessToken(token string) (*jwtutil.AccessClaims, error) {
	claims, err := jwtutil.ParseAccessToken(s.tokens.AccessSecret, token)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// issueTokenPair loads the user, signs both tokens, and persists the new
// refresh token, overwriting any prior one. At most one refresh token is
// valid per user at any time; only the token column is written.
func (s *AuthService) issueTokenPair(userID uint) (*TokenPair, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("issue token pair: user %d not found", userID)
	}

	accessToken, refreshToken, err := s.generateTokens(user)
	if err != nil {
		return nil, err
	}

	if err := s.users.UpdateRefreshToken(user.ID, &refreshToken); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func (s *AuthService) generateTokens(user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = jwtutil.GenerateAccessToken(
		s.tokens.AccessSecret, s.tokens.AccessExpiry,
		user.ID, user.Email, user.Username, user.FullName,
	)
	if err != nil {
		return "", "", err
	}

	refreshToken, err = jwtutil.GenerateRefreshToken(
		s.tokens.RefreshSecret, s.tokens.RefreshExpiry, user.ID,
	)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Sanitize blanks the fields that must never leave the service layer.
func Sanitize(user *model.User) {
	user.PasswordHash = ""
	user.RefreshToken = nil
}
