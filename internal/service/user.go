package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	sferrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/abgdnv/storefront/internal/store"
	"github.com/abgdnv/storefront/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// UserService defines registration and credential verification.
type UserService interface {
	// Register creates a new account. Returns ErrEmailTaken if the email is in use.
	Register(ctx context.Context, dto RegisterDto) (*UserDto, error)

	// Login verifies credentials and returns a signed access token.
	// Returns ErrInvalidCredentials when the email or password does not match.
	Login(ctx context.Context, dto LoginDto) (*LoginResultDto, error)
}

// TokenConfig carries the parameters for access token issuance.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Users implements UserService with bcrypt password hashing and HS256 tokens.
type Users struct {
	repository store.UserStore
	tokens     TokenConfig
}

// NewUserService creates a new UserService with the provided repository.
func NewUserService(repo store.UserStore, tokens TokenConfig) *Users {
	return &Users{repository: repo, tokens: tokens}
}

// RegisterDto represents the data transfer object for creating an account.
type RegisterDto struct {
	Email    string `json:"email"    validate:"required,email"`
	Name     string `json:"name"     validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// LoginDto represents the data transfer object for credential verification.
type LoginDto struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDto represents the data transfer object for an account.
type UserDto struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// LoginResultDto carries the issued token and the account it belongs to.
type LoginResultDto struct {
	Token string  `json:"token"`
	User  UserDto `json:"user"`
}

func (s *Users) Register(ctx context.Context, dto RegisterDto) (*UserDto, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repository.Create(ctx, dto.Email, dto.Name, string(hash))
	if err != nil {
		return nil, err
	}
	return toUserDto(user), nil
}

func (s *Users) Login(ctx context.Context, dto LoginDto) (*LoginResultDto, error) {
	user, err := s.repository.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, sferrors.ErrUserNotFound) {
			return nil, sferrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(dto.Password)); err != nil {
		return nil, sferrors.ErrInvalidCredentials
	}

	signed, err := token.Generate(s.tokens.Secret, s.tokens.Issuer, user.ID.String(), user.IsAdmin, s.tokens.TTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &LoginResultDto{Token: signed, User: *toUserDto(user)}, nil
}

// toUserDto converts a store.User to a UserDto. The password hash never leaves the service.
func toUserDto(u *store.User) *UserDto {
	return &UserDto{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
