package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/api/idtoken"
	"tailorbooks-backend/internal/config"
	"tailorbooks-backend/internal/domain"
	"tailorbooks-backend/internal/repository"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrEmailTaken         = errors.New("email already used")
)

type AuthService struct {
	Config       config.Config
	Users        repository.UserRepository
	Logger       *slog.Logger
	FirebaseAuth *fbauth.Client
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	User         domain.User
	ExpiresAt    time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type StaffInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.UserRole
}

type LoginInput struct {
	Email    string
	Password string
}

type GoogleLoginInput struct {
	IDToken string
	Email   string
	Name    string
}

type RefreshInput struct {
	RefreshToken string
}

// Register creates an owner account; the owner manages their own books.
func (s AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	user, err := s.createWithPassword(ctx, nil, in.Name, in.Email, in.Password, domain.RoleManager)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

// CreateStaff adds an account that works on the caller's books.
func (s AuthService) CreateStaff(ctx context.Context, ownerUserID int64, in StaffInput) (*domain.User, error) {
	role := in.Role
	if role == "" {
		role = domain.RoleStaff
	}
	if role == domain.RoleAdmin {
		return nil, invalid("staff cannot be created as admin")
	}
	return s.createWithPassword(ctx, &ownerUserID, in.Name, in.Email, in.Password, role)
}

func (s AuthService) createWithPassword(ctx context.Context, ownerID *int64, name, email, password string, role domain.UserRole) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.Users.Create(ctx, repository.CreateUserParams{
		OwnerID:      ownerID,
		Name:         name,
		Email:        strings.TrimSpace(email),
		Role:         role,
		PasswordHash: ptr(string(hash)),
	})
	if err != nil {
		if repository.IsDuplicate(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	user, err := s.Users.GetByEmail(ctx, strings.TrimSpace(in.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(user)
}

func (s AuthService) LoginWithGoogle(ctx context.Context, in GoogleLoginInput) (*AuthResult, error) {
	email := in.Email
	switch {
	case s.FirebaseAuth != nil:
		tok, err := s.FirebaseAuth.VerifyIDToken(ctx, in.IDToken)
		if err != nil {
			return nil, fmt.Errorf("%w: firebase: %v", ErrInvalidToken, err)
		}
		if v, ok := tok.Claims["email"].(string); ok && v != "" {
			email = v
		}
	case s.Config.GoogleClientID != "":
		payload, err := idtoken.Validate(ctx, in.IDToken, s.Config.GoogleClientID)
		if err != nil {
			return nil, fmt.Errorf("%w: google: %v", ErrInvalidToken, err)
		}
		if v, ok := payload.Claims["email"].(string); ok && v != "" {
			email = v
		}
	default:
		return nil, fmt.Errorf("%w: google sign-in is not configured", ErrInvalidToken)
	}

	user, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.Users.Create(ctx, repository.CreateUserParams{
			Name:     in.Name,
			Email:    email,
			Role:     domain.RoleManager,
			IsGoogle: true,
		})
	}
	if err != nil {
		return nil, err
	}
	return s.issueTokens(user)
}

func (s AuthService) Refresh(ctx context.Context, in RefreshInput) (*AuthResult, error) {
	claims, err := ParseToken(s.Config.JWTSecret, in.RefreshToken)
	if err != nil || claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.issueTokens(user)
}

// ParseToken validates an HS256 token and returns its claims.
func ParseToken(secret, raw string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s AuthService) issueTokens(user *domain.User) (*AuthResult, error) {
	return IssueTokens(s.Config, user, time.Now())
}

// IssueTokens signs an access token carrying the account owner and a refresh token.
func IssueTokens(cfg config.Config, user *domain.User, now time.Time) (*AuthResult, error) {
	accessExp := now.Add(cfg.AccessTokenTTL)
	refreshExp := now.Add(cfg.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        strconv.FormatInt(user.ID, 10),
		"owner":      strconv.FormatInt(user.AccountID(), 10),
		"name":       user.Name,
		"email":      user.Email,
		"role":       string(user.Role),
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        strconv.FormatInt(user.ID, 10),
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		User:         *user,
		ExpiresAt:    accessExp,
	}, nil
}

func ptr[T any](v T) *T { return &v }
