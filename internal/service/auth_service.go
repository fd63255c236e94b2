package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/catzoCode/catzoteam-project/internal/config"
	"github.com/catzoCode/catzoteam-project/internal/domain"
	"github.com/catzoCode/catzoteam-project/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

type AuthService struct {
	Config config.Config
	Staff  repository.StaffRepository
	Logger *slog.Logger
}

type AuthResult struct {
	AccessToken  string
	RefreshToken string
	Staff        domain.StaffAccount
	ExpiresAt    time.Time
}

type LoginInput struct {
	Email    string
	Password string
}

type RegisterStaffInput struct {
	Name     string
	Email    string
	Phone    string
	Branch   string
	Role     domain.UserRole
	Password string
	JoinDate time.Time
}

func (s AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	staff, err := s.Staff.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !staff.Active || staff.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*staff.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueTokens(staff)
}

// RegisterStaff creates a staff account with a hashed password. Role defaults
// to staff; only admins reach this path through the router.
func (s AuthService) RegisterStaff(ctx context.Context, in RegisterStaffInput) (*domain.StaffAccount, error) {
	if in.Role == "" {
		in.Role = domain.RoleStaff
	}
	if in.JoinDate.IsZero() {
		in.JoinDate = time.Now()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	staff, err := s.Staff.Create(ctx, repository.CreateStaffInput{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Branch:       in.Branch,
		Role:         in.Role,
		PasswordHash: string(hash),
		JoinDate:     in.JoinDate,
	})
	if err != nil {
		return nil, err
	}
	s.Logger.Info("staff account created", "staff_id", staff.ID, "role", staff.Role, "branch", staff.Branch)
	return staff, nil
}

func (s AuthService) ChangePassword(ctx context.Context, staffID int64, current, next string) error {
	staff, err := s.Staff.GetByID(ctx, staffID)
	if err != nil {
		return err
	}
	if staff.PasswordHash == nil {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*staff.PasswordHash), []byte(current)); err != nil {
		return ErrInvalidCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.Staff.UpdatePassword(ctx, staffID, string(hash))
}

func (s AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	token, err := jwt.Parse(refreshToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(s.Config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["token_type"] != "refresh" {
		return nil, ErrInvalidToken
	}
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, ErrInvalidToken
	}
	staffID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	staff, err := s.Staff.GetByID(ctx, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	if !staff.Active {
		return nil, ErrInvalidToken
	}
	return s.issueTokens(staff)
}

func (s AuthService) issueTokens(staff *domain.StaffAccount) (*AuthResult, error) {
	now := time.Now()
	accessExp := now.Add(s.Config.AccessTokenTTL)
	refreshExp := now.Add(s.Config.RefreshTokenTTL)

	access, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", staff.ID),
		"email":      staff.Email,
		"role":       staff.Role,
		"branch":     staff.Branch,
		"token_type": "access",
		"exp":        accessExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	refresh, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":        fmt.Sprintf("%d", staff.ID),
		"token_type": "refresh",
		"exp":        refreshExp.Unix(),
		"iat":        now.Unix(),
	}).SignedString([]byte(s.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		AccessToken:  access,
		RefreshToken: refresh,
		Staff:        *staff,
		ExpiresAt:    accessExp,
	}, nil
}
