// Package users handles accounts: registration, login, password changes
// and the admin-facing listing surface.
package users

import (
	"context"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"droneMedicalDelivery/internal/apperr"
	"droneMedicalDelivery/internal/audit"
	"droneMedicalDelivery/internal/auth"
	"droneMedicalDelivery/models"
	"droneMedicalDelivery/repository"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

type Service struct {
	users    repository.UserRepositoryI
	sink     audit.Sink
	logger   *zap.Logger
	secret   string
	tokenTTL time.Duration
}

func NewService(users repository.UserRepositoryI, sink audit.Sink, logger *zap.Logger, jwtSecret string, tokenTTL time.Duration) *Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{users: users, sink: sink, logger: logger, secret: jwtSecret, tokenTTL: tokenTTL}
}

// RegisterInput describes a new account. Role and Type fall back to
// USER and INDIVIDUAL.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
	Type     models.UserType
}

func (s *Service) Register(ctx context.Context, in RegisterInput, actor audit.Actor) (*models.User, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.Invalidf("Name is required")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !emailPattern.MatchString(email) {
		return nil, apperr.Invalidf("Invalid email address")
	}
	if len(in.Password) < minPasswordLength {
		return nil, apperr.Invalidf("Password must be at least %d characters", minPasswordLength)
	}
	switch in.Role {
	case "", models.RoleUser, models.RoleStaff, models.RoleAdmin:
	default:
		return nil, apperr.Invalidf("Unknown role: %s", in.Role)
	}
	switch in.Type {
	case "", models.UserTypeHospital, models.UserTypePharmacy, models.UserTypeMedicalCenter, models.UserTypeIndividual:
	default:
		return nil, apperr.Invalidf("Unknown user type: %s", in.Type)
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, apperr.System(err)
	}
	if existing != nil {
		return nil, apperr.Conflictf("User with this email already exists")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.System(err)
	}
	user, err := s.users.Create(ctx, &models.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         in.Role,
		Type:         in.Type,
		IsActive:     true,
	})
	if err != nil {
		return nil, apperr.System(err)
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "USER_REGISTER",
		Description: "User " + user.Email + " registered",
		ActionData:  map[string]any{"email": user.Email, "role": user.Role},
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/users",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return user, nil
}

// Login verifies credentials and returns the user with a signed JWT.
// Unknown email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string, actor audit.Actor) (*models.User, string, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", apperr.System(err)
	}
	if user == nil || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, "", apperr.Invalidf("Invalid email or password")
	}
	if !user.IsActive {
		return nil, "", apperr.Preconditionf("Account is deactivated")
	}

	token, err := auth.IssueToken(s.secret, user, s.tokenTTL)
	if err != nil {
		return nil, "", apperr.System(err)
	}
	now := time.Now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		// Login still succeeds; the timestamp is advisory.
		s.logger.Warn("failed to record last login",
			zap.String("user_id", user.ID), zap.Error(err))
	} else {
		user.LastLoginAt = &now
	}

	s.sink.Emit(ctx, audit.Event{
		Action:      "USER_LOGIN",
		Description: "User " + user.Email + " logged in",
		Identity:    user.Email,
		Owner:       user.ID,
		What:        "/auth/login",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return user, token, nil
}

// ChangePassword rotates a user's password after verifying the old one.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string, actor audit.Actor) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return apperr.System(err)
	}
	if user == nil {
		return apperr.NotFoundf("User not found")
	}
	if !auth.VerifyPassword(user.PasswordHash, oldPassword) {
		return apperr.Invalidf("Current password is incorrect")
	}
	if len(newPassword) < minPasswordLength {
		return apperr.Invalidf("Password must be at least %d characters", minPasswordLength)
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return apperr.System(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return apperr.System(err)
	}
	s.sink.Emit(ctx, audit.Event{
		Action:      "USER_PASSWORD_CHANGE",
		Description: "User " + user.Email + " changed password",
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/users/" + user.ID + "/password",
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.System(err)
	}
	if user == nil {
		return nil, apperr.NotFoundf("User not found")
	}
	return user, nil
}

func (s *Service) List(ctx context.Context, p repository.ListUsersParams) ([]models.User, error) {
	out, err := s.users.List(ctx, p)
	if err != nil {
		return nil, apperr.System(err)
	}
	return out, nil
}

// Deactivate soft-deletes an account. The email becomes reusable.
func (s *Service) Deactivate(ctx context.Context, id string, actor audit.Actor) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return apperr.System(err)
	}
	if user == nil {
		return apperr.NotFoundf("User not found")
	}
	if err := s.users.SoftDelete(ctx, user.ID); err != nil {
		return apperr.System(err)
	}
	s.sink.Emit(ctx, audit.Event{
		Action:      "USER_DELETE",
		Description: "User " + user.Email + " deactivated",
		Identity:    actor.Identity(),
		Owner:       actor.Owner(),
		What:        "/users/" + user.ID,
		IPAddress:   actor.IPAddress,
		UserAgent:   actor.UserAgent,
	})
	return nil
}
