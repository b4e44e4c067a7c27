package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/markethub/internal/hash"
	"github.com/Skotchmaster/markethub/internal/logging"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/mykafka"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/transport"
	"github.com/Skotchmaster/markethub/internal/util"
)

type AuthService struct {
	Users     repo.UserRepo
	Referrals *ReferralService
	Events    *mykafka.Emitter
}

func NewAuthService(users repo.UserRepo, referrals *ReferralService, ev *mykafka.Emitter) *AuthService {
	return &AuthService{Users: users, Referrals: referrals, Events: ev}
}

// Register creates a regular user. A referral code that matches nobody is
// ignored. A reward failure is logged and does not undo the registration.
func (s *AuthService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" {
		return nil, fail(ErrValidation, "Invalid data")
	}

	if err := ensureFree(ctx, s.Users, 0, username, email); err != nil {
		return nil, err
	}

	var referredBy *uint
	if code := strings.ToUpper(strings.TrimSpace(req.ReferralCode)); code != "" {
		referrer, err := s.Users.GetUserByReferralCode(ctx, code)
		switch {
		case err == nil:
			referredBy = &referrer.ID
		case errors.Is(err, repo.ErrNotFound):
			l.Info("register_referral_ignored", "reason", "unknown referral code")
		default:
			return nil, err
		}
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}
	code, err := util.ReferralCode()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:       username,
		Email:          email,
		PasswordHash:   pwHash,
		FirstName:      strings.TrimSpace(req.FirstName),
		LastName:       strings.TrimSpace(req.LastName),
		ReferralCode:   code,
		ReferredBy:     referredBy,
		ProfilePicture: req.ProfilePicture,
	}
	if err := s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Username or email already exists")
		}
		return nil, err
	}

	if referredBy != nil && s.Referrals != nil {
		if _, err := s.Referrals.Reward(ctx, *referredBy); err != nil {
			l.Error("referral_reward_error", "referrer_id", *referredBy, "error", err)
		}
	}

	s.Events.Emit(ctx, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":       "user_registered",
		"userID":     user.ID,
		"username":   user.Username,
		"referredBy": user.ReferredBy,
	})
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, req transport.LoginRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", req.Username)

	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, fail(ErrValidation, "Username and password are required")
	}

	user, err := s.Users.GetUserByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "status", 401, "reason", "unknown username")
			return nil, fail(ErrInvalidCredentials, "Invalid credentials")
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "password mismatch")
		return nil, fail(ErrInvalidCredentials, "Invalid credentials")
	}
	if hash.Outdated(user.PasswordHash) {
		s.rehash(ctx, user, req.Password)
	}

	s.Events.Emit(ctx, mykafka.TopicUserEvents, user.ID, map[string]any{
		"type":     "user_logged_in",
		"userID":   user.ID,
		"username": user.Username,
	})
	return user, nil
}

// rehash upgrades a digest made with an older bcrypt cost. Failures keep
// the old digest and never block the login.
func (s *AuthService) rehash(ctx context.Context, user *models.User, password string) {
	digest, err := hash.HashPassword(password)
	if err == nil {
		user.PasswordHash = digest
		err = s.Users.SaveUser(ctx, user)
	}
	if err != nil {
		logging.FromContext(ctx).Warn("password_rehash_error", "user_id", user.ID, "error", err)
	}
}

// ensureFree reports a conflict when username or email belongs to a user
// other than selfID.
func ensureFree(ctx context.Context, users repo.UserRepo, selfID uint, username, email string) error {
	if username != "" {
		u, err := users.GetUserByUsername(ctx, username)
		if err == nil && u.ID != selfID {
			return fail(ErrConflict, "Username already exists")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
	}
	if email != "" {
		u, err := users.GetUserByEmail(ctx, email)
		if err == nil && u.ID != selfID {
			return fail(ErrConflict, "Email already exists")
		}
		if err != nil && !errors.Is(err, repo.ErrNotFound) {
			return err
		}
	}
	return nil
}
