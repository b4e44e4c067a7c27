package service

import (
	"context"
	"errors"
	"strings"

	"github.com/Skotchmaster/markethub/internal/hash"
	"github.com/Skotchmaster/markethub/internal/models"
	"github.com/Skotchmaster/markethub/internal/repo"
	"github.com/Skotchmaster/markethub/internal/transport"
)

type UserService struct {
	Users repo.UserRepo
}

func NewUserService(users repo.UserRepo) *UserService {
	return &UserService{Users: users}
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	u, err := s.Users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fail(ErrNotFound, "User not found")
		}
		return nil, err
	}
	return u, nil
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Users.ListUsers(ctx)
}

// Update applies req to user id on behalf of actorID. Only the user
// themselves or an admin may do so, and only an admin may change isAdmin.
func (s *UserService) Update(ctx context.Context, actorID, id uint, req transport.UpdateUserRequest) (*models.User, error) {
	actor, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID != id && !actor.IsAdmin {
		return nil, fail(ErrForbidden, "Forbidden")
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var username, email string
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
	}
	if req.Email != nil {
		email = strings.TrimSpace(*req.Email)
	}
	if err := ensureFree(ctx, s.Users, id, username, email); err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if email != "" {
		user.Email = email
	}
	if req.Password != nil && *req.Password != "" {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.ProfilePicture != nil {
		user.ProfilePicture = req.ProfilePicture
	}
	if req.IsAdmin != nil && actor.IsAdmin {
		user.IsAdmin = *req.IsAdmin
	}

	if err := s.Users.SaveUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fail(ErrConflict, "Username or email already exists")
		}
		return nil, err
	}
	return user, nil
}
