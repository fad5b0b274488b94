package service

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"
	"storefront/internal/repository"
)

var userLog = logrus.WithField("area", "auth")

const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid Credentials"
	msgUserNotFound       = "User not found"
	minPasswordLength     = 6
)

type TokenIssuer interface {
	Issue(id auth.Identity) (string, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type AuthResult struct {
	User  *models.User
	Token string
}

type UserService struct {
	users  repository.UserRepository
	tokens TokenIssuer
}

func NewUserService(users repository.UserRepository, tokens TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return nil, apperr.InvalidInput("Name is required")
	case email == "":
		return nil, apperr.InvalidInput("Email is required")
	case validate.Var(email, "email") != nil:
		return nil, apperr.InvalidInput("Email is invalid")
	case len(in.Password) < minPasswordLength:
		return nil, apperr.InvalidInput("Password must be at least 6 characters")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.InvalidInput(msgUserExists)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, translate(err, msgUserNotFound)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: models.RoleCustomer}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Wrap(apperr.KindInvalidInput, msgUserExists, err)
		}
		return nil, translate(err, msgUserNotFound)
	}

	userLog.WithField("user", user.ID.Hex()).Info("user registered")
	return s.issue(user)
}

// Authenticate checks the password and issues a token. Unknown emails and
// wrong passwords produce the same error.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.InvalidInput(msgInvalidCredentials)
	}
	if err != nil {
		return nil, translate(err, msgUserNotFound)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		userLog.WithField("user", user.ID.Hex()).Info("password mismatch")
		return nil, apperr.InvalidInput(msgInvalidCredentials)
	}
	return s.issue(user)
}

func (s *UserService) Profile(ctx context.Context, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, translate(err, msgUserNotFound)
	}
	return user, nil
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(auth.Identity{UserID: user.ID, Role: user.Role})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return &AuthResult{User: user, Token: token}, nil
}
