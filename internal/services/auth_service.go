package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/models"
	"datadesigner/internal/repositories"
	"datadesigner/internal/utils"
)

type AuthService struct {
	userRepo    *repositories.UserRepository
	projectRepo *repositories.ProjectRepository
	tokens      *utils.TokenManager
	blacklist   repositories.TokenBlacklist
	log         logrus.FieldLogger
}

func NewAuthService(
	userRepo *repositories.UserRepository,
	projectRepo *repositories.ProjectRepository,
	tokens *utils.TokenManager,
	blacklist repositories.TokenBlacklist,
	log logrus.FieldLogger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		tokens:      tokens,
		blacklist:   blacklist,
		log:         log,
	}
}

// Register creates an account and returns its id. It does not sign the
// user in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (uuid.UUID, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if err := dto.Validate(req); err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.KindValidation, "invalid registration data", err)
	}

	existing, err := s.userRepo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		s.log.WithError(err).Error("register: lookup by email failed")
		return uuid.Nil, apperrors.Internal(err)
	}
	if existing != nil {
		return uuid.Nil, apperrors.AlreadyExists("user already exists")
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return uuid.Nil, apperrors.Internal(err)
	}

	user := &models.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	if err := s.userRepo.Create(ctx, user); err != nil {
		s.log.WithError(err).WithField("email", req.Email).Error("register: create user failed")
		return uuid.Nil, apperrors.Internal(err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user.ID, nil
}

// Login exchanges an email and password for a bearer token. Unknown email
// and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err != nil {
		s.log.WithError(err).Error("login: lookup by email failed")
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, apperrors.Unauthorized("invalid credentials")
	}

	if err := utils.VerifyPassword(user.PasswordHash, password); err != nil {
		if errors.Is(err, utils.ErrPasswordMismatch) {
			return nil, apperrors.Unauthorized("invalid credentials")
		}
		s.log.WithError(err).WithField("user_id", user.ID).Error("login: stored hash unreadable")
		return nil, apperrors.Internal(err)
	}

	return s.issue(ctx, user)
}

func (s *AuthService) issue(ctx context.Context, user *models.User) (*dto.LoginResponse, error) {
	issued, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Warn("failed to record last login")
	}
	return &dto.LoginResponse{
		Token:     issued.Token,
		ExpiresAt: issued.ExpiresAt,
		User:      userSummary(user),
	}, nil
}

// Resolve maps a bearer token to the user it was issued for.
func (s *AuthService) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.KindUnauthorized, "invalid or expired token", err)
	}

	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.log.WithError(err).Error("token blacklist lookup failed")
		return uuid.Nil, apperrors.Internal(err)
	}
	if revoked {
		return uuid.Nil, apperrors.Unauthorized("token has been revoked")
	}

	userID, err := claims.UserID()
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.KindUnauthorized, "invalid token subject", err)
	}
	return userID, nil
}

// Logout revokes the token until it would have expired on its own.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return apperrors.Wrap(apperrors.KindUnauthorized, "invalid or expired token", err)
	}
	if err := s.blacklist.Blacklist(ctx, claims.ID, s.tokens.Remaining(claims)); err != nil {
		s.log.WithError(err).Error("failed to revoke token")
		return apperrors.Internal(err)
	}
	return nil
}

// Authorize reports whether userID owns the project. A missing project is
// reported as not owned.
func (s *AuthService) Authorize(ctx context.Context, userID, projectID uuid.UUID) (bool, error) {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return project != nil && s.CanAccess(project, userID), nil
}

// CanAccess is the ownership rule behind Authorize, for callers that already
// hold the project row.
func (s *AuthService) CanAccess(project *models.Project, userID uuid.UUID) bool {
	return project.UserID == userID
}
