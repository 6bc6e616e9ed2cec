package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/models"
	"datadesigner/internal/repositories"
)

type UserService struct {
	userRepo    *repositories.UserRepository
	projectRepo *repositories.ProjectRepository
	log         logrus.FieldLogger
}

func NewUserService(userRepo *repositories.UserRepository, projectRepo *repositories.ProjectRepository, log logrus.FieldLogger) *UserService {
	return &UserService{
		userRepo:    userRepo,
		projectRepo: projectRepo,
		log:         log,
	}
}

// GetUserData returns the profile and project list of userID, newest
// project first.
func (s *UserService) GetUserData(ctx context.Context, userID uuid.UUID) (*dto.UserData, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if user == nil {
		return nil, apperrors.NotFound("user not found")
	}

	projects, err := s.projectRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("failed to list projects")
		return nil, apperrors.Internal(err)
	}

	data := &dto.UserData{
		ID:          user.ID.String(),
		Username:    user.Username,
		Email:       user.Email,
		ProjectRefs: make([]string, 0, len(projects)),
		Projects:    make([]dto.ProjectSummary, 0, len(projects)),
	}
	for _, p := range projects {
		data.ProjectRefs = append(data.ProjectRefs, p.ID.String())
		data.Projects = append(data.Projects, dto.ProjectSummary{ID: p.ID.String(), Name: p.Name, UpdatedAt: p.UpdatedAt})
	}
	return data, nil
}

// CreateProject adds an empty project owned by userID.
func (s *UserService) CreateProject(ctx context.Context, userID uuid.UUID, name string) (uuid.UUID, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return uuid.Nil, apperrors.Validation("project name is required")
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return uuid.Nil, apperrors.Internal(err)
	}
	if user == nil {
		return uuid.Nil, apperrors.NotFound("user not found")
	}

	project := &models.Project{UserID: userID, Name: name}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("failed to create project")
		return uuid.Nil, apperrors.Internal(err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "project_id": project.ID}).Info("project created")
	return project.ID, nil
}
