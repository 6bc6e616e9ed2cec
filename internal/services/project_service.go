package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/models"
	"datadesigner/internal/repositories"
)

// ProjectAccess decides whether a user may touch a loaded project.
type ProjectAccess interface {
	CanAccess(project *models.Project, userID uuid.UUID) bool
}

// ProjectService reads and reconciles whole project snapshots. Every
// operation checks that the caller owns the project.
type ProjectService struct {
	db          *gorm.DB
	projectRepo *repositories.ProjectRepository
	diagramRepo *repositories.DiagramRepository
	access      ProjectAccess
	log         logrus.FieldLogger
}

func NewProjectService(
	db *gorm.DB,
	projectRepo *repositories.ProjectRepository,
	diagramRepo *repositories.DiagramRepository,
	access ProjectAccess,
	log logrus.FieldLogger,
) *ProjectService {
	return &ProjectService{
		db:          db,
		projectRepo: projectRepo,
		diagramRepo: diagramRepo,
		access:      access,
		log:         log,
	}
}

// Diagram is a stored project with its rows in client order.
type Diagram struct {
	Project     *models.Project
	Elements    []models.Element
	Connections []models.Connection
}

func (s *ProjectService) owned(ctx context.Context, repo *repositories.ProjectRepository, userID, projectID uuid.UUID, lock bool) (*models.Project, error) {
	var (
		project *models.Project
		err     error
	)
	if lock {
		project, err = repo.GetByIDForUpdate(ctx, projectID)
	} else {
		project, err = repo.GetByID(ctx, projectID)
	}
	if err != nil {
		return nil, s.internal(err, projectID, "failed to load project")
	}
	if project == nil {
		return nil, apperrors.NotFound("project not found")
	}
	if !s.access.CanAccess(project, userID) {
		return nil, apperrors.Forbidden("project belongs to another user")
	}
	return project, nil
}

func (s *ProjectService) internal(err error, projectID uuid.UUID, msg string) error {
	s.log.WithError(err).WithField("project_id", projectID).Error(msg)
	return apperrors.Internal(err)
}

// Load returns the stored rows of a project.
func (s *ProjectService) Load(ctx context.Context, userID, projectID uuid.UUID) (*Diagram, error) {
	project, err := s.owned(ctx, s.projectRepo, userID, projectID, false)
	if err != nil {
		return nil, err
	}
	elements, err := s.diagramRepo.ListElements(ctx, projectID)
	if err != nil {
		return nil, s.internal(err, projectID, "failed to list elements")
	}
	connections, err := s.diagramRepo.ListConnections(ctx, projectID)
	if err != nil {
		return nil, s.internal(err, projectID, "failed to list connections")
	}
	return &Diagram{Project: project, Elements: elements, Connections: connections}, nil
}

func (s *ProjectService) Get(ctx context.Context, userID, projectID uuid.UUID) (*dto.Project, error) {
	d, err := s.Load(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	return &dto.Project{
		ID:          d.Project.ID.String(),
		Name:        d.Project.Name,
		Elements:    elementsToDTO(d.Elements),
		Connections: connectionsToDTO(d.Connections),
		Version:     d.Project.Version,
		CreatedAt:   d.Project.CreatedAt,
		UpdatedAt:   d.Project.UpdatedAt,
	}, nil
}

// Sync makes the stored project equal to the submitted snapshot. Elements
// and connections are matched by id: present ones are overwritten, new ones
// inserted and missing ones deleted together with their connections. The
// whole reconciliation runs in one transaction holding the project row.
func (s *ProjectService) Sync(ctx context.Context, userID, projectID uuid.UUID, req dto.SyncRequest) (*dto.SyncResult, error) {
	if err := dto.Validate(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, "invalid snapshot", err)
	}
	if err := dto.CheckSnapshot(req.Elements, req.Connections); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	var result *dto.SyncResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		projects := s.projectRepo.WithTx(tx)
		diagrams := s.diagramRepo.WithTx(tx)

		project, err := s.owned(ctx, projects, userID, projectID, true)
		if err != nil {
			return err
		}
		if req.BaseVersion != nil && *req.BaseVersion != project.Version {
			return apperrors.Conflict("project was modified since it was loaded")
		}

		current, err := diagrams.ListElements(ctx, projectID)
		if err != nil {
			return s.internal(err, projectID, "failed to list elements")
		}
		currentConns, err := diagrams.ListConnections(ctx, projectID)
		if err != nil {
			return s.internal(err, projectID, "failed to list connections")
		}

		elementRefs := make([]string, len(req.Elements))
		elements := make([]models.Element, len(req.Elements))
		keepElements := make(map[string]struct{}, len(req.Elements))
		for i, e := range req.Elements {
			elementRefs[i] = e.ID
			elements[i] = elementToModel(projectID, i, e)
			keepElements[e.ID] = struct{}{}
		}
		if err := diagrams.UpsertElements(ctx, elements); err != nil {
			return s.internal(err, projectID, "failed to upsert elements")
		}

		var staleElements []string
		for _, e := range current {
			if _, ok := keepElements[e.ID]; !ok {
				staleElements = append(staleElements, e.ID)
			}
		}
		if err := diagrams.DeleteElements(ctx, projectID, staleElements); err != nil {
			return s.internal(err, projectID, "failed to delete elements")
		}

		connectionRefs := make([]string, len(req.Connections))
		connections := make([]models.Connection, len(req.Connections))
		keepConns := make(map[string]struct{}, len(req.Connections))
		for i, c := range req.Connections {
			connectionRefs[i] = c.ID
			connections[i] = connectionToModel(projectID, i, c)
			keepConns[c.ID] = struct{}{}
		}
		if err := diagrams.UpsertConnections(ctx, connections); err != nil {
			return s.internal(err, projectID, "failed to upsert connections")
		}

		var staleConns []string
		for _, c := range currentConns {
			if _, ok := keepConns[c.ID]; !ok {
				staleConns = append(staleConns, c.ID)
			}
		}
		if err := diagrams.DeleteConnections(ctx, projectID, staleConns); err != nil {
			return s.internal(err, projectID, "failed to delete connections")
		}

		if err := projects.CommitSnapshot(ctx, project, elementRefs, connectionRefs); err != nil {
			if errors.Is(err, repositories.ErrVersionMismatch) {
				return apperrors.Conflict("project was modified concurrently")
			}
			return s.internal(err, projectID, "failed to commit snapshot")
		}

		storedElements, err := diagrams.ListElements(ctx, projectID)
		if err != nil {
			return s.internal(err, projectID, "failed to reload elements")
		}
		storedConns, err := diagrams.ListConnections(ctx, projectID)
		if err != nil {
			return s.internal(err, projectID, "failed to reload connections")
		}
		result = &dto.SyncResult{
			Elements:    elementsToDTO(storedElements),
			Connections: connectionsToDTO(storedConns),
			Version:     project.Version,
		}
		return nil
	})
	if err != nil {
		var appErr *apperrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, s.internal(err, projectID, "sync transaction failed")
	}

	s.log.WithFields(logrus.Fields{
		"project_id":  projectID,
		"elements":    len(result.Elements),
		"connections": len(result.Connections),
		"version":     result.Version,
	}).Info("project synced")
	return result, nil
}

func (s *ProjectService) Rename(ctx context.Context, userID, projectID uuid.UUID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validation("project name is required")
	}
	if _, err := s.owned(ctx, s.projectRepo, userID, projectID, false); err != nil {
		return err
	}
	if err := s.projectRepo.Rename(ctx, projectID, name); err != nil {
		return s.internal(err, projectID, "failed to rename project")
	}
	return nil
}

// Delete removes the project and everything it owns.
func (s *ProjectService) Delete(ctx context.Context, userID, projectID uuid.UUID) error {
	if _, err := s.owned(ctx, s.projectRepo, userID, projectID, false); err != nil {
		return err
	}
	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		return s.internal(err, projectID, "failed to delete project")
	}
	s.log.WithField("project_id", projectID).Info("project deleted")
	return nil
}
