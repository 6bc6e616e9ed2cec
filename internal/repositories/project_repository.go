package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"datadesigner/internal/models"
)

// ErrVersionMismatch is returned when a versioned update loses the race.
var ErrVersionMismatch = errors.New("project version changed concurrently")

type ProjectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *ProjectRepository) WithTx(tx *gorm.DB) *ProjectRepository {
	return &ProjectRepository{db: tx}
}

func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID returns nil, nil when the project does not exist.
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByIDForUpdate locks the project row until the surrounding transaction
// ends. The lock clause is ignored by sqlite, which serializes writers.
func (r *ProjectRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&projects).Error
	return projects, err
}

func (r *ProjectRepository) Rename(ctx context.Context, id uuid.UUID, name string) error {
	return r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ?", id).
		Update("name", name).Error
}

// CommitSnapshot replaces the reference lists and moves the version from
// expected to expected+1. A concurrent writer that got there first makes it
// fail with ErrVersionMismatch.
func (r *ProjectRepository) CommitSnapshot(ctx context.Context, project *models.Project, elementRefs, connectionRefs []string) error {
	if elementRefs == nil {
		elementRefs = []string{}
	}
	if connectionRefs == nil {
		connectionRefs = []string{}
	}
	next := project.Version + 1
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.Project{}).
		Where("id = ? AND version = ?", project.ID, project.Version).
		Updates(map[string]any{
			"element_refs":    datatypes.NewJSONSlice(elementRefs),
			"connection_refs": datatypes.NewJSONSlice(connectionRefs),
			"version":         next,
			"updated_at":      now,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionMismatch
	}
	project.ElementRefs = elementRefs
	project.ConnectionRefs = connectionRefs
	project.Version = next
	project.UpdatedAt = now
	return nil
}

// Delete removes the project together with its elements and connections.
func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", id).Delete(&models.Connection{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", id).Delete(&models.Element{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
}
