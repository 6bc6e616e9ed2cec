package repositories

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"datadesigner/internal/models"
)

// DiagramRepository stores the elements and connections of projects. Rows
// are keyed by (project_id, id).
type DiagramRepository struct {
	db *gorm.DB
}

func NewDiagramRepository(db *gorm.DB) *DiagramRepository {
	return &DiagramRepository{db: db}
}

func (r *DiagramRepository) WithTx(tx *gorm.DB) *DiagramRepository {
	return &DiagramRepository{db: tx}
}

func (r *DiagramRepository) ListElements(ctx context.Context, projectID uuid.UUID) ([]models.Element, error) {
	var elements []models.Element
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&elements).Error
	return elements, err
}

func (r *DiagramRepository) ListConnections(ctx context.Context, projectID uuid.UUID) ([]models.Connection, error) {
	var connections []models.Connection
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&connections).Error
	return connections, err
}

var elementUpdateColumns = []string{"position", "kind", "name", "x", "y", "width", "height", "fields", "updated_at"}

// UpsertElements inserts new elements and overwrites existing ones in place.
func (r *DiagramRepository) UpsertElements(ctx context.Context, elements []models.Element) error {
	if len(elements) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns(elementUpdateColumns),
		}).
		Create(&elements).Error
}

var connectionUpdateColumns = []string{
	"position", "source_id", "target_id", "source_field", "target_field",
	"kind", "color", "stroke_width", "label", "updated_at",
}

func (r *DiagramRepository) UpsertConnections(ctx context.Context, connections []models.Connection) error {
	if len(connections) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns(connectionUpdateColumns),
		}).
		Create(&connections).Error
}

// DeleteElements removes the given elements and every connection that
// starts or ends at one of them.
func (r *DiagramRepository) DeleteElements(ctx context.Context, projectID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	db := r.db.WithContext(ctx)
	if err := db.
		Where("project_id = ? AND (source_id IN ? OR target_id IN ?)", projectID, ids, ids).
		Delete(&models.Connection{}).Error; err != nil {
		return err
	}
	return db.
		Where("project_id = ? AND id IN ?", projectID, ids).
		Delete(&models.Element{}).Error
}

func (r *DiagramRepository) DeleteConnections(ctx context.Context, projectID uuid.UUID, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Delete(&models.Connection{}).Error
}
