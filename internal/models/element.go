package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ElementField is stored inline as JSON; fields have no identity outside
// their element.
type ElementField struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	IsPrimary bool   `json:"isPrimary"`
}

// Element is keyed by the client id scoped to its project. Position keeps
// the client ordering.
type Element struct {
	ProjectID uuid.UUID `gorm:"type:uuid;primaryKey"`
	ID        string    `gorm:"type:varchar(64);primaryKey"`
	Position  int       `gorm:"not null;default:0"`
	Kind      string    `gorm:"type:varchar(32);not null"`
	Name      string    `gorm:"type:text"`
	X         *float64
	Y         *float64
	Width     float64
	Height    float64
	Fields    datatypes.JSONSlice[ElementField]
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

type Connection struct {
	ProjectID   uuid.UUID `gorm:"type:uuid;primaryKey"`
	ID          string    `gorm:"type:varchar(64);primaryKey"`
	Position    int       `gorm:"not null;default:0"`
	SourceID    string    `gorm:"type:varchar(64);not null;index"`
	TargetID    string    `gorm:"type:varchar(64);not null;index"`
	SourceField string    `gorm:"type:varchar(64)"`
	TargetField string    `gorm:"type:varchar(64)"`
	Kind        string    `gorm:"type:varchar(16);not null"`
	Color       string    `gorm:"type:varchar(32)"`
	StrokeWidth float64
	Label       string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}
