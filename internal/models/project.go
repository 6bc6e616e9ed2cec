package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Project is one diagram. ElementRefs and ConnectionRefs mirror the ids of
// the rows it owns; Version increments on every sync.
type Project struct {
	ID             uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID         uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Name           string                      `gorm:"type:text;not null" json:"name"`
	ElementRefs    datatypes.JSONSlice[string] `json:"element_refs"`
	ConnectionRefs datatypes.JSONSlice[string] `json:"connection_refs"`
	Version        uint64                      `gorm:"not null;default:0" json:"version"`
	CreatedAt      time.Time                   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time                   `gorm:"autoUpdateTime" json:"updated_at"`

	Elements    []Element    `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
	Connections []Connection `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.ElementRefs == nil {
		p.ElementRefs = datatypes.JSONSlice[string]{}
	}
	if p.ConnectionRefs == nil {
		p.ConnectionRefs = datatypes.JSONSlice[string]{}
	}
	return
}
