package services

import (
	"github.com/google/uuid"

	"datadesigner/internal/dto"
	"datadesigner/internal/models"
)

func elementToModel(projectID uuid.UUID, position int, e dto.Element) models.Element {
	fields := make([]models.ElementField, len(e.Fields))
	for i, f := range e.Fields {
		fields[i] = models.ElementField{ID: f.ID, Name: f.Name, Type: f.Type, IsPrimary: f.IsPrimary}
	}
	return models.Element{
		ProjectID: projectID,
		ID:        e.ID,
		Position:  position,
		Kind:      e.Type,
		Name:      e.Name,
		X:         e.X,
		Y:         e.Y,
		Width:     e.Width,
		Height:    e.Height,
		Fields:    fields,
	}
}

func elementToDTO(m models.Element) dto.Element {
	fields := make([]dto.Field, len(m.Fields))
	for i, f := range m.Fields {
		fields[i] = dto.Field{ID: f.ID, Name: f.Name, Type: f.Type, IsPrimary: f.IsPrimary}
	}
	return dto.Element{
		ID:     m.ID,
		Type:   m.Kind,
		Name:   m.Name,
		X:      m.X,
		Y:      m.Y,
		Width:  m.Width,
		Height: m.Height,
		Fields: fields,
	}
}

func connectionToModel(projectID uuid.UUID, position int, c dto.Connection) models.Connection {
	return models.Connection{
		ProjectID:   projectID,
		ID:          c.ID,
		Position:    position,
		SourceID:    c.From,
		TargetID:    c.To,
		SourceField: c.FromField,
		TargetField: c.ToField,
		Kind:        c.Type,
		Color:       c.Color,
		StrokeWidth: c.StrokeWidth,
		Label:       c.Label,
	}
}

func connectionToDTO(m models.Connection) dto.Connection {
	return dto.Connection{
		ID:          m.ID,
		From:        m.SourceID,
		To:          m.TargetID,
		FromField:   m.SourceField,
		ToField:     m.TargetField,
		Type:        m.Kind,
		Color:       m.Color,
		StrokeWidth: m.StrokeWidth,
		Label:       m.Label,
	}
}

func elementsToDTO(ms []models.Element) []dto.Element {
	out := make([]dto.Element, len(ms))
	for i, m := range ms {
		out[i] = elementToDTO(m)
	}
	return out
}

func connectionsToDTO(ms []models.Connection) []dto.Connection {
	out := make([]dto.Connection, len(ms))
	for i, m := range ms {
		out[i] = connectionToDTO(m)
	}
	return out
}

func userSummary(u *models.User) dto.UserSummary {
	return dto.UserSummary{ID: u.ID.String(), Username: u.Username, Email: u.Email}
}
