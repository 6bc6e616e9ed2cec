// Package dto defines the JSON shapes exchanged between the API and its
// clients. The binding tags are enforced by gin on the server and by
// Validate on the client before a request leaves.
package dto

import "time"

type Field struct {
	ID        string `json:"id" binding:"required,max=64"`
	Name      string `json:"name" binding:"max=128"`
	Type      string `json:"type" binding:"required,oneof=integer text varchar boolean timestamp date float json"`
	IsPrimary bool   `json:"isPrimary"`
}

// Element coordinates are pointers so a missing position can be told apart
// from the origin.
type Element struct {
	ID     string   `json:"id" binding:"required,max=64"`
	Type   string   `json:"type" binding:"required,oneof=table"`
	Name   string   `json:"name" binding:"max=128"`
	X      *float64 `json:"x"`
	Y      *float64 `json:"y"`
	Width  float64  `json:"width" binding:"gte=0"`
	Height float64  `json:"height" binding:"gte=0"`
	Fields []Field  `json:"fields" binding:"dive"`
}

type Connection struct {
	ID          string  `json:"id" binding:"required,max=64"`
	From        string  `json:"from" binding:"required,max=64"`
	To          string  `json:"to" binding:"required,max=64"`
	FromField   string  `json:"fromField,omitempty" binding:"max=64"`
	ToField     string  `json:"toField,omitempty" binding:"max=64"`
	Type        string  `json:"type" binding:"required,oneof=one-to-one one-to-many many-to-many"`
	Color       string  `json:"color,omitempty" binding:"max=32"`
	StrokeWidth float64 `json:"strokeWidth,omitempty" binding:"gte=0,lte=32"`
	Label       string  `json:"label,omitempty" binding:"max=128"`
}

// SyncRequest is a full snapshot of a project. BaseVersion, when present,
// must equal the stored version or the write is rejected.
type SyncRequest struct {
	Elements    []Element    `json:"elements" binding:"dive"`
	Connections []Connection `json:"connections" binding:"dive"`
	BaseVersion *uint64      `json:"baseVersion,omitempty"`
}

type SyncResult struct {
	Elements    []Element    `json:"elements"`
	Connections []Connection `json:"connections"`
	Version     uint64       `json:"version"`
}

type Project struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Elements    []Element    `json:"elements"`
	Connections []Connection `json:"connections"`
	Version     uint64       `json:"version"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type ProjectSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

type RegisterResponse struct {
	UserID string `json:"userId"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UserSummary struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      UserSummary `json:"user"`
}

type UserData struct {
	ID          string           `json:"id"`
	Username    string           `json:"username"`
	Email       string           `json:"email"`
	ProjectRefs []string         `json:"projectRefs"`
	Projects    []ProjectSummary `json:"projects"`
}

type ProjectNameRequest struct {
	ProjectName string `json:"projectName" binding:"required,max=128"`
}

type NewProjectResponse struct {
	ProjectID string `json:"projectId"`
}
