package services

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/models"
)

func TestExportService_Mermaid(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)
	_, err = env.projects.Sync(ctx, alice, projectID, shopSnapshot())
	require.NoError(t, err)

	out, err := env.exports.Mermaid(ctx, alice, projectID)
	require.NoError(t, err)

	assert.Contains(t, out, "erDiagram\n")
	assert.Contains(t, out, `    USERS ||--o{ ORDERS : ""`)
	assert.Contains(t, out, "    USERS {\n        int id PK\n        varchar email\n    }")
	assert.Contains(t, out, "        int user_id FK\n")
	assert.Contains(t, out, "        float total\n")
}

func TestGenerateMermaid_DeduplicatesRelationships(t *testing.T) {
	tables := []models.Table{{Name: "a", Columns: []models.Column{{Name: "id", DataType: "integer", PrimaryKey: true}}}}
	rels := []models.Relationship{
		{FromTable: "a", ToTable: "b", Type: "||--||"},
		{FromTable: "a", ToTable: "b", Type: "||--||"},
		{FromTable: "a", ToTable: "b", Type: "}o--o{", Label: "tags"},
	}

	out := generateMermaid(tables, rels)
	assert.Equal(t, "erDiagram\n"+
		"    A ||--|| B : \"\"\n"+
		"    A }o--o{ B : \"tags\"\n"+
		"\n"+
		"    A {\n"+
		"        int id PK\n"+
		"    }\n\n", out)
}

func TestSchemaOf_KeysFollowFieldsNotNames(t *testing.T) {
	x, y := 0.0, 0.0
	users := models.Element{ID: "u", Name: "users", X: &x, Y: &y, Fields: []models.ElementField{
		{ID: "u1", Name: "id", Type: "integer", IsPrimary: true},
		{ID: "u2", Name: "id", Type: "text"},
	}}
	orders := models.Element{ID: "o", Name: "orders", X: &x, Y: &y, Fields: []models.ElementField{
		{ID: "o1", Name: "user_id", Type: "integer"},
		{ID: "o2", Name: "user_id", Type: "text"},
	}}
	conns := []models.Connection{{ID: "c", SourceID: "u", TargetID: "o", SourceField: "u1", TargetField: "o1", Kind: "one-to-many"}}

	tables, _ := schemaOf([]models.Element{users, orders}, conns)
	out := generateMermaid(tables, nil)
	assert.Contains(t, out, "    USERS {\n        int id PK\n        text id\n    }")
	assert.Contains(t, out, "    ORDERS {\n        int user_id FK\n        text user_id\n    }")
}

func TestEntityName(t *testing.T) {
	assert.Equal(t, "order_items", entityName(models.Element{Name: "order items"}))
	assert.Equal(t, "element_x1", entityName(models.Element{ID: "x1", Name: "  "}))
}

func TestExportService_PNG(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	var empty bytes.Buffer
	err = env.exports.PNG(ctx, alice, projectID, &empty)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	snap := shopSnapshot()
	snap.Connections[0].Color = "#ff0000"
	snap.Connections[0].Label = "places"
	_, err = env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.exports.PNG(ctx, alice, projectID, &buf))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	// Bounds span x 100..600 and y 100..256 plus 40px padding on each side.
	assert.Equal(t, 580, img.Bounds().Dx())
	assert.Equal(t, 236, img.Bounds().Dy())
}
