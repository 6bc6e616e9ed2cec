package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datadesigner/internal/apperrors"
	"datadesigner/internal/dto"
	"datadesigner/internal/models"
	"datadesigner/internal/repositories"
)

func TestUserService_CreateProjectAndData(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")

	_, err := env.users.CreateProject(ctx, alice, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = env.users.CreateProject(ctx, uuid.New(), "Ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	data, err := env.users.GetUserData(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "alice", data.Username)
	assert.Equal(t, []string{projectID.String()}, data.ProjectRefs)
	require.Len(t, data.Projects, 1)
	assert.Equal(t, "Shop", data.Projects[0].Name)

	project, err := env.projects.Get(ctx, alice, projectID)
	require.NoError(t, err)
	assert.Empty(t, project.Elements)
	assert.Empty(t, project.Connections)
	assert.Equal(t, uint64(0), project.Version)
}

func TestProjectService_SyncRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	snap := shopSnapshot()
	result, err := env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Version)
	assert.Equal(t, snap.Elements, result.Elements)
	assert.Equal(t, snap.Connections, result.Connections)

	loaded, err := env.projects.Get(ctx, alice, projectID)
	require.NoError(t, err)
	assert.Equal(t, snap.Elements, loaded.Elements)
	assert.Equal(t, snap.Connections, loaded.Connections)
	assert.Equal(t, uint64(1), loaded.Version)

	// Same snapshot again changes nothing but the version.
	again, err := env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), again.Version)
	assert.Equal(t, result.Elements, again.Elements)
	assert.Equal(t, result.Connections, again.Connections)
}

func TestProjectService_SyncDeletesAbsentRows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	_, err = env.projects.Sync(ctx, alice, projectID, shopSnapshot())
	require.NoError(t, err)

	// Dropping orders must take the users->orders connection with it.
	snap := shopSnapshot()
	snap.Elements = snap.Elements[:1]
	snap.Connections = nil
	result, err := env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)
	require.Len(t, result.Elements, 1)
	assert.Equal(t, "users", result.Elements[0].ID)
	assert.Empty(t, result.Connections)

	var count int64
	require.NoError(t, env.db.Table("connections").Where("project_id = ?", projectID).Count(&count).Error)
	assert.Zero(t, count)

	// Renaming an element keeps its row identity.
	snap.Elements[0].Name = "customers"
	result, err = env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)
	assert.Equal(t, "customers", result.Elements[0].Name)
}

func TestProjectService_SyncErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bobby")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	_, err = env.projects.Sync(ctx, alice, uuid.New(), shopSnapshot())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.projects.Sync(ctx, bob, projectID, shopSnapshot())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	bad := shopSnapshot()
	bad.Connections[0].To = "missing"
	_, err = env.projects.Sync(ctx, alice, projectID, bad)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	badType := shopSnapshot()
	badType.Elements[0].Fields[0].Type = "uuid"
	_, err = env.projects.Sync(ctx, alice, projectID, badType)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	project, err := env.projects.Get(ctx, alice, projectID)
	require.NoError(t, err)
	assert.Empty(t, project.Elements, "rejected snapshots must not be stored")
}

type denyAll struct{ calls int }

func (d *denyAll) CanAccess(*models.Project, uuid.UUID) bool {
	d.calls++
	return false
}

func TestProjectService_AccessDecidedByGate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	gate := &denyAll{}
	log := env.projects.log
	projects := NewProjectService(env.db, repositories.NewProjectRepository(env.db), repositories.NewDiagramRepository(env.db), gate, log)

	_, err = projects.Get(ctx, alice, projectID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = projects.Sync(ctx, alice, projectID, shopSnapshot())
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	assert.ErrorIs(t, projects.Delete(ctx, alice, projectID), apperrors.ErrForbidden)
	assert.Equal(t, 3, gate.calls)
}

func TestProjectService_BaseVersion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	snap := shopSnapshot()
	zero := uint64(0)
	snap.BaseVersion = &zero
	_, err = env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)

	// A second writer still holding version 0 loses.
	_, err = env.projects.Sync(ctx, alice, projectID, snap)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	one := uint64(1)
	snap.BaseVersion = &one
	result, err := env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), result.Version)

	// Without a base version the last writer wins.
	snap.BaseVersion = nil
	_, err = env.projects.Sync(ctx, alice, projectID, snap)
	assert.NoError(t, err)
}

func TestProjectService_RenameAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	bob := env.register(t, "bobby")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)
	_, err = env.projects.Sync(ctx, alice, projectID, shopSnapshot())
	require.NoError(t, err)

	assert.ErrorIs(t, env.projects.Rename(ctx, alice, projectID, ""), apperrors.ErrValidation)
	assert.ErrorIs(t, env.projects.Rename(ctx, bob, projectID, "Mine"), apperrors.ErrForbidden)
	require.NoError(t, env.projects.Rename(ctx, alice, projectID, "Store"))

	project, err := env.projects.Get(ctx, alice, projectID)
	require.NoError(t, err)
	assert.Equal(t, "Store", project.Name)

	assert.ErrorIs(t, env.projects.Delete(ctx, bob, projectID), apperrors.ErrForbidden)
	require.NoError(t, env.projects.Delete(ctx, alice, projectID))

	_, err = env.projects.Get(ctx, alice, projectID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var count int64
	require.NoError(t, env.db.Table("elements").Where("project_id = ?", projectID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestProjectService_MissingPositionSurvives(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice")
	projectID, err := env.users.CreateProject(ctx, alice, "Shop")
	require.NoError(t, err)

	snap := dto.SyncRequest{Elements: []dto.Element{{ID: "t", Type: "table", Name: "t"}}}
	result, err := env.projects.Sync(ctx, alice, projectID, snap)
	require.NoError(t, err)
	assert.Nil(t, result.Elements[0].X)
	assert.Nil(t, result.Elements[0].Y)
}
