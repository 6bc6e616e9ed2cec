package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"datadesigner/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Project{}, &models.Element{}, &models.Connection{}))
	return db
}

func seedProject(t *testing.T, db *gorm.DB) (*models.User, *models.Project) {
	t.Helper()
	ctx := context.Background()
	user := &models.User{Username: "alice", Email: "alice@example.com", PasswordHash: "x"}
	require.NoError(t, NewUserRepository(db).Create(ctx, user))
	project := &models.Project{UserID: user.ID, Name: "Shop"}
	require.NoError(t, NewProjectRepository(db).Create(ctx, project))
	return user, project
}

func ptr(f float64) *float64 { return &f }

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{Username: "  bob ", Email: " Bob@Example.com", PasswordHash: "hash"}
	require.NoError(t, repo.Create(ctx, user))
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.Equal(t, "bob", user.Username)

	found, err := repo.FindUserByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)

	missing, err := repo.FindUserByID(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	dup := &models.User{Username: "bob2", Email: "bob@example.com"}
	assert.Error(t, repo.Create(ctx, dup))

	require.NoError(t, repo.TouchLastLogin(ctx, user.ID))
	found, err = repo.FindUserByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
}

func TestProjectRepository_CommitSnapshot(t *testing.T) {
	db := setupTestDB(t)
	_, project := seedProject(t, db)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	stale := *project
	require.NoError(t, repo.CommitSnapshot(ctx, project, []string{"e1"}, []string{}))
	assert.Equal(t, uint64(1), project.Version)

	err := repo.CommitSnapshot(ctx, &stale, []string{"e2"}, nil)
	assert.ErrorIs(t, err, ErrVersionMismatch)

	stored, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.Version)
	assert.Equal(t, []string{"e1"}, []string(stored.ElementRefs))
}

func TestProjectRepository_ListRenameDelete(t *testing.T) {
	db := setupTestDB(t)
	user, project := seedProject(t, db)
	repo := NewProjectRepository(db)
	diagrams := NewDiagramRepository(db)
	ctx := context.Background()

	second := &models.Project{UserID: user.ID, Name: "Blog", CreatedAt: time.Now().Add(time.Minute)}
	require.NoError(t, repo.Create(ctx, second))

	list, err := repo.GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Blog", list[0].Name)

	require.NoError(t, repo.Rename(ctx, project.ID, "Store"))
	renamed, err := repo.GetByIDForUpdate(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "Store", renamed.Name)

	require.NoError(t, diagrams.UpsertElements(ctx, []models.Element{
		{ProjectID: project.ID, ID: "a", Kind: "table", Name: "a"},
		{ProjectID: project.ID, ID: "b", Kind: "table", Name: "b"},
	}))
	require.NoError(t, diagrams.UpsertConnections(ctx, []models.Connection{
		{ProjectID: project.ID, ID: "c", SourceID: "a", TargetID: "b", Kind: "one-to-many"},
	}))

	require.NoError(t, repo.Delete(ctx, project.ID))
	gone, err := repo.GetByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	elements, err := diagrams.ListElements(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, elements)
	connections, err := diagrams.ListConnections(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, connections)
}

func TestDiagramRepository_UpsertAndDelete(t *testing.T) {
	db := setupTestDB(t)
	_, project := seedProject(t, db)
	repo := NewDiagramRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.UpsertElements(ctx, []models.Element{
		{ProjectID: project.ID, ID: "users", Position: 0, Kind: "table", Name: "users", X: ptr(10), Y: ptr(20),
			Fields: []models.ElementField{{ID: "f1", Name: "id", Type: "integer", IsPrimary: true}}},
		{ProjectID: project.ID, ID: "orders", Position: 1, Kind: "table", Name: "orders"},
	}))
	require.NoError(t, repo.UpsertConnections(ctx, []models.Connection{
		{ProjectID: project.ID, ID: "c1", SourceID: "users", TargetID: "orders", Kind: "one-to-many"},
	}))

	// Overwrite in place.
	require.NoError(t, repo.UpsertElements(ctx, []models.Element{
		{ProjectID: project.ID, ID: "users", Position: 0, Kind: "table", Name: "customers", X: ptr(40), Y: ptr(20)},
	}))
	elements, err := repo.ListElements(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, "customers", elements[0].Name)
	assert.Equal(t, 40.0, *elements[0].X)
	assert.Empty(t, elements[0].Fields)

	require.NoError(t, repo.DeleteElements(ctx, project.ID, []string{"orders"}))
	elements, err = repo.ListElements(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, elements, 1)
	connections, err := repo.ListConnections(ctx, project.ID)
	require.NoError(t, err)
	assert.Empty(t, connections)

	assert.NoError(t, repo.DeleteConnections(ctx, project.ID, nil))
}

func TestMemoryBlacklist(t *testing.T) {
	bl := NewMemoryBlacklist()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	bl.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, bl.Blacklist(ctx, "jti-1", time.Minute))
	require.NoError(t, bl.Blacklist(ctx, "jti-2", 0))

	ok, err := bl.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = bl.IsBlacklisted(ctx, "jti-2")
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, _ = bl.IsBlacklisted(ctx, "jti-1")
	assert.False(t, ok)
}
