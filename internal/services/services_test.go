package services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"datadesigner/internal/dto"
	"datadesigner/internal/models"
	"datadesigner/internal/repositories"
	"datadesigner/internal/utils"
)

type testEnv struct {
	db       *gorm.DB
	auth     *AuthService
	users    *UserService
	projects *ProjectService
	exports  *ExportService
	userRepo *repositories.UserRepository
}

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

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	log, _ := test.NewNullLogger()

	userRepo := repositories.NewUserRepository(db)
	projectRepo := repositories.NewProjectRepository(db)
	diagramRepo := repositories.NewDiagramRepository(db)
	tokens := utils.NewTokenManager("test-secret", time.Hour)

	auth := NewAuthService(userRepo, projectRepo, tokens, repositories.NewMemoryBlacklist(), log)
	projects := NewProjectService(db, projectRepo, diagramRepo, auth, log)
	return &testEnv{
		db:       db,
		auth:     auth,
		users:    NewUserService(userRepo, projectRepo, log),
		projects: projects,
		exports:  NewExportService(projects),
		userRepo: userRepo,
	}
}

func (e *testEnv) register(t *testing.T, username string) uuid.UUID {
	t.Helper()
	id, err := e.auth.Register(context.Background(), dto.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	return id
}

func fptr(f float64) *float64 { return &f }

// shopSnapshot is the users/orders diagram with one relationship between
// the primary key of users and orders.user_id.
func shopSnapshot() dto.SyncRequest {
	return dto.SyncRequest{
		Elements: []dto.Element{
			{
				ID: "users", Type: "table", Name: "users", X: fptr(100), Y: fptr(100), Width: 200, Height: 120,
				Fields: []dto.Field{
					{ID: "u-id", Name: "id", Type: "integer", IsPrimary: true},
					{ID: "u-email", Name: "email", Type: "varchar"},
				},
			},
			{
				ID: "orders", Type: "table", Name: "orders", X: fptr(400), Y: fptr(100), Width: 200, Height: 156,
				Fields: []dto.Field{
					{ID: "o-id", Name: "id", Type: "integer", IsPrimary: true},
					{ID: "o-user", Name: "user_id", Type: "integer"},
					{ID: "o-total", Name: "total", Type: "float"},
				},
			},
		},
		Connections: []dto.Connection{
			{ID: "c1", From: "users", To: "orders", FromField: "u-id", ToField: "o-user", Type: "one-to-many"},
		},
	}
}
