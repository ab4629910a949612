package controller

import (
	"io"
	"log"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"teamhub/config"
	"teamhub/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, config.MigrateDB(db))

	return db
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func createTestUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "x",
		Role:         models.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// createTestTeam inserts a team with the given user as leader.
func createTestTeam(t *testing.T, db *gorm.DB, leader *models.User, code string) *models.Team {
	t.Helper()

	team := models.Team{
		Name:       "Test Team " + code,
		JoinCode:   code,
		IsActive:   true,
		MaxMembers: 5,
		CreatedBy:  leader.ID,
	}
	require.NoError(t, db.Create(&team).Error)
	require.NoError(t, db.Create(&models.TeamMember{
		TeamID: team.ID,
		UserID: leader.ID,
		Role:   models.TeamRoleLeader,
	}).Error)
	return &team
}

func createTestModule(t *testing.T, db *gorm.DB, name, status string) *models.Module {
	t.Helper()

	module := models.Module{
		Name:       name,
		Difficulty: models.DifficultyBeginner,
		Category:   "Backend",
		TechStack:  []string{"Go"},
		Status:     status,
	}
	require.NoError(t, db.Create(&module).Error)
	return &module
}
