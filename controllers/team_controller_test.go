package controller

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teamhub/models"
	"teamhub/utils"
)

func TestCreateTeam(t *testing.T) {
	db := newTestDB(t)
	tc := NewTeamController(db, testLogger())

	creator := createTestUser(t, db, "creator@example.com")

	team, err := tc.createTeam(creator.ID, CreateTeamRequest{Name: "Code Crushers"})
	require.NoError(t, err)
	assert.Equal(t, "Code Crushers", team.Name)
	assert.Len(t, team.JoinCode, 6)
	assert.True(t, team.IsActive)
	assert.Equal(t, 5, team.MaxMembers)

	// Creator becomes the leader
	var member models.TeamMember
	require.NoError(t, db.Where("team_id = ? AND user_id = ?", team.ID, creator.ID).First(&member).Error)
	assert.Equal(t, models.TeamRoleLeader, member.Role)

	// One team per user
	_, err = tc.createTeam(creator.ID, CreateTeamRequest{Name: "Another Team"})
	assert.ErrorIs(t, err, utils.ErrAlreadyInTeam)
}

func TestJoinTeam(t *testing.T) {
	db := newTestDB(t)
	tc := NewTeamController(db, testLogger())

	leader := createTestUser(t, db, "leader@example.com")
	team := createTestTeam(t, db, leader, "JOINME")

	t.Run("join by code", func(t *testing.T) {
		joiner := createTestUser(t, db, "joiner@example.com")
		joined, err := tc.joinTeam(joiner.ID, "JOINME")
		require.NoError(t, err)
		assert.Equal(t, team.ID, joined.ID)

		var member models.TeamMember
		require.NoError(t, db.Where("team_id = ? AND user_id = ?", team.ID, joiner.ID).First(&member).Error)
		assert.Equal(t, models.TeamRoleMember, member.Role)
	})

	t.Run("unknown code", func(t *testing.T) {
		stranger := createTestUser(t, db, "stranger@example.com")
		_, err := tc.joinTeam(stranger.ID, "NOSUCH")
		assert.ErrorIs(t, err, utils.ErrTeamNotFound)
	})

	t.Run("already in a team", func(t *testing.T) {
		_, err := tc.joinTeam(leader.ID, "JOINME")
		assert.ErrorIs(t, err, utils.ErrAlreadyInTeam)
	})

	t.Run("private team", func(t *testing.T) {
		privLeader := createTestUser(t, db, "priv-leader@example.com")
		privTeam := createTestTeam(t, db, privLeader, "SECRET")
		require.NoError(t, db.Model(privTeam).Update("is_private", true).Error)

		applicant := createTestUser(t, db, "applicant@example.com")
		_, err := tc.joinTeam(applicant.ID, "SECRET")
		assert.ErrorIs(t, err, utils.ErrTeamPrivate)
	})

	t.Run("full team", func(t *testing.T) {
		require.NoError(t, db.Model(team).Update("max_members", 2).Error)

		latecomer := createTestUser(t, db, "latecomer@example.com")
		_, err := tc.joinTeam(latecomer.ID, "JOINME")
		assert.ErrorIs(t, err, utils.ErrTeamFull)
	})
}

func TestLeaveTeam(t *testing.T) {
	db := newTestDB(t)
	tc := NewTeamController(db, testLogger())

	leader := createTestUser(t, db, "leader@example.com")
	member := createTestUser(t, db, "member@example.com")
	team := createTestTeam(t, db, leader, "LEAVER")
	require.NoError(t, db.Create(&models.TeamMember{
		TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleMember,
	}).Error)

	// Leaders must transfer first
	assert.ErrorIs(t, tc.leaveTeam(leader.ID), utils.ErrLeaderLeaving)

	require.NoError(t, tc.leaveTeam(member.ID))
	count, err := models.MemberCount(db, team.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Not in a team anymore
	assert.ErrorIs(t, tc.leaveTeam(member.ID), utils.ErrNotTeamMember)
}

func TestTransferLeadership(t *testing.T) {
	db := newTestDB(t)
	tc := NewTeamController(db, testLogger())

	leader := createTestUser(t, db, "leader@example.com")
	member := createTestUser(t, db, "member@example.com")
	team := createTestTeam(t, db, leader, "XFERME")
	require.NoError(t, db.Create(&models.TeamMember{
		TeamID: team.ID, UserID: member.ID, Role: models.TeamRoleMember,
	}).Error)

	// Only the leader can transfer
	assert.ErrorIs(t, tc.transferLeadership(member.ID, team.ID, leader.ID), utils.ErrNotLeader)

	require.NoError(t, tc.transferLeadership(leader.ID, team.ID, member.ID))

	var oldLeader, newLeader models.TeamMember
	require.NoError(t, db.Where("team_id = ? AND user_id = ?", team.ID, leader.ID).First(&oldLeader).Error)
	require.NoError(t, db.Where("team_id = ? AND user_id = ?", team.ID, member.ID).First(&newLeader).Error)
	assert.Equal(t, models.TeamRoleMember, oldLeader.Role)
	assert.Equal(t, models.TeamRoleLeader, newLeader.Role)

	// The old leader can leave now
	assert.NoError(t, tc.leaveTeam(leader.ID))
}
