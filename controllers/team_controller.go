package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"teamhub/models"
	"teamhub/utils"
)

type TeamController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTeamController(db *gorm.DB, logger *log.Logger) *TeamController {
	return &TeamController{
		DB:     db,
		Logger: logger,
	}
}

type CreateTeamRequest struct {
	Name        string `json:"name" validate:"required,min=3,max=60"`
	Description string `json:"description" validate:"omitempty,max=500"`
	IsPrivate   bool   `json:"is_private"`
	MaxMembers  int    `json:"max_members" validate:"omitempty,gt=0"`
}

type JoinTeamRequest struct {
	JoinCode string `json:"join_code" validate:"required,len=6"`
}

type UpdateTeamRequest struct {
	Name        string `json:"name" validate:"omitempty,min=3,max=60"`
	Description string `json:"description" validate:"omitempty,max=500"`
	IsPrivate   *bool  `json:"is_private,omitempty"`
	MaxMembers  int    `json:"max_members" validate:"omitempty,gt=0"`
}

type TransferLeadershipRequest struct {
	UserID uint `json:"user_id" validate:"required"`
}

// membership returns the caller's team membership, if any.
func (tc *TeamController) membership(userID uint) (*models.TeamMember, error) {
	var member models.TeamMember
	err := tc.DB.Where("user_id = ?", userID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &member, nil
}

// leadership returns the caller's membership in teamID if they lead it.
func (tc *TeamController) leadership(userID, teamID uint) (*models.TeamMember, error) {
	var member models.TeamMember
	err := tc.DB.Where("user_id = ? AND team_id = ?", userID, teamID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotTeamMember
	}
	if err != nil {
		return nil, err
	}
	if !member.IsLeader() {
		return nil, utils.ErrNotLeader
	}
	return &member, nil
}

// createTeam inserts the team and its leader membership in one transaction.
func (tc *TeamController) createTeam(userID uint, req CreateTeamRequest) (*models.Team, error) {
	existing, err := tc.membership(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ErrAlreadyInTeam
	}

	joinCode, err := utils.GenerateJoinCode()
	if err != nil {
		return nil, err
	}

	maxMembers := req.MaxMembers
	if maxMembers == 0 {
		maxMembers = 5
	}

	team := models.Team{
		Name:        req.Name,
		Description: req.Description,
		JoinCode:    joinCode,
		IsActive:    true,
		IsPrivate:   req.IsPrivate,
		MaxMembers:  maxMembers,
		CreatedBy:   userID,
	}

	err = tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		member := models.TeamMember{
			TeamID: team.ID,
			UserID: userID,
			Role:   models.TeamRoleLeader,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return &team, nil
}

// joinTeam adds the caller to the team behind joinCode.
func (tc *TeamController) joinTeam(userID uint, joinCode string) (*models.Team, error) {
	existing, err := tc.membership(userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, utils.ErrAlreadyInTeam
	}

	var team models.Team
	if err := tc.DB.Where("join_code = ?", joinCode).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTeamNotFound
		}
		return nil, err
	}

	if team.IsPrivate {
		return nil, utils.ErrTeamPrivate
	}

	count, err := models.MemberCount(tc.DB, team.ID)
	if err != nil {
		return nil, err
	}
	if int(count) >= team.MaxMembers {
		return nil, utils.ErrTeamFull
	}

	member := models.TeamMember{
		TeamID: team.ID,
		UserID: userID,
		Role:   models.TeamRoleMember,
	}
	if err := tc.DB.Create(&member).Error; err != nil {
		return nil, err
	}

	return &team, nil
}

// leaveTeam removes the caller's membership. Leaders must hand off first.
func (tc *TeamController) leaveTeam(userID uint) error {
	member, err := tc.membership(userID)
	if err != nil {
		return err
	}
	if member == nil {
		return utils.ErrNotTeamMember
	}
	if member.IsLeader() {
		return utils.ErrLeaderLeaving
	}
	return tc.DB.Delete(member).Error
}

// transferLeadership swaps the leader role to another member of the team.
func (tc *TeamController) transferLeadership(leaderID, teamID, newLeaderID uint) error {
	leader, err := tc.leadership(leaderID, teamID)
	if err != nil {
		return err
	}

	var target models.TeamMember
	if err := tc.DB.Where("user_id = ? AND team_id = ?", newLeaderID, teamID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrNotTeamMember
		}
		return err
	}

	return tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(leader).Update("role", models.TeamRoleMember).Error; err != nil {
			return err
		}
		return tx.Model(&target).Update("role", models.TeamRoleLeader).Error
	})
}

// CreateTeam handles POST /teams
func (tc *TeamController) CreateTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	team, err := tc.createTeam(userID, req)
	if err != nil {
		tc.Logger.Printf("Failed to create team for user %d: %v", userID, err)
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(team))
}

// GetMyTeam handles GET /teams/me
func (tc *TeamController) GetMyTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	member, err := tc.membership(userID)
	if err != nil {
		return utils.HandleError(c, err)
	}
	if member == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "You are not in a team yet",
		})
	}

	var team models.Team
	if err := tc.DB.Preload("Members.User").First(&team, member.TeamID).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// GetTeam handles GET /teams/:id
func (tc *TeamController) GetTeam(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	var team models.Team
	if err := tc.DB.Preload("Members.User").First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrTeamNotFound)
		}
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// JoinTeam handles POST /teams/join
func (tc *TeamController) JoinTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req JoinTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	team, err := tc.joinTeam(userID, req.JoinCode)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// UpdateTeam handles PUT /teams/:id (leader only)
func (tc *TeamController) UpdateTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	teamID := utils.ParseUint(c.Params("id"))

	var req UpdateTeamRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if _, err := tc.leadership(userID, teamID); err != nil {
		return utils.HandleError(c, err)
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return utils.HandleError(c, utils.ErrTeamNotFound)
	}

	if req.Name != "" {
		team.Name = req.Name
	}
	if req.Description != "" {
		team.Description = req.Description
	}
	if req.IsPrivate != nil {
		team.IsPrivate = *req.IsPrivate
	}
	if req.MaxMembers > 0 {
		team.MaxMembers = req.MaxMembers
	}

	if err := tc.DB.Save(&team).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(team))
}

// LeaveTeam handles POST /teams/leave
func (tc *TeamController) LeaveTeam(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	if err := tc.leaveTeam(userID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Left the team"})
}

// RemoveMember handles DELETE /teams/:id/members/:userId (leader only)
func (tc *TeamController) RemoveMember(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	teamID := utils.ParseUint(c.Params("id"))
	targetID := utils.ParseUint(c.Params("userId"))

	if _, err := tc.leadership(userID, teamID); err != nil {
		return utils.HandleError(c, err)
	}
	if targetID == userID {
		return utils.HandleError(c, utils.ErrLeaderLeaving)
	}

	result := tc.DB.Where("team_id = ? AND user_id = ?", teamID, targetID).Delete(&models.TeamMember{})
	if result.Error != nil {
		return utils.HandleError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.HandleError(c, utils.ErrNotTeamMember)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Member removed"})
}

// TransferLeadership handles POST /teams/:id/transfer (leader only)
func (tc *TeamController) TransferLeadership(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	teamID := utils.ParseUint(c.Params("id"))

	var req TransferLeadershipRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := utils.ValidateStruct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if err := tc.transferLeadership(userID, teamID, req.UserID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Leadership transferred"})
}

// SetTeamActive handles PUT /admin/teams/:id/active (admin only). This is
// the manual activation gate; it is intentionally not driven by payment
// status.
func (tc *TeamController) SetTeamActive(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	var req struct {
		IsActive bool `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	var team models.Team
	if err := tc.DB.First(&team, teamID).Error; err != nil {
		return utils.HandleError(c, utils.ErrTeamNotFound)
	}

	if err := tc.DB.Model(&team).Update("is_active", req.IsActive).Error; err != nil {
		return utils.HandleError(c, err)
	}

	tc.Logger.Printf("Team %d active flag set to %t", teamID, req.IsActive)
	return c.JSON(utils.SuccessResponse(team))
}
