package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"teamhub/models"
	"teamhub/utils"
)

// WorkflowController owns the team/module engagement lifecycle: a leader
// attaches one module to their team, records phases against it, and closes
// it out.
type WorkflowController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewWorkflowController(db *gorm.DB, logger *log.Logger) *WorkflowController {
	return &WorkflowController{
		DB:     db,
		Logger: logger,
	}
}

type AssignModuleRequest struct {
	ModuleID uint       `json:"module_id" validate:"required"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

type RecordPhaseRequest struct {
	PhaseName string `json:"phase_name" validate:"required"`
	ProofLink string `json:"proof_link" validate:"omitempty,url"`
	Remarks   string `json:"remarks" validate:"omitempty,max=1000"`
}

type ProgressResponse struct {
	TeamModuleID uint   `json:"team_module_id"`
	Status       string `json:"status"`
	Progress     int    `json:"progress"`
	NextPhase    string `json:"next_phase,omitempty"`
	PhaseCount   int    `json:"phase_count"`
}

func (wc *WorkflowController) requireLeader(userID, teamID uint) error {
	var member models.TeamMember
	err := wc.DB.Where("user_id = ? AND team_id = ?", userID, teamID).First(&member).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.ErrNotTeamMember
	}
	if err != nil {
		return err
	}
	if !member.IsLeader() {
		return utils.ErrNotLeader
	}
	return nil
}

// assignModule attaches a module to a team. Preconditions: caller leads the
// team, the team is active, the team holds no other module and the module is
// open for assignment. The capacity check is repeated inside the transaction
// so two racing leaders cannot both insert.
func (wc *WorkflowController) assignModule(userID, teamID uint, req AssignModuleRequest) (*models.TeamModule, error) {
	if err := wc.requireLeader(userID, teamID); err != nil {
		return nil, err
	}

	var team models.Team
	if err := wc.DB.First(&team, teamID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTeamNotFound
		}
		return nil, err
	}
	if !team.IsActive {
		return nil, utils.ErrTeamInactive
	}

	var module models.Module
	if err := wc.DB.First(&module, req.ModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrModuleNotFound
		}
		return nil, err
	}
	if module.Status != models.ModuleStatusAvailable {
		return nil, utils.ErrModuleNotOpen
	}

	teamModule := models.TeamModule{
		TeamID:     teamID,
		ModuleID:   module.ID,
		Status:     models.TeamModuleSelected,
		AssignedAt: time.Now(),
		Deadline:   req.Deadline,
	}

	err := wc.DB.Transaction(func(tx *gorm.DB) error {
		var existing []models.TeamModule
		if err := tx.Where("team_id = ?", teamID).Find(&existing).Error; err != nil {
			return err
		}
		for _, tm := range existing {
			if tm.ModuleID == module.ID {
				return utils.ErrAlreadyAssigned
			}
		}
		// One concurrent module per team
		if len(existing) > 0 {
			return utils.ErrModuleLimit
		}
		return tx.Create(&teamModule).Error
	})
	if err != nil {
		return nil, err
	}

	wc.Logger.Printf("Team %d assigned module %d (%s)", teamID, module.ID, module.Name)
	return &teamModule, nil
}

// recordPhase appends a milestone to a team's engagement. The phase insert
// and the status updates it triggers commit or roll back together.
func (wc *WorkflowController) recordPhase(userID, teamModuleID uint, req RecordPhaseRequest) (*models.ProjectPhase, error) {
	if !models.IsKnownPhase(req.PhaseName) {
		return nil, utils.ErrUnknownPhase
	}

	var teamModule models.TeamModule
	if err := wc.DB.First(&teamModule, teamModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTeamModuleNotFound
		}
		return nil, err
	}

	if err := wc.requireLeader(userID, teamModule.TeamID); err != nil {
		return nil, err
	}

	phase := models.ProjectPhase{
		TeamModuleID: teamModule.ID,
		PhaseName:    req.PhaseName,
		ProofLink:    req.ProofLink,
		Remarks:      req.Remarks,
		CompletedAt:  time.Now(),
	}

	err := wc.DB.Transaction(func(tx *gorm.DB) error {
		var recorded []models.ProjectPhase
		if err := tx.Where("team_module_id = ?", teamModule.ID).Find(&recorded).Error; err != nil {
			return err
		}
		for _, p := range recorded {
			if p.PhaseName == req.PhaseName {
				return utils.ErrPhaseRecorded
			}
		}
		// Ordering stays advisory: the expected phase is logged but a
		// mismatch is not rejected
		if expected := models.NextPhase(recorded); expected != req.PhaseName {
			wc.Logger.Printf("Team module %d recording %q out of order (expected %q)", teamModule.ID, req.PhaseName, expected)
		}

		if err := tx.Create(&phase).Error; err != nil {
			return err
		}

		switch req.PhaseName {
		case models.PhaseExecutionStarted:
			if err := tx.Model(&teamModule).Update("status", models.TeamModuleInProgress).Error; err != nil {
				return err
			}
		case models.PhaseLaunched:
			if err := tx.Model(&teamModule).Update("status", models.TeamModuleCompleted).Error; err != nil {
				return err
			}
			// Marks the catalog entry itself completed, hiding it from
			// other teams browsing for available modules
			if err := tx.Model(&models.Module{}).
				Where("id = ?", teamModule.ModuleID).
				Update("status", models.ModuleStatusCompleted).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &phase, nil
}

// removeModule detaches a team's module; recorded phases go with it.
func (wc *WorkflowController) removeModule(userID, teamModuleID uint) error {
	var teamModule models.TeamModule
	if err := wc.DB.First(&teamModule, teamModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrTeamModuleNotFound
		}
		return err
	}

	if err := wc.requireLeader(userID, teamModule.TeamID); err != nil {
		return err
	}

	return wc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("team_module_id = ?", teamModule.ID).Delete(&models.ProjectPhase{}).Error; err != nil {
			return err
		}
		return tx.Delete(&teamModule).Error
	})
}

// progress derives the display progress for an engagement.
func (wc *WorkflowController) progress(teamModuleID uint) (*ProgressResponse, error) {
	var teamModule models.TeamModule
	if err := wc.DB.First(&teamModule, teamModuleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrTeamModuleNotFound
		}
		return nil, err
	}

	var phases []models.ProjectPhase
	if err := wc.DB.Where("team_module_id = ?", teamModule.ID).Find(&phases).Error; err != nil {
		return nil, err
	}

	return &ProgressResponse{
		TeamModuleID: teamModule.ID,
		Status:       teamModule.Status,
		Progress:     models.ProgressPercent(len(phases)),
		NextPhase:    models.NextPhase(phases),
		PhaseCount:   len(phases),
	}, nil
}

// AssignModule handles POST /teams/:id/modules
func (wc *WorkflowController) AssignModule(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	teamID := utils.ParseUint(c.Params("id"))

	var req AssignModuleRequest
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

	teamModule, err := wc.assignModule(userID, teamID, req)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(teamModule))
}

// GetTeamModule handles GET /teams/:id/modules
func (wc *WorkflowController) GetTeamModule(c *fiber.Ctx) error {
	teamID := utils.ParseUint(c.Params("id"))

	var teamModule models.TeamModule
	err := wc.DB.Preload("Module").Preload("Phases").
		Where("team_id = ?", teamID).
		First(&teamModule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrTeamModuleNotFound)
		}
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(teamModule))
}

// RecordPhase handles POST /team-modules/:id/phases
func (wc *WorkflowController) RecordPhase(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	teamModuleID := utils.ParseUint(c.Params("id"))

	var req RecordPhaseRequest
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

	phase, err := wc.recordPhase(userID, teamModuleID, req)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(phase))
}

// RemoveModule handles DELETE /team-modules/:id
func (wc *WorkflowController) RemoveModule(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	teamModuleID := utils.ParseUint(c.Params("id"))

	if err := wc.removeModule(userID, teamModuleID); err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Module removed"})
}

// GetProgress handles GET /team-modules/:id/progress
func (wc *WorkflowController) GetProgress(c *fiber.Ctx) error {
	teamModuleID := utils.ParseUint(c.Params("id"))

	resp, err := wc.progress(teamModuleID)
	if err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(resp))
}
