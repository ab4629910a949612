package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"teamhub/config"
	"teamhub/models"
	"teamhub/utils"
)

type CreateModuleRequest struct {
	Name        string   `json:"name" validate:"required,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Difficulty  string   `json:"difficulty" validate:"required,oneof=Beginner Intermediate Advanced Expert"`
	Category    string   `json:"category" validate:"required,max=60"`
	TechStack   []string `json:"tech_stack" validate:"omitempty,max=10"`
	Status      string   `json:"status" validate:"omitempty,oneof=Available Draft Archived"`
}

type UpdateModuleRequest struct {
	Name        string   `json:"name" validate:"omitempty,min=3,max=100"`
	Description string   `json:"description" validate:"omitempty,max=1000"`
	Difficulty  string   `json:"difficulty" validate:"omitempty,oneof=Beginner Intermediate Advanced Expert"`
	Category    string   `json:"category" validate:"omitempty,max=60"`
	TechStack   []string `json:"tech_stack" validate:"omitempty,max=10"`
	Status      string   `json:"status" validate:"omitempty,oneof=Available Draft Archived Completed"`
}

// GetModules lists the catalog. Non-admin callers see Available modules by
// default; filters narrow by category, difficulty and name search.
func GetModules(c *fiber.Ctx) error {
	query := config.DB.Model(&models.Module{})

	status := c.Query("status", models.ModuleStatusAvailable)
	if status != "all" {
		query = query.Where("status = ?", status)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		query = query.Where("difficulty = ?", difficulty)
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var modules []models.Module
	if err := query.Order("created_at DESC").Find(&modules).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(modules))
}

// GetModule returns a single catalog entry.
func GetModule(c *fiber.Ctx) error {
	moduleID := utils.ParseUint(c.Params("id"))

	var module models.Module
	if err := config.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrModuleNotFound)
		}
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(module))
}

// CreateModule handles POST /admin/modules.
func CreateModule(c *fiber.Ctx) error {
	var req CreateModuleRequest
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

	status := req.Status
	if status == "" {
		status = models.ModuleStatusDraft
	}

	module := models.Module{
		Name:        req.Name,
		Description: req.Description,
		Difficulty:  req.Difficulty,
		Category:    req.Category,
		TechStack:   req.TechStack,
		Status:      status,
	}

	if err := config.DB.Create(&module).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(module))
}

// UpdateModule handles PUT /admin/modules/:id.
func UpdateModule(c *fiber.Ctx) error {
	moduleID := utils.ParseUint(c.Params("id"))

	var req UpdateModuleRequest
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

	var module models.Module
	if err := config.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrModuleNotFound)
		}
		return utils.HandleError(c, err)
	}

	if req.Name != "" {
		module.Name = req.Name
	}
	if req.Description != "" {
		module.Description = req.Description
	}
	if req.Difficulty != "" {
		module.Difficulty = req.Difficulty
	}
	if req.Category != "" {
		module.Category = req.Category
	}
	if req.TechStack != nil {
		module.TechStack = req.TechStack
	}
	if req.Status != "" {
		module.Status = req.Status
	}

	if err := config.DB.Save(&module).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(module))
}

// DeleteModule handles DELETE /admin/modules/:id. Entries with history are
// archived instead of removed so existing team engagements keep resolving.
func DeleteModule(c *fiber.Ctx) error {
	moduleID := utils.ParseUint(c.Params("id"))

	var module models.Module
	if err := config.DB.First(&module, moduleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrModuleNotFound)
		}
		return utils.HandleError(c, err)
	}

	var engagements int64
	if err := config.DB.Model(&models.TeamModule{}).
		Where("module_id = ?", module.ID).
		Count(&engagements).Error; err != nil {
		return utils.HandleError(c, err)
	}

	if engagements > 0 {
		if err := config.DB.Model(&module).Update("status", models.ModuleStatusArchived).Error; err != nil {
			return utils.HandleError(c, err)
		}
		return c.JSON(fiber.Map{"success": true, "message": "Module archived"})
	}

	if err := config.DB.Delete(&module).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Module deleted"})
}
