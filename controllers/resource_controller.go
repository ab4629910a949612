package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"teamhub/models"
	"teamhub/utils"
)

type ResourceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewResourceController(db *gorm.DB, logger *log.Logger) *ResourceController {
	return &ResourceController{
		DB:     db,
		Logger: logger,
	}
}

type CreateResourceRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
	URL         string `json:"url" validate:"required,url"`
	Type        string `json:"type" validate:"omitempty,oneof=article video tool repo"`
	ModuleID    *uint  `json:"module_id,omitempty"`
}

type UpdateResourceRequest struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=120"`
	Description string `json:"description" validate:"omitempty,max=500"`
	URL         string `json:"url" validate:"omitempty,url"`
	Type        string `json:"type" validate:"omitempty,oneof=article video tool repo"`
	ModuleID    *uint  `json:"module_id,omitempty"`
}

// GetResources handles GET /resources with optional module/type filters.
func (rc *ResourceController) GetResources(c *fiber.Ctx) error {
	query := rc.DB.Model(&models.Resource{})

	if moduleID := c.Query("module_id"); moduleID != "" {
		query = query.Where("module_id = ?", utils.ParseUint(moduleID))
	}
	if resourceType := c.Query("type"); resourceType != "" {
		query = query.Where("type = ?", resourceType)
	}

	var resources []models.Resource
	if err := query.Order("created_at DESC").Find(&resources).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(resources))
}

// GetResource handles GET /resources/:id
func (rc *ResourceController) GetResource(c *fiber.Ctx) error {
	resourceID := utils.ParseUint(c.Params("id"))

	var resource models.Resource
	if err := rc.DB.Preload("Module").First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrResourceNotFound)
		}
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(resource))
}

// CreateResource handles POST /admin/resources
func (rc *ResourceController) CreateResource(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req CreateResourceRequest
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

	resourceType := req.Type
	if resourceType == "" {
		resourceType = models.ResourceArticle
	}

	resource := models.Resource{
		Title:       req.Title,
		Description: req.Description,
		URL:         req.URL,
		Type:        resourceType,
		ModuleID:    req.ModuleID,
		CreatedBy:   userID,
	}

	if err := rc.DB.Create(&resource).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(resource))
}

// UpdateResource handles PUT /admin/resources/:id
func (rc *ResourceController) UpdateResource(c *fiber.Ctx) error {
	resourceID := utils.ParseUint(c.Params("id"))

	var req UpdateResourceRequest
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

	var resource models.Resource
	if err := rc.DB.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.HandleError(c, utils.ErrResourceNotFound)
		}
		return utils.HandleError(c, err)
	}

	if req.Title != "" {
		resource.Title = req.Title
	}
	if req.Description != "" {
		resource.Description = req.Description
	}
	if req.URL != "" {
		resource.URL = req.URL
	}
	if req.Type != "" {
		resource.Type = req.Type
	}
	if req.ModuleID != nil {
		resource.ModuleID = req.ModuleID
	}

	if err := rc.DB.Save(&resource).Error; err != nil {
		return utils.HandleError(c, err)
	}

	return c.JSON(utils.SuccessResponse(resource))
}

// DeleteResource handles DELETE /admin/resources/:id
func (rc *ResourceController) DeleteResource(c *fiber.Ctx) error {
	resourceID := utils.ParseUint(c.Params("id"))

	result := rc.DB.Delete(&models.Resource{}, resourceID)
	if result.Error != nil {
		return utils.HandleError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return utils.HandleError(c, utils.ErrResourceNotFound)
	}

	return c.JSON(fiber.Map{"success": true, "message": "Resource deleted"})
}
