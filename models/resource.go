package models

import "gorm.io/gorm"

// Resource types
const (
	ResourceArticle = "article"
	ResourceVideo   = "video"
	ResourceTool    = "tool"
	ResourceRepo    = "repo"
)

// Resource is a curated learning link, optionally tied to a catalog module.
type Resource struct {
	gorm.Model
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	URL         string `gorm:"not null" json:"url"`
	Type        string `gorm:"default:'article';index" json:"type"` // article, video, tool, repo

	ModuleID  *uint `gorm:"index" json:"module_id,omitempty"`
	CreatedBy uint  `json:"created_by"`

	// Relations
	Module *Module `json:"module,omitempty"`
}
