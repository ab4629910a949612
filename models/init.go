package models

import "gorm.io/gorm"

// Seed the catalog with a handful of starter modules so a fresh install has
// something to assign
func CreateDefaultModules(db *gorm.DB) error {
	defaultModules := []Module{
		{
			Name:        "Landing Page Sprint",
			Description: "Build and deploy a responsive marketing page as a team",
			Difficulty:  DifficultyBeginner,
			Category:    "Frontend",
			TechStack:   []string{"HTML", "CSS", "JavaScript"},
			Status:      ModuleStatusAvailable,
		},
		{
			Name:        "REST API Bootcamp",
			Description: "Design and ship a CRUD API with authentication and tests",
			Difficulty:  DifficultyIntermediate,
			Category:    "Backend",
			TechStack:   []string{"Go", "PostgreSQL"},
			Status:      ModuleStatusAvailable,
		},
		{
			Name:        "Realtime Chat",
			Description: "Websocket chat with presence, rooms and message history",
			Difficulty:  DifficultyAdvanced,
			Category:    "Fullstack",
			TechStack:   []string{"React", "Node.js", "Redis"},
			Status:      ModuleStatusAvailable,
		},
		{
			Name:        "Payment Integration Lab",
			Description: "Wire a sandbox payment gateway into a checkout flow end to end",
			Difficulty:  DifficultyExpert,
			Category:    "Fintech",
			TechStack:   []string{"Go", "PostgreSQL", "PayUnit"},
			Status:      ModuleStatusDraft,
		},
	}
	for _, module := range defaultModules {
		if err := db.FirstOrCreate(&module, "name = ?", module.Name).Error; err != nil {
			return err
		}
	}
	return nil
}
