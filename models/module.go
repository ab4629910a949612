package models

import (
	"math"
	"time"

	"gorm.io/gorm"
)

// Module difficulty levels
const (
	DifficultyBeginner     = "Beginner"
	DifficultyIntermediate = "Intermediate"
	DifficultyAdvanced     = "Advanced"
	DifficultyExpert       = "Expert"
)

// Module catalog statuses
const (
	ModuleStatusAvailable = "Available"
	ModuleStatusDraft     = "Draft"
	ModuleStatusArchived  = "Archived"
	ModuleStatusCompleted = "Completed"
)

// TeamModule statuses
const (
	TeamModuleSelected   = "selected"
	TeamModuleInProgress = "in_progress"
	TeamModuleCompleted  = "completed"
)

// PhaseSequence is the fixed order a team is expected to record phases in.
// Recording "Execution Started" moves the engagement to in_progress and
// recording "Launched" closes it out.
var PhaseSequence = []string{
	"Team Formation",
	"Module Assigned",
	"Execution Started",
	"First Delivery",
	"Final Merge",
	"Launched",
}

const (
	PhaseExecutionStarted = "Execution Started"
	PhaseLaunched         = "Launched"
)

// Module is a catalog entry teams can pick up.
type Module struct {
	gorm.Model
	Name        string   `gorm:"not null" json:"name"`
	Description string   `json:"description"`
	Difficulty  string   `gorm:"default:'Beginner'" json:"difficulty"` // Beginner, Intermediate, Advanced, Expert
	Category    string   `gorm:"index" json:"category"`
	TechStack   []string `gorm:"serializer:json" json:"tech_stack"`
	Status      string   `gorm:"default:'Draft';index" json:"status"` // Available, Draft, Archived, Completed
}

// TeamModule is one team's engagement with one module. A team holds at most
// one of these at a time.
type TeamModule struct {
	gorm.Model
	TeamID   uint `gorm:"not null;index" json:"team_id"`
	ModuleID uint `gorm:"not null;index" json:"module_id"`

	Status     string     `gorm:"default:'selected'" json:"status"` // selected, in_progress, completed
	AssignedAt time.Time  `json:"assigned_at"`
	Deadline   *time.Time `json:"deadline,omitempty"`

	// Relations
	Team   Team           `json:"-"`
	Module Module         `json:"module,omitempty"`
	Phases []ProjectPhase `gorm:"foreignKey:TeamModuleID;constraint:OnDelete:CASCADE" json:"phases,omitempty"`
}

// ProjectPhase is an append-only milestone record for a TeamModule.
type ProjectPhase struct {
	gorm.Model
	TeamModuleID uint   `gorm:"not null;index" json:"team_module_id"`
	PhaseName    string `gorm:"not null" json:"phase_name"`

	ProofLink   string    `json:"proof_link,omitempty"`
	Remarks     string    `json:"remarks,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

// IsKnownPhase reports whether name is one of the fixed sequence entries.
func IsKnownPhase(name string) bool {
	for _, p := range PhaseSequence {
		if p == name {
			return true
		}
	}
	return false
}

// NextPhase returns the first sequence entry not present in recorded, or ""
// when every phase has been recorded.
func NextPhase(recorded []ProjectPhase) string {
	seen := make(map[string]bool, len(recorded))
	for _, p := range recorded {
		seen[p.PhaseName] = true
	}
	for _, name := range PhaseSequence {
		if !seen[name] {
			return name
		}
	}
	return ""
}

// ProgressPercent derives the display progress from the recorded phase count.
func ProgressPercent(recordedCount int) int {
	if recordedCount < 0 {
		return 0
	}
	if recordedCount > len(PhaseSequence) {
		recordedCount = len(PhaseSequence)
	}
	return int(math.Round(float64(recordedCount) / float64(len(PhaseSequence)) * 100))
}
