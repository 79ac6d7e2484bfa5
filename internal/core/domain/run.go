package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run statuses
const (
	RunStatusUploaded  = "uploaded"
	RunStatusCleaning  = "cleaning"
	RunStatusSplitting = "splitting"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one dataset preparation: a source file cleaned and split by a refinery version
type Run struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SourceFilename  string     `gorm:"type:varchar(500);not null" json:"source_filename"`
	SourcePath      string     `gorm:"type:text" json:"source_path"`
	SourceHash      string     `gorm:"type:varchar(64);index;not null" json:"source_hash"`
	RefineryVersion string     `gorm:"type:varchar(50);not null" json:"refinery_version"`
	Status          string     `gorm:"type:varchar(50);not null;default:'uploaded'" json:"status"`
	TotalRows       int        `gorm:"default:0" json:"total_rows"`
	CleanedRows     int        `gorm:"default:0" json:"cleaned_rows"`
	DroppedRows     int        `gorm:"default:0" json:"dropped_rows"`
	DuplicateRows   int        `gorm:"default:0" json:"duplicate_rows"`
	Config          JSONB      `gorm:"type:jsonb" json:"config"`
	Stats           JSONB      `gorm:"type:jsonb" json:"stats"`
	Error           string     `gorm:"type:text" json:"error,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`

	// Relations
	DedupHashes []DedupHash `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE" json:"dedup_hashes,omitempty"`
}

// TableName specifies the table name for GORM
func (Run) TableName() string {
	return "runs"
}

// BeforeCreate GORM hook - called before creating a record
func (r *Run) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ValidStatuses returns list of valid run statuses in lifecycle order
func ValidStatuses() []string {
	return []string{
		RunStatusUploaded,
		RunStatusCleaning,
		RunStatusSplitting,
		RunStatusCompleted,
		RunStatusFailed,
	}
}

// IsValidStatus checks if a status is valid
func IsValidStatus(status string) bool {
	for _, s := range ValidStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether a run in this status will not change again
func IsTerminalStatus(status string) bool {
	return status == RunStatusCompleted || status == RunStatusFailed
}
