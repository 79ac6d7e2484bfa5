package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DedupHash records the hash of one cleaned (summary, document) pair of a run
type DedupHash struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	RunID            uuid.UUID `gorm:"type:uuid;not null;index:idx_dedup_run_hash" json:"run_id"`
	Hash             string    `gorm:"type:varchar(64);not null;index:idx_dedup_run_hash;index:idx_dedup_hash" json:"hash"`
	OriginalRowIndex int       `gorm:"not null" json:"original_row_index"`
	Kept             bool      `gorm:"default:true;index:idx_dedup_kept" json:"kept"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`

	Run *Run `gorm:"foreignKey:RunID" json:"run,omitempty"`
}

// TableName specifies the table name for GORM
func (DedupHash) TableName() string {
	return "dedup_hashes"
}

// BeforeCreate GORM hook
func (d *DedupHash) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// Models lists every persisted model, for AutoMigrate
func Models() []interface{} {
	return []interface{}{&Run{}, &DedupHash{}}
}
