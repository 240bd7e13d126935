package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/echomag/echomag/internal/shared/constants"
)

// ExpiryRunModel is one row of the expiry run log.
type ExpiryRunModel struct {
	ID         uint      `gorm:"primarykey"`
	RunID      string    `gorm:"column:run_id;uniqueIndex;size:36;not null"`
	Trigger    string    `gorm:"column:trigger_source;size:20;not null"`
	StartedAt  time.Time `gorm:"not null;index:idx_expiry_runs_started_at"`
	FinishedAt *time.Time
	Success    bool   `gorm:"not null;default:false"`
	Message    string `gorm:"size:500"`
	Candidates int    `gorm:"not null;default:0"`
	Succeeded  int    `gorm:"not null;default:0"`
	Failed     int    `gorm:"not null;default:0"`
	Skipped    int    `gorm:"not null;default:0"`
	PerTier    datatypes.JSON
	Failures   datatypes.JSON
	Error      string `gorm:"column:error_message;size:1000"`
}

// TableName specifies the table name for GORM
func (ExpiryRunModel) TableName() string {
	return constants.TableExpiryRuns
}
