package models

import (
	"context"
	"errors"
	"time"

	"github.com/qamisdata/inspections_backend/config"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SyncInfoSchoolIdentification is the cursor row id for the school
// profile sync. The inspection pipeline has no cursor: its eligibility is
// computed live from the synced flag and workflow state.
const SyncInfoSchoolIdentification = "QAMIS_SCHOOL_SYNC"

// SyncInfo is a named sync cursor: the newest source modification
// timestamp a sweep has fully processed.
type SyncInfo struct {
	ID           string    `gorm:"primaryKey;size:100" json:"id"`
	LastSyncTime time.Time `gorm:"type:datetime(6);not null" json:"last_sync_time"`
}

// GetLastSyncTime returns the stored cursor, or ok=false when no sweep
// has completed yet.
func GetLastSyncTime(ctx context.Context, id string) (time.Time, bool, error) {
	db := config.GetDB()
	var info SyncInfo
	err := db.WithContext(ctx).Take(&info, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	return info.LastSyncTime, true, nil
}

func SetLastSyncTime(ctx context.Context, id string, t time.Time) error {
	db := config.GetDB()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&SyncInfo{ID: id, LastSyncTime: t}).Error
}
