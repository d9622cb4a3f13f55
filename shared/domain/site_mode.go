package domain

import "time"

type Mode string

const (
	ModeGroupOnly  Mode = "group_only"
	ModeFullAccess Mode = "full_access"

	// DefaultMode applies whenever no valid record has been written yet.
	DefaultMode = ModeGroupOnly
)

func (m Mode) Valid() bool {
	return m == ModeGroupOnly || m == ModeFullAccess
}

// SiteModeRecord is the single persisted site-visibility flag.
type SiteModeRecord struct {
	Mode      Mode      `json:"mode"`
	UpdatedAt time.Time `json:"updated_at"`
	UpdatedBy string    `json:"updated_by"`
}

// DefaultSiteMode is reported when the store is empty or unreadable.
func DefaultSiteMode() SiteModeRecord {
	return SiteModeRecord{Mode: DefaultMode}
}
