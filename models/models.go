package models

import (
	"time"

	"gorm.io/datatypes"
)

// Session groups the runs recorded by one CLI or RPC session.
type Session struct {
	ID        string    `gorm:"primaryKey;type:varchar(20)"`
	StartedAt time.Time `gorm:"autoCreateTime"`
	EndedAt   *time.Time

	// Statistics
	RunsCount int `gorm:"default:0"`

	// Client info (CLI version, RPC client name, etc)
	ClientInfo datatypes.JSON `gorm:"type:jsonb"`
}

// Run records one matching run: the pattern, its flags, a digest of the
// subject, and the serialized match list. History is a convenience
// cache; losing it has no correctness impact.
type Run struct {
	ID        string `gorm:"primaryKey;type:varchar(20)"`
	SessionID string `gorm:"type:varchar(20);index"`

	// Pattern details
	Pattern string `gorm:"type:text;not null"`
	Flags   string `gorm:"type:varchar(8)"`

	// Subject identification (the subject itself is not stored)
	SubjectDigest string `gorm:"type:varchar(64)"` // SHA256 of subject
	SubjectRunes  int    `gorm:"default:0"`

	// Outcome
	MatchCount     int            `gorm:"default:0"`
	Matches        datatypes.JSON `gorm:"type:jsonb"` // serialized []core.Match
	DurationMicros int64          `gorm:"default:0"`
	TimedOut       bool           `gorm:"default:false"`
	Truncated      bool           `gorm:"default:false"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// SavedPattern is a named entry in the pattern library.
type SavedPattern struct {
	ID string `gorm:"primaryKey;type:varchar(20)"`

	Name    string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Pattern string `gorm:"type:text;not null"`
	Flags   string `gorm:"type:varchar(8)"`
	Notes   string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName customizations for cleaner names
func (Session) TableName() string      { return "sessions" }
func (Run) TableName() string          { return "runs" }
func (SavedPattern) TableName() string { return "saved_patterns" }
