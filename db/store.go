package db

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/termfx/rext/core"
	"github.com/termfx/rext/models"
)

// Store wraps the history database with the operations the CLI and RPC
// server need.
type Store struct {
	db *gorm.DB
}

// NewStore creates a store over an already-connected database.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection, mainly for tests.
func (s *Store) DB() *gorm.DB { return s.db }

// BeginSession creates and persists a new session row.
func (s *Store) BeginSession(clientInfo map[string]any) (*models.Session, error) {
	session := &models.Session{ID: generateID("ses")}
	if clientInfo != nil {
		raw, err := json.Marshal(clientInfo)
		if err != nil {
			return nil, fmt.Errorf("encoding client info: %w", err)
		}
		session.ClientInfo = datatypes.JSON(raw)
	}
	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return session, nil
}

// EndSession stamps the session's end time.
func (s *Store) EndSession(id string) error {
	now := time.Now()
	return s.db.Model(&models.Session{}).Where("id = ?", id).
		Update("ended_at", &now).Error
}

// SaveRun records a completed matching run. The subject itself is not
// stored, only its digest and length.
func (s *Store) SaveRun(sessionID, subject string, res *core.Result) (*models.Run, error) {
	raw, err := json.Marshal(res.Matches)
	if err != nil {
		return nil, fmt.Errorf("encoding matches: %w", err)
	}

	digest := sha256.Sum256([]byte(subject))
	run := &models.Run{
		ID:             generateID("run"),
		SessionID:      sessionID,
		Pattern:        res.Pattern,
		Flags:          res.Flags,
		SubjectDigest:  hex.EncodeToString(digest[:]),
		SubjectRunes:   res.SubjectRunes,
		MatchCount:     res.Total,
		Matches:        datatypes.JSON(raw),
		DurationMicros: res.DurationUs,
		Truncated:      res.Truncated,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	if sessionID != "" {
		s.db.Model(&models.Session{}).Where("id = ?", sessionID).
			UpdateColumn("runs_count", gorm.Expr("runs_count + 1"))
	}
	return run, nil
}

// SaveTimeout records a run that blew its match budget, so the history
// shows which patterns were problematic.
func (s *Store) SaveTimeout(sessionID, subject, pattern, flags string) (*models.Run, error) {
	digest := sha256.Sum256([]byte(subject))
	run := &models.Run{
		ID:            generateID("run"),
		SessionID:     sessionID,
		Pattern:       pattern,
		Flags:         flags,
		SubjectDigest: hex.EncodeToString(digest[:]),
		SubjectRunes:  len([]rune(subject)),
		TimedOut:      true,
	}
	if err := s.db.Create(run).Error; err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the newest runs, most recent first.
func (s *Store) RecentRuns(limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []models.Run
	err := s.db.Order("created_at DESC").Limit(limit).Find(&runs).Error
	return runs, err
}

// PruneRuns deletes all but the newest keep runs. A keep of zero or
// less disables retention entirely.
func (s *Store) PruneRuns(keep int) error {
	if keep <= 0 {
		return nil
	}
	return s.db.Exec(`DELETE FROM runs WHERE id NOT IN
		(SELECT id FROM runs ORDER BY created_at DESC LIMIT ?)`, keep).Error
}

// SavePattern inserts or updates a named library entry.
func (s *Store) SavePattern(name, pattern, flags, notes string) (*models.SavedPattern, error) {
	var existing models.SavedPattern
	err := s.db.Where("name = ?", name).First(&existing).Error
	switch {
	case err == nil:
		existing.Pattern = pattern
		existing.Flags = flags
		existing.Notes = notes
		if err := s.db.Save(&existing).Error; err != nil {
			return nil, fmt.Errorf("updating pattern %q: %w", name, err)
		}
		return &existing, nil
	case err == gorm.ErrRecordNotFound:
		sp := &models.SavedPattern{
			ID:      generateID("pat"),
			Name:    name,
			Pattern: pattern,
			Flags:   flags,
			Notes:   notes,
		}
		if err := s.db.Create(sp).Error; err != nil {
			return nil, fmt.Errorf("saving pattern %q: %w", name, err)
		}
		return sp, nil
	default:
		return nil, fmt.Errorf("looking up pattern %q: %w", name, err)
	}
}

// GetPattern fetches one library entry by name.
func (s *Store) GetPattern(name string) (*models.SavedPattern, error) {
	var sp models.SavedPattern
	if err := s.db.Where("name = ?", name).First(&sp).Error; err != nil {
		return nil, err
	}
	return &sp, nil
}

// ListPatterns returns the whole library, alphabetical by name.
func (s *Store) ListPatterns() ([]models.SavedPattern, error) {
	var patterns []models.SavedPattern
	err := s.db.Order("name ASC").Find(&patterns).Error
	return patterns, err
}

// DeletePattern removes a library entry by name.
func (s *Store) DeletePattern(name string) error {
	res := s.db.Where("name = ?", name).Delete(&models.SavedPattern{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// generateID creates a unique identifier with a prefix
func generateID(prefix string) string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		// Fallback to timestamp
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(bytes))
}
