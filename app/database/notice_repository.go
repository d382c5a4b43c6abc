package database

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrNotFound = errors.New("notice not found")

var _ NoticeRepository = (*SQLNoticeRepository)(nil)

// SQLNoticeRepository persists accepted notices and the dedup set.
type SQLNoticeRepository struct {
	db *DB
}

func NewNoticeRepository(db *DB) *SQLNoticeRepository {
	return &SQLNoticeRepository{db: db}
}

// NoticeID computes the stable identifier of a notice. Identical
// (title, url) pairs always hash to the same id, however often the
// page is re-scraped.
func NoticeID(title, url string) string {
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s|%s", title, url)))
	return hex.EncodeToString(hash[:])
}

// Seen reports whether a notice id was already accepted.
func (r *SQLNoticeRepository) Seen(id string) (bool, error) {
	var found string
	err := r.db.QueryRow("SELECT id FROM notices WHERE id = ? LIMIT 1", id).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check notice: %w", err)
	}
	return true, nil
}

// Accept inserts a notice unless its id is already present. It returns
// the stored notice, or nil without side effect when the id was seen
// before. The INSERT OR IGNORE keeps check-and-insert atomic.
func (r *SQLNoticeRepository) Accept(notice Notice) (*Notice, error) {
	if notice.ID == "" {
		notice.ID = NoticeID(notice.Title, notice.URL)
	}
	if len(notice.Sems) == 0 {
		return nil, fmt.Errorf("notice %s has no semester tags", notice.ID)
	}
	if notice.CreatedAt.IsZero() {
		notice.CreatedAt = time.Now()
	}

	semsJSON, err := json.Marshal(notice.Sems)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal semester tags: %w", err)
	}

	result, err := r.db.Exec(`
		INSERT OR IGNORE INTO notices (id, title, url, source, sems, summary, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, notice.ID, notice.Title, notice.URL, notice.Source, string(semsJSON), notice.Summary, notice.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to store notice: %w", err)
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read insert result: %w", err)
	}
	if inserted == 0 {
		return nil, nil
	}

	return &notice, nil
}

// LatestBySemester returns the most recent notice tagged with the
// given semester code, or ErrNotFound.
func (r *SQLNoticeRepository) LatestBySemester(code string) (*Notice, error) {
	rows, err := r.db.Query(`
		SELECT id, title, url, source, sems, summary, created_at
		FROM notices
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query notices: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		notice, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		for _, sem := range notice.Sems {
			if sem == code {
				return notice, nil
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notice rows: %w", err)
	}

	return nil, ErrNotFound
}

// Search returns up to limit notices whose title or summary contains
// the query, case-insensitive, most recent first.
func (r *SQLNoticeRepository) Search(query string, limit int) ([]Notice, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	rows, err := r.db.Query(`
		SELECT id, title, url, source, sems, summary, created_at
		FROM notices
		WHERE lower(title) LIKE ? OR lower(summary) LIKE ?
		ORDER BY created_at DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search notices: %w", err)
	}
	defer rows.Close()

	var notices []Notice
	for rows.Next() {
		notice, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		notices = append(notices, *notice)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notice rows: %w", err)
	}

	return notices, nil
}

// Prune removes notices older than the retention cutoff and returns
// how many were deleted.
func (r *SQLNoticeRepository) Prune(olderThan time.Time) (int64, error) {
	result, err := r.db.Exec("DELETE FROM notices WHERE created_at < ?", olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune notices: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read prune result: %w", err)
	}
	return deleted, nil
}

func (r *SQLNoticeRepository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM notices").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count notices: %w", err)
	}
	return count, nil
}

func (r *SQLNoticeRepository) SetLastChecked(t time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO settings (key, value) VALUES ('last_checked', ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`, t.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update last_checked: %w", err)
	}
	return nil
}

// LastChecked returns the time of the last completed check, or nil
// when no check has run yet.
func (r *SQLNoticeRepository) LastChecked() (*time.Time, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = 'last_checked'").Scan(&value)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last_checked: %w", err)
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_checked: %w", err)
	}
	return &t, nil
}

func scanNotice(rows *sql.Rows) (*Notice, error) {
	var notice Notice
	var semsJSON string
	if err := rows.Scan(&notice.ID, &notice.Title, &notice.URL, &notice.Source,
		&semsJSON, &notice.Summary, &notice.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan notice row: %w", err)
	}
	if err := json.Unmarshal([]byte(semsJSON), &notice.Sems); err != nil {
		return nil, fmt.Errorf("failed to unmarshal semester tags: %w", err)
	}
	return &notice, nil
}
