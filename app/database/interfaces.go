package database

import (
	"time"
)

// NoticeRepository is the persistence boundary of the pipeline and the
// read commands.
type NoticeRepository interface {
	Seen(id string) (bool, error)
	Accept(notice Notice) (*Notice, error)
	LatestBySemester(code string) (*Notice, error)
	Search(query string, limit int) ([]Notice, error)
	Prune(olderThan time.Time) (int64, error)
	Count() (int, error)

	SetLastChecked(t time.Time) error
	LastChecked() (*time.Time, error)
}
