package course

import "time"

// CompletionMark records that a user completed a leaf. Unique per
// (UserID, ContentID); unmarking deletes the row, no history is kept.
type CompletionMark struct {
	UserID      string    `json:"user_id" db:"user_id"`
	CourseID    string    `json:"course_id" db:"course_id"`
	ModuleID    string    `json:"module_id" db:"module_id"`
	ContentID   string    `json:"content_id" db:"content_id"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// Progress summarises a user's completion of one course.
type Progress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// NewProgress computes a rounded-down percentage; an empty course is 0%.
func NewProgress(completed, total int) Progress {
	p := Progress{Completed: completed, Total: total}
	if total > 0 {
		p.Percent = completed * 100 / total
	}
	return p
}
