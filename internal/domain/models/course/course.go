package course

import (
	"time"
)

type Course struct {
	ID          string    `json:"id" db:"id"`
	MentorID    string    `json:"mentor_id" db:"mentor_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Published   bool      `json:"published" db:"published"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Module is an ordered section of a course. Children are its leaves sorted
// by Order ascending; deleting a module cascades to them in the database.
type Module struct {
	ID        string    `json:"id" db:"id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	Title     string    `json:"title" db:"title"`
	Order     int       `json:"order" db:"sort_order"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Children  []Leaf    `json:"children"`
}

// Tree is the fully loaded module/content structure of one course.
type Tree struct {
	CourseID string   `json:"course_id"`
	Modules  []Module `json:"modules"`
}

// LeafCount returns the number of leaves across all modules.
func (t *Tree) LeafCount() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, m := range t.Modules {
		n += len(m.Children)
	}
	return n
}

// Enrollment grants a mentee access to a course player.
type Enrollment struct {
	UserID    string    `json:"user_id" db:"user_id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
