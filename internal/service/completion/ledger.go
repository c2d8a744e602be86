// Package completion implements the completion ledger: the per-user set
// of completed leaves and its persistence.
package completion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models/course"
	courseRepo "mentorx/internal/domain/repositories/course"
)

type markKey struct {
	userID    string
	contentID string
}

// Ledger is an in-memory set of completion marks backed by a repository.
// Every toggle is written through immediately; nothing is batched.
type Ledger struct {
	repo  courseRepo.CompletionRepository
	mu    sync.Mutex
	marks map[markKey]course.CompletionMark
}

// NewLedger creates an empty ledger
func NewLedger(repo courseRepo.CompletionRepository) *Ledger {
	return &Ledger{
		repo:  repo,
		marks: make(map[markKey]course.CompletionMark),
	}
}

// Load replaces the user's marks for a course with the persisted ones.
func (l *Ledger) Load(ctx context.Context, userID, courseID string) error {
	marks, err := l.repo.ListByCourse(ctx, userID, courseID)
	if err != nil {
		return fmt.Errorf("load completion marks: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for k, m := range l.marks {
		if m.UserID == userID && m.CourseID == courseID {
			delete(l.marks, k)
		}
	}
	for _, m := range marks {
		l.marks[markKey{m.UserID, m.ContentID}] = m
	}
	return nil
}

// IsComplete reports whether the user has marked contentID complete.
func (l *Ledger) IsComplete(userID, contentID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.marks[markKey{userID, contentID}]
	return ok
}

// Count returns how many of contentIDs the user has completed.
func (l *Ledger) Count(userID string, contentIDs []string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, id := range contentIDs {
		if _, ok := l.marks[markKey{userID, id}]; ok {
			n++
		}
	}
	return n
}

// Toggle reads the current membership, then issues exactly one insert or
// one delete and returns the new state. On failure the set is unchanged.
//
// This is not atomic against toggles from other ledgers for the same user:
// the remote store keeps whichever write lands last.
func (l *Ledger) Toggle(ctx context.Context, userID, courseID, moduleID, contentID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := markKey{userID, contentID}
	if _, complete := l.marks[key]; complete {
		if err := l.repo.Delete(ctx, userID, contentID); err != nil {
			return true, fmt.Errorf("remove completion mark: %w", err)
		}
		delete(l.marks, key)
		return false, nil
	}

	mark := course.CompletionMark{
		UserID:      userID,
		CourseID:    courseID,
		ModuleID:    moduleID,
		ContentID:   contentID,
		CompletedAt: time.Now().UTC(),
	}
	if err := l.repo.Insert(ctx, &mark); err != nil {
		// Another tab marked it first; the intent already holds remotely
		if !errors.Is(err, domain.ErrConflict) {
			return false, fmt.Errorf("insert completion mark: %w", err)
		}
	}
	l.marks[key] = mark
	return true, nil
}

// Marks returns the user's marks in a course.
func (l *Ledger) Marks(userID, courseID string) []course.CompletionMark {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []course.CompletionMark{}
	for _, m := range l.marks {
		if m.UserID == userID && m.CourseID == courseID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CompletedAt.Equal(out[j].CompletedAt) {
			return out[i].CompletedAt.Before(out[j].CompletedAt)
		}
		return out[i].ContentID < out[j].ContentID
	})
	return out
}
