package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models/course"
)

// fakeCompletionRepo records every remote call.
type fakeCompletionRepo struct {
	rows      map[string]course.CompletionMark // user|content
	inserts   int
	deletes   int
	failWrite error
}

func newFakeRepo(marks ...course.CompletionMark) *fakeCompletionRepo {
	f := &fakeCompletionRepo{rows: map[string]course.CompletionMark{}}
	for _, m := range marks {
		f.rows[m.UserID+"|"+m.ContentID] = m
	}
	return f
}

func (f *fakeCompletionRepo) ListByCourse(_ context.Context, userID, courseID string) ([]course.CompletionMark, error) {
	var out []course.CompletionMark
	for _, m := range f.rows {
		if m.UserID == userID && m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCompletionRepo) Insert(_ context.Context, m *course.CompletionMark) error {
	f.inserts++
	if f.failWrite != nil {
		return f.failWrite
	}
	key := m.UserID + "|" + m.ContentID
	if _, ok := f.rows[key]; ok {
		return &domain.ConflictError{Message: "completion already exists", ResourceType: "completion", ResourceID: m.ContentID}
	}
	f.rows[key] = *m
	return nil
}

func (f *fakeCompletionRepo) Delete(_ context.Context, userID, contentID string) error {
	f.deletes++
	if f.failWrite != nil {
		return f.failWrite
	}
	delete(f.rows, userID+"|"+contentID)
	return nil
}

func TestLedger_ToggleInsertsThenDeletes(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	l := NewLedger(repo)

	assert.False(t, l.IsComplete("u1", "k1"))

	got, err := l.Toggle(ctx, "u1", "c1", "m1", "k1")
	require.NoError(t, err)
	assert.True(t, got)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 0, repo.deletes)
	assert.True(t, l.IsComplete("u1", "k1"))

	got, err = l.Toggle(ctx, "u1", "c1", "m1", "k1")
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, 1, repo.inserts)
	assert.Equal(t, 1, repo.deletes)
	assert.False(t, l.IsComplete("u1", "k1"))
}

func TestLedger_ToggleTwiceRestoresState(t *testing.T) {
	ctx := context.Background()

	for _, initial := range []bool{false, true} {
		var marks []course.CompletionMark
		if initial {
			marks = append(marks, course.CompletionMark{UserID: "u1", CourseID: "c1", ContentID: "k1"})
		}
		l := NewLedger(newFakeRepo(marks...))
		require.NoError(t, l.Load(ctx, "u1", "c1"))
		require.Equal(t, initial, l.IsComplete("u1", "k1"))

		_, err := l.Toggle(ctx, "u1", "c1", "m1", "k1")
		require.NoError(t, err)
		_, err = l.Toggle(ctx, "u1", "c1", "m1", "k1")
		require.NoError(t, err)

		assert.Equal(t, initial, l.IsComplete("u1", "k1"))
	}
}

func TestLedger_FailureLeavesSetUnchanged(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(course.CompletionMark{UserID: "u1", CourseID: "c1", ContentID: "done"})
	l := NewLedger(repo)
	require.NoError(t, l.Load(ctx, "u1", "c1"))
	repo.failWrite = errors.New("network down")

	got, err := l.Toggle(ctx, "u1", "c1", "m1", "todo")
	assert.Error(t, err)
	assert.False(t, got)
	assert.False(t, l.IsComplete("u1", "todo"))

	got, err = l.Toggle(ctx, "u1", "c1", "m1", "done")
	assert.Error(t, err)
	assert.True(t, got)
	assert.True(t, l.IsComplete("u1", "done"))
}

func TestLedger_RemoteDuplicateCountsAsComplete(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	stale := NewLedger(repo)

	other := NewLedger(repo)
	_, err := other.Toggle(ctx, "u1", "c1", "m1", "k1")
	require.NoError(t, err)

	got, err := stale.Toggle(ctx, "u1", "c1", "m1", "k1")
	require.NoError(t, err)
	assert.True(t, got)
	assert.True(t, stale.IsComplete("u1", "k1"))
}

func TestLedger_LoadScopesToUserAndCourse(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo(
		course.CompletionMark{UserID: "u1", CourseID: "c1", ContentID: "a"},
		course.CompletionMark{UserID: "u1", CourseID: "c2", ContentID: "b"},
		course.CompletionMark{UserID: "u2", CourseID: "c1", ContentID: "c"},
	)
	l := NewLedger(repo)
	require.NoError(t, l.Load(ctx, "u1", "c1"))

	assert.True(t, l.IsComplete("u1", "a"))
	assert.False(t, l.IsComplete("u1", "b"))
	assert.False(t, l.IsComplete("u2", "c"))
	assert.Len(t, l.Marks("u1", "c1"), 1)
	assert.Equal(t, 1, l.Count("u1", []string{"a", "b", "c"}))
}
