package player

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
	"mentorx/internal/service/auth"
)

type fakeCourseRepo struct {
	course   *course.Course
	tree     *course.Tree
	enrolled map[string]bool
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id string) (*course.Course, error) {
	if f.course == nil || f.course.ID != id {
		return nil, domain.ErrNotFound
	}
	c := *f.course
	return &c, nil
}

// GetTree returns a deep copy, like a fresh database read.
func (f *fakeCourseRepo) GetTree(_ context.Context, courseID string) (*course.Tree, error) {
	out := &course.Tree{CourseID: courseID}
	for _, m := range f.tree.Modules {
		mc := m
		mc.Children = append([]course.Leaf(nil), m.Children...)
		out.Modules = append(out.Modules, mc)
	}
	return out, nil
}

func (f *fakeCourseRepo) IsEnrolled(_ context.Context, userID, _ string) (bool, error) {
	return f.enrolled[userID], nil
}

type fakeCompletionRepo struct {
	marks []course.CompletionMark
}

func (f *fakeCompletionRepo) ListByCourse(_ context.Context, userID, courseID string) ([]course.CompletionMark, error) {
	var out []course.CompletionMark
	for _, m := range f.marks {
		if m.UserID == userID && m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeCompletionRepo) Insert(context.Context, *course.CompletionMark) error { return nil }
func (f *fakeCompletionRepo) Delete(context.Context, string, string) error         { return nil }

func newTestService(t *testing.T, marks ...course.CompletionMark) *playerService {
	t.Helper()
	tree := twoModuleTree()
	require.NoError(t, tree.Modules[0].Children[0].SetPayload(course.RichTextPayload{
		HTML: `<p onclick="steal()">Welcome</p><script>alert(1)</script>`,
	}))

	courses := &fakeCourseRepo{
		course:   &course.Course{ID: "c1", MentorID: "mentor"},
		tree:     tree,
		enrolled: map[string]bool{"mentee": true},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(courses, &fakeCompletionRepo{marks: marks}, auth.NewRoleBasedAuthorizer(courses), logger)
	return svc.(*playerService)
}

func TestGetPlayer(t *testing.T) {
	svc := newTestService(t,
		course.CompletionMark{UserID: "mentee", CourseID: "c1", ContentID: "leaf1"},
		course.CompletionMark{UserID: "mentee", CourseID: "c1", ContentID: "deleted-leaf"},
		course.CompletionMark{UserID: "other", CourseID: "c1", ContentID: "leaf2"},
	)

	view, err := svc.GetPlayer(context.Background(), models.Principal{UserID: "mentee", Role: models.RoleMentee}, "c1")
	require.NoError(t, err)

	assert.Equal(t, []string{"leaf1"}, view.Completed)
	assert.Equal(t, course.Progress{Completed: 1, Total: 3, Percent: 33}, view.Progress)
	assert.Equal(t, "leaf2", idOf(view.Current))

	payload, err := view.Tree.Modules[0].Children[0].RichText()
	require.NoError(t, err)
	assert.NotContains(t, payload.HTML, "script")
	assert.NotContains(t, payload.HTML, "onclick")
	assert.Contains(t, payload.HTML, "Welcome")
}

func TestGetPlayer_AllCompleteResumesAtFirst(t *testing.T) {
	var marks []course.CompletionMark
	for _, id := range []string{"leaf1", "leaf2", "leaf3"} {
		marks = append(marks, course.CompletionMark{UserID: "mentee", CourseID: "c1", ContentID: id})
	}
	svc := newTestService(t, marks...)

	view, err := svc.GetPlayer(context.Background(), models.Principal{UserID: "mentee"}, "c1")
	require.NoError(t, err)
	assert.Equal(t, 100, view.Progress.Percent)
	assert.Equal(t, "leaf1", idOf(view.Current))
}

func TestGetPlayer_Access(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name    string
		p       models.Principal
		wantErr error
	}{
		{"mentor", models.Principal{UserID: "mentor", Role: models.RoleMentor}, nil},
		{"admin", models.Principal{UserID: "root", Role: models.RoleAdmin}, nil},
		{"enrolled mentee", models.Principal{UserID: "mentee", Role: models.RoleMentee}, nil},
		{"stranger", models.Principal{UserID: "stranger", Role: models.RoleMentee}, domain.ErrForbidden},
		{"other mentor", models.Principal{UserID: "mentor2", Role: models.RoleMentor}, domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.GetPlayer(context.Background(), tt.p, "c1")
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}

	_, err := svc.GetPlayer(context.Background(), models.Principal{UserID: "mentor"}, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNeighbors(t *testing.T) {
	svc := newTestService(t)
	p := models.Principal{UserID: "mentee"}

	n, err := svc.Neighbors(context.Background(), p, "c1", "leaf2")
	require.NoError(t, err)
	assert.Equal(t, "leaf2", idOf(n.Current))
	assert.Equal(t, "leaf1", idOf(n.Previous))
	assert.Equal(t, "leaf3", idOf(n.Next))

	n, err = svc.Neighbors(context.Background(), p, "c1", "leaf1")
	require.NoError(t, err)
	assert.Equal(t, "leaf1", idOf(n.Current))
	assert.Nil(t, n.Previous)
	assert.Equal(t, "leaf2", idOf(n.Next))

	n, err = svc.Neighbors(context.Background(), p, "c1", "leaf3")
	require.NoError(t, err)
	assert.Equal(t, "leaf3", idOf(n.Current))
	assert.Equal(t, "leaf2", idOf(n.Previous))
	assert.Nil(t, n.Next)

	n, err = svc.Neighbors(context.Background(), p, "c1", "")
	require.NoError(t, err)
	assert.Nil(t, n.Current)

	n, err = svc.Neighbors(context.Background(), p, "c1", "unknown")
	require.NoError(t, err)
	assert.Nil(t, n.Current)
	assert.Nil(t, n.Previous)
	assert.Nil(t, n.Next)
}
