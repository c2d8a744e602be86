package landing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorx/internal/domain"
	"mentorx/internal/domain/models"
	"mentorx/internal/domain/models/course"
	landingModels "mentorx/internal/domain/models/landing"
	"mentorx/internal/domain/services"
	"mentorx/internal/events"
	"mentorx/internal/service/auth"
	"mentorx/internal/surface"
)

type fakeCourseRepo struct {
	courses map[string]*course.Course
}

func (f *fakeCourseRepo) GetByID(_ context.Context, id string) (*course.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourseRepo) GetTree(_ context.Context, courseID string) (*course.Tree, error) {
	return &course.Tree{CourseID: courseID}, nil
}

func (f *fakeCourseRepo) IsEnrolled(context.Context, string, string) (bool, error) {
	return false, nil
}

type fakeStorage struct {
	paths []string
	err   error
}

func (f *fakeStorage) Upload(_ context.Context, path, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.paths = append(f.paths, path)
	return "https://storage.example.com/public/" + path, nil
}

type recordingPublisher struct {
	types []string
}

func (r *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	r.types = append(r.types, eventType)
	return nil
}
func (r *recordingPublisher) Close() error { return nil }

type serviceFixture struct {
	svc       services.LandingService
	repo      *fakePageRepo
	storage   *fakeStorage
	publisher *recordingPublisher
	courses   *fakeCourseRepo
}

var (
	mentor   = models.Principal{UserID: "mentor-1", Role: models.RoleMentor}
	admin    = models.Principal{UserID: "admin-1", Role: models.RoleAdmin}
	stranger = models.Principal{UserID: "mentee-9", Role: models.RoleMentee}
)

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		repo:      newFakePageRepo(),
		storage:   &fakeStorage{},
		publisher: &recordingPublisher{},
		courses: &fakeCourseRepo{courses: map[string]*course.Course{
			"doc-1": {ID: "doc-1", MentorID: "mentor-1", Published: true},
			"draft": {ID: "draft", MentorID: "mentor-1"},
		}},
	}
	catalogue := testCatalogue(t)
	adapter := NewAdapter(f.repo, fakeTxManager{}, catalogue, testLogger())
	f.svc = NewService(
		adapter,
		NewSessionManager(time.Hour, testLogger()),
		catalogue,
		auth.NewRoleBasedAuthorizer(f.courses),
		f.courses,
		f.storage,
		f.publisher,
		testLogger(),
	)
	return f
}

func TestService_LoadAndSaveAccess(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	snap, err := f.svc.Load(ctx, mentor, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, snap.Fields)

	_, err = f.svc.Load(ctx, stranger, "doc-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Save(ctx, stranger, "doc-1", landingModels.EmptySnapshot("hero"))
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Zero(t, f.repo.upserts)

	page, err := f.svc.Save(ctx, admin, "doc-1", &landingModels.Snapshot{Fields: map[string]string{"title": "By admin"}})
	require.NoError(t, err)
	assert.Equal(t, "hero", page.Layout)
	assert.Equal(t, []string{events.LandingPageSaved}, f.publisher.types)

	_, err = f.svc.Load(ctx, mentor, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Render(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.repo.put(&landingModels.Page{
		DocumentID: "doc-1",
		Layout:     "hero",
		Fields:     map[string]string{"title": `Go <script>alert(1)</script>fast`},
		Images:     map[string]string{"hero": "https://cdn.example.com/mine.jpg"},
	})

	html, err := f.svc.Render(ctx, "doc-1")
	require.NoError(t, err)
	assert.Contains(t, html, "Go &lt;script&gt;alert(1)&lt;/script&gt;fast")
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "https://cdn.example.com/mine.jpg")
	assert.NotContains(t, html, "contenteditable")

	_, err = f.svc.Render(ctx, "draft")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_SessionFlow(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	view, err := f.svc.OpenSession(ctx, mentor, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, landingModels.StateEditing, view.State)
	sid := view.ID

	_, err = f.svc.GetSession(ctx, stranger, sid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.GetSession(ctx, admin, sid)
	assert.NoError(t, err)

	view, err = f.svc.ApplyEvents(ctx, mentor, sid, []surface.Event{
		{Type: surface.EventInput, FieldID: "title", Value: "Mentoring 101"},
	})
	require.NoError(t, err)
	assert.Equal(t, landingModels.StateDirty, view.State)

	err = f.svc.Leave(ctx, mentor, sid, landingModels.LeaveUndecided)
	assert.ErrorIs(t, err, domain.ErrUnsavedChanges)

	view, err = f.svc.SaveSession(ctx, mentor, sid)
	require.NoError(t, err)
	assert.Equal(t, landingModels.StateViewing, view.State)
	assert.Equal(t, "Mentoring 101", f.repo.get("doc-1").Fields["title"])
	assert.Equal(t, []string{events.LandingPageSaved}, f.publisher.types)

	view, err = f.svc.Activate(ctx, mentor, sid)
	require.NoError(t, err)
	assert.Equal(t, landingModels.StateEditing, view.State)

	require.NoError(t, f.svc.Leave(ctx, mentor, sid, landingModels.LeaveUndecided))
	_, err = f.svc.GetSession(ctx, mentor, sid)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_OpenSessionForbidden(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.OpenSession(context.Background(), stranger, "doc-1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestService_UploadImage(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	view, err := f.svc.OpenSession(ctx, mentor, "doc-1")
	require.NoError(t, err)

	view, err = f.svc.UploadImage(ctx, mentor, view.ID, "hero", png)
	require.NoError(t, err)
	require.Len(t, f.storage.paths, 1)
	assert.Regexp(t, `^doc-1/hero-[0-9a-f-]{36}\.png$`, f.storage.paths[0])
	assert.Equal(t, "https://storage.example.com/public/"+f.storage.paths[0], view.Images["hero"].URL)
	assert.True(t, view.Dirty)

	_, err = f.svc.UploadImage(ctx, mentor, view.ID, "hero", []byte("<svg onload=alert(1)>"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	f.storage.err = errors.New("bucket missing")
	_, err = f.svc.UploadImage(ctx, mentor, view.ID, "hero", png)
	assert.Error(t, err)
}

func TestService_UploadImageOutsideEditModeStoresNothing(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

	view, err := f.svc.OpenSession(ctx, mentor, "doc-1")
	require.NoError(t, err)
	// Saving leaves edit mode
	view, err = f.svc.SaveSession(ctx, mentor, view.ID)
	require.NoError(t, err)
	require.Equal(t, landingModels.StateViewing, view.State)

	_, err = f.svc.UploadImage(ctx, mentor, view.ID, "hero", png)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Empty(t, f.storage.paths)
}

func TestService_CloseSession(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	view, err := f.svc.OpenSession(ctx, mentor, "doc-1")
	require.NoError(t, err)
	_, err = f.svc.SetFields(ctx, mentor, view.ID, map[string]string{"title": "unsaved"})
	require.NoError(t, err)

	require.NoError(t, f.svc.CloseSession(ctx, mentor, view.ID))
	_, err = f.svc.RenderSession(ctx, mentor, view.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Zero(t, f.repo.upserts)
}
