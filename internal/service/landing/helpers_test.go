package landing

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"

	models "mentorx/internal/domain/models/landing"
	"mentorx/internal/domain/repositories"
	"mentorx/internal/layouts"
)

const heroHTML = `<html><body>
<header data-image="hero"><h1 data-field="title">Default title</h1></header>
<p data-field="tagline">Default <em>tagline</em></p>
<a data-field="cta">Enroll</a>
</body></html>`

const minimalHTML = `<html><body>
<section data-image="banner"><h2 data-field="title">Minimal</h2></section>
</body></html>`

const catalogueYAML = `
default: hero
layouts:
  - name: hero
    title: Hero
    template: hero.html
    images:
      hero:
        url: https://cdn.example.com/default-hero.jpg
        position: center
        size: cover
  - name: minimal
    title: Minimal
    template: minimal.html
    images:
      banner:
        url: https://cdn.example.com/banner.jpg
`

func testCatalogue(t *testing.T) *layouts.Catalogue {
	t.Helper()
	c, err := layouts.LoadFS(fstest.MapFS{
		"layouts.yaml": {Data: []byte(catalogueYAML)},
		"hero.html":    {Data: []byte(heroHTML)},
		"minimal.html": {Data: []byte(minimalHTML)},
	}, "layouts.yaml")
	require.NoError(t, err)
	return c
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakePageRepo is an in-memory PageRepository. Reads block on gate and
// writes on writeGate when set.
type fakePageRepo struct {
	mu        sync.Mutex
	pages     map[string]*models.Page
	upserts   int
	reads     int
	failWrite error
	failRead  error
	gate      chan struct{}
	writeGate chan struct{}
}

func newFakePageRepo() *fakePageRepo {
	return &fakePageRepo{pages: map[string]*models.Page{}}
}

func (f *fakePageRepo) GetByDocumentID(_ context.Context, documentID string) (*models.Page, error) {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.failRead != nil {
		return nil, f.failRead
	}
	p, ok := f.pages[documentID]
	if !ok {
		return nil, nil
	}
	cp := *p
	cp.Fields = models.CloneMap(p.Fields)
	cp.Images = models.CloneMap(p.Images)
	return &cp, nil
}

func (f *fakePageRepo) Upsert(_ context.Context, page *models.Page) (*time.Time, error) {
	if f.writeGate != nil {
		<-f.writeGate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts++
	if f.failWrite != nil {
		return nil, f.failWrite
	}
	var previous *time.Time
	if old, ok := f.pages[page.DocumentID]; ok {
		at := old.UpdatedAt
		previous = &at
	}
	cp := *page
	cp.Fields = models.CloneMap(page.Fields)
	cp.Images = models.CloneMap(page.Images)
	f.pages[page.DocumentID] = &cp
	return previous, nil
}

func (f *fakePageRepo) put(page *models.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[page.DocumentID] = page
}

func (f *fakePageRepo) get(documentID string) *models.Page {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pages[documentID]
}

// fakeTxManager runs fn directly.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

func newTestAdapter(t *testing.T, repo *fakePageRepo) *Adapter {
	t.Helper()
	return NewAdapter(repo, fakeTxManager{}, testCatalogue(t), testLogger())
}
