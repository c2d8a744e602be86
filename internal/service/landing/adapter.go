package landing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"mentorx/internal/config"
	"mentorx/internal/domain"
	models "mentorx/internal/domain/models/landing"
	"mentorx/internal/domain/repositories"
	landingRepo "mentorx/internal/domain/repositories/landing"
	"mentorx/internal/layouts"
)

var imageURLPattern = regexp.MustCompile(`^https?://[^\s'"\\()]+$`)

// Adapter moves landing page snapshots between the editor and the page
// repository.
type Adapter struct {
	repo      landingRepo.PageRepository
	txManager repositories.TransactionManager
	catalogue *layouts.Catalogue
	logger    *slog.Logger
}

// NewAdapter creates a persistence adapter
func NewAdapter(
	repo landingRepo.PageRepository,
	txManager repositories.TransactionManager,
	catalogue *layouts.Catalogue,
	logger *slog.Logger,
) *Adapter {
	return &Adapter{
		repo:      repo,
		txManager: txManager,
		catalogue: catalogue,
		logger:    logger,
	}
}

// Load returns the persisted snapshot of a document. A document without a
// record yields empty maps on the default layout, and a record naming a
// layout that no longer exists falls back to the default layout.
func (a *Adapter) Load(ctx context.Context, documentID string) (*models.Snapshot, error) {
	page, err := a.repo.GetByDocumentID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("load landing page: %w", err)
	}
	if page == nil {
		return models.EmptySnapshot(a.catalogue.Default().Name), nil
	}

	snap := &models.Snapshot{
		Layout: page.Layout,
		Fields: models.CloneMap(page.Fields),
		Images: models.CloneMap(page.Images),
	}
	if _, err := a.catalogue.Get(snap.Layout); err != nil {
		a.logger.Warn("landing page names unknown layout, using default",
			"document_id", documentID,
			"layout", snap.Layout,
		)
		snap.Layout = a.catalogue.Default().Name
	}
	return snap, nil
}

// Save validates the snapshot and overwrites the stored record with it.
// Either the whole record is written or an error is returned.
func (a *Adapter) Save(ctx context.Context, documentID string, snap *models.Snapshot) (*models.Page, error) {
	if err := a.Validate(snap); err != nil {
		return nil, err
	}

	page := &models.Page{
		DocumentID: documentID,
		Layout:     snap.Layout,
		Fields:     models.CloneMap(snap.Fields),
		Images:     models.CloneMap(snap.Images),
		UpdatedAt:  time.Now().UTC(),
	}

	err := a.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		previous, err := a.repo.Upsert(txCtx, page)
		if err != nil {
			return err
		}
		if previous != nil {
			a.logger.Debug("overwrote landing page",
				"document_id", documentID,
				"previous_updated_at", *previous,
			)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrValidation) {
			return nil, err
		}
		return nil, fmt.Errorf("save landing page: %w", err)
	}

	a.logger.Info("landing page saved",
		"document_id", documentID,
		"layout", page.Layout,
		"fields", len(page.Fields),
		"images", len(page.Images),
	)
	return page, nil
}

// Validate checks a snapshot against the storage limits.
func (a *Adapter) Validate(snap *models.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot required", domain.ErrValidation)
	}

	err := validation.ValidateStruct(snap,
		validation.Field(&snap.Layout,
			validation.Required,
			validation.Length(1, config.MaxLayoutNameLength),
			validation.By(a.knownLayout),
		),
		validation.Field(&snap.Fields,
			validation.Length(0, config.MaxFieldsPerDocument),
			validation.Each(validation.Length(0, config.MaxFieldValueLength)),
		),
		validation.Field(&snap.Images,
			validation.Length(0, config.MaxFieldsPerDocument),
			validation.Each(
				validation.Length(0, config.MaxImageURLLength),
				validation.Match(imageURLPattern).Error("must be an http(s) URL"),
			),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	if err := validateKeys("fields", snap.Fields); err != nil {
		return err
	}
	return validateKeys("images", snap.Images)
}

func (a *Adapter) knownLayout(value interface{}) error {
	name, _ := value.(string)
	if _, err := a.catalogue.Get(name); err != nil {
		return errors.New("unknown layout")
	}
	return nil
}

func validateKeys(what string, m map[string]string) error {
	for k := range m {
		if k == "" || len(k) > config.MaxFieldIDLength {
			return fmt.Errorf("%w: %s: identifier %q must be 1-%d characters",
				domain.ErrValidation, what, k, config.MaxFieldIDLength)
		}
	}
	return nil
}
