// Package quality records why images were rejected by quality control.
//
// An image is accepted until it carries at least one rejection. Rejections
// accumulate; Unreject clears all of them.
package quality

import (
	"context"
	"strconv"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore"
	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
	"github.com/transientskp/tkpcat/internal/observability/metrics"
)

// Tracker manages image rejections. It is safe for concurrent use.
type Tracker struct {
	store   datastore.Manager
	metrics *metrics.CatalogMetrics
	log     logger.Logger
	// descriptions caches rejectreason rows by id
	descriptions *cache.Cache
}

// NewTracker creates a Tracker. metrics may be nil.
func NewTracker(store datastore.Manager, m *metrics.CatalogMetrics, log logger.Logger) *Tracker {
	return &Tracker{
		store:        store,
		metrics:      m,
		log:          log.Module("quality"),
		descriptions: cache.New(cache.NoExpiration, 0),
	}
}

// Reject adds a rejection to an image. Earlier rejections are kept.
func (t *Tracker) Reject(ctx context.Context, imageID int64, reason Reason, comment string) error {
	if !reason.Valid() {
		return errors.Newf("invalid reject reason %d", int(reason)).
			Component("quality").
			Category(errors.CategoryContract).
			Build()
	}
	description, err := t.Describe(ctx, reason)
	if err != nil {
		return err
	}

	err = t.store.Transaction(ctx, "reject", func(tx *gorm.DB) error {
		return repository.NewRejectionRepository(tx).Create(ctx, &entities.Rejection{
			Image:        imageID,
			RejectReason: int64(reason),
			Comment:      comment,
		})
	})
	if err != nil {
		return err
	}

	t.metrics.RecordRejection(reason.String())
	t.log.Info("rejected image",
		logger.Int64("image_id", imageID),
		logger.String("reason", description),
		logger.String("comment", comment))
	return nil
}

// Unreject removes every rejection of an image. Unrejecting an accepted
// image does nothing.
func (t *Tracker) Unreject(ctx context.Context, imageID int64) error {
	var removed int64
	err := t.store.Transaction(ctx, "unreject", func(tx *gorm.DB) error {
		n, err := repository.NewRejectionRepository(tx).DeleteByImage(ctx, imageID)
		removed = n
		return err
	})
	if err != nil {
		return err
	}
	if removed > 0 {
		t.log.Info("unrejected image",
			logger.Int64("image_id", imageID),
			logger.Int64("removed", removed))
	}
	return nil
}

// IsRejected returns one "description: comment" line per rejection of the
// image, or nil when the image is accepted.
func (t *Tracker) IsRejected(ctx context.Context, imageID int64) ([]string, error) {
	entries, err := repository.NewRejectionRepository(t.store.DB()).ListByImage(ctx, imageID)
	if err != nil {
		return nil, errors.New(err).
			Component("quality").
			Category(errors.CategoryDatabase).
			Context("image_id", imageID).
			Build()
	}
	if len(entries) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, e.Description+": "+e.Comment)
	}
	return lines, nil
}

// Describe returns the stored description of a reason.
func (t *Tracker) Describe(ctx context.Context, reason Reason) (string, error) {
	key := strconv.Itoa(int(reason))
	if d, ok := t.descriptions.Get(key); ok {
		return d.(string), nil
	}

	reasons, err := repository.NewRejectionRepository(t.store.DB()).Reasons(ctx)
	if err != nil {
		return "", errors.New(err).
			Component("quality").
			Category(errors.CategoryDatabase).
			Build()
	}
	for _, r := range reasons {
		t.descriptions.Set(strconv.FormatInt(r.ID, 10), r.Description, cache.NoExpiration)
	}

	if d, ok := t.descriptions.Get(key); ok {
		return d.(string), nil
	}
	return "", errors.Newf("reject reason %s is not in rejectreason; run migrations", reason).
		Component("quality").
		Category(errors.CategoryNotFound).
		Build()
}
