package association

import (
	"context"

	"gorm.io/gorm"

	"github.com/transientskp/tkpcat/internal/datastore/entities"
	"github.com/transientskp/tkpcat/internal/datastore/repository"
	"github.com/transientskp/tkpcat/internal/errors"
	"github.com/transientskp/tkpcat/internal/logger"
)

// Merge folds the catalog source fromID into intoID: every association,
// monitor and forced fit of fromID moves to intoID, fromID is deleted and
// the weighted mean of intoID is recomputed from all its detections.
func (m *Matcher) Merge(ctx context.Context, fromID, intoID int64) error {
	if fromID == intoID {
		return contractError("cannot merge runningcatalog %d into itself", fromID)
	}
	log := m.log.WithContext(ctx).With(
		logger.Int64("from", fromID),
		logger.Int64("into", intoID))

	var moved int64
	err := m.store.Transaction(ctx, "merge", func(tx *gorm.DB) error {
		runcats := repository.NewRunningCatalogRepository(tx, m.store.Dialect().SupportsRowLocks())

		// Lock in ascending id order.
		first, second := min(fromID, intoID), max(fromID, intoID)
		loaded := make(map[int64]*entities.RunningCatalog, 2)
		for _, id := range []int64{first, second} {
			rc, err := runcats.GetByID(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrRunningCatalogNotFound) {
					return notFoundError(err, "runningcatalog", id)
				}
				return err
			}
			loaded[id] = rc
		}
		from, into := loaded[fromID], loaded[intoID]
		if from.Dataset != into.Dataset {
			return contractError("runningcatalog %d (dataset %d) and %d (dataset %d) belong to different datasets",
				from.ID, from.Dataset, into.ID, into.Dataset)
		}

		var err error
		if moved, err = repository.NewAssociationRepository(tx).Reassign(ctx, fromID, intoID); err != nil {
			return err
		}
		if err := repository.NewMonitorRepository(tx).ReassignRuncat(ctx, fromID, intoID); err != nil {
			return err
		}
		sources := repository.NewExtractedSourceRepository(tx)
		if err := sources.ReassignForcedRuncat(ctx, fromID, intoID); err != nil {
			return err
		}
		if err := runcats.Delete(ctx, fromID); err != nil {
			return err
		}

		detections, err := sources.ListByRuncat(ctx, intoID)
		if err != nil {
			return err
		}
		into.MonSrc = into.MonSrc || from.MonSrc
		rebuild(into, detections)
		return runcats.Update(ctx, into)
	})
	if err != nil {
		log.Error("merge failed", logger.Error(err))
		return err
	}

	log.Info("merged running catalog sources", logger.Int64("moved_associations", moved))
	return nil
}
