// Package repository provides repository interfaces and GORM implementations
// for the catalog tables.
//
// Repositories are cheap value wrappers around a *gorm.DB. Catalog services
// construct them inside datastore.Manager.Transaction callbacks so that every
// statement of one operation runs in the same transaction:
//
//	err := store.Transaction(ctx, "ingest", func(tx *gorm.DB) error {
//	    sources := repository.NewExtractedSourceRepository(tx)
//	    return sources.CreateBatch(ctx, rows)
//	})
//
// Row locks are only requested where the backend supports them; see
// NewRunningCatalogRepository.
package repository
