// Package entities defines the GORM entity models of the source catalog.
//
// Table and column names follow the catalog schema used by the rest of the
// transient pipeline tooling, so they are spelled out explicitly on every
// field instead of relying on GORM's naming strategy.
//
// # Observation Entities
//
//   - Dataset: One processing run over a set of images
//   - FrequencyBand: Observing bands shared between images
//   - Image: One calibrated image and its beam and quality parameters
//   - ExtractedSource: One detection measured in one image
//
// # Catalog Entities
//
//   - RunningCatalog: One astronomical source tracked across images
//   - AssocXtrSource: Association of a detection to a running-catalog source
//   - Monitor: User-requested positions measured in every image
//
// # Bookkeeping
//
//   - RejectReason, Rejection: Image quality rejections
//   - Config: Per-dataset configuration snapshot
//
// No foreign key constraints are declared. The consistency probes must be able
// to observe rows that violate the schema's assumptions.
package entities
