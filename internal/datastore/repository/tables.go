package repository

// Table name constants of the catalog schema.
const (
	tableDataset         = "dataset"
	tableFrequencyBand   = "frequencyband"
	tableImage           = "image"
	tableExtractedSource = "extractedsource"
	tableRunningCatalog  = "runningcatalog"
	tableAssocXtrSource  = "assocxtrsource"
	tableMonitor         = "monitor"
	tableRejectReason    = "rejectreason"
	tableRejection       = "rejection"
	tableConfig          = "config"
)

// defaultBatchSize bounds the rows per INSERT statement in CreateInBatches.
const defaultBatchSize = 500
