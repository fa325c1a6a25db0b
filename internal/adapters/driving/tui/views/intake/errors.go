package intake

import "errors"

// ErrNoIngestion is returned when metadata is submitted without an orchestrator.
var ErrNoIngestion = errors.New("ingestion is not available")
