// Package interfaces holds compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...
package interfaces

import (
	"github.com/readstack/readstack/internal/audit"
	"github.com/readstack/readstack/internal/covers"
	"github.com/readstack/readstack/internal/database/books"
	"github.com/readstack/readstack/internal/http"
	"github.com/readstack/readstack/internal/metadata"
	"github.com/readstack/readstack/internal/scheduler"
	"github.com/readstack/readstack/internal/services"
	"github.com/readstack/readstack/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// The book repository backs both the import pipeline and enrichment.
var _ services.BookStore = (*books.Repository)(nil)
var _ metadata.BookPatcher = (*books.Repository)(nil)

// =============================================================================
// External Services
// =============================================================================

// Catalog metadata provider implementations
var _ metadata.Provider = (*metadata.OpenLibraryClient)(nil)

// Classifier implementations
var _ metadata.Classifier = (*metadata.HeuristicClassifier)(nil)
var _ metadata.Classifier = (*metadata.LookupClassifier)(nil)
var _ services.Classifier = (*metadata.LookupClassifier)(nil)

// Cover cache implementations
var _ metadata.CoverCache = (*covers.Cache)(nil)

// =============================================================================
// Background Work
// =============================================================================

// Task queue implementations
var _ scheduler.TaskEnqueuer = (*tasks.Client)(nil)

// HTTP-layer hooks
var _ http.EnrichmentTrigger = (*scheduler.EnrichmentSweepScheduler)(nil)
var _ http.UploadArchiver = (*audit.Archive)(nil)
