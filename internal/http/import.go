package http

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/readstack/readstack/internal/services"
)

// EnrichmentTrigger queues a metadata sweep; optional on the controller.
type EnrichmentTrigger interface {
	TriggerNow() error
}

// UploadArchiver keeps a replayable record of each import; optional on the
// controller.
type UploadArchiver interface {
	SaveImport(source string, ownerID uint, payload string, created, skipped int, importErrors []string) (string, error)
}

// ImportController accepts export files and runs them through the import
// pipeline. Every endpoint takes a multipart "file" field and responds with
// the import result as JSON.
type ImportController struct {
	service        *services.ImportService
	maxUploadBytes int64
	defaultOwnerID uint
	enrichment     EnrichmentTrigger // nil when enrichment is disabled
	archive        UploadArchiver    // nil when auditing is disabled
}

// NewImportController creates a new ImportController.
func NewImportController(service *services.ImportService, maxUploadBytes int64, defaultOwnerID uint) *ImportController {
	return &ImportController{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		defaultOwnerID: defaultOwnerID,
	}
}

// SetEnrichmentTrigger wires the optional post-import metadata sweep.
func (c *ImportController) SetEnrichmentTrigger(trigger EnrichmentTrigger) {
	c.enrichment = trigger
}

// SetUploadArchiver wires the optional import audit trail.
func (c *ImportController) SetUploadArchiver(archive UploadArchiver) {
	c.archive = archive
}

func (c *ImportController) Goodreads(ctx *gin.Context) {
	c.importBooks(ctx, "goodreads", c.service.ImportGoodreads)
}

func (c *ImportController) Libby(ctx *gin.Context) {
	c.importBooks(ctx, "libby", c.service.ImportLibby)
}

func (c *ImportController) KindleList(ctx *gin.Context) {
	c.importBooks(ctx, "kindle", c.service.ImportKindleList)
}

func (c *ImportController) Readwise(ctx *gin.Context) {
	c.importBooks(ctx, "readwise", func(ownerID uint, text string) (services.ImportResult, error) {
		return c.service.ImportReadwise(ctx.Request.Context(), ownerID, text)
	})
}

func (c *ImportController) Kobo(ctx *gin.Context) {
	c.importBooks(ctx, "kobo", func(ownerID uint, text string) (services.ImportResult, error) {
		return c.service.ImportKobo(ctx.Request.Context(), ownerID, text)
	})
}

// KindleClippings merges a My Clippings.txt upload into the owner's existing
// books instead of creating new ones.
func (c *ImportController) KindleClippings(ctx *gin.Context) {
	text, ok := c.readUpload(ctx)
	if !ok {
		return
	}

	result, err := c.service.ImportClippings(c.ownerID(ctx), text)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// Duplicates reports groups of mutually equivalent books in the library.
func (c *ImportController) Duplicates(ctx *gin.Context) {
	groups, err := c.service.DuplicateReport(c.ownerID(ctx))
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"groups": groups,
		"count":  len(groups),
	})
}

func (c *ImportController) importBooks(ctx *gin.Context, source string, run func(uint, string) (services.ImportResult, error)) {
	text, ok := c.readUpload(ctx)
	if !ok {
		return
	}

	ownerID := c.ownerID(ctx)
	result, err := run(ownerID, text)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.archive != nil {
		if _, err := c.archive.SaveImport(source, ownerID, text, result.Created, result.Skipped, result.Errors); err != nil {
			log.Printf("Failed to archive %s import: %v", source, err)
		}
	}

	if result.Created > 0 && c.enrichment != nil {
		if err := c.enrichment.TriggerNow(); err != nil {
			log.Printf("Failed to queue enrichment after %s import: %v", source, err)
		}
	}

	status := http.StatusOK
	if len(result.Errors) > 0 {
		// Partial success: some batches committed, some failed.
		status = http.StatusMultiStatus
	}
	ctx.JSON(status, result)
}

// readUpload reads the multipart "file" field, enforcing the size cap.
func (c *ImportController) readUpload(ctx *gin.Context) (string, bool) {
	file, header, err := ctx.Request.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "export file not provided"})
		return "", false
	}
	defer file.Close()

	if c.maxUploadBytes > 0 && header.Size > c.maxUploadBytes {
		ctx.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"error": fmt.Sprintf("file too large (max %d bytes)", c.maxUploadBytes),
		})
		return "", false
	}

	reader := io.Reader(file)
	if c.maxUploadBytes > 0 {
		reader = io.LimitReader(file, c.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "failed to read export file"})
		return "", false
	}

	return string(data), true
}

// ownerID resolves the owner from the owner_id query parameter, falling back
// to the configured default.
func (c *ImportController) ownerID(ctx *gin.Context) uint {
	if raw := ctx.Query("owner_id"); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
			return uint(id)
		}
	}
	return c.defaultOwnerID
}
