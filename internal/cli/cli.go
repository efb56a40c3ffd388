package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/readstack/readstack/internal/database"
	"github.com/readstack/readstack/internal/database/books"
	"github.com/readstack/readstack/internal/entities"
	"github.com/readstack/readstack/internal/services"
)

// readExportFile reads the whole export into memory; exports are small.
func readExportFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("export file not found: %s", path)
		}
		return "", fmt.Errorf("failed to read export file: %w", err)
	}
	return string(data), nil
}

// withService opens the database and hands a ready import service to fn.
func withService(dbPath string, fn func(*services.ImportService) error) error {
	absDBPath, err := filepath.Abs(dbPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	fmt.Printf("\nSaving to database: %s\n", absDBPath)

	db, err := database.NewDatabase(absDBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	return fn(services.NewImportService(books.NewRepository(db.DB)))
}

// runImport runs a book import against the database at dbPath.
func runImport(dbPath string, run func(*services.ImportService) (services.ImportResult, error)) (services.ImportResult, error) {
	var result services.ImportResult
	err := withService(dbPath, func(service *services.ImportService) error {
		var runErr error
		result, runErr = run(service)
		return runErr
	})
	return result, err
}

func printCandidates(candidates []entities.BookInput) {
	fmt.Println("\n=== Books Found ===")
	for i, c := range candidates {
		author := strings.Join(c.Authors, ", ")
		if author == "" {
			author = "(no author)"
		}
		fmt.Printf("%d. \"%s\" by %s", i+1, c.Title, author)
		if c.Status != "" && c.Status != entities.StatusTBD {
			fmt.Printf(" [%s]", c.Status)
		}
		fmt.Println()
	}
}

func printImportResult(result services.ImportResult) {
	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Books created: %d\n", result.Created)
	fmt.Printf("Already in library: %d\n", result.Skipped)

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", errMsg)
		}
	}

	fmt.Println("\nImport complete!")
}
