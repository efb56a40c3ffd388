// Package cli implements the standalone import commands.
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/readstack/readstack/internal/config"
	"github.com/readstack/readstack/internal/importers"
	"github.com/readstack/readstack/internal/services"
)

// GoodreadsImportCommand imports a Goodreads library export CSV.
type GoodreadsImportCommand struct {
	FilePath     string
	DatabasePath string
	OwnerID      uint
	Verbose      bool
	DryRun       bool
}

func NewGoodreadsImportCommand() *GoodreadsImportCommand {
	return &GoodreadsImportCommand{}
}

func (cmd *GoodreadsImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("goodreads-import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the Goodreads library export CSV (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	ownerID := fs.Uint("owner", 1, "Owner ID the imported books belong to")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s goodreads-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a Goodreads library export.\n\n")
		fmt.Fprintf(os.Stderr, "Export your library at goodreads.com: My Books -> Import and export ->\n")
		fmt.Fprintf(os.Stderr, "Export Library, then pass the downloaded CSV to this command.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s goodreads-import -file goodreads_library_export.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s goodreads-import -file export.csv -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	cmd.OwnerID = uint(*ownerID)

	return nil
}

func (cmd *GoodreadsImportCommand) Run() error {
	fmt.Println("Goodreads Import")
	fmt.Println("================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	text, err := readExportFile(cmd.FilePath)
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", cmd.FilePath)

	candidates := importers.ParseGoodreadsCSV(text)
	if len(candidates) == 0 {
		fmt.Println("No books found in the export")
		return nil
	}
	fmt.Printf("Found %d books after deduplication\n", len(candidates))

	if cmd.Verbose {
		printCandidates(candidates)
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	result, err := runImport(cmd.DatabasePath, func(service *services.ImportService) (services.ImportResult, error) {
		return service.ImportBooks(cmd.OwnerID, candidates)
	})
	if err != nil {
		return err
	}

	printImportResult(result)
	return nil
}

