package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/readstack/readstack/internal/config"
	"github.com/readstack/readstack/internal/importers"
	"github.com/readstack/readstack/internal/services"
)

// LibbyImportCommand imports a Libby timeline export CSV.
type LibbyImportCommand struct {
	FilePath     string
	DatabasePath string
	OwnerID      uint
	Verbose      bool
	DryRun       bool
}

func NewLibbyImportCommand() *LibbyImportCommand {
	return &LibbyImportCommand{}
}

func (cmd *LibbyImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("libby-import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the Libby timeline export CSV (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	ownerID := fs.Uint("owner", 1, "Owner ID the imported books belong to")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s libby-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a Libby timeline export.\n\n")
		fmt.Fprintf(os.Stderr, "In the Libby app open your Timeline, choose Export Timeline and pick\n")
		fmt.Fprintf(os.Stderr, "the spreadsheet (CSV) format, then pass the file to this command.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s libby-import -file libbytimeline-activities.csv\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s libby-import -file timeline.csv -owner 2 -verbose\n", os.Args[0])
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

func (cmd *LibbyImportCommand) Run() error {
	fmt.Println("Libby Import")
	fmt.Println("============")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	text, err := readExportFile(cmd.FilePath)
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", cmd.FilePath)

	candidates := importers.ParseLibbyCSV(text)
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
