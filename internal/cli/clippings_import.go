package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/readstack/readstack/internal/config"
	"github.com/readstack/readstack/internal/kindle"
	"github.com/readstack/readstack/internal/services"
)

// ClippingsImportCommand attaches highlights from a Kindle My Clippings.txt
// file to books already in the library.
type ClippingsImportCommand struct {
	FilePath     string
	DatabasePath string
	OwnerID      uint
	Verbose      bool
	DryRun       bool
}

func NewClippingsImportCommand() *ClippingsImportCommand {
	return &ClippingsImportCommand{}
}

func (cmd *ClippingsImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("clippings-import", flag.ExitOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to My Clippings.txt (required)")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the local database file")
	ownerID := fs.Uint("owner", 1, "Owner ID whose library receives the highlights")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Show what would be imported without making changes")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s clippings-import -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import highlights from a Kindle clippings file.\n\n")
		fmt.Fprintf(os.Stderr, "Connect your Kindle over USB and copy documents/My Clippings.txt.\n")
		fmt.Fprintf(os.Stderr, "Highlights attach to matching books already in the library; titles\n")
		fmt.Fprintf(os.Stderr, "with no match are reported, not created.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s clippings-import -file \"My Clippings.txt\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s clippings-import -file clippings.txt -dry-run -verbose\n", os.Args[0])
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

func (cmd *ClippingsImportCommand) Run() error {
	fmt.Println("Kindle Clippings Import")
	fmt.Println("=======================")

	if cmd.DryRun {
		fmt.Println("DRY RUN MODE - No changes will be made")
		fmt.Println()
	}

	text, err := readExportFile(cmd.FilePath)
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", cmd.FilePath)

	bundles, err := kindle.NewParser().Parse(strings.NewReader(text))
	if err != nil {
		return fmt.Errorf("failed to parse clippings file: %w", err)
	}
	if len(bundles) == 0 {
		fmt.Println("No highlights found in the clippings file")
		return nil
	}

	total := 0
	for _, b := range bundles {
		total += len(b.Highlights)
	}
	fmt.Printf("Found %d highlights across %d books\n", total, len(bundles))

	if cmd.Verbose || cmd.DryRun {
		fmt.Println("\n=== Books Found ===")
		for i, b := range bundles {
			author := b.Author
			if author == "" {
				author = "(no author)"
			}
			fmt.Printf("%d. \"%s\" by %s: %d highlights, %d notes\n",
				i+1, b.Title, author, len(b.Highlights), len(b.Notes))
		}
	}

	if cmd.DryRun {
		fmt.Println("\nDry run complete. Use without -dry-run to import.")
		return nil
	}

	var result services.ClippingsResult
	err = withService(cmd.DatabasePath, func(service *services.ImportService) error {
		var runErr error
		result, runErr = service.ImportClippings(cmd.OwnerID, text)
		return runErr
	})
	if err != nil {
		return err
	}

	fmt.Println("\n=== Import Summary ===")
	fmt.Printf("Books matched: %d\n", result.BooksMatched)
	fmt.Printf("Highlights added: %d\n", result.HighlightsAdded)

	if len(result.Unmatched) > 0 {
		fmt.Printf("\n%d books had no match in the library:\n", len(result.Unmatched))
		for _, title := range result.Unmatched {
			fmt.Printf("  - %s\n", title)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n%d errors occurred:\n", len(result.Errors))
		for _, errMsg := range result.Errors {
			fmt.Printf("  [ERROR] %s\n", errMsg)
		}
	}

	fmt.Println("\nImport complete!")
	return nil
}
