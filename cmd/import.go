package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/statutecheck/statutecheck/internal/config"
	"github.com/statutecheck/statutecheck/internal/service"
	"github.com/statutecheck/statutecheck/internal/store"
)

var importFile string
var importUser string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Bulk-import statute rows from a CSV file",
	Long: `Import validates each row of a CSV file and stages the accepted rows
in the approval queue. Nothing reaches the live tables until a reviewer
approves it.

Rows whose (state, issue) pair already has a live statute are staged as
updates; the rest are staged as inserts. Rows that fail validation are
skipped and counted. A batch larger than IMPORT_MAX_ROWS is rejected
whole before any row is processed.

The CSV header must name the columns: state, issue, time_limit_type,
min_time, max_time, duration, and optionally details, code_reference,
official_source_url, other_source_url, conditions_exceptions, examples,
tolling, issue_info.

Examples:
  # Stage a spreadsheet of statutes, attributed to an editor account
  ./statutecheck import --file statutes.csv --user jsmith`,
	Run: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "Path to the CSV file to import (required)")
	importCmd.Flags().StringVarP(&importUser, "user", "u", "", "Username the staged changes are attributed to (required)")
	importCmd.MarkFlagRequired("file")
	importCmd.MarkFlagRequired("user")
}

func runImport(cmd *cobra.Command, args []string) {
	cfg := config.Load()

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nReceived interrupt signal, shutting down...")
		cancel()
	}()

	log.Println("Connecting to database...")
	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Resolve the submitting actor; staged rows carry this attribution
	// and the permission gate applies to imports like any other edit
	userStore := store.NewUserStore(db)
	submitter, err := userStore.GetByUsername(ctx, importUser)
	if err != nil {
		log.Fatalf("Failed to look up user %s: %v", importUser, err)
	}
	if submitter == nil {
		log.Fatalf("User %s not found", importUser)
	}
	actor, err := userStore.LoadActor(ctx, submitter.ID)
	if err != nil {
		log.Fatalf("Failed to load permissions for %s: %v", importUser, err)
	}

	file, err := os.Open(importFile)
	if err != nil {
		log.Fatalf("Failed to open %s: %v", importFile, err)
	}
	defer file.Close()

	// Create dependencies
	stateStore := store.NewStateStore(db)
	issueStore := store.NewIssueStore(db)
	claimsStore := store.NewSmallClaimsStore(db)
	statuteStore := store.NewStatuteStore(db)
	approvalStore := store.NewApprovalStore(db)

	queue := service.NewChangeQueue(approvalStore, claimsStore, statuteStore)
	importer := service.NewImporter(queue, statuteStore, stateStore, issueStore, cfg.ImportMaxRows)

	log.Printf("Starting import of %s (attributed to %s)", importFile, actor.Username)
	stats, err := importer.ImportCSV(ctx, file, *actor)
	if err != nil {
		if ctx.Err() != nil {
			log.Println("Import cancelled")
			os.Exit(1)
		}
		log.Fatalf("Import failed: %v", err)
	}
	importer.PrintSummary(stats)

	if stats.Failed > 0 {
		os.Exit(1)
	}
}
