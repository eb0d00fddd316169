package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmolina/caselink/internal/casedesk"
	"github.com/dmolina/caselink/internal/config"
	"github.com/dmolina/caselink/internal/db"
	"github.com/dmolina/caselink/internal/selection"
	"github.com/dmolina/caselink/internal/services"
	"github.com/dmolina/caselink/internal/version"
)

func main() {
	// Essential command line flags only (GNU-style double dashes)
	configPathFlag := flag.String("config", "", "Path to JSON configuration file (default: ~/.config/caselink/config.json)")
	caseFlag := flag.String("case", "", "Target case id for the bulk assignment")
	idsFlag := flag.String("ids", "", "Comma-separated email ids to assign (default: persisted selection)")
	csvFlag := flag.String("csv", "", "Write the assignment results to this CSV file")
	retryFlag := flag.Bool("retry-failed", false, "After the first run, resubmit the failed subset once")
	versionFlag := flag.Bool("version", false, "Show version information and exit")

	// Override flag usage text to show clean, simple usage
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n\n", version.GetVersionString())
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Examples:\n")
		fmt.Fprintf(os.Stderr, "  %s --case CASE-42                       # Assign the persisted selection\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --case CASE-42 --ids a,b,c           # Assign an explicit id list\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --case CASE-42 --csv results.csv     # Export the outcome per email\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --version                            # Show version information\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CASELINK_CONFIG   Override default config file path\n")
		fmt.Fprintf(os.Stderr, "  CASELINK_API_KEY  Override the backend API key\n\n")
		fmt.Fprintf(os.Stderr, "For all other settings (backend URL, polling, batching), edit the config file.\n")
	}

	flag.Parse()

	// Handle version flag
	if *versionFlag {
		fmt.Println(version.GetDetailedVersionString())
		return
	}

	// Load configuration with smart defaults and environment variable support
	configPath := getConfigPath(*configPathFlag)

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: could not load configuration: %v", err)
		cfg = config.DefaultConfig()
	}

	logger := setupLogger(cfg.LogFile)

	apiKey := cfg.Backend.APIKey
	if env := os.Getenv("CASELINK_API_KEY"); env != "" {
		apiKey = env
	}

	client, err := casedesk.NewClient(casedesk.Options{
		BaseURL: cfg.Backend.BaseURL,
		APIKey:  apiKey,
		Timeout: cfg.GetBackendTimeout(),
	})
	if err != nil {
		log.Fatalf("Could not initialize case-desk client: %v", err)
	}
	client.SetLogger(logger)

	ctx := context.Background()

	// Optional: open database store for the persisted selection and the
	// assignment history. The client stays usable without it.
	var store *db.Store
	dbPath := cfg.Selection.DBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	if st, err := db.Open(ctx, expandPath(dbPath)); err == nil {
		store = st
		defer func() { _ = store.Close() }()
	} else {
		log.Printf("Warning: could not open local store: %v", err)
	}

	var persister selection.Persister
	var history services.AssignmentHistory
	if store != nil {
		persister = db.NewSelectionStore(store)
		history = db.NewHistoryStore(store)
	}

	emails := resolveEmails(ctx, *idsFlag, persister, cfg.Selection.Slot, logger)
	if len(emails) == 0 {
		log.Fatal("No emails to assign. Provide --ids or build a selection first.")
	}
	if strings.TrimSpace(*caseFlag) == "" {
		log.Fatal("A target case is required. Provide it via --case.")
	}

	service := services.NewAssignmentService(client, history, cfg.GetPollInterval(), cfg.Polling.MaxConsecutiveFailures)
	service.SetLogger(logger)

	opts := services.AssignOptions{
		BatchSize:    cfg.Assign.BatchSize,
		SkipExisting: cfg.Assign.SkipExisting,
		Priority:     casedesk.Priority(cfg.Assign.Priority),
	}

	results, err := runAssignment(ctx, service, emails, *caseFlag, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *retryFlag && hasFailures(results) {
		fmt.Println("Retrying failed emails...")
		run, err := service.Retry(ctx, results, *caseFlag, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: retry: %v\n", err)
			os.Exit(1)
		}
		run.OnProgress(printProgress)
		report, err := run.Wait(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: retry: %v\n", err)
			os.Exit(1)
		}
		results = mergeRetry(results, report.Results)
		printSummary(report.JobID, results)
	}

	if *csvFlag != "" {
		if err := exportCSV(*csvFlag, results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results written to %s\n", *csvFlag)
	}

	if hasFailures(results) {
		os.Exit(1)
	}
}

// runAssignment submits one bulk assignment and blocks until it settles
func runAssignment(ctx context.Context, service services.AssignmentService, emails []casedesk.Email, caseID string, opts services.AssignOptions) ([]services.AssignmentResult, error) {
	run, err := service.StartAssignment(ctx, emails, caseID, opts)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Assigning %d emails to case %s (job %s)\n", len(emails), caseID, run.JobID)
	run.OnProgress(printProgress)

	report, err := run.Wait(ctx)
	if err != nil {
		return nil, err
	}
	printSummary(report.JobID, report.Results)
	return report.Results, nil
}

func printProgress(p services.ProgressSummary) {
	if p.CurrentOperation != "" {
		fmt.Printf("  %5.1f%% (%d/%d) %s\n", p.Percentage, p.Completed, p.Total, p.CurrentOperation)
		return
	}
	fmt.Printf("  %5.1f%% (%d/%d)\n", p.Percentage, p.Completed, p.Total)
}

func printSummary(jobID string, results []services.AssignmentResult) {
	succeeded, failed := 0, 0
	for _, res := range results {
		if res.Success {
			succeeded++
		} else {
			failed++
		}
	}
	fmt.Printf("Job %s finished: %d assigned, %d failed\n", jobID, succeeded, failed)
	for _, res := range results {
		if !res.Success {
			fmt.Printf("  failed: %s: %s\n", res.EmailID, res.Error)
		}
	}
}

// resolveEmails turns --ids into a submission list, falling back to the
// selection persisted under the configured slot.
func resolveEmails(ctx context.Context, idsArg string, persister selection.Persister, slot string, logger *log.Logger) []casedesk.Email {
	var ids []string
	if idsArg != "" {
		for _, id := range strings.Split(idsArg, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	} else if persister != nil {
		store := selection.NewStore(persister, slot)
		store.SetLogger(logger)
		store.Restore(ctx)
		ids = store.SelectedIDs()
	}

	emails := make([]casedesk.Email, 0, len(ids))
	for _, id := range ids {
		emails = append(emails, casedesk.Email{ID: id})
	}
	return emails
}

// mergeRetry folds the retry outcomes back over the first run's results,
// keyed by email id. Emails absent from the retry keep their first outcome.
func mergeRetry(first, retried []services.AssignmentResult) []services.AssignmentResult {
	byID := make(map[string]services.AssignmentResult, len(retried))
	for _, res := range retried {
		byID[res.EmailID] = res
	}
	merged := make([]services.AssignmentResult, len(first))
	for i, res := range first {
		if upd, ok := byID[res.EmailID]; ok {
			res = upd
		}
		merged[i] = res
	}
	return merged
}

func hasFailures(results []services.AssignmentResult) bool {
	for _, res := range results {
		if !res.Success {
			return true
		}
	}
	return false
}

func exportCSV(path string, results []services.AssignmentResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return services.WriteResultsCSV(f, results)
}

// setupLogger writes debug output to the configured log file, or to the
// default log directory. Logging is optional; on failure it is discarded.
func setupLogger(logFile string) *log.Logger {
	path := logFile
	if path == "" {
		path = filepath.Join(config.DefaultLogDir(), "caselink.log")
	}
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil
	}
	return log.New(f, "", log.LstdFlags)
}

// getConfigPath returns the configuration file path using the following priority:
// 1. CLI flag
// 2. Environment variable CASELINK_CONFIG
// 3. Default path ~/.config/caselink/config.json
func getConfigPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envPath := os.Getenv("CASELINK_CONFIG"); envPath != "" {
		return expandPath(envPath)
	}

	return config.DefaultConfigPath()
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	if path == "~" {
		return home
	}

	return filepath.Join(home, path[2:])
}
