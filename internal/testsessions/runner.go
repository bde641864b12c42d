package testsessions

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/medvane/wardboard/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
)

// Run executes the complete session test.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime: time.Now(),
	}

	logger.Get().Info(ctx, "starting wardboard session test",
		logger.String("baseURL", config.BaseURL),
		logger.Int("sessions", config.NumSessions),
		logger.Int("interactions", config.Interactions),
		logger.Int("suggestions", config.SuggestionSize),
		logger.Int("workers", config.Workers),
		logger.String("timeout", config.Timeout.String()),
		logger.String("logFile", config.LogFile),
		logger.Any("verbose", config.Verbose))

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, config); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Generate session scripts
	sessions := generateSessions(ctx, config)

	// Step 3: Open sessions concurrently
	if err := openSessions(ctx, config, sessions, stats); err != nil {
		return fmt.Errorf("session opening failed: %w", err)
	}

	// Step 4: Drive the interaction scripts
	driveInteractions(ctx, config, sessions, stats)

	// Step 5: Report navigation events
	postNavigations(ctx, config, sessions, stats)

	// Step 6: Sweep the suggestion filter and check the density chain
	sweeps := filterAtDensities(ctx, config, sessions, stats)
	if err := verifyFilterSweeps(ctx, config, sweeps, stats); err != nil {
		return fmt.Errorf("filter verification failed: %w", err)
	}

	// Step 7: Submit verdicts, resubmitting some to exercise idempotency
	submitVerdicts(ctx, config, sessions, stats)

	// Step 8: Wait for queued signals to drain into layouts
	logger.Get().Info(ctx, "waiting for signals to be processed")
	time.Sleep(SignalDrainDelay)

	// Step 9: Fetch and verify every session's layout
	layouts, err := fetchLayouts(ctx, config, sessions, stats)
	if err != nil {
		return fmt.Errorf("layout retrieval failed: %w", err)
	}
	if err := verifyLayouts(ctx, config, layouts, stats); err != nil {
		return fmt.Errorf("layout verification failed: %w", err)
	}

	// Step 10: Save the report to file
	if err := saveReportToFile(ctx, config, sessions, layouts); err != nil {
		logger.Get().Warn(ctx, "failed to save report to file", logger.Error(err))
	}

	// Step 11: Close sessions
	closeSessions(ctx, config, sessions, stats)

	// Final statistics
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(stats)

	logger.Get().Info(ctx, "test completed successfully")
	return nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	logger.Get().Info(ctx, "checking service health")

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/healthz"

	resp, err := client.Get(ctx, url)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	// Accept any 200 response as healthy (the service returns Prometheus metrics)
	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "service is healthy")
	return nil
}

// sessionReport is the saved shape of one test run.
type sessionReport struct {
	Sessions []Session       `json:"sessions"`
	Layouts  []SessionLayout `json:"layouts"`
}

// saveReportToFile saves the session scripts and fetched layouts to a JSON file.
func saveReportToFile(ctx context.Context, config *Config, sessions []Session, layouts []SessionLayout) error {
	if len(sessions) == 0 {
		return fmt.Errorf("no sessions to save")
	}

	// Determine output filename
	filename := config.OutputFile
	if filename == "" {
		timestamp := time.Now().Format("20060102_150405")
		filename = "session_report_" + timestamp + ".json"
	}

	// Ensure the directory exists
	dir := filepath.Dir(filename)
	if dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if err := file.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close file", logger.Error(err))
		}
	}()

	report := sessionReport{Sessions: sessions, Layouts: layouts}
	jsonData, err := marshalJSON(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if _, err := file.Write(jsonData); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if _, err := file.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write trailing newline: %w", err)
	}

	logger.Get().Info(ctx, "report saved to file", logger.String("filename", filename))
	return nil
}

// displayFinalStats prints the final test statistics.
func displayFinalStats(stats *Stats) {
	var successRate, interactionsPerSecond float64

	attempted := stats.InteractionsSubmitted + stats.InteractionsFailed
	if attempted > 0 {
		successRate = float64(stats.InteractionsSubmitted) / float64(attempted) * PercentageMultiplier
	}

	if stats.Duration > 0 {
		interactionsPerSecond = float64(stats.InteractionsSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(context.Background(), "final statistics",
		logger.Int("sessionsOpened", stats.SessionsOpened),
		logger.Int("sessionsFailed", stats.SessionsFailed),
		logger.Int("interactionsSubmitted", stats.InteractionsSubmitted),
		logger.Int("signalsClassified", stats.SignalsClassified),
		logger.Int("interactionsFailed", stats.InteractionsFailed),
		logger.Int("layoutsVerified", stats.LayoutsVerified),
		logger.Int("layoutViolations", stats.LayoutViolations),
		logger.Int("filtersChecked", stats.FiltersChecked),
		logger.Int("filterViolations", stats.FilterViolations),
		logger.Int("verdictsSubmitted", stats.VerdictsSubmitted),
		logger.Int("verdictsDuplicate", stats.VerdictsDuplicate),
		logger.Int("verdictsFailed", stats.VerdictsFailed),
		logger.Int("navigationsSubmitted", stats.NavigationsSubmitted),
		logger.Int("sessionsClosed", stats.SessionsClosed),
		logger.String("duration", stats.Duration.String()),
		logger.Float64("successRate", successRate),
		logger.Float64("interactionsPerSecond", interactionsPerSecond))
}
