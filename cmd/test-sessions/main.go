package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/medvane/wardboard/internal/testsessions"
)

// Default configuration constants.
const (
	defaultNumSessions    = 200
	defaultInteractions   = 20
	defaultSuggestionSize = 25
	defaultWorkers        = 2 // multiplier for runtime.NumCPU()
	defaultTimeout        = 30 * time.Second
	defaultTestTimeout    = 10 * time.Minute
)

func main() {
	var (
		baseURL        = flag.String("url", "http://localhost:9080", "Base URL of the service")
		numSessions    = flag.Int("sessions", defaultNumSessions, "Number of sessions to open")
		interactions   = flag.Int("interactions", defaultInteractions, "Number of scripted interactions per session")
		suggestionSize = flag.Int("suggestions", defaultSuggestionSize, "Size of each suggestion batch for filter sweeps")
		workers        = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout        = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		outputFile     = flag.String("output", "", "Output file for the session report (default: session_report_TIMESTAMP.json)")
		logFile        = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose        = flag.Bool("verbose", false, "Enable verbose logging")
		help           = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testsessions.ShowHelp()
		return
	}

	// Setup logging
	if err := testsessions.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testsessions.Config{
		BaseURL:        *baseURL,
		NumSessions:    *numSessions,
		Interactions:   *interactions,
		SuggestionSize: *suggestionSize,
		Workers:        *workers,
		Timeout:        *timeout,
		OutputFile:     *outputFile,
		LogFile:        *logFile,
		Verbose:        *verbose,
	}

	// Run the test
	if err := testsessions.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
