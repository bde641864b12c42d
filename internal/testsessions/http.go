package testsessions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// HTTPClient wraps http.Client with timeout
type HTTPClient struct {
	client  *http.Client
	timeout time.Duration
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Get performs a GET request
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body
func (c *HTTPClient) Post(ctx context.Context, url string, body interface{}) (*http.Response, error) {
	jsonData, err := marshalJSON(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// Delete performs a DELETE request
func (c *HTTPClient) Delete(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// marshalJSON marshals a struct to JSON
func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// unmarshalJSON unmarshals JSON to a struct
func unmarshalJSON(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}

// readResponseBody reads and closes the response body
func readResponseBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// shortID trims a session id down to a readable token.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// forEachIndex feeds slice indices to a worker pool and waits for it.
func forEachIndex(ctx context.Context, workers, n int, fn func(i int)) {
	indexChan := make(chan int, workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexChan {
				select {
				case <-ctx.Done():
					return
				default:
					fn(i)
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()
}

// openSessions opens sessions concurrently and records their ids.
func openSessions(ctx context.Context, config *Config, sessions []Session, stats *Stats) error {
	log.Printf("🩺 Opening %d sessions with %d workers...", len(sessions), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/sessions"

	var (
		opened int64
		failed int64
	)

	var mu sync.Mutex // guards Session.SessionID writes

	workers := minInt(config.Workers, len(sessions))
	forEachIndex(ctx, workers, len(sessions), func(i int) {
		body := map[string]string{"specialty": sessions[i].Specialty}
		resp, err := client.Post(ctx, url, body)
		if err != nil {
			atomic.AddInt64(&failed, 1)
			return
		}
		data, err := readResponseBody(resp)
		if err != nil || resp.StatusCode != StatusCreated {
			atomic.AddInt64(&failed, 1)
			return
		}
		var info struct {
			SessionID string `json:"session_id"`
		}
		if err := unmarshalJSON(data, &info); err != nil || info.SessionID == "" {
			atomic.AddInt64(&failed, 1)
			return
		}
		mu.Lock()
		sessions[i].SessionID = info.SessionID
		mu.Unlock()
		atomic.AddInt64(&opened, 1)
	})

	stats.SessionsOpened = int(atomic.LoadInt64(&opened))
	stats.SessionsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Session opening completed:
   Opened: %d
   Failed: %d
`, stats.SessionsOpened, stats.SessionsFailed)

	if stats.SessionsOpened == 0 {
		return fmt.Errorf("no sessions could be opened")
	}
	return nil
}

// driveInteractions plays every session's script against the service.
func driveInteractions(ctx context.Context, config *Config, sessions []Session, stats *Stats) {
	log.Printf("🖱️  Driving interactions for %d sessions with %d workers...", len(sessions), config.Workers)

	client := newHTTPClient(config.Timeout)

	var (
		submitted  int64
		classified int64
		failed     int64
	)

	var lastReport time.Time
	reportInterval := 1 * time.Second

	workers := minInt(config.Workers, len(sessions))
	forEachIndex(ctx, workers, len(sessions), func(i int) {
		session := sessions[i]
		if session.SessionID == "" {
			return
		}
		url := config.BaseURL + "/v1/sessions/" + session.SessionID + "/interactions"
		for _, step := range session.Script {
			if postInteraction(ctx, client, url, step.FeatureID, step.Action, &classified) {
				atomic.AddInt64(&submitted, 1)
			} else {
				atomic.AddInt64(&failed, 1)
			}
			if step.CloseView {
				if postInteraction(ctx, client, url, step.FeatureID, "view_end", &classified) {
					atomic.AddInt64(&submitted, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}
			}
		}

		if time.Since(lastReport) >= reportInterval {
			lastReport = time.Now()
			log.Printf("📊 Interaction progress: %d submitted (signals: %d, failed: %d)",
				atomic.LoadInt64(&submitted), atomic.LoadInt64(&classified), atomic.LoadInt64(&failed))
		}
	})

	stats.InteractionsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.SignalsClassified = int(atomic.LoadInt64(&classified))
	stats.InteractionsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Interaction submission completed:
   Submitted: %d
   Signals classified: %d
   Failed: %d
`, stats.InteractionsSubmitted, stats.SignalsClassified, stats.InteractionsFailed)
}

// postInteraction posts one interaction and counts any classified signal.
func postInteraction(ctx context.Context, client *HTTPClient, url, featureID, action string, classified *int64) bool {
	body := map[string]string{"feature_id": featureID, "action": action}
	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return false
	}
	data, err := readResponseBody(resp)
	if err != nil || resp.StatusCode != StatusAccepted {
		return false
	}
	var ack InteractionAck
	if err := unmarshalJSON(data, &ack); err == nil && ack.Signal != "" && ack.Signal != "none" {
		atomic.AddInt64(classified, 1)
	}
	return true
}

// postNavigations reports one navigation event per session.
func postNavigations(ctx context.Context, config *Config, sessions []Session, stats *Stats) {
	log.Printf("🧭 Posting navigation events for %d sessions...", len(sessions))

	client := newHTTPClient(config.Timeout)

	var submitted int64

	workers := minInt(config.Workers, len(sessions))
	forEachIndex(ctx, workers, len(sessions), func(i int) {
		session := sessions[i]
		if session.SessionID == "" {
			return
		}
		from, to := generateNavigationPair()
		body := map[string]string{
			"patient_id":   "patient_" + shortID(session.SessionID),
			"from_section": from,
			"to_section":   to,
		}
		url := config.BaseURL + "/v1/sessions/" + session.SessionID + "/navigation"
		resp, err := client.Post(ctx, url, body)
		if err != nil {
			return
		}
		if _, err := readResponseBody(resp); err == nil && resp.StatusCode == StatusAccepted {
			atomic.AddInt64(&submitted, 1)
		}
	})

	stats.NavigationsSubmitted = int(atomic.LoadInt64(&submitted))
	log.Printf("✅ Posted %d navigation events", stats.NavigationsSubmitted)
}

// submitVerdicts sends one verdict per session and resubmits a share of
// them to exercise the duplicate path.
func submitVerdicts(ctx context.Context, config *Config, sessions []Session, stats *Stats) {
	log.Printf("📤 Submitting verdicts for %d sessions with %d workers...", len(sessions), config.Workers)

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/v1/suggestions/feedback"

	var (
		submitted int64
		duplicate int64
		failed    int64
	)

	actions := []string{"accept", "ignore", "not_relevant"}

	workers := minInt(config.Workers, len(sessions))
	forEachIndex(ctx, workers, len(sessions), func(i int) {
		session := sessions[i]
		if session.SessionID == "" {
			return
		}
		body := map[string]string{
			"suggestion_id": "sug_" + shortID(session.SessionID),
			"action":        actions[getRandomInt(int64(len(actions)))],
			"patient_id":    "patient_" + shortID(session.SessionID),
		}

		// Every third verdict is sent twice to exercise idempotency.
		attempts := 1
		if i%3 == 0 {
			attempts = 2
		}
		for a := 0; a < attempts; a++ {
			switch submitSingleVerdict(ctx, client, url, body) {
			case "success":
				atomic.AddInt64(&submitted, 1)
			case "duplicate":
				atomic.AddInt64(&duplicate, 1)
			default:
				atomic.AddInt64(&failed, 1)
			}
		}
	})

	stats.VerdictsSubmitted = int(atomic.LoadInt64(&submitted))
	stats.VerdictsDuplicate = int(atomic.LoadInt64(&duplicate))
	stats.VerdictsFailed = int(atomic.LoadInt64(&failed))

	log.Printf(`✅ Verdict submission completed:
   Accepted: %d
   Duplicate: %d
   Failed: %d
`, stats.VerdictsSubmitted, stats.VerdictsDuplicate, stats.VerdictsFailed)
}

// submitSingleVerdict submits a single verdict and returns the result
func submitSingleVerdict(ctx context.Context, client *HTTPClient, url string, body map[string]string) string {
	resp, err := client.Post(ctx, url, body)
	if err != nil {
		return "failed"
	}
	data, err := readResponseBody(resp)
	if err != nil {
		return "failed"
	}

	switch resp.StatusCode {
	case StatusAccepted:
		return "success"
	case StatusOK:
		var ack AckResponse
		if err := unmarshalJSON(data, &ack); err == nil && ack.Duplicate {
			return "duplicate"
		}
		return "duplicate" // Assume duplicate for 200 even if parsing fails
	default:
		return "failed"
	}
}

// closeSessions deletes every opened session.
func closeSessions(ctx context.Context, config *Config, sessions []Session, stats *Stats) {
	log.Printf("🚪 Closing %d sessions...", len(sessions))

	client := newHTTPClient(config.Timeout)

	var closed int64

	workers := minInt(config.Workers, len(sessions))
	forEachIndex(ctx, workers, len(sessions), func(i int) {
		session := sessions[i]
		if session.SessionID == "" {
			return
		}
		url := config.BaseURL + "/v1/sessions/" + session.SessionID
		resp, err := client.Delete(ctx, url)
		if err != nil {
			return
		}
		if _, err := readResponseBody(resp); err == nil && resp.StatusCode == StatusNoContent {
			atomic.AddInt64(&closed, 1)
		}
	})

	stats.SessionsClosed = int(atomic.LoadInt64(&closed))
	log.Printf("✅ Closed %d sessions", stats.SessionsClosed)
}
