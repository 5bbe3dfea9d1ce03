package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/relay"
	"tailpost/pkg/record"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Builds a signed token carrying the given claims (signature is never checked)
func testToken(t *testing.T, claims jwt.MapClaims) (token string) {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("integration-secret"))
	if err != nil {
		t.Fatalf("failed to build test token: %v", err)
	}
	return
}

// In-memory stand-in for the remote store REST endpoint.
// failBudget > 0 rejects that many insert requests before accepting,
// failBudget < 0 rejects every request.
type mockStore struct {
	mu         sync.Mutex
	rows       []record.LogRecord
	requests   int
	failBudget int
	authHeader string
	apiKey     string
	server     *httptest.Server
}

func newMockStore(t *testing.T, failBudget int) (remoteStore *mockStore) {
	t.Helper()

	remoteStore = &mockStore{failBudget: failBudget}
	remoteStore.server = httptest.NewServer(http.HandlerFunc(remoteStore.handle))
	t.Cleanup(remoteStore.server.Close)
	return
}

func (remoteStore *mockStore) handle(w http.ResponseWriter, r *http.Request) {
	remoteStore.mu.Lock()
	defer remoteStore.mu.Unlock()

	remoteStore.requests++
	remoteStore.authHeader = r.Header.Get("Authorization")
	remoteStore.apiKey = r.Header.Get("apikey")

	if r.Method != http.MethodPost || !strings.HasPrefix(r.URL.Path, "/rest/v1/") {
		http.Error(w, `{"message":"unknown route"}`, http.StatusNotFound)
		return
	}

	if remoteStore.failBudget != 0 {
		if remoteStore.failBudget > 0 {
			remoteStore.failBudget--
		}
		http.Error(w, `{"message":"injected failure"}`, http.StatusServiceUnavailable)
		return
	}

	var rec record.LogRecord
	err := json.NewDecoder(r.Body).Decode(&rec)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	remoteStore.rows = append(remoteStore.rows, rec)
	w.WriteHeader(http.StatusCreated)
}

func (remoteStore *mockStore) rowCount() (count int) {
	remoteStore.mu.Lock()
	defer remoteStore.mu.Unlock()
	count = len(remoteStore.rows)
	return
}

func (remoteStore *mockStore) requestCount() (count int) {
	remoteStore.mu.Lock()
	defer remoteStore.mu.Unlock()
	count = remoteStore.requests
	return
}

func (remoteStore *mockStore) snapshotRows() (rows []record.LogRecord) {
	remoteStore.mu.Lock()
	defer remoteStore.mu.Unlock()
	rows = make([]record.LogRecord, len(remoteStore.rows))
	copy(rows, remoteStore.rows)
	return
}

// Polls the mock store until it holds at least the expected number of rows and
// the count stayed stable long enough for stragglers to surface
func waitForRows(remoteStore *mockStore, expected int) (rows []record.LogRecord, err error) {
	deadline := time.Now().Add(10 * time.Second) // generous, the retry cases back off

	lastCount := -1
	var stableSince time.Time

	for {
		if time.Now().After(deadline) {
			err = fmt.Errorf("timeout waiting for %d delivered rows, store holds %d", expected, remoteStore.rowCount())
			return
		}

		curCount := remoteStore.rowCount()
		if curCount != lastCount {
			lastCount = curCount
			stableSince = time.Now()
		}

		if curCount >= expected && time.Since(stableSince) >= 150*time.Millisecond {
			rows = remoteStore.snapshotRows()
			return
		}

		time.Sleep(2 * time.Millisecond)
	}
}

// Searches the buffered log lines for entries passing every non-empty filter.
// Consecutive repeats of the same message (timestamps ignored) collapse to one.
func filterLogBuffer(ctx context.Context, searchText, searchTag, searchSeverity string) (matches string, found bool) {
	logger := logctx.GetLogger(ctx)
	if logger == nil {
		return
	}

	stampRe := regexp.MustCompile(`^\[[^\]]*\]\s*`)
	bracketRe := regexp.MustCompile(`\[[^\]]*\]`)

	var kept []string
	prevMsg := ""
	for _, line := range logger.GetFormattedLogLines() {
		msg := stampRe.ReplaceAllString(line, "")
		if msg == prevMsg {
			continue
		}

		if !lineHasTag(bracketRe, line, searchTag) {
			continue
		}
		if searchSeverity != "" && !strings.Contains(line, "["+searchSeverity+"]") {
			continue
		}
		if searchText != "" && !strings.Contains(line, searchText) {
			continue
		}

		kept = append(kept, line)
		prevMsg = msg
		found = true
	}

	matches = strings.Join(kept, "")
	return
}

// Tag filters match against the bracketed sections only, not free text.
func lineHasTag(bracketRe *regexp.Regexp, line, tag string) (has bool) {
	if tag == "" {
		has = true
		return
	}

	for _, section := range bracketRe.FindAllString(line, -1) {
		if strings.Contains(section, tag) {
			has = true
			return
		}
	}
	return
}

// Sums a uint64 counter series at one pipeline boundary over the test window.
func sumCounter(watchDaemon *relay.Daemon, name string, namespace []string, start, end time.Time) (total int, err error) {
	for _, metric := range watchDaemon.MetricDataSearcher(name, namespace, start, end) {
		cnt, ok := metric.Value.Raw.(uint64)
		if !ok {
			err = fmt.Errorf("expected metric value to be uint64, but type assertion failed")
			return
		}
		total += int(cnt)
	}
	return
}

// Verifies metric collection is functional and counts at the pipeline
// boundaries are correct
func checkPipelineCounts(expectedRead, expectedDelivered int, startTime time.Time, watchDaemon *relay.Daemon, configuredPollInterval time.Duration) (err error) {
	// Give the poller one extra interval to flush in-flight counts
	time.Sleep(2 * configuredPollInterval)
	endTime := time.Now()

	totalLinesRead, err := sumCounter(watchDaemon, "lines_read", []string{global.NSRelay, global.NSmIngest}, startTime, endTime)
	if err != nil {
		return
	}
	if totalLinesRead != expectedRead {
		err = fmt.Errorf("expected ingest read count to be %d, but got %d from metrics", expectedRead, totalLinesRead)
		return
	}

	totalDelivered, err := sumCounter(watchDaemon, "delivered_records", []string{global.NSRelay, global.NSmDelivery}, startTime, endTime)
	if err != nil {
		return
	}
	if totalDelivered != expectedDelivered {
		err = fmt.Errorf("expected delivered record count to be %d, but got %d from metrics", expectedDelivered, totalDelivered)
		return
	}

	totalExhausted, err := sumCounter(watchDaemon, "exhausted_records", []string{global.NSRelay, global.NSmDelivery}, startTime, endTime)
	if err != nil {
		return
	}
	if totalExhausted > 0 {
		err = fmt.Errorf("expected exhausted delivery count to be 0, but got %d from metrics", totalExhausted)
		return
	}

	// One more interval so the next test's window stays clean
	time.Sleep(1 * configuredPollInterval)
	return
}

// Splits delivered rows by stream for per-stream order comparison
func rowsByStream(rows []record.LogRecord) (contentByStream map[string][]string) {
	contentByStream = make(map[string][]string)
	for _, row := range rows {
		contentByStream[row.Stream] = append(contentByStream[row.Stream], row.Content)
	}
	return
}
