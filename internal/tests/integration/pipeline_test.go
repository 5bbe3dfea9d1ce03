// Integration tests for the watch pipeline against a mock remote store
package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"tailpost/internal/global"
	"tailpost/internal/logctx"
	"tailpost/internal/relay"
	"tailpost/pkg/record"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Tests the full watch pipeline including daemon startup/shutdown
func TestWatchDeliverPipeline(t *testing.T) {
	testDir := t.TempDir()

	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			if !strings.Contains(fmt.Sprintf("%v", fatalError), "test timed out after") {
				t.Fatalf("Error: panic in integration test: %v\n%s\n", fatalError, stack)
			}
		}
	}()

	// All diagnostics land in a shared buffer the assertions filter later
	logVerbosity := 1 // errors plus lifecycle, quiet enough to scan on failure
	globalCtx, globalCancel := context.WithCancel(context.Background())
	globalCtx = logctx.New(globalCtx, "global", logVerbosity, globalCtx.Done())

	// Mock remote store
	remoteStore := newMockStore(t, 0)

	// Mock watched sources
	plainLogPath := filepath.Join(testDir, "app-stdout.log")
	jsonLogPath := filepath.Join(testDir, "container-json.log")

	plainLog, err := os.OpenFile(plainLogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		t.Fatalf("failed to create test watch file: %v", err)
	}
	defer plainLog.Close()
	jsonLog, err := os.OpenFile(jsonLogPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		t.Fatalf("failed to create test watch file: %v", err)
	}
	defer jsonLog.Close()

	// Anything already in a file when the daemon starts must never deliver
	preStartLine := "line written before daemon start"
	_, err = plainLog.WriteString(preStartLine + "\n")
	if err != nil {
		t.Fatalf("failed to write pre-start line: %v", err)
	}

	// Tight retry and rescan settings keep the whole run under a second
	testAgentID := "agent-7"
	newCfg := relay.Config{
		StoreURL:      remoteStore.server.URL,
		StoreTable:    "logs",
		RetryLimit:    3,
		RetryInterval: 20 * time.Millisecond,
		Token: testToken(t, jwt.MapClaims{
			"sub":      "user-integration",
			"agent_id": testAgentID,
		}),
		SourcePaths:              []string{plainLogPath, "json:" + jsonLogPath},
		DiscoveryRescanInterval:  100 * time.Millisecond,
		AutoscaleEnabled:         true,
		AutoscaleCheckInterval:   200 * time.Millisecond,
		MinStreamQueueSize:       global.DefaultMinQueueSize,
		MaxStreamQueueSize:       global.DefaultMaxQueueSize,
		MinDeliveryQueueSize:     global.DefaultMinQueueSize,
		MaxDeliveryQueueSize:     global.DefaultMaxQueueSize,
		MetricCollectionInterval: 100 * time.Millisecond, // short so count checks see fresh slices
		MetricMaxAge:             5 * time.Minute,
	}

	// Launch watch daemon in background
	watchDaemon := relay.NewDaemon(newCfg)
	err = watchDaemon.Start(globalCtx)
	if err != nil {
		t.Fatalf("expected no watch daemon startup errors, got error '%v'", err)
	}

	// Give the watchers a beat to attach
	time.Sleep(2 * newCfg.MetricCollectionInterval)

	// Startup must be clean before any writes happen
	errors, errorsFound := filterLogBuffer(globalCtx, "", "", global.ErrorLog)
	if errorsFound {
		t.Fatalf("expected no start-up errors in watch pipeline, but found: %v\n", errors)
	}

	// Ordered burst content
	burstLines := make([]string, 200)
	for i := range burstLines {
		burstLines[i] = fmt.Sprintf("ordered line %03d", i)
	}

	// Each case appends to a live watched file and waits on the store
	testCases := []struct {
		name        string
		target      *os.File
		lines       []string
		wantRead    int // Non-blank lines the reader should count
		wantStdout  []string
		wantStderr  []string
		wantDropped bool
	}{
		{
			name:       "Plain Single",
			target:     plainLog,
			lines:      []string{"plain line one"},
			wantRead:   1,
			wantStdout: []string{"plain line one"},
		},
		{
			name:       "Blank Lines Ignored",
			target:     plainLog,
			lines:      []string{"", "   ", "still here"},
			wantRead:   1,
			wantStdout: []string{"still here"},
		},
		{
			name:       "Plain Ordered Burst",
			target:     plainLog,
			lines:      burstLines,
			wantRead:   len(burstLines),
			wantStdout: burstLines,
		},
		{
			name:   "Envelope Streams",
			target: jsonLog,
			lines: []string{
				`{"log":"service listening","stream":"stdout","time":"2026-08-25T10:00:00Z"}`,
				`{"log":"first failure","stream":"stderr"}`,
				`{"log":"second failure","stream":"stderr"}`,
			},
			wantRead:   3,
			wantStdout: []string{"service listening"},
			wantStderr: []string{"first failure", "second failure"},
		},
		{
			name:   "Malformed Envelope Dropped",
			target: jsonLog,
			lines: []string{
				"definitely not json",
				`{"log":"survivor","stream":"stdout"}`,
				`{"log":"","stream":"stdout"}`,
			},
			wantRead:    3,
			wantStdout:  []string{"survivor"},
			wantDropped: true,
		},
	}

	var deliveredTotal int
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			testStartTime := time.Now()

			// Append test text to the watched file
			for _, line := range tt.lines {
				_, err := tt.target.WriteString(line + "\n")
				if err != nil {
					t.Fatalf("expected no error writing to watched file, but got '%v'", err)
				}
			}

			wantCount := len(tt.wantStdout) + len(tt.wantStderr)
			rows, err := waitForRows(remoteStore, deliveredTotal+wantCount)
			if err != nil {
				t.Fatalf("expected no error waiting for delivered rows, but got '%v'", err)
			}
			newRows := rows[deliveredTotal:]
			deliveredTotal += wantCount

			if len(newRows) != wantCount {
				t.Fatalf("expected %d new rows in the store, but got %d", wantCount, len(newRows))
			}

			// Identity must be stamped on every row
			for _, row := range newRows {
				if row.UserID != "user-integration" {
					t.Errorf("expected every row to carry user id 'user-integration', but got '%s'", row.UserID)
				}
				if row.AgentID == nil || *row.AgentID != testAgentID {
					t.Errorf("expected every row to carry agent id '%s', but got '%v'", testAgentID, row.AgentID)
				}
			}

			// Rows of one stream must arrive in write order
			gotByStream := rowsByStream(newRows)
			gotStdout := strings.Join(gotByStream[string(record.Stdout)], "\n")
			if gotStdout != strings.Join(tt.wantStdout, "\n") {
				t.Errorf("stdout stream content mismatch:\n got: %q\nwant: %q", gotStdout, tt.wantStdout)
			}
			gotStderr := strings.Join(gotByStream[string(record.Stderr)], "\n")
			if gotStderr != strings.Join(tt.wantStderr, "\n") {
				t.Errorf("stderr stream content mismatch:\n got: %q\nwant: %q", gotStderr, tt.wantStderr)
			}

			// Dropped lines must be warned about, never error
			if tt.wantDropped {
				_, warnsFound := filterLogBuffer(globalCtx, "dropping line", global.NSRelay, global.WarnLog)
				if !warnsFound {
					t.Errorf("expected a warning for each dropped line, but found none")
				}
			}

			// Check for errors in the pipeline
			errors, errorsFound := filterLogBuffer(globalCtx, "", global.NSRelay, global.ErrorLog)
			if errorsFound {
				t.Errorf("expected no errors in watch pipeline, but found: %v\n", errors)
			}

			// Check metrics at pipeline boundaries for expected counts
			err = checkPipelineCounts(tt.wantRead, wantCount, testStartTime, watchDaemon, newCfg.MetricCollectionInterval)
			if err != nil {
				t.Fatalf("Metric test error: %v", err)
			}
		})
	}

	// Confirm the pre-start line never made it into the store
	for _, row := range remoteStore.snapshotRows() {
		if row.Content == preStartLine {
			t.Errorf("line written before startup was replayed into the store")
		}
	}

	// Credential headers presented to the store
	remoteStore.mu.Lock()
	authHeader := remoteStore.authHeader
	apiKey := remoteStore.apiKey
	remoteStore.mu.Unlock()
	if !strings.HasPrefix(authHeader, "Bearer ") {
		t.Errorf("expected bearer authorization header on store requests, but got '%s'", authHeader)
	}
	if apiKey == "" {
		t.Errorf("expected apikey header on store requests, but got none")
	}

	// Pipeline teardown precedes logger teardown
	watchDaemon.Shutdown()

	globalCancel()
	logger := logctx.GetLogger(globalCtx)
	logger.Wake()
	logger.Wait()

	// A clean teardown leaves no errors and no drop warnings behind
	errors, errorsFound = filterLogBuffer(globalCtx, "", global.NSRelay, global.ErrorLog)
	if errorsFound {
		t.Errorf("expected no errors in watch daemon shutdown, but found:\n%s", errors)
	}
	warns, warnsFound := filterLogBuffer(globalCtx, "shutdown", global.NSRelay, global.WarnLog)
	if warnsFound {
		t.Errorf("expected no warnings in watch daemon shutdown, but found:\n%v", warns)
	}
	warns, warnsFound = filterLogBuffer(globalCtx, "did not empty", global.NSRelay, global.WarnLog)
	if warnsFound {
		t.Errorf("expected no lines dropped during shutdown, but found:\n%v", warns)
	}
}

// Tests that files matching a watch pattern after startup are picked up by the rescan
func TestLateGlobDiscovery(t *testing.T) {
	testDir := t.TempDir()

	logVerbosity := 1
	globalCtx, globalCancel := context.WithCancel(context.Background())
	globalCtx = logctx.New(globalCtx, "global", logVerbosity, globalCtx.Done())

	remoteStore := newMockStore(t, 0)

	newCfg := relay.Config{
		StoreURL:                 remoteStore.server.URL,
		StoreTable:               "logs",
		RetryLimit:               3,
		RetryInterval:            20 * time.Millisecond,
		Token:                    testToken(t, jwt.MapClaims{"sub": "user-glob"}),
		SourcePaths:              []string{filepath.Join(testDir, "rotated-*.log")},
		DiscoveryRescanInterval:  50 * time.Millisecond,
		MinStreamQueueSize:       global.DefaultMinQueueSize,
		MaxStreamQueueSize:       global.DefaultMaxQueueSize,
		MinDeliveryQueueSize:     global.DefaultMinQueueSize,
		MaxDeliveryQueueSize:     global.DefaultMaxQueueSize,
		MetricCollectionInterval: 100 * time.Millisecond,
		MetricMaxAge:             5 * time.Minute,
	}

	// Pattern matches nothing at startup, the pipeline idles
	watchDaemon := relay.NewDaemon(newCfg)
	err := watchDaemon.Start(globalCtx)
	if err != nil {
		t.Fatalf("expected no startup errors with an unmatched pattern, got error '%v'", err)
	}

	time.Sleep(2 * newCfg.DiscoveryRescanInterval)

	lateLogPath := filepath.Join(testDir, "rotated-1.log")
	lateLog, err := os.OpenFile(lateLogPath, os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		t.Fatalf("failed to create late watch file: %v", err)
	}
	defer lateLog.Close()

	// Wait for a rescan to attach the new match
	attachDeadline := time.Now().Add(5 * time.Second)
	for {
		watchDaemon.Mgrs.In.Mu.Lock()
		_, attached := watchDaemon.Mgrs.In.FileSources[lateLogPath]
		watchDaemon.Mgrs.In.Mu.Unlock()
		if attached {
			break
		}
		if time.Now().After(attachDeadline) {
			t.Fatalf("late pattern match was never attached by the rescan")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Lines appended after attachment must flow through
	for i := 0; i < 5; i++ {
		_, err = lateLog.WriteString(fmt.Sprintf("late line %d\n", i))
		if err != nil {
			t.Fatalf("expected no error writing to late watch file, but got '%v'", err)
		}
	}

	rows, err := waitForRows(remoteStore, 5)
	if err != nil {
		t.Fatalf("expected rows from the late discovered file, but got '%v'", err)
	}
	for i, row := range rows[:5] {
		want := fmt.Sprintf("late line %d", i)
		if row.Content != want {
			t.Errorf("expected row %d content '%s', but got '%s'", i, want, row.Content)
		}
		if row.Stream != string(record.Stdout) {
			t.Errorf("expected plain line on stdout stream, but got '%s'", row.Stream)
		}
	}

	errors, errorsFound := filterLogBuffer(globalCtx, "", global.NSRelay, global.ErrorLog)
	if errorsFound {
		t.Errorf("expected no errors in watch pipeline, but found: %v\n", errors)
	}

	watchDaemon.Shutdown()
	globalCancel()
	logger := logctx.GetLogger(globalCtx)
	logger.Wake()
	logger.Wait()
}

// Tests reading the standard input marker source
func TestStdinSource(t *testing.T) {
	// Feed a pipe in place of process stdin
	pipeRead, pipeWrite, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create stdin pipe: %v", err)
	}
	originalStdin := os.Stdin
	os.Stdin = pipeRead
	defer func() { os.Stdin = originalStdin }()

	logVerbosity := 1
	globalCtx, globalCancel := context.WithCancel(context.Background())
	globalCtx = logctx.New(globalCtx, "global", logVerbosity, globalCtx.Done())

	remoteStore := newMockStore(t, 0)

	newCfg := relay.Config{
		StoreURL:                 remoteStore.server.URL,
		StoreTable:               "logs",
		RetryLimit:               3,
		RetryInterval:            20 * time.Millisecond,
		Token:                    testToken(t, jwt.MapClaims{"sub": "user-stdin"}),
		SourcePaths:              []string{global.StdinPath},
		DiscoveryRescanInterval:  100 * time.Millisecond,
		MinStreamQueueSize:       global.DefaultMinQueueSize,
		MaxStreamQueueSize:       global.DefaultMaxQueueSize,
		MinDeliveryQueueSize:     global.DefaultMinQueueSize,
		MaxDeliveryQueueSize:     global.DefaultMaxQueueSize,
		MetricCollectionInterval: 100 * time.Millisecond,
		MetricMaxAge:             5 * time.Minute,
	}

	watchDaemon := relay.NewDaemon(newCfg)
	err = watchDaemon.Start(globalCtx)
	if err != nil {
		t.Fatalf("expected no watch daemon startup errors, got error '%v'", err)
	}

	_, err = pipeWrite.WriteString("from standard input\n")
	if err != nil {
		t.Fatalf("expected no error writing to stdin pipe, but got '%v'", err)
	}

	rows, err := waitForRows(remoteStore, 1)
	if err != nil {
		t.Fatalf("expected a row from standard input, but got '%v'", err)
	}
	if rows[0].Content != "from standard input" {
		t.Errorf("expected stdin row content 'from standard input', but got '%s'", rows[0].Content)
	}
	if rows[0].Stream != string(record.Stdout) {
		t.Errorf("expected stdin line on stdout stream, but got '%s'", rows[0].Stream)
	}
	if rows[0].UserID != "user-stdin" {
		t.Errorf("expected stdin row to carry user id 'user-stdin', but got '%s'", rows[0].UserID)
	}
	if rows[0].AgentID != nil {
		t.Errorf("expected no agent id without an agent claim, but got '%s'", *rows[0].AgentID)
	}

	// Closed pipe ends the source without failing the pipeline
	pipeWrite.Close()

	errors, errorsFound := filterLogBuffer(globalCtx, "", global.NSRelay, global.ErrorLog)
	if errorsFound {
		t.Errorf("expected no errors in watch pipeline, but found: %v\n", errors)
	}

	watchDaemon.Shutdown()
	globalCancel()
	logger := logctx.GetLogger(globalCtx)
	logger.Wake()
	logger.Wait()
}

// Tests that transient store failures are retried and recovered without record loss
func TestDeliveryRetryRecovers(t *testing.T) {
	testDir := t.TempDir()

	logVerbosity := 1
	globalCtx, globalCancel := context.WithCancel(context.Background())
	globalCtx = logctx.New(globalCtx, "global", logVerbosity, globalCtx.Done())

	// First two insert requests are rejected
	remoteStore := newMockStore(t, 2)

	watchPath := filepath.Join(testDir, "flaky.log")
	watchFile, err := os.OpenFile(watchPath, os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		t.Fatalf("failed to create test watch file: %v", err)
	}
	defer watchFile.Close()

	newCfg := relay.Config{
		StoreURL:                 remoteStore.server.URL,
		StoreTable:               "logs",
		RetryLimit:               5,
		RetryInterval:            10 * time.Millisecond,
		Token:                    testToken(t, jwt.MapClaims{"sub": "user-retry"}),
		SourcePaths:              []string{watchPath},
		DiscoveryRescanInterval:  100 * time.Millisecond,
		MinStreamQueueSize:       global.DefaultMinQueueSize,
		MaxStreamQueueSize:       global.DefaultMaxQueueSize,
		MinDeliveryQueueSize:     global.DefaultMinQueueSize,
		MaxDeliveryQueueSize:     global.DefaultMaxQueueSize,
		MetricCollectionInterval: 100 * time.Millisecond,
		MetricMaxAge:             5 * time.Minute,
	}

	watchDaemon := relay.NewDaemon(newCfg)
	err = watchDaemon.Start(globalCtx)
	if err != nil {
		t.Fatalf("expected no watch daemon startup errors, got error '%v'", err)
	}

	_, err = watchFile.WriteString("persistent little line\n")
	if err != nil {
		t.Fatalf("expected no error writing to watched file, but got '%v'", err)
	}

	rows, err := waitForRows(remoteStore, 1)
	if err != nil {
		t.Fatalf("expected the record to deliver after retries, but got '%v'", err)
	}
	if rows[0].Content != "persistent little line" {
		t.Errorf("expected recovered row content 'persistent little line', but got '%s'", rows[0].Content)
	}

	// Two rejected attempts plus the accepted one
	if got := remoteStore.requestCount(); got != 3 {
		t.Errorf("expected exactly 3 delivery attempts, but got %d", got)
	}

	// Failed attempts surface as warnings, never errors
	_, warnsFound := filterLogBuffer(globalCtx, "attempt", global.NSRelay, global.WarnLog)
	if !warnsFound {
		t.Errorf("expected warnings for the failed delivery attempts, but found none")
	}
	errors, errorsFound := filterLogBuffer(globalCtx, "", global.NSRelay, global.ErrorLog)
	if errorsFound {
		t.Errorf("expected no errors for a recovered delivery, but found: %v\n", errors)
	}

	watchDaemon.Shutdown()
	globalCancel()
	logger := logctx.GetLogger(globalCtx)
	logger.Wake()
	logger.Wait()
}

// Tests that an exhausted delivery attempt budget stops the whole pipeline
func TestDeliveryFailureStopsPipeline(t *testing.T) {
	testDir := t.TempDir()

	logVerbosity := 1
	globalCtx, globalCancel := context.WithCancel(context.Background())
	globalCtx = logctx.New(globalCtx, "global", logVerbosity, globalCtx.Done())

	// Every insert request is rejected
	remoteStore := newMockStore(t, -1)

	watchPath := filepath.Join(testDir, "doomed.log")
	watchFile, err := os.OpenFile(watchPath, os.O_CREATE|os.O_WRONLY, 0640)
	if err != nil {
		t.Fatalf("failed to create test watch file: %v", err)
	}
	defer watchFile.Close()

	newCfg := relay.Config{
		StoreURL:                 remoteStore.server.URL,
		StoreTable:               "logs",
		RetryLimit:               3,
		RetryInterval:            10 * time.Millisecond,
		Token:                    testToken(t, jwt.MapClaims{"sub": "user-doomed"}),
		SourcePaths:              []string{watchPath},
		DiscoveryRescanInterval:  100 * time.Millisecond,
		MinStreamQueueSize:       global.DefaultMinQueueSize,
		MaxStreamQueueSize:       global.DefaultMaxQueueSize,
		MinDeliveryQueueSize:     global.DefaultMinQueueSize,
		MaxDeliveryQueueSize:     global.DefaultMaxQueueSize,
		MetricCollectionInterval: 100 * time.Millisecond,
		MetricMaxAge:             5 * time.Minute,
	}

	watchDaemon := relay.NewDaemon(newCfg)
	err = watchDaemon.Start(globalCtx)
	if err != nil {
		t.Fatalf("expected no watch daemon startup errors, got error '%v'", err)
	}

	runResult := make(chan error, 1)
	go func() {
		runResult <- watchDaemon.Run()
	}()

	_, err = watchFile.WriteString("this line can never deliver\n")
	if err != nil {
		t.Fatalf("expected no error writing to watched file, but got '%v'", err)
	}

	select {
	case runErr := <-runResult:
		if runErr == nil {
			t.Fatalf("expected a fatal pipeline error after the attempt budget, got nil")
		}
		if !strings.Contains(runErr.Error(), "after 3 attempts") {
			t.Errorf("expected the error to name the spent attempt budget, but got '%v'", runErr)
		}
	case <-time.After(10 * time.Second):
		t.Fatalf("daemon did not stop after the delivery attempt budget was exhausted")
	}

	// Attempt budget is a hard total
	if got := remoteStore.requestCount(); got != 3 {
		t.Errorf("expected exactly 3 delivery attempts, but got %d", got)
	}

	// Run already shut the daemon down, only the global logger remains
	globalCancel()
	logger := logctx.GetLogger(globalCtx)
	logger.Wake()
	logger.Wait()

	_, errorsFound := filterLogBuffer(globalCtx, "Fatal pipeline error", "", global.ErrorLog)
	if !errorsFound {
		t.Errorf("expected the fatal pipeline error to be logged")
	}
}
