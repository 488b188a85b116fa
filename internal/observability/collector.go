// Package observability provides metrics collection and tracing for CLI operations.
package observability

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shoplist/shoplist-cli/internal/api"
	"github.com/shoplist/shoplist-cli/internal/items"
)

// RequestMetrics holds timing and status information for a single HTTP request.
type RequestMetrics struct {
	Method     string
	URL        string
	StatusCode int
	Duration   time.Duration
	Error      error
}

// OperationMetrics holds timing information for a store operation.
type OperationMetrics struct {
	Operation  string // e.g., "List", "Update"
	ItemID     string
	IsMutation bool
	Duration   time.Duration
	Error      error
}

// SessionMetrics aggregates metrics for an entire CLI session.
type SessionMetrics struct {
	StartTime       time.Time
	EndTime         time.Time
	TotalRequests   int
	FailedRequests  int
	TotalOperations int
	Mutations       int
	FailedOps       int
	TotalLatency    time.Duration
}

// FormatParts renders the non-zero metrics as short phrases.
func (m SessionMetrics) FormatParts() []string {
	var parts []string

	duration := m.EndTime.Sub(m.StartTime)
	if duration < time.Second {
		parts = append(parts, fmt.Sprintf("%dms", duration.Milliseconds()))
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", duration.Seconds()))
	}

	if m.TotalRequests == 1 {
		parts = append(parts, "1 request")
	} else if m.TotalRequests > 1 {
		parts = append(parts, fmt.Sprintf("%d requests", m.TotalRequests))
	}
	if m.Mutations == 1 {
		parts = append(parts, "1 write")
	} else if m.Mutations > 1 {
		parts = append(parts, fmt.Sprintf("%d writes", m.Mutations))
	}
	if m.FailedOps > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.FailedOps))
	}
	return parts
}

// String is the one-line summary printed by --stats.
func (m SessionMetrics) String() string {
	return strings.Join(m.FormatParts(), " | ")
}

// Map returns the metrics for the JSON envelope's meta.stats.
func (m SessionMetrics) Map() map[string]any {
	return map[string]any{
		"duration_ms": m.EndTime.Sub(m.StartTime).Milliseconds(),
		"requests":    m.TotalRequests,
		"failed":      m.FailedOps,
		"writes":      m.Mutations,
		"latency_ms":  m.TotalLatency.Milliseconds(),
	}
}

// SessionCollector accumulates metrics across a CLI session.
// It is safe for concurrent use and uses counters instead of unbounded slices.
type SessionCollector struct {
	mu sync.Mutex

	startTime       time.Time
	totalRequests   int
	failedRequests  int
	totalOperations int
	mutations       int
	failedOps       int
	totalLatency    time.Duration
}

// NewSessionCollector creates a new SessionCollector.
func NewSessionCollector() *SessionCollector {
	return &SessionCollector{
		startTime: time.Now(),
	}
}

// RecordRequest records metrics for an HTTP request.
func (c *SessionCollector) RecordRequest(m RequestMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalRequests++
	c.totalLatency += m.Duration
	if m.Error != nil {
		c.failedRequests++
	}
}

// RecordRequestFromAPI records metrics from transport hook types.
func (c *SessionCollector) RecordRequestFromAPI(info api.RequestInfo, result api.RequestResult) {
	c.RecordRequest(RequestMetrics{
		Method:     info.Method,
		URL:        info.URL,
		StatusCode: result.StatusCode,
		Duration:   result.Duration,
		Error:      result.Err,
	})
}

// RecordOperation records metrics for a store operation.
func (c *SessionCollector) RecordOperation(m OperationMetrics) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.totalOperations++
	if m.IsMutation {
		c.mutations++
	}
	if m.Error != nil {
		c.failedOps++
	}
}

// RecordOperationFromStore records metrics from store hook types.
func (c *SessionCollector) RecordOperationFromStore(op items.OperationInfo, err error, duration time.Duration) {
	c.RecordOperation(OperationMetrics{
		Operation:  op.Operation,
		ItemID:     op.ItemID,
		IsMutation: op.IsMutation,
		Duration:   duration,
		Error:      err,
	})
}

// Summary returns aggregated metrics for the session.
func (c *SessionCollector) Summary() SessionMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SessionMetrics{
		StartTime:       c.startTime,
		EndTime:         time.Now(),
		TotalRequests:   c.totalRequests,
		FailedRequests:  c.failedRequests,
		TotalOperations: c.totalOperations,
		Mutations:       c.mutations,
		FailedOps:       c.failedOps,
		TotalLatency:    c.totalLatency,
	}
}

// Reset clears all collected metrics and resets the start time.
func (c *SessionCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.startTime = time.Now()
	c.totalRequests = 0
	c.failedRequests = 0
	c.totalOperations = 0
	c.mutations = 0
	c.failedOps = 0
	c.totalLatency = 0
}
