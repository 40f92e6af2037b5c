// Package metrics keeps in-process report counters and renders them in the
// Prometheus text format on /metrics.
package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	reportsGenerated  atomic.Uint64
	reportsFinalized  atomic.Uint64
	sectionsGenerated atomic.Uint64
	sectionsFailed    atomic.Uint64

	reportsFailed = newLabeledCounter("reason")

	generationDuration = newHistogram([]float64{1000, 2500, 5000, 10000, 20000, 30000, 60000, 120000, 300000})
)

// IncReportGenerated counts a report persisted as draft.
func IncReportGenerated() { reportsGenerated.Add(1) }

// IncReportFailed counts a generation attempt that persisted nothing, keyed
// by a short reason such as "completion" or "datastore".
func IncReportFailed(reason string) {
	if reason == "" {
		reason = "unknown"
	}
	reportsFailed.Inc(reason)
}

// IncReportFinalized counts a draft to final transition.
func IncReportFinalized() { reportsFinalized.Add(1) }

// IncSectionGenerated counts a successful section completion.
func IncSectionGenerated() { sectionsGenerated.Add(1) }

// IncSectionFailed counts a failed section completion.
func IncSectionFailed() { sectionsFailed.Add(1) }

// ObserveGenerationDurationMs records a full generation run in milliseconds.
func ObserveGenerationDurationMs(ms float64) {
	generationDuration.Observe(max(ms, 0))
}

// Handler serves Render as text/plain.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/plain; version=0.0.4", []byte(Render()))
	}
}

// Render returns every metric in the Prometheus text exposition format.
func Render() string {
	var buf bytes.Buffer
	counter(&buf, "report_generated_total", "Reports persisted as draft.", reportsGenerated.Load())
	reportsFailed.render(&buf, "report_failed_total", "Report generations that persisted nothing.")
	counter(&buf, "report_finalized_total", "Reports finalized.", reportsFinalized.Load())
	counter(&buf, "report_section_generated_total", "Report sections generated.", sectionsGenerated.Load())
	counter(&buf, "report_section_failed_total", "Report sections whose completion failed.", sectionsFailed.Load())
	generationDuration.render(&buf, "report_generation_duration_ms", "Wall time of a successful generation in milliseconds.")
	return buf.String()
}

func counter(buf *bytes.Buffer, name, help string, v uint64) {
	header(buf, name, help, "counter")
	fmt.Fprintf(buf, "%s %d\n", name, v)
}

func header(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

type labeledCounter struct {
	label  string
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter(label string) *labeledCounter {
	return &labeledCounter{label: label, values: map[string]uint64{}}
}

func (l *labeledCounter) Inc(value string) {
	l.mu.Lock()
	l.values[value]++
	l.mu.Unlock()
}

func (l *labeledCounter) render(buf *bytes.Buffer, name, help string) {
	l.mu.Lock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	counts := make([]uint64, len(keys))
	for i, k := range keys {
		counts[i] = l.values[k]
	}
	l.mu.Unlock()

	header(buf, name, help, "counter")
	for i, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, l.label, k, counts[i])
	}
}

// histogram stores per-bucket counts; render accumulates them.
type histogram struct {
	bounds []float64

	mu     sync.Mutex
	counts []uint64 // len(bounds)+1, the last slot is +Inf
	sum    float64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{bounds: bounds, counts: make([]uint64, len(bounds)+1)}
}

func (h *histogram) Observe(v float64) {
	i := sort.SearchFloat64s(h.bounds, v)
	h.mu.Lock()
	h.counts[i]++
	h.sum += v
	h.mu.Unlock()
}

// cumulative returns the running bucket totals, the last being the count.
func (h *histogram) cumulative() ([]uint64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]uint64, len(h.counts))
	var running uint64
	for i, c := range h.counts {
		running += c
		out[i] = running
	}
	return out, h.sum
}

func (h *histogram) render(buf *bytes.Buffer, name, help string) {
	cum, sum := h.cumulative()
	header(buf, name, help, "histogram")
	for i, bound := range h.bounds {
		fmt.Fprintf(buf, "%s_bucket{le=%q} %d\n", name, strconv.FormatFloat(bound, 'f', -1, 64), cum[i])
	}
	total := cum[len(cum)-1]
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, total)
	fmt.Fprintf(buf, "%s_sum %s\n", name, strconv.FormatFloat(sum, 'f', -1, 64))
	fmt.Fprintf(buf, "%s_count %d\n", name, total)
}
