package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"secureshred/internal/shred"
)

// DurationBuckets: от 10ms до 10 минут на одну запись
var DurationBuckets = []float64{0.01, 0.1, 0.5, 1, 5, 30, 60, 300, 600}

// Recorder собирает метрики одного запуска в собственный реестр.
// Процесс живёт недолго, поэтому метрики выгружаются в textfile для
// node_exporter, а не отдаются по HTTP.
type Recorder struct {
	registry *prometheus.Registry

	EntriesTotal    *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
	BytesWritten    prometheus.Counter
	PassesTotal     prometheus.Counter
	EntryDuration   prometheus.Histogram
	LastRunTime     prometheus.Gauge
	LastRunDuration prometheus.Gauge
}

// NewRecorder создает и регистрирует все метрики
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		EntriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secureshred_entries_total",
			Help: "Entries processed, by entry type and result.",
		}, []string{"type", "result"}),
		FailuresTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "secureshred_failures_total",
			Help: "Entries that were not destroyed, by failure reason.",
		}, []string{"reason"}),
		BytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secureshred_bytes_written_total",
			Help: "Overwrite bytes written across all passes.",
		}),
		PassesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "secureshred_passes_total",
			Help: "Overwrite passes that were written and flushed.",
		}),
		EntryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "secureshred_entry_duration_seconds",
			Help:    "Time spent destroying a single non-directory entry.",
			Buckets: DurationBuckets,
		}),
		LastRunTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "secureshred_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last completed run.",
		}),
		LastRunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "secureshred_last_run_duration_seconds",
			Help: "Wall time of the last completed run.",
		}),
	}
	r.registry.MustRegister(
		r.EntriesTotal,
		r.FailuresTotal,
		r.BytesWritten,
		r.PassesTotal,
		r.EntryDuration,
		r.LastRunTime,
		r.LastRunDuration,
	)
	return r
}

// Observe учитывает каждый узел дерева результатов
func (r *Recorder) Observe(root *shred.Outcome) {
	root.Walk(func(o *shred.Outcome) {
		result := "destroyed"
		if o.Failed() {
			result = "failed"
			r.FailuresTotal.WithLabelValues(string(o.Reason)).Inc()
		}
		r.EntriesTotal.WithLabelValues(string(o.Type), result).Inc()

		for _, p := range o.Passes {
			r.BytesWritten.Add(float64(p.BytesWritten))
			if p.Flushed {
				r.PassesTotal.Inc()
			}
		}
		if o.Type != shred.EntryDirectory {
			r.EntryDuration.Observe(o.Duration.Seconds())
		}
	})
}

// FinishRun отмечает завершение запуска
func (r *Recorder) FinishRun(start time.Time) {
	r.LastRunTime.SetToCurrentTime()
	r.LastRunDuration.Set(time.Since(start).Seconds())
}

// Gatherer возвращает реестр метрик
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile атомарно записывает метрики в формате textfile collector
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
