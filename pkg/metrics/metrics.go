// Package metrics exports request, cache, download and storage telemetry
// to Prometheus. A nil *Metrics is valid and records nothing.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const DefaultNamespace = "yt_downloader"

// Outcomes recorded by RecordRequest.
const (
	OutcomeCacheHit     = "cache_hit"
	OutcomeDownloaded   = "downloaded"
	OutcomeInvalidInput = "invalid_input"
	OutcomeTooLarge     = "too_large"
	OutcomeError        = "error"
)

// Results recorded by RecordCacheLookup.
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

type Metrics struct {
	requests         *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	downloadDuration *prometheus.HistogramVec
	storageDuration  *prometheus.HistogramVec
	storageErrors    *prometheus.CounterVec
	uploadedBytes    prometheus.Counter
}

// New registers the collectors on reg (prometheus.DefaultRegisterer when nil).
// Collectors already registered under the same names are reused.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Download requests by outcome.",
		}, []string{"outcome"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Object storage cache lookups by result.",
		}, []string{"result"}),
		downloadDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "download_duration_seconds",
			Help:      "Wall time of yt-dlp runs.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1200},
		}, []string{"status"}),
		storageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_operation_duration_seconds",
			Help:      "Latency of object storage operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		storageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_operation_errors_total",
			Help:      "Failed object storage operations.",
		}, []string{"operation"}),
		uploadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploaded_bytes_total",
			Help:      "Bytes successfully uploaded to object storage.",
		}),
	}

	var err error
	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}
	if m.cacheLookups, err = register(reg, m.cacheLookups); err != nil {
		return nil, err
	}
	if m.downloadDuration, err = register(reg, m.downloadDuration); err != nil {
		return nil, err
	}
	if m.storageDuration, err = register(reg, m.storageDuration); err != nil {
		return nil, err
	}
	if m.storageErrors, err = register(reg, m.storageErrors); err != nil {
		return nil, err
	}
	if m.uploadedBytes, err = register(reg, m.uploadedBytes); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

func (m *Metrics) RecordRequest(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveDownload records one yt-dlp run.
func (m *Metrics) ObserveDownload(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "failed"
	}
	m.downloadDuration.WithLabelValues(status).Observe(d.Seconds())
}

// RecordStorage tracks one object storage call.
func (m *Metrics) RecordStorage(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.storageDuration.WithLabelValues(operation).Observe(d.Seconds())
	if err != nil {
		m.storageErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) AddUploadedBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.uploadedBytes.Add(float64(n))
}
