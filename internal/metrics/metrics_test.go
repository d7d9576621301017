// CineRank - Hybrid Movie Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinerank

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func getCounterValue(counter prometheus.Counter) float64 {
	var m io_prometheus_client.Metric
	if err := counter.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

func getGaugeValue(gauge prometheus.Gauge) float64 {
	var m io_prometheus_client.Metric
	if err := gauge.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

func getHistogramCount(obs prometheus.Observer) uint64 {
	var m io_prometheus_client.Metric
	h, ok := obs.(prometheus.Metric)
	if !ok {
		return 0
	}
	if err := h.Write(&m); err != nil {
		return 0
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name          string
		mode          string
		outcome       string
		wantCandidate bool
	}{
		{"content ok", "content", "ok", true},
		{"hybrid ok", "hybrid", "ok", true},
		{"validation failure", "none", "INSUFFICIENT_INPUT", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := RecommendRequests.WithLabelValues(tt.mode, tt.outcome)
			before := getCounterValue(counter)
			candBefore := getHistogramCount(RecommendCandidates)

			RecordRecommendation(tt.mode, tt.outcome, 42, 3*time.Millisecond)

			if got := getCounterValue(counter); got != before+1 {
				t.Errorf("requests counter = %v, want %v", got, before+1)
			}
			grew := getHistogramCount(RecommendCandidates) > candBefore
			if grew != tt.wantCandidate {
				t.Errorf("candidate histogram observed = %v, want %v", grew, tt.wantCandidate)
			}
		})
	}
}

func TestRecordAPIRequest(t *testing.T) {
	counter := APIRequestsTotal.WithLabelValues("POST", "/api/v1/recommendations", "200")
	before := getCounterValue(counter)

	RecordAPIRequest("POST", "/api/v1/recommendations", 200, 10*time.Millisecond)

	if got := getCounterValue(counter); got != before+1 {
		t.Errorf("api counter = %v, want %v", got, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	start := getGaugeValue(APIActiveRequests)
	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := getGaugeValue(APIActiveRequests); got != start+2 {
		t.Errorf("active = %v, want %v", got, start+2)
	}
	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := getGaugeValue(APIActiveRequests); got != start {
		t.Errorf("active = %v, want %v", got, start)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hits, misses := getCounterValue(CacheHits), getCounterValue(CacheMisses)
	RecordCacheLookup(true)
	RecordCacheLookup(false)
	RecordCacheLookup(false)
	if got := getCounterValue(CacheHits); got != hits+1 {
		t.Errorf("hits = %v, want %v", got, hits+1)
	}
	if got := getCounterValue(CacheMisses); got != misses+2 {
		t.Errorf("misses = %v, want %v", got, misses+2)
	}
}

func TestArtifactMetrics(t *testing.T) {
	counter := ArtifactReloads.WithLabelValues("success")
	before := getCounterValue(counter)
	RecordArtifactReload("success")
	if got := getCounterValue(counter); got != before+1 {
		t.Errorf("reloads = %v, want %v", got, before+1)
	}

	SetServedArtifact(7, 3883, 6040)
	if getGaugeValue(ArtifactVersion) != 7 || getGaugeValue(ArtifactItems) != 3883 || getGaugeValue(ArtifactUsers) != 6040 {
		t.Error("served artifact gauges not set")
	}
}

func TestRecordTrainingEpoch(t *testing.T) {
	before := getCounterValue(TrainingEpochs)
	RecordTrainingEpoch(0.91)
	RecordTrainingEpoch(0.87)
	if got := getCounterValue(TrainingEpochs); got != before+2 {
		t.Errorf("epochs = %v, want %v", got, before+2)
	}
	if got := getGaugeValue(TrainingRMSE); got != 0.87 {
		t.Errorf("rmse = %v, want 0.87", got)
	}
}

func TestRecordDBQuery(t *testing.T) {
	errCounter := DBQueryErrors.WithLabelValues("popular")
	before := getCounterValue(errCounter)

	RecordDBQuery("popular", time.Millisecond, nil)
	if got := getCounterValue(errCounter); got != before {
		t.Errorf("errors = %v after success, want %v", got, before)
	}
	RecordDBQuery("popular", time.Millisecond, errors.New("catalog error"))
	if got := getCounterValue(errCounter); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				RecordRecommendation("hybrid", "ok", j, time.Microsecond)
				RecordAPIRequest("GET", "/api/v1/popular", 200, time.Microsecond)
				RecordCacheLookup(j%2 == 0)
			}
		}()
	}
	wg.Wait()
}

func TestMetricGathering(t *testing.T) {
	RecordAPIRequest("GET", "/health/live", 200, time.Millisecond)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
