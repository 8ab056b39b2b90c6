package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

func TestQuotesServed_Increments(t *testing.T) {
	c := QuotesServed.WithLabelValues("testprov", "success")
	c.Inc()
	c.Inc()

	var pb dto.Metric
	if err := c.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := pb.GetCounter().GetValue(); got < 2 {
		t.Errorf("counter value = %v, want >= 2", got)
	}
}

func TestCacheBlocked_Gauge(t *testing.T) {
	CacheBlocked.Set(1)

	var pb dto.Metric
	if err := CacheBlocked.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := pb.GetGauge().GetValue(); got != 1 {
		t.Errorf("gauge value = %v, want 1", got)
	}

	CacheBlocked.Set(0)
	if err := CacheBlocked.Write(&pb); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if got := pb.GetGauge().GetValue(); got != 0 {
		t.Errorf("gauge value = %v, want 0", got)
	}
}
