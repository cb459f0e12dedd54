package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.SignupsTotal.WithLabelValues("created").Inc()
	m.LoginsTotal.WithLabelValues("ok").Inc()
	m.TokenVerificationsTotal.WithLabelValues("invalid").Inc()

	expected := `
# HELP registry_signups_total Total number of signup attempts, by result.
# TYPE registry_signups_total counter
registry_signups_total{result="created"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "registry_signups_total"); err != nil {
		t.Fatal(err)
	}
	if n := testutil.CollectAndCount(m.LoginsTotal); n != 1 {
		t.Fatalf("expected one login series, got %d", n)
	}
}

func TestNew_NilRegistererStaysUnregistered(t *testing.T) {
	// Two sets would collide if either were registered globally.
	a := New(nil)
	b := New(nil)
	a.SignupsTotal.WithLabelValues("created").Inc()

	if got := testutil.ToFloat64(b.SignupsTotal.WithLabelValues("created")); got != 0 {
		t.Fatalf("expected independent counters, got %v", got)
	}
}
