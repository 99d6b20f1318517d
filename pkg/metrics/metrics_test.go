package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector("neo_test", prometheus.NewRegistry())

	c.RecordLoad("neo", 3)
	c.RecordLoad("neo", 2)
	c.RecordDiagnostic("neo", "diameter")
	c.RecordRejected("cad", "cd")
	c.RecordExport("csv", 7)
	c.RecordExportError("json", "io_error")

	if got := testutil.ToFloat64(c.LoadRecordsTotal.WithLabelValues("neo")); got != 5 {
		t.Errorf("load_records_total{neo} = %v, want 5", got)
	}
	if got := testutil.ToFloat64(c.LoadDiagnosticTotal.WithLabelValues("neo", "diameter")); got != 1 {
		t.Errorf("load_diagnostics_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.LoadRejectedTotal.WithLabelValues("cad", "cd")); got != 1 {
		t.Errorf("load_rejected_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.ExportRecordsTotal.WithLabelValues("csv")); got != 7 {
		t.Errorf("export_records_total = %v, want 7", got)
	}
	if got := testutil.ToFloat64(c.ExportErrorsTotal.WithLabelValues("json", "io_error")); got != 1 {
		t.Errorf("export_errors_total = %v, want 1", got)
	}
}

func TestCollector_Gauges(t *testing.T) {
	c := NewCollector("neo_test", prometheus.NewRegistry())

	c.UpdateCatalogSize(10, 25)
	c.UpdateDBConnectionPool(1, 2, 3)

	if got := testutil.ToFloat64(c.CatalogSize.WithLabelValues("close_approach")); got != 25 {
		t.Errorf("catalog_entities{close_approach} = %v, want 25", got)
	}
	if got := testutil.ToFloat64(c.DBConnectionPool.WithLabelValues("total")); got != 3 {
		t.Errorf("db_connection_pool{total} = %v, want 3", got)
	}
}

func TestCollectorsOnSeparateRegistries(t *testing.T) {
	// two collectors with the same namespace must not collide
	NewCollector("neo_test", prometheus.NewRegistry())
	NewCollector("neo_test", prometheus.NewRegistry())
}

func TestTimer(t *testing.T) {
	c := NewCollector("neo_test", prometheus.NewRegistry())
	timer := c.NewTimer(c.ExportDuration.WithLabelValues("csv"))
	if d := timer.ObserveDuration(); d < 0 {
		t.Errorf("ObserveDuration() = %v", d)
	}
}
