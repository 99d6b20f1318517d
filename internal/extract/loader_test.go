package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"neo-platform/internal/models"
	"neo-platform/pkg/logging"
	"neo-platform/pkg/metrics"
)

func newTestLoader() (*Loader, *metrics.Collector) {
	collector := metrics.NewCollector("neo_test", prometheus.NewRegistry())
	return NewLoader(logging.NewNopLogger(), collector), collector
}

func TestReadNEORecords(t *testing.T) {
	in := "pdes,name,diameter,pha\n433,Eros,16.84,N\n\"1, comma\",,,Y\n"

	records, header, err := ReadNEORecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadNEORecords() error = %v", err)
	}
	if len(header) != 4 || len(records) != 2 {
		t.Fatalf("header = %v, records = %d", header, len(records))
	}
	if records[1][models.KeyDesignation] != "1, comma" {
		t.Errorf("quoted designation = %q", records[1][models.KeyDesignation])
	}
	if v, ok := records[1][models.KeyName]; !ok || v != "" {
		t.Errorf("empty CSV cell should be present and empty, got %q, %v", v, ok)
	}

	if _, _, err := ReadNEORecords(strings.NewReader("")); err == nil {
		t.Error("empty input should fail")
	}
	if _, _, err := ReadNEORecords(strings.NewReader("pdes,name\n433\n")); err == nil {
		t.Error("short row should fail")
	}
}

func TestReadCADRecords(t *testing.T) {
	in := `{"fields":["des","cd","dist","v_rel"],"data":[["433","1900-Dec-27 01:30",0.15,null]]}`

	records, fields, err := ReadCADRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadCADRecords() error = %v", err)
	}
	if len(fields) != 4 || len(records) != 1 {
		t.Fatalf("fields = %v, records = %d", fields, len(records))
	}
	if records[0][models.KeyDistance] != "0.15" {
		t.Errorf("numeric cell = %q, want 0.15", records[0][models.KeyDistance])
	}
	if _, ok := records[0][models.KeyVelocity]; ok {
		t.Error("null cell should be absent")
	}

	bad := []string{
		`not json`,
		`{"fields":[],"data":[]}`,
		`{"fields":["des","cd"],"data":[["433"]]}`,
	}
	for _, b := range bad {
		if _, _, err := ReadCADRecords(strings.NewReader(b)); err == nil {
			t.Errorf("ReadCADRecords(%q) should fail", b)
		}
	}
}

func TestLoader_LoadCatalog(t *testing.T) {
	loader, collector := newTestLoader()
	ctx := context.Background()

	catalog, result, err := loader.LoadCatalog(ctx, filepath.Join("testdata", "neos.csv"), filepath.Join("testdata", "cad.json"))
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	if result.NEORecords != 5 || result.ApproachRecords != 5 {
		t.Errorf("records = %d/%d, want 5/5", result.NEORecords, result.ApproachRecords)
	}
	if len(result.Rejected) != 2 {
		t.Fatalf("rejected = %+v, want 2", result.Rejected)
	}
	for _, r := range result.Rejected {
		if !errors.Is(r.Err, models.ErrMissingField) {
			t.Errorf("rejection %+v should wrap ErrMissingField", r)
		}
	}
	// diameter "wide" and v_rel "fast"
	if result.Diagnostics != 2 {
		t.Errorf("diagnostics = %d, want 2", result.Diagnostics)
	}

	if got := len(catalog.NEOs()); got != 4 {
		t.Errorf("NEOs = %d, want 4", got)
	}
	if got := len(catalog.Approaches()); got != 4 {
		t.Errorf("Approaches = %d, want 4", got)
	}

	eros, ok := catalog.NEOByName("Eros")
	if !ok {
		t.Fatal("Eros not loaded")
	}
	if eros.Diameter() != 16.84 || eros.Hazardous() {
		t.Errorf("eros = %#v", eros)
	}
	erosApproaches := catalog.ApproachesOf(eros)
	if len(erosApproaches) != 2 || erosApproaches[0].TimeStr() != "1900-12-27 01:30" {
		t.Errorf("eros approaches = %v", erosApproaches)
	}

	unnamed, ok := catalog.NEOByDesignation("2020 AB")
	if !ok {
		t.Fatal("2020 AB not loaded")
	}
	if _, named := unnamed.Name(); named {
		t.Error("2020 AB should be unnamed")
	}
	if !math.IsNaN(unnamed.Diameter()) || !unnamed.Hazardous() {
		t.Errorf("2020 AB = %#v", unnamed)
	}

	if got := testutil.ToFloat64(collector.LoadRejectedTotal.WithLabelValues("cad", models.KeyCalendarDate)); got != 1 {
		t.Errorf("rejected cad{cd} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.LoadDiagnosticTotal.WithLabelValues("neo", models.KeyDiameter)); got != 1 {
		t.Errorf("diagnostics neo{diameter} = %v, want 1", got)
	}
}

func TestLoader_LogsCarryFileContext(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewStructuredLogger("neo-test", "1.0.0", logging.WarnLevel)
	logger.SetOutput(&buf)
	loader := NewLoader(logger, metrics.NewCollector("neo_test", prometheus.NewRegistry()))

	neoPath := filepath.Join("testdata", "neos.csv")
	cadPath := filepath.Join("testdata", "cad.json")
	if _, _, err := loader.LoadCatalog(context.Background(), neoPath, cadPath); err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}

	tracked := map[string]bool{"[LOAD_FIELD_UNKNOWN]": true, "[LOAD_RECORD_REJECTED]": true}
	seen := map[string]int{}
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		var entry logging.LogEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			t.Fatalf("entry is not JSON: %v", err)
		}
		tag := entry.Message[:strings.Index(entry.Message, "]")+1]
		if !tracked[tag] {
			continue
		}
		seen[tag]++

		switch entry.Fields["kind"] {
		case "neo":
			if entry.Fields["path"] != neoPath {
				t.Errorf("%s path = %v, want %s", tag, entry.Fields["path"], neoPath)
			}
		case "cad":
			if entry.Fields["path"] != cadPath {
				t.Errorf("%s path = %v, want %s", tag, entry.Fields["path"], cadPath)
			}
		default:
			t.Errorf("%s kind = %v", tag, entry.Fields["kind"])
		}
	}
	if seen["[LOAD_FIELD_UNKNOWN]"] != 2 || seen["[LOAD_RECORD_REJECTED]"] != 2 {
		t.Errorf("logged entries = %v, want 2 of each", seen)
	}
}

func TestLoader_UnresolvedLink(t *testing.T) {
	dir := t.TempDir()
	neoPath := filepath.Join(dir, "neos.csv")
	cadPath := filepath.Join(dir, "cad.json")

	if err := os.WriteFile(neoPath, []byte("pdes,name,diameter,pha\n433,Eros,16.84,N\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cad := `{"fields":["des","cd","dist","v_rel"],"data":[["1036","1950-Jan-01 00:00","0.2","5"]]}`
	if err := os.WriteFile(cadPath, []byte(cad), 0o644); err != nil {
		t.Fatal(err)
	}

	loader, _ := newTestLoader()
	_, _, err := loader.LoadCatalog(context.Background(), neoPath, cadPath)

	var linkErr *models.UnresolvedLinkError
	if !errors.As(err, &linkErr) {
		t.Fatalf("LoadCatalog() error = %v, want UnresolvedLinkError", err)
	}
	if linkErr.Designation != "1036" {
		t.Errorf("Designation = %q", linkErr.Designation)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	loader, _ := newTestLoader()
	missing := filepath.Join(t.TempDir(), "nope.csv")

	_, _, err := loader.LoadCatalog(context.Background(), missing, "testdata/cad.json")
	if err == nil || !strings.Contains(err.Error(), missing) {
		t.Errorf("LoadCatalog() error = %v, want path in message", err)
	}
}
