package extract

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gcpt/internal/logger"
)

func serveEmbeddedPage(t *testing.T, page string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(page))
	}))
	t.Cleanup(server.Close)

	return server
}

func newEmbedded(url string) *EmbeddedData {
	return NewEmbeddedData(testFetcher(1), logger.NewNop(), url)
}

func TestEmbeddedData_VarAssignment(t *testing.T) {
	page := `<html><head><script>
		var coalPlants = [{"plant_name":"Alpha","country":"India","capacity_mw":600}];
	</script></head><body></body></html>`

	server := serveEmbeddedPage(t, page)

	result := newEmbedded(server.URL).Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (err: %v)", result.Status, result.Err)
	}

	if len(result.Records) != 1 || result.Records[0]["plant_name"] != "Alpha" {
		t.Errorf("records = %v", result.Records)
	}
}

func TestEmbeddedData_WindowAssignment(t *testing.T) {
	page := `<html><body><script>
		window.coalData = [{"plant_name":"Beta","country":"China","capacity_mw":1200}];
	</script></body></html>`

	server := serveEmbeddedPage(t, page)

	result := newEmbedded(server.URL).Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (err: %v)", result.Status, result.Err)
	}

	if len(result.Records) != 1 {
		t.Errorf("got %d records, want 1", len(result.Records))
	}
}

func TestEmbeddedData_JSONKey(t *testing.T) {
	page := `<html><body><script>
		window.__STATE__ = {"coal_plants": [{"plant_name":"Gamma","country":"Chile","capacity_mw":300}], "other": 1};
	</script></body></html>`

	server := serveEmbeddedPage(t, page)

	result := newEmbedded(server.URL).Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (err: %v)", result.Status, result.Err)
	}

	if result.Records[0]["country"] != "Chile" {
		t.Errorf("records = %v", result.Records)
	}
}

func TestEmbeddedData_SkipsNonPlantBlobs(t *testing.T) {
	page := `<html><body>
	<script>var menuItems = [{"label":"Home","href":"/"}];</script>
	<script>var plantData = [{"plant_name":"Delta","country":"Kenya","capacity_mw":150}];</script>
	</body></html>`

	server := serveEmbeddedPage(t, page)

	result := newEmbedded(server.URL).Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (err: %v)", result.Status, result.Err)
	}

	if len(result.Records) != 1 || result.Records[0]["plant_name"] != "Delta" {
		t.Errorf("records = %v, want the plant blob, not the menu", result.Records)
	}
}

func TestEmbeddedData_NoBlob(t *testing.T) {
	server := serveEmbeddedPage(t, `<html><body><p>No data here.</p></body></html>`)

	result := newEmbedded(server.URL).Extract()
	if result.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}

	if result.Err != ErrNoEmbeddedData {
		t.Errorf("err = %v, want ErrNoEmbeddedData", result.Err)
	}
}

func TestEmbeddedData_PageFetchFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	result := newEmbedded(server.URL).Extract()
	if result.Status != StatusFailed {
		t.Errorf("status = %v, want failed", result.Status)
	}
}

func TestScriptContents(t *testing.T) {
	page := `<html><head><script>first();</script></head>
	<body><div>text</div><script type="application/json">{"a":1}</script></body></html>`

	scripts := scriptContents(page)
	if len(scripts) != 2 {
		t.Fatalf("got %d scripts, want 2", len(scripts))
	}

	if scripts[0] != "first();" {
		t.Errorf("scripts[0] = %q", scripts[0])
	}
}

func TestScanForBlob_NestedArraysKeptWhole(t *testing.T) {
	// Records carrying nested arrays must not cut the blob short at the
	// first closing bracket.
	haystack := `window.__STATE__ = {"plants": [
		{"plant_name": "Alpha", "country": "India", "capacity_mw": 600, "coords": [10.5, 76.2]},
		{"plant_name": "Beta", "country": "India", "capacity_mw": 660},
		{"plant_name": "Gamma", "country": "China", "capacity_mw": 300}
	]};`

	records := scanForBlob(haystack)
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	if records[2]["plant_name"] != "Gamma" {
		t.Errorf("records = %v, want all three records", records)
	}
}

func TestScanForBlob_UnclosedBlobSkipped(t *testing.T) {
	haystack := `var coalPlants = [{"plant_name": "Alpha", "country": "India"}`

	if records := scanForBlob(haystack); records != nil {
		t.Errorf("got %v, want nil for an unclosed blob", records)
	}
}

func TestBalancedBlob(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"flat array", `[1, 2] trailing`, `[1, 2]`, true},
		{"nested arrays", `[[1], [2, [3]]];`, `[[1], [2, [3]]]`, true},
		{"object payload", `{"a": {"b": 1}}, rest`, `{"a": {"b": 1}}`, true},
		{"bracket inside string", `["a ] b", 2] x`, `["a ] b", 2]`, true},
		{"escaped quote", `["a \" ]", 2]`, `["a \" ]", 2]`, true},
		{"single quoted", `['a ] b'] x`, `['a ] b']`, true},
		{"not a bracket", `42`, "", false},
		{"never closes", `[1, 2`, "", false},
		{"empty", ``, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := balancedBlob(tt.input)
			if ok != tt.ok || got != tt.want {
				t.Errorf("balancedBlob(%q) = %q, %v; want %q, %v",
					tt.input, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestScanForBlob_SingleQuotedBlob(t *testing.T) {
	// Page authors hand-write these blobs; the decoder repairs the quoting.
	haystack := `var coalPlants = [{'plant_name': 'Echo', 'country': 'Peru', 'capacity_mw': 90}];`

	records := scanForBlob(haystack)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	if records[0]["plant_name"] != "Echo" {
		t.Errorf("records = %v", records)
	}
}
