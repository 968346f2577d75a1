package extract

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"gcpt/internal/logger"
)

func plantJSON(names ...string) string {
	out := "["
	for i, name := range names {
		if i > 0 {
			out += ","
		}

		out += fmt.Sprintf(`{"plant_name":%q,"unit_name":"U1","country":"India","capacity_mw":600}`, name)
	}

	return out + "]"
}

func newAPIProbe(t *testing.T, baseURL string, endpoints []string, maxPages int) *APIProbe {
	t.Helper()

	return NewAPIProbe(testFetcher(1), logger.NewNop(), baseURL, endpoints, maxPages, 0)
}

func TestAPIProbe_FirstWorkingEndpointWins(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/plants":
			w.WriteHeader(http.StatusNotFound)
		case "/api/data":
			_, _ = w.Write([]byte(plantJSON("Alpha", "Beta")))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	probe := newAPIProbe(t, server.URL, []string{"/api/plants", "/api/data"}, 1)

	result := probe.Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (err: %v)", result.Status, result.Err)
	}

	if len(result.Records) != 2 {
		t.Errorf("got %d records, want 2", len(result.Records))
	}
}

func TestAPIProbe_NoEndpointFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	probe := newAPIProbe(t, server.URL, []string{"/api/plants", "/api/data"}, 1)

	result := probe.Extract()
	if result.Status != StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}

	if result.Err != ErrNoEndpointFound {
		t.Errorf("err = %v, want ErrNoEndpointFound", result.Err)
	}
}

func TestAPIProbe_NonPlantPayloadSkipped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"user":"alice","email":"a@example.com"}]`))
	}))
	defer server.Close()

	probe := newAPIProbe(t, server.URL, []string{"/api/users"}, 1)

	result := probe.Extract()
	if result.Status != StatusFailed {
		t.Errorf("status = %v, want failed for non-plant payload", result.Status)
	}
}

func TestAPIProbe_Pagination(t *testing.T) {
	pages := map[string]string{
		"":  plantJSON("Alpha", "Beta"),
		"2": plantJSON("Gamma"),
		"3": plantJSON("Gamma"), // no fresh records, ends pagination
		"4": plantJSON("Delta"), // never requested
	}

	var requested []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		requested = append(requested, page)
		_, _ = w.Write([]byte(pages[page]))
	}))
	defer server.Close()

	probe := newAPIProbe(t, server.URL, []string{"/api/plants"}, 10)

	result := probe.Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success (err: %v)", result.Status, result.Err)
	}

	if len(result.Records) != 3 {
		t.Errorf("got %d records, want 3 across pages", len(result.Records))
	}

	want := []string{"", "2", "3"}
	if len(requested) != len(want) {
		t.Fatalf("requested pages %v, want %v", requested, want)
	}

	for i, page := range want {
		if requested[i] != page {
			t.Errorf("request %d asked page %q, want %q", i, requested[i], page)
		}
	}
}

func TestAPIProbe_PageFailureKeepsPriorPages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			w.WriteHeader(http.StatusInternalServerError)

			return
		}

		_, _ = w.Write([]byte(plantJSON("Alpha", "Beta")))
	}))
	defer server.Close()

	probe := newAPIProbe(t, server.URL, []string{"/api/plants"}, 5)

	result := probe.Extract()
	if result.Status != StatusPartial {
		t.Fatalf("status = %v, want partial", result.Status)
	}

	if len(result.Records) != 2 {
		t.Errorf("got %d records, want the first page kept", len(result.Records))
	}
}

func TestAPIProbe_MaxPagesCeiling(t *testing.T) {
	page := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page++
		_, _ = w.Write([]byte(plantJSON(fmt.Sprintf("Plant-%d", page))))
	}))
	defer server.Close()

	probe := newAPIProbe(t, server.URL, []string{"/api/plants"}, 3)

	result := probe.Extract()
	if result.Status != StatusSuccess {
		t.Fatalf("status = %v, want success", result.Status)
	}

	if len(result.Records) != 3 {
		t.Errorf("got %d records, want 3 capped by page ceiling", len(result.Records))
	}
}

func TestPageURL(t *testing.T) {
	tests := []struct {
		url  string
		page int
		want string
	}{
		{"https://x.test/api", 2, "https://x.test/api?page=2"},
		{"https://x.test/api?limit=50", 3, "https://x.test/api?limit=50&page=3"},
	}

	for _, tt := range tests {
		if got := pageURL(tt.url, tt.page); got != tt.want {
			t.Errorf("pageURL(%q, %d) = %q, want %q", tt.url, tt.page, got, tt.want)
		}
	}
}

func TestAPIProbe_AbsoluteEndpointURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(plantJSON("Alpha")))
	}))
	defer server.Close()

	probe := newAPIProbe(t, "https://unreachable.test", []string{server.URL + "/api/plants"}, 1)

	result := probe.Extract()
	if result.Status != StatusSuccess {
		t.Errorf("status = %v, want success for absolute endpoint", result.Status)
	}
}
