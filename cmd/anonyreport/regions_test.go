package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/anonyreport/internal/model"
)

// ubigeoServer serves a small region hierarchy and counts lookups per path.
func ubigeoServer(t *testing.T) (*httptest.Server, func(path string) int) {
	t.Helper()

	responses := map[string]string{
		"/api/ubigeo/departamentos":               `[{"departamento":"LIMA"},{"departamento":"AYACUCHO"}]`,
		"/api/ubigeo/provincias/AYACUCHO":         `[{"provincia":"HUAMANGA"}]`,
		"/api/ubigeo/provincias/LIMA":             `[{"provincia":"LIMA"}]`,
		"/api/ubigeo/distritos/AYACUCHO/HUAMANGA": `[{"distrito":"CARMEN ALTO"},{"distrito":"AYACUCHO"}]`,
		"/api/ubigeo/distritos/LIMA/LIMA":         `[{"distrito":"MIRAFLORES"}]`,
	}

	var mu sync.Mutex
	hits := make(map[string]int)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path]++
		mu.Unlock()

		body, ok := responses[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, func(path string) int {
		mu.Lock()
		defer mu.Unlock()
		return hits[path]
	}
}

// TestRunRegionsCmd tests region listings.
func TestRunRegionsCmd(t *testing.T) {
	t.Parallel()

	t.Run("lists departments in Spanish order", func(t *testing.T) {
		t.Parallel()

		server, _ := ubigeoServer(t)
		output, err := executeRoot(t, "regions", "--api-url", server.URL)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output != "AYACUCHO\nLIMA\n" {
			t.Errorf("unexpected output %q", output)
		}
	})

	t.Run("lists districts of a province", func(t *testing.T) {
		t.Parallel()

		server, _ := ubigeoServer(t)
		output, err := executeRoot(t, "regions", "--api-url", server.URL, "AYACUCHO", "HUAMANGA")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if output != "AYACUCHO\nCARMEN ALTO\n" {
			t.Errorf("unexpected output %q", output)
		}
	})

	t.Run("exports the whole hierarchy as JSON", func(t *testing.T) {
		t.Parallel()

		server, hits := ubigeoServer(t)
		output, err := executeRoot(t, "regions", "--api-url", server.URL, "--all", "--json", "-n", "2")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var tree []model.RegionNode
		if err := json.Unmarshal([]byte(output), &tree); err != nil {
			t.Fatalf("expected JSON, got %q: %v", output, err)
		}
		if len(tree) != 2 || tree[0].Name != "AYACUCHO" {
			t.Fatalf("unexpected tree %+v", tree)
		}
		districts := tree[0].Children[0].Children
		if len(districts) != 2 || districts[1].Name != "CARMEN ALTO" {
			t.Errorf("unexpected districts %+v", districts)
		}
		if n := hits("/api/ubigeo/departamentos"); n != 1 {
			t.Errorf("expected one department lookup, got %d", n)
		}
	})

	t.Run("--no-cache still lists the hierarchy", func(t *testing.T) {
		t.Parallel()

		server, hits := ubigeoServer(t)
		output, err := executeRoot(t, "regions", "--api-url", server.URL, "--all", "--no-cache")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "MIRAFLORES") {
			t.Errorf("expected districts in the output, got %q", output)
		}
		if n := hits("/api/ubigeo/provincias/LIMA"); n != 1 {
			t.Errorf("expected one province lookup for LIMA, got %d", n)
		}
	})

	t.Run("exports Markdown", func(t *testing.T) {
		t.Parallel()

		server, _ := ubigeoServer(t)
		output, err := executeRoot(t, "regions", "--api-url", server.URL, "--markdown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output, "- AYACUCHO") {
			t.Errorf("expected a bullet list, got %q", output)
		}
	})

	t.Run("rejects --all with arguments", func(t *testing.T) {
		t.Parallel()

		server, _ := ubigeoServer(t)
		if _, err := executeRoot(t, "regions", "--api-url", server.URL, "--all", "LIMA"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("rejects --json with --markdown", func(t *testing.T) {
		t.Parallel()

		server, _ := ubigeoServer(t)
		if _, err := executeRoot(t, "regions", "--api-url", server.URL, "--json", "--markdown"); err == nil {
			t.Error("expected an error")
		}
	})

	t.Run("reports a failed lookup", func(t *testing.T) {
		t.Parallel()

		server, _ := ubigeoServer(t)
		_, err := executeRoot(t, "regions", "--api-url", server.URL, "CUSCO")
		if err == nil || !strings.Contains(err.Error(), "failed to load regions") {
			t.Errorf("expected a load error, got %v", err)
		}
	})
}
