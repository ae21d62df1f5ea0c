package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testDocument is a one-page document with a kpi over an embedded dataset.
const testDocument = `{
  "pages": [
    {
      "title": "Overview",
      "rows": [
        {"type": "kpi", "title": "Total Sales", "datasetId": "sales", "valueColumn": "Sales"}
      ]
    }
  ],
  "datasets": {
    "sales": {
      "id": "sales",
      "format": "table",
      "columns": ["Month", "Sales"],
      "dtypes": ["string", "number"],
      "data": [["Jan", 1000], ["Feb", 1500]]
    }
  }
}`

// writeTestDocument writes a document file into a temp dir and returns
// its path.
func writeTestDocument(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "report.json")
	if err := os.WriteFile(path, []byte(body), 0600); err != nil {
		t.Fatalf("write test document: %v", err)
	}
	return path
}

// TestNew tests server construction and option application.
func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("default address", func(t *testing.T) {
		t.Parallel()
		s := New("report.json")
		if s.Addr() != "127.0.0.1:8417" {
			t.Errorf("Addr() = %q, expected the loopback default", s.Addr())
		}
	})

	t.Run("custom address", func(t *testing.T) {
		t.Parallel()
		s := New("report.json", WithAddr("127.0.0.1:9000"))
		if s.Addr() != "127.0.0.1:9000" {
			t.Errorf("Addr() = %q, expected 127.0.0.1:9000", s.Addr())
		}
	})

	t.Run("empty address keeps default", func(t *testing.T) {
		t.Parallel()
		s := New("report.json", WithAddr(""))
		if s.Addr() != "127.0.0.1:8417" {
			t.Errorf("Addr() = %q, expected the loopback default", s.Addr())
		}
	})
}

// TestHandlerServesReport verifies the happy path: a GET on / renders
// the document as a complete HTML page.
func TestHandlerServesReport(t *testing.T) {
	t.Parallel()

	path := writeTestDocument(t, testDocument)
	s := New(path, WithLogger(discardLogger()))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, expected text/html", ct)
	}
	if cc := rec.Header().Get("Cache-Control"); cc != "no-store" {
		t.Errorf("Cache-Control = %q, expected no-store", cc)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("expected a complete HTML document")
	}
	if !strings.Contains(body, "Total Sales") {
		t.Error("expected the kpi title in the page")
	}
	if !strings.Contains(body, "2,500") {
		t.Error("expected the derived kpi value in the page")
	}
}

// TestHandlerReloadsDocument verifies that edits to the document file
// show up on the next request without restarting the server.
func TestHandlerReloadsDocument(t *testing.T) {
	t.Parallel()

	path := writeTestDocument(t, testDocument)
	s := New(path, WithLogger(discardLogger()))

	first := httptest.NewRecorder()
	s.Handler().ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(first.Body.String(), "2,500") {
		t.Fatal("expected the original kpi value before the edit")
	}

	edited := strings.Replace(testDocument, `["Feb", 1500]`, `["Feb", 2000]`, 1)
	if err := os.WriteFile(path, []byte(edited), 0600); err != nil {
		t.Fatalf("rewrite test document: %v", err)
	}

	second := httptest.NewRecorder()
	s.Handler().ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(second.Body.String(), "3,000") {
		t.Error("expected the edited kpi value on the next request")
	}
}

// TestHandlerErrors exercises the non-rendering responses.
func TestHandlerErrors(t *testing.T) {
	t.Parallel()

	path := writeTestDocument(t, testDocument)

	testCases := []struct {
		name     string
		document string
		method   string
		target   string
		expected int
	}{
		{name: "unknown path", document: path, method: http.MethodGet, target: "/other", expected: http.StatusNotFound},
		{name: "post not allowed", document: path, method: http.MethodPost, target: "/", expected: http.StatusMethodNotAllowed},
		{name: "missing document file", document: filepath.Join(t.TempDir(), "gone.json"), method: http.MethodGet, target: "/", expected: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			s := New(tc.document, WithLogger(discardLogger()))
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
			if rec.Code != tc.expected {
				t.Errorf("status = %d, expected %d", rec.Code, tc.expected)
			}
		})
	}
}

// TestHandlerInvalidDocument verifies that an unparsable document file
// reports a contained server error rather than a panic.
func TestHandlerInvalidDocument(t *testing.T) {
	t.Parallel()

	path := writeTestDocument(t, "not a document")
	s := New(path, WithLogger(discardLogger()))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, expected 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "render failed") {
		t.Errorf("body = %q, expected a render failure message", rec.Body.String())
	}
}

// TestHandlerUnsafeGating verifies the trust gate: unsafeJs values render
// empty unless the server was constructed with the opt-in.
func TestHandlerUnsafeGating(t *testing.T) {
	t.Parallel()

	const doc = `{
	  "pages": [{"title": "p", "rows": [{"type": "card", "body": {"unsafeJs": "'answer: ' + 6 * 7"}}]}],
	  "datasets": {}
	}`

	testCases := []struct {
		name    string
		opts    []Option
		present bool
	}{
		{name: "untrusted document", opts: nil, present: false},
		{name: "trusted document", opts: []Option{WithUnsafeEnabled(true)}, present: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			path := writeTestDocument(t, doc)
			opts := append([]Option{WithLogger(discardLogger())}, tc.opts...)
			s := New(path, opts...)

			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, expected 200", rec.Code)
			}
			if got := strings.Contains(rec.Body.String(), "answer: 42"); got != tc.present {
				t.Errorf("unsafe output present = %t, expected %t", got, tc.present)
			}
		})
	}
}

// TestHandlerProps verifies that caller props override the document's
// own head metadata.
func TestHandlerProps(t *testing.T) {
	t.Parallel()

	path := writeTestDocument(t, testDocument)
	s := New(path,
		WithLogger(discardLogger()),
		WithProps(map[string]any{"title": "Overridden Title"}),
	)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if !strings.Contains(rec.Body.String(), "Overridden Title") {
		t.Error("expected the caller-supplied title in the page")
	}
}
