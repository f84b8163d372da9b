package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedactingLogger_MasksCredentialsAndScrubsIdentifiers(t *testing.T) {
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{MaskHeaders: []string{" X-Session "}}))
	r.GET("/api/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet,
		"/api/products/123e4567-e89b-12d3-a456-426614174000?search=bob@example.com&phone=212-555-1212", nil)
	req.Header.Set("X-API-Key", "your-secret-api-key")
	req.Header.Set("Authorization", "Bearer t0ken")
	req.Header.Set("X-Session", "s3cr3t")
	req.Header.Set("X-Note", "ping alice@example.org")
	do(r, req)

	out := buf.String()
	for _, leak := range []string{"your-secret-api-key", "t0ken", "s3cr3t", "bob@example.com", "alice@example.org", "212-555-1212"} {
		if strings.Contains(out, leak) {
			t.Fatalf("log leaked %q: %s", leak, out)
		}
	}

	lines := logLines(t, buf)
	if len(lines) != 1 {
		t.Fatalf("expected one access log line, got %d", len(lines))
	}
	m := lines[0]
	if m["message"] != "http_request" || m["level"] != "info" || m["path"] != "/api/products/:id" {
		t.Fatalf("unexpected access log: %v", m)
	}
	headers, _ := m["headers"].(map[string]any)
	if headers["X-Api-Key"] != redacted || headers["X-Session"] != redacted {
		t.Fatalf("expected masked headers, got %v", headers)
	}
	if !strings.Contains(m["query"].(string), "[REDACTED:email]") {
		t.Fatalf("expected scrubbed query, got %v", m["query"])
	}
}

func TestRedactingLogger_LevelByStatus(t *testing.T) {
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/err", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok", "/bad", "/err", "/missing"} {
		do(r, httptest.NewRequest(http.MethodGet, p, nil))
	}

	want := map[string]string{"/ok": "info", "/bad": "warn", "/err": "error"}
	for _, m := range logLines(t, buf) {
		path, _ := m["path"].(string)
		if lvl, ok := want[path]; ok && m["level"] != lvl {
			t.Fatalf("%s logged at %v, want %s", path, m["level"], lvl)
		}
	}
}

func TestScrub_UUIDBeforePhone(t *testing.T) {
	got := scrub("id=123e4567-e89b-12d3-a456-426614174000")
	if got != "id=[REDACTED:id]" {
		t.Fatalf("scrub = %q", got)
	}
	if scrub("") != "" {
		t.Fatalf("empty input must stay empty")
	}
}
