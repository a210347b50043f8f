package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"html/template"
	"log/slog"
	"net/http"
)

const specPath = "/docs/openapi.yaml"

// DocsHandler serves the embedded OpenAPI document and a Swagger UI page
// pointing at it.
type DocsHandler struct {
	spec []byte
	etag string
	page []byte
}

var docsPage = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({ url: "{{.SpecURL}}", dom_id: "#swagger-ui" });
  </script>
</body>
</html>`))

func NewDocsHandler(spec []byte, title string) *DocsHandler {
	sum := sha256.Sum256(spec)

	var page bytes.Buffer
	if err := docsPage.Execute(&page, struct{ Title, SpecURL string }{title, specPath}); err != nil {
		panic(err)
	}

	return &DocsHandler{
		spec: spec,
		etag: `"` + hex.EncodeToString(sum[:8]) + `"`,
		page: page.Bytes(),
	}
}

func (h *DocsHandler) Spec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("ETag", h.etag)
	if r.Header.Get("If-None-Match") == h.etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/yaml")
	if _, err := w.Write(h.spec); err != nil {
		slog.Error("failed to write openapi document", "error", err)
	}
}

func (h *DocsHandler) Page(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(h.page); err != nil {
		slog.Error("failed to write docs page", "error", err)
	}
}
