// Package ui serves the latest run report and figures over HTTP. Read-only
// QA surface; nothing here mutates pipeline state.
package ui

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"neuropipe/internal/report"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const pageShell = `<!DOCTYPE html>
<html>
<head>
<title>neuropipe run report</title>
<style>
body { font-family: sans-serif; max-width: 60rem; margin: 2rem auto; padding: 0 1rem; }
table { border-collapse: collapse; }
td, th { border: 1px solid #ccc; padding: 0.3rem 0.6rem; }
img { max-width: 100%%; }
code { background: #f4f4f4; padding: 0.1rem 0.3rem; }
</style>
</head>
<body>
%s
</body>
</html>`

// Server exposes the report directory over HTTP
type Server struct {
	router    chi.Router
	reportDir string
}

// NewServer creates a viewer over the given report/figure directory
func NewServer(reportDir string) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		reportDir: reportDir,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/", s.handleReport)
	s.router.Get("/healthz", s.handleHealth)

	figDir := http.Dir(s.reportDir)
	s.router.Handle("/figures/*", http.StripPrefix("/figures/", http.FileServer(figDir)))
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	path := filepath.Join(s.reportDir, report.Filename)
	source, err := os.ReadFile(path)
	if err != nil {
		http.Error(w, "no report generated yet; run the pipeline first", http.StatusNotFound)
		return
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	body := markdown.ToHTML(source, p, renderer)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, pageShell, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// Start blocks serving HTTP on the given port
func (s *Server) Start(port string) error {
	log.Printf("[Server] Report viewer listening on :%s (reports from %s)", port, s.reportDir)
	return http.ListenAndServe(":"+port, s.router)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
