// Package service exposes the aggregation pipeline over HTTP as a thin JSON
// transport.
//
// Endpoints:
//   - POST /process         - run the pipeline and return formatted content
//   - POST /process-to-file - run the pipeline and write the content to a
//     temporary file, returning its path
//   - GET  /health          - process liveness, no pipeline involvement
//   - GET  /                - service identity
package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"ctxcopy/pkg/aggregate"
	"ctxcopy/pkg/config"
	"ctxcopy/pkg/format"
)

// MaxRequestBodySize caps request bodies to keep oversized selections from
// exhausting memory.
const MaxRequestBodySize = 1 << 20

// ProcessRequest is the JSON body for POST /process and POST
// /process-to-file. Format accepts any registered formatter name plus
// "json", which skips rendering and replies with raw per-file content.
type ProcessRequest struct {
	Paths    []string `json:"paths"`
	BasePath string   `json:"base_path"`
	Exclude  []string `json:"exclude,omitempty"`
	Format   string   `json:"format,omitempty"`
}

// SkippedFile names one file left out of the output and why.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ProcessResponse is the JSON reply for POST /process.
type ProcessResponse struct {
	Success      bool              `json:"success"`
	Content      string            `json:"content,omitempty"`
	FileContents map[string]string `json:"file_contents,omitempty"`
	FileCount    int               `json:"file_count"`
	Files        []string          `json:"files,omitempty"`
	Skipped      []SkippedFile     `json:"skipped,omitempty"`
	Warnings     []string          `json:"warnings,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// ProcessToFileResponse is the JSON reply for POST /process-to-file.
type ProcessToFileResponse struct {
	FilePath       string   `json:"file_path"`
	FileCount      int      `json:"file_count"`
	FilesProcessed []string `json:"files_processed,omitempty"`
	Message        string   `json:"message"`
}

// Server wires the pipeline behind an HTTP mux.
type Server struct {
	addr   string
	router *http.ServeMux
	cfg    config.Config
	logger *zap.Logger
}

// NewServer builds a Server bound to host:port.
func NewServer(host string, port int, cfg config.Config, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		addr:   fmt.Sprintf("%s:%d", host, port),
		router: http.NewServeMux(),
		cfg:    cfg,
		logger: logger,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /process", s.handleProcess)
	s.router.HandleFunc("POST /process-to-file", s.handleProcessToFile)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /{$}", s.handleRoot)
}

// Handler exposes the mux for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks serving requests.
func (s *Server) ListenAndServe() error {
	s.logger.Info("Starting HTTP service", zap.String("addr", s.addr))
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "ctxcopy API",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "ctxcopy",
	})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}
	resp, _, status := s.process(r, req)
	writeJSON(w, status, resp)
}

// handleProcessToFile runs the same pipeline as /process but writes the
// content to a temporary artifact and replies with its path, for callers
// that want a file handle instead of an inline payload.
func (s *Server) handleProcessToFile(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeRequest(w, r)
	if !ok {
		return
	}

	resp, ext, status := s.process(r, req)
	if status != http.StatusOK || !resp.Success {
		// An empty result is a 400 here: there is nothing to write.
		if status == http.StatusOK {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, resp)
		return
	}

	content := resp.Content
	if resp.FileContents != nil {
		data, err := json.MarshalIndent(resp.FileContents, "", "  ")
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, ProcessResponse{Success: false, Error: err.Error()})
			return
		}
		content = string(data)
	}

	tmp, err := os.CreateTemp("", "ctxcopy-*"+ext)
	if err != nil {
		s.logger.Error("Failed to create artifact file", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, ProcessResponse{Success: false, Error: err.Error()})
		return
	}
	path := tmp.Name()
	tmp.Close()
	if err := format.WriteFile(path, content, s.logger); err != nil {
		os.Remove(path)
		writeJSON(w, http.StatusInternalServerError, ProcessResponse{Success: false, Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, ProcessToFileResponse{
		FilePath:       path,
		FileCount:      resp.FileCount,
		FilesProcessed: resp.Files,
		Message:        fmt.Sprintf("Content written to %s", path),
	})
}

// process runs the pipeline for one request and shapes the JSON reply. The
// returned extension names the artifact type the selected format produces.
func (s *Server) process(r *http.Request, req ProcessRequest) (ProcessResponse, string, int) {
	if req.BasePath == "" {
		req.BasePath = "."
	}
	if info, err := os.Stat(req.BasePath); err != nil || !info.IsDir() {
		resp := ProcessResponse{
			Success: false,
			Error:   fmt.Sprintf("base path does not exist: %s", req.BasePath),
		}
		return resp, "", http.StatusBadRequest
	}

	formatName := req.Format
	if formatName == "" {
		formatName = s.cfg.Defaults.Format
	}

	rawJSON := strings.EqualFold(formatName, "json")
	ext := ".json"
	var formatter format.Formatter
	if !rawJSON {
		var err error
		formatter, err = format.Get(formatName)
		if err != nil {
			return ProcessResponse{Success: false, Error: err.Error()}, "", http.StatusBadRequest
		}
		ext = formatter.Extension()
	}

	exclude := append(append([]string{}, s.cfg.Defaults.Exclude...), req.Exclude...)
	result, err := aggregate.Run(r.Context(), aggregate.Request{
		Selection:     req.Paths,
		BaseDir:       req.BasePath,
		Exclude:       exclude,
		MaxFileSizeKB: s.cfg.Limits.MaxFileSizeKB,
		MaxWorkers:    s.cfg.Limits.MaxWorkers,
		ReadTimeout:   s.cfg.ReadTimeout(),
		Languages:     s.cfg.Languages,
	}, s.logger)

	if err != nil {
		resp := ProcessResponse{Success: false, Error: err.Error()}
		status := http.StatusInternalServerError
		if errors.Is(err, aggregate.ErrNoReadableFiles) {
			// Not a transport failure; report the empty outcome in-band.
			status = http.StatusOK
			if result != nil {
				fillManifest(&resp, result)
			}
		}
		return resp, ext, status
	}

	resp := ProcessResponse{Success: true}
	if rawJSON {
		resp.FileContents = fileContents(result)
	} else {
		resp.Content = formatter.Render(result.Combined())
	}
	fillManifest(&resp, result)
	return resp, ext, http.StatusOK
}

// decodeRequest reads the JSON body, writing the 400 reply itself on
// failure.
func decodeRequest(w http.ResponseWriter, r *http.Request) (ProcessRequest, bool) {
	var req ProcessRequest
	body := http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ProcessResponse{
			Success: false,
			Error:   fmt.Sprintf("invalid request body: %v", err),
		})
		return req, false
	}
	return req, true
}

// fileContents maps each readable path to its raw content.
func fileContents(result *aggregate.Result) map[string]string {
	out := make(map[string]string)
	for _, doc := range result.Documents {
		for _, rec := range doc.Records {
			if !rec.Skipped() {
				out[rec.Path] = rec.Content
			}
		}
	}
	return out
}

// fillManifest copies the per-file breakdown into the response.
func fillManifest(resp *ProcessResponse, result *aggregate.Result) {
	for _, doc := range result.Documents {
		for _, rec := range doc.Records {
			if rec.Skipped() {
				resp.Skipped = append(resp.Skipped, SkippedFile{Path: rec.Path, Reason: rec.Reason})
				continue
			}
			resp.Files = append(resp.Files, rec.Path)
		}
	}
	resp.FileCount = len(resp.Files)
	for _, warn := range result.Warnings {
		resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s: %s", warn.Selection, warn.Reason))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
