package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/forgeflow-dev/forgeflow/internal/analysis"
	"github.com/forgeflow-dev/forgeflow/internal/buildinfo"
	"github.com/forgeflow-dev/forgeflow/internal/importer"
	"github.com/forgeflow-dev/forgeflow/internal/logger"
	"github.com/forgeflow-dev/forgeflow/internal/report"
	"github.com/forgeflow-dev/forgeflow/internal/runlog"
)

const (
	formField      = "file"
	reportBaseName = "report"
)

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	if s.opts.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	}
	file, header, err := r.FormFile(formField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "File too large")
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			writeError(w, http.StatusBadRequest, "No file uploaded")
		default:
			writeError(w, http.StatusBadRequest, "Invalid upload: "+err.Error())
		}
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		writeError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	if _, err := importer.FormatForPath(name); err != nil {
		writeError(w, http.StatusBadRequest, "Unsupported file type.")
		return
	}

	path, err := s.store(file, name)
	if err != nil {
		log.Error().Err(err).Str("file", name).Msg("Storing upload failed")
		writeError(w, http.StatusInternalServerError, "Could not store upload")
		return
	}

	res, err := s.analyzer.Analyze(r.Context(), path)
	if err != nil {
		if analysis.IsUserError(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		log.Error().Err(err).Str("file", name).Msg("Analysis failed")
		writeError(w, http.StatusInternalServerError, "Analysis failed")
		return
	}

	var renderer report.Renderer = report.PDF{}
	if wantsJSON(r) {
		renderer = report.JSON{}
	}
	var buf bytes.Buffer
	rep := report.Report{Insight: res.Insight, Projection: res.Projection}
	if err := renderer.Render(&buf, rep); err != nil {
		log.Error().Err(err).Str("run_id", res.RunID).Msg("Rendering report failed")
		writeError(w, http.StatusInternalServerError, "Could not render report")
		return
	}

	s.recordRun(res, reportBaseName+renderer.Extension())

	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("X-Run-ID", res.RunID)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, ok := renderer.(report.PDF); ok {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
			"filename": reportBaseName + renderer.Extension(),
		}))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// store writes the upload under the upload dir with a uuid prefix so
// concurrent uploads of the same name do not collide.
func (s *Server) store(src io.Reader, name string) (string, error) {
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return "", fmt.Errorf("creating upload dir: %w", err)
	}
	path := filepath.Join(s.opts.UploadDir, uuid.NewString()+"_"+name)
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}

func (s *Server) recordRun(res *analysis.Result, reportName string) {
	if s.opts.RunLogRoot == "" {
		return
	}
	entry := runlog.Entry{
		Timestamp:     time.Now(),
		RunID:         res.RunID,
		Source:        res.Source,
		Format:        res.Format,
		Transactions:  len(res.Ledger),
		DroppedLines:  res.Dropped,
		InsightSource: string(res.Insight.Source),
		Report:        reportName,
	}
	if err := runlog.Append(s.opts.RunLogRoot, []runlog.Entry{entry}); err != nil {
		s.log.Warn().Err(err).Str("run_id", res.RunID).Msg("Appending run log failed")
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
