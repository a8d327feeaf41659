package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dgallion1/quadboard/internal/export"
	"github.com/dgallion1/quadboard/internal/metrics"
	"github.com/dgallion1/quadboard/internal/parser"
)

type rulesetRequest struct {
	Text string `json:"text"`
}

type compendiumRequest struct {
	Text          string `json:"text"`
	MaxChunkChars int    `json:"max_chunk_chars"`
}

func (s *Server) handleGetRuleset(w http.ResponseWriter, r *http.Request) {
	rs, err := s.drafts.Ruleset(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handlePutRuleset(w http.ResponseWriter, r *http.Request) {
	var req rulesetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	start := time.Now()
	rs, err := s.drafts.SaveRuleset(r.Context(), req.Text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ObserveTransform(metrics.OpOutline, time.Since(start))
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleDeleteRuleset(w http.ResponseWriter, r *http.Request) {
	if err := s.drafts.ClearRuleset(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadRuleset(w http.ResponseWriter, r *http.Request) {
	filename, text, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	rs, err := s.drafts.SaveRuleset(r.Context(), text)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("ruleset uploaded", "filename", filename, "chars", len(text))
	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handlePreviewRuleset(w http.ResponseWriter, r *http.Request) {
	rs, err := s.drafts.Ruleset(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	html, err := export.HTML(rs.Outline)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, html)
}

func (s *Server) handleExportRuleset(w http.ResponseWriter, r *http.Request) {
	rs, err := s.drafts.Ruleset(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Markdown(&buf, rs.Outline); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, r, "ruleset", export.FormatMarkdown, buf.Bytes())
}

func (s *Server) handleGetCompendium(w http.ResponseWriter, r *http.Request) {
	c, err := s.drafts.Compendium(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handlePutCompendium(w http.ResponseWriter, r *http.Request) {
	var req compendiumRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	start := time.Now()
	c, err := s.drafts.SaveCompendium(r.Context(), req.Text, req.MaxChunkChars)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.ObserveTransform(metrics.OpSegment, time.Since(start))
	s.metrics.AddChunks(len(c.Chunks))
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleDeleteCompendium(w http.ResponseWriter, r *http.Request) {
	if err := s.drafts.ClearCompendium(r.Context()); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleUploadCompendium(w http.ResponseWriter, r *http.Request) {
	filename, text, ok := s.readUpload(w, r)
	if !ok {
		return
	}
	maxChars := 0
	if v := r.FormValue("max_chunk_chars"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			jsonError(w, "max_chunk_chars must be an integer", http.StatusBadRequest)
			return
		}
		maxChars = n
	}
	c, err := s.drafts.SaveCompendium(r.Context(), text, maxChars)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.metrics.AddChunks(len(c.Chunks))
	s.log.Info("compendium uploaded", "filename", filename, "chars", len(text), "chunks", len(c.Chunks))
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleExportCompendium(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil || (format != export.FormatJSON && format != export.FormatJSONL) {
		jsonError(w, "format must be json or jsonl", http.StatusBadRequest)
		return
	}
	c, err := s.drafts.Compendium(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Chunks(&buf, c.Chunks, format); err != nil {
		s.fail(w, r, err)
		return
	}
	s.download(w, r, "compendium", format, buf.Bytes())
}

// readUpload pulls the multipart "file" field and extracts its text. On
// failure it writes the response and returns ok=false.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (filename, text string, ok bool) {
	// Limit total request size; extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.metrics.UploadFailed("too_large")
			jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return "", "", false
		}
		s.metrics.UploadFailed("invalid_form")
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.metrics.UploadFailed("missing_file")
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	defer file.Close()

	filename = sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		s.metrics.UploadFailed("unsupported")
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return "", "", false
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		s.fail(w, r, fmt.Errorf("read upload: %w", err))
		return "", "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		s.metrics.UploadFailed("too_large")
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return "", "", false
	}

	p, err := parser.ForFile(filename, parser.Options{PDFFallbackPdftotext: s.cfg.PDFFallbackPdftotext})
	if err != nil {
		s.metrics.UploadFailed("unsupported")
		jsonError(w, err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	start := time.Now()
	text, err = p.Extract(bytes.NewReader(data), filename)
	if err != nil {
		s.metrics.UploadFailed("unreadable")
		s.log.Warn("upload extraction failed", "filename", filename, "error", err)
		jsonError(w, "could not read "+filename+": "+err.Error(), http.StatusBadRequest)
		return "", "", false
	}
	s.metrics.ObserveTransform(metrics.OpExtract, time.Since(start))
	return filename, text, true
}

// download serves data as an attachment with a content ETag.
func (s *Server) download(w http.ResponseWriter, r *http.Request, base string, format export.Format, data []byte) {
	etag := export.ETag(data)
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(base, format)))
	w.Write(data)
}
