// Package server exposes the clip pipeline and the saved-result store
// over HTTP. Pipeline endpoints stream NDJSON progress events; result
// endpoints are plain JSON.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"clipstream/config"
	"clipstream/core"
	"clipstream/media"
	"clipstream/processors"
	"clipstream/storage"
)

// Server wires the HTTP surface to the pipeline and the stores.
type Server struct {
	Cfg      *config.Config
	Streamer *processors.Streamer
	Store    storage.ResultStore
	Prober   processors.Prober
	Cutter   *media.Segmenter
}

// Routes registers all handlers on mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/process-url", s.handleProcessURL)
	mux.HandleFunc("/api/process", s.handleProcessUpload)
	mux.HandleFunc("/api/segment", s.handleSegment)
	mux.HandleFunc("/api/results", s.handleResults)
	mux.HandleFunc("/api/results/", s.handleResultByName)
	mux.HandleFunc("/api/health", s.handleHealth)
}

type processURLRequest struct {
	URL            string  `json:"url"`
	ClipDuration   float64 `json:"clip_duration"`
	TargetLanguage string  `json:"target_language"`
}

func (s *Server) handleProcessURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req processURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.URL) == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}
	s.streamPipeline(w, r, processors.Request{
		URL:            req.URL,
		ClipDuration:   req.ClipDuration,
		TargetLanguage: req.TargetLanguage,
	})
}

func (s *Server) handleProcessUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	file, header, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "video file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !config.AllowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported file type %q", ext))
		return
	}

	localPath := filepath.Join(s.Cfg.UploadFolder, core.NewRunID()+ext)
	out, err := os.Create(localPath)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	if _, err := out.ReadFrom(file); err != nil {
		out.Close()
		os.Remove(localPath)
		writeError(w, http.StatusInternalServerError, "could not store upload")
		return
	}
	out.Close()
	defer os.Remove(localPath)

	clipDuration, _ := strconv.ParseFloat(r.FormValue("clip_duration"), 64)
	s.streamPipeline(w, r, processors.Request{
		LocalPath:      localPath,
		ClipDuration:   clipDuration,
		TargetLanguage: r.FormValue("target_language"),
	})
}

// streamPipeline runs the pipeline and writes each event as one NDJSON
// line, flushing after every write so consumers see progress live.
// Client disconnect cancels the run through the request context.
func (s *Server) streamPipeline(w http.ResponseWriter, r *http.Request, req processors.Request) {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for event := range s.Streamer.Run(r.Context(), req) {
		if err := enc.Encode(event); err != nil {
			log.Printf("event write failed, client gone: %v", err)
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

type segmentRequest struct {
	Path         string  `json:"path"`
	ClipDuration float64 `json:"clip_duration"`
}

// handleSegment is the batch mode: cut a local file into clips over the
// worker pool without running extraction.
func (s *Server) handleSegment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	var req segmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	if req.ClipDuration <= 0 {
		req.ClipDuration = s.Cfg.DefaultClipDuration
	}

	src, err := s.Prober.Probe(r.Context(), req.Path)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	outDir := filepath.Join(s.Cfg.OutputFolder, core.NewRunID())
	clips, err := s.Cutter.SegmentParallel(r.Context(), src, outDir, req.ClipDuration, s.Cfg.SegmentWorkers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"output_folder": outDir,
		"duration":      src.Duration,
		"clips":         clips,
	})
}

type saveRequest struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// handleResults serves the collection: GET lists names, POST saves one.
func (s *Server) handleResults(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		names, err := s.Store.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		core.WriteJSON(w, http.StatusOK, map[string]any{"results": names})
	case http.MethodPost:
		var req saveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Name) == "" || len(req.Data) == 0 {
			writeError(w, http.StatusBadRequest, "name and data are required")
			return
		}
		if err := s.Store.Save(r.Context(), req.Name, req.Data); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		core.WriteJSON(w, http.StatusOK, map[string]string{"saved": core.SanitizeName(req.Name)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or POST required")
	}
}

func (s *Server) handleResultByName(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimPrefix(r.URL.Path, "/api/results/")
	if name == "" {
		writeError(w, http.StatusBadRequest, "result name is required")
		return
	}
	switch r.Method {
	case http.MethodGet:
		doc, err := s.Store.Load(r.Context(), name)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(doc)
	case http.MethodDelete:
		err := s.Store.Delete(r.Context(), name)
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		core.WriteJSON(w, http.StatusOK, map[string]string{"deleted": core.SanitizeName(name)})
	default:
		writeError(w, http.StatusMethodNotAllowed, "GET or DELETE required")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	tools := map[string]bool{}
	for _, tool := range []string{"ffmpeg", "ffprobe", "yt-dlp"} {
		_, err := exec.LookPath(tool)
		tools[tool] = err == nil
	}
	status := "ok"
	if !tools["ffmpeg"] || !tools["ffprobe"] {
		status = "degraded"
	}
	core.WriteJSON(w, http.StatusOK, map[string]any{
		"status": status,
		"tools":  tools,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	core.WriteJSON(w, status, map[string]string{"error": msg})
}
