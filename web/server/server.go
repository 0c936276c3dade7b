package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/df07/go-lightpath/pkg/level"
	"github.com/df07/go-lightpath/pkg/render"
	"github.com/df07/go-lightpath/pkg/sim"
	"github.com/df07/go-lightpath/pkg/tracer"
)

const (
	maxBodyBytes = 1 << 20
	minScale     = 4
	maxScale     = 128
)

// Server handles web requests for the lightpath simulator
type Server struct {
	port      int
	levelsDir string
	logger    *log.Logger
}

// NewServer creates a new web server. levelsDir may be empty.
func NewServer(port int, levelsDir string, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{port: port, levelsDir: levelsDir, logger: logger}
}

// TraceRequest is the body of POST /api/trace. Level is an inline level
// document; Runtime may be omitted.
type TraceRequest struct {
	Level   json.RawMessage `json:"level"`
	Runtime *level.Runtime  `json:"runtime,omitempty"`
	Image   bool            `json:"image,omitempty"`
	Scale   int             `json:"scale,omitempty"`
}

// TraceResponse is one simulated tick plus an optional PNG of it
type TraceResponse struct {
	Level     string    `json:"level"`
	Frame     sim.Frame `json:"frame"`
	ImageData string    `json:"imageData,omitempty"` // Base64 encoded PNG
	ElapsedMs int64     `json:"elapsedMs"`
}

// TimelineResponse holds the frames of a timeline request
type TimelineResponse struct {
	Level     string      `json:"level"`
	Frames    []sim.Frame `json:"frames"`
	FirstTick int         `json:"firstSolvedTick"` // -1 when no tick completes the level
	ElapsedMs int64       `json:"elapsedMs"`
}

// Handler returns the API routes plus the static front-end
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir("static/")))

	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/levels", s.handleLevels)
	mux.HandleFunc("/api/level", s.handleLevel)
	mux.HandleFunc("/api/trace", s.handleTrace)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	mux.HandleFunc("/api/timeline", s.handleTimeline)
	mux.HandleFunc("/api/play", s.handlePlay)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("Starting web server", "url", "http://localhost"+addr, "levels", s.levelsDir)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleLevels returns every built-in and file level grouped by category
func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	response, warnings, err := level.ListAllLevels(s.levelsDir)
	for _, warning := range warnings {
		s.logger.Warn("Level discovery", "warning", warning)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, response)
}

// handleLevel returns the full descriptor of one level
func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request) {
	lvl, err := s.loadLevel(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, lvl)
}

// handleTrace simulates one tick. GET takes a level name and runtime query
// parameters; POST takes an inline level and runtime.
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var (
		lvl       *level.Level
		rt        level.Runtime
		withImage bool
		scale     int
		err       error
	)

	switch r.Method {
	case http.MethodGet:
		lvl, rt, err = s.parseTraceQuery(r.URL.Query())
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		withImage = r.URL.Query().Get("image") == "true"
		scale, err = parseIntParam(r.URL.Query(), "scale", render.DefaultScale, minScale, maxScale)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	case http.MethodPost:
		var req TraceRequest
		if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		lvl, err = level.Parse(req.Level)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		rt = level.NewRuntime()
		if req.Runtime != nil {
			rt = req.Runtime.Clone()
		}
		withImage = req.Image
		scale = req.Scale
		if scale == 0 {
			scale = render.DefaultScale
		}
		if scale < minScale || scale > maxScale {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("scale must be between %d and %d", minScale, maxScale))
			return
		}
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	start := time.Now()
	frame := sim.Simulate(lvl, rt, tracer.Options{Logger: NewWebLogger(lvl.ID, nil, s.logger), Context: r.Context()})

	response := TraceResponse{Level: lvl.ID, Frame: frame}
	if withImage {
		data, err := imageToBase64PNG(render.Rasterize(lvl, rt, frame, scale))
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		response.ImageData = data
	}
	response.ElapsedMs = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, response)
}

// handleTimeline simulates evenly spaced ticks on the worker pool
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	lvl, err := s.loadLevel(values.Get("level"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	cfg := sim.TimelineConfig{Logger: NewWebLogger(lvl.ID, nil, s.logger)}
	if cfg.From, err = parseFloatParam(values, "from", 0, 0, 3600); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cfg.To, err = parseFloatParam(values, "to", 10, 0, 3600); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if cfg.Frames, err = parseIntParam(values, "frames", 60, 1, sim.MaxFrames); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rt := level.NewRuntime()
	if rt.ActivePhase, err = parsePhaseParam(values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	start := time.Now()
	frames, err := sim.Timeline(ctx, lvl, rt, cfg)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	response := TimelineResponse{Level: lvl.ID, Frames: frames, FirstTick: -1}
	for i, f := range frames {
		if f.Complete {
			response.FirstTick = i
			break
		}
	}
	response.ElapsedMs = time.Since(start).Milliseconds()
	writeJSON(w, http.StatusOK, response)
}

// parseTraceQuery loads the named level and builds a runtime from the
// elapsed and phase parameters
func (s *Server) parseTraceQuery(values url.Values) (*level.Level, level.Runtime, error) {
	rt := level.NewRuntime()

	lvl, err := s.loadLevel(values.Get("level"))
	if err != nil {
		return nil, rt, err
	}
	if rt.Elapsed, err = parseFloatParam(values, "elapsed", 0, 0, 3600); err != nil {
		return nil, rt, err
	}
	if rt.ActivePhase, err = parsePhaseParam(values); err != nil {
		return nil, rt, err
	}
	return lvl, rt, nil
}

func (s *Server) loadLevel(name string) (*level.Level, error) {
	if name == "" {
		name = "corridor"
	}
	return level.Resolve(name, s.levelsDir)
}

// parseIntParam parses an integer parameter with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if str := values.Get(key); str != "" {
		val, err := strconv.Atoi(str)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		if val < min || val > max {
			return 0, fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		return val, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if str := values.Get(key); str != "" {
		val, err := strconv.ParseFloat(str, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %w", key, err)
		}
		if val < min || val > max {
			return 0, fmt.Errorf("%s must be between %g and %g", key, min, max)
		}
		return val, nil
	}
	return defaultValue, nil
}

// parsePhaseParam reads the phase parameter, defaulting to A
func parsePhaseParam(values url.Values) (level.PhaseTag, error) {
	switch p := level.PhaseTag(values.Get("phase")); p {
	case "", level.PhaseA:
		return level.PhaseA, nil
	case level.PhaseB:
		return level.PhaseB, nil
	default:
		return "", fmt.Errorf("phase must be A or B, got %q", p)
	}
}

// imageToBase64PNG converts an image to base64 encoded PNG
func imageToBase64PNG(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode png: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
