// Package api exposes the engine's control surface over HTTP. The response
// envelope ({"success": ..., "message": ...}) is what the dashboard frontend
// keys off, so it is kept stable.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"autoabsen/internal/engine"
	"autoabsen/internal/models"
	"autoabsen/internal/portal"
)

// Server provides the REST API handlers around one engine.
type Server struct {
	engine *engine.Engine
}

// NewServer creates a new API server.
func NewServer(e *engine.Engine) *Server {
	return &Server{engine: e}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", s.login)
	mux.HandleFunc("POST /api/logout", s.logout)

	mux.HandleFunc("GET /api/schedule", s.schedule)

	mux.HandleFunc("POST /api/engine/start", s.engineStart)
	mux.HandleFunc("POST /api/engine/stop", s.engineStop)
	mux.HandleFunc("POST /api/settings", s.updateSettings)

	mux.HandleFunc("GET /api/status", s.status)
	mux.HandleFunc("POST /api/heartbeat", s.heartbeat)
	mux.HandleFunc("POST /api/logs/clear", s.clearLogs)

	mux.HandleFunc("GET /api/test", s.test)

	return corsMiddleware(mux)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeFail reports an expected, user-facing failure. The frontend reads the
// success flag, so these go out as 200 with success=false.
func writeFail(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": message})
}

// --- Session ---

type loginRequest struct {
	NPM      string `json:"npm"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid JSON"})
		return
	}
	req.NPM = strings.TrimSpace(req.NPM)
	if req.NPM == "" || req.Password == "" {
		writeFail(w, "NPM dan password diperlukan")
		return
	}

	name, err := s.engine.Login(r.Context(), req.NPM, req.Password)
	if err != nil {
		writeFail(w, loginErrorMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "name": name, "npm": req.NPM})
}

// loginErrorMessage keeps the three failure kinds distinguishable for the
// caller: bad credentials, unrecognized layout, and network trouble.
func loginErrorMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrLoginRejected):
		return "Login gagal. NPM atau password salah."
	case errors.Is(err, engine.ErrLoginIndeterminate):
		return "Login gagal. Response tidak dikenali, layout halaman mungkin berubah."
	case errors.Is(err, portal.ErrTimeout):
		return "Koneksi timeout. Server simkuliah mungkin sedang sibuk."
	case errors.Is(err, portal.ErrUnreachable):
		return "Tidak dapat terhubung ke simkuliah.usk.ac.id. Periksa koneksi internet."
	default:
		return "Error: " + err.Error()
	}
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.engine.Logout()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// --- Schedule ---

func (s *Server) schedule(w http.ResponseWriter, r *http.Request) {
	entries, err := s.engine.FetchSchedule(r.Context())
	if err != nil {
		if errors.Is(err, engine.ErrNotLoggedIn) {
			writeFail(w, "Belum login")
			return
		}
		writeFail(w, "Gagal mengambil jadwal: "+err.Error())
		return
	}
	if entries == nil {
		entries = []models.ScheduleEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "schedule": entries})
}

// --- Engine ---

func (s *Server) engineStart(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	// Body is optional; an empty body starts with the current settings.
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		settings = s.engine.Settings()
	}

	if err := s.engine.Start(settings); err != nil {
		switch {
		case errors.Is(err, engine.ErrNotLoggedIn):
			writeFail(w, "Belum login")
		case errors.Is(err, engine.ErrAlreadyRunning):
			writeFail(w, "Engine sudah berjalan")
		default:
			writeFail(w, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Engine dimulai"})
}

func (s *Server) engineStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(); err != nil {
		writeFail(w, "Engine tidak berjalan")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Engine dihentikan"})
}

func (s *Server) updateSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "invalid JSON"})
		return
	}
	s.engine.UpdateSettings(settings)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "settings": s.engine.Settings()})
}

// --- Status ---

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Status()

	resp := map[string]any{
		"success":        true,
		"logged_in":      snap.LoggedIn,
		"engine_running": snap.Running,
		"npm":            snap.NPM,
		"name":           snap.Name,
		"logs":           snap.Logs,
		"settings":       snap.Settings,
	}
	if snap.LastCheck != nil {
		resp["last_check"] = snap.LastCheck.Format("15:04:05")
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) heartbeat(w http.ResponseWriter, r *http.Request) {
	s.engine.Heartbeat()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) clearLogs(w http.ResponseWriter, r *http.Request) {
	s.engine.ClearLogs()
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (s *Server) test(w http.ResponseWriter, r *http.Request) {
	snap := s.engine.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Server is running!",
		"time":      time.Now().Format("15:04:05"),
		"logged_in": snap.LoggedIn,
	})
}
