package internal

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/fazecat/momentumwatch/Internal/persist"
)

// API serves stored run history over HTTP.
type API struct {
	Store      *persist.Store
	JWTManager *JWTManager
}

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   message,
	})
}

func (api *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, "healthy")
}

// HandleListHistory returns available run dates, most recent first.
func (api *API) HandleListHistory(w http.ResponseWriter, r *http.Request) {
	dates, err := api.Store.ListDates(100)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}
	WriteJSON(w, http.StatusOK, dates)
}

// HandleGetHistory serves the stored run document for one date.
func (api *API) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	api.serveRun(w, date)
}

// HandleGetLatest serves the most recent stored run.
func (api *API) HandleGetLatest(w http.ResponseWriter, r *http.Request) {
	dates, err := api.Store.ListDates(1)
	if err != nil || len(dates) == 0 {
		WriteError(w, http.StatusNotFound, "No runs stored yet")
		return
	}
	api.serveRun(w, dates[0])
}

func (api *API) serveRun(w http.ResponseWriter, date string) {
	raw, err := api.Store.LoadRaw(date)
	if err != nil {
		if os.IsNotExist(err) {
			WriteError(w, http.StatusNotFound, "No run for "+date)
			return
		}
		WriteError(w, http.StatusInternalServerError, "Failed to load run")
		return
	}
	WriteJSON(w, http.StatusOK, json.RawMessage(raw))
}

type tokenRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

// HandleGenerateToken issues a 24h JWT for the history endpoints.
func (api *API) HandleGenerateToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	token, err := api.JWTManager.GenerateToken(req.UserID, req.Email, 24)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
