package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/cryptopulse/cryptopulse/internal/models"
	"github.com/cryptopulse/cryptopulse/internal/service"
)

// langParam reads the ?lang= query parameter, defaulting to English.
func langParam(r *http.Request) models.Language {
	lang := models.Language(r.URL.Query().Get("lang"))
	if !lang.Valid() {
		return models.LangEnglish
	}
	return lang
}

func parseJSONBody(r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// handleHealth answers liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDashboard serves the startup snapshot (overview + sentiment,
// fetched concurrently).
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.dashboard.Snapshot(r.Context(), langParam(r))
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	respondJSON(w, http.StatusOK, snap)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	quotes, err := s.dashboard.Overview(r.Context())
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	respondJSON(w, http.StatusOK, quotes)
}

func (s *Server) handleCoinSearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(mux.Vars(r)["query"])
	if query == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "coin query required")
		return
	}

	profile, err := s.dashboard.Coin(r.Context(), query, langParam(r))
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	if profile == nil {
		// The operation's fallback: absence, not an error.
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	report, err := s.dashboard.Sentiment(r.Context(), langParam(r))
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

type walletRequest struct {
	Address string          `json:"address"`
	Lang    models.Language `json:"lang"`
}

func (s *Server) handleWalletAnalyze(w http.ResponseWriter, r *http.Request) {
	var req walletRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	req.Address = strings.TrimSpace(req.Address)
	if req.Address == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "wallet address required")
		return
	}
	if !req.Lang.Valid() {
		req.Lang = models.LangEnglish
	}

	analysis, err := s.dashboard.Wallet(r.Context(), req.Address, req.Lang)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	respondJSON(w, http.StatusOK, analysis)
}

type planRequest struct {
	Budget float64         `json:"budget"`
	Lang   models.Language `json:"lang"`
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	if req.Budget <= 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "budget must be positive")
		return
	}
	if !req.Lang.Valid() {
		req.Lang = models.LangEnglish
	}

	plan, err := s.dashboard.Plan(r.Context(), req.Budget, req.Lang)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	if plan == nil {
		respondJSON(w, http.StatusOK, nil)
		return
	}
	respondJSON(w, http.StatusOK, plan)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	var req service.PostInput
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "post topic required")
		return
	}
	switch req.Tone {
	case models.ToneProfessional, models.ToneHype, models.ToneBearish, models.ToneEducational:
	case "":
		req.Tone = models.ToneProfessional
	default:
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "unknown tone")
		return
	}
	if !req.Lang.Valid() {
		req.Lang = models.LangEnglish
	}

	// The post pipeline surfaces failures instead of substituting a
	// fallback, so the client can alert the user.
	post, err := s.dashboard.Post(r.Context(), req)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	respondJSON(w, http.StatusOK, post)
}

type chatRequest struct {
	History []models.ChatMessage `json:"history"`
	Message string               `json:"message"`
	Lang    models.Language      `json:"lang"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "message required")
		return
	}
	if !req.Lang.Valid() {
		req.Lang = models.LangEnglish
	}

	reply, err := s.dashboard.Chat(r.Context(), req.History, req.Message, req.Lang)
	if err != nil {
		statusCode, code, message := mapServiceError(err)
		respondError(w, statusCode, code, message)
		return
	}
	respondJSON(w, http.StatusOK, chatResponse{Reply: reply})
}
