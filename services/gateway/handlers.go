package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"banwarden/internal/schema"
	"banwarden/services/banregistry"

	"github.com/gorilla/mux"
)

// issueBanRequest mirrors the issue-ban request schema.
type issueBanRequest struct {
	Days          int    `json:"days"`
	Hours         int    `json:"hours"`
	Minutes       int    `json:"minutes"`
	Permanent     bool   `json:"permanent"`
	Reason        string `json:"reason"`
	CustomTitle   string `json:"custom_title"`
	CustomMessage string `json:"custom_message"`
	AppealInfo    string `json:"appeal_info"`
	IssuedBy      string `json:"issued_by"`
	Announce      bool   `json:"announce"`
}

type liftBanRequest struct {
	LiftedBy string `json:"lifted_by"`
}

// ModerationHandlers exposes the ban registry over HTTP.
type ModerationHandlers struct {
	registry  *banregistry.Registry
	validator *schema.Validator
}

func NewModerationHandlers(registry *banregistry.Registry) *ModerationHandlers {
	validator, err := schema.NewIssueBanValidator()
	if err != nil {
		log.Printf("Failed to build issue-ban validator: %v", err)
	}
	return &ModerationHandlers{
		registry:  registry,
		validator: validator,
	}
}

// IssueBanHandler handles POST /bans/{player_name}.
func (h *ModerationHandlers) IssueBanHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	target := vars["player_name"]

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	if h.validator != nil {
		if err := h.validator.ValidateBytes(body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	var req issueBanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	record, err := h.registry.IssueBan(r.Context(), target, banregistry.IssueRequest{
		Days:          req.Days,
		Hours:         req.Hours,
		Minutes:       req.Minutes,
		Permanent:     req.Permanent,
		Reason:        req.Reason,
		CustomTitle:   req.CustomTitle,
		CustomMessage: req.CustomMessage,
		AppealInfo:    req.AppealInfo,
		IssuedBy:      req.IssuedBy,
		Announce:      req.Announce,
	})
	if err != nil {
		writeRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(record)
}

// LiftBanHandler handles DELETE /bans/{player_name}.
func (h *ModerationHandlers) LiftBanHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	target := vars["player_name"]

	var req liftBanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if req.LiftedBy == "" {
		req.LiftedBy = "console"
	}

	if err := h.registry.LiftBan(r.Context(), target, req.LiftedBy); err != nil {
		writeRegistryError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "lifted", "player": target})
}

// ListBansHandler handles GET /bans.
func (h *ModerationHandlers) ListBansHandler(w http.ResponseWriter, r *http.Request) {
	bans := h.registry.ActiveBans()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"bans":  bans,
		"count": len(bans),
	})
}

// HealthHandler handles GET /healthz.
func (h *ModerationHandlers) HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func writeRegistryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, banregistry.ErrEmptyReason):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, banregistry.ErrTargetNotFound), errors.Is(err, banregistry.ErrNotBanned):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, banregistry.ErrPersistence), errors.Is(err, banregistry.ErrEffects):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("Unexpected moderation error: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
