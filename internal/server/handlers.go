package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sjoshi/netflag/internal/domain"
	"github.com/sjoshi/netflag/internal/service"
)

// APIHandlers exposes HTTP handlers for the detection API.
type APIHandlers struct {
	logger     *slog.Logger
	controller *service.Controller
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, controller *service.Controller) *APIHandlers {
	return &APIHandlers{
		logger:     logger,
		controller: controller,
	}
}

type eventResponse struct {
	Sequence uint64                  `json:"sequence"`
	Phase    string                  `json:"phase"`
	Flagged  bool                    `json:"flagged"`
	Flag     *domain.FlaggedPurchase `json:"flag,omitempty"`
}

func (h *APIHandlers) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var raw map[string]any
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return
	}

	event, err := domain.ParseEvent(raw)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidEvent) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("event parse failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to parse event")
		return
	}

	flag := h.controller.Process(event)

	respondJSON(w, http.StatusAccepted, eventResponse{
		Sequence: h.controller.Sequence(),
		Phase:    string(h.controller.Phase()),
		Flagged:  flag != nil,
		Flag:     flag,
	})
}

type flagsResponse struct {
	Items []domain.FlaggedPurchase `json:"items"`
	Count int                      `json:"count"`
}

func (h *APIHandlers) handleFlags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	flags := h.controller.Flags()
	if flags == nil {
		flags = []domain.FlaggedPurchase{}
	}
	respondJSON(w, http.StatusOK, flagsResponse{
		Items: flags,
		Count: len(flags),
	})
}

type networkResponse struct {
	UserID  string   `json:"user_id"`
	Degree  int      `json:"degree"`
	Network []string `json:"network"`
	Size    int      `json:"size"`
}

func (h *APIHandlers) handleUserNetwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/network/user/")
	userID = strings.Trim(userID, "/")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	degree := h.controller.Config().Degree
	if v := r.URL.Query().Get("degree"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "degree must be a positive integer")
			return
		}
		degree = parsed
	}

	network := h.controller.NetworkOf(userID, degree)
	respondJSON(w, http.StatusOK, networkResponse{
		UserID:  userID,
		Degree:  degree,
		Network: network,
		Size:    len(network),
	})
}

type phaseResponse struct {
	Phase string `json:"phase"`
}

func (h *APIHandlers) handlePhase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	respondJSON(w, http.StatusOK, phaseResponse{Phase: string(h.controller.Phase())})
}

func (h *APIHandlers) handleGoLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	h.controller.GoLive()
	respondJSON(w, http.StatusOK, phaseResponse{Phase: string(h.controller.Phase())})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
