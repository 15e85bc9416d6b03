package digest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aicompleteme/completeme-backend/internal/ai"
	"github.com/aicompleteme/completeme-backend/internal/auth"
	"github.com/aicompleteme/completeme-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GenerateDigest runs the pipeline for the authenticated user.
func (h *Handler) GenerateDigest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing user identity")
		return
	}

	digest, err := h.service.GenerateDigest(r.Context(), userID)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, digest)
}

// TriggerDigest runs the pipeline for an arbitrary user id. Used by the
// scheduler's HTTP twin and ops tooling.
func (h *Handler) TriggerDigest(w http.ResponseWriter, r *http.Request) {
	var req GenerateDigestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	digest, err := h.service.GenerateDigest(r.Context(), req.UserID)
	if err != nil {
		h.respondPipelineError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, digest)
}

// GetTodayDigest returns today's persisted digest for the authenticated user.
func (h *Handler) GetTodayDigest(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		utils.RespondWithError(w, http.StatusUnauthorized, "Missing user identity")
		return
	}

	digest, err := h.service.GetTodayDigest(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrDigestNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, "No digest generated today")
			return
		}
		h.respondPipelineError(w, err)
		return
	}

	utils.RespondWithData(w, http.StatusOK, digest)
}

// respondPipelineError maps pipeline errors onto HTTP statuses. Rate limiting
// and billing failures keep their upstream status so clients can tell
// retry-soon apart from give-up.
func (h *Handler) respondPipelineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrMissingUserID), errors.Is(err, ErrInvalidUserID):
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPremiumRequired):
		utils.RespondWithError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrProfileNotFound):
		utils.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ai.ErrRateLimited):
		utils.RespondWithError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please try again shortly.")
	case errors.Is(err, ai.ErrPaymentRequired):
		utils.RespondWithError(w, http.StatusPaymentRequired, "Payment required for AI usage. Please add credits.")
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to generate digest")
	}
}
