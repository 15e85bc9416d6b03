package invite

import (
	"encoding/json"
	"net/http"

	"github.com/aicompleteme/completeme-backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SendInvite(w http.ResponseWriter, r *http.Request) {
	var req SendInviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SendInvite(r.Context(), &req); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to send invite")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.Response{Success: true, Message: "Invite sent"})
}
