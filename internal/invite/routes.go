package invite

import (
	"github.com/gorilla/mux"

	"github.com/aicompleteme/completeme-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/invites").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("", handler.SendInvite).Methods("POST")
}
