package digest

import (
	"github.com/gorilla/mux"

	"github.com/aicompleteme/completeme-backend/internal/auth"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *auth.Middleware) {
	api := router.PathPrefix("/api/v1/digest").Subrouter()
	api.Use(authMiddleware.Authenticate)

	api.HandleFunc("/generate", handler.GenerateDigest).Methods("POST")
	api.HandleFunc("/today", handler.GetTodayDigest).Methods("GET")

	// Internal trigger for scheduled/ops generation on behalf of a user.
	internal := router.PathPrefix("/api/v1/internal/digest").Subrouter()
	internal.Use(authMiddleware.Authenticate)
	internal.HandleFunc("/generate", handler.TriggerDigest).Methods("POST")
}
