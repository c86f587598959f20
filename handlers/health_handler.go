package handlers

import (
	"NexoraPanel/utils"
	"net/http"
)

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Dashboard is the landing summary: whether a default token is configured
// and the state of every module.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"has_user_token": h.defaultUserToken != "",
		"modules":        h.panel.Modules(),
		"posted":         h.panel.Registry().Snapshot(),
	})
}

func (h *Handler) APIStatus(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, h.panel.Registry().Snapshot())
}
