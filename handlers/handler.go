package handlers

import (
	"errors"
	"net/http"
	"strings"

	"NexoraPanel/publishers"
	"NexoraPanel/services"
	"NexoraPanel/utils"
)

type Handler struct {
	panel            *services.Panel
	resolver         publishers.PageResolver
	defaultUserToken string
}

func NewHandler(panel *services.Panel, resolver publishers.PageResolver, defaultUserToken string) *Handler {
	return &Handler{
		panel:            panel,
		resolver:         resolver,
		defaultUserToken: strings.TrimSpace(defaultUserToken),
	}
}

// userToken reads the form token and falls back to the configured one.
func (h *Handler) userToken(r *http.Request) string {
	if token := strings.TrimSpace(r.FormValue("user_token")); token != "" {
		return token
	}
	return h.defaultUserToken
}

func respondResolveError(w http.ResponseWriter, err error) {
	var authErr *publishers.AuthError
	if errors.As(err, &authErr) {
		if authErr.StatusCode == 0 {
			utils.RespondWithError(w, http.StatusBadRequest, authErr.Error())
			return
		}
		if authErr.Expired() {
			utils.RespondWithError(w, http.StatusUnauthorized, "Token expired or invalid: "+authErr.Error())
			return
		}
		utils.RespondWithError(w, http.StatusUnauthorized, "Token Error: "+authErr.Error())
		return
	}
	utils.RespondWithError(w, http.StatusBadGateway, "Failed to fetch pages: "+err.Error())
}
