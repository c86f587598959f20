package handlers

import (
	"net/http"
	"sort"

	"NexoraPanel/models"
	"NexoraPanel/utils"
)

// ListPages shows the pages a user token manages. GET uses the configured
// FB_USER_TOKEN, POST accepts user_token from the form.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	var token string
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid form data")
			return
		}
		token = h.userToken(r)
	} else {
		token = h.defaultUserToken
	}

	if token == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Please provide a Facebook user access token")
		return
	}

	pages, err := h.resolver.ResolvePages(r.Context(), token)
	if err != nil {
		utils.Warnf("list pages failed: %v", err)
		respondResolveError(w, err)
		return
	}

	summaries := make([]models.PageSummary, 0, len(pages))
	for _, p := range pages {
		summaries = append(summaries, models.PageSummary{ID: p.ID, Name: p.Name, HasToken: p.AccessToken != ""})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Name == summaries[j].Name {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].Name < summaries[j].Name
	})

	response := map[string]interface{}{
		"pages": summaries,
		"count": len(summaries),
	}
	if len(summaries) == 0 {
		response["warning"] = "No pages found. Check your token permissions."
	}
	utils.RespondWithJSON(w, http.StatusOK, response)
}
