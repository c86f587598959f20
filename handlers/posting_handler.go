package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"NexoraPanel/models"
	"NexoraPanel/services"
	"NexoraPanel/utils"
)

type postingForm struct {
	request services.CycleRequest
}

// parsePostingForm validates the posting form. Bad repeats/interval values
// fall back to defaults instead of being rejected.
func (h *Handler) parsePostingForm(r *http.Request) (*postingForm, string) {
	if err := r.ParseForm(); err != nil {
		return nil, "Invalid form data"
	}

	token := h.userToken(r)
	message := strings.TrimSpace(r.FormValue("message"))

	var selected []string
	for _, id := range r.Form["pages"] {
		if id = strings.TrimSpace(id); id != "" {
			selected = append(selected, id)
		}
	}

	switch {
	case token == "":
		return nil, "Token is required"
	case len(selected) == 0:
		return nil, "Please select at least one page to post to"
	case message == "":
		return nil, "Message content is required"
	}

	return &postingForm{request: services.CycleRequest{
		UserToken:       token,
		PageIDs:         selected,
		Message:         message,
		ImageURL:        strings.TrimSpace(r.FormValue("image_url")),
		Repeats:         services.ParseRepeats(r.FormValue("repeats")),
		IntervalSeconds: services.ParseInterval(r.FormValue("interval")),
	}}, ""
}

// PreviewPosting resolves the selection so the operator can confirm it
// before anything is sent.
func (h *Handler) PreviewPosting(w http.ResponseWriter, r *http.Request) {
	form, problem := h.parsePostingForm(r)
	if problem != "" {
		utils.RespondWithError(w, http.StatusBadRequest, problem)
		return
	}
	req := form.request

	pages, err := h.resolver.ResolvePages(r.Context(), req.UserToken)
	if err != nil {
		respondResolveError(w, err)
		return
	}

	selected := make(map[string]string)
	for _, id := range req.PageIDs {
		if page, ok := pages[id]; ok {
			name := page.Name
			if name == "" {
				name = "Page " + id
			}
			selected[id] = name
		}
	}
	if len(selected) == 0 {
		utils.RespondWithError(w, http.StatusBadRequest, "Selected pages not found")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, models.PostingPreview{
		Message:         req.Message,
		ImageURL:        req.ImageURL,
		SelectedPages:   selected,
		Repeats:         req.Repeats,
		IntervalSeconds: req.IntervalSeconds,
	})
}

// ExecutePosting starts the direct posting cycle in the background.
func (h *Handler) ExecutePosting(w http.ResponseWriter, r *http.Request) {
	form, problem := h.parsePostingForm(r)
	if problem != "" {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid posting data: "+problem)
		return
	}

	state, err := h.panel.StartDirect(form.request)
	if errors.Is(err, services.ErrAlreadyRunning) {
		utils.RespondWithJSON(w, http.StatusConflict, models.ActionResponse{
			Message: "Direct posting is already running",
			State:   &state,
		})
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondWithJSON(w, http.StatusAccepted, models.ActionResponse{
		Message: fmt.Sprintf("Posting started to %d page(s)", len(form.request.PageIDs)),
		State:   &state,
	})
}

func (h *Handler) StopPosting(w http.ResponseWriter, r *http.Request) {
	state, wasRunning := h.panel.StopDirect()
	message := "Direct posting stopped"
	if !wasRunning {
		message = "Direct posting was not running"
	}
	utils.RespondWithJSON(w, http.StatusOK, models.ActionResponse{Message: message, State: &state})
}
