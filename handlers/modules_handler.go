package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"NexoraPanel/models"
	"NexoraPanel/services"
	"NexoraPanel/utils"

	"github.com/gorilla/mux"
)

// moduleRunner resolves {module} or answers 404.
func (h *Handler) moduleRunner(w http.ResponseWriter, r *http.Request) (*services.BatchRunner, bool) {
	runner, err := h.panel.Runner(mux.Vars(r)["module"])
	if err != nil {
		utils.RespondWithError(w, http.StatusNotFound, "Module not found")
		return nil, false
	}
	return runner, true
}

func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"modules": h.panel.Modules(),
	})
}

func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.moduleRunner(w, r)
	if !ok {
		return
	}
	cfg := runner.Config()
	utils.RespondWithJSON(w, http.StatusOK, models.ModuleInfo{
		Config:          cfg,
		IntervalSeconds: int(cfg.Interval.Seconds()),
		State:           h.panel.Registry().Status(cfg.Name),
	})
}

// ControlModule handles action=start|stop for a module's recurring run.
func (h *Handler) ControlModule(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.moduleRunner(w, r)
	if !ok {
		return
	}
	cfg := runner.Config()

	switch r.FormValue("action") {
	case "start":
		state, err := h.panel.StartModule(cfg.Name)
		if errors.Is(err, services.ErrAlreadyRunning) {
			utils.RespondWithJSON(w, http.StatusConflict, models.ActionResponse{
				Message: cfg.DisplayName + " posting is already running",
				State:   &state,
			})
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, models.ActionResponse{
			Message: cfg.DisplayName + " posting started",
			State:   &state,
		})
	case "stop":
		state, wasRunning, err := h.panel.StopModule(cfg.Name)
		if err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, err.Error())
			return
		}
		message := cfg.DisplayName + " posting stopped"
		if !wasRunning {
			message = cfg.DisplayName + " posting was not running"
		}
		utils.RespondWithJSON(w, http.StatusOK, models.ActionResponse{Message: message, State: &state})
	default:
		utils.RespondWithError(w, http.StatusBadRequest, "action must be start or stop")
	}
}

func respondPostOutcome(w http.ResponseWriter, displayName string, success bool) {
	if success {
		utils.RespondWithJSON(w, http.StatusOK, models.ActionResponse{
			Message: displayName + " post sent",
			Success: &success,
		})
		return
	}
	utils.RespondWithJSON(w, http.StatusBadGateway, models.ActionResponse{
		Message: "Failed to send " + displayName + " post (check images/posts files)",
		Success: &success,
	})
}

func (h *Handler) PostNow(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.moduleRunner(w, r)
	if !ok {
		return
	}
	// The Graph request outlives a client that hangs up, as in a run.
	respondPostOutcome(w, runner.Config().DisplayName, runner.PostOnce(context.WithoutCancel(r.Context())))
}

type indexedPost struct {
	Index int `json:"index"`
	models.PostRecord
}

// ListPosts returns the module's posts in file order, the order that
// PostSpecific indexes into.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.moduleRunner(w, r)
	if !ok {
		return
	}
	posts, err := runner.LoadPosts()
	if err != nil {
		utils.Errorf("load posts for %s: %v", runner.Config().Name, err)
		posts = []models.PostRecord{}
	}

	out := make([]indexedPost, len(posts))
	for i, p := range posts {
		out[i] = indexedPost{Index: i, PostRecord: p}
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"module": runner.Config().Name,
		"posts":  out,
	})
}

func (h *Handler) PostSpecific(w http.ResponseWriter, r *http.Request) {
	runner, ok := h.moduleRunner(w, r)
	if !ok {
		return
	}
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid post index")
		return
	}
	respondPostOutcome(w, runner.Config().DisplayName, runner.PostSpecific(context.WithoutCancel(r.Context()), idx))
}
