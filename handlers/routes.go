package handlers

import "github.com/gorilla/mux"

func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods("GET")
	r.HandleFunc("/", h.Dashboard).Methods("GET")
	r.HandleFunc("/api/status", h.APIStatus).Methods("GET")

	// Pages
	r.HandleFunc("/pages", h.ListPages).Methods("GET", "POST")

	// Direct posting
	r.HandleFunc("/post", h.PreviewPosting).Methods("POST")
	r.HandleFunc("/post/execute", h.ExecutePosting).Methods("POST")
	r.HandleFunc("/post/stop", h.StopPosting).Methods("POST")

	// Modules
	r.HandleFunc("/modules", h.ListModules).Methods("GET")
	r.HandleFunc("/modules/{module}", h.GetModule).Methods("GET")
	r.HandleFunc("/modules/{module}", h.ControlModule).Methods("POST")
	r.HandleFunc("/modules/{module}/post_now", h.PostNow).Methods("POST")
	r.HandleFunc("/modules/{module}/posts", h.ListPosts).Methods("GET")
	r.HandleFunc("/modules/{module}/post/{idx:[0-9]+}", h.PostSpecific).Methods("POST")
}
