package models

import "time"

type DeliveryStatus string

const (
	DeliverySuccess      DeliveryStatus = "success"
	DeliveryError        DeliveryStatus = "error"
	DeliveryPageNotFound DeliveryStatus = "page_not_found"
	DeliveryMissingToken DeliveryStatus = "missing_token"
)

type RunStatus string

const (
	RunIdle      RunStatus = "idle"
	RunRunning   RunStatus = "running"
	RunStopped   RunStatus = "stopped"
	RunCompleted RunStatus = "completed"
	RunError     RunStatus = "error"
)

// DirectPostingModule is the registry key used for one-off cycles started
// from the posting form.
const DirectPostingModule = "direct_posting"

// Page is a Facebook page the operator manages. AccessToken is empty when
// the Graph API did not return a page token.
type Page struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessToken string `json:"-"`
}

type PostRecord struct {
	Message       string `json:"message"`
	ImageFilename string `json:"image_filename,omitempty"`
}

type DeliveryResult struct {
	PageID    string         `json:"page_id"`
	PageName  string         `json:"page_name,omitempty"`
	Status    DeliveryStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	PostID    string         `json:"post_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

func (r DeliveryResult) Succeeded() bool {
	return r.Status == DeliverySuccess
}

type ModuleRunState struct {
	Module      string           `json:"module"`
	RunID       string           `json:"run_id,omitempty"`
	Status      RunStatus        `json:"status"`
	StartedAt   *time.Time       `json:"started_at,omitempty"`
	StoppedAt   *time.Time       `json:"stopped_at,omitempty"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Delivered   int              `json:"delivered"`
	Failed      int              `json:"failed"`
	LastResult  *DeliveryResult  `json:"last_result,omitempty"`
	Results     []DeliveryResult `json:"results,omitempty"`
	Error       string           `json:"error,omitempty"`
}

// ModuleConfig parameterizes one scheduled batch runner.
type ModuleConfig struct {
	Name         string        `json:"name" yaml:"name"`
	DisplayName  string        `json:"display_name" yaml:"display_name"`
	PageID       string        `json:"page_id" yaml:"page_id"`
	AccessToken  string        `json:"-" yaml:"access_token"`
	PostsFile    string        `json:"posts_file" yaml:"posts_file"`
	ImageDir     string        `json:"image_dir" yaml:"image_dir"`
	Interval     time.Duration `json:"-" yaml:"-"`
	PostSchedule string        `json:"post_schedule,omitempty" yaml:"post_schedule"`
}

type PageSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	HasToken bool   `json:"has_token"`
}

type PostingPreview struct {
	Message         string            `json:"message"`
	ImageURL        string            `json:"image_url,omitempty"`
	SelectedPages   map[string]string `json:"selected_pages"`
	Repeats         int               `json:"repeats"`
	IntervalSeconds int               `json:"interval_seconds"`
}

type ModuleInfo struct {
	Config          ModuleConfig   `json:"config"`
	IntervalSeconds int            `json:"interval_seconds"`
	State           ModuleRunState `json:"state"`
}

type ActionResponse struct {
	Message string          `json:"message"`
	State   *ModuleRunState `json:"state,omitempty"`
	Success *bool           `json:"success,omitempty"`
}
