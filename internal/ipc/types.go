package ipc

import (
	"time"

	"stagehand/internal/engine"
	"stagehand/internal/logging"
)

// StartRequest triggers daemon startup.
type StartRequest struct{}

// StartResponse indicates whether the daemon was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// QueuedRequest mirrors the engine queue DTO for IPC callers.
type QueuedRequest = engine.QueuedRequest

// StatusResponse represents combined daemon and show status.
type StatusResponse struct {
	Running       bool            `json:"running"`
	PID           int             `json:"pid"`
	LockPath      string          `json:"lock_path"`
	HistoryDBPath string          `json:"history_db_path"`
	Phase         string          `json:"phase"`
	ActiveProduct string          `json:"active_product,omitempty"`
	ActiveScene   string          `json:"active_scene,omitempty"`
	Queue         []QueuedRequest `json:"queue"`
	Products      int             `json:"products"`
	Stats         engine.Stats    `json:"stats"`
}

// StatsRequest fetches engine counters.
type StatsRequest struct{}

// StatsResponse contains engine counters.
type StatsResponse struct {
	Stats engine.Stats `json:"stats"`
}

// SkipRequest advances past the active product scene.
type SkipRequest struct{}

// SkipResponse reports skip outcome.
type SkipResponse struct {
	Skipped bool `json:"skipped"`
}

// StopShowRequest clears the queue and returns to the default scene.
type StopShowRequest struct{}

// StopShowResponse reports stop-show outcome.
type StopShowResponse struct {
	Stopped bool `json:"stopped"`
}

// PlayRequest manually triggers a product scene.
type PlayRequest struct {
	Product string `json:"product"`
}

// PlayResponse reports the product that was dispatched.
type PlayResponse struct {
	Product string `json:"product"`
}

// ReloadRequest reloads the product catalog from the config file.
type ReloadRequest struct{}

// ReloadResponse reports the size of the reloaded catalog.
type ReloadResponse struct {
	Products int `json:"products"`
}

// HistoryRequest fetches recent scene switches, newest first.
type HistoryRequest struct {
	Limit int `json:"limit"`
}

// HistoryEntry is a recorded scene switch.
type HistoryEntry struct {
	ID         int64     `json:"id"`
	Product    string    `json:"product"`
	Scene      string    `json:"scene"`
	Author     string    `json:"author"`
	Comment    string    `json:"comment"`
	Confidence float64   `json:"confidence"`
	Method     string    `json:"method"`
	SwitchedAt time.Time `json:"switched_at"`
}

// HistoryResponse contains recent switch entries.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// HistorySummaryRequest fetches per-product switch totals.
type HistorySummaryRequest struct{}

// ProductSwitches aggregates switches for one product.
type ProductSwitches struct {
	Product      string    `json:"product"`
	Switches     int64     `json:"switches"`
	LastSwitched time.Time `json:"last_switched"`
}

// HistorySummaryResponse contains per-product totals.
type HistorySummaryResponse struct {
	Products []ProductSwitches `json:"products"`
}

// LogEvent mirrors the structured log stream event for IPC callers.
type LogEvent = logging.LogEvent

// LogTailRequest fetches buffered log events after a sequence number.
type LogTailRequest struct {
	Since      uint64 `json:"since"`
	Limit      int    `json:"limit"`
	Follow     bool   `json:"follow"`
	WaitMillis int    `json:"wait_millis"`
}

// LogTailResponse returns log events and the next sequence number.
type LogTailResponse struct {
	Events  []LogEvent `json:"events"`
	NextSeq uint64     `json:"next_seq"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
