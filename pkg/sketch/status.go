package sketch

import "time"

// Phase is the lifecycle state of an Engine.
//
//	Created -> SetupPending -> Looping -> Stopped
//	                 \__________________/
//
// SetupPending goes straight to Stopped when initialization or Setup
// fails. No phase is ever re-entered.
type Phase int32

const (
	PhaseCreated Phase = iota
	PhaseSetupPending
	PhaseLooping
	PhaseStopped
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseSetupPending:
		return "setup_pending"
	case PhaseLooping:
		return "looping"
	case PhaseStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Status is a snapshot of an Engine, safe to take from any goroutine.
type Status struct {
	Phase  Phase
	Title  string
	Width  int
	Height int
	// FrameCount is the number of completed Draw calls.
	FrameCount uint64
	// FrameRate is the current target rate.
	FrameRate float64
	// StartTime is when Run was called (zero if never started).
	StartTime time.Time
	// LastError is the error that ended the run, if any.
	LastError error
	// Diagnostics is the lifetime number of recovered drawing errors.
	Diagnostics int64
}

// HealthStatus represents the overall health state of an engine.
type HealthStatus string

const (
	// HealthOK indicates the engine is looping without recent diagnostics.
	HealthOK HealthStatus = "ok"
	// HealthDegraded indicates a starting engine or recent recovered errors.
	HealthDegraded HealthStatus = "degraded"
	// HealthUnhealthy indicates the engine is not running.
	HealthUnhealthy HealthStatus = "unhealthy"
)

// HealthCheck contains the health of the engine and its components.
type HealthCheck struct {
	Status     HealthStatus
	Timestamp  time.Time
	Uptime     time.Duration
	Components map[string]ComponentHealth
	Message    string
}

// ComponentHealth represents the health status of an individual component.
type ComponentHealth struct {
	Status  HealthStatus
	Message string
}

// IsHealthy returns true if the overall status is HealthOK.
func (h HealthCheck) IsHealthy() bool {
	return h.Status == HealthOK
}
