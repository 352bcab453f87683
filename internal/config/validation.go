package config

import (
	"fmt"
	"math"
	"net"
	"path/filepath"
	"strings"
)

// maxDimension bounds the canvas size; larger values are rejected.
const maxDimension = 16384

// ValidationError represents a configuration validation error.
// It contains the field name and a description of the issue.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the results of a configuration validation.
type ValidationResult struct {
	// Errors contains all validation errors found.
	Errors []ValidationError
	// Warnings contains non-fatal issues.
	Warnings []ValidationError
}

// IsValid returns true if there are no validation errors.
func (vr *ValidationResult) IsValid() bool {
	return len(vr.Errors) == 0
}

// Error returns a combined error message if there are errors, nil otherwise.
func (vr *ValidationResult) Error() error {
	if len(vr.Errors) == 0 {
		return nil
	}
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, e.Error())
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(messages, "; "))
}

// AddError adds a validation error.
func (vr *ValidationResult) AddError(field, message string) {
	vr.Errors = append(vr.Errors, ValidationError{Field: field, Message: message})
}

// AddWarning adds a validation warning.
func (vr *ValidationResult) AddWarning(field, message string) {
	vr.Warnings = append(vr.Warnings, ValidationError{Field: field, Message: message})
}

// Validate checks every field of cfg.
func Validate(cfg *Config) *ValidationResult {
	result := &ValidationResult{}

	validateCanvas(cfg, result)
	validateLua(&cfg.Lua, result)
	validateLog(&cfg.Log, result)

	if cfg.WatchDebounce < 0 {
		result.AddError("watch_debounce", fmt.Sprintf("must be non-negative, got %v", cfg.WatchDebounce))
	}
	if cfg.DebugAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.DebugAddr); err != nil {
			result.AddError("debug_addr", err.Error())
		}
	}
	if cfg.Snapshot != "" && !strings.EqualFold(filepath.Ext(cfg.Snapshot), ".png") {
		result.AddError("snapshot", fmt.Sprintf("must be a .png file, got %q", cfg.Snapshot))
	}
	if cfg.Headless && cfg.MaxFrames == 0 {
		result.AddWarning("max_frames", "headless run without a frame limit only stops on a signal")
	}

	return result
}

func validateCanvas(cfg *Config, result *ValidationResult) {
	if cfg.Width <= 0 || cfg.Width > maxDimension {
		result.AddError("width", fmt.Sprintf("must be in 1..%d, got %d", maxDimension, cfg.Width))
	}
	if cfg.Height <= 0 || cfg.Height > maxDimension {
		result.AddError("height", fmt.Sprintf("must be in 1..%d, got %d", maxDimension, cfg.Height))
	}

	fps := cfg.FrameRate
	switch {
	case fps <= 0 || math.IsNaN(fps) || math.IsInf(fps, 0):
		result.AddError("frame_rate", fmt.Sprintf("must be positive and finite, got %v", fps))
	case fps > 240:
		result.AddWarning("frame_rate", fmt.Sprintf("unusually high value %v", fps))
	}
}

func validateLua(lc *LuaConfig, result *ValidationResult) {
	if lc.CPULimit == 0 {
		result.AddWarning("lua.cpu_limit", "0 disables the CPU limit; a runaway draw function will freeze the sketch")
	}
	if lc.SetupFunction != "" && !isIdentifier(lc.SetupFunction) {
		result.AddError("lua.setup_function", fmt.Sprintf("%q is not a Lua identifier", lc.SetupFunction))
	}
	if lc.DrawFunction != "" && !isIdentifier(lc.DrawFunction) {
		result.AddError("lua.draw_function", fmt.Sprintf("%q is not a Lua identifier", lc.DrawFunction))
	}
}

func validateLog(lc *LogConfig, result *ValidationResult) {
	switch lc.Level {
	case "debug", "info", "warn", "error":
	default:
		result.AddError("log.level", fmt.Sprintf("unknown level %q", lc.Level))
	}
	switch lc.Format {
	case "text", "json":
	default:
		result.AddError("log.format", fmt.Sprintf("unknown format %q", lc.Format))
	}
}

func isIdentifier(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', 'a' <= r && r <= 'z', 'A' <= r && r <= 'Z':
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return s != ""
}
