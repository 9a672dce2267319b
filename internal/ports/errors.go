package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur while resolving geography and
// collecting metrics.
var (
	// ErrAreaNotFound indicates that no block group contains the point.
	ErrAreaNotFound = errors.New("no containing area")

	// ErrUnknownNode indicates that a reference node name is not configured.
	ErrUnknownNode = errors.New("unknown reference node")

	// ErrInvalidCoordinates indicates a latitude or longitude out of range.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrDatasetInvalid indicates that a geometry dataset could not be used.
	ErrDatasetInvalid = errors.New("invalid geometry dataset")

	// ErrRateLimited indicates that a request was rejected by rate limiting.
	ErrRateLimited = errors.New("rate limited")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// ResolveError represents a failure of an upstream geographic resolver.
// It records the point and target so the offending sighting can be fixed.
type ResolveError struct {
	// Resolver names the resolver that failed, e.g. "area" or "distance".
	Resolver string

	// Latitude and Longitude are the point being resolved.
	Latitude  float64
	Longitude float64

	// Target is the reference node name for distance lookups.
	Target string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ResolveError.
func (e *ResolveError) Error() string {
	msg := fmt.Sprintf("resolve error: resolver=%s, point=(%.6f,%.6f), err=%v",
		e.Resolver, e.Latitude, e.Longitude, e.Err)
	if e.Target != "" {
		msg += fmt.Sprintf(", target=%s", e.Target)
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ResolveError) Unwrap() error { return e.Err }

// NewResolveError creates a new ResolveError with the given details.
func NewResolveError(resolver string, lat, lon float64, err error) *ResolveError {
	return &ResolveError{
		Resolver:  resolver,
		Latitude:  lat,
		Longitude: lon,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
