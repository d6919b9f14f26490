package domain

import "errors"

// Sentinel errors for domain operations
var (
	// ErrServerOffline indicates the media server is unreachable or answered with a non-success status
	ErrServerOffline = errors.New("media server is unreachable")

	// ErrBadResponse indicates the media server answered with a body we could not decode
	ErrBadResponse = errors.New("media server returned an unreadable response")

	// ErrSensorNotFound indicates no sensor is registered under the requested entity id
	ErrSensorNotFound = errors.New("sensor not found")

	// ErrRefreshInProgress indicates a refresh cycle is already running
	ErrRefreshInProgress = errors.New("refresh already in progress")
)
