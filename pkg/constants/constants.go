// Package constants provides shared constants used throughout the resdesk
// codebase. This includes timeouts, limits, and file permissions that should
// be consistent across the application.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultTimeout is the standard timeout for general operations
	DefaultTimeout = 10 * time.Second

	// OracleTimeout is the timeout for a single extraction oracle call
	OracleTimeout = 2 * time.Minute

	// CommandTimeout is the default timeout for CLI commands
	CommandTimeout = 5 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644

	// SecureFilePermissions is for sensitive files like API keys (rw-------)
	SecureFilePermissions = 0600
)

// Limit constants define various limits and capacities
const (
	// MaxRawTextBytes caps the raw booking text accepted into a draft
	MaxRawTextBytes = 64 * 1024

	// DefaultListLimit is the default page size for draft listings
	DefaultListLimit = 50
)
