package database

import "errors"

var (
	// ErrNotReady indicates the database connection has not been established.
	ErrNotReady = errors.New("database not ready")
	// ErrUnsupportedDriver indicates the configured driver has no registered implementation.
	ErrUnsupportedDriver = errors.New("unsupported database driver")
)
