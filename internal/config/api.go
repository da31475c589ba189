package config

import (
	"fmt"

	"github.com/JaimeStill/courtfetch/pkg/formatting"
	"github.com/JaimeStill/courtfetch/pkg/middleware"
	"github.com/JaimeStill/courtfetch/pkg/pagination"
)

const (
	EnvAPIBasePath       = "COURTFETCH_API_BASE_PATH"
	EnvAPIMaxUploadSize  = "COURTFETCH_API_MAX_UPLOAD_SIZE"
	EnvAPIMaxInspectSize = "COURTFETCH_API_MAX_INSPECT_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "COURTFETCH_CORS_ENABLED",
	Origins:          "COURTFETCH_CORS_ORIGINS",
	AllowedMethods:   "COURTFETCH_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "COURTFETCH_CORS_ALLOWED_HEADERS",
	AllowCredentials: "COURTFETCH_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "COURTFETCH_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "COURTFETCH_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "COURTFETCH_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, pagination, and document size settings.
type APIConfig struct {
	BasePath       string                `toml:"base_path"`
	MaxUploadSize  string                `toml:"max_upload_size"`
	MaxInspectSize string                `toml:"max_inspect_size"`
	CORS           middleware.CORSConfig `toml:"cors"`
	Pagination     pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxUploadSize)
	return size
}

// MaxInspectSizeBytes returns the largest document whose pages are counted.
func (c *APIConfig) MaxInspectSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxInspectSize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	mergeString(&c.MaxInspectSize, overlay.MaxInspectSize)

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	defaultString(&c.BasePath, "/api")
	defaultString(&c.MaxUploadSize, "25MB")
	defaultString(&c.MaxInspectSize, "10MB")
}

func (c *APIConfig) loadEnv() {
	envString(&c.BasePath, EnvAPIBasePath)
	envString(&c.MaxUploadSize, EnvAPIMaxUploadSize)
	envString(&c.MaxInspectSize, EnvAPIMaxInspectSize)
}

func (c *APIConfig) validate() error {
	for name, v := range map[string]string{
		"max_upload_size":  c.MaxUploadSize,
		"max_inspect_size": c.MaxInspectSize,
	} {
		size, err := formatting.ParseBytes(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if size <= 0 {
			return fmt.Errorf("invalid %s: must be positive", name)
		}
	}
	return nil
}
