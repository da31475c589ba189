package config

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"
)

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func validateDurations(fields map[string]string) error {
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		d, err := time.ParseDuration(fields[name])
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("invalid %s: must not be negative", name)
		}
	}
	return nil
}

func defaultString(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func mergeString(field *string, overlay string) {
	if overlay != "" {
		*field = overlay
	}
}

func envString(field *string, key string) {
	if v := os.Getenv(key); v != "" {
		*field = v
	}
}

func envInt(field *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*field = n
		}
	}
}

func envFloat(field **float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*field = &f
		}
	}
}

func envList(field *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*field = out
}
