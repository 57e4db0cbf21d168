package config

import (
	"fmt"
	"strings"
)

type EnvVars struct {
	port             string
	appName          string
	env              string
	logLevel         string
	databaseURL      string
	adminExternalIDs []string
}

var _ EnvConfig = EnvVars{}

func (e EnvVars) GetPort() string {
	port := e.port
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (e EnvVars) GetAppName() string {
	return e.appName
}

func (e EnvVars) GetEnv() string {
	if e.env == "" {
		return "DEV"
	}
	return e.env
}

func (e EnvVars) GetLogLevel() string {
	return e.logLevel
}

// GetDatabaseURL returns the Postgres connection URL. Empty selects the in-memory store.
func (e EnvVars) GetDatabaseURL() string {
	return e.databaseURL
}

// GetAdminExternalIDs returns the provider subject ids that are guaranteed the admin role at startup
func (e EnvVars) GetAdminExternalIDs() []string {
	return e.adminExternalIDs
}

// trimCSV removes empty entries from a string slice.
func trimCSV(values []string) []string {
	result := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			result = append(result, v)
		}
	}
	return result
}
