// Package config defines the configuration model of the ormlite engine and
// command. Files are JSON or YAML; the field names mirror the keys used in
// those files.
//
// Example (YAML):
//
//	storage:
//	  kind: sqlite
//	  path: ./app.db
//	init_tables: true
//	log:
//	  level: debug
//	  format: text
//	metrics:
//	  backend: prometheus
//	  job: ormlite
//	  pushgateway_url: http://localhost:9091
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"ormlite/internal/storage"
)

// Config is the top-level object decoded from a config file.
type Config struct {
	// Storage selects the database the engine talks to.
	Storage Storage `json:"storage" yaml:"storage"`

	// InitTables runs schema bootstrapping when the engine is constructed.
	InitTables bool `json:"init_tables" yaml:"init_tables"`

	Log     Log     `json:"log" yaml:"log"`
	Metrics Metrics `json:"metrics" yaml:"metrics"`
}

// Storage selects a storage backend.
type Storage struct {
	// Kind selects the backend: "sqlite" (default), "postgres" or "mysql".
	Kind string `json:"kind" yaml:"kind"`

	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path"`

	// DSN is the connection string for server backends.
	DSN string `json:"dsn" yaml:"dsn"`

	// Create lets the sqlite backend create a missing database file.
	Create bool `json:"create" yaml:"create"`
}

// StorageConfig converts s into the storage factory's config.
func (s Storage) StorageConfig() storage.Config {
	return storage.Config{
		Kind:   s.Kind,
		Path:   s.Path,
		DSN:    s.DSN,
		Create: s.Create,
	}
}

// Log configures the structured logger.
type Log struct {
	// Level is one of trace, debug, info, warn, error. Default: info.
	Level string `json:"level" yaml:"level"`
	// Format is "text" (default) or "json".
	Format string `json:"format" yaml:"format"`
}

// Metrics selects the metrics backend.
type Metrics struct {
	// Backend is "", "none", "prometheus" or "datadog".
	Backend string `json:"backend" yaml:"backend"`
	// Job labels pushed metrics. Default: "ormlite".
	Job string `json:"job" yaml:"job"`
	// PushgatewayURL is the Prometheus Pushgateway endpoint.
	PushgatewayURL string `json:"pushgateway_url" yaml:"pushgateway_url"`

	Datadog Datadog `json:"datadog" yaml:"datadog"`
}

// Datadog configures the DogStatsD client.
type Datadog struct {
	// Addr is the agent address, e.g. "127.0.0.1:8125".
	Addr      string   `json:"addr" yaml:"addr"`
	Namespace string   `json:"namespace" yaml:"namespace"`
	Tags      []string `json:"tags" yaml:"tags"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Storage: Storage{Kind: "sqlite"},
		Log:     Log{Level: "info", Format: "text"},
		Metrics: Metrics{Job: "ormlite"},
	}
}

// Load reads a config file. ".yaml" and ".yml" files are decoded as YAML,
// everything else as JSON. Unknown keys are rejected. Fields absent from the
// file keep their Default values.
func Load(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return DecodeYAML(b)
	default:
		return DecodeJSON(b)
	}
}

// DecodeJSON decodes a JSON config document.
func DecodeJSON(b []byte) (Config, error) {
	c := Default()
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode json: %w", err)
	}
	return c, nil
}

// DecodeYAML decodes a YAML config document.
func DecodeYAML(b []byte) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("config: decode yaml: %w", err)
	}
	return c, nil
}

// Environment variables read by FromEnv.
const (
	EnvStorageKind    = "ORMLITE_STORAGE_KIND"
	EnvDBPath         = "ORMLITE_DB_PATH"
	EnvDSN            = "ORMLITE_DSN"
	EnvInitTables     = "ORMLITE_INIT_TABLES"
	EnvLogLevel       = "ORMLITE_LOG_LEVEL"
	EnvLogFormat      = "ORMLITE_LOG_FORMAT"
	EnvMetricsBackend = "ORMLITE_METRICS_BACKEND"
	EnvPushgatewayURL = "ORMLITE_PUSHGATEWAY_URL"
	EnvDatadogAddr    = "ORMLITE_DATADOG_ADDR"
)

// FromEnv returns base with every set ORMLITE_* variable applied on top.
// An unparsable boolean is reported and leaves the field unchanged.
func FromEnv(base Config) (Config, error) {
	return fromLookup(base, os.LookupEnv)
}

func fromLookup(c Config, lookup func(string) (string, bool)) (Config, error) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = strings.TrimSpace(v)
		}
	}
	str(EnvStorageKind, &c.Storage.Kind)
	str(EnvDBPath, &c.Storage.Path)
	str(EnvDSN, &c.Storage.DSN)
	str(EnvLogLevel, &c.Log.Level)
	str(EnvLogFormat, &c.Log.Format)
	str(EnvMetricsBackend, &c.Metrics.Backend)
	str(EnvPushgatewayURL, &c.Metrics.PushgatewayURL)
	str(EnvDatadogAddr, &c.Metrics.Datadog.Addr)

	if v, ok := lookup(EnvInitTables); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return c, fmt.Errorf("config: %s=%q: %w", EnvInitTables, v, err)
		}
		c.InitTables = b
	}
	return c, nil
}
