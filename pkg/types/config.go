package types

import "time"

// ClassifierBackend identifies the score classifier implementation.
type ClassifierBackend string

const (
	// ClassifierNutriScore is the built-in local scoring table.
	ClassifierNutriScore ClassifierBackend = "nutriscore"

	// ClassifierHTTP delegates classification to a remote service.
	ClassifierHTTP ClassifierBackend = "http"
)

// ClassifierConfig holds settings for the score classifier.
type ClassifierConfig struct {
	// Backend selects the classifier: nutriscore or http.
	Backend ClassifierBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// URL is the endpoint of the remote classifier (http backend only).
	URL string `json:"url,omitempty" yaml:"url,omitempty" mapstructure:"url"`

	// Timeout bounds a single remote classification, retries included
	// (default 5s). When it expires the score is left unset.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxRetries is the number of retries on HTTP 429 (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// APIKey is sent as a bearer token when set.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`
}

// StoreConfig holds settings for the recipe store.
type StoreConfig struct {
	// Dir is the directory holding recipes.db.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// DefaultLimit caps list results when no explicit limit is given (default 50).
	DefaultLimit int `json:"default_limit" yaml:"default_limit" mapstructure:"default_limit"`
}

// EngineConfig groups the configuration of every stage.
type EngineConfig struct {
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier" mapstructure:"classifier"`
	Store      StoreConfig      `json:"store" yaml:"store" mapstructure:"store"`

	// DraftPath is the YAML file holding the recipe draft being edited.
	DraftPath string `json:"draft" yaml:"draft" mapstructure:"draft"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
}
