package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds GuardianEye configuration. It is read once at process start
// and treated as immutable afterwards.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	SafeBrowsing SafeBrowsingConfig `yaml:"safebrowsing"`
	Model        ModelConfig        `yaml:"model"`
	Rules        RulesConfig        `yaml:"rules"`
	Degradation  DegradationConfig  `yaml:"degradation"`
}

type ServerConfig struct {
	Addr                     string `yaml:"addr"` // HTTP listen address, e.g. ":8000"
	ReadHeaderTimeoutSeconds int    `yaml:"read_header_timeout_seconds"`
	ReadTimeoutSeconds       int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds      int    `yaml:"write_timeout_seconds"`
}

type SafeBrowsingConfig struct {
	// APIKeyEnv names the environment variable holding the credential.
	// An unset variable disables the reputation collector entirely.
	APIKeyEnv             string `yaml:"api_key_env"`
	Endpoint              string `yaml:"endpoint"`
	MinIntervalSeconds    int    `yaml:"min_interval_seconds"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

type ModelConfig struct {
	Disabled  bool   `yaml:"disabled"`
	BundleDir string `yaml:"bundle_dir"`
	SeqLen    int    `yaml:"seq_len"`
}

type RulesConfig struct {
	Disabled bool `yaml:"disabled"`
}

type DegradationConfig struct {
	// Annotate surfaces "Source X unavailable" notes in verdict reasons.
	// Off by default: degradation is logged either way.
	Annotate bool `yaml:"annotate"`
}

// Load reads configuration from a YAML file. A missing file yields the
// default config and no error.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			applyDefaults(cfg)
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Server.ReadHeaderTimeoutSeconds <= 0 {
		cfg.Server.ReadHeaderTimeoutSeconds = 5
	}
	if cfg.Server.ReadTimeoutSeconds <= 0 {
		cfg.Server.ReadTimeoutSeconds = 30
	}
	if cfg.Server.WriteTimeoutSeconds <= 0 {
		cfg.Server.WriteTimeoutSeconds = 30
	}

	if cfg.SafeBrowsing.APIKeyEnv == "" {
		cfg.SafeBrowsing.APIKeyEnv = "GOOGLE_SAFEBROWSING_API_KEY"
	}
	if cfg.SafeBrowsing.MinIntervalSeconds <= 0 {
		cfg.SafeBrowsing.MinIntervalSeconds = 1
	}
	if cfg.SafeBrowsing.RequestTimeoutSeconds <= 0 {
		cfg.SafeBrowsing.RequestTimeoutSeconds = 10
	}

	if cfg.Model.BundleDir == "" {
		cfg.Model.BundleDir = "./models/phishguard"
	}
	if cfg.Model.SeqLen <= 0 {
		cfg.Model.SeqLen = 256
	}
}
