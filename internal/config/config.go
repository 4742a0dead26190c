package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config carries every knob the pipeline needs. Values resolve in order:
// built-in defaults, then the optional YAML file, then environment variables.
type Config struct {
	Chain             []string `yaml:"chain"`
	OpenAIEndpoint    string   `yaml:"openai_endpoint"`
	OpenAIKey         string   `yaml:"openai_api_key"`
	OpenAIModel       string   `yaml:"openai_model"`
	OpenAITemperature float64  `yaml:"openai_temperature"`
	OpenAITimeoutSec  int      `yaml:"openai_timeout_sec"`
	OllamaBin         string   `yaml:"ollama_bin"`
	OllamaModel       string   `yaml:"ollama_model"`
	OllamaTimeoutSec  int      `yaml:"ollama_timeout_sec"`
	CollabURL         string   `yaml:"collab_url"`
	CollabTimeoutSec  int      `yaml:"collab_timeout_sec"`
	SpeakerOverride   bool     `yaml:"speaker_override"`
	BatchLimit        int      `yaml:"batch_limit"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Chain:             []string{"openai", "ollama", "identity"},
		OpenAIEndpoint:    "https://api.openai.com/v1/chat/completions",
		OpenAIModel:       "gpt-3.5-turbo",
		OpenAITemperature: 0.2,
		OpenAITimeoutSec:  60,
		OllamaBin:         "ollama",
		OllamaModel:       "mistral",
		OllamaTimeoutSec:  120,
		CollabTimeoutSec:  300,
		BatchLimit:        4,
	}
}

// Load resolves the configuration. path may be empty, then only defaults and
// environment apply.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("CLEANUP_CHAIN"); v != "" {
		c.Chain = SplitChain(v)
	}
	if v := os.Getenv("OPENAI_ENDPOINT"); v != "" {
		c.OpenAIEndpoint = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.OpenAIKey = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		c.OpenAIModel = v
	}
	if v := os.Getenv("OPENAI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.OpenAITemperature = f
		}
	}
	c.OpenAITimeoutSec = envSeconds("OPENAI_TIMEOUT_SEC", c.OpenAITimeoutSec)
	if v := os.Getenv("OLLAMA_BIN"); v != "" {
		c.OllamaBin = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.OllamaModel = v
	}
	c.OllamaTimeoutSec = envSeconds("OLLAMA_TIMEOUT_SEC", c.OllamaTimeoutSec)
	if v := os.Getenv("TRANSCRIBE_URL"); v != "" {
		c.CollabURL = v
	}
	c.CollabTimeoutSec = envSeconds("TRANSCRIBE_TIMEOUT_SEC", c.CollabTimeoutSec)
	if v := os.Getenv("SPEAKER_OVERRIDE"); v != "" {
		c.SpeakerOverride = v == "true" || v == "1"
	}
	if v := os.Getenv("BATCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.BatchLimit = n
		}
	}
}

func envSeconds(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// SplitChain parses a comma separated backend list, dropping blanks.
func SplitChain(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
