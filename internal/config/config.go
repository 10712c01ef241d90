package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv       = "AUTOPOSTER_CONFIG"
	groqAPIKeyEnv       = "GROQ_API_KEY"
	groqModelEnv        = "GROQ_MODEL"
	linkedinTokenEnv    = "LINKEDIN_ACCESS_TOKEN"
	linkedinAuthorEnv   = "LINKEDIN_PERSON_URN"
	historyDSNEnv       = "HISTORY_DSN"
	historyFileEnv      = "HISTORY_FILE"
	linkedinVersionHead = "202401"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Search   SearchConfig   `yaml:"search"`
	History  HistoryConfig  `yaml:"history"`
	Groq     GroqConfig     `yaml:"groq"`
	LinkedIn LinkedInConfig `yaml:"linkedin"`
	Persona  PersonaConfig  `yaml:"persona"`
}

// LoggingConfig controls slog verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// SearchConfig defines the trending-topic fan-out.
type SearchConfig struct {
	Strategy        string          `yaml:"strategy"`
	Queries         []string        `yaml:"queries"`
	ResultsPerQuery int             `yaml:"resultsPerQuery"`
	MaxCandidates   int             `yaml:"maxCandidates"`
	Fallback        []FallbackTopic `yaml:"fallback"`
}

// FallbackTopic is a static candidate used when every query comes back empty.
type FallbackTopic struct {
	Title   string `yaml:"title"`
	Snippet string `yaml:"snippet"`
	Source  string `yaml:"source"`
}

// HistoryConfig selects and tunes the posting-log backend.
type HistoryConfig struct {
	Backend       string `yaml:"backend"` // "file" or "postgres"
	FilePath      string `yaml:"filePath"`
	DSN           string `yaml:"dsn"`
	KeepEntries   int    `yaml:"keepEntries"`
	WindowEntries int    `yaml:"windowEntries"`
	WindowDays    int    `yaml:"windowDays"`
}

// WindowAge converts the configured day bound to a duration.
func (h HistoryConfig) WindowAge() time.Duration {
	return time.Duration(h.WindowDays) * 24 * time.Hour
}

// GroqConfig defines how to contact the OpenAI-compatible chat API.
// The API key is a secret and comes from the environment only.
type GroqConfig struct {
	Endpoint  string `yaml:"endpoint"`
	Model     string `yaml:"model"`
	APIKey    string `yaml:"-"`
	MaxTokens int    `yaml:"maxTokens"`
}

// LinkedInConfig wires the posting endpoint and credential sources.
type LinkedInConfig struct {
	BaseURL     string `yaml:"baseUrl"`
	AccessToken string `yaml:"-"`
	AuthorURN   string `yaml:"-"`
	TokenFile   string `yaml:"tokenFile"`
	Version     string `yaml:"version"`
}

// PersonaConfig mirrors the persona knobs; blank fields fall back to the
// built-in persona.
type PersonaConfig struct {
	Name         string   `yaml:"name"`
	SystemPrompt string   `yaml:"systemPrompt"`
	Tone         string   `yaml:"tone"`
	Expertise    []string `yaml:"expertise"`
	Hashtags     []string `yaml:"hashtags"`
	MaxPostChars int      `yaml:"maxPostChars"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Search.Queries) == 0 {
		cfg.Search.Queries = defaultConfig().Search.Queries
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(groqAPIKeyEnv); v != "" {
		c.Groq.APIKey = v
	}
	if v := os.Getenv(groqModelEnv); v != "" {
		c.Groq.Model = v
	}
	if v := os.Getenv(linkedinTokenEnv); v != "" {
		c.LinkedIn.AccessToken = v
	}
	if v := os.Getenv(linkedinAuthorEnv); v != "" {
		c.LinkedIn.AuthorURN = v
	}
	if v := os.Getenv(historyDSNEnv); v != "" {
		c.History.DSN = v
	}
	if v := os.Getenv(historyFileEnv); v != "" {
		c.History.FilePath = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Search.Strategy != "" {
		base.Search.Strategy = override.Search.Strategy
	}
	if len(override.Search.Queries) > 0 {
		base.Search.Queries = override.Search.Queries
	}
	if override.Search.ResultsPerQuery > 0 {
		base.Search.ResultsPerQuery = override.Search.ResultsPerQuery
	}
	if override.Search.MaxCandidates > 0 {
		base.Search.MaxCandidates = override.Search.MaxCandidates
	}
	if len(override.Search.Fallback) > 0 {
		base.Search.Fallback = override.Search.Fallback
	}

	if override.History.Backend != "" {
		base.History.Backend = override.History.Backend
	}
	if override.History.FilePath != "" {
		base.History.FilePath = override.History.FilePath
	}
	if override.History.DSN != "" {
		base.History.DSN = override.History.DSN
	}
	if override.History.KeepEntries > 0 {
		base.History.KeepEntries = override.History.KeepEntries
	}
	if override.History.WindowEntries > 0 {
		base.History.WindowEntries = override.History.WindowEntries
	}
	if override.History.WindowDays > 0 {
		base.History.WindowDays = override.History.WindowDays
	}

	if override.Groq.Endpoint != "" {
		base.Groq.Endpoint = override.Groq.Endpoint
	}
	if override.Groq.Model != "" {
		base.Groq.Model = override.Groq.Model
	}
	if override.Groq.MaxTokens > 0 {
		base.Groq.MaxTokens = override.Groq.MaxTokens
	}

	if override.LinkedIn.BaseURL != "" {
		base.LinkedIn.BaseURL = override.LinkedIn.BaseURL
	}
	if override.LinkedIn.TokenFile != "" {
		base.LinkedIn.TokenFile = override.LinkedIn.TokenFile
	}
	if override.LinkedIn.Version != "" {
		base.LinkedIn.Version = override.LinkedIn.Version
	}

	if override.Persona.Name != "" {
		base.Persona.Name = override.Persona.Name
	}
	if override.Persona.SystemPrompt != "" {
		base.Persona.SystemPrompt = override.Persona.SystemPrompt
	}
	if override.Persona.Tone != "" {
		base.Persona.Tone = override.Persona.Tone
	}
	if len(override.Persona.Expertise) > 0 {
		base.Persona.Expertise = override.Persona.Expertise
	}
	if len(override.Persona.Hashtags) > 0 {
		base.Persona.Hashtags = override.Persona.Hashtags
	}
	if override.Persona.MaxPostChars > 0 {
		base.Persona.MaxPostChars = override.Persona.MaxPostChars
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info"},
		Search: SearchConfig{
			Strategy: "googlenews",
			Queries: []string{
				"Android development trends 2025",
				"Kotlin new features latest",
				"Jetpack Compose updates",
			},
			ResultsPerQuery: 3,
			MaxCandidates:   5,
		},
		History: HistoryConfig{
			Backend:       "file",
			FilePath:      "post_history.json",
			KeepEntries:   100,
			WindowEntries: 50,
			WindowDays:    365,
		},
		Groq: GroqConfig{
			Endpoint:  "https://api.groq.com/openai/v1/chat/completions",
			Model:     "llama-3.3-70b-versatile",
			MaxTokens: 1024,
		},
		LinkedIn: LinkedInConfig{
			BaseURL:   "https://api.linkedin.com",
			TokenFile: "linkedin_tokens.json",
			Version:   linkedinVersionHead,
		},
		Persona: PersonaConfig{},
	}
}
