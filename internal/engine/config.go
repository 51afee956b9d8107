package engine

import (
	"net/http"
	"time"
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRatePerMin      int // 0 = unlimited
	FetchTimeout       time.Duration
	MaxTranscriptChars int      // 0 = unlimited
	CaptionLangs       []string // preferred caption languages, in order
	OutputDir          string   // where exported PDFs are written
	PromptsFile        string   // "" = embedded defaults
	HTTPClient         *http.Client
	LLMClient          Completer
}

var cfg Config

// Cfg exposes the engine configuration for sub-packages (notes, sources).
// Always points to the current cfg value.
var Cfg = &cfg

// Init initializes the engine with the given configuration.
func Init(c Config) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if len(c.CaptionLangs) == 0 {
		c.CaptionLangs = []string{"en"}
	}
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	cfg = c
	Cfg = &cfg
}
