// go_notes: YouTube lecture to study notes.
//
// Pulls a video's caption transcript, asks a language model for structured
// notes and placement aptitude questions on one of four subjects, and exports
// both to a PDF. Served as an HTTP MCP server (study_notes, video_transcript,
// list_subjects) plus a small web form on WEB_PORT.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notes/internal/engine"
	"github.com/anatolykoptev/go_notes/internal/engine/notes"
	"github.com/anatolykoptev/go_notes/internal/engine/prompts"
	"github.com/anatolykoptev/go_notes/internal/notesserver"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
	webPort = env.Str("WEB_PORT", "8894")
)

func main() {
	initLogger()
	if err := initEngine(); err != nil {
		slog.Error("init failed", slog.Any("error", err))
		os.Exit(1)
	}

	set, err := prompts.Load(engine.Cfg.PromptsFile)
	if err != nil {
		slog.Error("prompts load failed", slog.Any("error", err))
		os.Exit(1)
	}

	pipeline := notes.NewPipeline(
		notes.NewExtractor(),
		notes.NewGenerator(engine.DefaultCompleter(), set),
		notes.NewExporter(engine.Cfg.OutputDir),
	)

	slog.Info("starting go_notes",
		slog.String("mcp_port", mcpPort),
		slog.String("web_port", webPort),
		slog.String("model", engine.Cfg.LLMModel),
		slog.String("output_dir", engine.Cfg.OutputDir),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	web := &http.Server{
		Addr:              ":" + webPort,
		Handler:           notesserver.NewWeb(pipeline).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := web.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("web server failed", slog.Any("error", err))
			stop()
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := web.Shutdown(shutdownCtx); err != nil {
			slog.Warn("web shutdown", slog.Any("error", err))
		}
	}()

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_notes",
		Version: version,
	}, nil)

	notesserver.RegisterTools(server, pipeline)
	slog.Info("tools registered", slog.Int("count", notesserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_notes",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func initLogger() {
	var level slog.Level
	if err := level.UnmarshalText([]byte(env.Str("LOG_LEVEL", "info"))); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(env.Str("LOG_FORMAT", "text"), "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func initEngine() error {
	apiKey := env.Str("LLM_API_KEY", "")
	if apiKey == "" {
		apiKey = env.Str("GOOGLE_API_KEY", "")
	}
	fetchTimeout := env.Duration("FETCH_TIMEOUT", 15*time.Second)

	c := engine.Config{
		LLMAPIKey:          apiKey,
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", "https://generativelanguage.googleapis.com/v1beta/openai"),
		LLMModel:           env.Str("LLM_MODEL", "gemini-2.5-flash"),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", 0.3),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", 8192),
		LLMRatePerMin:      env.Int("LLM_RATE_PER_MIN", 0),
		FetchTimeout:       fetchTimeout,
		MaxTranscriptChars: env.Int("MAX_TRANSCRIPT_CHARS", 0),
		CaptionLangs:       env.List("CAPTION_LANGS", "en"),
		OutputDir:          env.Str("OUTPUT_DIR", "."),
		PromptsFile:        env.Str("PROMPTS_FILE", ""),
		HTTPClient: &http.Client{
			Timeout: fetchTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
	if c.LLMAPIKey == "" {
		return errors.New("LLM_API_KEY (or GOOGLE_API_KEY) is not set")
	}
	if err := os.MkdirAll(c.OutputDir, 0o755); err != nil {
		return err
	}

	c.LLMClient = engine.NewLLMCompleter(c)
	engine.Init(c)
	return nil
}
