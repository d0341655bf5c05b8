// Command guildxp is the main entrypoint for the community XP bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Opens the JSON snapshot store and restores tracked activity.
//   - Connects to Discord and registers message, voice, and member handlers.
//   - Starts background jobs: the periodic voice XP flush and the Twitch
//     live-stream monitor with Discord go-live announcements.
//   - Exposes a minimal HTTP server with /healthz, /status, /metrics, and
//     an authenticated /admin/poll endpoint.
//
// Shutdown is graceful on SIGINT/SIGTERM.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/onnwee/guildxp/activity"
	"github.com/onnwee/guildxp/config"
	"github.com/onnwee/guildxp/discord"
	"github.com/onnwee/guildxp/monitor"
	"github.com/onnwee/guildxp/server"
	"github.com/onnwee/guildxp/store"
	"github.com/onnwee/guildxp/telemetry"
	"github.com/onnwee/guildxp/twitchapi"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load()

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateDiscordReady(); err != nil {
		slog.Error("discord configuration incomplete", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdown, err := telemetry.InitTracing("guildxp", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer shutdown()

	// Snapshot store + activity tracking
	st, err := store.New(cfg.DataDir)
	if err != nil {
		slog.Error("failed to open snapshot store", slog.Any("err", err))
		os.Exit(1)
	}
	svc := activity.NewService(st)

	// Discord
	bot, err := discord.New(cfg, svc)
	if err != nil {
		slog.Error("failed to create discord session", slog.Any("err", err))
		os.Exit(1)
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stream monitor runs only when Twitch credentials are configured.
	var mon *monitor.Monitor
	if err := cfg.ValidateStreamReady(); err != nil {
		slog.Info("stream monitor disabled", slog.Any("reason", err))
	} else {
		// Best-effort token warmup so a bad secret surfaces at startup.
		ts := &twitchapi.TokenSource{ClientID: cfg.TwitchClientID, ClientSecret: cfg.TwitchClientSecret}
		warmCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
		if tok, err := ts.Get(warmCtx); err != nil {
			slog.Warn("twitch app token fetch failed", slog.Any("err", err))
		} else if len(tok) > 6 {
			masked := "***" + tok[len(tok)-6:]
			slog.Info("twitch app token acquired", slog.String("tail", masked))
		}
		cancel()

		helix := &twitchapi.HelixClient{AppTokenSource: ts, ClientID: cfg.TwitchClientID}
		mon = monitor.New(helix, st, bot, cfg.TwitchChannel)
		bot.SetMonitor(mon)
		go mon.Start(ctx, cfg.StreamInitialDelay, cfg.StreamPollInterval)
	}

	if err := bot.Start(); err != nil {
		slog.Error("discord connection failed", slog.Any("err", err))
		os.Exit(1)
	}
	defer func() {
		if err := bot.Stop(); err != nil {
			slog.Error("discord session close error", slog.Any("err", err))
		}
	}()

	// Periodic voice XP flush
	go svc.StartFlushJob(ctx, cfg.VoiceFlushInterval)

	// HTTP server (health/status/metrics/admin)
	handlers := server.NewHandlers(svc, mon, st)
	go func() {
		if err := server.Start(ctx, handlers, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal
	<-ctx.Done()
	slog.Info("shutting down")
}
