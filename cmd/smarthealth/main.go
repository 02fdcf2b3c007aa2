package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"smarthealth/internal/agent"
	"smarthealth/internal/checker"
	"smarthealth/internal/history"
	"smarthealth/internal/platform/telegram"
	"smarthealth/internal/report"
)

func main() {
	_ = godotenv.Load()

	// Keep the terminal quiet by default; LOG_LEVEL=debug for tracing.
	level := zerolog.WarnLevel
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if parsed, err := zerolog.ParseLevel(v); err == nil {
			level = parsed
		}
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		Level(level).With().Timestamp().Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		log.Fatal().Msg("GEMINI_API_KEY environment variable not set")
	}
	gateway, err := agent.NewGemini(ctx, apiKey, os.Getenv("GEMINI_MODEL"))
	if err != nil {
		log.Fatal().Err(err).Msg("could not create reasoning gateway")
	}

	patientHistory, err := history.NewSource(os.Getenv("PATIENT_HISTORY_FILE"))
	if err != nil {
		log.Fatal().Err(err).Msg("could not load patient history")
	}

	exportDir := os.Getenv("EXPORT_DIR")
	if exportDir == "" {
		exportDir = "."
	}

	var sink report.ShareSink
	chatID, _ := strconv.ParseInt(os.Getenv("SHARE_CHAT_ID"), 10, 64)
	tg := telegram.NewClient(os.Getenv("TELEGRAM_BOT_TOKEN"), chatID)
	if tg.Configured() {
		sink = tg
	} else {
		log.Debug().Msg("share sink not configured; sharing will be a no-op")
	}
	reports := report.NewService(sink, exportDir)

	var speech agent.SpeechClient
	if sttURL := os.Getenv("STT_SERVICE_URL"); sttURL != "" {
		speech = agent.NewWhisperClient(sttURL)
	}

	store := checker.NewStore(gateway)
	ui := newUI(store, patientHistory, reports, speech, os.Stdin, os.Stdout)
	if err := ui.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("client exited")
	}
}
