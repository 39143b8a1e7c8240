package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/lo"

	"colosseum/agents"
	"colosseum/domain"
	"colosseum/internal"
	"colosseum/llm"
	"colosseum/runtime"
	"colosseum/runtime/workers"
	"colosseum/search"
	"colosseum/transport/console"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the session lifecycle, and
// centralizes error reporting so deferred cleanup always executes.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := validator.New().Struct(config); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Core engine
	personas := domain.DefaultPersonas()
	rooms := runtime.NewRoomRegistry(config.HistoryLimit, lo.Map(personas,
		func(p domain.Persona, _ int) string { return p.ID }))
	subs := runtime.NewSubscriberRegistry(log)
	broadcaster := runtime.NewBroadcaster(rooms, subs, config.AgentResponseMaxChars,
		time.Duration(config.RoomsUpdateThrottleMs)*time.Millisecond, log)

	index, err := search.NewIndex()
	if err != nil {
		return fmt.Errorf("search index: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()
	broadcaster.AttachIndexer(index)

	factory := llm.NewFactory(llm.FactoryConfig{
		Provider:       config.LLMProvider,
		OpenAIModel:    config.OpenAIModel,
		AnthropicModel: config.AnthropicModel,
		GeminiModel:    config.GeminiModel,
		MaxReplyChars:  config.AgentResponseMaxChars,
	}, log)
	pool := agents.NewPool(ctx, personas, factory, broadcaster, rooms, agents.Options{
		MinInterval:   time.Duration(config.AgentMinIntervalMs) * time.Millisecond,
		CooldownMax:   config.AgentCooldownMax,
		GenTimeout:    time.Duration(config.LLMTimeoutMs) * time.Millisecond,
		MaxReplyChars: config.AgentResponseMaxChars,
	}, log)
	broadcaster.Attach(pool)

	// 4. Background workers under supervision
	sup := workers.NewSupervisor(log, config.RestartInterval)
	telemetry, err := workers.NewTelemetryWorker(log, config.TelemetryInterval)
	if err != nil {
		return fmt.Errorf("telemetry worker: %w", err)
	}
	sup.Add(telemetry)

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 5. Interactive console session (the transport collaborator)
	log.Info("engine ready", slog.String("provider", config.LLMProvider),
		slog.Int("agents", len(personas)))
	session := console.New(broadcaster, rooms, index, console.Options{
		DisplayName:   config.DisplayName,
		MaxContentLen: config.MaxContentLength,
		RatePerSec:    config.InputRatePerSec,
		In:            os.Stdin,
		Out:           os.Stdout,
	}, log)
	if err := session.Run(ctx); err != nil {
		return fmt.Errorf("console session: %w", err)
	}

	// 6. Graceful shutdown
	log.Info("Shutting down gracefully...")
	stop()
	<-supDone
	return nil
}
