package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/openboard/relay/config"
	"github.com/openboard/relay/src/bridge"
	"github.com/openboard/relay/src/canvas"
	"github.com/openboard/relay/src/hub"
	"github.com/openboard/relay/src/server"
)

func main() {
	dotenvErr := godotenv.Load()
	logger := setupLogger()
	if dotenvErr != nil {
		logger.Debug().Msg("no .env file found, using environment variables")
	}
	cfg := config.FromEnv()

	h := hub.New(logger)

	router := canvas.NewRouter(
		h,
		canvas.NewValidator(cfg.CanvasWidth, cfg.CanvasHeight),
		canvas.NewRateLimiter(cfg.EventRateWindow, cfg.EventRateLimit),
		logger,
	)
	router.Register(h)

	var b *bridge.RedisBridge
	if cfg.BridgeEnabled {
		b = bridge.NewRedisBridge(bridge.RedisConfigFromEnv(), h, logger)
		if err := b.Start(); err != nil {
			logger.Warn().Err(err).Msg("redis bridge unavailable, running standalone")
			b = nil
		} else {
			h.SetBridge(b)
		}
	}

	go h.Run()

	srv := server.New(cfg, h, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info().Msg("shutting down")
		if b != nil {
			if err := b.Stop(); err != nil {
				logger.Error().Err(err).Msg("bridge stop error")
			}
		}
		if err := srv.Shutdown(); err != nil {
			logger.Error().Err(err).Msg("shutdown error")
		}
		h.Stop()
	}()

	if err := srv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server error")
	}
}

func setupLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if parsed, err := zerolog.ParseLevel(raw); err == nil {
			level = parsed
		}
	}
	return zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
}
