// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/command/playback"
	"discord-music-bot/internal/config"
	"discord-music-bot/internal/discord"
	"discord-music-bot/internal/logging"
	"discord-music-bot/internal/middleware"
	"discord-music-bot/internal/music/autoplay"
	"discord-music-bot/internal/music/catalog"
	"discord-music-bot/internal/music/parsers/kkdai"
	"discord-music-bot/internal/music/parsers/ytdlp"
	"discord-music-bot/internal/music/player"
	"discord-music-bot/internal/music/sources/youtube"
	"discord-music-bot/internal/music/stream"
	"discord-music-bot/internal/status"
	"discord-music-bot/internal/storage"
	v "discord-music-bot/internal/version"
	"discord-music-bot/pkg/cmd"
	"discord-music-bot/pkg/jobmgr"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	log.Info().Msgf("Starting %v bot...", v.AppName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.AliasesPath, cfg.HistoryPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage")
	}
	defer store.Close()

	yt := youtube.New(youtube.Options{
		APIKey: cfg.YouTubeAPIKey,
		Proxy:  cfg.YouTubeProxy,
		RPS:    cfg.YouTubeRPS,
	})
	parsers := stream.NewRegistry(
		kkdai.NewLink(yt.Client()),
		kkdai.NewPipe(yt.Client()),
		ytdlp.NewLink(cfg.YouTubeProxy),
		ytdlp.NewPipe(cfg.YouTubeProxy),
	)

	bot, err := discord.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}

	jobsLogger := logging.Component("jobs")
	jobs := jobmgr.NewManager(ctx, func(msg string) {
		jobsLogger.Debug().Msg(msg)
	})

	var replenisher *autoplay.Replenisher
	p := player.New(ctx, player.Options{
		Output:   discord.NewVoiceOutput(bot, parsers.Select(cfg.StreamParsers)),
		Notifier: bot,
		Replenish: func(ctx context.Context) {
			replenisher.Run(ctx)
		},
		Announce: cfg.AnnounceNP,
		AutoPlay: cfg.AutoPlay,
	})

	cat := catalog.New(yt, store, p, jobs)
	list := autoplay.NewList(cfg.AutoPlayPath)
	replenisher = autoplay.NewReplenisher(list, cat, store)

	registry := cmd.NewRegistry()
	playback.Register(registry, playback.Options{
		Admins:  cfg,
		Audit:   middleware.NewHistoryAuditor(store),
		History: store,
	})

	deps := &command.Deps{
		Player:     p,
		Catalog:    cat,
		Aliases:    store,
		AutoPlay:   list,
		Transport:  bot,
		Registry:   registry,
		Prefix:     cfg.CommandPrefix,
		PurgeLimit: cfg.PurgeLimit,
	}
	bot.Attach(command.NewDispatcher(deps), p)

	if cfg.StatusAddr != "" {
		go func() {
			if err := status.Run(ctx, cfg.StatusAddr, p); err != nil {
				log.Error().Err(err).Msg("Status server exited")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("Received signal, shutting down")
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("Discord bot error")
		}
	}

	cancel()
	for range errCh {
	}
	jobs.StopAll()
	jobs.Wait()
	log.Info().Msg("Discord bot exited cleanly")
}
