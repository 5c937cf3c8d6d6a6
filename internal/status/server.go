// Package status serves a read-only JSON view of the player.
package status

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/player"
	"discord-music-bot/internal/version"
)

// Source is the part of the player the endpoint reads.
type Source interface {
	NowPlaying() (music.Track, bool)
	State() player.State
	Queue() []music.Track
	Announcing() bool
	AutoPlay() bool
}

type trackView struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title"`
	RequestedBy string `json:"requested_by"`
	Duration    string `json:"duration"`
	URL         string `json:"url"`
}

func view(t music.Track) trackView {
	return trackView{
		VideoID:     t.VideoID,
		Title:       t.Title,
		RequestedBy: t.RequestedBy,
		Duration:    music.FormatDuration(t.DurationSeconds),
		URL:         t.URL(),
	}
}

// Handler builds the gin engine with /healthz, /api/nowplaying and /api/queue.
func Handler(src Source) http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "app": version.AppName})
	})

	r.GET("/api/nowplaying", func(c *gin.Context) {
		resp := gin.H{
			"state":     string(src.State()),
			"announce":  src.Announcing(),
			"auto_play": src.AutoPlay(),
			"track":     nil,
		}
		if t, ok := src.NowPlaying(); ok {
			resp["track"] = view(t)
		}
		c.JSON(http.StatusOK, resp)
	})

	r.GET("/api/queue", func(c *gin.Context) {
		items := src.Queue()
		out := make([]trackView, 0, len(items))
		for _, t := range items {
			out = append(out, view(t))
		}
		c.JSON(http.StatusOK, gin.H{"length": len(out), "items": out})
	})

	return r
}

// Run serves until ctx is cancelled.
func Run(ctx context.Context, addr string, src Source) error {
	logger := log.With().Str("component", "status").Logger()
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(src),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Shutting down status server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info().Str("addr", addr).Msg("Status server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
