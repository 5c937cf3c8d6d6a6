package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"discord-music-bot/internal/command/playback"
	"discord-music-bot/internal/docs"
	"discord-music-bot/internal/logging"
	v "discord-music-bot/internal/version"
	"discord-music-bot/pkg/cmd"
)

func main() {
	var tmplPath, outPath string

	root := &cobra.Command{
		Use:   "build-readme",
		Short: "Regenerate README.md from the registered chat commands",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			registry := cmd.NewRegistry()
			playback.Register(registry, playback.Options{})

			if err := docs.UpdateReadme(registry, v.AppPrefix, tmplPath, outPath); err != nil {
				return err
			}
			log.Info().Str("out", outPath).Msg("README updated")
			return nil
		},
	}
	root.Flags().StringVar(&tmplPath, "template", "README.md.tmpl", "README template")
	root.Flags().StringVar(&outPath, "out", "README.md", "generated README")

	logging.Setup(logging.Options{Level: "info"})
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
