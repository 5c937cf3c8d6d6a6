package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"discord-music-bot/internal/config"
	"discord-music-bot/internal/logging"
	"discord-music-bot/internal/music/autoplay"
	"discord-music-bot/internal/storage"
	v "discord-music-bot/internal/version"
)

func main() {
	if err := newRoot().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRoot() *cobra.Command {
	var (
		aliasesPath  string
		historyPath  string
		autoPlayPath string
	)

	root := &cobra.Command{
		Use:           "jukebox-cli",
		Short:         v.AppName + " offline maintenance",
		Long:          v.AppDescription + "\n\nEdits the bot's alias, history and auto-play files while it is offline.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.Setup(logging.Options{Level: "warn"})

			// Flags win; otherwise fall back to the bot's environment.
			cfg, err := config.Load()
			if err != nil {
				return nil
			}
			if !cmd.Flags().Changed("aliases") {
				aliasesPath = cfg.AliasesPath
			}
			if !cmd.Flags().Changed("history") {
				historyPath = cfg.HistoryPath
			}
			if !cmd.Flags().Changed("autoplay") {
				autoPlayPath = cfg.AutoPlayPath
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&aliasesPath, "aliases", "aliases.json", "alias file")
	root.PersistentFlags().StringVar(&historyPath, "history", "history.json", "command history file")
	root.PersistentFlags().StringVar(&autoPlayPath, "autoplay", "autoplaylist.txt", "auto-play list file")

	openStore := func() (*storage.Storage, error) {
		return storage.New(aliasesPath, historyPath)
	}

	root.AddCommand(
		newAliasesCmd(openStore),
		newAutoPlayCmd(func() *autoplay.List { return autoplay.NewList(autoPlayPath) }),
		newHistoryCmd(openStore),
	)
	return root
}

func newAliasesCmd(open func() (*storage.Storage, error)) *cobra.Command {
	aliases := &cobra.Command{Use: "aliases", Short: "Manage stored aliases"}

	aliases.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List aliases",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()
				printAliases(cmd.OutOrStdout(), store.Aliases())
				return nil
			},
		},
		&cobra.Command{
			Use:   "set <alias> <target>",
			Short: "Set or overwrite an alias",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()
				if err := store.SetAlias(args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", args[0], args[1])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <alias>",
			Short: "Delete an alias",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := open()
				if err != nil {
					return err
				}
				defer store.Close()
				return store.DeleteAlias(args[0])
			},
		},
	)
	return aliases
}

func printAliases(w io.Writer, table map[string]string) {
	names := lo.Keys(table)
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "%s -> %s\n", name, table[name])
	}
}

func newAutoPlayCmd(list func() *autoplay.List) *cobra.Command {
	ap := &cobra.Command{Use: "autoplay", Short: "Manage the auto-play list"}

	ap.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print the auto-play entries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				entries, err := list().Entries()
				if err != nil {
					return err
				}
				for i, e := range entries {
					fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, e)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <video or playlist>",
			Short: "Append an entry",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return list().Append(args[0])
			},
		},
	)
	return ap
}

func newHistoryCmd(open func() (*storage.Storage, error)) *cobra.Command {
	var deniedOnly bool

	history := &cobra.Command{
		Use:   "history",
		Short: "Print the recorded command history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open()
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.FetchCommandHistory()
			if err != nil {
				return err
			}
			if deniedOnly {
				records = lo.Filter(records, func(r storage.CommandHistoryRecord, _ int) bool {
					return r.Denied
				})
			}
			for _, r := range records {
				mark := ""
				if r.Denied {
					mark = " [denied: " + r.Reason + "]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s) %s %v%s\n",
					r.Datetime.Format("2006-01-02 15:04:05"), r.Username, r.UserID, r.Command, r.Params, mark)
			}
			return nil
		},
	}
	history.Flags().BoolVar(&deniedOnly, "denied", false, "only show refused admin commands")
	return history
}
