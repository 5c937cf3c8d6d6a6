// Package playback registers the chat verbs of the music bot.
package playback

import (
	"strings"

	"discord-music-bot/internal/command"
	"discord-music-bot/internal/middleware"
	"discord-music-bot/pkg/cmd"
)

// Options wires the gate and logging middlewares.
type Options struct {
	Admins  middleware.AdminChecker
	Audit   middleware.Auditor
	History middleware.History
}

// Register adds every verb to reg, each wrapped in the gates and the
// command logger.
func Register(reg *cmd.Registry, opts Options) {
	mws := append(middleware.Gates(opts.Admins, opts.Audit), middleware.WithCommandLogger(opts.History))
	for _, d := range Descriptors() {
		reg.Register(cmd.Apply(d, mws...))
	}
}

// Descriptors returns the static verb set.
func Descriptors() []*command.Descriptor {
	return []*command.Descriptor{
		{Verb: "stop", Help: "Stops playlist (will also skip current song!)", Handler: stop},
		{Verb: "resume", Help: "Resumes playlist", Handler: resume},
		{Verb: "request", Params: []string{"video URL, ID or alias"}, Help: "Adds the requested video to the playlist queue", Handler: request},
		{Verb: "search", Params: []string{"query"}, Help: "Searches for a video on YouTube and adds it to the queue", Handler: search},
		{Verb: "np", Help: "Displays the current song", Handler: nowPlaying},
		{Verb: "setnp", Params: []string{"on/off"}, Help: "Sets whether the bot will announce the current song or not", Admin: true, Handler: setNowPlaying},
		{Verb: "commands", Help: "Displays this message, duh!", Handler: listCommands},
		{Verb: "skip", Help: "Skips the current song", Handler: skip},
		{Verb: "queue", Help: "Displays the queue", Handler: showQueue},
		{Verb: "clearqueue", Help: "Removes all songs from the queue", Admin: true, Handler: clearQueue},
		{Verb: "remove", Params: []string{"request index or 'last'"}, Help: "Removes a song from the queue", Admin: true, Handler: remove},
		{Verb: "aliases", Help: "Displays the stored aliases", Handler: listAliases},
		{Verb: "setalias", Params: []string{"alias", "video URL or ID"}, Help: "Sets an alias, overriding the previous one if it already exists", Admin: true, Handler: setAlias},
		{Verb: "deletealias", Params: []string{"alias"}, Help: "Deletes an existing alias", Admin: true, Handler: deleteAlias},
		{Verb: "setavatar", Params: []string{"image URL or alias"}, Help: "Sets the bot avatar", Admin: true, Handler: setAvatar},
		{Verb: "setusername", Params: []string{"username or alias"}, Help: "Sets the bot username", Admin: true, Handler: setUsername},
		{Verb: "setautoplay", Params: []string{"on/off"}, Help: "Sets whether the bot plays from the auto-play list when the queue runs dry", Admin: true, Handler: setAutoPlay},
		{Verb: "saveplaylist", Params: []string{"video URL, ID or alias"}, Help: "Saves a video or playlist to the auto-play list", Handler: savePlaylist},
		{Verb: "joinme", Help: "Moves the bot into your voice channel", Handler: joinMe},
		{Verb: "purge", Help: "Deletes recent messages in this channel", Admin: true, Handler: purge},
		{Verb: "pin", Params: []string{"message ID"}, Help: "Pins a message", Admin: true, Handler: pin},
		{Verb: "unpin", Params: []string{"message ID"}, Help: "Unpins a message", Admin: true, Handler: unpin},
		{Verb: "home", Help: "Moves the bot back to its voice channel", Admin: true, Handler: home},
		{Verb: "pause", Help: "Pauses the current song", Admin: true, Handler: pause},
	}
}

// onOff parses an on/off switch, ignoring case.
func onOff(s string) (value, ok bool) {
	switch strings.ToLower(s) {
	case "on":
		return true, true
	case "off":
		return false, true
	}
	return false, false
}
