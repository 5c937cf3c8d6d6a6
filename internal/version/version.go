package version

const (
	AppName        = "Jukebox"
	AppDescription = "Chat-driven music bot that streams YouTube audio into a voice channel."
	AppPrefix      = "!"
)
