// /internal/music/stream/discord.go
package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bwmarrin/discordgo"
	"layeh.com/gopus"

	"discord-music-bot/internal/music/parsers/ffmpeg"
)

// StreamToDiscord encodes PCM frames to Opus and sends them to the voice
// connection until the stream ends or ctrl is stopped. A clean end of
// input and a stop both return nil.
func StreamToDiscord(pcm io.Reader, ctrl *Control, vc *discordgo.VoiceConnection) error {
	encoder, err := gopus.NewEncoder(ffmpeg.SampleRate, ffmpeg.Channels, gopus.Audio)
	if err != nil {
		return fmt.Errorf("encoder error: %w", err)
	}

	if err := vc.Speaking(true); err != nil {
		return fmt.Errorf("speaking error: %w", err)
	}
	defer vc.Speaking(false)

	pcmBuf := make([]byte, ffmpeg.FrameSize*ffmpeg.Channels*2)
	intBuf := make([]int16, ffmpeg.FrameSize*ffmpeg.Channels)

	for {
		if !ctrl.Wait() {
			return nil
		}

		if _, err := io.ReadFull(pcm, pcmBuf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			select {
			case <-ctrl.Done():
				return nil
			default:
			}
			return fmt.Errorf("read error: %w", err)
		}

		for i := range intBuf {
			intBuf[i] = int16(binary.LittleEndian.Uint16(pcmBuf[i*2 : i*2+2]))
		}

		opus, err := encoder.Encode(intBuf, ffmpeg.FrameSize, len(pcmBuf))
		if err != nil {
			return fmt.Errorf("encode error: %w", err)
		}

		select {
		case vc.OpusSend <- opus:
		case <-ctrl.Done():
			return nil
		}
	}
}
