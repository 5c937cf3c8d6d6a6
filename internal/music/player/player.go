// Package player is the playback state machine: one now-playing slot,
// a FIFO of pending tracks and the stop/pause/skip/auto-play lifecycle.
package player

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"discord-music-bot/internal/music"
	"discord-music-bot/internal/music/queue"
)

type State string

const (
	StateIdle    State = "Idle"
	StatePlaying State = "Playing"
	StatePaused  State = "Paused"
	StateStopped State = "Stopped"
)

func (s State) StringEmoji() string {
	m := map[State]string{
		StateIdle:    "💤",
		StatePlaying: "▶️",
		StatePaused:  "⏸",
		StateStopped: "⏹",
	}
	return m[s]
}

// EndReason says why a stream ended.
type EndReason int

const (
	EndFinished EndReason = iota
	EndInterrupted
	EndFailed
)

func (r EndReason) String() string {
	switch r {
	case EndFinished:
		return "finished"
	case EndInterrupted:
		return "interrupted"
	default:
		return "failed"
	}
}

var (
	ErrNoTrackPlaying = errors.New("no track is currently playing")
	ErrAlreadyStopped = errors.New("playback is already stopped")
	ErrAlreadyRunning = errors.New("playback is already running")
	ErrAlreadyPaused  = errors.New("playback is already paused")

	// ErrOutputUnavailable is wrapped by Output errors that say nothing
	// about the track itself. The track is kept at the front of the queue.
	ErrOutputUnavailable = errors.New("audio output is unavailable")
)

// Playback controls one running stream.
type Playback interface {
	Pause()
	Resume()
	// End stops the stream; the onEnd callback passed to Play still fires.
	End()
}

// Output starts streaming a track. onEnd must be called exactly once when
// the stream ends for any reason, possibly before Play returns.
type Output interface {
	Play(ctx context.Context, t music.Track, onEnd func(EndReason, error)) (Playback, error)
}

// Notifier mirrors player state into chat.
type Notifier interface {
	SetPresence(text string)
	Announce(t music.Track)
	Report(t music.Track, err error)
}

// Replenisher refills the queue when it runs dry and auto-play is on.
type Replenisher func(ctx context.Context)

type Options struct {
	Output    Output
	Notifier  Notifier
	Replenish Replenisher
	Announce  bool
	AutoPlay  bool
	Logger    *zerolog.Logger
}

type Player struct {
	mu sync.Mutex

	ctx   context.Context
	queue *queue.Queue

	current  *music.Track
	playback Playback
	// generation identifies the stream in the now-playing slot; end
	// callbacks carrying an older value are ignored.
	generation uint64
	starting   bool
	// a Replenisher run is in flight
	replenishing bool

	stopped    bool
	paused     bool
	autoPaused bool
	announce   bool
	autoPlay   bool

	// requests made while a stream is still opening
	pendingEnd   bool
	pendingPause bool

	output    Output
	notifier  Notifier
	replenish Replenisher
	logger    zerolog.Logger
}

// New creates a Player. ctx bounds every stream and replenishment it starts.
func New(ctx context.Context, opts Options) *Player {
	logger := log.With().Str("component", "player").Logger()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Player{
		ctx:       ctx,
		queue:     queue.New(),
		announce:  opts.Announce,
		autoPlay:  opts.AutoPlay,
		output:    opts.Output,
		notifier:  notifier,
		replenish: opts.Replenish,
		logger:    logger,
	}
}

// Enqueue inserts a track and starts playback if the player is idle.
// While auto-play filler is playing the track jumps to the front.
// It returns the track's 1-based queue position.
func (p *Player) Enqueue(t music.Track) int {
	p.mu.Lock()
	var pos int
	if p.current != nil && p.current.IsAutoPlay() {
		pos = p.queue.PushFront(t)
	} else {
		pos = p.queue.PushBack(t)
	}
	p.mu.Unlock()

	p.logger.Debug().Str("video", t.VideoID).Str("title", t.Title).Int("position", pos).
		Bool("silent", t.Silent).Msg("Track queued")

	p.advance()
	return pos
}

// Stop halts playback without auto-advancing. The queue is kept.
func (p *Player) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrAlreadyStopped
	}
	p.stopped = true
	pb := p.endLocked()
	p.mu.Unlock()

	p.logger.Info().Msg("Playback stopped")
	if pb != nil {
		pb.End()
	}
	return nil
}

// Resume clears a stop or unpauses the current stream.
func (p *Player) Resume() error {
	p.mu.Lock()
	switch {
	case p.stopped:
		p.stopped = false
		p.mu.Unlock()
		p.logger.Info().Msg("Playback resumed after stop")
		p.advance()
		return nil

	case p.paused:
		p.paused = false
		p.autoPaused = false
		pb := p.playback
		if pb == nil {
			p.pendingPause = false
		}
		title := p.current.Title
		p.mu.Unlock()

		if pb != nil {
			pb.Resume()
		}
		p.notifier.SetPresence(title)
		return nil

	default:
		p.mu.Unlock()
		return ErrAlreadyRunning
	}
}

// Pause suspends the current stream, keeping the now-playing slot.
func (p *Player) Pause() error {
	return p.pause(false)
}

func (p *Player) pause(auto bool) error {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return ErrNoTrackPlaying
	}
	if p.paused {
		p.mu.Unlock()
		return ErrAlreadyPaused
	}
	p.paused = true
	p.autoPaused = auto
	pb := p.playback
	if pb == nil {
		p.pendingPause = true
	}
	title := p.current.Title
	p.mu.Unlock()

	if pb != nil {
		pb.Pause()
	}
	p.notifier.SetPresence(StatePaused.StringEmoji() + " " + title)
	return nil
}

// Skip ends the current stream; the next queued track starts on its own.
func (p *Player) Skip() (music.Track, error) {
	p.mu.Lock()
	if p.current == nil {
		p.mu.Unlock()
		return music.Track{}, ErrNoTrackPlaying
	}
	skipped := *p.current
	pb := p.endLocked()
	p.mu.Unlock()

	if pb != nil {
		pb.End()
	}
	return skipped, nil
}

// endLocked asks the running stream to end. The caller invokes End on the
// returned playback after releasing the lock.
func (p *Player) endLocked() Playback {
	if p.current == nil {
		return nil
	}
	if p.playback == nil {
		p.pendingEnd = true
		return nil
	}
	if p.paused {
		p.paused = false
		p.autoPaused = false
	}
	return p.playback
}

// SetOccupancy reports how many members, the bot included, are in the
// voice channel. Fewer than two pauses playback; two or more resumes a
// pause that occupancy caused.
func (p *Player) SetOccupancy(n int) {
	p.mu.Lock()
	playing := p.current != nil && !p.paused
	autoPaused := p.autoPaused
	p.mu.Unlock()

	switch {
	case n < 2 && playing:
		if err := p.pause(true); err == nil {
			p.logger.Info().Int("occupancy", n).Msg("Voice channel empty, pausing")
		}
	case n >= 2 && autoPaused:
		p.mu.Lock()
		stillAuto := p.autoPaused && p.paused
		p.mu.Unlock()
		if stillAuto {
			if err := p.Resume(); err == nil {
				p.logger.Info().Int("occupancy", n).Msg("Listeners back, resuming")
			}
		}
	}
}

// advance starts the front track when nothing is playing. It is the one
// transition into Playing, used by commands and by stream end.
func (p *Player) advance() {
	for {
		p.mu.Lock()
		if p.stopped || p.current != nil || p.starting || p.queue.IsEmpty() {
			p.mu.Unlock()
			return
		}
		t, err := p.queue.PopFront()
		if err != nil {
			p.mu.Unlock()
			return
		}
		p.generation++
		gen := p.generation
		p.current = &t
		p.playback = nil
		p.paused, p.autoPaused = false, false
		p.pendingEnd, p.pendingPause = false, false
		p.starting = true
		announce := p.announce
		p.mu.Unlock()

		p.logger.Info().Str("video", t.VideoID).Str("title", t.Title).Str("requested_by", t.RequestedBy).
			Msg("Starting track")

		pb, err := p.output.Play(p.ctx, t, func(reason EndReason, err error) {
			p.onStreamEnd(gen, reason, err)
		})

		p.mu.Lock()
		p.starting = false
		if errors.Is(err, ErrOutputUnavailable) {
			if p.generation == gen && p.current != nil {
				p.current = nil
			}
			p.queue.PushFront(t)
			p.mu.Unlock()

			p.logger.Warn().Err(err).Str("video", t.VideoID).Msg("Output unavailable, keeping track queued")
			return
		}
		if err != nil {
			if p.generation == gen && p.current != nil {
				p.current = nil
			}
			p.mu.Unlock()

			p.logger.Warn().Err(err).Str("video", t.VideoID).Msg("Failed to open stream, skipping")
			if !t.Silent {
				p.notifier.Report(t, err)
			}
			continue
		}

		if p.generation != gen || p.current == nil {
			// The stream ended while Play was still returning.
			p.mu.Unlock()
			continue
		}

		p.playback = pb
		end := p.pendingEnd || p.stopped
		pause := p.pendingPause && !end
		p.pendingEnd, p.pendingPause = false, false
		p.mu.Unlock()

		switch {
		case end:
			pb.End()
		case pause:
			pb.Pause()
			p.notifier.SetPresence(StatePaused.StringEmoji() + " " + t.Title)
		default:
			p.notifier.SetPresence(t.Title)
			if announce {
				p.notifier.Announce(t)
			}
		}
		return
	}
}

func (p *Player) onStreamEnd(gen uint64, reason EndReason, err error) {
	p.mu.Lock()
	if gen != p.generation || p.current == nil {
		p.mu.Unlock()
		return
	}
	t := *p.current
	p.current = nil
	p.playback = nil
	p.paused, p.autoPaused = false, false
	starting := p.starting
	stopped := p.stopped
	empty := p.queue.IsEmpty()
	replenish := !stopped && empty && p.autoPlay && p.claimReplenishLocked()
	p.mu.Unlock()

	ev := p.logger.Info()
	if err != nil {
		ev = p.logger.Warn().Err(err)
	}
	ev.Str("video", t.VideoID).Str("reason", reason.String()).Msg("Track ended")

	if reason == EndFailed && err != nil && !t.Silent {
		p.notifier.Report(t, err)
	}
	p.notifier.SetPresence("")

	switch {
	case !stopped && !empty:
		// While Play is still returning, the running advance loop picks
		// up the next entry itself.
		if !starting {
			p.advance()
		}
	case replenish:
		p.logger.Info().Msg("Queue empty, replenishing from auto-play list")
		go p.runReplenish()
	}
}

// claimReplenishLocked reserves the single replenishment slot. Callers hold
// p.mu and start runReplenish after unlocking when it returns true.
func (p *Player) claimReplenishLocked() bool {
	if p.replenish == nil || p.replenishing {
		return false
	}
	p.replenishing = true
	return true
}

func (p *Player) runReplenish() {
	defer func() {
		p.mu.Lock()
		p.replenishing = false
		p.mu.Unlock()
	}()
	p.replenish(p.ctx)
}

// OutputReady retries the queue once the output can play again.
func (p *Player) OutputReady() {
	p.advance()
}

// NowPlaying returns the track in the now-playing slot.
func (p *Player) NowPlaying() (music.Track, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return music.Track{}, false
	}
	return *p.current, true
}

// State derives the state machine's current state from the flags.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch {
	case p.stopped:
		return StateStopped
	case p.current == nil:
		return StateIdle
	case p.paused:
		return StatePaused
	default:
		return StatePlaying
	}
}

// Queue returns a copy of the pending tracks.
func (p *Player) Queue() []music.Track {
	return p.queue.Items()
}

func (p *Player) QueueLen() int {
	return p.queue.Len()
}

// Clear empties the queue and returns how many tracks were dropped.
func (p *Player) Clear() int {
	return p.queue.Clear()
}

func (p *Player) RemoveAt(oneBased int) (music.Track, error) {
	return p.queue.RemoveAt(oneBased)
}

func (p *Player) RemoveLast() (music.Track, error) {
	return p.queue.RemoveLast()
}

func (p *Player) SetAnnounce(on bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.announce = on
}

func (p *Player) Announcing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.announce
}

// SetAutoPlay toggles auto-play. Turning it on while idle with an empty
// queue replenishes right away.
func (p *Player) SetAutoPlay(on bool) {
	p.mu.Lock()
	p.autoPlay = on
	kick := on && !p.stopped && p.current == nil && !p.starting && p.queue.IsEmpty() && p.claimReplenishLocked()
	p.mu.Unlock()

	if kick {
		go p.runReplenish()
	}
}

func (p *Player) AutoPlay() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.autoPlay
}

type nopNotifier struct{}

func (nopNotifier) SetPresence(string)        {}
func (nopNotifier) Announce(music.Track)      {}
func (nopNotifier) Report(music.Track, error) {}
