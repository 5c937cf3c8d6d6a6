package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"discord-music-bot/internal/music"
)

type fakePlayback struct {
	track  music.Track
	onEnd  func(EndReason, error)
	once   sync.Once
	mu     sync.Mutex
	paused bool
	ended  bool
}

func (f *fakePlayback) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = true
}

func (f *fakePlayback) Resume() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paused = false
}

func (f *fakePlayback) End() {
	f.finish(EndInterrupted, nil)
}

func (f *fakePlayback) finish(reason EndReason, err error) {
	f.once.Do(func() {
		f.mu.Lock()
		f.ended = true
		f.mu.Unlock()
		f.onEnd(reason, err)
	})
}

func (f *fakePlayback) isPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

type fakeOutput struct {
	mu    sync.Mutex
	fail  map[string]error
	down  error
	plays []*fakePlayback
	// onPlay runs after a stream starts, before Play returns.
	onPlay func()
}

func (o *fakeOutput) Play(ctx context.Context, t music.Track, onEnd func(EndReason, error)) (Playback, error) {
	o.mu.Lock()
	if o.down != nil {
		err := o.down
		o.mu.Unlock()
		return nil, err
	}
	if err := o.fail[t.VideoID]; err != nil {
		o.mu.Unlock()
		return nil, err
	}
	pb := &fakePlayback{track: t, onEnd: onEnd}
	o.plays = append(o.plays, pb)
	hook := o.onPlay
	o.mu.Unlock()

	if hook != nil {
		hook()
	}
	return pb, nil
}

func (o *fakeOutput) setDown(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.down = err
}

func (o *fakeOutput) last() *fakePlayback {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.plays) == 0 {
		return nil
	}
	return o.plays[len(o.plays)-1]
}

func (o *fakeOutput) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.plays)
}

type fakeNotifier struct {
	mu        sync.Mutex
	presence  []string
	announced []string
	reported  []string
}

func (n *fakeNotifier) SetPresence(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.presence = append(n.presence, text)
}

func (n *fakeNotifier) Announce(t music.Track) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.announced = append(n.announced, t.Title)
}

func (n *fakeNotifier) Report(t music.Track, err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reported = append(n.reported, t.Title)
}

func (n *fakeNotifier) lastPresence() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.presence) == 0 {
		return ""
	}
	return n.presence[len(n.presence)-1]
}

func track(title, requester string) music.Track {
	return music.Track{VideoID: title + "-id", Title: title, RequestedBy: requester}
}

func newTestPlayer(t *testing.T, opts Options) (*Player, *fakeOutput, *fakeNotifier) {
	t.Helper()
	out := &fakeOutput{fail: map[string]error{}}
	n := &fakeNotifier{}
	opts.Output = out
	opts.Notifier = n
	return New(context.Background(), opts), out, n
}

func TestEnqueueStartsPlaybackWhenIdle(t *testing.T) {
	p, out, n := newTestPlayer(t, Options{Announce: true})

	p.Enqueue(track("a", "alice"))

	if out.count() != 1 {
		t.Fatalf("expected one stream, got %d", out.count())
	}
	if np, ok := p.NowPlaying(); !ok || np.Title != "a" {
		t.Fatalf("expected a now playing, got %+v (%v)", np, ok)
	}
	if p.QueueLen() != 0 {
		t.Fatalf("expected empty queue, got %d", p.QueueLen())
	}
	if n.lastPresence() != "a" || len(n.announced) != 1 {
		t.Fatalf("expected presence and announcement, got %v / %v", n.presence, n.announced)
	}
	if p.State() != StatePlaying {
		t.Fatalf("expected Playing, got %s", p.State())
	}
}

func TestAnnounceFlagSuppressesAnnouncement(t *testing.T) {
	p, _, n := newTestPlayer(t, Options{Announce: false})
	p.Enqueue(track("a", "alice"))
	if len(n.announced) != 0 {
		t.Fatalf("expected no announcement, got %v", n.announced)
	}
}

func TestEnqueuePrependsOverAutoPlayFiller(t *testing.T) {
	p, _, _ := newTestPlayer(t, Options{})

	p.Enqueue(track("filler", music.AutoPlayRequester))
	p.Enqueue(track("f2", music.AutoPlayRequester))
	p.Enqueue(track("f3", music.AutoPlayRequester))

	pos := p.Enqueue(track("real", "bob"))
	if pos != 1 {
		t.Fatalf("expected position 1 over filler, got %d", pos)
	}
	if q := p.Queue(); q[0].Title != "real" {
		t.Fatalf("expected real at front, got %v", q)
	}
}

func TestEnqueueAppendsUnderUserTrack(t *testing.T) {
	p, _, _ := newTestPlayer(t, Options{})

	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))
	pos := p.Enqueue(track("c", "bob"))

	if pos != 2 {
		t.Fatalf("expected position 2, got %d", pos)
	}
	if q := p.Queue(); q[len(q)-1].Title != "c" {
		t.Fatalf("expected c at end, got %v", q)
	}
}

func TestStreamEndWhileStoppedDoesNotAdvance(t *testing.T) {
	p, out, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))

	if err := p.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if _, ok := p.NowPlaying(); ok {
		t.Fatalf("expected empty now-playing slot")
	}
	if p.QueueLen() != 1 || out.count() != 1 {
		t.Fatalf("expected b to stay queued, len=%d plays=%d", p.QueueLen(), out.count())
	}
	if p.State() != StateStopped {
		t.Fatalf("expected Stopped, got %s", p.State())
	}
	if err := p.Stop(); !errors.Is(err, ErrAlreadyStopped) {
		t.Fatalf("expected ErrAlreadyStopped, got %v", err)
	}
}

func TestStreamEndAdvancesToNext(t *testing.T) {
	p, out, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))
	p.Enqueue(track("c", "alice"))

	before := p.QueueLen()
	out.last().finish(EndFinished, nil)

	if np, _ := p.NowPlaying(); np.Title != "b" {
		t.Fatalf("expected b now playing, got %q", np.Title)
	}
	if p.QueueLen() != before-1 {
		t.Fatalf("expected queue to shrink by one, %d -> %d", before, p.QueueLen())
	}
}

func TestStreamEndWithEmptyQueueGoesIdle(t *testing.T) {
	p, out, n := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))

	out.last().finish(EndFinished, nil)

	if p.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", p.State())
	}
	if n.lastPresence() != "" {
		t.Fatalf("expected presence cleared, got %q", n.lastPresence())
	}
}

func TestResumeAfterStopStartsQueue(t *testing.T) {
	p, out, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))
	_ = p.Stop()

	if err := p.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if np, _ := p.NowPlaying(); np.Title != "b" {
		t.Fatalf("expected b playing after resume, got %q", np.Title)
	}
	if out.count() != 2 {
		t.Fatalf("expected second stream, got %d", out.count())
	}
	if err := p.Resume(); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
}

func TestResumeAfterStopWithEmptyQueueStaysIdle(t *testing.T) {
	p, _, _ := newTestPlayer(t, Options{})
	_ = p.Stop()
	if err := p.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if p.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", p.State())
	}
}

func TestPauseAndResume(t *testing.T) {
	p, out, n := newTestPlayer(t, Options{})

	if err := p.Pause(); !errors.Is(err, ErrNoTrackPlaying) {
		t.Fatalf("expected ErrNoTrackPlaying, got %v", err)
	}

	p.Enqueue(track("a", "alice"))
	if err := p.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !out.last().isPaused() || p.State() != StatePaused {
		t.Fatalf("expected paused stream, state %s", p.State())
	}
	if n.lastPresence() != "⏸ a" {
		t.Fatalf("expected paused presence, got %q", n.lastPresence())
	}
	if err := p.Pause(); !errors.Is(err, ErrAlreadyPaused) {
		t.Fatalf("expected ErrAlreadyPaused, got %v", err)
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if out.last().isPaused() || p.State() != StatePlaying {
		t.Fatalf("expected playing stream, state %s", p.State())
	}
	if n.lastPresence() != "a" {
		t.Fatalf("expected presence restored, got %q", n.lastPresence())
	}
}

func TestSkipAdvances(t *testing.T) {
	p, _, _ := newTestPlayer(t, Options{})

	if _, err := p.Skip(); !errors.Is(err, ErrNoTrackPlaying) {
		t.Fatalf("expected ErrNoTrackPlaying, got %v", err)
	}

	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))

	skipped, err := p.Skip()
	if err != nil || skipped.Title != "a" {
		t.Fatalf("expected to skip a, got %q (%v)", skipped.Title, err)
	}
	if np, _ := p.NowPlaying(); np.Title != "b" {
		t.Fatalf("expected b after skip, got %q", np.Title)
	}
}

func TestSkipWhilePausedAdvances(t *testing.T) {
	p, _, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))
	_ = p.Pause()

	if _, err := p.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if p.State() != StatePlaying {
		t.Fatalf("expected Playing after skip, got %s", p.State())
	}
}

func TestOpenFailureIsReportedAndSkipped(t *testing.T) {
	p, out, n := newTestPlayer(t, Options{})
	out.fail["bad-id"] = errors.New("unplayable")

	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("bad", "alice"))
	p.Enqueue(track("c", "alice"))

	out.last().finish(EndFinished, nil)

	if np, _ := p.NowPlaying(); np.Title != "c" {
		t.Fatalf("expected c after failed b, got %q", np.Title)
	}
	if len(n.reported) != 1 || n.reported[0] != "bad" {
		t.Fatalf("expected one report for bad, got %v", n.reported)
	}
}

func TestSilentOpenFailureIsNotReported(t *testing.T) {
	p, out, n := newTestPlayer(t, Options{})
	out.fail["bad-id"] = errors.New("unplayable")

	muted := track("bad", music.AutoPlayRequester)
	muted.Silent = true
	p.Enqueue(muted)

	if len(n.reported) != 0 {
		t.Fatalf("expected silent failure, got %v", n.reported)
	}
	if p.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", p.State())
	}
}

func TestStaleEndCallbackIsIgnored(t *testing.T) {
	p, out, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))
	p.Enqueue(track("c", "alice"))

	first := out.last()
	first.finish(EndFinished, nil)

	// A late duplicate from the first stream must not end b.
	first.onEnd(EndFinished, nil)

	if np, _ := p.NowPlaying(); np.Title != "b" {
		t.Fatalf("expected b still playing, got %q", np.Title)
	}
	if p.QueueLen() != 1 {
		t.Fatalf("expected c still queued, got %d", p.QueueLen())
	}
}

func TestOccupancyPausesAndResumes(t *testing.T) {
	p, out, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))

	p.SetOccupancy(1)
	if p.State() != StatePaused || !out.last().isPaused() {
		t.Fatalf("expected auto-pause, state %s", p.State())
	}

	p.SetOccupancy(2)
	if p.State() != StatePlaying || out.last().isPaused() {
		t.Fatalf("expected auto-resume, state %s", p.State())
	}
}

func TestOccupancyDoesNotResumeManualPause(t *testing.T) {
	p, _, _ := newTestPlayer(t, Options{})
	p.Enqueue(track("a", "alice"))
	_ = p.Pause()

	p.SetOccupancy(1)
	p.SetOccupancy(3)

	if p.State() != StatePaused {
		t.Fatalf("expected manual pause to hold, got %s", p.State())
	}
}

func TestAutoPlayReplenishesWhenQueueRunsDry(t *testing.T) {
	called := make(chan struct{}, 1)
	replenish := func(ctx context.Context) { called <- struct{}{} }

	p, out, _ := newTestPlayer(t, Options{AutoPlay: true, Replenish: replenish})
	p.Enqueue(track("a", "alice"))
	out.last().finish(EndFinished, nil)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected replenishment")
	}
}

func TestStoppedPlayerDoesNotReplenish(t *testing.T) {
	called := make(chan struct{}, 1)
	replenish := func(ctx context.Context) { called <- struct{}{} }

	p, _, _ := newTestPlayer(t, Options{AutoPlay: true, Replenish: replenish})
	p.Enqueue(track("a", "alice"))
	_ = p.Stop()

	select {
	case <-called:
		t.Fatalf("expected no replenishment while stopped")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSetAutoPlayKicksIdlePlayer(t *testing.T) {
	called := make(chan struct{}, 1)
	replenish := func(ctx context.Context) { called <- struct{}{} }

	p, _, _ := newTestPlayer(t, Options{Replenish: replenish})
	p.SetAutoPlay(true)

	select {
	case <-called:
	case <-time.After(time.Second):
		t.Fatalf("expected replenishment on enable")
	}
	if !p.AutoPlay() {
		t.Fatalf("expected auto-play on")
	}
}

func TestUnavailableOutputKeepsQueue(t *testing.T) {
	p, out, n := newTestPlayer(t, Options{})
	out.setDown(fmt.Errorf("not connected to a voice channel: %w", ErrOutputUnavailable))

	_ = p.Stop()
	p.Enqueue(track("a", "alice"))
	p.Enqueue(track("b", "alice"))
	p.Enqueue(track("c", "alice"))
	if err := p.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}

	if p.QueueLen() != 3 {
		t.Fatalf("expected all 3 tracks kept, got %d", p.QueueLen())
	}
	if q := p.Queue(); q[0].Title != "a" {
		t.Fatalf("expected a at the front, got %q", q[0].Title)
	}
	if len(n.reported) != 0 {
		t.Fatalf("expected no reports, got %v", n.reported)
	}
	if p.State() != StateIdle {
		t.Fatalf("expected Idle, got %s", p.State())
	}

	out.setDown(nil)
	p.OutputReady()

	if np, ok := p.NowPlaying(); !ok || np.Title != "a" {
		t.Fatalf("expected a playing once output is back, got %q", np.Title)
	}
	if p.QueueLen() != 2 {
		t.Fatalf("expected 2 queued, got %d", p.QueueLen())
	}
}

func TestReplenishmentDoesNotOverlap(t *testing.T) {
	var (
		p       *Player
		active  atomic.Int32
		peak    atomic.Int32
		runs    atomic.Int32
		release = make(chan struct{})
	)
	replenish := func(ctx context.Context) {
		runs.Add(1)
		if n := active.Add(1); n > peak.Load() {
			peak.Store(n)
		}
		defer active.Add(-1)

		p.Enqueue(track("filler", music.AutoPlayRequester))
		<-release
	}

	var out *fakeOutput
	p, out, _ = newTestPlayer(t, Options{Replenish: replenish})
	defer close(release)

	p.SetAutoPlay(true)

	deadline := time.Now().Add(time.Second)
	for out.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("filler never started")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// The first run is still blocked while its filler ends.
	out.last().finish(EndFinished, nil)
	time.Sleep(50 * time.Millisecond)

	if runs.Load() != 1 || peak.Load() != 1 {
		t.Fatalf("expected a single replenishment run, got runs=%d peak=%d", runs.Load(), peak.Load())
	}
}

func TestOccupancyCheckedAsTrackStarts(t *testing.T) {
	var p *Player
	var out *fakeOutput
	p, out, _ = newTestPlayer(t, Options{})
	out.onPlay = func() { p.SetOccupancy(1) }

	p.Enqueue(track("a", "alice"))

	if p.State() != StatePaused {
		t.Fatalf("expected Paused in an empty channel, got %s", p.State())
	}
	if !out.last().isPaused() {
		t.Fatalf("expected the stream to be paused")
	}
}
