package stream

import "sync"

// Control pauses, resumes and stops a running stream from other goroutines.
type Control struct {
	mu       sync.Mutex
	paused   bool
	resume   chan struct{}
	stop     chan struct{}
	stopOnce sync.Once
}

func NewControl() *Control {
	return &Control{
		resume: make(chan struct{}),
		stop:   make(chan struct{}),
	}
}

func (c *Control) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.paused {
		return
	}
	c.paused = true
	c.resume = make(chan struct{})
}

func (c *Control) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.paused {
		return
	}
	c.paused = false
	close(c.resume)
}

func (c *Control) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Stop ends the stream. Safe to call more than once.
func (c *Control) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Control) Done() <-chan struct{} {
	return c.stop
}

// Wait blocks while paused. It reports false once the stream is stopped.
func (c *Control) Wait() bool {
	for {
		c.mu.Lock()
		paused, resume := c.paused, c.resume
		c.mu.Unlock()

		select {
		case <-c.stop:
			return false
		default:
		}
		if !paused {
			return true
		}

		select {
		case <-resume:
		case <-c.stop:
			return false
		}
	}
}
