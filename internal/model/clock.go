package model

import (
	"log"
	"sync"
	"time"
)

// Clock is one side's chess clock. It only runs between Start and Stop.
type Clock struct {
	mu          sync.Mutex
	timeLeft    time.Duration
	lastStarted time.Time
	isRunning   bool
	now         func() time.Time
}

func NewClock(initialTime time.Duration) *Clock {
	return &Clock{
		timeLeft: initialTime,
		now:      time.Now,
	}
}

func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isRunning {
		c.lastStarted = c.now()
		c.isRunning = true
	}
}

func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		c.timeLeft -= c.now().Sub(c.lastStarted)
		c.isRunning = false
		if c.timeLeft <= 0 {
			log.Printf("clock: flag fell (%v)", c.timeLeft)
		}
	}
}

func (c *Clock) GetTimeLeft() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.isRunning {
		return c.timeLeft - c.now().Sub(c.lastStarted)
	}
	return c.timeLeft
}

// Tenths is the remaining time in tenths of a second, the unit clients show.
func (c *Clock) Tenths() int {
	return int(c.GetTimeLeft().Milliseconds() / 100)
}

func (c *Clock) Flagged() bool {
	return c.GetTimeLeft() <= 0
}
