package model

import (
	"sync"
	"time"
)

type QueuedPlayer struct {
	Player
	JoinedAt time.Time
}

// Queue is the matchmaking queue. Players are paired oldest first.
type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.Player.ID == player.ID {
			return ErrAlreadyQueued
		}
	}

	q.players = append(q.players, QueuedPlayer{
		Player:   player,
		JoinedAt: time.Now(),
	})
	return nil
}

// RemovePlayer drops playerID from the queue, reporting whether it was there.
func (q *Queue) RemovePlayer(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.players {
		if p.Player.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return true
		}
	}
	return false
}

// GetNextPair pops the two players who have waited longest.
func (q *Queue) GetNextPair() (QueuedPlayer, QueuedPlayer, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.players) < 2 {
		return QueuedPlayer{}, QueuedPlayer{}, ErrQueueTooShort
	}
	player1 := q.players[0]
	player2 := q.players[1]
	q.players = q.players[2:]

	return player1, player2, nil
}

// Contains reports whether playerID is waiting in the queue.
func (q *Queue) Contains(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.ID == playerID {
			return true
		}
	}
	return false
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
