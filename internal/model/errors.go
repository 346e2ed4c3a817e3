package model

import "errors"

var (
	ErrGameFull         = errors.New("game is full")
	ErrNotInGame        = errors.New("player not in game")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrAlreadyConnected = errors.New("player already connected")
	ErrAlreadyQueued    = errors.New("player already in queue")
	ErrQueueTooShort    = errors.New("not enough players queued")
)
