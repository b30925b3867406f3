package gamedata

import "errors"

var (
	ErrAccountNotFound   = errors.New("account not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrServerNotFound    = errors.New("server not found")
)
