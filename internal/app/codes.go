package app

import (
	"crypto/rand"
	"fmt"
)

const (
	// RoomCodeLength is the number of letters in a room code
	RoomCodeLength = 4

	// RoomCodeChars are the letters used for room codes (no I or O)
	RoomCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ"
)

// GenerateRoomCode returns a random room code
func GenerateRoomCode() (string, error) {
	b := make([]byte, RoomCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}

	code := make([]byte, RoomCodeLength)
	for i := range code {
		code[i] = RoomCodeChars[int(b[i])%len(RoomCodeChars)]
	}

	return string(code), nil
}
