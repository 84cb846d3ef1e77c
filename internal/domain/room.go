package domain

import "time"

type RoomCode string

type Room struct {
	Code      RoomCode
	CreatedAt time.Time
}
