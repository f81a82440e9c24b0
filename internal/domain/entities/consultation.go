package entities

import "time"

// ConsultationRoom is the placeholder video room a clinician has
// joined. Purely local state; no media or signaling is exchanged.
type ConsultationRoom struct {
	RoomID   string    `json:"room_id"`
	JoinedAt time.Time `json:"joined_at"`
}
