package stream

import (
	"time"
)

type EventType string

const (
	EventFaceDetection EventType = "face_detection"
	EventError         EventType = "error"
)

// Event is an outbound message to a device's subscribers.
type Event struct {
	DeviceID  string    `json:"-"`
	Type      EventType `json:"type"`
	FrameID   string    `json:"frame_id,omitempty"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Frame is an inbound streamed frame. FrameID and Payload are required;
// ClientTime is advisory and unused for ordering.
type Frame struct {
	FrameID    string     `json:"frame_id"`
	Payload    string     `json:"frame"`
	ClientTime *time.Time `json:"timestamp,omitempty"`
}
