package flow

// EventKind classifies a normalized inbound event.
type EventKind int

const (
	EventStart EventKind = iota
	EventCancel
	EventButton
	EventText
	EventVoice
	EventContact
)

// VoiceRef is an opaque handle to a voice payload; the transport knows how to
// fetch the audio behind it.
type VoiceRef struct {
	FileID   string
	Duration int
}

// SharedContact is a structured contact payload from the messaging transport.
type SharedContact struct {
	Phone     string
	FirstName string
}

// Event is the single canonical input type consumed by every handler. The
// transport builds one Event per inbound update; the normalizer turns voice
// events into text events before dispatch.
type Event struct {
	UserID    int64
	FirstName string
	Username  string

	Kind    EventKind
	Code    string // button selection code
	Text    string
	Voice   VoiceRef
	Contact *SharedContact
}
