package flow

// Role is the declared user category selecting a question chain.
type Role string

const (
	RoleUnset        Role = ""
	RoleEntrepreneur Role = "entrepreneur"
	RoleStartupper   Role = "startupper"
	RoleSpecialist   Role = "specialist"
	RoleResearcher   Role = "researcher"
)

// StateID identifies one dialogue state. Question states pair the role with
// the chain position ("entrepreneur:q2"); the fixed states stand alone.
type StateID string

const (
	StateRoleSelection StateID = "role_selection"
	StateResearcher    StateID = "researcher"
	StateSupport       StateID = "support"
)

// Session is one user's in-progress conversation. It is owned exclusively by
// the engine: no two events for the same session are processed concurrently.
type Session struct {
	ID        int64             `json:"id"`
	FirstName string            `json:"first_name,omitempty"`
	Username  string            `json:"username,omitempty"`
	State     StateID           `json:"state"`
	Role      Role              `json:"role"`
	Answers   map[string]string `json:"answers"`

	// PendingVoiceText holds the most recent transcription. It is consumed
	// by exactly one normalization step and never persisted.
	PendingVoiceText string `json:"-"`
}

func newSession(id int64) *Session {
	return &Session{
		ID:      id,
		State:   StateRoleSelection,
		Answers: make(map[string]string),
	}
}

// reset returns the session to the root state, abandoning in-flight work.
func (s *Session) reset() {
	s.State = StateRoleSelection
	s.Role = RoleUnset
	s.Answers = make(map[string]string)
	s.PendingVoiceText = ""
}

// takePendingVoice consumes the transcription so it cannot answer twice.
func (s *Session) takePendingVoice() string {
	text := s.PendingVoiceText
	s.PendingVoiceText = ""
	return text
}

func (s *Session) answersCopy() map[string]string {
	out := make(map[string]string, len(s.Answers))
	for k, v := range s.Answers {
		out[k] = v
	}
	return out
}
