package flow

import "context"

// Transcriber resolves a voice payload into text. Implementations are
// expected to fail fast rather than hang; the engine does not retry.
type Transcriber interface {
	Transcribe(ctx context.Context, voice VoiceRef) (string, error)
}

// Generator produces the role-specific AI content shown to the user after a
// completed chain. The prompt parameters are exactly the chain's answers.
type Generator interface {
	GenerateRoleContent(ctx context.Context, role Role, answers map[string]string) (string, error)
}

// ContactInfo is the stored contact record used when formatting notifications.
type ContactInfo struct {
	FirstName string
	LastName  string
	Username  string
	Phone     string
	Email     string
	Company   string
	Position  string
	Website   string
}

// ProfileStore persists role profiles. SaveProfile is idempotent per user:
// re-invocation overwrites rather than duplicates.
type ProfileStore interface {
	SaveProfile(ctx context.Context, userID int64, role Role, answers map[string]string, phone string) error
	ContactInfo(ctx context.Context, userID int64) (*ContactInfo, error)
}

// Lead carries everything the support group needs to see about a new lead.
type Lead struct {
	UserID    int64
	FirstName string
	Role      Role
	Answers   map[string]string
	Contact   *ContactInfo
}

// SupportRequest is a user's message for the support group.
type SupportRequest struct {
	UserID    int64
	FirstName string
	Username  string
	Role      Role
	Message   string
	Contact   *ContactInfo
}

// Notifier delivers best-effort messages to the support group. Failures are
// logged by the engine and never surfaced to the end user.
type Notifier interface {
	NewLead(ctx context.Context, lead Lead) error
	SupportRequest(ctx context.Context, req SupportRequest) error
	CostCalculation(ctx context.Context, lead Lead) error
}

// SessionStore keeps one Session per user. Get returns (nil, nil) for an
// unseen user. The engine serializes all operations for a single session, so
// implementations do not need per-session locking of their own.
type SessionStore interface {
	Get(ctx context.Context, userID int64) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID int64) error
}
