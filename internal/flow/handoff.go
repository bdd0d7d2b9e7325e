package flow

import (
	"context"

	"github.com/rs/zerolog"
)

// Handoff runs the fixed-order completion trio once a chain's contact step
// succeeds: lead notification, profile persistence, AI generation. The first
// two are best effort and logged only; a generation failure is user-visible.
type Handoff struct {
	notifier Notifier
	profiles ProfileStore
	gen      Generator
	branding Branding
	log      zerolog.Logger
}

func NewHandoff(notifier Notifier, profiles ProfileStore, gen Generator, branding Branding, log zerolog.Logger) *Handoff {
	return &Handoff{
		notifier: notifier,
		profiles: profiles,
		gen:      gen,
		branding: branding,
		log:      log,
	}
}

// Complete fires the trio and returns the replies to show the user. The
// caller resets the session afterwards regardless of the outcome.
func (h *Handoff) Complete(ctx context.Context, s *Session, phone string) []Reply {
	answers := s.answersCopy()

	contact, err := h.profiles.ContactInfo(ctx, s.ID)
	if err != nil {
		h.log.Warn().Err(err).Int64("user_id", s.ID).Msg("contact lookup failed")
	}
	if err := h.notifier.NewLead(ctx, Lead{
		UserID:    s.ID,
		FirstName: s.FirstName,
		Role:      s.Role,
		Answers:   answers,
		Contact:   contact,
	}); err != nil {
		h.log.Error().Err(err).Int64("user_id", s.ID).Msg("lead notification failed")
	}

	if err := h.profiles.SaveProfile(ctx, s.ID, s.Role, answers, phone); err != nil {
		h.log.Error().Err(err).Int64("user_id", s.ID).Msg("profile persistence failed")
	}

	content, err := h.gen.GenerateRoleContent(ctx, s.Role, answers)
	if err != nil {
		h.log.Error().Err(err).Int64("user_id", s.ID).Str("role", string(s.Role)).Msg("generation failed")
		return []Reply{textReply(h.generationErrorText(s.Role))}
	}

	var result string
	switch s.Role {
	case RoleEntrepreneur:
		result = entrepreneurResultText(h.branding, s.FirstName, answers, content)
	case RoleStartupper:
		result = startupperResultText(h.branding, s.FirstName, content)
	default:
		result = specialistResultText(h.branding, content)
	}

	return []Reply{
		textReply(businessCardText(h.branding)),
		{
			Text:    result,
			Buttons: [][]Button{{{Label: rouletteButtonLabel, WebAppURL: h.branding.WebAppURL}}},
		},
	}
}

func (h *Handoff) generationErrorText(role Role) string {
	switch role {
	case RoleEntrepreneur:
		return entrepreneurGenerationError
	case RoleStartupper:
		return startupperGenerationError
	default:
		return specialistGenerationError
	}
}
