package flow

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Engine holds the dialogue state per session and applies transitions driven
// by normalized events and flow-table lookups. Every transition returns a set
// of replies; no error ever escapes to the transport.
type Engine struct {
	table       *Table
	store       SessionStore
	transcriber Transcriber
	handoff     *Handoff
	notifier    Notifier
	profiles    ProfileStore
	branding    Branding
	log         zerolog.Logger

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewEngine(
	table *Table,
	store SessionStore,
	transcriber Transcriber,
	handoff *Handoff,
	notifier Notifier,
	profiles ProfileStore,
	branding Branding,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		table:       table,
		store:       store,
		transcriber: transcriber,
		handoff:     handoff,
		notifier:    notifier,
		profiles:    profiles,
		branding:    branding,
		log:         log,
		locks:       make(map[int64]*sync.Mutex),
	}
}

// sessionLock serializes event processing per session. Events for different
// sessions proceed concurrently.
func (e *Engine) sessionLock(userID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[userID] = l
	}
	return l
}

// HandleEvent processes one inbound event and returns the replies to render.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) []Reply {
	lock := e.sessionLock(ev.UserID)
	lock.Lock()
	defer lock.Unlock()

	sess, err := e.store.Get(ctx, ev.UserID)
	if err != nil {
		e.log.Error().Err(err).Int64("user_id", ev.UserID).Msg("session load failed")
	}
	if sess == nil {
		sess = newSession(ev.UserID)
	}
	if ev.FirstName != "" {
		sess.FirstName = ev.FirstName
	}
	if ev.Username != "" {
		sess.Username = ev.Username
	}

	switch ev.Kind {
	case EventStart:
		// Reentry is unconditional: in-flight work is abandoned, not merged.
		sess.reset()
		e.put(ctx, sess)
		return e.welcomeReplies()
	case EventCancel:
		if err := e.store.Delete(ctx, ev.UserID); err != nil {
			e.log.Error().Err(err).Int64("user_id", ev.UserID).Msg("session delete failed")
		}
		return []Reply{{Text: cancelledText, RemoveKeyboard: true}}
	}

	var replies []Reply
	if ev.Kind == EventVoice {
		text, err := e.transcriber.Transcribe(ctx, ev.Voice)
		if err != nil {
			e.log.Warn().Err(err).Int64("user_id", ev.UserID).Msg("transcription failed")
			return []Reply{textReply(transcriptionFailedText)}
		}
		sess.PendingVoiceText = text
		ev.Kind = EventText
		ev.Text = sess.takePendingVoice()
		replies = append(replies, textReply(transcribedText(text)))
	}

	switch sess.State {
	case StateRoleSelection:
		replies = append(replies, e.handleRoleSelection(ctx, sess, ev)...)
	case StateResearcher:
		replies = append(replies, e.handleResearcher(ctx, sess, ev)...)
	case StateSupport:
		replies = append(replies, e.handleSupport(ctx, sess, ev)...)
	default:
		node, ok := e.table.Node(sess.State)
		if !ok {
			// Unreachable by construction; recover to the root state anyway.
			e.log.Error().Str("state", string(sess.State)).Int64("user_id", ev.UserID).Msg("unknown state")
			sess.reset()
			replies = append(replies, e.welcomeReplies()...)
		} else if node.Contact {
			replies = append(replies, e.handleContactCapture(ctx, sess, node, ev)...)
		} else {
			replies = append(replies, e.handleQuestion(ctx, sess, node, ev)...)
		}
	}

	e.put(ctx, sess)
	return replies
}

func (e *Engine) put(ctx context.Context, sess *Session) {
	if err := e.store.Put(ctx, sess); err != nil {
		e.log.Error().Err(err).Int64("user_id", sess.ID).Msg("session save failed")
	}
}

// ----- role selection -----

func (e *Engine) handleRoleSelection(ctx context.Context, sess *Session, ev Event) []Reply {
	if ev.Kind != EventButton {
		return e.welcomeReplies()
	}

	switch {
	case strings.HasPrefix(ev.Code, "role_"):
		role := Role(strings.TrimPrefix(ev.Code, "role_"))
		switch role {
		case RoleEntrepreneur, RoleStartupper, RoleSpecialist:
			sess.Role = role
			first := e.table.First(role)
			sess.State = first.State
			return e.renderNode(sess, first)
		case RoleResearcher:
			sess.Role = RoleResearcher
			sess.State = StateResearcher
			return []Reply{
				textReply(businessCardText(e.branding)),
				e.researcherMenuReply(),
			}
		}
		return e.welcomeReplies()

	case ev.Code == contactSupportCode:
		sess.State = StateSupport
		return []Reply{textReply(supportPrompt)}

	case ev.Code == costCalculationCode:
		return e.handleCostCalculation(ctx, sess)

	case ev.Code == backToRolesCode:
		return e.welcomeReplies()
	}

	return e.welcomeReplies()
}

func (e *Engine) welcomeReplies() []Reply {
	return []Reply{{
		Text: fmt.Sprintf(welcomeTemplate, e.branding.CompanyName),
		Buttons: [][]Button{
			{{Label: "🚀 У меня есть бизнес", Code: "role_entrepreneur"}},
			{{Label: "💡 У меня есть идея/стартап", Code: "role_startupper"}},
			{{Label: "💻 Я разработчик/специалист", Code: "role_specialist"}},
			{{Label: "📈 Ищу интересный проект", Code: "role_researcher"}},
			{{Label: "💬 Связаться с сотрудником", Code: contactSupportCode}},
		},
	}}
}

// ----- question chains -----

func (e *Engine) handleQuestion(ctx context.Context, sess *Session, node *QuestionNode, ev Event) []Reply {
	switch ev.Kind {
	case EventButton:
		switch ev.Code {
		case node.BackCode:
			return e.goBack(sess, node)
		case node.CustomCode:
			if node.CustomCode != "" {
				reply := textReply(node.CustomPrompt)
				if node.BackCode != "" {
					reply.Buttons = [][]Button{backRow(node.BackCode)}
				}
				return []Reply{reply}
			}
		case contactSupportCode:
			sess.State = StateSupport
			return []Reply{textReply(supportPrompt)}
		}
		for _, opt := range node.Options {
			if opt.Code == ev.Code {
				return e.advance(sess, node, opt.Value)
			}
		}
		// Malformed selection code: re-render, no state change.
		return e.renderNode(sess, node)

	case EventText:
		// Free text is accepted where the node is free-text-only or offers
		// the custom option; preset-only nodes re-render.
		if ev.Text == "" || (len(node.Options) > 0 && node.CustomCode == "") {
			return e.renderNode(sess, node)
		}
		return e.advance(sess, node, ev.Text)
	}

	return e.renderNode(sess, node)
}

// advance stores the normalized answer and moves to the next node. Storing
// into an earlier node after back-navigation drops every answer downstream
// of it: those become stale and must be re-collected.
func (e *Engine) advance(sess *Session, node *QuestionNode, value string) []Reply {
	sess.Answers[node.Key] = value
	e.table.truncateDownstream(node.Role, node.Index, sess.Answers)

	next := e.table.Next(node)
	sess.State = next.State
	return e.renderNode(sess, next)
}

// goBack re-renders the predecessor without touching stored answers; the
// answer for the node being returned to is overwritten on the next forward
// transition.
func (e *Engine) goBack(sess *Session, node *QuestionNode) []Reply {
	if node.Predecessor == StateRoleSelection {
		sess.reset()
		return e.welcomeReplies()
	}
	prev, ok := e.table.Node(node.Predecessor)
	if !ok {
		sess.reset()
		return e.welcomeReplies()
	}
	sess.State = prev.State
	return e.renderNode(sess, prev)
}

func (e *Engine) renderNode(sess *Session, node *QuestionNode) []Reply {
	text := node.Prompt
	if len(node.PromptKeys) > 0 {
		args := make([]any, 0, len(node.PromptKeys))
		for _, k := range node.PromptKeys {
			args = append(args, sess.Answers[k])
		}
		text = fmt.Sprintf(node.Prompt, args...)
	}

	if node.Contact {
		prompt := Reply{Text: text}
		if node.BackCode != "" {
			prompt.Buttons = [][]Button{backRow(node.BackCode)}
		}
		return []Reply{prompt, {Text: chooseContactMethodText, RequestContact: true}}
	}

	var rows [][]Button
	for _, opt := range node.Options {
		rows = append(rows, []Button{{Label: opt.Label, Code: opt.Code}})
	}
	if node.CustomCode != "" {
		rows = append(rows, []Button{{Label: customOptionLabel, Code: node.CustomCode}})
	}
	if node.BackCode != "" {
		label := backLabel
		if node.Predecessor == StateRoleSelection {
			label = backToRolesLabel
		}
		rows = append(rows, []Button{{Label: label, Code: node.BackCode}})
	}
	return []Reply{{Text: text, Buttons: rows}}
}

// ----- contact capture -----

func (e *Engine) handleContactCapture(ctx context.Context, sess *Session, node *QuestionNode, ev Event) []Reply {
	switch ev.Kind {
	case EventContact:
		confirm := Reply{Text: contactReceivedFor(ev.Contact.FirstName), RemoveKeyboard: true}
		return append([]Reply{confirm}, e.complete(ctx, sess, ev.Contact.Phone)...)

	case EventText:
		if ev.Text == ManualContactLabel {
			return []Reply{{Text: manualContactPrompt, RemoveKeyboard: true}}
		}
		if ev.Text == "" {
			return e.renderNode(sess, node)
		}
		confirm := Reply{Text: contactReceivedText, RemoveKeyboard: true}
		return append([]Reply{confirm}, e.complete(ctx, sess, ev.Text)...)

	case EventButton:
		if ev.Code == node.BackCode {
			return e.goBack(sess, node)
		}
	}

	return e.renderNode(sess, node)
}

// complete fires the completion handoff exactly once and returns the session
// to the root state regardless of the outcome.
func (e *Engine) complete(ctx context.Context, sess *Session, phone string) []Reply {
	replies := e.handoff.Complete(ctx, sess, phone)
	sess.reset()
	return replies
}

// ----- researcher path -----

func (e *Engine) researcherMenuReply() Reply {
	return Reply{
		Text: fmt.Sprintf(researcherMenuTemplate, e.branding.CompanyName),
		Buttons: [][]Button{
			{{Label: "🚀 Наши лучшие кейсы", Code: "info_cases"}},
			{{Label: "🤖 Технологический стек", Code: "info_tech"}},
			{{Label: "🤝 Связаться с нами", Code: "info_contact"}},
			{{Label: backToRolesLabel, Code: backToRolesCode}},
		},
	}
}

func (e *Engine) handleResearcher(ctx context.Context, sess *Session, ev Event) []Reply {
	if ev.Kind != EventButton {
		return []Reply{e.researcherMenuReply()}
	}

	if ev.Code == backToRolesCode {
		sess.reset()
		return e.welcomeReplies()
	}

	if !strings.HasPrefix(ev.Code, "info_") {
		return []Reply{e.researcherMenuReply()}
	}

	interest := strings.TrimPrefix(ev.Code, "info_")
	var text string
	switch interest {
	case "cases":
		text = researcherCasesText
	case "tech":
		text = researcherTechText
	case "contact":
		text = researcherContactText(e.branding)
	default:
		return []Reply{e.researcherMenuReply()}
	}
	sess.Answers["interest"] = interest

	rows := [][]Button{}
	if interest == "cases" {
		rows = append(rows, []Button{{Label: "🌐 Посмотреть все кейсы", URL: e.branding.CasesLink}})
	}
	rows = append(rows,
		[]Button{{Label: "💰 Расчет стоимости проекта", Code: costCalculationCode}},
		[]Button{{Label: "🌐 Посетить наш сайт", URL: e.branding.Website}},
		[]Button{{Label: "🗓 Запланировать звонок", URL: e.branding.BookCallLink}},
		[]Button{{Label: "💬 Связаться с сотрудником", Code: contactSupportCode}},
		[]Button{{Label: "🏠 В главное меню", Code: backToRolesCode}},
	)

	final := fmt.Sprintf("%s\n\n---\n\nСпасибо за интерес к **%s**! 🚀", text, e.branding.CompanyName)

	// Researcher never persists a profile and never calls generation: the
	// handoff here is the lead notification alone.
	contact := e.lookupContact(ctx, sess.ID)
	if err := e.notifier.NewLead(ctx, Lead{
		UserID:    sess.ID,
		FirstName: sess.FirstName,
		Role:      RoleResearcher,
		Answers:   sess.answersCopy(),
		Contact:   contact,
	}); err != nil {
		e.log.Error().Err(err).Int64("user_id", sess.ID).Msg("lead notification failed")
	}

	// Interest and role stay on the session so a follow-up cost-calculation
	// request can still reference them from the root state.
	sess.State = StateRoleSelection
	return []Reply{
		textReply(businessCardText(e.branding)),
		{Text: final, Buttons: rows},
	}
}

func (e *Engine) handleCostCalculation(ctx context.Context, sess *Session) []Reply {
	contact := e.lookupContact(ctx, sess.ID)
	if err := e.notifier.CostCalculation(ctx, Lead{
		UserID:    sess.ID,
		FirstName: sess.FirstName,
		Role:      sess.Role,
		Answers:   sess.answersCopy(),
		Contact:   contact,
	}); err != nil {
		e.log.Error().Err(err).Int64("user_id", sess.ID).Msg("cost calculation notification failed")
		return []Reply{textReply(supportFailureText(e.branding.Email))}
	}
	return []Reply{textReply(costCalculationConfirmation)}
}

// ----- support -----

func (e *Engine) handleSupport(ctx context.Context, sess *Session, ev Event) []Reply {
	switch ev.Kind {
	case EventButton:
		if ev.Code == backToRolesCode {
			sess.reset()
			return e.welcomeReplies()
		}
		return []Reply{textReply(supportPrompt)}

	case EventText:
		if ev.Text == "" {
			return []Reply{textReply(supportPrompt)}
		}
		contact := e.lookupContact(ctx, sess.ID)
		err := e.notifier.SupportRequest(ctx, SupportRequest{
			UserID:    sess.ID,
			FirstName: sess.FirstName,
			Username:  sess.Username,
			Role:      sess.Role,
			Message:   ev.Text,
			Contact:   contact,
		})
		sess.State = StateRoleSelection
		if err != nil {
			e.log.Error().Err(err).Int64("user_id", sess.ID).Msg("support request failed")
			return []Reply{{
				Text: supportFailureText(e.branding.Email),
				Buttons: [][]Button{
					{{Label: "🔄 Попробовать снова", Code: contactSupportCode}},
					{{Label: "🏠 Вернуться к началу", Code: backToRolesCode}},
				},
			}}
		}
		return []Reply{{
			Text:    supportConfirmationText,
			Buttons: [][]Button{{{Label: "🏠 В главное меню", Code: backToRolesCode}}},
		}}
	}

	return []Reply{textReply(supportPrompt)}
}

func (e *Engine) lookupContact(ctx context.Context, userID int64) *ContactInfo {
	contact, err := e.profiles.ContactInfo(ctx, userID)
	if err != nil {
		e.log.Warn().Err(err).Int64("user_id", userID).Msg("contact lookup failed")
		return nil
	}
	return contact
}
