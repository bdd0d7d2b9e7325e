package flow

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ----- fakes -----

type fakeTranscriber struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ VoiceRef) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.text, f.err
}

type generatorCall struct {
	role    Role
	answers map[string]string
}

type fakeGenerator struct {
	mu      sync.Mutex
	content string
	err     error
	calls   []generatorCall
}

func (f *fakeGenerator) GenerateRoleContent(_ context.Context, role Role, answers map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, generatorCall{role: role, answers: answers})
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

type savedProfile struct {
	userID  int64
	role    Role
	answers map[string]string
	phone   string
}

type fakeProfiles struct {
	mu      sync.Mutex
	saved   []savedProfile
	saveErr error
	contact *ContactInfo
}

func (f *fakeProfiles) SaveProfile(_ context.Context, userID int64, role Role, answers map[string]string, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, savedProfile{userID: userID, role: role, answers: answers, phone: phone})
	return f.saveErr
}

func (f *fakeProfiles) ContactInfo(_ context.Context, _ int64) (*ContactInfo, error) {
	return f.contact, nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	leads      []Lead
	support    []SupportRequest
	cost       []Lead
	leadErr    error
	supportErr error
}

func (f *fakeNotifier) NewLead(_ context.Context, lead Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads = append(f.leads, lead)
	return f.leadErr
}

func (f *fakeNotifier) SupportRequest(_ context.Context, req SupportRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.support = append(f.support, req)
	return f.supportErr
}

func (f *fakeNotifier) CostCalculation(_ context.Context, lead Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cost = append(f.cost, lead)
	return nil
}

type testEnv struct {
	engine      *Engine
	store       *MemoryStore
	transcriber *fakeTranscriber
	generator   *fakeGenerator
	profiles    *fakeProfiles
	notifier    *fakeNotifier
}

func newTestEnv() *testEnv {
	store := NewMemoryStore()
	transcriber := &fakeTranscriber{text: "распознанный текст"}
	generator := &fakeGenerator{content: "сгенерированное решение"}
	profiles := &fakeProfiles{}
	notifier := &fakeNotifier{}
	branding := Branding{
		CompanyName: "РусНейроСофт",
		Email:       "info@rusneurosoft.ru",
		Website:     "https://rusneurosoft.ru",
		WebAppURL:   "https://app.example.com",
	}
	log := zerolog.Nop()

	handoff := NewHandoff(notifier, profiles, generator, branding, log)
	engine := NewEngine(NewTable(), store, transcriber, handoff, notifier, profiles, branding, log)
	return &testEnv{
		engine:      engine,
		store:       store,
		transcriber: transcriber,
		generator:   generator,
		profiles:    profiles,
		notifier:    notifier,
	}
}

func btn(userID int64, code string) Event {
	return Event{UserID: userID, Kind: EventButton, Code: code}
}

func txt(userID int64, text string) Event {
	return Event{UserID: userID, Kind: EventText, Text: text}
}

func (e *testEnv) session(t *testing.T, userID int64) *Session {
	t.Helper()
	s, err := e.store.Get(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// drive runs a sequence of events and returns the replies of the last one.
func (e *testEnv) drive(events ...Event) []Reply {
	var replies []Reply
	for _, ev := range events {
		replies = e.engine.HandleEvent(context.Background(), ev)
	}
	return replies
}

// ----- chain completion -----

func TestEntrepreneurChainCompletes(t *testing.T) {
	env := newTestEnv()
	const user = int64(101)

	env.drive(
		Event{UserID: user, FirstName: "Анна", Kind: EventStart},
		btn(user, "role_entrepreneur"),
		btn(user, "pain_requests"),
		btn(user, "time_10-30"),
		btn(user, "dept_sales"),
	)

	replies := env.drive(Event{
		UserID:  user,
		Kind:    EventContact,
		Contact: &SharedContact{Phone: "+79001234567", FirstName: "Анна"},
	})

	require.Len(t, env.profiles.saved, 1)
	saved := env.profiles.saved[0]
	assert.Equal(t, user, saved.userID)
	assert.Equal(t, RoleEntrepreneur, saved.role)
	assert.Equal(t, "+79001234567", saved.phone)
	assert.Equal(t, map[string]string{
		"process_pain":        "Обработка заявок",
		"time_lost":           "10-30",
		"department_affected": "Отдел продаж",
	}, saved.answers)

	require.Len(t, env.notifier.leads, 1)
	assert.Equal(t, RoleEntrepreneur, env.notifier.leads[0].Role)

	require.Len(t, env.generator.calls, 1)
	assert.Equal(t, saved.answers, env.generator.calls[0].answers)

	// Confirmation, business card, then the result with the roulette button.
	require.Len(t, replies, 3)
	assert.Contains(t, replies[2].Text, "сгенерированное решение")
	assert.Contains(t, replies[2].Text, "10-30")
	require.Len(t, replies[2].Buttons, 1)
	assert.Equal(t, "https://app.example.com", replies[2].Buttons[0][0].WebAppURL)

	sess := env.session(t, user)
	assert.Equal(t, StateRoleSelection, sess.State)
	assert.Equal(t, RoleUnset, sess.Role)
	assert.Empty(t, sess.Answers)
}

func TestStartupperFreeTextAnswers(t *testing.T) {
	env := newTestEnv()
	const user = int64(102)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_startupper"),
		txt(user, "Сервис поиска репетиторов"),
		btn(user, "stage_prototype"),
		btn(user, "barrier_mvp"),
		txt(user, "Иван, +79005556677"),
	)

	require.Len(t, env.profiles.saved, 1)
	saved := env.profiles.saved[0]
	assert.Equal(t, RoleStartupper, saved.role)
	assert.Equal(t, "Иван, +79005556677", saved.phone)
	assert.Equal(t, map[string]string{
		"problem_solved": "Сервис поиска репетиторов",
		"current_stage":  "prototype",
		"main_barrier":   "Нет понимания MVP",
	}, saved.answers)
}

func TestCustomAnswerStoredVerbatim(t *testing.T) {
	env := newTestEnv()
	const user = int64(103)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_entrepreneur"),
		btn(user, "pain_custom"),
		txt(user, "ручная сверка накладных"),
	)

	sess := env.session(t, user)
	assert.Equal(t, "ручная сверка накладных", sess.Answers["process_pain"])
	assert.Equal(t, StateID("entrepreneur:q2"), sess.State)
}

func TestPresetOnlyNodeRejectsFreeText(t *testing.T) {
	env := newTestEnv()
	const user = int64(104)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_entrepreneur"),
		btn(user, "pain_requests"),
	)

	// time_lost has no custom option: free text must not advance.
	replies := env.drive(txt(user, "примерно сорок часов"))

	sess := env.session(t, user)
	assert.Equal(t, StateID("entrepreneur:q2"), sess.State)
	assert.NotContains(t, sess.Answers, "time_lost")
	require.Len(t, replies, 1)
	assert.Equal(t, entrepreneurQ2Prompt, replies[0].Text)
}

func TestUnknownSelectionCodeReRenders(t *testing.T) {
	env := newTestEnv()
	const user = int64(105)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_entrepreneur"),
	)
	replies := env.drive(btn(user, "no_such_code"))

	sess := env.session(t, user)
	assert.Equal(t, StateID("entrepreneur:q1"), sess.State)
	assert.Empty(t, sess.Answers)
	require.Len(t, replies, 1)
	assert.Equal(t, entrepreneurQ1Prompt, replies[0].Text)
}

// ----- back navigation -----

func TestBackRendersIdenticalPredecessorPrompt(t *testing.T) {
	env := newTestEnv()
	const user = int64(106)

	env.drive(Event{UserID: user, Kind: EventStart})
	forward := env.drive(btn(user, "role_entrepreneur"))
	env.drive(btn(user, "pain_requests"))

	back := env.drive(btn(user, "back_entrepreneur_q1"))

	require.Len(t, forward, 1)
	require.Len(t, back, 1)
	assert.Equal(t, forward[0], back[0])

	sess := env.session(t, user)
	assert.Equal(t, StateID("entrepreneur:q1"), sess.State)
	// The old answer survives until the question is re-answered.
	assert.Equal(t, "Обработка заявок", sess.Answers["process_pain"])
}

func TestBackFromFirstQuestionResetsToRoleSelection(t *testing.T) {
	env := newTestEnv()
	const user = int64(107)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_specialist"),
	)
	replies := env.drive(btn(user, "back_to_roles"))

	sess := env.session(t, user)
	assert.Equal(t, StateRoleSelection, sess.State)
	assert.Equal(t, RoleUnset, sess.Role)
	require.NotEmpty(t, replies)
	assert.Contains(t, replies[0].Text, "Выберите, что вам ближе")
}

func TestReanswerTruncatesDownstreamAnswers(t *testing.T) {
	env := newTestEnv()
	const user = int64(108)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_entrepreneur"),
		btn(user, "pain_requests"),
		btn(user, "time_10-30"),
		btn(user, "dept_sales"),
		// Walk back to q1 from the contact step.
		btn(user, "back_entrepreneur_q3"),
		btn(user, "back_entrepreneur_q2"),
		btn(user, "back_entrepreneur_q1"),
		btn(user, "pain_reports"),
	)

	sess := env.session(t, user)
	assert.Equal(t, StateID("entrepreneur:q2"), sess.State)
	assert.Equal(t, map[string]string{"process_pain": "Подготовка отчетов"}, sess.Answers)
}

// ----- reentry, cancel -----

func TestStartResetsMidChain(t *testing.T) {
	env := newTestEnv()
	const user = int64(109)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_startupper"),
		txt(user, "идея приложения"),
	)
	replies := env.drive(Event{UserID: user, Kind: EventStart})

	sess := env.session(t, user)
	assert.Equal(t, StateRoleSelection, sess.State)
	assert.Empty(t, sess.Answers)
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Выберите, что вам ближе")
	assert.Empty(t, env.profiles.saved)
}

func TestCancelDeletesSession(t *testing.T) {
	env := newTestEnv()
	const user = int64(110)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_specialist"),
		btn(user, "skill_python"),
	)
	replies := env.drive(Event{UserID: user, Kind: EventCancel})

	require.Len(t, replies, 1)
	assert.Equal(t, cancelledText, replies[0].Text)
	assert.True(t, replies[0].RemoveKeyboard)

	s, err := env.store.Get(context.Background(), user)
	require.NoError(t, err)
	assert.Nil(t, s)

	// The next event starts from scratch.
	next := env.drive(txt(user, "привет"))
	require.NotEmpty(t, next)
	assert.Contains(t, next[0].Text, "Выберите, что вам ближе")
}

// ----- voice normalization -----

func TestVoiceAnswerFlowsAsText(t *testing.T) {
	env := newTestEnv()
	const user = int64(111)
	env.transcriber.text = "Приложение для поиска напарников"

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_startupper"),
	)
	replies := env.drive(Event{UserID: user, Kind: EventVoice, Voice: VoiceRef{FileID: "voice1"}})

	assert.Equal(t, 1, env.transcriber.calls)
	require.GreaterOrEqual(t, len(replies), 2)
	assert.Contains(t, replies[0].Text, "Приложение для поиска напарников")

	sess := env.session(t, user)
	assert.Equal(t, "Приложение для поиска напарников", sess.Answers["problem_solved"])
	assert.Equal(t, StateID("startupper:q2"), sess.State)
	assert.Empty(t, sess.PendingVoiceText)
}

func TestTranscriptionFailureLeavesStateUntouched(t *testing.T) {
	env := newTestEnv()
	const user = int64(112)
	env.transcriber.err = errors.New("whisper down")

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_startupper"),
	)
	replies := env.drive(Event{UserID: user, Kind: EventVoice, Voice: VoiceRef{FileID: "voice1"}})

	require.Len(t, replies, 1)
	assert.Equal(t, transcriptionFailedText, replies[0].Text)

	sess := env.session(t, user)
	assert.Equal(t, StateID("startupper:q1"), sess.State)
	assert.Empty(t, sess.Answers)
}

// ----- contact capture -----

func TestManualContactEntry(t *testing.T) {
	env := newTestEnv()
	const user = int64(113)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_specialist"),
		btn(user, "skill_python"),
		btn(user, "proj_ai"),
		btn(user, "format_project"),
	)

	// The manual-entry button arrives as its literal label and only
	// re-prompts; completion happens on the following text.
	replies := env.drive(txt(user, ManualContactLabel))
	require.Len(t, replies, 1)
	assert.Equal(t, manualContactPrompt, replies[0].Text)
	assert.Empty(t, env.profiles.saved)

	env.drive(txt(user, "Мария, maria@example.com"))
	require.Len(t, env.profiles.saved, 1)
	assert.Equal(t, "Мария, maria@example.com", env.profiles.saved[0].phone)
}

func TestBackFromContactStep(t *testing.T) {
	env := newTestEnv()
	const user = int64(114)

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_startupper"),
		txt(user, "идея"),
		btn(user, "stage_idea"),
		btn(user, "barrier_tech"),
	)
	env.drive(btn(user, "back_startupper_q3"))

	sess := env.session(t, user)
	assert.Equal(t, StateID("startupper:q3"), sess.State)
	assert.Empty(t, env.profiles.saved)
}

// ----- handoff failure modes -----

func TestGenerationFailureStillPersistsAndResets(t *testing.T) {
	env := newTestEnv()
	const user = int64(115)
	env.generator.err = errors.New("model overloaded")

	replies := env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_entrepreneur"),
		btn(user, "pain_requests"),
		btn(user, "time_30+"),
		btn(user, "dept_support"),
		Event{UserID: user, Kind: EventContact, Contact: &SharedContact{Phone: "+79000000000"}},
	)

	// Notification and persistence ran before the failed generation.
	assert.Len(t, env.notifier.leads, 1)
	assert.Len(t, env.profiles.saved, 1)

	require.Len(t, replies, 2)
	assert.Equal(t, entrepreneurGenerationError, replies[1].Text)

	sess := env.session(t, user)
	assert.Equal(t, StateRoleSelection, sess.State)
}

func TestNotifierFailureDoesNotBlockCompletion(t *testing.T) {
	env := newTestEnv()
	const user = int64(116)
	env.notifier.leadErr = errors.New("group unreachable")

	replies := env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "role_specialist"),
		btn(user, "skill_aiml"),
		btn(user, "proj_fintech"),
		btn(user, "format_full_time"),
		Event{UserID: user, Kind: EventContact, Contact: &SharedContact{Phone: "+79001112233"}},
	)

	assert.Len(t, env.profiles.saved, 1)
	assert.Len(t, env.generator.calls, 1)
	require.Len(t, replies, 3)
	assert.Contains(t, replies[2].Text, "сгенерированное решение")
}

// ----- researcher and support -----

func TestResearcherInterestNotifiesLead(t *testing.T) {
	env := newTestEnv()
	const user = int64(117)

	env.drive(
		Event{UserID: user, FirstName: "Олег", Kind: EventStart},
		btn(user, "role_researcher"),
	)
	replies := env.drive(btn(user, "info_cases"))

	require.Len(t, env.notifier.leads, 1)
	lead := env.notifier.leads[0]
	assert.Equal(t, RoleResearcher, lead.Role)
	assert.Equal(t, "cases", lead.Answers["interest"])
	assert.Empty(t, env.profiles.saved)
	assert.Empty(t, env.generator.calls)

	require.Len(t, replies, 2)
	assert.Contains(t, replies[1].Text, "кейсы")

	// Role and interest survive for a follow-up cost-calculation request.
	sess := env.session(t, user)
	assert.Equal(t, StateRoleSelection, sess.State)
	assert.Equal(t, RoleResearcher, sess.Role)

	env.drive(btn(user, "request_cost_calculation"))
	require.Len(t, env.notifier.cost, 1)
	assert.Equal(t, "cases", env.notifier.cost[0].Answers["interest"])
}

func TestSupportRequestDelivered(t *testing.T) {
	env := newTestEnv()
	const user = int64(118)

	env.drive(
		Event{UserID: user, FirstName: "Петр", Username: "petr", Kind: EventStart},
		btn(user, "contact_support"),
	)
	replies := env.drive(txt(user, "Не приходит письмо с доступом"))

	require.Len(t, env.notifier.support, 1)
	req := env.notifier.support[0]
	assert.Equal(t, user, req.UserID)
	assert.Equal(t, "petr", req.Username)
	assert.Equal(t, "Не приходит письмо с доступом", req.Message)

	require.Len(t, replies, 1)
	assert.Equal(t, supportConfirmationText, replies[0].Text)
	assert.Equal(t, StateRoleSelection, env.session(t, user).State)
}

func TestSupportFailureOffersRetry(t *testing.T) {
	env := newTestEnv()
	const user = int64(119)
	env.notifier.supportErr = errors.New("send failed")

	env.drive(
		Event{UserID: user, Kind: EventStart},
		btn(user, "contact_support"),
	)
	replies := env.drive(txt(user, "вопрос"))

	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "info@rusneurosoft.ru")
	require.Len(t, replies[0].Buttons, 2)
	assert.Equal(t, StateRoleSelection, env.session(t, user).State)
}

// ----- isolation -----

func TestConcurrentSessionsStayIsolated(t *testing.T) {
	env := newTestEnv()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		user := int64(200 + i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			env.drive(
				Event{UserID: user, Kind: EventStart},
				btn(user, "role_entrepreneur"),
				btn(user, "pain_requests"),
				btn(user, "time_10-30"),
				btn(user, "dept_sales"),
				Event{UserID: user, Kind: EventContact, Contact: &SharedContact{Phone: "+7900"}},
			)
		}()
	}
	wg.Wait()

	assert.Len(t, env.profiles.saved, 8)
	seen := make(map[int64]bool)
	for _, p := range env.profiles.saved {
		assert.False(t, seen[p.userID], "profile for %d saved twice", p.userID)
		seen[p.userID] = true
		assert.Equal(t, "Обработка заявок", p.answers["process_pain"])
	}
}
