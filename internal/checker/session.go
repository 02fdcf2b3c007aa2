package checker

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Gateway is the reasoning service boundary. All four operations are
// single request/response calls with no retry at this layer; they may
// take arbitrarily long and complete in any order.
type Gateway interface {
	InferConditions(ctx context.Context, text string) ([]Condition, error)
	DescribeCondition(ctx context.Context, name string) (string, error)
	GeneralAdvice(ctx context.Context, conditions []Condition) (string, error)
	VisitPrep(ctx context.Context, conditions []Condition) (DoctorVisitPrep, error)
}

const greeting = "Hello, how can I help you today?"

// Snapshot is an immutable copy of the session state, handed to
// observers after every applied mutation and returned by State.
type Snapshot struct {
	Screen            Screen
	Messages          []ChatMessage
	Conditions        []Condition
	SelectedCondition *Condition
	Advice            string
	PrepGuide         *DoctorVisitPrep
	ConditionsLoading bool
	DetailLoading     bool
	AdviceLoading     bool
	PrepLoading       bool
	LastError         string
	DetailOrigin      Screen
}

// Observer receives a snapshot after each state change.
type Observer func(Snapshot)

type opKind int

const (
	opConditions opKind = iota
	opDetail
	opAdvice
	opPrep
	opCount
)

// Store owns all mutable session state. It is the single writer:
// screens read snapshots and mutate only through the named operations.
// The mutex is held across mutations but never across a gateway call,
// so each mutation applies atomically and a completion that lands late
// still merges safely. Completions replace their slot wholesale, which
// makes duplicate or out-of-order completions last-completed-wins
// rather than interleaved.
type Store struct {
	gw Gateway

	mu           sync.Mutex
	sessionID    uuid.UUID
	screen       Screen
	messages     []ChatMessage
	conditions   []Condition
	selected     *Condition
	advice       string
	prep         *DoctorVisitPrep
	loading      [opCount]bool
	lastError    string
	detailOrigin Screen
	nextMsgID    int64
	observers    []Observer
}

// NewStore creates a session positioned on the welcome screen with the
// initial greeting already in the transcript.
func NewStore(gw Gateway) *Store {
	s := &Store{
		gw:           gw,
		sessionID:    uuid.New(),
		screen:       ScreenWelcome,
		detailOrigin: ScreenConditions,
	}
	s.resetLocked()
	log.Info().Str("session", s.sessionID.String()).Msg("session created")
	return s
}

// SessionID identifies this session in logs and export filenames.
func (s *Store) SessionID() uuid.UUID { return s.sessionID }

// Subscribe registers an observer. Observers are invoked outside the
// store's lock, in registration order, after every applied mutation.
func (s *Store) Subscribe(obs Observer) {
	s.mu.Lock()
	s.observers = append(s.observers, obs)
	s.mu.Unlock()
}

// State returns a copy of the current session state.
func (s *Store) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Screen:            s.screen,
		Messages:          append([]ChatMessage(nil), s.messages...),
		Conditions:        append([]Condition(nil), s.conditions...),
		Advice:            s.advice,
		ConditionsLoading: s.loading[opConditions],
		DetailLoading:     s.loading[opDetail],
		AdviceLoading:     s.loading[opAdvice],
		PrepLoading:       s.loading[opPrep],
		LastError:         s.lastError,
		DetailOrigin:      s.detailOrigin,
	}
	if s.selected != nil {
		c := *s.selected
		snap.SelectedCondition = &c
	}
	if s.prep != nil {
		p := DoctorVisitPrep{
			Questions:    append([]string(nil), s.prep.Questions...),
			Preparation:  append([]string(nil), s.prep.Preparation...),
			Expectations: append([]string(nil), s.prep.Expectations...),
		}
		snap.PrepGuide = &p
	}
	return snap
}

func (s *Store) publish(snap Snapshot) {
	s.mu.Lock()
	observers := append([]Observer(nil), s.observers...)
	s.mu.Unlock()
	for _, obs := range observers {
		obs(snap)
	}
}

func (s *Store) appendMessageLocked(sender Sender, text string) {
	s.messages = append(s.messages, ChatMessage{ID: s.nextMsgID, Text: text, Sender: sender})
	s.nextMsgID++
}

func (s *Store) resetLocked() {
	s.messages = s.messages[:0]
	s.nextMsgID = 1
	s.appendMessageLocked(SenderAI, greeting)
	s.conditions = nil
	s.selected = nil
	s.advice = ""
	s.prep = nil
	s.lastError = ""
	s.detailOrigin = ScreenConditions
	for k := range s.loading {
		s.loading[k] = false
	}
}

// Reset returns all session data to its initial values: one greeting
// message, no conditions, no selection, no advice, no prep guide, no
// error. The static patient history lives elsewhere and is unaffected.
// Callers follow a reset with a navigation to the chat screen; Start
// and Restart do both.
func (s *Store) Reset() {
	s.mu.Lock()
	s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// Start begins a fresh session from the welcome screen.
func (s *Store) Start() { s.resetAndNavigate(EventStart) }

// Restart abandons the current consultation and returns to chat.
// Legal from any screen.
func (s *Store) Restart() { s.resetAndNavigate(EventRestart) }

func (s *Store) resetAndNavigate(ev Event) {
	s.mu.Lock()
	s.resetLocked()
	if next, ok := Next(s.screen, ev, s.detailOrigin); ok {
		s.screen = next
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// ShowHistory opens the patient history list.
func (s *Store) ShowHistory() { s.navigate(EventShowHistory) }

// Back returns to the screen's fixed back target. The detail screen
// returns to whichever screen it was entered from.
func (s *Store) Back() { s.navigate(EventBack) }

func (s *Store) navigate(ev Event) {
	s.mu.Lock()
	next, ok := Next(s.screen, ev, s.detailOrigin)
	if !ok {
		s.mu.Unlock()
		return
	}
	log.Debug().Stringer("from", s.screen).Stringer("event", ev).Stringer("to", next).Msg("screen transition")
	s.screen = next
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
}

// SubmitSymptoms appends the user's message, asks the gateway for
// candidate conditions and, on success, replaces the condition list
// wholesale (deduplicated by name, first occurrence wins) and advances
// to the conditions screen. On failure the chat screen stays put and a
// synthetic AI message narrates the failure so the user can retry.
func (s *Store) SubmitSymptoms(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	s.mu.Lock()
	s.appendMessageLocked(SenderUser, text)
	s.loading[opConditions] = true
	s.lastError = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	conditions, err := s.gw.InferConditions(ctx, text)

	s.mu.Lock()
	s.loading[opConditions] = false
	if err != nil {
		log.Warn().Err(err).Msg("symptom analysis failed")
		s.lastError = err.Error()
		s.appendMessageLocked(SenderAI, fmt.Sprintf("Sorry, I couldn't analyze your symptoms. %s", err.Error()))
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return err
	}
	s.conditions = dedupeByName(conditions)
	if next, ok := Next(s.screen, EventConditionsReady, s.detailOrigin); ok {
		s.screen = next
	}
	log.Info().Int("conditions", len(s.conditions)).Msg("symptom analysis complete")
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

// SelectCondition navigates to the detail screen immediately, before
// any data is fetched, and records origin as the screen to return to.
// If the condition list already holds an entry with the same name and a
// non-empty description, that cached entry is selected and no gateway
// call is made. Otherwise the input condition is shown as-is while the
// description is fetched; a successful response is merged into the
// list entry with that name (or appended when the name is new, e.g. a
// selection projected from history).
func (s *Store) SelectCondition(ctx context.Context, c Condition, origin Screen) error {
	s.mu.Lock()
	s.detailOrigin = origin
	if next, ok := Next(origin, EventSelectCondition, s.detailOrigin); ok {
		s.screen = next
	}

	for i := range s.conditions {
		if s.conditions[i].Name == c.Name && s.conditions[i].Description != "" {
			cached := s.conditions[i]
			s.selected = &cached
			log.Debug().Str("condition", c.Name).Msg("detail cache hit")
			snap := s.snapshotLocked()
			s.mu.Unlock()
			s.publish(snap)
			return nil
		}
	}

	sel := c
	s.selected = &sel
	s.loading[opDetail] = true
	s.lastError = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	desc, err := s.gw.DescribeCondition(ctx, c.Name)

	s.mu.Lock()
	s.loading[opDetail] = false
	if err != nil {
		log.Warn().Err(err).Str("condition", c.Name).Msg("detail fetch failed")
		s.lastError = err.Error()
		if s.selected != nil {
			failed := *s.selected
			failed.Description = fmt.Sprintf("Could not load details: %s", err.Error())
			s.selected = &failed
		}
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return err
	}

	updated := c
	updated.Description = desc
	merged := false
	for i := range s.conditions {
		if s.conditions[i].Name == c.Name {
			s.conditions[i].Description = desc
			updated = s.conditions[i]
			merged = true
			break
		}
	}
	if !merged {
		s.conditions = append(s.conditions, updated)
	}
	s.selected = &updated
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

// SelectHistoryEntry projects a past visit into a condition record and
// opens its detail screen with history as the back target.
func (s *Store) SelectHistoryEntry(ctx context.Context, entry HistoryEntry) error {
	return s.SelectCondition(ctx, entry.AsCondition(), ScreenHistory)
}

// ReviewAdvice fetches general advice for the current condition list.
// A no-op when no conditions are held. On failure the screen does not
// advance and the caller surfaces the returned error as a blocking
// alert, distinct from the inline chat message used for analysis
// failures.
func (s *Store) ReviewAdvice(ctx context.Context) error {
	s.mu.Lock()
	if len(s.conditions) == 0 {
		s.mu.Unlock()
		return nil
	}
	conditions := append([]Condition(nil), s.conditions...)
	s.loading[opAdvice] = true
	s.lastError = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	advice, err := s.gw.GeneralAdvice(ctx, conditions)

	s.mu.Lock()
	s.loading[opAdvice] = false
	if err != nil {
		log.Warn().Err(err).Msg("advice fetch failed")
		s.lastError = err.Error()
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return err
	}
	s.advice = advice
	if next, ok := Next(s.screen, EventAdviceReady, s.detailOrigin); ok {
		s.screen = next
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

// PrepareForVisit fetches the doctor-visit preparation guide for the
// current condition list, replacing any previous guide wholesale.
// Mirrors ReviewAdvice: a no-op without conditions, a blocking alert
// on failure, navigation to the prep screen on success.
func (s *Store) PrepareForVisit(ctx context.Context) error {
	s.mu.Lock()
	if len(s.conditions) == 0 {
		s.mu.Unlock()
		return nil
	}
	conditions := append([]Condition(nil), s.conditions...)
	s.loading[opPrep] = true
	s.lastError = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)

	prep, err := s.gw.VisitPrep(ctx, conditions)

	s.mu.Lock()
	s.loading[opPrep] = false
	if err != nil {
		log.Warn().Err(err).Msg("visit prep fetch failed")
		s.lastError = err.Error()
		snap = s.snapshotLocked()
		s.mu.Unlock()
		s.publish(snap)
		return err
	}
	s.prep = &prep
	if next, ok := Next(s.screen, EventPrepReady, s.detailOrigin); ok {
		s.screen = next
	}
	snap = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snap)
	return nil
}

func dedupeByName(conditions []Condition) []Condition {
	seen := make(map[string]struct{}, len(conditions))
	out := make([]Condition, 0, len(conditions))
	for _, c := range conditions {
		if _, dup := seen[c.Name]; dup {
			continue
		}
		seen[c.Name] = struct{}{}
		out = append(out, c)
	}
	return out
}
