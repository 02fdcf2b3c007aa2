package checker

// Event is a navigation trigger. Screen changes only ever happen through
// events resolved against the transition table below; there is no
// navigation stack.
type Event int

const (
	EventStart Event = iota
	EventRestart
	EventShowHistory
	EventBack
	EventSelectCondition
	EventConditionsReady
	EventAdviceReady
	EventPrepReady
)

func (e Event) String() string {
	switch e {
	case EventStart:
		return "start"
	case EventRestart:
		return "restart"
	case EventShowHistory:
		return "show_history"
	case EventBack:
		return "back"
	case EventSelectCondition:
		return "select_condition"
	case EventConditionsReady:
		return "conditions_ready"
	case EventAdviceReady:
		return "advice_ready"
	case EventPrepReady:
		return "prep_ready"
	}
	return "unknown"
}

type transitionKey struct {
	screen Screen
	event  Event
}

// Back targets are fixed per screen; the detail screen is the one
// exception and is resolved from the recorded origin in Next.
var transitions = map[transitionKey]Screen{
	{ScreenWelcome, EventStart}:              ScreenChat,
	{ScreenChat, EventShowHistory}:           ScreenHistory,
	{ScreenChat, EventConditionsReady}:       ScreenConditions,
	{ScreenConditions, EventSelectCondition}: ScreenConditionDetail,
	{ScreenConditions, EventAdviceReady}:     ScreenAdvice,
	{ScreenConditions, EventBack}:            ScreenChat,
	{ScreenHistory, EventSelectCondition}:    ScreenConditionDetail,
	{ScreenHistory, EventBack}:               ScreenChat,
	{ScreenAdvice, EventBack}:                ScreenConditions,
	{ScreenAdvice, EventPrepReady}:           ScreenDoctorPrep,
	{ScreenDoctorPrep, EventBack}:            ScreenAdvice,
}

// Next resolves the screen reached from current via ev. The detail
// screen's back target depends on where it was entered from, so callers
// pass the recorded origin. ok is false when ev is not legal on current,
// in which case the active screen must not change.
//
// Next is a pure function: calling it twice with the same arguments
// yields the same result.
func Next(current Screen, ev Event, detailOrigin Screen) (Screen, bool) {
	if ev == EventRestart {
		return ScreenChat, true
	}
	if current == ScreenConditionDetail && ev == EventBack {
		return detailOrigin, true
	}
	next, ok := transitions[transitionKey{current, ev}]
	return next, ok
}

// Capability names a callback a screen is allowed to invoke.
type Capability int

const (
	CapStart Capability = iota
	CapSendMessage
	CapShowHistory
	CapSelectCondition
	CapSelectEntry
	CapReviewAdvice
	CapPrepareForVisit
	CapExport
	CapShare
	CapRestart
	CapBack
)

var screenCapabilities = map[Screen][]Capability{
	ScreenWelcome:         {CapStart},
	ScreenChat:            {CapSendMessage, CapShowHistory},
	ScreenConditions:      {CapSelectCondition, CapReviewAdvice, CapRestart, CapBack},
	ScreenHistory:         {CapSelectEntry, CapBack},
	ScreenConditionDetail: {CapBack, CapExport, CapShare},
	ScreenAdvice:          {CapBack, CapPrepareForVisit, CapRestart},
	ScreenDoctorPrep:      {CapBack, CapRestart},
}

// Capabilities lists the callbacks the given screen may expose, so a
// frontend only ever offers legal actions.
func (s Screen) Capabilities() []Capability {
	caps := screenCapabilities[s]
	out := make([]Capability, len(caps))
	copy(out, caps)
	return out
}

// Allows reports whether the screen may invoke the given callback.
func (s Screen) Allows(c Capability) bool {
	for _, have := range screenCapabilities[s] {
		if have == c {
			return true
		}
	}
	return false
}
