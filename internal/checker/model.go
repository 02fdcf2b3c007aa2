package checker

// Screen identifies one of the client's views.
type Screen int

const (
	ScreenWelcome Screen = iota
	ScreenChat
	ScreenConditions
	ScreenHistory
	ScreenConditionDetail
	ScreenAdvice
	ScreenDoctorPrep
)

func (s Screen) String() string {
	switch s {
	case ScreenWelcome:
		return "welcome"
	case ScreenChat:
		return "chat"
	case ScreenConditions:
		return "conditions"
	case ScreenHistory:
		return "history"
	case ScreenConditionDetail:
		return "condition_detail"
	case ScreenAdvice:
		return "advice"
	case ScreenDoctorPrep:
		return "doctor_prep"
	}
	return "unknown"
}

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

// ChatMessage is a single entry in the consultation transcript.
// Messages are immutable once created and only ever appended.
type ChatMessage struct {
	ID     int64  `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// Severity levels the gateway usually returns. Other values are
// kept verbatim rather than rejected.
const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

// Condition is a candidate condition proposed by the reasoning gateway.
// Name is the identity key within a session: two records describe the
// same condition iff their names are equal. Description stays empty
// until a detail fetch succeeds.
type Condition struct {
	Name             string `json:"name"`
	MatchingSymptoms int    `json:"matchingSymptoms"`
	Severity         string `json:"severity"`
	Description      string `json:"description,omitempty"`
}

// HistoryEntry is one past visit from the read-only patient history.
type HistoryEntry struct {
	Date      string `json:"date"`
	Condition string `json:"condition"`
	Severity  string `json:"severity"`
}

// AsCondition projects a history entry into a condition record.
// Matching-symptom counts are not available for past visits.
func (e HistoryEntry) AsCondition() Condition {
	return Condition{
		Name:     e.Condition,
		Severity: e.Severity,
	}
}

// DoctorVisitPrep is the visit preparation guide. It is replaced
// wholesale on every fetch, never merged.
type DoctorVisitPrep struct {
	Questions    []string `json:"questions"`
	Preparation  []string `json:"preparation"`
	Expectations []string `json:"expectations"`
}
