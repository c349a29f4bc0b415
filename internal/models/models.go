package models

// RoundType selects which interview flow and grading rubric apply.
type RoundType string

const (
	RoundBehavioral   RoundType = "behavioral"
	RoundCoding       RoundType = "coding"
	RoundDSA          RoundType = "dsa"
	RoundSystemDesign RoundType = "system-design"
)

// contains all valid round types (in lowercase)
var ValidRoundTypes = map[RoundType]bool{
	RoundBehavioral:   true,
	RoundCoding:       true,
	RoundDSA:          true,
	RoundSystemDesign: true,
}

func ValidRoundTypesList() []string {
	return []string{"behavioral", "coding", "dsa", "system-design"}
}

func (r RoundType) Valid() bool {
	return ValidRoundTypes[r]
}

// IsCoding reports whether answers for this round are source code and
// carry a language tag.
func (r RoundType) IsCoding() bool {
	return r == RoundCoding || r == RoundDSA
}

// Question is immutable once fetched from the backend.
type Question struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Feedback is the graded result for one submitted answer.
type Feedback struct {
	Score       int    `json:"score"`
	Explanation string `json:"explanation"`
}

// AnswerSlot is the per-question mutable record of answer + feedback.
// Language is only set for coding rounds. Feedback stays nil until the
// first successful submit and is replaced wholesale on re-submit.
type AnswerSlot struct {
	RawAnswer string
	Language  string
	Feedback  *Feedback
}

// Phase classifies where the session stands for the current question.
type Phase int

const (
	PhaseAnswering Phase = iota
	PhaseReviewing
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseAnswering:
		return "answering"
	case PhaseReviewing:
		return "reviewing"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Bundle is the finalized output of one interview session, handed to the
// results view when the session completes. Answers are formatted (coding
// answers carry their language header) and Feedbacks holds only the
// slots that were actually graded.
type Bundle struct {
	InterviewID string
	JobTitle    string
	Round       RoundType
	Questions   []Question
	Answers     []string
	Feedbacks   []Feedback
	ElapsedSecs int
}
