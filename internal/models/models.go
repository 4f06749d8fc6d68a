package models

import "time"

// QuestionKind tags the variant of a generated quiz question.
type QuestionKind string

const (
	QuestionMCQ       QuestionKind = "mcq"
	QuestionTrueFalse QuestionKind = "true/false"
	QuestionFillBlank QuestionKind = "fill-in-the-blanks"
	QuestionOpenEnded QuestionKind = "open-ended"
	// QuestionMixed is only a generation request kind; every produced
	// question carries one of the concrete kinds above.
	QuestionMixed QuestionKind = "mixed"
)

// Question is a single quiz item. Which fields are populated depends on Kind:
// MCQ uses Text, Options and CorrectAnswer; true/false uses Text (the
// statement) and CorrectBool; fill-in-the-blanks uses Text (with a '__'
// blank) and CorrectAnswer; open-ended uses Text only.
type Question struct {
	Kind          QuestionKind `json:"kind"`
	Text          string       `json:"text"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty"`
	// CorrectBool is never omitted: a false answer is an answer.
	CorrectBool bool `json:"correctBool"`
}

// Evaluation is the model's judgement of a user's answer against the
// source text.
type Evaluation struct {
	Score         int    `json:"score"`
	Feedback      string `json:"feedback"`
	CorrectAnswer string `json:"correctAnswer"`
}

// ChatRole identifies the author of a chat turn.
type ChatRole string

const (
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

type ChatTurn struct {
	Role    ChatRole `json:"role"`
	Content string   `json:"content"`
}

// SummaryDepth selects how thorough a generated summary should be.
type SummaryDepth string

const (
	SummaryQuick    SummaryDepth = "quick"
	SummaryMedium   SummaryDepth = "medium"
	SummaryDetailed SummaryDepth = "detailed"
)

// StudentLevel is the five-step performance classification used to
// personalize summaries.
type StudentLevel string

const (
	LevelNeedsImprovement StudentLevel = "Needs Improvement"
	LevelAverage          StudentLevel = "Average"
	LevelGood             StudentLevel = "Good"
	LevelExcellent        StudentLevel = "Excellent"
	LevelAdvancedLearner  StudentLevel = "Advanced Learner"
)

// ClassifyStudent maps a 0-100 score to a StudentLevel. The mapping is total:
// out-of-range scores are a caller error and are not clamped.
func ClassifyStudent(marks int) StudentLevel {
	switch {
	case marks < 50:
		return LevelNeedsImprovement
	case marks < 70:
		return LevelAverage
	case marks < 85:
		return LevelGood
	case marks < 95:
		return LevelExcellent
	default:
		return LevelAdvancedLearner
	}
}

// Priority labels how urgently a subject needs study time.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Subject is a scheduling input: a named topic with a recent quiz score.
type Subject struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// ScheduleEntry is one study block on the weekly plan.
type ScheduleEntry struct {
	Subject         string   `json:"subject"`
	Score           int      `json:"score"`
	Priority        Priority `json:"priority"`
	DurationMinutes int      `json:"durationMinutes"`
	Day             string   `json:"day"`
}

// WeekDays is the canonical scheduling week, in assignment order.
var WeekDays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// StudySession holds everything derived from one uploaded document. It lives
// only in memory: a new upload replaces it and nothing is persisted.
type StudySession struct {
	ID        string
	Name      string
	FullText  string
	Headings  []string
	PageCount int
	Questions []Question
	Chat      []ChatTurn
	CreatedAt time.Time
	UpdatedAt time.Time
}
