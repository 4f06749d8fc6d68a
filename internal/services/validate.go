package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"neuromind/internal/models"
)

// ValidationError reports model output that parsed as JSON but did not match
// the expected shape for the task. Malformed results are discarded entirely;
// no repair is attempted.
type ValidationError struct {
	Task   string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s response: %s", e.Task, e.Reason)
}

func invalid(task, format string, args ...any) *ValidationError {
	return &ValidationError{Task: task, Reason: fmt.Sprintf(format, args...)}
}

const minHeadingChars = 3

// validateHeadings expects a JSON array of strings. Non-string entries and
// very short titles (page numbers, stray fragments) are dropped rather than
// rejected, matching how heading lists are post-filtered everywhere else.
func validateHeadings(raw string) ([]string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, invalid("headings", "not a JSON array: %v", err)
	}
	var headings []string
	for _, item := range items {
		var title string
		if err := json.Unmarshal(item, &title); err != nil {
			continue
		}
		title = strings.TrimSpace(title)
		if len(title) > minHeadingChars {
			headings = append(headings, title)
		}
	}
	return headings, nil
}

// validateQuestions checks a structured question batch against the shape the
// requested kind demands and returns the typed, kind-tagged questions.
func validateQuestions(kind models.QuestionKind, raw string) ([]models.Question, error) {
	task := "questions"
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, invalid(task, "not a JSON array: %v", err)
	}

	questions := make([]models.Question, 0, len(items))
	for i, item := range items {
		itemKind := kind
		fields := map[string]json.RawMessage{}

		if kind == models.QuestionOpenEnded {
			// Open-ended batches are plain strings.
			var text string
			if err := json.Unmarshal(item, &text); err != nil {
				return nil, invalid(task, "item %d: expected a string question: %v", i, err)
			}
			questions = append(questions, models.Question{Kind: models.QuestionOpenEnded, Text: text})
			continue
		}

		if err := json.Unmarshal(item, &fields); err != nil {
			return nil, invalid(task, "item %d: expected an object: %v", i, err)
		}

		if kind == models.QuestionMixed {
			tag, err := stringField(fields, "type")
			if err != nil {
				return nil, invalid(task, "item %d: %v", i, err)
			}
			itemKind = models.QuestionKind(tag)
		}

		q, err := parseQuestionObject(itemKind, fields)
		if err != nil {
			return nil, invalid(task, "item %d: %v", i, err)
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func parseQuestionObject(kind models.QuestionKind, fields map[string]json.RawMessage) (models.Question, error) {
	switch kind {
	case models.QuestionMCQ:
		text, err := stringField(fields, "question")
		if err != nil {
			return models.Question{}, err
		}
		options, err := stringSliceField(fields, "options")
		if err != nil {
			return models.Question{}, err
		}
		if len(options) != 4 {
			return models.Question{}, fmt.Errorf("expected 4 options, got %d", len(options))
		}
		answer, err := stringField(fields, "correct_answer")
		if err != nil {
			return models.Question{}, err
		}
		return models.Question{Kind: models.QuestionMCQ, Text: text, Options: options, CorrectAnswer: answer}, nil

	case models.QuestionTrueFalse:
		text, err := stringField(fields, "statement")
		if err != nil {
			return models.Question{}, err
		}
		answer, err := boolField(fields, "correct_answer")
		if err != nil {
			return models.Question{}, err
		}
		return models.Question{Kind: models.QuestionTrueFalse, Text: text, CorrectBool: answer}, nil

	case models.QuestionFillBlank:
		text, err := stringField(fields, "question")
		if err != nil {
			return models.Question{}, err
		}
		answer, err := stringField(fields, "correct_answer")
		if err != nil {
			return models.Question{}, err
		}
		return models.Question{Kind: models.QuestionFillBlank, Text: text, CorrectAnswer: answer}, nil

	case models.QuestionOpenEnded:
		// Inside a mixed batch open-ended items arrive as tagged objects.
		text, err := stringField(fields, "question")
		if err != nil {
			return models.Question{}, err
		}
		return models.Question{Kind: models.QuestionOpenEnded, Text: text}, nil

	default:
		return models.Question{}, fmt.Errorf("unknown question type %q", kind)
	}
}

// validateEvaluation expects a JSON object with an integer score in [0,100]
// and string feedback/correct_answer fields.
func validateEvaluation(raw string) (*models.Evaluation, error) {
	task := "evaluation"
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, invalid(task, "not a JSON object: %v", err)
	}

	score, err := intField(fields, "score")
	if err != nil {
		return nil, invalid(task, "%v", err)
	}
	if score < 0 || score > 100 {
		return nil, invalid(task, "score %d out of range", score)
	}
	feedback, err := stringField(fields, "feedback")
	if err != nil {
		return nil, invalid(task, "%v", err)
	}
	answer, err := stringField(fields, "correct_answer")
	if err != nil {
		return nil, invalid(task, "%v", err)
	}
	return &models.Evaluation{Score: score, Feedback: feedback, CorrectAnswer: answer}, nil
}

func stringField(fields map[string]json.RawMessage, key string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("missing field %q", key)
	}
	var v string
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	return v, nil
}

func stringSliceField(fields map[string]json.RawMessage, key string) ([]string, error) {
	raw, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("missing field %q", key)
	}
	var v []string
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("field %q is not an array of strings", key)
	}
	return v, nil
}

func boolField(fields map[string]json.RawMessage, key string) (bool, error) {
	raw, ok := fields[key]
	if !ok {
		return false, fmt.Errorf("missing field %q", key)
	}
	var v bool
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, fmt.Errorf("field %q is not a boolean", key)
	}
	return v, nil
}

func intField(fields map[string]json.RawMessage, key string) (int, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("missing field %q", key)
	}
	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("field %q is not an integer", key)
	}
	return v, nil
}
