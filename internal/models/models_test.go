package models

import (
	"encoding/json"
	"testing"
)

func TestQuestionFalseAnswerSurvivesJSON(t *testing.T) {
	q := Question{Kind: QuestionTrueFalse, Text: "Go predates Rust.", CorrectBool: false}
	data, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	answer, ok := fields["correctBool"]
	if !ok {
		t.Fatalf("correctBool missing from %s", data)
	}
	if answer != false {
		t.Errorf("correctBool = %v, want false", answer)
	}
}

func TestClassifyStudent(t *testing.T) {
	tests := []struct {
		marks int
		want  StudentLevel
	}{
		{0, LevelNeedsImprovement},
		{45, LevelNeedsImprovement},
		{49, LevelNeedsImprovement},
		{50, LevelAverage},
		{69, LevelAverage},
		{70, LevelGood},
		{84, LevelGood},
		{85, LevelExcellent},
		{92, LevelExcellent},
		{94, LevelExcellent},
		{95, LevelAdvancedLearner},
		{97, LevelAdvancedLearner},
		{100, LevelAdvancedLearner},
	}
	for _, tc := range tests {
		if got := ClassifyStudent(tc.marks); got != tc.want {
			t.Errorf("ClassifyStudent(%d) = %q, want %q", tc.marks, got, tc.want)
		}
	}
}
