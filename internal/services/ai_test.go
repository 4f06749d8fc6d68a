package services

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"neuromind/internal/models"
)

// fakeCompletionClient returns canned content and records the last request.
type fakeCompletionClient struct {
	content string
	err     error
	lastReq openai.ChatCompletionRequest
}

func (f *fakeCompletionClient) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestAIServiceDisabled(t *testing.T) {
	svc := NewAIService("", "gpt-4o-mini", "")
	_, err := svc.Summarize(context.Background(), "text", models.SummaryMedium, "")
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
	_, err = svc.ExtractHeadings(context.Background(), "text")
	if !errors.Is(err, ErrAIUnavailable) {
		t.Fatalf("expected ErrAIUnavailable, got %v", err)
	}
}

func TestExtractHeadingsParsesFencedJSON(t *testing.T) {
	fake := &fakeCompletionClient{content: "```json\n[\"Intro\", \"Methods\"]\n```"}
	svc := newAIServiceWithClient(fake, "test-model")

	headings, err := svc.ExtractHeadings(context.Background(), "doc text")
	if err != nil {
		t.Fatalf("ExtractHeadings: %v", err)
	}
	if len(headings) != 2 || headings[0] != "Intro" || headings[1] != "Methods" {
		t.Errorf("headings = %v", headings)
	}
	if fake.lastReq.ResponseFormat == nil {
		t.Fatal("structured request should carry a response format")
	}
	if fake.lastReq.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONSchema {
		t.Errorf("response format type = %v", fake.lastReq.ResponseFormat.Type)
	}
	if fake.lastReq.Model != "test-model" {
		t.Errorf("model = %q", fake.lastReq.Model)
	}
}

func TestGenerateQuestionsMalformedResponse(t *testing.T) {
	fake := &fakeCompletionClient{content: `[{"question": "q"}]`}
	svc := newAIServiceWithClient(fake, "test-model")

	_, err := svc.GenerateQuestions(context.Background(), "doc text", 3, models.QuestionMCQ)
	if err == nil {
		t.Fatal("expected error for malformed question batch")
	}
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
}

func TestGenerateQuestionsUnknownKindSkipsRequest(t *testing.T) {
	fake := &fakeCompletionClient{content: "[]"}
	svc := newAIServiceWithClient(fake, "test-model")

	_, err := svc.GenerateQuestions(context.Background(), "text", 3, models.QuestionKind("riddle"))
	if err == nil {
		t.Fatal("expected error for unknown kind")
	}
	if fake.lastReq.Model != "" {
		t.Error("no request should be made for an unknown kind")
	}
}

func TestEvaluateAnswer(t *testing.T) {
	fake := &fakeCompletionClient{content: `{"score": 70, "feedback": "Decent.", "correct_answer": "Gophers"}`}
	svc := newAIServiceWithClient(fake, "test-model")

	q := models.Question{Kind: models.QuestionOpenEnded, Text: "What lives in burrows?"}
	eval, err := svc.EvaluateAnswer(context.Background(), "Gophers live in burrows.", q, "moles")
	if err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}
	if eval.Score != 70 || eval.CorrectAnswer != "Gophers" {
		t.Errorf("unexpected evaluation: %+v", eval)
	}
}

func TestSummarizeTrimsAndIsFreeText(t *testing.T) {
	fake := &fakeCompletionClient{content: "  A short summary.\n"}
	svc := newAIServiceWithClient(fake, "test-model")

	summary, err := svc.Summarize(context.Background(), "long text", models.SummaryQuick, models.LevelGood)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "A short summary." {
		t.Errorf("summary = %q", summary)
	}
	if fake.lastReq.ResponseFormat != nil {
		t.Error("free-text summary should not set a response format")
	}
}

func TestSummarizeRejectsEmptyText(t *testing.T) {
	svc := newAIServiceWithClient(&fakeCompletionClient{content: "x"}, "test-model")
	if _, err := svc.Summarize(context.Background(), "   ", models.SummaryMedium, ""); err == nil {
		t.Fatal("expected error for blank input text")
	}
}

func TestChatPropagatesClientError(t *testing.T) {
	fake := &fakeCompletionClient{err: errors.New("boom")}
	svc := newAIServiceWithClient(fake, "test-model")
	if _, err := svc.Chat(context.Background(), "doc", nil, "hi"); err == nil {
		t.Fatal("expected error when the client fails")
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a": 1}`, `{"a": 1}`},
		{"fenced with language", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"fenced bare", "```\n[1, 2]\n```", `[1, 2]`},
		{"prose around array", "Here you go:\n[1, 2]\nHope that helps!", `[1, 2]`},
		{"prose around object", "Result: {\"ok\": true}.", `{"ok": true}`},
		{"array before object", `[{"a": 1}]`, `[{"a": 1}]`},
		{"unterminated fence", "```json\n{\"a\": 1}", `{"a": 1}`},
		{"no json at all", "just words", "just words"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractJSON(tc.in); got != tc.want {
				t.Errorf("extractJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
