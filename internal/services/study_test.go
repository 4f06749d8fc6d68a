package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"neuromind/internal/models"
)

// newStudyFixture builds a StudyService around a fake model client and a
// pre-seeded session, skipping PDF extraction.
func newStudyFixture(fake *fakeCompletionClient) (*StudyService, *models.StudySession) {
	sessions := NewSessionService()
	session := sessions.Create("notes.pdf", "Intro\nhello world\nChapter2\nbye", []string{"Intro", "Chapter2"}, 2)
	svc := NewStudyService(NewPDFService(), newAIServiceWithClient(fake, "test-model"), sessions, nil)
	return svc, session
}

func TestStudySummarize(t *testing.T) {
	fake := &fakeCompletionClient{content: "A summary."}
	svc, session := newStudyFixture(fake)

	marks := 92
	result, err := svc.Summarize(context.Background(), session.ID, "Intro", models.SummaryQuick, &marks)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if result.Summary != "A summary." {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Classification != models.LevelExcellent {
		t.Errorf("classification = %q, want Excellent", result.Classification)
	}
	if result.Audio != nil {
		t.Error("no audio expected without a TTS service")
	}

	// The located section, not the whole document, is what gets summarized.
	prompt := fake.lastReq.Messages[len(fake.lastReq.Messages)-1].Content
	if !strings.Contains(prompt, "hello world") || strings.Contains(prompt, "bye") {
		t.Errorf("prompt should cover only the Intro section: %q", prompt)
	}
}

func TestStudySummarizeWithoutMarks(t *testing.T) {
	fake := &fakeCompletionClient{content: "A summary."}
	svc, session := newStudyFixture(fake)

	result, err := svc.Summarize(context.Background(), session.ID, EntireDocument, models.SummaryMedium, nil)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if result.Classification != "" {
		t.Errorf("classification should be empty without marks, got %q", result.Classification)
	}
}

func TestStudySummarizeTTSFailureStillReturnsSummary(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "synthesis down", http.StatusInternalServerError)
	}))
	defer ts.Close()

	fake := &fakeCompletionClient{content: "A summary."}
	sessions := NewSessionService()
	session := sessions.Create("notes.pdf", "some document text", nil, 1)
	svc := NewStudyService(NewPDFService(), newAIServiceWithClient(fake, "test-model"), sessions, NewTTSService(ts.URL, "en"))

	result, err := svc.Summarize(context.Background(), session.ID, "", models.SummaryMedium, nil)
	if err != nil {
		t.Fatalf("Summarize should succeed despite a synthesis failure: %v", err)
	}
	if result.Summary != "A summary." {
		t.Errorf("summary = %q", result.Summary)
	}
	if result.Audio != nil {
		t.Errorf("audio should be omitted when synthesis fails, got %d bytes", len(result.Audio))
	}
}

func TestStudySummarizeWithAudio(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("mp3-bytes"))
	}))
	defer ts.Close()

	fake := &fakeCompletionClient{content: "A summary."}
	sessions := NewSessionService()
	session := sessions.Create("notes.pdf", "some document text", nil, 1)
	svc := NewStudyService(NewPDFService(), newAIServiceWithClient(fake, "test-model"), sessions, NewTTSService(ts.URL, "en"))

	result, err := svc.Summarize(context.Background(), session.ID, "", models.SummaryMedium, nil)
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if string(result.Audio) != "mp3-bytes" {
		t.Errorf("audio = %q", result.Audio)
	}
}

func TestStudySummarizeUnknownSession(t *testing.T) {
	svc, _ := newStudyFixture(&fakeCompletionClient{content: "x"})
	_, err := svc.Summarize(context.Background(), "missing", "", models.SummaryMedium, nil)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStudyGenerateQuizStoresQuestions(t *testing.T) {
	fake := &fakeCompletionClient{content: `["Why hello?", "Why world?"]`}
	svc, session := newStudyFixture(fake)

	questions, err := svc.GenerateQuiz(context.Background(), session.ID, "Intro", 2, models.QuestionOpenEnded)
	if err != nil {
		t.Fatalf("GenerateQuiz: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(questions))
	}

	stored, _ := svc.Session(session.ID)
	if len(stored.Questions) != 2 || stored.Questions[0].Text != "Why hello?" {
		t.Errorf("quiz not stored on session: %+v", stored.Questions)
	}
}

func TestStudyGenerateQuizFailureLeavesSessionUntouched(t *testing.T) {
	fake := &fakeCompletionClient{content: `[{"question": "broken"}]`}
	svc, session := newStudyFixture(fake)

	_, err := svc.GenerateQuiz(context.Background(), session.ID, "", 2, models.QuestionMCQ)
	if err == nil {
		t.Fatal("expected error for malformed quiz response")
	}
	stored, _ := svc.Session(session.ID)
	if len(stored.Questions) != 0 {
		t.Errorf("failed quiz should not be stored: %+v", stored.Questions)
	}
}

func TestStudyEvaluateAnswer(t *testing.T) {
	fake := &fakeCompletionClient{content: `{"score": 90, "feedback": "Good.", "correct_answer": "hello world"}`}
	svc, session := newStudyFixture(fake)

	q := models.Question{Kind: models.QuestionOpenEnded, Text: "What does the intro say?"}
	eval, err := svc.EvaluateAnswer(context.Background(), session.ID, q, "hello world")
	if err != nil {
		t.Fatalf("EvaluateAnswer: %v", err)
	}
	if eval.Score != 90 {
		t.Errorf("score = %d", eval.Score)
	}

	// Grading always sees the full document text.
	prompt := fake.lastReq.Messages[len(fake.lastReq.Messages)-1].Content
	if !strings.Contains(prompt, "bye") {
		t.Errorf("evaluation prompt should carry the full text: %q", prompt)
	}
}

func TestStudyEvaluateAnswerRejectsEmpty(t *testing.T) {
	svc, session := newStudyFixture(&fakeCompletionClient{content: "x"})
	q := models.Question{Kind: models.QuestionOpenEnded, Text: "Why?"}
	if _, err := svc.EvaluateAnswer(context.Background(), session.ID, q, "   "); err == nil {
		t.Fatal("expected error for empty answer")
	}
}

func TestStudyChatAppendsHistory(t *testing.T) {
	fake := &fakeCompletionClient{content: "The intro greets the world."}
	svc, session := newStudyFixture(fake)

	reply, err := svc.Chat(context.Background(), session.ID, "What is the intro about?")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if reply != "The intro greets the world." {
		t.Errorf("reply = %q", reply)
	}

	stored, _ := svc.Session(session.ID)
	if len(stored.Chat) != 2 {
		t.Fatalf("expected 2 chat turns, got %d", len(stored.Chat))
	}
	if stored.Chat[0].Role != models.RoleUser || stored.Chat[1].Role != models.RoleAssistant {
		t.Errorf("chat roles wrong: %+v", stored.Chat)
	}
}

func TestStudyChatFailureAppendsNothing(t *testing.T) {
	fake := &fakeCompletionClient{err: errors.New("boom")}
	svc, session := newStudyFixture(fake)

	if _, err := svc.Chat(context.Background(), session.ID, "hi"); err == nil {
		t.Fatal("expected error from failed model call")
	}
	stored, _ := svc.Session(session.ID)
	if len(stored.Chat) != 0 {
		t.Errorf("failed chat should append nothing: %+v", stored.Chat)
	}
}

func TestStudyReset(t *testing.T) {
	svc, session := newStudyFixture(&fakeCompletionClient{content: "x"})
	if !svc.Reset(session.ID) {
		t.Fatal("Reset returned false for existing session")
	}
	if _, ok := svc.Session(session.ID); ok {
		t.Error("session still present after reset")
	}
}
