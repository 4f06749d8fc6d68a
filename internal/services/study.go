package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"neuromind/internal/models"
)

// StudyService coordinates PDF extraction, model calls, speech synthesis and
// session state behind each user-facing action. Every method is one
// synchronous call chain; errors are returned to the caller for the current
// action only and leave the session usable.
type StudyService struct {
	pdf      *PDFService
	ai       *AIService
	sessions *SessionService
	tts      *TTSService
}

func NewStudyService(pdf *PDFService, ai *AIService, sessions *SessionService, tts *TTSService) *StudyService {
	return &StudyService{
		pdf:      pdf,
		ai:       ai,
		sessions: sessions,
		tts:      tts,
	}
}

// UploadDocument extracts text from the PDF, detects section headings, and
// opens a fresh session for the document. A heading detection failure is not
// fatal: the session starts with no headings and whole-document operations
// still work.
func (s *StudyService) UploadDocument(ctx context.Context, name string, data []byte) (*models.StudySession, error) {
	text, pages, err := s.pdf.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}

	headings, err := s.ai.ExtractHeadings(ctx, text)
	if err != nil {
		log.Printf("heading detection failed for %q, continuing without sections: %v", name, err)
		headings = nil
	}

	return s.sessions.Create(name, text, headings, pages), nil
}

// Session returns a snapshot of a session's state.
func (s *StudyService) Session(id string) (*models.StudySession, bool) {
	return s.sessions.Get(id)
}

// Reset discards a session entirely.
func (s *StudyService) Reset(id string) bool {
	return s.sessions.Delete(id)
}

// SummaryResult is a generated summary plus optional synthesized audio.
type SummaryResult struct {
	Summary        string
	Classification models.StudentLevel
	Audio          []byte
}

// Summarize generates a summary of the selected section (or the whole
// document) at the requested depth. When marks are supplied the summary is
// personalized for the derived student level. Audio synthesis failure is a
// warning only; the summary is still returned.
func (s *StudyService) Summarize(ctx context.Context, sessionID, topic string, depth models.SummaryDepth, marks *int) (*SummaryResult, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	var level models.StudentLevel
	if marks != nil {
		level = models.ClassifyStudent(*marks)
	}

	text := LocateSection(session.FullText, topic, session.Headings)
	summary, err := s.ai.Summarize(ctx, text, depth, level)
	if err != nil {
		return nil, err
	}

	result := &SummaryResult{Summary: summary, Classification: level}
	if s.tts != nil {
		audio, err := s.tts.Synthesize(ctx, summary)
		if err != nil {
			log.Printf("could not synthesize audio for summary: %v", err)
		} else {
			result.Audio = audio
		}
	}
	return result, nil
}

// GenerateQuiz creates a quiz over the selected section and stores it as the
// session's current quiz, replacing any previous one.
func (s *StudyService) GenerateQuiz(ctx context.Context, sessionID, topic string, count int, kind models.QuestionKind) ([]models.Question, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}

	text := LocateSection(session.FullText, topic, session.Headings)
	questions, err := s.ai.GenerateQuestions(ctx, text, count, kind)
	if err != nil {
		return nil, err
	}

	s.sessions.SetQuestions(sessionID, questions)
	return questions, nil
}

// EvaluateAnswer grades a user's answer to one question against the full
// document text.
func (s *StudyService) EvaluateAnswer(ctx context.Context, sessionID string, q models.Question, answer string) (*models.Evaluation, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if strings.TrimSpace(answer) == "" {
		return nil, fmt.Errorf("no answer provided")
	}
	return s.ai.EvaluateAnswer(ctx, session.FullText, q, answer)
}

// Chat answers a message grounded in the document, appending both the user
// turn and the reply to the session history. A failed model call appends
// nothing.
func (s *StudyService) Chat(ctx context.Context, sessionID, message string) (string, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return "", ErrSessionNotFound
	}

	reply, err := s.ai.Chat(ctx, session.FullText, session.Chat, message)
	if err != nil {
		return "", err
	}

	s.sessions.AppendChat(sessionID,
		models.ChatTurn{Role: models.RoleUser, Content: message},
		models.ChatTurn{Role: models.RoleAssistant, Content: reply},
	)
	return reply, nil
}
