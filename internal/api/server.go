package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"neuromind/internal/models"
	"neuromind/internal/services"
)

const maxMultipartMemory = 8 << 20 // 8 MB

const (
	maxQuizQuestions     = 10
	defaultQuizQuestions = 3
)

type Server struct {
	mux            *http.ServeMux
	study          *services.StudyService
	maxUploadBytes int64
}

func NewServer(study *services.StudyService, maxUploadBytes int64) *Server {
	s := &Server{
		mux:            http.NewServeMux(),
		study:          study,
		maxUploadBytes: maxUploadBytes,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/documents", s.handleUploadDocument)
	s.mux.HandleFunc("/api/documents/", s.handleDocumentActions)
	s.mux.HandleFunc("/api/schedule", s.handleSchedule)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUploadDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read uploaded file")
		return
	}

	session, err := s.study.UploadDocument(r.Context(), header.Filename, data)
	if err != nil {
		s.writeActionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionPayload(session))
}

func (s *Server) handleDocumentActions(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/documents/")
	path = strings.Trim(path, "/")
	parts := strings.Split(path, "/")
	if parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	sessionID := parts[0]

	switch {
	case len(parts) == 1:
		s.handleSession(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "summary":
		s.handleSummary(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "quiz":
		s.handleQuiz(w, r, sessionID)
	case len(parts) == 3 && parts[1] == "quiz" && parts[2] == "evaluate":
		s.handleEvaluate(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "chat":
		s.handleChat(w, r, sessionID)
	default:
		http.NotFound(w, r)
	}
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	switch r.Method {
	case http.MethodGet:
		session, ok := s.study.Session(sessionID)
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		payload := sessionPayload(session)
		payload["questions"] = session.Questions
		payload["chat"] = session.Chat
		writeJSON(w, http.StatusOK, payload)
	case http.MethodDelete:
		if !s.study.Reset(sessionID) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

type summaryRequest struct {
	Topic string `json:"topic"`
	Depth string `json:"depth"`
	Marks *int   `json:"marks"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload summaryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	depth, err := parseDepth(payload.Depth)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.Marks != nil && (*payload.Marks < 0 || *payload.Marks > 100) {
		writeError(w, http.StatusBadRequest, "marks must be between 0 and 100")
		return
	}

	result, err := s.study.Summarize(r.Context(), sessionID, payload.Topic, depth, payload.Marks)
	if err != nil {
		s.writeActionError(w, err)
		return
	}

	out := map[string]any{"summary": result.Summary}
	if result.Classification != "" {
		out["classification"] = result.Classification
	}
	if len(result.Audio) > 0 {
		out["audio"] = base64.StdEncoding.EncodeToString(result.Audio)
		out["audioFormat"] = "audio/mp3"
	}
	writeJSON(w, http.StatusOK, out)
}

type quizRequest struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
	Kind  string `json:"kind"`
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload quizRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	kind, err := parseQuestionKind(payload.Kind)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count := payload.Count
	if count == 0 {
		count = defaultQuizQuestions
	}
	if count < 1 || count > maxQuizQuestions {
		writeError(w, http.StatusBadRequest, "count must be between 1 and 10")
		return
	}

	questions, err := s.study.GenerateQuiz(r.Context(), sessionID, payload.Topic, count, kind)
	if err != nil {
		s.writeActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"questions": questions})
}

type evaluateRequest struct {
	Question models.Question `json:"question"`
	Answer   string          `json:"answer"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(payload.Question.Text) == "" {
		writeError(w, http.StatusBadRequest, "question text is required")
		return
	}
	if strings.TrimSpace(payload.Answer) == "" {
		writeError(w, http.StatusBadRequest, "answer is required")
		return
	}

	evaluation, err := s.study.EvaluateAnswer(r.Context(), sessionID, payload.Question, payload.Answer)
	if err != nil {
		s.writeActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"score":         evaluation.Score,
		"feedback":      evaluation.Feedback,
		"correctAnswer": evaluation.CorrectAnswer,
	})
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload chatRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := s.study.Chat(r.Context(), sessionID, payload.Message)
	if err != nil {
		s.writeActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

type scheduleRequest struct {
	Subjects []models.Subject `json:"subjects"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	hasNamed := false
	for _, subject := range payload.Subjects {
		if subject.Score < 0 || subject.Score > 100 {
			writeError(w, http.StatusBadRequest, "scores must be between 0 and 100")
			return
		}
		if strings.TrimSpace(subject.Name) != "" {
			hasNamed = true
		}
	}
	if !hasNamed {
		writeError(w, http.StatusBadRequest, "at least one subject name is required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"days":     models.WeekDays,
		"schedule": services.BuildWeeklySchedule(payload.Subjects),
	})
}

func sessionPayload(session *models.StudySession) map[string]any {
	headings := session.Headings
	if headings == nil {
		headings = []string{}
	}
	return map[string]any{
		"sessionId":  session.ID,
		"name":       session.Name,
		"pages":      session.PageCount,
		"headings":   headings,
		"characters": len(session.FullText),
		"createdAt":  session.CreatedAt.Format(time.RFC3339),
	}
}

// writeActionError converts a failed action into the single user-facing
// message for that action. Nothing propagates past it.
func (s *Server) writeActionError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, services.ErrUnreadablePDF):
		writeError(w, http.StatusUnprocessableEntity, "the uploaded file could not be read as a PDF")
	case errors.Is(err, services.ErrNoDocumentText):
		writeError(w, http.StatusUnprocessableEntity, "could not extract any text from the document")
	case errors.Is(err, services.ErrAIUnavailable):
		writeError(w, http.StatusServiceUnavailable, "the AI integration is not configured")
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadGateway, "could not generate content, please try again")
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

func parseDepth(raw string) (models.SummaryDepth, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "medium":
		return models.SummaryMedium, nil
	case "quick":
		return models.SummaryQuick, nil
	case "detailed":
		return models.SummaryDetailed, nil
	default:
		return "", errors.New("depth must be 'quick', 'medium' or 'detailed'")
	}
}

func parseQuestionKind(raw string) (models.QuestionKind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "mcq":
		return models.QuestionMCQ, nil
	case "true/false", "truefalse":
		return models.QuestionTrueFalse, nil
	case "fill-in-the-blanks", "fillblank":
		return models.QuestionFillBlank, nil
	case "", "open-ended", "openended":
		return models.QuestionOpenEnded, nil
	case "mixed":
		return models.QuestionMixed, nil
	default:
		return "", errors.New("kind must be 'mcq', 'true/false', 'fill-in-the-blanks', 'open-ended' or 'mixed'")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
