package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"neuromind/internal/models"
)

var (
	// ErrAIUnavailable is returned when the OpenAI integration is not configured.
	ErrAIUnavailable = errors.New("openai integration is not configured")
)

// completionClient is the slice of the OpenAI client the service needs.
// Tests substitute a fake.
type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// AIService is the single point of contact with the language model. It owns
// prompt assembly (prompts.go) and response shape validation (validate.go);
// callers only see typed results.
type AIService struct {
	client completionClient
	model  string
}

func NewAIService(apiKey string, model string, apiEndpoint string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	cfg := openai.DefaultConfig(apiKey)
	if apiEndpoint != "" {
		cfg.BaseURL = apiEndpoint
	}
	return &AIService{client: openai.NewClientWithConfig(cfg), model: model}
}

func newAIServiceWithClient(client completionClient, model string) *AIService {
	return &AIService{client: client, model: model}
}

func (s *AIService) disabled() bool {
	return s.client == nil || s.model == ""
}

const (
	generateTimeout      = 2 * time.Minute
	maxCompletionTokens  = 4096
	structuredTemp       = 0.3
	freeTemp             = 0.4
	systemPromptAssist   = "You are a study assistant that helps students understand their course documents."
	systemPromptAnalyzer = "You are an analyst that extracts precisely structured data from study documents."
)

// generate performs a free-text completion.
func (s *AIService) generate(ctx context.Context, system, prompt string) (string, error) {
	return s.complete(ctx, system, prompt, nil, "")
}

// generateStructured performs a completion constrained by a JSON schema. The
// raw JSON text is returned; callers validate and decode it themselves since
// schema conformance is not guaranteed by the service.
func (s *AIService) generateStructured(ctx context.Context, system, prompt, schemaName string, schema *jsonschema.Definition) (string, error) {
	return s.complete(ctx, system, prompt, schema, schemaName)
}

func (s *AIService) complete(ctx context.Context, system, prompt string, schema *jsonschema.Definition, schemaName string) (string, error) {
	if s.disabled() {
		return "", ErrAIUnavailable
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: freeTemp,
		MaxTokens:   maxCompletionTokens,
	}
	if schema != nil {
		req.Temperature = structuredTemp
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   schemaName,
				Schema: schema,
			},
		}
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("request completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractHeadings asks the model for the document's table-of-contents style
// section titles, in document order.
func (s *AIService) ExtractHeadings(ctx context.Context, docText string) ([]string, error) {
	prompt, schema := buildHeadingsPrompt(docText)
	raw, err := s.generateStructured(ctx, systemPromptAnalyzer, prompt, "document_headings", schema)
	if err != nil {
		return nil, fmt.Errorf("extract headings: %w", err)
	}
	headings, err := validateHeadings(extractJSON(raw))
	if err != nil {
		log.Printf("discarding malformed headings response: %v\nraw response:\n%s", err, raw)
		return nil, err
	}
	return headings, nil
}

// Summarize produces a summary at the requested depth, optionally adapted to
// a student level (empty level means no personalization).
func (s *AIService) Summarize(ctx context.Context, text string, depth models.SummaryDepth, level models.StudentLevel) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text provided for summarization")
	}
	summary, err := s.generate(ctx, systemPromptAssist, buildSummaryPrompt(text, depth, level))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(summary), nil
}

// GenerateQuestions produces a batch of quiz questions of the given kind.
// Every returned question is tagged with its concrete kind, including items
// from a mixed batch.
func (s *AIService) GenerateQuestions(ctx context.Context, text string, count int, kind models.QuestionKind) ([]models.Question, error) {
	prompt, schema, err := buildQuestionsPrompt(text, count, kind)
	if err != nil {
		return nil, err
	}
	raw, err := s.generateStructured(ctx, systemPromptAnalyzer, prompt, "quiz_questions", schema)
	if err != nil {
		return nil, fmt.Errorf("generate questions: %w", err)
	}
	questions, err := validateQuestions(kind, extractJSON(raw))
	if err != nil {
		log.Printf("discarding malformed quiz response: %v\nraw response:\n%s", err, raw)
		return nil, err
	}
	return questions, nil
}

// EvaluateAnswer grades a user's answer against the source text only.
func (s *AIService) EvaluateAnswer(ctx context.Context, originalText string, q models.Question, userAnswer string) (*models.Evaluation, error) {
	prompt, schema := buildEvaluationPrompt(originalText, q, userAnswer)
	raw, err := s.generateStructured(ctx, systemPromptAnalyzer, prompt, "answer_evaluation", schema)
	if err != nil {
		return nil, fmt.Errorf("evaluate answer: %w", err)
	}
	eval, err := validateEvaluation(extractJSON(raw))
	if err != nil {
		log.Printf("discarding malformed evaluation response: %v\nraw response:\n%s", err, raw)
		return nil, err
	}
	return eval, nil
}

// Chat answers a user turn grounded in the document text and the prior
// conversation.
func (s *AIService) Chat(ctx context.Context, contextText string, history []models.ChatTurn, userInput string) (string, error) {
	reply, err := s.generate(ctx, systemPromptAssist, buildChatPrompt(contextText, history, userInput))
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	return strings.TrimSpace(reply), nil
}

// extractJSON removes markdown code block formatting if present and extracts
// the outermost JSON value (object or array).
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Remove markdown code blocks like ```json ... ``` or ``` ... ```
	if strings.HasPrefix(content, "```") {
		start := 3
		// Skip the language identifier line, if any.
		if newlineIdx := strings.Index(content[start:], "\n"); newlineIdx != -1 {
			start += newlineIdx + 1
		}
		if endIdx := strings.Index(content[start:], "```"); endIdx != -1 {
			content = content[start : start+endIdx]
		} else {
			content = content[start:]
		}
	}

	content = strings.TrimSpace(content)

	// Trim any prose around the outermost object or array.
	objStart := strings.Index(content, "{")
	arrStart := strings.Index(content, "[")
	switch {
	case arrStart != -1 && (objStart == -1 || arrStart < objStart):
		if endIdx := strings.LastIndex(content, "]"); endIdx > arrStart {
			content = content[arrStart : endIdx+1]
		}
	case objStart != -1:
		if endIdx := strings.LastIndex(content, "}"); endIdx > objStart {
			content = content[objStart : endIdx+1]
		}
	}

	return strings.TrimSpace(content)
}
