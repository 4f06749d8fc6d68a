package services

import (
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"neuromind/internal/models"
)

// Prompt construction for every model task. Each builder is a pure function
// returning the prompt text and, for structured tasks, the schema the
// response must conform to. The schemas double as a contract for the
// validator in validate.go; the model's conformance is never trusted.

const headingsPrompt = `Analyze the provided document text. Identify and list all the main section titles or prominent headings that logically structure the content, similar to a Table of Contents. Exclude page numbers, header/footer text, and very short phrases that are not true section headings. Return the output as a JSON array of strings. Ensure titles are exactly as they appear in the document.`

func buildHeadingsPrompt(docText string) (string, *jsonschema.Definition) {
	var sb strings.Builder
	sb.WriteString(headingsPrompt)
	sb.WriteString("\n\nDocument text:\n")
	sb.WriteString(docText)
	schema := &jsonschema.Definition{
		Type:  jsonschema.Array,
		Items: &jsonschema.Definition{Type: jsonschema.String},
	}
	return sb.String(), schema
}

var summaryDepthInstructions = map[models.SummaryDepth]string{
	models.SummaryQuick:    "Summarize the following text very briefly, highlighting only the main points.",
	models.SummaryMedium:   "Summarize the following text concisely and accurately.",
	models.SummaryDetailed: "Provide a detailed summary of the following text, covering all key aspects and supporting details.",
}

var studentLevelInstructions = map[models.StudentLevel]string{
	models.LevelNeedsImprovement: " Make sure the language is very simple, easy to understand, and avoid complex jargon. Focus on the core concepts.",
	models.LevelAverage:          " Use clear and straightforward language. Explain any potentially difficult terms briefly.",
	models.LevelGood:             " Use standard academic language, providing good detail and clarity.",
	models.LevelExcellent:        " Use precise and possibly technical terminology where appropriate. Assume a strong understanding of the subject matter.",
	models.LevelAdvancedLearner:  " Provide a highly detailed and nuanced summary, using advanced terminology and potentially exploring subtle implications or connections. Assume a deep understanding of the subject.",
}

// buildSummaryPrompt produces a free-text summarization prompt. level may be
// empty for a non-personalized summary; an unknown depth falls back to medium.
func buildSummaryPrompt(text string, depth models.SummaryDepth, level models.StudentLevel) string {
	instruction, ok := summaryDepthInstructions[depth]
	if !ok {
		instruction = summaryDepthInstructions[models.SummaryMedium]
	}
	if clause, ok := studentLevelInstructions[level]; ok {
		instruction += clause
	}
	return instruction + "\n\n" + text
}

func buildQuestionsPrompt(text string, count int, kind models.QuestionKind) (string, *jsonschema.Definition, error) {
	var instruction string
	var schema *jsonschema.Definition

	switch kind {
	case models.QuestionMCQ:
		instruction = fmt.Sprintf(`From the following text, generate exactly %d Multiple Choice Questions. Each question must have a "question" field, an "options" field containing 4 strings, and a "correct_answer" field which is one of the provided options. Provide the output as a JSON array of these objects.`, count)
		schema = &jsonschema.Definition{
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question":       {Type: jsonschema.String},
					"options":        {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
					"correct_answer": {Type: jsonschema.String},
				},
				Required: []string{"question", "options", "correct_answer"},
			},
		}
	case models.QuestionTrueFalse:
		instruction = fmt.Sprintf(`From the following text, generate exactly %d True/False questions. Provide the output as a JSON array of objects, where each object has "statement" and "correct_answer" (boolean: true or false).`, count)
		schema = &jsonschema.Definition{
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"statement":      {Type: jsonschema.String},
					"correct_answer": {Type: jsonschema.Boolean},
				},
				Required: []string{"statement", "correct_answer"},
			},
		}
	case models.QuestionFillBlank:
		instruction = fmt.Sprintf(`From the following text, generate exactly %d fill-in-the-blanks questions. For each question, remove a key word or phrase and replace it with an underscore '__'. Provide the correct answer for the blank. Provide the output as a JSON array of objects, where each object has "question" (with the blank) and "correct_answer".`, count)
		schema = &jsonschema.Definition{
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"question":       {Type: jsonschema.String},
					"correct_answer": {Type: jsonschema.String},
				},
				Required: []string{"question", "correct_answer"},
			},
		}
	case models.QuestionOpenEnded:
		instruction = fmt.Sprintf(`From the following text, generate exactly %d factual, open-ended questions that can be answered directly from the text and encourage critical thinking. Provide the output as a JSON array of strings.`, count)
		schema = &jsonschema.Definition{
			Type:  jsonschema.Array,
			Items: &jsonschema.Definition{Type: jsonschema.String},
		}
	case models.QuestionMixed:
		instruction = fmt.Sprintf(`From the following text, generate a mix of exactly %d factual questions. Include Multiple Choice Questions, True/False questions, Fill-in-the-blanks, and Open-ended questions.
For MCQs, provide "question", "options" (array of 4 strings), and "correct_answer" (one of the options).
For True/False, provide "statement" and "correct_answer" (boolean).
For Fill-in-the-blanks, provide "question" (with blank '__') and "correct_answer".
For Open-ended, provide only "question".
Every question object must have a "type" field set to one of "mcq", "true/false", "fill-in-the-blanks" or "open-ended".
Provide the output as a JSON array of these question objects.`, count)
		schema = &jsonschema.Definition{
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"type":      {Type: jsonschema.String},
					"question":  {Type: jsonschema.String},
					"statement": {Type: jsonschema.String},
					"options":   {Type: jsonschema.Array, Items: &jsonschema.Definition{Type: jsonschema.String}},
				},
				Required: []string{"type"},
			},
		}
	default:
		return "", nil, fmt.Errorf("unknown question kind %q", kind)
	}

	return instruction + "\n\nText:\n" + text, schema, nil
}

// questionForEvaluation renders a question the way the evaluator should see
// it, including options for MCQs so the model can name the right one.
func questionForEvaluation(q models.Question) string {
	switch q.Kind {
	case models.QuestionMCQ:
		return fmt.Sprintf("%s\nOptions: %s", q.Text, strings.Join(q.Options, ", "))
	case models.QuestionTrueFalse:
		return "Statement: " + q.Text
	case models.QuestionFillBlank:
		return "Fill in the blank: " + q.Text
	default:
		return q.Text
	}
}

func buildEvaluationPrompt(originalText string, q models.Question, userAnswer string) (string, *jsonschema.Definition) {
	var sb strings.Builder
	sb.WriteString("You are evaluating a user's answer to a question based on a provided text.\n\n")
	sb.WriteString("Original Text:\n")
	sb.WriteString(originalText)
	sb.WriteString("\n\nQuestion:\n")
	sb.WriteString(questionForEvaluation(q))
	sb.WriteString("\n\nUser's Answer:\n")
	sb.WriteString(userAnswer)
	sb.WriteString(`

Evaluate the user's answer for accuracy and completeness based *only* on the information in the Original Text, never on general knowledge.
Provide your evaluation as a JSON object with the following keys:
- "score": An integer from 0 to 100, indicating how accurate and complete the user's answer is.
- "feedback": A concise textual feedback explaining why the score was given, pointing out strengths and weaknesses, and suggesting improvements.
- "correct_answer": A brief, accurate answer to the question based on the Original Text. For True/False questions, state "True" or "False". For Fill-in-the-blanks, state the missing word or phrase. For MCQ, state the correct option.`)

	schema := &jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"score":          {Type: jsonschema.Integer},
			"feedback":       {Type: jsonschema.String},
			"correct_answer": {Type: jsonschema.String},
		},
		Required: []string{"score", "feedback", "correct_answer"},
	}
	return sb.String(), schema
}

func buildChatPrompt(contextText string, history []models.ChatTurn, userInput string) string {
	var sb strings.Builder
	sb.WriteString("You are a helpful assistant. Your knowledge is based on the following document text. Answer the user's question based on this text and the conversation history.\n\n")
	sb.WriteString("--- Document Context ---\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\n--- Conversation History ---\n")
	for _, turn := range history {
		sb.WriteString(string(turn.Role))
		sb.WriteString(": ")
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("\nUser: ")
	sb.WriteString(userInput)
	sb.WriteString("\nAI:")
	return sb.String()
}
