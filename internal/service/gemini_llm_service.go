package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/quizforge/quizforge/config"
	"github.com/quizforge/quizforge/internal/apperr"
	"github.com/quizforge/quizforge/internal/model"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const mcqSystemPrompt = `You are an exam-authoring assistant. Given the text delimited by triple backticks, extract clear multiple-choice questions with 4 choices each (unless fewer are warranted). Output only valid JSON array of objects: [{"stem":"","choices":["","","",""],"correct_index":0,"marks":1,"difficulty":"easy|medium|hard","explanation":"","topic_tags":[]}]. Use neutral language, avoid opinionated content, ensure no PII in questions.`

const feedbackSystemPrompt = `You are an AI tutor. Given the student's attempt data and answer correctness per question, produce a short summary of strengths, top 3 weak areas with actionable tips, and recommended study resources. Output JSON: {"summary":"","weak_topics":[{"topic":"","advice":""}],"improvement_tips":"","recommended_actions":""}.`

const maxSourceTextBytes = 30000

// QuestionCandidate is a raw AI-generated question before validation.
type QuestionCandidate struct {
	Stem         string
	Choices      []string
	CorrectIndex int
	Marks        float64
	Difficulty   string
	TopicTags    []string
	Explanation  string
}

// FeedbackItem is one graded answer as presented to the model.
type FeedbackItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Correct  bool   `json:"correct"`
	Topic    string `json:"topic"`
}

type FeedbackInput struct {
	Score    float64
	MaxScore float64
	Items    []FeedbackItem
}

type LLMService interface {
	GenerateQuestions(ctx context.Context, text string, maxQuestions int) ([]QuestionCandidate, error)
	GenerateFeedback(ctx context.Context, input FeedbackInput) (model.FeedbackPayload, error)
}

type geminiLLMService struct {
	client *genai.GenerativeModel
	cfg    *config.Config
}

func NewGeminiLLMService(cfg *config.Config) (LLMService, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. AI features will degrade to fallbacks.")
		return &geminiLLMService{cfg: cfg, client: nil}, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	m := client.GenerativeModel(cfg.GeminiModel)
	m.SetTemperature(0)
	m.SetMaxOutputTokens(2000)
	m.ResponseMIMEType = "application/json"
	return &geminiLLMService{client: m, cfg: cfg}, nil
}

// rawChoice tolerates both `"choice text"` and `{"text":"choice text"}`
// shapes in model output.
type rawChoice struct {
	Text string
}

func (c *rawChoice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		c.Text = s
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.Text = obj.Text
	return nil
}

type rawCandidate struct {
	Stem         string      `json:"stem"`
	Choices      []rawChoice `json:"choices"`
	CorrectIndex int         `json:"correct_index"`
	Marks        float64     `json:"marks"`
	Difficulty   string      `json:"difficulty"`
	TopicTags    []string    `json:"topic_tags"`
	Explanation  string      `json:"explanation"`
}

func (s *geminiLLMService) GenerateQuestions(ctx context.Context, text string, maxQuestions int) ([]QuestionCandidate, error) {
	if s.client == nil {
		return nil, apperr.Upstream("AI question generation is not configured", nil)
	}

	if len(text) > maxSourceTextBytes {
		text = text[:maxSourceTextBytes]
	}
	prompt := fmt.Sprintf("%s\n\nText:\n```%s```\n\nGenerate %d questions.", mcqSystemPrompt, text, maxQuestions)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, apperr.Upstream("gemini question generation failed", err)
	}

	jsonText := extractJSONArray(responseText(resp))
	var raw []rawCandidate
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		// Some models emit a single object instead of an array.
		var single rawCandidate
		if err2 := json.Unmarshal([]byte(jsonText), &single); err2 != nil {
			log.Error().Err(err).Str("raw", jsonText).Msg("Failed to parse Gemini question response")
			return nil, apperr.Upstream("invalid JSON response from AI", err)
		}
		raw = []rawCandidate{single}
	}

	candidates := make([]QuestionCandidate, 0, len(raw))
	for _, r := range raw {
		choices := make([]string, 0, len(r.Choices))
		for _, c := range r.Choices {
			choices = append(choices, sanitizeText(c.Text))
		}
		if len(choices) > model.MaxChoices {
			choices = choices[:model.MaxChoices]
		}
		difficulty := r.Difficulty
		if difficulty != "easy" && difficulty != "medium" && difficulty != "hard" {
			difficulty = "medium"
		}
		candidates = append(candidates, QuestionCandidate{
			Stem:         sanitizeText(r.Stem),
			Choices:      choices,
			CorrectIndex: r.CorrectIndex,
			Marks:        r.Marks,
			Difficulty:   difficulty,
			TopicTags:    r.TopicTags,
			Explanation:  sanitizeText(r.Explanation),
		})
	}
	return candidates, nil
}

func (s *geminiLLMService) GenerateFeedback(ctx context.Context, input FeedbackInput) (model.FeedbackPayload, error) {
	if s.client == nil {
		return fallbackFeedback(), nil
	}

	correct := 0
	for _, item := range input.Items {
		if item.Correct {
			correct++
		}
	}
	details, err := json.MarshalIndent(input.Items, "", "  ")
	if err != nil {
		return fallbackFeedback(), nil
	}
	prompt := fmt.Sprintf("%s\n\nAttempt Summary:\n- Total Questions: %d\n- Correct: %d\n- Score: %g/%g\n\nAnswer Details:\n%s\n\nGenerate personalized feedback.",
		feedbackSystemPrompt, len(input.Items), correct, input.Score, input.MaxScore, details)

	resp, err := s.client.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		log.Error().Err(err).Msg("Gemini feedback generation failed")
		return fallbackFeedback(), nil
	}

	jsonText := extractJSONObject(responseText(resp))
	payload, err := parseFeedbackPayload(jsonText)
	if err != nil {
		log.Error().Err(err).Str("raw", jsonText).Msg("Failed to parse Gemini feedback response")
		return genericFeedback(), nil
	}
	return payload, nil
}

// parseFeedbackPayload decodes a feedback JSON object, sanitizes every
// free-text field and backfills the ones the model left blank.
func parseFeedbackPayload(jsonText string) (model.FeedbackPayload, error) {
	var raw struct {
		Summary            string            `json:"summary"`
		WeakTopics         []model.WeakTopic `json:"weak_topics"`
		ImprovementTips    string            `json:"improvement_tips"`
		RecommendedActions string            `json:"recommended_actions"`
	}
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return model.FeedbackPayload{}, err
	}

	payload := model.FeedbackPayload{
		Summary:            sanitizeText(raw.Summary),
		WeakTopics:         raw.WeakTopics,
		ImprovementTips:    sanitizeText(raw.ImprovementTips),
		RecommendedActions: sanitizeText(raw.RecommendedActions),
	}
	if payload.WeakTopics == nil {
		payload.WeakTopics = []model.WeakTopic{}
	}
	for i := range payload.WeakTopics {
		payload.WeakTopics[i].Topic = sanitizeText(payload.WeakTopics[i].Topic)
		payload.WeakTopics[i].Advice = sanitizeText(payload.WeakTopics[i].Advice)
	}
	if payload.Summary == "" {
		payload.Summary = "Keep practicing!"
	}
	if payload.ImprovementTips == "" {
		if payload.RecommendedActions != "" {
			payload.ImprovementTips = payload.RecommendedActions
		} else {
			payload.ImprovementTips = "Focus on weak areas."
		}
	}
	if payload.RecommendedActions == "" {
		payload.RecommendedActions = "Continue studying."
	}
	return payload, nil
}

// fallbackFeedback is used whenever AI feedback cannot be produced at all.
// Submission still succeeds with it.
func fallbackFeedback() model.FeedbackPayload {
	return model.FeedbackPayload{
		Summary:            "Your quiz attempt has been completed. Review your answers to improve your performance.",
		WeakTopics:         []model.WeakTopic{},
		ImprovementTips:    "Focus on areas where you lost points. Practice more questions on those topics.",
		RecommendedActions: "Continue studying and attempt more quizzes.",
	}
}

func genericFeedback() model.FeedbackPayload {
	return model.FeedbackPayload{
		Summary:            "Feedback generation completed.",
		WeakTopics:         []model.WeakTopic{},
		ImprovementTips:    "Review your answers and practice more.",
		RecommendedActions: "Review your answers and practice more.",
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
	}
	return sb.String()
}

// extractJSONArray pulls the first JSON array out of text that may be wrapped
// in markdown fences or prose.
func extractJSONArray(raw string) string {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]*>`)
	markdownRe   = regexp.MustCompile("[*_#`]")
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// sanitizeText strips HTML tags and markdown markers from model output and
// caps its length.
func sanitizeText(text string) string {
	text = htmlTagRe.ReplaceAllString(text, "")
	text = markdownRe.ReplaceAllString(text, "")
	text = whitespaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)
	if len(text) > 1000 {
		runes := []rune(text)
		if len(runes) > 1000 {
			runes = runes[:1000]
		}
		text = string(runes)
	}
	return text
}
