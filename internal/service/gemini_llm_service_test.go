package service

import (
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"<b>bold</b> text", "bold text"},
		{"*emphasis* and `code` and #heading", "emphasis and code and heading"},
		{"   too \n\n  much \t whitespace  ", "too much whitespace"},
		{"plain", "plain"},
	}
	for _, tc := range cases {
		if got := sanitizeText(tc.in); got != tc.want {
			t.Fatalf("sanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}

	long := strings.Repeat("a", 1500)
	if got := sanitizeText(long); len(got) != 1000 {
		t.Fatalf("expected 1000-char cap, got %d", len(got))
	}

	// The cap counts runes, not bytes, so multi-byte text stays valid UTF-8.
	long = strings.Repeat("é", 1200)
	got := sanitizeText(long)
	if n := len([]rune(got)); n != 1000 {
		t.Fatalf("expected 1000-rune cap, got %d runes", n)
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation produced invalid UTF-8")
	}
}

func TestParseFeedbackPayload_SanitizesAllFields(t *testing.T) {
	raw := `{
		"summary": "<b>Good</b> effort",
		"weak_topics": [{"topic": "#Algebra", "advice": "Review <i>factoring</i>"}],
		"improvement_tips": "Practice  *daily*",
		"recommended_actions": "` + strings.Repeat("x", 1200) + `"
	}`
	payload, err := parseFeedbackPayload(raw)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if payload.Summary != "Good effort" {
		t.Fatalf("summary not sanitized: %q", payload.Summary)
	}
	if payload.WeakTopics[0].Topic != "Algebra" || payload.WeakTopics[0].Advice != "Review factoring" {
		t.Fatalf("weak topic not sanitized: %+v", payload.WeakTopics[0])
	}
	if payload.ImprovementTips != "Practice daily" {
		t.Fatalf("tips not sanitized: %q", payload.ImprovementTips)
	}
	if len(payload.RecommendedActions) != 1000 {
		t.Fatalf("actions not capped, got %d chars", len(payload.RecommendedActions))
	}
}

func TestParseFeedbackPayload_BackfillsBlankFields(t *testing.T) {
	payload, err := parseFeedbackPayload(`{"summary":"","recommended_actions":"Redo chapter 3"}`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if payload.Summary != "Keep practicing!" {
		t.Fatalf("summary not backfilled: %q", payload.Summary)
	}
	if payload.ImprovementTips != "Redo chapter 3" {
		t.Fatalf("tips should fall back to actions: %q", payload.ImprovementTips)
	}
	if payload.WeakTopics == nil {
		t.Fatalf("weak topics must be an empty list, not nil")
	}

	if _, err := parseFeedbackPayload("not json"); err == nil {
		t.Fatalf("expected error on malformed payload")
	}
}

func TestExtractJSON(t *testing.T) {
	raw := "Here are your questions:\n```json\n[{\"stem\":\"q\"}]\n```\nEnjoy!"
	if got := extractJSONArray(raw); got != `[{"stem":"q"}]` {
		t.Fatalf("unexpected array extraction: %q", got)
	}
	raw = "```json\n{\"summary\":\"ok\"}\n```"
	if got := extractJSONObject(raw); got != `{"summary":"ok"}` {
		t.Fatalf("unexpected object extraction: %q", got)
	}
	// No JSON at all: passthrough, parse fails downstream.
	if got := extractJSONArray("no json here"); got != "no json here" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestRawChoice_AcceptsStringAndObjectShapes(t *testing.T) {
	var c rawChoice
	if err := json.Unmarshal([]byte(`"plain choice"`), &c); err != nil {
		t.Fatalf("string shape failed: %v", err)
	}
	if c.Text != "plain choice" {
		t.Fatalf("unexpected text %q", c.Text)
	}
	if err := json.Unmarshal([]byte(`{"text":"object choice","meta":"x"}`), &c); err != nil {
		t.Fatalf("object shape failed: %v", err)
	}
	if c.Text != "object choice" {
		t.Fatalf("unexpected text %q", c.Text)
	}
}

func TestFallbackFeedback_IsComplete(t *testing.T) {
	payload := fallbackFeedback()
	if payload.Summary == "" || payload.ImprovementTips == "" || payload.RecommendedActions == "" {
		t.Fatalf("fallback payload has empty fields: %+v", payload)
	}
	if payload.WeakTopics == nil {
		t.Fatalf("weak topics must be an empty list, not nil")
	}
}
