package extract

import (
	"strings"
	"testing"
)

func TestSlugify_ASCII(t *testing.T) {
	cases := map[string]string{
		"GPT-4o":            "gpt_4o",
		"Claude Code":       "claude_code",
		"LLaMA 3.1":         "llama_3_1",
		"vLLM":              "vllm",
		"Hugging Face Hub":  "hugging_face_hub",
		"  Mistral Large  ": "mistral_large",
	}

	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSlugify_Deterministic(t *testing.T) {
	inputs := []string{"GPT-4o", "하이퍼클로바", "Claude 3.5 Sonnet", "네이버 AI"}
	for _, input := range inputs {
		first := Slugify(input)
		second := Slugify(input)
		if first != second {
			t.Errorf("Slugify(%q) is not deterministic: %q != %q", input, first, second)
		}
	}
}

func TestSlugify_HangulUsesHashForm(t *testing.T) {
	slug := Slugify("하이퍼클로바")
	if !strings.HasPrefix(slug, "kw_") {
		t.Errorf("Expected Hangul slug to use kw_ prefix, got %q", slug)
	}

	other := Slugify("뤼튼")
	if other == slug {
		t.Errorf("Distinct Hangul inputs produced the same slug %q", slug)
	}
}

func TestSlugify_MixedScriptUsesHashForm(t *testing.T) {
	slug := Slugify("네이버 AI")
	if !strings.HasPrefix(slug, "kw_") {
		t.Errorf("Expected Hangul-bearing slug to use kw_ prefix, got %q", slug)
	}
}

func TestSlugify_TooFewAlphanumerics(t *testing.T) {
	// A single alphanumeric cannot form a readable slug
	slug := Slugify("R!")
	if !strings.HasPrefix(slug, "kw_") {
		t.Errorf("Expected hash fallback for %q, got %q", "R!", slug)
	}
}

func TestSlugify_CaseInsensitive(t *testing.T) {
	if Slugify("GPT-4o") != Slugify("gpt-4O") {
		t.Error("Expected slugs to be case-insensitive")
	}
}
