package extract

import (
	"testing"
)

func TestShouldDrop_GenericTerms(t *testing.T) {
	dropped := []string{"AI", "인공지능", "Machine Learning", "생성형 AI", "챗봇"}
	for _, keyword := range dropped {
		if drop, _ := ShouldDrop(keyword); !drop {
			t.Errorf("Expected %q to be dropped as a generic term", keyword)
		}
	}
}

func TestShouldDrop_GenericAiAgentPhrase(t *testing.T) {
	if drop, reason := ShouldDrop("AI Agent System"); !drop {
		t.Error("Expected 'AI Agent System' to be dropped")
	} else if reason != "generic ai agent phrase" {
		t.Errorf("Expected agent-phrase reason, got %q", reason)
	}

	if drop, _ := ShouldDrop("AI 에이전트 플랫폼"); !drop {
		t.Error("Expected 'AI 에이전트 플랫폼' to be dropped")
	}

	// A concrete product name after the prefix must survive
	if drop, reason := ShouldDrop("AI Agent Claude"); drop {
		t.Errorf("Expected 'AI Agent Claude' to survive, dropped with reason %q", reason)
	}
}

func TestShouldDrop_GenericAiPrefixPhrase(t *testing.T) {
	if drop, reason := ShouldDrop("AI 기반 프로젝트 설계 에이전트"); !drop {
		t.Error("Expected 'AI 기반 프로젝트 설계 에이전트' to be dropped")
	} else if reason != "generic ai prefix phrase" {
		t.Errorf("Expected prefix-phrase reason, got %q", reason)
	}

	if drop, _ := ShouldDrop("AI-powered automation platform"); !drop {
		t.Error("Expected 'AI-powered automation platform' to be dropped")
	}
}

func TestShouldDrop_RetainsProductNames(t *testing.T) {
	retained := []string{"GPT-4o", "Claude 3.5 Sonnet", "Gemini 2.0", "LLaMA 3", "vLLM"}
	for _, keyword := range retained {
		if drop, reason := ShouldDrop(keyword); drop {
			t.Errorf("Expected %q to survive, dropped with reason %q", keyword, reason)
		}
	}
}

func TestShouldDrop_TooManyWords(t *testing.T) {
	if drop, reason := ShouldDrop("OpenAI Google Anthropic Meta Mistral launches"); !drop {
		t.Error("Expected a 6-word phrase to be dropped")
	} else if reason != "too many words" {
		t.Errorf("Expected word-count reason, got %q", reason)
	}

	// Particles do not count toward the limit
	if drop, _ := ShouldDrop("Claude 의 Code"); drop {
		t.Error("Expected particles to be excluded from the word count")
	}
}

func TestShouldDrop_KoreanHeadlines(t *testing.T) {
	headlines := []string{
		"삼성전자가 새 모델을 공개했다",
		"네이버 '하이퍼클로바' 발표",
		"신규 모델 3종 공개",
	}
	for _, headline := range headlines {
		if drop, _ := ShouldDrop(headline); !drop {
			t.Errorf("Expected headline %q to be dropped", headline)
		}
	}
}

func TestShouldDrop_NonTopic(t *testing.T) {
	if drop, reason := ShouldDrop("코스피 전망"); !drop {
		t.Error("Expected stock-market keyword to be dropped")
	} else if reason != "non-topic" {
		t.Errorf("Expected non-topic reason, got %q", reason)
	}

	if drop, _ := ShouldDrop("Bitcoin ETF"); !drop {
		t.Error("Expected crypto keyword to be dropped")
	}
}

func TestShouldDrop_TransliterationRemnant(t *testing.T) {
	if drop, reason := ShouldDrop("클로드-Code"); !drop {
		t.Error("Expected mixed-script hyphenation to be dropped")
	} else if reason != "transliteration remnant" {
		t.Errorf("Expected transliteration reason, got %q", reason)
	}
}

func TestStripTrailingVerb(t *testing.T) {
	cases := map[string]string{
		"GPT-4o 출시":      "GPT-4o",
		"Claude Code 도입": "Claude Code",
		"하이퍼클로바 업데이트":    "하이퍼클로바",
		"GPT-4o":         "GPT-4o",
		"Claude":         "Claude",
	}

	for input, want := range cases {
		if got := StripTrailingVerb(input); got != want {
			t.Errorf("StripTrailingVerb(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestStripTrailingVerb_DoesNotEmptyKeyword(t *testing.T) {
	// A keyword that IS an action word stays untouched
	if got := StripTrailingVerb("출시"); got != "출시" {
		t.Errorf("Expected bare verb to stay, got %q", got)
	}
}
