package sources

import (
	"strings"
	"testing"
)

func TestDomain(t *testing.T) {
	cases := map[string]string{
		"https://www.example.com/path":        "example.com",
		"https://News.Example.com/article":    "news.example.com",
		"http://example.com":                  "example.com",
		"https://www.openai.com/blog/gpt-4o":  "openai.com",
		"not a url at all ::":                 "",
		"/relative/path":                      "",
	}

	for input, want := range cases {
		if got := Domain(input); got != want {
			t.Errorf("Domain(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestTruncateSummary(t *testing.T) {
	short := "A short summary."
	if got := TruncateSummary(short); got != short {
		t.Errorf("Expected short summary unchanged, got %q", got)
	}

	long := strings.Repeat("가나다라", 300)
	got := TruncateSummary(long)
	if len([]rune(got)) > 500 {
		t.Errorf("Expected summary capped at 500 runes, got %d", len([]rune(got)))
	}

	if got := TruncateSummary("  padded  "); got != "padded" {
		t.Errorf("Expected whitespace trimmed, got %q", got)
	}
}

func TestParseTier(t *testing.T) {
	cases := map[string]Tier{
		"P0_CURATED":  TierP0Curated,
		"P0_RELEASES": TierP0Releases,
		"P1_CONTEXT":  TierP1Context,
		"P2_RAW":      TierP2Raw,
		"COMMUNITY":   TierCommunity,
		"SOMETHING":   TierCommunity,
	}

	for label, want := range cases {
		if got := ParseTier(label); got != want {
			t.Errorf("ParseTier(%q) = %v, want %v", label, got, want)
		}
	}
}

func TestTierRoundTrip(t *testing.T) {
	tiers := []Tier{TierP0Curated, TierP0Releases, TierP1Context, TierP2Raw, TierCommunity}
	for _, tier := range tiers {
		if got := ParseTier(tier.String()); got != tier {
			t.Errorf("ParseTier(%v.String()) = %v", tier, got)
		}
	}
}

func TestTierBetter(t *testing.T) {
	if got := TierP2Raw.Better(TierP0Curated); got != TierP0Curated {
		t.Errorf("Expected P0_CURATED to win, got %v", got)
	}
	if got := TierP0Curated.Better(TierCommunity); got != TierP0Curated {
		t.Errorf("Expected P0_CURATED to be kept, got %v", got)
	}
}

func TestContainsHangul(t *testing.T) {
	if !ContainsHangul("조코딩 JoCoding") {
		t.Error("Expected Hangul to be detected")
	}
	if ContainsHangul("OpenAI") {
		t.Error("Expected no Hangul in ASCII name")
	}
}
