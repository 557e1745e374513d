package extract

import (
	"regexp"
	"strings"
	"unicode"
)

// genericTerms drop a keyword outright when it is nothing but a generic
// label. Checked against the lowercased canonical form.
var genericTerms = map[string]bool{
	"ai": true, "artificial intelligence": true, "machine learning": true,
	"deep learning": true, "llm": true, "genai": true, "generative ai": true,
	"ai model": true, "ai technology": true, "ai service": true,
	"ai platform": true, "ai startup": true, "ai industry": true,
	"chatbot": true, "automation": true, "innovation": true,
	"technology": true, "digital transformation": true, "big data": true,
	"인공지능": true, "생성형 ai": true, "머신러닝": true, "딥러닝": true,
	"챗봇": true, "자동화": true, "혁신": true, "기술": true,
	"디지털 전환": true, "빅데이터": true, "ai 기술": true, "ai 산업": true,
	"ai 서비스": true, "ai 시대": true, "ai 모델": true,
}

// genericWords feed the all-generic-phrase and AI-prefix filters: a phrase
// built only from these cannot name a concrete product or concept.
var genericWords = map[string]bool{
	"ai": true, "model": true, "models": true, "system": true, "systems": true,
	"platform": true, "service": true, "services": true, "solution": true,
	"solutions": true, "technology": true, "tool": true, "tools": true,
	"data": true, "digital": true, "smart": true, "global": true, "new": true,
	"next": true, "era": true, "industry": true, "business": true,
	"market": true, "strategy": true, "innovation": true, "future": true,
	"agent": true, "agents": true, "assistant": true, "startup": true,
	"project": true, "design": true, "development": true, "research": true,
	"generation": true, "intelligence": true, "artificial": true,
	"learning": true, "machine": true, "generative": true, "powered": true,
	"based": true, "driven": true, "enabled": true, "automation": true,
	"인공지능": true, "기술": true, "서비스": true, "플랫폼": true,
	"시스템": true, "솔루션": true, "산업": true, "시장": true, "시대": true,
	"전략": true, "혁신": true, "도입": true, "활용": true, "기반": true,
	"기업": true, "개발": true, "사업": true, "투자": true, "모델": true,
	"에이전트": true, "프로젝트": true, "설계": true, "자동화": true,
	"생성형": true, "디지털": true, "데이터": true, "학습": true,
	"학습용": true, "글로벌": true, "미래": true, "스마트": true,
}

// nonTopicTerms block keywords from domains the pipeline does not cover.
var nonTopicTerms = []string{
	"주식", "증시", "코스피", "코스닥", "부동산", "아파트", "암호화폐",
	"비트코인", "가상화폐", "선거", "대선", "총선", "정당", "야구", "축구",
	"올림픽", "날씨", "연예", "드라마",
	"stock market", "bitcoin", "crypto", "election", "football", "baseball",
	"weather forecast", "real estate",
}

// particles are removed before counting significant words in a phrase.
var particles = map[string]bool{
	"의": true, "를": true, "을": true, "이": true, "가": true, "은": true,
	"는": true, "에": true, "와": true, "과": true, "로": true, "으로": true,
	"및": true, "등": true,
	"the": true, "a": true, "an": true, "of": true, "for": true, "to": true,
	"in": true, "on": true, "and": true, "or": true, "with": true,
}

var (
	aiAgentPrefixPattern   = regexp.MustCompile(`^(?i)ai[ -](agents?|에이전트)(\s|$)`)
	aiGenericPrefixPattern = regexp.MustCompile(`^(?i)ai[ -](기반|모델|투자|학습용|활용|powered|based|driven|enabled)(\s|$)`)
	counterPattern         = regexp.MustCompile(`\d+\s*(종|개|건)(\s|$|[은는이가을를.,!?])`)
	sentenceEndingPattern  = regexp.MustCompile(`(다|요|까|니다|네요|했다|한다|된다|인가|할까)[.!?…]?$`)
	translitPattern        = regexp.MustCompile(`[가-힣][가-힣]*-[A-Za-z]|[A-Za-z][A-Za-z]*-[가-힣]`)
)

// ShouldDrop applies the hard filters in order and reports the first one
// that fires.
func ShouldDrop(text string) (bool, string) {
	canonical := strings.ToLower(strings.TrimSpace(text))
	if canonical == "" {
		return true, "empty"
	}

	if genericTerms[canonical] {
		return true, "generic term"
	}
	if isAllGenericPhrase(canonical) {
		return true, "generic phrase"
	}
	if isGenericAiAgentPhrase(canonical) {
		return true, "generic ai agent phrase"
	}
	if isGenericAiPrefixPhrase(canonical) {
		return true, "generic ai prefix phrase"
	}
	if significantWordCount(canonical) > 4 {
		return true, "too many words"
	}
	if isKoreanHeadline(text) {
		return true, "headline pattern"
	}
	if isNonTopic(canonical) {
		return true, "non-topic"
	}
	if isTransliterationRemnant(text) {
		return true, "transliteration remnant"
	}

	return false, ""
}

// isAllGenericPhrase fires when every word of length >= 3 in a multi-word
// phrase belongs to the generic word set.
func isAllGenericPhrase(canonical string) bool {
	words := strings.Fields(canonical)
	if len(words) < 2 {
		return false
	}
	checked := 0
	for _, word := range words {
		if len([]rune(word)) < 3 {
			continue
		}
		checked++
		if !genericWords[strings.Trim(word, ".,!?")] {
			return false
		}
	}
	return checked > 0
}

// isGenericAiAgentPhrase fires on "AI agent"/"AI 에이전트" phrases whose
// remaining words are all generic.
func isGenericAiAgentPhrase(canonical string) bool {
	match := aiAgentPrefixPattern.FindString(canonical)
	if match == "" {
		return false
	}
	return restIsGeneric(canonical[len(match):])
}

// isGenericAiPrefixPhrase fires on "AI 기반 ..." style phrases whose
// remaining words are all generic.
func isGenericAiPrefixPhrase(canonical string) bool {
	match := aiGenericPrefixPattern.FindString(canonical)
	if match == "" {
		return false
	}
	return restIsGeneric(canonical[len(match):])
}

func restIsGeneric(rest string) bool {
	for _, word := range strings.Fields(rest) {
		if !genericWords[strings.Trim(word, ".,!?")] {
			return false
		}
	}
	return true
}

func significantWordCount(canonical string) int {
	count := 0
	for _, word := range strings.Fields(canonical) {
		if particles[word] {
			continue
		}
		count++
	}
	return count
}

// isKoreanHeadline detects article headlines that slipped through the LLM:
// sentence-final endings, quote marks, and counter expressions like "3종".
func isKoreanHeadline(text string) bool {
	if !containsHangul(text) {
		return false
	}
	if strings.ContainsAny(text, `"'“”‘’…`) {
		return true
	}
	if counterPattern.MatchString(text) {
		return true
	}
	return sentenceEndingPattern.MatchString(strings.TrimSpace(text))
}

func isNonTopic(canonical string) bool {
	for _, term := range nonTopicTerms {
		if strings.Contains(canonical, term) {
			return true
		}
	}
	return false
}

// isTransliterationRemnant catches mixed-script hyphenations left over from
// partial transliteration, e.g. "클로드-Code".
func isTransliterationRemnant(text string) bool {
	return translitPattern.MatchString(text)
}

// trailingVerbs is the fixed set of Korean domain-action words stripped
// before canonical comparison, so "GPT-4o 출시" and "GPT-4o" merge.
var trailingVerbs = map[string]bool{
	"도입": true, "채택": true, "활용": true, "공개": true, "출시": true,
	"발표": true, "확대": true, "추진": true, "적용": true, "업데이트": true,
	"통합": true, "지원": true, "강화": true, "개선": true,
}

// StripTrailingVerb removes one trailing domain-action word, whether
// space-separated or directly attached.
func StripTrailingVerb(text string) string {
	trimmed := strings.TrimSpace(text)

	if idx := strings.LastIndexFunc(trimmed, unicode.IsSpace); idx >= 0 {
		last := strings.TrimSpace(trimmed[idx:])
		if trailingVerbs[last] {
			return strings.TrimSpace(trimmed[:idx])
		}
	}

	for verb := range trailingVerbs {
		if strings.HasSuffix(trimmed, verb) && len(trimmed) > len(verb) {
			rest := strings.TrimSpace(strings.TrimSuffix(trimmed, verb))
			if rest != "" {
				return rest
			}
		}
	}

	return trimmed
}
