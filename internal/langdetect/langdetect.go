// Package langdetect implements the keyword-frequency language
// detection heuristic from app/utils/language_detector.py: cheap,
// process-local, good enough to catch gross contamination and
// untranslated passthrough without calling out to an LLM.
package langdetect

import (
	"regexp"
	"strings"
)

// ConfidenceFloor is the minimum confidence below which a detection is
// reported as Unknown rather than trusted.
const ConfidenceFloor = 0.10

// ValidationThreshold is the confidence a detected language must clear
// before it is treated as a genuine contamination signal (used both by
// the translation validator and the worker's cross-language guard).
const ValidationThreshold = 0.15

// MinWords is the minimum word count below which detection is not
// attempted at all.
const MinWords = 3

const Unknown = "unknown"

var wordRe = regexp.MustCompile(`[\p{L}]+`)

var keywordSets = map[string]map[string]bool{
	"pt": setOf("de", "para", "com", "uma", "que", "nao", "sim", "politica", "governo", "brasil", "sobre", "como", "mais", "este", "esta", "fazer", "ser", "estar", "foi", "sao"),
	"en": setOf("the", "and", "for", "with", "that", "this", "from", "about", "policy", "government", "how", "what", "where", "which", "have", "has", "been", "are", "was"),
	"es": setOf("de", "para", "con", "que", "esta", "politica", "gobierno", "sobre", "como", "mas", "este", "hacer", "ser", "estar", "fue", "son", "pero", "tambien"),
	"fr": setOf("de", "pour", "avec", "que", "cette", "politique", "gouvernement", "sur", "comment", "plus", "faire", "etre", "sont", "mais", "aussi"),
	"de": setOf("der", "die", "das", "und", "fur", "mit", "dass", "politik", "regierung", "uber", "wie", "mehr", "diese", "sein", "sind", "aber", "auch"),
	"it": setOf("di", "per", "con", "che", "questa", "politica", "governo", "sopra", "come", "piu", "fare", "essere", "sono", "ma", "anche"),
}

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Detect returns the best-guess language code and a confidence in
// [0,1]. Below MinWords, or below ConfidenceFloor, the language is
// reported as Unknown.
func Detect(text string) (language string, confidence float64) {
	words := wordRe.FindAllString(strings.ToLower(text), -1)
	if len(words) < MinWords {
		return Unknown, 0
	}

	scores := make(map[string]int, len(keywordSets))
	for _, w := range words {
		for lang, set := range keywordSets {
			if set[w] {
				scores[lang]++
			}
		}
	}

	bestLang := Unknown
	bestScore := 0
	for lang, score := range scores {
		if score > bestScore {
			bestLang, bestScore = lang, score
		}
	}

	if bestScore == 0 {
		return Unknown, 0
	}

	confidence = float64(bestScore) / float64(len(words))
	if confidence < ConfidenceFloor {
		return Unknown, confidence
	}
	return bestLang, confidence
}

// ValidatesAs reports whether text, believed to be in expectedLang, is
// detected as expectedLang (or detection is Unknown, which is treated
// as "not contradicted"). threshold is the minimum detection confidence
// required before a mismatch is trusted as contamination; callers pass
// ValidationThreshold unless they have a specific reason not to.
func ValidatesAs(text, expectedLang string, threshold float64) bool {
	if len([]rune(strings.TrimSpace(text))) == 0 {
		return true
	}
	detected, confidence := Detect(text)
	if detected == Unknown {
		return true
	}
	if confidence < threshold {
		return true
	}
	return detected == expectedLang
}
