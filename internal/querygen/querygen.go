// Package querygen implements the Query Generator (C7): up to six
// query variants per Failure, each expanded across the configured
// target languages. Grounded on app/utils/idiomas.py's
// gerar_variacoes_query/gerar_queries_multilingues, with the real C2
// translation service in place of idiomas.py's dictionary-substitution
// stub.
package querygen

import (
	"context"
	"fmt"
	"strings"

	"github.com/tesseract-hub/research-orchestrator/internal/models"
)

// Translator is the subset of C2 the generator needs.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) string
}

type Variant struct {
	Text           string
	Language       string
	VariationIndex int
}

type Generator struct {
	translator   Translator
	sourceLang   string
}

func NewGenerator(translator Translator, sourceLang string) *Generator {
	return &Generator{translator: translator, sourceLang: sourceLang}
}

// variants builds up to six base-language query variants from a
// Failure, the same shapes named in spec §4.7.
func (g *Generator) variants(f models.Failure) []string {
	var out []string

	if f.Title != "" {
		out = append(out, f.Title)
	}

	if f.Title != "" && f.Description != "" {
		leadTokens := strings.Fields(f.Description)
		if len(leadTokens) > 12 {
			leadTokens = leadTokens[:12]
		}
		out = append(out, fmt.Sprintf("%s %s", f.Title, strings.Join(leadTokens, " ")))
	}

	if f.SearchHint != "" {
		out = append(out, f.SearchHint)
	}

	if f.Title != "" {
		out = append(out, fmt.Sprintf("how to solve %s", f.Title))
	}

	if keyword := firstKeyword(f.SearchHint); keyword != "" {
		out = append(out, fmt.Sprintf("policy for %s", keyword))
	}

	if f.Pillar != "" && f.Title != "" {
		out = append(out, fmt.Sprintf("%s %s case study", f.Pillar, f.Title))
	}

	if len(out) > 6 {
		out = out[:6]
	}
	return out
}

func firstKeyword(hint string) string {
	parts := strings.Split(hint, ",")
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// Generate expands a Failure into one Variant per (base variant,
// target language) pair. When translation fails for a pair, the
// original text is emitted with a bracket language-tag prefix so
// queueing is not blocked - expected to be rare. When such a query
// still reads as Portuguese, the worker translates it before searching.
func (g *Generator) Generate(ctx context.Context, f models.Failure, targetLanguages []string) []Variant {
	baseVariants := g.variants(f)

	var out []Variant
	for idx, base := range baseVariants {
		for _, lang := range targetLanguages {
			text := base
			if lang != g.sourceLang {
				translated := g.translator.Translate(ctx, base, g.sourceLang, lang)
				if translated != "" {
					text = translated
				} else {
					text = fmt.Sprintf("[%s] %s", strings.ToUpper(lang), base)
				}
			}
			out = append(out, Variant{Text: text, Language: lang, VariationIndex: idx})
		}
	}
	return out
}
