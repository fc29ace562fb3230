package querygen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tesseract-hub/research-orchestrator/internal/models"
)

type fakeTranslator struct {
	fail map[string]bool
}

func (f *fakeTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) string {
	if f.fail[targetLang] {
		return ""
	}
	return "[" + targetLang + "-translated] " + text
}

func TestGenerateProducesVariantPerLanguage(t *testing.T) {
	g := NewGenerator(&fakeTranslator{}, "pt")
	failure := models.Failure{
		ID:          1,
		Title:       "Falha de mercado em credito rural",
		Description: "Produtores rurais enfrentam dificuldade de acesso a credito formal",
		SearchHint:  "credito rural, politica publica",
		Pillar:      "financas",
	}

	variants := g.Generate(context.Background(), failure, []string{"pt", "en", "es"})

	baseCount := len(g.variants(failure))
	assert.Equal(t, baseCount*3, len(variants))

	for _, v := range variants {
		if v.Language == "pt" {
			assert.NotContains(t, v.Text, "[pt-translated]")
		} else {
			assert.Contains(t, v.Text, "["+v.Language+"-translated]")
		}
	}
}

func TestGenerateFallsBackOnTranslationFailure(t *testing.T) {
	g := NewGenerator(&fakeTranslator{fail: map[string]bool{"en": true}}, "pt")
	failure := models.Failure{ID: 2, Title: "Falha de mercado em saneamento"}

	variants := g.Generate(context.Background(), failure, []string{"en"})
	require := assert.New(t)
	require.NotEmpty(variants)
	for _, v := range variants {
		require.Contains(v.Text, "[EN]")
	}
}

func TestVariantsCapsAtSix(t *testing.T) {
	g := NewGenerator(&fakeTranslator{}, "pt")
	failure := models.Failure{
		ID:          3,
		Title:       "Falha ampla",
		Description: "descricao bem completa com muitos detalhes adicionais relevantes",
		SearchHint:  "dica de busca, outra dica",
		Pillar:      "saude",
	}
	assert.LessOrEqual(t, len(g.variants(failure)), 6)
}
