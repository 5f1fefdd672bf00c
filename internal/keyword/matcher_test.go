package keyword_test

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/keyword"
)

func testContent() *domain.PageContent {
	return &domain.PageContent{
		URL:         "https://prensa.example.com/nota/9",
		Title:       "Denuncian corrupción en contratos de obras",
		Description: "La fiscalía investiga presuntas irregularidades en la contratación.",
		Headings:    []string{"Denuncian corrupción en contratos de obras"},
		Subheadings: []string{"Los contratos investigados"},
		Paragraphs: []string{
			"La fiscalía abrió investigación formal por corrupción en la adjudicación de contratos de obras públicas del municipio.",
			"Los organismos de control revisan los soportes de pago entregados por la interventoría durante el último trimestre.",
		},
		ArticleText: "La fiscalía abrió investigación formal por corrupción en la adjudicación de contratos. " +
			"Los organismos de control revisan los soportes de pago. Fuentes cercanas hablan de un posible cartel de contratistas.",
	}
}

func TestMatch_LocationsInPriorityOrder(t *testing.T) {
	t.Parallel()

	m := keyword.NewMatcher([]string{"corrupción"})
	matches := m.Match(testContent())

	require.Len(t, matches, 1)
	match := matches[0]
	assert.Equal(t, "corrupción", match.Keyword)
	assert.Equal(t, []string{
		domain.LocationTitle,
		domain.LocationHeading,
		domain.LocationParagraphs,
	}, match.Locations)
}

func TestMatch_BodyOnlyWhenNoParagraphHit(t *testing.T) {
	t.Parallel()

	m := keyword.NewMatcher([]string{"cartel"})
	matches := m.Match(testContent())

	require.Len(t, matches, 1)
	require.Len(t, matches[0].Snippets, 1)
	assert.Equal(t, domain.LocationBody, matches[0].Snippets[0].Location)
	assert.Contains(t, matches[0].Snippets[0].Text, "cartel de contratistas")
}

func TestMatch_ParagraphHitSuppressesBodyScan(t *testing.T) {
	t.Parallel()

	m := keyword.NewMatcher([]string{"fiscalía"})
	matches := m.Match(testContent())

	require.Len(t, matches, 1)
	for _, s := range matches[0].Snippets {
		assert.NotEqual(t, domain.LocationBody, s.Location)
	}
}

func TestMatch_NoOccurrences(t *testing.T) {
	t.Parallel()

	m := keyword.NewMatcher([]string{"extorsión"})
	assert.Empty(t, m.Match(testContent()))
}

func TestMatch_SnippetCap(t *testing.T) {
	t.Parallel()

	content := &domain.PageContent{
		Title:       "alerta en la región",
		Description: "alerta por nuevos hechos",
		Headings:    []string{"alerta uno", "alerta dos", "alerta tres"},
		Subheadings: []string{"alerta cuatro", "alerta cinco"},
		Paragraphs: []string{
			"Se registró una alerta en el primer sector vigilado por las autoridades locales.",
			"Se registró una alerta en el segundo sector vigilado por las autoridades locales.",
		},
	}

	m := keyword.NewMatcher([]string{"alerta"})
	matches := m.Match(content)

	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Snippets, 5)
}

func TestSnippet_WindowAndEllipsis(t *testing.T) {
	t.Parallel()

	prefix := strings.Repeat("relleno ", 40)
	suffix := strings.Repeat("relleno ", 40)
	text := prefix + "objetivo" + " " + suffix

	snippet := keyword.Snippet(text, "objetivo", 120)
	require.NotEmpty(t, snippet)
	assert.True(t, strings.HasPrefix(snippet, "..."))
	assert.True(t, strings.HasSuffix(snippet, "..."))
	assert.Contains(t, snippet, "objetivo")
	assert.LessOrEqual(t, len(snippet), 120*2+len("objetivo")+6)
}

func TestSnippet_ShortTextUntrimmed(t *testing.T) {
	t.Parallel()

	snippet := keyword.Snippet("breve mención del objetivo aquí", "objetivo", 120)
	assert.Equal(t, "breve mención del objetivo aquí", snippet)
}

func TestSnippet_MultibyteWindowStaysValidUTF8(t *testing.T) {
	t.Parallel()

	// No spaces around the keyword, so the window edges land inside
	// unbroken runs of multibyte runes.
	text := strings.Repeat("é", 100) + "objetivo" + strings.Repeat("ñ", 100)

	snippet := keyword.Snippet(text, "objetivo", 15)
	require.NotEmpty(t, snippet)
	assert.True(t, utf8.ValidString(snippet))
	assert.Contains(t, snippet, "objetivo")
	assert.Equal(t, 15, strings.Count(snippet, "é"))
	assert.Equal(t, 15, strings.Count(snippet, "ñ"))
	assert.True(t, strings.HasPrefix(snippet, "..."))
	assert.True(t, strings.HasSuffix(snippet, "..."))
}

func TestSnippet_Absent(t *testing.T) {
	t.Parallel()

	assert.Empty(t, keyword.Snippet("sin coincidencias", "objetivo", 120))
}
