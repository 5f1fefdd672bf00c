package links_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigialabs/vigia/internal/domain"
	"github.com/vigialabs/vigia/internal/links"
)

func TestClassify_FiltersAndAnnotates(t *testing.T) {
	t.Parallel()

	c := links.NewClassifier([]string{"corrupción", "contratos"})

	anchors := []domain.CrawlLink{
		{Href: "https://prensa.example.com/corrupcion-alcaldia", Text: "Caso de corrupción"},
		{Href: "https://prensa.example.com/deportes", Text: "Resultados del fin de semana"},
		{Href: "https://prensa.example.com/deportes", Text: "duplicado"},
		{Href: "javascript:void(0)", Text: "Compartir"},
		{Href: "#comentarios", Text: "Comentarios"},
		{Href: "/nota-relativa", Text: "Relativa"},
		{Href: "mailto:redaccion@example.com", Text: "Escríbanos"},
		{Href: "https://prensa.example.com/licitacion", Title: "Contratos bajo revisión"},
	}

	out := c.Classify(anchors)
	require.Len(t, out, 3)

	assert.True(t, out[0].HasKeyword)
	assert.Equal(t, []string{"corrupción"}, out[0].Keywords)

	assert.False(t, out[1].HasKeyword)
	assert.Empty(t, out[1].Keywords)

	assert.True(t, out[2].HasKeyword)
	assert.Equal(t, []string{"contratos"}, out[2].Keywords)
}

func TestSelect_KeywordLinksFirst(t *testing.T) {
	t.Parallel()

	in := []domain.CrawlLink{
		{Href: "https://a.example.com/1"},
		{Href: "https://a.example.com/2", HasKeyword: true},
		{Href: "https://a.example.com/3"},
		{Href: "https://a.example.com/4", HasKeyword: true},
	}

	out := links.Select(in, 3)
	require.Len(t, out, 3)
	assert.Equal(t, "https://a.example.com/2", out[0].Href)
	assert.Equal(t, "https://a.example.com/4", out[1].Href)
	assert.Equal(t, "https://a.example.com/1", out[2].Href)
}

func TestSelect_NoLimit(t *testing.T) {
	t.Parallel()

	in := []domain.CrawlLink{
		{Href: "https://a.example.com/1"},
		{Href: "https://a.example.com/2", HasKeyword: true},
	}

	out := links.Select(in, 0)
	assert.Len(t, out, 2)
}
