package extract

// Rules holds the ordered selector lists driving extraction. The defaults
// cover common news layouts (including Spanish-language press markup); a
// source-specific override can replace either list.
type Rules struct {
	// Containers is the ordered list of "likely article container"
	// selectors. The first match whose text exceeds the minimum wins.
	Containers []string

	// Boilerplate is the ordered list of selectors marking regions to
	// exclude from extraction: navigation, ads, related content, and
	// similar page furniture.
	Boilerplate []string
}

// DefaultRules returns the built-in extraction rules.
func DefaultRules() Rules {
	return Rules{
		Containers: []string{
			"article.article-content",
			"article .article-body",
			"article .post-content",
			"article .entry-content",
			"article .news-body",
			"article .story-body",
			"article .content-body",
			".article-content",
			".article-body",
			".post-content",
			".entry-content",
			".news-body",
			".news-content",
			".story-body",
			".story-content",
			".content-body",
			".nota-contenido",
			".cuerpo-nota",
			".texto-nota",
			"[itemprop='articleBody']",
			"[data-component='text-block']",
			"article > div.content",
			"article",
			"main article",
			"[role='article']",
			"main [role='main']",
			"main .content",
			"#article-body",
			"#story-body",
			"#content-body",
		},
		Boilerplate: []string{
			"nav", "header", "footer", "aside",
			".nav", ".menu", ".navigation", ".navbar",
			".sidebar", ".side-bar", ".lateral",
			".related", ".relacionadas", ".mas-noticias", ".more-news",
			".recommended", ".recomendadas", ".sugeridas",
			".comments", ".comentarios",
			".social", ".share", ".compartir",
			".advertisement", ".ad", ".ads", ".publicidad",
			".footer", ".header",
			".breadcrumb", ".breadcrumbs",
			".tags", ".etiquetas",
			".author-bio", ".autor",
			".newsletter", ".suscripcion",
			"[role='navigation']",
			"[role='complementary']",
			"[role='banner']",
			"[role='contentinfo']",
			".widget", ".module-related",
		},
	}
}
