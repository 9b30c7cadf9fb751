// Package rewriter mutates a page's DOM, replacing each matched
// <link rel="stylesheet"> with the markup for its delivery strategy and
// appending the reconciliation script that restores full stylesheets after
// the page has loaded.
package rewriter

import (
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/perfkit/csslim/models"
)

// Decision records the strategy applied to one stylesheet reference.
type Decision struct {
	Src      string
	Strategy models.Strategy
}

// Stats summarizes a rewrite over one document.
type Stats struct {
	Decisions      []Decision
	UnmatchedLinks int
	CrossSite      int
}

// reconciliationScript upgrades every extract-and-defer placeholder to a real
// stylesheet link once the page has loaded, then removes the placeholder.
// Rules that never fired during the observed load become available again.
const reconciliationScript = `<script>window.addEventListener('load',function(){document.querySelectorAll('[data-replaced-url]').forEach(function(el){var link=document.createElement('link');link.rel='stylesheet';link.href=el.getAttribute('data-replaced-url');el.parentNode.insertBefore(link,el);el.parentNode.removeChild(el);});});</script>`

// Rewrite replaces each <link rel="stylesheet"> whose URL path matches a
// classification record with the markup for that record's strategy, and
// appends the reconciliation script to <body>. Links without a matching
// record are left untouched and logged. The document is mutated in place.
func Rewrite(doc *goquery.Document, records []models.ClassificationRecord, logger *slog.Logger) Stats {
	byPath := make(map[string]models.ClassificationRecord, len(records))
	for _, rec := range records {
		byPath[normalizePath(rec.Src)] = rec
	}

	var stats Stats
	doc.Find(`link[rel="stylesheet"]`).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		rec, ok := byPath[normalizePath(href)]
		if !ok {
			logger.Warn("No classification record for stylesheet link", "href", href)
			stats.UnmatchedLinks++
			return
		}
		if !rec.IsFromSameSite {
			// Cross-origin rewriting is out of scope; the link stays as is.
			stats.CrossSite++
			return
		}

		strategy := models.SelectStrategy(rec)
		sel.ReplaceWithHtml(markupFor(rec, strategy))
		stats.Decisions = append(stats.Decisions, Decision{Src: rec.Src, Strategy: strategy})
	})

	doc.Find("body").AppendHtml(reconciliationScript)
	return stats
}

// markupFor renders the replacement markup for one strategy.
func markupFor(rec models.ClassificationRecord, strategy models.Strategy) string {
	src := html.EscapeString(rec.Src)
	switch strategy {
	case models.StrategyInline:
		return fmt.Sprintf("<style>%s</style>", rec.Content)
	case models.StrategyExtractDefer:
		return fmt.Sprintf(`<style data-replaced-url="%s">%s</style>`, src, rec.UsedContent)
	default:
		return fmt.Sprintf(`<link rel="preload" href="%s" as="style" onload="this.onload=null;this.rel='stylesheet'"/><noscript><link rel="stylesheet" href="%s"/></noscript>`, src, src)
	}
}

// normalizePath reduces a stylesheet reference to its leading-slash path
// component so absolute URLs and root-relative hrefs compare equal.
func normalizePath(ref string) string {
	p := ref
	if u, err := url.Parse(ref); err == nil && u.Path != "" {
		p = u.Path
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
