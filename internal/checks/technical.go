package checks

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// Thresholds for the content and latency checks.
const (
	minContentWords  = 300
	fastResponseMS   = 1500
	slowResponseMS   = 3000
	minInternalLinks = 5
)

// RunTechnical runs the 16 technical SEO checks against the parsed page.
func RunTechnical(doc *html.Node, fetch model.FetchResult) []model.CheckResult {
	cat := model.CategoryTechnical
	var out []model.CheckResult

	// https
	if strings.HasPrefix(strings.ToLower(fetch.FinalURL), "https://") {
		out = append(out, pass("https", cat, "Served over HTTPS").WithImpact(8))
	} else {
		out = append(out, fail("https", cat, model.SeverityError, model.ReasonNotHTTPS,
			"Site is not served over HTTPS").
			WithRecommendation("Serve all pages over HTTPS with a valid certificate").
			WithImpact(8))
	}

	// title_tag
	title := pageTitle(doc)
	switch {
	case title == "":
		out = append(out, fail("title_tag", cat, model.SeverityError, model.ReasonMissingTitle,
			"Missing title tag").
			WithRecommendation("Add a descriptive <title> of 30-60 characters").
			WithImpact(6))
	case len(title) < 10 || len(title) > 70:
		out = append(out, fail("title_tag", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("Title tag is %d characters (30-60 recommended)", len(title))).
			WithImpact(6))
	default:
		out = append(out, pass("title_tag", cat, fmt.Sprintf("Title tag present (%d characters)", len(title))).WithImpact(6))
	}

	// meta_description
	desc, hasDesc := metaContent(doc, "description")
	switch {
	case !hasDesc || strings.TrimSpace(desc) == "":
		out = append(out, fail("meta_description", cat, model.SeverityWarning, model.ReasonMissingMetaDesc,
			"Missing meta description").
			WithRecommendation("Add a meta description of 120-160 characters"))
	case len(desc) < 50 || len(desc) > 200:
		out = append(out, fail("meta_description", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("Meta description is %d characters (120-160 recommended)", len(desc))))
	default:
		out = append(out, pass("meta_description", cat, "Meta description present"))
	}

	// robots_meta
	robotsMeta, _ := metaContent(doc, "robots")
	robotsMeta = strings.ToLower(robotsMeta)
	switch {
	case strings.Contains(robotsMeta, "noindex"):
		out = append(out, fail("robots_meta", cat, model.SeverityError, model.ReasonNoindex,
			"Robots meta tag contains noindex").
			WithRecommendation("Remove the noindex directive so AI systems can index the page").
			WithImpact(6))
	case strings.Contains(robotsMeta, "nofollow"):
		out = append(out, fail("robots_meta", cat, model.SeverityNotice, model.ReasonGeneric,
			"Robots meta tag contains nofollow").
			WithImpact(6))
	default:
		out = append(out, pass("robots_meta", cat, "No restrictive robots meta directives").WithImpact(6))
	}

	// h1_presence
	h1s := findAll(doc, "h1")
	switch {
	case len(h1s) == 0:
		out = append(out, fail("h1_presence", cat, model.SeverityWarning, model.ReasonGeneric,
			"No H1 heading found").
			WithRecommendation("Add exactly one H1 describing the page topic"))
	case len(h1s) > 1:
		out = append(out, fail("h1_presence", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("%d H1 headings found (1 recommended)", len(h1s))))
	default:
		out = append(out, pass("h1_presence", cat, "Single H1 heading present"))
	}

	// heading_hierarchy
	if skipped := skippedHeadingLevel(doc); skipped {
		out = append(out, fail("heading_hierarchy", cat, model.SeverityNotice, model.ReasonGeneric,
			"Heading levels skip (e.g. H1 followed by H3)").WithImpact(3))
	} else {
		out = append(out, pass("heading_hierarchy", cat, "Heading hierarchy is sequential").WithImpact(3))
	}

	// canonical_url
	if hasLinkRel(doc, "canonical") {
		out = append(out, pass("canonical_url", cat, "Canonical URL declared"))
	} else {
		out = append(out, fail("canonical_url", cat, model.SeverityNotice, model.ReasonGeneric,
			"No canonical URL declared").
			WithRecommendation("Add <link rel=\"canonical\"> to avoid duplicate-content ambiguity"))
	}

	// sitemap
	if fetch.SitemapFound {
		out = append(out, pass("sitemap", cat, "sitemap.xml found"))
	} else {
		out = append(out, fail("sitemap", cat, model.SeverityWarning, model.ReasonGeneric,
			"No sitemap.xml found").
			WithRecommendation("Publish a sitemap.xml and reference it from robots.txt"))
	}

	// response_time
	ms := fetch.ResponseTimeMS
	switch {
	case ms <= fastResponseMS:
		out = append(out, pass("response_time", cat, fmt.Sprintf("Responded in %dms", ms)))
	case ms <= slowResponseMS:
		out = append(out, fail("response_time", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("Slow response: %dms", ms)))
	default:
		out = append(out, fail("response_time", cat, model.SeverityWarning, model.ReasonGeneric,
			fmt.Sprintf("Very slow response: %dms", ms)).
			WithRecommendation("Crawlers deprioritize slow origins; aim for under 1.5s"))
	}

	// mobile_viewport
	if _, ok := metaContent(doc, "viewport"); ok {
		out = append(out, pass("mobile_viewport", cat, "Viewport meta tag present").WithImpact(3))
	} else {
		out = append(out, fail("mobile_viewport", cat, model.SeverityNotice, model.ReasonGeneric,
			"No viewport meta tag").WithImpact(3))
	}

	// html_lang
	if lang := htmlLang(doc); lang != "" {
		out = append(out, pass("html_lang", cat, fmt.Sprintf("Language declared: %s", lang)).WithImpact(3))
	} else {
		out = append(out, fail("html_lang", cat, model.SeverityNotice, model.ReasonGeneric,
			"No lang attribute on <html>").WithImpact(3))
	}

	// favicon
	if hasLinkRel(doc, "icon") || hasLinkRel(doc, "shortcut icon") {
		out = append(out, pass("favicon", cat, "Favicon declared").WithImpact(2))
	} else {
		out = append(out, fail("favicon", cat, model.SeverityNotice, model.ReasonGeneric,
			"No favicon declared").WithImpact(2))
	}

	// open_graph
	_, hasOGTitle := metaContent(doc, "og:title")
	_, hasOGDesc := metaContent(doc, "og:description")
	if hasOGTitle && hasOGDesc {
		out = append(out, pass("open_graph", cat, "Open Graph title and description present").WithImpact(3))
	} else {
		out = append(out, fail("open_graph", cat, model.SeverityNotice, model.ReasonGeneric,
			"Incomplete Open Graph tags").WithImpact(3))
	}

	// content_word_count
	words := wordCount(doc)
	if words >= minContentWords {
		out = append(out, pass("content_word_count", cat, fmt.Sprintf("%d words of content", words)))
	} else {
		out = append(out, fail("content_word_count", cat, model.SeverityWarning, model.ReasonThinContent,
			fmt.Sprintf("Thin content: %d words (%d+ recommended)", words, minContentWords)).
			WithRecommendation("Add substantive copy; answer engines skip thin pages"))
	}

	// image_alt_text
	withAlt, totalImgs := imageAltStats(doc)
	switch {
	case totalImgs == 0:
		out = append(out, pass("image_alt_text", cat, "No images to describe").WithImpact(3))
	case withAlt*100 >= totalImgs*80:
		out = append(out, pass("image_alt_text", cat,
			fmt.Sprintf("%d/%d images have alt text", withAlt, totalImgs)).WithImpact(3))
	default:
		out = append(out, fail("image_alt_text", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("Only %d/%d images have alt text", withAlt, totalImgs)).WithImpact(3))
	}

	// internal_links
	internal := internalLinkCount(doc, fetch.FinalURL)
	if internal >= minInternalLinks {
		out = append(out, pass("internal_links", cat, fmt.Sprintf("%d internal links", internal)).WithImpact(3))
	} else {
		out = append(out, fail("internal_links", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("Only %d internal links", internal)).WithImpact(3))
	}

	return out
}

func skippedHeadingLevel(doc *html.Node) bool {
	var levels []int
	walk(doc, func(n *html.Node) {
		if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
			levels = append(levels, int(n.Data[1]-'0'))
		}
	})
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1]+1 {
			return true
		}
	}
	return false
}

func hasLinkRel(doc *html.Node, rel string) bool {
	for _, l := range findAll(doc, "link") {
		if strings.EqualFold(attr(l, "rel"), rel) {
			return true
		}
	}
	return false
}

func htmlLang(doc *html.Node) string {
	for _, h := range findAll(doc, "html") {
		if lang := attr(h, "lang"); lang != "" {
			return lang
		}
	}
	return ""
}

func imageAltStats(doc *html.Node) (withAlt, total int) {
	for _, img := range findAll(doc, "img") {
		total++
		if strings.TrimSpace(attr(img, "alt")) != "" {
			withAlt++
		}
	}
	return withAlt, total
}

func internalLinkCount(doc *html.Node, finalURL string) int {
	host := hostOf(finalURL)
	count := 0
	for _, a := range findAll(doc, "a") {
		href := attr(a, "href")
		if href == "" || strings.HasPrefix(href, "#") {
			continue
		}
		if strings.HasPrefix(href, "/") {
			count++
			continue
		}
		if h := hostOf(href); h != "" && h == host {
			count++
		}
	}
	return count
}

func hostOf(rawURL string) string {
	u := strings.TrimPrefix(strings.TrimPrefix(rawURL, "https://"), "http://")
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}
	return strings.ToLower(u)
}
