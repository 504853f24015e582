package checks

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/federicodeponte/openanalytics/internal/model"
)

const minOutboundCitations = 2

// RunAuthority runs the 3 authority-signal checks. Authority signals feed
// an answer engine's citation confidence, not its ability to crawl.
func RunAuthority(doc *html.Node, finalURL string) []model.CheckResult {
	cat := model.CategoryAuthority
	var out []model.CheckResult

	// contact_info
	if hasContactInfo(doc) {
		out = append(out, pass("contact_info", cat, "Contact information found"))
	} else {
		out = append(out, fail("contact_info", cat, model.SeverityNotice, model.ReasonGeneric,
			"No contact information found").
			WithRecommendation("Expose an email, phone number or contact page"))
	}

	// about_page
	if hasPathLink(doc, "about") {
		out = append(out, pass("about_page", cat, "About page linked"))
	} else {
		out = append(out, fail("about_page", cat, model.SeverityNotice, model.ReasonGeneric,
			"No about page linked").
			WithRecommendation("An about page anchors the entity behind the content"))
	}

	// outbound_citations
	outbound := outboundLinkCount(doc, finalURL)
	if outbound >= minOutboundCitations {
		out = append(out, pass("outbound_citations", cat,
			fmt.Sprintf("%d outbound reference links", outbound)))
	} else {
		out = append(out, fail("outbound_citations", cat, model.SeverityNotice, model.ReasonGeneric,
			fmt.Sprintf("Only %d outbound reference links", outbound)).
			WithRecommendation("Citing external sources signals researched content"))
	}

	return out
}

func hasContactInfo(doc *html.Node) bool {
	for _, a := range findAll(doc, "a") {
		href := strings.ToLower(attr(a, "href"))
		if strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "tel:") {
			return true
		}
	}
	return hasPathLink(doc, "contact")
}

func hasPathLink(doc *html.Node, segment string) bool {
	for _, a := range findAll(doc, "a") {
		href := strings.ToLower(attr(a, "href"))
		if strings.Contains(href, "/"+segment) || strings.HasPrefix(href, segment) {
			return true
		}
	}
	return false
}

func outboundLinkCount(doc *html.Node, finalURL string) int {
	host := hostOf(finalURL)
	count := 0
	for _, a := range findAll(doc, "a") {
		href := attr(a, "href")
		if !strings.HasPrefix(href, "http://") && !strings.HasPrefix(href, "https://") {
			continue
		}
		if h := hostOf(href); h != "" && h != host {
			count++
		}
	}
	return count
}
