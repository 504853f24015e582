package checks

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// orgSchemaFields are the Organization properties the completeness
// percentage is computed over.
var orgSchemaFields = []string{"name", "url", "logo", "description", "sameAs", "contactPoint", "address"}

// RunStructuredData runs the 6 schema.org checks against the parsed page.
func RunStructuredData(doc *html.Node) []model.CheckResult {
	cat := model.CategoryStructuredData
	blocks := jsonLDBlocks(doc)
	types := schemaTypes(blocks)

	var out []model.CheckResult

	// json_ld_presence
	if len(blocks) > 0 {
		out = append(out, pass("json_ld_presence", cat, fmt.Sprintf("%d JSON-LD blocks found", len(blocks))))
	} else {
		out = append(out, fail("json_ld_presence", cat, model.SeverityWarning, model.ReasonGeneric,
			"No JSON-LD structured data found").
			WithRecommendation("Embed schema.org JSON-LD so AI systems can parse entities"))
	}

	// org_schema_completeness
	org := findSchemaOfType(blocks, "Organization")
	if org == nil {
		out = append(out, fail("org_schema_completeness", cat, model.SeverityError, model.ReasonNoOrgSchema,
			"No Organization schema found").
			WithRecommendation("Add an Organization JSON-LD block with name, url, logo, description and sameAs").
			WithImpact(8))
	} else {
		present := 0
		for _, f := range orgSchemaFields {
			if v, ok := org[f]; ok && !emptyValue(v) {
				present++
			}
		}
		pct := present * 100 / len(orgSchemaFields)
		if pct >= 70 {
			out = append(out, pass("org_schema_completeness", cat,
				fmt.Sprintf("Organization schema %d%% complete", pct)).
				WithCompleteness(pct).
				WithImpact(8))
		} else {
			out = append(out, fail("org_schema_completeness", cat, model.SeverityWarning, model.ReasonIncompleteOrgSchema,
				fmt.Sprintf("Organization schema only %d%% complete", pct)).
				WithCompleteness(pct).
				WithRecommendation("Fill in the missing Organization properties").
				WithImpact(8))
		}
	}

	// sameas_links
	if org != nil {
		if v, ok := org["sameAs"]; ok && !emptyValue(v) {
			out = append(out, pass("sameas_links", cat, "sameAs links present for knowledge-graph linking"))
		} else {
			out = append(out, fail("sameas_links", cat, model.SeverityWarning, model.ReasonNoSameAs,
				"Organization schema has no sameAs links").
				WithRecommendation("Link social and directory profiles via sameAs"))
		}
	} else {
		out = append(out, fail("sameas_links", cat, model.SeverityWarning, model.ReasonNoSameAs,
			"No sameAs links (no Organization schema)"))
	}

	// website_schema
	if types["WebSite"] {
		out = append(out, pass("website_schema", cat, "WebSite schema present").WithImpact(3))
	} else {
		out = append(out, fail("website_schema", cat, model.SeverityNotice, model.ReasonGeneric,
			"No WebSite schema").WithImpact(3))
	}

	// breadcrumb_schema
	if types["BreadcrumbList"] {
		out = append(out, pass("breadcrumb_schema", cat, "BreadcrumbList schema present").WithImpact(2))
	} else {
		out = append(out, fail("breadcrumb_schema", cat, model.SeverityNotice, model.ReasonGeneric,
			"No BreadcrumbList schema").WithImpact(2))
	}

	// faq_schema
	if types["FAQPage"] {
		out = append(out, pass("faq_schema", cat, "FAQPage schema present").WithImpact(2))
	} else {
		out = append(out, fail("faq_schema", cat, model.SeverityNotice, model.ReasonGeneric,
			"No FAQPage schema").
			WithRecommendation("FAQ markup maps directly onto answer-engine responses").
			WithImpact(2))
	}

	return out
}

// jsonLDBlocks extracts and decodes every application/ld+json script.
// Malformed blocks are skipped, and @graph containers are flattened.
func jsonLDBlocks(doc *html.Node) []map[string]any {
	var blocks []map[string]any
	for _, s := range findAll(doc, "script") {
		if !strings.EqualFold(attr(s, "type"), "application/ld+json") {
			continue
		}
		raw := strings.TrimSpace(textContent(s))
		if raw == "" {
			continue
		}

		var single map[string]any
		if err := json.Unmarshal([]byte(raw), &single); err == nil {
			blocks = append(blocks, flattenGraph(single)...)
			continue
		}
		var many []map[string]any
		if err := json.Unmarshal([]byte(raw), &many); err == nil {
			for _, m := range many {
				blocks = append(blocks, flattenGraph(m)...)
			}
		}
	}
	return blocks
}

func flattenGraph(block map[string]any) []map[string]any {
	graph, ok := block["@graph"].([]any)
	if !ok {
		return []map[string]any{block}
	}
	out := []map[string]any{block}
	for _, item := range graph {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

func schemaTypes(blocks []map[string]any) map[string]bool {
	types := make(map[string]bool)
	for _, b := range blocks {
		switch t := b["@type"].(type) {
		case string:
			types[t] = true
		case []any:
			for _, v := range t {
				if s, ok := v.(string); ok {
					types[s] = true
				}
			}
		}
	}
	return types
}

func findSchemaOfType(blocks []map[string]any, schemaType string) map[string]any {
	for _, b := range blocks {
		switch t := b["@type"].(type) {
		case string:
			if t == schemaType {
				return b
			}
		case []any:
			for _, v := range t {
				if s, ok := v.(string); ok && s == schemaType {
					return b
				}
			}
		}
	}
	return nil
}

func emptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
