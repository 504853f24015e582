package checks

import (
	"fmt"
	"strings"

	"github.com/federicodeponte/openanalytics/internal/model"
)

// Crawler describes one AI crawler whose robots.txt access is checked.
type Crawler struct {
	Check       string
	UserAgent   string
	Name        string
	Owner       string
	ScoreImpact int
}

// AICrawlers is the fixed set of crawlers inspected by the tier 0 gate.
// GPTBot carries the highest weight: ChatGPT has the largest answer-engine
// audience.
var AICrawlers = []Crawler{
	{Check: "gptbot_access", UserAgent: "gptbot", Name: "GPTBot", Owner: "OpenAI (ChatGPT)", ScoreImpact: 8},
	{Check: "claudebot_access", UserAgent: "claudebot", Name: "ClaudeBot", Owner: "Anthropic (Claude)", ScoreImpact: 5},
	{Check: "perplexitybot_access", UserAgent: "perplexitybot", Name: "PerplexityBot", Owner: "Perplexity AI", ScoreImpact: 5},
	{Check: "ccbot_access", UserAgent: "ccbot", Name: "CCBot", Owner: "Common Crawl (trains many LLMs)", ScoreImpact: 4},
}

// RunAICrawler evaluates robots.txt access for each AI crawler. An empty
// robots.txt means everything is allowed.
func RunAICrawler(robotsTxt string) []model.CheckResult {
	cat := model.CategoryAICrawler
	rules := parseRobots(robotsTxt)

	var out []model.CheckResult
	for _, crawler := range AICrawlers {
		if rules.blocked(crawler.UserAgent) {
			out = append(out, fail(crawler.Check, cat, model.SeverityError, model.ReasonCrawlerBlocked,
				fmt.Sprintf("%s is blocked in robots.txt", crawler.Name)).
				WithRecommendation(fmt.Sprintf("Allow %s (%s) in robots.txt", crawler.Name, crawler.Owner)).
				WithImpact(crawler.ScoreImpact))
		} else {
			out = append(out, pass(crawler.Check, cat,
				fmt.Sprintf("%s can access the site", crawler.Name)).
				WithImpact(crawler.ScoreImpact))
		}
	}
	return out
}

// robotsRules holds per-agent disallow/allow prefixes from robots.txt.
type robotsRules struct {
	groups map[string]*agentGroup
}

type agentGroup struct {
	disallow []string
	allow    []string
}

// parseRobots implements the subset of robots.txt needed to answer "is this
// user agent blocked from the site root": user-agent grouping with allow and
// disallow prefixes, longest-match precedence.
func parseRobots(robotsTxt string) *robotsRules {
	rules := &robotsRules{groups: make(map[string]*agentGroup)}

	var current []*agentGroup
	lastWasAgent := false
	for _, line := range strings.Split(robotsTxt, "\n") {
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		field, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		field = strings.ToLower(strings.TrimSpace(field))
		value = strings.TrimSpace(value)

		switch field {
		case "user-agent":
			agent := strings.ToLower(value)
			g, ok := rules.groups[agent]
			if !ok {
				g = &agentGroup{}
				rules.groups[agent] = g
			}
			if lastWasAgent {
				current = append(current, g)
			} else {
				current = []*agentGroup{g}
			}
			lastWasAgent = true
		case "disallow":
			for _, g := range current {
				g.disallow = append(g.disallow, value)
			}
			lastWasAgent = false
		case "allow":
			for _, g := range current {
				g.allow = append(g.allow, value)
			}
			lastWasAgent = false
		default:
			lastWasAgent = false
		}
	}
	return rules
}

// blocked reports whether the agent is disallowed from the site root.
// A specific agent group overrides the wildcard group entirely, matching
// the robots.txt standard's group-selection rule.
func (r *robotsRules) blocked(agent string) bool {
	g, ok := r.groups[strings.ToLower(agent)]
	if !ok {
		g, ok = r.groups["*"]
		if !ok {
			return false
		}
	}

	rootDisallowed := false
	for _, d := range g.disallow {
		if d == "/" {
			rootDisallowed = true
		}
	}
	if !rootDisallowed {
		return false
	}
	for _, a := range g.allow {
		if a == "/" {
			return false
		}
	}
	return true
}
