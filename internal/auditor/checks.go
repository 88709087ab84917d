package auditor

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/a11ygate/a11ygate/internal/model"
)

// helpURLBase is the documentation root the rule ids link into.
const helpURLBase = "https://dequeuniversity.com/rules/axe/4.10/"

// documentCheck is one generic WCAG document check. The count function
// returns the number of violating DOM nodes; zero means the rule passed.
type documentCheck struct {
	id     string
	impact string
	tags   []string
	count  func(doc *goquery.Document) int
}

// documentChecks is the built-in rule set. These are coarse structural
// checks, not a reimplementation of a full accessibility engine; each maps
// to a well-known axe rule id so downstream tooling treats the findings
// uniformly.
var documentChecks = []documentCheck{
	{
		id:     "image-alt",
		impact: "critical",
		tags:   []string{"wcag2a", "wcag111"},
		count: func(doc *goquery.Document) int {
			return doc.Find("img").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				if _, ok := sel.Attr("alt"); ok {
					return false
				}
				if hasNonEmptyAttr(sel, "aria-label") || hasNonEmptyAttr(sel, "aria-labelledby") {
					return false
				}
				role, _ := sel.Attr("role")
				return role != "presentation" && role != "none"
			}).Length()
		},
	},
	{
		id:     "html-has-lang",
		impact: "serious",
		tags:   []string{"wcag2a", "wcag311"},
		count: func(doc *goquery.Document) int {
			html := doc.Find("html").First()
			if html.Length() == 0 {
				return 0
			}
			if hasNonEmptyAttr(html, "lang") {
				return 0
			}
			return 1
		},
	},
	{
		id:     "document-title",
		impact: "serious",
		tags:   []string{"wcag2a", "wcag242"},
		count: func(doc *goquery.Document) int {
			title := doc.Find("head title").First()
			if title.Length() > 0 && strings.TrimSpace(title.Text()) != "" {
				return 0
			}
			return 1
		},
	},
	{
		id:     "link-name",
		impact: "serious",
		tags:   []string{"wcag2a", "wcag244", "wcag412"},
		count: func(doc *goquery.Document) int {
			return doc.Find("a[href]").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				if strings.TrimSpace(sel.Text()) != "" {
					return false
				}
				if hasNonEmptyAttr(sel, "aria-label") || hasNonEmptyAttr(sel, "aria-labelledby") || hasNonEmptyAttr(sel, "title") {
					return false
				}
				// An image with alt text names the link.
				named := false
				sel.Find("img").EachWithBreak(func(_ int, img *goquery.Selection) bool {
					if hasNonEmptyAttr(img, "alt") {
						named = true
						return false
					}
					return true
				})
				return !named
			}).Length()
		},
	},
	{
		id:     "label",
		impact: "critical",
		tags:   []string{"wcag2a", "wcag412"},
		count: func(doc *goquery.Document) int {
			return doc.Find("input, select, textarea").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				inputType, _ := sel.Attr("type")
				switch strings.ToLower(inputType) {
				case "hidden", "submit", "button", "reset", "image":
					return false
				}
				if hasNonEmptyAttr(sel, "aria-label") || hasNonEmptyAttr(sel, "aria-labelledby") || hasNonEmptyAttr(sel, "title") {
					return false
				}
				if id, ok := sel.Attr("id"); ok && id != "" {
					if doc.Find(`label[for="` + id + `"]`).Length() > 0 {
						return false
					}
				}
				// A wrapping label also names the control.
				return sel.ParentsFiltered("label").Length() == 0
			}).Length()
		},
	},
	{
		id:     "frame-title",
		impact: "serious",
		tags:   []string{"wcag2a", "wcag412"},
		count: func(doc *goquery.Document) int {
			return doc.Find("iframe, frame").FilterFunction(func(_ int, sel *goquery.Selection) bool {
				return !hasNonEmptyAttr(sel, "title") && !hasNonEmptyAttr(sel, "aria-label")
			}).Length()
		},
	},
	{
		id:     "meta-viewport",
		impact: "critical",
		tags:   []string{"wcag2aa", "wcag144"},
		count: func(doc *goquery.Document) int {
			return doc.Find(`meta[name="viewport"]`).FilterFunction(func(_ int, sel *goquery.Selection) bool {
				content, _ := sel.Attr("content")
				normalized := strings.ReplaceAll(strings.ToLower(content), " ", "")
				return strings.Contains(normalized, "user-scalable=no") ||
					strings.Contains(normalized, "maximum-scale=1,") ||
					strings.HasSuffix(normalized, "maximum-scale=1")
			}).Length()
		},
	},
}

// hasNonEmptyAttr reports whether the selection carries the attribute with
// a non-blank value.
func hasNonEmptyAttr(sel *goquery.Selection, name string) bool {
	value, ok := sel.Attr(name)
	return ok && strings.TrimSpace(value) != ""
}

// runDocumentChecks evaluates every built-in check against the document
// and returns one finding per violated rule.
func runDocumentChecks(doc *goquery.Document) []model.Finding {
	findings := make([]model.Finding, 0, len(documentChecks))
	for _, check := range documentChecks {
		nodes := check.count(doc)
		if nodes == 0 {
			continue
		}
		findings = append(findings, model.Finding{
			ID:        check.id,
			Impact:    check.impact,
			Tags:      check.tags,
			NodeCount: nodes,
			HelpURL:   helpURLBase + check.id,
		})
	}
	return findings
}
