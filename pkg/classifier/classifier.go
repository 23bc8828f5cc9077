// Package classifier finds dofollow links inside the comment and
// discussion areas of a fetched page.
//
// A page is only inspected when it carries a comment-style form. Within
// such a page every element whose id or class mentions a container token
// is treated as a discussion area, and each anchor with an href inside it
// is reported unless its rel attribute contains "nofollow".
package classifier

import (
	"iter"
	"slices"
	"strings"

	"github.com/amosWeiskopf/linkscout/internal/models"
	"github.com/amosWeiskopf/linkscout/pkg/dom"
)

// Classifier holds the token sets used to recognise discussion pages.
type Classifier struct {
	formTokens      []string
	containerTokens []string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithFormTokens replaces the form token set. Empty input keeps the default.
func WithFormTokens(tokens []string) Option {
	return func(c *Classifier) {
		if t := normalizeTokens(tokens); len(t) > 0 {
			c.formTokens = t
		}
	}
}

// WithContainerTokens replaces the container token set. Empty input keeps the default.
func WithContainerTokens(tokens []string) Option {
	return func(c *Classifier) {
		if t := normalizeTokens(tokens); len(t) > 0 {
			c.containerTokens = t
		}
	}
}

// New creates a Classifier using the default token sets unless overridden.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		formTokens:      slices.Clone(DefaultFormTokens),
		containerTokens: slices.Clone(DefaultContainerTokens),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify yields the dofollow links found in the discussion areas of page,
// in container then anchor document order. Each anchor is yielded at most
// once, under the outermost container enclosing it. Unparseable input
// yields nothing.
func (c *Classifier) Classify(page models.FetchedPage) iter.Seq[models.LinkRecord] {
	return func(yield func(models.LinkRecord) bool) {
		doc, err := dom.ParseBytes(page.Body)
		if err != nil {
			return
		}
		if !c.IsDiscussionPage(doc) {
			return
		}

		var visited []*dom.Element
		for _, container := range c.Containers(doc) {
			if enclosed(visited, container) {
				continue
			}
			visited = append(visited, container)

			for _, anchor := range container.Select("a[href]") {
				if isNofollow(anchor) {
					continue
				}
				href, _ := anchor.Attr("href")
				if !yield(models.LinkRecord{PageURL: page.URL, Href: href}) {
					return
				}
			}
		}
	}
}

// Collect runs Classify and gathers the records into a slice.
func (c *Classifier) Collect(page models.FetchedPage) []models.LinkRecord {
	return slices.Collect(c.Classify(page))
}

// IsDiscussionPage reports whether doc has at least one comment-style form.
func (c *Classifier) IsDiscussionPage(doc *dom.Document) bool {
	for _, form := range doc.Select("form") {
		if matchesAny(form, c.formTokens) {
			return true
		}
	}
	return false
}

// Containers returns the discussion areas of doc in document order,
// nested ones included.
func (c *Classifier) Containers(doc *dom.Document) []*dom.Element {
	var containers []*dom.Element
	for el := range doc.Elements() {
		if matchesAny(el, c.containerTokens) {
			containers = append(containers, el)
		}
	}
	return containers
}

// matchesAny reports whether the lower-cased id or the raw class attribute
// of el contains one of tokens as a substring.
func matchesAny(el *dom.Element, tokens []string) bool {
	id, _ := el.Attr("id")
	id = strings.ToLower(id)
	class, _ := el.Attr("class")

	for _, token := range tokens {
		if id != "" && strings.Contains(id, token) {
			return true
		}
		if class != "" && strings.Contains(class, token) {
			return true
		}
	}
	return false
}

func isNofollow(anchor *dom.Element) bool {
	rel, ok := anchor.Attr("rel")
	if !ok {
		return false
	}
	for _, token := range strings.Fields(rel) {
		if strings.EqualFold(token, nofollowToken) {
			return true
		}
	}
	return false
}

func enclosed(containers []*dom.Element, el *dom.Element) bool {
	for _, c := range containers {
		if c.Contains(el) {
			return true
		}
	}
	return false
}

func normalizeTokens(tokens []string) []string {
	var out []string
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
