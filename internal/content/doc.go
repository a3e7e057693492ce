// Package content provides markdown structure analysis and the
// deterministic content mutations the worker applies to notes.
package content

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// SectionInfo describes one markdown section (heading plus its body up
// to the next heading).
type SectionInfo struct {
	Title     string
	Level     int
	WordCount int
}

// DocStats is the structural summary of one note's markdown content.
type DocStats struct {
	WordCount int
	Sections  []SectionInfo
	HasTitle  bool // level-1 heading present
	Summary   bool // non-placeholder summary section present
	Links     []string
}

// SectionCount returns the number of non-title sections.
func (d DocStats) SectionCount() int {
	n := 0
	for _, s := range d.Sections {
		if s.Level > 1 {
			n++
		}
	}
	return n
}

// wikiLinkPattern matches [[target]] and [[target|alias]] links.
var wikiLinkPattern = regexp.MustCompile(`\[\[([^\]|]+)(?:\|[^\]]+)?\]\]`)

// summarySynonyms are accepted summary heading names (lowercase).
var summarySynonyms = map[string]bool{
	"summary": true, "résumé": true, "resume": true,
	"overview": true, "tl;dr": true, "abstract": true,
}

// placeholders are body values treated as empty content.
var placeholders = map[string]bool{
	"tbd": true, "n/a": true, "none": true, "pending": true,
	"(tbd)": true, "(n/a)": true, "(none)": true, "(pending)": true, "-": true,
}

var markdown = goldmark.New()

// Analyze parses the markdown content and returns its structural stats.
// Headings come from the goldmark AST so fenced code blocks never count
// as sections; links combine markdown links and wiki links.
func Analyze(raw string) DocStats {
	src := []byte(raw)
	root := markdown.Parser().Parse(text.NewReader(src))

	var stats DocStats

	type mark struct {
		title string
		level int
		start int // byte offset of the heading's first line
	}
	var marks []mark

	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := n.(type) {
		case *ast.Heading:
			start := len(src)
			if v.Lines().Len() > 0 {
				// The text segment starts after the "## " marker; back up
				// to the line start so the marker never leaks into the
				// preceding section's body.
				start = lineStart(src, v.Lines().At(0).Start)
			}
			marks = append(marks, mark{title: nodeText(v, src), level: v.Level, start: start})
			if v.Level == 1 {
				stats.HasTitle = true
			}
		case *ast.Link:
			if dest := string(v.Destination); dest != "" {
				stats.Links = append(stats.Links, dest)
			}
		}
		return ast.WalkContinue, nil
	})

	for _, m := range wikiLinkPattern.FindAllStringSubmatch(raw, -1) {
		stats.Links = append(stats.Links, strings.TrimSpace(m[1]))
	}
	stats.Links = dedupe(stats.Links)

	stats.WordCount = len(strings.Fields(raw))

	// Section bodies run from the end of the heading line to the next heading.
	for i, m := range marks {
		bodyStart := m.start
		if nl := strings.IndexByte(raw[bodyStart:], '\n'); nl >= 0 {
			bodyStart += nl + 1
		} else {
			bodyStart = len(raw)
		}
		bodyEnd := len(raw)
		if i+1 < len(marks) {
			bodyEnd = marks[i+1].start
		}
		body := strings.TrimSpace(raw[bodyStart:bodyEnd])

		info := SectionInfo{Title: m.title, Level: m.level}
		if !placeholders[strings.ToLower(body)] {
			info.WordCount = len(strings.Fields(body))
		}
		stats.Sections = append(stats.Sections, info)

		if summarySynonyms[strings.ToLower(m.title)] && info.WordCount > 0 {
			stats.Summary = true
		}
	}

	return stats
}

// lineStart returns the offset of the first byte of the line
// containing pos.
func lineStart(src []byte, pos int) int {
	if pos > len(src) {
		pos = len(src)
	}
	for pos > 0 && src[pos-1] != '\n' {
		pos--
	}
	return pos
}

// nodeText collects the plain text of a node's descendants.
func nodeText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if t, ok := c.(*ast.Text); ok {
			b.Write(t.Segment.Value(src))
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(b.String())
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, it := range items {
		if seen[it] {
			continue
		}
		seen[it] = true
		out = append(out, it)
	}
	return out
}
