// Package markdown renders contributed cheatsheet source to HTML.
//
// Render is the live preview renderer. It is a small line scanner, not a Markdown parser: each
// line is classified as a fence, heading, list item, blank or paragraph, then inline spans are
// substituted in a fixed order (bold, italic, inline code, links). Heading, bold and italic
// markup also applies inside fenced code, and fenced code is never HTML-escaped, so preview
// output must only be shown to the author of the input.
//
// RenderStandard is the conformant renderer used when output leaves the author's browser.
package markdown

import (
	"regexp"
	"strings"
)

// Placeholder is returned for empty or whitespace-only input.
const Placeholder = "<p>Content preview will appear here...</p>"

const fence = "```"

var (
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*(.*?)\*`)
	inlineCodePattern = regexp.MustCompile("`(.*?)`")
	linkPattern       = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)

	unorderedItemPattern = regexp.MustCompile(`^\s*- (.*)$`)
	orderedItemPattern   = regexp.MustCompile(`^\s*\d+\. (.*)$`)
)

// Lines already starting with one of these after inline substitution are not wrapped in <p>.
var blockPrefixes = []string{"<h", "<o", "<u", "<li", "<pre", "<blockquote"}

type listKind int

const (
	listNone listKind = iota
	listUnordered
	listOrdered
)

func (k listKind) tag() string {
	if k == listOrdered {
		return "ol"
	}
	return "ul"
}

type renderer struct {
	out []string

	list        listKind
	items       []string
	pendingGaps int
}

// Render converts src to preview HTML. It never fails; unrecognised syntax degrades to
// paragraph text. Rendering its own output is not supported.
func Render(src string) string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	if strings.TrimSpace(src) == "" {
		return Placeholder
	}

	r := &renderer{}
	lines := strings.Split(src, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]

		if strings.HasPrefix(line, fence) {
			if block, rest, next, ok := scanFence(lines, i); ok {
				r.emit(block + inline(rest))
				i = next
				continue
			}
		}

		if strings.TrimSpace(line) == "" {
			if r.list != listNone {
				r.pendingGaps++
				continue
			}
			r.emit("")
			continue
		}

		if m := unorderedItemPattern.FindStringSubmatch(line); m != nil {
			r.item(listUnordered, m[1])
			continue
		}
		if m := orderedItemPattern.FindStringSubmatch(line); m != nil {
			r.item(listOrdered, m[1])
			continue
		}

		if heading, ok := renderHeading(line); ok {
			r.emit(heading)
			continue
		}

		r.emit(paragraph(line))
	}
	r.closeList()
	return strings.Join(r.out, "\n")
}

// scanFence looks for the closing fence after the opener at lines[start]. It returns the code
// block, the text following the closing fence on its line, and the index of the closing line.
func scanFence(lines []string, start int) (block, rest string, end int, ok bool) {
	lang := strings.TrimSpace(strings.TrimPrefix(lines[start], fence))

	var body []string
	for j := start + 1; j < len(lines); j++ {
		idx := strings.Index(lines[j], fence)
		if idx < 0 {
			body = append(body, lines[j])
			continue
		}
		body = append(body, lines[j][:idx])
		for k, line := range body {
			body[k] = fenceLine(line)
		}
		code := strings.TrimSpace(strings.Join(body, "\n"))
		return `<pre><code class="language-` + lang + `">` + code + "</code></pre>", lines[j][idx+len(fence):], j, true
	}
	return "", "", start, false
}

// fenceLine applies the heading, bold and italic passes to one line of fenced code. Inline code,
// links and block structure are left alone.
func fenceLine(line string) string {
	for _, h := range headingLevels {
		if strings.HasPrefix(line, h.prefix) {
			line = "<" + h.tag + ">" + line[len(h.prefix):] + "</" + h.tag + ">"
			break
		}
	}
	line = boldPattern.ReplaceAllString(line, "<strong>${1}</strong>")
	return italicPattern.ReplaceAllString(line, "<em>${1}</em>")
}

// headingLevels is checked longest prefix first.
var headingLevels = []struct {
	prefix string
	tag    string
}{
	{"### ", "h3"},
	{"## ", "h2"},
	{"# ", "h1"},
}

func renderHeading(line string) (string, bool) {
	for _, h := range headingLevels {
		if strings.HasPrefix(line, h.prefix) {
			return "<" + h.tag + ">" + inline(line[len(h.prefix):]) + "</" + h.tag + ">", true
		}
	}
	return "", false
}

func paragraph(line string) string {
	text := inline(line)
	for _, prefix := range blockPrefixes {
		if strings.HasPrefix(text, prefix) {
			return text
		}
	}
	return "<p>" + text + "</p>"
}

func inline(text string) string {
	if text == "" {
		return text
	}
	text = boldPattern.ReplaceAllString(text, "<strong>${1}</strong>")
	text = italicPattern.ReplaceAllString(text, "<em>${1}</em>")
	text = inlineCodePattern.ReplaceAllString(text, "<code>${1}</code>")
	text = linkPattern.ReplaceAllString(text, `<a href="${2}">${1}</a>`)
	return text
}

// item adds a list item. Items of the same kind separated only by blank lines join one list.
func (r *renderer) item(kind listKind, text string) {
	if r.list != kind {
		r.closeList()
		r.list = kind
	}
	r.pendingGaps = 0
	r.items = append(r.items, "<li>"+inline(text)+"</li>")
}

func (r *renderer) emit(line string) {
	r.closeList()
	r.out = append(r.out, line)
}

func (r *renderer) closeList() {
	if r.list == listNone {
		return
	}
	tag := r.list.tag()
	r.out = append(r.out, "<"+tag+">"+strings.Join(r.items, "")+"</"+tag+">")
	for ; r.pendingGaps > 0; r.pendingGaps-- {
		r.out = append(r.out, "")
	}
	r.list = listNone
	r.items = nil
}
