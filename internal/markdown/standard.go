package markdown

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	standard = goldmark.New(goldmark.WithExtensions(extension.GFM))

	policy = func() *bluemonday.Policy {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w+#.-]+$`)).OnElements("code")
		return p
	}()
)

// RenderStandard renders src as GitHub flavoured Markdown and sanitises the result.
func RenderStandard(src string) (string, error) {
	var buf bytes.Buffer
	if err := standard.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("markdown: render standard: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Sanitize strips markup outside the user generated content allowlist.
func Sanitize(html string) string {
	return policy.Sanitize(html)
}
