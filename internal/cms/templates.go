package cms

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
)

const (
	defaultTemplateName = "default"
	displayToken        = "{display}"
)

//go:embed templates/*.yaml
var builtinTemplates embed.FS

//go:embed detail.gohtml
var detailSource string

var detailTemplate = template.Must(template.New("detail").Parse(detailSource))

type templateFile struct {
	Name     string           `yaml:"name"`
	Sections []domain.Section `yaml:"sections"`
}

// TemplateSet maps cheatsheet names to detail templates. The "default" template covers every
// other name. A TemplateSet is read-only after construction.
type TemplateSet struct {
	templates map[string][]domain.Section
}

// LoadTemplates reads the embedded templates and then any *.yaml files in dir, which override
// embedded templates of the same name. An empty dir loads only the embedded set.
func LoadTemplates(dir string) (*TemplateSet, error) {
	set := &TemplateSet{templates: make(map[string][]domain.Section)}
	if err := set.loadFS(builtinTemplates, "templates"); err != nil {
		return nil, err
	}
	if dir = strings.TrimSpace(dir); dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return nil, fmt.Errorf("cms: template dir: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("cms: template dir %s is not a directory", dir)
		}
		if err := set.loadFS(os.DirFS(dir), "."); err != nil {
			return nil, err
		}
	}
	if _, ok := set.templates[defaultTemplateName]; !ok {
		return nil, errors.New("cms: default template missing")
	}
	return set, nil
}

// MustLoadBuiltinTemplates returns the embedded templates and panics if they are malformed.
func MustLoadBuiltinTemplates() *TemplateSet {
	set, err := LoadTemplates("")
	if err != nil {
		panic(err)
	}
	return set
}

func (s *TemplateSet) loadFS(fsys fs.FS, root string) error {
	matches, err := fs.Glob(fsys, path.Join(root, "*.yaml"))
	if err != nil {
		return fmt.Errorf("cms: list templates: %w", err)
	}
	for _, match := range matches {
		data, err := fs.ReadFile(fsys, match)
		if err != nil {
			return fmt.Errorf("cms: read template %s: %w", match, err)
		}
		var file templateFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("cms: parse template %s: %w", match, err)
		}
		name := strings.ToLower(strings.TrimSpace(file.Name))
		if name == "" {
			name = strings.TrimSuffix(path.Base(match), path.Ext(match))
		}
		s.templates[name] = file.Sections
	}
	return nil
}

// Sections returns the sections for name with {display} expanded to displayName. The result is
// a fresh copy.
func (s *TemplateSet) Sections(name, displayName string) []domain.Section {
	tmpl, ok := s.templates[name]
	if !ok {
		tmpl = s.templates[defaultTemplateName]
	}
	expand := strings.NewReplacer(displayToken, displayName).Replace

	out := make([]domain.Section, len(tmpl))
	for i, section := range tmpl {
		items := make([]domain.Item, len(section.Items))
		for j, item := range section.Items {
			items[j] = domain.Item{Code: expand(item.Code), Description: expand(item.Description)}
		}
		out[i] = domain.Section{Title: expand(section.Title), Items: items}
	}
	return out
}

// Has reports whether name has a dedicated template.
func (s *TemplateSet) Has(name string) bool {
	_, ok := s.templates[name]
	return ok && name != defaultTemplateName
}

// RenderDetailHTML renders a detail page. Titles, code and descriptions are escaped by
// html/template.
func RenderDetailHTML(title string, sections []domain.Section) string {
	var b strings.Builder
	err := detailTemplate.Execute(&b, struct {
		Title    string
		Sections []domain.Section
	}{Title: title, Sections: sections})
	if err != nil {
		return "<h1>" + template.HTMLEscapeString(title) + " Cheatsheet</h1>"
	}
	return b.String()
}
