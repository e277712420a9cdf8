package cms

import (
	"context"
	"hash/fnv"
	"strings"

	"github.com/sai-sandeep-seelam/CheatStack/internal/domain"
	"github.com/sai-sandeep-seelam/CheatStack/internal/platform/textutil"
)

var builtinCatalog = []struct {
	category domain.Category
	names    []string
}{
	{domain.CategoryLanguages, []string{"javascript", "typescript", "python", "ruby", "go", "php", "java", "csharp", "cpp", "rust"}},
	{domain.CategoryFrontend, []string{"react", "vue", "angular", "css", "sass", "html", "dom", "svg", "webpack", "npm"}},
	{domain.CategoryBackend, []string{"nodejs", "express", "rails", "django", "flask", "laravel", "spring", "dotnet"}},
	{domain.CategoryTools, []string{"git", "bash", "vim", "vscode", "docker", "kubernetes", "terraform", "ansible"}},
	{domain.CategoryDatabases, []string{"mysql", "postgresql", "mongodb", "redis", "elasticsearch", "graphql"}},
}

var displayNames = map[string]string{
	"js":            "JavaScript",
	"ts":            "TypeScript",
	"nodejs":        "Node.js",
	"csharp":        "C#",
	"cpp":           "C++",
	"dotnet":        ".NET",
	"vscode":        "VS Code",
	"postgresql":    "PostgreSQL",
	"mysql":         "MySQL",
	"mongodb":       "MongoDB",
	"redis":         "Redis",
	"graphql":       "GraphQL",
	"elasticsearch": "Elasticsearch",
	"css":           "CSS",
	"html":          "HTML",
	"svg":           "SVG",
	"dom":           "DOM",
	"npm":           "npm",
}

var knownPopularity = map[string]int{
	"javascript": 98,
	"python":     95,
	"git":        92,
	"react":      90,
	"css":        88,
	"nodejs":     85,
	"typescript": 82,
	"docker":     80,
	"bash":       78,
	"vue":        75,
}

// slugAliases maps folded display names back to catalog names. JavaScript and TypeScript win
// over the js/ts short forms because the catalog lists the long names.
var slugAliases = func() map[string]string {
	aliases := make(map[string]string, len(displayNames))
	for name, display := range displayNames {
		aliases[textutil.Fold(display)] = name
	}
	aliases[textutil.Fold("JavaScript")] = "javascript"
	aliases[textutil.Fold("TypeScript")] = "typescript"
	return aliases
}()

// BuiltinEntries returns the built-in catalog in display order. Callers own the returned slice.
func BuiltinEntries() []domain.CatalogEntry {
	var entries []domain.CatalogEntry
	for _, group := range builtinCatalog {
		for _, name := range group.names {
			entries = append(entries, domain.CatalogEntry{Name: name, Category: string(group.category)})
		}
	}
	return entries
}

// StaticSource serves the built-in catalog.
type StaticSource struct{}

// ListCheatsheets implements the content source contract and never fails.
func (StaticSource) ListCheatsheets(context.Context) ([]domain.CatalogEntry, error) {
	return BuiltinEntries(), nil
}

// DisplayName returns the human label for a cheatsheet name.
func DisplayName(name string) string {
	if display, ok := displayNames[name]; ok {
		return display
	}
	return textutil.UpperFirst(name)
}

// Popularity returns the known score for name, or a stable hash-derived score in [10,79] for
// names without one.
func Popularity(name string) int {
	if score, ok := knownPopularity[name]; ok {
		return score
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(name))
	return 10 + int(h.Sum32()%70)
}

// ToSlug maps a display name or loosely typed name ("Node.js", " C# ", "Python") to a catalog
// name.
func ToSlug(input string) string {
	trimmed := strings.TrimSpace(input)
	if slug, ok := slugAliases[textutil.Fold(trimmed)]; ok {
		return slug
	}
	return strings.ToLower(trimmed)
}

// Path is the content path recorded on a summary.
func Path(name string) string {
	return name + ".md"
}
