package textutil

import "testing"

func TestUpperFirst(t *testing.T) {
	t.Run("capitalises only the first letter", func(t *testing.T) {
		cases := map[string]string{
			"elasticsearch": "Elasticsearch",
			"vue":           "Vue",
			"rails-api":     "Rails-api",
			"élan":          "Élan",
			"":              "",
			"9lives":        "9lives",
		}
		for input, want := range cases {
			if got := UpperFirst(input); got != want {
				t.Errorf("UpperFirst(%q) = %q, want %q", input, got, want)
			}
		}
	})
}

func TestContainsFold(t *testing.T) {
	t.Run("matches regardless of case", func(t *testing.T) {
		if !ContainsFold("JavaScript", "SCRIPT") {
			t.Fatalf("expected case-insensitive match")
		}
		if !ContainsFold("PostgreSQL", "gres") {
			t.Fatalf("expected mixed-case haystack to match")
		}
		if ContainsFold("Python", "java") {
			t.Fatalf("unexpected match")
		}
	})
}
