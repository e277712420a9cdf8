package firestore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pfirestore "github.com/sai-sandeep-seelam/CheatStack/internal/platform/firestore"
)

func TestToEntryDefaultsNameToDocumentID(t *testing.T) {
	t.Parallel()

	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	entry := toEntry(pfirestore.Document[catalogDocument]{
		ID:         "rust",
		Data:       catalogDocument{Category: " languages ", Popularity: 40},
		UpdateTime: updated,
	})

	require.Equal(t, "rust", entry.Name)
	require.Equal(t, "languages", entry.Category)
	require.Equal(t, 40, entry.Popularity)
	require.NotNil(t, entry.UpdatedAt)
	require.True(t, entry.UpdatedAt.Equal(updated))
}

func TestToEntryPrefersExplicitFields(t *testing.T) {
	t.Parallel()

	explicit := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	entry := toEntry(pfirestore.Document[catalogDocument]{
		ID:         "doc-1",
		Data:       catalogDocument{Name: "go", Category: "languages", UpdatedAt: &explicit},
		UpdateTime: time.Now(),
	})

	require.Equal(t, "go", entry.Name)
	require.Equal(t, &explicit, entry.UpdatedAt)
}

func TestToEntryWithoutTimestamps(t *testing.T) {
	t.Parallel()

	entry := toEntry(pfirestore.Document[catalogDocument]{ID: "vim", Data: catalogDocument{Category: "tools"}})
	require.Nil(t, entry.UpdatedAt)
}
