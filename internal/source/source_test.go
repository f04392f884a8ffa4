package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource_ReturnsIndependentCopies(t *testing.T) {
	members := ElyassiMembers()
	src := NewStaticSource(members)

	members[0].Metrics["tasks"] = 0

	first, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 45.0, first[0].Metrics["tasks"])

	first[0].Name = "Mallory"
	first[0].Metrics["tasks"] = 1

	second, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Alice", second[0].Name)
	assert.Equal(t, 45.0, second[0].Metrics["tasks"])
}

func TestStaticSource_CopiesAttributes(t *testing.T) {
	src := NewStaticSource(MagicBotClients())

	first, err := src.Records(context.Background())
	require.NoError(t, err)
	first[2].Attributes["status"] = "Active"

	second, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Warning", second[2].Attributes["status"])
}

func TestStaticSource_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStaticSource(MagicBotClients()).Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFileSource_Records(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.json")
	data := `[
  {"id": "7", "name": "Arcane", "value": 4.2, "metrics": {"engagement": 4.2}},
  {"id": "8", "name": "Rune", "value": 9.1, "attributes": {"platform": "Twitter"}}
]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	records, err := NewFileSource(path).Records(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Arcane", records[0].Name)
	assert.Equal(t, 4.2, records[0].Metrics["engagement"])
	assert.Equal(t, 9.1, records[1].Value)
	assert.Equal(t, "Twitter", records[1].Attributes["platform"])
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource(filepath.Join(dir, "missing.json")).Records(context.Background())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadRecordsFile(bad)
	assert.ErrorContains(t, err, "failed to parse records file")
}
