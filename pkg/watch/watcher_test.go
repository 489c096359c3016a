package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActorList(t *testing.T) {
	input := `
# G7 members
US, CA
DE  FR # trailing comment
US

JP	IT,GB
`
	ids, err := ParseActorList(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{"US", "CA", "DE", "FR", "US", "JP", "IT", "GB"}, ids)
}

func TestParseActorList_Empty(t *testing.T) {
	ids, err := ParseActorList(strings.NewReader("# nothing yet\n\n"))
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestNewWatcher_MissingFile(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestWatcher_ReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "actors.txt")
	require.NoError(t, os.WriteFile(path, []byte("US\nCA\n"), 0644))

	w, err := NewWatcher(path, WithDebounce(20*time.Millisecond))
	require.NoError(t, err)

	got := make(chan []string, 4)
	w.OnChange = func(ctx context.Context, ids []string) error {
		got <- ids
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case ids := <-got:
		assert.Equal(t, []string{"US", "CA"}, ids)
	case <-time.After(5 * time.Second):
		t.Fatal("initial load not reported")
	}

	require.NoError(t, os.WriteFile(path, []byte("US\n# removed CA\nDE\n"), 0644))

	select {
	case ids := <-got:
		assert.Equal(t, []string{"US", "DE"}, ids)
	case <-time.After(5 * time.Second):
		t.Fatal("change not reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
