package blob_test

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"go-network-backend/pkg/blob"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	fs := afero.NewMemMapFs()
	store, err := blob.NewStore(fs, "/media")
	require.NoError(t, err)

	t.Run("Should save and read back", func(t *testing.T) {
		require.NoError(t, store.Save("a.jpg", strings.NewReader("hello")))
		f, err := store.Open("a.jpg")
		require.NoError(t, err)
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("Should not leave a file when fill fails", func(t *testing.T) {
		err := store.Write("b.jpg", func(w io.Writer) error {
			_, _ = w.Write([]byte("partial"))
			return errors.New("boom")
		})
		assert.Error(t, err)
		assert.False(t, store.Exists("b.jpg"))

		entries, _ := afero.ReadDir(fs, "/media")
		for _, e := range entries {
			assert.False(t, strings.HasPrefix(e.Name(), ".tmp-"), e.Name())
		}
	})

	t.Run("Should reject path traversal", func(t *testing.T) {
		err := store.Save("../etc/passwd", bytes.NewReader(nil))
		assert.ErrorIs(t, err, blob.ErrInvalidName)
	})

	t.Run("Should ignore missing files on remove", func(t *testing.T) {
		assert.NoError(t, store.Remove("nope.jpg"))
	})
}
