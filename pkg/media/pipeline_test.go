package media_test

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
	"time"

	"go-network-backend/pkg/blob"
	"go-network-backend/pkg/media"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*blob.Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store, err := blob.NewStore(fs, "/media")
	require.NoError(t, err)
	return store, fs
}

func writePNG(t *testing.T, store *blob.Store, name string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 7 {
		img.Set(x, h/2, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, store.Save(name, &buf))
}

// writeOversizedPNG stores a tiny PNG whose header claims a w x h canvas.
func writeOversizedPNG(t *testing.T, store *blob.Store, name string, w, h uint32) int {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// signature(8) | length(4) | "IHDR" | width | height | ... | crc
	require.Equal(t, "IHDR", string(data[12:16]))
	binary.BigEndian.PutUint32(data[16:20], w)
	binary.BigEndian.PutUint32(data[20:24], h)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	require.NoError(t, store.Save(name, bytes.NewReader(data)))
	return len(data)
}

func decodedSize(t *testing.T, store *blob.Store, name string) (int, int) {
	t.Helper()
	f, err := store.Open(name)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	return cfg.Width, cfg.Height
}

func TestPipelineDerive(t *testing.T) {
	t.Run("Should shrink a large square into the main box", func(t *testing.T) {
		store, _ := newStore(t)
		writePNG(t, store, "1700000000_abcd1234.png", 2000, 2000)

		out, err := media.NewPipeline(store).Derive("1700000000_abcd1234.png", media.VariantSpec{{Name: "main", Width: 400, Height: 400}})
		require.NoError(t, err)

		main := out["main"]
		assert.Equal(t, "1700000000_abcd1234_main.jpg", main.Filename)
		w, h := decodedSize(t, store, main.Filename)
		assert.LessOrEqual(t, max(w, h), 400)
		assert.Equal(t, w, h)
	})

	t.Run("Should preserve aspect ratio for covers", func(t *testing.T) {
		store, _ := newStore(t)
		writePNG(t, store, "cover_1_00000000.png", 3000, 1000)

		out, err := media.NewPipeline(store).Derive("cover_1_00000000.png", media.CoverVariants)
		require.NoError(t, err)
		require.Len(t, out, 2)

		w, h := decodedSize(t, store, out["main"].Filename)
		assert.Equal(t, 900, w)
		assert.Equal(t, 300, h)

		w, h = decodedSize(t, store, out["thumb"].Filename)
		assert.Equal(t, 300, w)
		assert.Equal(t, 100, h)
	})

	t.Run("Should never upscale", func(t *testing.T) {
		store, _ := newStore(t)
		writePNG(t, store, "small.png", 50, 30)

		out, err := media.NewPipeline(store).Derive("small.png", media.AvatarVariants)
		require.NoError(t, err)
		w, h := decodedSize(t, store, out["main"].Filename)
		assert.Equal(t, 50, w)
		assert.Equal(t, 30, h)
	})

	t.Run("Should fail and leave no derived files on corrupt input", func(t *testing.T) {
		store, fs := newStore(t)
		require.NoError(t, store.Save("bad.png", strings.NewReader("\x89PNG\r\n\x1a\nnot really")))

		_, err := media.NewPipeline(store).Derive("bad.png", media.AvatarVariants)
		require.ErrorIs(t, err, media.ErrProcessing)

		entries, _ := afero.ReadDir(fs, "/media")
		names := []string{}
		for _, e := range entries {
			names = append(names, e.Name())
		}
		assert.Equal(t, []string{"bad.png"}, names)
	})

	t.Run("Should refuse a small file that declares a huge canvas", func(t *testing.T) {
		store, fs := newStore(t)
		size := writeOversizedPNG(t, store, "bomb.png", 20000, 20000)

		f, err := store.Open("bomb.png")
		require.NoError(t, err)
		accepted, err := media.NewImageValidator(media.DefaultMaxBytes).Validate("bomb.png", f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, int64(size), accepted.Size)

		_, err = media.NewPipeline(store).Derive("bomb.png", media.AvatarVariants)
		require.ErrorIs(t, err, media.ErrProcessing)
		assert.Contains(t, err.Error(), "pixel limit")

		entries, _ := afero.ReadDir(fs, "/media")
		require.Len(t, entries, 1)
		assert.Equal(t, "bomb.png", entries[0].Name())
	})

	t.Run("Should still decode canvases under the pixel limit", func(t *testing.T) {
		store, _ := newStore(t)
		writePNG(t, store, "wide.png", 4000, 10)

		out, err := media.NewPipeline(store).Derive("wide.png", media.CoverVariants)
		require.NoError(t, err)
		assert.Len(t, out, 2)
	})
}

func TestFitWithin(t *testing.T) {
	cases := []struct {
		w, h, bw, bh, ew, eh int
	}{
		{2000, 2000, 400, 400, 400, 400},
		{1000, 500, 400, 400, 400, 200},
		{500, 1000, 400, 400, 200, 400},
		{100, 100, 400, 400, 100, 100},
		{1201, 300, 1200, 300, 1200, 300},
		{4000, 10, 400, 100, 400, 1},
	}
	for _, c := range cases {
		w, h := media.FitWithin(c.w, c.h, c.bw, c.bh)
		assert.Equal(t, c.ew, w, "%dx%d in %dx%d", c.w, c.h, c.bw, c.bh)
		assert.Equal(t, c.eh, h, "%dx%d in %dx%d", c.w, c.h, c.bw, c.bh)
	}
}

func TestNewFilename(t *testing.T) {
	name := media.NewFilename("cover_", "PNG", time.Unix(1700000000, 0))
	assert.Regexp(t, `^cover_1700000000_[0-9a-f]{8}\.png$`, name)
	assert.Equal(t, "cover_1700000000_x_thumb.jpg", media.VariantFilename("cover_1700000000_x.png", "thumb"))
}
