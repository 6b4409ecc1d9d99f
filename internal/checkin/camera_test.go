package checkin

import (
	"context"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, image.NewGray(image.Rect(0, 0, 4, 4))))
}

func TestPushCamera_Exclusive(t *testing.T) {
	cam := NewPushCamera(1)
	assert.False(t, cam.Push(frame("early")), "no stream open")

	stream, err := cam.Open(context.Background())
	require.NoError(t, err)
	_, err = cam.Open(context.Background())
	require.ErrorIs(t, err, ErrCameraInUse)

	assert.True(t, cam.Push(frame("a")))
	assert.False(t, cam.Push(frame("b")), "buffer full")

	img, err := stream.Next(context.Background())
	require.NoError(t, err)
	code, ok := fakeDecoder{}.Decode(img)
	require.True(t, ok)
	assert.Equal(t, "a", code)

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close())
	_, err = stream.Next(context.Background())
	assert.ErrorIs(t, err, ErrStreamClosed)

	again, err := cam.Open(context.Background())
	require.NoError(t, err)
	require.NoError(t, again.Close())
}

func TestPushCamera_NextHonoursContext(t *testing.T) {
	cam := NewPushCamera(1)
	stream, err := cam.Open(context.Background())
	require.NoError(t, err)
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDirCamera(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "002.png"))
	writePNG(t, filepath.Join(dir, "001.png"))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "003.png"), []byte("not an image"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	cam := NewDirCamera(dir)
	stream, err := cam.Open(context.Background())
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		img, err := stream.Next(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 4, img.Bounds().Dx())
	}
	_, err = stream.Next(context.Background())
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, stream.Close())
}

func TestDirCamera_MissingDir(t *testing.T) {
	_, err := NewDirCamera(filepath.Join(t.TempDir(), "absent")).Open(context.Background())
	assert.ErrorIs(t, err, ErrCameraUnavailable)
}
