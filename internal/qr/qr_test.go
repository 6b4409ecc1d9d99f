package qr

import (
	"bytes"
	"image"
	"image/draw"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDecode(t *testing.T) {
	data, err := Render("9f1c2a7e-user", 0)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, DefaultSize, img.Bounds().Dx())

	code, ok := NewDecoder().Decode(img)
	require.True(t, ok)
	assert.Equal(t, "9f1c2a7e-user", code)
}

func TestRender_Empty(t *testing.T) {
	_, err := Render("  ", 128)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestDecode_NoCode(t *testing.T) {
	blank := image.NewGray(image.Rect(0, 0, 64, 64))
	_, ok := NewDecoder().Decode(blank)
	assert.False(t, ok)
}

func TestDecodePixels(t *testing.T) {
	data, err := Render("attendee-42", 200)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)

	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, image.Point{}, draw.Src)

	code, ok := NewDecoder().DecodePixels(rgba.Pix, 200, 200)
	require.True(t, ok)
	assert.Equal(t, "attendee-42", code)

	_, ok = NewDecoder().DecodePixels(rgba.Pix[:10], 200, 200)
	assert.False(t, ok)
}

func TestFrameFromPixels_Invalid(t *testing.T) {
	cases := []struct {
		name          string
		pix           int
		width, height int
	}{
		{"zero width", 0, 0, 10},
		{"short buffer", 10, 2, 2},
		{"overflowing height", 4, 3, 3074457345618258603},
		{"edge too large", 4 * (MaxFrameEdge + 1), MaxFrameEdge + 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := FrameFromPixels(make([]byte, tc.pix), tc.width, tc.height)
			assert.Error(t, err)
		})
	}
	_, ok := NewDecoder().DecodePixels(make([]byte, 4), 3, 3074457345618258603)
	assert.False(t, ok)
}
