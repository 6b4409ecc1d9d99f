// Package qr renders attendee tickets and reads codes back out of camera frames.
package qr

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/skip2/go-qrcode"
)

// DefaultSize is the ticket image edge in pixels.
const DefaultSize = 256

// ErrEmptyPayload is returned when asked to render an empty identity.
var ErrEmptyPayload = errors.New("qr payload is empty")

// Render encodes payload as a PNG QR code with medium error correction.
func Render(payload string, size int) ([]byte, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, ErrEmptyPayload
	}
	if size <= 0 {
		size = DefaultSize
	}
	png, err := qrcode.Encode(payload, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

// Decoder reads QR payloads from frames. It is not safe for concurrent use;
// each console owns one.
type Decoder struct {
	reader gozxing.Reader
	hints  map[gozxing.DecodeHintType]interface{}
}

// NewDecoder creates a Decoder that tries hard on each frame.
func NewDecoder() *Decoder {
	return &Decoder{
		reader: zxqr.NewQRCodeReader(),
		hints: map[gozxing.DecodeHintType]interface{}{
			gozxing.DecodeHintType_TRY_HARDER: true,
		},
	}
}

// Decode returns the payload of the first QR code found in img.
func (d *Decoder) Decode(img image.Image) (string, bool) {
	if img == nil {
		return "", false
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", false
	}
	result, err := d.reader.Decode(bmp, d.hints)
	if err != nil {
		return "", false
	}
	text := strings.TrimSpace(result.GetText())
	if text == "" {
		return "", false
	}
	return text, true
}

// DecodePixels wraps a raw RGBA buffer, as produced by a browser canvas, and decodes it.
func (d *Decoder) DecodePixels(pix []byte, width, height int) (string, bool) {
	img, err := FrameFromPixels(pix, width, height)
	if err != nil {
		return "", false
	}
	return d.Decode(img)
}

// MaxFrameEdge bounds either side of a raw frame.
const MaxFrameEdge = 4096

// FrameFromPixels validates an RGBA buffer and wraps it as an image.
func FrameFromPixels(pix []byte, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 || width > MaxFrameEdge || height > MaxFrameEdge {
		return nil, fmt.Errorf("invalid frame size %dx%d", width, height)
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("frame has %d bytes, want %d", len(pix), width*height*4)
	}
	return &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}, nil
}
