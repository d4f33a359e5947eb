package codec

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"mime"
	"strings"
	"sync"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/desertthunder/squash/internal/shared"
)

const (
	// Quality is the fixed encode quality on a 0-1 scale.
	Quality = 0.8

	OutputExtension = "jpg"
	OutputMIMEType  = "image/jpeg"
)

// AcceptedTypes lists the MIME types the pipeline converts. Anything else is filtered out before decoding.
var AcceptedTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/tiff",
	"image/bmp",
}

// Accepts reports whether mimeType is in [AcceptedTypes]. Case and parameters are ignored.
func Accepts(mimeType string) bool {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.TrimSpace(mimeType)
	}
	mediaType = strings.ToLower(mediaType)
	for _, t := range AcceptedTypes {
		if t == mediaType {
			return true
		}
	}
	return false
}

// Codec decodes raw image bytes and encodes surfaces to the output target.
type Codec interface {
	Decode(ctx context.Context, data []byte) (*Surface, error)
	Encode(ctx context.Context, s *Surface) ([]byte, error)
}

// Surface is a decoded pixel buffer. Release drops the pixels; a released surface cannot be encoded.
type Surface struct {
	mu       sync.Mutex
	img      image.Image
	format   string
	onFree   func()
	released bool
}

// NewSurface wraps an already decoded image.
func NewSurface(img image.Image, format string) *Surface {
	return &Surface{img: img, format: format}
}

// OnRelease registers fn to run exactly once when the surface is released.
func (s *Surface) OnRelease(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onFree = fn
}

// Width is 0 once released.
func (s *Surface) Width() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return 0
	}
	return s.img.Bounds().Dx()
}

// Height is 0 once released.
func (s *Surface) Height() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.img == nil {
		return 0
	}
	return s.img.Bounds().Dy()
}

// Format is the decoder name that produced the surface ("png", "tiff", ...).
func (s *Surface) Format() string { return s.format }

// Released reports whether Release has run.
func (s *Surface) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Release frees the pixel buffer. Safe to call more than once.
func (s *Surface) Release() {
	s.mu.Lock()
	if s.released {
		s.mu.Unlock()
		return
	}
	s.released = true
	s.img = nil
	fn := s.onFree
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *Surface) pixels() (image.Image, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.img, !s.released
}

// ImageCodec implements [Codec] with the registered image decoders and the JPEG encoder.
type ImageCodec struct {
	quality int
}

var _ Codec = (*ImageCodec)(nil)

// NewImageCodec creates an [ImageCodec] at the fixed [Quality].
func NewImageCodec() *ImageCodec {
	return &ImageCodec{quality: int(Quality * 100)}
}

// Decode interprets data as one of the registered image formats.
func (c *ImageCodec) Decode(ctx context.Context, data []byte) (*Surface, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty input", shared.ErrDecode)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrDecode, err)
	}
	return NewSurface(img, format), nil
}

// Encode writes s as JPEG. Transparent regions are composited over white.
func (c *ImageCodec) Encode(ctx context.Context, s *Surface) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrEncode, err)
	}
	if s == nil {
		return nil, fmt.Errorf("%w: nil surface", shared.ErrEncode)
	}

	img, ok := s.pixels()
	if !ok || img == nil {
		return nil, fmt.Errorf("%w: surface already released", shared.ErrEncode)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: zero-dimension image %dx%d", shared.ErrEncode, bounds.Dx(), bounds.Dy())
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrEncode, err)
	}
	return buf.Bytes(), nil
}

// flatten draws img over an opaque white canvas when it may carry alpha.
func flatten(img image.Image) image.Image {
	switch img.(type) {
	case *image.YCbCr, *image.Gray, *image.CMYK:
		return img
	}

	bounds := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, bounds.Min, draw.Over)
	return canvas
}
