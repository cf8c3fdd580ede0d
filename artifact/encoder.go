package artifact

import (
	"bytes"
	"compress/flate"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"

	// decoders for image.Decode
	_ "image/gif"

	"github.com/titpetric/verdict/model"
)

// DefaultQuality is the JPEG quality used unless configured.
const DefaultQuality = 75

// Encoder turns screenshots into the transport payload: the image,
// re-encoded, raw-deflated and base64 encoded.
type Encoder struct {
	quality int
}

// NewEncoder returns an encoder using the given JPEG quality (0..100).
func NewEncoder(quality int) (*Encoder, error) {
	if quality < 0 || quality > 100 {
		return nil, model.Errorf(model.ErrCodeConfig, "invalid image quality %d, must be between 0 and 100", quality)
	}
	return &Encoder{quality: quality}, nil
}

// Quality returns the configured JPEG quality.
func (e *Encoder) Quality() int {
	return e.quality
}

// Encode returns the payload for s. Base64 sources are re-encoded as PNG,
// byte and file sources as JPEG. Content that does not decode as an
// image is deflated as is.
func (e *Encoder) Encode(s *Screenshot) (string, error) {
	switch s.source {
	case SourceBase64:
		raw, err := base64.StdEncoding.DecodeString(s.base64)
		if err != nil {
			return "", model.WrapError(model.ErrCodeScreenshot, "invalid base64 content for screenshot", err)
		}
		return deflateBase64(reencode(raw, encodePNG))
	case SourceBytes:
		return deflateBase64(reencode(s.data, e.encodeJPEG))
	case SourceFile:
		raw, err := os.ReadFile(s.path)
		if err != nil {
			return "", model.WrapError(model.ErrCodeScreenshot, "cannot read screenshot file", err).WithContext("path", s.path)
		}
		return deflateBase64(reencode(raw, e.encodeJPEG))
	}
	return "", model.Errorf(model.ErrCodeScreenshot, "screenshot has no content")
}

func reencode(raw []byte, encode func(*bytes.Buffer, image.Image) error) []byte {
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		return raw
	}
	return buf.Bytes()
}

func encodePNG(buf *bytes.Buffer, img image.Image) error {
	return png.Encode(buf, img)
}

func (e *Encoder) encodeJPEG(buf *bytes.Buffer, img image.Image) error {
	// jpeg clamps quality below 1
	return jpeg.Encode(buf, img, &jpeg.Options{Quality: e.quality})
}

func deflateBase64(data []byte) (string, error) {
	var buf bytes.Buffer
	buf.Grow(len(data)/2 + 16)

	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", fmt.Errorf("deflate screenshot: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("deflate screenshot: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Inflate reverses the transport encoding and returns the image bytes.
func Inflate(payload string) ([]byte, error) {
	compressed, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, err
	}
	r := flate.NewReader(bytes.NewReader(compressed))
	defer r.Close()

	var out bytes.Buffer
	if _, err := out.ReadFrom(r); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
