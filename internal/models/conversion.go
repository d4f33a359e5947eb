package models

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// PercentUnavailable is reported by [ConversionResult.PercentSaved] when the original size is zero.
const PercentUnavailable = "N/A"

// ConversionResult is one successfully converted image.
type ConversionResult struct {
	id            string
	originalName  string
	data          []byte
	ext           string
	originalSize  uint64
	convertedSize uint64
	createdAt     time.Time
}

var _ Model = (*ConversionResult)(nil)

// NewConversionResult records a conversion of originalName (extension already stripped) into data.
//
// ext is the output extension without the leading dot. data is copied.
func NewConversionResult(originalName, ext string, data []byte, originalSize uint64) *ConversionResult {
	return &ConversionResult{
		id:            uuid.New().String(),
		originalName:  originalName,
		data:          bytes.Clone(data),
		ext:           ext,
		originalSize:  originalSize,
		convertedSize: uint64(len(data)),
		createdAt:     time.Now().UTC(),
	}
}

// RestoreConversionResult rebuilds a result read back from storage. data is retained, not copied.
func RestoreConversionResult(id, originalName, ext string, data []byte, originalSize, convertedSize uint64, createdAt time.Time) *ConversionResult {
	return &ConversionResult{
		id:            id,
		originalName:  originalName,
		data:          data,
		ext:           ext,
		originalSize:  originalSize,
		convertedSize: convertedSize,
		createdAt:     createdAt,
	}
}

func (r *ConversionResult) ID() string            { return r.id }
func (r *ConversionResult) CreatedAt() time.Time  { return r.createdAt }
func (r *ConversionResult) OriginalName() string  { return r.originalName }
func (r *ConversionResult) Extension() string     { return r.ext }
func (r *ConversionResult) OriginalSize() uint64  { return r.originalSize }
func (r *ConversionResult) ConvertedSize() uint64 { return r.convertedSize }

// Data returns a copy of the encoded bytes.
func (r *ConversionResult) Data() []byte { return bytes.Clone(r.data) }

// Reader reads the encoded bytes without copying them.
func (r *ConversionResult) Reader() *bytes.Reader { return bytes.NewReader(r.data) }

// OutputName is the suggested download and archive entry name: "<originalName>.<ext>".
func (r *ConversionResult) OutputName() string {
	return r.originalName + "." + r.ext
}

// SavedBytes is original minus converted size. Negative when the conversion grew the file.
func (r *ConversionResult) SavedBytes() int64 {
	return int64(r.originalSize) - int64(r.convertedSize)
}

// PercentSaved formats the savings ratio to one decimal place, e.g. "70.0%".
// Returns [PercentUnavailable] when the original size is zero.
func (r *ConversionResult) PercentSaved() string {
	return PercentSaved(r.originalSize, r.convertedSize)
}

// Validate checks the invariants a stored result must hold.
func (r *ConversionResult) Validate() error {
	if r.id == "" {
		return fmt.Errorf("conversion result has no id")
	}
	if uint64(len(r.data)) != r.convertedSize {
		return fmt.Errorf("converted size %d does not match data length %d", r.convertedSize, len(r.data))
	}
	if r.ext == "" {
		return fmt.Errorf("conversion result has no output extension")
	}
	return nil
}

// PercentSaved computes (original - converted) / original * 100 to one decimal place.
func PercentSaved(original, converted uint64) string {
	if original == 0 {
		return PercentUnavailable
	}
	pct := (float64(original) - float64(converted)) / float64(original) * 100
	return fmt.Sprintf("%.1f%%", pct)
}

// StripExtension removes the suffix after the last dot of a filename. Names without a dot are unchanged.
func StripExtension(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[:i]
	}
	return name
}
