package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/squash/internal/codec"
	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// ConvertFile converts one input into a [models.ConversionResult].
//
// Errors wrap [shared.ErrDecode] or [shared.ErrEncode]. The decoded surface is always released before returning.
func ConvertFile(ctx context.Context, c codec.Codec, file models.InputFile) (*models.ConversionResult, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: codec not initialized", shared.ErrInvalidInput)
	}

	surface, err := c.Decode(ctx, file.Data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}
	defer surface.Release()

	encoded, err := c.Encode(ctx, surface)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	return models.NewConversionResult(
		models.StripExtension(file.Name),
		codec.OutputExtension,
		encoded,
		uint64(len(file.Data)),
	), nil
}
