package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

var _ list.Item = resultItem{}

// resultItem wraps [models.ConversionResult] to implement [list.Item].
type resultItem struct {
	result *models.ConversionResult
}

func (i resultItem) FilterValue() string { return i.result.OriginalName() }
func (i resultItem) Title() string       { return i.result.OutputName() }
func (i resultItem) Description() string {
	return fmt.Sprintf("%s → %s • saved %s",
		shared.FormatBytes(i.result.OriginalSize()),
		shared.FormatBytes(i.result.ConvertedSize()),
		i.result.PercentSaved(),
	)
}

func resultItems(results []*models.ConversionResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
