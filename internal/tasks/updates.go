package tasks

import (
	"fmt"

	"github.com/desertthunder/squash/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FilterInputs Phase = iota
	ConvertFiles
	AppendResults
)

func (p Phase) String() string {
	switch p {
	case FilterInputs:
		return "filter_inputs"
	case ConvertFiles:
		return "convert_files"
	case AppendResults:
		return "append_results"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func filterUpdate(accepted, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FilterInputs,
		Step:    accepted,
		Total:   total,
		Message: fmt.Sprintf("Accepted %d of %d files", accepted, total),
	}
}

func convertedUpdate(step, total int, name string, result *models.ConversionResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, result.PercentSaved()),
		Data:    result,
	}
}

func skippedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ConvertFiles,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func appendUpdate(converted, accepted int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   AppendResults,
		Step:    converted,
		Total:   accepted,
		Message: fmt.Sprintf("Converted %d of %d files", converted, accepted),
	}
}
