package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
)

// ReportFormat selects the conversion report serializer.
type ReportFormat string

const (
	ReportCSV      ReportFormat = "csv"
	ReportMarkdown ReportFormat = "markdown"
	ReportText     ReportFormat = "txt"
)

// ParseReportFormat accepts csv, markdown (or md) and txt (or text).
func ParseReportFormat(s string) (ReportFormat, error) {
	switch s {
	case "csv":
		return ReportCSV, nil
	case "markdown", "md":
		return ReportMarkdown, nil
	case "txt", "text":
		return ReportText, nil
	default:
		return "", fmt.Errorf("%w: report format %q (want csv, markdown or txt)", shared.ErrInvalidFlag, s)
	}
}

// Extension is the file extension for reports of this format.
func (f ReportFormat) Extension() string {
	if f == ReportMarkdown {
		return "md"
	}
	return string(f)
}

func totalSaved(results []*models.ConversionResult) (original uint64, converted uint64, saved int64) {
	for _, r := range results {
		original += r.OriginalSize()
		converted += r.ConvertedSize()
		saved += r.SavedBytes()
	}
	return original, converted, saved
}

// ReportToCSV writes one row per result with columns: Name, Output, Original Bytes, Converted Bytes, Saved Bytes, Saved
func ReportToCSV(results []*models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Output", "Original Bytes", "Converted Bytes", "Saved Bytes", "Saved"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range results {
		record := []string{
			r.OriginalName(),
			r.OutputName(),
			strconv.FormatUint(r.OriginalSize(), 10),
			strconv.FormatUint(r.ConvertedSize(), 10),
			strconv.FormatInt(r.SavedBytes(), 10),
			r.PercentSaved(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ReportToMarkdown renders a summary followed by a results table.
func ReportToMarkdown(results []*models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	original, converted, saved := totalSaved(results)

	buf.WriteString("# Conversion Report\n\n")
	buf.WriteString(fmt.Sprintf("**Files**: %d\n", len(results)))
	buf.WriteString(fmt.Sprintf("**Original**: %s\n", shared.FormatBytes(original)))
	buf.WriteString(fmt.Sprintf("**Converted**: %s\n", shared.FormatBytes(converted)))
	buf.WriteString(fmt.Sprintf("**Saved**: %s (%s)\n\n", shared.FormatSavedBytes(saved), models.PercentSaved(original, converted)))

	buf.WriteString("## Results\n\n")
	buf.WriteString("| # | File | Original | Converted | Saved |\n")
	buf.WriteString("|---|------|----------|-----------|-------|\n")
	for i, r := range results {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s | %s |\n",
			i+1,
			r.OutputName(),
			shared.FormatBytes(r.OriginalSize()),
			shared.FormatBytes(r.ConvertedSize()),
			r.PercentSaved(),
		))
	}

	return buf.Bytes(), nil
}

// ReportToText renders a plain text listing with a totals line.
func ReportToText(results []*models.ConversionResult) ([]byte, error) {
	var buf bytes.Buffer
	original, converted, saved := totalSaved(results)

	buf.WriteString(fmt.Sprintf("Files: %d\n", len(results)))
	buf.WriteString(fmt.Sprintf("Saved: %s of %s (%s)\n\n", shared.FormatSavedBytes(saved), shared.FormatBytes(original), models.PercentSaved(original, converted)))

	for i, r := range results {
		buf.WriteString(fmt.Sprintf("%d. %s %s -> %s (%s)\n",
			i+1,
			r.OutputName(),
			shared.FormatBytes(r.OriginalSize()),
			shared.FormatBytes(r.ConvertedSize()),
			r.PercentSaved(),
		))
	}

	return buf.Bytes(), nil
}

// Report renders results in the given format.
func Report(results []*models.ConversionResult, format ReportFormat) ([]byte, error) {
	switch format {
	case ReportCSV:
		return ReportToCSV(results)
	case ReportMarkdown:
		return ReportToMarkdown(results)
	case ReportText:
		return ReportToText(results)
	default:
		return nil, fmt.Errorf("%w: report format %q", shared.ErrInvalidFlag, format)
	}
}

// WriteReport writes a report into dir as report.<ext> and returns the path.
func WriteReport(results []*models.ConversionResult, format ReportFormat, dir string) (string, error) {
	data, err := Report(results, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	path := filepath.Join(dir, "report."+format.Extension())
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
