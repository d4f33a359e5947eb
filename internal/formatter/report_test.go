package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/squash/internal/models"
	"github.com/desertthunder/squash/internal/shared"
	th "github.com/desertthunder/squash/internal/testing"
)

func sampleResults() []*models.ConversionResult {
	return []*models.ConversionResult{
		th.Result("beach", 1000, 300),
		th.Result("logo", 100, 150),
		th.Result("empty", 0, 0),
	}
}

func TestReports(t *testing.T) {
	t.Run("ReportToCSV", func(t *testing.T) {
		data, err := ReportToCSV(sampleResults())
		if err != nil {
			t.Fatalf("ReportToCSV failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Name,Output,Original Bytes,Converted Bytes,Saved Bytes,Saved") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "beach,beach.jpg,1000,300,700,70.0%") {
			t.Errorf("CSV missing beach row, got: %s", output)
		}
		if !strings.Contains(output, "logo,logo.jpg,100,150,-50,-50.0%") {
			t.Errorf("CSV missing logo row, got: %s", output)
		}
		if !strings.Contains(output, "empty,empty.jpg,0,0,0,N/A") {
			t.Errorf("CSV missing empty row, got: %s", output)
		}
	})

	t.Run("ReportToMarkdown", func(t *testing.T) {
		data, err := ReportToMarkdown(sampleResults())
		if err != nil {
			t.Fatalf("ReportToMarkdown failed: %v", err)
		}
		output := string(data)

		for _, want := range []string{"# Conversion Report", "**Files**: 3", "| 1 | beach.jpg |", "| 2 | logo.jpg |", "70.0%"} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ReportToText", func(t *testing.T) {
		data, err := ReportToText(sampleResults())
		if err != nil {
			t.Fatalf("ReportToText failed: %v", err)
		}
		output := string(data)

		if !strings.Contains(output, "Files: 3") {
			t.Errorf("Text missing file count, got: %s", output)
		}
		if !strings.Contains(output, "1. beach.jpg") || !strings.Contains(output, "3. empty.jpg") {
			t.Errorf("Text missing entries, got: %s", output)
		}
	})

	t.Run("ReportToText with no results", func(t *testing.T) {
		data, err := ReportToText(nil)
		if err != nil {
			t.Fatalf("ReportToText failed: %v", err)
		}
		if !strings.Contains(string(data), "(N/A)") {
			t.Errorf("expected N/A savings, got: %s", data)
		}
	})
}

func TestParseReportFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    ReportFormat
		wantErr bool
	}{
		{in: "csv", want: ReportCSV},
		{in: "markdown", want: ReportMarkdown},
		{in: "md", want: ReportMarkdown},
		{in: "txt", want: ReportText},
		{in: "text", want: ReportText},
		{in: "json", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseReportFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidFlag) {
					t.Errorf("expected ErrInvalidFlag, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseReportFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestWriteReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteReport(sampleResults(), ReportMarkdown, dir)
	if err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if path != filepath.Join(dir, "report.md") {
		t.Errorf("path = %s, want report.md in %s", path, dir)
	}
	th.AssertFileExists(t, path)
	if content := th.MustReadFile(t, path); !strings.Contains(content, "beach.jpg") {
		t.Errorf("report missing beach.jpg: %s", content)
	}
}
