// package formatter renders dashboard views and simulator history as plain text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/lmx/internal/dashboard"
	"github.com/desertthunder/lmx/internal/models"
	"github.com/desertthunder/lmx/internal/shared"
)

// Format names accepted by [Render] and [RenderHistory].
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
	FormatJSON     = "json"
)

// Formats lists every supported format.
var Formats = []string{FormatText, FormatMarkdown, FormatCSV, FormatJSON}

// Render converts v to the named format.
func Render(v dashboard.View, format string) ([]byte, error) {
	switch format {
	case "", FormatText:
		return ViewToText(v)
	case FormatMarkdown:
		return ViewToMarkdown(v)
	case FormatCSV:
		return ViewToCSV(v)
	case FormatJSON:
		return shared.MarshalJSON(v, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// ViewToText converts a View to aligned plain text.
func ViewToText(v dashboard.View) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("State:             %s\n", v.State))
	buf.WriteString(fmt.Sprintf("Records Processed: %s\n", v.Processed))
	buf.WriteString(fmt.Sprintf("Progress:          %s\n", v.Progress))
	buf.WriteString(fmt.Sprintf("Speed:             %s\n", v.Speed))
	buf.WriteString(fmt.Sprintf("Time Remaining:    %s\n", v.Remaining))

	if v.HasControl() {
		buf.WriteString(fmt.Sprintf("Available Action:  %s\n", v.Button))
	}
	if v.HasError() {
		buf.WriteString(fmt.Sprintf("Error:             %s\n", v.Error))
	}

	return buf.Bytes(), nil
}

// ViewToMarkdown converts a View to a Markdown section with a metrics table.
func ViewToMarkdown(v dashboard.View) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Migration Status\n\n")
	buf.WriteString(fmt.Sprintf("**State**: %s\n\n", v.State))

	if v.HasError() {
		buf.WriteString(fmt.Sprintf("> **Error**: %s\n\n", v.Error))
	}

	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("| --- | --- |\n")
	buf.WriteString(fmt.Sprintf("| Records Processed | %s |\n", v.Processed))
	buf.WriteString(fmt.Sprintf("| Progress | %s |\n", v.Progress))
	buf.WriteString(fmt.Sprintf("| Speed | %s |\n", v.Speed))
	buf.WriteString(fmt.Sprintf("| Time Remaining | %s |\n", v.Remaining))

	if v.HasControl() {
		buf.WriteString(fmt.Sprintf("\n**Available Action**: %s\n", v.Button))
	}

	return buf.Bytes(), nil
}

// ViewToCSV converts a View to a header row and one record with columns: State, Processed, Progress, Speed, Remaining, Action, Error
func ViewToCSV(v dashboard.View) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"State", "Processed", "Progress", "Speed", "Remaining", "Action", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	record := []string{v.State, v.Processed, v.Progress, v.Speed, v.Remaining, v.Action, v.Error}
	if err := writer.Write(record); err != nil {
		return nil, fmt.Errorf("failed to write CSV record: %w", err)
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ViewToLine renders a single log-style line, used when watching.
func ViewToLine(v dashboard.View, at time.Time) string {
	line := fmt.Sprintf("%s  %-12s %7s  %s  eta %s", at.Format(time.TimeOnly), v.State, v.Progress, v.Processed, v.Remaining)
	if v.HasError() {
		line += "  [" + v.Error + "]"
	}
	return line
}

// RenderHistory converts simulator transitions to the named format.
func RenderHistory(transitions []models.Transition, format string) ([]byte, error) {
	switch format {
	case "", FormatText:
		return HistoryToText(transitions)
	case FormatMarkdown:
		return HistoryToMarkdown(transitions)
	case FormatCSV:
		return HistoryToCSV(transitions)
	case FormatJSON:
		return shared.MarshalJSON(transitions, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// HistoryToText lists transitions one per line.
func HistoryToText(transitions []models.Transition) ([]byte, error) {
	var buf bytes.Buffer

	if len(transitions) == 0 {
		buf.WriteString("No transitions recorded\n")
		return buf.Bytes(), nil
	}

	for _, t := range transitions {
		buf.WriteString(fmt.Sprintf("%s  %-12s %s\n", t.CreatedAt.Format(time.DateTime), t.State, strconv.FormatFloat(t.Progress, 'f', -1, 64)))
	}

	return buf.Bytes(), nil
}

// HistoryToMarkdown renders transitions as a Markdown table.
func HistoryToMarkdown(transitions []models.Transition) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# State Transitions\n\n")
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(transitions)))
	buf.WriteString("| # | Time | State | Progress |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, t := range transitions {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n",
			t.ID, t.CreatedAt.Format(time.DateTime), t.State, strconv.FormatFloat(t.Progress, 'f', -1, 64)))
	}

	return buf.Bytes(), nil
}

// HistoryToCSV converts transitions to CSV with columns: ID, State, Progress, CreatedAt
func HistoryToCSV(transitions []models.Transition) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"ID", "State", "Progress", "CreatedAt"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, t := range transitions {
		record := []string{
			strconv.FormatInt(t.ID, 10),
			string(t.State),
			strconv.FormatFloat(t.Progress, 'f', -1, 64),
			t.CreatedAt.Format(time.RFC3339),
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

// WriteReport renders v and writes it to path.
func WriteReport(v dashboard.View, format, path string) error {
	data, err := Render(v, format)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
