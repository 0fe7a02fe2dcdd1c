// package formatter renders connection statuses and broadcast results for the CLI (plain text, Markdown, JSON)
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/desertthunder/blastoff/internal/models"
)

// FormatStatuses renders each platform's connection state as plain text.
func FormatStatuses(statuses []models.ConnectionStatus) []byte {
	var buf bytes.Buffer

	for _, s := range statuses {
		if s.Connected {
			buf.WriteString(fmt.Sprintf("%-10s connected", s.Platform))
			if s.DisplayName != "" {
				buf.WriteString(fmt.Sprintf(" as %s", s.DisplayName))
			}
			if !s.ExpiresAt.IsZero() {
				buf.WriteString(fmt.Sprintf(" (expires %s)", s.ExpiresAt.Format("2006-01-02 15:04")))
			}
		} else {
			buf.WriteString(fmt.Sprintf("%-10s not connected", s.Platform))
		}
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}

// FormatResult renders a broadcast result as plain text, one line per
// attempted platform plus a summary line.
func FormatResult(result *models.BroadcastResult) []byte {
	var buf bytes.Buffer

	for _, e := range result.Entries {
		mark := "✗"
		if e.Success {
			mark = "✓"
		}
		buf.WriteString(fmt.Sprintf("%s %-10s %s", mark, e.Platform, e.Detail))
		if e.Receipt != nil && e.Receipt.Method != "" {
			buf.WriteString(fmt.Sprintf(" (via %s)", e.Receipt.Method))
		}
		if e.Success && e.Receipt != nil && !e.Receipt.MediaAttached {
			buf.WriteString(" [text only]")
		}
		buf.WriteByte('\n')
	}

	buf.WriteString(fmt.Sprintf("\n%d/%d platforms posted\n", result.Succeeded(), len(result.Entries)))
	return buf.Bytes()
}

// ResultToMarkdown renders a broadcast result as a Markdown report.
func ResultToMarkdown(a models.Announcement, result *models.BroadcastResult) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Blast Off Report\n\n")
	if a.Title != "" {
		buf.WriteString(fmt.Sprintf("**Title**: %s\n\n", a.Title))
	}
	buf.WriteString(fmt.Sprintf("**Message**: %s\n\n", a.Message))
	if a.URL != "" {
		buf.WriteString(fmt.Sprintf("**Link**: %s\n\n", a.URL))
	}
	buf.WriteString(fmt.Sprintf("**Sent**: %s\n\n", result.Timestamp.Format(time.RFC3339)))

	buf.WriteString("## Platforms\n\n")
	for _, e := range result.Entries {
		status := "failed"
		if e.Success {
			status = "posted"
		}
		buf.WriteString(fmt.Sprintf("- **%s**: %s — %s\n", e.Platform, status, e.Detail))
	}

	buf.WriteString(fmt.Sprintf("\n%d of %d platforms posted.\n", result.Succeeded(), len(result.Entries)))
	return buf.Bytes()
}

// ToJSON renders any value as indented JSON for machine-readable output.
func ToJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteReport writes a Markdown broadcast report to the given path.
//
// Defaults to blastoff_{timestamp}.md when path is empty.
func WriteReport(a models.Announcement, result *models.BroadcastResult, path string) (string, error) {
	if path == "" {
		path = fmt.Sprintf("blastoff_%s.md", result.Timestamp.Format("20060102_150405"))
	}

	if err := os.WriteFile(path, ResultToMarkdown(a, result), 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}
