// package formatter renders duplicate reports and run history as CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/spotclean/internal/models"
	"github.com/desertthunder/spotclean/internal/shared"
)

// Format is an output format accepted by [Render] and [WriteReport].
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "markdown"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat accepts a format name or a common alias (md, text).
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "markdown", "md":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q (csv, markdown, txt, json)", shared.ErrInvalidArgument, name)
	}
}

// Extension returns the file extension used for f.
func (f Format) Extension() string {
	if f == Markdown {
		return "md"
	}
	return string(f)
}

// ReportToCSV writes one row per duplicated track with columns: Playlist ID, Playlist, Owner, Track ID, Track,
// URI, First Position, Extra Copies
func ReportToCSV(summaries []models.PlaylistSummary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Playlist ID", "Playlist", "Owner", "Track ID", "Track", "URI", "First Position", "Extra Copies"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range summaries {
		for _, e := range s.Report.Entries {
			record := []string{
				s.Playlist.ID,
				s.Playlist.Name,
				s.Playlist.Owner,
				e.Canonical.Identity,
				e.Canonical.Label(),
				e.Canonical.Locator,
				strconv.Itoa(e.Canonical.Position),
				strconv.Itoa(e.Surplus),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func playlistTitle(p models.Playlist) string {
	if p.Name == "" {
		return p.ID
	}
	return p.Name
}

// ReportToMarkdown renders a section per playlist listing its duplicated tracks
func ReportToMarkdown(summaries []models.PlaylistSummary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Duplicate Report\n\n")
	buf.WriteString(fmt.Sprintf("**Playlists**: %d\n", len(summaries)))
	buf.WriteString(fmt.Sprintf("**Extra copies**: %d\n\n", totalSurplus(summaries)))

	for _, s := range summaries {
		buf.WriteString(fmt.Sprintf("## %s\n\n", playlistTitle(s.Playlist)))
		if s.Playlist.Owner != "" {
			buf.WriteString(fmt.Sprintf("**Owner**: %s\n", s.Playlist.Owner))
		}
		buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", s.Playlist.TrackCount))

		if s.Report.Empty() {
			buf.WriteString("_No duplicates._\n\n")
			continue
		}

		for i, e := range s.Report.Entries {
			buf.WriteString(fmt.Sprintf("%d. %s `%s` (first at %d, %d extra)\n",
				i+1, e.Canonical.Label(), e.Canonical.Identity, e.Canonical.Position, e.Surplus))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// ReportToText renders the report as plain text
func ReportToText(summaries []models.PlaylistSummary) ([]byte, error) {
	var buf bytes.Buffer

	for i, s := range summaries {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("Playlist: %s (%s)\n", playlistTitle(s.Playlist), s.Playlist.ID))
		buf.WriteString(fmt.Sprintf("Tracks: %d, duplicated: %d, extra copies: %d\n",
			s.Playlist.TrackCount, s.Report.Len(), s.Report.Total()))

		for _, e := range s.Report.Entries {
			buf.WriteString(fmt.Sprintf("  %s [%s] x%d\n", e.Canonical.Label(), e.Canonical.Identity, e.Surplus+1))
		}
	}

	return buf.Bytes(), nil
}

func totalSurplus(summaries []models.PlaylistSummary) int {
	total := 0
	for _, s := range summaries {
		total += s.Report.Total()
	}
	return total
}

// Render converts summaries to the given format
func Render(summaries []models.PlaylistSummary, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ReportToCSV(summaries)
	case Markdown:
		return ReportToMarkdown(summaries)
	case Text:
		return ReportToText(summaries)
	case JSON:
		return shared.MarshalJSON(summaries, true)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", shared.ErrInvalidArgument, format)
	}
}

// WriteReportTo renders summaries and writes them to w
func WriteReportTo(w io.Writer, summaries []models.PlaylistSummary, format Format) error {
	data, err := Render(summaries, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteReport renders summaries to a file and returns its path.
//
// Defaults to duplicates.{ext} in the working directory.
func WriteReport(summaries []models.PlaylistSummary, format Format, path string) (string, error) {
	if path == "" {
		path = "duplicates." + format.Extension()
	}

	data, err := Render(summaries, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}

	return path, nil
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

// RunsToText renders run history, newest first as given, one line per run
func RunsToText(runs []*models.CleanupRun) []byte {
	var buf bytes.Buffer
	if len(runs) == 0 {
		buf.WriteString("No cleanup runs recorded.\n")
		return buf.Bytes()
	}

	for _, r := range runs {
		buf.WriteString(fmt.Sprintf("#%d %s %s %s removed=%d reinserted=%d started=%s",
			r.Sequence(), r.PlaylistID(), r.Mode(), r.Status(), r.Removed(), r.Reinserted(), formatTime(r.StartedAt())))
		if ids := r.IdentityList(); ids != "" {
			buf.WriteString(" tracks=" + ids)
		}
		if msg := r.ErrorMessage(); msg != "" {
			buf.WriteString(fmt.Sprintf(" error=%q", msg))
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}
