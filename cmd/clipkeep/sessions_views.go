package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"clipkeep/internal/records"
	"clipkeep/internal/storage"
)

type sessionEntities struct {
	Media      []records.Media
	Transcript []records.Transcript
	Highlights []records.HighlightSet
}

func buildSessionRows(rows []storage.SessionRow, now time.Time) [][]string {
	if len(rows) == 0 {
		return nil
	}
	sorted := make([]storage.SessionRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastSavedAt.After(sorted[j].LastSavedAt)
	})

	out := make([][]string, 0, len(sorted))
	for _, row := range sorted {
		out = append(out, []string{
			row.ID,
			row.CreatedAt.Local().Format("2006-01-02 15:04"),
			humanize.RelTime(row.LastSavedAt, now, "ago", "from now"),
		})
	}
	return out
}

func buildSessionSummary(entities sessionEntities) []string {
	var lines []string

	if len(entities.Media) == 0 {
		lines = append(lines, "No media saved for this session.")
	}
	for _, media := range entities.Media {
		lines = append(lines, fmt.Sprintf("Media: %s", displayTitle(media.Title)))
		lines = append(lines, fmt.Sprintf("  Size:     %s", formatSize(media.SizeBytes)))
		lines = append(lines, fmt.Sprintf("  Duration: %s", formatDuration(media.DurationSeconds)))
		lines = append(lines, fmt.Sprintf("  Payload:  %s", yesNo(media.HasPayload())))
	}

	for _, transcript := range entities.Transcript {
		sentences := transcript.SentenceCount()
		lines = append(lines, fmt.Sprintf("Transcript: %d sections, %d sentences",
			len(transcript.Sections), sentences))
	}
	for _, set := range entities.Highlights {
		lines = append(lines, fmt.Sprintf("Highlights: %d selected", len(set.SentenceIDs)))
	}
	return lines
}

func displayTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "untitled clip"
	}
	return cases.Title(language.Und).String(title)
}

// formatSize clamps negative sizes from untrusted records instead of
// letting the unsigned conversion wrap.
func formatSize(sizeBytes int64) string {
	if sizeBytes < 0 {
		sizeBytes = 0
	}
	return humanize.IBytes(uint64(sizeBytes))
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "unknown"
	}
	d := time.Duration(seconds * float64(time.Second)).Round(time.Second)
	return d.String()
}
