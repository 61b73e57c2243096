package testsupport

import (
	"clipkeep/internal/records"
)

// MediaFixture returns a small media entity with a payload for tests.
func MediaFixture(sessionID string) records.Media {
	media := records.NewMedia(sessionID, "Fixture Clip", []byte("fixture payload bytes"))
	media.DurationSeconds = 42.5
	media.Width = 1280
	media.Height = 720
	return media
}

// TranscriptFixture returns a two-section transcript referencing mediaID.
func TranscriptFixture(sessionID, mediaID string) records.Transcript {
	return records.NewTranscript(sessionID, mediaID, []records.Section{
		{Title: "Opening", Sentences: []records.Sentence{
			{ID: "sent-1", Text: "Welcome back.", StartSeconds: 0, EndSeconds: 1.5},
			{ID: "sent-2", Text: "Today we ship.", StartSeconds: 1.5, EndSeconds: 3, Suggested: true},
		}},
		{Title: "Detail", Sentences: []records.Sentence{
			{ID: "sent-3", Text: "The fix landed.", StartSeconds: 3, EndSeconds: 5},
		}},
	})
}

// HighlightFixture returns a highlight set selecting the suggested sentence.
func HighlightFixture(sessionID, mediaID string) records.HighlightSet {
	return records.NewHighlightSet(sessionID, mediaID, []string{"sent-2"})
}
