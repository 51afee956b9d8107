package notes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_notes/internal/engine"
	"github.com/anatolykoptev/go_notes/internal/engine/sources"
)

// ErrEmptyTranscript is returned when the caption track has no text.
var ErrEmptyTranscript = errors.New("empty transcript")

// Transcript is the flattened caption track of one video.
type Transcript struct {
	VideoID   string             `json:"video_id"`
	Text      string             `json:"text"`
	Fragments []sources.Fragment `json:"-"`
	Truncated bool               `json:"truncated,omitempty"`
}

// TranscriptError reports a failed extraction. The underlying error is kept intact.
type TranscriptError struct {
	Locator string
	VideoID string // empty when the locator could not be parsed
	Err     error
}

func (e *TranscriptError) Error() string {
	if e.VideoID == "" {
		return fmt.Sprintf("%q: %v", e.Locator, e.Err)
	}
	return fmt.Sprintf("video %s: %v", e.VideoID, e.Err)
}

func (e *TranscriptError) Unwrap() error { return e.Err }

// Extractor turns a video locator into transcript text.
type Extractor struct {
	Source   sources.CaptionSource
	MaxChars int // 0 = unlimited
}

// NewExtractor returns an extractor backed by YouTube, configured from engine.Cfg.
func NewExtractor() *Extractor {
	return &Extractor{
		Source:   sources.NewYouTube(),
		MaxChars: engine.Cfg.MaxTranscriptChars,
	}
}

// Extract parses the video id out of locator, fetches its captions and joins
// the fragments with single spaces in track order.
// Any failure is returned as a *TranscriptError.
func (e *Extractor) Extract(ctx context.Context, locator string) (Transcript, error) {
	engine.IncrTranscriptRequests()

	videoID, err := sources.ParseVideoID(locator)
	if err != nil {
		engine.IncrTranscriptErrors()
		return Transcript{}, &TranscriptError{Locator: locator, Err: err}
	}

	frags, err := e.Source.Fragments(ctx, videoID)
	if err != nil {
		engine.IncrTranscriptErrors()
		return Transcript{}, &TranscriptError{Locator: locator, VideoID: videoID, Err: err}
	}

	text := JoinFragments(frags)
	if text == "" {
		engine.IncrTranscriptErrors()
		return Transcript{}, &TranscriptError{Locator: locator, VideoID: videoID, Err: ErrEmptyTranscript}
	}

	t := Transcript{VideoID: videoID, Text: text, Fragments: frags}
	if e.MaxChars > 0 {
		t.Text = engine.TruncateRunes(text, e.MaxChars, "")
		t.Truncated = t.Text != text
	}
	return t, nil
}

// JoinFragments concatenates fragment texts with single spaces, skipping blanks.
func JoinFragments(frags []sources.Fragment) string {
	parts := make([]string, 0, len(frags))
	for _, f := range frags {
		if s := strings.TrimSpace(f.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// ThumbnailURL returns the preview image of a video.
func ThumbnailURL(videoID string) string {
	return sources.ThumbnailURL(videoID)
}
