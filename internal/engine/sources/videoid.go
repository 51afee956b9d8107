package sources

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNoVideoID is returned when a locator carries no extractable video identifier.
var ErrNoVideoID = errors.New("no video id in locator")

const (
	videoIDMarker   = "v="
	shortLinkMarker = "youtu.be/"
)

var bareIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ParseVideoID returns the identifier following the last "v=" in locator,
// cut at the first '&' or '#'. youtu.be short links and bare identifiers
// are accepted as well.
func ParseVideoID(locator string) (string, error) {
	locator = strings.TrimSpace(locator)

	var id string
	switch {
	case strings.Contains(locator, videoIDMarker):
		id = locator[strings.LastIndex(locator, videoIDMarker)+len(videoIDMarker):]
	case strings.Contains(locator, shortLinkMarker):
		id = locator[strings.LastIndex(locator, shortLinkMarker)+len(shortLinkMarker):]
		id, _, _ = strings.Cut(id, "?")
	case bareIDRe.MatchString(locator):
		return locator, nil
	default:
		return "", ErrNoVideoID
	}

	if i := strings.IndexAny(id, "&#"); i >= 0 {
		id = id[:i]
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrNoVideoID
	}
	return id, nil
}

// ThumbnailURL returns the preview image URL for a video id.
func ThumbnailURL(videoID string) string {
	return "http://img.youtube.com/vi/" + videoID + "/0.jpg"
}
