package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_notes/internal/engine"
)

// Fragment is one caption snippet, in track order.
type Fragment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// CaptionSource returns the ordered caption fragments of a video.
type CaptionSource interface {
	Fragments(ctx context.Context, videoID string) ([]Fragment, error)
}

// YouTube fetches caption tracks from youtube.com.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML (works from any IP)
// Fallback: engagement panel /next → /get_transcript (requires valid session)
// Fallback: ANDROID Innertube /player → captionTracks
//
// Each strategy is attempted once; there is no retry.
type YouTube struct {
	HTTPClient *http.Client
	Langs      []string // preferred caption languages
	BaseURL    string   // "" = https://www.youtube.com
}

// NewYouTube returns a caption source configured from engine.Cfg.
func NewYouTube() *YouTube {
	return &YouTube{
		HTTPClient: engine.Cfg.HTTPClient,
		Langs:      engine.Cfg.CaptionLangs,
	}
}

func (y *YouTube) client() *http.Client {
	if y.HTTPClient != nil {
		return y.HTTPClient
	}
	return http.DefaultClient
}

func (y *YouTube) baseURL() string {
	if y.BaseURL != "" {
		return strings.TrimRight(y.BaseURL, "/")
	}
	return ytBaseURL
}

// Fragments implements CaptionSource.
func (y *YouTube) Fragments(ctx context.Context, videoID string) ([]Fragment, error) {
	if videoID == "" {
		return nil, ErrNoVideoID
	}

	frags, err := y.viaPageScrape(ctx, videoID)
	if err == nil {
		return frags, nil
	}
	slog.Warn("youtube: page scrape failed, trying engagement panel",
		slog.String("id", videoID), slog.Any("err", err))

	frags, err = y.viaEngagementPanel(ctx, videoID)
	if err == nil {
		return frags, nil
	}
	slog.Warn("youtube: engagement panel failed, trying player",
		slog.String("id", videoID), slog.Any("err", err))

	return y.viaPlayer(ctx, videoID)
}

// ytInitialPlayerResponseMarker marks the start of the player response JSON in watch page HTML.
const ytInitialPlayerResponseMarker = "ytInitialPlayerResponse = "

func (y *YouTube) viaPageScrape(ctx context.Context, videoID string) ([]Fragment, error) {
	watchURL := y.baseURL() + "/watch?v=" + url.QueryEscape(videoID)

	headers := engine.ChromeHeaders()
	headers["accept-language"] = "en-US,en;q=0.9"
	delete(headers, "accept-encoding") // let net/http negotiate gzip
	body, err := y.get(ctx, watchURL, headers, maxWatchPageBytes)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return nil, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.fromPlayerResponse(ctx, playerResp)
}

func (y *YouTube) viaPlayer(ctx context.Context, videoID string) ([]Fragment, error) {
	data, err := y.post(ctx, y.baseURL()+ytPlayerPath, innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	}, map[string]string{
		"User-Agent":               ytAndroidUA,
		"X-Youtube-Client-Name":    "3",
		"X-Youtube-Client-Version": ytAndroidVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(data, &playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return y.fromPlayerResponse(ctx, playerResp)
}

func (y *YouTube) fromPlayerResponse(ctx context.Context, playerResp innertubePlayerResp) ([]Fragment, error) {
	if playerResp.Captions == nil {
		if playerResp.PlayabilityStatus != nil && playerResp.PlayabilityStatus.Reason != "" {
			return nil, fmt.Errorf("captions unavailable: %s", playerResp.PlayabilityStatus.Reason)
		}
		return nil, errors.New("no captions in player response")
	}
	tracks := playerResp.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, errors.New("no caption tracks")
	}
	track, ok := pickBestTrack(tracks, y.Langs)
	if !ok {
		return nil, errors.New("all caption tracks require PoToken")
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences.
// Tracks that require a PoToken only work in a browser and are skipped.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	// 1. Manual track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	// 2. Auto-generated track in preferred language
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	// 3. Any English track
	for _, t := range usable {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t, true
		}
	}
	return usable[0], true
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]Fragment, error) {
	body, err := y.get(ctx, baseURL, map[string]string{"User-Agent": engine.UserAgentBot}, maxTimedTextBytes)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	return parseTimedText(body)
}

func parseTimedText(body []byte) ([]Fragment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}
	frags := make([]Fragment, 0, len(tt.Lines))
	for _, line := range tt.Lines {
		text := engine.CleanHTML(line.Text)
		if text == "" {
			continue
		}
		frags = append(frags, Fragment{Text: text, Start: line.Start, Duration: line.Dur})
	}
	return frags, nil
}

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", errors.New("getTranscriptEndpoint not found in engagement panels")
}

// parseTranscriptSegments turns a /get_transcript response into fragments, one per segment.
func parseTranscriptSegments(resp ytGetTranscriptResp) []Fragment {
	var frags []Fragment
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		segs := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range segs {
			if seg.TranscriptSegmentRenderer == nil {
				continue
			}
			var parts []string
			for _, run := range seg.TranscriptSegmentRenderer.Snippet.Runs {
				if t := strings.TrimSpace(run.Text); t != "" {
					parts = append(parts, t)
				}
			}
			if len(parts) > 0 {
				frags = append(frags, Fragment{Text: strings.Join(parts, " ")})
			}
		}
	}
	return frags
}

// viaEngagementPanel fetches a transcript via:
//  1. POST /next → get engagementPanels containing transcript continuation token
//  2. POST /get_transcript with the token → JSON segments
func (y *YouTube) viaEngagementPanel(ctx context.Context, videoID string) ([]Fragment, error) {
	visitorData := generateVisitorData()

	nextData, err := y.postInnerTubeWEB(ctx, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData),
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}

	transcriptData, err := y.postInnerTubeWEB(ctx, ytGetTranscriptPath, map[string]any{
		"params": token,
		"context": map[string]any{
			"client": ytWebClientCtx{
				ClientName:    "WEB",
				ClientVersion: ytWebVersion,
				VisitorData:   visitorData,
				Hl:            "en",
				Gl:            "US",
			},
		},
	}, visitorData)
	if err != nil {
		return nil, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return nil, fmt.Errorf("decode transcript: %w", err)
	}

	frags := parseTranscriptSegments(transcriptResp)
	if len(frags) == 0 {
		return nil, errors.New("empty transcript segments")
	}
	return frags, nil
}

// extractJSON returns the first balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
		} else {
			switch c {
			case '"':
				inStr = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return b[:i+1]
				}
			}
		}
	}
	return nil
}
