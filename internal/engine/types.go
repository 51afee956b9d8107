package engine

// --- MCP tool inputs ---

type StudyNotesInput struct {
	URL     string `json:"url" jsonschema:"YouTube video link (youtube.com/watch?v=... or youtu.be/...)"`
	Subject string `json:"subject" jsonschema:"Subject id or full name: dbms, os, oops, cn"`
}

type VideoTranscriptInput struct {
	URL string `json:"url" jsonschema:"YouTube video link (youtube.com/watch?v=... or youtu.be/...)"`
}

type ListSubjectsInput struct{}

// --- Outputs shared by MCP tools and the web API ---

type TranscriptOutput struct {
	VideoID      string `json:"video_id"`
	ThumbnailURL string `json:"thumbnail_url"`
	Text         string `json:"text"`
	Chars        int    `json:"chars"`
	Truncated    bool   `json:"truncated,omitempty"`
}

type PreviewOutput struct {
	VideoID      string `json:"video_id"`
	ThumbnailURL string `json:"thumbnail_url"`
}
