package notesserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notes/internal/engine"
	"github.com/anatolykoptev/go_notes/internal/engine/notes"
)

// SubjectsOutput lists the subject catalogue.
type SubjectsOutput struct {
	Subjects []notes.Subject `json:"subjects"`
}

func registerStudyNotes(server *mcp.Server, p *notes.Pipeline) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "study_notes",
		Description: "Turn a YouTube lecture into study notes for one subject (dbms, os, oops, cn). Fetches the video transcript, asks the language model for structured notes and 5-7 placement aptitude questions, and exports both to '<Subject>_study_notes.pdf'. Only one run at a time; a concurrent call fails with 'a run is already in progress'.",
		Annotations: &mcp.ToolAnnotations{Title: "Study notes from a video"},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.StudyNotesInput) (*mcp.CallToolResult, *notes.Result, error) {
		if strings.TrimSpace(input.URL) == "" {
			return nil, nil, fmt.Errorf("url is required")
		}
		if strings.TrimSpace(input.Subject) == "" {
			return nil, nil, fmt.Errorf("subject is required")
		}
		res, err := p.Run(ctx, notes.Request{Locator: input.URL, Subject: input.Subject})
		if err != nil {
			return nil, nil, err
		}
		return nil, res, nil
	})
}

func registerVideoTranscript(server *mcp.Server, ex *notes.Extractor) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_transcript",
		Description: "Fetch the caption transcript of a YouTube video as plain text (fragments joined with spaces, in order). Manual captions in the configured languages are preferred over auto-generated ones.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input engine.VideoTranscriptInput) (*mcp.CallToolResult, engine.TranscriptOutput, error) {
		if strings.TrimSpace(input.URL) == "" {
			return nil, engine.TranscriptOutput{}, fmt.Errorf("url is required")
		}
		tr, err := ex.Extract(ctx, input.URL)
		if err != nil {
			return nil, engine.TranscriptOutput{}, err
		}
		return nil, transcriptOutput(tr), nil
	})
}

func registerListSubjects(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_subjects",
		Description: "List the subjects study_notes accepts, with their short ids.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(_ context.Context, _ *mcp.CallToolRequest, _ engine.ListSubjectsInput) (*mcp.CallToolResult, SubjectsOutput, error) {
		return nil, SubjectsOutput{Subjects: notes.Subjects()}, nil
	})
}

func transcriptOutput(tr notes.Transcript) engine.TranscriptOutput {
	return engine.TranscriptOutput{
		VideoID:      tr.VideoID,
		ThumbnailURL: notes.ThumbnailURL(tr.VideoID),
		Text:         tr.Text,
		Chars:        len([]rune(tr.Text)),
		Truncated:    tr.Truncated,
	}
}
