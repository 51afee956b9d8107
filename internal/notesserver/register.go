// Package notesserver exposes the study-notes pipeline over MCP and HTTP.
package notesserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/anatolykoptev/go_notes/internal/engine/notes"
)

// RegisterTools registers the study-notes tools on the given MCP server:
// study_notes, video_transcript, list_subjects.
func RegisterTools(server *mcp.Server, p *notes.Pipeline) {
	registerStudyNotes(server, p)
	registerVideoTranscript(server, p.Extractor)
	registerListSubjects(server)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 3
