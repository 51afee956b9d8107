package notesserver

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/anatolykoptev/go_notes/internal/engine"
	"github.com/anatolykoptev/go_notes/internal/engine/notes"
	"github.com/anatolykoptev/go_notes/internal/engine/sources"
	"github.com/anatolykoptev/go_notes/internal/toolutil"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageView is what the index template renders.
type pageView struct {
	Subjects []notes.Subject
	Form     notes.Request
	Result   *notes.Result
	Error    string
	Step     string
}

// Web serves the form page and the JSON API.
type Web struct {
	pipeline *notes.Pipeline
}

// NewWeb returns the web handler set for p.
func NewWeb(p *notes.Pipeline) *Web {
	return &Web{pipeline: p}
}

// Routes builds the chi router.
func (wb *Web) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/", wb.handleIndex)
	r.Post("/", wb.handleSubmit)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		toolutil.WriteJSON(w, http.StatusOK, map[string]any{"ok": true, "busy": wb.pipeline.Busy()})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/subjects", wb.handleSubjects)
		r.Get("/preview", wb.handlePreview)
		r.Get("/transcript", wb.handleTranscript)
		r.Post("/notes", wb.handleNotes)
		r.Get("/download/{subject}", wb.handleDownload)
	})
	return r
}

func (wb *Web) handleIndex(w http.ResponseWriter, _ *http.Request) {
	wb.render(w, http.StatusOK, pageView{Subjects: notes.Subjects(), Form: notes.Request{Subject: "dbms"}})
}

func (wb *Web) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := notes.Request{
		Locator: strings.TrimSpace(r.PostFormValue("url")),
		Subject: r.PostFormValue("subject"),
	}
	view := pageView{Subjects: notes.Subjects(), Form: req}

	if req.Locator == "" {
		view.Error = "Please enter a YouTube video link."
		wb.render(w, http.StatusBadRequest, view)
		return
	}

	res, err := wb.pipeline.Run(r.Context(), req)
	if err != nil {
		status, body := toolutil.Classify(err)
		view.Error, view.Step = body.Error, body.Step
		wb.render(w, status, view)
		return
	}
	view.Result = res
	wb.render(w, http.StatusOK, view)
}

func (wb *Web) render(w http.ResponseWriter, status int, view pageView) {
	var buf bytes.Buffer
	if err := indexTmpl.Execute(&buf, view); err != nil {
		slog.Error("render index", slog.Any("error", err))
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (wb *Web) handleSubjects(w http.ResponseWriter, _ *http.Request) {
	toolutil.WriteJSON(w, http.StatusOK, SubjectsOutput{Subjects: notes.Subjects()})
}

func (wb *Web) handlePreview(w http.ResponseWriter, r *http.Request) {
	id, err := sources.ParseVideoID(r.URL.Query().Get("url"))
	if err != nil {
		toolutil.WriteError(w, toolutil.BadRequest("%v", err))
		return
	}
	toolutil.WriteJSON(w, http.StatusOK, engine.PreviewOutput{VideoID: id, ThumbnailURL: notes.ThumbnailURL(id)})
}

func (wb *Web) handleTranscript(w http.ResponseWriter, r *http.Request) {
	tr, err := wb.pipeline.Extractor.Extract(r.Context(), r.URL.Query().Get("url"))
	if err != nil {
		toolutil.WriteJSON(w, http.StatusUnprocessableEntity, toolutil.ErrorBody{Error: err.Error(), Step: string(notes.StepTranscript)})
		return
	}
	toolutil.WriteJSON(w, http.StatusOK, transcriptOutput(tr))
}

func (wb *Web) handleNotes(w http.ResponseWriter, r *http.Request) {
	var req notes.Request
	if err := toolutil.DecodeJSON(r.Body, &req); err != nil {
		toolutil.WriteError(w, err)
		return
	}
	if strings.TrimSpace(req.Locator) == "" {
		toolutil.WriteError(w, toolutil.BadRequest("url is required"))
		return
	}
	res, err := wb.pipeline.Run(r.Context(), req)
	if err != nil {
		toolutil.WriteError(w, err)
		return
	}
	toolutil.WriteJSON(w, http.StatusOK, res)
}

func (wb *Web) handleDownload(w http.ResponseWriter, r *http.Request) {
	param, err := url.PathUnescape(chi.URLParam(r, "subject"))
	if err != nil {
		toolutil.WriteError(w, toolutil.BadRequest("subject: %v", err))
		return
	}
	subject, err := notes.LookupSubject(param)
	if err != nil {
		toolutil.WriteError(w, err)
		return
	}
	doc, ok := wb.pipeline.Document(subject.ID)
	if !ok {
		toolutil.WriteJSON(w, http.StatusNotFound, toolutil.ErrorBody{Error: "no notes exported for " + subject.Name + " yet"})
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.FileName+`"`)
	http.ServeFile(w, r, doc.Path)
}
