package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/anatolykoptev/go_notes/internal/engine"
)

// ErrBusy is returned when a run is triggered while another one is in flight.
var ErrBusy = errors.New("a run is already in progress")

// Step names one stage of a run.
type Step string

const (
	StepTranscript Step = "transcript"
	StepNotes      Step = "notes"
	StepQuestions  Step = "questions"
	StepExport     Step = "export"
)

// StepError reports which stage terminated a run.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("%s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// FailedStep returns the stage that produced err, or "" if err is not a *StepError.
func FailedStep(err error) Step {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return ""
}

// Request triggers one run.
type Request struct {
	Locator string `json:"url"`
	Subject string `json:"subject"`
}

// Result is everything one successful run produced.
type Result struct {
	RunID        string        `json:"run_id"`
	VideoID      string        `json:"video_id"`
	ThumbnailURL string        `json:"thumbnail_url"`
	Subject      Subject       `json:"subject"`
	Transcript   string        `json:"transcript"`
	Truncated    bool          `json:"transcript_truncated,omitempty"`
	Notes        string        `json:"notes"`
	Questions    string        `json:"questions"`
	Document     *Document     `json:"document"`
	Elapsed      time.Duration `json:"elapsed_ns"`
}

// Pipeline runs transcript, notes, questions and export in sequence.
// At most one run is in flight at a time.
type Pipeline struct {
	Extractor *Extractor
	Generator *Generator
	Exporter  *Exporter

	running atomic.Bool

	mu   sync.RWMutex
	docs map[string]*Document // by subject ID
}

// NewPipeline wires the three stages together.
func NewPipeline(ex *Extractor, gen *Generator, exp *Exporter) *Pipeline {
	return &Pipeline{
		Extractor: ex,
		Generator: gen,
		Exporter:  exp,
		docs:      make(map[string]*Document),
	}
}

// Busy reports whether a run is in flight.
func (p *Pipeline) Busy() bool { return p.running.Load() }

// Run executes one full run. A concurrent call returns ErrBusy immediately.
// Any stage failure stops the run and is returned as a *StepError; no partial
// result is returned.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	subject, err := LookupSubject(req.Subject)
	if err != nil {
		return nil, err
	}
	if !p.running.CompareAndSwap(false, true) {
		engine.IncrRunsBusy()
		return nil, ErrBusy
	}
	defer p.running.Store(false)

	engine.IncrRuns()
	res, err := p.run(ctx, req.Locator, subject)
	if err != nil {
		engine.IncrRunErrors()
		slog.Warn("notes: run failed",
			slog.String("subject", subject.ID),
			slog.String("step", string(FailedStep(err))),
			slog.Any("err", err))
		return nil, err
	}

	p.mu.Lock()
	if p.docs == nil {
		p.docs = make(map[string]*Document)
	}
	p.docs[subject.ID] = res.Document
	p.mu.Unlock()
	return res, nil
}

func (p *Pipeline) run(ctx context.Context, locator string, subject Subject) (*Result, error) {
	start := time.Now()
	res := &Result{RunID: uuid.NewString(), Subject: subject}
	log := slog.With(slog.String("run", res.RunID), slog.String("subject", subject.ID))

	var tr Transcript
	err := engine.TrackOperation(ctx, "transcript", func(ctx context.Context) error {
		var err error
		tr, err = p.Extractor.Extract(ctx, locator)
		return err
	})
	if err != nil {
		return nil, &StepError{Step: StepTranscript, Err: err}
	}
	res.VideoID = tr.VideoID
	res.ThumbnailURL = ThumbnailURL(tr.VideoID)
	res.Transcript = tr.Text
	res.Truncated = tr.Truncated
	log.Info("notes: transcript ready", slog.String("video", tr.VideoID), slog.Int("chars", len(tr.Text)))
	log.Debug("notes: transcript preview", slog.String("text", engine.TruncateAtWord(tr.Text, 120)))

	err = engine.TrackOperation(ctx, "notes", func(ctx context.Context) error {
		var err error
		res.Notes, err = p.Generator.Notes(ctx, tr.Text, subject)
		return err
	})
	if err != nil {
		return nil, &StepError{Step: StepNotes, Err: err}
	}

	err = engine.TrackOperation(ctx, "questions", func(ctx context.Context) error {
		var err error
		res.Questions, err = p.Generator.Questions(ctx, subject)
		return err
	})
	if err != nil {
		return nil, &StepError{Step: StepQuestions, Err: err}
	}

	err = engine.TrackOperation(ctx, "export", func(context.Context) error {
		var err error
		res.Document, err = p.Exporter.Export(res.Notes, res.Questions, subject.Name)
		return err
	})
	if err != nil {
		return nil, &StepError{Step: StepExport, Err: err}
	}

	res.Elapsed = time.Since(start)
	log.Info("notes: run done",
		slog.String("file", res.Document.FileName),
		slog.Int("pages", res.Document.Pages),
		slog.Duration("elapsed", res.Elapsed))
	return res, nil
}

// Document returns the last document exported for a subject ID in this process.
func (p *Pipeline) Document(subjectID string) (*Document, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.docs[subjectID]
	return d, ok
}
