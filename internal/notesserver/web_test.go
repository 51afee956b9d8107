package notesserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go_notes/internal/engine"
	"github.com/anatolykoptev/go_notes/internal/engine/notes"
	"github.com/anatolykoptev/go_notes/internal/engine/sources"
	"github.com/anatolykoptev/go_notes/internal/toolutil"
)

type stubSource struct {
	texts []string
	err   error
	gate  chan struct{} // if set, Fragments waits on it
	enter chan struct{}
}

func (s *stubSource) Fragments(ctx context.Context, _ string) ([]sources.Fragment, error) {
	if s.gate != nil {
		s.enter <- struct{}{}
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	out := make([]sources.Fragment, len(s.texts))
	for i, t := range s.texts {
		out[i] = sources.Fragment{Text: t}
	}
	return out, nil
}

func stubLLM(err error) engine.Completer {
	return engine.CompleterFunc(func(_ context.Context, prompt string) (string, error) {
		if err != nil {
			return "", err
		}
		if strings.Contains(prompt, "Placement Aptitude Questions") {
			return "1. What is a page fault?\n2. Explain **paging**.", nil
		}
		return "## Memory\n- Virtual memory maps pages to frames.", nil
	})
}

func newTestServer(t *testing.T, src sources.CaptionSource, llm engine.Completer) (*httptest.Server, *notes.Pipeline) {
	t.Helper()
	p := notes.NewPipeline(&notes.Extractor{Source: src}, notes.NewGenerator(llm, nil), notes.NewExporter(t.TempDir()))
	srv := httptest.NewServer(NewWeb(p).Routes())
	t.Cleanup(srv.Close)
	return srv, p
}

func postNotes(t *testing.T, srv *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/api/notes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestSubjectsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{}, stubLLM(nil))

	resp, err := http.Get(srv.URL + "/api/subjects")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out SubjectsOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, notes.Subjects(), out.Subjects)
}

func TestPreviewEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{}, stubLLM(nil))

	q := url.QueryEscape("https://www.youtube.com/watch?v=abc123&t=1")
	resp, err := http.Get(srv.URL + "/api/preview?url=" + q)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out engine.PreviewOutput
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "abc123", out.VideoID)
	assert.Equal(t, "http://img.youtube.com/vi/abc123/0.jpg", out.ThumbnailURL)

	bad, err := http.Get(srv.URL + "/api/preview?url=" + url.QueryEscape("https://example.com"))
	require.NoError(t, err)
	bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestNotesThenDownload(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{texts: []string{"Hello", "world"}}, stubLLM(nil))

	before, err := http.Get(srv.URL + "/api/download/os")
	require.NoError(t, err)
	before.Body.Close()
	assert.Equal(t, http.StatusNotFound, before.StatusCode, "no download before a successful run")

	resp, data := postNotes(t, srv, `{"url":"https://youtu.be/abc123","subject":"os"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var res notes.Result
	require.NoError(t, json.Unmarshal(data, &res))
	assert.Equal(t, "Hello world", res.Transcript)
	assert.Equal(t, "2. Explain paging.", strings.Split(res.Questions, "\n")[1])
	assert.Equal(t, "Operating Systems (OS)_study_notes.pdf", res.Document.FileName)

	dl, err := http.Get(srv.URL + "/api/download/" + url.PathEscape("Operating Systems (OS)"))
	require.NoError(t, err)
	defer dl.Body.Close()
	require.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "application/pdf", dl.Header.Get("Content-Type"))
	assert.Contains(t, dl.Header.Get("Content-Disposition"), "Operating Systems (OS)_study_notes.pdf")
	pdf, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))
}

func TestNotesErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		src        *stubSource
		llm        engine.Completer
		body       string
		wantStatus int
		wantStep   string
	}{
		{"malformed body", &stubSource{}, stubLLM(nil), `{"url":`, http.StatusBadRequest, ""},
		{"unknown field", &stubSource{}, stubLLM(nil), `{"link":"x"}`, http.StatusBadRequest, ""},
		{"missing url", &stubSource{}, stubLLM(nil), `{"subject":"os"}`, http.StatusBadRequest, ""},
		{"unknown subject", &stubSource{}, stubLLM(nil), `{"url":"https://youtu.be/x","subject":"art"}`, http.StatusBadRequest, ""},
		{"no video id", &stubSource{}, stubLLM(nil), `{"url":"https://example.com","subject":"os"}`, http.StatusUnprocessableEntity, "transcript"},
		{"captions fail", &stubSource{err: errors.New("disabled")}, stubLLM(nil), `{"url":"https://youtu.be/x","subject":"os"}`, http.StatusUnprocessableEntity, "transcript"},
		{"model fails", &stubSource{texts: []string{"hi"}}, stubLLM(errors.New("quota")), `{"url":"https://youtu.be/x","subject":"os"}`, http.StatusBadGateway, "notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newTestServer(t, tt.src, tt.llm)
			resp, data := postNotes(t, srv, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, string(data))

			var body toolutil.ErrorBody
			require.NoError(t, json.Unmarshal(data, &body))
			assert.NotEmpty(t, body.Error)
			assert.Equal(t, tt.wantStep, body.Step)
		})
	}
}

func TestNotesBusy(t *testing.T) {
	src := &stubSource{texts: []string{"x"}, gate: make(chan struct{}), enter: make(chan struct{}, 1)}
	srv, p := newTestServer(t, src, stubLLM(nil))

	done := make(chan int, 1)
	go func() {
		resp, err := http.Post(srv.URL+"/api/notes", "application/json", strings.NewReader(`{"url":"https://youtu.be/a","subject":"dbms"}`))
		if err != nil {
			done <- 0
			return
		}
		resp.Body.Close()
		done <- resp.StatusCode
	}()
	<-src.enter
	require.True(t, p.Busy())

	resp, data := postNotes(t, srv, `{"url":"https://youtu.be/b","subject":"cn"}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, string(data))

	close(src.gate)
	assert.Equal(t, http.StatusOK, <-done)
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{texts: []string{"Hello", "world"}}, stubLLM(nil))

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	for _, s := range notes.Subjects() {
		assert.Contains(t, string(page), s.Name)
	}
	assert.NotContains(t, string(page), "Download Notes as PDF")

	form := url.Values{"url": {"https://www.youtube.com/watch?v=abc123"}, "subject": {"cn"}}
	resp, err = http.PostForm(srv.URL+"/", form)
	require.NoError(t, err)
	page, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(page), "Study Notes on Computer Networks (CN)")
	assert.Contains(t, string(page), "Virtual memory maps pages to frames.")
	assert.Contains(t, string(page), `href="/api/download/cn"`)
	assert.Contains(t, string(page), "http://img.youtube.com/vi/abc123/0.jpg")
}

func TestIndexPageError(t *testing.T) {
	srv, _ := newTestServer(t, &stubSource{err: errors.New("captions disabled")}, stubLLM(nil))

	form := url.Values{"url": {"https://youtu.be/abc"}, "subject": {"os"}}
	resp, err := http.PostForm(srv.URL+"/", form)
	require.NoError(t, err)
	page, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, string(page), "captions disabled")
	assert.NotContains(t, string(page), "Download Notes as PDF")
}
