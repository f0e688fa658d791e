package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/docchat/conversation"
	"github.com/poiesic/docchat/core"
	"github.com/poiesic/docchat/ingestion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAsker struct {
	events []conversation.Event
	err    error
	turns  []core.Message
}

func (f *fakeAsker) Ask(ctx context.Context, turns []core.Message) (<-chan conversation.Event, error) {
	f.turns = turns
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan conversation.Event, len(f.events))
	for _, e := range f.events {
		ch <- e
	}
	close(ch)
	return ch, nil
}

type fakeIngester struct {
	IngestFilesFunc func(ctx context.Context, paths []string, opts *ingestion.IngestOptions) (*ingestion.Report, error)
	IngestURLFunc   func(ctx context.Context, url string, opts *ingestion.IngestOptions) (*ingestion.Report, error)
}

func (f *fakeIngester) IngestFiles(ctx context.Context, paths []string, opts *ingestion.IngestOptions) (*ingestion.Report, error) {
	if f.IngestFilesFunc != nil {
		return f.IngestFilesFunc(ctx, paths, opts)
	}
	return &ingestion.Report{Outcome: ingestion.OutcomeIngested}, nil
}

func (f *fakeIngester) IngestURL(ctx context.Context, url string, opts *ingestion.IngestOptions) (*ingestion.Report, error) {
	if f.IngestURLFunc != nil {
		return f.IngestURLFunc(ctx, url, opts)
	}
	return &ingestion.Report{Outcome: ingestion.OutcomeIngested}, nil
}

func okEraser(ctx context.Context, namespace string) (string, error) {
	return "Successfully deleted", nil
}

func newTestServer(t *testing.T, asker Asker, ingester Ingester, eraser Eraser) *Server {
	t.Helper()
	if asker == nil {
		asker = &fakeAsker{}
	}
	if ingester == nil {
		ingester = &fakeIngester{}
	}
	if eraser == nil {
		eraser = EraserFunc(okEraser)
	}
	s, err := NewServer(asker, ingester, eraser, WithNamespace("handbook"))
	require.NoError(t, err)
	return s
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func requireValidationError(t *testing.T, w *httptest.ResponseRecorder) ValidationError {
	t.Helper()
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "data")
	assert.Nil(t, body["data"])

	var v ValidationError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	assert.Equal(t, ValidationStatusCode, v.StatusCode)
	assert.NotEmpty(t, v.Message)
	return v
}

func TestNewServer_Validation(t *testing.T) {
	_, err := NewServer(nil, &fakeIngester{}, EraserFunc(okEraser))
	assert.ErrorIs(t, err, ErrAskerRequired)

	_, err = NewServer(&fakeAsker{}, nil, EraserFunc(okEraser))
	assert.ErrorIs(t, err, ErrIngesterRequired)

	_, err = NewServer(&fakeAsker{}, &fakeIngester{}, nil)
	assert.ErrorIs(t, err, ErrEraserRequired)
}

func TestChat_StreamsAnswerThenSources(t *testing.T) {
	asker := &fakeAsker{events: []conversation.Event{
		{Kind: conversation.EventToken, Token: "You have "},
		{Kind: conversation.EventToken, Token: "30 days."},
		{Kind: conversation.EventSources, Sources: []core.SourceDocument{
			{PageContent: "Refunds within 30 days.", Metadata: core.Metadata{Source: "policy.pdf", Page: "2"}},
		}},
	}}
	s := newTestServer(t, asker, nil, nil)

	w := do(s, postJSON("/api/chat", `{"messages":[{"role":"user","content":"Refund window?"}]}`))

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain"))
	assert.Equal(t,
		`You have 30 days.##SOURCE_DOCUMENTS##[{"pageContent":"Refunds within 30 days.","metadata":{"source":"policy.pdf","page":"2"}}]`,
		w.Body.String())
	require.Len(t, asker.turns, 1)
	assert.Equal(t, core.RoleUser, asker.turns[0].Role)
	assert.Equal(t, "Refund window?", asker.turns[0].Content)
}

func TestChat_ParsesBackIntoAnswerAndSources(t *testing.T) {
	asker := &fakeAsker{events: []conversation.Event{
		{Kind: conversation.EventToken, Token: "Five days."},
		{Kind: conversation.EventSources, Sources: nil},
	}}
	s := newTestServer(t, asker, nil, nil)

	w := do(s, postJSON("/api/chat", `{"messages":[{"role":"user","content":"Shipping?"}]}`))
	require.Equal(t, http.StatusOK, w.Code)

	answer, sources, err := conversation.ParseMessage(w.Body.String())
	require.NoError(t, err)
	assert.Equal(t, "Five days.", answer)
	assert.Empty(t, sources)
}

func TestChat_GenerationErrorKeepsEmittedTokens(t *testing.T) {
	asker := &fakeAsker{events: []conversation.Event{
		{Kind: conversation.EventToken, Token: "Partial"},
		{Kind: conversation.EventError, Err: core.ErrGeneration},
	}}
	s := newTestServer(t, asker, nil, nil)

	w := do(s, postJSON("/api/chat", `{"messages":[{"role":"user","content":"Q?"}]}`))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Partial", w.Body.String())
}

func TestChat_Rejections(t *testing.T) {
	t.Run("malformed json", func(t *testing.T) {
		s := newTestServer(t, nil, nil, nil)
		requireValidationError(t, do(s, postJSON("/api/chat", `{"messages":`)))
	})

	t.Run("missing messages", func(t *testing.T) {
		s := newTestServer(t, nil, nil, nil)
		requireValidationError(t, do(s, postJSON("/api/chat", `{}`)))
	})

	t.Run("invalid conversation", func(t *testing.T) {
		asker := &fakeAsker{err: fmt.Errorf("ask: %w", core.ErrInvalidConversation)}
		s := newTestServer(t, asker, nil, nil)
		v := requireValidationError(t, do(s, postJSON("/api/chat",
			`{"messages":[{"role":"assistant","content":"hi"}]}`)))
		assert.Contains(t, v.Message, core.ErrInvalidConversation.Error())
	})
}

func TestChat_PipelineFailure(t *testing.T) {
	asker := &fakeAsker{err: fmt.Errorf("%w: store unavailable", core.ErrRetrieval)}
	s := newTestServer(t, asker, nil, nil)

	w := do(s, postJSON("/api/chat", `{"messages":[{"role":"user","content":"Q?"}]}`))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var body MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body.Message, "retrieval failed")
}

func multipartRequest(t *testing.T, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestIngest_SavesIngestsAndCleansUp(t *testing.T) {
	var seenPaths []string
	var seenOpts *ingestion.IngestOptions
	ingester := &fakeIngester{
		IngestFilesFunc: func(ctx context.Context, paths []string, opts *ingestion.IngestOptions) (*ingestion.Report, error) {
			seenPaths = paths
			seenOpts = opts
			for _, p := range paths {
				data, err := os.ReadFile(p)
				require.NoError(t, err)
				assert.NotEmpty(t, data)
			}
			return &ingestion.Report{Outcome: ingestion.OutcomeIngested, Documents: len(paths)}, nil
		},
	}
	s := newTestServer(t, nil, ingester, nil)

	w := do(s, multipartRequest(t, map[string]string{
		"policy.txt": "Refunds within 30 days.",
		"faq.md":     "Shipping takes five days.",
	}))

	require.Equal(t, http.StatusOK, w.Code)
	var body MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, IngestedMessage, body.Message)

	require.Len(t, seenPaths, 2)
	names := []string{filepath.Base(seenPaths[0]), filepath.Base(seenPaths[1])}
	assert.ElementsMatch(t, []string{"policy.txt", "faq.md"}, names)
	assert.Equal(t, "handbook", seenOpts.Namespace)
	assert.True(t, seenOpts.ContinueOnError)
	assert.True(t, seenOpts.SkipManifest, "temporary upload paths must not enter the manifest")

	_, err := os.Stat(filepath.Dir(seenPaths[0]))
	assert.True(t, os.IsNotExist(err), "upload directory should be removed")
}

func TestIngest_NoFiles(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)
	v := requireValidationError(t, do(s, multipartRequest(t, nil)))
	assert.Equal(t, ErrNoFiles.Error(), v.Message)
}

func TestIngest_NotMultipart(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)
	requireValidationError(t, do(s, postJSON("/api/ingest", `{}`)))
}

func TestIngest_PipelineFailureStillCleansUp(t *testing.T) {
	var dir string
	ingester := &fakeIngester{
		IngestFilesFunc: func(ctx context.Context, paths []string, opts *ingestion.IngestOptions) (*ingestion.Report, error) {
			dir = filepath.Dir(paths[0])
			return nil, fmt.Errorf("%w: quota exceeded", core.ErrEmbedding)
		},
	}
	s := newTestServer(t, nil, ingester, nil)

	w := do(s, multipartRequest(t, map[string]string{"a.txt": "alpha"}))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotEmpty(t, dir)
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestIngestURL(t *testing.T) {
	t.Run("ingests", func(t *testing.T) {
		var seenURL, seenNamespace string
		ingester := &fakeIngester{
			IngestURLFunc: func(ctx context.Context, url string, opts *ingestion.IngestOptions) (*ingestion.Report, error) {
				seenURL = url
				seenNamespace = opts.Namespace
				return &ingestion.Report{Outcome: ingestion.OutcomeIngested, Chunks: 3}, nil
			},
		}
		s := newTestServer(t, nil, ingester, nil)

		w := do(s, postJSON("/api/ingest-url", `{"url":"https://example.com/docs"}`))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Documents loaded and ingested successfully"}`, w.Body.String())
		assert.Equal(t, "https://example.com/docs", seenURL)
		assert.Equal(t, "handbook", seenNamespace)
	})

	t.Run("missing url", func(t *testing.T) {
		s := newTestServer(t, nil, nil, nil)
		requireValidationError(t, do(s, postJSON("/api/ingest-url", `{}`)))
	})

	t.Run("load failure", func(t *testing.T) {
		ingester := &fakeIngester{
			IngestURLFunc: func(ctx context.Context, url string, opts *ingestion.IngestOptions) (*ingestion.Report, error) {
				return nil, fmt.Errorf("%w: %s: 404", core.ErrLoad, url)
			},
		}
		s := newTestServer(t, nil, ingester, nil)
		w := do(s, postJSON("/api/ingest-url", `{"url":"https://example.com/missing"}`))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestDeleteDocuments(t *testing.T) {
	t.Run("deletes namespace", func(t *testing.T) {
		var seen string
		eraser := EraserFunc(func(ctx context.Context, namespace string) (string, error) {
			seen = namespace
			return "Successfully deleted", nil
		})
		s := newTestServer(t, nil, nil, eraser)

		w := do(s, httptest.NewRequest(http.MethodPost, "/api/delete-documents", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message":"Successfully deleted"}`, w.Body.String())
		assert.Equal(t, "handbook", seen)
	})

	t.Run("failure", func(t *testing.T) {
		eraser := EraserFunc(func(ctx context.Context, namespace string) (string, error) {
			return "", errors.New("delete all is not supported by this index")
		})
		s := newTestServer(t, nil, nil, eraser)

		w := do(s, httptest.NewRequest(http.MethodPost, "/api/delete-documents", nil))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)

	t.Run("preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "content-type")

		w := do(s, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	})

	t.Run("cross-origin request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/delete-documents", nil)
		req.Header.Set("Origin", "https://chat.example.org")

		w := do(s, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "https://chat.example.org", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("same-origin request", func(t *testing.T) {
		w := do(s, httptest.NewRequest(http.MethodPost, "/api/delete-documents", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, nil, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, s.Run(ctx, "127.0.0.1:0"))
}
