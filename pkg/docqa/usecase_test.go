package docqa_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"text/template"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/docqa/pkg/docqa"
	"github.com/artem13815/docqa/pkg/document"
)

// keywordModel answers with the first colour word found in the prompt.
type keywordModel struct {
	mu      sync.Mutex
	prompts []string
	err     error
}

func (m *keywordModel) Ask(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	for _, colour := range []string{"blue", "green", "red"} {
		if strings.Contains(prompt, colour) {
			return "The sky is " + colour + ".", nil
		}
	}
	return "I cannot find it in the document.", nil
}

func (m *keywordModel) ModelName() string { return "keyword" }

// spyLoader records the paths it was asked to load and whether they existed.
type spyLoader struct {
	mu      sync.Mutex
	next    docqa.Loader
	paths   []string
	existed []bool
}

func (l *spyLoader) Load(path string) ([]document.Section, error) {
	_, err := os.Stat(path)
	l.mu.Lock()
	l.paths = append(l.paths, path)
	l.existed = append(l.existed, err == nil)
	l.mu.Unlock()
	return l.next.Load(path)
}

type recorded struct {
	stage   string
	elapsed time.Duration
}

type recorderStub struct{ calls []recorded }

func (r *recorderStub) ObserveAnswer(stage string, elapsed time.Duration) {
	r.calls = append(r.calls, recorded{stage: stage, elapsed: elapsed})
}

func dirEntries(t *testing.T, dir string) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	return entries
}

func TestService_AnswerFromDocument(t *testing.T) {
	dir := t.TempDir()
	model := &keywordModel{}
	loader := &spyLoader{next: document.NewRegistry()}
	svc := docqa.NewService(loader, model, dir)

	ans, err := svc.Answer(context.Background(), docqa.Request{
		Filename: "sky.txt",
		Data:     []byte("The sky is blue."),
		Question: "What color is the sky?",
	})
	require.NoError(t, err)
	assert.Contains(t, strings.ToLower(ans.Text), "blue")
	assert.Equal(t, "keyword", ans.Model)
	assert.Equal(t, len("The sky is blue."), ans.Chars)

	require.Len(t, model.prompts, 1)
	assert.Contains(t, model.prompts[0], "The sky is blue.")
	assert.Contains(t, model.prompts[0], "What color is the sky?")

	require.Len(t, loader.paths, 1)
	assert.True(t, loader.existed[0])
	assert.Equal(t, dir, filepath.Dir(loader.paths[0]))
	assert.Equal(t, ".txt", filepath.Ext(loader.paths[0]))
	assert.NotContains(t, loader.paths[0], "sky")
	assert.Empty(t, dirEntries(t, dir), "temp file must be removed")
}

func TestService_JoinsSectionsInOrder(t *testing.T) {
	model := &keywordModel{}
	loader := document.LoaderFunc(func(string) ([]document.Section, error) {
		return []document.Section{{Index: 0, Content: "page one"}, {Index: 1, Content: "page two"}}, nil
	})
	svc := docqa.NewService(loader, model, t.TempDir())

	ans, err := svc.Answer(context.Background(), docqa.Request{Filename: "a.pdf", Data: []byte("x"), Question: "q"})
	require.NoError(t, err)
	assert.Equal(t, len("page one\n\npage two"), ans.Chars)
	assert.Contains(t, model.prompts[0], "page one\n\npage two")
}

func TestService_PipelineFailures(t *testing.T) {
	modelErr := errors.New("upstream unavailable")

	tests := []struct {
		name      string
		req       docqa.Request
		model     *keywordModel
		wantStage string
		wantErr   error
	}{
		{
			name:      "empty file",
			req:       docqa.Request{Filename: "empty.pdf", Data: nil, Question: "q"},
			model:     &keywordModel{},
			wantStage: docqa.StageExtract,
			wantErr:   document.ErrEmptyDocument,
		},
		{
			name:      "corrupt pdf",
			req:       docqa.Request{Filename: "broken.pdf", Data: []byte("definitely not a pdf document"), Question: "q"},
			model:     &keywordModel{},
			wantStage: docqa.StageExtract,
		},
		{
			name:      "unsupported format",
			req:       docqa.Request{Filename: "photo.jpg", Data: []byte{0xff, 0xd8}, Question: "q"},
			model:     &keywordModel{},
			wantStage: docqa.StageExtract,
			wantErr:   document.ErrUnsupportedFormat,
		},
		{
			name:      "model failure",
			req:       docqa.Request{Filename: "sky.txt", Data: []byte("The sky is blue."), Question: "q"},
			model:     &keywordModel{err: modelErr},
			wantStage: docqa.StageGenerate,
			wantErr:   modelErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			rec := &recorderStub{}
			svc := docqa.NewService(document.NewRegistry(), tt.model, dir, docqa.WithRecorder(rec))

			ans, err := svc.Answer(context.Background(), tt.req)
			require.Error(t, err)
			assert.Empty(t, ans.Text)

			var pe *docqa.PipelineError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, tt.wantStage, pe.Stage)
			assert.NotEmpty(t, err.Error())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			require.Len(t, rec.calls, 1)
			assert.Equal(t, tt.wantStage, rec.calls[0].stage)
			assert.Empty(t, dirEntries(t, dir), "temp file must be removed")
		})
	}
}

func TestService_StoreFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	svc := docqa.NewService(document.NewRegistry(), &keywordModel{}, missing)

	_, err := svc.Answer(context.Background(), docqa.Request{Filename: "a.txt", Data: []byte("x"), Question: "q"})
	var pe *docqa.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, docqa.StageStore, pe.Stage)
}

func TestService_PromptFailure(t *testing.T) {
	broken := template.Must(template.New("broken").Parse("{{.Missing}}"))
	model := &keywordModel{}
	svc := docqa.NewService(document.NewRegistry(), model, t.TempDir(), docqa.WithTemplate(broken))

	_, err := svc.Answer(context.Background(), docqa.Request{Filename: "a.txt", Data: []byte("text"), Question: "q"})
	var pe *docqa.PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, docqa.StagePrompt, pe.Stage)
	assert.Empty(t, model.prompts)
}

func TestService_EmptyQuestion(t *testing.T) {
	rec := &recorderStub{}
	svc := docqa.NewService(document.NewRegistry(), &keywordModel{}, t.TempDir(), docqa.WithRecorder(rec))

	_, err := svc.Answer(context.Background(), docqa.Request{Filename: "a.txt", Data: []byte("x"), Question: "  "})
	assert.ErrorIs(t, err, docqa.ErrEmptyQuestion)
	assert.Empty(t, rec.calls)
}

func TestService_RecordsSuccess(t *testing.T) {
	base := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	ticks := []time.Time{base, base.Add(250 * time.Millisecond)}
	clock := func() time.Time {
		now := ticks[0]
		if len(ticks) > 1 {
			ticks = ticks[1:]
		}
		return now
	}
	rec := &recorderStub{}
	svc := docqa.NewService(document.NewRegistry(), &keywordModel{}, t.TempDir(), docqa.WithRecorder(rec), docqa.WithClock(clock))

	_, err := svc.Answer(context.Background(), docqa.Request{Filename: "a.txt", Data: []byte("blue"), Question: "q"})
	require.NoError(t, err)
	require.Len(t, rec.calls, 1)
	assert.Equal(t, "", rec.calls[0].stage)
	assert.Equal(t, 250*time.Millisecond, rec.calls[0].elapsed)
}

func TestService_ConcurrentSameFilename(t *testing.T) {
	dir := t.TempDir()
	loader := &spyLoader{next: document.NewRegistry()}
	svc := docqa.NewService(loader, &keywordModel{}, dir)

	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Answer(context.Background(), docqa.Request{
				Filename: "report.txt",
				Data:     []byte("The sky is blue."),
				Question: "What color is the sky?",
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	seen := make(map[string]struct{}, n)
	for _, p := range loader.paths {
		seen[p] = struct{}{}
	}
	assert.Len(t, seen, n, "every request gets its own temp file")
	assert.Empty(t, dirEntries(t, dir))
}

func TestPipelineError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	var err error = &docqa.PipelineError{Stage: docqa.StageExtract, Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
	assert.Equal(t, "docqa extract: boom", err.Error())
}
