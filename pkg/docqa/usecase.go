// Package docqa answers questions about a single uploaded document.
package docqa

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/docqa/pkg/document"
	"github.com/artem13815/docqa/pkg/llm"
)

// ErrEmptyQuestion is returned before any work is done when the question is blank.
var ErrEmptyQuestion = errors.New("question is empty")

// UseCase describes the document question answering scenario.
type UseCase interface {
	Answer(ctx context.Context, req Request) (Answer, error)
}

// Loader extracts document sections from a file on disk.
type Loader interface {
	Load(path string) ([]document.Section, error)
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder reports every outcome to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithTemplate replaces the prompt template. It receives .Context and .Question.
func WithTemplate(t *template.Template) Option {
	return func(s *Service) { s.prompt = t }
}

// WithClock overrides time.Now for latency measurements.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	loader   Loader
	model    llm.ChatModel
	dir      string
	prompt   *template.Template
	recorder Recorder
	now      func() time.Time
}

// NewService returns the pipeline. Uploads are staged in dir, or the OS temp
// directory when dir is empty.
func NewService(loader Loader, model llm.ChatModel, dir string, opts ...Option) *Service {
	if dir == "" {
		dir = os.TempDir()
	}
	s := &Service{
		loader: loader,
		model:  model,
		dir:    dir,
		prompt: promptTemplate,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Answer(ctx context.Context, req Request) (ans Answer, err error) {
	if strings.TrimSpace(req.Question) == "" {
		return Answer{}, ErrEmptyQuestion
	}

	start := s.now()
	defer func() {
		if s.recorder == nil {
			return
		}
		stage := ""
		var pe *PipelineError
		if errors.As(err, &pe) {
			stage = pe.Stage
		}
		s.recorder.ObserveAnswer(stage, s.now().Sub(start))
	}()

	path, err := s.store(req)
	if err != nil {
		return Answer{}, stageErr(StageStore, err)
	}
	defer os.Remove(path)

	sections, err := s.loader.Load(path)
	if err != nil {
		return Answer{}, stageErr(StageExtract, err)
	}
	text := document.Join(sections)

	prompt, err := renderPrompt(s.prompt, text, req.Question)
	if err != nil {
		return Answer{}, stageErr(StagePrompt, err)
	}

	reply, err := s.model.Ask(ctx, prompt)
	if err != nil {
		return Answer{}, stageErr(StageGenerate, err)
	}

	return Answer{
		Text:  reply,
		Model: llm.Name(s.model),
		Chars: len(text),
	}, nil
}

// store writes the upload to a fresh uuid-named file that keeps the client's extension.
func (s *Service) store(req Request) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filepath.Base(req.Filename)))
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	if _, err := f.Write(req.Data); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close temp file: %w", err)
	}
	return path, nil
}
