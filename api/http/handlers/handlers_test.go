package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/docqa/api/http/presenter"
	"github.com/artem13815/docqa/pkg/auth"
	"github.com/artem13815/docqa/pkg/docqa"
)

type AuthUseCaseMock struct {
	mock.Mock
}

func (m *AuthUseCaseMock) Register(ctx context.Context, email, password string) (auth.AuthResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(auth.AuthResult)
	return res, args.Error(1)
}

func (m *AuthUseCaseMock) Login(ctx context.Context, email, password string) (auth.AuthResult, error) {
	args := m.Called(ctx, email, password)
	res, _ := args.Get(0).(auth.AuthResult)
	return res, args.Error(1)
}

type DocQAMock struct {
	mock.Mock
}

func (m *DocQAMock) Answer(ctx context.Context, req docqa.Request) (docqa.Answer, error) {
	args := m.Called(ctx, req)
	ans, _ := args.Get(0).(docqa.Answer)
	return ans, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	switch v := body.(type) {
	case string:
		buf.WriteString(v)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(v))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

type part struct {
	field    string
	filename string
	content  []byte
}

func multipartRequest(t *testing.T, path string, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename != "" {
			fw, err := w.CreateFormFile(p.field, p.filename)
			require.NoError(t, err)
			_, err = fw.Write(p.content)
			require.NoError(t, err)
			continue
		}
		require.NoError(t, w.WriteField(p.field, string(p.content)))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func decodeError(t *testing.T, resp *http.Response) presenter.ErrorResponse {
	return decode[presenter.ErrorResponse](t, resp)
}

type modelFunc func(prompt string) (string, error)

func (f modelFunc) Ask(_ context.Context, prompt string) (string, error) { return f(prompt) }
