package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/novella"
	"github.com/aretw0/novella/pkg/adapters/memory"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/observability"
	"github.com/aretw0/novella/pkg/questions"
	"github.com/aretw0/novella/pkg/session"
)

type constSource int

func (c constSource) IntN(n int) int { return int(c) % n }

func newTestEngine(t *testing.T) *novella.Engine {
	t.Helper()
	loader := memory.NewLoader("v1")
	require.NoError(t, loader.AddNodes("en-US",
		domain.Node{
			ID:   "start",
			Text: "Hello, Hero!",
			Choices: []domain.Choice{
				{Text: "Meet the ally", NextNode: "ally", Action: &domain.Action{SetState: "met_ally"}},
				{Text: "Take the quiz", NextNode: "quiz"},
				{Text: "Secret", NextNode: "secret", Requires: &domain.Requirement{State: "met_ally", Value: true}},
			},
		},
		domain.Node{ID: "ally", Text: "Nice to meet you, Hero.", Choices: []domain.Choice{{Text: "Back", NextNode: "start"}}},
		domain.Node{ID: "quiz", Text: "What is {{question}} in hex?", InputPrompt: &domain.InputPrompt{
			Function: "generate_dec_to_hex", OnCorrect: "win", OnIncorrect: "start",
		}},
		domain.Node{ID: "secret", Text: "A hidden door."},
		domain.Node{ID: "win", Text: "Correct!", Background: "images/win.png"},
	))
	require.NoError(t, loader.AddNodes("pt-BR", domain.Node{ID: "start", Text: "Olá, Hero!"}))
	loader.SetUIText("en-US", map[string]string{"title": "Story"})
	loader.SetUIText("pt-BR", map[string]string{"title": "História"})

	eng, err := novella.New("", novella.WithLoader(loader),
		novella.WithQuestions(questions.NewRegistry(questions.WithSource(constSource(254)))))
	require.NoError(t, err)
	return eng
}

type testClient struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newTestServer(t *testing.T, opts ...Option) *testClient {
	t.Helper()
	sessions := session.NewManager(memory.NewStore())
	srv := httptest.NewServer(NewHandler(newTestEngine(t), sessions, opts...))
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testClient{
		t:    t,
		base: srv.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (c *testClient) do(method, path string, body any, header ...string) (int, []byte, http.Header) {
	c.t.Helper()
	var rd io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			rd = strings.NewReader(s)
		} else {
			b, err := json.Marshal(body)
			require.NoError(c.t, err)
			rd = bytes.NewReader(b)
		}
	}
	req, err := http.NewRequest(method, c.base+path, rd)
	require.NoError(c.t, err)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := c.client.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)
	return resp.StatusCode, data, resp.Header
}

func (c *testClient) node(method, path string, body any) domain.Node {
	c.t.Helper()
	status, data, _ := c.do(method, path, body)
	require.Equal(c.t, http.StatusOK, status, string(data))
	var n domain.Node
	require.NoError(c.t, json.Unmarshal(data, &n))
	return n
}

func TestAPI_PlayThrough(t *testing.T) {
	c := newTestServer(t)

	start := c.node(http.MethodPost, "/api/start", map[string]string{"name": " Ada ", "locale": "en-US"})
	assert.Equal(t, "Hello, Ada!", start.Text)
	require.Len(t, start.Choices, 2, "secret choice is hidden until met_ally")

	ally := c.node(http.MethodPost, "/api/choose", map[string]any{"node_id": "start", "choice_index": 0})
	assert.Equal(t, "Nice to meet you, Ada.", ally.Text)

	back := c.node(http.MethodPost, "/api/back", nil)
	assert.Equal(t, "start", back.ID)
	assert.Len(t, back.Choices, 3, "met_ally survives going back")

	quiz := c.node(http.MethodGet, "/api/node/quiz", nil)
	assert.Equal(t, "What is 255 in hex?", quiz.Text)

	win := c.node(http.MethodPost, "/api/submit_answer", map[string]string{"node_id": "quiz", "answer": " 00FF "})
	assert.Equal(t, "win", win.ID)
	assert.Equal(t, "/content/v1/en-US/images/win.png", win.Background)
}

func TestAPI_Errors(t *testing.T) {
	t.Run("No Session", func(t *testing.T) {
		c := newTestServer(t)
		status, data, _ := c.do(http.MethodPost, "/api/back", nil)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Contains(t, string(data), domain.ErrSessionNotInitialized.Error())

		status, _, _ = c.do(http.MethodGet, "/api/node/start", nil)
		assert.Equal(t, http.StatusForbidden, status)
	})

	t.Run("Unknown Locale", func(t *testing.T) {
		c := newTestServer(t)
		status, _, _ := c.do(http.MethodPost, "/api/start", map[string]string{"name": "Ada", "locale": "xx-XX"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	c := newTestServer(t)
	c.node(http.MethodPost, "/api/start", map[string]string{"name": "Ada"})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"Back At Start", http.MethodPost, "/api/back", nil, http.StatusBadRequest},
		{"Choice Out Of Range", http.MethodPost, "/api/choose", map[string]any{"node_id": "start", "choice_index": 2}, http.StatusBadRequest},
		{"Choice Index Missing", http.MethodPost, "/api/choose", map[string]any{"node_id": "start"}, http.StatusBadRequest},
		{"Choice On Unknown Node", http.MethodPost, "/api/choose", map[string]any{"node_id": "ghost", "choice_index": 0}, http.StatusBadRequest},
		{"Unknown Node", http.MethodGet, "/api/node/ghost", nil, http.StatusNotFound},
		{"Answer Without Prompt", http.MethodPost, "/api/submit_answer", map[string]string{"node_id": "start", "answer": "x"}, http.StatusNotFound},
		{"Answer Without Question", http.MethodPost, "/api/submit_answer", map[string]string{"node_id": "quiz", "answer": "x"}, http.StatusBadRequest},
		{"Malformed Body", http.MethodPost, "/api/choose", "{not json", http.StatusBadRequest},
		{"Oversized Answer", http.MethodPost, "/api/submit_answer", map[string]string{"node_id": "quiz", "answer": strings.Repeat("f", 2048)}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data, _ := c.do(tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status, string(data))

			var e errorResponse
			require.NoError(t, json.Unmarshal(data, &e))
			assert.NotEmpty(t, e.Error)
		})
	}

	// Failed operations must not have moved the session.
	n := c.node(http.MethodGet, "/api/node/start", nil)
	assert.Equal(t, "start", n.ID)
	status, _, _ := c.do(http.MethodPost, "/api/back", nil)
	assert.Equal(t, http.StatusBadRequest, status, "history should still hold only the start node")
}

func TestAPI_Locales(t *testing.T) {
	c := newTestServer(t)

	status, _, h := c.do(http.MethodGet, "/", nil, "Accept-Language", "pt-BR,pt;q=0.9")
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "/pt-BR/", h.Get("Location"))

	status, _, h = c.do(http.MethodGet, "/?lang=en-US", nil, "Accept-Language", "pt-BR")
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "/en-US/", h.Get("Location"))

	status, _, h = c.do(http.MethodGet, "/xx-XX/", nil)
	assert.Equal(t, http.StatusFound, status)
	assert.Equal(t, "/en-US/", h.Get("Location"))

	status, data, _ := c.do(http.MethodGet, "/pt-BR/", nil)
	require.Equal(t, http.StatusOK, status)
	var home homeResponse
	require.NoError(t, json.Unmarshal(data, &home))
	assert.Equal(t, "História", home.UI["title"])
	assert.Equal(t, []string{"en-US", "pt-BR"}, home.Locales)

	status, data, _ = c.do(http.MethodGet, "/api/locales", nil)
	require.Equal(t, http.StatusOK, status)
	var locales localesResponse
	require.NoError(t, json.Unmarshal(data, &locales))
	assert.Equal(t, "en-US", locales.Default)

	status, data, _ = c.do(http.MethodGet, "/api/ui/fr-FR", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `"title":"Story"`)

	n := c.node(http.MethodPost, "/api/start?lang=pt-BR", map[string]string{"name": "Ana"})
	assert.Equal(t, "Olá, Ana!", n.Text)
}

func TestMatch(t *testing.T) {
	available := []string{"en-US", "pt-BR"}
	tests := []struct {
		header string
		want   string
	}{
		{"", "en-US"},
		{"pt-BR", "pt-BR"},
		{"pt", "pt-BR"},
		{"fr-FR, pt;q=0.5", "pt-BR"},
		{"de-DE", "en-US"},
		{"en-GB", "en-US"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(available, "en-US", tt.header))
		})
	}
}

func TestServeAsset(t *testing.T) {
	assets := fstest.MapFS{
		"v1/en-US/images/win.png": {Data: []byte("png-bytes")},
		"secret.txt":              {Data: []byte("nope")},
	}
	c := newTestServer(t, WithAssets(assets))

	status, data, _ := c.do(http.MethodGet, "/content/v1/en-US/images/win.png", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "png-bytes", string(data))

	for _, p := range []string{
		"/content/v1/en-US/images/missing.png",
		"/content/v1/en-US/images",
		"/content/v1/en-US/%2e%2e/%2e%2e/secret.txt",
	} {
		status, _, _ = c.do(http.MethodGet, p, nil)
		assert.Equal(t, http.StatusNotFound, status, p)
	}
}

func TestHealthStatusMetrics(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	c := newTestServer(t, WithMetrics(metrics))

	status, _, _ := c.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, status)

	status, data, _ := c.do(http.MethodGet, "/status", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), novella.Version)

	status, data, _ = c.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(data), `novella_http_request_duration_seconds_count{method="GET",route="/status",status="200"} 1`)

	down := newTestServer(t, WithReadinessCheck(func(context.Context) error {
		return errors.New("redis unreachable")
	}))
	status, data, _ = down.do(http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, string(data), "redis unreachable")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(&domain.ContentError{Err: domain.ErrNodeNotFound}))
	assert.Equal(t, http.StatusNotFound, statusFor(domain.ErrNodeNotFound))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
