package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ad/translit"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test_token"

type serverMock struct {
	s          *httptest.Server
	mu         sync.Mutex
	hooks      map[string]func(body []byte) any
	hooksCalls map[string]int
	bodies     map[string][][]byte
}

func (s *serverMock) Close() {
	s.s.Close()
}

func (s *serverMock) URL() string {
	return s.s.URL
}

func (s *serverMock) handler(rw http.ResponseWriter, req *http.Request) {
	reqBody, errReadBody := io.ReadAll(req.Body)
	if errReadBody != nil {
		panic(errReadBody)
	}
	defer req.Body.Close()

	method := strings.TrimPrefix(req.URL.Path, "/bot"+testToken+"/")

	s.mu.Lock()
	s.hooksCalls[method]++
	s.bodies[method] = append(s.bodies[method], reqBody)
	hook, okHook := s.hooks[method]
	s.mu.Unlock()

	if !okHook {
		panic("answer not found for request: " + req.URL.String())
	}

	resp, errData := json.Marshal(hook(reqBody))
	if errData != nil {
		panic(errData)
	}
	_, err := rw.Write(resp)
	if err != nil {
		panic(err)
	}
}

func (s *serverMock) calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hooksCalls[method]
}

func (s *serverMock) lastBody(method string) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	bodies := s.bodies[method]
	if len(bodies) == 0 {
		return ""
	}

	return string(bodies[len(bodies)-1])
}

func newServerMock() *serverMock {
	message := func([]byte) any {
		return map[string]any{"ok": true, "result": map[string]any{}}
	}

	s := &serverMock{
		hooks: map[string]func([]byte) any{
			"sendMessage":     message,
			"editMessageText": message,
			"answerCallbackQuery": func([]byte) any {
				return map[string]any{"ok": true, "result": true}
			},
		},
		hooksCalls: map[string]int{},
		bodies:     map[string][][]byte{},
	}

	s.s = httptest.NewServer(http.HandlerFunc(s.handler))

	return s
}

func newTestApp(t *testing.T) (*app, *bot.Bot, *serverMock) {
	t.Helper()

	s := newServerMock()
	t.Cleanup(s.Close)

	b, err := bot.New(testToken, bot.WithServerURL(s.URL()), bot.WithSkipGetMe())
	require.NoError(t, err)

	a, err := newApp(translit.Default(), "wikipedia", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	return a, b, s
}

func textUpdate(chatID int64, text string) *models.Update {
	return &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: chatID},
			Text: text,
		},
	}
}

func callbackUpdate(chatID int64, data string) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "1",
			Data: data,
			From: models.User{ID: 7},
			Message: models.MaybeInaccessibleMessage{
				Message: &models.Message{ID: 10, Chat: models.Chat{ID: chatID}},
			},
		},
	}
}

func Test_handler(t *testing.T) {
	tests := []struct {
		name   string
		update *models.Update
		method string
		want   []string
	}{
		{
			name:   "start",
			update: textUpdate(1, "/start"),
			method: "sendMessage",
			want:   []string{"Current schema: wikipedia", "schema:wikipedia", "schema:icao_doc_9303", "✅ wikipedia"},
		},
		{
			name:   "schemas with bot name",
			update: textUpdate(1, "/schemas@translit_bot"),
			method: "sendMessage",
			want:   []string{"schema:mosmetro"},
		},
		{
			name:   "text",
			update: textUpdate(1, "Юлия Щербакова"),
			method: "sendMessage",
			want:   []string{"Yuliya Shcherbakova"},
		},
		{
			name:   "schema source",
			update: textUpdate(1, "/schema mosmetro"),
			method: "sendMessage",
			want:   []string{`"name":"mosmetro"`},
		},
		{
			name:   "unknown schema source",
			update: textUpdate(1, "/schema klingon"),
			method: "sendMessage",
			want:   []string{"unknown schema", "klingon"},
		},
		{
			name:   "bad callback",
			update: callbackUpdate(1, "busy-testing-1"),
			method: "answerCallbackQuery",
			want:   []string{"1"},
		},
		{
			name:   "unknown callback schema",
			update: callbackUpdate(1, "schema:klingon"),
			method: "answerCallbackQuery",
			want:   []string{"klingon"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b, s := newTestApp(t)

			a.handler(context.Background(), b, tt.update)

			require.Equal(t, 1, s.calls(tt.method))
			body := s.lastBody(tt.method)
			for _, want := range tt.want {
				assert.Contains(t, body, want)
			}
		})
	}
}

func Test_handlerSelectSchema(t *testing.T) {
	a, b, s := newTestApp(t)
	ctx := context.Background()

	a.handler(ctx, b, callbackUpdate(1, "schema:icao_doc_9303"))

	assert.Equal(t, 1, s.calls("answerCallbackQuery"))
	assert.Equal(t, 1, s.calls("editMessageText"))
	assert.Contains(t, s.lastBody("editMessageText"), "✅ icao_doc_9303")
	assert.Equal(t, "icao_doc_9303", a.schemaFor(1))
	assert.Equal(t, "wikipedia", a.schemaFor(2))

	a.handler(ctx, b, textUpdate(1, "ЮЛИЯ ЩЕРБАКОВА"))
	assert.Contains(t, s.lastBody("sendMessage"), "IULIIA SHCHERBAKOVA")

	a.handler(ctx, b, textUpdate(2, "Юлия"))
	assert.Contains(t, s.lastBody("sendMessage"), "Yuliya")
}

func Test_handlerSkips(t *testing.T) {
	a, b, s := newTestApp(t)

	a.handler(context.Background(), b, &models.Update{ID: 1})
	a.handler(context.Background(), b, textUpdate(1, ""))

	assert.Zero(t, s.calls("sendMessage"))
}

func Test_newApp(t *testing.T) {
	a, err := newApp(translit.Default(), "ICAO_DOC_9303", slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	assert.Equal(t, "icao_doc_9303", a.fallback)

	_, err = newApp(translit.Default(), "klingon", slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func Test_keyboard(t *testing.T) {
	a, _, _ := newTestApp(t)

	kb := a.keyboard("mosmetro")

	var count int
	for _, row := range kb.InlineKeyboard {
		assert.LessOrEqual(t, len(row), keyboardColumns)
		for _, button := range row {
			count++
			assert.True(t, checkStringLimit(button.CallbackData, callbackDataLimit))
			if button.CallbackData == "schema:mosmetro" {
				assert.Equal(t, "✅ mosmetro", button.Text)
			}
		}
	}
	assert.Equal(t, len(translit.Names()), count)
}

func Test_parseCommand(t *testing.T) {
	tests := []struct {
		text    string
		command string
		arg     string
	}{
		{"/start", "/start", ""},
		{"/schema gost_779", "/schema", "gost_779"},
		{"/Schema@translit_bot  mosmetro ", "/schema", "mosmetro"},
		{"привет", "", ""},
	}
	for _, tt := range tests {
		command, arg := parseCommand(tt.text)
		if command != tt.command || arg != tt.arg {
			t.Errorf("parseCommand(%q) = %q, %q, want %q, %q", tt.text, command, arg, tt.command, tt.arg)
		}
	}
}

func Test_minifyJson(t *testing.T) {
	type args struct {
		input []byte
	}
	tests := []struct {
		name string
		args args
		want string
	}{
		{
			name: "good json",
			args: args{
				input: []byte(`{"c": "c"}`),
			},
			want: `{"c":"c"}`,
		},
		{
			name: "bad json",
			args: args{
				input: []byte(`{"c": "c"`),
			},
			want: `{"c": "c"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := minifyJson(tt.args.input); got != tt.want {
				t.Errorf("minifyJson() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_minifyJsonSchemas(t *testing.T) {
	for _, name := range translit.Names() {
		data, err := translit.Default().Source(name)
		require.NoError(t, err)

		got := minifyJson(data)
		assert.Less(t, len(got), len(data), name)
		assert.True(t, json.Valid([]byte(got)), name)
		assert.False(t, bytes.Contains([]byte(got), []byte("\n")), name)
	}
}

func Test_checkStringLimit(t *testing.T) {
	type args struct {
		input string
		limit int
	}
	tests := []struct {
		name string
		args args
		want bool
	}{
		{
			name: "63",
			args: args{
				input: "0123456789 0123456789 0123456789 0123456789 0123456789 01234567",
				limit: 64,
			},
			want: true,
		},
		{
			name: "65",
			args: args{
				input: "0123456789 0123456789 0123456789 0123456789 0123456789 0123456789",
				limit: 64,
			},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := checkStringLimit(tt.args.input, tt.args.limit); got != tt.want {
				t.Errorf("checkStringLimit() = %v, want %v", got, tt.want)
			}
		})
	}
}
