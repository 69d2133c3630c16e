package chat

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/veridianlabs/governport-backend/pkg/config"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
)

type bufferSink struct {
	bytes.Buffer
	flushes int
}

func (b *bufferSink) Flush() { b.flushes++ }

// chunkedReader replays fixed-size chunks so the relay's carry buffer is
// exercised across split lines.
type chunkedReader struct {
	chunks [][]byte
	index  int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.index >= len(c.chunks) {
		return 0, io.EOF
	}
	n := copy(p, c.chunks[c.index])
	c.index++
	return n, nil
}

func (c *chunkedReader) Close() error { return nil }

type stubUpstream struct {
	body     io.ReadCloser
	err      error
	messages []Message
}

func (s *stubUpstream) Stream(ctx context.Context, messages []Message) (io.ReadCloser, error) {
	s.messages = messages
	if s.err != nil {
		return nil, s.err
	}
	return s.body, nil
}

func newChatTestService(t *testing.T, upstream UpstreamClient) *Service {
	t.Helper()
	service, err := NewService(upstream, config.ChatConfig{MaxHistory: 20}, nil)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func TestRelayTransformsUpstreamFrames(t *testing.T) {
	upstream := &stubUpstream{
		body: io.NopCloser(strings.NewReader(
			"data: {\"choices\":[{\"delta\":{\"content\":\"Hi\"}}]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\" there\"}}]}\n\n" +
				"data: [DONE]\n\n",
		)),
	}
	service := newChatTestService(t, upstream)

	sink := &bufferSink{}
	err := service.Relay(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
	}, sink)
	if err != nil {
		t.Fatalf("relay: %v", err)
	}

	want := "data: {\"content\":\"Hi\"}\n\ndata: {\"content\":\" there\"}\n\ndata: [DONE]\n\n"
	if got := sink.String(); got != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", got, want)
	}
	if sink.flushes != 3 {
		t.Fatalf("expected a flush per frame, got %d", sink.flushes)
	}
}

func TestRelayCarriesPartialLinesAcrossChunks(t *testing.T) {
	frame := "data: {\"choices\":[{\"delta\":{\"content\":\"split\"}}]}\n\ndata: [DONE]\n\n"
	upstream := &stubUpstream{
		body: &chunkedReader{chunks: [][]byte{
			[]byte(frame[:17]),
			[]byte(frame[17:40]),
			[]byte(frame[40:]),
		}},
	}
	service := newChatTestService(t, upstream)

	sink := &bufferSink{}
	if err := service.Relay(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
	}, sink); err != nil {
		t.Fatalf("relay: %v", err)
	}

	want := "data: {\"content\":\"split\"}\n\ndata: [DONE]\n\n"
	if got := sink.String(); got != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", got, want)
	}
}

func TestRelaySkipsMalformedLines(t *testing.T) {
	upstream := &stubUpstream{
		body: io.NopCloser(strings.NewReader(
			"data: not-json\n\n" +
				": keep-alive comment\n\n" +
				"data: {\"choices\":[]}\n\n" +
				"data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n" +
				"data: [DONE]\n\n",
		)),
	}
	service := newChatTestService(t, upstream)

	sink := &bufferSink{}
	if err := service.Relay(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
	}, sink); err != nil {
		t.Fatalf("relay: %v", err)
	}

	want := "data: {\"content\":\"ok\"}\n\ndata: [DONE]\n\n"
	if got := sink.String(); got != want {
		t.Fatalf("unexpected output:\n got %q\nwant %q", got, want)
	}
}

func TestRelayCapsHistoryAndPrependsSystemPrompt(t *testing.T) {
	upstream := &stubUpstream{
		body: io.NopCloser(strings.NewReader("data: [DONE]\n\n")),
	}
	service := newChatTestService(t, upstream)

	messages := make([]Message, 0, 30)
	for i := 0; i < 30; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		messages = append(messages, Message{Role: role, Content: strings.Repeat("x", i+1)})
	}

	sink := &bufferSink{}
	err := service.Relay(context.Background(), Request{
		Messages: messages,
		Context:  &Context{Page: "/risks", Role: "admin", Locale: "es"},
	}, sink)
	if err != nil {
		t.Fatalf("relay: %v", err)
	}

	if len(upstream.messages) != 21 {
		t.Fatalf("expected system prompt plus 20 history turns, got %d", len(upstream.messages))
	}
	system := upstream.messages[0]
	if system.Role != "system" {
		t.Fatalf("expected system message first, got role %q", system.Role)
	}
	for _, fragment := range []string{"/risks", "admin", "es"} {
		if !strings.Contains(system.Content, fragment) {
			t.Fatalf("expected system prompt to mention %q", fragment)
		}
	}
	// Oldest turns are dropped, newest kept.
	if upstream.messages[1].Content != messages[10].Content {
		t.Fatalf("expected history trimmed from the front")
	}
	if upstream.messages[20].Content != messages[29].Content {
		t.Fatalf("expected newest turn kept")
	}
}

func TestRelayValidatesInput(t *testing.T) {
	service := newChatTestService(t, &stubUpstream{})

	err := service.Relay(context.Background(), Request{}, &bufferSink{})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty messages, got %v", err)
	}

	err = service.Relay(context.Background(), Request{
		Messages: []Message{{Role: "", Content: "hi"}},
	}, &bufferSink{})
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing role, got %v", err)
	}
}

func TestRelayPropagatesUpstreamFailure(t *testing.T) {
	upstream := &stubUpstream{err: pkgerrors.New(pkgerrors.CodeDependency, "chat upstream request failed")}
	service := newChatTestService(t, upstream)

	sink := &bufferSink{}
	err := service.Relay(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hello"}},
	}, sink)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if sink.Len() != 0 {
		t.Fatalf("expected no SSE output on upstream failure, got %q", sink.String())
	}
}
