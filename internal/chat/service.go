package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/veridianlabs/governport-backend/pkg/config"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

const defaultMaxHistory = 20

// doneSentinel is the provider's literal end-of-stream marker, forwarded
// unchanged.
const doneSentinel = "[DONE]"

const systemPromptTemplate = `You are the GovernPort assistant, embedded in an AI-governance portal.
You help users understand AI risk registers, incident logs, policies, vendor assessments, bias findings, and subscription plans.
Answer concisely and only from governance context; never invent compliance claims or legal advice.
Current page: %s. User role: %s. Reply in locale: %s.`

// StreamSink is where the relay writes its SSE frames. The HTTP layer backs
// it with a flushing response writer.
type StreamSink interface {
	io.Writer
	Flush()
}

// completionChunk is the slice of the provider's streaming payload we care
// about.
type completionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

type contentFrame struct {
	Content string `json:"content"`
}

// Service relays browser conversations to the upstream model and re-streams
// the reply as this service's own SSE frames.
type Service struct {
	upstream   UpstreamClient
	logg       *logger.Logger
	maxHistory int
}

// NewService wires the chat relay.
func NewService(upstream UpstreamClient, cfg config.ChatConfig, logg *logger.Logger) (*Service, error) {
	if upstream == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "upstream client required")
	}
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = defaultMaxHistory
	}
	return &Service{
		upstream:   upstream,
		logg:       logg,
		maxHistory: maxHistory,
	}, nil
}

// Relay validates the request, calls upstream, and pumps transformed frames
// into the sink until the upstream stream ends. Upstream errors after the
// stream opened are logged server-side only; the SSE body never carries a
// partial error.
func (s *Service) Relay(ctx context.Context, req Request, sink StreamSink) error {
	if len(req.Messages) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "messages are required")
	}
	for _, msg := range req.Messages {
		if strings.TrimSpace(msg.Role) == "" || msg.Content == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "each message requires a role and content")
		}
	}

	messages := s.buildMessages(req)
	body, err := s.upstream.Stream(ctx, messages)
	if err != nil {
		return err
	}
	defer body.Close()

	s.pump(ctx, body, sink)
	return nil
}

// buildMessages prepends the system instruction and caps the history to the
// most recent turns.
func (s *Service) buildMessages(req Request) []Message {
	history := req.Messages
	if len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}

	out := make([]Message, 0, len(history)+1)
	out = append(out, Message{Role: "system", Content: buildSystemPrompt(req.Context)})
	out = append(out, history...)
	return out
}

// pump is the incremental decode loop: read a chunk, split on newlines, carry
// the trailing partial line, transform each complete line.
func (s *Service) pump(ctx context.Context, body io.Reader, sink StreamSink) {
	buf := make([]byte, 4096)
	var pending string
	for {
		n, err := body.Read(buf)
		if n > 0 {
			pending += string(buf[:n])
			lines := strings.Split(pending, "\n")
			pending = lines[len(lines)-1]
			for _, line := range lines[:len(lines)-1] {
				if !s.emitLine(line, sink) {
					return
				}
			}
		}
		if err != nil {
			if err != io.EOF && s.logg != nil {
				s.logg.Error(ctx, "chat upstream stream ended abnormally", err)
			}
			if pending != "" {
				s.emitLine(pending, sink)
			}
			return
		}
	}
}

// emitLine transforms one upstream SSE line. It reports false once the done
// sentinel has been forwarded.
func (s *Service) emitLine(line string, sink StreamSink) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "data: ") {
		return true
	}
	payload := strings.TrimPrefix(line, "data: ")
	if payload == doneSentinel {
		fmt.Fprintf(sink, "data: %s\n\n", doneSentinel)
		sink.Flush()
		return false
	}

	var chunk completionChunk
	if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
		// Keep-alives and partial noise are expected; skip, never abort.
		return true
	}
	if len(chunk.Choices) == 0 {
		return true
	}
	content := chunk.Choices[0].Delta.Content
	if content == "" {
		return true
	}

	frame, err := json.Marshal(contentFrame{Content: content})
	if err != nil {
		return true
	}
	fmt.Fprintf(sink, "data: %s\n\n", frame)
	sink.Flush()
	return true
}

func buildSystemPrompt(reqCtx *Context) string {
	page, role, locale := "unknown", "member", "en"
	if reqCtx != nil {
		if strings.TrimSpace(reqCtx.Page) != "" {
			page = strings.TrimSpace(reqCtx.Page)
		}
		if strings.TrimSpace(reqCtx.Role) != "" {
			role = strings.TrimSpace(reqCtx.Role)
		}
		if strings.TrimSpace(reqCtx.Locale) != "" {
			locale = strings.TrimSpace(reqCtx.Locale)
		}
	}
	return fmt.Sprintf(systemPromptTemplate, page, role, locale)
}
