package bundled

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/dineai/go-dineai/pkg/voice"
)

// maxToolRounds caps tool-call iterations within a single turn so a
// misbehaving model cannot loop forever.
const maxToolRounds = 5

// groqLLM drives chat completions against Groq's OpenAI-compatible API.
// It owns the conversation history for one pipeline.
type groqLLM struct {
	client openai.Client
	config voice.Config
	logger *slog.Logger

	mu       sync.Mutex
	messages []openai.ChatCompletionMessageParamUnion
	tools    []openai.ChatCompletionToolParam
}

func newGroqLLM(cfg voice.Config, logger *slog.Logger) *groqLLM {
	client := openai.NewClient(
		option.WithAPIKey(cfg.GroqKey),
		option.WithBaseURL(cfg.LLMBaseURL),
	)

	l := &groqLLM{
		client: client,
		config: cfg,
		logger: logger.With("component", "voice.groq"),
	}

	if cfg.SystemPrompt != "" {
		l.messages = append(l.messages, openai.SystemMessage(cfg.SystemPrompt))
	}

	return l
}

// registerTool exposes a tool definition to the model.
func (l *groqLLM) registerTool(t voice.Tool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.tools = append(l.tools, openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        t.Name,
			Description: openai.String(t.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": t.Parameters,
				"required":   t.Required,
			},
		},
	})
}

// respond sends the user's utterance and returns the assistant reply.
// Tool calls requested by the model are resolved through runTool; the
// tool results feed back into the conversation until the model answers
// in plain text.
func (l *groqLLM) respond(ctx context.Context, userText string, runTool func(call voice.ToolCall) string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, openai.UserMessage(userText))
	return l.complete(ctx, runTool)
}

// reply injects one-off instructions and has the model speak unprompted.
func (l *groqLLM) reply(ctx context.Context, instructions string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = append(l.messages, openai.SystemMessage(instructions))
	return l.complete(ctx, nil)
}

// complete runs the completion loop. Caller must hold l.mu.
func (l *groqLLM) complete(ctx context.Context, runTool func(call voice.ToolCall) string) (string, error) {
	for round := 0; round < maxToolRounds; round++ {
		params := openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(l.config.LLMModel),
			Messages:    l.messages,
			Temperature: openai.Float(l.config.LLMTemperature),
			MaxTokens:   openai.Int(int64(l.config.LLMMaxTokens)),
		}
		if len(l.tools) > 0 {
			params.Tools = l.tools
		}

		resp, err := l.client.Chat.Completions.New(ctx, params)
		if err != nil {
			return "", fmt.Errorf("voice/groq: completion: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("voice/groq: empty completion response")
		}

		msg := resp.Choices[0].Message
		l.messages = append(l.messages, msg.ToParam())

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		if runTool == nil {
			return "", fmt.Errorf("voice/groq: model requested tools but none are runnable")
		}

		for _, tc := range msg.ToolCalls {
			args := map[string]any{}
			if tc.Function.Arguments != "" {
				if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
					l.logger.Warn("malformed tool arguments",
						"tool", tc.Function.Name, "error", err)
				}
			}

			result := runTool(voice.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: args,
			})

			l.logger.Debug("tool call resolved",
				"tool", tc.Function.Name, "call_id", tc.ID)

			l.messages = append(l.messages, openai.ToolMessage(result, tc.ID))
		}
	}

	return "", fmt.Errorf("voice/groq: tool rounds exceeded %d", maxToolRounds)
}

// reset clears the conversation, keeping the system prompt.
func (l *groqLLM) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.messages = l.messages[:0]
	if l.config.SystemPrompt != "" {
		l.messages = append(l.messages, openai.SystemMessage(l.config.SystemPrompt))
	}
}
