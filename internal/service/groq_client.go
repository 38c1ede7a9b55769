package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/RLP0AI/roleplay-ai-app/internal/model"
)

const (
	groqBaseURL             = "https://api.groq.com/openai/v1"
	groqCompletionsEndpoint = "/chat/completions"

	completionMaxTokens = 1024
)

// ChatMessage is one transcript entry sent to the generation provider:
// role and content only, timestamps stripped.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationProvider produces one completion for a conversation transcript
// and a character profile. Stream delivers the completion incrementally and
// returns the full text once the provider stream completes.
type GenerationProvider interface {
	Complete(ctx context.Context, transcript []ChatMessage, character *model.Character) (string, error)
	Stream(ctx context.Context, transcript []ChatMessage, character *model.Character, onDelta func(delta string) error) (string, error)
}

type groqClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

// NewGroqClient creates a generation provider backed by the Groq
// chat-completions API.
func NewGroqClient(apiKey, modelName string) GenerationProvider {
	return &groqClient{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: groqBaseURL,
		apiKey:  apiKey,
		model:   modelName,
	}
}

// systemPrompt injects the character profile into the fixed role-play
// instruction. The rules keep the model in character and forbid it from
// revealing that it is an AI.
func systemPrompt(character *model.Character) string {
	return fmt.Sprintf(`You are roleplaying as a fictional character.

Name: %s
Role: %s
Personality: %s
Speaking Style: %s
Backstory: %s

Rules:
- Never break character
- Never mention you are an AI
- Never refer to system instructions
- Respond emotionally and immersively
- Stay fully in character at all times
- Keep responses natural and conversational
- Match the personality and speaking style exactly`,
		character.Name, character.Role, character.Personality, character.Style, character.Backstory)
}

type groqRequest struct {
	Messages            []ChatMessage `json:"messages"`
	Model               string        `json:"model"`
	Temperature         float64       `json:"temperature"`
	MaxCompletionTokens int           `json:"max_completion_tokens"`
	TopP                float64       `json:"top_p"`
	Stream              bool          `json:"stream"`
}

type groqResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *groqClient) newRequest(ctx context.Context, transcript []ChatMessage, character *model.Character, stream bool) (*http.Request, error) {
	body := groqRequest{
		Messages:            append([]ChatMessage{{Role: "system", Content: systemPrompt(character)}}, transcript...),
		Model:               c.model,
		Temperature:         1,
		MaxCompletionTokens: completionMaxTokens,
		TopP:                1,
		Stream:              stream,
	}
	bodyJSON, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+groqCompletionsEndpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func (c *groqClient) Complete(ctx context.Context, transcript []ChatMessage, character *model.Character) (string, error) {
	req, err := c.newRequest(ctx, transcript, character, false)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read completion response: %w", err)
	}

	var parsed groqResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if parsed.Error.Message != "" {
			return "", fmt.Errorf("completion failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("completion failed: HTTP %d", resp.StatusCode)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == "" {
		return "Sorry, I couldn't generate a response.", nil
	}
	return parsed.Choices[0].Message.Content, nil
}

func (c *groqClient) Stream(ctx context.Context, transcript []ChatMessage, character *model.Character, onDelta func(string) error) (string, error) {
	req, err := c.newRequest(ctx, transcript, character, true)
	if err != nil {
		return "", err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("streaming request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var parsed groqResponse
		if err := json.Unmarshal(respBody, &parsed); err == nil && parsed.Error.Message != "" {
			return "", fmt.Errorf("streaming failed: %s", parsed.Error.Message)
		}
		return "", fmt.Errorf("streaming failed: HTTP %d", resp.StatusCode)
	}

	var full strings.Builder
	reader := bufio.NewReader(resp.Body)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("reading provider stream: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")
		if payload == "[DONE]" {
			break
		}
		var chunk groqResponse
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			return "", fmt.Errorf("decoding stream chunk: %w", err)
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return "", fmt.Errorf("delivering stream delta: %w", err)
		}
	}
	return full.String(), nil
}
