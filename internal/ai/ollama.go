// Package ai asks a local Ollama model for starter tasks and learning
// resources.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Raisondetr3/taskflow-service/pkg/logger"
	"github.com/ollama/ollama/api"
)

const maxSuggestions = 10

var (
	ErrDisabled      = errors.New("ai suggestions are disabled")
	ErrEmptyPrompt   = errors.New("prompt text is required")
	ErrBadModelReply = errors.New("model returned an unusable reply")
)

type Resource struct {
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
	Kind  string `json:"kind,omitempty"`
}

type Suggester interface {
	GenerateTasks(ctx context.Context, flowTitle string) ([]string, error)
	SuggestResources(ctx context.Context, description string) ([]Resource, error)
}

type generator interface {
	Generate(ctx context.Context, req *api.GenerateRequest, fn api.GenerateResponseFunc) error
}

type OllamaSuggester struct {
	client generator
	model  string
}

func NewOllamaSuggester(host, model string, timeout time.Duration) (*OllamaSuggester, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	return &OllamaSuggester{
		client: api.NewClient(base, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

const tasksPrompt = `Break the goal %q into at most %d short, concrete, ordered tasks.
Reply with JSON only: {"tasks": ["first task", "second task"]}`

const resourcesPrompt = `Suggest at most %d helpful learning resources for this task: %q.
Reply with JSON only: {"resources": [{"title": "...", "url": "...", "kind": "article|video|book|course|tool"}]}`

func (s *OllamaSuggester) GenerateTasks(ctx context.Context, flowTitle string) ([]string, error) {
	flowTitle = strings.TrimSpace(flowTitle)
	if flowTitle == "" {
		return nil, ErrEmptyPrompt
	}

	var reply struct {
		Tasks []string `json:"tasks"`
	}
	if err := s.generateJSON(ctx, "generate_tasks", fmt.Sprintf(tasksPrompt, flowTitle, maxSuggestions), &reply); err != nil {
		return nil, err
	}

	tasks := make([]string, 0, len(reply.Tasks))
	for _, t := range reply.Tasks {
		if t = strings.TrimSpace(t); t != "" && len(tasks) < maxSuggestions {
			tasks = append(tasks, t)
		}
	}
	if len(tasks) == 0 {
		return nil, ErrBadModelReply
	}
	return tasks, nil
}

func (s *OllamaSuggester) SuggestResources(ctx context.Context, description string) ([]Resource, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, ErrEmptyPrompt
	}

	var reply struct {
		Resources []Resource `json:"resources"`
	}
	if err := s.generateJSON(ctx, "suggest_resources", fmt.Sprintf(resourcesPrompt, maxSuggestions, description), &reply); err != nil {
		return nil, err
	}

	out := make([]Resource, 0, len(reply.Resources))
	for _, r := range reply.Resources {
		r.Title = strings.TrimSpace(r.Title)
		if r.Title != "" && len(out) < maxSuggestions {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *OllamaSuggester) generateJSON(ctx context.Context, op, prompt string, dst any) error {
	stream := false
	req := &api.GenerateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: &stream,
		Format: json.RawMessage(`"json"`),
	}

	start := time.Now()
	var sb strings.Builder
	err := s.client.Generate(ctx, req, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		return nil
	})
	if err == nil {
		if jsonErr := json.Unmarshal([]byte(sb.String()), dst); jsonErr != nil {
			err = fmt.Errorf("%w: %v", ErrBadModelReply, jsonErr)
		}
	}
	logger.LogAIRequest(ctx, s.model, op, time.Since(start), err)
	return err
}

// Disabled is used when no model is configured.
type Disabled struct{}

func (Disabled) GenerateTasks(context.Context, string) ([]string, error) {
	return nil, ErrDisabled
}

func (Disabled) SuggestResources(context.Context, string) ([]Resource, error) {
	return nil, ErrDisabled
}
