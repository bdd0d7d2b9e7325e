package ai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/rs/zerolog"

	"github.com/rusneurosoft/neuro-connector/internal/flow"
)

const openRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterClient generates role-specific content through the OpenRouter
// chat-completions API. It implements flow.Generator.
type OpenRouterClient struct {
	client *openai.Client
	model  string
	log    zerolog.Logger
}

func NewOpenRouterClient(apiKey, model string, log zerolog.Logger) *OpenRouterClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = openRouterBaseURL

	return &OpenRouterClient{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		log:    log,
	}
}

// GenerateRoleContent builds the role's prompt from exactly the chain's
// free-form answers and returns the model's reply verbatim.
func (c *OpenRouterClient) GenerateRoleContent(ctx context.Context, role flow.Role, answers map[string]string) (string, error) {
	var prompt string
	switch role {
	case flow.RoleEntrepreneur:
		prompt = fmt.Sprintf(entrepreneurPromptTemplate,
			answers["process_pain"], answers["time_lost"], answers["department_affected"])
	case flow.RoleStartupper:
		prompt = fmt.Sprintf(startupperPromptTemplate,
			answers["problem_solved"], answers["current_stage"], answers["main_barrier"])
	case flow.RoleSpecialist:
		prompt = fmt.Sprintf(specialistPromptTemplate,
			answers["main_skill"], answers["project_interests"], answers["work_format"])
	default:
		return "", fmt.Errorf("no generation prompt for role %q", role)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: prompt}},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("openrouter completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openrouter returned no choices")
	}

	content := resp.Choices[0].Message.Content
	c.log.Debug().Str("role", string(role)).Int("chars", len(content)).Msg("content generated")
	return content, nil
}
