// Package recommend forwards diet questions to a chat model. It adds no
// nutritional logic of its own.
package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yanqian/nutrient-tracker/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

const (
	defaultVegetarianPrompt = "Is %s a vegetarian food?"
	defaultFoodInfoPrompt   = "List the nutrients per 100g of %s and suggest a recipe."
)

// Service exposes recommendation capabilities.
type Service interface {
	Recommend(ctx context.Context, req Request) (Response, error)
	IsVegetarian(ctx context.Context, food string) (VegetarianResult, error)
	FoodInfo(ctx context.Context, food string) (FoodInfo, error)
}

// ChatClient is the external text-generation collaborator.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error)
}

type service struct {
	cfg     Config
	client  ChatClient
	counter TokenCounter
	logger  *slog.Logger
}

// NewService is a wire provider for the recommend domain.
func NewService(cfg Config, client ChatClient, counter TokenCounter, logger *slog.Logger) Service {
	return &service{cfg: cfg, client: client, counter: counter, logger: logger.With("component", "recommend.service")}
}

func (s *service) Recommend(ctx context.Context, req Request) (Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput, "query cannot be empty", nil)
	}
	if s.cfg.MaxQueryTokens > 0 && s.counter != nil {
		if n := s.counter.Count(query); n > s.cfg.MaxQueryTokens {
			return Response{}, apperrors.Wrap(apperrors.CodeInvalidInput,
				fmt.Sprintf("query uses %d tokens, limit is %d", n, s.cfg.MaxQueryTokens), nil)
		}
	}

	messages := make([]chatgpt.Message, 0, 2)
	if prompt := strings.TrimSpace(s.cfg.Prompt); prompt != "" {
		messages = append(messages, chatgpt.Message{Role: "system", Content: prompt})
	}
	messages = append(messages, chatgpt.Message{Role: "user", Content: query})

	answer, resp, err := s.complete(ctx, messages)
	if err != nil {
		return Response{}, err
	}
	out := Response{Query: query, Answer: answer}
	if usage := resp.TokenUsage(); !usage.IsZero() {
		out.TokenUsage = &usage
	}
	return out, nil
}

func (s *service) IsVegetarian(ctx context.Context, food string) (VegetarianResult, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return VegetarianResult{}, apperrors.Wrap(apperrors.CodeInvalidInput, "food cannot be empty", nil)
	}
	format := s.cfg.VegetarianPrompt
	if !strings.Contains(format, "%s") {
		format = defaultVegetarianPrompt
	}
	answer, _, err := s.complete(ctx, []chatgpt.Message{
		{Role: "user", Content: fmt.Sprintf(format, food)},
	})
	if err != nil {
		return VegetarianResult{}, err
	}
	return VegetarianResult{
		Food:       food,
		Vegetarian: strings.Contains(strings.ToLower(answer), "yes"),
		Answer:     answer,
	}, nil
}

func (s *service) FoodInfo(ctx context.Context, food string) (FoodInfo, error) {
	food = strings.TrimSpace(food)
	if food == "" {
		return FoodInfo{}, apperrors.Wrap(apperrors.CodeInvalidInput, "food cannot be empty", nil)
	}
	format := s.cfg.FoodInfoPrompt
	if !strings.Contains(format, "%s") {
		format = defaultFoodInfoPrompt
	}
	messages := make([]chatgpt.Message, 0, 2)
	if prompt := strings.TrimSpace(s.cfg.Prompt); prompt != "" {
		messages = append(messages, chatgpt.Message{Role: "system", Content: prompt})
	}
	messages = append(messages, chatgpt.Message{Role: "user", Content: fmt.Sprintf(format, food)})

	answer, resp, err := s.complete(ctx, messages)
	if err != nil {
		return FoodInfo{}, err
	}
	out := FoodInfo{Food: food, Answer: answer}
	if usage := resp.TokenUsage(); !usage.IsZero() {
		out.TokenUsage = &usage
	}
	return out, nil
}

func (s *service) complete(ctx context.Context, messages []chatgpt.Message) (string, chatgpt.ChatCompletionResponse, error) {
	resp, err := s.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model:       s.cfg.Model,
		Messages:    messages,
		Temperature: s.cfg.Temperature,
	})
	if err != nil {
		s.logger.Warn("chat completion failed", "error", err)
		return "", resp, apperrors.Wrap(apperrors.CodeLLM, "chatgpt request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", resp, apperrors.Wrap(apperrors.CodeLLM, "chatgpt returned no choices", nil)
	}
	content := resp.Choices[0].Message.Content
	s.logger.Debug("chatgpt response received", "content", content)
	return content, resp, nil
}
