package recommend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/nutrient-tracker/internal/infra/llm/chatgpt"
	apperrors "github.com/yanqian/nutrient-tracker/pkg/errors"
)

type stubChat struct {
	reply string
	err   error
	last  chatgpt.ChatCompletionRequest
	calls int
}

func (s *stubChat) CreateChatCompletion(_ context.Context, req chatgpt.ChatCompletionRequest) (chatgpt.ChatCompletionResponse, error) {
	s.calls++
	s.last = req
	if s.err != nil {
		return chatgpt.ChatCompletionResponse{}, s.err
	}
	return chatgpt.ChatCompletionResponse{
		Choices: []chatgpt.Choice{{Message: chatgpt.Message{Role: "assistant", Content: s.reply}}},
		Usage:   chatgpt.Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7},
	}, nil
}

type fixedCounter int

func (c fixedCounter) Count(string) int { return int(c) }

func newTestService(client ChatClient, counter TokenCounter, cfg Config) *service {
	return &service{
		cfg:     cfg,
		client:  client,
		counter: counter,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRecommendPassesTextThrough(t *testing.T) {
	chat := &stubChat{reply: "  Eat more tofu.  "}
	svc := newTestService(chat, fixedCounter(5), Config{Prompt: "You are a dietitian.", MaxQueryTokens: 100, Model: "m"})

	resp, err := svc.Recommend(context.Background(), Request{Query: " what should I eat? "})
	require.NoError(t, err)
	require.Equal(t, "  Eat more tofu.  ", resp.Answer)
	require.Equal(t, "what should I eat?", resp.Query)
	require.NotNil(t, resp.TokenUsage)
	require.Equal(t, 7, resp.TokenUsage.TotalTokens)

	require.Len(t, chat.last.Messages, 2)
	require.Equal(t, "system", chat.last.Messages[0].Role)
	require.Equal(t, "what should I eat?", chat.last.Messages[1].Content)
}

func TestRecommendRejectsLongQuery(t *testing.T) {
	chat := &stubChat{reply: "x"}
	svc := newTestService(chat, fixedCounter(50), Config{MaxQueryTokens: 10})

	_, err := svc.Recommend(context.Background(), Request{Query: "long"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, chat.calls)
}

func TestRecommendEmptyQuery(t *testing.T) {
	svc := newTestService(&stubChat{}, fixedCounter(0), Config{})
	_, err := svc.Recommend(context.Background(), Request{Query: "  "})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRecommendClientFailure(t *testing.T) {
	svc := newTestService(&stubChat{err: errors.New("boom")}, fixedCounter(1), Config{})
	_, err := svc.Recommend(context.Background(), Request{Query: "hi"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
}

func TestIsVegetarian(t *testing.T) {
	cases := []struct {
		reply string
		want  bool
	}{
		{"Yes, it is.", true},
		{"YES", true},
		{"No, it contains pork.", false},
		{"", false},
	}
	for _, tc := range cases {
		chat := &stubChat{reply: tc.reply}
		svc := newTestService(chat, nil, Config{})
		got, err := svc.IsVegetarian(context.Background(), "두부")
		require.NoError(t, err)
		require.Equal(t, tc.want, got.Vegetarian, tc.reply)
		require.Equal(t, "Is 두부 a vegetarian food?", chat.last.Messages[0].Content)
	}
}

func TestIsVegetarianClientFailure(t *testing.T) {
	svc := newTestService(&stubChat{err: errors.New("down")}, nil, Config{})
	_, err := svc.IsVegetarian(context.Background(), "두부")
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
}

func TestFoodInfo(t *testing.T) {
	chat := &stubChat{reply: "Nutrients per 100g ... Recipe ..."}
	svc := newTestService(chat, nil, Config{Prompt: "You are a dietitian.", FoodInfoPrompt: "Nutrients and recipe for %s"})

	got, err := svc.FoodInfo(context.Background(), " 두부 ")
	require.NoError(t, err)
	require.Equal(t, "두부", got.Food)
	require.Equal(t, "Nutrients per 100g ... Recipe ...", got.Answer)
	require.NotNil(t, got.TokenUsage)
	require.Len(t, chat.last.Messages, 2)
	require.Equal(t, "system", chat.last.Messages[0].Role)
	require.Equal(t, "Nutrients and recipe for 두부", chat.last.Messages[1].Content)
}

func TestFoodInfoDefaultPrompt(t *testing.T) {
	chat := &stubChat{reply: "ok"}
	svc := newTestService(chat, nil, Config{})

	_, err := svc.FoodInfo(context.Background(), "두부")
	require.NoError(t, err)
	require.Len(t, chat.last.Messages, 1)
	require.Equal(t, "List the nutrients per 100g of 두부 and suggest a recipe.", chat.last.Messages[0].Content)
}

func TestFoodInfoErrors(t *testing.T) {
	chat := &stubChat{}
	_, err := newTestService(chat, nil, Config{}).FoodInfo(context.Background(), "  ")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.Zero(t, chat.calls)

	_, err = newTestService(&stubChat{err: errors.New("down")}, nil, Config{}).FoodInfo(context.Background(), "두부")
	require.True(t, apperrors.IsCode(err, apperrors.CodeLLM))
}

func TestLoadTokenCounterFallsBackOnError(t *testing.T) {
	counter := loadTokenCounter(func() (*tiktoken.Tiktoken, error) {
		return nil, errors.New("offline")
	}, time.Second)
	require.IsType(t, runeCounter{}, counter)
}

func TestLoadTokenCounterFallsBackOnTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	start := time.Now()
	counter := loadTokenCounter(func() (*tiktoken.Tiktoken, error) {
		<-release
		return nil, errors.New("released")
	}, 20*time.Millisecond)

	require.IsType(t, runeCounter{}, counter)
	require.Less(t, time.Since(start), time.Second)
}

func TestRuneCounter(t *testing.T) {
	require.Equal(t, 2, runeCounter{}.Count("두부밥"))
	require.Zero(t, runeCounter{}.Count(""))
}
