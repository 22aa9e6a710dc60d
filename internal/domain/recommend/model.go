package recommend

import "github.com/yanqian/nutrient-tracker/pkg/metrics"

// Config configures the recommendation passthrough.
type Config struct {
	Prompt           string
	VegetarianPrompt string
	FoodInfoPrompt   string
	MaxQueryTokens   int
	Model            string
	Temperature      float32
}

// Request is a free-text diet question.
type Request struct {
	Query string `json:"query"`
}

// Response carries the collaborator's text untouched.
type Response struct {
	Query      string              `json:"query"`
	Answer     string              `json:"answer"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// FoodInfo is the model's nutrient and recipe write-up for one food.
type FoodInfo struct {
	Food       string              `json:"food"`
	Answer     string              `json:"answer"`
	TokenUsage *metrics.TokenUsage `json:"tokenUsage,omitempty"`
}

// VegetarianResult answers whether a food is vegetarian.
type VegetarianResult struct {
	Food       string `json:"food"`
	Vegetarian bool   `json:"vegetarian"`
	Answer     string `json:"answer"`
}
