package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider generates quotes on demand with a chat completion model.
// Unlike the archive providers it fabricates original quotes, so every quote
// is tagged "generated" in addition to the requested topic.
type OpenAIProvider struct {
	Base
	client openai.Client
	model  string
}

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// NewOpenAI creates a new OpenAI-backed quote provider. The optional baseURL
// parameter allows overriding the API endpoint (pass "" for the default).
func NewOpenAI(apiKey, baseURL, model string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: api key is required")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	resolvedBase := "https://api.openai.com"
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
		resolvedBase = baseURL
	}
	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		Base:   Base{name: "openai", baseURL: resolvedBase},
		client: client,
		model:  model,
	}, nil
}

const openaiSystemPrompt = `You are a quote generator. Reply with exactly one
short quote as a JSON object: {"text": "...", "author": "..."}. Invent a
plausible author name. No markdown, no commentary.`

// generatedQuote is the JSON shape the model is instructed to produce.
type generatedQuote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Random asks the model for one original quote.
func (p *OpenAIProvider) Random(ctx context.Context) (Quote, error) {
	return p.generate(ctx, "any topic")
}

// Search generates quotes matching the query's topic. Limit caps the number
// of completions issued (default 1).
func (p *OpenAIProvider) Search(ctx context.Context, q SearchQuery) ([]Quote, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	topic := q.Query
	if topic == "" && len(q.Tags) > 0 {
		topic = strings.Join(q.Tags, ", ")
	}
	if topic == "" {
		topic = q.Author
	}

	n := q.Limit
	if n <= 0 {
		n = 1
	}
	quotes := make([]Quote, 0, n)
	for i := 0; i < n; i++ {
		quote, err := p.generate(ctx, topic)
		if err != nil {
			if len(quotes) > 0 {
				return quotes, nil // partial result beats none
			}
			return nil, err
		}
		quotes = append(quotes, quote)
	}
	return quotes, nil
}

func (p *OpenAIProvider) generate(ctx context.Context, topic string) (Quote, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(openaiSystemPrompt),
			openai.UserMessage("Generate a quote about: " + topic),
		},
		Model: p.model,
	}
	params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Quote{}, fmt.Errorf("openai: completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Quote{}, ErrNoQuote
	}

	var gen generatedQuote
	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &gen); err != nil {
		return Quote{}, fmt.Errorf("openai: model returned malformed quote: %w", err)
	}

	q, err := NewQuote(DeriveID(gen.Text), gen.Text, gen.Author)
	if err != nil {
		return Quote{}, fmt.Errorf("openai: model returned invalid quote: %w", err)
	}
	tags := []string{"generated"}
	if topic != "" && topic != "any topic" {
		tags = append(tags, topic)
	}
	return q.WithSource(p.name).WithTags(tags...).WithDate(time.Now().UTC()), nil
}

// SupportedTags returns the fixed routing tags for generated quotes.
func (p *OpenAIProvider) SupportedTags() []string {
	return []string{"generated"}
}

// SupportsTag reports whether the tag is in the fixed tag set.
func (p *OpenAIProvider) SupportsTag(tag string) bool {
	return tag == "generated"
}
