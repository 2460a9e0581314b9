// Package script generates structured video scripts from a series brief via
// OpenAI structured outputs.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/models"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/pipeline"
	"github.com/fl9mdasif/ai-short-vid-generator-and-social-schedule-publisher/processing"
)

// GenerateSchema generates a JSON schema for structured outputs
func GenerateSchema[T any]() interface{} {
	// Structured Outputs uses a subset of JSON schema
	// These flags are necessary to comply with the subset
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)
	return schema
}

// Generate the JSON schema at initialization time
var scriptSchema = GenerateSchema[processing.Script]()

// Generator implements pipeline.ScriptGenerator against the OpenAI API.
type Generator struct {
	client openai.Client
	model  openai.ChatModel
}

// NewGenerator reads OPENAI_API_KEY from the environment.
func NewGenerator() (*Generator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	return &Generator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  openai.ChatModelGPT4oMini,
	}, nil
}

// GenerateScript produces the script for one run. The raw model output is
// stripped of markdown fences before decoding; anything that still fails the
// schema is a parse error, never propagated downstream untyped.
func (g *Generator) GenerateScript(ctx context.Context, series models.Series) (*processing.Script, error) {
	prompt := processing.VideoScriptPrompt(series)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "video_script",
		Description: openai.String("A structured short-form video script with scenes"),
		Schema:      scriptSchema,
		Strict:      openai.Bool(true),
	}

	chatCompletion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model: g.model,
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: schemaParam,
			},
		},
	})
	if err != nil {
		return nil, pipeline.NewTransientError(fmt.Errorf("OpenAI API error: %w", err))
	}

	if len(chatCompletion.Choices) == 0 {
		return nil, pipeline.NewParseError(fmt.Errorf("no response from OpenAI"))
	}

	rawResponse := chatCompletion.Choices[0].Message.Content
	if rawResponse == "" {
		return nil, pipeline.NewParseError(fmt.Errorf("OpenAI returned empty response, finish reason: %s", chatCompletion.Choices[0].FinishReason))
	}

	return Parse(rawResponse)
}

// Parse decodes a model response into a Script after stripping known
// formatting wrappers.
func Parse(raw string) (*processing.Script, error) {
	cleaned := processing.StripCodeFences(raw)

	var s processing.Script
	if err := json.Unmarshal([]byte(cleaned), &s); err != nil {
		return nil, pipeline.NewParseError(fmt.Errorf("failed to parse script response: %w", err))
	}
	return &s, nil
}
