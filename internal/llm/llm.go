// Package llm defines the language model collaborator used by the planner.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// ErrNoContent is returned when the model produced an empty answer.
var ErrNoContent = errors.New("model returned no content")

// Task names the kind of call so clients can pick sampling settings.
type Task string

const (
	TaskClassifyIntent Task = "classify_intent"
	TaskExtractEvent   Task = "extract_event"
	TaskEnhancePlan    Task = "enhance_plan"
	TaskGeneratePlan   Task = "generate_plan"
)

// Request is one prompt for the model.
type Request struct {
	Task   Task
	System string
	User   string
	// Input is the raw end-user request the prompt was built from.
	Input string
}

// Schema is a named JSON schema constraining a structured answer.
type Schema struct {
	Name   string
	Schema *jsonschema.Schema
}

// Client generates text and schema-constrained JSON.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	CompleteJSON(ctx context.Context, req Request, schema Schema, out any) error
}

// SchemaFor infers the JSON schema of T.
func SchemaFor[T any](name string) (Schema, error) {
	s, err := jsonschema.For[T](nil)
	if err != nil {
		return Schema{}, fmt.Errorf("infer schema %s: %w", name, err)
	}
	return Schema{Name: name, Schema: s}, nil
}

// MustSchemaFor is SchemaFor for package-level schema variables.
func MustSchemaFor[T any](name string) Schema {
	s, err := SchemaFor[T](name)
	if err != nil {
		panic(err)
	}
	return s
}

// DecodeJSON unmarshals a model answer into out, tolerating markdown code fences.
func DecodeJSON(text string, out any) error {
	cleaned := StripCodeFence(text)
	if cleaned == "" {
		return ErrNoContent
	}
	if err := json.Unmarshal([]byte(cleaned), out); err != nil {
		return fmt.Errorf("decode model json: %w", err)
	}
	return nil
}

// StripCodeFence removes a surrounding ```json or ``` fence.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
		cleaned = strings.TrimSuffix(cleaned, "```")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
		cleaned = strings.TrimSuffix(cleaned, "```")
	}
	return strings.TrimSpace(cleaned)
}
