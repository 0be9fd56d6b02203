// Package tooling provides the tool registry consumed by the agent
// layer. Tools are opaque callables with a JSON schema; the society
// engine never invokes them directly.
package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/harun/tandem/internal/observability"
)

// Handler executes a tool with validated arguments.
type Handler func(ctx context.Context, args map[string]interface{}) (string, error)

// Definition describes a registered tool.
type Definition struct {
	Name        string
	Description string
	// InputSchema is a JSON-schema object describing the arguments.
	InputSchema map[string]interface{}
	Handler     Handler
}

// Registry holds tool definitions with compiled argument schemas.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]*Definition
	schemas map[string]*gojsonschema.Schema
	logger  zerolog.Logger
}

// NewRegistry creates an empty tool registry.
func NewRegistry(logger zerolog.Logger) *Registry {
	return &Registry{
		tools:   make(map[string]*Definition),
		schemas: make(map[string]*gojsonschema.Schema),
		logger:  logger,
	}
}

// Register adds a tool and compiles its argument schema.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if def.Handler == nil {
		return fmt.Errorf("tool %s: handler is required", def.Name)
	}

	var schema *gojsonschema.Schema
	if def.InputSchema != nil {
		raw, err := json.Marshal(def.InputSchema)
		if err != nil {
			return fmt.Errorf("tool %s: failed to marshal schema: %w", def.Name, err)
		}
		schema, err = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return fmt.Errorf("tool %s: invalid schema: %w", def.Name, err)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("tool %s: already registered", def.Name)
	}
	r.tools[def.Name] = &def
	if schema != nil {
		r.schemas[def.Name] = schema
	}

	r.logger.Debug().Str("tool", def.Name).Msg("tool registered")
	return nil
}

// Get returns a tool definition, or nil when unknown.
func (r *Registry) Get(name string) *Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tools[name]
}

// List returns all registered definitions.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Definition, 0, len(r.tools))
	for _, def := range r.tools {
		out = append(out, def)
	}
	return out
}

// Execute validates the arguments against the tool's schema and runs
// the handler. Validation and handler failures are tool-level errors;
// they never abort the surrounding conversation.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	r.mu.RLock()
	def := r.tools[name]
	schema := r.schemas[name]
	r.mu.RUnlock()

	if def == nil {
		return "", fmt.Errorf("tool not found: %s", name)
	}

	if schema != nil {
		result, err := schema.Validate(gojsonschema.NewGoLoader(args))
		if err != nil {
			return "", fmt.Errorf("tool %s: argument validation failed: %w", name, err)
		}
		if !result.Valid() {
			return "", fmt.Errorf("tool %s: invalid arguments: %v", name, result.Errors())
		}
	}

	start := time.Now()
	output, err := def.Handler(ctx, args)
	observability.RecordToolExecution(name, time.Since(start), err == nil)

	if err != nil {
		r.logger.Warn().Str("tool", name).Err(err).Msg("tool execution failed")
		return "", err
	}

	r.logger.Debug().
		Str("tool", name).
		Dur("duration", time.Since(start)).
		Msg("tool executed")
	return output, nil
}
