package tooling

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(ctx context.Context, args map[string]interface{}) (string, error) {
	if v, ok := args["text"].(string); ok {
		return v, nil
	}
	return "", nil
}

func echoSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"text": map[string]interface{}{"type": "string"},
		},
		"required": []interface{}{"text"},
	}
}

func TestRegister(t *testing.T) {
	t.Run("registers a tool", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())

		err := r.Register(Definition{Name: "echo", InputSchema: echoSchema(), Handler: echoHandler})
		require.NoError(t, err)

		def := r.Get("echo")
		require.NotNil(t, def)
		assert.Equal(t, "echo", def.Name)
		assert.Len(t, r.List(), 1)
	})

	t.Run("rejects missing name", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		err := r.Register(Definition{Handler: echoHandler})
		assert.Error(t, err)
	})

	t.Run("rejects missing handler", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		err := r.Register(Definition{Name: "echo"})
		assert.Error(t, err)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		require.NoError(t, r.Register(Definition{Name: "echo", Handler: echoHandler}))

		err := r.Register(Definition{Name: "echo", Handler: echoHandler})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("rejects an invalid schema", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		err := r.Register(Definition{
			Name:        "bad",
			InputSchema: map[string]interface{}{"type": 42},
			Handler:     echoHandler,
		})
		assert.Error(t, err)
	})
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	t.Run("runs the handler with valid arguments", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		require.NoError(t, r.Register(Definition{Name: "echo", InputSchema: echoSchema(), Handler: echoHandler}))

		out, err := r.Execute(ctx, "echo", map[string]interface{}{"text": "hello"})
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("rejects arguments failing the schema", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		require.NoError(t, r.Register(Definition{Name: "echo", InputSchema: echoSchema(), Handler: echoHandler}))

		_, err := r.Execute(ctx, "echo", map[string]interface{}{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid arguments")
	})

	t.Run("unknown tool", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		_, err := r.Execute(ctx, "missing", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "tool not found")
	})

	t.Run("handler errors propagate", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		cause := errors.New("network down")
		require.NoError(t, r.Register(Definition{
			Name: "flaky",
			Handler: func(ctx context.Context, args map[string]interface{}) (string, error) {
				return "", cause
			},
		}))

		_, err := r.Execute(ctx, "flaky", nil)
		assert.ErrorIs(t, err, cause)
	})

	t.Run("tools without schema skip validation", func(t *testing.T) {
		r := NewRegistry(zerolog.Nop())
		require.NoError(t, r.Register(Definition{Name: "free", Handler: echoHandler}))

		_, err := r.Execute(ctx, "free", map[string]interface{}{"anything": true})
		assert.NoError(t, err)
	})
}
