package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToAnthropicTools(t *testing.T) {
	t.Run("required list in JSON form", func(t *testing.T) {
		tools := toAnthropicTools([]ToolSchema{{
			Name:        "search",
			Description: "search the web",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"q": map[string]interface{}{"type": "string"},
				},
				"required": []interface{}{"q"},
			},
		}})

		require.Len(t, tools, 1)
		require.NotNil(t, tools[0].OfTool)
		assert.Equal(t, "search", string(tools[0].OfTool.Name))
		assert.Equal(t, []string{"q"}, tools[0].OfTool.InputSchema.Required)
	})

	t.Run("required list as string slice", func(t *testing.T) {
		tools := toAnthropicTools([]ToolSchema{{
			Name: "fetch",
			InputSchema: map[string]interface{}{
				"type":     "object",
				"required": []string{"url", "method"},
			},
		}})

		require.Len(t, tools, 1)
		assert.Equal(t, []string{"url", "method"}, tools[0].OfTool.InputSchema.Required)
	})

	t.Run("no required list", func(t *testing.T) {
		tools := toAnthropicTools([]ToolSchema{{
			Name:        "ping",
			InputSchema: map[string]interface{}{"type": "object"},
		}})

		require.Len(t, tools, 1)
		assert.Empty(t, tools[0].OfTool.InputSchema.Required)
	})
}
