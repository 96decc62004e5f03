package llm

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureConverseAPI struct {
	input *bedrockruntime.ConverseInput
	resp  *bedrockruntime.ConverseOutput
	err   error
}

func (c *captureConverseAPI) Converse(ctx context.Context, params *bedrockruntime.ConverseInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	c.input = params
	return c.resp, c.err
}

func converseTextOutput(text string) *bedrockruntime.ConverseOutput {
	return &bedrockruntime.ConverseOutput{
		Output: &brtypes.ConverseOutputMemberMessage{
			Value: brtypes.Message{
				Role: brtypes.ConversationRoleAssistant,
				Content: []brtypes.ContentBlock{
					&brtypes.ContentBlockMemberText{Value: text},
				},
			},
		},
		StopReason: brtypes.StopReasonEndTurn,
	}
}

func TestBedrockClientUsesConfiguredModel(t *testing.T) {
	api := &captureConverseAPI{resp: converseTextOutput("ok")}
	client := NewBedrockClient(api, "anthropic.claude-3-haiku-20240307-v1:0")

	// Callers set req.Model to the primary provider's model; the fallback
	// must not forward it to Bedrock.
	resp, err := client.Complete(context.Background(), Request{
		Model:    "gemini-2.0-flash",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	require.NoError(t, err)
	require.NotNil(t, api.input)
	require.NotNil(t, api.input.ModelId)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", *api.input.ModelId)
	assert.Equal(t, "ok", resp.Text)
	assert.Equal(t, "end_turn", resp.StopReason)
}

func TestBedrockClientFallsBackToRequestModel(t *testing.T) {
	api := &captureConverseAPI{resp: converseTextOutput("ok")}
	client := NewBedrockClient(api, "")

	_, err := client.Complete(context.Background(), Request{
		Model:    "anthropic.claude-3-haiku-20240307-v1:0",
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	require.NoError(t, err)
	require.NotNil(t, api.input.ModelId)
	assert.Equal(t, "anthropic.claude-3-haiku-20240307-v1:0", *api.input.ModelId)
}

func TestBedrockClientRequiresSomeModel(t *testing.T) {
	api := &captureConverseAPI{resp: converseTextOutput("ok")}
	client := NewBedrockClient(api, "")

	_, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hello"}},
	})

	require.Error(t, err)
	assert.Nil(t, api.input)
}
