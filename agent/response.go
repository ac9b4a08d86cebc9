package agent

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	"github.com/kaptinlin/jsonrepair"
	"github.com/mfinkle/llm-agents/pkg/llmutils"
)

// ResponseType discriminates the two shapes of a structured response.
type ResponseType string

const (
	// ResponseOutput is a terminal, user-facing answer.
	ResponseOutput ResponseType = "output"
	// ResponseCallTool is a request to invoke a tool.
	ResponseCallTool ResponseType = "call_tool"
)

// StructuredResponse is the JSON contract the model must follow on
// every turn: either a final output or a tool call request.
type StructuredResponse struct {
	// Thought is optional free-form model reasoning.
	Thought string `json:"thought,omitempty"`
	// Type is "output" or "call_tool".
	Type ResponseType `json:"type"`
	// Value is the user-facing text, set when Type is "output".
	Value string `json:"value,omitempty"`
	// Tool is the tool name, set when Type is "call_tool".
	Tool string `json:"tool,omitempty"`
	// Param is the raw tool parameter: a JSON string, number,
	// object or array, per the tool descriptor.
	Param any `json:"param,omitempty"`
}

// ParseResponse extracts a StructuredResponse from raw model output.
// Code fences and conversational prefixes are stripped first; if
// strict decoding still fails, the payload is run through jsonrepair
// before giving up.
func ParseResponse(raw string) (*StructuredResponse, error) {
	cleaned := llmutils.CleanJSON(llmutils.BytesTrimBackticks([]byte(raw)))

	var sr StructuredResponse
	err := json.Unmarshal(cleaned, &sr)
	if err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(string(cleaned))
		if repairErr != nil {
			return nil, errors.WithMessagef(ErrResponseValidation, "response is not valid JSON: %s", err.Error())
		}
		if err = json.Unmarshal([]byte(repaired), &sr); err != nil {
			return nil, errors.WithMessagef(ErrResponseValidation, "response is not valid JSON: %s", err.Error())
		}
	}

	switch sr.Type {
	case ResponseOutput:
		if sr.Value == "" {
			return nil, errors.WithMessage(ErrResponseValidation, `"output" response is missing "value"`)
		}
	case ResponseCallTool:
		if sr.Tool == "" {
			return nil, errors.WithMessage(ErrResponseValidation, `"call_tool" response is missing "tool"`)
		}
	default:
		return nil, errors.WithMessagef(ErrResponseValidation, "unknown response type %q", sr.Type)
	}
	return &sr, nil
}

// ResponseSchema returns the JSON schema of the structured response
// contract, embedded into the agent preamble.
func ResponseSchema() string {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		AllowAdditionalProperties:  false,
		RequiredFromJSONSchemaTags: false,
	}
	sch := r.Reflect(&StructuredResponse{})
	return llmutils.ToJSONIndent(sch)
}
