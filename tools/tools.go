// Package tools defines the tool descriptor model and the registry
// used by agents to advertise and dispatch tool calls.
package tools

import (
	"context"

	"github.com/cockroachdb/errors"
)

var (
	// ErrDuplicateTool is returned when a tool name is already registered.
	ErrDuplicateTool = errors.New("tool already registered")
	// ErrUnknownTool is returned when a tool name cannot be resolved.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidParam is returned when a tool parameter fails validation
	// and cannot be coerced to the declared type.
	ErrInvalidParam = errors.New("invalid tool parameter")
	// ErrToolExecution is returned when a resolved tool fails during execution.
	ErrToolExecution = errors.New("tool execution failed")
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamString ParamType = "string"
	ParamNumber ParamType = "number"
	ParamObject ParamType = "object"
	ParamArray  ParamType = "array"
)

// ParamInfo describes the single parameter a tool accepts.
// A nil ParamInfo on a Descriptor means the tool takes no parameter.
type ParamInfo struct {
	// Required indicates the parameter must be present on dispatch.
	Required bool `json:"required" yaml:"required"`
	// Type is the expected parameter type.
	Type ParamType `json:"type,omitempty" yaml:"type,omitempty"`
	// Description is the human-readable usage hint shown to the model.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// Schema describes the fields of an object parameter,
	// keyed by field name with a description of each field.
	Schema map[string]string `json:"schema,omitempty" yaml:"schema,omitempty"`
	// ItemType is the element type of an array parameter.
	ItemType ParamType `json:"item_type,omitempty" yaml:"item_type,omitempty"`
}

// Func is the invocation target of a tool.
// The param is nil for tools that declare no parameter,
// otherwise it has been validated and coerced per the ParamInfo.
type Func func(ctx context.Context, param any) (any, error)

// Descriptor is the complete advertisement of a single tool.
type Descriptor struct {
	// Name uniquely identifies the tool within a registry.
	Name string
	// Description tells the model what the tool does and how to call it.
	Description string
	// Response is an example of the data the tool returns.
	Response string
	// Param describes the tool parameter, nil when none is needed.
	Param *ParamInfo
	// Func is the invocation target.
	Func Func
}

// Provider is the contract tool providers implement.
// Construction of a provider performs any data initialization,
// so GetTools only assembles descriptors.
type Provider interface {
	// Name returns the provider name, used to qualify tool names
	// when tools are exported across process boundaries.
	Name() string
	// GetTools returns the descriptors this provider contributes,
	// in a stable order.
	GetTools() []*Descriptor
}
