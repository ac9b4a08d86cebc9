package mcp

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/tools"
)

// RemoteProvider imports a server's tools as a local tools.Provider,
// so an agent can mix remote and in-process tools in one registry.
type RemoteProvider struct {
	name        string
	client      *Client
	descriptors []*tools.Descriptor
}

var _ tools.Provider = (*RemoteProvider)(nil)

// NewRemoteProvider initializes the session, fetches the remote tool
// definitions and wraps each as a forwarding descriptor.
func NewRemoteProvider(ctx context.Context, name string, client *Client) (*RemoteProvider, error) {
	if _, err := client.Initialize(ctx, "llm-agents", "0.1.0"); err != nil {
		return nil, errors.WithMessagef(err, "failed to initialize server %s", name)
	}
	defs, err := client.ListTools(ctx)
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to list tools from server %s", name)
	}

	p := &RemoteProvider{
		name:   name,
		client: client,
	}
	for _, def := range defs {
		p.descriptors = append(p.descriptors, p.wrap(def))
	}
	return p, nil
}

// Name returns the provider name used in registries and logs.
func (p *RemoteProvider) Name() string {
	return p.name
}

// GetTools returns the forwarding descriptors.
func (p *RemoteProvider) GetTools() []*tools.Descriptor {
	return p.descriptors
}

func (p *RemoteProvider) wrap(def ToolDefinition) *tools.Descriptor {
	info := paramInfo(def.InputSchema)
	name := def.Name
	return &tools.Descriptor{
		Name:        name,
		Description: def.Description,
		Response:    "Result returned by the remote tool as text.",
		Param:       info,
		Func: func(ctx context.Context, param any) (any, error) {
			args := packArguments(info, param)
			res, err := p.client.CallTool(ctx, name, args)
			if err != nil {
				return nil, err
			}
			text := joinContent(res.Content)
			if res.IsError {
				return nil, errors.Newf("%s", text)
			}
			return text, nil
		},
	}
}

// paramInfo reconstructs a local parameter descriptor from the remote
// input schema. A schema with a lone "param" property is a scalar or
// array parameter; anything else is an object.
func paramInfo(sch *InputSchema) *tools.ParamInfo {
	if sch == nil || len(sch.Properties) == 0 {
		return nil
	}
	if prop, ok := sch.Properties["param"]; ok && len(sch.Properties) == 1 {
		return &tools.ParamInfo{
			Required:    len(sch.Required) > 0,
			Type:        tools.ParamType(prop.Type),
			Description: prop.Description,
		}
	}
	schema := map[string]string{}
	for field, prop := range sch.Properties {
		schema[field] = prop.Type
	}
	return &tools.ParamInfo{
		Required: len(sch.Required) > 0,
		Type:     tools.ParamObject,
		Schema:   schema,
	}
}

// packArguments wraps a tool parameter into the tools/call arguments
// map. Object parameters pass through; everything else is wrapped
// under "param".
func packArguments(info *tools.ParamInfo, param any) map[string]any {
	if param == nil {
		return nil
	}
	if info != nil && info.Type == tools.ParamObject {
		if obj, ok := param.(map[string]any); ok {
			return obj
		}
	}
	return map[string]any{"param": param}
}

func joinContent(content []ToolContent) string {
	var parts []string
	for _, c := range content {
		if c.Type == "text" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, "\n")
}
