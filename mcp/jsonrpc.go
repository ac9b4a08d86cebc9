// Package mcp implements a minimal Model Context Protocol layer over
// newline-delimited JSON-RPC 2.0 on stdio: a server that exposes tool
// providers to MCP clients, and a client that imports a remote server's
// tools as a local provider.
package mcp

import (
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// ProtocolVersion is the MCP protocol revision this package speaks.
const ProtocolVersion = "2024-11-05"

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Request is a JSON-RPC 2.0 request or notification. Notifications
// carry no ID.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request expects no response.
func (r *Request) IsNotification() bool {
	return r.ID == nil
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the error member of a failed response.
type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *ResponseError) Error() string {
	return e.Message
}

// NewRequest returns a request with the given ID, method and params.
// Params must marshal to a JSON object or be nil.
func NewRequest(id int64, method string, params any) (*Request, error) {
	req := &Request{
		JSONRPC: "2.0",
		ID:      &id,
		Method:  method,
	}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to marshal params for %s", method)
		}
		req.Params = raw
	}
	return req, nil
}

// NewNotification returns a request without an ID.
func NewNotification(method string, params any) (*Request, error) {
	req, err := NewRequest(0, method, params)
	if err != nil {
		return nil, err
	}
	req.ID = nil
	return req, nil
}

func newResult(id *int64, result any) (*Response, error) {
	resp := &Response{
		JSONRPC: "2.0",
		ID:      id,
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal result")
	}
	resp.Result = raw
	return resp, nil
}

func newError(id *int64, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &ResponseError{
			Code:    code,
			Message: message,
		},
	}
}

// InitializeParams is the client half of the initialize handshake.
type InitializeParams struct {
	ProtocolVersion string         `json:"protocolVersion"`
	Capabilities    map[string]any `json:"capabilities,omitempty"`
	ClientInfo      *PeerInfo      `json:"clientInfo,omitempty"`
}

// InitializeResult is the server half of the initialize handshake.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	ServerInfo      PeerInfo           `json:"serverInfo"`
	Capabilities    ServerCapabilities `json:"capabilities"`
}

// PeerInfo identifies one side of an MCP session.
type PeerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ServerCapabilities advertises what the server supports.
type ServerCapabilities struct {
	SupportsToolDefinitions          bool             `json:"supportsToolDefinitions"`
	SupportsToolCalls                bool             `json:"supportsToolCalls"`
	SupportedToolDefinitionProtocols []string         `json:"supportedToolDefinitionProtocols"`
	Tools                            ToolCapabilities `json:"tools"`
}

// ToolCapabilities is the tools section of server capabilities.
type ToolCapabilities struct {
	ListChanged bool `json:"listChanged"`
}

// ToolDefinition describes one tool in a tools/list result.
type ToolDefinition struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	InputSchema *InputSchema `json:"inputSchema,omitempty"`
}

// InputSchema is the JSON-schema fragment describing tool arguments.
type InputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

// SchemaProperty is one property of an input schema.
type SchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ListToolsResult is the result of tools/list.
type ListToolsResult struct {
	Tools []ToolDefinition `json:"tools"`
}

// CallToolParams are the params of tools/call.
type CallToolParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

// CallToolResult is the result of tools/call. Tool failures are
// reported in-band via IsError, not as JSON-RPC errors.
type CallToolResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError"`
}

// ToolContent is one content block of a tool result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// TextResult wraps text into a single-block tool result.
func TextResult(text string, isError bool) *CallToolResult {
	return &CallToolResult{
		Content: []ToolContent{{Type: "text", Text: text}},
		IsError: isError,
	}
}
