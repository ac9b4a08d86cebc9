package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/mfinkle/llm-agents/tools"
)

var logger = xlog.NewPackageLogger("github.com/mfinkle/llm-agents", "mcp")

// ServerName and ServerVersion identify this server in the initialize
// handshake.
const (
	ServerName    = "ToolProvider MCP Server"
	ServerVersion = "0.1.0"
)

// maxLineSize bounds a single JSON-RPC frame.
const maxLineSize = 1024 * 1024

// Server exposes tool providers over newline-delimited JSON-RPC.
// Tool names are qualified as <ProviderName>_<tool> so that multiple
// providers can serve tools with the same short name.
type Server struct {
	registry    *tools.Registry
	definitions []ToolDefinition
}

// qualifiedProvider republishes another provider's tools under
// qualified names.
type qualifiedProvider struct {
	name  string
	tools []*tools.Descriptor
}

func (p *qualifiedProvider) Name() string { return p.name }
func (p *qualifiedProvider) GetTools() []*tools.Descriptor { return p.tools }

// NewServer returns a server publishing the tools of all providers.
func NewServer(providers ...tools.Provider) (*Server, error) {
	srv := &Server{
		registry: tools.NewRegistry(),
	}
	for _, provider := range providers {
		qp := &qualifiedProvider{name: provider.Name()}
		for _, desc := range provider.GetTools() {
			qualified := provider.Name() + "_" + desc.Name
			qd := *desc
			qd.Name = qualified
			qp.tools = append(qp.tools, &qd)

			srv.definitions = append(srv.definitions, ToolDefinition{
				Name:        qualified,
				Description: desc.Description + " (from " + provider.Name() + ")",
				InputSchema: inputSchema(desc.Param),
			})
		}
		if err := srv.registry.Register(qp); err != nil {
			return nil, err
		}
	}
	return srv, nil
}

// inputSchema maps a tool parameter descriptor to the MCP input schema
// shape. Scalar and array parameters are published as a single "param"
// property; object parameters expand their schema fields.
func inputSchema(info *tools.ParamInfo) *InputSchema {
	if info == nil || info.Type == "" {
		return &InputSchema{Type: "object"}
	}

	sch := &InputSchema{
		Type:       "object",
		Properties: map[string]SchemaProperty{},
	}
	if info.Type == tools.ParamObject && len(info.Schema) > 0 {
		for field, typ := range info.Schema {
			sch.Properties[field] = SchemaProperty{Type: typ}
		}
		if info.Required {
			for field := range info.Schema {
				sch.Required = append(sch.Required, field)
			}
		}
		return sch
	}

	sch.Properties["param"] = SchemaProperty{
		Type:        string(info.Type),
		Description: info.Description,
	}
	if info.Required {
		sch.Required = []string{"param"}
	}
	return sch
}

// Serve reads newline-delimited requests from r and writes responses
// to w until EOF, an exit request, or context cancellation.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	enc := json.NewEncoder(w)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp, exit := s.handleLine(ctx, line)
		if resp != nil {
			if err := enc.Encode(resp); err != nil {
				return errors.Wrap(err, "failed to write response")
			}
		}
		if exit {
			return nil
		}
	}
	return scanner.Err()
}

func (s *Server) handleLine(ctx context.Context, line []byte) (*Response, bool) {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return newError(nil, CodeParseError, "parse error: "+err.Error()), false
	}
	if req.Method == "" {
		return newError(req.ID, CodeInvalidRequest, "missing method"), false
	}

	logger.ContextKV(ctx, xlog.DEBUG, "method", req.Method, "notification", req.IsNotification())

	if req.IsNotification() {
		// notifications/initialized is acknowledged silently; an exit
		// notification terminates the session
		return nil, req.Method == "exit"
	}

	resp, exit, err := s.dispatch(ctx, &req)
	if err != nil {
		var rpcErr *ResponseError
		if errors.As(err, &rpcErr) {
			return newError(req.ID, rpcErr.Code, rpcErr.Message), exit
		}
		return newError(req.ID, CodeInternalError, err.Error()), exit
	}
	return resp, exit
}

func (s *Server) dispatch(ctx context.Context, req *Request) (*Response, bool, error) {
	switch req.Method {
	case "initialize":
		resp, err := s.handleInitialize(req)
		return resp, false, err
	case "tools/list":
		resp, err := newResult(req.ID, &ListToolsResult{Tools: s.definitions})
		return resp, false, err
	case "tools/call":
		resp, err := s.handleCallTool(ctx, req)
		return resp, false, err
	case "ping":
		resp, err := newResult(req.ID, map[string]string{"status": "ok"})
		return resp, false, err
	case "shutdown":
		resp, err := newResult(req.ID, nil)
		return resp, false, err
	case "exit":
		resp, err := newResult(req.ID, nil)
		return resp, true, err
	default:
		return nil, false, &ResponseError{
			Code:    CodeMethodNotFound,
			Message: "method not found: " + req.Method,
		}
	}
}

func (s *Server) handleInitialize(req *Request) (*Response, error) {
	var params InitializeParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, &ResponseError{Code: CodeInvalidParams, Message: "invalid initialize params"}
		}
	}
	version := params.ProtocolVersion
	if version == "" {
		version = ProtocolVersion
	}
	return newResult(req.ID, &InitializeResult{
		ProtocolVersion: version,
		ServerInfo: PeerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
		Capabilities: ServerCapabilities{
			SupportsToolDefinitions:          true,
			SupportsToolCalls:                true,
			SupportedToolDefinitionProtocols: []string{ProtocolVersion},
			Tools:                            ToolCapabilities{ListChanged: true},
		},
	})
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) (*Response, error) {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, &ResponseError{Code: CodeInvalidParams, Message: "invalid tools/call params"}
	}
	desc, err := s.registry.Resolve(params.Name)
	if err != nil {
		return nil, &ResponseError{Code: CodeInvalidParams, Message: "unknown tool: " + params.Name}
	}

	param := unpackArguments(desc, params.Arguments)

	result, err := s.registry.Dispatch(ctx, params.Name, param)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING, "tool", params.Name, "err", err.Error())
		return newResult(req.ID, TextResult(err.Error(), true))
	}
	return newResult(req.ID, TextResult(result, false))
}

// unpackArguments reverses the client-side argument wrapping: object
// parameters receive the whole arguments map, everything else the
// "param" member.
func unpackArguments(desc *tools.Descriptor, args map[string]any) any {
	if desc.Param == nil || desc.Param.Type == "" {
		return nil
	}
	if desc.Param.Type == tools.ParamObject {
		if _, ok := args["param"]; ok && len(args) == 1 {
			return args["param"]
		}
		if len(args) == 0 {
			return nil
		}
		return args
	}
	return args["param"]
}
