package mcp_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/mcp"
	"github.com/mfinkle/llm-agents/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type weatherProvider struct{}

func (p *weatherProvider) Name() string { return "WeatherToolProvider" }

func (p *weatherProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "get_weather",
			Description: "Get the weather forecast for a location.",
			Response:    "A short text forecast.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "The location.",
			},
			Func: func(_ context.Context, param any) (any, error) {
				return "Sunny in " + param.(string), nil
			},
		},
		{
			Name:        "find_store",
			Description: "Find a store.",
			Response:    "Store info.",
			Param: &tools.ParamInfo{
				Required: true,
				Type:     tools.ParamObject,
				Schema: map[string]string{
					"store_type": "string",
					"location":   "string",
				},
			},
			Func: func(_ context.Context, param any) (any, error) {
				obj := param.(map[string]any)
				return map[string]any{"found": obj["store_type"]}, nil
			},
		},
		{
			Name:        "always_fails",
			Description: "Fails on purpose.",
			Response:    "Never returns.",
			Func: func(_ context.Context, _ any) (any, error) {
				return nil, errors.New("backend down")
			},
		},
	}
}

// startSession wires a server and client over in-memory pipes.
func startSession(t *testing.T) (*mcp.Client, func()) {
	t.Helper()
	srv, err := mcp.NewServer(&weatherProvider{})
	require.NoError(t, err)

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(context.Background(), serverReader, serverWriter)
	}()

	client := mcp.NewClient(clientReader, clientWriter)
	cleanup := func() {
		client.Close()
		_ = clientWriter.Close()
		<-serveDone
		_ = serverWriter.Close()
	}
	return client, cleanup
}

func TestSession_Initialize(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	res, err := client.Initialize(context.Background(), "test-client", "0.0.1")
	require.NoError(t, err)
	assert.Equal(t, mcp.ProtocolVersion, res.ProtocolVersion)
	assert.Equal(t, "ToolProvider MCP Server", res.ServerInfo.Name)
	assert.Equal(t, "0.1.0", res.ServerInfo.Version)
	assert.True(t, res.Capabilities.SupportsToolDefinitions)
	assert.True(t, res.Capabilities.SupportsToolCalls)
	assert.Equal(t, []string{mcp.ProtocolVersion}, res.Capabilities.SupportedToolDefinitionProtocols)
	assert.True(t, res.Capabilities.Tools.ListChanged)
	assert.Equal(t, "ToolProvider MCP Server", client.ServerInfo.Name)
}

func TestSession_ListTools(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	defs, err := client.ListTools(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 3)

	byName := map[string]mcp.ToolDefinition{}
	for _, def := range defs {
		byName[def.Name] = def
	}

	weather, ok := byName["WeatherToolProvider_get_weather"]
	require.True(t, ok)
	assert.Equal(t, "Get the weather forecast for a location. (from WeatherToolProvider)", weather.Description)
	require.NotNil(t, weather.InputSchema)
	assert.Equal(t, "object", weather.InputSchema.Type)
	assert.Equal(t, "string", weather.InputSchema.Properties["param"].Type)
	assert.Equal(t, []string{"param"}, weather.InputSchema.Required)

	store := byName["WeatherToolProvider_find_store"]
	assert.Contains(t, store.InputSchema.Properties, "store_type")
	assert.Contains(t, store.InputSchema.Properties, "location")

	fails := byName["WeatherToolProvider_always_fails"]
	require.NotNil(t, fails.InputSchema)
	assert.Empty(t, fails.InputSchema.Properties)
}

func TestSession_CallTool(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	res, err := client.CallTool(context.Background(), "WeatherToolProvider_get_weather",
		map[string]any{"param": "Springfield"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	require.Len(t, res.Content, 1)
	assert.Equal(t, "text", res.Content[0].Type)
	assert.Equal(t, "Sunny in Springfield", res.Content[0].Text)
}

func TestSession_CallTool_ObjectParam(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	res, err := client.CallTool(context.Background(), "WeatherToolProvider_find_store",
		map[string]any{"store_type": "grocery", "location": "downtown"})
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.JSONEq(t, `{"found": "grocery"}`, res.Content[0].Text)
}

func TestSession_CallTool_ErrorIsInBand(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	res, err := client.CallTool(context.Background(), "WeatherToolProvider_always_fails", nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, "always_fails")
}

func TestSession_CallTool_Unknown(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	_, err := client.CallTool(context.Background(), "nope", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tool")
	assert.Contains(t, err.Error(), "-32602")
}

func TestSession_Ping(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	require.NoError(t, client.Ping(context.Background()))
}

func TestSession_Shutdown(t *testing.T) {
	srv, err := mcp.NewServer(&weatherProvider{})
	require.NoError(t, err)

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()

	serveDone := make(chan error, 1)
	go func() {
		serveDone <- srv.Serve(context.Background(), serverReader, serverWriter)
	}()

	client := mcp.NewClient(clientReader, clientWriter)
	require.NoError(t, client.Shutdown(context.Background()))

	// the exit notification terminates the serve loop
	assert.NoError(t, <-serveDone)
	client.Close()
}

func TestRemoteProvider(t *testing.T) {
	client, cleanup := startSession(t)
	defer cleanup()

	provider, err := mcp.NewRemoteProvider(context.Background(), "weather", client)
	require.NoError(t, err)
	assert.Equal(t, "weather", provider.Name())
	require.Len(t, provider.GetTools(), 3)

	reg := tools.NewRegistry()
	require.NoError(t, reg.Register(provider))

	// string param is wrapped under "param" on the wire
	res, err := reg.Dispatch(context.Background(), "WeatherToolProvider_get_weather", "Springfield")
	require.NoError(t, err)
	assert.Equal(t, "Sunny in Springfield", res)

	// object param passes through as the arguments map
	res, err = reg.Dispatch(context.Background(), "WeatherToolProvider_find_store",
		map[string]any{"store_type": "furniture", "location": "mall"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"found": "furniture"}`, res)

	// in-band tool errors surface as execution errors
	_, err = reg.Dispatch(context.Background(), "WeatherToolProvider_always_fails", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, tools.ErrToolExecution))
}

func TestServer_WireErrors(t *testing.T) {
	srv, err := mcp.NewServer(&weatherProvider{})
	require.NoError(t, err)

	clientReader, serverWriter := io.Pipe()
	serverReader, clientWriter := io.Pipe()
	t.Cleanup(func() {
		_ = clientWriter.Close()
		_ = serverWriter.Close()
	})

	go func() {
		_ = srv.Serve(context.Background(), serverReader, serverWriter)
	}()

	dec := json.NewDecoder(clientReader)

	_, err = io.WriteString(clientWriter, "this is not json\n")
	require.NoError(t, err)
	var resp mcp.Response
	require.NoError(t, dec.Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeParseError, resp.Error.Code)

	_, err = io.WriteString(clientWriter, `{"jsonrpc": "2.0", "id": 1, "method": "bogus/method"}`+"\n")
	require.NoError(t, err)
	require.NoError(t, dec.Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeMethodNotFound, resp.Error.Code)

	_, err = io.WriteString(clientWriter, `{"jsonrpc": "2.0", "id": 2}`+"\n")
	require.NoError(t, err)
	require.NoError(t, dec.Decode(&resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, mcp.CodeInvalidRequest, resp.Error.Code)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	file := filepath.Join(dir, "servers.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
mcpServers:
  tools:
    command: mcpserver
    args: ["--debug"]
    env:
      LOG_LEVEL: debug
`), 0o600))

	cfg, err := mcp.LoadConfig(file)
	require.NoError(t, err)
	srv, err := cfg.Server("tools")
	require.NoError(t, err)
	assert.Equal(t, "mcpserver", srv.Command)
	assert.Equal(t, []string{"--debug"}, srv.Args)
	assert.Equal(t, "debug", srv.Env["LOG_LEVEL"])

	_, err = cfg.Server("missing")
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
mcpServers:
  broken:
    args: ["--x"]
`), 0o600))
	_, err = mcp.LoadConfig(bad)
	assert.Error(t, err)
}
