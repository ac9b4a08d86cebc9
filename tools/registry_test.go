package tools_test

import (
	"context"
	"testing"

	"github.com/mfinkle/llm-agents/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProvider struct {
	name string
	list []*tools.Descriptor
}

func (p *staticProvider) Name() string { return p.name }
func (p *staticProvider) GetTools() []*tools.Descriptor { return p.list }

func echoTool(name string) *tools.Descriptor {
	return &tools.Descriptor{
		Name:        name,
		Description: "Echoes the given value.",
		Response:    `Returns the value. Example: {"value": "x"}`,
		Param: &tools.ParamInfo{
			Required:    true,
			Type:        tools.ParamString,
			Description: "Value to echo",
		},
		Func: func(_ context.Context, param any) (any, error) {
			return map[string]any{"value": tools.StringParam(param)}, nil
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	reg := tools.NewRegistry()
	err := reg.Register(&staticProvider{
		name: "Echo",
		list: []*tools.Descriptor{echoTool("echo"), echoTool("echo2")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"echo", "echo2"}, reg.Names())

	// duplicate across providers is rejected without partial registration
	err = reg.Register(&staticProvider{
		name: "Echo2",
		list: []*tools.Descriptor{echoTool("echo3"), echoTool("echo")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrDuplicateTool)
	assert.Equal(t, []string{"echo", "echo2"}, reg.Names())
}

func TestRegistry_Resolve(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, reg.RegisterTools(echoTool("echo")))

	d, err := reg.Resolve("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", d.Name)

	_, err = reg.Resolve("missing")
	assert.ErrorIs(t, err, tools.ErrUnknownTool)
}

func TestRegistry_Catalog(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, reg.RegisterTools(echoTool("echo")))

	exp := `<tools><tool><name>echo</name><description>Echoes the given value.</description><param type="string" required="true">Value to echo</param><response>Returns the value. Example: {"value": "x"}</response></tool></tools>`
	assert.Equal(t, exp, reg.Catalog())

	// deterministic for the same registration sequence
	reg2 := tools.NewRegistry()
	require.NoError(t, reg2.RegisterTools(echoTool("echo")))
	assert.Equal(t, reg.Catalog(), reg2.Catalog())
}

func TestRegistry_CatalogParamSchema(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, reg.RegisterTools(
		&tools.Descriptor{
			Name:        "fill_form",
			Description: "Fills a form field.",
			Response:    "Confirmation.",
			Param: &tools.ParamInfo{
				Required: true,
				Type:     tools.ParamObject,
				Schema: map[string]string{
					"value":    "string",
					"selector": "string",
				},
			},
			Func: func(_ context.Context, _ any) (any, error) { return "ok", nil },
		},
		&tools.Descriptor{
			Name:        "list_tags",
			Description: "Lists tags.",
			Response:    "Confirmation.",
			Param: &tools.ParamInfo{
				Required: true,
				Type:     tools.ParamArray,
				ItemType: tools.ParamString,
			},
			Func: func(_ context.Context, _ any) (any, error) { return "ok", nil },
		},
		&tools.Descriptor{
			Name:        "no_param",
			Description: "Takes nothing.",
			Response:    "Confirmation.",
			Func:        func(_ context.Context, _ any) (any, error) { return "ok", nil },
		},
	))

	catalog := reg.Catalog()

	// object fields render in sorted order so the model sees the shape
	assert.Contains(t, catalog,
		`<param type="object" required="true"><field name="selector">string</field><field name="value">string</field></param>`)
	assert.Contains(t, catalog,
		`<param type="array" required="true"><items type="string"/></param>`)
	assert.Contains(t, catalog,
		`<tool><name>no_param</name><description>Takes nothing.</description><response>Confirmation.</response></tool>`)
}

func TestRegistry_Dispatch(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, reg.RegisterTools(echoTool("echo")))

	res, err := reg.Dispatch(context.Background(), "echo", "hello")
	require.NoError(t, err)
	assert.Equal(t, `{"value":"hello"}`, res)

	_, err = reg.Dispatch(context.Background(), "missing", "hello")
	assert.ErrorIs(t, err, tools.ErrUnknownTool)

	// missing required param
	_, err = reg.Dispatch(context.Background(), "echo", nil)
	assert.ErrorIs(t, err, tools.ErrInvalidParam)
}

func TestRegistry_DispatchExecutionError(t *testing.T) {
	reg := tools.NewRegistry()
	require.NoError(t, reg.RegisterTools(&tools.Descriptor{
		Name:        "fail",
		Description: "Always fails.",
		Func: func(_ context.Context, _ any) (any, error) {
			return nil, assert.AnError
		},
	}))

	_, err := reg.Dispatch(context.Background(), "fail", nil)
	assert.ErrorIs(t, err, tools.ErrToolExecution)
}

func TestCoerceParam(t *testing.T) {
	numInfo := &tools.ParamInfo{Required: true, Type: tools.ParamNumber}
	v, err := tools.CoerceParam(numInfo, "42")
	require.NoError(t, err)
	assert.Equal(t, float64(42), v)

	_, err = tools.CoerceParam(numInfo, "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, tools.ErrInvalidParam)
	assert.Contains(t, err.Error(), "number")

	strInfo := &tools.ParamInfo{Required: true, Type: tools.ParamString}
	v, err = tools.CoerceParam(strInfo, float64(90210))
	require.NoError(t, err)
	assert.Equal(t, "90210", v)

	objInfo := &tools.ParamInfo{Required: true, Type: tools.ParamObject}
	v, err = tools.CoerceParam(objInfo, `{"location":"Springfield, IL"}`)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"location": "Springfield, IL"}, v)

	_, err = tools.CoerceParam(objInfo, "not an object")
	assert.ErrorIs(t, err, tools.ErrInvalidParam)

	arrInfo := &tools.ParamInfo{Required: true, Type: tools.ParamArray, ItemType: tools.ParamString}
	v, err = tools.CoerceParam(arrInfo, `["python","web"]`)
	require.NoError(t, err)
	assert.Equal(t, []any{"python", "web"}, v)

	// single scalar wraps into a one-element array
	v, err = tools.CoerceParam(arrInfo, "python")
	require.NoError(t, err)
	assert.Equal(t, []any{"python"}, v)

	// optional param may be absent
	optInfo := &tools.ParamInfo{Required: false, Type: tools.ParamString}
	v, err = tools.CoerceParam(optInfo, nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	// no declared param drops any supplied value
	v, err = tools.CoerceParam(nil, "ignored")
	require.NoError(t, err)
	assert.Nil(t, v)
}
