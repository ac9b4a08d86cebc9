// Package providers contains the built-in tool providers: utilities,
// appointment booking, learning programs, and a store locator.
// Provider data is seeded at construction.
package providers

import (
	"context"
	"time"

	"github.com/mfinkle/llm-agents/tools"
)

// UtilityProvider offers basic utility tools: weather, zipcode lookup,
// arithmetic and the current date/time.
type UtilityProvider struct {
	now func() time.Time
}

var _ tools.Provider = (*UtilityProvider)(nil)

// NewUtilityProvider returns a utility tool provider.
func NewUtilityProvider() *UtilityProvider {
	return &UtilityProvider{
		now: time.Now,
	}
}

// Name implements the Provider interface.
func (p *UtilityProvider) Name() string {
	return "UtilityToolProvider"
}

// GetTools implements the Provider interface.
func (p *UtilityProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "get_weather",
			Description: `Gets the weather for the given zipcode. Parameter should be a string containing the zipcode. Example: { "type": "call_tool", "tool": "get_weather", "param": "90210" }`,
			Response:    `Returns the temperature and conditions. Example: {"temperature": "75 F", "conditions": "Sunny"}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Zipcode as a string (e.g., "90210")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getWeather(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "get_zipcode",
			Description: `Gets the zipcode for the given location. Parameter should be a string containing the city name and state abbreviation. Example: { "type": "call_tool", "tool": "get_zipcode", "param": "Beverly Hills, CA" }`,
			Response:    `Returns the zipcode. Example: {"zipcode": "90210"}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Location name as a string (e.g., "Beverly Hills, CA")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.getZipcode(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "calculate",
			Description: `Calculates the given mathematical expression. Parameter should be a string containing a valid mathematical expression. Example: { "type": "call_tool", "tool": "calculate", "param": "2 + 2" }`,
			Response:    `Returns the result of the calculation. Example: {"result": 4, "status": "success"}`,
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: `Mathematical expression as a string (e.g., "2 + 2")`,
			},
			Func: func(_ context.Context, param any) (any, error) {
				return p.calculate(tools.StringParam(param)), nil
			},
		},
		{
			Name:        "get_datetime",
			Description: `Gets the current date and time. No parameter is needed for this tool. Example: { "type": "call_tool", "tool": "get_datetime" }`,
			Response:    `Returns the current date and time. Example: {"date": "2022-01-01", "time": "12:00 PM"}`,
			Param: &tools.ParamInfo{
				Required:    false,
				Description: "No parameter needed",
			},
			Func: func(_ context.Context, _ any) (any, error) {
				return p.getDatetime(), nil
			},
		},
	}
}

func (p *UtilityProvider) getWeather(zipcode string) map[string]any {
	return map[string]any{
		"temperature": "75 F",
		"conditions":  "Sunny",
	}
}

func (p *UtilityProvider) getZipcode(location string) map[string]any {
	return map[string]any{
		"zipcode": "90210",
	}
}

func (p *UtilityProvider) getDatetime() map[string]any {
	now := p.now()
	return map[string]any{
		"date": now.Format("2006-01-02"),
		"time": now.Format("03:04 PM"),
	}
}

// calculate evaluates the expression and reports a status instead of
// failing the tool call, so the model can recover.
func (p *UtilityProvider) calculate(expression string) map[string]any {
	result, err := evalExpression(expression)
	if err != nil {
		return map[string]any{"result": nil, "status": "fail"}
	}
	return map[string]any{"result": result, "status": "success"}
}
