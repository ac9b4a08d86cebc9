package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var logger = xlog.NewPackageLogger("github.com/mfinkle/llm-agents", "tools")

// Registry aggregates tool descriptors from providers and dispatches
// calls to them. Catalog order follows registration order.
type Registry struct {
	mu     sync.RWMutex
	byName *orderedmap.OrderedMap[string, *Descriptor]
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: orderedmap.New[string, *Descriptor](),
	}
}

// Register adds all tools from the given providers.
// Registration is atomic per call: on any duplicate name nothing
// from this call is added and an error wrapping ErrDuplicateTool
// is returned.
func (r *Registry) Register(providers ...Provider) error {
	var list []*Descriptor
	for _, p := range providers {
		list = append(list, p.GetTools()...)
	}
	return r.RegisterTools(list...)
}

// RegisterTools adds bare descriptors, with the same atomicity as Register.
func (r *Registry) RegisterTools(list ...*Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := map[string]bool{}
	for _, d := range list {
		if d.Name == "" {
			return errors.New("tool name is required")
		}
		if _, present := r.byName.Get(d.Name); present || seen[d.Name] {
			return errors.WithMessagef(ErrDuplicateTool, "%s", d.Name)
		}
		seen[d.Name] = true
	}
	for _, d := range list {
		r.byName.Set(d.Name, d)
		logger.KV(xlog.DEBUG, "status", "registered", "tool", d.Name)
	}
	return nil
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, r.byName.Len())
	for pair := r.byName.Oldest(); pair != nil; pair = pair.Next() {
		names = append(names, pair.Key)
	}
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byName.Len()
}

// Resolve returns the descriptor for the given name,
// or an error wrapping ErrUnknownTool.
func (r *Registry) Resolve(name string) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byName.Get(name)
	if !ok {
		return nil, errors.WithMessagef(ErrUnknownTool, "%s", name)
	}
	return d, nil
}

// Descriptors returns all descriptors in registration order.
func (r *Registry) Descriptors() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]*Descriptor, 0, r.byName.Len())
	for pair := r.byName.Oldest(); pair != nil; pair = pair.Next() {
		list = append(list, pair.Value)
	}
	return list
}

// Catalog renders the machine-readable tool listing embedded into
// the agent preamble. The output is deterministic for the same
// registration sequence.
func (r *Registry) Catalog() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var lines []string
	for pair := r.byName.Oldest(); pair != nil; pair = pair.Next() {
		d := pair.Value
		lines = append(lines, fmt.Sprintf("<tool><name>%s</name><description>%s</description>%s<response>%s</response></tool>",
			d.Name, d.Description, paramCatalog(d.Param), d.Response))
	}
	return "<tools>" + strings.Join(lines, "\n") + "</tools>"
}

// paramCatalog renders the parameter contract of a tool. Object
// parameters list their fields in sorted order so the catalog stays
// deterministic.
func paramCatalog(info *ParamInfo) string {
	if info == nil || info.Type == "" {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<param type="%s" required="%t">`, info.Type, info.Required)
	if info.Description != "" {
		sb.WriteString(info.Description)
	}
	if info.Type == ParamArray && info.ItemType != "" {
		fmt.Fprintf(&sb, `<items type="%s"/>`, info.ItemType)
	}
	if info.Type == ParamObject && len(info.Schema) > 0 {
		fields := make([]string, 0, len(info.Schema))
		for field := range info.Schema {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			fmt.Fprintf(&sb, `<field name="%s">%s</field>`, field, info.Schema[field])
		}
	}
	sb.WriteString("</param>")
	return sb.String()
}

// Dispatch validates and coerces the parameter, invokes the tool,
// and returns the JSON-serialized result.
// Validation failures wrap ErrInvalidParam and the tool is not invoked.
// Tool failures wrap ErrToolExecution.
func (r *Registry) Dispatch(ctx context.Context, name string, param any) (string, error) {
	d, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	coerced, err := CoerceParam(d.Param, param)
	if err != nil {
		return "", errors.WithMessagef(err, "tool %s", name)
	}

	result, err := d.Func(ctx, coerced)
	if err != nil {
		logger.ContextKV(ctx, xlog.WARNING,
			"status", "tool_call_failed",
			"tool", name,
			"err", err.Error(),
		)
		return "", errors.WithSecondaryError(errors.WithMessagef(ErrToolExecution, "%s", name), err)
	}

	if s, ok := result.(string); ok {
		return s, nil
	}
	js, err := json.Marshal(result)
	if err != nil {
		return "", errors.WithMessagef(ErrToolExecution, "%s: result not serializable", name)
	}
	return string(js), nil
}

// CoerceParam validates a raw parameter value against the declared
// ParamInfo and returns the value the tool function should receive.
// Nil info means the tool takes no parameter and any supplied value
// is dropped.
func CoerceParam(info *ParamInfo, param any) (any, error) {
	if info == nil || info.Type == "" {
		return nil, nil
	}
	if param == nil {
		if info.Required {
			return nil, errors.WithMessagef(ErrInvalidParam, "required parameter of type %s is missing", info.Type)
		}
		return nil, nil
	}

	switch info.Type {
	case ParamString:
		return coerceString(param)
	case ParamNumber:
		return coerceNumber(param)
	case ParamObject:
		return coerceObject(param)
	case ParamArray:
		return coerceArray(param)
	default:
		return nil, errors.WithMessagef(ErrInvalidParam, "unsupported parameter type %q", info.Type)
	}
}

func coerceString(param any) (any, error) {
	switch v := param.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, errors.WithMessagef(ErrInvalidParam, "expected string parameter, got %T", param)
	}
}

func coerceNumber(param any) (any, error) {
	switch v := param.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, errors.WithMessagef(ErrInvalidParam, "expected number parameter, got %q", v.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, errors.WithMessagef(ErrInvalidParam, "expected number parameter, got %q", v)
		}
		return f, nil
	default:
		return nil, errors.WithMessagef(ErrInvalidParam, "expected number parameter, got %T", param)
	}
}

func coerceObject(param any) (any, error) {
	switch v := param.(type) {
	case map[string]any:
		return v, nil
	case string:
		var m map[string]any
		if err := json.Unmarshal([]byte(v), &m); err != nil {
			return nil, errors.WithMessagef(ErrInvalidParam, "expected object parameter, got string that is not a JSON object")
		}
		return m, nil
	default:
		return nil, errors.WithMessagef(ErrInvalidParam, "expected object parameter, got %T", param)
	}
}

func coerceArray(param any) (any, error) {
	switch v := param.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if strings.HasPrefix(trimmed, "[") {
			var list []any
			if err := json.Unmarshal([]byte(trimmed), &list); err != nil {
				return nil, errors.WithMessagef(ErrInvalidParam, "expected array parameter, got malformed JSON array")
			}
			return list, nil
		}
		// single scalar, wrap into a one-element array
		return []any{v}, nil
	default:
		return nil, errors.WithMessagef(ErrInvalidParam, "expected array parameter, got %T", param)
	}
}

// StringParam extracts a string from a coerced parameter value.
func StringParam(param any) string {
	s, _ := param.(string)
	return s
}

// StringsParam extracts a string slice from a coerced array parameter.
func StringsParam(param any) []string {
	list, _ := param.([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		out = append(out, fmt.Sprint(v))
	}
	return out
}

// ObjectParam extracts an object from a coerced parameter value.
func ObjectParam(param any) map[string]any {
	m, _ := param.(map[string]any)
	return m
}
