package webagent

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/mfinkle/llm-agents/tools"
)

// PageProvider publishes browser actions as tools over one Page.
type PageProvider struct {
	page Page
}

var _ tools.Provider = (*PageProvider)(nil)

// NewPageProvider returns a provider over the given page.
func NewPageProvider(page Page) *PageProvider {
	return &PageProvider{page: page}
}

// Name returns the provider name.
func (p *PageProvider) Name() string {
	return "PageToolProvider"
}

// GetTools describes the page tools. Selectors must be valid CSS
// selectors; ID, role and aria-label attributes make the most robust
// ones.
func (p *PageProvider) GetTools() []*tools.Descriptor {
	return []*tools.Descriptor{
		{
			Name:        "navigate",
			Description: "Navigate the browser to a new page.",
			Response:    "Confirmation that the page was loaded.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "The URL to navigate to.",
			},
			Func: p.navigate,
		},
		{
			Name:        "click",
			Description: "Click on an element like a button or link.",
			Response:    "Confirmation that the element was clicked.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "A valid CSS selector matching a single element.",
			},
			Func: p.click,
		},
		{
			Name:        "type",
			Description: "Enter text into an input or textarea element.",
			Response:    "Confirmation that the text was entered.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamObject,
				Description: `An object with "selector" and "value" fields`,
				Schema: map[string]string{
					"selector": "A valid CSS selector matching a single element",
					"value":    "The text to enter into the element",
				},
			},
			Func: p.typeText,
		},
		{
			Name:        "get_value",
			Description: "Get the value of an input, textarea, or select element.",
			Response:    "The current value of the element.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "A valid CSS selector matching a single element.",
			},
			Func: p.getValue,
		},
		{
			Name:        "get_text",
			Description: "Get the inner text of an element.",
			Response:    "The text content of the element.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "A valid CSS selector matching a single element.",
			},
			Func: p.getText,
		},
		{
			Name:        "get_title",
			Description: "Get the title of the HTML document.",
			Response:    "The document title.",
			Func:        p.getTitle,
		},
		{
			Name:        "get_url",
			Description: "Get the URL of the current page.",
			Response:    "The current URL.",
			Func:        p.getURL,
		},
		{
			Name:        "wait_for_element",
			Description: "Wait until an element appears on the page.",
			Response:    "Confirmation that the element appeared.",
			Param: &tools.ParamInfo{
				Required:    true,
				Type:        tools.ParamString,
				Description: "A valid CSS selector to wait for.",
			},
			Func: p.waitForElement,
		},
		{
			Name:        "get_content",
			Description: "Get the full HTML content of the current page.",
			Response:    "The page HTML.",
			Func:        p.getContent,
		},
	}
}

// selectorParam extracts the string argument of a page tool. Handlers
// stay safe even when a descriptor is invoked outside the registry's
// coercion path.
func selectorParam(param any) (string, error) {
	s, ok := param.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", errors.WithMessage(tools.ErrInvalidParam, "a non-empty string parameter is required")
	}
	return strings.TrimSpace(s), nil
}

func (p *PageProvider) navigate(ctx context.Context, param any) (any, error) {
	url, err := selectorParam(param)
	if err != nil {
		return nil, err
	}
	if err := p.page.Navigate(ctx, url); err != nil {
		return nil, err
	}
	return map[string]any{"action": "navigate", "result": "Navigated to " + url}, nil
}

func (p *PageProvider) click(ctx context.Context, param any) (any, error) {
	selector, err := selectorParam(param)
	if err != nil {
		return nil, err
	}
	if err := p.page.Click(ctx, selector); err != nil {
		return nil, err
	}
	return map[string]any{"action": "click", "result": "Clicked " + selector}, nil
}

func (p *PageProvider) typeText(ctx context.Context, param any) (any, error) {
	obj, ok := param.(map[string]any)
	if !ok {
		return nil, errors.WithMessage(tools.ErrInvalidParam, "selector and value are required")
	}
	selector, _ := obj["selector"].(string)
	value, _ := obj["value"].(string)
	if selector == "" {
		return nil, errors.WithMessage(tools.ErrInvalidParam, "selector is required")
	}
	if err := p.page.Type(ctx, strings.TrimSpace(selector), strings.TrimSpace(value)); err != nil {
		return nil, err
	}
	return map[string]any{"action": "type", "result": "Entered text into " + selector}, nil
}

func (p *PageProvider) getValue(ctx context.Context, param any) (any, error) {
	selector, err := selectorParam(param)
	if err != nil {
		return nil, err
	}
	value, err := p.page.GetValue(ctx, selector)
	if err != nil {
		return nil, err
	}
	return map[string]any{"action": "get_value", "result": value}, nil
}

func (p *PageProvider) getText(ctx context.Context, param any) (any, error) {
	selector, err := selectorParam(param)
	if err != nil {
		return nil, err
	}
	text, err := p.page.GetText(ctx, selector)
	if err != nil {
		return nil, err
	}
	return map[string]any{"action": "get_text", "result": text}, nil
}

func (p *PageProvider) getTitle(ctx context.Context, _ any) (any, error) {
	title, err := p.page.GetTitle(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"action": "get_title", "result": title}, nil
}

func (p *PageProvider) getURL(ctx context.Context, _ any) (any, error) {
	url, err := p.page.GetURL(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"action": "get_url", "result": url}, nil
}

func (p *PageProvider) waitForElement(ctx context.Context, param any) (any, error) {
	selector, err := selectorParam(param)
	if err != nil {
		return nil, err
	}
	if err := p.page.WaitForSelector(ctx, selector, DefaultWaitTimeout); err != nil {
		return nil, err
	}
	return map[string]any{"action": "wait_for_element", "result": selector + " appeared"}, nil
}

func (p *PageProvider) getContent(ctx context.Context, _ any) (any, error) {
	return p.page.GetContent(ctx)
}
