package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Tab wraps a Rod page. It implements domain.Page.
type Tab struct {
	page *rod.Page
}

// Has reports whether selector matches right now.
func (t *Tab) Has(ctx context.Context, selector string) (bool, error) {
	has, _, err := t.page.Context(ctx).Has(selector)
	if err != nil {
		return false, fmt.Errorf("browser: query %s: %w", selector, err)
	}
	return has, nil
}

// Click waits for selector and clicks it with the left mouse button.
func (t *Tab) Click(ctx context.Context, selector string) error {
	el, err := t.page.Context(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("browser: find %s: %w", selector, err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("browser: click %s: %w", selector, err)
	}
	return nil
}

// WaitFor blocks until selector matches or ctx is done.
func (t *Tab) WaitFor(ctx context.Context, selector string) error {
	if _, err := t.page.Context(ctx).Element(selector); err != nil {
		return fmt.Errorf("browser: wait %s: %w", selector, err)
	}
	return nil
}

// HTML returns the outer HTML of the first element matching selector.
func (t *Tab) HTML(ctx context.Context, selector string) (string, error) {
	el, err := t.page.Context(ctx).Element(selector)
	if err != nil {
		return "", fmt.Errorf("browser: find %s: %w", selector, err)
	}
	html, err := el.HTML()
	if err != nil {
		return "", fmt.Errorf("browser: html %s: %w", selector, err)
	}
	return html, nil
}

// Content serialises the complete rendered DOM.
func (t *Tab) Content(ctx context.Context) (string, error) {
	html, err := t.page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("browser: get DOM: %w", err)
	}
	return html, nil
}

// Close closes the tab.
func (t *Tab) Close() error {
	if t.page != nil {
		return t.page.Close()
	}
	return nil
}
