// Package pagetest provides a scripted page.Page for tests: selectors map to
// canned elements, and every interaction is recorded.
package pagetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/example/slot-sniper/internal/page"
)

type Fake struct {
	mu sync.Mutex

	elements map[string][]*Element
	navErr   error

	// Recorded interactions, in order.
	Navigations []string
	Reloads     int
	Fills       map[string]string
	Clicks      []string
}

func New() *Fake {
	return &Fake{
		elements: map[string][]*Element{},
		Fills:    map[string]string{},
	}
}

// Stub registers elements returned for a selector.
func (f *Fake) Stub(selector string, els ...*Element) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, el := range els {
		el.fake = f
		el.selector = selector
	}
	f.elements[selector] = els
	return f
}

// Clear removes a stub, simulating an element that disappeared.
func (f *Fake) Clear(selector string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.elements, selector)
	return f
}

// FailNavigation makes Navigate and Reload return err.
func (f *Fake) FailNavigation(err error) *Fake {
	f.navErr = err
	return f
}

func (f *Fake) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Navigations = append(f.Navigations, url)
	return f.navErr
}

func (f *Fake) Reload(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Reloads++
	return f.navErr
}

func (f *Fake) Find(ctx context.Context, selector string) (page.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	els := f.elements[selector]
	if len(els) == 0 {
		return nil, fmt.Errorf("%q: %w", selector, page.ErrNoElement)
	}
	return els[0], nil
}

func (f *Fake) FindAll(ctx context.Context, selector string) ([]page.Element, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []page.Element
	for _, el := range f.elements[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (f *Fake) IsPresent(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.elements[selector]) > 0, nil
}

func (f *Fake) Fill(ctx context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.elements[selector]) == 0 {
		return fmt.Errorf("%q: %w", selector, page.ErrNoElement)
	}
	f.Fills[selector] = value
	return nil
}

type Element struct {
	fake     *Fake
	selector string

	TextVal  string
	Attrs    map[string]string
	ClickErr error
	OnClick  func()
	Children map[string]*Element
}

func (e *Element) Text(ctx context.Context) (string, error) {
	return e.TextVal, nil
}

func (e *Element) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *Element) Click(ctx context.Context) error {
	if e.fake != nil {
		e.fake.mu.Lock()
		e.fake.Clicks = append(e.fake.Clicks, e.selector)
		e.fake.mu.Unlock()
	}
	if e.OnClick != nil {
		e.OnClick()
	}
	return e.ClickErr
}

func (e *Element) Find(ctx context.Context, selector string) (page.Element, error) {
	child, ok := e.Children[selector]
	if !ok {
		return nil, fmt.Errorf("%q: %w", selector, page.ErrNoElement)
	}
	return child, nil
}
