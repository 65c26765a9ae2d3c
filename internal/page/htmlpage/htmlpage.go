// Package htmlpage implements page.Page over plain HTTP and static markup.
// It is the fetch strategy used by the availability monitor and by tests;
// flows that need a scripted browser bind the same interface elsewhere.
package htmlpage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/example/slot-sniper/internal/page"
)

// Booking sites gate automation on obvious default agents; present a normal
// browser string. This is configuration, not an evasion scheme.
const defaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

type Page struct {
	client  *resty.Client
	jar     http.CookieJar
	log     *slog.Logger
	url     *url.URL
	doc     *goquery.Document
	pending url.Values
}

type Option func(*Page)

func WithTimeout(d time.Duration) Option {
	return func(p *Page) { p.client.SetTimeout(d) }
}

func WithLogger(log *slog.Logger) Option {
	return func(p *Page) { p.log = log }
}

func WithUserAgent(ua string) Option {
	return func(p *Page) { p.client.SetHeader("User-Agent", ua) }
}

func New(opts ...Option) *Page {
	jar, _ := cookiejar.New(nil)
	client := resty.New().
		SetCookieJar(jar).
		SetTimeout(30 * time.Second).
		SetHeader("User-Agent", defaultUserAgent)

	p := &Page{
		client:  client,
		jar:     jar,
		log:     slog.Default(),
		pending: url.Values{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Page) Navigate(ctx context.Context, rawURL string) error {
	res, err := p.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return fmt.Errorf("get %s: %w", rawURL, err)
	}
	return p.load(res)
}

func (p *Page) Reload(ctx context.Context) error {
	if p.url == nil {
		return fmt.Errorf("reload before first navigation")
	}
	return p.Navigate(ctx, p.url.String())
}

func (p *Page) load(res *resty.Response) error {
	if res.StatusCode() >= 400 {
		return fmt.Errorf("%s: status %d", res.Request.URL, res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return fmt.Errorf("parse %s: %w", res.Request.URL, err)
	}

	final := res.RawResponse.Request.URL
	p.url = final
	p.doc = doc
	p.pending = url.Values{}
	p.log.Debug("loaded page", "url", final.String())
	return nil
}

func (p *Page) Find(ctx context.Context, selector string) (page.Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("find before first navigation")
	}
	sel := p.doc.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%q: %w", selector, page.ErrNoElement)
	}
	return &element{page: p, sel: sel.First()}, nil
}

func (p *Page) FindAll(ctx context.Context, selector string) ([]page.Element, error) {
	if p.doc == nil {
		return nil, fmt.Errorf("find before first navigation")
	}
	var out []page.Element
	p.doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
		out = append(out, &element{page: p, sel: s})
	})
	return out, nil
}

func (p *Page) IsPresent(ctx context.Context, selector string) (bool, error) {
	if p.doc == nil {
		return false, nil
	}
	return p.doc.Find(selector).Length() > 0, nil
}

// Fill stages a value for the named input; the value is sent when a control
// inside the same form is clicked.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	el, err := p.Find(ctx, selector)
	if err != nil {
		return err
	}
	name, ok, err := el.Attr(ctx, "name")
	if err != nil {
		return err
	}
	if !ok || name == "" {
		return fmt.Errorf("fill %q: input has no name: %w", selector, page.ErrNotInteractable)
	}
	p.pending.Set(name, value)
	return nil
}

// Cookies exports the jar's cookies for the current site, for session
// persistence between runs.
func (p *Page) Cookies(site *url.URL) []*http.Cookie {
	return p.jar.Cookies(site)
}

func (p *Page) SetCookies(site *url.URL, cookies []*http.Cookie) {
	p.jar.SetCookies(site, cookies)
}

type element struct {
	page *Page
	sel  *goquery.Selection
}

func (e *element) Text(ctx context.Context) (string, error) {
	return strings.TrimSpace(e.sel.Text()), nil
}

func (e *element) Attr(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	return v, ok, nil
}

func (e *element) Find(ctx context.Context, selector string) (page.Element, error) {
	sel := e.sel.Find(selector)
	if sel.Length() == 0 {
		return nil, fmt.Errorf("%q: %w", selector, page.ErrNoElement)
	}
	return &element{page: e.page, sel: sel.First()}, nil
}

// Click follows links and submits forms. Anything else has no meaning on a
// static document and returns ErrNotInteractable.
func (e *element) Click(ctx context.Context) error {
	if href, ok := e.sel.Attr("href"); ok && href != "" {
		target, err := e.page.url.Parse(href)
		if err != nil {
			return fmt.Errorf("resolve href %q: %w", href, err)
		}
		return e.page.Navigate(ctx, target.String())
	}

	form := e.sel.Closest("form")
	if form.Length() > 0 {
		return e.page.submit(ctx, form, e.sel)
	}
	return page.ErrNotInteractable
}

func (p *Page) submit(ctx context.Context, form, clicked *goquery.Selection) error {
	values := url.Values{}
	form.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		name, ok := s.Attr("name")
		if !ok || name == "" {
			return
		}
		typ, _ := s.Attr("type")
		if typ == "submit" || typ == "button" {
			return
		}
		v, _ := s.Attr("value")
		values.Set(name, v)
	})
	// The clicked control contributes its own name/value pair.
	if name, ok := clicked.Attr("name"); ok && name != "" {
		v, _ := clicked.Attr("value")
		values.Set(name, v)
	}
	for name, vs := range p.pending {
		values[name] = vs
	}

	action := p.url.String()
	if a, ok := form.Attr("action"); ok && a != "" {
		target, err := p.url.Parse(a)
		if err != nil {
			return fmt.Errorf("resolve form action %q: %w", a, err)
		}
		action = target.String()
	}

	method, _ := form.Attr("method")
	req := p.client.R().SetContext(ctx)

	var res *resty.Response
	var err error
	if strings.EqualFold(method, "post") {
		res, err = req.SetFormDataFromValues(values).Post(action)
	} else {
		res, err = req.SetQueryParamsFromValues(values).Get(action)
	}
	if err != nil {
		return fmt.Errorf("submit %s: %w", action, err)
	}
	return p.load(res)
}
