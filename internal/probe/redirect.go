package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/theopenlane/httpsling"
	"golang.org/x/net/html"
)

const (
	// DefaultRedirectTimeout bounds the whole redirect walk
	DefaultRedirectTimeout = 6 * time.Second
	// DefaultMaxRedirects caps the number of hops followed
	DefaultMaxRedirects = 10

	maxTitleRunes = 180
	maxPageBytes  = 1 << 20
)

// RedirectProbe follows a URL to its destination
type RedirectProbe interface {
	Resolve(ctx context.Context, rawURL string) Result[RedirectInfo]
}

// Redirects follows redirect chains over HTTP and reads the landing page title
type Redirects struct {
	httpClient   *http.Client
	maxRedirects int
}

// RedirectOption configures the Redirects probe
type RedirectOption func(*Redirects)

// WithRedirectHTTPClient supplies the base HTTP client; its CheckRedirect is replaced per request
func WithRedirectHTTPClient(client *http.Client) RedirectOption {
	return func(p *Redirects) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// WithMaxRedirects overrides the hop limit
func WithMaxRedirects(limit int) RedirectOption {
	return func(p *Redirects) {
		if limit > 0 {
			p.maxRedirects = limit
		}
	}
}

// NewRedirects returns a redirect probe
func NewRedirects(opts ...RedirectOption) *Redirects {
	p := &Redirects{
		httpClient:   &http.Client{Timeout: DefaultRedirectTimeout},
		maxRedirects: DefaultMaxRedirects,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Resolve GETs rawURL following redirects. The chain holds every URL visited including the final one
func (p *Redirects) Resolve(ctx context.Context, rawURL string) Result[RedirectInfo] {
	fallback := DefaultRedirect(rawURL)
	if rawURL == "" {
		return failed(fallback, ErrNoHost)
	}

	var visited []string

	client := *p.httpClient
	client.CheckRedirect = func(_ *http.Request, via []*http.Request) error {
		if len(via) >= p.maxRedirects {
			return fmt.Errorf("%w: %d", ErrTooManyRedirects, len(via))
		}

		visited = visited[:0]
		for _, r := range via {
			visited = append(visited, r.URL.String())
		}

		return nil
	}

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return failed(fallback, err)
	}

	requester := httpsling.MustNew(
		httpsling.URL(rawURL),
		httpsling.Method(http.MethodGet),
		httpsling.WithHTTPClient(&client),
	)

	page := &cappedBuffer{limit: maxPageBytes}

	resp, _, err := requester.ReceiveTo(ctx, page)
	if err != nil && (resp == nil || !errors.Is(err, io.ErrShortWrite)) {
		return failed(fallback, err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close error is non-critical

	final := resp.Request.URL.String()
	chain := append(visited, final)

	return succeeded(RedirectInfo{
		FinalURL: final,
		Chain:    chain,
		Hops:     len(chain) - 1,
		Title:    pageTitle(strings.NewReader(page.String())),
	})
}

// pageTitle returns the whitespace-collapsed contents of the first <title>, nil when there is none
func pageTitle(r io.Reader) *string {
	z := html.NewTokenizer(r)
	inTitle := false

	var b strings.Builder

	for {
		switch z.Next() {
		case html.ErrorToken:
			if inTitle {
				return collapseTitle(b.String())
			}

			return nil
		case html.StartTagToken:
			if name, _ := z.TagName(); string(name) == "title" {
				inTitle = true
			}
		case html.TextToken:
			if inTitle {
				b.Write(z.Text())
			}
		case html.EndTagToken:
			if name, _ := z.TagName(); inTitle && string(name) == "title" {
				return collapseTitle(b.String())
			}
		}
	}
}

func collapseTitle(raw string) *string {
	title := strings.Join(strings.Fields(raw), " ")
	if runes := []rune(title); len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}

	return &title
}

// cappedBuffer keeps the first limit bytes. Once full it reports io.ErrShortWrite so the
// copy reading the page stops instead of draining the rest of the body
type cappedBuffer struct {
	strings.Builder
	limit int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	room := c.limit - c.Len()
	if room <= 0 {
		return 0, io.ErrShortWrite
	}

	if len(p) > room {
		c.Builder.Write(p[:room])
		return room, io.ErrShortWrite
	}

	c.Builder.Write(p)

	return len(p), nil
}
