package docserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/docbridge/meta"
)

// Download fetches rawURL. When that fails and a Document Server is
// configured, it tries once more with the URL moved onto the server origin.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	data, status, err := c.get(ctx, rawURL)
	if err == nil {
		return data, nil
	}

	if alt := c.alternateURL(rawURL); alt != "" && alt != rawURL {
		c.log.WithContext(ctx).With("url", rawURL, "alt", alt, "status", status).
			Warn("download failed, retrying via document server origin")
		data, status, err = c.get(ctx, alt)
		if err == nil {
			return data, nil
		}
	}

	return nil, errx.Wrap(err,
		errx.WithCode(CodeDownloadFailed),
		errx.WithDetails(errx.D{"status": status, "url": rawURL}),
	)
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, errx.Wrap(err)
	}
	req.Header.Set("User-Agent", meta.ClientUserAgent())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, errx.Wrap(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, errx.New(fmt.Sprintf("download returned %d", resp.StatusCode))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxDownloadSize+1))
	if err != nil {
		return nil, resp.StatusCode, errx.Wrap(err)
	}
	if int64(len(data)) > c.cfg.MaxDownloadSize {
		return nil, resp.StatusCode, errx.New("download exceeds max size",
			errx.WithDetails(errx.D{"max_download_size": c.cfg.MaxDownloadSize}))
	}
	return data, resp.StatusCode, nil
}

// alternateURL resolves rawURL against the Document Server when relative and
// otherwise swaps its scheme and host for the server's.
func (c *Client) alternateURL(rawURL string) string {
	if !c.Configured() {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if !u.IsAbs() {
		return c.base.ResolveReference(u).String()
	}
	u.Scheme = c.base.Scheme
	u.Host = c.base.Host
	return u.String()
}
