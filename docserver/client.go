// Package docserver talks to an ONLYOFFICE Document Server: it drives the
// ConvertService and downloads files the server produces.
package docserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/avast/retry-go/v4"
	"github.com/code19m/errx"
	"github.com/samber/lo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/logger"
	"github.com/rise-and-shine/docbridge/token"
)

const rawBodyLimit = 400

var errNotReady = errors.New("conversion not ready")

// Client is a Document Server client. A Client built from a config without
// URL reports Configured() == false and fails every call.
type Client struct {
	cfg      Config
	base     *url.URL
	endpoint string
	signer   *token.HS256Signer
	http     *http.Client
	log      logger.Logger
}

// New creates a new Client.
func New(cfg Config) (*Client, error) {
	c := &Client{
		cfg: cfg,
		http: &http.Client{
			Timeout:   cfg.RequestTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		log: logger.Named("docserver"),
	}

	if cfg.URL != "" {
		// relative result URLs resolve against the URL as configured
		base, err := url.Parse(cfg.URL)
		if err != nil || base.Host == "" {
			return nil, errx.New("invalid document server url",
				errx.WithCode(CodeNotConfigured),
				errx.WithDetails(errx.D{"url": cfg.URL}),
			)
		}
		c.base = base
		c.endpoint = strings.TrimRight(cfg.URL, "/") + "/" + strings.TrimLeft(cfg.ConvertPath, "/")
	}

	if cfg.JWTSecret != "" {
		signer, err := token.NewHS256Signer(cfg.JWTSecret)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		c.signer = signer
	}

	return c, nil
}

// Configured reports whether a Document Server URL is set.
func (c *Client) Configured() bool {
	return c.base != nil
}

// Signer returns the JWT signer, or nil when no secret is configured.
func (c *Client) Signer() *token.HS256Signer {
	return c.signer
}

// Convert submits req to the ConvertService and polls until a result URL
// is available. When the server reports an input error (-7) the source is
// fetched through source and uploaded as multipart instead.
func (c *Client) Convert(ctx context.Context, req ConvertRequest, source SourceFunc) (*ConvertResult, error) {
	if !c.Configured() {
		return nil, errNotConfigured()
	}

	st := &pollState{lastKey: "", method: "json"}
	err := c.poll(ctx, req.payload(), st, true)
	if err != nil {
		return nil, err
	}

	result := &ConvertResult{Key: lo.CoalesceOrEmpty(st.lastKey, req.Key)}

	if st.last != nil && st.last.Error == ErrInput {
		c.log.WithContext(ctx).With("key", req.Key).Warn("document server could not fetch the source, uploading it")
		result.Uploaded = true
		if err = c.upload(ctx, req, source, st); err != nil {
			return nil, err
		}
	}

	if st.last == nil || st.last.FileURL == "" {
		return nil, errx.New("conversion finished without a result url",
			errx.WithCode(CodeNoFileURL),
			errx.WithDetails(errx.D{"raw": truncate(st.raw, rawBodyLimit), "method": st.method}),
		)
	}

	result.FileURL = c.normalizeURL(st.last.FileURL)
	return result, nil
}

type pollState struct {
	lastKey string
	last    *ConvertResponse
	raw     []byte
	method  string
}

// poll posts first, then {async, key} while the server hands back a key,
// until a URL or endConvert shows up or the attempts run out.
func (c *Client) poll(ctx context.Context, first map[string]any, st *pollState, allowInputError bool) error {
	attempt := 0
	err := retry.Do(
		func() error {
			payload := first
			if attempt > 0 && st.lastKey != "" {
				payload = map[string]any{"async": true, "key": st.lastKey}
			}
			attempt++

			resp, raw, err := c.postJSON(ctx, payload, st.method)
			if err != nil {
				return err
			}
			st.raw = raw
			st.last = resp

			c.log.WithContext(ctx).With("attempt", attempt, "percent", resp.Percent, "error", resp.Error).
				Debug("conversion poll")

			switch {
			case resp.Error == ErrInput && allowInputError:
				return nil
			case resp.Error != 0:
				return convertFailed(resp.Error, raw, st.method)
			case resp.FileURL != "" || resp.EndConvert:
				return nil
			}

			if resp.Key != "" {
				st.lastKey = resp.Key
			}
			return errNotReady
		},
		retry.Context(ctx),
		retry.Attempts(c.cfg.PollAttempts),
		retry.Delay(c.cfg.PollDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, errNotReady)
		}),
	)
	if errors.Is(err, errNotReady) {
		return nil
	}
	if err != nil && ctx.Err() != nil {
		return errx.Wrap(err, errx.WithCode(CodeConvertFailed))
	}
	return err
}

// upload sends the source document as multipart/form-data and polls the
// resulting conversion by key.
func (c *Client) upload(ctx context.Context, req ConvertRequest, source SourceFunc, st *pollState) error {
	data, err := source(ctx)
	if err != nil {
		return errx.Wrap(err, errx.WithCode(CodeDownloadSrcFailed), errx.WithType(errx.T_Internal))
	}

	st.method = "formdata_fallback"
	safeTitle := SanitizeTitle(req.Title)
	title := ReplaceDocExt(safeTitle, "."+req.OutputType)
	fileName := lo.CoalesceOrEmpty(replaceExt(safeTitle, "."+req.OutputType, "."+req.FileType), "document."+req.FileType)

	fields := map[string]any{
		"async":      true,
		"outputtype": req.OutputType,
		"filetype":   req.FileType,
		"title":      title,
		"key":        req.Key,
	}

	var jwt string
	if c.signer != nil {
		if jwt, err = c.signer.Sign(fields); err != nil {
			return errx.Wrap(err)
		}
	}

	body, contentType, err := multipartBody(fileName, data, fields, jwt)
	if err != nil {
		return errx.Wrap(err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return errx.Wrap(err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	if jwt != "" {
		httpReq.Header.Set(c.cfg.JWTHeader, "Bearer "+jwt)
	}

	resp, raw, err := c.do(httpReq, st.method)
	if err != nil {
		return err
	}
	st.raw = raw
	st.last = resp
	if resp.Error != 0 {
		return convertFailed(resp.Error, raw, st.method)
	}
	if resp.FileURL != "" || resp.EndConvert {
		return nil
	}

	st.lastKey = lo.CoalesceOrEmpty(resp.Key, st.lastKey, req.Key)
	st.method = "formdata_poll"
	return c.poll(ctx, map[string]any{"async": true, "key": st.lastKey}, st, false)
}

func (c *Client) postJSON(ctx context.Context, payload map[string]any, method string) (*ConvertResponse, []byte, error) {
	body := payload
	if c.signer != nil {
		jwt, err := c.signer.Sign(payload)
		if err != nil {
			return nil, nil, errx.Wrap(err)
		}
		body = lo.Assign(payload, map[string]any{"token": jwt})
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, nil, errx.Wrap(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, errx.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return c.do(req, method)
}

// do sends a ConvertService request. An unparseable 2xx body yields an empty
// response so polling continues.
func (c *Client) do(req *http.Request, method string) (*ConvertResponse, []byte, error) {
	req.Header.Set("User-Agent", meta.ClientUserAgent())
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, errx.Wrap(err,
			errx.WithCode(CodeConvertFailed),
			errx.WithDetails(errx.D{"endpoint": c.endpoint, "method": method}),
		)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errx.Wrap(err, errx.WithCode(CodeConvertFailed))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, raw, errx.New(fmt.Sprintf("convert service returned %d", resp.StatusCode),
			errx.WithCode(CodeConvertFailed),
			errx.WithDetails(errx.D{
				"status":   resp.StatusCode,
				"body":     truncate(raw, rawBodyLimit),
				"endpoint": c.endpoint,
				"method":   method,
			}),
		)
	}

	parsed, ok := parseResponse(raw)
	if !ok {
		parsed = &ConvertResponse{}
	}
	return parsed, raw, nil
}

// normalizeURL places a result URL on the Document Server origin.
func (c *Client) normalizeURL(raw string) string {
	if alt := c.alternateURL(raw); alt != "" {
		return alt
	}
	return raw
}

func convertFailed(code int, raw []byte, method string) error {
	return errx.New(fmt.Sprintf("conversion failed: %s", ErrorName(code)),
		errx.WithCode(CodeConvertFailed),
		errx.WithDetails(errx.D{
			"conv_error": code,
			"raw":        truncate(raw, rawBodyLimit),
			"method":     method,
		}),
	)
}

func errNotConfigured() error {
	return errx.New("document server url is not configured", errx.WithCode(CodeNotConfigured))
}
