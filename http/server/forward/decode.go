package forward

import (
	"reflect"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
)

const (
	codeInvalidJSONBody    = "invalid_json_body"
	codeInvalidQueryParams = "invalid_query_params"
	codeInvalidHeaders     = "invalid_headers"
	codeInvalidHTTPMethod  = "invalid_http_method"
)

// decodeBody decodes a JSON request body into req regardless of the declared
// content type. With lenient set a malformed body leaves req untouched.
func decodeBody[I any](c *fiber.Ctx, req I, lenient bool) error {
	body := c.Body()
	if len(body) == 0 {
		return nil
	}

	if !lenient {
		if err := c.App().Config().JSONDecoder(body, req); err != nil {
			return errx.Wrap(
				err,
				errx.WithType(errx.T_Validation),
				errx.WithCode(codeInvalidJSONBody),
			)
		}
		return nil
	}

	tmp, err := newRequest[I]()
	if err != nil {
		return errx.Wrap(err)
	}
	if c.App().Config().JSONDecoder(body, tmp) == nil {
		reflect.ValueOf(req).Elem().Set(reflect.ValueOf(tmp).Elem())
	}
	return nil
}

// decodeQuery decodes the query params into the given request struct.
func decodeQuery[I any](c *fiber.Ctx, req I) error {
	if len(c.Queries()) == 0 {
		return nil
	}

	if err := c.QueryParser(req); err != nil {
		return errx.Wrap(
			err,
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidQueryParams),
		)
	}

	return nil
}

// decodeHeaders fills fields tagged with `reqHeader`.
func decodeHeaders[I any](c *fiber.Ctx, req I) error {
	if err := c.ReqHeaderParser(req); err != nil {
		return errx.Wrap(
			err,
			errx.WithType(errx.T_Validation),
			errx.WithCode(codeInvalidHeaders),
		)
	}
	return nil
}
