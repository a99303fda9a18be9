// Package forward adapts use cases to Fiber handlers.
package forward

import (
	"fmt"
	"reflect"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/mask"
	"github.com/rise-and-shine/docbridge/observability/logger"
	"github.com/rise-and-shine/docbridge/ucdef"
	"github.com/rise-and-shine/docbridge/val"
)

const maxLogAllowedSize = 8 << 10 // 8KB

type options struct {
	lenientBody bool
}

// Option customizes ToUserAction.
type Option func(*options)

// WithLenientBody treats a malformed JSON body as an empty one.
func WithLenientBody() Option {
	return func(o *options) { o.lenientBody = true }
}

// ToUserAction forwards a request to a use case that returns a response.
// The input is decoded from the JSON body, then the query string, then the
// headers tagged with `reqHeader`, and validated before Execute runs.
func ToUserAction[I, O any](uc ucdef.UserAction[I, O], opts ...Option) fiber.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(c *fiber.Ctx) error {
		req, err := newRequest[I]()
		if err != nil {
			return errx.Wrap(err)
		}

		switch c.Method() {
		case fiber.MethodGet:
		case fiber.MethodPost:
			if err = decodeBody(c, req, o.lenientBody); err != nil {
				return errx.Wrap(err)
			}
		default:
			return errx.New(
				"unsupported http method: allowed only GET and POST",
				errx.WithType(errx.T_Validation),
				errx.WithCode(codeInvalidHTTPMethod),
				errx.WithDetails(errx.D{
					"received_http_method": c.Method(),
				}),
			)
		}

		if err = decodeQuery(c, req); err != nil {
			return errx.Wrap(err)
		}
		if err = decodeHeaders(c, req); err != nil {
			return errx.Wrap(err)
		}

		log := logger.
			Named("http.handler").
			WithContext(c.UserContext()).
			With("operation_id", uc.OperationID())

		if len(c.Body()) <= maxLogAllowedSize {
			log = log.With("request_body", mask.StructToOrdMap(req))
		} else {
			log = log.With("request_body", fmt.Sprintf("too large for logging: %d bytes", len(c.Body())))
		}

		err = val.ValidateSchema(req)
		if err != nil {
			log.Warnx(err)
			return errx.Wrap(err)
		}

		resp, err := uc.Execute(c.UserContext(), req)
		if err != nil {
			log.Errorx(err)
			return errx.Wrap(err)
		}

		size, err := writeJSON(c, resp)
		if err != nil {
			log.Errorx(err)
			return errx.Wrap(err)
		}

		if size <= maxLogAllowedSize {
			log = log.With("response_body", mask.StructToOrdMap(resp))
		} else {
			log = log.With("response_body", fmt.Sprintf("too large for logging: %d bytes", size))
		}

		log.Debug("")
		return nil
	}
}

// newRequest creates a new request of type I.
// It ensures that I is a pointer to a struct.
func newRequest[I any]() (I, error) {
	var req I

	reqType := reflect.TypeOf((*I)(nil)).Elem()
	if reqType.Kind() != reflect.Pointer || reqType.Elem().Kind() != reflect.Struct {
		return req, errx.New("input type I must be a pointer to a struct")
	}

	reqVal := reflect.New(reqType.Elem()).Interface().(I) //nolint:errcheck // safe type assertion
	return reqVal, nil
}

func writeJSON(c *fiber.Ctx, data any) (int, error) {
	raw, err := c.App().Config().JSONEncoder(data)
	if err != nil {
		return 0, errx.Wrap(err)
	}

	c.Response().SetBodyRaw(raw)
	c.Response().Header.SetContentType(fiber.MIMEApplicationJSON)
	return len(raw), nil
}
