package server

import (
	"errors"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/meta"
)

const (
	// CodeServerError tags errors that carry no code of their own.
	CodeServerError = "server_error"

	codeRouterError = "router_error"
)

// ErrorResponder renders errors as tagged JSON bodies.
type ErrorResponder struct {
	// HideDetails drops trace and details from responses.
	HideDetails bool

	// StatusByCode overrides the status derived from the error type.
	StatusByCode map[string]int
}

// Write writes the error response and returns the normalized error.
func (r ErrorResponder) Write(c *fiber.Ctx, err error) error {
	e := mapAnyErrorToErrorX(err)

	c.Status(r.Status(e))
	_ = c.JSON(r.body(e, meta.Find(c.UserContext(), meta.TraceID)))

	return e
}

// Status returns the HTTP status for e.
func (r ErrorResponder) Status(e errx.ErrorX) int {
	if status, ok := r.StatusByCode[e.Code()]; ok {
		return status
	}
	return mapErrorTypeToHTTPStatusCode(e.Type())
}

// customErrorHandler returns a Fiber error handler for errors that escape the middlewares.
// A response that already carries an error status is left untouched.
func customErrorHandler(r ErrorResponder) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		resp := ctx.Response()
		if resp != nil && resp.StatusCode() >= 400 {
			return nil
		}

		_ = r.Write(ctx, err)
		return nil
	}
}

// errorSchema defines the structure of error responses returned to clients.
type errorSchema struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	TraceID string            `json:"trace_id,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	Trace   string            `json:"trace,omitempty"`
	Details map[string]any    `json:"details,omitempty"`
}

func (r ErrorResponder) body(e errx.ErrorX, traceID string) errorSchema {
	code := e.Code()
	if code == "" {
		code = CodeServerError
	}

	resp := errorSchema{
		Error:   code,
		Message: e.Error(),
		TraceID: traceID,
		Fields:  e.Fields(),
	}
	if !r.HideDetails {
		resp.Trace = e.Trace()
		resp.Details = e.Details()
	}
	return resp
}

// mapErrorTypeToHTTPStatusCode converts an errx.Type to the appropriate HTTP status code.
func mapErrorTypeToHTTPStatusCode(t errx.Type) int {
	switch t {
	case errx.T_Authentication:
		return fiber.StatusUnauthorized
	case errx.T_Forbidden:
		return fiber.StatusForbidden
	case errx.T_NotFound:
		return fiber.StatusNotFound
	case errx.T_Validation:
		return fiber.StatusBadRequest
	case errx.T_Conflict:
		return fiber.StatusConflict
	case errx.T_Throttling:
		return fiber.StatusTooManyRequests
	case errx.T_Internal:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusInternalServerError
	}
}

// mapAnyErrorToErrorX converts any error to an errx.ErrorX type.
// Fiber errors are mapped to the matching error type.
func mapAnyErrorToErrorX(err error) errx.ErrorX {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		var t errx.Type

		switch {
		case fiberErr.Code == fiber.StatusUnauthorized:
			t = errx.T_Authentication
		case fiberErr.Code == fiber.StatusForbidden:
			t = errx.T_Forbidden
		case fiberErr.Code == fiber.StatusNotFound:
			t = errx.T_NotFound
		case fiberErr.Code == fiber.StatusConflict:
			t = errx.T_Conflict
		case fiberErr.Code == fiber.StatusTooManyRequests:
			t = errx.T_Throttling
		case fiberErr.Code >= 400 && fiberErr.Code < 500:
			t = errx.T_Validation
		default:
			t = errx.T_Internal
		}

		err = errx.New(
			fiberErr.Message,
			errx.WithCode(codeRouterError),
			errx.WithType(t),
			errx.WithDetails(errx.D{
				"fiber_code": fiberErr.Code,
				"fiber_msg":  fiberErr.Message,
			}),
		)
	}

	return errx.AsErrorX(err)
}
