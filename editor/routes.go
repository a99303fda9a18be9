package editor

import (
	"github.com/gofiber/fiber/v2"

	"github.com/rise-and-shine/docbridge/http/server/forward"
)

// RegisterRoutes mounts the editor endpoints under /onlyoffice.
// Bodies are decoded leniently: a malformed JSON body reads as an empty one.
func RegisterRoutes(r fiber.Router, sign *SignToken, save *SaveCallback, convert *ConvertPDF) {
	g := r.Group("/onlyoffice")

	g.Post("/token", forward.ToUserAction(sign, forward.WithLenientBody()))
	g.Post("/callback", forward.ToUserAction(save, forward.WithLenientBody()))
	g.Post("/convert", forward.ToUserAction(convert, forward.WithLenientBody()))
}
