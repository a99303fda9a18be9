package editor

import (
	"net/http"

	"github.com/rise-and-shine/docbridge/docserver"
)

// Error codes returned by the editor endpoints.
const (
	CodeBadRequest          = "bad_request"
	CodeMissingKey          = "missing_key"
	CodeServerMisconfigured = docserver.CodeNotConfigured
	CodeInvalidToken        = "invalid_token"
	CodeSignedURLFailed     = "signed_url_failed"
	CodeUploadFailed        = "upload_failed"
	CodeServerError         = "server_error"
)

// StatusByCode maps error codes whose status differs from their error type.
// Document Server failures are reported as bad gateway.
//
//nolint:gochecknoglobals // read-only lookup table
var StatusByCode = map[string]int{
	docserver.CodeConvertFailed:  http.StatusBadGateway,
	docserver.CodeNoFileURL:      http.StatusBadGateway,
	docserver.CodeDownloadFailed: http.StatusBadGateway,
}
