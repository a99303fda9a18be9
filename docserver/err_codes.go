package docserver

import "strconv"

// Error codes returned by the client.
const (
	CodeConvertFailed     = "convert_failed"
	CodeNoFileURL         = "no_file_url"
	CodeDownloadFailed    = "download_failed"
	CodeDownloadSrcFailed = "download_src_failed"
	CodeNotConfigured     = "server_misconfigured"
)

// Conversion error codes reported in the "error" field of ConvertService responses.
const (
	ErrUnknown    = -1
	ErrTimeout    = -2
	ErrConversion = -3
	ErrDownload   = -4
	ErrPassword   = -5
	ErrDatabase   = -6
	ErrInput      = -7
	ErrToken      = -8
)

// ErrorName describes a ConvertService error code.
func ErrorName(code int) string {
	switch code {
	case 0:
		return "ok"
	case ErrUnknown:
		return "unknown error"
	case ErrTimeout:
		return "conversion timeout"
	case ErrConversion:
		return "conversion error"
	case ErrDownload:
		return "error while downloading the document file to be converted"
	case ErrPassword:
		return "incorrect password"
	case ErrDatabase:
		return "error while accessing the conversion result database"
	case ErrInput:
		return "input error"
	case ErrToken:
		return "invalid token"
	}
	return "error " + strconv.Itoa(code)
}
