package docserver

import "context"

// ConvertRequest is the body of a ConvertService request.
type ConvertRequest struct {
	Async      bool   `json:"async"`
	URL        string `json:"url"`
	FileType   string `json:"filetype"`
	OutputType string `json:"outputtype"`
	Title      string `json:"title"`
	Key        string `json:"key"`
}

func (r ConvertRequest) payload() map[string]any {
	return map[string]any{
		"async":      r.Async,
		"url":        r.URL,
		"filetype":   r.FileType,
		"outputtype": r.OutputType,
		"title":      r.Title,
		"key":        r.Key,
	}
}

// ConvertResponse is a parsed ConvertService response.
type ConvertResponse struct {
	EndConvert bool
	FileURL    string
	Percent    int
	Error      int
	Key        string
}

// ConvertResult is the outcome of a finished conversion.
type ConvertResult struct {
	// FileURL is the result location, rewritten to the Document Server origin.
	FileURL string
	// Key is the conversion key the result was polled by.
	Key string
	// Uploaded reports whether the source was sent as multipart after DS failed to fetch it.
	Uploaded bool
}

// SourceFunc returns the source document bytes for the multipart fallback.
type SourceFunc func(ctx context.Context) ([]byte, error)
