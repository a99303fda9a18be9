package docserver

import (
	"bytes"
	"encoding/json"
	"encoding/xml"

	"github.com/samber/lo"
	"github.com/spf13/cast"
)

// xmlFileResult is the legacy XML body: <FileResult><FileUrl>..</FileUrl>..</FileResult>.
type xmlFileResult struct {
	EndConvert string `xml:"EndConvert"`
	FileURL    string `xml:"FileUrl"`
	URL        string `xml:"Url"`
	Percent    string `xml:"Percent"`
	Error      string `xml:"Error"`
}

// parseResponse reads a JSON or XML ConvertService body.
// The second result is false when the body is neither.
func parseResponse(body []byte) (*ConvertResponse, bool) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, false
	}

	if trimmed[0] == '<' {
		var x xmlFileResult
		if err := xml.Unmarshal(trimmed, &x); err != nil {
			return nil, false
		}
		return &ConvertResponse{
			EndConvert: cast.ToBool(x.EndConvert),
			FileURL:    lo.CoalesceOrEmpty(x.FileURL, x.URL),
			Percent:    cast.ToInt(x.Percent),
			Error:      cast.ToInt(x.Error),
		}, true
	}

	var m map[string]any
	if err := json.Unmarshal(trimmed, &m); err != nil {
		return nil, false
	}
	return &ConvertResponse{
		EndConvert: cast.ToBool(m["endConvert"]),
		FileURL: lo.CoalesceOrEmpty(
			cast.ToString(m["fileUrl"]),
			cast.ToString(m["fileurl"]),
			cast.ToString(m["Url"]),
			cast.ToString(m["url"]),
		),
		Percent: cast.ToInt(m["percent"]),
		Error:   cast.ToInt(m["error"]),
		Key:     cast.ToString(m["key"]),
	}, true
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
