package docserver

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"

	"github.com/spf13/cast"

	"github.com/rise-and-shine/docbridge/filestore"
)

// multipartBody builds the upload form: the file part first, then the
// conversion fields and the token when present.
func multipartBody(fileName string, data []byte, fields map[string]any, jwt string) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType, ok := filestore.ContentTypeByExt(fileName)
	if !ok {
		contentType = filestore.ContentTypeOctetStream
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err = part.Write(data); err != nil {
		return nil, "", err
	}

	for _, name := range []string{"outputtype", "filetype", "title", "key", "async"} {
		if err = w.WriteField(name, cast.ToString(fields[name])); err != nil {
			return nil, "", err
		}
	}
	if jwt != "" {
		if err = w.WriteField("token", jwt); err != nil {
			return nil, "", err
		}
	}

	if err = w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
