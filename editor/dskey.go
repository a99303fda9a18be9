package editor

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rise-and-shine/docbridge/docserver"
	"github.com/rise-and-shine/docbridge/filestore"
)

const maxDocumentKeyLen = 120

var unsafeKeyChars = regexp.MustCompile(`[^0-9A-Za-z._=-]`)

// DocumentKey derives the Document Server key of a stored document.
// The ETag, when known, makes every stored revision convert separately.
// The key keeps at most its last 120 characters.
func DocumentKey(prefix, bucket, key, etag string) string {
	parts := []string{prefix, bucket, key}
	if etag = strings.Trim(etag, `"`); etag != "" {
		parts = append(parts, etag)
	}

	k := unsafeKeyChars.ReplaceAllString(strings.Join(parts, "-"), "_")
	if len(k) > maxDocumentKeyLen {
		k = k[len(k)-maxDocumentKeyLen:]
	}
	return k
}

// OutputKey derives the storage key of the converted PDF.
func OutputKey(key string, now time.Time) string {
	base := strings.TrimSuffix(docserver.TrimDocExt(key), ".")
	return base + "_" + strconv.FormatInt(now.UnixMilli(), 10) + ".pdf"
}

// sourceFileType returns the conversion input type of a storage key.
func sourceFileType(key string) string {
	if _, ok := filestore.ContentTypeByExt(key); ok {
		return filestore.Ext(key)
	}
	return "docx"
}
