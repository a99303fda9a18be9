package filestore

import (
	"path"
	"strings"
)

// Content types of documents handled by the editor.
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeRTF  = "application/rtf"
	ContentTypeText = "text/plain"
	ContentTypeCSV  = "text/csv"
	ContentTypeHTML = "text/html"

	// Microsoft Office.
	ContentTypeDOC  = "application/msword"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	ContentTypeXLS  = "application/vnd.ms-excel"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypePPT  = "application/vnd.ms-powerpoint"
	ContentTypePPTX = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

	// OpenDocument.
	ContentTypeODT = "application/vnd.oasis.opendocument.text"
	ContentTypeODS = "application/vnd.oasis.opendocument.spreadsheet"
	ContentTypeODP = "application/vnd.oasis.opendocument.presentation"

	ContentTypeOctetStream = "application/octet-stream"
)

//nolint:gochecknoglobals // read-only lookup table
var contentTypeByExt = map[string]string{
	"pdf":  ContentTypePDF,
	"rtf":  ContentTypeRTF,
	"txt":  ContentTypeText,
	"csv":  ContentTypeCSV,
	"html": ContentTypeHTML,
	"doc":  ContentTypeDOC,
	"docx": ContentTypeDOCX,
	"xls":  ContentTypeXLS,
	"xlsx": ContentTypeXLSX,
	"ppt":  ContentTypePPT,
	"pptx": ContentTypePPTX,
	"odt":  ContentTypeODT,
	"ods":  ContentTypeODS,
	"odp":  ContentTypeODP,
}

// Ext returns the lowercase extension of p without the leading dot.
func Ext(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// ContentTypeByExt returns the content type for the extension of p.
// The second result is false when the extension is unknown.
func ContentTypeByExt(p string) (string, bool) {
	ct, ok := contentTypeByExt[Ext(p)]
	return ct, ok
}
