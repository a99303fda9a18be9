package filestore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rise-and-shine/docbridge/filestore"
)

func TestContentTypeByExt(t *testing.T) {
	tests := []struct {
		path   string
		want   string
		wantOK bool
	}{
		{"contracts/a.docx", filestore.ContentTypeDOCX, true},
		{"A.DOCX", filestore.ContentTypeDOCX, true},
		{"report.pdf", filestore.ContentTypePDF, true},
		{"sheet.xlsx", filestore.ContentTypeXLSX, true},
		{"legacy.doc", filestore.ContentTypeDOC, true},
		{"noext", "", false},
		{"image.png", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			got, ok := filestore.ContentTypeByExt(tc.path)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExt(t *testing.T) {
	assert.Equal(t, "docx", filestore.Ext("dir/File.DocX"))
	assert.Empty(t, filestore.Ext("dir.v2/file"))
}
