package editor

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentKey(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		key    string
		etag   string
		want   string
	}{
		{name: "plain", bucket: "docs", key: "a.docx", want: "st-docs-a.docx"},
		{name: "etag quotes trimmed", bucket: "docs", key: "a.docx", etag: `"abc123"`, want: "st-docs-a.docx-abc123"},
		{name: "unsafe characters", bucket: "docs", key: "contracts/2024 q1 (final).docx", want: "st-docs-contracts_2024_q1__final_.docx"},
		{name: "non ascii", bucket: "docs", key: "sözleşme.docx", want: "st-docs-s_zle_me.docx"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DocumentKey("st", tc.bucket, tc.key, tc.etag))
		})
	}
}

func TestDocumentKey_KeepsTail(t *testing.T) {
	key := strings.Repeat("a", 200) + ".docx"

	got := DocumentKey("st", "docs", key, "etag")

	assert.Len(t, got, 120)
	assert.True(t, strings.HasSuffix(got, ".docx-etag"))
}

func TestOutputKey(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	tests := map[string]string{
		"contracts/a.docx": "contracts/a_1700000000123.pdf",
		"a.DOC":            "a_1700000000123.pdf",
		"notes":            "notes_1700000000123.pdf",
		"sheet.xlsx":       "sheet.xlsx_1700000000123.pdf",
		"trailing.":        "trailing_1700000000123.pdf",
	}

	for in, want := range tests {
		assert.Equal(t, want, OutputKey(in, now), in)
	}
}

func TestSourceFileType(t *testing.T) {
	assert.Equal(t, "docx", sourceFileType("a.docx"))
	assert.Equal(t, "odt", sourceFileType("dir/a.ODT"))
	assert.Equal(t, "docx", sourceFileType("a.bin"))
	assert.Equal(t, "docx", sourceFileType("noext"))
}
