package editor

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/code19m/errx"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rise-and-shine/docbridge/docserver"
	"github.com/rise-and-shine/docbridge/filestore"
	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/token"
)

const (
	testSecret  = "ds-secret"
	pdfContent  = "%PDF-1.4 converted"
	editedDocx  = "edited docx bytes"
	sourceBytes = "source docx bytes"
)

type harness struct {
	store   *memStore
	ds      *httptest.Server
	srv     *server.HTTPServer
	convert *ConvertPDF
	signer  *token.HS256Signer
}

type harnessOpts struct {
	cfg     func(*Config)
	noDSURL bool
	secret  string
	convert http.HandlerFunc
}

func testConfig() Config {
	return Config{
		DefaultBucket:   "docs",
		KeyPrefix:       "st",
		CacheControl:    "max-age=3600",
		SourceURLExpiry: 300 * time.Second,
		ResultURLExpiry: 168 * time.Hour,
	}
}

// newHarness wires the editor endpoints to an in-memory store and a fake
// Document Server. The fake serves /output/result.pdf and /cache/edited.docx.
func newHarness(t *testing.T, o harnessOpts) *harness {
	t.Helper()

	mux := http.NewServeMux()
	if o.convert != nil {
		mux.HandleFunc("/ConvertService.ashx", o.convert)
	}
	mux.HandleFunc("/output/result.pdf", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, pdfContent)
	})
	mux.HandleFunc("/cache/edited.docx", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, editedDocx)
	})
	ds := httptest.NewServer(mux)
	t.Cleanup(ds.Close)

	dsURL := ds.URL
	if o.noDSURL {
		dsURL = ""
	}
	client, err := docserver.New(docserver.Config{
		URL:             dsURL,
		JWTSecret:       o.secret,
		JWTHeader:       "Authorization",
		ConvertPath:     "/ConvertService.ashx",
		PollAttempts:    3,
		PollDelay:       time.Millisecond,
		RequestTimeout:  5 * time.Second,
		MaxDownloadSize: 1 << 20,
	})
	require.NoError(t, err)

	cfg := testConfig()
	if o.cfg != nil {
		o.cfg(&cfg)
	}

	store := newMemStore()
	convert := NewConvertPDF(cfg, store, client)
	convert.now = func() time.Time { return time.UnixMilli(1700000000000) }

	srv := server.NewHTTPServer(
		server.Config{Host: "127.0.0.1", BodyLimit: 4 << 20},
		server.ErrorResponder{StatusByCode: StatusByCode},
		nil,
	)
	srv.RegisterRouter(func(r fiber.Router) {
		RegisterRoutes(r, NewSignToken(client.Signer()), NewSaveCallback(cfg, store, client), convert)
	})

	return &harness{store: store, ds: ds, srv: srv, convert: convert, signer: client.Signer()}
}

func (h *harness) post(t *testing.T, path, body string, headers ...string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := h.srv.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// readyConvert answers every ConvertService call with a finished result.
func readyConvert(ds **httptest.Server, calls *atomic.Int32) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"endConvert": true,
			"percent":    100,
			"fileUrl":    (*ds).URL + "/output/result.pdf",
		})
	}
}

func TestSignToken(t *testing.T) {
	h := newHarness(t, harnessOpts{secret: testSecret})

	status, body := h.post(t, "/onlyoffice/token", `{"config":{"document":{"key":"k1"},"editorConfig":{"mode":"edit"}}}`)
	require.Equal(t, http.StatusOK, status)

	claims, err := h.signer.Verify(body["token"].(string))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"key": "k1"}, claims["document"])
	assert.NotContains(t, claims, "exp")
}

func TestSignToken_Errors(t *testing.T) {
	tests := []struct {
		name   string
		secret string
		body   string
		status int
		code   string
	}{
		{name: "no secret", body: `{"config":{}}`, status: http.StatusInternalServerError, code: CodeServerMisconfigured},
		{name: "missing config", secret: testSecret, body: `{}`, status: http.StatusBadRequest, code: CodeBadRequest},
		{name: "config not an object", secret: testSecret, body: `{"config":[1,2]}`, status: http.StatusBadRequest, code: CodeBadRequest},
		{name: "null config", secret: testSecret, body: `{"config":null}`, status: http.StatusBadRequest, code: CodeBadRequest},
		{name: "malformed json", secret: testSecret, body: `{"config":`, status: http.StatusBadRequest, code: CodeBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t, harnessOpts{secret: tc.secret})

			status, body := h.post(t, "/onlyoffice/token", tc.body)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.code, body["error"])
		})
	}
}

func TestSaveCallback_StoresDocument(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	status, body := h.post(t, "/onlyoffice/callback?bucket=contracts&key=2024/a.docx",
		`{"status":2,"key":"st-contracts-a","url":"`+h.ds.URL+`/cache/edited.docx","users":["u1"],"actions":[{"type":0,"userid":"u1"}]}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"error": float64(0)}, body)

	obj, ok := h.store.object("contracts", "2024/a.docx")
	require.True(t, ok)
	assert.Equal(t, editedDocx, string(obj.data))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.wordprocessingml.document", obj.contentType)
	assert.Equal(t, "max-age=3600", obj.cacheControl)
}

func TestSaveCallback_DefaultsAndContentType(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	status, _ := h.post(t, "/onlyoffice/callback?key=sheet.xlsx", `{"status":6,"fileUrl":"`+h.ds.URL+`/cache/edited.docx"}`)
	require.Equal(t, http.StatusOK, status)

	obj, ok := h.store.object("docs", "sheet.xlsx")
	require.True(t, ok)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", obj.contentType)
}

func TestSaveCallback_StringScalars(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	status, body := h.post(t, "/onlyoffice/callback?key=a.docx",
		`{"status":"2","forcesavetype":"1","url":"`+h.ds.URL+`/cache/edited.docx","actions":[{"type":"1","userid":7}]}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]any{"error": float64(0)}, body)

	obj, ok := h.store.object("docs", "a.docx")
	require.True(t, ok)
	assert.Equal(t, editedDocx, string(obj.data))
}

func TestSaveCallbackInput_UnmarshalJSON(t *testing.T) {
	var in SaveCallbackInput
	require.NoError(t, json.Unmarshal([]byte(
		`{"status":"6","key":"k1","users":["u1"],"actions":[{"type":"2","userid":"u1"}],"history":{"serverVersion":"8.0"}}`,
	), &in))

	assert.Equal(t, 6, in.Status)
	assert.Equal(t, "k1", in.DocKey)
	assert.Equal(t, []string{"u1"}, in.Users)
	assert.Equal(t, []CallbackAction{{Type: 2, UserID: "u1"}}, in.Actions)
	assert.JSONEq(t, `{"serverVersion":"8.0"}`, string(in.History))

	require.Error(t, json.Unmarshal([]byte(`[1]`), &in))
}

func TestSaveCallback_NoFileURL(t *testing.T) {
	h := newHarness(t, harnessOpts{})

	for _, body := range []string{`{"status":1}`, `{"status":4,"url":"ftp://x/y"}`, `not json`} {
		status, out := h.post(t, "/onlyoffice/callback?key=a.docx", body)
		require.Equal(t, http.StatusOK, status, body)
		assert.Equal(t, float64(0), out["error"], body)
		assert.Equal(t, docserver.CodeNoFileURL, out["note"], body)
		assert.Contains(t, out, "status", body)
	}
	assert.Empty(t, h.store.objects)
}

func TestSaveCallback_Errors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		h := newHarness(t, harnessOpts{})
		status, body := h.post(t, "/onlyoffice/callback?bucket=docs", `{"status":2}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeMissingKey, body["error"])
	})

	t.Run("download failed", func(t *testing.T) {
		h := newHarness(t, harnessOpts{})
		status, body := h.post(t, "/onlyoffice/callback?key=a.docx", `{"status":2,"url":"`+h.ds.URL+`/cache/missing.docx"}`)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Equal(t, docserver.CodeDownloadFailed, body["error"])
	})

	t.Run("upload failed", func(t *testing.T) {
		h := newHarness(t, harnessOpts{})
		h.store.putErr = io.ErrClosedPipe
		status, body := h.post(t, "/onlyoffice/callback?key=a.docx", `{"status":2,"url":"`+h.ds.URL+`/cache/edited.docx"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeUploadFailed, body["error"])
	})
}

func TestSaveCallback_VerifiesToken(t *testing.T) {
	enable := func(c *Config) { c.VerifyCallbackToken = true }

	t.Run("body token", func(t *testing.T) {
		h := newHarness(t, harnessOpts{secret: testSecret, cfg: enable})
		tok, err := h.signer.Sign(map[string]any{"status": 2, "url": h.ds.URL + "/cache/edited.docx"})
		require.NoError(t, err)

		status, _ := h.post(t, "/onlyoffice/callback?key=a.docx", `{"status":2,"token":"`+tok+`"}`)
		require.Equal(t, http.StatusOK, status)
		_, ok := h.store.object("docs", "a.docx")
		assert.True(t, ok)
	})

	t.Run("header token with payload", func(t *testing.T) {
		h := newHarness(t, harnessOpts{secret: testSecret, cfg: enable})
		tok, err := h.signer.Sign(map[string]any{"payload": map[string]any{"status": 2, "url": h.ds.URL + "/cache/edited.docx"}})
		require.NoError(t, err)

		status, _ := h.post(t, "/onlyoffice/callback?key=a.docx", `{"status":2}`, "Authorization", "Bearer "+tok)
		require.Equal(t, http.StatusOK, status)
		_, ok := h.store.object("docs", "a.docx")
		assert.True(t, ok)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		h := newHarness(t, harnessOpts{secret: testSecret, cfg: enable})
		other, err := token.NewHS256Signer("other")
		require.NoError(t, err)
		tok, err := other.Sign(map[string]any{"status": 2})
		require.NoError(t, err)

		status, body := h.post(t, "/onlyoffice/callback?key=a.docx", `{"token":"`+tok+`"}`)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, CodeInvalidToken, body["error"])
	})

	t.Run("missing token", func(t *testing.T) {
		h := newHarness(t, harnessOpts{secret: testSecret, cfg: enable})
		status, body := h.post(t, "/onlyoffice/callback?key=a.docx", `{"status":2,"url":"`+h.ds.URL+`/cache/edited.docx"}`)
		assert.Equal(t, http.StatusForbidden, status)
		assert.Equal(t, CodeInvalidToken, body["error"])
	})

	t.Run("no secret", func(t *testing.T) {
		h := newHarness(t, harnessOpts{cfg: enable})
		status, body := h.post(t, "/onlyoffice/callback?key=a.docx", `{"status":2}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeServerMisconfigured, body["error"])
	})
}

func TestConvertPDF(t *testing.T) {
	var (
		ds    *httptest.Server
		calls atomic.Int32
		sent  map[string]any
	)
	convert := readyConvert(&ds, &calls)
	h := newHarness(t, harnessOpts{convert: func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
		convert(w, r)
	}})
	ds = h.ds
	h.store.seed("docs", "contracts/a.docx", []byte(sourceBytes))
	src, _ := h.store.object("docs", "contracts/a.docx")

	status, body := h.post(t, "/onlyoffice/convert", `{"key":"contracts/a.docx","title":"Contract.DOCX"}`)
	require.Equal(t, http.StatusOK, status)

	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "contracts/a_1700000000000.pdf", body["key"])
	assert.Equal(t, "https://storage.local/docs/contracts/a_1700000000000.pdf?sig=1", body["url"])
	assert.Equal(t, []time.Duration{300 * time.Second, 168 * time.Hour}, h.store.signed)

	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "https://storage.local/docs/contracts/a.docx?sig=1", sent["url"])
	assert.Equal(t, "docx", sent["filetype"])
	assert.Equal(t, "pdf", sent["outputtype"])
	assert.Equal(t, "Contract.pdf", sent["title"])
	assert.Equal(t, "st-docs-contracts_a.docx-"+strings.Trim(src.etag, `"`), sent["key"])

	obj, ok := h.store.object("docs", "contracts/a_1700000000000.pdf")
	require.True(t, ok)
	assert.Equal(t, pdfContent, string(obj.data))
	assert.Equal(t, "application/pdf", obj.contentType)
	assert.Equal(t, "max-age=3600", obj.cacheControl)
}

func TestConvertPDF_PublicURL(t *testing.T) {
	var (
		ds    *httptest.Server
		calls atomic.Int32
	)
	h := newHarness(t, harnessOpts{convert: readyConvert(&ds, &calls)})
	ds = h.ds
	h.store.public = true
	h.store.statErr = io.ErrUnexpectedEOF

	status, body := h.post(t, "/onlyoffice/convert", `{"bucket":"reports","key":"q1.doc"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "https://cdn.local/reports/q1_1700000000000.pdf", body["url"])
	assert.Equal(t, "q1_1700000000000.pdf", body["key"])
}

func TestConvertPDF_UploadFallback(t *testing.T) {
	var (
		calls    atomic.Int32
		uploaded string
	)
	var h *harness
	h = newHarness(t, harnessOpts{secret: testSecret, convert: func(w http.ResponseWriter, r *http.Request) {
		switch calls.Add(1) {
		case 1:
			_, _ = io.WriteString(w, `{"error":-7}`)
		default:
			require.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
			assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "Bearer "))
			f, _, err := r.FormFile("file")
			require.NoError(t, err)
			data, _ := io.ReadAll(f)
			uploaded = string(data)
			_ = json.NewEncoder(w).Encode(map[string]any{"endConvert": true, "fileUrl": h.ds.URL + "/output/result.pdf"})
		}
	}})
	h.store.seed("docs", "a.docx", []byte(sourceBytes))

	status, body := h.post(t, "/onlyoffice/convert", `{"key":"a.docx"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "a_1700000000000.pdf", body["key"])
	assert.Equal(t, sourceBytes, uploaded)
	assert.Equal(t, int32(2), calls.Load())
}

func TestConvertPDF_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		h := newHarness(t, harnessOpts{noDSURL: true})
		status, body := h.post(t, "/onlyoffice/convert", `{}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeServerMisconfigured, body["error"])
	})

	t.Run("missing key", func(t *testing.T) {
		h := newHarness(t, harnessOpts{})
		status, body := h.post(t, "/onlyoffice/convert", `{"bucket":"docs"}`)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, CodeMissingKey, body["error"])
	})

	t.Run("invalid bucket", func(t *testing.T) {
		h := newHarness(t, harnessOpts{})
		status, _ := h.post(t, "/onlyoffice/convert", `{"bucket":"Bad_Bucket","key":"a.docx"}`)
		assert.Equal(t, http.StatusBadRequest, status)
	})

	t.Run("signed url failed", func(t *testing.T) {
		h := newHarness(t, harnessOpts{})
		h.store.seed("docs", "a.docx", []byte(sourceBytes))
		h.store.signErr = io.ErrClosedPipe
		status, body := h.post(t, "/onlyoffice/convert", `{"key":"a.docx"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeSignedURLFailed, body["error"])
	})

	t.Run("conversion error", func(t *testing.T) {
		h := newHarness(t, harnessOpts{convert: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"error":-3}`)
		}})
		h.store.seed("docs", "a.docx", []byte(sourceBytes))
		status, body := h.post(t, "/onlyoffice/convert", `{"key":"a.docx"}`)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Equal(t, docserver.CodeConvertFailed, body["error"])
	})

	t.Run("never ready", func(t *testing.T) {
		h := newHarness(t, harnessOpts{convert: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"endConvert":false,"percent":10,"key":"job-1"}`)
		}})
		h.store.seed("docs", "a.docx", []byte(sourceBytes))
		status, body := h.post(t, "/onlyoffice/convert", `{"key":"a.docx"}`)
		assert.Equal(t, http.StatusBadGateway, status)
		assert.Equal(t, docserver.CodeNoFileURL, body["error"])
	})

	t.Run("upload failed", func(t *testing.T) {
		var (
			ds    *httptest.Server
			calls atomic.Int32
		)
		h := newHarness(t, harnessOpts{convert: readyConvert(&ds, &calls)})
		ds = h.ds
		h.store.seed("docs", "a.docx", []byte(sourceBytes))
		h.store.putErr = io.ErrClosedPipe
		status, body := h.post(t, "/onlyoffice/convert", `{"key":"a.docx"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeUploadFailed, body["error"])
	})

	t.Run("source missing on fallback", func(t *testing.T) {
		h := newHarness(t, harnessOpts{convert: func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"error":-7}`)
		}})
		h.store.seed("docs", "a.docx", []byte(sourceBytes))
		h.store.getErr = errx.New("object vanished",
			errx.WithCode(filestore.CodeFileNotFound),
			errx.WithType(errx.T_NotFound),
		)
		status, body := h.post(t, "/onlyoffice/convert", `{"key":"a.docx"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, docserver.CodeDownloadSrcFailed, body["error"])
	})

	t.Run("source missing", func(t *testing.T) {
		var (
			ds    *httptest.Server
			calls atomic.Int32
		)
		h := newHarness(t, harnessOpts{convert: readyConvert(&ds, &calls)})
		ds = h.ds
		status, body := h.post(t, "/onlyoffice/convert", `{"key":"missing.docx"}`)
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, CodeSignedURLFailed, body["error"])
		assert.Equal(t, int32(0), calls.Load())
		assert.Empty(t, h.store.signed)
	})

	t.Run("underscore bucket", func(t *testing.T) {
		var (
			ds    *httptest.Server
			calls atomic.Int32
		)
		h := newHarness(t, harnessOpts{convert: readyConvert(&ds, &calls)})
		ds = h.ds
		h.store.seed("team_docs", "a.docx", []byte(sourceBytes))
		status, body := h.post(t, "/onlyoffice/convert", `{"bucket":"team_docs","key":"a.docx"}`)
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "https://storage.local/team_docs/a_1700000000000.pdf?sig=1", body["url"])
	})
}

func TestConvertPDF_ResultSignFailureLeavesURLEmpty(t *testing.T) {
	var (
		ds    *httptest.Server
		calls atomic.Int32
	)
	h := newHarness(t, harnessOpts{convert: readyConvert(&ds, &calls)})
	ds = h.ds
	store := &failSecondSign{memStore: h.store}
	h.convert.store = store
	h.store.seed("docs", "a.docx", []byte(sourceBytes))

	out, err := h.convert.Execute(t.Context(), &ConvertPDFInput{Key: "a.docx"})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Empty(t, out.URL)
	assert.Equal(t, "a_1700000000000.pdf", out.Key)
}

// failSecondSign fails every signed URL after the first.
type failSecondSign struct {
	*memStore
	n atomic.Int32
}

func (s *failSecondSign) SignedURL(ctx context.Context, bucket, path string, expiry time.Duration) (string, error) {
	if s.n.Add(1) > 1 {
		return "", io.ErrClosedPipe
	}
	return s.memStore.SignedURL(ctx, bucket, path, expiry)
}
