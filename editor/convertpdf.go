package editor

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/code19m/errx"
	"github.com/samber/lo"

	"github.com/rise-and-shine/docbridge/docserver"
	"github.com/rise-and-shine/docbridge/filestore"
	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/logger"
	"github.com/rise-and-shine/docbridge/observability/tracing"
)

const defaultTitle = "document.docx"

// ConvertPDFInput names the stored document to convert.
type ConvertPDFInput struct {
	Bucket string `json:"bucket" validate:"omitempty,bucket_name"`
	Key    string `json:"key"`
	Title  string `json:"title"`
}

// ConvertPDFOutput points at the stored PDF.
type ConvertPDFOutput struct {
	OK  bool   `json:"ok"`
	URL string `json:"url"`
	Key string `json:"key"`
}

// ConvertPDF converts a stored document to PDF through the Document Server
// and stores the result next to the source.
type ConvertPDF struct {
	cfg   Config
	store filestore.FileStore
	ds    *docserver.Client
	now   func() time.Time
}

// NewConvertPDF creates the use case.
func NewConvertPDF(cfg Config, store filestore.FileStore, ds *docserver.Client) *ConvertPDF {
	return &ConvertPDF{cfg: cfg, store: store, ds: ds, now: time.Now}
}

func (uc *ConvertPDF) OperationID() string { return "convert-document-pdf" }

func (uc *ConvertPDF) Execute(ctx context.Context, in *ConvertPDFInput) (_ *ConvertPDFOutput, err error) {
	ctx, span := tracing.Start(ctx, "editor.ConvertPDF")
	defer func() { tracing.End(span, err) }()

	if !uc.ds.Configured() {
		return nil, errx.New("document server url is not configured (docserver.url)",
			errx.WithCode(CodeServerMisconfigured),
		)
	}
	if in.Key == "" {
		return nil, errx.New("key is required",
			errx.WithCode(CodeMissingKey),
			errx.WithType(errx.T_Validation),
		)
	}

	bucket := lo.CoalesceOrEmpty(in.Bucket, uc.cfg.DefaultBucket)
	title := lo.CoalesceOrEmpty(in.Title, defaultTitle)

	ctx = meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
		meta.Bucket:      bucket,
		meta.DocumentKey: in.Key,
	})
	log := logger.Named("editor.convert").WithContext(ctx)

	var etag string
	info, err := uc.store.Stat(ctx, bucket, in.Key)
	switch {
	case err == nil:
		etag = info.ETag
	case isMissingObject(err):
		return nil, errx.Wrap(err, errx.WithCode(CodeSignedURLFailed), errx.WithType(errx.T_Internal))
	default:
		log.Warnx(err)
	}

	srcURL, err := uc.store.SignedURL(ctx, bucket, in.Key, uc.cfg.SourceURLExpiry)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeSignedURLFailed), errx.WithType(errx.T_Internal))
	}

	req := docserver.ConvertRequest{
		Async:      true,
		URL:        srcURL,
		FileType:   sourceFileType(in.Key),
		OutputType: "pdf",
		Title:      docserver.ReplaceDocExt(title, ".pdf"),
		Key:        DocumentKey(uc.cfg.KeyPrefix, bucket, in.Key, etag),
	}

	res, err := uc.ds.Convert(ctx, req, uc.source(bucket, in.Key))
	if err != nil {
		return nil, errx.Wrap(err)
	}

	pdf, err := uc.ds.Download(ctx, res.FileURL)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	outKey := OutputKey(in.Key, uc.now())
	_, err = uc.store.Put(ctx, filestore.Object{
		Bucket:       bucket,
		Path:         outKey,
		Content:      bytes.NewReader(pdf),
		Size:         int64(len(pdf)),
		ContentType:  filestore.ContentTypePDF,
		CacheControl: uc.cfg.CacheControl,
	})
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeUploadFailed), errx.WithType(errx.T_Internal))
	}

	log = log.With("output_key", outKey, "ds_key", res.Key, "uploaded", res.Uploaded)
	log.Info("document converted")

	return &ConvertPDFOutput{OK: true, URL: uc.resultURL(ctx, log, bucket, outKey), Key: outKey}, nil
}

// resultURL returns the public URL of the result, or a signed one. A signing
// failure leaves the URL empty since the PDF is already stored.
func (uc *ConvertPDF) resultURL(ctx context.Context, log logger.Logger, bucket, key string) string {
	if u, ok := uc.store.PublicURL(bucket, key); ok {
		return u
	}

	u, err := uc.store.SignedURL(ctx, bucket, key, uc.cfg.ResultURLExpiry)
	if err != nil {
		log.Warnx(errx.Wrap(err, errx.WithCode(CodeSignedURLFailed)))
		return ""
	}
	return u
}

func (uc *ConvertPDF) source(bucket, key string) docserver.SourceFunc {
	return func(ctx context.Context) ([]byte, error) {
		f, err := uc.store.Get(ctx, bucket, key)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		defer f.Content.Close()

		data, err := io.ReadAll(f.Content)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		return data, nil
	}
}

func isMissingObject(err error) bool {
	code := errx.AsErrorX(err).Code()
	return code == filestore.CodeFileNotFound || code == filestore.CodeBucketNotFound
}
