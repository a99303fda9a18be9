package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/code19m/errx"
	"github.com/samber/lo"
	"github.com/spf13/cast"

	"github.com/rise-and-shine/docbridge/docserver"
	"github.com/rise-and-shine/docbridge/filestore"
	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/logger"
	"github.com/rise-and-shine/docbridge/observability/tracing"
)

var httpURL = regexp.MustCompile(`(?i)^https?://`)

// SaveCallbackInput is the Document Server save callback. Bucket and Key come
// from the query string, everything else from the JSON body.
type SaveCallbackInput struct {
	Bucket string `json:"-" query:"bucket" validate:"omitempty,bucket_name"`
	Key    string `json:"-" query:"key"`

	Status        int              `json:"status" query:"-"`
	URL           string           `json:"url" query:"-"`
	FileURL       string           `json:"fileUrl" query:"-"`
	DownloadURL   string           `json:"downloadUrl" query:"-"`
	DocKey        string           `json:"key" query:"-"`
	Users         []string         `json:"users" query:"-"`
	Actions       []CallbackAction `json:"actions" query:"-"`
	ChangesURL    string           `json:"changesurl" query:"-"`
	History       json.RawMessage  `json:"history" query:"-"`
	ForceSaveType int              `json:"forcesavetype" query:"-"`
	Token         string           `json:"token" query:"-" mask:"true"`

	Authorization string `json:"-" query:"-" reqHeader:"Authorization" mask:"true"`
}

// CallbackAction is a user action reported with a callback.
type CallbackAction struct {
	Type   int    `json:"type"`
	UserID string `json:"userid"`
}

// UnmarshalJSON decodes the callback body loosely. Document Server builds and
// proxies in front of it may send numbers as strings, so scalar fields are
// coerced instead of rejected.
func (in *SaveCallbackInput) UnmarshalJSON(data []byte) error {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	in.Status = cast.ToInt(m["status"])
	in.URL = cast.ToString(m["url"])
	in.FileURL = cast.ToString(m["fileUrl"])
	in.DownloadURL = cast.ToString(m["downloadUrl"])
	in.DocKey = cast.ToString(m["key"])
	in.Users = cast.ToStringSlice(m["users"])
	in.ChangesURL = cast.ToString(m["changesurl"])
	in.ForceSaveType = cast.ToInt(m["forcesavetype"])
	in.Token = cast.ToString(m["token"])

	in.Actions = nil
	for _, a := range cast.ToSlice(m["actions"]) {
		am := cast.ToStringMap(a)
		in.Actions = append(in.Actions, CallbackAction{
			Type:   cast.ToInt(am["type"]),
			UserID: cast.ToString(am["userid"]),
		})
	}

	in.History = nil
	if h, ok := m["history"]; ok && h != nil {
		raw, err := json.Marshal(h)
		if err != nil {
			return err
		}
		in.History = raw
	}
	return nil
}

// SaveCallbackOutput acknowledges a callback. The Document Server expects {"error":0}.
type SaveCallbackOutput struct {
	Error  int    `json:"error"`
	Note   string `json:"note,omitempty"`
	Status *int   `json:"status,omitempty"`
}

// SaveCallback stores documents edited in the Document Server.
type SaveCallback struct {
	cfg   Config
	store filestore.FileStore
	ds    *docserver.Client
}

// NewSaveCallback creates the use case.
func NewSaveCallback(cfg Config, store filestore.FileStore, ds *docserver.Client) *SaveCallback {
	return &SaveCallback{cfg: cfg, store: store, ds: ds}
}

func (uc *SaveCallback) OperationID() string { return "save-editor-callback" }

func (uc *SaveCallback) Execute(ctx context.Context, in *SaveCallbackInput) (_ *SaveCallbackOutput, err error) {
	ctx, span := tracing.Start(ctx, "editor.SaveCallback")
	defer func() { tracing.End(span, err) }()

	if in.Key == "" {
		return nil, errx.New("key query parameter is required",
			errx.WithCode(CodeMissingKey),
			errx.WithType(errx.T_Validation),
		)
	}
	bucket := lo.CoalesceOrEmpty(in.Bucket, uc.cfg.DefaultBucket)

	ctx = meta.InjectMetaToContext(ctx, map[meta.ContextKey]string{
		meta.Bucket:      bucket,
		meta.DocumentKey: in.Key,
	})
	log := logger.Named("editor.callback").WithContext(ctx)

	status := in.Status
	fileURL := lo.CoalesceOrEmpty(in.URL, in.FileURL, in.DownloadURL)

	if uc.cfg.VerifyCallbackToken {
		payload, verr := uc.verify(in)
		if verr != nil {
			return nil, verr
		}
		status = cast.ToInt(payload["status"])
		fileURL = lo.CoalesceOrEmpty(
			cast.ToString(payload["url"]),
			cast.ToString(payload["fileUrl"]),
			cast.ToString(payload["downloadUrl"]),
		)
	}

	if !httpURL.MatchString(fileURL) {
		log.With("status", status).Debug("callback without file url")
		return &SaveCallbackOutput{Error: 0, Note: docserver.CodeNoFileURL, Status: &status}, nil
	}

	data, err := uc.ds.Download(ctx, fileURL)
	if err != nil {
		return nil, errx.Wrap(err)
	}

	contentType, ok := filestore.ContentTypeByExt(in.Key)
	if !ok {
		contentType = filestore.ContentTypeDOCX
	}

	info, err := uc.store.Put(ctx, filestore.Object{
		Bucket:       bucket,
		Path:         in.Key,
		Content:      bytes.NewReader(data),
		Size:         int64(len(data)),
		ContentType:  contentType,
		CacheControl: uc.cfg.CacheControl,
	})
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeUploadFailed), errx.WithType(errx.T_Internal))
	}

	log.With("status", status, "size", info.Size, "etag", info.ETag).Info("document saved")
	return &SaveCallbackOutput{Error: 0}, nil
}

// verify checks the callback JWT from the body or the Authorization header and
// returns the verified callback payload.
func (uc *SaveCallback) verify(in *SaveCallbackInput) (map[string]any, error) {
	signer := uc.ds.Signer()
	if signer == nil {
		return nil, errx.New("callback verification requires docserver.jwt_secret",
			errx.WithCode(CodeServerMisconfigured),
		)
	}

	fromHeader := false
	tok := in.Token
	if tok == "" {
		tok = strings.TrimSpace(strings.TrimPrefix(in.Authorization, "Bearer "))
		fromHeader = true
	}
	if tok == "" {
		return nil, errx.New("callback token is missing",
			errx.WithCode(CodeInvalidToken),
			errx.WithType(errx.T_Forbidden),
		)
	}

	claims, err := signer.Verify(tok)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeInvalidToken), errx.WithType(errx.T_Forbidden))
	}

	// header tokens wrap the callback in a "payload" claim
	if payload, ok := claims["payload"].(map[string]any); ok && fromHeader {
		return payload, nil
	}
	return claims, nil
}
