package editor

import (
	"context"
	"encoding/json"

	"github.com/code19m/errx"

	"github.com/rise-and-shine/docbridge/observability/tracing"
	"github.com/rise-and-shine/docbridge/token"
)

// SignTokenInput carries the editor configuration to sign.
type SignTokenInput struct {
	Config json.RawMessage `json:"config"`
}

// SignTokenOutput holds the signed editor configuration.
type SignTokenOutput struct {
	Token string `json:"token"`
}

// SignToken signs an editor configuration for the Document Server.
type SignToken struct {
	signer *token.HS256Signer
}

// NewSignToken creates the use case. A nil signer makes every call fail
// with server_misconfigured.
func NewSignToken(signer *token.HS256Signer) *SignToken {
	return &SignToken{signer: signer}
}

func (uc *SignToken) OperationID() string { return "sign-editor-token" }

func (uc *SignToken) Execute(ctx context.Context, in *SignTokenInput) (_ *SignTokenOutput, err error) {
	_, span := tracing.Start(ctx, "editor.SignToken")
	defer func() { tracing.End(span, err) }()

	if uc.signer == nil {
		return nil, errx.New("document server jwt secret is not configured (docserver.jwt_secret)",
			errx.WithCode(CodeServerMisconfigured),
		)
	}

	var cfg map[string]any
	if len(in.Config) == 0 || json.Unmarshal(in.Config, &cfg) != nil || cfg == nil {
		return nil, errx.New("config missing",
			errx.WithCode(CodeBadRequest),
			errx.WithType(errx.T_Validation),
		)
	}

	signed, err := uc.signer.Sign(cfg)
	if err != nil {
		return nil, errx.Wrap(err, errx.WithCode(CodeServerError))
	}

	return &SignTokenOutput{Token: signed}, nil
}
