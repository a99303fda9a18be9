package alert

import (
	"context"
	"sync/atomic"
)

//nolint:gochecknoglobals // process-wide alert provider
var global atomic.Pointer[Provider]

// SetGlobal builds a provider from cfg and installs it for SendError.
// The previous provider stays installed when cfg is invalid.
func SetGlobal(cfg Config) error {
	p, err := NewProvider(cfg)
	if err != nil {
		return err
	}
	global.Store(&p)
	return nil
}

// SendError reports an error through the global provider.
// Nothing is sent until SetGlobal installs a provider.
func SendError(ctx context.Context, errCode, msg, operation string, details map[string]string) error {
	p := global.Load()
	if p == nil {
		return nil
	}
	return (*p).SendError(ctx, errCode, msg, operation, details)
}
