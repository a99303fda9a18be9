package alert

import (
	"context"
	"sync"
	"time"

	"github.com/rise-and-shine/docbridge/meta"
	"github.com/rise-and-shine/docbridge/observability/logger"
)

// errorInfo holds error data used for building notification messages.
type errorInfo struct {
	code      string
	message   string
	service   string
	operation string
	details   map[string]string

	frequency        int
	frequencyMinutes int
}

// alertProvider notifies about errors, at most once per cooldown for each operation.
type alertProvider struct {
	cfg      Config
	notifier notifier
	now      func() time.Time

	mu  sync.Mutex
	ops map[string]*opHistory
}

// opHistory tracks the errors of one operation within the cooldown window.
type opHistory struct {
	lastAlerted time.Time
	seen        []time.Time
}

func newAlertProvider(cfg Config, n notifier) *alertProvider {
	return &alertProvider{
		cfg:      cfg,
		notifier: n,
		now:      time.Now,
		ops:      make(map[string]*opHistory),
	}
}

func (ap *alertProvider) SendError(
	ctx context.Context,
	errCode, msg, operation string,
	details map[string]string,
) error {
	frequency, ok := ap.record(operation)
	if !ok {
		return nil
	}

	if details == nil {
		details = make(map[string]string)
	}
	details["service_version"] = meta.ServiceVersion()

	info := errorInfo{
		code:             errCode,
		message:          msg,
		service:          meta.ServiceName(),
		operation:        operation,
		details:          details,
		frequency:        frequency,
		frequencyMinutes: ap.cfg.CooldownMinutes,
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ap.cfg.SendTimeout)
	defer cancel()

	if err := ap.notifier.notify(ctx, info); err != nil {
		logger.Named("alert").With("error", err.Error()).Warn("notification failed")
		return err
	}
	return nil
}

// record registers an error for operation. It returns the number of errors
// seen within the cooldown window and whether a notification is due.
func (ap *alertProvider) record(operation string) (int, bool) {
	ap.mu.Lock()
	defer ap.mu.Unlock()

	now := ap.now()
	window := time.Duration(ap.cfg.CooldownMinutes) * time.Minute

	h, ok := ap.ops[operation]
	if !ok {
		h = &opHistory{}
		ap.ops[operation] = h
	}

	kept := h.seen[:0]
	for _, t := range h.seen {
		if now.Sub(t) < window {
			kept = append(kept, t)
		}
	}
	h.seen = append(kept, now)

	if !h.lastAlerted.IsZero() && now.Sub(h.lastAlerted) < window {
		return len(h.seen), false
	}
	h.lastAlerted = now
	return len(h.seen), true
}
