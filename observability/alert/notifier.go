package alert

import (
	"context"
	"html"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/code19m/errx"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/discord"
	"github.com/nikoksr/notify/service/telegram"
	"github.com/samber/lo"
)

// maxValueLen bounds a single detail value in a message.
const maxValueLen = 1000

// Detail keys that get their own line in a message instead of the detail list.
const (
	detailBucket      = "bucket"
	detailDocumentKey = "document_key"
	detailTraceID     = "trace_id"
)

type notifier interface {
	notify(ctx context.Context, e errorInfo) error
}

// markup renders message fragments for one chat platform.
type markup struct {
	bold   func(string) string
	italic func(string) string
	code   func(string) string
	text   func(string) string
}

var discordMarkup = markup{
	bold:   func(s string) string { return "**" + s + "**" },
	italic: func(s string) string { return "_" + s + "_" },
	code:   func(s string) string { return "`" + strings.ReplaceAll(s, "`", "'") + "`" },
	text:   escapeMarkdown,
}

var telegramMarkup = markup{
	bold:   func(s string) string { return "<b>" + s + "</b>" },
	italic: func(s string) string { return "<i>" + s + "</i>" },
	code:   func(s string) string { return "<code>" + html.EscapeString(s) + "</code>" },
	text:   func(s string) string { return html.EscapeString(flatten(s)) },
}

// chatNotifier sends rendered alerts through a notify.Notifier.
type chatNotifier struct {
	n           notify.Notifier
	m           markup
	environment string
}

func newNotifier(cfg Config) (notifier, error) {
	n := notify.New()
	cn := &chatNotifier{
		n:           n,
		environment: lo.CoalesceOrEmpty(os.Getenv("ENVIRONMENT"), "unknown"),
	}

	switch cfg.Provider {
	case providerDiscord:
		d := discord.New()
		if err := d.AuthenticateWithBotToken(cfg.DiscordBotToken); err != nil {
			return nil, errx.Wrap(err)
		}
		d.AddReceivers(cfg.DiscordChannelIDs...)
		n.UseServices(d)
		cn.m = discordMarkup
	case providerTelegram:
		tg, err := telegram.New(cfg.TelegramBotToken)
		if err != nil {
			return nil, errx.Wrap(err)
		}
		tg.AddReceivers(cfg.TelegramChatIDs...)
		n.UseServices(tg)
		cn.m = telegramMarkup
	default:
		return nil, errx.New("invalid alert provider: " + cfg.Provider)
	}
	return cn, nil
}

func (cn *chatNotifier) notify(ctx context.Context, e errorInfo) error {
	subject, message := render(e, cn.environment, cn.m)
	if err := cn.n.Send(ctx, subject, message); err != nil {
		return errx.Wrap(err)
	}
	return nil
}

// render builds the subject and the message of an alert.
//
// The subject names the service, environment and error code. The message
// leads with the failing operation and the document it touched, followed by
// the error text, the trace id and the remaining details sorted by key.
func render(e errorInfo, environment string, m markup) (string, string) {
	subject := m.bold(m.text(e.service+" ["+environment+"] "+e.code)) + "\n"

	var b strings.Builder
	line := func(label, value string) {
		b.WriteString(m.bold(label) + " " + value + "\n")
	}

	line("Operation:", m.text(e.operation))
	if doc := documentRef(e.details); doc != "" {
		line("Document:", m.code(doc))
	}
	line("Error:", m.text(clip(e.message)))
	if id := e.details[detailTraceID]; id != "" {
		line("Trace:", m.code(id))
	}

	rest := lo.OmitByKeys(e.details, []string{detailBucket, detailDocumentKey, detailTraceID})
	keys := lo.Keys(lo.OmitByValues(rest, []string{""}))
	slices.Sort(keys)
	if len(keys) > 0 {
		b.WriteString("\n")
	}
	for _, k := range keys {
		b.WriteString(m.italic(m.text(k)) + ": " + m.code(clip(rest[k])) + "\n")
	}

	if e.frequency > 1 {
		b.WriteString("\n" + m.italic(m.text(
			"seen "+strconv.Itoa(e.frequency)+" times in the last "+
				strconv.Itoa(e.frequencyMinutes)+" min",
		)))
	}
	return subject, b.String()
}

// documentRef joins the bucket and document key into bucket/key.
func documentRef(details map[string]string) string {
	bucket, key := details[detailBucket], details[detailDocumentKey]
	switch {
	case key == "":
		return bucket
	case bucket == "":
		return key
	default:
		return bucket + "/" + key
	}
}

func clip(s string) string {
	if len(s) > maxValueLen {
		return s[:maxValueLen] + "..."
	}
	return s
}

func escapeMarkdown(in string) string {
	return strings.NewReplacer(
		"*", "\\*",
		"_", "\\_",
		"`", "\\`",
		"~", "\\~",
		"|", "\\|",
	).Replace(flatten(in))
}

func flatten(in string) string {
	return strings.ReplaceAll(in, "\n", " ")
}
