package cfgloader

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/rise-and-shine/docbridge/mask"
)

// printConfig logs the loaded config with `mask:"true"` fields hidden.
func printConfig(config any, env string) {
	om := mask.StructToOrdMap(config)
	if om == nil {
		return
	}

	var b strings.Builder
	for pair := om.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&b, "  %s: %v\n", pair.Key, pair.Value)
	}
	slog.Info(fmt.Sprintf("[cfgloader]: loaded %s config:\n%s", env, b.String()))
}
