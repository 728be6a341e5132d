package hub

import (
	"context"
	"log/slog"

	"github.com/dustin/go-humanize"
)

const previewLen = 120

// LogContent logs a clipboard event at INFO (size only) and, at DEBUG, a
// preview of up to 120 characters. Clipboard text can be sensitive, so it
// never appears above debug level.
func LogContent(event, content string, attrs ...any) {
	slog.Info(event, append(attrs, "size", humanize.Bytes(uint64(len(content))))...)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	preview := []rune(content)
	if len(preview) > previewLen {
		preview = append(preview[:previewLen], '…')
	}
	slog.Debug("clipboard content", "preview", string(preview))
}
