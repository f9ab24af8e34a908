// logutil.go - slog-Setup fuer CLI und Bibliothek
package logutil

import (
	"io"
	"log/slog"
	"path/filepath"
)

// NewLogger erstellt einen Text-Logger mit gekuerzter Quell-Angabe.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.SourceKey {
				if source, ok := attr.Value.Any().(*slog.Source); ok {
					source.File = filepath.Base(source.File)
				}
			}
			return attr
		},
	}))
}
