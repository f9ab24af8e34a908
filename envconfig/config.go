// config.go - Konfiguration ueber Environment-Variablen
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (LORAPLAN_DEBUG)
// - Strict: Warnungen als fatal behandeln (LORAPLAN_STRICT)
// - Separator: Pfad-Separator fuer die Plan-Ausgabe (LORAPLAN_SEPARATOR)
// - Var: Rohzugriff auf eine Environment-Variable
// - AsMap/Values: Export aller Konfigurationen
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// Getter
// =============================================================================

// LogLevel gibt das slog-Level zurueck
// Konfigurierbar via LORAPLAN_DEBUG (bool oder Zahl, z.B. LORAPLAN_DEBUG=1)
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("LORAPLAN_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Strict meldet ob akkumulierte Warnungen einen Lauf abbrechen sollen
// Konfigurierbar via LORAPLAN_STRICT
func Strict() bool {
	return Bool("LORAPLAN_STRICT")()
}

// Separator gibt den Pfad-Separator fuer die Ausgabe zurueck
// Konfigurierbar via LORAPLAN_SEPARATOR, Default "."
func Separator() string {
	if s := Var("LORAPLAN_SEPARATOR"); s != "" {
		return s
	}
	return "."
}

// Bool gibt eine Funktion zurueck, die einen Bool liest (Default: false)
func Bool(k string) func() bool {
	return func() bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar beschreibt eine Environment-Variable fuer die CLI-Hilfe
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"LORAPLAN_DEBUG":     {"LORAPLAN_DEBUG", LogLevel(), "Show additional debug information (e.g. LORAPLAN_DEBUG=1)"},
		"LORAPLAN_STRICT":    {"LORAPLAN_STRICT", Strict(), "Treat accumulated resolve warnings as fatal"},
		"LORAPLAN_SEPARATOR": {"LORAPLAN_SEPARATOR", Separator(), "Path separator used when printing module paths (default \".\")"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
