// result.go - Ausgabe-Typen des Selector-Baum Resolvers
//
// Enthaelt:
// - Assignment: (Modul-Pfad, wirksame Spec) Zuweisung
// - Diagnostic: nicht-fatale Befunde (z.B. unerreichbare index-Eintraege)
// - Result: geordnete Zuweisungen plus Diagnostik pro Top-Level Target
package resolver

import (
	"errors"
	"fmt"

	"github.com/7blacky7/loraplan/config"
)

// Fehler-Definitionen
var (
	// ErrMissingHyperparameter: ein Terminal-Knoten hat in seiner
	// Vorfahren-Kette keine wirksame Spec. Fatal fuer das betroffene
	// Top-Level Target.
	ErrMissingHyperparameter = errors.New("kein wirksames lora in der vorfahren-kette")

	// ErrNoModuleTree: fuer das Top-Level Target wurde kein Modul-Baum
	// uebergeben.
	ErrNoModuleTree = errors.New("kein modul-baum fuer target")
)

// ResolveError beschreibt einen fatalen Fehler fuer ein Top-Level Target.
type ResolveError struct {
	Target string
	Path   string
	Err    error
}

func (e *ResolveError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("resolve %s: %s: %v", e.Target, e.Path, e.Err)
	}
	return fmt.Sprintf("resolve %s: %v", e.Target, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }

// Severity stuft eine Diagnose ein.
type Severity string

const (
	SeverityWarning Severity = "warning"
)

// Diagnostic ist ein nicht-fataler Befund aus einem Walk.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Path     string   `json:"path"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Path, d.Message)
}

// Assignment ist eine emittierte Zuweisung. Path ist der gepunktete
// Modul-Pfad relativ zur Wurzel des Top-Level Targets; Spec ist der
// naechstgelegene lora-Wert entlang des Selector-Pfads.
type Assignment struct {
	Path string      `json:"path"`
	Spec config.Spec `json:"spec"`
}

// Result sammelt die Ausgabe eines Walks fuer ein Top-Level Target.
// Assignments stehen in Traversierungs-Reihenfolge; es wird weder
// sortiert noch dedupliziert (Duplikat-Behandlung ist Sache des
// Injektors). Err ist gesetzt wenn das Target fatal abgebrochen wurde;
// die Assignments sind dann leer, die Diagnostik bleibt erhalten.
type Result struct {
	Target           string       `json:"target"`
	Parameterization string       `json:"parameterization,omitempty"`
	Assignments      []Assignment `json:"assignments"`
	Diagnostics      []Diagnostic `json:"diagnostics,omitempty"`
	Err              error        `json:"-"`
}

// Warnings gibt alle Diagnose-Texte zurueck.
func (r *Result) Warnings() []string {
	out := make([]string, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		out = append(out, d.String())
	}
	return out
}
