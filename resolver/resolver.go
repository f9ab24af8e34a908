// MODUL: resolver
// ZWECK: Selector-Baum Aufloesung gegen den Modul-Baum eines Live-Modells
// INPUT: config.Target (Selector-Baum), Module (Wurzel des Modul-Baums)
// OUTPUT: Result mit geordneten Assignments und Diagnostik
// NEBENEFFEKTE: slog-Warnungen fuer unerreichbare index-Eintraege
// ABHAENGIGKEITEN: config, log/slog (Standard-Library)
// HINWEISE: Reine Funktion der Eingaben, single-threaded, idempotent.
//           Tiefensuche in Pre-Order, index-Expansion in Listen-Reihenfolge.

package resolver

import (
	"log/slog"

	"github.com/7blacky7/loraplan/config"
)

// ============================================================================
// Module - Handle auf ein Submodul des Live-Modells
// ============================================================================

// Module ist die einzige Faehigkeit die der Resolver vom Modell braucht:
// "existiert dieser Pfad?" und "gib mir das Submodul". Gepunktete
// Relativ-Pfade ("ff.net.0.proj") sind EIN atomarer Lookup; der
// Implementierer loest die Komponenten der Reihe nach auf.
type Module interface {
	// Path gibt den vollen gepunkteten Pfad des Moduls zurueck.
	Path() string

	// Resolve loest einen gepunkteten Relativ-Pfad auf.
	Resolve(rel string) (Module, bool)
}

// ============================================================================
// Resolve - Aufloesung eines Top-Level Targets
// ============================================================================

// Resolve loest einen Selector-Baum gegen die Wurzel eines Modul-Baums auf.
//
// Pro Terminal-Knoten entsteht eine Assignment je konkret aufgeloester
// Position, mit der naechstgelegenen lora-Spec entlang des Pfads
// (eigener Wert ERSETZT den geerbten, kein feldweises Mergen).
// Unerreichbare index-Eintraege werden als Warnung gesammelt und
// uebersprungen. Ein Terminal ohne wirksame Spec bricht das gesamte
// Target ab (ErrMissingHyperparameter); das Result traegt dann den
// Fehler und die bis dahin gesammelte Diagnostik, aber keine
// Assignments.
func Resolve(name string, target *config.Target, root Module) (*Result, error) {
	res := &Result{
		Target:           name,
		Parameterization: target.Parameterization,
	}
	if err := walk(&target.Node, root, nil, res); err != nil {
		res.Assignments = nil
		res.Err = err
		return res, err
	}
	return res, nil
}

// ResolveAll loest alle vorhandenen Top-Level Targets unabhaengig
// voneinander auf. Ein fataler Fehler in einem Target stoppt die
// anderen nicht; das betroffene Result traegt den Fehler in Err,
// behaelt seine Diagnostik und enthaelt keine Assignments.
func ResolveAll(cfg *config.Root, trees map[string]Module) []*Result {
	var results []*Result
	for _, name := range cfg.Targets() {
		target, _ := cfg.Target(name)

		root, ok := trees[name]
		if !ok {
			results = append(results, &Result{
				Target:           name,
				Parameterization: target.Parameterization,
				Err:              &ResolveError{Target: name, Err: ErrNoModuleTree},
			})
			continue
		}

		res, _ := Resolve(name, target, root)
		results = append(results, res)
	}
	return results
}

// ============================================================================
// walk - rekursiver Abstieg
// ============================================================================

// walk verarbeitet einen Selector-Knoten an einer Modul-Position.
//
// Ablauf pro Knoten:
//  1. Wirksame Spec bestimmen: eigener lora-Wert oder geerbter.
//  2. index gegen die Position expandieren (fehlt index, gilt die
//     Position selbst).
//  3. Terminal: je Position eine Assignment emittieren.
//     Sonst: Kinder in targets-Reihenfolge an jeder Position besuchen.
//
// Geschwister-Knoten sind unabhaengige Alternativen: matchen zwei
// Selektoren denselben Pfad, werden beide Assignments emittiert.
func walk(node *config.Node, pos Module, inherited *config.Spec, res *Result) error {
	eff := inherited
	if node.Lora != nil {
		eff = node.Lora
	}

	positions := []Module{pos}
	if len(node.Index) > 0 {
		positions = positions[:0]
		for _, entry := range node.Index {
			sub, ok := pos.Resolve(entry)
			if !ok {
				missing := joinPath(pos.Path(), entry)
				slog.Warn("index entry does not match any module", "target", res.Target, "path", missing)
				res.Diagnostics = append(res.Diagnostics, Diagnostic{
					Severity: SeverityWarning,
					Path:     missing,
					Message:  "index entry does not match any module",
				})
				continue
			}
			positions = append(positions, sub)
		}
	}

	if node.Terminal() {
		for _, p := range positions {
			if eff == nil {
				return &ResolveError{Target: res.Target, Path: p.Path(), Err: ErrMissingHyperparameter}
			}
			res.Assignments = append(res.Assignments, Assignment{Path: p.Path(), Spec: *eff})
		}
		return nil
	}

	for _, p := range positions {
		for i := range node.Targets {
			if err := walk(&node.Targets[i], p, eff, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// joinPath haengt einen Relativ-Pfad an einen Modul-Pfad an.
func joinPath(base, rel string) string {
	if base == "" {
		return rel
	}
	return base + "." + rel
}
