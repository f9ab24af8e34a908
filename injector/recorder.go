// recorder.go - Aufzeichnender Injector fuer Dry-Runs und Tests
package injector

import (
	"fmt"

	"github.com/7blacky7/loraplan/config"
	"github.com/7blacky7/loraplan/resolver"
)

// DuplicatePolicy legt fest wie der Recorder mit doppelten Pfaden umgeht.
type DuplicatePolicy int

const (
	// DuplicateAllow zeichnet Duplikate unveraendert auf.
	DuplicateAllow DuplicatePolicy = iota

	// DuplicateOverwrite behaelt nur die letzte Spec je Pfad.
	DuplicateOverwrite

	// DuplicateReject lehnt den zweiten Versuch fuer einen Pfad ab.
	DuplicateReject
)

// Attachment ist eine aufgezeichnete Injektion.
type Attachment struct {
	Path string
	Spec config.Spec
}

// Recorder ist ein Injector der nichts ans Modell anfasst, sondern nur
// aufzeichnet. Null-Wert ist benutzbar (Policy DuplicateAllow).
type Recorder struct {
	Policy      DuplicatePolicy
	attachments []Attachment
	byPath      map[string]int
}

// Attach implementiert Injector.
func (r *Recorder) Attach(mod resolver.Module, spec config.Spec) error {
	if r.byPath == nil {
		r.byPath = map[string]int{}
	}

	path := mod.Path()
	if i, seen := r.byPath[path]; seen {
		switch r.Policy {
		case DuplicateOverwrite:
			r.attachments[i].Spec = spec
			return nil
		case DuplicateReject:
			return fmt.Errorf("%w: %s", ErrDuplicatePath, path)
		}
	}

	r.byPath[path] = len(r.attachments)
	r.attachments = append(r.attachments, Attachment{Path: path, Spec: spec})
	return nil
}

// Attachments gibt die Aufzeichnung in Anfuege-Reihenfolge zurueck.
func (r *Recorder) Attachments() []Attachment {
	out := make([]Attachment, len(r.attachments))
	copy(out, r.attachments)
	return out
}

// Len gibt die Anzahl aufgezeichneter Injektionen zurueck.
func (r *Recorder) Len() int { return len(r.attachments) }
