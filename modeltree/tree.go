// tree.go - Modul-Baum eines geladenen Modells
//
// Enthaelt:
// - Module: Handle auf ein Submodul mit geordneten Kindern
// - Tree: Wurzel plus Lookup ueber gepunktete Pfade
// - New/FromStateDictKeys: Aufbau aus Modul- bzw. Tensor-Namen
//
// Der Baum ist nach dem Aufbau unveraenderlich und wird vom Resolver
// nur gelesen ("existiert Pfad?", "gib Submodul").
package modeltree

import (
	"errors"
	"fmt"
	"strings"

	"github.com/7blacky7/loraplan/resolver"
)

// Fehler-Definitionen
var (
	ErrNoTensors      = errors.New("keine tensor-namen gefunden")
	ErrHeaderTooLarge = errors.New("safetensors header ueberschreitet limit")
	ErrNotDiffusers   = errors.New("kein diffusers model-verzeichnis (model_index.json fehlt)")
	ErrNoWeights      = errors.New("keine gewichts-dateien gefunden")
	ErrBadCheckpoint  = errors.New("checkpoint-struktur nicht lesbar")
)

// TreeError beschreibt einen Fehler beim Laden eines Modul-Baums.
type TreeError struct {
	Op   string
	Path string
	Err  error
}

func (e *TreeError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("modeltree %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("modeltree %s: %v", e.Op, e.Err)
}

func (e *TreeError) Unwrap() error { return e.Err }

// parameterLeaves sind Blatt-Namen die Parameter benennen, keine Module.
// Sie werden beim Ableiten von Modul-Pfaden aus State-Dict Keys entfernt.
var parameterLeaves = map[string]bool{
	"weight":              true,
	"bias":                true,
	"running_mean":        true,
	"running_var":         true,
	"num_batches_tracked": true,
	"position_ids":        true,
}

// Module ist ein Knoten im Modul-Baum des Live-Modells.
// Kinder behalten ihre Einfuege-Reihenfolge.
type Module struct {
	name     string
	path     string
	children map[string]*Module
	order    []string
}

// Name gibt den lokalen Attributnamen zurueck (z.B. "to_q").
func (m *Module) Name() string { return m.name }

// Path gibt den vollen gepunkteten Pfad ab der Wurzel zurueck.
func (m *Module) Path() string { return m.path }

// Child gibt das direkte Kind mit dem Namen zurueck.
func (m *Module) Child(name string) (*Module, bool) {
	c, ok := m.children[name]
	return c, ok
}

// Children gibt alle direkten Kinder in stabiler Reihenfolge zurueck.
func (m *Module) Children() []*Module {
	out := make([]*Module, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, m.children[name])
	}
	return out
}

// Submodule loest einen gepunkteten Relativ-Pfad Komponente fuer
// Komponente auf. "ff.net.0.proj" ist ein atomarer Lookup ueber vier
// Ebenen; schlaegt eine Komponente fehl, existiert der Pfad nicht.
func (m *Module) Submodule(rel string) (*Module, bool) {
	cur := m
	for _, part := range strings.Split(rel, ".") {
		next, ok := cur.children[part]
		if !ok {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Resolve implementiert resolver.Module.
func (m *Module) Resolve(rel string) (resolver.Module, bool) {
	sub, ok := m.Submodule(rel)
	if !ok {
		return nil, false
	}
	return sub, true
}

// Tree haelt die Wurzel eines Modul-Baums.
type Tree struct {
	root  *Module
	paths []string
	known map[string]bool
}

// New baut einen Baum aus gepunkteten Modul-Pfaden auf.
// Duplikate werden ignoriert, die Reihenfolge bleibt erhalten.
func New(names []string) *Tree {
	t := &Tree{
		root:  &Module{children: map[string]*Module{}},
		known: map[string]bool{},
	}
	for _, name := range names {
		t.insert(name)
	}
	return t
}

// FromStateDictKeys baut einen Baum aus Tensor- bzw. State-Dict Keys auf.
// Parameter-Blaetter ("weight", "bias", ...) werden abgeschnitten, so dass
// die Pfade Module benennen, nicht Parameter.
func FromStateDictKeys(keys []string) *Tree {
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if name := TrimParameterSuffix(k); name != "" {
			names = append(names, name)
		}
	}
	return New(names)
}

// TrimParameterSuffix entfernt ein bekanntes Parameter-Blatt vom Ende
// eines State-Dict Keys. "attn1.to_q.weight" wird zu "attn1.to_q".
func TrimParameterSuffix(key string) string {
	if i := strings.LastIndex(key, "."); i >= 0 && parameterLeaves[key[i+1:]] {
		return key[:i]
	}
	return key
}

// Root gibt die (namenlose) Wurzel des Baums zurueck.
func (t *Tree) Root() *Module { return t.root }

// Lookup loest einen gepunkteten Pfad ab der Wurzel auf.
func (t *Tree) Lookup(path string) (*Module, bool) {
	return t.root.Submodule(path)
}

// Len gibt die Anzahl unterschiedlicher Modul-Pfade zurueck.
func (t *Tree) Len() int { return len(t.paths) }

// Paths gibt alle eingefuegten Modul-Pfade in Einfuege-Reihenfolge zurueck.
func (t *Tree) Paths() []string {
	out := make([]string, len(t.paths))
	copy(out, t.paths)
	return out
}

// insert fuegt einen gepunkteten Pfad samt aller Zwischen-Module ein.
func (t *Tree) insert(name string) {
	if name == "" {
		return
	}

	cur := t.root
	var full string
	for _, part := range strings.Split(name, ".") {
		if full == "" {
			full = part
		} else {
			full += "." + part
		}

		next, ok := cur.children[part]
		if !ok {
			next = &Module{name: part, path: full, children: map[string]*Module{}}
			cur.children[part] = next
			cur.order = append(cur.order, part)
		}
		cur = next
	}

	if !t.known[name] {
		t.known[name] = true
		t.paths = append(t.paths, name)
	}
}
