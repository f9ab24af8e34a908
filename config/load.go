// load.go - Laden und Validieren der Selector-Baum Konfiguration
//
// Laedt YAML-Dokumente in Root und validiert die Struktur bevor
// irgendein Walk beginnt. Validierungsfehler sind fatal: ein
// widerspruechliches Dokument erreicht den Resolver nie.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load parst ein Konfigurationsdokument aus rohen Bytes.
// Unbekannte Felder sind ein Fehler (Tippfehler-Schutz).
func Load(data []byte) (*Root, error) {
	return LoadReader(bytes.NewReader(data))
}

// LoadFile laedt ein Konfigurationsdokument von einem Pfad.
func LoadFile(path string) (*Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	root, err := LoadReader(f)
	if err != nil {
		var ce *ConfigError
		if errors.As(err, &ce) && ce.Path == "" {
			ce.Path = path
		}
		return nil, err
	}
	return root, nil
}

// LoadReader parst ein Konfigurationsdokument aus einem Reader.
func LoadReader(r io.Reader) (*Root, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var root Root
	if err := dec.Decode(&root); err != nil {
		return nil, &ConfigError{Op: "parse", Err: err}
	}

	if err := root.Validate(); err != nil {
		return nil, err
	}
	return &root, nil
}

// Validate prueft das ganze Dokument. Gibt den ersten Fehler zurueck.
func (r *Root) Validate() error {
	if r.UNet == nil && r.TextEncoder == nil {
		return &ConfigError{Op: "validate", Err: ErrEmptyConfig}
	}

	if r.Lora != nil {
		if err := r.Lora.Validate(); err != nil {
			return &ConfigError{Op: "validate", Path: "lora", Err: err}
		}
	}

	for _, name := range r.Targets() {
		t, _ := r.Target(name)
		if err := validateNode(&t.Node, name); err != nil {
			return err
		}
	}
	return nil
}

// Validate prueft die Hyperparameter-Grenzen einer Spec.
func (s *Spec) Validate() error {
	if s.Rank < 1 {
		return fmt.Errorf("%w: rank=%d", ErrInvalidRank, s.Rank)
	}
	if s.Dropout < 0 || s.Dropout >= 1 {
		return fmt.Errorf("%w: dropout=%g", ErrInvalidDropout, s.Dropout)
	}
	return nil
}

// validateNode prueft einen Knoten rekursiv.
//
// Ein Knoten ohne index, lora UND targets ist bedeutungslos
// (MalformedNode). Ein Knoten nur mit index ist ein gueltiges Terminal,
// das sein lora aus der Vorfahren-Kette erbt; ebenso ist ein vorhandenes
// aber leeres "targets: []" formal gueltig. Ob an einem Terminal ein
// wirksames lora existiert entscheidet erst der Resolver.
func validateNode(n *Node, path string) error {
	if n.Index == nil && n.Lora == nil && n.Targets == nil {
		return &ConfigError{Op: "validate", Path: path, Err: ErrMalformedNode}
	}

	if n.Lora != nil {
		if err := n.Lora.Validate(); err != nil {
			return &ConfigError{Op: "validate", Path: path + ".lora", Err: err}
		}
	}

	for i := range n.Targets {
		child := &n.Targets[i]
		if err := validateNode(child, fmt.Sprintf("%s.targets[%d]", path, i)); err != nil {
			return err
		}
	}
	return nil
}
