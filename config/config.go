// config.go - Typen fuer die LoRA Selector-Baum Konfiguration
//
// Enthaelt Typen fuer:
// - LoRA Hyperparameter (Spec)
// - Selector-Knoten (Node) mit index/lora/targets
// - Top-Level Targets (Target: unet, text_encoder)
// - Dokument-Wurzel (Root)
//
// HINWEIS: YAML-Anker (&lora/*lora) werden beim Parsen zu unabhaengigen
// Wert-Kopien aufgeloest. Eine Spec ist nach dem Laden unveraenderlich.
package config

import (
	"errors"
	"fmt"
)

// Namen der Top-Level Targets im Dokument
const (
	TargetUNet        = "unet"
	TargetTextEncoder = "text_encoder"
)

// Fehler-Definitionen
var (
	ErrEmptyConfig    = errors.New("config enthaelt weder unet noch text_encoder")
	ErrMalformedNode  = errors.New("node braucht index, lora oder targets")
	ErrInvalidRank    = errors.New("rank muss >= 1 sein")
	ErrInvalidDropout = errors.New("dropout muss in [0,1) liegen")
)

// ConfigError beschreibt einen Fehler beim Laden oder Validieren.
// Path zeigt auf die betroffene Stelle im Dokument, z.B. "unet.targets[0]".
type ConfigError struct {
	Op   string
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("config %s: %v", e.Op, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// Spec ist ein unveraenderliches LoRA Hyperparameter-Buendel.
type Spec struct {
	Rank    int     `yaml:"rank" json:"rank"`
	Alpha   float64 `yaml:"alpha" json:"alpha"`
	Dropout float64 `yaml:"dropout" json:"dropout"`
}

// Node ist ein Knoten im Selector-Baum.
//
// Index schraenkt ein, auf welche Submodul-Namen der Knoten angewendet wird.
// Jeder Eintrag ist ein literaler Name; gepunktete Eintraege ("ff.net.0.proj")
// sind EIN atomarer Lookup ueber mehrere Ebenen, keine Wildcards.
// Fehlt Index, gilt der Knoten fuer die aktuelle Position selbst.
//
// Lora ersetzt (nicht feldweise gemerged) den geerbten Wert fuer den
// gesamten Teilbaum. Targets sind geordnete Kind-Knoten; ein Knoten ohne
// Targets ist ein Terminal und erzeugt Assignments.
type Node struct {
	Index   []string `yaml:"index"`
	Lora    *Spec    `yaml:"lora"`
	Targets []Node   `yaml:"targets"`
}

// Terminal meldet ob der Knoten ein Anwendungspunkt ist (keine Kinder).
// Ein leeres "targets: []" zaehlt ebenfalls als Terminal.
func (n *Node) Terminal() bool { return len(n.Targets) == 0 }

// Target ist ein Top-Level Eintrag (unet oder text_encoder).
// Parameterization ist reines Durchreich-Metadatum (z.B. "eps") und
// spielt fuer das Matching keine Rolle.
type Target struct {
	Parameterization string `yaml:"parameterization"`
	Node             `yaml:",inline"`
}

// Root ist das geparste Konfigurationsdokument.
//
// Lora auf Wurzel-Ebene dient nur als Anker-Definition fuer
// Wiederverwendung per YAML-Alias; es ist KEIN globaler Default und
// beeinflusst die Aufloesung nicht.
type Root struct {
	Lora        *Spec   `yaml:"lora"`
	UNet        *Target `yaml:"unet"`
	TextEncoder *Target `yaml:"text_encoder"`
}

// Targets gibt die vorhandenen Top-Level Targets in stabiler
// Dokument-Reihenfolge zurueck (unet vor text_encoder).
func (r *Root) Targets() []string {
	var keys []string
	if r.UNet != nil {
		keys = append(keys, TargetUNet)
	}
	if r.TextEncoder != nil {
		keys = append(keys, TargetTextEncoder)
	}
	return keys
}

// Target gibt den Top-Level Eintrag zum Namen zurueck.
func (r *Root) Target(name string) (*Target, bool) {
	switch name {
	case TargetUNet:
		if r.UNet != nil {
			return r.UNet, true
		}
	case TargetTextEncoder:
		if r.TextEncoder != nil {
			return r.TextEncoder, true
		}
	}
	return nil, false
}
