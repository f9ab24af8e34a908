// diffusers.go - Modul-Baeume aus einem diffusers Model-Verzeichnis
//
// Erkennt die diffusers Verzeichnis-Struktur anhand der model_index.json
// und laedt die gewichtstragenden Komponenten (unet, text_encoder) in je
// einen eigenen Baum. safetensors wird bevorzugt, PyTorch-Dateien sind
// der Fallback.
package modeltree

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Dateiname des diffusers Manifests
const diffusersIndexFile = "model_index.json"

// defaultComponents sind die Komponenten die fuer LoRA-Injektion
// relevant sind.
var defaultComponents = []string{"unet", "text_encoder"}

// torchExtensions sind Endungen von PyTorch Gewichts-Dateien.
var torchExtensions = []string{".bin", ".pt", ".ckpt"}

// IsDiffusersDir prueft ob ein Verzeichnis ein diffusers Modell enthaelt.
func IsDiffusersDir(dir string) bool {
	fi, err := os.Stat(filepath.Join(dir, diffusersIndexFile))
	return err == nil && !fi.IsDir()
}

// LoadDiffusers laedt die angegebenen Komponenten eines diffusers
// Modells. Ohne components werden unet und text_encoder geladen.
// Im Manifest fehlende oder gewichtslose Komponenten werden mit
// Warnung uebersprungen; das Ergebnis enthaelt nur geladene Baeume.
func LoadDiffusers(dir string, components ...string) (map[string]*Tree, error) {
	data, err := os.ReadFile(filepath.Join(dir, diffusersIndexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &TreeError{Op: "diffusers", Path: dir, Err: ErrNotDiffusers}
		}
		return nil, &TreeError{Op: "diffusers", Path: dir, Err: err}
	}

	var index map[string]json.RawMessage
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, &TreeError{Op: "diffusers", Path: filepath.Join(dir, diffusersIndexFile), Err: err}
	}

	if len(components) == 0 {
		components = defaultComponents
	}

	trees := make(map[string]*Tree, len(components))
	for _, comp := range components {
		if _, listed := index[comp]; !listed {
			slog.Warn("component not listed in model_index.json", "component", comp, "dir", dir)
		}

		compDir := filepath.Join(dir, comp)
		if fi, err := os.Stat(compDir); err != nil || !fi.IsDir() {
			slog.Warn("component directory missing, skipping", "component", comp, "dir", compDir)
			continue
		}

		tree, err := loadComponent(compDir)
		if err != nil {
			return nil, err
		}
		trees[comp] = tree
	}

	if len(trees) == 0 {
		return nil, &TreeError{Op: "diffusers", Path: dir, Err: ErrNoWeights}
	}
	return trees, nil
}

// loadComponent laedt die Gewichts-Datei eines Komponenten-Verzeichnisses.
func loadComponent(dir string) (*Tree, error) {
	st, err := filepath.Glob(filepath.Join(dir, "*.safetensors*"))
	if err != nil {
		return nil, &TreeError{Op: "glob", Path: dir, Err: err}
	}
	if len(st) > 0 {
		return LoadSafetensorsDir(dir)
	}

	for _, ext := range torchExtensions {
		matches, err := filepath.Glob(filepath.Join(dir, "*"+ext))
		if err != nil {
			return nil, &TreeError{Op: "glob", Path: dir, Err: err}
		}
		if len(matches) == 0 {
			continue
		}
		sort.Strings(matches)
		return LoadTorch(matches[0])
	}

	return nil, &TreeError{Op: "scan", Path: dir, Err: ErrNoWeights}
}
