// cmd_utils.go - Gemeinsame Helfer fuer die Commands
// Hauptfunktionen: loadTrees, displayPath
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/7blacky7/loraplan/envconfig"
	"github.com/7blacky7/loraplan/modeltree"
	"github.com/7blacky7/loraplan/resolver"
)

// loadTrees - Laedt die Modul-Baeume fuer die angefragten Targets
//
// Akzeptiert:
//   - diffusers Model-Verzeichnis (model_index.json): je Target ein Baum
//   - Verzeichnis mit safetensors Shards: ein Baum fuer alle Targets
//   - einzelne .safetensors Datei: ein Baum fuer alle Targets
//   - PyTorch Checkpoint (.bin/.pt/.ckpt): ein Baum fuer alle Targets
func loadTrees(modelPath string, targets []string) (map[string]resolver.Module, error) {
	fi, err := os.Stat(modelPath)
	if err != nil {
		return nil, err
	}

	if fi.IsDir() && modeltree.IsDiffusersDir(modelPath) {
		compTrees, err := modeltree.LoadDiffusers(modelPath, targets...)
		if err != nil {
			return nil, err
		}
		trees := make(map[string]resolver.Module, len(compTrees))
		for name, tree := range compTrees {
			trees[name] = tree.Root()
		}
		return trees, nil
	}

	tree, err := loadSingleTree(modelPath)
	if err != nil {
		return nil, err
	}
	return shared(tree, targets), nil
}

// loadSingleTree - Laedt ein Modell das in einem Baum landet
func loadSingleTree(modelPath string) (*modeltree.Tree, error) {
	fi, err := os.Stat(modelPath)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return modeltree.LoadSafetensorsDir(modelPath)
	}

	switch ext := filepath.Ext(modelPath); ext {
	case ".safetensors":
		return modeltree.LoadSafetensors(modelPath)
	case ".bin", ".pt", ".ckpt":
		return modeltree.LoadTorch(modelPath)
	default:
		return nil, fmt.Errorf("unsupported model file type %q", ext)
	}
}

// shared - Ein Baum dient als Wurzel fuer alle Targets
func shared(tree *modeltree.Tree, targets []string) map[string]resolver.Module {
	trees := make(map[string]resolver.Module, len(targets))
	for _, name := range targets {
		trees[name] = tree.Root()
	}
	return trees
}

// displayPath - Modul-Pfad mit konfiguriertem Separator formatieren
func displayPath(path string) string {
	if sep := envconfig.Separator(); sep != "." {
		return strings.ReplaceAll(path, ".", sep)
	}
	return path
}
