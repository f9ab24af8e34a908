// torch.go - Tensor-Namen aus PyTorch Checkpoints lesen
//
// Laedt .bin/.pt/.ckpt Dateien ueber gopickle und sammelt nur die
// State-Dict Keys ein; Tensor-Inhalte werden verworfen. Lightning
// Checkpoints verschachteln das State-Dict unter "state_dict".
package modeltree

import (
	"fmt"
	"sort"

	"github.com/nlpodyssey/gopickle/pytorch"
	"github.com/nlpodyssey/gopickle/types"
)

// Key unter dem Trainings-Checkpoints ihr State-Dict ablegen
const stateDictKey = "state_dict"

// LoadTorch liest einen PyTorch Checkpoint und baut den Modul-Baum aus
// seinen State-Dict Keys auf.
func LoadTorch(path string) (*Tree, error) {
	obj, err := pytorch.Load(path)
	if err != nil {
		return nil, &TreeError{Op: "torch", Path: path, Err: err}
	}

	keys, err := stateDictKeys(obj)
	if err != nil {
		return nil, &TreeError{Op: "torch", Path: path, Err: err}
	}
	if len(keys) == 0 {
		return nil, &TreeError{Op: "torch", Path: path, Err: ErrNoTensors}
	}
	return FromStateDictKeys(keys), nil
}

// stateDictKeys extrahiert die Keys aus dem entpickelten Objekt.
// Ein verschachteltes "state_dict" wird einmal ausgepackt.
func stateDictKeys(obj any) ([]string, error) {
	if nested, ok := dictGet(obj, stateDictKey); ok {
		if keys, err := dictKeys(nested); err == nil {
			return keys, nil
		}
	}
	return dictKeys(obj)
}

// dictKeys sammelt die String-Keys eines entpickelten Dicts ein.
// types.Dict behaelt die Pickle-Reihenfolge; bei types.OrderedDict wird
// sortiert, damit das Ergebnis deterministisch bleibt.
func dictKeys(obj any) ([]string, error) {
	switch d := obj.(type) {
	case *types.Dict:
		var keys []string
		for _, k := range d.Keys() {
			if s, ok := k.(string); ok {
				keys = append(keys, s)
			}
		}
		return keys, nil
	case *types.OrderedDict:
		var keys []string
		for k := range d.Map {
			if s, ok := k.(string); ok {
				keys = append(keys, s)
			}
		}
		sort.Strings(keys)
		return keys, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrBadCheckpoint, obj)
	}
}

// dictGet schlaegt einen Key in einem entpickelten Dict nach.
func dictGet(obj any, key string) (any, bool) {
	switch d := obj.(type) {
	case *types.Dict:
		return d.Get(key)
	case *types.OrderedDict:
		if e, ok := d.Map[key]; ok {
			return e.Value, true
		}
	}
	return nil, false
}
