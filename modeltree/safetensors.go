// safetensors.go - Tensor-Namen aus safetensors Dateien lesen
//
// Liest nur den JSON-Header (8 Byte little-endian Laenge + JSON-Blob),
// nie die Gewichts-Daten selbst. Die Reihenfolge der Tensor-Eintraege
// im Header bleibt ueber eine geordnete Map erhalten, damit der
// resultierende Baum deterministisch ist.
package modeltree

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/sync/errgroup"
)

// Header-Metadaten-Key der keinen Tensor benennt
const safetensorsMetadataKey = "__metadata__"

// maxHeaderSize begrenzt die akzeptierte Header-Groesse (Schutz gegen
// kaputte Dateien, reale Header liegen im KB- bis MB-Bereich).
const maxHeaderSize = 256 << 20

// LoadSafetensors liest eine einzelne safetensors Datei und baut den
// Modul-Baum aus ihren Tensor-Namen auf.
func LoadSafetensors(path string) (*Tree, error) {
	keys, err := safetensorsKeys(path)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, &TreeError{Op: "safetensors", Path: path, Err: ErrNoTensors}
	}
	return FromStateDictKeys(keys), nil
}

// LoadSafetensorsDir liest alle safetensors Shards eines Verzeichnisses.
//
// Existiert ein "*.safetensors.index.json", liefert dessen weight_map die
// Tensor-Namen in Datei-Reihenfolge ohne die Shards anzufassen. Sonst
// werden die Shard-Header nebenlaeufig gelesen und in sortierter
// Dateinamen-Reihenfolge zusammengefuehrt.
func LoadSafetensorsDir(dir string) (*Tree, error) {
	indexes, err := filepath.Glob(filepath.Join(dir, "*.safetensors.index.json"))
	if err != nil {
		return nil, &TreeError{Op: "glob", Path: dir, Err: err}
	}
	if len(indexes) > 0 {
		sort.Strings(indexes)
		return loadSafetensorsIndex(indexes[0])
	}

	shards, err := filepath.Glob(filepath.Join(dir, "*.safetensors"))
	if err != nil {
		return nil, &TreeError{Op: "glob", Path: dir, Err: err}
	}
	if len(shards) == 0 {
		return nil, &TreeError{Op: "scan", Path: dir, Err: ErrNoWeights}
	}
	sort.Strings(shards)

	if len(shards) > 1 {
		slog.Debug("reading safetensors shards", "dir", dir, "shards", len(shards))
	}

	perShard := make([][]string, len(shards))

	var g errgroup.Group
	g.SetLimit(max(runtime.GOMAXPROCS(0)-1, 1))
	for i, shard := range shards {
		i, shard := i, shard
		g.Go(func() error {
			keys, err := safetensorsKeys(shard)
			if err != nil {
				return err
			}
			perShard[i] = keys
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var keys []string
	for _, ks := range perShard {
		keys = append(keys, ks...)
	}
	if len(keys) == 0 {
		return nil, &TreeError{Op: "scan", Path: dir, Err: ErrNoTensors}
	}
	return FromStateDictKeys(keys), nil
}

// loadSafetensorsIndex liest die weight_map eines index.json in
// Dokument-Reihenfolge.
func loadSafetensorsIndex(path string) (*Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TreeError{Op: "index", Path: path, Err: err}
	}

	idx := struct {
		WeightMap *orderedmap.OrderedMap[string, string] `json:"weight_map"`
	}{
		WeightMap: orderedmap.New[string, string](),
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, &TreeError{Op: "index", Path: path, Err: err}
	}
	if idx.WeightMap.Len() == 0 {
		return nil, &TreeError{Op: "index", Path: path, Err: ErrNoTensors}
	}

	keys := make([]string, 0, idx.WeightMap.Len())
	for pair := idx.WeightMap.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return FromStateDictKeys(keys), nil
}

// safetensorsKeys liest die Tensor-Namen aus dem Header einer Datei.
func safetensorsKeys(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &TreeError{Op: "open", Path: path, Err: err}
	}
	defer f.Close()

	var sizeBuf [8]byte
	if _, err := io.ReadFull(f, sizeBuf[:]); err != nil {
		return nil, &TreeError{Op: "header", Path: path, Err: err}
	}

	size := binary.LittleEndian.Uint64(sizeBuf[:])
	if size > maxHeaderSize {
		return nil, &TreeError{Op: "header", Path: path, Err: fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, size)}
	}

	header := make([]byte, size)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, &TreeError{Op: "header", Path: path, Err: err}
	}

	entries := orderedmap.New[string, json.RawMessage]()
	if err := json.Unmarshal(header, &entries); err != nil {
		return nil, &TreeError{Op: "header", Path: path, Err: err}
	}

	keys := make([]string, 0, entries.Len())
	for pair := entries.Oldest(); pair != nil; pair = pair.Next() {
		if pair.Key == safetensorsMetadataKey {
			continue
		}
		keys = append(keys, pair.Key)
	}
	return keys, nil
}
