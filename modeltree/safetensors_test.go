// safetensors_test.go - Unit Tests fuer das Lesen von safetensors Headern
package modeltree

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// writeSafetensors schreibt eine minimale safetensors Datei mit den
// gegebenen Tensor-Namen. Die Daten-Offsets zeigen auf einen leeren
// Payload; der Reader liest ohnehin nur den Header.
func writeSafetensors(t *testing.T, path string, names ...string) {
	t.Helper()

	header := "{"
	for i, name := range names {
		if i > 0 {
			header += ","
		}
		b, _ := json.Marshal(name)
		header += string(b) + `:{"dtype":"F16","shape":[1],"data_offsets":[0,2]}`
	}
	header += "}"

	var buf []byte
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(header)))
	buf = append(buf, header...)
	buf = append(buf, 0, 0)

	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestLoadSafetensors testet eine einzelne Datei
func TestLoadSafetensors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	writeSafetensors(t, path,
		"down_blocks.0.attn1.to_q.weight",
		"down_blocks.0.attn1.to_q.bias",
		"down_blocks.0.attn1.to_k.weight",
	)

	tree, err := LoadSafetensors(path)
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"down_blocks.0.attn1.to_q", "down_blocks.0.attn1.to_k"}
	if diff := cmp.Diff(want, tree.Paths()); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadSafetensors_SkipsMetadata testet dass __metadata__ kein Tensor ist
func TestLoadSafetensors_SkipsMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")

	header := `{"__metadata__":{"format":"pt"},"attn.to_q.weight":{"dtype":"F16","shape":[1],"data_offsets":[0,2]}}`
	var buf []byte
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(header)))
	buf = append(buf, header...)
	buf = append(buf, 0, 0)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := LoadSafetensors(path)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"attn.to_q"}, tree.Paths()); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadSafetensors_HeaderTooLarge testet das Groessen-Limit
func TestLoadSafetensors_HeaderTooLarge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.safetensors")

	var buf []byte
	buf = binary.LittleEndian.AppendUint64(buf, uint64(maxHeaderSize)+1)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadSafetensors(path)
	if !errors.Is(err, ErrHeaderTooLarge) {
		t.Errorf("err = %v, want ErrHeaderTooLarge", err)
	}
}

// TestLoadSafetensorsDir_Shards testet das Mergen mehrerer Shards
func TestLoadSafetensorsDir_Shards(t *testing.T) {
	dir := t.TempDir()
	writeSafetensors(t, filepath.Join(dir, "model-00001-of-00002.safetensors"),
		"encoder.layers.0.q_proj.weight")
	writeSafetensors(t, filepath.Join(dir, "model-00002-of-00002.safetensors"),
		"encoder.layers.1.q_proj.weight")

	tree, err := LoadSafetensorsDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Shard-Reihenfolge nach Dateinamen
	want := []string{"encoder.layers.0.q_proj", "encoder.layers.1.q_proj"}
	if diff := cmp.Diff(want, tree.Paths()); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadSafetensorsDir_Index testet den index.json Weg ohne Shard-Zugriff
func TestLoadSafetensorsDir_Index(t *testing.T) {
	dir := t.TempDir()

	index := `{"metadata":{"total_size":4},"weight_map":{` +
		`"encoder.layers.1.q_proj.weight":"model-00002-of-00002.safetensors",` +
		`"encoder.layers.0.q_proj.weight":"model-00001-of-00002.safetensors"}}`
	if err := os.WriteFile(filepath.Join(dir, "model.safetensors.index.json"), []byte(index), 0o644); err != nil {
		t.Fatal(err)
	}

	tree, err := LoadSafetensorsDir(dir)
	if err != nil {
		t.Fatal(err)
	}

	// Dokument-Reihenfolge der weight_map, nicht alphabetisch
	want := []string{"encoder.layers.1.q_proj", "encoder.layers.0.q_proj"}
	if diff := cmp.Diff(want, tree.Paths()); diff != "" {
		t.Errorf("Paths mismatch (-want +got):\n%s", diff)
	}
}

// TestLoadSafetensorsDir_Empty testet ein Verzeichnis ohne Gewichte
func TestLoadSafetensorsDir_Empty(t *testing.T) {
	_, err := LoadSafetensorsDir(t.TempDir())
	if !errors.Is(err, ErrNoWeights) {
		t.Errorf("err = %v, want ErrNoWeights", err)
	}
}
