// load_test.go - Unit Tests fuer Laden und Validieren der Konfiguration
package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exampleYAML entspricht der Struktur einer echten Trainings-Konfiguration:
// ein geteilter lora-Anker, unet und text_encoder Selector-Baeume.
const exampleYAML = `
lora: &lora
  rank: 16
  alpha: 1
  dropout: 0.0

unet:
  parameterization: eps
  targets:
    - index: [down_blocks.0, down_blocks.1, down_blocks.2]
      targets:
        - index: [attentions.0, attentions.1]
          targets:
            - index: [transformer_blocks.0]
              targets:
                - index: [attn1, attn2]
                  targets:
                    - index: [to_q, to_k, to_v]
                      lora: *lora
                - index: [ff.net.0.proj]
                  lora: *lora

text_encoder:
  targets:
    - index: [text_model.encoder]
      targets:
        - index: [layers.0, layers.1]
          targets:
            - index: [self_attn]
              targets:
                - index: [q_proj, k_proj, v_proj]
                  lora: *lora
`

// TestLoad testet das Laden eines vollstaendigen Dokuments
func TestLoad(t *testing.T) {
	cfg, err := Load([]byte(exampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{TargetUNet, TargetTextEncoder}, cfg.Targets())
	assert.Equal(t, "eps", cfg.UNet.Parameterization)
	assert.Equal(t, "", cfg.TextEncoder.Parameterization)

	require.NotNil(t, cfg.Lora)
	assert.Equal(t, Spec{Rank: 16, Alpha: 1, Dropout: 0}, *cfg.Lora)

	require.Len(t, cfg.UNet.Targets, 1)
	blocks := cfg.UNet.Targets[0]
	assert.Equal(t, []string{"down_blocks.0", "down_blocks.1", "down_blocks.2"}, blocks.Index)
	assert.False(t, blocks.Terminal())

	attn := blocks.Targets[0].Targets[0].Targets[0]
	require.Len(t, attn.Targets, 1)
	leaf := attn.Targets[0]
	assert.True(t, leaf.Terminal())
	require.NotNil(t, leaf.Lora)
	assert.Equal(t, Spec{Rank: 16, Alpha: 1, Dropout: 0}, *leaf.Lora)
}

// TestLoad_AliasIsValueCopy testet dass YAML-Aliase unabhaengige Kopien sind
func TestLoad_AliasIsValueCopy(t *testing.T) {
	cfg, err := Load([]byte(exampleYAML))
	require.NoError(t, err)

	leafA := cfg.UNet.Targets[0].Targets[0].Targets[0].Targets[0].Targets[0].Lora
	leafB := cfg.UNet.Targets[0].Targets[0].Targets[0].Targets[1].Lora
	require.NotNil(t, leafA)
	require.NotNil(t, leafB)

	// Gleicher Wert, aber keine geteilte Zelle
	assert.Equal(t, *leafA, *leafB)
	leafA.Rank = 99
	assert.Equal(t, 16, leafB.Rank)
}

// TestLoad_Errors testet Parse- und Validierungsfehler
func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{
			"leeres Dokument",
			`lora: {rank: 16, alpha: 1, dropout: 0.0}`,
			ErrEmptyConfig,
		},
		{
			"leerer Knoten",
			"unet:\n  targets:\n    - {}\n",
			ErrMalformedNode,
		},
		{
			"rank null",
			"unet:\n  targets:\n    - lora: {rank: 0, alpha: 1, dropout: 0.0}\n",
			ErrInvalidRank,
		},
		{
			"dropout eins",
			"unet:\n  targets:\n    - lora: {rank: 4, alpha: 1, dropout: 1.0}\n",
			ErrInvalidDropout,
		},
		{
			"negativer dropout",
			"unet:\n  targets:\n    - lora: {rank: 4, alpha: 1, dropout: -0.1}\n",
			ErrInvalidDropout,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// TestLoad_UnknownField testet den Tippfehler-Schutz
func TestLoad_UnknownField(t *testing.T) {
	_, err := Load([]byte("unet:\n  targets:\n    - indx: [down_blocks.0]\n      lora: {rank: 4, alpha: 1, dropout: 0.0}\n"))
	require.Error(t, err)

	var ce *ConfigError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "parse", ce.Op)
}

// TestLoad_IndexOnlyTerminal testet dass ein Terminal nur mit index
// gueltig ist und sein lora aus der Vorfahren-Kette erben darf
func TestLoad_IndexOnlyTerminal(t *testing.T) {
	cfg, err := Load([]byte(`
unet:
  targets:
    - index: [attn]
      lora: {rank: 8, alpha: 1, dropout: 0.0}
      targets:
        - index: [to_q, to_k]
`))
	require.NoError(t, err)

	leaf := cfg.UNet.Targets[0].Targets[0]
	assert.True(t, leaf.Terminal())
	assert.Nil(t, leaf.Lora)
	assert.Equal(t, []string{"to_q", "to_k"}, leaf.Index)
}

// TestLoad_EmptyTargetsIsValid testet dass "targets: []" formal gueltig ist
func TestLoad_EmptyTargetsIsValid(t *testing.T) {
	cfg, err := Load([]byte("unet:\n  targets: []\n"))
	require.NoError(t, err)
	assert.True(t, cfg.UNet.Terminal())
	assert.NotNil(t, cfg.UNet.Targets)
}

// TestValidate_RootAnchorSpec testet dass der Wurzel-Anker geprueft wird
func TestValidate_RootAnchorSpec(t *testing.T) {
	_, err := Load([]byte("lora: {rank: -1, alpha: 1, dropout: 0.0}\nunet:\n  targets: []\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRank)
}
