package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSchemaAcceptsEmptyDocument(t *testing.T) {
	assert.NoError(t, validateSchema(nil))
	assert.NoError(t, validateSchema(map[string]interface{}{}))
}

func TestValidateSchemaAcceptsWellFormedDocument(t *testing.T) {
	raw := map[string]interface{}{
		"analysis": map[string]interface{}{
			"similarity_threshold": 80,
			"overlap_threshold":    0.6,
		},
		"match": map[string]interface{}{
			"parallel":               "on",
			"progressive_thresholds": []interface{}{90, 80, 70},
		},
	}
	assert.NoError(t, validateSchema(raw))
}

func TestValidateSchemaRejectsWrongType(t *testing.T) {
	raw := map[string]interface{}{
		"analysis": map[string]interface{}{
			"similarity_threshold": "high",
		},
	}
	assert.Error(t, validateSchema(raw))
}

func TestValidateSchemaRejectsOutOfRangeNested(t *testing.T) {
	raw := map[string]interface{}{
		"lsh": map[string]interface{}{
			"lsh_num_permutations": 4,
		},
	}
	assert.Error(t, validateSchema(raw))
}

func TestValidateSchemaRejectsBadEnum(t *testing.T) {
	raw := map[string]interface{}{
		"match": map[string]interface{}{
			"parallel": "sideways",
		},
	}
	assert.Error(t, validateSchema(raw))
}

func TestLoadYAMLAppliesOverDefaultsAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clonetrace.yaml")
	writeFile(t, path, `
analysis:
  similarity_threshold: 85
lsh:
  use_lsh: true
  lsh_num_permutations: 64
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 85, cfg.Analysis.SimilarityThreshold)
	assert.True(t, cfg.LSH.Enabled)
	assert.Equal(t, 64, cfg.LSH.NumPermutations)
	// Fields untouched by the document keep DefaultConfig's values.
	assert.Equal(t, 0.50, cfg.Analysis.OverlapThreshold)
}

func TestLoadJSONRejectsSchemaViolation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clonetrace.json")
	writeFile(t, path, `{"analysis": {"similarity_threshold": 500}}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation")
}

func TestLoadTOMLRejectsBadParallelMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clonetrace.toml")
	writeFile(t, path, "[match]\nparallel = \"sideways\"\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parallel")
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}
