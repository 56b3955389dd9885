package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/kitchenwatch/internal/domain/model"
)

func settingsPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".restaurantia", "datos", "config.json")
}

func readKeys(t *testing.T, path string) map[string]any {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestStore_Load_CreatesFileWithDefaults(t *testing.T) {
	path := settingsPath(t)
	store := NewStore(path)

	got, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.DefaultThresholds(), got)

	keys := readKeys(t, path)
	assert.Equal(t, float64(20), keys["tiempo_umbral_minutos"])
	assert.Equal(t, float64(5), keys["umbral_stock_bajo"])

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    \"tiempo_umbral_minutos\": 20")
}

func TestStore_Load_IsIdempotent(t *testing.T) {
	store := NewStore(settingsPath(t))
	ctx := context.Background()

	first, err := store.Load(ctx)
	require.NoError(t, err)
	second, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestStore_Load_MissingKeyTakesDefault(t *testing.T) {
	path := settingsPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"tiempo_umbral_minutos": 45}`), 0o644))

	got, err := NewStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.Thresholds{DelayMinutes: 45, LowStockQuantity: model.DefaultLowStockQuantity}, got)
}

func TestStore_Load_CorruptFile(t *testing.T) {
	path := settingsPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0o644))

	got, err := NewStore(path).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, model.DefaultThresholds(), got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{not json`, string(raw), "load never rewrites a corrupt file")
}

func TestStore_SaveAndLoad(t *testing.T) {
	path := settingsPath(t)
	store := NewStore(path)
	ctx := context.Background()

	want := model.Thresholds{DelayMinutes: 15, LowStockQuantity: 2}
	require.NoError(t, store.Save(ctx, want))

	got, err := NewStore(path).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Save_PreservesOtherKeys(t *testing.T) {
	path := settingsPath(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(`{"nombre_restaurante": "La Palapa", "umbral_stock_bajo": 1}`), 0o644))

	require.NoError(t, NewStore(path).Save(context.Background(), model.Thresholds{DelayMinutes: 30, LowStockQuantity: 4}))

	keys := readKeys(t, path)
	assert.Equal(t, "La Palapa", keys["nombre_restaurante"])
	assert.Equal(t, float64(30), keys["tiempo_umbral_minutos"])
	assert.Equal(t, float64(4), keys["umbral_stock_bajo"])
}
