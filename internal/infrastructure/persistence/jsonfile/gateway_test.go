package jsonfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-records/internal/domain/shared"
	"github.com/alem-hub/student-records/internal/domain/student"
)

func newGateway(t *testing.T) (*Gateway, string) {
	t.Helper()
	dir := t.TempDir()
	g, err := New(Config{Dir: dir})
	require.NoError(t, err)
	return g, dir
}

var sample = []student.Record{
	{ID: "202312345678", Name: "张三", Gender: "男", Age: 20, Major: "软件工程"},
	{ID: "202300000001", Name: "李 明", Gender: "F", Age: 19, Major: "数据科学"},
}

func TestGateway_LoadMissingFileIsEmpty(t *testing.T) {
	g, _ := newGateway(t)

	records, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestGateway_SaveThenLoad(t *testing.T) {
	g, dir := newGateway(t)
	ctx := context.Background()

	require.NoError(t, g.Save(ctx, sample))
	assert.FileExists(t, filepath.Join(dir, DefaultFileName))

	records, err := g.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sample, records)
}

func TestGateway_SaveWritesIndentedDocument(t *testing.T) {
	g, dir := newGateway(t)
	require.NoError(t, g.Save(context.Background(), sample[:1]))

	data, err := os.ReadFile(filepath.Join(dir, DefaultFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    {\n        \"xh\": \"202312345678\",")
	assert.Contains(t, string(data), `"xm": "张三"`)
}

func TestGateway_LegacyFallback(t *testing.T) {
	g, dir := newGateway(t)
	legacy := filepath.Join(dir, LegacyFileName)
	require.NoError(t, os.WriteFile(legacy,
		[]byte(`[{"xh":"202300000009","xm":"王五","xb":"m","nl":33,"zy":"网络工程"}]`), 0o644))

	assert.Equal(t, legacy, g.ReadPath())
	records, err := g.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "王五", records[0].Name)

	// writes go to the current name; the legacy file is left alone
	require.NoError(t, g.Save(context.Background(), sample))
	assert.FileExists(t, filepath.Join(dir, DefaultFileName))
	assert.FileExists(t, legacy)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), g.ReadPath())

	records, err = g.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sample, records)
}

func TestGateway_CurrentPreferredOverLegacy(t *testing.T) {
	g, dir := newGateway(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, LegacyFileName), []byte(`[]`), 0o644))
	require.NoError(t, g.Save(context.Background(), sample))

	records, err := g.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestGateway_LoadCorruptFile(t *testing.T) {
	g, dir := newGateway(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(`[{"xh":`), 0o644))

	records, err := g.Load(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.ErrorIs(t, err, shared.ErrInvalidFormat)
}

func TestGateway_SaveToMissingDirFails(t *testing.T) {
	g, err := New(Config{Dir: filepath.Join(t.TempDir(), "does", "not", "exist")})
	require.NoError(t, err)

	assert.Error(t, g.Save(context.Background(), sample))
}

func TestNew_DefaultsToExecutableDir(t *testing.T) {
	g, err := New(Config{})
	require.NoError(t, err)

	dir, err := ExecutableDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, DefaultFileName), g.WritePath())
}
