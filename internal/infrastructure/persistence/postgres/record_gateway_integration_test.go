//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-records/internal/domain/student"
)

func setupGateway(t *testing.T) *RecordGateway {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := DefaultConfig()
	cfg.URL = url
	conn, err := NewConnection(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(conn.Close)

	gw := NewRecordGateway(conn)
	require.NoError(t, gw.Migrate(context.Background()))
	// a second run must be a no-op
	require.NoError(t, gw.Migrate(context.Background()))

	_, err = conn.Exec(context.Background(), "DELETE FROM student_records")
	require.NoError(t, err)
	return gw
}

func TestRecordGateway_SaveLoadKeepsOrder(t *testing.T) {
	gw := setupGateway(t)
	ctx := context.Background()

	records := []student.Record{
		{ID: "202399999999", Name: "赵六", Gender: "女", Age: 22, Major: "人工智能"},
		{ID: "202300000001", Name: "张三", Gender: "男", Age: 20, Major: "软件工程"},
		{ID: "202355555555", Name: "Ann", Gender: "F", Age: 150, Major: "信息安全"},
	}
	require.NoError(t, gw.Save(ctx, records))

	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records, loaded)

	// save replaces, it does not append
	require.NoError(t, gw.Save(ctx, records[:1]))
	loaded, err = gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, records[:1], loaded)
}

func TestRecordGateway_EmptyTable(t *testing.T) {
	gw := setupGateway(t)

	loaded, err := gw.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, loaded)
	assert.Empty(t, loaded)
}

func TestRecordGateway_DuplicateIDRollsBack(t *testing.T) {
	gw := setupGateway(t)
	ctx := context.Background()

	first := []student.Record{{ID: "202300000001", Name: "张三", Gender: "男", Age: 20, Major: "软件工程"}}
	require.NoError(t, gw.Save(ctx, first))

	dup := append(first, first[0])
	require.Error(t, gw.Save(ctx, dup))

	loaded, err := gw.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, loaded)
}
