package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/student-records/internal/domain/shared"
	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/pkg/logger"
)

// ── test helpers ──

type memGateway struct {
	saved   []student.Record
	load    []student.Record
	saveErr error
	loadErr error
	saves   int
}

func (g *memGateway) Save(_ context.Context, records []student.Record) error {
	g.saves++
	if g.saveErr != nil {
		return g.saveErr
	}
	g.saved = append([]student.Record(nil), records...)
	return nil
}

func (g *memGateway) Load(_ context.Context) ([]student.Record, error) {
	if g.loadErr != nil {
		return nil, g.loadErr
	}
	return append([]student.Record(nil), g.load...), nil
}

func (g *memGateway) Name() string { return "memory" }

type panicGateway struct{ memGateway }

func (g *panicGateway) Save(context.Context, []student.Record) error { panic("boom") }

func newTestStore() (*Store, *memGateway) {
	gw := &memGateway{}
	return New(gw, logger.Nop()), gw
}

func rec(id, name, major string) student.Record {
	return student.Record{ID: id, Name: name, Gender: "男", Age: 20, Major: major}
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

// ── Add ──

func TestStore_Scenario(t *testing.T) {
	s, _ := newTestStore()

	zhang := student.Record{ID: "202312345678", Name: "张三", Gender: "男", Age: 20, Major: "软件工程"}
	require.NoError(t, s.Add(zhang))
	assert.Equal(t, 1, s.Count())

	dup := zhang
	dup.Name = "李四"
	err := s.Add(dup)
	require.Error(t, err)
	assert.ErrorIs(t, err, student.ErrDuplicateID)
	assert.True(t, shared.IsAlreadyExists(err))
	assert.Contains(t, err.Error(), "duplicate id")
	assert.Equal(t, 1, s.Count())

	found := s.SearchByMajor("软件工程")
	require.Len(t, found, 1)
	assert.Equal(t, zhang, found[0])

	assert.True(t, s.DeleteByID("202312345678"))
	assert.Equal(t, 0, s.Count())
}

func TestStore_Add_FieldValidation(t *testing.T) {
	valid := rec("202300000001", "王五", "人工智能")

	tests := []struct {
		name  string
		mut   func(r *student.Record)
		field student.Field
	}{
		{"short id", func(r *student.Record) { r.ID = "12345" }, student.FieldID},
		{"letter in id", func(r *student.Record) { r.ID = "20230000000a" }, student.FieldID},
		{"age zero", func(r *student.Record) { r.Age = 0 }, student.FieldAge},
		{"age too big", func(r *student.Record) { r.Age = 151 }, student.FieldAge},
		{"bad gender", func(r *student.Record) { r.Gender = "x" }, student.FieldGender},
		{"bad major", func(r *student.Record) { r.Major = "历史" }, student.FieldMajor},
		{"name with digit", func(r *student.Record) { r.Name = "John3" }, student.FieldName},
		{"empty name", func(r *student.Record) { r.Name = "" }, student.FieldName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore()
			r := valid
			tt.mut(&r)

			err := s.Add(r)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))

			var fe *student.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, 0, s.Count())
		})
	}
}

func TestStore_Add_FormatCheckedBeforeDuplicate(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "王五", "人工智能")))

	bad := rec("202300000001", "王五", "人工智能")
	bad.Age = 0
	err := s.Add(bad)

	var fe *student.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, student.FieldAge, fe.Field)
	assert.NotErrorIs(t, err, student.ErrDuplicateID)
}

func TestStore_Add_DuplicateRegardlessOfOtherFields(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "王五", "人工智能")))

	for i, major := range student.ValidMajors() {
		r := student.Record{ID: "202300000001", Name: fmt.Sprintf("Name %c", 'A'+i), Gender: "F", Age: 30 + i, Major: major}
		assert.ErrorIs(t, s.Add(r), student.ErrDuplicateID)
	}
	assert.Equal(t, 1, s.Count())
}

// ── Queries ──

func TestStore_FindByName_InsertionOrder(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000009", "张三", "软件工程")))
	require.NoError(t, s.Add(rec("202300000002", "李四", "软件工程")))
	require.NoError(t, s.Add(rec("202300000005", "张三", "数据科学")))
	require.NoError(t, s.Add(rec("202300000001", "张三", "网络工程")))

	got := s.FindByName("张三")
	require.Len(t, got, 3)
	assert.Equal(t, "202300000009", got[0].ID)
	assert.Equal(t, "202300000005", got[1].ID)
	assert.Equal(t, "202300000001", got[2].ID)

	none := s.FindByName("nobody")
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestStore_FindByName_ReturnsCopies(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))

	got := s.FindByName("张三")
	got[0].Major = "hacked"

	again, err := s.FindByID("202300000001")
	require.NoError(t, err)
	assert.Equal(t, "软件工程", again.Major)
}

func TestStore_FindByID_NotFound(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.FindByID("202300000001")
	assert.ErrorIs(t, err, student.ErrRecordNotFound)
	assert.True(t, shared.IsNotFound(err))
}

func TestStore_ListAll_SortedByID(t *testing.T) {
	s, _ := newTestStore()
	ids := []string{"202300000300", "202300000001", "202399999999", "202300000020", "100000000000"}
	for i, id := range ids {
		require.NoError(t, s.Add(rec(id, fmt.Sprintf("Name %c", 'a'+i), "软件工程")))
	}

	all := s.ListAll()
	require.Len(t, all, len(ids))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}
	assert.Equal(t, "100000000000", all[0].ID)
}

func TestStore_SearchByMajor(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))
	require.NoError(t, s.Add(rec("202300000002", "李四", "数据科学")))
	require.NoError(t, s.Add(rec("202300000003", "王五", "软件工程")))

	assert.Len(t, s.SearchByMajor("软件工程"), 2)
	assert.Len(t, s.SearchByMajor("数据科学"), 1)
	assert.Empty(t, s.SearchByMajor("信息安全"))
}

// ── Delete ──

func TestStore_DeleteByID(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))
	require.NoError(t, s.Add(rec("202300000002", "张三", "软件工程")))

	assert.False(t, s.DeleteByID("202399999999"))
	assert.Equal(t, 2, s.Count())

	assert.True(t, s.DeleteByID("202300000001"))
	assert.Equal(t, 1, s.Count())
	assert.False(t, s.DeleteByID("202300000001"))

	left := s.FindByName("张三")
	require.Len(t, left, 1)
	assert.Equal(t, "202300000002", left[0].ID)

	// the id is free again
	assert.NoError(t, s.Add(rec("202300000001", "李四", "人工智能")))
}

// ── Modify ──

func TestStore_Modify_PartialApply(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))

	report, err := s.Modify("202300000001", student.Update{
		Gender: strPtr("invalid"),
		Age:    intPtr(33),
		Major:  strPtr("人工智能"),
	})
	require.NoError(t, err)
	assert.Equal(t, []student.Field{student.FieldAge, student.FieldMajor}, report.Applied)
	require.Contains(t, report.Rejected, student.FieldGender)
	assert.True(t, shared.IsValidation(report.Rejected[student.FieldGender]))
	assert.True(t, report.Changed())

	got, err := s.FindByID("202300000001")
	require.NoError(t, err)
	assert.Equal(t, "男", got.Gender)
	assert.Equal(t, 33, got.Age)
	assert.Equal(t, "人工智能", got.Major)
}

func TestStore_Modify_InvalidAgeKeepsOld(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))

	report, err := s.Modify("202300000001", student.Update{Age: intPtr(151), Major: strPtr("信息安全")})
	require.NoError(t, err)
	assert.Contains(t, report.Rejected, student.FieldAge)

	got, _ := s.FindByID("202300000001")
	assert.Equal(t, 20, got.Age)
	assert.Equal(t, "信息安全", got.Major)
}

func TestStore_Modify_Rename(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))
	require.NoError(t, s.Add(rec("202300000002", "李四", "软件工程")))

	report, err := s.Modify("202300000001", student.Update{Name: strPtr("李四")})
	require.NoError(t, err)
	assert.Equal(t, []student.Field{student.FieldName}, report.Applied)

	assert.Empty(t, s.FindByName("张三"))
	li := s.FindByName("李四")
	require.Len(t, li, 2)
	assert.Equal(t, "202300000002", li[0].ID)
	assert.Equal(t, "202300000001", li[1].ID)

	_, err = s.Modify("202300000001", student.Update{Name: strPtr("Bad,Name")})
	require.NoError(t, err)
	assert.Len(t, s.FindByName("李四"), 2)
}

func TestStore_Modify_NotFound(t *testing.T) {
	s, _ := newTestStore()
	_, err := s.Modify("202300000001", student.Update{Age: intPtr(30)})
	assert.ErrorIs(t, err, student.ErrRecordNotFound)
}

func TestStore_Modify_EmptyUpdate(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))

	report, err := s.Modify("202300000001", student.Update{})
	require.NoError(t, err)
	assert.False(t, report.Changed())
	assert.Empty(t, report.Rejected)
}

// ── Persistence ──

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	s, gw := newTestStore()
	require.NoError(t, s.Add(rec("202300000003", "张三", "软件工程")))
	require.NoError(t, s.Add(rec("202300000001", "李 明", "数据科学")))
	require.NoError(t, s.Add(rec("202300000002", "张三", "网络工程")))
	require.NoError(t, s.Save(context.Background()))

	loaded := New(&memGateway{load: gw.saved}, logger.Nop())
	report, err := loaded.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 3}, report)

	assert.Equal(t, s.ListAll(), loaded.ListAll())
	assert.Equal(t, s.FindByName("张三"), loaded.FindByName("张三"))
}

func TestStore_Save_Failure(t *testing.T) {
	gw := &memGateway{saveErr: errors.New("disk full")}
	s := New(gw, logger.Nop())

	err := s.Save(context.Background())
	require.Error(t, err)
	assert.True(t, shared.IsPersistence(err))
	assert.Contains(t, err.Error(), "disk full")
}

func TestStore_Save_GatewayPanicIsReported(t *testing.T) {
	s := New(&panicGateway{}, logger.Nop())

	var err error
	assert.NotPanics(t, func() { err = s.Save(context.Background()) })
	assert.True(t, shared.IsPersistence(err))
}

func TestStore_Load_ErrorLeavesStoreUnchanged(t *testing.T) {
	gw := &memGateway{}
	s := New(gw, logger.Nop())
	require.NoError(t, s.Add(rec("202300000001", "张三", "软件工程")))

	gw.loadErr = errors.New("corrupt")
	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, shared.IsPersistence(err))
	assert.Equal(t, 1, s.Count())
}

func TestStore_Load_SkipsInvalidAndDuplicate(t *testing.T) {
	gw := &memGateway{load: []student.Record{
		rec("202300000001", "张三", "软件工程"),
		rec("202300000001", "李四", "软件工程"),
		rec("bad", "王五", "软件工程"),
		rec("202300000002", "王五", "不存在"),
		rec("202300000003", "赵六", "人工智能"),
	}}
	s, report, err := Open(context.Background(), gw, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, LoadReport{Loaded: 2, Skipped: 3}, report)
	assert.Equal(t, 2, s.Count())

	got, err := s.FindByID("202300000001")
	require.NoError(t, err)
	assert.Equal(t, "张三", got.Name)
}

func TestStore_Load_EmptySource(t *testing.T) {
	s, report, err := Open(context.Background(), &memGateway{}, nil)
	require.NoError(t, err)
	assert.Equal(t, LoadReport{}, report)
	assert.Equal(t, 0, s.Count())
	assert.Empty(t, s.ListAll())
}
