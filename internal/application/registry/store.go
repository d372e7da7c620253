// Package registry implements the in-memory record store. It owns the record
// collection, enforces id uniqueness and field validity, and exposes the
// add/delete/modify/find/search/list operations used by the console.
package registry

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alem-hub/student-records/internal/domain/shared"
	"github.com/alem-hub/student-records/internal/domain/student"
	"github.com/alem-hub/student-records/pkg/logger"
)

// Store is the in-memory record collection. It is not safe for concurrent use;
// the program has a single thread of control.
type Store struct {
	gateway student.Gateway
	log     *logger.Logger
	idx     *index
}

// LoadReport summarises a Load call.
type LoadReport struct {
	Loaded  int
	Skipped int
}

// New creates an empty Store backed by the given gateway.
func New(gw student.Gateway, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		gateway: gw,
		log:     log.With(logger.Component("registry")),
		idx:     newIndex(),
	}
}

// Open creates a Store and loads it from the gateway.
// On a load error the returned store is empty and usable.
func Open(ctx context.Context, gw student.Gateway, log *logger.Logger) (*Store, LoadReport, error) {
	s := New(gw, log)
	report, err := s.Load(ctx)
	return s, report, err
}

// ─────────────────────────────────────────────────────────────────────────────
// Commands
// ─────────────────────────────────────────────────────────────────────────────

// Add validates r and inserts it. It returns a *student.FieldError for the first
// invalid field, or student.ErrDuplicateID if the id is taken. The duplicate
// check only runs after every field is well-formed.
func (s *Store) Add(r student.Record) error {
	if err := checkAdd(s.idx, r); err != nil {
		s.log.Debug("add rejected", logger.RecordID(r.ID), logger.Err(err))
		return err
	}
	s.idx.insert(r)
	s.log.Info("record added", logger.RecordID(r.ID), logger.Count(s.idx.len()))
	return nil
}

func checkAdd(idx *index, r student.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if idx.has(r.ID) {
		return student.ErrDuplicateID
	}
	return nil
}

// DeleteByID removes the record with the given id and reports whether one was removed.
func (s *Store) DeleteByID(id string) bool {
	if !s.idx.remove(id) {
		return false
	}
	s.log.Info("record deleted", logger.RecordID(id), logger.Count(s.idx.len()))
	return true
}

// Modify applies u to the record with the given id, one field at a time.
// Each provided field is validated on its own; an invalid field keeps its old
// value and is listed in the report, while the other fields still apply.
func (s *Store) Modify(id string, u student.Update) (student.ModifyReport, error) {
	report := student.ModifyReport{Rejected: map[student.Field]error{}}

	rec := s.idx.get(id)
	if rec == nil {
		return report, student.ErrRecordNotFound
	}

	apply := func(f student.Field, ok bool, value any, set func()) {
		if !ok {
			report.Rejected[f] = student.NewFieldError(f, value)
			return
		}
		set()
		report.Applied = append(report.Applied, f)
	}

	if u.Name != nil {
		name := *u.Name
		apply(student.FieldName, student.IsValidName(name), name, func() { s.idx.rename(rec, name) })
	}
	if u.Gender != nil {
		gender := *u.Gender
		apply(student.FieldGender, student.IsValidGender(gender), gender, func() { rec.Gender = gender })
	}
	if u.Age != nil {
		age := *u.Age
		apply(student.FieldAge, student.IsValidAge(age), age, func() { rec.Age = age })
	}
	if u.Major != nil {
		major := *u.Major
		apply(student.FieldMajor, student.IsValidMajor(major), major, func() { rec.Major = major })
	}

	s.log.Info("record modified",
		logger.RecordID(id),
		logger.Int("applied", len(report.Applied)),
		logger.Int("rejected", len(report.Rejected)),
	)
	return report, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Queries
// ─────────────────────────────────────────────────────────────────────────────

// FindByName returns copies of every record whose name equals name,
// in insertion order. The result is empty, never nil, when nothing matches.
func (s *Store) FindByName(name string) []student.Record {
	return copies(s.idx.byName[name])
}

// FindByID returns the record with the given id.
func (s *Store) FindByID(id string) (student.Record, error) {
	rec := s.idx.get(id)
	if rec == nil {
		return student.Record{}, student.ErrRecordNotFound
	}
	return *rec, nil
}

// SearchByMajor returns copies of every record whose major equals major.
func (s *Store) SearchByMajor(major string) []student.Record {
	out := make([]student.Record, 0)
	s.idx.each(func(r *student.Record) {
		if r.Major == major {
			out = append(out, *r)
		}
	})
	return out
}

// ListAll returns every record sorted by id ascending. Ids are fixed-width
// digit strings, so string order equals numeric order.
func (s *Store) ListAll() []student.Record {
	out := s.snapshot()
	slices.SortFunc(out, func(a, b student.Record) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Count returns the number of records held.
func (s *Store) Count() int {
	return s.idx.len()
}

// ─────────────────────────────────────────────────────────────────────────────
// Persistence
// ─────────────────────────────────────────────────────────────────────────────

// Save writes the whole collection through the gateway.
func (s *Store) Save(ctx context.Context) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("gateway panic: %v", p)
		}
		if err != nil {
			err = shared.WrapError("registry", "Save", shared.ErrPersistence, "save failed", err)
			s.log.Error("save failed", logger.Backend(s.gateway.Name()), logger.Err(err))
		}
	}()

	start := time.Now()
	records := s.snapshot()
	if err := s.gateway.Save(ctx, records); err != nil {
		return err
	}
	s.log.Info("records saved",
		logger.Backend(s.gateway.Name()),
		logger.Count(len(records)),
		logger.Latency(time.Since(start)),
	)
	return nil
}

// Load replaces the collection with the gateway's contents. Records that fail
// validation or repeat an id are skipped. On error the store is left unchanged.
func (s *Store) Load(ctx context.Context) (report LoadReport, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("gateway panic: %v", p)
		}
		if err != nil {
			err = shared.WrapError("registry", "Load", shared.ErrPersistence, "load failed", err)
			s.log.Error("load failed", logger.Backend(s.gateway.Name()), logger.Err(err))
		}
	}()

	records, err := s.gateway.Load(ctx)
	if err != nil {
		return LoadReport{}, err
	}

	fresh := newIndex()
	for _, r := range records {
		if cerr := checkAdd(fresh, r); cerr != nil {
			report.Skipped++
			s.log.Warn("skipping stored record", logger.RecordID(r.ID), logger.Err(cerr))
			continue
		}
		fresh.insert(r)
		report.Loaded++
	}
	s.idx = fresh

	s.log.Info("records loaded",
		logger.Backend(s.gateway.Name()),
		logger.Count(report.Loaded),
		logger.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (s *Store) snapshot() []student.Record {
	out := make([]student.Record, 0, s.idx.len())
	s.idx.each(func(r *student.Record) {
		out = append(out, *r)
	})
	return out
}

func copies(recs []*student.Record) []student.Record {
	out := make([]student.Record, len(recs))
	for i, r := range recs {
		out[i] = *r
	}
	return out
}
