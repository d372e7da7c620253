package registry

import (
	"slices"

	"github.com/alem-hub/student-records/internal/domain/student"
)

// index is an insertion-ordered name multimap with a secondary id index.
//
// byName keeps each name's records in insertion order. names keeps the order in
// which name buckets first appeared, which gives a stable enumeration order for
// search and save. byID answers uniqueness and lookup without a scan.
type index struct {
	byName map[string][]*student.Record
	names  []string
	byID   map[string]*student.Record
}

func newIndex() *index {
	return &index{
		byName: make(map[string][]*student.Record),
		byID:   make(map[string]*student.Record),
	}
}

func (x *index) len() int { return len(x.byID) }

func (x *index) has(id string) bool {
	_, ok := x.byID[id]
	return ok
}

func (x *index) get(id string) *student.Record {
	return x.byID[id]
}

func (x *index) insert(r student.Record) {
	rec := &r
	x.byID[rec.ID] = rec
	x.push(rec)
}

func (x *index) push(rec *student.Record) {
	bucket, ok := x.byName[rec.Name]
	if !ok {
		x.names = append(x.names, rec.Name)
	}
	x.byName[rec.Name] = append(bucket, rec)
}

func (x *index) remove(id string) bool {
	rec, ok := x.byID[id]
	if !ok {
		return false
	}
	delete(x.byID, id)
	x.unlink(rec)
	return true
}

// unlink drops rec from its name bucket, and the bucket itself once empty.
func (x *index) unlink(rec *student.Record) {
	bucket := x.byName[rec.Name]
	i := slices.Index(bucket, rec)
	if i < 0 {
		return
	}
	bucket = slices.Delete(bucket, i, i+1)
	if len(bucket) > 0 {
		x.byName[rec.Name] = bucket
		return
	}
	delete(x.byName, rec.Name)
	if j := slices.Index(x.names, rec.Name); j >= 0 {
		x.names = slices.Delete(x.names, j, j+1)
	}
}

// rename moves rec to the end of the bucket for name.
func (x *index) rename(rec *student.Record, name string) {
	if rec.Name == name {
		return
	}
	x.unlink(rec)
	rec.Name = name
	x.push(rec)
}

// each visits every record, bucket by bucket in first-appearance order.
func (x *index) each(fn func(*student.Record)) {
	for _, name := range x.names {
		for _, rec := range x.byName[name] {
			fn(rec)
		}
	}
}
