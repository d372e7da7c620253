package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alem-hub/student-records/internal/domain/shared"
	"github.com/alem-hub/student-records/internal/domain/student"
)

// RecordGateway implements student.Gateway on the student_records table.
type RecordGateway struct {
	conn *Connection
}

// NewRecordGateway creates a gateway over an open connection. Call Migrate
// before the first Save or Load.
func NewRecordGateway(conn *Connection) *RecordGateway {
	return &RecordGateway{conn: conn}
}

var recordColumns = []string{"position", "xh", "xm", "xb", "nl", "zy"}

// Name implements student.Gateway.
func (g *RecordGateway) Name() string { return "postgres" }

// Migrate creates the table if needed.
func (g *RecordGateway) Migrate(ctx context.Context) error {
	return NewMigrator(g.conn).Migrate(ctx)
}

// Save replaces the table contents with records in one transaction.
func (g *RecordGateway) Save(ctx context.Context, records []student.Record) error {
	return g.conn.WithTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM student_records"); err != nil {
			return fmt.Errorf("clear student_records: %w", err)
		}

		rows := make([][]any, len(records))
		for i, r := range records {
			rows[i] = []any{i, r.ID, r.Name, r.Gender, r.Age, r.Major}
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{"student_records"}, recordColumns, pgx.CopyFromRows(rows))
		if err != nil {
			if IsUniqueViolation(err) {
				return shared.WrapError("postgres", "Save", shared.ErrAlreadyExists, "duplicate id in saved records", err)
			}
			return fmt.Errorf("copy student_records: %w", err)
		}
		if int(n) != len(records) {
			return fmt.Errorf("copy student_records: wrote %d of %d rows", n, len(records))
		}
		return nil
	})
}

// Load returns all rows in saved order.
func (g *RecordGateway) Load(ctx context.Context) ([]student.Record, error) {
	rows, err := g.conn.Query(ctx, "SELECT xh, xm, xb, nl, zy FROM student_records ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("query student_records: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (student.Record, error) {
		var r student.Record
		err := row.Scan(&r.ID, &r.Name, &r.Gender, &r.Age, &r.Major)
		return r, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan student_records: %w", err)
	}
	if records == nil {
		records = []student.Record{}
	}
	return records, nil
}
