// Package archive keeps the records looked up from the command line in a
// sqlite database.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"sunatscraper/lib/scrapers/sunat/extract"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

var ErrNotArchived = errors.New("archive: record not found")

// Entry is an archived record.
type Entry struct {
	Record    extract.Record
	FetchedAt time.Time
}

type Archive struct {
	db *sql.DB
}

// Open opens (and migrates) the sqlite database at path, ":memory:" is
// accepted.
func Open(ctx context.Context, path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// every connection to :memory: is a different database
		db.SetMaxOpenConns(1)
	}
	_, err = db.ExecContext(ctx, Schema)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive: %w", err)
	}
	return &Archive{db: db}, nil
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Save upserts the given records, records that were not found are skipped.
// It returns how many were written.
func (a *Archive) Save(ctx context.Context, records ...extract.Record) (int, error) {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	saved := 0
	for _, r := range records {
		if !r.Found() {
			continue
		}
		_, err := tx.ExecContext(
			ctx,
			`insert into taxpayer(ruc, name, status, condition, address, location, document_type, taxpayer_type, fetched_at)
			values (?, ?, ?, ?, ?, ?, ?, ?, ?)
			on conflict(ruc) do update set
				name = excluded.name,
				status = excluded.status,
				condition = excluded.condition,
				address = excluded.address,
				location = coalesce(excluded.location, taxpayer.location),
				document_type = excluded.document_type,
				taxpayer_type = excluded.taxpayer_type,
				fetched_at = excluded.fetched_at`,
			*r.RUC, r.Name, r.Status, r.Condition, r.Address, r.Location, r.DocumentType, r.TaxpayerType, now,
		)
		if err != nil {
			return 0, fmt.Errorf("save %s: %w", *r.RUC, err)
		}
		saved++
	}
	err = tx.Commit()
	if err != nil {
		return 0, err
	}
	return saved, nil
}

func (a *Archive) Get(ctx context.Context, ruc string) (Entry, error) {
	row := a.db.QueryRowContext(
		ctx,
		`select ruc, name, status, condition, address, location, document_type, taxpayer_type, fetched_at
		from taxpayer where ruc = ?`,
		ruc,
	)

	var r extract.Record
	var fetchedAt int64
	err := row.Scan(&r.RUC, &r.Name, &r.Status, &r.Condition, &r.Address, &r.Location, &r.DocumentType, &r.TaxpayerType, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotArchived
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{Record: r, FetchedAt: time.Unix(fetchedAt, 0)}, nil
}
