package repository

import (
	"context"
	"database/sql"
	"time"
)

// withTx runs fn inside a transaction.  It commits when fn returns nil and
// rolls back otherwise, so multi-statement writes never partially apply.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()
	return fn(tx)
}

// affectedOne returns notFound when the statement matched no row.
func affectedOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

// utcNow is the default clock: UTC, truncated to the DATETIME(6) precision
// so values read back compare equal to what was written.
func utcNow() time.Time { return time.Now().UTC().Truncate(time.Microsecond) }

const dateLayout = "2006-01-02"
