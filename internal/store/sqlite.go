package store

import (
	"context"
	"database/sql"
	"fmt"

	"bandline/internal/model"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS resources (
	id       TEXT PRIMARY KEY,
	name     TEXT NOT NULL,
	layout   TEXT NOT NULL DEFAULT 'stack',
	archived INTEGER NOT NULL DEFAULT 0,
	position INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	id          TEXT PRIMARY KEY,
	resource_id TEXT NOT NULL,
	name        TEXT NOT NULL,
	start_ms    INTEGER NOT NULL,
	end_ms      INTEGER NOT NULL,
	color       TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_events_resource ON events(resource_id, start_ms);
`

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate sqlite %s: %w", path, err)
	}
	return db, nil
}

func loadSQLite(path string) (model.Dataset, error) {
	db, err := openSQLite(path)
	if err != nil {
		return model.Dataset{}, err
	}
	defer db.Close()

	ctx := context.Background()
	ds := model.Dataset{Version: 1}

	rows, err := db.QueryContext(ctx, `SELECT id, name, layout, archived FROM resources ORDER BY position`)
	if err != nil {
		return model.Dataset{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var r model.Resource
		var layout string
		var archived int
		if err := rows.Scan(&r.ID, &r.Name, &layout, &archived); err != nil {
			return model.Dataset{}, err
		}
		r.Layout = model.LayoutMode(layout)
		r.Archived = archived != 0
		ds.Resources = append(ds.Resources, r)
	}
	if err := rows.Err(); err != nil {
		return model.Dataset{}, err
	}

	evRows, err := db.QueryContext(ctx, `SELECT id, resource_id, name, start_ms, end_ms, color FROM events ORDER BY start_ms`)
	if err != nil {
		return model.Dataset{}, err
	}
	defer evRows.Close()
	for evRows.Next() {
		var e model.Event
		if err := evRows.Scan(&e.ID, &e.ResourceID, &e.Name, &e.StartMS, &e.EndMS, &e.Color); err != nil {
			return model.Dataset{}, err
		}
		ds.Events = append(ds.Events, e)
	}
	if err := evRows.Err(); err != nil {
		return model.Dataset{}, err
	}
	return ds, nil
}

// saveSQLite writes the dataset with a replace-all strategy inside one
// transaction. Simple and safe at this dataset scale.
func saveSQLite(path string, ds model.Dataset) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"resources", "events"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}
	for i, r := range ds.Resources {
		archived := 0
		if r.Archived {
			archived = 1
		}
		layout := r.Layout
		if layout == "" {
			layout = model.LayoutStack
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO resources(id, name, layout, archived, position) VALUES(?, ?, ?, ?, ?)`,
			r.ID, r.Name, string(layout), archived, i); err != nil {
			return err
		}
	}
	for _, e := range ds.Events {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO events(id, resource_id, name, start_ms, end_ms, color) VALUES(?, ?, ?, ?, ?, ?)`,
			e.ID, e.ResourceID, e.Name, e.StartMS, e.EndMS, e.Color); err != nil {
			return err
		}
	}
	return tx.Commit()
}
