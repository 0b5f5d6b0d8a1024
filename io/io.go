/*
package io handles the configuration files and the result files of flowfly
runs.
*/
package io

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/phil-mansfield/flowfly/stats"
)

// RunInfo identifies the run which produced a set of outputs.
type RunInfo struct {
	ID       string
	Seed     uint64
	Events   int
	Workers  int
	Harmonic int
}

// NewRunInfo returns a RunInfo with a fresh random ID.
func NewRunInfo(seed uint64, events, workers, harmonic int) RunInfo {
	return RunInfo{
		ID: uuid.NewString(), Seed: seed,
		Events: events, Workers: workers, Harmonic: harmonic,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id   TEXT PRIMARY KEY,
	created  TEXT NOT NULL,
	seed     TEXT NOT NULL,
	events   INTEGER NOT NULL,
	workers  INTEGER NOT NULL,
	harmonic INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS outputs (
	run_id TEXT NOT NULL,
	name   TEXT NOT NULL,
	kind   TEXT NOT NULL,
	x_bins INTEGER NOT NULL,
	x_min  REAL NOT NULL,
	x_max  REAL NOT NULL,
	y_bins INTEGER,
	y_min  REAL,
	y_max  REAL,
	PRIMARY KEY (run_id, name)
);
CREATE TABLE IF NOT EXISTS bins (
	run_id  TEXT NOT NULL,
	name    TEXT NOT NULL,
	ix      INTEGER NOT NULL,
	iy      INTEGER NOT NULL,
	entries INTEGER NOT NULL,
	sum_w   REAL NOT NULL,
	sum_w2  REAL NOT NULL,
	sum_wy  REAL NOT NULL,
	sum_wy2 REAL NOT NULL,
	mean    REAL,
	error   REAL,
	PRIMARY KEY (run_id, name, ix, iy)
);`

// Under- and overflow bins are stored with these indices. The overflow of a
// profile or histogram is stored at ix = Bins.
const (
	underflowIndex = -1
	outsideIndex   = -1
)

func nullable(x float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: x, Valid: !math.IsNaN(x)}
}

// OpenDatabase opens (and creates, if needed) a results database.
func OpenDatabase(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema of %s: %w", path, err)
	}
	return db, nil
}

// WriteDatabase stores every object in l under the run described by info.
func WriteDatabase(path string, info RunInfo, l *stats.List) error {
	db, err := OpenDatabase(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return WriteDB(db, info, l)
}

// WriteDB is WriteDatabase for an already open database.
func WriteDB(db *sql.DB, info RunInfo, l *stats.List) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := writeTx(tx, info, l); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func writeTx(tx *sql.Tx, info RunInfo, l *stats.List) error {
	_, err := tx.Exec(
		`INSERT INTO runs (run_id, created, seed, events, workers, harmonic)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		info.ID, time.Now().UTC().Format(time.RFC3339),
		strconv.FormatUint(info.Seed, 10),
		info.Events, info.Workers, info.Harmonic,
	)
	if err != nil {
		return fmt.Errorf("inserting run %s: %w", info.ID, err)
	}

	outStmt, err := tx.Prepare(
		`INSERT INTO outputs (run_id, name, kind, x_bins, x_min, x_max,
		 y_bins, y_min, y_max) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer outStmt.Close()

	binStmt, err := tx.Prepare(
		`INSERT INTO bins (run_id, name, ix, iy, entries, sum_w, sum_w2,
		 sum_wy, sum_wy2, mean, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer binStmt.Close()

	insertMoments := func(name string, ix, iy int, m *stats.Moments) error {
		_, err := binStmt.Exec(
			info.ID, name, ix, iy, m.N, m.SumW, m.SumW2, m.SumWY, m.SumWY2,
			nullable(m.Mean()), nullable(m.Error()),
		)
		return err
	}

	for _, name := range l.Names() {
		obj, _ := l.Get(name)

		switch obj := obj.(type) {
		case *stats.Profile:
			_, err = outStmt.Exec(info.ID, name, obj.Kind(),
				obj.X.Bins, obj.X.Min, obj.X.Max, nil, nil, nil)
			if err != nil {
				break
			}
			err = insertMoments(name, underflowIndex, 0, obj.Underflow())
			for i := 0; i < obj.X.Bins && err == nil; i++ {
				err = insertMoments(name, i, 0, obj.Bin(i))
			}
			if err == nil {
				err = insertMoments(name, obj.X.Bins, 0, obj.Overflow())
			}

		case *stats.Profile2D:
			_, err = outStmt.Exec(info.ID, name, obj.Kind(),
				obj.X.Bins, obj.X.Min, obj.X.Max, obj.Y.Bins, obj.Y.Min, obj.Y.Max)
			if err != nil {
				break
			}
			err = insertMoments(name, outsideIndex, outsideIndex, obj.Outside())
			for iy := 0; iy < obj.Y.Bins && err == nil; iy++ {
				for ix := 0; ix < obj.X.Bins && err == nil; ix++ {
					err = insertMoments(name, ix, iy, obj.Bin(ix, iy))
				}
			}

		case *stats.Hist:
			_, err = outStmt.Exec(info.ID, name, obj.Kind(),
				obj.X.Bins, obj.X.Min, obj.X.Max, nil, nil, nil)
			if err != nil {
				break
			}
			err = insertMoments(name, underflowIndex, 0, obj.UnderflowBin())
			for i := 0; i < obj.X.Bins && err == nil; i++ {
				err = insertMoments(name, i, 0, obj.Bin(i))
			}
			if err == nil {
				err = insertMoments(name, obj.X.Bins, 0, obj.OverflowBin())
			}

		default:
			err = fmt.Errorf("cannot store output of kind %s", obj.Kind())
		}

		if err != nil {
			return fmt.Errorf("storing output '%s': %w", name, err)
		}
	}
	return nil
}

// readBinning returns the x binning of a stored output of the given kind.
func readBinning(db *sql.DB, runID, name, kind string) (stats.Binning, error) {
	x := stats.Binning{}
	var stored string
	err := db.QueryRow(
		`SELECT kind, x_bins, x_min, x_max FROM outputs
		 WHERE run_id = ? AND name = ?`, runID, name,
	).Scan(&stored, &x.Bins, &x.Min, &x.Max)
	if err != nil {
		return x, fmt.Errorf("reading output '%s' of run %s: %w",
			name, runID, err)
	}
	if stored != kind {
		return x, fmt.Errorf("output '%s' is a %s, not a %s", name, stored, kind)
	}
	return x, nil
}

// readBins calls set on the moments of every one dimensional bin stored for
// an output, including the under- and overflow bins.
func readBins(
	db *sql.DB, runID, name string, x stats.Binning,
	set func(ix int, m stats.Moments),
) error {
	rows, err := db.Query(
		`SELECT ix, entries, sum_w, sum_w2, sum_wy, sum_wy2 FROM bins
		 WHERE run_id = ? AND name = ?`, runID, name,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ix int
		m := stats.Moments{}
		if err := rows.Scan(
			&ix, &m.N, &m.SumW, &m.SumW2, &m.SumWY, &m.SumWY2,
		); err != nil {
			return err
		}
		if ix < underflowIndex || ix > x.Bins {
			return fmt.Errorf("output '%s' has bin %d outside of [%d, %d]",
				name, ix, underflowIndex, x.Bins)
		}
		set(ix, m)
	}
	return rows.Err()
}

// ReadProfile rebuilds a one dimensional profile written by WriteDatabase.
func ReadProfile(db *sql.DB, runID, name string) (*stats.Profile, error) {
	x, err := readBinning(db, runID, name, "Profile")
	if err != nil {
		return nil, err
	}
	p := stats.NewProfile(name, x)
	err = readBins(db, runID, name, x, func(ix int, m stats.Moments) {
		switch ix {
		case underflowIndex:
			*p.Underflow() = m
		case x.Bins:
			*p.Overflow() = m
		default:
			*p.Bin(ix) = m
		}
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ReadHist rebuilds a histogram written by WriteDatabase.
func ReadHist(db *sql.DB, runID, name string) (*stats.Hist, error) {
	x, err := readBinning(db, runID, name, "Hist")
	if err != nil {
		return nil, err
	}
	h := stats.NewHist(name, x)
	err = readBins(db, runID, name, x, func(ix int, m stats.Moments) {
		switch ix {
		case underflowIndex:
			*h.UnderflowBin() = m
		case x.Bins:
			*h.OverflowBin() = m
		default:
			*h.Bin(ix) = m
		}
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// RunIDs returns the IDs of every run stored in db, oldest first.
func RunIDs(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT run_id FROM runs ORDER BY created, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
