package repository // repository persists stall availability in MySQL

import (
    "context"      // context allows query cancellation and timeouts
    "database/sql" // sql provides DB primitives
    "encoding/json"
    "errors"
    "fmt"
    "time"

    "github.com/bhevents/souq-stall-booking/internal/catalog"
)

// The stalls table holds one denormalized row per stall: the geometry fields
// travel with every write so a row can be created on first contact without a
// prior insert step.
//
//	CREATE TABLE stalls (
//	    id         VARCHAR(16)  PRIMARY KEY,
//	    layout     VARCHAR(32)  NOT NULL,
//	    label      VARCHAR(32)  NOT NULL,
//	    category   VARCHAR(32)  NOT NULL,
//	    status     VARCHAR(16)  NOT NULL,
//	    position   JSON         NOT NULL,
//	    stall_type VARCHAR(32)  NOT NULL,
//	    size       VARCHAR(32)  NOT NULL,
//	    created_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP
//	                            ON UPDATE CURRENT_TIMESTAMP,
//	    KEY idx_stalls_layout (layout)
//	);

// StatusRow is the projection the merge layer consumes: just an id and its
// persisted status.
type StatusRow struct {
    ID     string
    Status catalog.Status
}

// StallRecord is a full row, as served to the admin dashboard.
type StallRecord struct {
    ID        string           `json:"id"`
    Layout    catalog.Layout   `json:"layout"`
    Label     string           `json:"label"`
    Category  catalog.Category `json:"category"`
    Status    catalog.Status   `json:"status"`
    Position  catalog.Position `json:"position"`
    StallType catalog.StallType `json:"stall_type"`
    Size      string           `json:"size"`
    CreatedAt time.Time        `json:"created_at"`
    UpdatedAt time.Time        `json:"updated_at"`
}

// seedBatchSize caps how many rows one reseed INSERT carries.  Matches the
// payload limits the admin reseed was tuned for; changing it changes the
// failure granularity of ResetAll.
const seedBatchSize = 50

// StallRepo provides methods to work with stall rows in the database.
type StallRepo struct {
    db *sql.DB
}

// NewStallRepo constructs a StallRepo with the given DB handle.
func NewStallRepo(db *sql.DB) *StallRepo {
    return &StallRepo{db: db}
}

// FetchStatuses returns the {id, status} pairs of every row in one layout
// partition.  Stalls without a row are simply absent from the result; the
// merge layer defaults them to available.
func (r *StallRepo) FetchStatuses(ctx context.Context, layout catalog.Layout) ([]StatusRow, error) {
    const q = `SELECT id, status FROM stalls WHERE layout = ?`
    rows, err := r.db.QueryContext(ctx, q, string(layout))
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []StatusRow
    for rows.Next() {
        var sr StatusRow
        if err := rows.Scan(&sr.ID, &sr.Status); err != nil {
            return nil, err
        }
        result = append(result, sr)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// BookIfAvailable books a stall with a conditional write.  The row is first
// ensured to exist with the catalog default status, then flipped to booked
// only if it still reads available.  Two sessions racing for the same stall
// resolve deterministically: exactly one write matches, the other gets
// ErrStallConflict.
func (r *StallRepo) BookIfAvailable(ctx context.Context, s catalog.Stall) error {
    if err := r.ensureRow(ctx, s); err != nil {
        return err
    }
    const q = `UPDATE stalls SET status = ? WHERE id = ? AND status = ?`
    res, err := r.db.ExecContext(ctx, q, string(catalog.StatusBooked), s.ID, string(catalog.StatusAvailable))
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        return ErrStallConflict
    }
    return nil
}

// UpdateStatus writes a new status for an existing row, by id alone.  This
// is the plain status-toggle path; it returns ErrStallNotFound when the row
// has never been written (use UpsertStatus to create it).
func (r *StallRepo) UpdateStatus(ctx context.Context, id string, status catalog.Status) error {
    const q = `UPDATE stalls SET status = ? WHERE id = ?`
    res, err := r.db.ExecContext(ctx, q, string(status), id)
    if err != nil {
        return err
    }
    if n, _ := res.RowsAffected(); n == 0 {
        // MySQL reports zero rows for a same-value update too, so distinguish
        // "absent" from "already at that status".
        var exists int
        err := r.db.QueryRowContext(ctx, `SELECT 1 FROM stalls WHERE id = ?`, id).Scan(&exists)
        if errors.Is(err, sql.ErrNoRows) {
            return ErrStallNotFound
        }
        if err != nil {
            return err
        }
    }
    return nil
}

// UpsertStatus writes the full denormalized record with the given status,
// creating the row if absent and replacing it otherwise (last write wins).
// Only the admin surface calls this; the public booking path goes through
// BookIfAvailable.
func (r *StallRepo) UpsertStatus(ctx context.Context, s catalog.Stall, status catalog.Status) error {
    pos, err := json.Marshal(s.Position)
    if err != nil {
        return fmt.Errorf("marshal position: %w", err)
    }
    const q = `INSERT INTO stalls (id, layout, label, category, status, position, stall_type, size)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	           ON DUPLICATE KEY UPDATE
	               layout = VALUES(layout), label = VALUES(label),
	               category = VALUES(category), status = VALUES(status),
	               position = VALUES(position), stall_type = VALUES(stall_type),
	               size = VALUES(size)`
    _, err = r.db.ExecContext(ctx, q,
        s.ID, string(s.Layout), s.Label, string(s.Category), string(status),
        pos, string(s.StallType), s.Size)
    return err
}

// ResetAll deletes every row and reinserts the full catalog with status
// available, in fixed-size batches.  The operation is deliberately not
// atomic across batches: a booking written while a reset runs can be lost
// or resurrected depending on interleaving.  The returned count is the rows
// inserted by batches that completed; on a batch failure no further batches
// are attempted.
func (r *StallRepo) ResetAll(ctx context.Context, stalls []catalog.Stall) (int, error) {
    if _, err := r.db.ExecContext(ctx, `DELETE FROM stalls`); err != nil {
        return 0, fmt.Errorf("clear stalls: %w", err)
    }
    inserted := 0
    for _, b := range batchRanges(len(stalls), seedBatchSize) {
        if err := r.insertBatch(ctx, stalls[b[0]:b[1]]); err != nil {
            return inserted, fmt.Errorf("insert batch at %d: %w", b[0], err)
        }
        inserted += b[1] - b[0]
    }
    return inserted, nil
}

// batchRanges splits n items into [start, end) windows of at most size.
func batchRanges(n, size int) [][2]int {
    var out [][2]int
    for start := 0; start < n; start += size {
        end := start + size
        if end > n {
            end = n
        }
        out = append(out, [2]int{start, end})
    }
    return out
}

// insertBatch inserts up to seedBatchSize rows in a single statement.
func (r *StallRepo) insertBatch(ctx context.Context, stalls []catalog.Stall) error {
    if len(stalls) == 0 {
        return nil
    }
    query := `INSERT INTO stalls (id, layout, label, category, status, position, stall_type, size) VALUES `
    args := make([]interface{}, 0, len(stalls)*8)
    for i, s := range stalls {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?, ?, ?)"
        pos, err := json.Marshal(s.Position)
        if err != nil {
            return fmt.Errorf("marshal position for %s: %w", s.ID, err)
        }
        args = append(args,
            s.ID, string(s.Layout), s.Label, string(s.Category),
            string(catalog.StatusAvailable), pos, string(s.StallType), s.Size)
    }
    _, err := r.db.ExecContext(ctx, query, args...)
    return err
}

// ListRecords returns full rows for the admin dashboard, ordered by id.
// Pass an empty layout to list every partition.
func (r *StallRepo) ListRecords(ctx context.Context, layout catalog.Layout) ([]StallRecord, error) {
    q := `SELECT id, layout, label, category, status, position, stall_type, size, created_at, updated_at
	      FROM stalls`
    var args []interface{}
    if layout != "" {
        q += ` WHERE layout = ?`
        args = append(args, string(layout))
    }
    q += ` ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()

    var result []StallRecord
    for rows.Next() {
        var rec StallRecord
        var pos []byte
        if err := rows.Scan(
            &rec.ID, &rec.Layout, &rec.Label, &rec.Category, &rec.Status,
            &pos, &rec.StallType, &rec.Size, &rec.CreatedAt, &rec.UpdatedAt,
        ); err != nil {
            return nil, err
        }
        if err := json.Unmarshal(pos, &rec.Position); err != nil {
            return nil, fmt.Errorf("decode position for %s: %w", rec.ID, err)
        }
        result = append(result, rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return result, nil
}

// ensureRow creates the stall's row with the default available status if it
// does not exist yet.  INSERT IGNORE keeps this race-safe: concurrent
// callers cannot clobber an existing status.
func (r *StallRepo) ensureRow(ctx context.Context, s catalog.Stall) error {
    pos, err := json.Marshal(s.Position)
    if err != nil {
        return fmt.Errorf("marshal position: %w", err)
    }
    const q = `INSERT IGNORE INTO stalls (id, layout, label, category, status, position, stall_type, size)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
    _, err = r.db.ExecContext(ctx, q,
        s.ID, string(s.Layout), s.Label, string(s.Category),
        string(catalog.StatusAvailable), pos, string(s.StallType), s.Size)
    return err
}
