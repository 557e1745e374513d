package database

import (
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

type SnapshotRepositoryImpl struct {
	db *DB
}

var _ SnapshotRepository = (*SnapshotRepositoryImpl)(nil)

func NewSnapshotRepository(db *DB) *SnapshotRepositoryImpl {
	return &SnapshotRepositoryImpl{db: db}
}

// InsertSnapshot writes the snapshot row. Re-running the pipeline inside
// the same minute is absorbed by the primary key.
func (r *SnapshotRepositoryImpl) InsertSnapshot(snapshot Snapshot) error {
	_, err := r.db.Exec(`
		INSERT INTO snapshots (snapshot_id, updated_at_utc, next_update_at_utc)
		VALUES ($1, $2, $3)
		ON CONFLICT (snapshot_id) DO NOTHING
	`, snapshot.SnapshotID, snapshot.UpdatedAtUTC, snapshot.NextUpdateAtUTC)

	if err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}

	return nil
}

// GetRecentSnapshotIDs returns the newest snapshot IDs first. The ID format
// sorts chronologically.
func (r *SnapshotRepositoryImpl) GetRecentSnapshotIDs(limit int) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT snapshot_id FROM snapshots
		ORDER BY snapshot_id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent snapshots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating snapshot rows: %w", err)
	}

	return ids, nil
}

func (r *SnapshotRepositoryImpl) GetLatestSnapshotID() (string, error) {
	var id string
	err := r.db.QueryRow(`SELECT snapshot_id FROM snapshots ORDER BY snapshot_id DESC LIMIT 1`).Scan(&id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest snapshot: %w", err)
	}
	return id, nil
}

func (r *SnapshotRepositoryImpl) GetSnapshotCount() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count snapshots: %w", err)
	}
	return count, nil
}

// quoteIDs is shared by repositories filtering on a snapshot ID set.
func quoteIDs(ids []string) any {
	return pq.StringArray(ids)
}
