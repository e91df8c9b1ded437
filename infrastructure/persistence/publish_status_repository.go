package persistence

import (
	"context"
	"database/sql"

	"publish-automation/domain/model"
)

// PublishStatusRepository implements the status store on PostgreSQL
type PublishStatusRepository struct {
	db *sql.DB
}

func NewPublishStatusRepository(db *sql.DB) *PublishStatusRepository {
	return &PublishStatusRepository{db: db}
}

func (r *PublishStatusRepository) Load(ctx context.Context) (*model.StatusSnapshot, error) {
	snap := &model.StatusSnapshot{Items: map[string]*model.StatusRecord{}}

	row := r.db.QueryRowContext(ctx, `SELECT updated_at FROM publish_status_meta WHERE id = 1`)
	if err := row.Scan(&snap.UpdatedAt); err != nil && err != sql.ErrNoRows {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT url, title, source, date, file, created_at FROM publish_status_records`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var url string
		rec := &model.StatusRecord{Platforms: map[string]*model.PlatformDelivery{}}
		if err := rows.Scan(&url, &rec.Title, &rec.Source, &rec.Date, &rec.File, &rec.CreatedAt); err != nil {
			return nil, err
		}
		snap.Items[url] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	prows, err := r.db.QueryContext(ctx, `SELECT url, platform, status, attempts, last_attempt_at, message FROM publish_status_platforms`)
	if err != nil {
		return nil, err
	}
	defer prows.Close()
	for prows.Next() {
		var url, platform string
		d := &model.PlatformDelivery{}
		if err := prows.Scan(&url, &platform, &d.Status, &d.Attempts, &d.LastAttemptAt, &d.Message); err != nil {
			return nil, err
		}
		rec, ok := snap.Items[url]
		if !ok {
			rec = &model.StatusRecord{Platforms: map[string]*model.PlatformDelivery{}}
			snap.Items[url] = rec
		}
		rec.Platforms[platform] = d
	}
	return snap, prows.Err()
}

func (r *PublishStatusRepository) Save(ctx context.Context, snapshot *model.StatusSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, q := range []string{`DELETE FROM publish_status_platforms`, `DELETE FROM publish_status_records`} {
		if _, err = tx.ExecContext(ctx, q); err != nil {
			return err
		}
	}
	recQ := `INSERT INTO publish_status_records (url, title, source, date, file, created_at) VALUES ($1,$2,$3,$4,$5,$6)`
	platQ := `INSERT INTO publish_status_platforms (url, platform, status, attempts, last_attempt_at, message) VALUES ($1,$2,$3,$4,$5,$6)`
	for url, rec := range snapshot.Items {
		if _, err = tx.ExecContext(ctx, recQ, url, rec.Title, rec.Source, rec.Date, rec.File, rec.CreatedAt); err != nil {
			return err
		}
		for platform, d := range rec.Platforms {
			if _, err = tx.ExecContext(ctx, platQ, url, platform, d.Status, d.Attempts, d.LastAttemptAt, d.Message); err != nil {
				return err
			}
		}
	}
	metaQ := `INSERT INTO publish_status_meta (id, updated_at) VALUES (1, $1) ON CONFLICT (id) DO UPDATE SET updated_at = EXCLUDED.updated_at`
	if _, err = tx.ExecContext(ctx, metaQ, snapshot.UpdatedAt); err != nil {
		return err
	}
	err = tx.Commit()
	return err
}
