package persistence

import (
	"context"
	"database/sql"

	"publish-automation/domain/model"
)

// PublishQueueRepository implements the queue store on PostgreSQL
type PublishQueueRepository struct {
	db *sql.DB
}

func NewPublishQueueRepository(db *sql.DB) *PublishQueueRepository {
	return &PublishQueueRepository{db: db}
}

func (r *PublishQueueRepository) Load(ctx context.Context) ([]*model.QueueEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT url, title, source, date, file, state, queued_at FROM publish_queue ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	entries := []*model.QueueEntry{}
	for rows.Next() {
		e := &model.QueueEntry{}
		if err := rows.Scan(&e.URL, &e.Title, &e.Source, &e.Date, &e.File, &e.State, &e.QueuedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Save replaces the whole queue. The stores hold run-to-completion snapshots,
// so a transactional rewrite keeps the file and SQL implementations equivalent.
func (r *PublishQueueRepository) Save(ctx context.Context, entries []*model.QueueEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM publish_queue`); err != nil {
		return err
	}
	q := `INSERT INTO publish_queue (url, title, source, date, file, state, queued_at, position) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	for i, e := range entries {
		if _, err = tx.ExecContext(ctx, q, e.URL, e.Title, e.Source, e.Date, e.File, e.State, e.QueuedAt, i); err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}
