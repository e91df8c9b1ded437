package repository

import (
	"context"

	"publish-automation/domain/model"
)

// IPublishQueue persists the ordered list of posts awaiting distribution
type IPublishQueue interface {
	Load(ctx context.Context) ([]*model.QueueEntry, error)
	Save(ctx context.Context, entries []*model.QueueEntry) error
}

// IPublishStatus persists per-post, per-platform delivery status
type IPublishStatus interface {
	Load(ctx context.Context) (*model.StatusSnapshot, error)
	Save(ctx context.Context, snapshot *model.StatusSnapshot) error
}
