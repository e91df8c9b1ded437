package usecase

import (
	"context"
	"strings"

	"publish-automation/domain/model"
	"publish-automation/domain/repository"
)

// IAssistUsecase lists (post, platform) pairs still awaiting delivery, with
// composed bodies ready to paste into a platform's manual publish page.
type IAssistUsecase interface {
	PendingTasks(ctx context.Context) ([]*model.AssistTask, error)
}

type assistUsecase struct {
	queueRepo    repository.IPublishQueue
	statusRepo   repository.IPublishStatus
	platforms    []string
	composerURLs map[string]string
	bodies       *PostBodyBuilder
}

func NewAssistUsecase(
	queueRepo repository.IPublishQueue,
	statusRepo repository.IPublishStatus,
	platforms []string,
	composerURLs map[string]string,
	bodies *PostBodyBuilder,
) IAssistUsecase {
	return &assistUsecase{
		queueRepo:    queueRepo,
		statusRepo:   statusRepo,
		platforms:    platforms,
		composerURLs: composerURLs,
		bodies:       bodies,
	}
}

func (u *assistUsecase) PendingTasks(ctx context.Context) ([]*model.AssistTask, error) {
	entries, err := u.queueRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := u.statusRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	tasks := []*model.AssistTask{}
	for _, entry := range entries {
		url := strings.TrimSpace(entry.URL)
		if url == "" {
			continue
		}
		var platformState map[string]*model.PlatformDelivery
		if rec := snap.Items[url]; rec != nil {
			platformState = rec.Platforms
		}
		body := u.bodies.Build(entry)
		for _, platform := range u.platforms {
			if slot := platformState[platform]; slot != nil && slot.Terminal() {
				continue
			}
			tasks = append(tasks, &model.AssistTask{
				Platform:   platform,
				Title:      strings.TrimSpace(entry.Title),
				URL:        url,
				PublishURL: u.composerURLs[platform],
				Body:       body,
			})
		}
	}
	return tasks, nil
}
