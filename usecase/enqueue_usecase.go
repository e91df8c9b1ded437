package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"publish-automation/domain/model"
	"publish-automation/domain/repository"
	"publish-automation/infrastructure/clients/searchpush"
	"publish-automation/infrastructure/logger"
)

// SearchPusher submits new post URLs to a search-engine push API
type SearchPusher interface {
	Submit(ctx context.Context, urls []string) (*searchpush.Result, error)
}

// URLDeduper filters out URLs already submitted in earlier runs
type URLDeduper interface {
	Filter(ctx context.Context, urls []string) ([]string, error)
	MarkPushed(ctx context.Context, urls []string) error
}

// EnqueueSummary reports the result of one enqueue call
type EnqueueSummary struct {
	Added  int `json:"added"`
	Total  int `json:"total"`
	Pushed int `json:"pushed"`
}

type IEnqueueUsecase interface {
	Enqueue(ctx context.Context, items []*model.QueueEntry) (*EnqueueSummary, error)
}

type enqueueUsecase struct {
	queueRepo repository.IPublishQueue
	pusher    SearchPusher // nil when no push endpoint is configured
	dedupe    URLDeduper   // nil disables dedupe
}

func NewEnqueueUsecase(queueRepo repository.IPublishQueue, pusher SearchPusher, dedupe URLDeduper) IEnqueueUsecase {
	return &enqueueUsecase{queueRepo: queueRepo, pusher: pusher, dedupe: dedupe}
}

// Enqueue merges items into the queue keyed by URL, keeps the queue ordered by
// (date, url) descending, and submits URLs not seen before to the push API.
// Push failures are logged and do not fail the enqueue.
func (u *enqueueUsecase) Enqueue(ctx context.Context, items []*model.QueueEntry) (*EnqueueSummary, error) {
	current, err := u.queueRepo.Load(ctx)
	if err != nil {
		return nil, err
	}

	byURL := make(map[string]*model.QueueEntry, len(current))
	for _, e := range current {
		if url := strings.TrimSpace(e.URL); url != "" {
			byURL[url] = e
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	summary := &EnqueueSummary{}
	newURLs := []string{}
	for _, item := range items {
		url := strings.TrimSpace(item.URL)
		if url == "" {
			continue
		}
		if _, exists := byURL[url]; !exists {
			summary.Added++
			newURLs = append(newURLs, url)
		}
		byURL[url] = &model.QueueEntry{
			Title:    strings.TrimSpace(item.Title),
			URL:      url,
			Source:   strings.TrimSpace(item.Source),
			Date:     strings.TrimSpace(item.Date),
			File:     strings.TrimSpace(item.File),
			State:    "pending",
			QueuedAt: now,
		}
	}

	queue := make([]*model.QueueEntry, 0, len(byURL))
	for _, e := range byURL {
		queue = append(queue, e)
	}
	sort.Slice(queue, func(i, j int) bool {
		if queue[i].Date != queue[j].Date {
			return queue[i].Date > queue[j].Date
		}
		return queue[i].URL > queue[j].URL
	})
	if err := u.queueRepo.Save(ctx, queue); err != nil {
		return nil, err
	}
	summary.Total = len(queue)

	summary.Pushed = u.pushNewURLs(ctx, newURLs)
	return summary, nil
}

func (u *enqueueUsecase) pushNewURLs(ctx context.Context, urls []string) int {
	if u.pusher == nil || len(urls) == 0 {
		return 0
	}
	lg := logger.GetLogger()
	toPush := urls
	if u.dedupe != nil {
		filtered, err := u.dedupe.Filter(ctx, urls)
		if err != nil {
			lg.WithField("error", err).Warn("pushed-URL dedupe unavailable, submitting all URLs")
		} else {
			toPush = filtered
		}
	}
	if len(toPush) == 0 {
		return 0
	}
	result, err := u.pusher.Submit(ctx, toPush)
	if err != nil {
		lg.WithField("error", err).Warn("search push failed")
		return 0
	}
	if u.dedupe != nil {
		if err := u.dedupe.MarkPushed(ctx, toPush); err != nil {
			lg.WithField("error", err).Warn("failed to record pushed URLs")
		}
	}
	lg.WithField("submitted", len(toPush)).
		WithField("success", result.Success).
		WithField("remain", result.Remain).
		WithField("not_same_site", result.NotSameSite).
		WithField("not_valid", result.NotValid).
		Info("search push completed")
	return result.Success
}
