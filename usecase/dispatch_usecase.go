package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"publish-automation/domain/model"
	"publish-automation/domain/repository"
	"publish-automation/infrastructure/clients/gateway"
	"publish-automation/infrastructure/logger"
)

// PlatformTarget is the resolved webhook target for one platform. An empty
// Endpoint means the platform is unconfigured; its posts stay queued.
type PlatformTarget struct {
	Name     string
	Endpoint string
	Token    string
}

// WebhookDeliverer performs one dispatch attempt against a platform endpoint
type WebhookDeliverer interface {
	Deliver(ctx context.Context, endpoint, token string, payload model.PublishPayload) error
}

// PassSummary reports what one dispatcher pass did
type PassSummary struct {
	Queued    int `json:"queued"`
	Attempted int `json:"attempted"`
	Delivered int `json:"delivered"`
	Failed    int `json:"failed"`
	Deferred  int `json:"deferred"`
	Completed int `json:"completed"`
}

type IDispatchUsecase interface {
	RunPass(ctx context.Context) (*PassSummary, error)
}

type dispatchUsecase struct {
	queueRepo   repository.IPublishQueue
	statusRepo  repository.IPublishStatus
	targets     []PlatformTarget
	webhook     WebhookDeliverer
	bodies      *PostBodyBuilder
	maxAttempts int

	mu sync.Mutex // serializes passes (ticker loop and HTTP trigger share this usecase)
}

func NewDispatchUsecase(
	queueRepo repository.IPublishQueue,
	statusRepo repository.IPublishStatus,
	targets []PlatformTarget,
	webhook WebhookDeliverer,
	bodies *PostBodyBuilder,
	maxAttempts int,
) IDispatchUsecase {
	return &dispatchUsecase{
		queueRepo:   queueRepo,
		statusRepo:  statusRepo,
		targets:     targets,
		webhook:     webhook,
		bodies:      bodies,
		maxAttempts: maxAttempts,
	}
}

// RunPass attempts delivery for every (queued post, platform) pair lacking a
// terminal status, then persists both stores. Undeliverable pairs stay queued
// for a future run; queue entries whose every platform is terminal are dropped.
func (u *dispatchUsecase) RunPass(ctx context.Context) (*PassSummary, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	lg := logger.GetLogger()
	entries, err := u.queueRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	snap, err := u.statusRepo.Load(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Items == nil {
		snap.Items = map[string]*model.StatusRecord{}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	summary := &PassSummary{Queued: len(entries)}

	for _, entry := range entries {
		url := strings.TrimSpace(entry.URL)
		if url == "" {
			continue
		}
		rec := u.ensureRecord(snap, entry, url, now)

		var payload model.PublishPayload
		built := false
		for _, target := range u.targets {
			slot, ok := rec.Platforms[target.Name]
			if !ok {
				slot = &model.PlatformDelivery{Status: model.StatusQueued}
				rec.Platforms[target.Name] = slot
			}
			if slot.Terminal() {
				continue
			}
			if target.Endpoint == "" {
				// Not an error: the platform has no endpoint yet, retried next run.
				slot.Message = "endpoint not configured, deferred"
				summary.Deferred++
				continue
			}
			if !built {
				payload = model.PublishPayload{
					Title:  strings.TrimSpace(entry.Title),
					URL:    url,
					Source: strings.TrimSpace(entry.Source),
					Date:   strings.TrimSpace(entry.Date),
					Body:   u.bodies.Build(entry),
				}
				built = true
			}
			slot.Attempts++
			slot.LastAttemptAt = now
			summary.Attempted++

			deliverErr := u.webhook.Deliver(ctx, target.Endpoint, target.Token, payload)
			if deliverErr == nil {
				slot.Status = model.StatusDelivered
				slot.Message = ""
				summary.Delivered++
				lg.WithField("url", url).WithField("platform", target.Name).Info("post delivered")
				continue
			}
			slot.Message = deliverErr.Error()
			if isPermanent(deliverErr) || (u.maxAttempts > 0 && slot.Attempts >= u.maxAttempts) {
				slot.Status = model.StatusFailed
				summary.Failed++
				lg.WithField("url", url).WithField("platform", target.Name).WithField("error", deliverErr.Error()).Warn("delivery failed permanently")
			} else {
				lg.WithField("url", url).WithField("platform", target.Name).WithField("error", deliverErr.Error()).Warn("delivery failed, will retry next run")
			}
		}
	}

	remaining := make([]*model.QueueEntry, 0, len(entries))
	for _, entry := range entries {
		url := strings.TrimSpace(entry.URL)
		if url == "" {
			remaining = append(remaining, entry)
			continue
		}
		if u.allTerminal(snap.Items[url]) {
			summary.Completed++
			continue
		}
		remaining = append(remaining, entry)
	}

	snap.UpdatedAt = now
	if err := u.statusRepo.Save(ctx, snap); err != nil {
		return nil, err
	}
	if err := u.queueRepo.Save(ctx, remaining); err != nil {
		return nil, err
	}
	lg.WithField("queued", summary.Queued).
		WithField("attempted", summary.Attempted).
		WithField("delivered", summary.Delivered).
		WithField("deferred", summary.Deferred).
		WithField("completed", summary.Completed).
		Info("dispatch pass finished")
	return summary, nil
}

func (u *dispatchUsecase) ensureRecord(snap *model.StatusSnapshot, entry *model.QueueEntry, url, now string) *model.StatusRecord {
	rec, ok := snap.Items[url]
	if !ok {
		rec = &model.StatusRecord{
			Title:     strings.TrimSpace(entry.Title),
			Source:    strings.TrimSpace(entry.Source),
			Date:      strings.TrimSpace(entry.Date),
			File:      strings.TrimSpace(entry.File),
			Platforms: map[string]*model.PlatformDelivery{},
			CreatedAt: now,
		}
		snap.Items[url] = rec
	}
	if rec.Platforms == nil {
		rec.Platforms = map[string]*model.PlatformDelivery{}
	}
	return rec
}

func (u *dispatchUsecase) allTerminal(rec *model.StatusRecord) bool {
	if rec == nil || len(u.targets) == 0 {
		return false
	}
	for _, target := range u.targets {
		slot := rec.Platforms[target.Name]
		if slot == nil || !slot.Terminal() {
			return false
		}
	}
	return true
}

func isPermanent(err error) bool {
	var de *gateway.DeliveryError
	return errors.As(err, &de) && de.Permanent()
}
