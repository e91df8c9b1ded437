package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"publish-automation/domain/model"
	"publish-automation/infrastructure/clients/searchpush"
	"publish-automation/infrastructure/persistence"
	"publish-automation/usecase"
)

type MockSearchPusher struct {
	mock.Mock
}

func (m *MockSearchPusher) Submit(ctx context.Context, urls []string) (*searchpush.Result, error) {
	args := m.Called(ctx, urls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*searchpush.Result), args.Error(1)
}

// fakeDeduper remembers URLs marked pushed and filters them out afterwards.
type fakeDeduper struct {
	seen map[string]bool
}

func newFakeDeduper() *fakeDeduper { return &fakeDeduper{seen: map[string]bool{}} }

func (d *fakeDeduper) Filter(_ context.Context, urls []string) ([]string, error) {
	out := []string{}
	for _, u := range urls {
		if !d.seen[u] {
			out = append(out, u)
		}
	}
	return out, nil
}

func (d *fakeDeduper) MarkPushed(_ context.Context, urls []string) error {
	for _, u := range urls {
		d.seen[u] = true
	}
	return nil
}

func TestEnqueue_MergesByURLAndSortsDescending(t *testing.T) {
	queueRepo := persistence.NewMemoryQueueStore(
		&model.QueueEntry{Title: "老文章", URL: "https://site.test/posts/old/", Date: "2026-08-01"},
	)
	uc := usecase.NewEnqueueUsecase(queueRepo, nil, nil)

	summary, err := uc.Enqueue(context.Background(), []*model.QueueEntry{
		{Title: "新文章", URL: "https://site.test/posts/new/", Date: "2026-08-21"},
		{Title: "老文章（改）", URL: "https://site.test/posts/old/", Date: "2026-08-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 2, summary.Total)

	entries, _ := queueRepo.Load(context.Background())
	require.Len(t, entries, 2)
	assert.Equal(t, "https://site.test/posts/new/", entries[0].URL)
	assert.Equal(t, "老文章（改）", entries[1].Title)
	assert.Equal(t, "pending", entries[0].State)
	assert.NotEmpty(t, entries[0].QueuedAt)
}

func TestEnqueue_PushesOnlyNewURLs(t *testing.T) {
	queueRepo := persistence.NewMemoryQueueStore(
		&model.QueueEntry{URL: "https://site.test/posts/old/", Date: "2026-08-01"},
	)
	pusher := new(MockSearchPusher)
	pusher.On("Submit", mock.Anything, []string{"https://site.test/posts/new/"}).
		Return(&searchpush.Result{Success: 1, Remain: 99}, nil).Once()

	uc := usecase.NewEnqueueUsecase(queueRepo, pusher, newFakeDeduper())
	summary, err := uc.Enqueue(context.Background(), []*model.QueueEntry{
		{URL: "https://site.test/posts/new/", Date: "2026-08-21"},
		{URL: "https://site.test/posts/old/", Date: "2026-08-01"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Pushed)
	pusher.AssertExpectations(t)
}

func TestEnqueue_DedupeSkipsAlreadyPushedURLs(t *testing.T) {
	queueRepo := persistence.NewMemoryQueueStore()
	dedupe := newFakeDeduper()
	require.NoError(t, dedupe.MarkPushed(context.Background(), []string{"https://site.test/posts/a/"}))

	pusher := new(MockSearchPusher)
	uc := usecase.NewEnqueueUsecase(queueRepo, pusher, dedupe)

	summary, err := uc.Enqueue(context.Background(), []*model.QueueEntry{
		{URL: "https://site.test/posts/a/", Date: "2026-08-21"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 0, summary.Pushed)
	pusher.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything)
}

func TestEnqueue_PushFailureIsNotFatal(t *testing.T) {
	queueRepo := persistence.NewMemoryQueueStore()
	pusher := new(MockSearchPusher)
	pusher.On("Submit", mock.Anything, mock.Anything).
		Return(nil, errors.New("push API returned status 500")).Once()

	uc := usecase.NewEnqueueUsecase(queueRepo, pusher, nil)
	summary, err := uc.Enqueue(context.Background(), []*model.QueueEntry{
		{URL: "https://site.test/posts/a/", Date: "2026-08-21"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 0, summary.Pushed)

	entries, _ := queueRepo.Load(context.Background())
	assert.Len(t, entries, 1)
	pusher.AssertExpectations(t)
}

func TestEnqueue_IgnoresBlankURLs(t *testing.T) {
	queueRepo := persistence.NewMemoryQueueStore()
	uc := usecase.NewEnqueueUsecase(queueRepo, nil, nil)

	summary, err := uc.Enqueue(context.Background(), []*model.QueueEntry{
		{Title: "没有链接", URL: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Added)
	assert.Equal(t, 0, summary.Total)
}
