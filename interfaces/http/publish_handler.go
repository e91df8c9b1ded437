package http

import (
	"net/http"
	"strings"

	"publish-automation/domain/model"
	"publish-automation/domain/repository"
	"publish-automation/infrastructure/logger"
	"publish-automation/usecase"

	"github.com/gin-gonic/gin"
)

type IPublishHandler interface {
	EnqueuePosts(ctx *gin.Context)
	GetQueue(ctx *gin.Context)
	GetStatus(ctx *gin.Context)
	Dispatch(ctx *gin.Context)
	GetTasks(ctx *gin.Context)
	GetPlatforms(ctx *gin.Context)
}

type PublishHandler struct {
	dispatchUsecase usecase.IDispatchUsecase
	enqueueUsecase  usecase.IEnqueueUsecase
	assistUsecase   usecase.IAssistUsecase
	queueRepo       repository.IPublishQueue
	statusRepo      repository.IPublishStatus
	targets         []usecase.PlatformTarget
}

func NewPublishHandler(
	dispatchUsecase usecase.IDispatchUsecase,
	enqueueUsecase usecase.IEnqueueUsecase,
	assistUsecase usecase.IAssistUsecase,
	queueRepo repository.IPublishQueue,
	statusRepo repository.IPublishStatus,
	targets []usecase.PlatformTarget,
) IPublishHandler {
	return &PublishHandler{
		dispatchUsecase: dispatchUsecase,
		enqueueUsecase:  enqueueUsecase,
		assistUsecase:   assistUsecase,
		queueRepo:       queueRepo,
		statusRepo:      statusRepo,
		targets:         targets,
	}
}

type enqueueRequest struct {
	Posts []*model.QueueEntry `json:"posts"`
}

func (h *PublishHandler) EnqueuePosts(ctx *gin.Context) {
	var req enqueueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if len(req.Posts) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "posts required"})
		return
	}
	summary, err := h.enqueueUsecase.Enqueue(ctx.Request.Context(), req.Posts)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("enqueue failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"added": summary.Added, "total": summary.Total, "pushed": summary.Pushed})
}

func (h *PublishHandler) GetQueue(ctx *gin.Context) {
	entries, err := h.queueRepo.Load(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"queue": entries})
}

func (h *PublishHandler) GetStatus(ctx *gin.Context) {
	snap, err := h.statusRepo.Load(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if url := strings.TrimSpace(ctx.Query("url")); url != "" {
		rec, ok := snap.Items[url]
		if !ok {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "post not tracked", "url": url})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"url": url, "record": rec, "updated_at": snap.UpdatedAt})
		return
	}
	ctx.JSON(http.StatusOK, snap)
}

// Dispatch runs one dispatcher pass now (admin/dev utility; the background
// loop runs the same pass on a schedule)
func (h *PublishHandler) Dispatch(ctx *gin.Context) {
	summary, err := h.dispatchUsecase.RunPass(ctx.Request.Context())
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("dispatch pass failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"processed": false, "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"processed": true, "summary": summary})
}

func (h *PublishHandler) GetTasks(ctx *gin.Context) {
	tasks, err := h.assistUsecase.PendingTasks(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (h *PublishHandler) GetPlatforms(ctx *gin.Context) {
	platforms := make([]gin.H, 0, len(h.targets))
	for _, t := range h.targets {
		platforms = append(platforms, gin.H{
			"platform":   t.Name,
			"configured": t.Endpoint != "",
			"has_token":  t.Token != "",
		})
	}
	ctx.JSON(http.StatusOK, gin.H{"platforms": platforms})
}
