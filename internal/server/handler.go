package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/j4hangir/snowflake-id/pkg/idgen/core"
	"github.com/j4hangir/snowflake-id/pkg/idgen/domain"
	"github.com/j4hangir/snowflake-id/pkg/idgen/snowflake"
)

const (
	// 序列号耗尽和时钟回拨都在毫秒级恢复，处理器短暂重试后才放弃
	mintRetryInterval = 100 * time.Microsecond
	mintRetryBudget   = 20 * time.Millisecond
)

// Handler ID生成API处理器
type Handler struct {
	gen   core.Generator
	epoch int64
}

// NewHandler 创建API处理器
func NewHandler(gen core.Generator) *Handler {
	return &Handler{gen: gen, epoch: gen.GetEpoch()}
}

type batchRequest struct {
	Count int `json:"count" binding:"required"`
}

// NextID 生成单个ID
// @Summary 生成单个ID
// @Tags ids
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /ids/next [get]
func (h *Handler) NextID(c *gin.Context) {
	id, err := h.mintOne(c.Request.Context())
	if err != nil {
		h.respondMintError(c, err)
		return
	}
	respondOK(c, gin.H{"id": strconv.FormatUint(id, 10)})
}

// BatchIDs 批量生成ID
// @Summary 批量生成ID
// @Tags ids
// @Accept json
// @Produce json
// @Param request body batchRequest true "生成数量"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /ids [post]
func (h *Handler) BatchIDs(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body: count is required")
		return
	}

	ids, err := h.gen.NextIDBatch(req.Count)
	if err != nil {
		if errors.Is(err, core.ErrInvalidBatchSize) {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.respondMintError(c, err)
		return
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.FormatUint(id, 10)
	}
	respondOK(c, gin.H{"count": len(strs), "ids": strs})
}

// DecodeID 解码ID的各组成部分
// @Summary 解码ID
// @Tags ids
// @Produce json
// @Param id path string true "ID（十进制、0x十六进制或0b二进制）"
// @Param epoch query int false "生成该ID时使用的自定义纪元（毫秒）"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /ids/{id} [get]
func (h *Handler) DecodeID(c *gin.Context) {
	id, err := domain.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("invalid id: %v", err))
		return
	}
	if !id.IsValid() {
		respondError(c, http.StatusBadRequest, "invalid id: must be positive")
		return
	}

	epoch := h.epoch
	if raw := c.Query("epoch"); raw != "" {
		epoch, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid epoch: must be an integer")
			return
		}
	}

	sf, err := snowflake.Parse(id.Uint64(), epoch)
	if err != nil {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("failed to decode id: %v", err))
		return
	}

	respondOK(c, gin.H{
		"id":            id.String(),
		"timestamp":     sf.Timestamp(),
		"milliseconds":  sf.Milliseconds(),
		"seconds":       sf.Seconds(),
		"datetime":      sf.Time().Format(time.RFC3339Nano),
		"datacenter_id": sf.Datacenter(),
		"instance_id":   sf.Instance(),
		"sequence":      sf.Seq(),
		"epoch":         sf.Epoch(),
	})
}

// GeneratorInfo 查询生成器信息与运行指标
// @Summary 生成器信息
// @Tags generator
// @Produce json
// @Success 200 {object} Response
// @Router /generator [get]
func (h *Handler) GeneratorInfo(c *gin.Context) {
	respondOK(c, gin.H{
		"datacenter_id": h.gen.GetDatacenterID(),
		"instance_id":   h.gen.GetInstanceID(),
		"epoch":         h.gen.GetEpoch(),
		"id_count":      h.gen.GetIDCount(),
		"metrics":       h.gen.GetMetrics(),
	})
}

// mintOne 生成单个ID，瞬时失败（序列号耗尽、时钟回拨）时在预算内重试
func (h *Handler) mintOne(ctx context.Context) (uint64, error) {
	deadline := time.Now().Add(mintRetryBudget)
	for {
		id, err := h.gen.NextID()
		if err == nil {
			return id, nil
		}
		if !core.IsRetryable(err) || time.Now().After(deadline) {
			return 0, err
		}

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(mintRetryInterval):
		}
	}
}

func (h *Handler) respondMintError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrTimestampOverflow):
		respondError(c, http.StatusServiceUnavailable, "id space exhausted for the configured epoch")
	case core.IsRetryable(err):
		respondError(c, http.StatusServiceUnavailable, "id generation temporarily unavailable, retry later")
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		respondError(c, http.StatusServiceUnavailable, "request cancelled")
	default:
		respondError(c, http.StatusInternalServerError, "failed to generate id")
	}
}
