package jobs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/doc-forge/internal/convert"
)

// SubmitHandler は POST /api/jobs のハンドラーを返します。
// 受理したジョブは 202 Accepted と pending 状態で即時応答します。
func SubmitHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "source を含む JSON を送信してください。",
			})
			return
		}
		if strings.TrimSpace(req.Source) == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "INVALID_INPUT",
				"message": "変換元 source を指定してください。",
			})
			return
		}
		if req.PageRange != nil {
			if err := req.PageRange.Validate(); err != nil {
				respondWithError(c, err)
				return
			}
		}

		rec, err := m.Submit(c.Request.Context(), req)
		if err != nil {
			if errors.Is(err, ErrQueueFull) {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"code":    "QUEUE_FULL",
					"message": "ジョブキューが満杯です。しばらくしてから再度お試しください。",
				})
				return
			}
			if errors.Is(err, ErrPoolClosed) {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"code":    "SHUTTING_DOWN",
					"message": "サーバーは停止処理中です。新規ジョブは受付できません。",
				})
				return
			}
			respondWithError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"jobId":  rec.JobID,
			"status": rec.Status,
		})
	}
}

// StatusHandler は GET /api/jobs/:id のハンドラーを返します。
func StatusHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := jobIDParam(c)
		if !ok {
			return
		}

		rec, err := m.GetRecord(jobID)
		if err != nil {
			respondWithError(c, err)
			return
		}

		payload := gin.H{
			"jobId":     rec.JobID,
			"source":    rec.Source,
			"status":    rec.Status,
			"createdAt": rec.CreatedAt,
			"updatedAt": rec.UpdatedAt,
		}
		if rec.PageRange != nil {
			payload["pageRange"] = rec.PageRange
		}
		// 空テキストの結果も区別できるよう、completed では常に result を返す
		if rec.Status == StatusCompleted {
			payload["result"] = rec.Result
		}
		if rec.Error != nil {
			payload["error"] = rec.Error
		}

		c.JSON(http.StatusOK, payload)
	}
}

// ResultHandler は GET /api/jobs/:id/result のハンドラーを返します。
// 未完了のジョブには 202 で「処理中」を返し、失敗済みのジョブには
// 捕捉済みのエラー情報を返します。
func ResultHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := jobIDParam(c)
		if !ok {
			return
		}

		result, err := m.GetResult(jobID)
		if err != nil {
			respondWithResultError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"jobId":  jobID,
			"result": result,
		})
	}
}

// DownloadHandler は GET /api/jobs/:id/download のハンドラーを返します。
// 完了済みジョブの結果テキストを添付ファイルとして返します。
func DownloadHandler(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		jobID, ok := jobIDParam(c)
		if !ok {
			return
		}

		result, err := m.GetResult(jobID)
		if err != nil {
			respondWithResultError(c, err)
			return
		}

		filename := fmt.Sprintf("converted-%s.txt", jobID)
		encodedName := url.PathEscape(filename)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"; filename*=UTF-8''%s", filename, encodedName))
		c.Header("Cache-Control", "no-store")
		c.Header("X-Job-Id", jobID)
		c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result))
	}
}

func jobIDParam(c *gin.Context) (string, bool) {
	jobID := strings.TrimSpace(c.Param("id"))
	if jobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "INVALID_INPUT",
			"message": "jobId を指定してください。",
		})
		return "", false
	}
	return jobID, true
}

func respondWithError(c *gin.Context, err error) {
	var convErr *convert.Error
	switch {
	case errors.As(err, &convErr):
		status := http.StatusBadRequest
		if convErr.Code == "LIMIT_EXCEEDED" {
			status = http.StatusRequestEntityTooLarge
		}
		c.JSON(status, gin.H{
			"code":    convErr.Code,
			"message": convErr.Message,
		})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "JOB_NOT_FOUND",
			"message": "指定されたジョブは存在しません。",
		})
	case errors.Is(err, ErrDuplicateID):
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "DUPLICATE_JOB_ID",
			"message": "ジョブIDが衝突しました。",
		})
	case errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, gin.H{
			"code":    "REQUEST_CANCELED",
			"message": "リクエストがキャンセルされました。",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "INTERNAL_ERROR",
			"message": "サーバー内部でエラーが発生しました。",
		})
	}
}

func respondWithResultError(c *gin.Context, err error) {
	var failure *JobFailure
	switch {
	case errors.Is(err, ErrStillProcessing):
		c.JSON(http.StatusAccepted, gin.H{
			"code":    "STILL_PROCESSING",
			"message": "ジョブはまだ処理中です。しばらくしてから再度お試しください。",
		})
	case errors.As(err, &failure):
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    failure.Info.Code,
			"message": failure.Info.Message,
		})
	default:
		respondWithError(c, err)
	}
}
