package jobs

import (
	"time"

	"github.com/yourusername/doc-forge/internal/convert"
)

// Status はジョブの実行状態を表します。
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Terminal はこれ以上遷移しない終端状態かどうかを返します。
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// ErrorInfo はジョブ失敗時のエラー情報を保持します。
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Request はジョブとして受け付ける変換依頼です。
type Request struct {
	Source    string             `json:"source"`
	PageRange *convert.PageRange `json:"pageRange,omitempty"`
}

// Record はジョブの現在状態を表します。
// Result は completed、Error は failed のときにのみ設定されます。
type Record struct {
	JobID     string             `json:"jobId"`
	Source    string             `json:"source"`
	PageRange *convert.PageRange `json:"pageRange,omitempty"`
	Status    Status             `json:"status"`
	Result    string             `json:"result,omitempty"`
	Error     *ErrorInfo         `json:"error,omitempty"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// clone はポインタフィールドを共有しない複製を返します。
func (r *Record) clone() Record {
	c := *r
	if r.PageRange != nil {
		pr := *r.PageRange
		c.PageRange = &pr
	}
	if r.Error != nil {
		ei := *r.Error
		c.Error = &ei
	}
	return c
}
