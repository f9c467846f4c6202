package jobs

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/doc-forge/internal/config"
	"github.com/yourusername/doc-forge/internal/convert"
)

const defaultConvertTimeout = 300 * time.Second

// ErrStillProcessing は結果照会に対する「まだ処理中」の制御シグナルです。
// エラーではなく、後で再照会すべきことを表します。
var ErrStillProcessing = errors.New("job is still processing")

// JobFailure は失敗済みジョブの結果照会で返され、捕捉済みの
// エラー情報を運びます。
type JobFailure struct {
	Info ErrorInfo
}

func (e *JobFailure) Error() string {
	return e.Info.Message
}

// Manager はジョブの受付・照会とワーカーディスパッチを担います。
type Manager struct {
	store     *Store
	converter convert.Converter
	inspector *convert.Inspector
	pool      *Pool
	logger    *log.Logger
	timeout   time.Duration
}

// NewManager は Manager を初期化します。inspector と logger は省略可能です。
func NewManager(cfg *config.Config, store *Store, converter convert.Converter, inspector *convert.Inspector, logger *log.Logger) (*Manager, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if converter == nil {
		return nil, errors.New("converter is nil")
	}

	timeout := defaultConvertTimeout
	if cfg.ConvertTimeoutSeconds > 0 {
		timeout = time.Duration(cfg.ConvertTimeoutSeconds) * time.Second
	}

	m := &Manager{
		store:     store,
		converter: converter,
		inspector: inspector,
		logger:    logger,
		timeout:   timeout,
	}
	m.pool = NewPool(cfg.WorkerConcurrency, cfg.QueueCapacity, m.process)
	return m, nil
}

// StartWorkers はワーカープールをバックグラウンドで起動します。
func (m *Manager) StartWorkers(ctx context.Context) {
	m.pool.Start(ctx)
}

// Shutdown は新規受付を止め、実行中・キュー済みジョブの完了を待ちます。
func (m *Manager) Shutdown(ctx context.Context) error {
	return m.pool.Shutdown(ctx)
}

// Submit は変換依頼を受け付け、pending 状態のジョブを登録して
// ワーカーへディスパッチします。呼び出し元はジョブの完了を待ちません。
// 返却前にジョブは Store から照会可能になります。
func (m *Manager) Submit(ctx context.Context, req Request) (Record, error) {
	if strings.TrimSpace(req.Source) == "" {
		return Record{}, fmt.Errorf("source is required")
	}
	if req.PageRange != nil {
		if err := req.PageRange.Validate(); err != nil {
			return Record{}, err
		}
	}

	jobID := uuid.NewString()
	rec, err := m.store.Create(jobID, req)
	if err != nil {
		return Record{}, err
	}

	if err := m.pool.Dispatch(task{jobID: jobID, req: req}); err != nil {
		// 実行されないジョブを pending のまま残さない
		m.store.Remove(jobID)
		return Record{}, err
	}
	return rec, nil
}

// GetRecord はジョブの現在状態のスナップショットを返します。
func (m *Manager) GetRecord(jobID string) (Record, error) {
	return m.store.Get(jobID)
}

// GetResult は完了済みジョブの結果テキストを返します。
// 未完了の場合は ErrStillProcessing、失敗済みの場合は *JobFailure、
// 未登録IDの場合は ErrNotFound を返します。
func (m *Manager) GetResult(jobID string) (string, error) {
	rec, err := m.store.Get(jobID)
	if err != nil {
		return "", err
	}

	switch rec.Status {
	case StatusCompleted:
		return rec.Result, nil
	case StatusFailed:
		info := ErrorInfo{Code: "CONVERSION_FAILED", Message: "変換に失敗しました。"}
		if rec.Error != nil {
			info = *rec.Error
		}
		return "", &JobFailure{Info: info}
	default:
		return "", ErrStillProcessing
	}
}

// process は1件のジョブを実行し、開始後は必ずいずれかの終端状態へ
// 遷移させます。変換時のエラーとパニックはジョブ状態に変換され、
// 他のジョブやプロセスには波及しません。
func (m *Manager) process(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			m.logf("job %s: panic recovered: %v", t.jobID, r)
			m.failJob(t.jobID, &ErrorInfo{
				Code:    "INTERNAL_ERROR",
				Message: fmt.Sprintf("変換処理が異常終了しました: %v", r),
			})
		}
	}()

	if err := m.store.MarkProcessing(t.jobID); err != nil {
		m.logf("job %s: claim failed: %v", t.jobID, err)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	creq := convert.Request{Source: t.req.Source, PageRange: t.req.PageRange}

	if m.inspector != nil {
		if err := m.inspector.Inspect(creq); err != nil {
			m.failJobWithError(t.jobID, err)
			return
		}
	}

	doc, err := m.converter.Convert(runCtx, creq)
	if err != nil {
		m.failJobWithError(t.jobID, err)
		return
	}
	if doc == nil {
		m.failJob(t.jobID, &ErrorInfo{Code: "INTERNAL_ERROR", Message: "変換器が結果を返しませんでした。"})
		return
	}

	if err := m.store.MarkCompleted(t.jobID, doc.Text); err != nil {
		m.logf("job %s: completion update failed: %v", t.jobID, err)
		return
	}
	m.logf("job %s: completed", t.jobID)
}

func (m *Manager) failJobWithError(jobID string, err error) {
	var convErr *convert.Error
	switch {
	case errors.As(err, &convErr):
		m.failJob(jobID, &ErrorInfo{Code: convErr.Code, Message: convErr.Message})
	case errors.Is(err, context.DeadlineExceeded):
		m.failJob(jobID, &ErrorInfo{Code: "CONVERT_TIMEOUT", Message: "変換処理が制限時間内に完了しませんでした。"})
	default:
		m.failJob(jobID, &ErrorInfo{Code: "INTERNAL_ERROR", Message: err.Error()})
	}
}

func (m *Manager) failJob(jobID string, info *ErrorInfo) {
	if err := m.store.MarkFailed(jobID, info); err != nil {
		m.logf("job %s: failure update failed: %v", jobID, err)
		return
	}
	m.logf("job %s: failed (%s)", jobID, info.Code)
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}
