package jobs

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNotFound は指定されたジョブIDが未登録であることを表します。
	ErrNotFound = errors.New("job not found")
	// ErrDuplicateID はジョブIDの衝突を表します。IDは衝突耐性のある方式で
	// 生成されるため、発生した場合はロジックエラーとして扱います。
	ErrDuplicateID = errors.New("job id already exists")
	// ErrInvalidTransition は前方向でない状態遷移の要求を表します。
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Store はジョブ状態をプロセス内メモリに保持します。
// すべての操作はミューテックスで排他され、読み取りは常に一貫した
// スナップショットを返します。プロセス再起動で全履歴は失われます。
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Record
	now  func() time.Time
}

// NewStore は Store を作成します。
func NewStore() *Store {
	return &Store{
		jobs: make(map[string]*Record),
		now:  time.Now,
	}
}

// Create は pending 状態の新しいジョブを登録し、そのスナップショットを返します。
func (s *Store) Create(jobID string, req Request) (Record, error) {
	if jobID == "" {
		return Record{}, fmt.Errorf("jobID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[jobID]; ok {
		return Record{}, fmt.Errorf("%w: %s", ErrDuplicateID, jobID)
	}

	now := s.now().UTC()
	rec := &Record{
		JobID:     jobID,
		Source:    req.Source,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.PageRange != nil {
		pr := *req.PageRange
		rec.PageRange = &pr
	}
	s.jobs[jobID] = rec
	return rec.clone(), nil
}

// Get はジョブのスナップショットを返します。状態と結果/エラーは
// 常に同時点の値として観測されます。
func (s *Store) Get(jobID string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return rec.clone(), nil
}

// MarkProcessing は pending のジョブを processing へ遷移させます。
func (s *Store) MarkProcessing(jobID string) error {
	return s.update(jobID, StatusPending, func(rec *Record) {
		rec.Status = StatusProcessing
	})
}

// MarkCompleted は processing のジョブを completed へ遷移させ、結果を保存します。
func (s *Store) MarkCompleted(jobID, result string) error {
	return s.update(jobID, StatusProcessing, func(rec *Record) {
		rec.Status = StatusCompleted
		rec.Result = result
		rec.Error = nil
	})
}

// MarkFailed は processing のジョブを failed へ遷移させ、エラー情報を保存します。
func (s *Store) MarkFailed(jobID string, errInfo *ErrorInfo) error {
	return s.update(jobID, StatusProcessing, func(rec *Record) {
		rec.Status = StatusFailed
		rec.Result = ""
		if errInfo != nil {
			ei := *errInfo
			rec.Error = &ei
		} else {
			rec.Error = &ErrorInfo{Code: "INTERNAL_ERROR", Message: "原因不明のエラーで失敗しました。"}
		}
	})
}

// Remove はジョブを登録から外します。ディスパッチに失敗した受付の
// 取り消しにのみ使用します。
func (s *Store) Remove(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}

// update は状態遷移を原子的に適用します。遷移は
// pending → processing → {completed, failed} の前方向のみ許可されます。
func (s *Store) update(jobID string, from Status, mutate func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.jobs[jobID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	if rec.Status != from {
		return fmt.Errorf("%w: job %s is %s", ErrInvalidTransition, jobID, rec.Status)
	}

	mutate(rec)
	rec.UpdatedAt = s.now().UTC()
	return nil
}
