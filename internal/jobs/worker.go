// Package jobs は非同期ジョブ管理機能を提供します。
package jobs

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrQueueFull はジョブキューが満杯で受付できないことを表します。
	ErrQueueFull = errors.New("job queue is full")
	// ErrPoolClosed は停止処理開始後の受付要求を表します。
	ErrPoolClosed = errors.New("job queue is closed")
)

// task は実行待ちの変換1件を表します。
type task struct {
	jobID string
	req   Request
}

// Pool は上限付きのワーカープールです。ワーカー数とキュー長が
// 同時実行数を制限し、満杯時は受付時点で拒否します。
type Pool struct {
	tasks chan task
	size  int
	run   func(context.Context, task)

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool は Pool を作成します。
func NewPool(size, queueCapacity int, run func(context.Context, task)) *Pool {
	if size <= 0 {
		size = 1
	}
	if queueCapacity <= 0 {
		queueCapacity = 1
	}
	return &Pool{
		tasks: make(chan task, queueCapacity),
		size:  size,
		run:   run,
	}
}

// Start はワーカーをバックグラウンドで起動します。
// 渡した ctx は実行中の各タスクの基底コンテキストになります。
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for t := range p.tasks {
				p.run(ctx, t)
			}
		}()
	}
}

// Dispatch はタスクをキューへ投入します。満杯の場合はブロックせず
// ErrQueueFull を、停止処理開始後は ErrPoolClosed を返します。
// クローズ判定と投入はロック下で行い、Shutdown の close と競合しません。
func (p *Pool) Dispatch(t task) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.tasks <- t:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown は新規受付を止め、キュー済みタスクの完了を待ちます。
// ctx の期限超過時は待機を打ち切ります。
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.tasks)
	}
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
