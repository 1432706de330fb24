package store

import (
	"database/sql"
	"time"
)

// dbQueue serializes all access to an embedded database through a single
// worker goroutine, retrying busy errors with growing backoff.
type dbQueue struct {
	tasks      chan dbTask
	db         *sql.DB
	maxRetry   int
	retryDelay time.Duration
}

type dbTask struct {
	exec func(*sql.DB) (interface{}, error)
	resp chan dbResult
}

type dbResult struct {
	data interface{}
	err  error
}

func newDBQueue(db *sql.DB, retryDelay time.Duration) *dbQueue {
	q := &dbQueue{
		tasks:      make(chan dbTask, 100),
		db:         db,
		maxRetry:   3,
		retryDelay: retryDelay,
	}
	go q.worker()
	return q
}

func (q *dbQueue) execute(task func(*sql.DB) (interface{}, error)) (interface{}, error) {
	resp := make(chan dbResult, 1)
	q.tasks <- dbTask{exec: task, resp: resp}
	result := <-resp
	return result.data, result.err
}

func (q *dbQueue) worker() {
	for task := range q.tasks {
		var lastErr error
		for attempt := 0; attempt < q.maxRetry; attempt++ {
			data, err := task.exec(q.db)
			if err == nil {
				task.resp <- dbResult{data: data}
				lastErr = nil
				break
			}
			lastErr = err
			if attempt < q.maxRetry-1 {
				time.Sleep(time.Duration(attempt+1) * q.retryDelay)
			}
		}
		if lastErr != nil {
			task.resp <- dbResult{err: lastErr}
		}
	}
}

func (q *dbQueue) close() {
	close(q.tasks)
}
