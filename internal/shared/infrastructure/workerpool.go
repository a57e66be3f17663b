package infrastructure

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task tâche exécutée par le pool; ctx est annulé dès la première erreur
type Task func(ctx context.Context) error

// WorkerPool exécute des tâches avec un parallélisme borné.
// Submit bloque tant que workerCount tâches sont en cours.
type WorkerPool struct {
	group *errgroup.Group
	ctx   context.Context
}

// NewWorkerPool crée un pool lié à ctx (workerCount <= 0: sans limite)
func NewWorkerPool(ctx context.Context, workerCount int) *WorkerPool {
	g, gctx := errgroup.WithContext(ctx)
	if workerCount > 0 {
		g.SetLimit(workerCount)
	}
	return &WorkerPool{group: g, ctx: gctx}
}

// Submit soumet une tâche; elle est ignorée si le pool est déjà annulé
func (wp *WorkerPool) Submit(task Task) {
	wp.group.Go(func() error {
		if err := wp.ctx.Err(); err != nil {
			return err
		}
		return task(wp.ctx)
	})
}

// Wait attend toutes les tâches et retourne la première erreur
func (wp *WorkerPool) Wait() error {
	return wp.group.Wait()
}
