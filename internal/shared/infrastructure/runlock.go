package infrastructure

import (
	"context"
	"errors"

	"golang.org/x/sync/semaphore"
)

// ErrRunInProgress une exécution est déjà en cours dans ce processus
var ErrRunInProgress = errors.New("a run is already in progress")

// RunLock garantit un seul écrivain à la fois sur les artefacts de sortie
type RunLock struct {
	sem *semaphore.Weighted
}

// NewRunLock crée un verrou libre
func NewRunLock() *RunLock {
	return &RunLock{sem: semaphore.NewWeighted(1)}
}

// TryAcquire prend le verrou sans attendre (ErrRunInProgress si occupé)
func (l *RunLock) TryAcquire() error {
	if !l.sem.TryAcquire(1) {
		return ErrRunInProgress
	}
	return nil
}

// Acquire attend le verrou ou l'annulation du contexte
func (l *RunLock) Acquire(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

// Release libère le verrou
func (l *RunLock) Release() {
	l.sem.Release(1)
}
