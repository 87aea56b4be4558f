package repository

import (
	"context"
	"sync"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"baddelli/internal/domain/repository"
	"baddelli/pkg/errors"
	"baddelli/pkg/logger"
)

// snapshotSource yields the complete result set after every change.
type snapshotSource interface {
	Next() ([]*firestore.DocumentSnapshot, error)
	Stop()
}

type querySnapshots struct {
	it *firestore.QuerySnapshotIterator
}

func (q querySnapshots) Next() ([]*firestore.DocumentSnapshot, error) {
	snap, err := q.it.Next()
	if err != nil {
		return nil, err
	}
	return snap.Documents.GetAll()
}

func (q querySnapshots) Stop() {
	q.it.Stop()
}

// watchQuery runs a snapshot listener for q in its own goroutine. onSnapshot
// receives the complete result set after every change, in commit order.
func watchQuery(ctx context.Context, name string, q firestore.Query, onSnapshot func([]*firestore.DocumentSnapshot), onErr repository.ErrorHandler) repository.Subscription {
	ctx, cancel := context.WithCancel(ctx)
	return listen(ctx, cancel, name, querySnapshots{it: q.Snapshots(ctx)}, onSnapshot, onErr)
}

// listen drives src until ctx ends or src fails. Unsubscribe cancels ctx and
// waits for the listener goroutine, so no onSnapshot call starts or is still
// running once it returns. It must not be called from inside onSnapshot.
func listen(ctx context.Context, cancel context.CancelFunc, name string, src snapshotSource, onSnapshot func([]*firestore.DocumentSnapshot), onErr repository.ErrorHandler) repository.Subscription {
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer src.Stop()
		for {
			docs, err := src.Next()
			if err != nil {
				if ctx.Err() != nil || err == iterator.Done || status.Code(err) == codes.Canceled {
					logger.Debug("Snapshot listener %s stopped", name)
					return
				}
				logger.Error("Snapshot listener %s failed: %v", name, err)
				if onErr != nil {
					onErr(errors.Persistence("Live updates for "+name+" stopped", err))
				}
				return
			}
			if ctx.Err() != nil {
				return
			}
			onSnapshot(docs)
		}
	}()

	var once sync.Once
	return repository.SubscriptionFunc(func() {
		once.Do(cancel)
		<-done
	})
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
