package repository

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"baddelli/pkg/errors"
)

type fakeSnapshots struct {
	ctx     context.Context
	snaps   chan []*firestore.DocumentSnapshot
	err     error
	stopped atomic.Bool
}

func (f *fakeSnapshots) Next() ([]*firestore.DocumentSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	select {
	case <-f.ctx.Done():
		return nil, f.ctx.Err()
	case docs := <-f.snaps:
		return docs, nil
	}
}

func (f *fakeSnapshots) Stop() {
	f.stopped.Store(true)
}

func TestListen_UnsubscribeWaitsForDelivery(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSnapshots{ctx: ctx, snaps: make(chan []*firestore.DocumentSnapshot)}

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	sub := listen(ctx, cancel, "trades", src, func([]*firestore.DocumentSnapshot) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
		}
	}, nil)

	src.snaps <- nil
	<-entered

	unsubscribed := make(chan struct{})
	go func() {
		sub.Unsubscribe()
		close(unsubscribed)
	}()

	select {
	case <-unsubscribed:
		t.Fatal("Unsubscribe returned while a snapshot was being delivered")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-unsubscribed:
	case <-time.After(time.Second):
		t.Fatal("Unsubscribe did not return")
	}

	assert.True(t, src.stopped.Load())
	assert.Equal(t, int32(1), calls.Load())

	sub.Unsubscribe()
}

func TestListen_FailureReachesErrorHandler(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &fakeSnapshots{ctx: ctx, err: assert.AnError}

	errs := make(chan error, 1)
	sub := listen(ctx, cancel, "messages", src, func([]*firestore.DocumentSnapshot) {
		t.Error("no snapshot expected")
	}, func(err error) {
		errs <- err
	})

	select {
	case err := <-errs:
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.CodePersistence))
	case <-time.After(time.Second):
		t.Fatal("error handler not called")
	}

	sub.Unsubscribe()
	assert.True(t, src.stopped.Load())
}
