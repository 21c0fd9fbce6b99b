package main

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/radif/uploads/internal/storage"
)

// lazyStorage opens the real backend on the first Upload. A failed open is
// retried by the next Upload.
type lazyStorage struct {
	open func(ctx context.Context) (storage.Storage, error)

	mu    sync.Mutex
	store storage.Storage
}

func newLazyStorage(open func(ctx context.Context) (storage.Storage, error)) *lazyStorage {
	return &lazyStorage{open: open}
}

func (l *lazyStorage) get(ctx context.Context) (storage.Storage, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store != nil {
		return l.store, nil
	}
	st, err := l.open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	l.store = st
	return st, nil
}

func (l *lazyStorage) Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	st, err := l.get(ctx)
	if err != nil {
		return err
	}
	return st.Upload(ctx, key, reader, size, contentType)
}

// PublicURL is only meaningful after a successful Upload.
func (l *lazyStorage) PublicURL(key string) string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.store == nil {
		return ""
	}
	return l.store.PublicURL(key)
}
