package transaction

import (
	"context"
	"sync"

	"github.com/jmoiron/sqlx"
)

type txContextKey struct{}

type callbacksContextKey struct{}

func WithTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, tx)
}

func FromContext(ctx context.Context) (*sqlx.Tx, bool) {
	value, ok := ctx.Value(txContextKey{}).(*sqlx.Tx)
	return value, ok
}

// Callbacks run once the transaction they were registered in is finished
type Callbacks struct {
	mux        sync.Mutex
	onCommit   []func()
	onRollback []func()
}

func WithCallbacks(ctx context.Context) (context.Context, *Callbacks) {
	callbacks := &Callbacks{}
	return context.WithValue(ctx, callbacksContextKey{}, callbacks), callbacks
}

func callbacksFromContext(ctx context.Context) (*Callbacks, bool) {
	value, ok := ctx.Value(callbacksContextKey{}).(*Callbacks)
	return value, ok
}

// InTx reports whether ctx belongs to a transaction accepting callbacks
func InTx(ctx context.Context) bool {
	_, ok := callbacksFromContext(ctx)
	return ok
}

// OnCommit registers fn to run after the transaction in ctx commits.
// It returns false when ctx carries no transaction.
func OnCommit(ctx context.Context, fn func()) bool {
	callbacks, ok := callbacksFromContext(ctx)
	if !ok {
		return false
	}
	callbacks.mux.Lock()
	defer callbacks.mux.Unlock()
	callbacks.onCommit = append(callbacks.onCommit, fn)
	return true
}

// OnRollback registers fn to run after the transaction in ctx is rolled back or fails to commit.
// It returns false when ctx carries no transaction.
func OnRollback(ctx context.Context, fn func()) bool {
	callbacks, ok := callbacksFromContext(ctx)
	if !ok {
		return false
	}
	callbacks.mux.Lock()
	defer callbacks.mux.Unlock()
	callbacks.onRollback = append(callbacks.onRollback, fn)
	return true
}

func (c *Callbacks) Committed() {
	c.run(&c.onCommit)
}

func (c *Callbacks) RolledBack() {
	c.run(&c.onRollback)
}

func (c *Callbacks) run(list *[]func()) {
	c.mux.Lock()
	fns := *list
	c.onCommit, c.onRollback = nil, nil
	c.mux.Unlock()
	for _, fn := range fns {
		fn()
	}
}
