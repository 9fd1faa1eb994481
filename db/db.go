package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/webhookx-io/hookdash/config/modules"
	"github.com/webhookx-io/hookdash/db/dao"
	"github.com/webhookx-io/hookdash/db/transaction"
	"go.uber.org/zap"
)

type DB struct {
	DB  *sqlx.DB
	log *zap.SugaredLogger

	Endpoints dao.EndpointDAO
	Webhooks  dao.WebhookDAO
}

type Option func(*options)

type options struct {
	hook dao.ChangeHook
}

// WithChangeHook observes every webhook write
func WithChangeHook(hook dao.ChangeHook) Option {
	return func(o *options) {
		o.hook = hook
	}
}

func NewSqlDB(cfg modules.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(int(cfg.MaxPoolSize))
	db.SetMaxIdleConns(int(cfg.MaxPoolSize))
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	return db, nil
}

func NewDB(sqlDB *sql.DB, log *zap.SugaredLogger, opts ...Option) *DB {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	sqlxDB := sqlx.NewDb(sqlDB, "pgx")
	return &DB{
		DB:        sqlxDB,
		log:       log,
		Endpoints: dao.NewEndpointDAO(sqlxDB),
		Webhooks:  dao.NewWebhookDAO(sqlxDB, o.hook),
	}
}

func (db *DB) Ping() error {
	return db.DB.Ping()
}

// TX runs fn in a transaction. Callbacks registered through transaction.OnCommit
// and transaction.OnRollback run once the outcome is known.
func (db *DB) TX(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	ctx, callbacks := transaction.WithCallbacks(transaction.WithTx(ctx, tx))

	defer func() {
		if err := recover(); err != nil {
			db.log.Errorf("panic recovered: %v", err)
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Errorf("failed to rollback the tx: %v", rbErr)
			}
			callbacks.RolledBack()
			panic(err)
		}
	}()

	err = fn(ctx)
	if err != nil {
		defer callbacks.RolledBack()
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrap(err, rbErr.Error())
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		callbacks.RolledBack()
		return err
	}
	callbacks.Committed()
	return nil
}

func (db *DB) Truncate(table string) error {
	sql := fmt.Sprintf("DELETE FROM %s", table)
	_, err := db.DB.Exec(sql)
	return err
}

func (db *DB) SqlDB() *sql.DB {
	return db.DB.DB
}

func (db *DB) Close() error {
	return db.DB.Close()
}

func (db *DB) Stats() map[string]interface{} {
	s := db.DB.Stats()
	return map[string]interface{}{
		"database.total_connections":  s.OpenConnections,
		"database.active_connections": s.InUse,
	}
}
