package dao

import (
	"context"
	"database/sql"
	"errors"
	"reflect"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/webhookx-io/hookdash/db/query"
	"github.com/webhookx-io/hookdash/db/transaction"
	"go.uber.org/zap"
)

var (
	ErrNoRows              = sql.ErrNoRows
	ErrConstraintViolation = errors.New("constraint violation")
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Queryable is an interface to be used interchangeably for sqlx.Db and sqlx.Tx
type Queryable interface {
	sqlx.ExtContext
	GetContext(context.Context, interface{}, string, ...interface{}) error
	SelectContext(context.Context, interface{}, string, ...interface{}) error
}

type Options struct {
	Table      string
	EntityName string
}

type DAO[T any] struct {
	log  *zap.SugaredLogger
	db   *sqlx.DB
	opts Options
}

func NewDAO[T any](db *sqlx.DB, opts Options) *DAO[T] {
	return &DAO[T]{
		log:  zap.S().Named("dao"),
		db:   db,
		opts: opts,
	}
}

func (dao *DAO[T]) debugSQL(sql string, args []interface{}) {
	dao.log.Debugf("[%s] execute: %s", dao.opts.EntityName, sql)
}

func (dao *DAO[T]) DB(ctx context.Context) Queryable {
	if tx, ok := transaction.FromContext(ctx); ok {
		return tx
	}
	return dao.db
}

func (dao *DAO[T]) UnsafeDB(ctx context.Context) Queryable {
	db := dao.DB(ctx)
	if tx, ok := db.(*sqlx.Tx); ok {
		return tx.Unsafe()
	}
	return db.(*sqlx.DB).Unsafe()
}

func (dao *DAO[T]) Get(ctx context.Context, id string) (*T, error) {
	return dao.selectByField(ctx, "id", id)
}

func (dao *DAO[T]) selectByField(ctx context.Context, field string, value string) (entity *T, err error) {
	statement, args := psql.Select("*").From(dao.opts.Table).Where(sq.Eq{field: value}).MustSql()
	dao.debugSQL(statement, args)
	entity = new(T)
	err = dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return
}

// getForUpdate locks the row until the surrounding transaction ends
func (dao *DAO[T]) getForUpdate(ctx context.Context, id string) (entity *T, err error) {
	statement, args := psql.Select("*").From(dao.opts.Table).Where(sq.Eq{"id": id}).Suffix("FOR UPDATE").MustSql()
	dao.debugSQL(statement, args)
	entity = new(T)
	err = dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return
}

func (dao *DAO[T]) Delete(ctx context.Context, id string) (bool, error) {
	entity, err := dao.deleteReturning(ctx, id)
	return entity != nil, err
}

// deleteReturning deletes the row and returns what was deleted, nil when the row did not exist
func (dao *DAO[T]) deleteReturning(ctx context.Context, id string) (entity *T, err error) {
	statement, args := psql.Delete(dao.opts.Table).Where(sq.Eq{"id": id}).Suffix("RETURNING *").MustSql()
	dao.debugSQL(statement, args)
	entity = new(T)
	err = dao.UnsafeDB(ctx).GetContext(ctx, entity, statement, args...)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	return
}

func (dao *DAO[T]) Page(ctx context.Context, q query.Queryer) (list []*T, total int64, err error) {
	total, err = dao.count(ctx, q)
	if err != nil {
		return
	}
	list, err = dao.List(ctx, q)
	return
}

func (dao *DAO[T]) Count(ctx context.Context, where map[string]interface{}) (total int64, err error) {
	builder := psql.Select("COUNT(*)").From(dao.opts.Table)
	if len(where) > 0 {
		builder = builder.Where(sq.Eq(where))
	}
	statement, args := builder.MustSql()
	dao.debugSQL(statement, args)
	err = dao.DB(ctx).GetContext(ctx, &total, statement, args...)
	return
}

func (dao *DAO[T]) count(ctx context.Context, q query.Queryer) (total int64, err error) {
	statement, args := filter(psql.Select("COUNT(*)").From(dao.opts.Table), q).MustSql()
	dao.debugSQL(statement, args)
	err = dao.DB(ctx).GetContext(ctx, &total, statement, args...)
	return
}

func filter(builder sq.SelectBuilder, q query.Queryer) sq.SelectBuilder {
	if where := q.WhereMap(); len(where) > 0 {
		builder = builder.Where(sq.Eq(where))
	}
	for _, cond := range q.Conditions() {
		builder = builder.Where(cond)
	}
	return builder
}

func (dao *DAO[T]) List(ctx context.Context, q query.Queryer) (list []*T, err error) {
	statement, args := dao.listSQL(q)
	dao.debugSQL(statement, args)
	list = make([]*T, 0)
	err = dao.UnsafeDB(ctx).SelectContext(ctx, &list, statement, args...)
	return
}

func (dao *DAO[T]) listSQL(q query.Queryer) (string, []interface{}) {
	builder := filter(psql.Select("*").From(dao.opts.Table), q)
	if q.Limit() != 0 {
		builder = builder.Offset(uint64(q.Offset()))
		builder = builder.Limit(uint64(q.Limit()))
	}
	for _, order := range q.Orders() {
		builder = builder.OrderBy(order.String())
	}
	return builder.MustSql()
}

func (dao *DAO[T]) insertSQL(entity *T) (string, []interface{}) {
	columns := make([]string, 0)
	values := make([]interface{}, 0)
	EachField(entity, func(f reflect.StructField, v reflect.Value, column string) {
		switch column {
		case "created_at", "updated_at": // ignore
		default:
			columns = append(columns, column)
			values = append(values, v.Interface())
		}
	})
	return psql.Insert(dao.opts.Table).Columns(columns...).Values(values...).Suffix("RETURNING *").MustSql()
}

func (dao *DAO[T]) Insert(ctx context.Context, entity *T) error {
	statement, args := dao.insertSQL(entity)
	dao.debugSQL(statement, args)
	err := dao.UnsafeDB(ctx).QueryRowxContext(ctx, statement, args...).StructScan(entity)
	if is23505(err) {
		return ErrConstraintViolation
	}
	return err
}

func (dao *DAO[T]) updateSQL(entity *T) (string, []interface{}) {
	var id interface{}
	builder := psql.Update(dao.opts.Table)
	EachField(entity, func(f reflect.StructField, v reflect.Value, column string) {
		switch column {
		case "id":
			id = v.Interface()
		case "created_at": // ignore
		case "updated_at":
			builder = builder.Set(column, sq.Expr("now()"))
		default:
			builder = builder.Set(column, v.Interface())
		}
	})
	return builder.Where(sq.Eq{"id": id}).Suffix("RETURNING *").MustSql()
}

func (dao *DAO[T]) Update(ctx context.Context, entity *T) error {
	statement, args := dao.updateSQL(entity)
	dao.debugSQL(statement, args)
	return dao.UnsafeDB(ctx).QueryRowxContext(ctx, statement, args...).StructScan(entity)
}
