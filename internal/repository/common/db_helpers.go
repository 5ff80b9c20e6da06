package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Table - имя таблицы. Подставляется в запрос напрямую, поэтому
// допускаются только значения из набора ниже.
type Table string

const (
	TableUsers         Table = "users"
	TableEngagements   Table = "engagements"
	TableDeliverables  Table = "deliverable_versions"
	TableFeedback      Table = "feedback_items"
	TableEscrow        Table = "escrow_transactions"
	TableInvoices      Table = "invoices"
	TablePortfolio     Table = "portfolio_items"
	TableNotifications Table = "notifications"
)

// GetByID читает строку по первичному ключу. Отсутствие строки возвращает notFoundErr.
func GetByID[T any](ctx context.Context, q sqlx.QueryerContext, table Table, id uuid.UUID, notFoundErr error) (*T, error) {
	return getOne[T](ctx, q, fmt.Sprintf("SELECT * FROM %s WHERE id = $1", table), id, notFoundErr)
}

// LockByID читает строку с FOR UPDATE. Блокировка держится до конца tx.
func LockByID[T any](ctx context.Context, tx *sqlx.Tx, table Table, id uuid.UUID, notFoundErr error) (*T, error) {
	return getOne[T](ctx, tx, fmt.Sprintf("SELECT * FROM %s WHERE id = $1 FOR UPDATE", table), id, notFoundErr)
}

func getOne[T any](ctx context.Context, q sqlx.QueryerContext, query string, id uuid.UUID, notFoundErr error) (*T, error) {
	var entity T
	if err := sqlx.GetContext(ctx, q, &entity, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("%s: %w", query, err)
	}
	return &entity, nil
}

// Count выполняет COUNT-запрос и возвращает результат.
func Count(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (int, error) {
	var total int
	if err := sqlx.GetContext(ctx, q, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return total, nil
}

// PageQuery описывает выборку страницы из одной таблицы.
// Where пишется без ключевого слова WHERE и нумерует плейсхолдеры с $1.
type PageQuery struct {
	Table   Table
	Where   string
	Args    []interface{}
	OrderBy string
	Limit   int
	Offset  int
}

func (p PageQuery) whereClause() string {
	if strings.TrimSpace(p.Where) == "" {
		return ""
	}
	return " WHERE " + p.Where
}

// ListPage возвращает строки страницы и общее число строк под фильтром.
// Пустой результат - пустой срез, не nil.
func ListPage[T any](ctx context.Context, q sqlx.QueryerContext, p PageQuery) ([]T, int, error) {
	where := p.whereClause()

	total, err := Count(ctx, q, fmt.Sprintf("SELECT COUNT(*) FROM %s%s", p.Table, where), p.Args...)
	if err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT * FROM %s%s", p.Table, where)
	if p.OrderBy != "" {
		query += " ORDER BY " + p.OrderBy
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(p.Args)+1, len(p.Args)+2)

	args := make([]interface{}, 0, len(p.Args)+2)
	args = append(args, p.Args...)
	args = append(args, p.Limit, p.Offset)

	items := []T{}
	if err := sqlx.SelectContext(ctx, q, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select page from %s: %w", p.Table, err)
	}

	return items, total, nil
}

// WithTransaction выполняет fn в транзакции: коммит при nil, откат при ошибке или panic.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
