package errs

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type DBError struct {
	Err error
}

func (e *DBError) Error() string {
	return e.Err.Error()
}

func NewDBError(err error) *DBError {
	return &DBError{Err: err}
}

var detailRe = regexp.MustCompile(`\([^()]+\)`)

// ConvertError converts unique and foreign key violations into a DBError
func ConvertError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		return NewDBError(errors.New("unique constraint violation: " + pairs(pgErr.Detail)))
	case pgerrcode.ForeignKeyViolation:
		return NewDBError(errors.New("foreign key constraint violation: " + pairs(pgErr.Detail)))
	}
	return err
}

// pairs turns `Key (id)=(1) already exists.` into `(id)=(1)`
func pairs(detail string) string {
	matches := detailRe.FindAllString(detail, -1)
	var strs []string
	for i := 0; i+1 < len(matches); i = i + 2 {
		strs = append(strs, fmt.Sprintf("%s=%s", matches[i], matches[i+1]))
	}
	return strings.Join(strs, ", ")
}
