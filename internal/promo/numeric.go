package promo

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pkg/errors"
)

// numericToFloat64 converts a pgtype.Numeric column value to float64.
func numericToFloat64(n pgtype.Numeric) (float64, error) {
	val, err := n.Value()
	if err != nil {
		return 0, err
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	default:
		return 0, errors.Errorf("unexpected numeric driver type: %T", v)
	}
}

// float64ToNumeric converts a float64 into a pgtype.Numeric suitable
// for a NUMERIC(10,2) column parameter.
func float64ToNumeric(f float64) (pgtype.Numeric, error) {
	s := strconv.FormatFloat(f, 'f', 2, 64)

	n := pgtype.Numeric{}
	if err := n.Scan(s); err != nil {
		return pgtype.Numeric{}, errors.Wrap(err, "numeric scan")
	}
	return n, nil
}
