package database

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = r.values[i].(int64)
		case *int:
			*p = r.values[i].(int)
		case *string:
			*p = r.values[i].(string)
		case *bool:
			*p = r.values[i].(bool)
		}
	}
	return nil
}

type fakeResult int64

func (fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }

func TestScanGiveaway(t *testing.T) {
	row := fakeRow{values: []any{
		int64(7), "818821436255895612", "c1", "g1", "h1", "nitro", 2,
		int64(1000), int64(5000), false, int64(900),
	}}

	g, err := scanGiveaway(row)
	require.NoError(t, err)
	assert.Equal(t, int64(7), g.ID)
	assert.Equal(t, "818821436255895612", g.MessageID)
	assert.Equal(t, "nitro", g.Prize)
	assert.Equal(t, 2, g.WinnerCount)
	assert.Equal(t, int64(5000), g.EndAt)
	assert.False(t, g.Ended)
}

func TestScanGiveawayError(t *testing.T) {
	_, err := scanGiveaway(fakeRow{err: sql.ErrNoRows})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestExpectRow(t *testing.T) {
	assert.NoError(t, expectRow(fakeResult(1)))
	assert.ErrorIs(t, expectRow(fakeResult(0)), ErrNotFound)
}
