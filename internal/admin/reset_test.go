package admin

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	db "github.com/JonMunkholm/salesimport/internal/database"
)

// recordingDB captures Exec calls and fails on the statement containing failOn.
type recordingDB struct {
	stmts  []string
	args   [][]interface{}
	failOn string
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	if d.failOn != "" && strings.Contains(sql, d.failOn) {
		return pgconn.CommandTag{}, errors.New("permission denied")
	}
	d.stmts = append(d.stmts, sql)
	d.args = append(d.args, args)
	return pgconn.NewCommandTag("DELETE 0"), nil
}

func (d *recordingDB) Query(context.Context, string, ...interface{}) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (d *recordingDB) QueryRow(context.Context, string, ...interface{}) pgx.Row {
	return nil
}

func TestResetAll_Order(t *testing.T) {
	rec := &recordingDB{}
	r := &ResetDbs{DB: db.New(rec), KeepCategoryID: 1}

	require.NoError(t, r.ResetAll(context.Background()))
	require.Len(t, rec.stmts, 5)

	order := []string{"sale_items", "sales", "customers", "products", "categories"}
	for i, table := range order {
		assert.Contains(t, rec.stmts[i], "DELETE FROM "+table)
	}
	assert.Equal(t, []interface{}{int64(1)}, rec.args[4])
}

func TestResetAll_StopsOnError(t *testing.T) {
	rec := &recordingDB{failOn: "FROM customers"}
	r := &ResetDbs{DB: db.New(rec), KeepCategoryID: 1}

	err := r.ResetAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reset customers")
	assert.Len(t, rec.stmts, 2)
}
