package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCopyFrom_EmptyRows(t *testing.T) {
	n, err := CopyFrom(context.TODO(), nil, "area_scores", []string{"zip_code", "composite_score"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"area_scores"}, []string{"zip_code", "composite_score"}).WillReturnResult(3)

	rows := [][]any{{"02108", 7.1}, {"02109", 6.4}, {"02110", 8.2}}
	n, err := CopyFrom(context.Background(), mock, "area_scores", []string{"zip_code", "composite_score"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"area_scores"}, []string{"zip_code"}).WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"02108"}}
	_, err = CopyFrom(context.Background(), mock, "area_scores", []string{"zip_code"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO area_scores")
	assert.NoError(t, mock.ExpectationsWereMet())
}
