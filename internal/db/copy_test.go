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
	n, err := CopyFrom(context.TODO(), nil, "disclosures", []string{"date", "code"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestCopyFrom_Success(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"disclosures"}, []string{"date", "code"}).WillReturnResult(3)

	rows := [][]any{{"20250819", "12340"}, {"20250819", "34560"}, {"20250819", "56780"}}
	n, err := CopyFrom(context.Background(), mock, "disclosures", []string{"date", "code"}, rows)
	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopyFrom_Error(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectCopyFrom(pgx.Identifier{"disclosures"}, []string{"date", "code"}).
		WillReturnError(fmt.Errorf("copy failed"))

	rows := [][]any{{"20250819", "12340"}}
	_, err = CopyFrom(context.Background(), mock, "disclosures", []string{"date", "code"}, rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "COPY INTO disclosures")
	assert.NoError(t, mock.ExpectationsWereMet())
}
