package recorder

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/keyscope/keyscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runRecorderContract exercises behavior every Recorder must share.
// maxHistory must be 3.
func runRecorderContract(t *testing.T, rec Recorder) {
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	newExec := func(db string, i int) *models.CommandExecution {
		slot := 12182
		return &models.CommandExecution{
			DatabaseID: db,
			Command:    fmt.Sprintf("get key:%d", i),
			Role:       models.RoleAll,
			CreatedAt:  base.Add(time.Duration(i) * time.Second),
			Result: []models.CommandExecutionResult{{
				Status:   models.StatusSuccess,
				Response: "value",
				Node:     &models.ResultNode{Host: "127.0.0.1", Port: 7000, Slot: &slot},
			}},
		}
	}

	t.Run("create assigns id and round-trips", func(t *testing.T) {
		saved, err := rec.Create(ctx, newExec("db1", 0))
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)

		got, err := rec.GetOne(ctx, "db1", saved.ID)
		require.NoError(t, err)
		assert.Equal(t, saved.Command, got.Command)
		require.Len(t, got.Result, 1)
		assert.Equal(t, models.StatusSuccess, got.Result[0].Status)
		assert.Equal(t, "value", got.Result[0].Response)
		require.NotNil(t, got.Result[0].Node.Slot)
		assert.Equal(t, 12182, *got.Result[0].Node.Slot)
		assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	})

	t.Run("list is newest first, short, and bounded", func(t *testing.T) {
		var ids []string
		for i := 1; i <= 4; i++ {
			saved, err := rec.Create(ctx, newExec("db2", i))
			require.NoError(t, err)
			ids = append(ids, saved.ID)
		}

		list, err := rec.GetList(ctx, "db2")
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{ids[3], ids[2], ids[1]}, []string{list[0].ID, list[1].ID, list[2].ID})
		for _, e := range list {
			assert.Nil(t, e.Result)
		}

		_, err = rec.GetOne(ctx, "db2", ids[0])
		assert.True(t, errors.Is(err, ErrNotFound), "oldest record should be trimmed")
	})

	t.Run("databases are isolated", func(t *testing.T) {
		saved, err := rec.Create(ctx, newExec("db3", 0))
		require.NoError(t, err)

		_, err = rec.GetOne(ctx, "other", saved.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := rec.GetList(ctx, "empty")
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("delete", func(t *testing.T) {
		saved, err := rec.Create(ctx, newExec("db4", 0))
		require.NoError(t, err)

		require.NoError(t, rec.Delete(ctx, "db4", saved.ID))
		_, err = rec.GetOne(ctx, "db4", saved.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, rec.Delete(ctx, "db4", saved.ID), ErrNotFound)
	})

	t.Run("create rejects records without database", func(t *testing.T) {
		_, err := rec.Create(ctx, &models.CommandExecution{Command: "ping"})
		assert.Error(t, err)
	})
}
