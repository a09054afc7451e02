package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/lottery/model/pstat"
	"github.com/viant/lottery/service/dao"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	srv := New()
	require.NoError(t, srv.Save(ctx, &pstat.Record{ID: "a", Boot: "b1", Label: "start"}))
	require.NoError(t, srv.Save(ctx, &pstat.Record{ID: "b", Boot: "b1", Label: "final"}))
	require.NoError(t, srv.Save(ctx, &pstat.Record{ID: "c", Boot: "b2", Label: "final"}))
	require.NoError(t, srv.Save(ctx, &pstat.Record{ID: "a", Boot: "b1", Label: "restart"}))

	all, err := srv.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "restart", all[0].Label)

	final, err := srv.List(ctx, dao.NewParameter("Label", "final"), dao.NewParameter("Boot", "b2"))
	require.NoError(t, err)
	require.Len(t, final, 1)
	assert.Equal(t, "c", final[0].ID)

	require.NoError(t, srv.Delete(ctx, "b"))
	_, err = srv.Load(ctx, "b")
	assert.True(t, errors.Is(err, dao.ErrNotFound))
	assert.True(t, errors.Is(srv.Save(ctx, &pstat.Record{}), dao.ErrInvalidID))
}
