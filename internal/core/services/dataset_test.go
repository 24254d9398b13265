package services

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestDatasetService_Create(t *testing.T) {
	svc := NewDatasetService(newIndex())

	a := svc.Create("tenant-1", "Handbook")
	b := svc.Create("tenant-1", "Handbook")

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, "ds_"+a.ID, a.Collection())
	assert.Equal(t, "tenant-1", a.TenantID)
	assert.Equal(t, "Handbook", a.Name)
	assert.False(t, a.CreatedAt.IsZero())
}

func TestDatasetService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	index := newIndex()
	svc := NewDatasetService(index)
	require.NoError(t, index.Upsert(ctx, domain.CollectionName("a"), "k", []string{"x"}, metasFor("k", 1)))
	require.NoError(t, index.Upsert(ctx, "scratch", "k", []string{"y"}, metasFor("k", 1)))

	infos, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "ds_a", infos[0].Name)

	require.NoError(t, svc.Delete(ctx, "a"))
	require.NoError(t, svc.Delete(ctx, "a"))

	infos, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}

func TestDatasetService_DeleteStoreDown(t *testing.T) {
	svc := NewDatasetService(NewIndexManager(failingStore{}, nil))

	assert.ErrorIs(t, svc.Delete(context.Background(), "a"), errStoreDown)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, domain.ErrRetrievalUnavailable)
}
