package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raydrip/internal/apperror"
	"raydrip/internal/models"
	"raydrip/internal/storage"
)

type stubProducts map[string]models.Product

func (s stubProducts) Get(id string) (models.Product, bool) {
	p, ok := s[id]
	return p, ok
}

func setupService(t *testing.T) (*Service, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	products := stubProducts{"p1": tee(), "sale": saleJacket()}
	return NewService(storage.NewRedisStore(client), products, time.Hour), mr
}

func TestServiceAddPersistsCart(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "client-1", "p1", 2, models.SizeM)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "client-1", "p1", 1, models.SizeM)
	require.NoError(t, err)

	c, err := svc.Get(ctx, "client-1")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 3, c.Items[0].Quantity)

	other, err := svc.Get(ctx, "client-2")
	require.NoError(t, err)
	assert.True(t, other.IsEmpty())
}

func TestServiceCartExpires(t *testing.T) {
	svc, mr := setupService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "client-1", "sale", 1, "")
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	c, err := svc.Get(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestServiceRejectsUnknownProductAndSize(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "c", "nope", 1, "")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	_, err = svc.AddToCart(ctx, "c", "p1", 1, models.SizeXXL)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.AddToCart(ctx, "c", "sale", 1, models.SizeM)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestServiceUpdateSizeValidatesDestination(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "c", "p1", 1, models.SizeM)
	require.NoError(t, err)

	_, err = svc.UpdateSize(ctx, "c", "p1", models.SizeXS, models.SizeM)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	c, err := svc.UpdateSize(ctx, "c", "p1", models.SizeL, models.SizeM)
	require.NoError(t, err)
	assert.Equal(t, models.SizeL, c.Items[0].SelectedSize)
}

func TestServiceUpdateSizeMissingLine(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "c", "p1", 2, models.SizeL)
	require.NoError(t, err)

	_, err = svc.UpdateSize(ctx, "c", "p1", models.SizeL, models.SizeS)
	assert.ErrorIs(t, err, ErrLineNotFound)
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))

	c, err := svc.Get(ctx, "c")
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestServiceUpdateQuantityAndClear(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.AddToCart(ctx, "c", "p1", 1, models.SizeM)
	require.NoError(t, err)
	_, err = svc.AddToCart(ctx, "c", "sale", 1, "")
	require.NoError(t, err)

	c, err := svc.UpdateQuantity(ctx, "c", "p1", 0, models.SizeM)
	require.NoError(t, err)
	assert.Len(t, c.Items, 1)

	require.NoError(t, svc.Clear(ctx, "c"))
	c, err = svc.Get(ctx, "c")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestServiceConcurrentAddsDoNotLoseUpdates(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.AddToCart(ctx, "c", "p1", 1, models.SizeS)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	c, err := svc.Get(ctx, "c")
	require.NoError(t, err)
	assert.Equal(t, 20, c.TotalItems())
}
