//go:build integration

package orderControllers

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/junaidrashid-git/storefront-api/apperr"
	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/stretchr/testify/require"
)

func TestConcurrentCheckoutNeverOversells(t *testing.T) {
	db := testutil.NewPostgres(t)
	seller := testutil.CreateUser(t, db, "seller@example.com")
	product := testutil.CreateProduct(t, db, seller, testutil.CreateCategory(t, db, "Limited"), "Sneaker", "120.00", 3)

	const buyers = 8
	users := make([]models.User, buyers)
	for i := range users {
		users[i] = testutil.CreateUser(t, db, fmt.Sprintf("buyer%d@example.com", i))
		testutil.AddToCart(t, db, users[i], product, 1)
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		placed   int
		rejected int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u models.User) {
			defer wg.Done()
			_, err := PlaceOrder(context.Background(), db, u.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				placed++
			case apperr.Is(err, apperr.KindConflict):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(u)
	}
	wg.Wait()

	require.Equal(t, 3, placed)
	require.Equal(t, buyers-3, rejected)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	require.Zero(t, fresh.Stock)

	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.EqualValues(t, 3, orders)
}

func TestCrossedCartsCheckOutWithoutDeadlock(t *testing.T) {
	db := testutil.NewPostgres(t)
	seller := testutil.CreateUser(t, db, "seller@example.com")
	cat := testutil.CreateCategory(t, db, "Bundles")
	first := testutil.CreateProduct(t, db, seller, cat, "Lamp", "30.00", 100)
	second := testutil.CreateProduct(t, db, seller, cat, "Bulb", "2.00", 100)

	const pairs = 10
	var users []models.User
	for i := 0; i < pairs; i++ {
		a := testutil.CreateUser(t, db, fmt.Sprintf("forward%d@example.com", i))
		testutil.AddToCart(t, db, a, first, 1)
		testutil.AddToCart(t, db, a, second, 1)

		b := testutil.CreateUser(t, db, fmt.Sprintf("backward%d@example.com", i))
		testutil.AddToCart(t, db, b, second, 1)
		testutil.AddToCart(t, db, b, first, 1)

		users = append(users, a, b)
	}

	var wg sync.WaitGroup
	errs := make(chan error, len(users))
	for _, u := range users {
		wg.Add(1)
		go func(u models.User) {
			defer wg.Done()
			_, err := PlaceOrder(context.Background(), db, u.ID)
			errs <- err
		}(u)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	var fresh models.Product
	require.NoError(t, db.First(&fresh, first.ID).Error)
	require.Equal(t, 100-2*pairs, fresh.Stock)
	require.NoError(t, db.First(&fresh, second.ID).Error)
	require.Equal(t, 100-2*pairs, fresh.Stock)
}
