package repo_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/db/dbtest"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type fixture struct {
	DB       *gorm.DB
	Users    *repo.UserRepo
	Products *repo.ProductRepo
	Cart     *repo.CartRepo
	Orders   *repo.OrderRepo
	About    *repo.AboutRepo
}

func newFixture(t *testing.T) *fixture {
	gdb := dbtest.New(t)
	return &fixture{
		DB:       gdb,
		Users:    &repo.UserRepo{DB: gdb},
		Products: &repo.ProductRepo{DB: gdb},
		Cart:     &repo.CartRepo{DB: gdb},
		Orders:   &repo.OrderRepo{DB: gdb},
		About:    &repo.AboutRepo{DB: gdb},
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	u := &models.User{Name: "Ann", Surname: "Lee", Email: email, Address: "1 Main St", PasswordHash: "x"}
	require.NoError(t, f.Users.CreateUserIfNotExists(context.Background(), u))
	return u
}

func (f *fixture) product(t *testing.T, name string, price float64) *models.Product {
	p := &models.Product{Name: name, Category: "misc", Price: price, Description: name + " description"}
	require.NoError(t, f.Products.Create(context.Background(), p))
	return p
}

func TestUserRepo_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.user(t, "a@b.c")
	err := f.Users.CreateUserIfNotExists(ctx, &models.User{Email: "a@b.c", PasswordHash: "y"})
	require.ErrorIs(t, err, repo.ErrUserAlreadyExist)

	var n int64
	require.NoError(t, f.DB.Model(&models.User{}).Count(&n).Error)
	assert.EqualValues(t, 1, n)

	got, err := f.Users.GetByEmail(ctx, "a@b.c")
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.Name)

	_, err = f.Users.GetByID(ctx, 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCartRepo_AddIncrements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	p := f.product(t, "Pen", 2.5)

	for i := 1; i <= 4; i++ {
		item, err := f.Cart.Add(ctx, u.ID, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, i, item.Quantity)
	}

	var rows []models.CartItem
	require.NoError(t, f.DB.Where("user_id = ?", u.ID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 4, rows[0].Quantity)
}

func TestCartRepo_ConcurrentAdds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	p := f.product(t, "Pen", 2.5)

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Cart.Add(ctx, u.ID, p.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	lines, err := f.Cart.Lines(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.EqualValues(t, n, lines[0].Quantity)
}

func TestCartRepo_LinesQuantityRemoveCount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	other := f.user(t, "o@b.c")
	pen := f.product(t, "Pen", 2.5)
	book := f.product(t, "Book", 10)

	_, err := f.Cart.Add(ctx, u.ID, pen.ID)
	require.NoError(t, err)
	_, err = f.Cart.Add(ctx, u.ID, book.ID)
	require.NoError(t, err)

	lines, err := f.Cart.Lines(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, "Pen", lines[0].Name)
	assert.Equal(t, 2.5, lines[0].Price)
	assert.Equal(t, "Book", lines[1].Name)

	n, err := f.Cart.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.NoError(t, f.Cart.SetQuantity(ctx, u.ID, lines[0].ID, 5))
	assert.ErrorIs(t, f.Cart.SetQuantity(ctx, other.ID, lines[0].ID, 1), gorm.ErrRecordNotFound)
	assert.ErrorIs(t, f.Cart.Remove(ctx, other.ID, lines[1].ID), gorm.ErrRecordNotFound)

	require.NoError(t, f.Cart.Remove(ctx, u.ID, lines[1].ID))

	lines, err = f.Cart.Lines(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.EqualValues(t, 5, lines[0].Quantity)

	empty, err := f.Cart.Lines(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestProductRepo_DeleteCascadesToCartOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	pen := f.product(t, "Pen", 2.5)
	book := f.product(t, "Book", 10)

	_, err := f.Cart.Add(ctx, u.ID, pen.ID)
	require.NoError(t, err)
	_, err = f.Orders.PlaceOrders(ctx, u.ID, "0340000000")
	require.NoError(t, err)
	_, err = f.Cart.Add(ctx, u.ID, pen.ID)
	require.NoError(t, err)
	_, err = f.Cart.Add(ctx, u.ID, book.ID)
	require.NoError(t, err)

	deleted, err := f.Products.Delete(ctx, pen.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pen", deleted.Name)

	lines, err := f.Cart.Lines(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "Book", lines[0].Name)

	var orphans int64
	require.NoError(t, f.DB.Model(&models.CartItem{}).Where("product_id = ?", pen.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	orders, err := f.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "Pen", orders[0].ProductName)

	_, err = f.Products.Delete(ctx, pen.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestProductRepo_ListFilterSearch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.Products.Create(ctx, &models.Product{Name: "Blue Pen", Category: "office", Price: 1, Description: "writes"}))
	require.NoError(t, f.Products.Create(ctx, &models.Product{Name: "Novel", Category: "books", Price: 9, Description: "A PENguin story"}))
	require.NoError(t, f.Products.Create(ctx, &models.Product{Name: "100% cotton", Category: "clothes", Price: 5, Description: "shirt_xl"}))

	all, err := f.Products.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	books, err := f.Products.ListByCategory(ctx, "books")
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Novel", books[0].Name)

	cats, err := f.Products.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"books", "clothes", "office"}, cats)

	tests := []struct {
		q    string
		want []string
	}{
		{"pen", []string{"Blue Pen", "Novel"}},
		{"PEN", []string{"Blue Pen", "Novel"}},
		{"%", []string{"100% cotton"}},
		{"_", []string{"100% cotton"}},
		{"t_x", []string{"100% cotton"}},
		{"nothing", nil},
	}
	for _, tt := range tests {
		got, err := f.Products.Search(ctx, tt.q)
		require.NoError(t, err, tt.q)
		var names []string
		for _, p := range got {
			names = append(names, p.Name)
		}
		assert.Equal(t, tt.want, names, tt.q)
	}
}

func TestProductRepo_Update(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Pen", 2.5)

	p.Name = "Gel Pen"
	p.Price = 3
	require.NoError(t, f.Products.Update(ctx, p))

	got, err := f.Products.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Gel Pen", got.Name)
	assert.Equal(t, 3.0, got.Price)

	err = f.Products.Update(ctx, &models.Product{ID: 999, Name: "x", Price: 1})
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepo_PlaceOrdersSnapshots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	pen := f.product(t, "Pen", 2.5)
	book := f.product(t, "Book", 10)

	for _, id := range []uint{pen.ID, pen.ID, book.ID} {
		_, err := f.Cart.Add(ctx, u.ID, id)
		require.NoError(t, err)
	}

	orders, err := f.Orders.PlaceOrders(ctx, u.ID, "0340000000")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, 5.0, orders[0].Total)
	assert.Equal(t, 10.0, orders[1].Total)
	assert.Equal(t, "0340000000", orders[0].Phone)
	assert.Equal(t, "Ann", orders[0].Name)
	assert.Equal(t, "a@b.c", orders[0].Email)

	n, err := f.Cart.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	pen.Price = 99
	require.NoError(t, f.Products.Update(ctx, pen))

	listed, err := f.Orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Book", listed[0].ProductName, "most recent first")
	assert.Equal(t, 2.5, listed[1].UnitPrice, "snapshot unaffected by later price change")

	again, err := f.Orders.PlaceOrders(ctx, u.ID, "0340000000")
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestOrderRepo_PlaceOrdersRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	pen := f.product(t, "Pen", 2.5)
	_, err := f.Cart.Add(ctx, u.ID, pen.ID)
	require.NoError(t, err)

	boom := errors.New("boom")
	require.NoError(t, f.DB.Callback().Create().After("gorm:create").Register("test:fail_orders", func(tx *gorm.DB) {
		if tx.Statement.Table == "orders" {
			_ = tx.AddError(boom)
		}
	}))

	_, err = f.Orders.PlaceOrders(ctx, u.ID, "1")
	require.ErrorIs(t, err, boom)

	var orders int64
	require.NoError(t, f.DB.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)

	n, err := f.Cart.Count(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestOrderRepo_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.Orders.PlaceOrders(context.Background(), 404, "1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepo_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.user(t, "a@b.c")
	p := f.product(t, "Pen", 2.5)
	_, err := f.Cart.Add(ctx, u.ID, p.ID)
	require.NoError(t, err)
	orders, err := f.Orders.PlaceOrders(ctx, u.ID, "1")
	require.NoError(t, err)

	require.NoError(t, f.Orders.Delete(ctx, orders[0].ID))
	assert.ErrorIs(t, f.Orders.Delete(ctx, orders[0].ID), gorm.ErrRecordNotFound)
}

func TestAboutRepo_CRUD(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	e := &models.AboutEntry{Image: "a.png", Body: "Founded in 1999"}
	require.NoError(t, f.About.Create(ctx, e))
	require.NoError(t, f.About.Create(ctx, &models.AboutEntry{Body: "Second"}))

	list, err := f.About.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Founded in 1999", list[0].Body)

	gone, err := f.About.Delete(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "a.png", gone.Image)

	_, err = f.About.Delete(ctx, e.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
