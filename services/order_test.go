package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"quickbite-api/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestOrders(t *testing.T) (*OrderService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewOrderService(db, zap.NewNop()), db
}

func placeOrder(t *testing.T, svc *OrderService, customerID uint, restaurantID, addressID uint, items []OrderItemInput) *models.Order {
	t.Helper()
	order, err := svc.CreateOrder(context.Background(), customerID, CreateOrderInput{
		RestaurantID:  restaurantID,
		AddressID:     addressID,
		Items:         items,
		PaymentMethod: "CASH",
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderComputesExactTotals(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	_, restaurant, items := seedRestaurant(t, db, "o@x.com", "2.50", "3.33", "0.10")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, []OrderItemInput{
		{MenuItemID: items[0].ID, Quantity: 3},
		{MenuItemID: items[1].ID, Quantity: 2},
	})

	// 3.33*3 + 0.10*2 = 10.19; tax = round(0.5095) = 0.51; total = 13.20
	assert.True(t, order.Subtotal.Equal(decimal.RequireFromString("10.19")), "subtotal %s", order.Subtotal)
	assert.True(t, order.Tax.Equal(decimal.RequireFromString("0.51")), "tax %s", order.Tax)
	assert.True(t, order.DeliveryFee.Equal(decimal.RequireFromString("2.50")))
	assert.True(t, order.Total.Equal(decimal.RequireFromString("13.20")), "total %s", order.Total)

	assert.Equal(t, models.StatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "QB-"))
	require.Len(t, order.Items, 2)
	assert.True(t, order.Items[0].UnitPrice.Equal(items[0].Price))
}

func TestCreateOrderSnapshotsUnitPrice(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	_, restaurant, items := seedRestaurant(t, db, "o@x.com", "0.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, []OrderItemInput{
		{MenuItemID: items[0].ID, Quantity: 1},
	})

	// A later menu price change must not leak into the stored order.
	require.NoError(t, db.Model(&models.MenuItem{}).Where("id = ?", items[0].ID).
		Update("price", decimal.RequireFromString("9.99")).Error)

	reloaded, err := svc.GetOrderByID(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].UnitPrice.Equal(decimal.RequireFromString("5.00")))
	assert.True(t, reloaded.Subtotal.Equal(decimal.RequireFromString("5.00")))
}

func TestCreateOrderRejectsBadReferences(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	other := seedCustomer(t, db, "other@x.com")
	_, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)
	otherAddress := seedAddress(t, db, other.ID, true)

	valid := []OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}}

	_, err := svc.CreateOrder(context.Background(), customer.ID, CreateOrderInput{
		RestaurantID: 9999, AddressID: address.ID, Items: valid,
	})
	requireKind(t, err, KindInvalidReference)

	// Someone else's address is as invalid as a missing one.
	_, err = svc.CreateOrder(context.Background(), customer.ID, CreateOrderInput{
		RestaurantID: restaurant.ID, AddressID: otherAddress.ID, Items: valid,
	})
	requireKind(t, err, KindInvalidReference)

	_, err = svc.CreateOrder(context.Background(), customer.ID, CreateOrderInput{
		RestaurantID: restaurant.ID, AddressID: address.ID,
		Items: []OrderItemInput{{MenuItemID: 4242, Quantity: 1}},
	})
	appErr := requireKind(t, err, KindInvalidReference)
	assert.Contains(t, appErr.Message, "4242")

	_, err = svc.CreateOrder(context.Background(), customer.ID, CreateOrderInput{
		RestaurantID: restaurant.ID, AddressID: address.ID, Items: nil,
	})
	requireKind(t, err, KindValidation)

	_, err = svc.CreateOrder(context.Background(), customer.ID, CreateOrderInput{
		RestaurantID: restaurant.ID, AddressID: address.ID,
		Items: []OrderItemInput{{MenuItemID: items[0].ID, Quantity: 0}},
	})
	requireKind(t, err, KindValidation)

	// No partial order rows from any of the failures.
	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestGetUserOrdersFiltersAndPaginates(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	owner, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	line := []OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}}
	first := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, line)
	placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, line)
	placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, line)

	_, err := svc.UpdateOrderStatus(context.Background(), first.ID, owner.ID, models.StatusConfirmed)
	require.NoError(t, err)

	all, err := svc.GetUserOrders(context.Background(), customer.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	confirmed, err := svc.GetUserOrders(context.Background(), customer.ID, "CONFIRMED", 0, 0)
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	_, err = svc.GetUserOrders(context.Background(), customer.ID, "SHIPPED", 0, 0)
	requireKind(t, err, KindValidation)

	// Junk limit/offset fall back instead of erroring.
	page, err := svc.GetUserOrders(context.Background(), customer.ID, "", -5, -3)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	page, err = svc.GetUserOrders(context.Background(), customer.ID, "", 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	// Another customer sees none of them.
	other := seedCustomer(t, db, "other@x.com")
	none, err := svc.GetUserOrders(context.Background(), other.ID, "", 0, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGetRestaurantOrdersSummarizesByStatus(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	owner, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	line := []OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}}
	first := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, line)
	placeOrder(t, svc, customer.ID, restaurant.ID, address.ID, line)

	_, err := svc.UpdateOrderStatus(context.Background(), first.ID, owner.ID, models.StatusConfirmed)
	require.NoError(t, err)

	result, err := svc.GetRestaurantOrders(context.Background(), owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, restaurant.ID, result.Restaurant.ID)
	assert.Len(t, result.Orders, 2)
	assert.Equal(t, map[string]int{"PENDING": 1, "CONFIRMED": 1}, result.Summary)

	pending, err := svc.GetRestaurantOrders(context.Background(), owner.ID, "PENDING")
	require.NoError(t, err)
	assert.Len(t, pending.Orders, 1)

	// A user with no restaurant gets NotFound, not an empty list.
	_, err = svc.GetRestaurantOrders(context.Background(), customer.ID, "")
	requireKind(t, err, KindNotFound)
}

func TestGetOrderByIDAccessControl(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	owner, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	stranger := seedCustomer(t, db, "stranger@x.com")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID,
		[]OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}})

	_, err := svc.GetOrderByID(context.Background(), order.ID, customer.ID)
	require.NoError(t, err)
	_, err = svc.GetOrderByID(context.Background(), order.ID, owner.ID)
	require.NoError(t, err)
	_, err = svc.GetOrderByID(context.Background(), order.ID, stranger.ID)
	requireKind(t, err, KindForbidden)
	_, err = svc.GetOrderByID(context.Background(), 9999, customer.ID)
	requireKind(t, err, KindNotFound)
}

func TestUpdateOrderStatusStampsTimestamps(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	owner, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID,
		[]OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}})

	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, owner.ID, models.StatusConfirmed)
	require.NoError(t, err)
	require.NotNil(t, updated.ConfirmedAt)
	firstConfirm := *updated.ConfirmedAt

	updated, err = svc.UpdateOrderStatus(context.Background(), order.ID, owner.ID, models.StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	require.NotNil(t, updated.DeliveredAt)

	// Earlier stamps survive later transitions.
	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	require.NotNil(t, stored.ConfirmedAt)
	assert.WithinDuration(t, firstConfirm, *stored.ConfirmedAt, time.Second)
	assert.NotNil(t, stored.DeliveredAt)
	assert.Nil(t, stored.CancelledAt)
}

func TestUpdateOrderStatusRestampsOnRepeat(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	owner, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID,
		[]OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}})

	first, err := svc.UpdateOrderStatus(context.Background(), order.ID, owner.ID, models.StatusConfirmed)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	second, err := svc.UpdateOrderStatus(context.Background(), order.ID, owner.ID, models.StatusConfirmed)
	require.NoError(t, err)
	assert.True(t, second.ConfirmedAt.After(*first.ConfirmedAt) || second.ConfirmedAt.Equal(*first.ConfirmedAt))
}

func TestUpdateOrderStatusAcceptsAnyTransition(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	owner, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID,
		[]OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}})

	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, owner.ID, models.StatusDelivered)
	require.NoError(t, err)

	// There is no transition graph; moving back out of a terminal state
	// is accepted.
	updated, err := svc.UpdateOrderStatus(context.Background(), order.ID, owner.ID, models.StatusPending)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, updated.Status)
}

func TestUpdateOrderStatusForeignOwnerForbidden(t *testing.T) {
	svc, db := newTestOrders(t)
	customer := seedCustomer(t, db, "c@x.com")
	_, restaurant, items := seedRestaurant(t, db, "o@x.com", "1.00", "5.00")
	rival, _, _ := seedRestaurant(t, db, "rival@x.com", "1.00", "5.00")
	address := seedAddress(t, db, customer.ID, true)

	order := placeOrder(t, svc, customer.ID, restaurant.ID, address.ID,
		[]OrderItemInput{{MenuItemID: items[0].ID, Quantity: 1}})

	_, err := svc.UpdateOrderStatus(context.Background(), order.ID, rival.ID, models.StatusConfirmed)
	requireKind(t, err, KindForbidden)

	// A rejected transition leaves the order untouched.
	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Nil(t, stored.ConfirmedAt)
}
