package services

import (
	"context"
	"testing"

	"quickbite-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestAddresses(t *testing.T) (*AddressService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewAddressService(db, zap.NewNop()), db
}

func addressInput(addrType models.AddressType, isDefault bool) AddressInput {
	return AddressInput{
		Type:      addrType,
		Address:   "42 Test Street, Test Colony",
		City:      "Testville",
		Pincode:   "560001",
		IsDefault: isDefault,
	}
}

func countDefaults(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.Address{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Count(&count).Error)
	return count
}

func TestCreateAddressHoldsSingleDefault(t *testing.T) {
	svc, db := newTestAddresses(t)
	user := seedCustomer(t, db, "c@x.com")

	first, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)
	assert.True(t, first.IsDefault)

	second, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressWork, true))
	require.NoError(t, err)
	assert.True(t, second.IsDefault)

	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))

	var stored models.Address
	require.NoError(t, db.First(&stored, first.ID).Error)
	assert.False(t, stored.IsDefault)
}

func TestCreateAddressDefaultsAreScopedPerUser(t *testing.T) {
	svc, db := newTestAddresses(t)
	alice := seedCustomer(t, db, "alice@x.com")
	bob := seedCustomer(t, db, "bob@x.com")

	_, err := svc.CreateAddress(context.Background(), alice.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)
	_, err = svc.CreateAddress(context.Background(), bob.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)

	// One user claiming a default must not unset the other's.
	assert.EqualValues(t, 1, countDefaults(t, db, alice.ID))
	assert.EqualValues(t, 1, countDefaults(t, db, bob.ID))
}

func TestUpdateAddressPromotesDefault(t *testing.T) {
	svc, db := newTestAddresses(t)
	user := seedCustomer(t, db, "c@x.com")

	home, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)
	work, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressWork, false))
	require.NoError(t, err)

	_, err = svc.UpdateAddress(context.Background(), user.ID, work.ID, addressInput(models.AddressWork, true))
	require.NoError(t, err)

	assert.EqualValues(t, 1, countDefaults(t, db, user.ID))
	var stored models.Address
	require.NoError(t, db.First(&stored, home.ID).Error)
	assert.False(t, stored.IsDefault)
	require.NoError(t, db.First(&stored, work.ID).Error)
	assert.True(t, stored.IsDefault)
}

func TestUpdateAddressOfOtherUserNotFound(t *testing.T) {
	svc, db := newTestAddresses(t)
	alice := seedCustomer(t, db, "alice@x.com")
	bob := seedCustomer(t, db, "bob@x.com")

	address, err := svc.CreateAddress(context.Background(), alice.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)

	_, err = svc.UpdateAddress(context.Background(), bob.ID, address.ID, addressInput(models.AddressWork, false))
	requireKind(t, err, KindNotFound)
}

func TestListAddressesDefaultFirst(t *testing.T) {
	svc, db := newTestAddresses(t)
	user := seedCustomer(t, db, "c@x.com")

	_, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressWork, false))
	require.NoError(t, err)
	home, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)

	addresses, err := svc.ListAddresses(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, addresses, 2)
	assert.Equal(t, home.ID, addresses[0].ID)
}

func TestDeleteAddress(t *testing.T) {
	svc, db := newTestAddresses(t)
	user := seedCustomer(t, db, "c@x.com")
	other := seedCustomer(t, db, "other@x.com")

	address, err := svc.CreateAddress(context.Background(), user.ID, addressInput(models.AddressHome, true))
	require.NoError(t, err)

	// Someone else's address reads as missing, not forbidden.
	err = svc.DeleteAddress(context.Background(), other.ID, address.ID)
	requireKind(t, err, KindNotFound)

	require.NoError(t, svc.DeleteAddress(context.Background(), user.ID, address.ID))
	err = svc.DeleteAddress(context.Background(), user.ID, address.ID)
	requireKind(t, err, KindNotFound)
}
