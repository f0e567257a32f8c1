package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"quickbite-api/auth"
	"quickbite-api/database"
	"quickbite-api/models"
	"quickbite-api/storage"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would get its own empty in-memory DB.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type sentMail struct {
	To   string
	Name string
	Code string
}

// fakeMailer records outgoing mail and can be told to fail.
type fakeMailer struct {
	mu      sync.Mutex
	OTPs    []sentMail
	Resets  []sentMail
	FailAll bool
}

func (m *fakeMailer) SendOTPEmail(to, name, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return errors.New("smtp unavailable")
	}
	m.OTPs = append(m.OTPs, sentMail{To: to, Name: name, Code: code})
	return nil
}

func (m *fakeMailer) SendPasswordResetEmail(to, name, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailAll {
		return errors.New("smtp unavailable")
	}
	m.Resets = append(m.Resets, sentMail{To: to, Name: name, Code: token})
	return nil
}

func (m *fakeMailer) lastOTP(t *testing.T) sentMail {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	require.NotEmpty(t, m.OTPs)
	return m.OTPs[len(m.OTPs)-1]
}

// fakeBlobStore records stored and deleted objects in memory.
type fakeBlobStore struct {
	mu      sync.Mutex
	counter int
	Stored  map[string][]byte
	Deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{Stored: map[string][]byte{}}
}

func (s *fakeBlobStore) Store(_ context.Context, data []byte, folder string, _ storage.UploadOptions) (*storage.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counter++
	key := folder + "/object-" + time.Now().Format("150405") + "-" + string(rune('a'+s.counter))
	s.Stored[key] = data
	return &storage.Object{URL: "http://blobs.test/" + key, Key: key}, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Deleted = append(s.Deleted, key)
	delete(s.Stored, key)
	return nil
}

func newTestRegistration(t *testing.T) (*RegistrationService, *gorm.DB, *fakeMailer, *fakeBlobStore) {
	t.Helper()
	db := newTestDB(t)
	mail := &fakeMailer{}
	blobs := newFakeBlobStore()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewRegistrationService(db, mail, blobs, tokens, zap.NewNop())
	return svc, db, mail, blobs
}

// seedCustomer creates a verified customer ready to log in and order.
func seedCustomer(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Name:          "Test Customer",
		Email:         email,
		PasswordHash:  "x",
		Role:          models.RoleCustomer,
		Active:        true,
		EmailVerified: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// seedRestaurant creates a verified owner with a restaurant, one category
// and the given menu item prices.
func seedRestaurant(t *testing.T, db *gorm.DB, ownerEmail, deliveryFee string, prices ...string) (*models.User, *models.Restaurant, []models.MenuItem) {
	t.Helper()
	owner := &models.User{
		Name:          "Test Owner",
		Email:         ownerEmail,
		PasswordHash:  "x",
		Role:          models.RoleRestaurantOwner,
		Active:        true,
		EmailVerified: true,
	}
	require.NoError(t, db.Create(owner).Error)

	restaurant := &models.Restaurant{
		OwnerID:      owner.ID,
		Name:         "Test Kitchen",
		Cuisines:     models.StringList{"Indian"},
		DeliveryFee:  decimal.RequireFromString(deliveryFee),
		MinOrder:     decimal.Zero,
		DeliveryTime: "30-40 min",
		Active:       true,
	}
	require.NoError(t, db.Create(restaurant).Error)

	category := &models.MenuCategory{RestaurantID: restaurant.ID, Name: "Main Course", SortOrder: 2, Active: true}
	require.NoError(t, db.Create(category).Error)

	items := make([]models.MenuItem, 0, len(prices))
	for i, price := range prices {
		item := models.MenuItem{
			CategoryID: category.ID,
			Name:       "Dish " + string(rune('A'+i)),
			Price:      decimal.RequireFromString(price),
			Available:  true,
		}
		require.NoError(t, db.Create(&item).Error)
		items = append(items, item)
	}
	return owner, restaurant, items
}

// seedAddress creates an address owned by the given user.
func seedAddress(t *testing.T, db *gorm.DB, userID uint, isDefault bool) *models.Address {
	t.Helper()
	address := &models.Address{
		UserID:    userID,
		Type:      models.AddressHome,
		Address:   "42 Test Street, Test Colony",
		City:      "Testville",
		Pincode:   "560001",
		IsDefault: isDefault,
	}
	require.NoError(t, db.Create(address).Error)
	return address
}

func storageOpts() storage.UploadOptions {
	return storage.UploadOptions{ContentType: "image/jpeg", Ext: ".jpg"}
}

func requireKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()
	require.Error(t, err)
	appErr, ok := AsError(err)
	require.True(t, ok, "expected workflow error, got %v", err)
	require.Equal(t, kind, appErr.Kind)
	return appErr
}
