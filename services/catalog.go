package services

import (
	"context"
	"errors"

	"quickbite-api/models"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages restaurants, menu categories and menu items, and
// serves the public browse surface.
type CatalogService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCatalogService(db *gorm.DB, log *zap.Logger) *CatalogService {
	return &CatalogService{db: db, logger: log.Named("catalog")}
}

// ── Public browse ───────────────────────────────────────────────────────────

type RestaurantFilter struct {
	Cuisine string
	Search  string
	City    string
}

// ListRestaurants returns active restaurants, best rated first.
func (s *CatalogService) ListRestaurants(ctx context.Context, filter RestaurantFilter) ([]models.Restaurant, error) {
	query := s.db.WithContext(ctx).Where("active = ?", true)
	if filter.Cuisine != "" {
		query = query.Where("cuisines LIKE ?", "%"+filter.Cuisine+"%")
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}
	if filter.City != "" {
		query = query.Where("city = ?", filter.City)
	}

	var restaurants []models.Restaurant
	if err := query.Order("rating desc").Find(&restaurants).Error; err != nil {
		return nil, s.internal("list restaurants", err)
	}
	return restaurants, nil
}

// GetRestaurant returns one restaurant with its menu.
func (s *CatalogService) GetRestaurant(ctx context.Context, id uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB {
			return db.Where("active = ?", true).Order("sort_order asc")
		}).
		Preload("Categories.Items").
		First(&restaurant, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Restaurant not found")
		}
		return nil, s.internal("load restaurant", err)
	}
	return &restaurant, nil
}

// ── Owner management ────────────────────────────────────────────────────────

// GetOwnRestaurant loads the caller's restaurant with its full menu.
func (s *CatalogService) GetOwnRestaurant(ctx context.Context, ownerID uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }).
		Preload("Categories.Items").
		Where("owner_id = ?", ownerID).
		First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "No restaurant found for your account")
		}
		return nil, s.internal("load restaurant", err)
	}
	return &restaurant, nil
}

type UpdateRestaurantInput struct {
	Name         *string
	Description  *string
	Cuisines     []string
	Address      *string
	City         *string
	Pincode      *string
	OpenTime     *string
	CloseTime    *string
	DeliveryFee  *decimal.Decimal
	MinOrder     *decimal.Decimal
	DeliveryTime *string
	Active       *bool
}

// UpdateRestaurant applies the provided fields to the caller's restaurant.
func (s *CatalogService) UpdateRestaurant(ctx context.Context, ownerID uint, in UpdateRestaurantInput) (*models.Restaurant, error) {
	restaurant, err := s.ownRestaurant(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Cuisines != nil {
		updates["cuisines"] = models.StringList(in.Cuisines)
	}
	if in.Address != nil {
		updates["address"] = *in.Address
	}
	if in.City != nil {
		updates["city"] = *in.City
	}
	if in.Pincode != nil {
		updates["pincode"] = *in.Pincode
	}
	if in.OpenTime != nil {
		updates["open_time"] = *in.OpenTime
	}
	if in.CloseTime != nil {
		updates["close_time"] = *in.CloseTime
	}
	if in.DeliveryFee != nil {
		updates["delivery_fee"] = *in.DeliveryFee
	}
	if in.MinOrder != nil {
		updates["min_order"] = *in.MinOrder
	}
	if in.DeliveryTime != nil {
		updates["delivery_time"] = *in.DeliveryTime
	}
	if in.Active != nil {
		updates["active"] = *in.Active
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(restaurant).Updates(updates).Error; err != nil {
			return nil, s.internal("update restaurant", err)
		}
	}
	return restaurant, nil
}

type CategoryInput struct {
	Name        string
	Description string
	SortOrder   int
}

// CreateCategory adds a menu category to the caller's restaurant.
func (s *CatalogService) CreateCategory(ctx context.Context, ownerID uint, in CategoryInput) (*models.MenuCategory, error) {
	restaurant, err := s.ownRestaurant(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	category := models.MenuCategory{
		RestaurantID: restaurant.ID,
		Name:         in.Name,
		Description:  in.Description,
		SortOrder:    in.SortOrder,
		Active:       true,
	}
	if err := s.db.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, s.internal("create category", err)
	}
	return &category, nil
}

// DeleteCategory removes a category the caller owns.
func (s *CatalogService) DeleteCategory(ctx context.Context, ownerID, categoryID uint) error {
	category, err := s.ownedCategory(ctx, ownerID, categoryID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(category).Error; err != nil {
		return s.internal("delete category", err)
	}
	return nil
}

type MenuItemInput struct {
	CategoryID     uint
	Name           string
	Description    string
	Price          decimal.Decimal
	IsVeg          bool
	Customizations models.JSONMap
	ImageURL       string
}

// CreateMenuItem adds an item to a category the caller owns.
func (s *CatalogService) CreateMenuItem(ctx context.Context, ownerID uint, in MenuItemInput) (*models.MenuItem, error) {
	if _, err := s.ownedCategory(ctx, ownerID, in.CategoryID); err != nil {
		return nil, err
	}
	if in.Price.IsNegative() {
		return nil, ValidationError(FieldError{Field: "price", Message: "Price must not be negative"})
	}

	item := models.MenuItem{
		CategoryID:     in.CategoryID,
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		IsVeg:          in.IsVeg,
		Customizations: in.Customizations,
		Available:      true,
		ImageURL:       in.ImageURL,
	}
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, s.internal("create menu item", err)
	}
	return &item, nil
}

type UpdateMenuItemInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	IsVeg          *bool
	Customizations models.JSONMap
	Available      *bool
	ImageURL       *string
}

// UpdateMenuItem modifies an item the caller owns.
func (s *CatalogService) UpdateMenuItem(ctx context.Context, ownerID, itemID uint, in UpdateMenuItemInput) (*models.MenuItem, error) {
	item, err := s.ownedMenuItem(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, ValidationError(FieldError{Field: "price", Message: "Price must not be negative"})
		}
		updates["price"] = *in.Price
	}
	if in.IsVeg != nil {
		updates["is_veg"] = *in.IsVeg
	}
	if in.Customizations != nil {
		updates["customizations"] = in.Customizations
	}
	if in.Available != nil {
		updates["available"] = *in.Available
	}
	if in.ImageURL != nil {
		updates["image_url"] = *in.ImageURL
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
			return nil, s.internal("update menu item", err)
		}
	}
	return item, nil
}

// DeleteMenuItem removes an item the caller owns.
func (s *CatalogService) DeleteMenuItem(ctx context.Context, ownerID, itemID uint) error {
	item, err := s.ownedMenuItem(ctx, ownerID, itemID)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(item).Error; err != nil {
		return s.internal("delete menu item", err)
	}
	return nil
}

// ── Ownership helpers ───────────────────────────────────────────────────────

func (s *CatalogService) ownRestaurant(ctx context.Context, ownerID uint) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "No restaurant found for your account")
		}
		return nil, s.internal("load restaurant", err)
	}
	return &restaurant, nil
}

func (s *CatalogService) ownedCategory(ctx context.Context, ownerID, categoryID uint) (*models.MenuCategory, error) {
	var category models.MenuCategory
	if err := s.db.WithContext(ctx).First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Menu category not found")
		}
		return nil, s.internal("load category", err)
	}

	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", category.RestaurantID, ownerID).
		First(&restaurant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindForbidden, "You do not own this menu category")
		}
		return nil, s.internal("check ownership", err)
	}
	return &category, nil
}

func (s *CatalogService) ownedMenuItem(ctx context.Context, ownerID, itemID uint) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := s.db.WithContext(ctx).First(&item, itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "Menu item not found")
		}
		return nil, s.internal("load menu item", err)
	}
	if _, err := s.ownedCategory(ctx, ownerID, item.CategoryID); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *CatalogService) internal(op string, err error) *Error {
	s.logger.Error(op, zap.Error(err))
	return newError(KindInternal, "Something went wrong")
}
