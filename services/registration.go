package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"quickbite-api/auth"
	"quickbite-api/mailer"
	"quickbite-api/models"
	"quickbite-api/storage"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	otpTTL        = 10 * time.Minute
	resetTokenTTL = time.Hour
)

// RegistrationService drives account creation, OTP verification and
// credential recovery. All collaborators are injected.
type RegistrationService struct {
	db     *gorm.DB
	mail   mailer.Mailer
	blobs  storage.BlobStore
	tokens *auth.TokenIssuer
	logger *zap.Logger
}

func NewRegistrationService(db *gorm.DB, mail mailer.Mailer, blobs storage.BlobStore, tokens *auth.TokenIssuer, log *zap.Logger) *RegistrationService {
	return &RegistrationService{
		db:     db,
		mail:   mail,
		blobs:  blobs,
		tokens: tokens,
		logger: log.Named("registration"),
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    *string
	Password string
	Role     models.Role
}

type RegisterResult struct {
	UserID               uint   `json:"user_id"`
	Email                string `json:"email"`
	RequiresVerification bool   `json:"requires_verification"`
}

// Register creates an unverified account and emails its verification code.
// The duplicate check and the insert share one transaction so concurrent
// registrations cannot both pass the check.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	if in.Role == "" {
		in.Role = models.RoleCustomer
	}

	otp := generateOTP()
	user, err := s.createUnverifiedUser(ctx, s.db, in, otp)
	if err != nil {
		return nil, err
	}

	if err := s.mail.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		// The user has no other way to obtain the code, so this is a hard
		// failure, not a background one.
		s.logger.Error("OTP email dispatch failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, newError(KindInternal, "Failed to send verification email")
	}

	return &RegisterResult{UserID: user.ID, Email: user.Email, RequiresVerification: true}, nil
}

type RestaurantInput struct {
	Name         string
	Description  string
	Cuisines     []string
	Address      string
	City         string
	Pincode      string
	OpenTime     string
	CloseTime    string
	DeliveryFee  decimal.Decimal
	MinOrder     decimal.Decimal
	DeliveryTime string
}

type RegisterRestaurantInput struct {
	User       RegisterInput
	Restaurant RestaurantInput

	// Already-stored uploads; deleted again if registration does not complete.
	Image  *storage.Object
	Banner *storage.Object
}

type RegisterRestaurantResult struct {
	UserID               uint   `json:"user_id"`
	Email                string `json:"email"`
	RestaurantID         uint   `json:"restaurant_id"`
	RequiresVerification bool   `json:"requires_verification"`
}

// RegisterRestaurant creates an owner account, its restaurant and the four
// seeded menu categories as one atomic unit. Uploaded assets are compensated
// (deleted) on every path where the unit does not commit.
func (s *RegistrationService) RegisterRestaurant(ctx context.Context, in RegisterRestaurantInput) (*RegisterRestaurantResult, error) {
	in.User.Role = models.RoleRestaurantOwner
	otp := generateOTP()

	var user *models.User
	var restaurant models.Restaurant

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		user, txErr = s.createUnverifiedUser(ctx, tx, in.User, otp)
		if txErr != nil {
			return txErr
		}

		restaurant = models.Restaurant{
			OwnerID:      user.ID,
			Name:         in.Restaurant.Name,
			Description:  in.Restaurant.Description,
			Cuisines:     in.Restaurant.Cuisines,
			Address:      in.Restaurant.Address,
			City:         in.Restaurant.City,
			Pincode:      in.Restaurant.Pincode,
			OpenTime:     in.Restaurant.OpenTime,
			CloseTime:    in.Restaurant.CloseTime,
			DeliveryFee:  in.Restaurant.DeliveryFee,
			MinOrder:     in.Restaurant.MinOrder,
			DeliveryTime: in.Restaurant.DeliveryTime,
			Active:       true,
		}
		if in.Image != nil {
			restaurant.ImageURL = in.Image.URL
		}
		if in.Banner != nil {
			restaurant.BannerURL = in.Banner.URL
		}
		if txErr := tx.Create(&restaurant).Error; txErr != nil {
			return fmt.Errorf("create restaurant: %w", txErr)
		}

		for i, name := range models.SeededCategoryNames {
			category := models.MenuCategory{
				RestaurantID: restaurant.ID,
				Name:         name,
				SortOrder:    i + 1,
				Active:       true,
			}
			if txErr := tx.Create(&category).Error; txErr != nil {
				return fmt.Errorf("seed category %q: %w", name, txErr)
			}
		}
		return nil
	})
	if err != nil {
		s.cleanupUploads(ctx, in.Image, in.Banner)
		if appErr, ok := AsError(err); ok {
			return nil, appErr
		}
		s.logger.Error("restaurant registration failed", zap.Error(err))
		return nil, newError(KindInternal, "Registration failed")
	}

	// Dispatch only after the unit has committed.
	if err := s.mail.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		s.logger.Error("OTP email dispatch failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, newError(KindInternal, "Failed to send verification email")
	}

	return &RegisterRestaurantResult{
		UserID:               user.ID,
		Email:                user.Email,
		RestaurantID:         restaurant.ID,
		RequiresVerification: true,
	}, nil
}

// createUnverifiedUser runs the duplicate check and the insert on the given
// handle, which may already be a transaction.
func (s *RegistrationService) createUnverifiedUser(ctx context.Context, db *gorm.DB, in RegisterInput, otp string) (*models.User, error) {
	var user *models.User
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.User{}).Where("email = ?", in.Email).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return newError(KindConflict, "An account with this email already exists")
		}
		if in.Phone != nil && *in.Phone != "" {
			if err := tx.Model(&models.User{}).Where("phone = ?", *in.Phone).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return newError(KindConflict, "An account with this phone number already exists")
			}
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}

		expiry := time.Now().Add(otpTTL)
		user = &models.User{
			Name:              in.Name,
			Email:             in.Email,
			Phone:             in.Phone,
			PasswordHash:      string(hash),
			Role:              in.Role,
			Active:            true,
			EmailVerified:     false,
			EmailOTP:          &otp,
			EmailOTPExpiresAt: &expiry,
		}
		return tx.Create(user).Error
	})
	if err != nil {
		if appErr, ok := AsError(err); ok {
			return nil, appErr
		}
		s.logger.Error("user creation failed", zap.String("email", in.Email), zap.Error(err))
		return nil, newError(KindInternal, "Registration failed")
	}
	return user, nil
}

// cleanupUploads deletes stored blobs after a failed registration. Its own
// failures are logged and swallowed; they never replace the primary error.
func (s *RegistrationService) cleanupUploads(ctx context.Context, objects ...*storage.Object) {
	for _, obj := range objects {
		if obj == nil {
			continue
		}
		if err := s.blobs.Delete(ctx, obj.Key); err != nil {
			s.logger.Warn("failed to clean up uploaded file", zap.String("key", obj.Key), zap.Error(err))
		}
	}
}

type VerifyResult struct {
	User       *models.User       `json:"user"`
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
	Token      string             `json:"token"`
}

// VerifyOTP consumes a verification code. The already-verified check runs
// before the code check so a stale code on a verified account reports the
// true cause.
func (s *RegistrationService) VerifyOTP(ctx context.Context, userID uint, otp string) (*VerifyResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(KindNotFound, "User not found")
		}
		return nil, s.internal("load user", err)
	}

	if user.EmailVerified {
		return nil, newError(KindConflict, "Email is already verified")
	}
	if user.EmailOTP == nil || *user.EmailOTP != otp {
		return nil, newError(KindInvalidCode, "Invalid verification code")
	}
	if user.EmailOTPExpiresAt == nil || time.Now().After(*user.EmailOTPExpiresAt) {
		return nil, newError(KindInvalidCode, "Verification code has expired")
	}

	// Single-use: verified flag set and both OTP columns cleared together.
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_verified":       true,
		"email_otp":            nil,
		"email_otp_expires_at": nil,
	}).Error; err != nil {
		return nil, s.internal("consume otp", err)
	}
	user.EmailVerified = true
	user.EmailOTP = nil
	user.EmailOTPExpiresAt = nil

	restaurant, restaurantID := s.firstOwnedRestaurant(ctx, user.ID)
	token, err := s.tokens.Issue(&user, restaurantID)
	if err != nil {
		return nil, s.internal("issue token", err)
	}

	return &VerifyResult{User: &user, Restaurant: restaurant, Token: token}, nil
}

// ResendOTP overwrites any previous code and redispatches the email.
func (s *RegistrationService) ResendOTP(ctx context.Context, userID uint) error {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "User not found")
		}
		return s.internal("load user", err)
	}
	if user.EmailVerified {
		return newError(KindConflict, "Email is already verified")
	}

	otp := generateOTP()
	expiry := time.Now().Add(otpTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"email_otp":            otp,
		"email_otp_expires_at": expiry,
	}).Error; err != nil {
		return s.internal("store otp", err)
	}

	if err := s.mail.SendOTPEmail(user.Email, user.Name, otp); err != nil {
		s.logger.Error("OTP email dispatch failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return newError(KindInternal, "Failed to send verification email")
	}
	return nil
}

type LoginResult struct {
	User       *models.User       `json:"user"`
	Restaurant *models.Restaurant `json:"restaurant,omitempty"`
	Token      string             `json:"token"`
}

// invalidCredentials is deliberately identical for unknown email and wrong
// password so the endpoint cannot be used to enumerate accounts.
func invalidCredentials() *Error {
	return newError(KindInvalidCredentials, "Invalid email or password")
}

// Login authenticates a user. requireRole, when set, gates the login to one
// role (restaurant login requires RESTAURANT_OWNER).
func (s *RegistrationService) Login(ctx context.Context, email, password string, requireRole *models.Role) (*LoginResult, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidCredentials()
		}
		return nil, s.internal("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, invalidCredentials()
	}

	if requireRole != nil && user.Role != *requireRole {
		return nil, newError(KindForbidden, "This login is restricted to restaurant owners")
	}
	if !user.Active {
		return nil, newError(KindDeactivated, "Account is deactivated")
	}
	if !user.EmailVerified {
		e := newError(KindVerificationRequired, "Email verification required")
		e.Data = map[string]interface{}{"user_id": user.ID}
		return nil, e
	}

	restaurant, restaurantID := s.firstOwnedRestaurant(ctx, user.ID)
	token, err := s.tokens.Issue(&user, restaurantID)
	if err != nil {
		return nil, s.internal("issue token", err)
	}

	return &LoginResult{User: &user, Restaurant: restaurant, Token: token}, nil
}

// ForgotPassword issues a reset token. Unlike login this path does reveal
// whether the email exists.
func (s *RegistrationService) ForgotPassword(ctx context.Context, email string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindNotFound, "No account found with this email")
		}
		return s.internal("load user", err)
	}

	token := generateResetToken()
	expiry := time.Now().Add(resetTokenTTL)
	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"reset_token":            token,
		"reset_token_expires_at": expiry,
	}).Error; err != nil {
		return s.internal("store reset token", err)
	}

	if err := s.mail.SendPasswordResetEmail(user.Email, user.Name, token); err != nil {
		s.logger.Error("reset email dispatch failed", zap.Uint("user_id", user.ID), zap.Error(err))
		return newError(KindInternal, "Failed to send password reset email")
	}
	return nil
}

// ResetPassword consumes a reset token and stores the new credential.
func (s *RegistrationService) ResetPassword(ctx context.Context, token, newPassword string) error {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("reset_token = ? AND reset_token_expires_at > ?", token, time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newError(KindInvalidToken, "Invalid or expired reset token")
		}
		return s.internal("load user by reset token", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return s.internal("hash password", err)
	}

	if err := s.db.WithContext(ctx).Model(&user).Updates(map[string]interface{}{
		"password_hash":          string(hash),
		"reset_token":            nil,
		"reset_token_expires_at": nil,
	}).Error; err != nil {
		return s.internal("store new password", err)
	}
	return nil
}

// firstOwnedRestaurant returns the caller's primary restaurant, if any.
func (s *RegistrationService) firstOwnedRestaurant(ctx context.Context, userID uint) (*models.Restaurant, *uint) {
	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).Where("owner_id = ?", userID).Order("id asc").First(&restaurant).Error
	if err != nil {
		return nil, nil
	}
	return &restaurant, &restaurant.ID
}

func (s *RegistrationService) internal(op string, err error) *Error {
	s.logger.Error(op, zap.Error(err))
	return newError(KindInternal, "Something went wrong")
}

// generateOTP returns a 6-digit numeric code.
func generateOTP() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		// crypto/rand failing means the process is in no state to serve
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// generateResetToken returns a 64-character random hex token.
func generateResetToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}
