package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"quickbite-api/middleware"
	"quickbite-api/models"
	"quickbite-api/services"
	"quickbite-api/storage"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// AuthHandler exposes registration, verification and credential endpoints.
type AuthHandler struct {
	reg    *services.RegistrationService
	blobs  storage.BlobStore
	logger *zap.Logger
}

func NewAuthHandler(reg *services.RegistrationService, blobs storage.BlobStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{reg: reg, blobs: blobs, logger: log}
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=2,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// Register creates a customer (or other-role) account.
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	role := models.RoleCustomer
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			respondError(c, h.logger, services.ValidationError(services.FieldError{
				Field: "role", Message: "Unknown role",
			}))
			return
		}
		role = parsed
	}

	result, err := h.reg.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    optionalString(req.Phone),
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Account created. Please verify your email.", result)
}

type RegisterRestaurantForm struct {
	Name     string `form:"name" binding:"required,min=2,max=50"`
	Email    string `form:"email" binding:"required,email"`
	Phone    string `form:"phone"`
	Password string `form:"password" binding:"required,min=6"`

	RestaurantName string `form:"restaurant_name" binding:"required,min=2,max=100"`
	Description    string `form:"description" binding:"required,min=10,max=500"`
	Cuisines       string `form:"cuisines" binding:"required"`
	Address        string `form:"address" binding:"required,min=10,max=200"`
	City           string `form:"city" binding:"required,min=2,max=50"`
	Pincode        string `form:"pincode" binding:"required,min=5,max=10"`
	OpenTime       string `form:"open_time" binding:"required,datetime=15:04"`
	CloseTime      string `form:"close_time" binding:"required,datetime=15:04"`
	DeliveryFee    string `form:"delivery_fee"`
	MinOrder       string `form:"min_order"`
	DeliveryTime   string `form:"delivery_time" binding:"required,min=3,max=50"`
}

// RegisterRestaurant creates an owner account with its restaurant from a
// multipart form. Validation runs before any upload so a rejected request
// never leaves files behind; once files are stored, every failure path
// deletes them again.
func (h *AuthHandler) RegisterRestaurant(c *gin.Context) {
	var form RegisterRestaurantForm
	if err := c.ShouldBind(&form); err != nil {
		respondBindingError(c, err)
		return
	}

	cuisines, err := normalizeCuisines(form.Cuisines)
	if err != nil {
		respondError(c, h.logger, services.ValidationError(services.FieldError{
			Field: "cuisines", Message: "Provide at least one cuisine",
		}))
		return
	}
	deliveryFee, ferr := parseMoney(form.DeliveryFee, "delivery_fee")
	if ferr != nil {
		respondError(c, h.logger, ferr)
		return
	}
	minOrder, ferr := parseMoney(form.MinOrder, "min_order")
	if ferr != nil {
		respondError(c, h.logger, ferr)
		return
	}

	image, err := h.storeUpload(c, "image", "restaurants")
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	banner, err := h.storeUpload(c, "banner", "restaurants")
	if err != nil {
		// The first upload already landed; do not orphan it.
		h.deleteUpload(c, image)
		respondError(c, h.logger, err)
		return
	}

	result, err := h.reg.RegisterRestaurant(c.Request.Context(), services.RegisterRestaurantInput{
		User: services.RegisterInput{
			Name:     form.Name,
			Email:    form.Email,
			Phone:    optionalString(form.Phone),
			Password: form.Password,
		},
		Restaurant: services.RestaurantInput{
			Name:         form.RestaurantName,
			Description:  form.Description,
			Cuisines:     cuisines,
			Address:      form.Address,
			City:         form.City,
			Pincode:      form.Pincode,
			OpenTime:     form.OpenTime,
			CloseTime:    form.CloseTime,
			DeliveryFee:  deliveryFee,
			MinOrder:     minOrder,
			DeliveryTime: form.DeliveryTime,
		},
		Image:  image,
		Banner: banner,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Restaurant registered. Please verify your email.", result)
}

type VerifyOTPRequest struct {
	UserID uint   `json:"user_id" binding:"required"`
	OTP    string `json:"otp" binding:"required,len=6"`
}

// VerifyOTP consumes the emailed verification code and logs the user in.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	result, err := h.reg.VerifyOTP(c.Request.Context(), req.UserID, req.OTP)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Email verified", result)
}

type ResendOTPRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

// ResendOTP issues a fresh code, invalidating the previous one.
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if err := h.reg.ResendOTP(c.Request.Context(), req.UserID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Verification code sent", nil)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates any account.
func (h *AuthHandler) Login(c *gin.Context) {
	h.login(c, nil)
}

// LoginRestaurant authenticates restaurant owners only.
func (h *AuthHandler) LoginRestaurant(c *gin.Context) {
	role := models.RoleRestaurantOwner
	h.login(c, &role)
}

func (h *AuthHandler) login(c *gin.Context, requireRole *models.Role) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	result, err := h.reg.Login(c.Request.Context(), req.Email, req.Password, requireRole)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Login successful", result)
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ForgotPassword emails a reset token.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if err := h.reg.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Password reset email sent", nil)
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// ResetPassword consumes a reset token and sets the new password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if err := h.reg.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Password reset successful", nil)
}

// storeUpload reads an optional multipart file and stores it. A missing file
// is not an error.
func (h *AuthHandler) storeUpload(c *gin.Context, field, folder string) (*storage.Object, error) {
	fileHeader, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, services.ValidationError(services.FieldError{Field: field, Message: "Invalid file upload"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return h.blobs.Store(c.Request.Context(), data, folder, storage.UploadOptions{
		ContentType: fileHeader.Header.Get("Content-Type"),
		Ext:         filepath.Ext(fileHeader.Filename),
	})
}

func (h *AuthHandler) deleteUpload(c *gin.Context, obj *storage.Object) {
	if obj == nil {
		return
	}
	if err := h.blobs.Delete(c.Request.Context(), obj.Key); err != nil {
		h.logger.Warn("failed to clean up uploaded file", zap.String("key", obj.Key), zap.Error(err))
	}
}

// normalizeCuisines accepts either a JSON array or a comma-separated string
// and produces the one canonical shape the core works with.
func normalizeCuisines(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	var parts []string
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &parts); err != nil {
			return nil, err
		}
	} else {
		parts = strings.Split(raw, ",")
	}

	cuisines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			cuisines = append(cuisines, p)
		}
	}
	if len(cuisines) == 0 {
		return nil, errors.New("empty cuisine list")
	}
	return cuisines, nil
}

// parseMoney parses an optional non-negative decimal form field, defaulting
// to zero when absent.
func parseMoney(raw, field string) (decimal.Decimal, *services.Error) {
	if strings.TrimSpace(raw) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, services.ValidationError(services.FieldError{Field: field, Message: "Must be a decimal number"})
	}
	if d.IsNegative() {
		return decimal.Zero, services.ValidationError(services.FieldError{Field: field, Message: "Must not be negative"})
	}
	return d, nil
}

func optionalString(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

// Profile returns the authenticated user's claims-backed identity.
func (h *AuthHandler) Profile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	respond(c, http.StatusOK, "Profile", gin.H{
		"user_id":       claims.UserID,
		"email":         claims.Email,
		"role":          claims.Role,
		"restaurant_id": claims.RestaurantID,
	})
}
