package handlers

import (
	"net/http"

	"quickbite-api/middleware"
	"quickbite-api/models"
	"quickbite-api/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AddressHandler exposes the caller's address book.
type AddressHandler struct {
	addresses *services.AddressService
	logger    *zap.Logger
}

func NewAddressHandler(addresses *services.AddressService, log *zap.Logger) *AddressHandler {
	return &AddressHandler{addresses: addresses, logger: log}
}

type AddressRequest struct {
	Type      string   `json:"type"`
	Address   string   `json:"address" binding:"required,min=10,max=200"`
	City      string   `json:"city" binding:"required,min=2,max=50"`
	Pincode   string   `json:"pincode" binding:"required,min=5,max=10"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
	IsDefault bool     `json:"is_default"`
}

func (r *AddressRequest) toInput() (services.AddressInput, *services.Error) {
	addrType := models.AddressHome
	if r.Type != "" {
		parsed, err := models.ParseAddressType(r.Type)
		if err != nil {
			return services.AddressInput{}, services.ValidationError(services.FieldError{
				Field: "type", Message: "Unknown address type",
			})
		}
		addrType = parsed
	}
	return services.AddressInput{
		Type:      addrType,
		Address:   r.Address,
		City:      r.City,
		Pincode:   r.Pincode,
		Lat:       r.Lat,
		Lng:       r.Lng,
		IsDefault: r.IsDefault,
	}, nil
}

// CreateAddress saves a new delivery address.
func (h *AddressHandler) CreateAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	input, verr := req.toInput()
	if verr != nil {
		respondError(c, h.logger, verr)
		return
	}

	address, err := h.addresses.CreateAddress(c.Request.Context(), userID, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Address saved", address)
}

// ListAddresses returns the caller's addresses.
func (h *AddressHandler) ListAddresses(c *gin.Context) {
	userID := middleware.GetUserID(c)
	addresses, err := h.addresses.ListAddresses(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Addresses", gin.H{"count": len(addresses), "addresses": addresses})
}

// UpdateAddress modifies one of the caller's addresses.
func (h *AddressHandler) UpdateAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)
	addressID := coerceInt(c.Param("id"), 0)
	if addressID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "id", Message: "Invalid address id"}))
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	input, verr := req.toInput()
	if verr != nil {
		respondError(c, h.logger, verr)
		return
	}

	address, err := h.addresses.UpdateAddress(c.Request.Context(), userID, uint(addressID), input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Address updated", address)
}

// DeleteAddress removes one of the caller's addresses.
func (h *AddressHandler) DeleteAddress(c *gin.Context) {
	userID := middleware.GetUserID(c)
	addressID := coerceInt(c.Param("id"), 0)
	if addressID <= 0 {
		respondError(c, h.logger, services.ValidationError(services.FieldError{Field: "id", Message: "Invalid address id"}))
		return
	}

	if err := h.addresses.DeleteAddress(c.Request.Context(), userID, uint(addressID)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Address deleted", nil)
}
