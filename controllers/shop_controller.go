package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/levisilvaaa/dailydose/models"
	"github.com/levisilvaaa/dailydose/utils"
)

// ShopController serves the storefront product cards. Checkout itself is an
// external hosted page; this service only hands out the catalog.
type ShopController struct {
	db *gorm.DB
}

// NewShopController creates a new controller instance.
func NewShopController(db *gorm.DB) *ShopController {
	return &ShopController{db: db}
}

// ListProducts returns the catalog ordered for display, featured package
// first.
func (s *ShopController) ListProducts(ctx *gin.Context) {
	var products []models.Product
	if err := s.db.Order("featured DESC, sort_order ASC").Find(&products).Error; err != nil {
		utils.Sugar.Errorf("product list query failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to load products")
		return
	}
	utils.Success(ctx, gin.H{"products": products})
}

// SeedProducts inserts the default catalog when the table is empty, so a
// fresh deployment serves a working storefront without manual data entry.
func SeedProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	defaults := []models.Product{
		{
			Name:        "6 Bottle Pack",
			Bottles:     6,
			PriceCents:  29400,
			Badge:       "Best Value",
			Featured:    true,
			SortOrder:   1,
			CheckoutURL: "https://checkout.example.com/6-bottles",
		},
		{
			Name:        "3 Bottle Pack",
			Bottles:     3,
			PriceCents:  17700,
			Badge:       "Most Popular",
			SortOrder:   2,
			CheckoutURL: "https://checkout.example.com/3-bottles",
		},
		{
			Name:        "1 Bottle",
			Bottles:     1,
			PriceCents:  6900,
			SortOrder:   3,
			CheckoutURL: "https://checkout.example.com/1-bottle",
		},
	}
	return db.Create(&defaults).Error
}
