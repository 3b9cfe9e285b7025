package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/http/response"
	"github.com/farmassist/farmassist-backend/internal/services"
)

type MarketHandler struct {
	marketService services.MarketService
}

func NewMarketHandler(marketService services.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

func (mh *MarketHandler) Prices(c *gin.Context) {
	prices, err := mh.marketService.Prices(c.Request.Context(), c.Query("crop_type"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		prices = []fallback.PriceRecord{}
	}
	if prices == nil {
		prices = []fallback.PriceRecord{}
	}
	response.RespondOK(c, gin.H{"prices": prices})
}

func (mh *MarketHandler) ListFavorites(c *gin.Context) {
	favorites, err := mh.marketService.ListFavorites(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		favorites = []fallback.FavoriteRecord{}
	}
	if favorites == nil {
		favorites = []fallback.FavoriteRecord{}
	}
	response.RespondOK(c, gin.H{"favorites": favorites})
}

func (mh *MarketHandler) AddFavorite(c *gin.Context) {
	var req services.FavoriteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	favorite, err := mh.marketService.AddFavorite(c.Request.Context(), req)
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondCreated(c, favorite)
}

func (mh *MarketHandler) RemoveFavorite(c *gin.Context) {
	if err := mh.marketService.RemoveFavorite(c.Request.Context(), c.Param("id")); err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
