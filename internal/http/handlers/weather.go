package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/farmassist/farmassist-backend/internal/data/fallback"
	"github.com/farmassist/farmassist-backend/internal/http/response"
	"github.com/farmassist/farmassist-backend/internal/services"
)

type WeatherHandler struct {
	weatherService  services.WeatherService
	defaultLocation string
}

func NewWeatherHandler(weatherService services.WeatherService, defaultLocation string) *WeatherHandler {
	return &WeatherHandler{weatherService: weatherService, defaultLocation: defaultLocation}
}

func (wh *WeatherHandler) Forecast(c *gin.Context) {
	location := c.DefaultQuery("location", wh.defaultLocation)
	forecasts, err := wh.weatherService.Forecast(c.Request.Context(), location)
	if err != nil {
		if response.DomainError(err) {
			response.RespondFromError(c, err)
			return
		}
		forecasts = []fallback.ForecastRecord{}
	}
	if forecasts == nil {
		forecasts = []fallback.ForecastRecord{}
	}
	response.RespondOK(c, gin.H{"location": location, "forecasts": forecasts})
}
