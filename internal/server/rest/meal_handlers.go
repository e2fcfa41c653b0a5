package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/dailydiet/internal/server/services"
	"github.com/gin-gonic/gin"
)

type mealRequest struct {
	Name        string    `json:"name" binding:"required,max=100"`
	Description string    `json:"description" binding:"max=500"`
	EatenAt     time.Time `json:"eaten_at" binding:"required"`
	IsOnDiet    *bool     `json:"is_on_diet" binding:"required"`
}

func (r mealRequest) input() services.MealInput {
	return services.MealInput{
		Name:        r.Name,
		Description: r.Description,
		EatenAt:     r.EatenAt,
		IsOnDiet:    *r.IsOnDiet,
	}
}

type mealURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// mealID reads the :id path parameter. Anything that is not a UUID cannot
// name a meal, so it is answered with 404.
func (h *Handlers) mealID(c *gin.Context) (string, bool) {
	var uri mealURI
	if err := c.ShouldBindUri(&uri); err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: "not found"})
		return "", false
	}
	return uri.ID, true
}

func (h *Handlers) createMeal(c *gin.Context) {
	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, eaten_at and is_on_diet are required")
		return
	}

	m, err := h.meals.Create(c.Request.Context(), currentUserID(c), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, newMealResponse(m))
}

func (h *Handlers) listMeals(c *gin.Context) {
	list, err := h.meals.List(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	resp := make([]mealResponse, 0, len(list))
	for _, m := range list {
		resp = append(resp, newMealResponse(m))
	}

	c.JSON(http.StatusOK, gin.H{"meals": resp})
}

func (h *Handlers) getMeal(c *gin.Context) {
	id, ok := h.mealID(c)
	if !ok {
		return
	}

	m, err := h.meals.Get(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newMealResponse(m))
}

func (h *Handlers) updateMeal(c *gin.Context) {
	id, ok := h.mealID(c)
	if !ok {
		return
	}

	var req mealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "name, eaten_at and is_on_diet are required")
		return
	}

	m, err := h.meals.Update(c.Request.Context(), currentUserID(c), id, req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newMealResponse(m))
}

func (h *Handlers) deleteMeal(c *gin.Context) {
	id, ok := h.mealID(c)
	if !ok {
		return
	}

	if err := h.meals.Delete(c.Request.Context(), currentUserID(c), id); err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handlers) mealMetrics(c *gin.Context) {
	m, err := h.meals.Metrics(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, metricsResponse{
		TotalMeals:         m.TotalMeals,
		OnDietMeals:        m.OnDietMeals,
		OffDietMeals:       m.OffDietMeals,
		BestOnDietSequence: m.BestOnDietSequence,
	})
}

func (h *Handlers) photoUploadURL(c *gin.Context) {
	id, ok := h.mealID(c)
	if !ok {
		return
	}

	up, err := h.meals.PhotoUploadURL(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"upload_url": up.UploadURL, "key": up.Key})
}

func (h *Handlers) photoURL(c *gin.Context) {
	id, ok := h.mealID(c)
	if !ok {
		return
	}

	url, err := h.meals.PhotoURL(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
