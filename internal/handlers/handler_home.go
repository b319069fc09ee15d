package handlers

import (
	"log/slog"
	"net/http"

	"github.com/contactkeeper/contacts_backend/internal/dto"
	"github.com/contactkeeper/contacts_backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetHome godoc
// @Summary Welcome endpoint
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router / [get]
func GetHome(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Welcome to the Contacts API!"})
}

// Healthchecker verifies the database connection is alive.
// @Summary Health check
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Failure 500 {object} ErrorResponse
// @Router /healthchecker [get]
func Healthchecker(dbPool *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := dbPool.Ping(c.Request.Context()); err != nil {
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Health check failed", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Error connecting to the database"})
			return
		}
		c.JSON(http.StatusOK, dto.MessageResponse{Message: "Database connection is healthy!"})
	}
}
