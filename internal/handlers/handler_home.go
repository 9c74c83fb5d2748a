package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getHealth godoc
// @Summary Show the status of the server.
// @Description get the status of the server.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
