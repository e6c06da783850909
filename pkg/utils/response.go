package utils

import (
	"github.com/binhbb2204/BookHub/pkg/models"
	"github.com/gin-gonic/gin"
)

func RespondSuccess(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, models.Response{Success: true, Message: message, Data: data})
}

func RespondError(c *gin.Context, status int, message string) {
	c.JSON(status, models.Response{Success: false, Message: message})
}

// RespondErrorDetail attaches a machine-readable detail such as a
// validation failure list.
func RespondErrorDetail(c *gin.Context, status int, message string, detail interface{}) {
	c.JSON(status, models.Response{Success: false, Message: message, Detail: detail})
}

func AbortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, models.Response{Success: false, Message: message})
}
