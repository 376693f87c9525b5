package respond

import (
	"github.com/gin-gonic/gin"
)

// Message is the body of every error response.
type Message struct {
	Message string `json:"message"`
}

// JSON writes payload as-is. Store results and documents are returned without an envelope.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Error writes an error response with the shared message shape.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, Message{Message: message})
}

// Abort writes an error response and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Message{Message: message})
}
