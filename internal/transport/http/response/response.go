package response

import "github.com/gin-gonic/gin"

// APIResponse is the uniform envelope: success carries {status, data,
// message}, errors carry {status, message}.
type APIResponse struct {
	Status  int         `json:"status"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

func OK(c *gin.Context, data interface{}, message string) {
	c.JSON(200, APIResponse{
		Status:  200,
		Data:    data,
		Message: message,
	})
}

func Created(c *gin.Context, data interface{}, message string) {
	c.JSON(201, APIResponse{
		Status:  201,
		Data:    data,
		Message: message,
	})
}

func Error(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, APIResponse{
		Status:  httpStatus,
		Message: message,
	})
}
