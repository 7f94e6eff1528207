package response

import (
	"net/http"

	"restlab/orm"

	"github.com/gin-gonic/gin"
)

// Success sends {success: true, data}.
func Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    data,
	})
}

// Created is Success with 201.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
	})
}

// List adds the number of records returned.
func List(c *gin.Context, data any, n int) {
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"data":              data,
		"number_of_records": n,
	})
}

// Paginated adds page metadata to List.
func Paginated(c *gin.Context, data any, n int, p orm.Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"data":              data,
		"number_of_records": n,
		"pagination":        p,
	})
}

// Done confirms a delete or logout with {success: true, data: msg}.
func Done(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    msg,
	})
}

// Token sends a freshly issued token.
func Token(c *gin.Context, status int, token string) {
	c.JSON(status, gin.H{
		"success": true,
		"token":   token,
	})
}

// Error aborts the chain with {success: false, message}. message is a string
// or a field -> messages map.
func Error(c *gin.Context, status int, message any) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"message": message,
	})
}

func BadRequestError(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, msg)
}

func UnauthorizedError(c *gin.Context, msg string) {
	Error(c, http.StatusUnauthorized, msg)
}

func NotFoundError(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, msg)
}

func ConflictError(c *gin.Context, msg string) {
	Error(c, http.StatusConflict, msg)
}

// Result sends a message together with the affected object.
func Result(c *gin.Context, status int, msg string, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"message": msg,
		"data":    data,
	})
}

// Registered answers 201 with the new account and its first token.
func Registered(c *gin.Context, data any, token string) {
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    data,
		"token":   token,
	})
}
