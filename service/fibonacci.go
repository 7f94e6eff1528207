package service

import (
	"restlab/fibonacci"
	"restlab/response"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterFibonacci(r *gin.RouterGroup) {
	r.GET("/fibonacci", h.getFibonacci)
}

type fibonacciQuery struct {
	N *int `form:"n" binding:"required,min=0,max=90"`
}

func (h *Handler) getFibonacci(c *gin.Context) {
	var q fibonacciQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ValidationError(c, err)
		return
	}
	values, err := fibonacci.First(*q.N)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return
	}
	response.List(c, values, len(values))
}
