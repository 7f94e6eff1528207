package service

import (
	"errors"

	"restlab/dao/query"
	"restlab/response"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterCustomers(r *gin.RouterGroup) {
	r.GET("/customers", h.listCustomers)
	r.POST("/customers", h.changeCustomerAddress)
}

// customerRequest comes from an HTML form or a JSON body.
type customerRequest struct {
	Action      string `form:"action" json:"action" binding:"required,oneof=add update delete"`
	CustomerID  uint   `form:"customer_id" json:"customer_id" binding:"required"`
	City        string `form:"city" json:"city" binding:"required_unless=Action delete,max=100"`
	Street      string `form:"street" json:"street" binding:"required_unless=Action delete,max=100"`
	HouseNumber string `form:"house_number" json:"house_number" binding:"required_unless=Action delete,max=20"`
}

func (h *Handler) listCustomers(c *gin.Context) {
	rows, err := h.customers.List(c.Request.Context())
	if err != nil {
		response.Internal(c, err)
		return
	}
	response.List(c, rows, len(rows))
}

// changeCustomerAddress applies one address change and answers with the
// refreshed list.
func (h *Handler) changeCustomerAddress(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBind(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	in := query.AddressInput{
		CustomerID:  req.CustomerID,
		City:        req.City,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
	}
	var err error
	switch req.Action {
	case "add":
		err = h.customers.AddAddress(c.Request.Context(), in)
	case "update":
		err = h.customers.UpdateAddress(c.Request.Context(), in)
	case "delete":
		err = h.customers.DeleteAddress(c.Request.Context(), req.CustomerID)
	}
	switch {
	case errors.Is(err, query.ErrUnknownCustomer):
		response.NotFoundError(c, "Customer not found")
		return
	case errors.Is(err, query.ErrNoAddress):
		response.NotFoundError(c, "Customer has no address")
		return
	case err != nil:
		response.Abort(c, err)
		return
	}
	h.listCustomers(c)
}
