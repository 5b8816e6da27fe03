package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/xenocrm/crm-gateway/internal/kafka"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/util"
	echo "github.com/labstack/echo/v4"
)

type createCustomerReq struct {
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Phone      string     `json:"phone"`
	JoinedAt   *time.Time `json:"joinedAt"`
	TotalSpend float64    `json:"totalSpend"`
	VisitCount int        `json:"visitCount"`
	LastActive *time.Time `json:"lastActive"`
}

func createCustomerHandler(customers repository.CustomersRepository, pub *kafka.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createCustomerReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" {
			return c.JSON(http.StatusBadRequest, errJSON("Name and email are required"))
		}

		customer := &model.Customer{
			ID:         util.NewID(),
			Name:       strings.TrimSpace(req.Name),
			Email:      strings.ToLower(strings.TrimSpace(req.Email)),
			Phone:      util.NormalizePhone(req.Phone),
			TotalSpend: req.TotalSpend,
			VisitCount: req.VisitCount,
			LastActive: req.LastActive,
		}
		if req.JoinedAt != nil {
			customer.JoinedAt = *req.JoinedAt
		}

		if err := customers.Insert(c.Request().Context(), customer); err != nil {
			log.Errorf("customer create failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to create customer"))
		}

		// Stream publication is optional and best-effort: a broker outage
		// never fails the API write.
		if pub != nil {
			if err := pub.PublishCustomer(c.Request().Context(), customer); err != nil {
				log.Warnf("customer publish failed: %v", err)
			}
		}

		return c.JSON(http.StatusCreated, map[string]any{
			"message":  "Customer created",
			"customer": customer,
		})
	}
}

func fetchCustomersHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		all, err := customers.FindAll(c.Request().Context())
		if err != nil {
			log.Errorf("customer fetch failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch customers"})
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "customers": all})
	}
}

func fetchCustomerHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		customer, err := customers.FindByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			log.Errorf("customer fetch by id failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch customer"})
		}
		if customer == nil {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false, "message": "Customer not found"})
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "customer": customer})
	}
}

func deleteCustomerHandler(customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		deleted, err := customers.Delete(c.Request().Context(), c.Param("id"))
		if err != nil {
			log.Errorf("customer delete failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to delete customer"})
		}
		if deleted == nil {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false, "message": "Customer not found"})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"success":  true,
			"message":  "Customer deleted successfully",
			"customer": deleted,
		})
	}
}
