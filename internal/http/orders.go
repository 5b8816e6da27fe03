package http

import (
	"net/http"

	"github.com/labstack/gommon/log"
	"github.com/xenocrm/crm-gateway/internal/kafka"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/util"
	echo "github.com/labstack/echo/v4"
)

type createOrderReq struct {
	CustomerID string   `json:"customerId"`
	OrderID    string   `json:"orderId"`
	Amount     float64  `json:"amount"`
	Items      []string `json:"items"`
}

// createOrderHandler persists the order, then bumps the customer's totalSpend
// with an atomic increment. There is no transaction spanning the two writes;
// a crash in between leaves the accepted partial state.
func createOrderHandler(orders repository.OrdersRepository, customers repository.CustomersRepository, pub *kafka.Publisher) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createOrderReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if req.CustomerID == "" || req.Amount == 0 {
			return c.JSON(http.StatusBadRequest, errJSON("customerId and amount are required"))
		}

		order := &model.Order{
			ID:         util.NewID(),
			CustomerID: req.CustomerID,
			OrderID:    req.OrderID,
			Amount:     req.Amount,
			Items:      req.Items,
		}

		ctx := c.Request().Context()
		if err := orders.Insert(ctx, order); err != nil {
			log.Errorf("order create failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to handle order"))
		}

		if err := customers.IncTotalSpend(ctx, order.CustomerID, order.Amount); err != nil {
			log.Errorf("order totalSpend increment failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to handle order"))
		}

		if pub != nil {
			if err := pub.PublishOrder(ctx, order); err != nil {
				log.Warnf("order publish failed: %v", err)
			}
		}

		return c.JSON(http.StatusCreated, map[string]any{
			"message": "Order saved and totalSpend updated",
			"order":   order,
		})
	}
}

func fetchOrdersHandler(orders repository.OrdersRepository, customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		all, err := orders.FindAll(ctx)
		if err != nil {
			log.Errorf("order fetch failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch orders"})
		}

		views, err := resolveOrderViews(c, customers, all)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch orders"})
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "orders": views})
	}
}

func fetchOrderHandler(orders repository.OrdersRepository, customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		order, err := orders.FindByID(c.Request().Context(), c.Param("id"))
		if err != nil {
			log.Errorf("order fetch by id failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch order"})
		}
		if order == nil {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false, "message": "Order not found"})
		}

		views, err := resolveOrderViews(c, customers, []model.Order{*order})
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch order"})
		}
		return c.JSON(http.StatusOK, map[string]any{"success": true, "order": views[0]})
	}
}

// deleteOrderHandler removes the order and reverses its totalSpend
// contribution with the same atomic increment, so create+delete round-trips
// the customer back to the original value.
func deleteOrderHandler(orders repository.OrdersRepository, customers repository.CustomersRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		deleted, err := orders.Delete(ctx, c.Param("id"))
		if err != nil {
			log.Errorf("order delete failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to delete order"})
		}
		if deleted == nil {
			return c.JSON(http.StatusNotFound, map[string]any{"success": false, "message": "Order not found"})
		}

		if err := customers.IncTotalSpend(ctx, deleted.CustomerID, -deleted.Amount); err != nil {
			log.Errorf("order totalSpend decrement failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to delete order"})
		}

		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"message": "Order deleted and customer totalSpend updated",
			"order":   deleted,
		})
	}
}

func resolveOrderViews(c echo.Context, customers repository.CustomersRepository, all []model.Order) ([]model.OrderView, error) {
	ids := make([]string, 0, len(all))
	seen := make(map[string]bool, len(all))
	for _, o := range all {
		if !seen[o.CustomerID] {
			seen[o.CustomerID] = true
			ids = append(ids, o.CustomerID)
		}
	}

	found, err := customers.FindByIDs(c.Request().Context(), ids)
	if err != nil {
		log.Errorf("order customer resolution failed: %v", err)
		return nil, err
	}
	refByID := make(map[string]*model.CustomerRef, len(found))
	for i := range found {
		refByID[found[i].ID] = &model.CustomerRef{ID: found[i].ID, Name: found[i].Name}
	}

	views := make([]model.OrderView, 0, len(all))
	for _, o := range all {
		views = append(views, model.OrderView{
			ID:        o.ID,
			Customer:  refByID[o.CustomerID],
			OrderID:   o.OrderID,
			Amount:    o.Amount,
			Items:     o.Items,
			CreatedAt: o.CreatedAt,
		})
	}
	return views, nil
}
