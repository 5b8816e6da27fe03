package http

import (
	"net/http"

	echo "github.com/labstack/echo/v4"
)

// VendorSimulator is the simulated delivery channel behind POST /vender/send.
type VendorSimulator interface {
	Accept(logID string)
}

type vendorSendReq struct {
	LogID      string `json:"logId"`
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

// vendorSendHandler always accepts synchronously; the delivery outcome comes
// back later through PUT /campaign/receipt.
func vendorSendHandler(sim VendorSimulator) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req vendorSendReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if req.LogID == "" {
			return c.JSON(http.StatusBadRequest, errJSON("logId is required"))
		}

		sim.Accept(req.LogID)

		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}
