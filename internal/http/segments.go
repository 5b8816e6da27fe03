package http

import (
	"context"
	"net/http"

	"github.com/labstack/gommon/log"
	"github.com/xenocrm/crm-gateway/internal/model"
	echo "github.com/labstack/echo/v4"
)

// SegmentService is the slice of the segment builder the handlers need.
type SegmentService interface {
	Preview(ctx context.Context, rules string) (int64, error)
	Save(ctx context.Context, name, rules, createdBy string) (*model.Segment, error)
	Fetch(ctx context.Context) ([]model.SegmentView, error)
}

type previewReq struct {
	Rules string `json:"rules"`
}

func previewSegmentHandler(svc SegmentService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req previewReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if req.Rules == "" {
			return c.JSON(http.StatusBadRequest, errJSON("Rules are required"))
		}

		matched, err := svc.Preview(c.Request().Context(), req.Rules)
		if err != nil {
			log.Errorf("segment preview failed: %v", err)
			return c.JSON(statusFor(err), errJSON("Invalid rules format or query generation failed."))
		}

		return c.JSON(http.StatusOK, map[string]int64{"matched": matched})
	}
}

type saveSegmentReq struct {
	Name      string `json:"name"`
	Rules     string `json:"rules"`
	CreatedBy string `json:"createdBy"`
}

func saveSegmentHandler(svc SegmentService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req saveSegmentReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if req.Name == "" || req.Rules == "" || req.CreatedBy == "" {
			return c.JSON(http.StatusBadRequest, errJSON("Missing required fields: name, rules, or createdBy."))
		}

		seg, err := svc.Save(c.Request().Context(), req.Name, req.Rules, req.CreatedBy)
		if err != nil {
			log.Errorf("segment save failed: %v", err)
			return c.JSON(statusFor(err), errJSON("Failed to save segment. Please check input data."))
		}

		return c.JSON(http.StatusCreated, seg)
	}
}

func fetchSegmentsHandler(svc SegmentService) echo.HandlerFunc {
	return func(c echo.Context) error {
		views, err := svc.Fetch(c.Request().Context())
		if err != nil {
			log.Errorf("segment fetch failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to fetch segments."))
		}
		return c.JSON(http.StatusOK, views)
	}
}
