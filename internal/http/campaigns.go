package http

import (
	"context"
	"net/http"

	"github.com/labstack/gommon/log"
	"github.com/xenocrm/crm-gateway/internal/model"
	echo "github.com/labstack/echo/v4"
)

// CampaignService is the slice of the campaign dispatcher the handlers need.
type CampaignService interface {
	Create(ctx context.Context, name, messageTemplate, segmentID, createdBy string) (string, error)
	History(ctx context.Context) ([]model.CampaignSummary, error)
	Logs(ctx context.Context, campaignID string) ([]model.CampaignLogRow, error)
	SuggestTemplate(ctx context.Context, title, segmentDescription string) (string, error)
	UpdateReceipt(ctx context.Context, logID string, status model.LogStatus, vendorMessage string) error
}

type createCampaignReq struct {
	Name            string `json:"name"`
	MessageTemplate string `json:"messageTemplate"`
	SegmentID       string `json:"segmentId"`
	CreatedBy       string `json:"createdBy"`
}

func createCampaignHandler(svc CampaignService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createCampaignReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if req.Name == "" || req.MessageTemplate == "" || req.SegmentID == "" || req.CreatedBy == "" {
			return c.JSON(http.StatusBadRequest, errJSON("Missing required fields"))
		}

		campaignID, err := svc.Create(c.Request().Context(), req.Name, req.MessageTemplate, req.SegmentID, req.CreatedBy)
		if err != nil {
			log.Errorf("campaign create failed: %v", err)
			return c.JSON(statusFor(err), errJSON("Failed to create campaign"))
		}

		return c.JSON(http.StatusOK, map[string]any{
			"success":    true,
			"campaignId": campaignID,
		})
	}
}

func campaignHistoryHandler(svc CampaignService) echo.HandlerFunc {
	return func(c echo.Context) error {
		summaries, err := svc.History(c.Request().Context())
		if err != nil {
			log.Errorf("campaign history failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to fetch campaign history"))
		}
		return c.JSON(http.StatusOK, summaries)
	}
}

func campaignLogsHandler(svc CampaignService) echo.HandlerFunc {
	return func(c echo.Context) error {
		rows, err := svc.Logs(c.Request().Context(), c.Param("campaignId"))
		if err != nil {
			log.Errorf("campaign logs failed: %v", err)
			return c.JSON(http.StatusInternalServerError, errJSON("Failed to fetch campaign logs"))
		}
		return c.JSON(http.StatusOK, rows)
	}
}

type suggestTemplateReq struct {
	Title   string `json:"title"`
	Segment string `json:"segment"`
}

func suggestTemplateHandler(svc CampaignService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req suggestTemplateReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}
		if req.Title == "" || req.Segment == "" {
			return c.JSON(http.StatusBadRequest, errJSON("Both title and segment are required."))
		}

		tpl, err := svc.SuggestTemplate(c.Request().Context(), req.Title, req.Segment)
		if err != nil {
			log.Errorf("template suggestion failed: %v", err)
			return c.JSON(statusFor(err), errJSON("Failed to generate message template."))
		}

		return c.JSON(http.StatusOK, map[string]string{"messageTemplate": tpl})
	}
}

type receiptReq struct {
	LogID         string `json:"logId"`
	Status        string `json:"status"`
	VendorMessage string `json:"vendorMessage"`
}

func receiptHandler(svc CampaignService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req receiptReq
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, errJSON("bad request"))
		}

		err := svc.UpdateReceipt(c.Request().Context(), req.LogID, model.LogStatus(req.Status), req.VendorMessage)
		if err != nil {
			log.Errorf("receipt update failed: %v", err)
			return c.JSON(statusFor(err), errJSON("Failed to update delivery status"))
		}

		return c.JSON(http.StatusOK, map[string]bool{"success": true})
	}
}
