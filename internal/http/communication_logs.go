package http

import (
	"net/http"

	"github.com/labstack/gommon/log"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	echo "github.com/labstack/echo/v4"
)

// fetchCommunicationLogsHandler lists every delivery-log row, newest first,
// with customer/segment/campaign references resolved.
func fetchCommunicationLogsHandler(
	logs repository.CommunicationLogsRepository,
	customers repository.CustomersRepository,
	segments repository.SegmentsRepository,
	campaigns repository.CampaignsRepository,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		entries, err := logs.FindAll(ctx)
		if err != nil {
			log.Errorf("communication log fetch failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch communication logs"})
		}

		customerIDs := make([]string, 0, len(entries))
		seen := make(map[string]bool, len(entries))
		for _, e := range entries {
			if !seen[e.CustomerID] {
				seen[e.CustomerID] = true
				customerIDs = append(customerIDs, e.CustomerID)
			}
		}
		found, err := customers.FindByIDs(ctx, customerIDs)
		if err != nil {
			log.Errorf("communication log customer resolution failed: %v", err)
			return c.JSON(http.StatusInternalServerError, map[string]any{"success": false, "error": "Failed to fetch communication logs"})
		}
		custByID := make(map[string]*model.CustomerRef, len(found))
		for i := range found {
			custByID[found[i].ID] = &model.CustomerRef{ID: found[i].ID, Name: found[i].Name, Email: found[i].Email}
		}

		segByID := make(map[string]*model.NamedRef)
		campByID := make(map[string]*model.NamedRef)
		for _, e := range entries {
			if _, ok := segByID[e.SegmentID]; !ok {
				if sg, err := segments.FindByID(ctx, e.SegmentID); err == nil && sg != nil {
					segByID[e.SegmentID] = &model.NamedRef{ID: sg.ID, Name: sg.Name}
				} else {
					segByID[e.SegmentID] = nil
				}
			}
			if _, ok := campByID[e.CampaignID]; !ok {
				if cp, err := campaigns.FindByID(ctx, e.CampaignID); err == nil && cp != nil {
					campByID[e.CampaignID] = &model.NamedRef{ID: cp.ID, Name: cp.Name}
				} else {
					campByID[e.CampaignID] = nil
				}
			}
		}

		views := make([]model.CommunicationLogView, 0, len(entries))
		for _, e := range entries {
			views = append(views, model.CommunicationLogView{
				ID:               e.ID,
				Campaign:         campByID[e.CampaignID],
				Segment:          segByID[e.SegmentID],
				Customer:         custByID[e.CustomerID],
				Message:          e.Message,
				Status:           e.Status,
				SentAt:           e.SentAt,
				DeliveryResponse: e.DeliveryResponse,
				CreatedAt:        e.CreatedAt,
				UpdatedAt:        e.UpdatedAt,
			})
		}

		return c.JSON(http.StatusOK, map[string]any{"success": true, "logs": views})
	}
}
