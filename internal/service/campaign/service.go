// Package campaign creates campaigns and dispatches one personalized message
// per customer in the target segment, recording a delivery-log row for each.
// Delivery outcomes arrive later through vendor receipts.
package campaign

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/xenocrm/crm-gateway/internal/dispatch"
	"github.com/xenocrm/crm-gateway/internal/errs"
	"github.com/xenocrm/crm-gateway/internal/genai"
	"github.com/xenocrm/crm-gateway/internal/logger"
	"github.com/xenocrm/crm-gateway/internal/metrics"
	"github.com/xenocrm/crm-gateway/internal/model"
	"github.com/xenocrm/crm-gateway/internal/repository"
	"github.com/xenocrm/crm-gateway/internal/util"
	"go.uber.org/zap"
)

// Personalization modes. The original system showed both behaviors without
// reconciling them, so the choice is explicit configuration here.
const (
	PersonalizationAI       = "ai"       // regenerate content per customer
	PersonalizationTemplate = "template" // substitute tokens into messageTemplate
)

// Generator produces per-customer message content and template suggestions.
type Generator interface {
	BuildCampaignMessage(ctx context.Context, segmentName, rulesDescription, customerName string) (genai.CampaignMessage, error)
	SuggestTemplate(ctx context.Context, title, segment string) (string, error)
}

type Config struct {
	Personalization string
	WorkerCount     int // 1 = sequential dispatch, like the original
}

type Service struct {
	cfg       Config
	generator Generator
	vendor    dispatch.Sender
	segments  repository.SegmentsRepository
	customers repository.CustomersRepository
	campaigns repository.CampaignsRepository
	logs      repository.CommunicationLogsRepository
	users     repository.UsersRepository
}

func New(
	cfg Config,
	generator Generator,
	vendor dispatch.Sender,
	segmentsRepo repository.SegmentsRepository,
	customersRepo repository.CustomersRepository,
	campaignsRepo repository.CampaignsRepository,
	logsRepo repository.CommunicationLogsRepository,
	usersRepo repository.UsersRepository,
) *Service {
	if cfg.Personalization == "" {
		cfg.Personalization = PersonalizationAI
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}

	return &Service{
		cfg:       cfg,
		generator: generator,
		vendor:    vendor,
		segments:  segmentsRepo,
		customers: customersRepo,
		campaigns: campaignsRepo,
		logs:      logsRepo,
		users:     usersRepo,
	}
}

// Create validates inputs, persists the campaign, then dispatches over the
// segment's frozen snapshot. The whole loop runs before Create returns, so
// the caller sees the campaign id only after every customer was attempted.
// Customers are processed independently: one failure never aborts the rest.
func (s *Service) Create(ctx context.Context, name, messageTemplate, segmentID, createdBy string) (string, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(messageTemplate) == "" ||
		strings.TrimSpace(segmentID) == "" || strings.TrimSpace(createdBy) == "" {
		return "", errs.Validation("missing required fields")
	}

	seg, err := s.segments.FindByID(ctx, segmentID)
	if err != nil {
		return "", errs.Persistence(err, "load segment")
	}
	if seg == nil {
		return "", errs.NotFound("segment not found")
	}

	camp := &model.Campaign{
		ID:              util.NewID(),
		Name:            name,
		MessageTemplate: messageTemplate,
		SegmentID:       seg.ID,
		CreatedBy:       createdBy,
	}
	if err := s.campaigns.Insert(ctx, camp); err != nil {
		return "", errs.Persistence(err, "save campaign")
	}

	start := time.Now()
	s.dispatch(ctx, camp, seg)
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())

	return camp.ID, nil
}

// dispatch fans the snapshot out to a bounded worker pool. With worker_count=1
// this is plain sequential processing.
func (s *Service) dispatch(ctx context.Context, camp *model.Campaign, seg *model.Segment) {
	ids := make(chan string, len(seg.CustomerIDs))
	for _, id := range seg.CustomerIDs {
		ids <- id
	}
	close(ids)

	var wg sync.WaitGroup
	for i := 0; i < s.cfg.WorkerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for customerID := range ids {
				s.processCustomer(ctx, camp, seg, customerID)
			}
		}()
	}
	wg.Wait()
}

func (s *Service) processCustomer(ctx context.Context, camp *model.Campaign, seg *model.Segment, customerID string) {
	log := logger.L().With(
		zap.String("campaignId", camp.ID),
		zap.String("customerId", customerID),
	)

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		log.Error("campaign: load customer failed", zap.Error(err))
		return
	}
	if customer == nil {
		log.Warn("campaign: customer not found, skipping")
		return
	}

	message, err := s.resolveMessage(ctx, camp, seg, customer)
	if err != nil {
		log.Error("campaign: message resolution failed", zap.Error(err))
		return
	}

	entry := &model.CommunicationLog{
		ID:         util.NewID(),
		CampaignID: camp.ID,
		SegmentID:  seg.ID,
		CustomerID: customer.ID,
		Message:    message,
		Status:     model.StatusPending,
	}
	if err := s.logs.Insert(ctx, entry); err != nil {
		log.Error("campaign: insert communication log failed", zap.Error(err))
		return
	}
	metrics.DeliveryLogsTotal.WithLabelValues("pending").Inc()

	// Vendor errors are warnings: the definitive SENT/FAILED arrives via the
	// receipt callback, never from this synchronous acknowledgment.
	if err := s.vendor.Send(ctx, entry.ID, customer.ID, message); err != nil {
		log.Warn("campaign: vendor send failed", zap.Error(err))
	}
}

func (s *Service) resolveMessage(ctx context.Context, camp *model.Campaign, seg *model.Segment, customer *model.Customer) (string, error) {
	if s.cfg.Personalization == PersonalizationTemplate {
		return RenderTemplate(camp.MessageTemplate, customer), nil
	}

	generated, err := s.generator.BuildCampaignMessage(ctx, seg.Name, seg.RuleDescription(), customer.Name)
	if err != nil {
		return "", err
	}
	return generated.Message, nil
}

// History lists campaigns newest-first with their creator name, segment name
// (a deleted segment degrades to a sentinel), and log counts.
func (s *Service) History(ctx context.Context) ([]model.CampaignSummary, error) {
	camps, err := s.campaigns.FindAll(ctx)
	if err != nil {
		return nil, errs.Persistence(err, "fetch campaigns")
	}

	stats, err := s.logs.StatsByCampaign(ctx)
	if err != nil {
		return nil, errs.Persistence(err, "aggregate campaign stats")
	}

	creatorIDs := make([]string, 0, len(camps))
	segIDs := make([]string, 0, len(camps))
	seenUser := make(map[string]bool)
	for _, c := range camps {
		if c.CreatedBy != "" && !seenUser[c.CreatedBy] {
			seenUser[c.CreatedBy] = true
			creatorIDs = append(creatorIDs, c.CreatedBy)
		}
		segIDs = append(segIDs, c.SegmentID)
	}

	users, err := s.users.FindByIDs(ctx, creatorIDs)
	if err != nil {
		return nil, errs.Persistence(err, "fetch campaign creators")
	}
	userByID := make(map[string]model.User, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}

	segByID := make(map[string]*model.Segment, len(segIDs))
	for _, id := range segIDs {
		if _, ok := segByID[id]; ok {
			continue
		}
		sg, err := s.segments.FindByID(ctx, id)
		if err != nil {
			return nil, errs.Persistence(err, "fetch campaign segment")
		}
		segByID[id] = sg // nil stays nil: deleted segment
	}

	out := make([]model.CampaignSummary, 0, len(camps))
	for _, c := range camps {
		summary := model.CampaignSummary{
			ID:              c.ID,
			Name:            c.Name,
			MessageTemplate: c.MessageTemplate,
			CreatedAt:       c.CreatedAt,
			SegmentName:     "Deleted Segment",
			Stats:           stats[c.ID],
		}
		if u, ok := userByID[c.CreatedBy]; ok {
			summary.CreatedBy = &model.UserRef{ID: u.ID, Name: u.Name}
		}
		if sg := segByID[c.SegmentID]; sg != nil {
			summary.SegmentName = sg.Name
		}
		out = append(out, summary)
	}
	return out, nil
}

// Logs returns the delivery-log rows of one campaign with customer names
// resolved; a deleted customer degrades to "Unknown".
func (s *Service) Logs(ctx context.Context, campaignID string) ([]model.CampaignLogRow, error) {
	entries, err := s.logs.FindByCampaign(ctx, campaignID)
	if err != nil {
		return nil, errs.Persistence(err, "fetch campaign logs")
	}

	customerIDs := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, e := range entries {
		if !seen[e.CustomerID] {
			seen[e.CustomerID] = true
			customerIDs = append(customerIDs, e.CustomerID)
		}
	}
	customers, err := s.customers.FindByIDs(ctx, customerIDs)
	if err != nil {
		return nil, errs.Persistence(err, "fetch log customers")
	}
	nameByID := make(map[string]string, len(customers))
	for _, c := range customers {
		nameByID[c.ID] = c.Name
	}

	rows := make([]model.CampaignLogRow, 0, len(entries))
	for _, e := range entries {
		name, ok := nameByID[e.CustomerID]
		if !ok {
			name = "Unknown"
		}
		rows = append(rows, model.CampaignLogRow{
			ID:           e.ID,
			CustomerName: name,
			Message:      e.Message,
			Status:       e.Status,
			CreatedAt:    e.CreatedAt,
		})
	}
	return rows, nil
}

// SuggestTemplate delegates to the generation service.
func (s *Service) SuggestTemplate(ctx context.Context, title, segmentDescription string) (string, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(segmentDescription) == "" {
		return "", errs.Validation("both title and segment are required")
	}
	return s.generator.SuggestTemplate(ctx, title, segmentDescription)
}

// UpdateReceipt applies a vendor receipt: status, sentAt=now, and the raw
// vendor message. Deliberately last-write-wins; there is no guard against a
// second receipt overwriting the first.
func (s *Service) UpdateReceipt(ctx context.Context, logID string, status model.LogStatus, vendorMessage string) error {
	if strings.TrimSpace(logID) == "" {
		return errs.Validation("logId is required")
	}

	matched, err := s.logs.UpdateReceipt(ctx, logID, status, vendorMessage, time.Now())
	if err != nil {
		return errs.Persistence(err, "update delivery status")
	}
	if !matched {
		return errs.NotFound("communication log not found")
	}

	switch status {
	case model.StatusSent:
		metrics.DeliveryLogsTotal.WithLabelValues("sent").Inc()
	case model.StatusFailed:
		metrics.DeliveryLogsTotal.WithLabelValues("failed").Inc()
	}
	return nil
}
