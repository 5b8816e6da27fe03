package campaign

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenocrm/crm-gateway/internal/errs"
	"github.com/xenocrm/crm-gateway/internal/genai"
	"github.com/xenocrm/crm-gateway/internal/model"
	"go.mongodb.org/mongo-driver/bson"
)

// ---- fakes ----

type fakeSegments struct {
	byID map[string]*model.Segment
}

func (f *fakeSegments) Insert(ctx context.Context, s *model.Segment) error { return nil }
func (f *fakeSegments) FindByID(ctx context.Context, id string) (*model.Segment, error) {
	return f.byID[id], nil
}
func (f *fakeSegments) FindAll(ctx context.Context) ([]model.Segment, error) { return nil, nil }

type fakeCustomers struct {
	byID map[string]*model.Customer
}

func (f *fakeCustomers) Insert(ctx context.Context, c *model.Customer) error { return nil }
func (f *fakeCustomers) FindAll(ctx context.Context) ([]model.Customer, error) {
	return nil, nil
}
func (f *fakeCustomers) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return f.byID[id], nil
}
func (f *fakeCustomers) FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	var out []model.Customer
	for _, id := range ids {
		if c, ok := f.byID[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}
func (f *fakeCustomers) Delete(ctx context.Context, id string) (*model.Customer, error) {
	return nil, nil
}
func (f *fakeCustomers) CountMatching(ctx context.Context, filter bson.M) (int64, error) {
	return 0, nil
}
func (f *fakeCustomers) IDsMatching(ctx context.Context, filter bson.M) ([]string, error) {
	return nil, nil
}
func (f *fakeCustomers) IncTotalSpend(ctx context.Context, id string, delta float64) error {
	return nil
}
func (f *fakeCustomers) UpsertByEmail(ctx context.Context, c *model.Customer) error { return nil }

type fakeCampaigns struct {
	mu       sync.Mutex
	inserted []*model.Campaign
}

func (f *fakeCampaigns) Insert(ctx context.Context, c *model.Campaign) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, c)
	return nil
}
func (f *fakeCampaigns) FindAll(ctx context.Context) ([]model.Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Campaign, 0, len(f.inserted))
	for _, c := range f.inserted {
		out = append(out, *c)
	}
	return out, nil
}
func (f *fakeCampaigns) FindByID(ctx context.Context, id string) (*model.Campaign, error) {
	return nil, nil
}

type fakeLogs struct {
	mu       sync.Mutex
	inserted []*model.CommunicationLog
	stats    map[string]model.CampaignStats

	receiptMatched bool
	lastReceipt    struct {
		logID   string
		status  model.LogStatus
		message string
	}
}

func (f *fakeLogs) Insert(ctx context.Context, l *model.CommunicationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, l)
	return nil
}
func (f *fakeLogs) UpdateReceipt(ctx context.Context, logID string, status model.LogStatus, vendorMessage string, sentAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastReceipt.logID = logID
	f.lastReceipt.status = status
	f.lastReceipt.message = vendorMessage
	return f.receiptMatched, nil
}
func (f *fakeLogs) FindByCampaign(ctx context.Context, campaignID string) ([]model.CommunicationLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.CommunicationLog
	for _, l := range f.inserted {
		if l.CampaignID == campaignID {
			out = append(out, *l)
		}
	}
	return out, nil
}
func (f *fakeLogs) FindAll(ctx context.Context) ([]model.CommunicationLog, error) { return nil, nil }
func (f *fakeLogs) StatsByCampaign(ctx context.Context) (map[string]model.CampaignStats, error) {
	return f.stats, nil
}

type fakeUsers struct {
	byID map[string]model.User
}

func (f *fakeUsers) Insert(ctx context.Context, u *model.User) error { return nil }
func (f *fakeUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.byID[id]; ok {
		return &u, nil
	}
	return nil, nil
}
func (f *fakeUsers) FindByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range ids {
		if u, ok := f.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	failFor map[string]bool // customerName -> fail
	calls   int
}

func (f *fakeGenerator) BuildCampaignMessage(ctx context.Context, segmentName, rulesDescription, customerName string) (genai.CampaignMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failFor[customerName] {
		return genai.CampaignMessage{}, errs.Generation(nil, "generation failed")
	}
	return genai.CampaignMessage{Title: "T", Message: "Hi " + customerName + "!"}, nil
}

func (f *fakeGenerator) SuggestTemplate(ctx context.Context, title, segment string) (string, error) {
	return "Hey {{name}}, check out " + title, nil
}

type fakeVendor struct {
	mu    sync.Mutex
	sent  []string // logIDs
	err   error
	byLog map[string]string
}

func (f *fakeVendor) Send(ctx context.Context, logID, customerID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, logID)
	if f.byLog == nil {
		f.byLog = map[string]string{}
	}
	f.byLog[logID] = message
	return nil
}

// ---- fixtures ----

func testCustomers() *fakeCustomers {
	return &fakeCustomers{byID: map[string]*model.Customer{
		"c1": {ID: "c1", Name: "Ali", Email: "ali@example.com", TotalSpend: 12000},
		"c2": {ID: "c2", Name: "Sara", Email: "sara@example.com", TotalSpend: 300},
		"c3": {ID: "c3", Name: "Omid", Email: "omid@example.com", TotalSpend: 9000},
	}}
}

func testService(cfg Config, seg *fakeSegments, cust *fakeCustomers, gen *fakeGenerator, vend *fakeVendor) (*Service, *fakeCampaigns, *fakeLogs) {
	camps := &fakeCampaigns{}
	logs := &fakeLogs{receiptMatched: true}
	users := &fakeUsers{byID: map[string]model.User{
		"u1": {ID: "u1", Name: "Demo", Email: "demo@example.com"},
	}}
	svc := New(cfg, gen, vend, seg, cust, camps, logs, users)
	return svc, camps, logs
}

func snapshotSegment() *fakeSegments {
	return &fakeSegments{byID: map[string]*model.Segment{
		"s1": {
			ID:          "s1",
			Name:        "Big Spenders",
			Rules:       []string{"spent more than 5000"},
			CreatedBy:   "u1",
			CustomerIDs: []string{"c1", "c2", "c3"},
		},
	}}
}

// ---- tests ----

func TestCreateDispatchesOneLogPerCustomer(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{}
	svc, camps, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

	id, err := svc.Create(context.Background(), "June Promo", "Hi {{name}}", "s1", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	require.Len(t, camps.inserted, 1)
	assert.Equal(t, id, camps.inserted[0].ID)

	// one PENDING log per snapshot customer, one vendor send per log
	require.Len(t, logs.inserted, 3)
	for _, l := range logs.inserted {
		assert.Equal(t, model.StatusPending, l.Status)
		assert.Equal(t, id, l.CampaignID)
		assert.Equal(t, "s1", l.SegmentID)
	}
	assert.Len(t, vend.sent, 3)
	assert.Equal(t, 3, gen.calls)
}

func TestCreateGenerationFailureIsolatesCustomer(t *testing.T) {
	gen := &fakeGenerator{failFor: map[string]bool{"Sara": true}}
	vend := &fakeVendor{}
	svc, _, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

	id, err := svc.Create(context.Background(), "June Promo", "tpl", "s1", "u1")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Sara's generation failed before the log insert; the other two proceed
	require.Len(t, logs.inserted, 2)
	for _, l := range logs.inserted {
		assert.NotEqual(t, "c2", l.CustomerID)
	}
	assert.Len(t, vend.sent, 2)
}

func TestCreateSkipsMissingCustomer(t *testing.T) {
	cust := testCustomers()
	delete(cust.byID, "c3")

	gen := &fakeGenerator{}
	vend := &fakeVendor{}
	svc, _, logs := testService(Config{}, snapshotSegment(), cust, gen, vend)

	_, err := svc.Create(context.Background(), "June Promo", "tpl", "s1", "u1")
	require.NoError(t, err)
	assert.Len(t, logs.inserted, 2)
}

func TestCreateVendorFailureStillRecordsPendingLog(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{err: errs.Vendor(nil, "channel down")}
	svc, _, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

	_, err := svc.Create(context.Background(), "June Promo", "tpl", "s1", "u1")
	require.NoError(t, err)

	// every log exists and stays PENDING; receipts decide the outcome later
	require.Len(t, logs.inserted, 3)
	for _, l := range logs.inserted {
		assert.Equal(t, model.StatusPending, l.Status)
	}
}

func TestCreateEmptySegmentSucceeds(t *testing.T) {
	seg := &fakeSegments{byID: map[string]*model.Segment{
		"s1": {ID: "s1", Name: "Nobody", CustomerIDs: nil},
	}}
	svc, camps, logs := testService(Config{}, seg, testCustomers(), &fakeGenerator{}, &fakeVendor{})

	id, err := svc.Create(context.Background(), "Ghost Town", "tpl", "s1", "u1")
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, camps.inserted, 1)
	assert.Empty(t, logs.inserted)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := testService(Config{}, snapshotSegment(), testCustomers(), &fakeGenerator{}, &fakeVendor{})

	_, err := svc.Create(context.Background(), "", "tpl", "s1", "u1")
	assert.True(t, errs.IsValidation(err))

	_, err = svc.Create(context.Background(), "Promo", "tpl", "missing", "u1")
	assert.True(t, errs.IsNotFound(err))
}

func TestCreateTemplateModeRendersTokens(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{}
	seg := &fakeSegments{byID: map[string]*model.Segment{
		"s1": {ID: "s1", Name: "One", CustomerIDs: []string{"c1"}},
	}}
	svc, _, logs := testService(Config{Personalization: PersonalizationTemplate}, seg, testCustomers(), gen, vend)

	_, err := svc.Create(context.Background(), "Promo", "Hi {{name}}, you spent {{totalSpend}}", "s1", "u1")
	require.NoError(t, err)

	require.Len(t, logs.inserted, 1)
	assert.Equal(t, "Hi Ali, you spent 12000", logs.inserted[0].Message)
	assert.Zero(t, gen.calls)
}

func TestCreateWorkerPoolCoversSnapshot(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{}
	svc, _, logs := testService(Config{WorkerCount: 4}, snapshotSegment(), testCustomers(), gen, vend)

	_, err := svc.Create(context.Background(), "Promo", "tpl", "s1", "u1")
	require.NoError(t, err)

	require.Len(t, logs.inserted, 3)
	seen := map[string]bool{}
	for _, l := range logs.inserted {
		seen[l.CustomerID] = true
	}
	assert.True(t, seen["c1"] && seen["c2"] && seen["c3"])
}

func TestHistoryResolvesSegmentAndStats(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{}
	svc, camps, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

	camps.inserted = []*model.Campaign{
		{ID: "camp1", Name: "A", SegmentID: "s1", CreatedBy: "u1"},
		{ID: "camp2", Name: "B", SegmentID: "gone", CreatedBy: "u1"},
	}
	logs.stats = map[string]model.CampaignStats{
		"camp1": {Total: 3, Sent: 2, Failed: 1},
	}

	out, err := svc.History(context.Background())
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Big Spenders", out[0].SegmentName)
	assert.Equal(t, 2, out[0].Stats.Sent)
	require.NotNil(t, out[0].CreatedBy)
	assert.Equal(t, "Demo", out[0].CreatedBy.Name)

	// deleted segment degrades to the sentinel, empty stats stay zero
	assert.Equal(t, "Deleted Segment", out[1].SegmentName)
	assert.Zero(t, out[1].Stats.Total)
}

func TestLogsResolvesCustomerNames(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{}
	svc, _, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

	logs.inserted = []*model.CommunicationLog{
		{ID: "l1", CampaignID: "camp1", CustomerID: "c1", Message: "m1", Status: model.StatusSent},
		{ID: "l2", CampaignID: "camp1", CustomerID: "ghost", Message: "m2", Status: model.StatusPending},
		{ID: "l3", CampaignID: "other", CustomerID: "c2", Message: "m3", Status: model.StatusSent},
	}

	rows, err := svc.Logs(context.Background(), "camp1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ali", rows[0].CustomerName)
	assert.Equal(t, "Unknown", rows[1].CustomerName)
}

func TestUpdateReceipt(t *testing.T) {
	gen := &fakeGenerator{}
	vend := &fakeVendor{}

	t.Run("applies the receipt", func(t *testing.T) {
		svc, _, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

		err := svc.UpdateReceipt(context.Background(), "l1", model.StatusSent, "Delivered")
		require.NoError(t, err)
		assert.Equal(t, "l1", logs.lastReceipt.logID)
		assert.Equal(t, model.StatusSent, logs.lastReceipt.status)
		assert.Equal(t, "Delivered", logs.lastReceipt.message)
	})

	t.Run("last write wins", func(t *testing.T) {
		svc, _, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)

		require.NoError(t, svc.UpdateReceipt(context.Background(), "l1", model.StatusSent, "Delivered"))
		require.NoError(t, svc.UpdateReceipt(context.Background(), "l1", model.StatusFailed, "Failed to deliver"))
		assert.Equal(t, model.StatusFailed, logs.lastReceipt.status)
	})

	t.Run("unknown log id", func(t *testing.T) {
		svc, _, logs := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)
		logs.receiptMatched = false

		err := svc.UpdateReceipt(context.Background(), "missing", model.StatusSent, "Delivered")
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("empty log id", func(t *testing.T) {
		svc, _, _ := testService(Config{}, snapshotSegment(), testCustomers(), gen, vend)
		err := svc.UpdateReceipt(context.Background(), " ", model.StatusSent, "Delivered")
		assert.True(t, errs.IsValidation(err))
	})
}

func TestSuggestTemplateValidation(t *testing.T) {
	svc, _, _ := testService(Config{}, snapshotSegment(), testCustomers(), &fakeGenerator{}, &fakeVendor{})

	_, err := svc.SuggestTemplate(context.Background(), "", "segment")
	assert.True(t, errs.IsValidation(err))

	tpl, err := svc.SuggestTemplate(context.Background(), "Promo", "big spenders")
	require.NoError(t, err)
	assert.Contains(t, tpl, "Promo")
}
