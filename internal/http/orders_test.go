package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenocrm/crm-gateway/internal/model"
	echo "github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

type stubOrders struct {
	byID     map[string]*model.Order
	inserted []*model.Order
}

func (s *stubOrders) Insert(ctx context.Context, o *model.Order) error {
	s.inserted = append(s.inserted, o)
	if s.byID == nil {
		s.byID = map[string]*model.Order{}
	}
	s.byID[o.ID] = o
	return nil
}
func (s *stubOrders) FindAll(ctx context.Context) ([]model.Order, error) { return nil, nil }
func (s *stubOrders) FindByID(ctx context.Context, id string) (*model.Order, error) {
	return s.byID[id], nil
}
func (s *stubOrders) Delete(ctx context.Context, id string) (*model.Order, error) {
	o := s.byID[id]
	delete(s.byID, id)
	return o, nil
}
func (s *stubOrders) UpsertByOrderID(ctx context.Context, o *model.Order) (bool, error) {
	return false, nil
}

type stubCustomers struct {
	spend map[string]float64
}

func (s *stubCustomers) Insert(ctx context.Context, c *model.Customer) error { return nil }
func (s *stubCustomers) FindAll(ctx context.Context) ([]model.Customer, error) {
	return nil, nil
}
func (s *stubCustomers) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	return nil, nil
}
func (s *stubCustomers) FindByIDs(ctx context.Context, ids []string) ([]model.Customer, error) {
	return nil, nil
}
func (s *stubCustomers) Delete(ctx context.Context, id string) (*model.Customer, error) {
	return nil, nil
}
func (s *stubCustomers) CountMatching(ctx context.Context, filter bson.M) (int64, error) {
	return 0, nil
}
func (s *stubCustomers) IDsMatching(ctx context.Context, filter bson.M) ([]string, error) {
	return nil, nil
}
func (s *stubCustomers) IncTotalSpend(ctx context.Context, id string, delta float64) error {
	if s.spend == nil {
		s.spend = map[string]float64{}
	}
	s.spend[id] += delta
	return nil
}
func (s *stubCustomers) UpsertByEmail(ctx context.Context, c *model.Customer) error { return nil }

func TestOrderCreateDeleteRoundTripsTotalSpend(t *testing.T) {
	orders := &stubOrders{}
	customers := &stubCustomers{}

	// create: order stored, totalSpend bumped
	rec := doJSON(t, createOrderHandler(orders, customers, nil),
		http.MethodPost, "/orders/create",
		`{"customerId":"c1","orderId":"ord-1","amount":2500,"items":["a","b"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, orders.inserted, 1)
	assert.Equal(t, 2500.0, customers.spend["c1"])

	var created struct {
		Order model.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.Order.ID)

	// delete: totalSpend returns to its prior value
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/orders/delete/"+created.Order.ID, nil)
	drec := httptest.NewRecorder()
	c := e.NewContext(req, drec)
	c.SetParamNames("id")
	c.SetParamValues(created.Order.ID)
	require.NoError(t, deleteOrderHandler(orders, customers)(c))

	assert.Equal(t, http.StatusOK, drec.Code)
	assert.Equal(t, 0.0, customers.spend["c1"])
}

func TestCreateOrderValidation(t *testing.T) {
	rec := doJSON(t, createOrderHandler(&stubOrders{}, &stubCustomers{}, nil),
		http.MethodPost, "/orders/create", `{"orderId":"ord-1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteOrderNotFound(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/orders/delete/ghost", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("ghost")
	require.NoError(t, deleteOrderHandler(&stubOrders{}, &stubCustomers{})(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
