package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testAPIKey = "test-api-key"

// fakePaymentService mimics the parts of the payment service REST API the client uses
type fakePaymentService struct {
	mu         sync.Mutex
	states     map[string]string
	created    []map[string]interface{}
	submits    []map[string]interface{}
	failList   int32 // number of listing calls to fail with 503
	lists      int32
	rejectPOST atomic.Bool
}

func newFakePaymentService() *fakePaymentService {
	return &fakePaymentService{states: make(map[string]string)}
}

func (f *fakePaymentService) setState(id, state string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[id] = state
}

func (f *fakePaymentService) createdBodies() []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]interface{}(nil), f.created...)
}

func (f *fakePaymentService) submitted() []map[string]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]interface{}(nil), f.submits...)
}

func (f *fakePaymentService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("token") != testAPIKey {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status":"error","error":"Unauthorized"}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == paymentPath:
		f.handleCreate(w, r)
	case r.Method == http.MethodGet && r.URL.Path == paymentPath:
		f.handleList(w)
	case r.Method == http.MethodPost && r.URL.Path == submitResultPath:
		f.handleSubmit(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakePaymentService) handleCreate(w http.ResponseWriter, r *http.Request) {
	if f.rejectPOST.Load() {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"error","error":"Invalid agentIdentifier"}`)
		return
	}
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.created = append(f.created, body)
	id := fmt.Sprintf("block-%d", len(f.created))
	f.states[id] = ""
	f.mu.Unlock()

	resp := map[string]interface{}{
		"status": "success",
		"data": map[string]interface{}{
			"blockchainIdentifier":      id,
			"payByTime":                 body["payByTime"],
			"submitResultTime":          body["submitResultTime"],
			"unlockTime":                1717171717000,
			"externalDisputeUnlockTime": "1717181717000",
			"inputHash":                 body["inputHash"],
		},
	}
	_ = json.NewEncoder(w).Encode(resp)
}

func (f *fakePaymentService) handleList(w http.ResponseWriter) {
	if atomic.AddInt32(&f.lists, 1) <= atomic.LoadInt32(&f.failList) {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	f.mu.Lock()
	payments := make([]map[string]interface{}, 0, len(f.states))
	for id, state := range f.states {
		p := map[string]interface{}{"id": "row-" + id, "blockchainIdentifier": id}
		if state == "" {
			p["onChainState"] = nil
		} else {
			p["onChainState"] = state
		}
		payments = append(payments, p)
	}
	f.mu.Unlock()

	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"data":   map[string]interface{}{"Payments": payments},
	})
}

func (f *fakePaymentService) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	id, _ := body["blockchainIdentifier"].(string)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, body)
	if f.states[id] != stateFundsLocked {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"status":"error","error":"Payment not in FundsLocked state"}`)
		return
	}
	f.states[id] = stateResultSubmitted
	_, _ = io.WriteString(w, `{"status":"success","data":{}}`)
}

type ClientTestSuite struct {
	suite.Suite
	fake   *fakePaymentService
	server *httptest.Server
	client *Client
	ctx    context.Context
}

func TestClientTestSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}

func (s *ClientTestSuite) SetupTest() {
	s.fake = newFakePaymentService()
	s.server = httptest.NewServer(s.fake)
	s.ctx = context.Background()

	client, err := NewClient(Options{
		BaseURL:         s.server.URL + "/",
		APIKey:          testAPIKey,
		AgentIdentifier: "agent-123",
		Network:         "Preprod",
		Timeout:         2 * time.Second,
		Retries:         3,
		Backoff:         time.Millisecond,
		MaxBackoff:      2 * time.Millisecond,
	})
	s.Require().NoError(err)
	s.client = client
}

func (s *ClientTestSuite) TearDownTest() {
	s.server.Close()
}

func (s *ClientTestSuite) createPayment() *Request {
	req, err := s.client.CreatePayment(s.ctx, CreateRequest{
		JobID:                   "job-1",
		IdentifierFromPurchaser: "buyer_456",
		Input:                   map[string]interface{}{"text": "Masumi Network rocks!"},
		Amounts:                 []Amount{{Amount: "10000000", Unit: "lovelace"}},
	})
	s.Require().NoError(err)
	return req
}

func (s *ClientTestSuite) TestCreatePayment() {
	req := s.createPayment()

	s.Equal("block-1", req.BlockchainIdentifier)
	s.Equal("1717171717000", req.UnlockTime)
	s.Equal("1717181717000", req.ExternalDisputeUnlockTime)
	s.NotEmpty(req.PayByTime)
	s.NotEmpty(req.SubmitResultTime)

	expectedHash, err := InputHash("buyer_456", map[string]interface{}{"text": "Masumi Network rocks!"})
	s.Require().NoError(err)
	s.Equal(expectedHash, req.InputHash)

	created := s.fake.createdBodies()
	s.Require().Len(created, 1)
	sent := created[0]
	s.Equal("agent-123", sent["agentIdentifier"])
	s.Equal("Preprod", sent["network"])
	s.Equal("buyer_456", sent["identifierFromPurchaser"])
	s.Equal(PaymentTypeCardano, sent["paymentType"])
	s.Equal(expectedHash, sent["inputHash"])
	s.NotNil(sent["RequestedFunds"])
}

func (s *ClientTestSuite) TestCreatePayment_Rejected() {
	s.fake.rejectPOST.Store(true)
	_, err := s.client.CreatePayment(s.ctx, CreateRequest{JobID: "job-1", IdentifierFromPurchaser: "buyer"})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrGatewayRejected))
	s.False(errors.Is(err, ErrGatewayUnreachable))

	var gwErr *GatewayError
	s.Require().True(errors.As(err, &gwErr))
	s.Equal(http.StatusBadRequest, gwErr.StatusCode)
	s.Contains(gwErr.Message, "Invalid agentIdentifier")
}

func (s *ClientTestSuite) TestCreatePayment_BadAPIKey() {
	s.client.opts.APIKey = "wrong"
	_, err := s.client.CreatePayment(s.ctx, CreateRequest{JobID: "job-1"})
	s.True(errors.Is(err, ErrGatewayRejected))
}

func (s *ClientTestSuite) TestCreatePayment_Unreachable() {
	s.server.Close()
	_, err := s.client.CreatePayment(s.ctx, CreateRequest{JobID: "job-1"})
	s.Require().Error(err)
	s.True(errors.Is(err, ErrGatewayUnreachable))
}

func (s *ClientTestSuite) TestCheckStatus_MapsStates() {
	req := s.createPayment()
	id := req.BlockchainIdentifier

	s.Equal(StatusPending, s.client.CheckStatus(s.ctx, id))

	tests := []struct {
		state string
		want  Status
	}{
		{state: "FundsLocked", want: StatusCompleted},
		{state: "ResultSubmitted", want: StatusCompleted},
		{state: "Withdrawn", want: StatusCompleted},
		{state: "RefundWithdrawn", want: StatusFailed},
		{state: "DisputedWithdrawn", want: StatusFailed},
		{state: "FundsOrDatumInvalid", want: StatusFailed},
		{state: "RefundRequested", want: StatusFailed},
		{state: "Disputed", want: StatusPending},
	}
	for _, tt := range tests {
		s.fake.setState(id, tt.state)
		s.Equal(tt.want, s.client.CheckStatus(s.ctx, id), tt.state)
	}
}

func (s *ClientTestSuite) TestCheckStatus_UnknownPaymentIsPending() {
	s.Equal(StatusPending, s.client.CheckStatus(s.ctx, "does-not-exist"))
}

func (s *ClientTestSuite) TestCheckStatus_EmptyIDIsPending() {
	// A listed payment without an identifier must not match a job that has none yet
	s.fake.setState("", stateFundsLocked)

	s.Equal(StatusPending, s.client.CheckStatus(s.ctx, ""))
	s.Zero(atomic.LoadInt32(&s.fake.lists))
}

func (s *ClientTestSuite) TestCheckStatus_RetriesTransientFailures() {
	req := s.createPayment()
	s.fake.setState(req.BlockchainIdentifier, stateFundsLocked)
	atomic.StoreInt32(&s.fake.failList, 2)

	s.Equal(StatusCompleted, s.client.CheckStatus(s.ctx, req.BlockchainIdentifier))
	s.Equal(int32(3), atomic.LoadInt32(&s.fake.lists))
}

func (s *ClientTestSuite) TestCheckStatus_GivesUpAfterRetries() {
	req := s.createPayment()
	s.fake.setState(req.BlockchainIdentifier, stateFundsLocked)
	atomic.StoreInt32(&s.fake.failList, 100)

	s.Equal(StatusPending, s.client.CheckStatus(s.ctx, req.BlockchainIdentifier))
	s.Equal(int32(3), atomic.LoadInt32(&s.fake.lists))
}

func (s *ClientTestSuite) TestCheckStatus_UnreachableIsPending() {
	s.server.Close()
	s.Equal(StatusPending, s.client.CheckStatus(s.ctx, "block-1"))
}

func (s *ClientTestSuite) TestMarkComplete_Idempotent() {
	req := s.createPayment()
	id := req.BlockchainIdentifier
	s.fake.setState(id, stateFundsLocked)

	hash := ResultHash("buyer_456", "Reversed: !skcor krowteN imusaM")
	s.Require().NoError(s.client.MarkComplete(s.ctx, id, hash))
	s.Require().NoError(s.client.MarkComplete(s.ctx, id, hash))

	submits := s.fake.submitted()
	s.Require().Len(submits, 2)
	s.Equal(hash, submits[0]["submitResultHash"])
	s.Equal("Preprod", submits[0]["network"])
}

func (s *ClientTestSuite) TestMarkComplete_RejectedWhenNotLocked() {
	req := s.createPayment()
	err := s.client.MarkComplete(s.ctx, req.BlockchainIdentifier, "hash")
	s.Require().Error(err)
	s.True(errors.Is(err, ErrGatewayRejected))
}

func TestNewClient_InvalidURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "not a url", "http://"} {
		_, err := NewClient(Options{BaseURL: raw})
		assert.Error(t, err, raw)
	}

	c, err := NewClient(Options{BaseURL: "https://payment.example.com/api/v1/"})
	require.NoError(t, err)
	assert.Equal(t, "https://payment.example.com/api/v1", c.opts.BaseURL)
	assert.Equal(t, DefaultRetries, c.opts.Retries)
	assert.Equal(t, DefaultTimeout, c.opts.Timeout)
}

func TestHashes(t *testing.T) {
	a, err := InputHash("buyer", map[string]interface{}{"b": 1, "a": "x"})
	require.NoError(t, err)
	b, err := InputHash("buyer", map[string]interface{}{"a": "x", "b": 1})
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := InputHash("other", map[string]interface{}{"a": "x", "b": 1})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	// sha256("buyer;{}")
	empty, err := InputHash("buyer", nil)
	require.NoError(t, err)
	assert.Equal(t, ResultHash("buyer", "{}"), empty)
}

func TestInputHash_KeepsHTMLCharacters(t *testing.T) {
	got, err := InputHash("buyer", map[string]interface{}{"text": "a<b&c>"})
	require.NoError(t, err)
	assert.Equal(t, ResultHash("buyer", `{"text":"a<b&c>"}`), got)
}

func TestGatewayError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("start job: %w", unreachable("create payment", cause))

	assert.True(t, errors.Is(err, ErrGatewayUnreachable))
	assert.True(t, errors.Is(err, cause))
	assert.False(t, errors.Is(err, ErrGatewayRejected))
	assert.Contains(t, err.Error(), "connection refused")

	err = rejected("submit result", http.StatusConflict, "already submitted")
	assert.Equal(t, "submit result: payment gateway rejected request (status 409): already submitted", err.Error())
}
