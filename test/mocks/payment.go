package mocks

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"
)

// On-chain states understood by the agent
const (
	StateFundsLocked     = "FundsLocked"
	StateResultSubmitted = "ResultSubmitted"
	StateWithdrawn       = "Withdrawn"
	StateRefundWithdrawn = "RefundWithdrawn"
)

// Payment is a payment request held by the fake service
type Payment struct {
	ID                      string
	BlockchainIdentifier    string
	IdentifierFromPurchaser string
	InputHash               string
	State                   string
}

// PaymentService is an in-process fake of the payment service REST API
type PaymentService struct {
	Server *httptest.Server

	apiKey      string
	mu          sync.Mutex
	payments    []*Payment
	submissions map[string][]string
}

// NewPaymentService starts a fake payment service accepting apiKey as its token
func NewPaymentService(apiKey string) *PaymentService {
	svc := &PaymentService{
		apiKey:      apiKey,
		submissions: make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/payment/", svc.handlePayment)
	mux.HandleFunc("/api/v1/payment/submit-result", svc.handleSubmitResult)
	svc.Server = httptest.NewServer(svc.authorize(mux))
	return svc
}

// URL returns the base URL to configure the agent with
func (s *PaymentService) URL() string {
	return s.Server.URL + "/api/v1"
}

// Close shuts the fake down
func (s *PaymentService) Close() {
	s.Server.Close()
}

// SetState changes the on-chain state of a payment
func (s *PaymentService) SetState(blockchainIdentifier, state string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.BlockchainIdentifier == blockchainIdentifier {
			p.State = state
			return
		}
	}
}

// Payments returns a copy of every payment created so far
func (s *PaymentService) Payments() []Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Payment, len(s.payments))
	for i, p := range s.payments {
		out[i] = *p
	}
	return out
}

// Submissions returns the result hashes accepted for a payment
func (s *PaymentService) Submissions(blockchainIdentifier string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.submissions[blockchainIdentifier]...)
}

func (s *PaymentService) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("token") != s.apiKey {
			writeJSON(w, http.StatusUnauthorized, map[string]interface{}{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *PaymentService) handlePayment(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/v1/payment/" {
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodPost:
		var body struct {
			InputHash               string `json:"inputHash"`
			IdentifierFromPurchaser string `json:"identifierFromPurchaser"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid body"})
			return
		}

		s.mu.Lock()
		p := &Payment{
			ID:                      fmt.Sprintf("id-%d", len(s.payments)+1),
			BlockchainIdentifier:    fmt.Sprintf("block-%d", len(s.payments)+1),
			IdentifierFromPurchaser: body.IdentifierFromPurchaser,
			InputHash:               body.InputHash,
		}
		s.payments = append(s.payments, p)
		s.mu.Unlock()

		now := time.Now()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data": map[string]interface{}{
				"blockchainIdentifier":      p.BlockchainIdentifier,
				"inputHash":                 p.InputHash,
				"payByTime":                 fmt.Sprint(now.Add(time.Hour).UnixMilli()),
				"submitResultTime":          fmt.Sprint(now.Add(2 * time.Hour).UnixMilli()),
				"unlockTime":                fmt.Sprint(now.Add(3 * time.Hour).UnixMilli()),
				"externalDisputeUnlockTime": fmt.Sprint(now.Add(4 * time.Hour).UnixMilli()),
			},
		})
	case http.MethodGet:
		s.mu.Lock()
		list := make([]map[string]interface{}, 0, len(s.payments))
		for _, p := range s.payments {
			list = append(list, map[string]interface{}{
				"id":                   p.ID,
				"blockchainIdentifier": p.BlockchainIdentifier,
				"onChainState":         p.State,
			})
		}
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"status": "success",
			"data":   map[string]interface{}{"Payments": list},
		})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *PaymentService) handleSubmitResult(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		BlockchainIdentifier string `json:"blockchainIdentifier"`
		SubmitResultHash     string `json:"submitResultHash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid body"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.payments {
		if p.BlockchainIdentifier != body.BlockchainIdentifier {
			continue
		}
		if p.State != StateFundsLocked {
			writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "payment is not in FundsLocked state"})
			return
		}
		p.State = StateResultSubmitted
		s.submissions[p.BlockchainIdentifier] = append(s.submissions[p.BlockchainIdentifier], body.SubmitResultHash)
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success"})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "payment not found"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
