package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Provider error codes treated as already settled.
const (
	codeAlreadyRefunded  = "ALREADY_REFUNDED"
	codeAlreadyCancelled = "ALREADY_CANCELED_PAYMENT"
)

type HTTPClientConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

// httpClient talks to the provider's refund endpoint:
// POST {base}/v1/payments/{paymentKey}/cancel with secret-key Basic auth.
type httpClient struct {
	cfg  HTTPClientConfig
	http *http.Client
	log  *zap.Logger
}

func NewHTTPClient(cfg HTTPClientConfig, log *zap.Logger) Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &httpClient{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type refundBody struct {
	CancelReason string `json:"cancelReason"`
	CancelAmount int64  `json:"cancelAmount"`
}

type refundResponse struct {
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

func (c *httpClient) Refund(ctx context.Context, req RefundRequest) (RefundResult, error) {
	body, err := json.Marshal(refundBody{CancelReason: req.Reason, CancelAmount: req.Amount})
	if err != nil {
		return RefundResult{}, err
	}

	url := fmt.Sprintf("%s/v1/payments/%s/cancel", c.cfg.BaseURL, req.PaymentKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return RefundResult{}, err
	}
	httpReq.SetBasicAuth(c.cfg.SecretKey, "")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		// Таймаут и сетевые сбои — retryable: исход на стороне провайдера
		// неизвестен, идемпотентность обеспечивает paymentKey.
		c.log.Warn("payment gateway request failed", zap.String("payment_key", req.PaymentKey), zap.Error(err))
		return RefundResult{
			ErrorCode:    "NETWORK_ERROR",
			ErrorMessage: err.Error(),
			Retryable:    true,
		}, nil
	}
	defer resp.Body.Close()

	var parsed refundResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return RefundResult{
			ErrorCode:    "MALFORMED_RESPONSE",
			ErrorMessage: err.Error(),
			Retryable:    true,
		}, nil
	}

	return classify(resp.StatusCode, parsed), nil
}

func classify(status int, resp refundResponse) RefundResult {
	switch {
	case status >= 200 && status < 300:
		return RefundResult{Success: true, PgTransactionID: resp.TransactionID}
	case resp.Code == codeAlreadyRefunded || resp.Code == codeAlreadyCancelled:
		// Провайдер уже провёл возврат — идемпотентный успех.
		return RefundResult{Success: true, PgTransactionID: resp.TransactionID}
	case status >= 500 || status == http.StatusTooManyRequests:
		return RefundResult{
			ErrorCode:    resp.Code,
			ErrorMessage: resp.Message,
			Retryable:    true,
		}
	case status >= 400:
		// Ошибки валидации (сумма больше платежа и т.п.) — повторять нет смысла.
		return RefundResult{
			ErrorCode:    resp.Code,
			ErrorMessage: resp.Message,
			Retryable:    false,
		}
	default:
		return RefundResult{
			ErrorCode:    "UNKNOWN",
			ErrorMessage: resp.Message,
			Retryable:    true,
		}
	}
}
