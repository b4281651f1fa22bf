// Package esimaccess is an HTTP client for the upstream eSIM wholesaler.
package esimaccess

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/reseller_portal/internal/models"
)

// Client is a minimal HTTP client for the supplier open API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	accessCode string
	debug      bool
}

// NewClient constructs a new supplier client.
func NewClient(baseURL, accessCode string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accessCode: accessCode,
		debug:      os.Getenv("ENV") == "development",
	}
}

// ListPackages returns the whole supplier catalog.
func (c *Client) ListPackages(ctx context.Context) ([]Package, error) {
	var env Envelope[PackageList]
	if err := c.doRequest(ctx, "/package/list", PackageListRequest{}, &env); err != nil {
		return nil, err
	}
	if err := check(&env); err != nil {
		return nil, err
	}
	return env.Obj.PackageList, nil
}

// ListPlans returns the supplier catalog mapped to plans.
func (c *Client) ListPlans(ctx context.Context) ([]models.Plan, error) {
	pkgs, err := c.ListPackages(ctx)
	if err != nil {
		return nil, err
	}
	plans := make([]models.Plan, 0, len(pkgs))
	for i := range pkgs {
		plans = append(plans, pkgs[i].ToPlan())
	}
	return plans, nil
}

// Order places an order for count profiles of packageCode. transactionID
// makes the call idempotent on the supplier side.
func (c *Client) Order(ctx context.Context, transactionID, packageCode string, count int) (*OrderResult, error) {
	req := OrderRequest{
		TransactionID:   transactionID,
		PackageInfoList: []PackageInfo{{PackageCode: packageCode, Count: count}},
	}
	var env Envelope[OrderResult]
	if err := c.doRequest(ctx, "/esim/order", req, &env); err != nil {
		return nil, err
	}
	if err := check(&env); err != nil {
		return nil, err
	}
	return &env.Obj, nil
}

// QueryProfiles lists the profiles allocated to a supplier order. An empty
// list means allocation is still in progress.
func (c *Client) QueryProfiles(ctx context.Context, orderNo string) ([]Profile, error) {
	req := QueryRequest{OrderNo: orderNo, Pager: Pager{PageNum: 1, PageSize: 500}}
	var env Envelope[ProfileList]
	if err := c.doRequest(ctx, "/esim/query", req, &env); err != nil {
		return nil, err
	}
	if err := check(&env); err != nil {
		return nil, err
	}
	return env.Obj.ESIMList, nil
}

// Resend re-delivers the installation details of a profile.
func (c *Client) Resend(ctx context.Context, iccid string) error {
	return c.profileAction(ctx, "/esim/resend", iccid)
}

// Suspend pauses a profile.
func (c *Client) Suspend(ctx context.Context, iccid string) error {
	return c.profileAction(ctx, "/esim/suspend", iccid)
}

// Cancel cancels an unused profile.
func (c *Client) Cancel(ctx context.Context, iccid string) error {
	return c.profileAction(ctx, "/esim/cancel", iccid)
}

// Topup adds packageCode to an existing profile.
func (c *Client) Topup(ctx context.Context, iccid, packageCode, transactionID string) error {
	req := TopupRequest{ICCID: iccid, PackageCode: packageCode, TransactionID: transactionID}
	var env Envelope[json.RawMessage]
	if err := c.doRequest(ctx, "/esim/topup", req, &env); err != nil {
		return err
	}
	return check(&env)
}

func (c *Client) profileAction(ctx context.Context, endpoint, iccid string) error {
	var env Envelope[json.RawMessage]
	if err := c.doRequest(ctx, endpoint, ProfileRequest{ICCID: iccid}, &env); err != nil {
		return err
	}
	return check(&env)
}

func check[T any](env *Envelope[T]) error {
	if env.Success {
		return nil
	}
	return &Error{Code: env.ErrorCode, Message: env.ErrorMsg}
}

// doRequest performs the HTTP POST with JSON payloads and decodes the JSON
// response into result.
func (c *Client) doRequest(ctx context.Context, endpoint string, body any, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", c.baseURL+endpoint).
			RawJSON("request", payload).
			Msg("[ESIMACCESS] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("RT-AccessCode", c.accessCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Bytes("response", respBody).
			Msg("[ESIMACCESS] Incoming response")
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("supplier returned status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
