package tsme

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

	// equipmentCodeTR is the only meter class the telemetry endpoint serves.
	equipmentCodeTR = "TR"
	meteringMode    = "daily"
	messageOK       = "OK"
)

// Client is an authenticated client of a TSME customer portal.
//
// The session is established lazily by the first data call and kept for the lifetime of the
// client: there is no re-login when it expires. A Client must not be used concurrently before
// its first call has completed.
type Client struct {
	endpoints Endpoints
	email     string
	password  string

	http     *resty.Client
	loggedIn bool
	now      func() time.Time
}

func NewClient(endpoints Endpoints, email, password string) (*Client, error) {
	if email == "" || password == "" {
		return nil, &ConfigError{Err: ErrMissingCredentials}
	}

	baseURL, err := url.Parse(endpoints.BaseURL)
	if err != nil || baseURL.Hostname() == "" {
		return nil, &ConfigError{Err: fmt.Errorf("invalid base url %q", endpoints.BaseURL)}
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("failed to create cookie jar: %w", err)}
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(endpoints.BaseURL)
	httpClient.SetCookieJar(jar)
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(baseURL.Hostname()))
	httpClient.SetHeader("User-Agent", UserAgent)
	httpClient.SetLogger(zap.S())
	httpClient.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		zap.L().Debug("HTTP response",
			zap.String("method", res.Request.Method),
			zap.String("url", res.Request.URL),
			zap.String("status", res.Status()))
		return nil
	})

	return &Client{
		endpoints: endpoints,
		email:     email,
		password:  password,
		http:      httpClient,
		now:       time.Now,
	}, nil
}

func (c *Client) IsLoggedIn() bool {
	return c.loggedIn
}

func (c *Client) ensureSession(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}
	return c.Login(ctx)
}

// ListMeterIDs returns the PDS identifiers of every TR meter of the account, in server order.
// An account without such meters yields an empty slice and no error.
func (c *Client) ListMeterIDs(ctx context.Context) ([]string, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	zap.L().Info("getting meter ids", zap.String("email", c.email))

	list, err := getAPI[MetersList](ctx, c, c.endpoints.MetersList, nil, ErrMeterListing)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	if list.NbMeters < 1 {
		return ids, nil
	}

	for _, customer := range list.ClientCompteursPro {
		if customer.NombreCompteurTr == 0 {
			continue
		}

		for _, meter := range customer.CompteursPro {
			if meter.CodeEquipement == equipmentCodeTR {
				ids = append(ids, meter.IDPDS)
			}
		}
	}

	zap.L().Info("extracted meter ids", zap.Int("count", len(ids)))
	return ids, nil
}

// GetMetering returns the daily series of meterID over [from, to]. Both bounds are optional and
// are normalized with NormalizeRange before the request.
func (c *Client) GetMetering(ctx context.Context, meterID string, from, to *time.Time) ([]MeteringRecord, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish session: %w", err)
	}

	rangeFrom, rangeTo := NormalizeRange(c.now(), from, to)

	zap.L().Info("getting metering",
		zap.String("meter_id", meterID),
		zap.String("from", rangeFrom.Format(DateLayout)),
		zap.String("to", rangeTo.Format(DateLayout)))

	query := map[string]string{
		"id_PDS":     meterID,
		"mode":       meteringMode,
		"start_date": rangeFrom.Format(DateLayout),
		"end_date":   rangeTo.Format(DateLayout),
	}

	telemetry, err := getAPI[Telemetry](ctx, c, c.endpoints.Metering, query, ErrMeteringExtraction)
	if err != nil {
		return nil, err
	}

	records := make([]MeteringRecord, 0, len(telemetry.Measures))
	for _, measure := range telemetry.Measures {
		date, err := time.ParseInLocation(MeasureDateLayout, measure.Date, location)
		if err != nil {
			return nil, &APIError{
				Kind:       ErrMeteringExtraction,
				StatusCode: http.StatusOK,
				Message:    messageOK,
				Cause:      fmt.Errorf("failed to parse measure date: %w", err),
			}
		}

		records = append(records, MeteringRecord{
			Date:   date,
			Index:  measure.Index,
			Volume: measure.Volume,
		})
	}

	zap.L().Info("extracted metering", zap.String("meter_id", meterID), zap.Int("count", len(records)))
	return records, nil
}

// getAPI issues a GET against a public-api endpoint and unwraps its envelope. Any failure is
// reported as an APIError of the given kind.
func getAPI[T any](ctx context.Context, c *Client, path string, query map[string]string, kind error) (T, error) {
	var zero T

	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return zero, &APIError{Kind: kind, Cause: fmt.Errorf("failed to do HTTP request: %w", err)}
	}

	zap.L().Debug("HTTP response body", zap.String("body", res.String()))

	var env envelope[T]
	if err := json.Unmarshal(res.Body(), &env); err != nil {
		return zero, &APIError{
			Kind:       kind,
			StatusCode: res.StatusCode(),
			Cause:      fmt.Errorf("failed to unmarshal response: %w", err),
		}
	}

	if !checkAPIResponse(res.StatusCode(), env.Message) {
		return zero, &APIError{Kind: kind, StatusCode: res.StatusCode(), Message: env.Message}
	}

	return env.Content, nil
}

// checkAPIResponse reports whether a public-api call succeeded. The envelope code is not
// meaningful and is ignored.
func checkAPIResponse(statusCode int, message string) bool {
	return isSuccess(statusCode) && message == messageOK
}

func isSuccess(statusCode int) bool {
	return statusCode == http.StatusOK
}
