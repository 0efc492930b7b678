package opencellid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/cell-telemetry-etl/internal/domain"
	"github.com/couchcryptid/cell-telemetry-etl/internal/observability"
)

// DefaultBaseURL is the public OpenCelliD API endpoint.
const DefaultBaseURL = "https://opencellid.org"

// notFoundCode is the API error code for an unknown cell.
const notFoundCode = 1

// Client implements domain.CellLocator using the OpenCelliD cell lookup API.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an OpenCelliD client.
func NewClient(token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: DefaultBaseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// Locate looks up the tower position for a normalized cell. An unknown cell
// yields an empty location and no error.
func (c *Client) Locate(ctx context.Context, tech domain.Technology, cell domain.CanonicalCellRecord) (domain.CellLocation, error) {
	params := url.Values{
		"key":    {c.token},
		"mcc":    {cell.MobileCountryCode},
		"mnc":    {cell.MobileNetworkCode},
		"lac":    {strconv.FormatUint(uint64(cell.LocationAreaCode), 10)},
		"cellid": {strconv.FormatUint(cell.ID, 10)},
		"format": {"json"},
	}
	if radio := radioFor(tech); radio != "" {
		params.Set("radio", radio)
	}

	start := time.Now()
	loc, err := c.doRequest(ctx, c.baseURL+"/cell/get?"+params.Encode())
	c.metrics.LocateAPIDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		c.metrics.LocateRequests.WithLabelValues("error").Inc()
	case loc.Empty():
		c.metrics.LocateRequests.WithLabelValues("empty").Inc()
	default:
		c.metrics.LocateRequests.WithLabelValues("success").Inc()
	}
	return loc, err
}

func (c *Client) doRequest(ctx context.Context, fullURL string) (domain.CellLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return domain.CellLocation{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.CellLocation{}, fmt.Errorf("cell lookup request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return domain.CellLocation{}, fmt.Errorf("read response: %w", err)
	}

	var cellResp response
	decodeErr := json.Unmarshal(body, &cellResp)

	// Unknown cells are reported as an API error, sometimes with a 404.
	if decodeErr == nil && cellResp.notFound() {
		c.logger.Debug("cell not found in opencellid", "status", resp.StatusCode)
		return domain.CellLocation{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return domain.CellLocation{}, fmt.Errorf("opencellid API error: status %d: %s", resp.StatusCode, body)
	}
	if decodeErr != nil {
		return domain.CellLocation{}, fmt.Errorf("decode response: %w", decodeErr)
	}
	if cellResp.Error != "" {
		return domain.CellLocation{}, errors.New("opencellid API error: " + cellResp.Error)
	}

	return domain.CellLocation{
		Lat:       cellResp.Lat,
		Lon:       cellResp.Lon,
		AccuracyM: cellResp.Range,
		Samples:   cellResp.Samples,
	}, nil
}

// radioFor maps a technology to the API's radio parameter. WCDMA cells are
// filed as UMTS.
func radioFor(tech domain.Technology) string {
	switch tech {
	case domain.TechnologyLTE:
		return "LTE"
	case domain.TechnologyGSM:
		return "GSM"
	case domain.TechnologyWCDMA:
		return "UMTS"
	default:
		return ""
	}
}

// OpenCelliD API response types.

type response struct {
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Range   int     `json:"range"`
	Samples int     `json:"samples"`
	Radio   string  `json:"radio"`
	Error   string  `json:"error"`
	Code    int     `json:"code"`
}

func (r response) notFound() bool {
	return r.Code == notFoundCode || strings.EqualFold(r.Error, "cell not found")
}
