package geocode

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/comps-cli/internal/resilience"
)

// DefaultVWorldURL is the VWorld address search endpoint.
const DefaultVWorldURL = "https://api.vworld.kr/req/address"

// VWorldConfig configures a VWorldProvider.
type VWorldConfig struct {
	BaseURL string
	// Keys are tried in order; after DailyKeyQuota calls the provider
	// advances to the next key. At least one key is required.
	Keys          []string
	DailyKeyQuota int
	QPS           float64
	Timeout       time.Duration
	Retry         resilience.RetryConfig
}

// VWorldProvider geocodes via the VWorld address search API.
type VWorldProvider struct {
	baseURL    string
	keys       []string
	keyQuota   int64
	calls      atomic.Int64
	limiter    *rate.Limiter
	httpClient *http.Client
	retry      resilience.RetryConfig
}

// NewVWorld creates a VWorldProvider from the given config.
func NewVWorld(cfg VWorldConfig) (*VWorldProvider, error) {
	if len(cfg.Keys) == 0 {
		return nil, eris.New("vworld: no api keys configured")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultVWorldURL
	}
	quota := cfg.DailyKeyQuota
	if quota <= 0 {
		quota = 20000
	}
	qps := cfg.QPS
	if qps <= 0 {
		qps = 10
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	retry := cfg.Retry
	if retry.OnRetry == nil {
		retry.OnRetry = resilience.RetryLogger("vworld", "getcoord")
	}
	return &VWorldProvider{
		baseURL:    baseURL,
		keys:       cfg.Keys,
		keyQuota:   int64(quota),
		limiter:    rate.NewLimiter(rate.Limit(qps), 1),
		httpClient: &http.Client{Timeout: timeout},
		retry:      retry,
	}, nil
}

// Name implements Provider.
func (p *VWorldProvider) Name() string { return "vworld" }

// currentKey picks the API key for the next call. Each key serves
// keyQuota calls before the provider advances to the next one; the
// last key absorbs any overflow.
func (p *VWorldProvider) currentKey() string {
	idx := p.calls.Load() / p.keyQuota
	if idx >= int64(len(p.keys)) {
		idx = int64(len(p.keys)) - 1
	}
	return p.keys[idx]
}

// vworldResponse is the JSON envelope returned by the address API.
// result is a mapping for single matches but a list when the API
// returns multiple candidates.
type vworldResponse struct {
	Response struct {
		Status string          `json:"status"`
		Result json.RawMessage `json:"result"`
		Refined struct {
			Text string `json:"text"`
		} `json:"refined"`
	} `json:"response"`
}

type vworldResult struct {
	Point struct {
		X string `json:"x"`
		Y string `json:"y"`
	} `json:"point"`
}

// Geocode implements Provider. Road addresses are tried first, then
// parcel (지번) addresses, since pool files mix both forms.
func (p *VWorldProvider) Geocode(ctx context.Context, address string) (*Result, error) {
	for _, addrType := range []string{"ROAD", "PARCEL"} {
		r, err := resilience.DoVal(ctx, p.retry, func(ctx context.Context) (*Result, error) {
			return p.geocodeOnce(ctx, address, addrType)
		})
		if err != nil {
			return nil, err
		}
		if r.Matched {
			return r, nil
		}
	}
	return &Result{Matched: false, Source: "vworld"}, nil
}

func (p *VWorldProvider) geocodeOnce(ctx context.Context, address, addrType string) (*Result, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "vworld: rate limit")
	}

	params := url.Values{
		"service": {"address"},
		"request": {"getCoord"},
		"crs":     {"epsg:4326"},
		"format":  {"json"},
		"type":    {addrType},
		"address": {address},
		"key":     {p.currentKey()},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, eris.Wrap(err, "vworld: build request")
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "vworld: request")
	}
	defer resp.Body.Close() //nolint:errcheck

	p.calls.Add(1)

	if resp.StatusCode != http.StatusOK {
		err := eris.Errorf("vworld: returned status %d", resp.StatusCode)
		if resilience.IsTransientHTTPStatus(resp.StatusCode) {
			return nil, resilience.NewTransientError(err, resp.StatusCode)
		}
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "vworld: read body")
	}

	var vr vworldResponse
	if err := json.Unmarshal(body, &vr); err != nil {
		return nil, eris.Wrap(err, "vworld: parse response")
	}

	if vr.Response.Status != "OK" {
		zap.L().Debug("vworld: no match",
			zap.String("address", address),
			zap.String("type", addrType),
			zap.String("status", vr.Response.Status),
		)
		return &Result{Matched: false, Source: "vworld"}, nil
	}

	lat, lon, ok := parseVWorldPoint(vr.Response.Result)
	if !ok {
		return &Result{Matched: false, Source: "vworld"}, nil
	}

	return &Result{
		Latitude:  lat,
		Longitude: lon,
		Matched:   true,
		Source:    "vworld",
		Refined:   vr.Response.Refined.Text,
	}, nil
}

// parseVWorldPoint extracts lat/lon from the result field, which may be
// a single object or a list of candidates (first one wins).
func parseVWorldPoint(raw json.RawMessage) (lat, lon float64, ok bool) {
	if len(raw) == 0 {
		return 0, 0, false
	}

	var single vworldResult
	if err := json.Unmarshal(raw, &single); err == nil && single.Point.X != "" {
		return pointCoords(single)
	}

	var many []vworldResult
	if err := json.Unmarshal(raw, &many); err == nil && len(many) > 0 {
		return pointCoords(many[0])
	}
	return 0, 0, false
}

func pointCoords(r vworldResult) (lat, lon float64, ok bool) {
	x, errX := strconv.ParseFloat(r.Point.X, 64)
	y, errY := strconv.ParseFloat(r.Point.Y, 64)
	if errX != nil || errY != nil {
		return 0, 0, false
	}
	return y, x, true
}
