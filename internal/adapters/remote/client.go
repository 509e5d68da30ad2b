// Package remote is a bay.Store that talks to a baymap API server.
package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"baymap/internal/api"
	"baymap/internal/bay"
	"baymap/internal/geom"
)

// Store implements bay.Store over HTTP.
type Store struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
}

var _ bay.Store = (*Store)(nil)

type Option func(*Store)

// WithDial replaces the dialer, e.g. with an in-memory listener in tests.
func WithDial(dial func(addr string) (net.Conn, error)) Option {
	return func(s *Store) { s.client.Dial = dial }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Store {
	s := &Store{
		client: &fasthttp.Client{
			Name:                "baymap",
			MaxConnsPerHost:     8,
			MaxIdleConnDuration: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) ListZones(ctx context.Context) ([]bay.Zone, error) {
	var zones []bay.Zone
	if err := s.do(ctx, fasthttp.MethodGet, "/v1/zones", nil, nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

func (s *Store) ListBaysForZone(ctx context.Context, zoneID *string) ([]bay.Bay, error) {
	var query map[string]string
	if zoneID != nil {
		query = map[string]string{"zone": *zoneID}
	}
	var wire []api.Bay
	if err := s.do(ctx, fasthttp.MethodGet, "/v1/bays", query, nil, &wire); err != nil {
		return nil, err
	}
	bays := make([]bay.Bay, 0, len(wire))
	for _, w := range wire {
		b, err := w.ToBay()
		if err != nil {
			return nil, fmt.Errorf("bay %s: %w", w.ID, err)
		}
		bays = append(bays, b)
	}
	return bays, nil
}

func (s *Store) CreateBay(ctx context.Context, siteID, code string, zoneID *string, g geom.Ring) (string, error) {
	req := api.CreateBayRequest{SiteID: siteID, Code: code, ZoneID: zoneID, Geometry: geom.PolygonGeometry(g)}
	var created api.Created
	if err := s.do(ctx, fasthttp.MethodPost, "/v1/bays", nil, req, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

func (s *Store) UpdateBay(ctx context.Context, id, code string, zoneID *string, g geom.Ring) error {
	req := api.UpdateBayRequest{Code: code, ZoneID: zoneID, Geometry: geom.PolygonGeometry(g)}
	return s.do(ctx, fasthttp.MethodPut, "/v1/bays/"+id, nil, req, nil)
}

func (s *Store) DeleteBay(ctx context.Context, id string) error {
	return s.do(ctx, fasthttp.MethodDelete, "/v1/bays/"+id, nil, nil, nil)
}

// Ping checks that the server answers its health endpoint.
func (s *Store) Ping(ctx context.Context) error {
	return s.do(ctx, fasthttp.MethodGet, "/v1/health", nil, nil, nil)
}

func (s *Store) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(s.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	for k, v := range query {
		req.URI().QueryArgs().Set(k, v)
	}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(b)
	}

	var err error
	if dl, ok := ctx.Deadline(); ok && (s.timeout <= 0 || time.Until(dl) < s.timeout) {
		err = s.client.DoDeadline(req, resp, dl)
	} else {
		err = s.client.DoTimeout(req, resp, s.timeout)
	}
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status >= 300 {
		return decodeError(status, resp.Body())
	}
	if out == nil || status == fasthttp.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(status int, body []byte) error {
	e := &api.APIError{Status: status}
	if err := json.Unmarshal(body, e); err != nil || e.Message == "" {
		e.Code = "http_error"
		e.Message = fasthttp.StatusMessage(status)
	}
	if status == fasthttp.StatusNotFound {
		return fmt.Errorf("%w: %s", bay.ErrNotFound, e.Message)
	}
	return e
}
