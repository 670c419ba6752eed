// Package enrich supplies transfer quotes for gap filling, backed by an
// external search API with an in-process cache in front of it.
package enrich

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"tripweaver/internal/domain"
	"tripweaver/internal/strutil"
)

// Provider mirrors the search contract gap filling consumes. A nil
// segment with a nil error means nothing to offer.
type Provider interface {
	Search(ctx context.Context, gap domain.Gap) (*domain.Segment, error)
}

const (
	// DefaultTimeout bounds one upstream call end to end.
	DefaultTimeout = 10 * time.Second
	// DefaultRateLimit and DefaultBurst throttle outbound searches so a
	// large fill run cannot hammer the upstream.
	DefaultRateLimit = rate.Limit(5)
	DefaultBurst     = 1
)

type HTTPOption func(*HTTPProvider)

func WithHTTPClient(client *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = client }
}

func WithRateLimit(limit rate.Limit, burst int) HTTPOption {
	return func(p *HTTPProvider) { p.limiter = rate.NewLimiter(limit, burst) }
}

// HTTPProvider searches a transfer quote API. The request carries the
// route and window; absolute times are the caller's business, so quotes
// come back as durations.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

func NewHTTPProvider(baseURL, apiKey string, opts ...HTTPOption) *HTTPProvider {
	provider := &HTTPProvider{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(DefaultRateLimit, DefaultBurst),
	}
	for _, opt := range opts {
		opt(provider)
	}
	return provider
}

type searchRequest struct {
	From           *domain.Location         `json:"from"`
	To             *domain.Location         `json:"to"`
	Classification domain.GapClassification `json:"classification"`
	WindowMinutes  int                      `json:"windowMinutes"`
}

type transferQuote struct {
	Mode            string           `json:"mode"`
	Summary         string           `json:"summary"`
	DurationMinutes int              `json:"durationMinutes"`
	Pickup          *domain.Location `json:"pickup,omitempty"`
	Dropoff         *domain.Location `json:"dropoff,omitempty"`
}

type searchResponse struct {
	Quotes []transferQuote `json:"quotes"`
}

func (p *HTTPProvider) Search(ctx context.Context, gap domain.Gap) (*domain.Segment, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := json.Marshal(searchRequest{
		From:           gap.FromLocation,
		To:             gap.ToLocation,
		Classification: gap.Classification,
		WindowMinutes:  gap.AvailableWindowMinutes,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/transfers/search", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("transfer search: %s", resp.Status)
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Quotes) == 0 {
		return nil, nil
	}
	return quoteToSegment(out.Quotes[0]), nil
}

func quoteToSegment(q transferQuote) *domain.Segment {
	seg := &domain.Segment{
		Type:            domain.SegmentTransfer,
		Name:            q.Summary,
		TransferType:    transferMode(q.Mode),
		PickupLocation:  q.Pickup,
		DropoffLocation: q.Dropoff,
	}
	if q.DurationMinutes > 0 {
		seg.EndTime = seg.StartTime.Add(time.Duration(q.DurationMinutes) * time.Minute)
	}
	return seg
}

func transferMode(mode string) domain.TransferType {
	switch strings.ToLower(mode) {
	case "taxi", "rideshare":
		return domain.TransferTaxi
	case "shuttle", "bus":
		return domain.TransferShuttle
	case "train", "rail", "metro":
		return domain.TransferTrain
	case "private", "car":
		return domain.TransferPrivate
	case "walk", "walking":
		return domain.TransferWalk
	}
	return ""
}

// CachedProvider memoizes search results per route and classification.
// Negative answers are cached too, so a route with no quotes is asked
// once per TTL, not once per fill run.
type CachedProvider struct {
	inner Provider
	store *gocache.Cache
}

func NewCachedProvider(inner Provider, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		store: gocache.New(ttl, 2*ttl),
	}
}

func (p *CachedProvider) Search(ctx context.Context, gap domain.Gap) (*domain.Segment, error) {
	key := routeKey(gap)
	if cached, ok := p.store.Get(key); ok {
		seg, _ := cached.(*domain.Segment)
		return seg.Clone(), nil
	}

	seg, err := p.inner.Search(ctx, gap)
	if err != nil {
		return nil, err
	}
	p.store.Set(key, seg, gocache.DefaultExpiration)
	// Callers reschedule and restamp what they get back, so they must
	// never share memory with the cached copy.
	return seg.Clone(), nil
}

func routeKey(gap domain.Gap) string {
	return fmt.Sprintf("%s|%s|%s",
		strutil.Normalize(locationName(gap.FromLocation)),
		strutil.Normalize(locationName(gap.ToLocation)),
		gap.Classification,
	)
}

func locationName(loc *domain.Location) string {
	if loc == nil {
		return ""
	}
	return loc.Name
}
