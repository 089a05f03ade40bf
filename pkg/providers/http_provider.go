package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"gotransit/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HTTPProvider is a generic JSON client for a remote mode operator. The same
// wire contract serves share-auto, auto, bus and metro operators; only the
// base URL and mode differ.
type HTTPProvider struct {
	mode          models.TransportMode
	name          string
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	quoteValidity time.Duration
}

func NewHTTPProvider(mode models.TransportMode, name, baseURL, apiKey string, timeout, quoteValidity time.Duration) *HTTPProvider {
	return &HTTPProvider{
		mode:          mode,
		name:          name,
		baseURL:       baseURL,
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: timeout},
		quoteValidity: quoteValidity,
	}
}

func (p *HTTPProvider) Mode() models.TransportMode {
	return p.mode
}

func (p *HTTPProvider) Name() string {
	return p.name
}

type quoteRequest struct {
	From   models.Point       `json:"from"`
	To     models.Point       `json:"to"`
	Window *models.TimeWindow `json:"window,omitempty"`
}

type quoteResponse struct {
	Quotes []struct {
		From            models.Point          `json:"from"`
		To              models.Point          `json:"to"`
		DurationMinutes int                   `json:"duration_minutes"`
		Fare            float64               `json:"fare"`
		DistanceKM      float64               `json:"distance_km"`
		Detail          *models.SegmentDetail `json:"detail,omitempty"`
		ValidUntil      *time.Time            `json:"valid_until,omitempty"`
	} `json:"quotes"`
}

func (p *HTTPProvider) Quote(ctx context.Context, leg models.Leg, window *models.TimeWindow) ([]models.Segment, error) {
	var response quoteResponse
	err := p.post(ctx, "/quotes", &quoteRequest{From: leg.From, To: leg.To, Window: window}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch quotes from %s: %w", p.name, err)
	}

	segments := make([]models.Segment, 0, len(response.Quotes))
	for _, q := range response.Quotes {
		validUntil := time.Now().Add(p.quoteValidity)
		if q.ValidUntil != nil {
			validUntil = *q.ValidUntil
		}

		segments = append(segments, models.Segment{
			ID:              primitive.NewObjectID(),
			Mode:            p.mode,
			Role:            leg.Role,
			From:            q.From,
			To:              q.To,
			DurationMinutes: q.DurationMinutes,
			Fare:            q.Fare,
			DistanceKM:      q.DistanceKM,
			Detail:          q.Detail,
			Provider:        p.name,
			ValidUntil:      validUntil,
		})
	}

	return segments, nil
}

type bookRequest struct {
	SegmentID string       `json:"segment_id"`
	From      models.Point `json:"from"`
	To        models.Point `json:"to"`
	Fare      float64      `json:"fare"`
}

type bookResponse struct {
	Accepted          bool   `json:"accepted"`
	ProviderReference string `json:"provider_reference"`
	Reason            string `json:"reason"`
}

func (p *HTTPProvider) Book(ctx context.Context, segment models.Segment) (*BookingAck, error) {
	var response bookResponse
	err := p.post(ctx, "/bookings", &bookRequest{
		SegmentID: segment.ID.Hex(),
		From:      segment.From,
		To:        segment.To,
		Fare:      segment.Fare,
	}, &response)
	if err != nil {
		return nil, fmt.Errorf("failed to book with %s: %w", p.name, err)
	}

	return &BookingAck{
		Accepted:          response.Accepted,
		ProviderReference: response.ProviderReference,
		Reason:            response.Reason,
	}, nil
}

func (p *HTTPProvider) Cancel(ctx context.Context, providerReference string) error {
	err := p.post(ctx, fmt.Sprintf("/bookings/%s/cancel", providerReference), struct{}{}, nil)
	if err != nil {
		return fmt.Errorf("failed to cancel %s booking %s: %w", p.name, providerReference, err)
	}
	return nil
}

func (p *HTTPProvider) post(ctx context.Context, path string, body, dest interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	if dest == nil {
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(dest)
}
