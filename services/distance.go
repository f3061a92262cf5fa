package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const distanceMatrixURL = "https://maps.googleapis.com/maps/api/distancematrix/json"

// DistanceService proxies the Google Distance Matrix API for address-to-
// address travel lookups.
type DistanceService struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewDistanceService(apiKey string) *DistanceService {
	return &DistanceService{
		apiKey:  apiKey,
		baseURL: distanceMatrixURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// DistanceResult holds the human-readable travel distance and duration
type DistanceResult struct {
	Distance string `json:"distance"`
	Duration string `json:"duration"`
}

type distanceMatrixResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Rows         []struct {
		Elements []struct {
			Status   string `json:"status"`
			Distance struct {
				Text string `json:"text"`
			} `json:"distance"`
			Duration struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Distance looks up travel distance and duration between two addresses.
func (s *DistanceService) Distance(ctx context.Context, from, to string) (*DistanceResult, error) {
	if from == "" || to == "" {
		return nil, fmt.Errorf("%w: both 'from' and 'to' addresses are required", ErrValidation)
	}

	params := url.Values{}
	params.Set("origins", from)
	params.Set("destinations", to)
	params.Set("units", "metric")
	params.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("distance lookup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("distance service returned status %d", resp.StatusCode)
	}

	var data distanceMatrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode distance response: %w", err)
	}

	if data.Status != "OK" {
		if data.ErrorMessage != "" {
			return nil, fmt.Errorf("distance lookup failed: %s", data.ErrorMessage)
		}
		return nil, fmt.Errorf("distance lookup failed: %s", data.Status)
	}

	if len(data.Rows) == 0 || len(data.Rows[0].Elements) == 0 {
		return nil, fmt.Errorf("%w: addresses not found", ErrNotFound)
	}
	element := data.Rows[0].Elements[0]
	if element.Status != "OK" {
		return nil, fmt.Errorf("%w: no route found between the addresses", ErrNotFound)
	}

	return &DistanceResult{
		Distance: element.Distance.Text,
		Duration: element.Duration.Text,
	}, nil
}
