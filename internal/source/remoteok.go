package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/JPrier/JobSearch/internal/models"

	"go.uber.org/zap"
)

type RemoteOK struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
}

func NewRemoteOK(client *http.Client, logger *zap.Logger) *RemoteOK {
	return &RemoteOK{
		client:  client,
		logger:  logger,
		baseURL: "https://remoteok.com/api",
	}
}

func (r *RemoteOK) Name() string {
	return "remoteok"
}

type remoteOKItem struct {
	ID          string   `json:"id"`
	Position    string   `json:"position"`
	Company     string   `json:"company"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	SalaryMin   *float64 `json:"salary_min"`
	SalaryMax   *float64 `json:"salary_max"`
	Date        string   `json:"date"`
	URL         string   `json:"url"`
}

func (r *RemoteOK) Fetch(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	query := url.Values{}
	query.Set("tags", strings.ReplaceAll(strings.ToLower(params.Term), " ", "+"))
	searchURL := fmt.Sprintf("%s?%s", r.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remoteok: building request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)")
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remoteok: executing request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			r.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remoteok: unexpected status %d", resp.StatusCode)
	}

	var items []remoteOKItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("remoteok: decoding response: %w", err)
	}

	postings := make([]models.Posting, 0, len(items))
	for _, item := range items {
		// The first array element is a legal notice, not a posting.
		if item.Position == "" {
			continue
		}

		posting := models.Posting{
			ID:          postingID(r.Name(), item.URL),
			Source:      r.Name(),
			Title:       normalizeText(item.Position),
			Company:     normalizeText(item.Company),
			Location:    strings.TrimSpace(item.Location),
			Description: item.Description,
			JobURL:      item.URL,
			// The API reports 0 for unknown salary bounds; 0 is absence.
			SalaryMin: positiveOrNil(item.SalaryMin),
			SalaryMax: positiveOrNil(item.SalaryMax),
			// Every listing on this board is remote.
			Remote: models.RemoteYes,
		}

		if item.Date != "" {
			if posted, err := time.Parse(time.RFC3339, item.Date); err == nil {
				posting.DatePosted = &posted
			} else {
				r.logger.Debug("unparseable posting date",
					zap.String("date", item.Date),
					zap.String("url", item.URL))
			}
		}

		postings = append(postings, posting)
	}

	r.logger.Debug("fetched postings", zap.String("board", r.Name()), zap.Int("count", len(postings)))
	return postings, nil
}

func positiveOrNil(v *float64) *float64 {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}
