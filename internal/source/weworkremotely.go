package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/JPrier/JobSearch/internal/models"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

type WeWorkRemotely struct {
	client  *http.Client
	logger  *zap.Logger
	baseURL string
}

func NewWeWorkRemotely(client *http.Client, logger *zap.Logger) *WeWorkRemotely {
	return &WeWorkRemotely{
		client:  client,
		logger:  logger,
		baseURL: "https://weworkremotely.com/remote-jobs/search",
	}
}

func (w *WeWorkRemotely) Name() string {
	return "weworkremotely"
}

func (w *WeWorkRemotely) Fetch(ctx context.Context, params models.SearchParams) ([]models.Posting, error) {
	query := url.Values{}
	query.Set("term", params.Term)
	searchURL := fmt.Sprintf("%s?%s", w.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: building request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko)")

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: executing request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			w.logger.Warn("failed to close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weworkremotely: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("weworkremotely: parsing HTML: %w", err)
	}

	var postings []models.Posting
	doc.Find("section.jobs li").Each(func(i int, s *goquery.Selection) {
		title := normalizeText(s.Find("span.title").Text())
		if title == "" {
			return
		}

		company := normalizeText(s.Find("span.company").First().Text())
		region := strings.TrimSpace(s.Find("span.region").Text())
		link, _ := s.Find("a").Last().Attr("href")
		if link != "" && !strings.HasPrefix(link, "http") {
			link = "https://weworkremotely.com" + link
		}

		postings = append(postings, models.Posting{
			ID:       postingID(w.Name(), link),
			Source:   w.Name(),
			Title:    title,
			Company:  company,
			Location: region,
			JobURL:   link,
			// The board only lists remote positions; listings carry no
			// posting date on the search page.
			Remote: models.RemoteYes,
		})
	})

	w.logger.Debug("fetched postings", zap.String("board", w.Name()), zap.Int("count", len(postings)))
	return postings, nil
}
