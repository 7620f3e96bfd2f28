package legal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sony/gobreaker/v2"

	"docugen-workers/internal/common/config"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/models"
)

const maxArticles = 1000

// ElasticsearchSource reads legal articles from an index holding one
// LegalArticle document per article. Calls go through a circuit breaker so
// a failing cluster is not hammered by every pipeline run.
type ElasticsearchSource struct {
	client  *elasticsearch.Client
	index   string
	breaker *gobreaker.CircuitBreaker[[]models.LegalFramework]
	log     logger.Logger
}

func NewElasticsearchSource(client *elasticsearch.Client, index string, cfg config.BreakerConfig, log logger.Logger) *ElasticsearchSource {
	s := &ElasticsearchSource{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"component": "legal-es-source", "index": index}),
	}

	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        "legal-articles",
		MaxRequests: cfg.MaxRequests,
		Interval:    config.GetDuration(cfg.Interval),
		Timeout:     config.GetDuration(cfg.Timeout),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			s.log.Warn("Circuit breaker state change", map[string]interface{}{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
		},
	}
	s.breaker = gobreaker.NewCircuitBreaker[[]models.LegalFramework](settings)
	return s
}

func (s *ElasticsearchSource) Frameworks(ctx context.Context) ([]models.LegalFramework, error) {
	return s.breaker.Execute(func() ([]models.LegalFramework, error) {
		return s.search(ctx)
	})
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source models.LegalArticle `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticsearchSource) search(ctx context.Context) ([]models.LegalFramework, error) {
	size := maxArticles
	req := esapi.SearchRequest{
		Index: []string{s.index},
		Body:  strings.NewReader(`{"query":{"match_all":{}},"sort":[{"id":{"order":"asc","unmapped_type":"keyword"}}]}`),
		Size:  &size,
	}

	start := time.Now()
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search error: %s", res.Status())
	}

	var body searchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	articles := make([]models.LegalArticle, 0, len(body.Hits.Hits))
	for _, h := range body.Hits.Hits {
		articles = append(articles, h.Source)
	}

	s.log.Debug("Loaded legal articles", map[string]interface{}{
		"count":    len(articles),
		"duration": time.Since(start).Milliseconds(),
	})
	return groupByFramework(articles), nil
}

// groupByFramework rebuilds frameworks from a flat article list, taking
// framework metadata from the built-in ontology when it is known.
func groupByFramework(articles []models.LegalArticle) []models.LegalFramework {
	known := make(map[string]models.LegalFramework, len(Frameworks))
	for _, fw := range Frameworks {
		known[fw.ID] = fw
	}

	byID := make(map[string]*models.LegalFramework)
	var order []string
	for _, a := range articles {
		fw, ok := byID[a.FrameworkID]
		if !ok {
			meta, found := known[a.FrameworkID]
			if !found {
				meta = models.LegalFramework{ID: a.FrameworkID, Name: a.FrameworkID}
			}
			meta.Articles = nil
			fw = &meta
			byID[a.FrameworkID] = fw
			order = append(order, a.FrameworkID)
		}
		fw.Articles = append(fw.Articles, a)
	}

	sort.Strings(order)
	out := make([]models.LegalFramework, 0, len(order))
	for _, id := range order {
		out = append(out, *byID[id])
	}
	return out
}
