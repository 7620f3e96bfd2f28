package legal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docugen-workers/internal/common/config"
	"docugen-workers/internal/common/logger"
	"docugen-workers/internal/models"
)

const searchBody = `{
  "hits": {
    "hits": [
      {"_source": {"id": "LMRSST_90", "frameworkId": "LMRSST", "number": "90", "title": "Programme de prévention obligatoire",
        "applicabilityConditions": [{"type": "company_size", "operator": ">=", "value": 20}],
        "relatedSubjects": ["programme-prevention"]}},
      {"_source": {"id": "LSST_51", "frameworkId": "LSST", "number": "51", "title": "Obligations générales de l'employeur",
        "applicabilityConditions": [{"type": "company_size", "operator": ">=", "value": 1}],
        "relatedSubjects": ["obligations-employeur"]}},
      {"_source": {"id": "LOCAL_1", "frameworkId": "LOCAL", "number": "1", "title": "Règle locale",
        "applicabilityConditions": [{"type": "sector", "operator": "includes", "value": ["construction", "transport"]}]}}
    ]
  }
}`

func newTestES(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchSource_Frameworks(t *testing.T) {
	var path string
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(searchBody))
	})

	src := NewElasticsearchSource(client, "sst-legal-articles", config.BreakerConfig{}, logger.NewTestLogger(t))
	frameworks, err := src.Frameworks(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "/sst-legal-articles/_search", path)
	require.Len(t, frameworks, 3)
	assert.Equal(t, "LMRSST", frameworks[0].ID)
	assert.Equal(t, "2021", frameworks[0].Version)
	assert.Equal(t, "LOCAL", frameworks[1].ID)
	assert.Equal(t, "LSST", frameworks[2].ID)
	assert.Equal(t, "S-2.1", frameworks[2].Version)
	require.Len(t, frameworks[0].Articles, 1)
	assert.Equal(t, "LMRSST_90", frameworks[0].Articles[0].ID)
}

func TestElasticsearchSource_FeedsMapper(t *testing.T) {
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(searchBody))
	})
	src := NewElasticsearchSource(client, "sst-legal-articles", config.BreakerConfig{}, logger.NewTestLogger(t))

	lc, err := NewMapper(src).Map(context.Background(), models.CompanyProfile{Size: 25, Sector: "transport"}, progPrev)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"LMRSST_90", "LOCAL_1", "LSST_51"}, articleIDs(lc.ApplicableLaws))
	assert.True(t, lc.ComplianceMatrix.Coverage)
}

func TestElasticsearchSource_BreakerOpens(t *testing.T) {
	var calls int32
	client := newTestES(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"boom"}`))
	})

	src := NewElasticsearchSource(client, "sst-legal-articles",
		config.BreakerConfig{MaxRequests: 1, Timeout: 60000, FailureThreshold: 2}, logger.NewTestLogger(t))

	for i := 0; i < 2; i++ {
		_, err := src.Frameworks(context.Background())
		require.Error(t, err)
	}

	before := atomic.LoadInt32(&calls)
	_, err := src.Frameworks(context.Background())
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, before, atomic.LoadInt32(&calls))

	_, err = NewMapper(src).Map(context.Background(), models.CompanyProfile{Size: 25}, progPrev)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}
