// internal/store/report_index.go
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"workforce-intelligence/internal/common/errors"
	"workforce-intelligence/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
)

// ReportDocument is the searchable form of a reliable analysis.
type ReportDocument struct {
	AnalysisID     string    `json:"analysisId"`
	JobTitle       string    `json:"jobTitle"`
	OverallScore   int       `json:"overallScore"`
	TotalAvailable int       `json:"totalAvailable"`
	DataSource     string    `json:"dataSource,omitempty"`
	Report         string    `json:"report"`
	CreatedAt      time.Time `json:"createdAt"`
}

// SearchHit is one ranked match from Search.
type SearchHit struct {
	ReportDocument
	Score float64 `json:"score"`
}

type SearchResult struct {
	TotalHits int         `json:"totalHits"`
	Took      int         `json:"took"`
	Hits      []SearchHit `json:"hits"`
}

// ReportIndex stores reports in Elasticsearch for full-text search.
type ReportIndex struct {
	client *elasticsearch.Client
	index  string
}

func NewReportIndex(client *elasticsearch.Client, index string) *ReportIndex {
	return &ReportIndex{client: client, index: index}
}

// DocumentFromRecord builds the index document. Only reliable records carry a report.
func DocumentFromRecord(record *models.AnalysisRecord) ReportDocument {
	doc := ReportDocument{
		AnalysisID:   record.ID,
		JobTitle:     record.JobTitle,
		OverallScore: record.OverallScore,
		Report:       record.Report,
		CreatedAt:    record.CreatedAt,
	}
	if wd := record.Result.WorkforceData; wd != nil {
		doc.TotalAvailable = wd.TotalAvailable
		doc.DataSource = wd.Metadata.DataSource
	}
	return doc
}

// Index upserts doc under its analysis id.
func (i *ReportIndex) Index(ctx context.Context, doc ReportDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return errors.NewReportIndexFailedError(i.index, err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(doc.AnalysisID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return errors.NewReportIndexFailedError(i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return errors.NewReportIndexFailedError(i.index, fmt.Errorf("%s: %s", res.Status(), msg))
	}
	return nil
}

// Search runs a multi_match over job title and report text, best match first.
func (i *ReportIndex) Search(ctx context.Context, text string, size int) (*SearchResult, error) {
	size = ClampLimit(size)

	query := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"jobTitle^3", "report"},
				"type":   "best_fields",
			},
		},
		"sort": []interface{}{
			"_score",
			map[string]interface{}{"createdAt": map[string]interface{}{"order": "desc"}},
		},
	}
	if text == "" {
		query["query"] = map[string]interface{}{"match_all": map[string]interface{}{}}
	}

	body, err := json.Marshal(query)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(i.index, err)
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
		i.client.Search.WithSize(size),
	)
	if err != nil {
		return nil, errors.NewSearchQueryFailedError(i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return nil, errors.NewSearchQueryFailedError(i.index, fmt.Errorf("%s: %s", res.Status(), msg))
	}

	var parsed struct {
		Took int `json:"took"`
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Score  float64        `json:"_score"`
				Source ReportDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, errors.NewSearchQueryFailedError(i.index, fmt.Errorf("decode response: %w", err))
	}

	result := &SearchResult{
		TotalHits: parsed.Hits.Total.Value,
		Took:      parsed.Took,
		Hits:      make([]SearchHit, 0, len(parsed.Hits.Hits)),
	}
	for _, hit := range parsed.Hits.Hits {
		result.Hits = append(result.Hits, SearchHit{ReportDocument: hit.Source, Score: hit.Score})
	}
	return result, nil
}
