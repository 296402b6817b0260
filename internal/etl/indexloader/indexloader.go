/*
Package indexloader bulk-writes the transformer's output to the search
index, one document per film id, keyed by the film's stable UUID so
repeated writes are idempotent.
*/
package indexloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/google/uuid"

	"github.com/taibuivan/filmsync/internal/etl/model"
)

// IndexName is the single index the core writes documents to.
const IndexName = "movies"

// Loader bulk-indexes FilmDoc documents.
type Loader struct {
	client *elasticsearch.Client
	log    *slog.Logger
}

// New wraps an Elasticsearch client in a [Loader].
func New(client *elasticsearch.Client, log *slog.Logger) *Loader {
	return &Loader{client: client, log: log}
}

// LoadIt writes docs to the index through one bulk indexer, which sends
// them in as many bulk requests as its flush-size threshold needs. Any
// per-document failure is collected and returned as one error so the
// orchestrator can mark the run ERROR without advancing the watermark.
func (l *Loader) LoadIt(ctx context.Context, docs map[uuid.UUID]model.FilmDoc) error {
	if len(docs) == 0 {
		return nil
	}

	indexer, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:  IndexName,
		Client: l.client,
		// A single flush worker keeps OnFailure callbacks sequential, so the
		// shared failures slice below never needs a mutex. This pipeline has
		// no concurrent-write requirement to trade away for extra throughput.
		NumWorkers: 1,
	})
	if err != nil {
		return fmt.Errorf("indexloader: new bulk indexer: %w", err)
	}

	var failures []error

	for filmID, doc := range docs {
		source, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("indexloader: encode doc %s: %w", filmID, err)
		}

		err = indexer.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: filmID.String(),
			Body:       bytes.NewReader(source),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, resp esutil.BulkIndexerResponseItem, err error) {
				if err != nil {
					failures = append(failures, fmt.Errorf("indexloader: %s: %w", item.DocumentID, err))
					return
				}
				failures = append(failures, fmt.Errorf("indexloader: %s: %s %s", item.DocumentID, resp.Error.Type, resp.Error.Reason))
			},
		})
		if err != nil {
			return fmt.Errorf("indexloader: add doc %s: %w", filmID, err)
		}
	}

	if err := indexer.Close(ctx); err != nil {
		return fmt.Errorf("indexloader: bulk close: %w", err)
	}

	stats := indexer.Stats()
	l.log.InfoContext(ctx, "index bulk write complete",
		slog.Int("indexed", int(stats.NumFlushed)),
		slog.Int("failed", int(stats.NumFailed)),
	)

	if len(failures) > 0 {
		return fmt.Errorf("indexloader: %d document(s) failed: %w", len(failures), failures[0])
	}
	return nil
}
