package gong

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/sderosiaux/gong-to-github/internal/domain/entities"
)

// CallIterator streams call metadata from the calls-listing endpoint in the
// order the API returns it.
type CallIterator struct {
	pages   *pageIterator
	scope   string
	current entities.CallMetadata
	err     error
}

// ListCalls lists calls in the optional date range. The scope filter is
// applied client-side after retrieval; pass an empty scope to return every
// call regardless of scope.
func (c *Client) ListCalls(ctx context.Context, from, to *time.Time, scope string) *CallIterator {
	query := url.Values{}
	if from != nil {
		query.Set("fromDateTime", formatDateTime(*from))
	}
	if to != nil {
		query.Set("toDateTime", formatDateTime(*to))
	}
	return &CallIterator{
		pages: c.paginate(ctx, http.MethodGet, "/calls", query, nil, "calls"),
		scope: scope,
	}
}

// Next advances to the next call matching the scope filter.
func (it *CallIterator) Next() bool {
	for it.pages.Next() {
		var meta entities.CallMetadata
		if err := json.Unmarshal(it.pages.Item(), &meta); err != nil {
			it.err = err
			return false
		}
		if it.scope != "" && meta.Scope != it.scope {
			continue
		}
		it.current = meta
		return true
	}
	if it.err == nil {
		it.err = it.pages.Err()
	}
	return false
}

// Call returns the call metadata Next positioned the iterator on.
func (it *CallIterator) Call() entities.CallMetadata {
	return it.current
}

// Err reports the first error encountered while listing.
func (it *CallIterator) Err() error {
	return it.err
}

// GetCallsExtensive fetches extensive call detail (metadata, parties, CRM
// context) for the given ids, chunked at the API's 100-id ceiling, and merges
// the per-chunk results into one mapping keyed by call id. The raw object is
// kept because downstream assembly needs the context blobs the listing
// endpoint discards.
func (c *Client) GetCallsExtensive(ctx context.Context, callIDs []string) (map[string]json.RawMessage, error) {
	result := make(map[string]json.RawMessage, len(callIDs))
	if len(callIDs) == 0 {
		return result, nil
	}

	for i := 0; i < len(callIDs); i += maxIDsPerRequest {
		batch := callIDs[i:min(i+maxIDsPerRequest, len(callIDs))]

		body := map[string]any{
			"filter": map[string]any{"callIds": batch},
			"contentSelector": map[string]any{
				"exposedFields": map[string]any{
					"parties":       true,
					"content":       map[string]any{"trackers": true},
					"collaboration": map[string]any{"publicComments": true},
				},
			},
		}

		var resp struct {
			Calls []json.RawMessage `json:"calls"`
		}
		if err := c.request(ctx, http.MethodPost, "/calls/extensive", nil, body, &resp); err != nil {
			return nil, err
		}

		for _, raw := range resp.Calls {
			var envelope struct {
				MetaData struct {
					ID string `json:"id"`
				} `json:"metaData"`
			}
			if err := json.Unmarshal(raw, &envelope); err != nil {
				return nil, err
			}
			if envelope.MetaData.ID != "" {
				result[envelope.MetaData.ID] = raw
			}
		}
	}

	return result, nil
}

// GetTranscripts fetches transcripts for the given call ids, chunked at the
// API's 100-id ceiling, merged into one mapping keyed by call id.
func (c *Client) GetTranscripts(ctx context.Context, callIDs []string) (map[string]entities.CallTranscript, error) {
	result := make(map[string]entities.CallTranscript, len(callIDs))
	if len(callIDs) == 0 {
		return result, nil
	}

	for i := 0; i < len(callIDs); i += maxIDsPerRequest {
		batch := callIDs[i:min(i+maxIDsPerRequest, len(callIDs))]

		var resp struct {
			CallTranscripts []entities.CallTranscript `json:"callTranscripts"`
		}
		body := map[string]any{"filter": map[string]any{"callIds": batch}}
		if err := c.request(ctx, http.MethodPost, "/calls/transcript", nil, body, &resp); err != nil {
			return nil, err
		}

		for _, transcript := range resp.CallTranscripts {
			if transcript.CallID != "" {
				result[transcript.CallID] = transcript
			}
		}
	}

	return result, nil
}

// FullCallIterator streams fully assembled calls. Identifiers are accumulated
// from the listing in batches of 50; each full or final partial batch is
// joined against the extensive and transcript endpoints before its calls are
// yielded. A consumer that stops pulling halts all further requests.
type FullCallIterator struct {
	ctx     context.Context
	client  *Client
	calls   *CallIterator
	batch   []string
	pending []entities.Call
	idx     int
	current entities.Call
	done    bool
	err     error
}

// GetFullCalls streams calls with metadata, participants, transcript and
// context assembled per call.
func (c *Client) GetFullCalls(ctx context.Context, from, to *time.Time, scope string) *FullCallIterator {
	return &FullCallIterator{
		ctx:    ctx,
		client: c,
		calls:  c.ListCalls(ctx, from, to, scope),
		batch:  make([]string, 0, pipelineBatchSize),
	}
}

// Next advances to the next assembled call.
func (it *FullCallIterator) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if it.idx < len(it.pending) {
			it.current = it.pending[it.idx]
			it.idx++
			return true
		}
		if it.done {
			return false
		}

		it.batch = it.batch[:0]
		for len(it.batch) < pipelineBatchSize && it.calls.Next() {
			it.batch = append(it.batch, it.calls.Call().ID)
		}
		if err := it.calls.Err(); err != nil {
			it.err = err
			return false
		}
		if len(it.batch) < pipelineBatchSize {
			// Listing exhausted; this is the final partial batch.
			it.done = true
		}
		if len(it.batch) == 0 {
			return false
		}

		pending, err := it.flush(it.batch)
		if err != nil {
			it.err = err
			return false
		}
		it.pending = pending
		it.idx = 0
	}
}

// Call returns the assembled call Next positioned the iterator on.
func (it *FullCallIterator) Call() entities.Call {
	return it.current
}

// Err reports the first error encountered by the pipeline.
func (it *FullCallIterator) Err() error {
	return it.err
}

func (it *FullCallIterator) flush(callIDs []string) ([]entities.Call, error) {
	extensive, err := it.client.GetCallsExtensive(it.ctx, callIDs)
	if err != nil {
		return nil, err
	}
	transcripts, err := it.client.GetTranscripts(it.ctx, callIDs)
	if err != nil {
		return nil, err
	}

	calls := make([]entities.Call, 0, len(callIDs))
	dropped := 0
	for _, id := range callIDs {
		raw, ok := extensive[id]
		if !ok {
			// Listed but missing from the extensive response, e.g. deleted
			// between list and fetch. Skipped, not retried.
			dropped++
			continue
		}

		var detail struct {
			MetaData entities.CallMetadata  `json:"metaData"`
			Parties  []entities.Participant `json:"parties"`
			Context  []map[string]any       `json:"context"`
		}
		if err := json.Unmarshal(raw, &detail); err != nil {
			return nil, err
		}

		call := entities.Call{
			Metadata: detail.MetaData,
			Parties:  detail.Parties,
			Context:  detail.Context,
		}
		if transcript, ok := transcripts[id]; ok {
			call.Transcript = transcript.Transcript
		}
		calls = append(calls, call)
	}

	it.client.logger.Debug("processed call batch",
		zap.Int("requested", len(callIDs)),
		zap.Int("assembled", len(calls)),
		zap.Int("missing_detail", dropped),
	)
	return calls, nil
}
