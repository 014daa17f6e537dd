package gong

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

// fakeGong is a scripted Gong API for exercising the listing, extensive and
// transcript endpoints together.
type fakeGong struct {
	t        *testing.T
	calls    []map[string]any
	pageSize int

	missingDetail map[string]bool
	transcripts   map[string][]map[string]any

	listRequests        int
	extensiveRequests   int
	transcriptRequests  int
	extensiveBatchSizes []int
}

func (f *fakeGong) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/calls", f.handleList)
	mux.HandleFunc("/v2/calls/extensive", f.handleExtensive)
	mux.HandleFunc("/v2/calls/transcript", f.handleTranscript)
	return httptest.NewServer(mux)
}

func (f *fakeGong) handleList(w http.ResponseWriter, r *http.Request) {
	f.listRequests++
	offset := 0
	if cursor := r.URL.Query().Get("cursor"); cursor != "" {
		offset, _ = strconv.Atoi(cursor)
	}

	pageSize := f.pageSize
	if pageSize == 0 {
		pageSize = 100
	}
	end := offset + pageSize
	if end > len(f.calls) {
		end = len(f.calls)
	}

	page := map[string]any{"calls": f.calls[offset:end]}
	if end < len(f.calls) {
		page["records"] = map[string]any{"cursor": strconv.Itoa(end)}
	}
	json.NewEncoder(w).Encode(page)
}

func (f *fakeGong) requestedIDs(r *http.Request) []string {
	var body struct {
		Filter struct {
			CallIDs []string `json:"callIds"`
		} `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		f.t.Errorf("invalid request body: %v", err)
	}
	return body.Filter.CallIDs
}

func (f *fakeGong) handleExtensive(w http.ResponseWriter, r *http.Request) {
	f.extensiveRequests++
	ids := f.requestedIDs(r)
	f.extensiveBatchSizes = append(f.extensiveBatchSizes, len(ids))

	var calls []map[string]any
	for _, id := range ids {
		if f.missingDetail[id] {
			continue
		}
		calls = append(calls, map[string]any{
			"metaData": map[string]any{"id": id, "title": "Call " + id, "scope": "External"},
			"parties": []map[string]any{
				{"id": "p-" + id, "name": "Alice", "affiliation": "Internal", "speakerId": "s1"},
			},
			"context": []map[string]any{{"system": "Salesforce"}},
		})
	}
	json.NewEncoder(w).Encode(map[string]any{"calls": calls})
}

func (f *fakeGong) handleTranscript(w http.ResponseWriter, r *http.Request) {
	f.transcriptRequests++
	ids := f.requestedIDs(r)

	var transcripts []map[string]any
	for _, id := range ids {
		segments, ok := f.transcripts[id]
		if !ok {
			continue
		}
		transcripts = append(transcripts, map[string]any{"callId": id, "transcript": segments})
	}
	json.NewEncoder(w).Encode(map[string]any{"callTranscripts": transcripts})
}

func listedCall(id, scope string) map[string]any {
	return map[string]any{"id": id, "scope": scope}
}

func makeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("c%d", i)
	}
	return ids
}

func TestListCallsScopeFilter(t *testing.T) {
	fake := &fakeGong{t: t, calls: []map[string]any{
		listedCall("c1", "External"),
		listedCall("c2", "Internal"),
	}}
	ts := fake.server()
	defer ts.Close()

	c := newTestClient(ts.URL)

	it := c.ListCalls(context.Background(), nil, nil, "External")
	var ids []string
	for it.Next() {
		ids = append(ids, it.Call().ID)
	}
	if err := it.Err(); err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "c1" {
		t.Fatalf("expected only c1, got %v", ids)
	}

	// Empty scope disables the filter.
	it = c.ListCalls(context.Background(), nil, nil, "")
	count := 0
	for it.Next() {
		count++
	}
	if err := it.Err(); err != nil {
		t.Fatalf("listing failed: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected both calls without scope filter, got %d", count)
	}
}

func TestListCallsDateRangeParams(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("fromDateTime"); got != "2025-01-01T00:00:00Z" {
			t.Errorf("unexpected fromDateTime %q", got)
		}
		if got := r.URL.Query().Get("toDateTime"); got != "2025-02-01T00:00:00Z" {
			t.Errorf("unexpected toDateTime %q", got)
		}
		fmt.Fprint(w, `{"calls":[]}`)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	it := c.ListCalls(context.Background(), &from, &to, "")
	for it.Next() {
	}
	if err := it.Err(); err != nil {
		t.Fatalf("listing failed: %v", err)
	}
}

func TestGetCallsExtensiveChunks(t *testing.T) {
	fake := &fakeGong{t: t}
	ts := fake.server()
	defer ts.Close()

	c := newTestClient(ts.URL)
	ids := makeIDs(150)

	result, err := c.GetCallsExtensive(context.Background(), ids)
	if err != nil {
		t.Fatalf("GetCallsExtensive failed: %v", err)
	}

	if fake.extensiveRequests != 2 {
		t.Fatalf("expected 2 chunk requests for 150 ids, got %d", fake.extensiveRequests)
	}
	if fake.extensiveBatchSizes[0] != 100 || fake.extensiveBatchSizes[1] != 50 {
		t.Fatalf("unexpected batch sizes %v", fake.extensiveBatchSizes)
	}
	if len(result) != 150 {
		t.Fatalf("expected all 150 ids merged, got %d", len(result))
	}
	for _, id := range ids {
		if _, ok := result[id]; !ok {
			t.Fatalf("id %s missing from merged result", id)
		}
	}
}

func TestGetCallsExtensiveSkipsMissingIDs(t *testing.T) {
	fake := &fakeGong{t: t, missingDetail: map[string]bool{"c1": true}}
	ts := fake.server()
	defer ts.Close()

	c := newTestClient(ts.URL)
	result, err := c.GetCallsExtensive(context.Background(), []string{"c0", "c1", "c2"})
	if err != nil {
		t.Fatalf("GetCallsExtensive failed: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result))
	}
	if _, ok := result["c1"]; ok {
		t.Fatal("c1 should be absent")
	}
}

func TestBatchEndpointsEmptyInput(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected for empty input, got %s %s", r.Method, r.URL.Path)
	}))
	defer ts.Close()

	c := newTestClient(ts.URL)

	extensive, err := c.GetCallsExtensive(context.Background(), nil)
	if err != nil || len(extensive) != 0 {
		t.Fatalf("expected empty mapping, got %v %v", extensive, err)
	}

	transcripts, err := c.GetTranscripts(context.Background(), []string{})
	if err != nil || len(transcripts) != 0 {
		t.Fatalf("expected empty mapping, got %v %v", transcripts, err)
	}
}

func TestGetTranscriptsMergesChunks(t *testing.T) {
	fake := &fakeGong{t: t, transcripts: map[string][]map[string]any{
		"c0": {{"speakerId": "s1", "sentences": []map[string]any{
			{"start": 0, "end": 1200, "text": "Hello there"},
		}}},
		"c120": {{"speakerId": "s2", "sentences": []map[string]any{
			{"startMs": 500, "endMs": 900, "text": "Hi"},
		}}},
	}}
	ts := fake.server()
	defer ts.Close()

	c := newTestClient(ts.URL)
	result, err := c.GetTranscripts(context.Background(), makeIDs(130))
	if err != nil {
		t.Fatalf("GetTranscripts failed: %v", err)
	}

	if fake.transcriptRequests != 2 {
		t.Fatalf("expected 2 chunk requests for 130 ids, got %d", fake.transcriptRequests)
	}
	if len(result) != 2 {
		t.Fatalf("expected transcripts for 2 calls, got %d", len(result))
	}

	// Sentence decoding accepts both start/end and startMs/endMs.
	if got := result["c0"].Transcript[0].Sentences[0].StartMs; got != 0 {
		t.Fatalf("unexpected startMs %d", got)
	}
	if got := result["c0"].Transcript[0].Sentences[0].EndMs; got != 1200 {
		t.Fatalf("unexpected endMs %d", got)
	}
	if got := result["c120"].Transcript[0].Sentences[0].StartMs; got != 500 {
		t.Fatalf("unexpected startMs %d", got)
	}
}

func TestGetFullCallsPipeline(t *testing.T) {
	calls := make([]map[string]any, 0, 120)
	for _, id := range makeIDs(120) {
		calls = append(calls, listedCall(id, "External"))
	}

	fake := &fakeGong{
		t:             t,
		calls:         calls,
		missingDetail: map[string]bool{"c7": true},
		transcripts: map[string][]map[string]any{
			"c0": {{"speakerId": "s1", "sentences": []map[string]any{
				{"start": 0, "end": 1000, "text": "Hello"},
			}}},
		},
	}
	ts := fake.server()
	defer ts.Close()

	c := newTestClient(ts.URL)
	it := c.GetFullCalls(context.Background(), nil, nil, DefaultScope)

	var ids []string
	for it.Next() {
		call := it.Call()
		ids = append(ids, call.Metadata.ID)

		if call.Metadata.ID == "c0" {
			if len(call.Transcript) != 1 || call.Transcript[0].Sentences[0].Text != "Hello" {
				t.Fatalf("transcript not joined onto c0: %+v", call.Transcript)
			}
		} else if len(call.Transcript) != 0 {
			t.Fatalf("unexpected transcript on %s", call.Metadata.ID)
		}
		if len(call.Parties) != 1 {
			t.Fatalf("parties not assembled on %s", call.Metadata.ID)
		}
		if len(call.Context) != 1 {
			t.Fatalf("context not carried through on %s", call.Metadata.ID)
		}
	}
	if err := it.Err(); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	// 120 listed calls, one missing extensive detail.
	if len(ids) != 119 {
		t.Fatalf("expected 119 assembled calls, got %d", len(ids))
	}
	for _, id := range ids {
		if id == "c7" {
			t.Fatal("c7 has no extensive detail and must be dropped")
		}
	}

	// ceil(120/50) flushes, each issuing one extensive and one transcript
	// request since batches stay under the 100-id ceiling.
	if fake.extensiveRequests != 3 {
		t.Fatalf("expected 3 flushes, got %d", fake.extensiveRequests)
	}
	if fake.transcriptRequests != 3 {
		t.Fatalf("expected 3 transcript fetches, got %d", fake.transcriptRequests)
	}

	// Listing order is preserved, batch by batch.
	if ids[0] != "c0" || ids[1] != "c1" || ids[len(ids)-1] != "c119" {
		t.Fatalf("ordering not preserved: first=%s last=%s", ids[0], ids[len(ids)-1])
	}
}

func TestGetFullCallsStopsWithConsumer(t *testing.T) {
	calls := make([]map[string]any, 0, 120)
	for _, id := range makeIDs(120) {
		calls = append(calls, listedCall(id, "External"))
	}
	fake := &fakeGong{t: t, calls: calls}
	ts := fake.server()
	defer ts.Close()

	c := newTestClient(ts.URL)
	it := c.GetFullCalls(context.Background(), nil, nil, DefaultScope)

	if !it.Next() {
		t.Fatalf("expected at least one call, err=%v", it.Err())
	}

	// Consumer stopped pulling: only the first batch may have been joined.
	if fake.extensiveRequests != 1 {
		t.Fatalf("expected exactly 1 flush for an abandoned iterator, got %d", fake.extensiveRequests)
	}
}
