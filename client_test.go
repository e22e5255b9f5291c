package pilosa

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gogo/protobuf/proto"

	pbuf "github.com/pilosa/go-pilosa/gopilosa_pbuf"
)

// capturedImport is one import request as seen by the fake server.
type capturedImport struct {
	path  string
	query url.Values
	body  []byte
}

// fakeServer mimics the parts of the Pilosa HTTP API the client talks to. It
// reports itself as the only fragment node and the coordinator unless
// redirected elsewhere.
type fakeServer struct {
	server *httptest.Server

	mu       sync.Mutex
	imports  []capturedImport
	nodesURI *URI // fragment node and coordinator address, defaults to self

	importStatus int
	schemaBody   string
	queryCheck   func(*pbuf.QueryRequest)
	queryErr     string
}

func newFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	fs := &fakeServer{importStatus: http.StatusOK}
	fs.server = httptest.NewServer(http.HandlerFunc(fs.handle))
	t.Cleanup(fs.server.Close)
	uri, err := NewURIFromAddress(fs.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	fs.nodesURI = uri
	return fs
}

func (fs *fakeServer) uri(t *testing.T) *URI {
	t.Helper()
	uri, err := NewURIFromAddress(fs.server.URL)
	if err != nil {
		t.Fatal(err)
	}
	return uri
}

func (fs *fakeServer) nodeJSON() string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fmt.Sprintf(`{"scheme":"%s","host":"%s","port":%d}`,
		fs.nodesURI.Scheme(), fs.nodesURI.Host(), fs.nodesURI.Port())
}

func (fs *fakeServer) handle(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	switch {
	case path == "/status":
		fmt.Fprintf(w, `{"nodes":[{"uri":%s,"isCoordinator":true}]}`, fs.nodeJSON())
	case path == "/internal/fragment/nodes":
		fmt.Fprintf(w, `[{"uri":%s}]`, fs.nodeJSON())
	case path == "/schema" && r.Method == "GET":
		fmt.Fprint(w, fs.schemaBody)
	case strings.Contains(path, "/import"):
		body, _ := ioutil.ReadAll(r.Body)
		fs.mu.Lock()
		fs.imports = append(fs.imports, capturedImport{path: path, query: r.URL.Query(), body: body})
		status := fs.importStatus
		fs.mu.Unlock()
		if status != http.StatusOK {
			http.Error(w, "import failed", status)
		}
	case strings.HasSuffix(path, "/query"):
		body, _ := ioutil.ReadAll(r.Body)
		request := &pbuf.QueryRequest{}
		if err := proto.Unmarshal(body, request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if fs.queryCheck != nil {
			fs.queryCheck(request)
		}
		data, _ := proto.Marshal(&pbuf.QueryResponse{Err: fs.queryErr})
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.Write(data)
	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (fs *fakeServer) capturedImports() []capturedImport {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	result := make([]capturedImport, len(fs.imports))
	copy(result, fs.imports)
	return result
}

func newTestClient(t *testing.T, fs *fakeServer, options ...ClientOption) *Client {
	t.Helper()
	client, err := NewClient(fs.server.URL, options...)
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestNewClientArguments(t *testing.T) {
	if _, err := NewClient("localhost:10101"); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient([]string{"node1:10101", "node2:10101"}); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient(DefaultURI()); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient(DefaultCluster()); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient(nil); err != nil {
		t.Fatal(err)
	}
	if _, err := NewClient(42); err != ErrAddrURIClusterExpected {
		t.Fatalf("expected ErrAddrURIClusterExpected, got %v", err)
	}
}

func TestImportColumns(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	iterator := &sliceIterator{records: []Record{
		Column{RowID: 10, ColumnID: 7},
		Column{RowID: 10, ColumnID: 5},
		Column{RowID: 2, ColumnID: 3},
		Column{RowID: 7, ColumnID: DefaultShardWidth + 1},
	}}
	err := client.ImportField(field, iterator, OptImportThreadCount(1), OptImportBatchSize(10))
	if err != nil {
		t.Fatal(err)
	}
	imports := fs.capturedImports()
	if len(imports) != 2 {
		t.Fatalf("expected 2 import requests, got %d", len(imports))
	}
	byShard := map[uint64]*pbuf.ImportRequest{}
	for _, imp := range imports {
		if imp.path != "/index/idx/field/fld/import" {
			t.Fatalf("unexpected import path: %s", imp.path)
		}
		request := &pbuf.ImportRequest{}
		if err := proto.Unmarshal(imp.body, request); err != nil {
			t.Fatal(err)
		}
		byShard[request.Shard] = request
	}
	shard0 := byShard[0]
	if shard0 == nil {
		t.Fatal("no import request for shard 0")
	}
	// records are sorted by (row, column) before encoding
	wantRows := []uint64{2, 10, 10}
	wantCols := []uint64{3, 5, 7}
	for i := range wantRows {
		if shard0.RowIDs[i] != wantRows[i] || shard0.ColumnIDs[i] != wantCols[i] {
			t.Fatalf("shard 0 records out of order: %v %v", shard0.RowIDs, shard0.ColumnIDs)
		}
	}
	shard1 := byShard[1]
	if shard1 == nil || len(shard1.ColumnIDs) != 1 || shard1.ColumnIDs[0] != DefaultShardWidth+1 {
		t.Fatalf("unexpected shard 1 request: %v", shard1)
	}
}

func TestImportColumnsClear(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	iterator := &sliceIterator{records: []Record{Column{RowID: 1, ColumnID: 2}}}
	err := client.ImportField(field, iterator, OptImportClear(true))
	if err != nil {
		t.Fatal(err)
	}
	imports := fs.capturedImports()
	if len(imports) != 1 {
		t.Fatalf("expected 1 import request, got %d", len(imports))
	}
	if imports[0].query.Get("clear") != "true" {
		t.Fatalf("expected clear=true, got %v", imports[0].query)
	}
}

func TestImportValues(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld", OptFieldTypeInt(0, 1000))
	iterator := &sliceIterator{records: []Record{
		FieldValue{ColumnID: 10, Value: 7},
		FieldValue{ColumnID: 2, Value: 3},
	}}
	err := client.ImportField(field, iterator)
	if err != nil {
		t.Fatal(err)
	}
	imports := fs.capturedImports()
	if len(imports) != 1 {
		t.Fatalf("expected 1 import request, got %d", len(imports))
	}
	request := &pbuf.ImportValueRequest{}
	if err := proto.Unmarshal(imports[0].body, request); err != nil {
		t.Fatal(err)
	}
	if len(request.ColumnIDs) != 2 || len(request.Values) != 2 {
		t.Fatalf("unexpected value request: %v", request)
	}
}

func TestImportRoaring(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld", OptFieldTypeTime(TimeQuantumYearMonth))
	ts := time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC).Unix()
	iterator := &sliceIterator{records: []Record{
		Column{RowID: 1, ColumnID: 2, Timestamp: ts},
	}}
	err := client.ImportField(field, iterator, OptImportRoaring(true))
	if err != nil {
		t.Fatal(err)
	}
	imports := fs.capturedImports()
	if len(imports) != 1 {
		t.Fatalf("expected 1 import request, got %d", len(imports))
	}
	if imports[0].path != "/index/idx/field/fld/import-roaring/0" {
		t.Fatalf("unexpected import path: %s", imports[0].path)
	}
	request := &pbuf.ImportRoaringRequest{}
	if err := proto.Unmarshal(imports[0].body, request); err != nil {
		t.Fatal(err)
	}
	names := make([]string, len(request.Views))
	for i, view := range request.Views {
		names[i] = view.Name
	}
	want := []string{"", "2020", "202003"}
	if len(names) != len(want) {
		t.Fatalf("expected views %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected views %v, got %v", want, names)
		}
	}
}

func TestImportRoaringFallsBackForKeys(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld", OptFieldKeys(true))
	iterator := &sliceIterator{records: []Record{
		Column{RowKey: "row1", ColumnID: 2},
	}}
	err := client.ImportField(field, iterator, OptImportRoaring(true))
	if err != nil {
		t.Fatal(err)
	}
	imports := fs.capturedImports()
	if len(imports) != 1 {
		t.Fatalf("expected 1 import request, got %d", len(imports))
	}
	if strings.Contains(imports[0].path, "import-roaring") {
		t.Fatal("a keyed field should not use the roaring path")
	}
}

func TestImportKeyedGoesToCoordinator(t *testing.T) {
	// the entry node reports the coordinator node as coordinator; keyed
	// imports must land there
	coordinator := newFakeServer(t)
	entry := newFakeServer(t)
	entry.mu.Lock()
	entry.nodesURI = coordinator.uri(t)
	entry.mu.Unlock()

	client := newTestClient(t, entry)
	schema := NewSchema()
	field := schema.Index("idx", OptIndexKeys(true)).Field("fld")
	iterator := &sliceIterator{records: []Record{
		Column{RowID: 1, ColumnKey: "col1"},
	}}
	err := client.ImportField(field, iterator)
	if err != nil {
		t.Fatal(err)
	}
	if len(entry.capturedImports()) != 0 {
		t.Fatal("the entry node should not receive keyed imports")
	}
	if len(coordinator.capturedImports()) != 1 {
		t.Fatal("the coordinator should receive the keyed import")
	}
}

func TestImportServerError(t *testing.T) {
	fs := newFakeServer(t)
	fs.importStatus = http.StatusInternalServerError
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	iterator := &sliceIterator{records: []Record{Column{RowID: 1, ColumnID: 2}}}
	err := client.ImportField(field, iterator)
	if err == nil {
		t.Fatal("a failing import endpoint should be an error")
	}
}

func TestImportIteratorError(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	wantErr := fmt.Errorf("line 155 is garbage")
	iterator := &sliceIterator{
		records: []Record{Column{RowID: 1, ColumnID: 2}},
		err:     wantErr,
	}
	err := client.ImportField(field, iterator)
	if err != wantErr {
		t.Fatalf("expected the iterator error, got %v", err)
	}
}

func TestEnsureIndexAndField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"exists"}`, http.StatusConflict)
	}))
	defer server.Close()
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	schema := NewSchema()
	index := schema.Index("idx")
	field := index.Field("fld")
	if err := client.CreateIndex(index); err != ErrIndexExists {
		t.Fatalf("expected ErrIndexExists, got %v", err)
	}
	if err := client.EnsureIndex(index); err != nil {
		t.Fatal(err)
	}
	if err := client.CreateField(field); err != ErrFieldExists {
		t.Fatalf("expected ErrFieldExists, got %v", err)
	}
	if err := client.EnsureField(field); err != nil {
		t.Fatal(err)
	}
}

func TestSchemaLoad(t *testing.T) {
	fs := newFakeServer(t)
	fs.schemaBody = `{"indexes":[
		{"name":"idx1","options":{"keys":true,"trackExistence":true},"shardWidth":1048576,"fields":[
			{"name":"fld1","options":{"type":"set","cacheType":"ranked","cacheSize":1000}},
			{"name":"fld2","options":{"type":"int","min":-10,"max":100}},
			{"name":"fld3","options":{"type":"time","timeQuantum":"YMD"}},
			{"name":"exists","options":{"type":"set"}}
		]}
	]}`
	client := newTestClient(t, fs)
	schema, err := client.Schema()
	if err != nil {
		t.Fatal(err)
	}
	index, ok := schema.Indexes()["idx1"]
	if !ok {
		t.Fatal("idx1 should be in the schema")
	}
	if !index.Opts().Keys() {
		t.Fatal("idx1 should have keys enabled")
	}
	if index.HasField("exists") {
		t.Fatal("reserved fields should be hidden")
	}
	if index.Fields()["fld2"].Opts().Type() != FieldTypeInt {
		t.Fatal("fld2 should be an int field")
	}
	if index.Fields()["fld3"].Opts().TimeQuantum() != TimeQuantumYearMonthDay {
		t.Fatal("fld3 should have quantum YMD")
	}
}

func TestSyncSchema(t *testing.T) {
	fs := newFakeServer(t)
	fs.schemaBody = `{"indexes":[{"name":"remote-index","options":{},"fields":[{"name":"remote-field","options":{"type":"set"}}]}]}`
	client := newTestClient(t, fs)
	schema := NewSchema()
	schema.Index("local-index").Field("local-field")
	if err := client.SyncSchema(schema); err != nil {
		t.Fatal(err)
	}
	if !schema.HasIndex("remote-index") {
		t.Fatal("the server's indexes should be merged into the local schema")
	}
}

func TestQuery(t *testing.T) {
	fs := newFakeServer(t)
	var got *pbuf.QueryRequest
	fs.queryCheck = func(request *pbuf.QueryRequest) { got = request }
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	response, err := client.Query(field.Row(10), OptQueryColumnAttrs(true), OptQueryShards(0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if response == nil || response.Raw == nil {
		t.Fatal("the raw response body should be returned")
	}
	if got == nil {
		t.Fatal("the server did not receive a query")
	}
	if got.Query != "Row(fld=10)" {
		t.Fatalf("unexpected PQL: %s", got.Query)
	}
	if !got.ColumnAttrs || len(got.Shards) != 2 {
		t.Fatalf("query options not applied: %v", got)
	}
}

func TestQueryServerError(t *testing.T) {
	fs := newFakeServer(t)
	fs.queryErr = "index not found"
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	_, err := client.Query(field.Row(10))
	if err == nil || !strings.Contains(err.Error(), "index not found") {
		t.Fatalf("expected the server's error, got %v", err)
	}
}

func TestQueryInvalid(t *testing.T) {
	fs := newFakeServer(t)
	client := newTestClient(t, fs)
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	if _, err := client.Query(field.Row(1.23)); err == nil {
		t.Fatal("an invalid query should not be sent")
	}
}

func TestHostFallback(t *testing.T) {
	fs := newFakeServer(t)
	fs.schemaBody = `{"indexes":[]}`
	// a dead address followed by a live one
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()
	client, err := NewClient([]string{deadURL, fs.server.URL})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := client.Schema(); err != nil {
		t.Fatalf("the client should fall back to the live host: %v", err)
	}
}

func TestManualServerAddress(t *testing.T) {
	fs := newFakeServer(t)
	// point topology at an unreachable node; manual mode must ignore it
	bad, err := NewURIFromAddress("localhost:1")
	if err != nil {
		t.Fatal(err)
	}
	fs.mu.Lock()
	fs.nodesURI = bad
	fs.mu.Unlock()

	client := newTestClient(t, fs, OptClientManualServerAddress(true))
	schema := NewSchema()
	field := schema.Index("idx").Field("fld")
	iterator := &sliceIterator{records: []Record{Column{RowID: 1, ColumnID: 2}}}
	if err := client.ImportField(field, iterator); err != nil {
		t.Fatal(err)
	}
	if len(fs.capturedImports()) != 1 {
		t.Fatal("the import should go to the configured address")
	}
}

func TestCoordinatorNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/status" {
			fmt.Fprint(w, `{"nodes":[]}`)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	schema := NewSchema()
	field := schema.Index("idx", OptIndexKeys(true)).Field("fld")
	iterator := &sliceIterator{records: []Record{Column{RowID: 1, ColumnKey: "c"}}}
	err = client.ImportField(field, iterator)
	if err != ErrCoordinatorNotFound {
		t.Fatalf("expected ErrCoordinatorNotFound, got %v", err)
	}
}

func TestDeleteIndexAndField(t *testing.T) {
	var deleted []string
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "DELETE" {
			mu.Lock()
			deleted = append(deleted, r.URL.Path)
			mu.Unlock()
		}
	}))
	defer server.Close()
	client, err := NewClient(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	schema := NewSchema()
	index := schema.Index("idx")
	field := index.Field("fld")
	if err := client.DeleteField(field); err != nil {
		t.Fatal(err)
	}
	if err := client.DeleteIndex(index); err != nil {
		t.Fatal(err)
	}
	if len(deleted) != 2 || deleted[0] != "/index/idx/field/fld" || deleted[1] != "/index/idx" {
		t.Fatalf("unexpected delete paths: %v", deleted)
	}
}
