// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package pilosa

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"log"
	"net"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	pbuf "github.com/pilosa/go-pilosa/gopilosa_pbuf"
)

// PQLVersion is the PQL version this client speaks.
const PQLVersion = "1.0"

const maxHosts = 10

// reserved fields are maintained by the server and hidden from SyncSchema.
var reservedFields = map[string]struct{}{"exists": {}}

// Client is a HTTP client for a Pilosa cluster. It talks the http+protobuf
// API: queries and imports are protobuf bodies, everything else is JSON.
type Client struct {
	cluster    *Cluster
	httpClient *http.Client
	logger     *log.Logger
	tracer     opentracing.Tracer

	manualServerAddress bool
	manualURI           *URI

	coordinatorMu  sync.Mutex
	coordinatorURI *URI

	currentMu   sync.Mutex
	currentHost *URI
}

// ClientOptions contains the options for a Client.
type ClientOptions struct {
	ConnectTimeout      time.Duration
	SocketTimeout       time.Duration
	TLSConfig           *tls.Config
	ManualServerAddress bool
	Logger              *log.Logger
	Tracer              opentracing.Tracer
}

func (co *ClientOptions) withDefaults() {
	if co.ConnectTimeout <= 0 {
		co.ConnectTimeout = 30 * time.Second
	}
	if co.SocketTimeout <= 0 {
		co.SocketTimeout = 300 * time.Second
	}
	if co.Tracer == nil {
		co.Tracer = opentracing.GlobalTracer()
	}
}

// ClientOption is a functional option for Client.
type ClientOption func(*ClientOptions) error

// OptClientConnectTimeout sets the maximum time to wait for a connection to a
// server to succeed.
func OptClientConnectTimeout(timeout time.Duration) ClientOption {
	return func(co *ClientOptions) error {
		co.ConnectTimeout = timeout
		return nil
	}
}

// OptClientSocketTimeout sets the maximum time to wait for a response from
// the server.
func OptClientSocketTimeout(timeout time.Duration) ClientOption {
	return func(co *ClientOptions) error {
		co.SocketTimeout = timeout
		return nil
	}
}

// OptClientTLSConfig sets the TLS configuration for connections to the
// server.
func OptClientTLSConfig(config *tls.Config) ClientOption {
	return func(co *ClientOptions) error {
		co.TLSConfig = config
		return nil
	}
}

// OptClientManualServerAddress forces the client to send every request,
// including imports, to the address it was created with instead of
// discovering nodes. Requires a single URI or address.
func OptClientManualServerAddress(enabled bool) ClientOption {
	return func(co *ClientOptions) error {
		co.ManualServerAddress = enabled
		return nil
	}
}

// OptClientLogger sets the logger for diagnostic messages. The client is
// silent by default.
func OptClientLogger(logger *log.Logger) ClientOption {
	return func(co *ClientOptions) error {
		co.Logger = logger
		return nil
	}
}

// OptClientTracer sets the OpenTracing tracer. See https://opentracing.io.
func OptClientTracer(tracer opentracing.Tracer) ClientOption {
	return func(co *ClientOptions) error {
		co.Tracer = tracer
		return nil
	}
}

// DefaultClient creates a client for the default URI.
func DefaultClient() *Client {
	client, err := NewClient(DefaultURI())
	if err != nil {
		// the default URI is always valid
		panic(err)
	}
	return client
}

// NewClient creates a client with the given address, URI, address list or
// cluster and options.
func NewClient(addrURIOrCluster interface{}, options ...ClientOption) (*Client, error) {
	clientOptions := &ClientOptions{}
	for _, opt := range options {
		if err := opt(clientOptions); err != nil {
			return nil, err
		}
	}
	clientOptions.withDefaults()

	var cluster *Cluster
	switch v := addrURIOrCluster.(type) {
	case nil:
		cluster = DefaultCluster()
	case string:
		uri, err := NewURIFromAddress(v)
		if err != nil {
			return nil, err
		}
		cluster = NewClusterWithHost(uri)
	case []string:
		uris := make([]*URI, len(v))
		for i, address := range v {
			uri, err := NewURIFromAddress(address)
			if err != nil {
				return nil, err
			}
			uris[i] = uri
		}
		cluster = NewClusterWithHost(uris...)
	case *URI:
		cluster = NewClusterWithHost(v)
	case *Cluster:
		cluster = v
	default:
		return nil, ErrAddrURIClusterExpected
	}

	client := &Client{
		cluster: cluster,
		logger:  clientOptions.Logger,
		tracer:  clientOptions.Tracer,
	}
	if clientOptions.ManualServerAddress {
		hosts := cluster.Hosts()
		if len(hosts) != 1 {
			return nil, errors.New("manual server address requires a single URI or address")
		}
		client.manualServerAddress = true
		client.manualURI = hosts[0]
	}
	client.httpClient = newHTTPClient(clientOptions)
	return client, nil
}

func newHTTPClient(options *ClientOptions) *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: options.ConnectTimeout,
		}).DialContext,
		TLSClientConfig:     options.TLSConfig,
		MaxIdleConnsPerHost: 10,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   options.SocketTimeout,
	}
}

// Query runs the given query against the server. Only the error envelope of
// the response is decoded; Raw carries the protobuf response body.
func (c *Client) Query(query PQLQuery, options ...QueryOption) (*QueryResponse, error) {
	span := c.tracer.StartSpan("Client.Query")
	defer span.Finish()
	if err := query.Error(); err != nil {
		return nil, err
	}
	queryOptions := &QueryOptions{}
	for _, opt := range options {
		opt(queryOptions)
	}
	request := &pbuf.QueryRequest{
		Query:           query.Serialize(),
		Shards:          queryOptions.Shards,
		ColumnAttrs:     queryOptions.ColumnAttrs,
		ExcludeColumns:  queryOptions.ExcludeColumns,
		ExcludeRowAttrs: queryOptions.ExcludeRowAttrs,
	}
	data, err := proto.Marshal(request)
	if err != nil {
		return nil, errors.Wrap(err, "marshaling query request")
	}
	path := fmt.Sprintf("/index/%s/query", query.Index().Name())
	headers := protobufHeaders()
	headers["PQL-Version"] = PQLVersion

	ctx := context.Background()
	var body []byte
	if query.hasKeys() && !c.manualServerAddress {
		// keyed queries go through the coordinator to keep key translation
		// consistent
		coordinator, cerr := c.fetchCoordinatorNode(ctx)
		if cerr != nil {
			return nil, cerr
		}
		_, body, err = c.doNodeRequest(ctx, coordinator, "POST", path, data, headers)
		if err != nil {
			c.invalidateCoordinator()
		}
	} else {
		_, body, err = c.httpRequest(ctx, "POST", path, data, headers)
	}
	if err != nil {
		return nil, err
	}
	response := &pbuf.QueryResponse{}
	if err := proto.Unmarshal(body, response); err != nil {
		return nil, errors.Wrap(err, "unmarshaling query response")
	}
	if response.Err != "" {
		return nil, errors.New(response.Err)
	}
	return &QueryResponse{Raw: body}, nil
}

// QueryResponse is the envelope of a query response. Decoding results is left
// to the caller; Raw is the protobuf-encoded body as received.
type QueryResponse struct {
	Raw []byte
}

// QueryOptions contains the options for a query.
type QueryOptions struct {
	ColumnAttrs     bool
	ExcludeColumns  bool
	ExcludeRowAttrs bool
	Shards          []uint64
}

// QueryOption is a functional option for queries.
type QueryOption func(*QueryOptions)

// OptQueryColumnAttrs enables returning column attributes.
func OptQueryColumnAttrs(enable bool) QueryOption {
	return func(qo *QueryOptions) { qo.ColumnAttrs = enable }
}

// OptQueryExcludeColumns disables returning columns from row queries.
func OptQueryExcludeColumns(enable bool) QueryOption {
	return func(qo *QueryOptions) { qo.ExcludeColumns = enable }
}

// OptQueryExcludeRowAttrs disables returning row attributes.
func OptQueryExcludeRowAttrs(enable bool) QueryOption {
	return func(qo *QueryOptions) { qo.ExcludeRowAttrs = enable }
}

// OptQueryShards restricts the query to the given shards.
func OptQueryShards(shards ...uint64) QueryOption {
	return func(qo *QueryOptions) { qo.Shards = shards }
}

// CreateIndex creates an index on the server.
func (c *Client) CreateIndex(index *Index) error {
	span := c.tracer.StartSpan("Client.CreateIndex")
	defer span.Finish()
	if err := validateIndexName(index.Name()); err != nil {
		return err
	}
	path := fmt.Sprintf("/index/%s", index.Name())
	_, _, err := c.httpRequest(context.Background(), "POST", path, []byte(index.optionsString()), nil)
	if serverErr, ok := errors.Cause(err).(*ServerError); ok && serverErr.StatusCode == http.StatusConflict {
		return ErrIndexExists
	}
	return err
}

// DeleteIndex deletes an index on the server.
func (c *Client) DeleteIndex(index *Index) error {
	span := c.tracer.StartSpan("Client.DeleteIndex")
	defer span.Finish()
	path := fmt.Sprintf("/index/%s", index.Name())
	_, _, err := c.httpRequest(context.Background(), "DELETE", path, nil, nil)
	return err
}

// CreateField creates a field on the server.
func (c *Client) CreateField(field *Field) error {
	span := c.tracer.StartSpan("Client.CreateField")
	defer span.Finish()
	if err := validateFieldName(field.Name()); err != nil {
		return err
	}
	path := fmt.Sprintf("/index/%s/field/%s", field.index.Name(), field.Name())
	_, _, err := c.httpRequest(context.Background(), "POST", path, []byte(field.optionsString()), nil)
	if serverErr, ok := errors.Cause(err).(*ServerError); ok && serverErr.StatusCode == http.StatusConflict {
		return ErrFieldExists
	}
	return err
}

// DeleteField deletes a field on the server.
func (c *Client) DeleteField(field *Field) error {
	span := c.tracer.StartSpan("Client.DeleteField")
	defer span.Finish()
	path := fmt.Sprintf("/index/%s/field/%s", field.index.Name(), field.Name())
	_, _, err := c.httpRequest(context.Background(), "DELETE", path, nil, nil)
	return err
}

// EnsureIndex creates an index on the server if it doesn't already exist.
func (c *Client) EnsureIndex(index *Index) error {
	err := c.CreateIndex(index)
	if err == ErrIndexExists {
		return nil
	}
	return err
}

// EnsureField creates a field on the server if it doesn't already exist.
func (c *Client) EnsureField(field *Field) error {
	err := c.CreateField(field)
	if err == ErrFieldExists {
		return nil
	}
	return err
}

// Schema loads the schema from the server.
func (c *Client) Schema() (*Schema, error) {
	span := c.tracer.StartSpan("Client.Schema")
	defer span.Finish()
	_, body, err := c.httpRequest(context.Background(), "GET", "/schema", nil, nil)
	if err != nil {
		return nil, err
	}
	var root schemaJSON
	if err := json.Unmarshal(body, &root); err != nil {
		return nil, errors.Wrap(err, "unmarshaling schema")
	}
	schema := NewSchema()
	for _, indexInfo := range root.Indexes {
		indexOptions := []IndexOption{
			OptIndexKeys(indexInfo.Options.Keys),
			OptIndexTrackExistence(indexInfo.Options.TrackExistence),
		}
		if indexInfo.ShardWidth > 0 {
			indexOptions = append(indexOptions, OptIndexShardWidth(indexInfo.ShardWidth))
		}
		index := schema.Index(indexInfo.Name, indexOptions...)
		for _, fieldInfo := range indexInfo.Fields {
			if _, ok := reservedFields[fieldInfo.Name]; ok {
				continue
			}
			index.Field(fieldInfo.Name, fieldInfo.Options.asOptions()...)
		}
	}
	return schema, nil
}

// SyncSchema creates the indexes and fields in the given schema which are
// missing on the server, and adds the server's indexes and fields which are
// missing locally. Nothing is deleted on either side.
func (c *Client) SyncSchema(schema *Schema) error {
	span := c.tracer.StartSpan("Client.SyncSchema")
	defer span.Finish()
	serverSchema, err := c.Schema()
	if err != nil {
		return errors.Wrap(err, "loading schema")
	}

	// create indexes and fields which don't exist on the server
	for _, index := range schema.diff(serverSchema).indexes {
		if !serverSchema.HasIndex(index.Name()) {
			if err := c.EnsureIndex(index); err != nil {
				return errors.Wrapf(err, "ensuring index '%s'", index.Name())
			}
		}
		for _, field := range index.fields {
			if err := c.EnsureField(field); err != nil {
				return errors.Wrapf(err, "ensuring field '%s'", field.Name())
			}
		}
	}

	// add indexes and fields which exist only on the server
	for indexName, index := range serverSchema.diff(schema).indexes {
		localIndex, ok := schema.indexes[indexName]
		if !ok {
			schema.indexes[indexName] = index
			continue
		}
		for fieldName, field := range index.fields {
			localIndex.fields[fieldName] = field.copy(localIndex)
		}
	}
	return nil
}

// ImportOptions contains the options for an import.
type ImportOptions struct {
	BatchSize   int
	ThreadCount int
	Roaring     bool
	Clear       bool
}

func (io *ImportOptions) withDefaults() {
	if io.BatchSize <= 0 {
		io.BatchSize = 100000
	}
	if io.ThreadCount <= 0 {
		io.ThreadCount = runtime.NumCPU()
	}
}

// ImportOption is a functional option for imports.
type ImportOption func(*ImportOptions)

// OptImportBatchSize sets the number of records read from the iterator
// before being partitioned and sent to the server.
func OptImportBatchSize(batchSize int) ImportOption {
	return func(io *ImportOptions) { io.BatchSize = batchSize }
}

// OptImportThreadCount sets the number of import workers. Defaults to the
// number of CPUs.
func OptImportThreadCount(count int) ImportOption {
	return func(io *ImportOptions) { io.ThreadCount = count }
}

// OptImportRoaring enables the fast roaring import path. It applies only to
// non-keyed set, bool and time fields; other imports fall back to the
// row-oriented path.
func OptImportRoaring(enable bool) ImportOption {
	return func(io *ImportOptions) { io.Roaring = enable }
}

// OptImportClear clears the imported bits or values instead of setting them.
func OptImportClear(enable bool) ImportOption {
	return func(io *ImportOptions) { io.Clear = enable }
}

// importJob is the unit of work of the import pipeline: one shard group of
// one batch, bound for the nodes owning that shard.
type importJob struct {
	field      *Field
	format     importFormat
	shard      uint64
	shardWidth uint64
	records    []Record
	options    ImportOptions
}

// ImportField imports records into the given field. See
// ImportFieldWithContext.
func (c *Client) ImportField(field *Field, iterator RecordIterator, options ...ImportOption) error {
	return c.ImportFieldWithContext(context.Background(), field, iterator, options...)
}

// ImportFieldWithContext imports records into the given field until the
// iterator is exhausted. Records are read in batches, partitioned by shard
// and dispatched to the owning nodes by a bounded pool of workers.
//
// The first error — from the iterator, topology discovery or a server
// request — cancels the context shared by the workers, stops scheduling and
// is returned once all workers have stopped. No record is kept of which
// shards were already committed; retry an import from scratch.
func (c *Client) ImportFieldWithContext(ctx context.Context, field *Field, iterator RecordIterator, options ...ImportOption) error {
	span := c.tracer.StartSpan("Client.ImportField")
	defer span.Finish()

	importOptions := ImportOptions{}
	for _, opt := range options {
		opt(&importOptions)
	}
	importOptions.withDefaults()

	shardWidth := field.index.shardWidth()
	format := importFormatFor(field)

	eg, ctx := errgroup.WithContext(ctx)
	jobs := make(chan importJob, importOptions.ThreadCount)
	for i := 0; i < importOptions.ThreadCount; i++ {
		eg.Go(func() error {
			for job := range jobs {
				if ctx.Err() != nil {
					// another worker failed or the caller gave up; drain
					// without doing work
					continue
				}
				if err := c.importShard(ctx, job); err != nil {
					return err
				}
			}
			return nil
		})
	}

	var readErr error
scheduling:
	for {
		records, done, err := readBatch(iterator, importOptions.BatchSize)
		if err != nil {
			readErr = err
			break
		}
		for shard, group := range groupByShard(records, shardWidth) {
			job := importJob{
				field:      field,
				format:     format,
				shard:      shard,
				shardWidth: shardWidth,
				records:    group,
				options:    importOptions,
			}
			select {
			case jobs <- job:
			case <-ctx.Done():
				break scheduling
			}
		}
		if done {
			break
		}
	}
	close(jobs)
	workErr := eg.Wait()
	if readErr != nil {
		return readErr
	}
	return workErr
}

func (c *Client) importShard(ctx context.Context, job importJob) error {
	field := job.field
	if !job.format.isValue() && !field.index.options.keys {
		sortRecords(job.records)
	}
	nodes, err := c.resolveImportNodes(ctx, field, job.shard)
	if err != nil {
		return err
	}
	path, data, err := c.encodeImport(job)
	if err != nil {
		return err
	}
	for _, node := range nodes {
		c.logf("import: shard %d -> %s%s", job.shard, node, path)
		resp, body, err := c.doNodeRequest(ctx, node, "POST", path, data, protobufHeaders())
		if err != nil {
			c.invalidateCoordinator()
			return errors.Wrapf(err, "importing shard %d to %s", job.shard, node)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return errors.Wrapf(newServerError(resp.StatusCode, body), "importing shard %d to %s", job.shard, node)
		}
	}
	return nil
}

// resolveImportNodes returns the nodes a shard group must be sent to. Keyed
// writes go through the coordinator so key translation stays consistent;
// everything else goes to the nodes owning the shard's fragments.
func (c *Client) resolveImportNodes(ctx context.Context, field *Field, shard uint64) ([]*URI, error) {
	if c.manualServerAddress {
		return []*URI{c.manualURI}, nil
	}
	if field.index.options.keys || field.options.keys {
		coordinator, err := c.fetchCoordinatorNode(ctx)
		if err != nil {
			return nil, err
		}
		return []*URI{coordinator}, nil
	}
	return c.fetchFragmentNodes(ctx, field.index.Name(), shard)
}

func (c *Client) encodeImport(job importJob) (path string, data []byte, err error) {
	field := job.field
	clearStr := ""
	if job.options.Clear {
		clearStr = "?clear=true"
	}
	switch {
	case job.format.isValue():
		data, err = encodeImportValueRequest(field, job.format, job.shard, job.records)
		path = fmt.Sprintf("/index/%s/field/%s/import%s", field.index.Name(), field.Name(), clearStr)
	case job.options.Roaring && job.format == rowIDColumnID && fastImportable(field.options.fieldType):
		data, err = encodeImportRoaringRequest(field, job.shard, job.shardWidth, job.records, job.options.Clear)
		path = fmt.Sprintf("/index/%s/field/%s/import-roaring/%d", field.index.Name(), field.Name(), job.shard)
	default:
		data, err = encodeImportRequest(field, job.format, job.shard, job.records)
		path = fmt.Sprintf("/index/%s/field/%s/import%s", field.index.Name(), field.Name(), clearStr)
	}
	return path, data, err
}

func fastImportable(fieldType FieldType) bool {
	return fieldType == FieldTypeSet || fieldType == FieldTypeBool || fieldType == FieldTypeTime
}

type uriJSON struct {
	Scheme string `json:"scheme"`
	Host   string `json:"host"`
	Port   uint16 `json:"port"`
}

func (u uriJSON) asURI() *URI {
	uri := DefaultURI()
	if u.Scheme != "" {
		uri.scheme = u.Scheme
	}
	if u.Host != "" {
		uri.host = u.Host
	}
	if u.Port != 0 {
		uri.port = u.Port
	}
	return uri
}

type fragmentNodeJSON struct {
	URI uriJSON `json:"uri"`
}

type statusJSON struct {
	Nodes []statusNodeJSON `json:"nodes"`
}

type statusNodeJSON struct {
	URI           uriJSON `json:"uri"`
	IsCoordinator bool    `json:"isCoordinator"`
}

// fetchFragmentNodes asks the cluster which nodes own the given shard of the
// given index.
func (c *Client) fetchFragmentNodes(ctx context.Context, indexName string, shard uint64) ([]*URI, error) {
	path := fmt.Sprintf("/internal/fragment/nodes?shard=%d&index=%s", shard, indexName)
	_, body, err := c.httpRequest(ctx, "GET", path, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "fetching fragment nodes")
	}
	var fragmentNodes []fragmentNodeJSON
	if err := json.Unmarshal(body, &fragmentNodes); err != nil {
		return nil, errors.Wrap(err, "unmarshaling fragment nodes")
	}
	if len(fragmentNodes) == 0 {
		return nil, ErrNoFragmentNodes
	}
	uris := make([]*URI, len(fragmentNodes))
	for i, node := range fragmentNodes {
		uris[i] = node.URI.asURI()
	}
	return uris, nil
}

// fetchCoordinatorNode returns the coordinator node of the cluster. The
// result is cached until invalidated by a failed request against it.
func (c *Client) fetchCoordinatorNode(ctx context.Context) (*URI, error) {
	c.coordinatorMu.Lock()
	defer c.coordinatorMu.Unlock()
	if c.coordinatorURI != nil {
		return c.coordinatorURI, nil
	}
	_, body, err := c.httpRequest(ctx, "GET", "/status", nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "fetching status")
	}
	var status statusJSON
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, errors.Wrap(err, "unmarshaling status")
	}
	for _, node := range status.Nodes {
		if node.IsCoordinator {
			c.coordinatorURI = node.URI.asURI()
			return c.coordinatorURI, nil
		}
	}
	return nil, ErrCoordinatorNotFound
}

func (c *Client) invalidateCoordinator() {
	c.coordinatorMu.Lock()
	c.coordinatorURI = nil
	c.coordinatorMu.Unlock()
}

// httpRequest sends a request to the cluster, trying the next usable host
// when one fails. The response body is fully read. Non-2xx responses are
// returned as *ServerError.
func (c *Client) httpRequest(ctx context.Context, method string, path string, data []byte, headers map[string]string) (*http.Response, []byte, error) {
	for i := 0; i < maxHosts; i++ {
		host := c.host()
		if host == nil {
			return nil, nil, ErrEmptyCluster
		}
		resp, body, err := c.doNodeRequest(ctx, host, method, path, data, headers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			c.logf("removed %s from the cluster: %v", host, err)
			c.cluster.RemoveHost(host)
			c.clearCurrentHost()
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, nil, newServerError(resp.StatusCode, body)
		}
		return resp, body, nil
	}
	return nil, nil, ErrTriedMaxHosts
}

// doNodeRequest sends a single request to the given node, bypassing host
// rotation.
func (c *Client) doNodeRequest(ctx context.Context, host *URI, method string, path string, data []byte, headers map[string]string) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, host.Normalize()+path, bytes.NewReader(data))
	if err != nil {
		return nil, nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("User-Agent", "go-pilosa/"+Version)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrap(err, "reading response body")
	}
	return resp, body, nil
}

func (c *Client) host() *URI {
	if c.manualServerAddress {
		return c.manualURI
	}
	c.currentMu.Lock()
	defer c.currentMu.Unlock()
	if c.currentHost == nil {
		c.currentHost = c.cluster.Host()
	}
	return c.currentHost
}

func (c *Client) clearCurrentHost() {
	c.currentMu.Lock()
	c.currentHost = nil
	c.currentMu.Unlock()
}

func (c *Client) logf(format string, v ...interface{}) {
	if c.logger != nil {
		c.logger.Printf(format, v...)
	}
}

func protobufHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/x-protobuf",
		"Accept":       "application/x-protobuf",
	}
}

type schemaJSON struct {
	Indexes []indexInfoJSON `json:"indexes"`
}

type indexInfoJSON struct {
	Name       string           `json:"name"`
	Options    indexOptionsJSON `json:"options"`
	ShardWidth uint64           `json:"shardWidth"`
	Fields     []fieldInfoJSON  `json:"fields"`
}

type indexOptionsJSON struct {
	Keys           bool `json:"keys"`
	TrackExistence bool `json:"trackExistence"`
}

type fieldInfoJSON struct {
	Name    string           `json:"name"`
	Options fieldOptionsJSON `json:"options"`
}

type fieldOptionsJSON struct {
	Type        string `json:"type"`
	TimeQuantum string `json:"timeQuantum"`
	CacheType   string `json:"cacheType"`
	CacheSize   int    `json:"cacheSize"`
	Min         int64  `json:"min"`
	Max         int64  `json:"max"`
	Keys        bool   `json:"keys"`
}

func (fo fieldOptionsJSON) asOptions() []FieldOption {
	options := []FieldOption{OptFieldKeys(fo.Keys)}
	switch FieldType(fo.Type) {
	case FieldTypeInt:
		options = append(options, OptFieldTypeInt(fo.Min, fo.Max))
	case FieldTypeTime:
		options = append(options, OptFieldTypeTime(TimeQuantum(fo.TimeQuantum)))
	case FieldTypeMutex:
		options = append(options, OptFieldTypeMutex(CacheType(fo.CacheType), fo.CacheSize))
	case FieldTypeBool:
		options = append(options, OptFieldTypeBool())
	default:
		options = append(options, OptFieldTypeSet(CacheType(fo.CacheType), fo.CacheSize))
	}
	return options
}
