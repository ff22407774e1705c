// Package vectorpb holds the wire messages and gRPC client stubs for the
// two sidecar services the gateway depends on: the embedding backend and
// the ANN index backend. The shapes mirror what protoc-gen-go-grpc would
// emit, hand-maintained here because the .proto sources live with the
// backend processes, not this repo.
package vectorpb

import "fmt"

// EmbedRequest is the request message for EmbeddingBackend.GenerateEmbedding.
type EmbedRequest struct {
	Text      string `protobuf:"bytes,1,opt,name=text,proto3"`
	ModelName string `protobuf:"bytes,2,opt,name=model_name,proto3"`
}

func (*EmbedRequest) Reset()         {}
func (m *EmbedRequest) String() string { return fmt.Sprintf("EmbedRequest{text_len=%d,model=%s}", len(m.Text), m.ModelName) }
func (*EmbedRequest) ProtoMessage()  {}

// EmbedResponse is the response message for EmbeddingBackend.GenerateEmbedding.
type EmbedResponse struct {
	Vector    []float32 `protobuf:"fixed32,1,rep,packed,name=vector,proto3"`
	Dimension int32     `protobuf:"varint,2,opt,name=dimension,proto3"`
	ModelName string    `protobuf:"bytes,3,opt,name=model_name,proto3"`
	LatencyMs int64     `protobuf:"varint,4,opt,name=latency_ms,proto3"`
}

func (*EmbedResponse) Reset()         {}
func (m *EmbedResponse) String() string { return fmt.Sprintf("EmbedResponse{dim=%d}", m.Dimension) }
func (*EmbedResponse) ProtoMessage()  {}

// SearchIndexRequest is the request message for IndexBackend.SearchIndex.
type SearchIndexRequest struct {
	Vector   []float32 `protobuf:"fixed32,1,rep,packed,name=vector,proto3"`
	TopK     int32     `protobuf:"varint,2,opt,name=top_k,proto3"`
	ShardKey string    `protobuf:"bytes,3,opt,name=shard_key,proto3"`
	Nprobe   int32     `protobuf:"varint,4,opt,name=nprobe,proto3"`
}

func (*SearchIndexRequest) Reset()         {}
func (m *SearchIndexRequest) String() string {
	return fmt.Sprintf("SearchIndexRequest{topK=%d,shard=%s,nprobe=%d}", m.TopK, m.ShardKey, m.Nprobe)
}
func (*SearchIndexRequest) ProtoMessage() {}

// Hit is a single ANN search result.
type Hit struct {
	Id           int64   `protobuf:"varint,1,opt,name=id,proto3"`
	Score        float32 `protobuf:"fixed32,2,opt,name=score,proto3"`
	MetadataJson string  `protobuf:"bytes,3,opt,name=metadata_json,proto3"`
}

// SearchIndexResponse is the response message for IndexBackend.SearchIndex.
type SearchIndexResponse struct {
	Hits            []*Hit `protobuf:"bytes,1,rep,name=hits,proto3"`
	ShardKey        string `protobuf:"bytes,2,opt,name=shard_key,proto3"`
	SearchLatencyMs int64  `protobuf:"varint,3,opt,name=search_latency_ms,proto3"`
}

func (*SearchIndexResponse) Reset()         {}
func (m *SearchIndexResponse) String() string {
	return fmt.Sprintf("SearchIndexResponse{hits=%d,shard=%s}", len(m.Hits), m.ShardKey)
}
func (*SearchIndexResponse) ProtoMessage() {}

// GetIndexInfoRequest is the request message for IndexBackend.GetIndexInfo.
type GetIndexInfoRequest struct {
	ShardKey string `protobuf:"bytes,1,opt,name=shard_key,proto3"`
}

func (*GetIndexInfoRequest) Reset()         {}
func (m *GetIndexInfoRequest) String() string { return fmt.Sprintf("GetIndexInfoRequest{shard=%s}", m.ShardKey) }
func (*GetIndexInfoRequest) ProtoMessage()  {}

// ShardDescriptor describes one shard of the index, as reported by the backend.
type ShardDescriptor struct {
	ShardKey       string `protobuf:"bytes,1,opt,name=shard_key,proto3"`
	TotalVectors   int64  `protobuf:"varint,2,opt,name=total_vectors,proto3"`
	Dimension      int32  `protobuf:"varint,3,opt,name=dimension,proto3"`
	IndexType      string `protobuf:"bytes,4,opt,name=index_type,proto3"`
	IsTrained      bool   `protobuf:"varint,5,opt,name=is_trained,proto3"`
	IndexSizeBytes int64  `protobuf:"varint,6,opt,name=index_size_bytes,proto3"`
}

// GetIndexInfoResponse is the response message for IndexBackend.GetIndexInfo.
type GetIndexInfoResponse struct {
	Shards []*ShardDescriptor `protobuf:"bytes,1,rep,name=shards,proto3"`
}

func (*GetIndexInfoResponse) Reset()         {}
func (m *GetIndexInfoResponse) String() string { return fmt.Sprintf("GetIndexInfoResponse{shards=%d}", len(m.Shards)) }
func (*GetIndexInfoResponse) ProtoMessage()  {}

// ReloadIndexRequest is the request message for IndexBackend.ReloadIndex.
type ReloadIndexRequest struct {
	ShardKey string `protobuf:"bytes,1,opt,name=shard_key,proto3"`
}

func (*ReloadIndexRequest) Reset()         {}
func (m *ReloadIndexRequest) String() string { return fmt.Sprintf("ReloadIndexRequest{shard=%s}", m.ShardKey) }
func (*ReloadIndexRequest) ProtoMessage()  {}

// ReloadIndexResponse is the response message for IndexBackend.ReloadIndex.
type ReloadIndexResponse struct {
	Success        bool     `protobuf:"varint,1,opt,name=success,proto3"`
	ReloadedShards []string `protobuf:"bytes,2,rep,name=reloaded_shards,proto3"`
	Message        string   `protobuf:"bytes,3,opt,name=message,proto3"`
}

func (*ReloadIndexResponse) Reset()         {}
func (m *ReloadIndexResponse) String() string { return fmt.Sprintf("ReloadIndexResponse{success=%v}", m.Success) }
func (*ReloadIndexResponse) ProtoMessage()  {}
