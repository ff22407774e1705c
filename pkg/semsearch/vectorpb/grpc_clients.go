package vectorpb

import (
	"context"

	"google.golang.org/grpc"
)

// EmbeddingBackendClient is the gRPC client for the embedding sidecar.
type EmbeddingBackendClient interface {
	GenerateEmbedding(ctx context.Context, in *EmbedRequest, opts ...grpc.CallOption) (*EmbedResponse, error)
}

type embeddingBackendClient struct {
	cc grpc.ClientConnInterface
}

// NewEmbeddingBackendClient builds a client bound to an existing connection.
func NewEmbeddingBackendClient(cc grpc.ClientConnInterface) EmbeddingBackendClient {
	return &embeddingBackendClient{cc}
}

func (c *embeddingBackendClient) GenerateEmbedding(ctx context.Context, in *EmbedRequest, opts ...grpc.CallOption) (*EmbedResponse, error) {
	out := new(EmbedResponse)
	err := c.cc.Invoke(ctx, "/vectorpb.EmbeddingBackend/GenerateEmbedding", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// IndexBackendClient is the gRPC client for the ANN index sidecar.
type IndexBackendClient interface {
	SearchIndex(ctx context.Context, in *SearchIndexRequest, opts ...grpc.CallOption) (*SearchIndexResponse, error)
	GetIndexInfo(ctx context.Context, in *GetIndexInfoRequest, opts ...grpc.CallOption) (*GetIndexInfoResponse, error)
	ReloadIndex(ctx context.Context, in *ReloadIndexRequest, opts ...grpc.CallOption) (*ReloadIndexResponse, error)
}

type indexBackendClient struct {
	cc grpc.ClientConnInterface
}

// NewIndexBackendClient builds a client bound to an existing connection.
func NewIndexBackendClient(cc grpc.ClientConnInterface) IndexBackendClient {
	return &indexBackendClient{cc}
}

func (c *indexBackendClient) SearchIndex(ctx context.Context, in *SearchIndexRequest, opts ...grpc.CallOption) (*SearchIndexResponse, error) {
	out := new(SearchIndexResponse)
	err := c.cc.Invoke(ctx, "/vectorpb.IndexBackend/SearchIndex", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *indexBackendClient) GetIndexInfo(ctx context.Context, in *GetIndexInfoRequest, opts ...grpc.CallOption) (*GetIndexInfoResponse, error) {
	out := new(GetIndexInfoResponse)
	err := c.cc.Invoke(ctx, "/vectorpb.IndexBackend/GetIndexInfo", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *indexBackendClient) ReloadIndex(ctx context.Context, in *ReloadIndexRequest, opts ...grpc.CallOption) (*ReloadIndexResponse, error) {
	out := new(ReloadIndexResponse)
	err := c.cc.Invoke(ctx, "/vectorpb.IndexBackend/ReloadIndex", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}
