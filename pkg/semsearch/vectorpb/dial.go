package vectorpb

import (
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
)

// KeepaliveDialOptions returns the multiplexed-HTTP/2 keepalive settings
// shared by the embedding and index backend connections: a keepalive
// ping every 60s and a 30s ping timeout. Both connections reuse one TCP
// connection with multiple concurrent streams rather than dialing per
// request.
func KeepaliveDialOptions() []grpc.DialOption {
	return []grpc.DialOption{
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                60 * time.Second,
			Timeout:             30 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.WaitForReady(false)),
	}
}
