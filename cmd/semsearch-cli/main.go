// Command semsearch-cli is a thin administrative client for operational
// tasks the HTTP API also exposes -- reload and info -- grounded on the
// config-diff pattern of status endpoints elsewhere in this codebase
// family.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/vectorgw/semsearch/pkg/semsearch/indexclient"
	"github.com/vectorgw/semsearch/pkg/semsearch/resilience"
	"github.com/vectorgw/semsearch/pkg/semsearch/vectorpb"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:9090", "Index backend sidecar host:port.")
	shardKey := flag.String("shard-key", "", "Shard to target; empty means all shards.")
	timeout := flag.Duration("timeout", 10*time.Second, "Command deadline.")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: semsearch-cli [-addr host:port] [-shard-key key] <reload|info>")
		os.Exit(2)
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	policy := resilience.New(resilience.DefaultIndexConfig(), nil, nil)
	client := indexclient.New(vectorpb.NewIndexBackendClient(conn), policy)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	switch flag.Arg(0) {
	case "reload":
		runReload(ctx, client, *shardKey)
	case "info":
		runInfo(ctx, client, *shardKey)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
		os.Exit(2)
	}
}

func runReload(ctx context.Context, client *indexclient.Client, shardKey string) {
	var (
		resp *vectorpb.ReloadIndexResponse
		err  error
	)
	if shardKey == "" {
		resp, err = client.ReloadAll(ctx)
	} else {
		resp, err = client.ReloadIndex(ctx, shardKey)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "reload failed: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(map[string]any{
		"success":        resp.Success,
		"reloadedShards": resp.ReloadedShards,
		"message":        resp.Message,
	})
}

func runInfo(ctx context.Context, client *indexclient.Client, shardKey string) {
	shards, err := client.GetIndexInfo(ctx, shardKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "info failed: %v\n", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"shard", "vectors", "dimension", "index type", "trained", "size bytes"})
	for _, s := range shards {
		t.AppendRow(table.Row{s.ShardKey, s.TotalVectors, s.Dimension, s.IndexType, s.IsTrained, s.IndexSizeBytes})
	}
	t.Render()
}
