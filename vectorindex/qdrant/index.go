// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package qdrant implements a vector index backed by a Qdrant server.
//
// Points use numeric IDs derived from chunk identity (core.ChunkID), so
// re-ingesting a source overwrites its points. Chunk text and origin are
// carried in the point payload.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/poiesic/askit/core"
	pb "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
)

// Payload field names.
const (
	payloadSourceID = "source_id"
	payloadIndex    = "chunk_index"
	payloadText     = "text"
)

// Index is a Qdrant-backed vector index.
type Index struct {
	conn        *grpc.ClientConn
	points      pb.PointsClient
	collections pb.CollectionsClient
	vectorDim   int
	logger      *slog.Logger

	mu      sync.Mutex
	ensured map[string]bool
}

// OpenIndex connects to a Qdrant server. vectorDim is used when a missing
// collection has to be created; pass 0 to derive it from the first upsert.
func OpenIndex(host string, port, vectorDim int) (*Index, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("qdrant connect: %w", err)
	}
	return &Index{
		conn:        conn,
		points:      pb.NewPointsClient(conn),
		collections: pb.NewCollectionsClient(conn),
		vectorDim:   vectorDim,
		logger:      slog.Default().With("component", "qdrant-index"),
		ensured:     make(map[string]bool),
	}, nil
}

// ensureCollection creates the collection if the server does not have it.
// Ensured collections are cached for the lifetime of the index.
func (idx *Index) ensureCollection(ctx context.Context, collection string, dim int) error {
	idx.mu.Lock()
	done := idx.ensured[collection]
	idx.mu.Unlock()
	if done {
		return nil
	}

	exists, err := idx.collections.CollectionExists(ctx, &pb.CollectionExistsRequest{
		CollectionName: collection,
	})
	if err != nil {
		return fmt.Errorf("qdrant collection check: %w", err)
	}

	if exists.GetResult() == nil || !exists.GetResult().GetExists() {
		if dim <= 0 {
			return fmt.Errorf("cannot create collection %q: unknown vector dimension", collection)
		}
		_, err := idx.collections.Create(ctx, &pb.CreateCollection{
			CollectionName: collection,
			VectorsConfig: &pb.VectorsConfig{
				Config: &pb.VectorsConfig_Params{
					Params: &pb.VectorParams{
						Size:     uint64(dim),
						Distance: pb.Distance_Cosine,
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("qdrant collection create: %w", err)
		}
		idx.logger.Info("created collection", "collection", collection, "dim", dim)
	}

	idx.mu.Lock()
	idx.ensured[collection] = true
	idx.mu.Unlock()
	return nil
}

// Upsert writes chunks as points, overwriting points with the same ID.
func (idx *Index) Upsert(ctx context.Context, collection string, chunks []core.DocumentChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	dim := idx.vectorDim
	if dim <= 0 {
		dim = len(chunks[0].Vector)
	}
	if err := idx.ensureCollection(ctx, collection, dim); err != nil {
		return err
	}

	points := make([]*pb.PointStruct, len(chunks))
	for i, c := range chunks {
		points[i] = &pb.PointStruct{
			Id: &pb.PointId{PointIdOptions: &pb.PointId_Num{Num: uint64(core.ChunkID(c.SourceID, c.Index))}},
			Vectors: &pb.Vectors{VectorsOptions: &pb.Vectors_Vector{Vector: &pb.Vector{Data: c.Vector}}},
			Payload: map[string]*pb.Value{
				payloadSourceID: {Kind: &pb.Value_StringValue{StringValue: c.SourceID}},
				payloadIndex:    {Kind: &pb.Value_IntegerValue{IntegerValue: int64(c.Index)}},
				payloadText:     {Kind: &pb.Value_StringValue{StringValue: c.Text}},
			},
		}
	}

	wait := true
	_, err := idx.points.Upsert(ctx, &pb.UpsertPoints{
		CollectionName: collection,
		Points:         points,
		Wait:           &wait,
	})
	if err != nil {
		return fmt.Errorf("qdrant upsert: %w", err)
	}
	return nil
}

// DeleteBySource removes all points whose payload names sourceID.
// Qdrant does not report how many points a filter delete removed, so the
// count is -1 on success. A collection that does not exist has nothing
// to delete and reports 0.
func (idx *Index) DeleteBySource(ctx context.Context, collection, sourceID string) (int, error) {
	wait := true
	_, err := idx.points.Delete(ctx, &pb.DeletePoints{
		CollectionName: collection,
		Wait:           &wait,
		Points: &pb.PointsSelector{
			PointsSelectorOneOf: &pb.PointsSelector_Filter{
				Filter: &pb.Filter{
					Must: []*pb.Condition{
						{
							ConditionOneOf: &pb.Condition_Field{
								Field: &pb.FieldCondition{
									Key: payloadSourceID,
									Match: &pb.Match{
										MatchValue: &pb.Match_Keyword{Keyword: sourceID},
									},
								},
							},
						},
					},
				},
			},
		},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("qdrant delete: %w", err)
	}
	return -1, nil
}

// Search returns up to k nearest points, best first.
func (idx *Index) Search(ctx context.Context, collection string, vector []float32, k int) ([]core.Match, error) {
	if k <= 0 {
		return nil, nil
	}

	resp, err := idx.points.Search(ctx, &pb.SearchPoints{
		CollectionName: collection,
		Vector:         vector,
		Limit:          uint64(k),
		WithPayload:    &pb.WithPayloadSelector{SelectorOptions: &pb.WithPayloadSelector_Enable{Enable: true}},
	})
	if err != nil {
		// A collection that has never been ingested into does not exist
		// on the server yet; that is an empty index, not a failure.
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("qdrant search: %w", err)
	}

	matches := make([]core.Match, len(resp.Result))
	for i, pt := range resp.Result {
		m := core.Match{Score: pt.Score}
		for key, value := range pt.Payload {
			switch key {
			case payloadSourceID:
				m.SourceID = value.GetStringValue()
			case payloadIndex:
				m.Index = int(value.GetIntegerValue())
			case payloadText:
				m.Text = value.GetStringValue()
			}
		}
		matches[i] = m
	}
	return matches, nil
}

// Close closes the gRPC connection.
func (idx *Index) Close() error {
	return idx.conn.Close()
}
