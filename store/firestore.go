package store

import (
	"context"
	"log/slog"
	"os"

	"cloud.google.com/go/compute/metadata"
	"cloud.google.com/go/firestore"
	"github.com/careermate/messenger/log"
)

// Firestore implements Store on Cloud Firestore. Live queries are backed by
// the client's snapshot listeners.
type Firestore struct {
	client *firestore.Client
}

func NewFirestore(ctx context.Context) (*Firestore, error) {
	projectID := os.Getenv("GOOGLE_CLOUD_PROJECT")
	if projectID == "" {
		var err error
		projectID, err = metadata.ProjectIDWithContext(ctx)
		if err != nil {
			return nil, err
		}
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return &Firestore{client: client}, nil
}

func (f *Firestore) Close() error {
	return f.client.Close()
}

func (f *Firestore) build(q Query) firestore.Query {
	fq := f.client.Collection(q.Collection).Query
	for _, flt := range q.Where {
		fq = fq.Where(flt.Path, string(flt.Op), flt.Value)
	}
	if len(q.WhereAny) > 0 {
		filters := make([]firestore.EntityFilter, 0, len(q.WhereAny))
		for _, flt := range q.WhereAny {
			filters = append(filters, firestore.PropertyFilter{
				Path:     flt.Path,
				Operator: string(flt.Op),
				Value:    flt.Value,
			})
		}
		fq = fq.WhereEntity(firestore.OrFilter{Filters: filters})
	}
	if q.OrderBy != "" {
		fq = fq.OrderBy(q.OrderBy, firestore.Asc)
	}
	return fq
}

func (f *Firestore) Documents(ctx context.Context, q Query) ([]Document, error) {
	snaps, err := f.build(q).Documents(ctx).GetAll()
	if err != nil {
		return nil, err
	}
	return wrapSnapshots(snaps), nil
}

func (f *Firestore) Subscribe(ctx context.Context, q Query, fn func([]Document)) (CancelFunc, error) {
	subCtx, cancel := context.WithCancel(ctx)
	iter := f.build(q).Snapshots(subCtx)
	logger := log.LoggerFromContext(ctx)

	go func() {
		for {
			snap, err := iter.Next()
			if err != nil {
				if subCtx.Err() == nil {
					logger.Error("snapshot listener stopped", slog.String("errorMsg", err.Error()))
				}
				return
			}
			snaps, err := snap.Documents.GetAll()
			if err != nil {
				logger.Error("error while reading snapshot documents", slog.String("errorMsg", err.Error()))
				continue
			}
			fn(wrapSnapshots(snaps))
		}
	}()

	return func() {
		cancel()
		iter.Stop()
	}, nil
}

func (f *Firestore) Append(ctx context.Context, collection string, record any) (string, error) {
	ref, _, err := f.client.Collection(collection).Add(ctx, record)
	if err != nil {
		return "", err
	}
	return ref.ID, nil
}

func (f *Firestore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	_, err := f.client.Collection(collection).Doc(id).Set(ctx, fields, firestore.MergeAll)
	return err
}

type fsDocument struct {
	snap *firestore.DocumentSnapshot
}

func (d fsDocument) ID() string {
	return d.snap.Ref.ID
}

func (d fsDocument) DataTo(v any) error {
	return d.snap.DataTo(v)
}

func wrapSnapshots(snaps []*firestore.DocumentSnapshot) []Document {
	docs := make([]Document, len(snaps))
	for i, snap := range snaps {
		docs[i] = fsDocument{snap: snap}
	}
	return docs
}
