package counter

import (
	"context"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/webhookx-io/hookdash/config/modules"
	"google.golang.org/api/option"
)

// FirestoreWriter merges a server-side increment into {collection}/{endpointId}
type FirestoreWriter struct {
	client     *firestore.Client
	collection string
	field      string
}

func NewFirestoreWriter(client *firestore.Client, collection string, field string) *FirestoreWriter {
	return &FirestoreWriter{
		client:     client,
		collection: collection,
		field:      field,
	}
}

func (w *FirestoreWriter) Increment(ctx context.Context, endpointId string, delta int64) error {
	_, err := w.client.Collection(w.collection).Doc(endpointId).Set(ctx, incrementUpdate(w.field, delta), firestore.MergeAll)
	return err
}

func incrementUpdate(field string, delta int64) map[string]interface{} {
	return map[string]interface{}{
		field: firestore.Increment(delta),
	}
}

func NewFirestoreClient(ctx context.Context, cfg modules.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	var conf *firebase.Config
	if cfg.ProjectID != "" {
		conf = &firebase.Config{ProjectID: cfg.ProjectID}
	}
	app, err := firebase.NewApp(ctx, conf, opts...)
	if err != nil {
		return nil, err
	}
	return app.Firestore(ctx)
}
