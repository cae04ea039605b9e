// Package firestore implements the storefront repositories on Cloud
// Firestore.
package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names.
const (
	productsCollection  = "products"
	ordersCollection    = "orders"
	inventoryCollection = "inventory"
	usersCollection     = "users"
)

// Config selects the Firestore project and credentials.
type Config struct {
	ProjectID       string
	CredentialsFile string
	// EmulatorHost, when set, points the client at a local emulator.
	EmulatorHost string
}

// NewClient opens a Firestore client. With no credentials file the
// application default credentials are used.
func NewClient(ctx context.Context, cfg Config) (*firestore.Client, error) {
	if cfg.EmulatorHost != "" {
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("failed to set emulator host: %w", err)
		}
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}

// Ping reads a single product document to confirm the backend answers.
func Ping(ctx context.Context, client *firestore.Client) error {
	it := client.Collection(productsCollection).Limit(1).Documents(ctx)
	defer it.Stop()
	if _, err := it.Next(); err != nil && !isDone(err) {
		return fmt.Errorf("firestore ping failed: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// notFound maps a missing document to sentinel and passes everything else
// through so connectivity failures stay recognisable.
func notFound(err error, sentinel error) error {
	if isNotFound(err) {
		return sentinel
	}
	return err
}
