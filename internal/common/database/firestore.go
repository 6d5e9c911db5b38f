package database

import (
	"context"
	"fmt"
	"os"

	"chat-assistant/internal/common/config"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
)

// NewFirestore connects to the project in cfg. When an emulator host is configured the
// client talks to it without credentials.
func NewFirestore(ctx context.Context, cfg config.FirestoreConfig) (*firestore.Client, error) {
	var opts []option.ClientOption
	if cfg.EmulatorHost != "" {
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("failed to set emulator host: %w", err)
		}
	} else if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := firestore.NewClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	return client, nil
}
