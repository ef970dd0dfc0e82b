// Package storage builds the artifact archive's storage provider from config.
package storage

import (
	"context"
	"fmt"

	"convertd/internal/adapters/storage/gdrive"
	"convertd/internal/adapters/storage/localfs"
	"convertd/internal/config"
	"convertd/internal/ports"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// NewProvider returns the provider named by cfg.Provider, or nil when
// archiving is disabled.
func NewProvider(ctx context.Context, cfg config.ArchiveConfig) (ports.StorageProvider, error) {
	switch cfg.Provider {
	case "":
		return nil, nil

	case "localfs":
		if cfg.LocalRoot == "" {
			return nil, fmt.Errorf("localfs archive needs a root directory")
		}
		return localfs.New(cfg.LocalRoot), nil

	case "gdrive":
		return newGDriveProvider(ctx, cfg)

	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}

func newGDriveProvider(ctx context.Context, cfg config.ArchiveConfig) (ports.StorageProvider, error) {
	conf := &oauth2.Config{
		ClientID:     cfg.GDriveClientID,
		ClientSecret: cfg.GDriveClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}

	tok := &oauth2.Token{RefreshToken: cfg.GDriveRefreshToken}
	httpClient := conf.Client(ctx, tok)

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gdrive service: %w", err)
	}

	return gdrive.NewClient(srv, cfg.GDriveFolderID), nil
}
