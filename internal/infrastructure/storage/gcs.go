// Package storage adaptadores de almacenamiento de objetos para comprobantes fotográficos.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/jhoicas/stock-outlets-api/internal/application/ports"
	"github.com/jhoicas/stock-outlets-api/internal/domain"
	"github.com/jhoicas/stock-outlets-api/internal/infrastructure/metrics"
	"github.com/jhoicas/stock-outlets-api/pkg/config"
)

var _ ports.ObjectStorage = (*GCS)(nil)

// GCS sube comprobantes a un bucket de Google Cloud Storage.
type GCS struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
	maxWidth      int
	log           zerolog.Logger
}

// NewGCS crea el cliente. Sin CredentialsFile usa Application Default Credentials.
func NewGCS(ctx context.Context, cfg config.StorageConfig, log zerolog.Logger) (*GCS, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}
	if _, err := client.Bucket(cfg.Bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("gcs bucket %q no accesible: %w", cfg.Bucket, err)
	}
	return &GCS{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
		maxWidth:      cfg.MaxImageWidth,
		log:           log.With().Str("component", "gcs_storage").Logger(),
	}, nil
}

// Upload reduce la foto y la guarda como folder/AAAA/MM/<uuid>.jpg; devuelve la URL pública.
func (g *GCS) Upload(ctx context.Context, folder string, data []byte) (string, error) {
	img, err := PrepareImage(data, g.maxWidth)
	if err != nil {
		metrics.ProofUploadsTotal.WithLabelValues("rejected").Inc()
		return "", err
	}

	name := ObjectName(folder, time.Now())
	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "image/jpeg"
	w.CacheControl = "public, max-age=31536000"
	if _, err := w.Write(img); err != nil {
		_ = w.Close()
		return "", g.failed(name, err)
	}
	if err := w.Close(); err != nil {
		return "", g.failed(name, err)
	}

	metrics.ProofUploadsTotal.WithLabelValues("ok").Inc()
	g.log.Debug().Str("object", name).Int("bytes", len(img)).Msg("comprobante subido")
	return g.publicBaseURL + "/" + g.bucket + "/" + name, nil
}

func (g *GCS) failed(name string, err error) error {
	metrics.ProofUploadsTotal.WithLabelValues("failed").Inc()
	g.log.Error().Err(err).Str("object", name).Msg("fallo al subir comprobante")
	return fmt.Errorf("%w: %v", domain.ErrUploadFailed, err)
}

// Close libera el cliente.
func (g *GCS) Close() error {
	return g.client.Close()
}

// ObjectName ruta del objeto: folder/AAAA/MM/<uuid>.jpg.
func ObjectName(folder string, now time.Time) string {
	return path.Join(folder, now.UTC().Format("2006/01"), uuid.NewString()+".jpg")
}
