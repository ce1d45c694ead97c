// Package catalog loads the demo product catalog, either from the document
// embedded in the binary or from a blob bucket.
package catalog

import (
	"bytes"
	"context"
	_ "embed"
	"log/slog"

	"luxe/config"
	"luxe/internal/domain/entity"
	"luxe/internal/domain/service"

	"github.com/pkg/errors"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob" // file:// catalogs
	_ "gocloud.dev/blob/gcsblob"  // gs:// catalogs
	_ "gocloud.dev/blob/memblob"  // mem:// catalogs
	"gopkg.in/yaml.v3"
)

const defaultKey = "catalog.yaml"

//go:embed demo_catalog.yaml
var demoCatalog []byte

type document struct {
	Products []entity.Product `yaml:"products"`
}

type embeddedSource struct{}

// NewEmbeddedSource returns the catalog compiled into the binary.
func NewEmbeddedSource() service.CatalogSource {
	return embeddedSource{}
}

func (embeddedSource) Load(_ context.Context) ([]entity.Product, error) {
	return Parse(demoCatalog)
}

type blobSource struct {
	url string
	key string
}

// NewBlobSource reads the catalog object key from the bucket at url
// (file:///dir, gs://bucket, mem://).
func NewBlobSource(url, key string) service.CatalogSource {
	if key == "" {
		key = defaultKey
	}

	return &blobSource{url: url, key: key}
}

func (s *blobSource) Load(ctx context.Context) ([]entity.Product, error) {
	bucket, err := blob.OpenBucket(ctx, s.url)
	if err != nil {
		return nil, errors.Wrapf(err, "open catalog bucket %s", s.url)
	}
	defer bucket.Close()

	data, err := bucket.ReadAll(ctx, s.key)
	if err != nil {
		return nil, errors.Wrapf(err, "read catalog %s", s.key)
	}

	return Parse(data)
}

// NewSource picks the catalog source named in the configuration.
func NewSource(cfg *config.Config, logger *slog.Logger) service.CatalogSource {
	if cfg.Catalog == nil || cfg.Catalog.Source == "" {
		logger.Info("Using embedded demo catalog")

		return NewEmbeddedSource()
	}

	logger.Info("Using blob catalog",
		slog.String("source", cfg.Catalog.Source),
		slog.String("key", cfg.Catalog.Key),
	)

	return NewBlobSource(cfg.Catalog.Source, cfg.Catalog.Key)
}

// Parse decodes a YAML catalog document. Unknown fields are rejected.
func Parse(data []byte) ([]entity.Product, error) {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var doc document
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	if len(doc.Products) == 0 {
		return nil, errors.New("catalog has no products")
	}

	return doc.Products, nil
}
