package main

import (
	"github.com/rise-and-shine/docbridge/docserver"
	"github.com/rise-and-shine/docbridge/editor"
	"github.com/rise-and-shine/docbridge/filestore/gcswr"
	"github.com/rise-and-shine/docbridge/filestore/miniowr"
	"github.com/rise-and-shine/docbridge/http/server"
	"github.com/rise-and-shine/docbridge/observability/alert"
	"github.com/rise-and-shine/docbridge/observability/logger"
	"github.com/rise-and-shine/docbridge/observability/tracing"
)

const (
	driverMinio = "minio"
	driverGCS   = "gcs"
)

// Config is the service configuration read from ./config/${ENVIRONMENT}.yaml.
type Config struct {
	Service struct {
		Name    string `yaml:"name" default:"docbridge"`
		Version string `yaml:"version" default:"dev"`
	} `yaml:"service"`

	Logger    logger.Config    `yaml:"logger"`
	HTTP      server.Config    `yaml:"http"`
	Tracing   tracing.Config   `yaml:"tracing"`
	Alert     alert.Config     `yaml:"alert"`
	Storage   StorageConfig    `yaml:"storage"`
	DocServer docserver.Config `yaml:"docserver"`
	Editor    editor.Config    `yaml:"editor"`
}

// StorageConfig selects the object storage backend.
type StorageConfig struct {
	Driver string         `yaml:"driver" validate:"oneof=minio gcs" default:"minio"`
	Minio  miniowr.Config `yaml:"minio"`
	GCS    gcswr.Config   `yaml:"gcs"`
}
