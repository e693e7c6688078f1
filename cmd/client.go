package cmd

import (
	"time"

	"github.com/jon4hz/safebadge/internal/client"
	"github.com/jon4hz/safebadge/internal/config"
)

const clientTimeout = 10 * time.Second

func newClient(cfg *config.Config) *client.Client {
	return client.New(cfg.ServerURL, clientTimeout)
}
