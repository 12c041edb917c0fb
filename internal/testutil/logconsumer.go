// Package testutil contains helpers for integration tests running dependencies in containers
package testutil

import (
	"testing"

	"github.com/testcontainers/testcontainers-go"
)

// TLogConsumer forwards container logs to testing.T log prefixed by container name
type TLogConsumer struct {
	*testing.T
	Prefix string
}

func (c *TLogConsumer) Accept(log testcontainers.Log) {
	c.Helper()
	c.Logf("%s [%s]: %s", c.Prefix, log.LogType, log.Content)
}
