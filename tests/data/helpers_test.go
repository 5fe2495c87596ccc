// Package data runs the storage manager and the services above it against a
// real SurrealDB container.
package data

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bobmcallan/advisor/internal/common"
	"github.com/bobmcallan/advisor/internal/storage"
	tcommon "github.com/bobmcallan/advisor/tests/common"
)

// testConfig returns a config selecting the shared SurrealDB container with a
// unique database per test for isolation.
func testConfig(t *testing.T) *common.Config {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping SurrealDB integration test in short mode")
	}

	sc := tcommon.StartSurrealDB(t)

	cfg := common.NewDefaultConfig()
	cfg.Environment = "test"
	cfg.Storage.Backend = storage.BackendSurrealDB
	cfg.Storage.SurrealDB = common.SurrealDBConfig{
		Address:   sc.Address(),
		Namespace: "advisor_data_test",
		Database:  fmt.Sprintf("d_%s_%d", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()), time.Now().UnixNano()%100000),
		Username:  "root",
		Password:  "root",
	}
	cfg.Auth.LoginLatency = "0s"
	cfg.Auth.SignupLatency = "0s"
	cfg.Logging.Outputs = nil
	return cfg
}

// testManager creates a storage manager on the test database.
func testManager(t *testing.T, cfg *common.Config) *storage.Manager {
	t.Helper()

	mgr, err := storage.NewManager(testContext(), common.NewSilentLogger(), cfg, nil)
	if err != nil {
		t.Fatalf("create storage manager: %v", err)
	}
	t.Cleanup(func() {
		mgr.Close()
	})
	return mgr
}

// testContext returns a background context.
func testContext() context.Context {
	return context.Background()
}
