//go:build integration

package points_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/Black-And-White-Club/poker-points/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	env, err := testutils.NewTestEnvironment(ctx)
	cancel()
	if err != nil {
		log.Fatalf("failed to set up integration environment: %v", err)
	}
	testEnv = env

	code := m.Run()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	testEnv.Terminate(shutdownCtx)
	shutdownCancel()
	os.Exit(code)
}

func resetDB(t *testing.T) {
	t.Helper()
	if err := testEnv.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
}
