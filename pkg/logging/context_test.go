package logging_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voyagekit/resdesk/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("WithDraft adds draft to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithDraft(ctx, "d-123")

		// Extract logger and verify it has the draft field
		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithReservation adds reservation to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithReservation(ctx, "r-456")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithOperation adds operation to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithOperation(ctx, "commit_draft")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithChannel adds channel to context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithChannel(ctx, "naver")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("WithFields adds custom fields to context", func(t *testing.T) {
		ctx := context.Background()
		fields := map[string]interface{}{
			"user_id":    "123",
			"request_id": "abc-def",
		}
		ctx = logging.WithFields(ctx, fields)

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("FromContext returns logger from context", func(t *testing.T) {
		ctx := context.Background()

		// First call should create a new logger
		logger1 := logging.FromContext(ctx)
		assert.NotNil(t, logger1)

		// Add draft and get logger again
		ctx = logging.WithDraft(ctx, "d-789")
		logger2 := logging.FromContext(ctx)
		assert.NotNil(t, logger2)
	})

	t.Run("Ctx extracts logger from context", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithDraft(ctx, "d-42")

		logger := logging.Ctx(ctx)
		assert.NotNil(t, logger)
	})

	t.Run("chaining context functions", func(t *testing.T) {
		ctx := context.Background()
		ctx = logging.WithDraft(ctx, "d-1")
		ctx = logging.WithChannel(ctx, "klook")
		ctx = logging.WithOperation(ctx, "ingest_extraction")
		ctx = logging.WithReservation(ctx, "r-1")

		logger := logging.FromContext(ctx)
		assert.NotNil(t, logger)
	})
}
