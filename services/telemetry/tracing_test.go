package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"github.com/trezcool/studman/core"
)

func TestSetup(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled", func(t *testing.T) {
		shutdown, err := Setup(&core.Config{}, nil)
		require.NoError(t, err)
		assert.NoError(t, shutdown(ctx))
	})

	t.Run("enabled", func(t *testing.T) {
		var buf bytes.Buffer
		shutdown, err := Setup(&core.Config{Tracing: true, AppName: "studman"}, &buf)
		require.NoError(t, err)

		_, span := otel.Tracer("test").Start(ctx, "unit")
		span.End()

		require.NoError(t, shutdown(ctx))
		assert.Contains(t, buf.String(), `"Name":"unit"`)
	})
}
