package progrock_test

import (
	"context"
	"testing"

	"go.trai.ch/texrun/internal/adapters/telemetry/progrock"
	"go.trai.ch/texrun/internal/core/domain"
)

func TestRecorder_Integration(t *testing.T) {
	// 1. Initialize the Recorder
	recorder := progrock.New()

	// 2. Start a tool run
	ctx := context.Background()
	_, vertex := recorder.Record(ctx, "makeindex")

	// 3. Write to Stdout
	if _, err := vertex.Stdout().Write([]byte("Scanning input file main.idx...done\n")); err != nil {
		t.Errorf("failed to write to stdout: %v", err)
	}

	// 4. Log a debug message
	vertex.Log(domain.LogLevelDebug, "index generated")

	// 5. Complete the vertex
	vertex.Complete(nil)

	// 6. Close the recorder
	if err := recorder.Close(); err != nil {
		t.Errorf("failed to close recorder: %v", err)
	}
}
