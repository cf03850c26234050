package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/bft-labs/seqbatch/internal/adapters/memory"
	"github.com/bft-labs/seqbatch/internal/testutil"
	"github.com/bft-labs/seqbatch/pkg/seqbatch"
)

func TestPrintSizes(t *testing.T) {
	var buf bytes.Buffer
	printSizes(&buf, []int{4, 0, 8})
	out := buf.String()

	for _, want := range []string{"samples:  3", "min:      0", "max:      8", "mean:     4.0", "empty:    1"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintPlan(t *testing.T) {
	cfg := seqbatch.DefaultConfig()
	cfg.DataDir = "/data"
	cfg.MaxTokens = 16
	cfg.Alignment = 1
	loader, err := seqbatch.New(cfg,
		seqbatch.WithStore(memory.NewStore(testutil.Sized(testutil.Schema, 4, 4, 8))),
		seqbatch.WithSchema(testutil.Schema),
		seqbatch.WithFs(afero.NewMemMapFs()),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer loader.Close()

	var buf bytes.Buffer
	if err := printPlan(&buf, loader); err != nil {
		t.Fatalf("printPlan: %v", err)
	}
	out := buf.String()
	// sizes 4,4 share a bucket (2*4 <= 16); 8 would make 3*8 > 16.
	for _, want := range []string{"buckets:      2", "batch size:   mean 1.5, min 1, max 2", "efficiency:   100.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
