package cmd

import (
	"bytes"
	"context"
	"flag"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/safar/pharmsync/internal/database"
	"github.com/safar/pharmsync/internal/store"
)

func TestSeedAndReport(t *testing.T) {
	st := store.New(database.NewMemoryBackend(), &store.Seeder{
		Rand: rand.New(rand.NewSource(1)),
		Now:  time.Now,
	})

	var out bytes.Buffer
	if err := seedAndReport(context.Background(), st, &out); err != nil {
		t.Fatalf("seedAndReport: %v", err)
	}

	for _, want := range []string{"medicines:          12", "suppliers:          17", "pharmacies:         3", "notifications:      1"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("Output missing %q:\n%s", want, out.String())
		}
	}
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	err := runMigrate(migrateCmd, []string{"sideways"})
	if err == nil {
		t.Fatal("Expected error for unknown direction")
	}
}

func TestRootParsesGlogFlags(t *testing.T) {
	if err := pflag.CommandLine.Set("v", "2"); err != nil {
		t.Fatalf("set v: %v", err)
	}
	defer pflag.CommandLine.Set("v", "0")

	if err := rootCmd.PersistentPreRunE(rootCmd, nil); err != nil {
		t.Fatalf("PersistentPreRunE: %v", err)
	}
	if !flag.Parsed() {
		t.Error("Expected the standard flag set to be parsed")
	}
	if got := flag.Lookup("v").Value.String(); got != "2" {
		t.Errorf("Expected glog verbosity 2, got %s", got)
	}
}
