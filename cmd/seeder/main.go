// Seeder populates a geoflow database with demo data. It runs the real
// processing pipeline against the mock provider connectors and the mock
// embedder, so no network access or API keys are needed.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"

	"github.com/poiesic/geoflow/ai/mock"
	"github.com/poiesic/geoflow/core"
	"github.com/poiesic/geoflow/ingest"
	"github.com/poiesic/geoflow/pipeline"
	"github.com/poiesic/geoflow/provider"
	providermock "github.com/poiesic/geoflow/provider/mock"
	"github.com/poiesic/geoflow/storage/badger"
)

var countries = []string{
	"USA", "CHN", "DEU", "JPN", "GBR",
	"FRA", "IND", "BRA", "ITA", "CAN",
	"KOR", "MEX", "AUS", "ESP", "IDN",
	"NLD", "TUR", "CHE", "POL", "SWE",
}

var (
	dbPath       = flag.String("db", "./geoflow_db", "path to BadgerDB database directory")
	seedFileName = flag.String("file", "", "optional file with one country code per line")
	batchSize    = flag.Int("batch", 5, "countries per pipeline run")
)

// linesFromFile yields non-empty lines of the named file.
func linesFromFile(name string) (iter.Seq[string], error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedBatched reads country codes from source and runs the pipeline once
// per batch.
func seedBatched(ctx context.Context, pipe *pipeline.Pipeline, source iter.Seq[string], batchSize int) error {
	batch := make([]string, 0, batchSize)

	run := func() error {
		report, err := pipe.Run(ctx, batch, provider.FetchParams{})
		if err != nil {
			return err
		}
		for domain, dr := range report.Domains {
			slog.Info("seeded batch",
				"countries", batch,
				"domain", domain.String(),
				"records", dr.CleanedRecordCount,
				"relationships", dr.GraphRelationships)
		}
		batch = batch[:0]
		return nil
	}

	for line := range source {
		batch = append(batch, line)
		if len(batch) == batchSize {
			if err := run(); err != nil {
				return err
			}
		}
	}

	if len(batch) > 0 {
		if err := run(); err != nil {
			return err
		}
	}

	return nil
}

func main() {
	flag.Parse()

	backend, err := badger.OpenBackend(*dbPath, false)
	if err != nil {
		panic(err)
	}
	defer backend.Close()

	vectors, err := badger.NewVectorStore(backend)
	if err != nil {
		panic(err)
	}
	defer vectors.Close()

	graph, err := badger.NewGraphStore(backend)
	if err != nil {
		panic(err)
	}
	defer graph.Close()

	connectors := []provider.Connector{
		providermock.NewConnector("comtrade", core.DomainTrade),
		providermock.NewConnector("worldbank", core.DomainMacroeconomic),
		providermock.NewConnector("epi", core.DomainEnvironmental),
	}

	coordinator, err := ingest.NewCoordinator(connectors)
	if err != nil {
		panic(err)
	}
	defer coordinator.Release()

	aiProvider := mock.NewMockProvider()
	pipe, err := pipeline.NewPipeline(coordinator, aiProvider.Embedder(), vectors, graph)
	if err != nil {
		panic(err)
	}
	defer pipe.Release()

	ctx := context.Background()

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(countries)
	}

	if err := seedBatched(ctx, pipe, source, *batchSize); err != nil {
		panic(err)
	}

	fmt.Printf("Seeded database at %s\n", *dbPath)
}
