// report-cli runs the report pipeline once for an intake JSON file and
// prints the result. It is the offline companion to the HTTP server: same
// engine, same audit trail, no network.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dental-report-engine/internal/config"
	"github.com/dental-report-engine/internal/domain"
	"github.com/dental-report-engine/internal/setup"
)

func main() {
	intakePath := flag.String("intake", "", "path to the intake JSON file (required)")
	printAudit := flag.Bool("audit", false, "print the full audit record instead of the report")
	flag.Parse()

	if *intakePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	engine, err := setup.Build(cfg)
	if err != nil {
		log.Fatalf("Failed to build engine: %v", err)
	}
	defer engine.Close()

	raw, err := os.ReadFile(*intakePath)
	if err != nil {
		log.Fatalf("Failed to read intake file: %v", err)
	}
	var in domain.Intake
	if err := json.Unmarshal(raw, &in); err != nil {
		log.Fatalf("Failed to parse intake file: %v", err)
	}

	result := engine.Pipeline.Run(context.Background(), &in, nil)

	var out any = result.Report
	if *printAudit || result.Report == nil {
		out = result.Audit
	}
	encoded, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(encoded))

	if result.Outcome == domain.OutcomeBlock {
		os.Exit(1)
	}
}
