package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/hive-corporation/keyguard/internal/core/domain"
	"github.com/hive-corporation/keyguard/internal/platform/logger"
)

func main() {
	policy := domain.DefaultClassifierPolicy()

	file := flag.String("file", "-", "CloudTrail records, one JSON object per line (- for stdin)")
	threshold := flag.Int("threshold", policy.HighVolumeThreshold, "high volume threshold")
	window := flag.Duration("window", policy.Window, "lookback window the records cover")
	sensitive := flag.String("sensitive", strings.Join(policy.SensitiveServices, ","), "comma-separated sensitive service prefixes")
	regions := flag.String("regions", strings.Join(policy.UnusualRegions, ","), "comma-separated unusual regions")
	asJSON := flag.Bool("json", false, "print findings as JSON")
	logLevel := flag.String("log-level", "warn", "log level")
	flag.Parse()

	policy.HighVolumeThreshold = *threshold
	policy.Window = *window
	policy.SensitiveServices = splitList(*sensitive)
	policy.UnusualRegions = splitList(*regions)

	in := io.Reader(os.Stdin)
	if *file != "-" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ error reading file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		in = f
	}

	records, err := readRecords(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ error reading records: %v\n", err)
		os.Exit(1)
	}

	classifier := domain.NewClassifier(policy, logger.NewWithWriter(os.Stderr, *logLevel))
	findings, skipped := classifier.ClassifyWithSkipped(records)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(findings); err != nil {
			fmt.Fprintf(os.Stderr, "❌ error encoding findings: %v\n", err)
			os.Exit(1)
		}
	} else {
		printFindings(os.Stdout, findings, len(records), skipped)
	}

	if len(findings) > 0 {
		os.Exit(2)
	}
}

// readRecords returns one record per non-blank line.
func readRecords(r io.Reader) ([]domain.LogRecord, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)

	var records []domain.LogRecord
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		records = append(records, domain.LogRecord{Message: line, IngestedAt: time.Now().UTC()})
	}
	return records, scanner.Err()
}

func printFindings(w io.Writer, findings []domain.Finding, total, skipped int) {
	fmt.Fprintf(w, "🔍 analyzed %d records (%d unparseable)\n\n", total, skipped)

	for _, f := range findings {
		line := fmt.Sprintf("[%s] %s", f.Severity, f.Description)
		if f.EventID != "" {
			line += fmt.Sprintf(" (event %s", f.EventID)
			if f.Timestamp != "" {
				line += " at " + f.Timestamp
			}
			line += ")"
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w, "------------------------------------------------")
	if len(findings) == 0 {
		fmt.Fprintln(w, "✅ no suspicious activity found")
		return
	}
	fmt.Fprintf(w, "🚨 %d suspicious activities found\n", len(findings))
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
