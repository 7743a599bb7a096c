// ticketparse parses IRCTC booking emails saved as .txt or .eml files and
// prints the tickets as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/internal/interface/railapi"
	"railmail-service/internal/usecase"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/parser"
	"railmail-service/pkg/schedule"

	flag "github.com/spf13/pflag"
)

type output struct {
	Tickets  []*entity.ParsedTicket `json:"tickets"`
	Failures []string               `json:"failures,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

func main() {
	offline := flag.Bool("offline", false, "do not query the schedule API")
	apiURL := flag.String("api-url", railapi.DefaultBaseURL, "schedule API base URL")
	timeout := flag.Duration("timeout", schedule.DefaultNetworkTimeout, "schedule API timeout")
	pretty := flag.BoolP("pretty", "p", false, "indent JSON output")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] FILE...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	log := logger.NewLoggerWithLevel(*logLevel)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []schedule.Option
	if !*offline {
		opts = append(opts, schedule.WithNetwork(railapi.NewClient(*apiURL, *timeout, log), *timeout))
	}
	resolver := schedule.NewResolver(log, opts...)
	ticketParser := parser.NewTicketParser(resolver, time.Now, log)
	batch := usecase.NewBatchParser(ticketParser, 0, nil, log)

	result := batch.ParseFiles(ctx, inputFiles(flag.Args()))

	out := output{Tickets: result.Tickets, Message: result.Summary()}
	for _, f := range result.Failures {
		out.Failures = append(out.Failures, f.Error())
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if len(result.Tickets) == 0 {
		os.Exit(1)
	}
}

// inputFiles lets the batch parser classify files by extension
func inputFiles(paths []string) []usecase.InputFile {
	files := make([]usecase.InputFile, len(paths))
	for i, path := range paths {
		files[i] = usecase.InputFile{
			Name: filepath.Base(path),
			Open: func() (io.ReadCloser, error) {
				f, err := os.Open(path)
				if err != nil {
					return nil, err
				}
				return f, nil
			},
		}
	}
	return files
}
