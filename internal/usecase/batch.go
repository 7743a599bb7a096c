package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"railmail-service/internal/domain/entity"
	"railmail-service/pkg/logger"
	"railmail-service/pkg/metrics"
	"railmail-service/pkg/parser"
)

// Per-file rejection reasons. The text is shown to users as is.
var (
	ErrPDFNotSupported   = errors.New("PDF parsing requires backend processing.")
	ErrUnsupportedFormat = errors.New("Unsupported file format.")
	ErrFileTooLarge      = errors.New("File is too large.")
)

// InputFile is one uploaded ticket document
type InputFile struct {
	Name        string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// FileError reports why one file of a batch was not parsed
type FileError struct {
	File string
	Err  error
}

func (e *FileError) Error() string {
	return e.File + ": " + e.Err.Error()
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// BatchResult holds the parsed tickets of a batch in submission order
// together with the files that failed
type BatchResult struct {
	Tickets  []*entity.ParsedTicket
	Failures []*FileError
}

// Summary is the user-facing batch message. It is empty when every file
// was parsed.
func (r *BatchResult) Summary() string {
	if len(r.Failures) == 0 {
		return ""
	}
	if len(r.Tickets) == 0 {
		lines := make([]string, len(r.Failures))
		for i, f := range r.Failures {
			lines[i] = f.Error()
		}
		return strings.Join(lines, "\n")
	}
	return fmt.Sprintf("Parsed %d tickets. Errors: %d", len(r.Tickets), len(r.Failures))
}

// Err joins all per-file failures, or returns nil
func (r *BatchResult) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// TicketParsing is the parsing step used by the batch and email flows
type TicketParsing interface {
	Parse(ctx context.Context, raw string) *entity.ParsedTicket
}

// BatchParser parses uploaded ticket documents one at a time
type BatchParser struct {
	parser   TicketParsing
	maxBytes int64
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewBatchParser creates a batch parser. maxBytes limits each file; zero
// means no limit. metrics may be nil.
func NewBatchParser(parser TicketParsing, maxBytes int64, m *metrics.Metrics, logger logger.Logger) *BatchParser {
	return &BatchParser{
		parser:   parser,
		maxBytes: maxBytes,
		metrics:  m,
		logger:   logger,
	}
}

// ParseFiles parses files in order. A failing file never stops the files
// after it.
func (b *BatchParser) ParseFiles(ctx context.Context, files []InputFile) *BatchResult {
	result := &BatchResult{
		Tickets:  make([]*entity.ParsedTicket, 0, len(files)),
		Failures: []*FileError{},
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			result.Failures = append(result.Failures, &FileError{File: file.Name, Err: err})
			b.recordFailure("canceled")
			continue
		}

		ticket, err := b.parseFile(ctx, file)
		if err != nil {
			b.logger.Warn("Failed to parse ticket file", "file", file.Name, "error", err)
			result.Failures = append(result.Failures, &FileError{File: file.Name, Err: err})
			b.recordFailure(failureReason(err))
			continue
		}
		result.Tickets = append(result.Tickets, ticket)
	}

	b.logger.Info("Parsed ticket batch",
		"files", len(files),
		"tickets", len(result.Tickets),
		"failures", len(result.Failures))

	return result
}

func (b *BatchParser) parseFile(ctx context.Context, file InputFile) (*entity.ParsedTicket, error) {
	kind, err := classify(file)
	if err != nil {
		return nil, err
	}

	data, err := b.read(file)
	if err != nil {
		return nil, err
	}

	text := string(data)
	if kind == kindMessage {
		text = parser.MessageText(data)
	}

	start := time.Now()
	ticket := b.parser.Parse(ctx, text)
	if b.metrics != nil {
		b.metrics.ParseDuration.Observe(time.Since(start).Seconds())
		b.metrics.TicketsParsed.Inc()
	}
	return ticket, nil
}

func (b *BatchParser) read(file InputFile) ([]byte, error) {
	if file.Open == nil {
		return nil, errors.New("file has no content")
	}
	rc, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer rc.Close()

	var r io.Reader = rc
	if b.maxBytes > 0 {
		r = io.LimitReader(rc, b.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if b.maxBytes > 0 && int64(len(data)) > b.maxBytes {
		return nil, ErrFileTooLarge
	}
	return data, nil
}

func (b *BatchParser) recordFailure(reason string) {
	if b.metrics != nil {
		b.metrics.ParseFailures.WithLabelValues(reason).Inc()
	}
}

type fileKind int

const (
	kindText fileKind = iota
	kindMessage
)

// classify decides from the declared type and the file name whether a
// file can be parsed
func classify(file InputFile) (fileKind, error) {
	mediaType := strings.ToLower(strings.TrimSpace(file.ContentType))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}
	ext := strings.ToLower(filepath.Ext(file.Name))

	switch {
	case mediaType == "application/pdf" || ext == ".pdf":
		return 0, ErrPDFNotSupported
	case mediaType == "message/rfc822" || ext == ".eml":
		return kindMessage, nil
	case strings.HasPrefix(mediaType, "text/") || ext == ".txt":
		return kindText, nil
	default:
		return 0, ErrUnsupportedFormat
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrPDFNotSupported):
		return "pdf"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrFileTooLarge):
		return "too_large"
	default:
		return "io"
	}
}
