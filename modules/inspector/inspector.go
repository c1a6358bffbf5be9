package inspector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/grafana/dskit/services"
	pkgerrors "github.com/pkg/errors"
	"github.com/zachfi/zkit/pkg/tracing"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/zachfi/adtsinfo/pkg/adts"
	"github.com/zachfi/adtsinfo/pkg/shoutcast"
)

var module = "inspector"

// inspectExtensions are the file extensions picked up when walking a directory.
var inspectExtensions = []string{".aac", ".adts"}

// Result is the outcome of inspecting one input.
type Result struct {
	Path    string
	Title   string // ICY stream title, streams only
	Report  adts.Report
	Frames  int
	Offsets []int // set when ListOffsets is enabled

	// Err is set when the input could not be read, or in strict mode when a
	// header field failed. Frames is not counted in either case.
	Err error
}

type Inspector struct {
	services.Service
	cfg    *Config
	logger *slog.Logger
	tracer trace.Tracer
	client *http.Client

	outMtx sync.Mutex
	out    io.Writer
}

// New creates and returns a new Inspector writing reports to out.
func New(cfg Config, logger *slog.Logger, out io.Writer) (*Inspector, error) {
	if cfg.Format == "" {
		cfg.Format = FormatText
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = defaultSampleSize
	}
	if cfg.SampleSize > maxSampleSize {
		cfg.SampleSize = maxSampleSize
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = defaultMaxBodySize
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, pkgerrors.Wrap(err, "invalid inspector config")
	}

	dialer := &net.Dialer{Timeout: cfg.DialTimeout}
	i := &Inspector{
		cfg:    &cfg,
		logger: logger.With("module", module),
		tracer: otel.Tracer(module),
		// No client timeout; the sample size bounds the read.
		client: &http.Client{Transport: &http.Transport{
			DialContext:           dialer.DialContext,
			ResponseHeaderTimeout: cfg.DialTimeout,
		}},
		out: out,
	}

	i.Service = services.NewBasicService(i.starting, i.running, i.stopping)

	return i, nil
}

func (i *Inspector) starting(_ context.Context) error {
	i.logger.Debug("starting", "paths", len(i.cfg.Paths), "interval", i.cfg.Interval)
	return nil
}

func (i *Inspector) running(ctx context.Context) error {
	if err := i.InspectAll(ctx); err != nil {
		i.logger.Warn("inspection finished with errors", "err", err)
	}

	if i.cfg.Interval == 0 {
		return nil
	}

	ticker := time.NewTicker(i.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := i.InspectAll(ctx); err != nil {
				i.logger.Warn("inspection finished with errors", "err", err)
			}
		}
	}
}

func (i *Inspector) stopping(_ error) error {
	i.logger.Debug("stopping")
	i.client.CloseIdleConnections()
	return nil
}

// InspectAll inspects every configured path and writes a report for each
// input. Inputs that fail do not stop the pass; their errors are returned
// joined.
func (i *Inspector) InspectAll(ctx context.Context) error {
	var errs []error

	for _, p := range i.cfg.Paths {
		inputs, err := expandPath(p)
		if err != nil {
			i.logger.Error("error resolving path", "path", p, "err", err)
			metricFiles.WithLabelValues(resultError).Inc()
			errs = append(errs, err)
			i.write(&Result{Path: p, Err: err})
			continue
		}

		for _, input := range inputs {
			if ctx.Err() != nil {
				return errors.Join(append(errs, ctx.Err())...)
			}

			res, err := i.Inspect(ctx, input)
			if err != nil {
				errs = append(errs, err)
			}
			i.write(res)
		}
	}

	return errors.Join(errs...)
}

// Inspect loads one file or stream URL, decodes its first header and counts
// its frames. The returned Result is never nil; the error mirrors Result.Err.
func (i *Inspector) Inspect(ctx context.Context, path string) (*Result, error) {
	ctx, span := i.tracer.Start(ctx, "Inspector.Inspect", trace.WithAttributes(
		attribute.String("path", path),
	))

	var (
		data  []byte
		title string
		err   error
	)
	if isStreamURL(path) {
		data, title, err = i.sample(ctx, path)
	} else {
		data, err = adts.LoadFile(path)
	}
	if err != nil {
		metricFiles.WithLabelValues(resultError).Inc()
		res := &Result{Path: path, Err: pkgerrors.Wrap(err, "failed to load input")}
		return res, tracing.ErrHandler(span, res.Err, "failed to load input", i.logger.With("path", path))
	}

	res := i.inspectData(path, data)
	res.Title = title
	span.SetAttributes(
		attribute.Int("frames", res.Frames),
		attribute.Int("field_failures", len(res.Report.Failures())),
	)

	return res, tracing.ErrHandler(span, res.Err, "header rejected", nil)
}

// inspectData runs the decoder and the frame scanner over an in-memory
// buffer.
func (i *Inspector) inspectData(name string, data []byte) *Result {
	res := &Result{Path: name, Report: adts.Decode(data)}

	for _, failed := range res.Report.Failures() {
		metricFieldFailures.WithLabelValues(failed.Field.String()).Inc()
		i.logger.Warn("header field not valid", "path", name, "field", failed.Field.String(), "err", failed.Err)
		if i.cfg.Strict {
			break
		}
	}

	if i.cfg.Strict {
		if err := res.Report.Strict(); err != nil {
			metricFiles.WithLabelValues(resultInvalid).Inc()
			res.Err = err
			return res
		}
	}

	res.Frames = adts.CountFrames(data, res.Report.Header)
	if i.cfg.ListOffsets {
		res.Offsets = adts.FrameOffsets(data, res.Report.Header)
	}

	if res.Report.OK() {
		metricFiles.WithLabelValues(resultOK).Inc()
	} else {
		metricFiles.WithLabelValues(resultInvalid).Inc()
	}
	metricFrames.Add(float64(res.Frames))
	metricLastFrames.WithLabelValues(name).Set(float64(res.Frames))

	i.logger.Debug("inspected", "path", name, "bytes", len(data), "frames", res.Frames)
	return res
}

// sample captures up to SampleSize bytes of audio from a stream URL.
func (i *Inspector) sample(ctx context.Context, url string) ([]byte, string, error) {
	stream, err := shoutcast.Open(ctx, i.client, url)
	if err != nil {
		return nil, "", err
	}
	defer stream.Close()

	stream.MetadataCallbackFunc = func(m *shoutcast.Metadata) {
		i.logger.Info("now listening to", "url", url, "title", m.StreamTitle)
	}

	// A stream cut short still yields a usable sample, so a read error only
	// counts when nothing arrived.
	data, err := io.ReadAll(io.LimitReader(stream, int64(i.cfg.SampleSize)))
	if len(data) == 0 {
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", adts.ErrSourceUnavailable, err)
		}
		return nil, "", adts.ErrEmptyInput
	}
	if err != nil {
		i.logger.Warn("stream ended early", "url", url, "bytes", len(data), "err", err)
	}

	var title string
	if m := stream.Metadata(); m != nil {
		title = m.StreamTitle
	}
	return data, title, nil
}

func (i *Inspector) write(res *Result) {
	i.outMtx.Lock()
	defer i.outMtx.Unlock()

	if err := Render(i.out, res, i.cfg.Format); err != nil {
		i.logger.Error("error writing report", "path", res.Path, "err", err)
	}
}

func isStreamURL(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// expandPath returns path itself, or for a directory every file below it with
// an inspected extension, in lexical order.
func expandPath(path string) ([]string, error) {
	if isStreamURL(path) {
		return []string{path}, nil
	}

	var files []string
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == path && !d.IsDir() {
			files = append(files, p)
			return nil
		}
		if !d.IsDir() && slices.Contains(inspectExtensions, strings.ToLower(filepath.Ext(p))) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		// Missing files surface from the loader with the source error.
		if errors.Is(err, fs.ErrNotExist) {
			return []string{path}, nil
		}
		return nil, err
	}

	return files, nil
}
