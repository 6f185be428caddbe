// Package sync orchestrates an incremental extraction run: scrape the
// directory listing, decide per discovered file whether its consumer needs a
// fresh fetch, and drive the fetch-decompress-parse-emit pipeline.
package sync

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"assocfeed/pkg/emit"
	"assocfeed/pkg/listing"
	"assocfeed/pkg/logger"
	"assocfeed/pkg/models"
	"assocfeed/pkg/state"
	"assocfeed/pkg/stream"
)

// PortalClient is the fetch surface the coordinator drives.
type PortalClient interface {
	FetchListing(ctx context.Context) (string, error)
	OpenReport(ctx context.Context, filename string) (io.ReadCloser, error)
}

// Coordinator runs one extraction pass over the portal.
type Coordinator struct {
	client   PortalClient
	scraper  *listing.Scraper
	store    *state.Store
	registry Registry
	emitter  emit.Emitter
	logger   logger.Logger
}

// NewCoordinator wires a coordinator from its collaborators.
func NewCoordinator(client PortalClient, store *state.Store, registry Registry, emitter emit.Emitter, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Coordinator{
		client:   client,
		scraper:  listing.NewScraper(log),
		store:    store,
		registry: registry,
		emitter:  emitter,
		logger:   log,
	}
}

// Run performs one sync. A failure in one report stream is logged and
// isolated; records already emitted for sibling streams are preserved. The
// returned error joins every per-stream failure.
func (c *Coordinator) Run(ctx context.Context) error {
	runLog := c.logger.WithField("run_id", uuid.New().String())
	runLog.Info("starting sync run")

	html, err := c.client.FetchListing(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch directory listing: %w", err)
	}

	descriptors := c.scraper.Scrape(html)
	runLog.InfoWithFields("directory listing scraped", map[string]interface{}{
		"files": len(descriptors),
	})

	var failures []error
	for _, desc := range descriptors {
		if err := ctx.Err(); err != nil {
			failures = append(failures, err)
			break
		}

		if listConsumer, ok := c.registry[models.ReportTypeList]; ok && listConsumer.Selected {
			if err := c.emitListingRecord(desc); err != nil {
				failures = append(failures, err)
				continue
			}
		}

		if err := c.dispatch(ctx, desc, runLog); err != nil {
			runLog.ErrorWithFields("report stream failed", map[string]interface{}{
				"filename": desc.Filename,
				"stream":   string(desc.ReportType),
				"error":    err.Error(),
			})
			failures = append(failures, fmt.Errorf("%s: %w", desc.Filename, err))
		}
	}

	runLog.Info("sync run finished")
	return errors.Join(failures...)
}

// emitListingRecord emits the descriptor itself as a file-listing record and
// advances the listing stream's watermark.
func (c *Coordinator) emitListingRecord(desc models.FileDescriptor) error {
	record := models.Record{
		"filename":      desc.Filename,
		"last_modified": desc.LastModified,
		"download":      desc.Download,
		"report_type":   string(desc.ReportType),
	}
	if err := c.emitter.Emit(string(models.ReportTypeList), record); err != nil {
		return err
	}
	return c.store.Advance(models.ReportTypeList, desc.LastModified)
}

// dispatch decides whether the descriptor's consumer needs a child fetch and
// runs the pipeline when it does. A consumer is dispatched only when it is
// selected, a watermark exists, and the descriptor is strictly newer than
// the watermark.
func (c *Coordinator) dispatch(ctx context.Context, desc models.FileDescriptor, runLog logger.Logger) error {
	if desc.ReportType == "" {
		return nil // unclassifiable file, already logged by the scraper
	}

	consumer, ok := c.registry[desc.ReportType]
	if !ok || !consumer.Selected {
		return nil
	}

	watermark, ok := c.store.Watermark(desc.ReportType)
	if !ok {
		runLog.DebugWithFields("no watermark, skipping", map[string]interface{}{
			"filename": desc.Filename,
			"stream":   string(desc.ReportType),
		})
		return nil
	}

	watermarkTime, err := models.ParseReportTime(watermark)
	if err != nil {
		return fmt.Errorf("cannot decide freshness: %w", err)
	}
	lastModified, err := models.ParseReportTime(desc.LastModified)
	if err != nil {
		return fmt.Errorf("cannot decide freshness: %w", err)
	}

	if !lastModified.After(watermarkTime) {
		return nil
	}

	count, err := c.syncReport(ctx, desc, consumer)
	if err != nil {
		return err
	}

	runLog.InfoWithFields("report synced", map[string]interface{}{
		"filename": desc.Filename,
		"stream":   string(desc.ReportType),
		"records":  count,
	})

	return c.store.Advance(desc.ReportType, desc.LastModified)
}

// syncReport streams one report file through the decompress-reassemble-parse
// pipeline and emits every row with the descriptor's provenance merged in.
func (c *Coordinator) syncReport(ctx context.Context, desc models.FileDescriptor, consumer *Consumer) (int, error) {
	body, err := c.client.OpenReport(ctx, desc.Filename)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	rows := stream.ParseRows(
		stream.Lines(stream.Decompress(stream.Chunks(body, stream.DefaultChunkSize))),
		consumer.KeyFormat,
	)

	count := 0
	for row, err := range rows {
		if err != nil {
			return count, err
		}
		if err := c.emitter.Emit(string(desc.ReportType), row.WithProvenance(desc)); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}
