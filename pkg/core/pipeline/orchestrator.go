package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"ppm_extraction/pkg/core/corpus"
	"ppm_extraction/pkg/core/extract"
	"ppm_extraction/pkg/core/highlight"
	"ppm_extraction/pkg/core/project"
	"ppm_extraction/pkg/core/reconcile"
	"ppm_extraction/pkg/core/section"
	"ppm_extraction/pkg/core/store"
)

// processingStarted is the placeholder written into the Final Data Table
// while a deal is being extracted. It is replaced (delete last row, then
// append) by the real row or by a processing-error marker.
const processingStarted = "Processing started..."

const defaultSectionWorkers = 3

// Orchestrator runs the per-deal extraction flow: build corpus, extract
// the six sections, reconcile, project, store, highlight.
type Orchestrator struct {
	svc       *ServiceContext
	extractor *extract.Extractor
	workers   int
}

// NewOrchestrator wires an orchestrator from the service context. The
// extraction model comes from the agent manager's "extraction" role.
func NewOrchestrator(svc *ServiceContext, settings Settings) *Orchestrator {
	ex := extract.NewExtractor(svc.Agents.GetProvider("extraction"))
	if settings.TopK > 0 {
		ex.TopK = settings.TopK
	}
	if settings.FirstPages > 0 {
		ex.FirstPages = settings.FirstPages
	}
	if settings.LastPages > 0 {
		ex.LastPages = settings.LastPages
	}

	workers := settings.SectionWorkers
	if workers <= 0 {
		workers = defaultSectionWorkers
	}
	return &Orchestrator{svc: svc, extractor: ex, workers: workers}
}

// ProcessDocument runs the full pipeline for one source PDF. The deal ID
// is the file name without extension, stamped onto every record no
// matter what the model answered.
func (o *Orchestrator) ProcessDocument(ctx context.Context, pdfPath string) error {
	dealID := DealIDFromPath(pdfPath)
	start := time.Now()
	log.Printf("[PIPELINE] Starting deal %s (%s)", dealID, pdfPath)

	c, err := corpus.Build(ctx, pdfPath, o.svc.Agents.GetEmbedder("embedding"))
	if err != nil {
		return &ExtractionError{DealID: dealID, Err: err}
	}

	if err := o.processCorpus(ctx, pdfPath, dealID, c); err != nil {
		return err
	}
	log.Printf("[PIPELINE] Completed deal %s in %v", dealID, time.Since(start))
	return nil
}

// processCorpus runs everything downstream of corpus construction. The
// corpus is released on every exit path.
func (o *Orchestrator) processCorpus(ctx context.Context, pdfPath, dealID string, c *corpus.Corpus) error {
	defer c.Release()

	if err := o.appendPlaceholder(ctx, dealID); err != nil {
		return &StoreError{DealID: dealID, Sheet: string(section.FinalDataTable), Err: err}
	}

	result := o.extractSections(ctx, c, dealID)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	o.dumpRawAnswers(pdfPath, result)
	if o.svc.Audit != nil {
		answers := make(map[section.Name]string, len(result.Sections))
		for name, res := range result.Sections {
			answers[name] = res.Raw
		}
		if err := o.svc.Audit.Save(ctx, dealID, answers); err != nil {
			log.Printf("[PIPELINE] Audit save failed for deal %s: %v", dealID, err)
		}
	}

	if err := o.storeResult(ctx, result); err != nil {
		o.writeErrorRow(ctx, dealID, err)
		return &StoreError{DealID: dealID, Sheet: string(section.FinalDataTable), Err: err}
	}

	o.highlightSources(pdfPath, result)
	return nil
}

// ProcessBatch lists the source folder and runs every not-yet-processed
// document. Extraction failures leave the document unmarked so it is
// retried on the next cycle; cancellation stops between deals.
func (o *Orchestrator) ProcessBatch(ctx context.Context, folderID string) error {
	if o.svc.Source == nil {
		return fmt.Errorf("no document source configured")
	}

	files, err := o.svc.Source.ListPDFs(ctx, folderID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		if o.svc.Ledger != nil && o.svc.Ledger.Seen(f.ID) {
			log.Printf("[PIPELINE] Skipping %s (already processed)", f.Name)
			continue
		}

		path, err := o.svc.Source.Download(ctx, f)
		if err != nil {
			log.Printf("[PIPELINE] Download failed for %s: %v", f.Name, err)
			continue
		}

		if err := o.ProcessDocument(ctx, path); err != nil {
			if ctx.Err() != nil {
				return err
			}
			log.Printf("[PIPELINE] Deal failed, will retry next cycle: %v", err)
			continue
		}

		if o.svc.Ledger != nil {
			o.svc.Ledger.Mark(f.ID)
			if err := o.svc.Ledger.Flush(); err != nil {
				log.Printf("[PIPELINE] Ledger flush failed: %v", err)
			}
		}
	}
	return nil
}

// extractSections runs the six section extractions with bounded
// concurrency. Each section only reads the shared corpus and writes its
// own slot, so the only synchronization needed is around the result map.
func (o *Orchestrator) extractSections(ctx context.Context, c *corpus.Corpus, dealID string) *extract.Result {
	result := &extract.Result{
		DealID:   dealID,
		Sections: make(map[section.Name]extract.SectionResult, len(section.All())),
	}

	sem := make(chan struct{}, o.workers)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, name := range section.All() {
		wg.Add(1)
		go func(name section.Name) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := o.extractor.ExtractSection(ctx, c, name, dealID)
			if err != nil {
				// Cancellation mid-flight; record the sentinel so the
				// slot is never absent.
				res = extract.SectionResult{Raw: extract.NoDataFound}
			}

			mu.Lock()
			result.Sections[name] = res
			mu.Unlock()
		}(name)
	}
	wg.Wait()
	return result
}

// clearDealMarkers removes the deal's placeholder and processing-error
// rows from the Final Data Table, wherever they sit. Markers are matched
// by deal ID and content, never by position: once other deals have
// appended below, the bottom row belongs to someone else.
func (o *Orchestrator) clearDealMarkers(ctx context.Context, dealID string) error {
	sheet := string(section.FinalDataTable)
	rows, err := o.svc.Store.Rows(ctx, sheet)
	if err != nil {
		return err
	}
	// Bottom-up so surviving indexes stay valid across deletes.
	for i := len(rows) - 1; i >= 1; i-- {
		if isDealMarker(rows[i], dealID) {
			if err := o.svc.Store.DeleteRow(ctx, sheet, i); err != nil {
				return err
			}
		}
	}
	return nil
}

func isDealMarker(row []string, dealID string) bool {
	if len(row) < 2 || row[0] != dealID {
		return false
	}
	return row[1] == processingStarted || strings.HasPrefix(row[1], store.ErrorPrefix)
}

// storeResult reconciles, projects and appends one table per section.
// The Final Data Table placeholder is replaced last, so a failure on any
// earlier sheet still leaves a visible marker to overwrite.
func (o *Orchestrator) storeResult(ctx context.Context, result *extract.Result) error {
	merged := reconcile.Merge(
		result.Sections[section.FinalDataTable].Records,
		result.Sections[section.UseOfProceeds].Records,
		result.Sections[section.ProjectedResults].Records,
	)

	for _, name := range section.All() {
		records := result.Sections[name].Records
		if name == section.FinalDataTable {
			records = merged
		}

		table := project.Project(name, records)
		sheet := string(name)

		if err := store.EnsureHeader(ctx, o.svc.Store, sheet, table.Header); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}

		if name == section.FinalDataTable {
			// Replace this deal's placeholder row.
			if err := o.clearDealMarkers(ctx, result.DealID); err != nil {
				return fmt.Errorf("sheet %s: %w", sheet, err)
			}
		}
		if len(table.Rows) == 0 {
			log.Printf("[PIPELINE] No rows for sheet %s, deal %s", sheet, result.DealID)
			continue
		}
		if err := o.svc.Store.AppendRows(ctx, sheet, table.Rows); err != nil {
			return fmt.Errorf("sheet %s: %w", sheet, err)
		}
	}
	return nil
}

// appendPlaceholder writes the processing-started marker row into the
// Final Data Table so operators see in-flight deals. Any marker the deal
// left behind on an earlier failed or interrupted run is removed first,
// so a retried deal never shows two rows.
func (o *Orchestrator) appendPlaceholder(ctx context.Context, dealID string) error {
	sheet := string(section.FinalDataTable)
	header := section.BaseHeaders(section.FinalDataTable)
	if err := store.EnsureHeader(ctx, o.svc.Store, sheet, header); err != nil {
		return err
	}
	if err := o.clearDealMarkers(ctx, dealID); err != nil {
		return err
	}

	row := make([]string, len(header))
	row[0] = dealID
	row[1] = processingStarted
	for i := 2; i < len(row); i++ {
		row[i] = section.NotAvailable
	}
	return o.svc.Store.AppendRows(ctx, sheet, [][]string{row})
}

// writeErrorRow replaces the deal's Final Data Table row with an explicit
// processing-error marker. The spreadsheet is the operator's dashboard,
// so failures must be visible there, not just in logs.
func (o *Orchestrator) writeErrorRow(ctx context.Context, dealID string, cause error) {
	sheet := string(section.FinalDataTable)
	width := len(section.BaseHeaders(section.FinalDataTable))

	if err := o.clearDealMarkers(ctx, dealID); err != nil {
		log.Printf("[PIPELINE] Could not remove placeholder for deal %s: %v", dealID, err)
	}
	row := store.ErrorRow(dealID, cause.Error(), width)
	if err := o.svc.Store.AppendRows(ctx, sheet, [][]string{row}); err != nil {
		log.Printf("[PIPELINE] Could not write error row for deal %s: %v", dealID, err)
	}
}

// dumpRawAnswers appends the six raw model answers to the per-deal audit
// dump file next to the source PDF.
func (o *Orchestrator) dumpRawAnswers(pdfPath string, result *extract.Result) {
	path := RawDumpPath(pdfPath)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("[PIPELINE] Could not open dump file %s: %v", path, err)
		return
	}
	defer f.Close()

	for _, name := range section.All() {
		fmt.Fprintf(f, "### %s:\n%s\n\n", name, result.Sections[name].Raw)
	}
}

// highlightSources writes the highlighted copy of the PDF from the
// retrieved passages. Best effort: a failure is logged, never fatal.
func (o *Orchestrator) highlightSources(pdfPath string, result *extract.Result) {
	if o.svc.Highlighter == nil {
		return
	}

	var passages []highlight.PassageRef
	for _, name := range section.All() {
		for _, src := range result.Sections[name].Sources {
			passages = append(passages, highlight.PassageRef{Page: src.Page, Text: src.Text})
		}
	}
	if len(passages) == 0 {
		return
	}

	out := HighlightedPath(pdfPath)
	if err := o.svc.Highlighter.HighlightPassages(pdfPath, out, passages); err != nil {
		log.Printf("[PIPELINE] Highlighting failed for %s: %v", pdfPath, err)
	}
}

// RawDumpPath is where a deal's raw answers are appended.
func RawDumpPath(pdfPath string) string { return pdfPath + "_data.txt" }

// HighlightedPath is where a deal's annotated copy is written.
func HighlightedPath(pdfPath string) string { return pdfPath + "_highlighted.pdf" }
