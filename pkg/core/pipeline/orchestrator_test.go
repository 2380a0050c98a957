package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"

	"ppm_extraction/pkg/core/agent"
	"ppm_extraction/pkg/core/corpus"
	"ppm_extraction/pkg/core/section"
	"ppm_extraction/pkg/core/store"
)

// =============================================================================
// STUBS
// =============================================================================

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		vec := make([]float32, 4)
		for j, b := range []byte(t) {
			vec[j%4] += float32(b)
		}
		out[i] = vec
	}
	return out, nil
}

// stubProvider replays canned answers keyed by a substring of the prompt.
// Safe under the orchestrator's concurrent section calls.
type stubProvider struct {
	mu      sync.Mutex
	answers map[string]string
	calls   int
}

func (p *stubProvider) GenerateResponse(_ context.Context, prompt, _ string, _ map[string]interface{}) (string, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	for frag, ans := range p.answers {
		if strings.Contains(prompt, frag) {
			return ans, nil
		}
	}
	return "{}", nil
}

// failingStore wraps a MemoryStore and fails appends on one sheet.
type failingStore struct {
	*store.MemoryStore
	failSheet string
	armed     bool
}

func (f *failingStore) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if f.armed && sheet == f.failSheet {
		return errors.New("quota exceeded")
	}
	return f.MemoryStore.AppendRows(ctx, sheet, rows)
}

// flakyStore fails selected appends on one sheet, counted 1-based, so a
// test can let the placeholder through and fail only the data append.
type flakyStore struct {
	*store.MemoryStore
	failSheet string
	seen      int
	failOn    map[int]bool
}

func (f *flakyStore) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if sheet == f.failSheet {
		f.seen++
		if f.failOn[f.seen] {
			return errors.New("quota exceeded")
		}
	}
	return f.MemoryStore.AppendRows(ctx, sheet, rows)
}

type stubSource struct {
	files []store.RemoteFile
}

func (s *stubSource) ListPDFs(_ context.Context, _ string) ([]store.RemoteFile, error) {
	return s.files, nil
}

func (s *stubSource) Download(_ context.Context, f store.RemoteFile) (string, error) {
	return f.Name, nil
}

func testService(st store.TabularStore, provider *stubProvider) *ServiceContext {
	mgr := agent.NewManager(agent.Config{ActiveProvider: "stub"})
	mgr.RegisterProvider("stub", provider)
	mgr.RegisterEmbedder("stub", stubEmbedder{})
	return &ServiceContext{Agents: mgr, Store: st}
}

func testCorpus(t *testing.T) *corpus.Corpus {
	t.Helper()
	pages := []string{
		"1031CF Portfolio 4 DST. Sponsor: 1031 CF.",
		"Leadership: Edward E. Fernandez, Chief Executive Officer.",
		"Use of proceeds: Loan Proceeds $14,960,000.",
	}
	c, err := corpus.BuildFromPages(context.Background(), pages, stubEmbedder{})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// scenarioProvider answers a deal whose UseOfProceeds value must win over
// the model's stale FinalDataTable one.
func scenarioProvider() *stubProvider {
	return &stubProvider{answers: map[string]string{
		"Leadership Section":      `{"Leadership": [{"Name": "Jane Doe"}]}`,
		"Use of Proceeds Section": `{"Use of Proceeds": [{"Deal_ID": "1", "Loan_Proceeds": "$10"}]}`,
		"Final Data Table":        `{"Final Data Table": [{"Deal_ID": "1", "Loan_Proceeds": "N/A"}]}`,
	}}
}

func cell(t *testing.T, table [][]string, rowIdx int, col string) string {
	t.Helper()
	if len(table) <= rowIdx {
		t.Fatalf("table has %d rows, want > %d", len(table), rowIdx)
	}
	for i, h := range table[0] {
		if h == col {
			return table[rowIdx][i]
		}
	}
	t.Fatalf("column %s not in header %v", col, table[0])
	return ""
}

// =============================================================================
// TESTS
// =============================================================================

func TestProcessCorpusEndToEnd(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	provider := scenarioProvider()
	o := NewOrchestrator(testService(st, provider), Settings{})

	pdfPath := filepath.Join(t.TempDir(), "1.pdf")
	if err := o.processCorpus(ctx, pdfPath, "1", testCorpus(t)); err != nil {
		t.Fatal(err)
	}

	lead, _ := st.Rows(ctx, string(section.Leadership))
	if got := cell(t, lead, 1, "Name"); got != "Jane Doe" {
		t.Errorf("Leadership Name = %q, want Jane Doe", got)
	}

	final, _ := st.Rows(ctx, string(section.FinalDataTable))
	if len(final) != 2 {
		t.Fatalf("Final Data Table rows = %d, want header + 1 (placeholder replaced)", len(final))
	}
	if got := cell(t, final, 1, "Loan_Proceeds"); got != "$10" {
		t.Errorf("Loan_Proceeds = %q, want $10 (Use of Proceeds wins)", got)
	}
	if got := cell(t, final, 1, section.DealIDField); got != "1" {
		t.Errorf("Deal_ID = %q, want 1", got)
	}

	if provider.calls != 6 {
		t.Errorf("model calls = %d, want 6", provider.calls)
	}
}

func TestProcessCorpusWritesRawDump(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	o := NewOrchestrator(testService(st, scenarioProvider()), Settings{})

	pdfPath := filepath.Join(t.TempDir(), "1.pdf")
	if err := o.processCorpus(ctx, pdfPath, "1", testCorpus(t)); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(RawDumpPath(pdfPath))
	if err != nil {
		t.Fatalf("raw dump missing: %v", err)
	}
	for _, name := range section.All() {
		if !strings.Contains(string(data), "### "+string(name)+":") {
			t.Errorf("dump missing section %s", name)
		}
	}
	if !strings.Contains(string(data), "Jane Doe") {
		t.Error("dump missing raw leadership answer")
	}
}

func TestProcessCorpusStoreFailureLeavesErrorRow(t *testing.T) {
	ctx := context.Background()
	fs := &failingStore{MemoryStore: store.NewMemoryStore(), failSheet: string(section.Leadership)}
	o := NewOrchestrator(testService(fs, scenarioProvider()), Settings{})

	fs.armed = true
	pdfPath := filepath.Join(t.TempDir(), "1.pdf")
	err := o.processCorpus(ctx, pdfPath, "1", testCorpus(t))

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *StoreError, got %v", err)
	}

	final, _ := fs.Rows(ctx, string(section.FinalDataTable))
	if len(final) != 2 {
		t.Fatalf("Final Data Table rows = %d, want header + error row", len(final))
	}
	row := final[1]
	if row[0] != "1" {
		t.Errorf("error row deal ID = %q", row[0])
	}
	if !strings.HasPrefix(row[1], "Processing error:") {
		t.Errorf("expected processing-error marker, got %q", row[1])
	}
}

func TestStoreFailureDoesNotTouchOtherDealsRows(t *testing.T) {
	ctx := context.Background()
	fdt := string(section.FinalDataTable)
	fs := &flakyStore{
		MemoryStore: store.NewMemoryStore(),
		failSheet:   fdt,
		// The placeholder append lands, the data append fails.
		failOn: map[int]bool{2: true},
	}

	// Deal 0 finished on an earlier run; its row must survive deal 1's
	// failure.
	header := section.BaseHeaders(section.FinalDataTable)
	row0 := make([]string, len(header))
	for i := range row0 {
		row0[i] = section.NotAvailable
	}
	row0[0] = "0"
	if err := fs.MemoryStore.AppendRows(ctx, fdt, [][]string{header, row0}); err != nil {
		t.Fatal(err)
	}

	o := NewOrchestrator(testService(fs, scenarioProvider()), Settings{})
	err := o.processCorpus(ctx, filepath.Join(t.TempDir(), "1.pdf"), "1", testCorpus(t))

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected *StoreError, got %v", err)
	}

	final, _ := fs.Rows(ctx, fdt)
	if len(final) != 3 {
		t.Fatalf("Final Data Table rows = %d, want header + deal 0 row + error row:\n%v", len(final), final)
	}
	if final[1][0] != "0" {
		t.Errorf("deal 0's row was disturbed: %v", final[1])
	}
	if final[2][0] != "1" || !strings.HasPrefix(final[2][1], store.ErrorPrefix) {
		t.Errorf("deal 1's error row missing or malformed: %v", final[2])
	}
}

func TestRetryAfterStoreFailureReplacesErrorRow(t *testing.T) {
	ctx := context.Background()
	fdt := string(section.FinalDataTable)
	fs := &flakyStore{
		MemoryStore: store.NewMemoryStore(),
		failSheet:   fdt,
		// On an empty sheet the header append from EnsureHeader is #1 and
		// the placeholder is #2, so the data append is #3.
		failOn: map[int]bool{3: true},
	}
	o := NewOrchestrator(testService(fs, scenarioProvider()), Settings{})
	pdfPath := filepath.Join(t.TempDir(), "1.pdf")

	if err := o.processCorpus(ctx, pdfPath, "1", testCorpus(t)); err == nil {
		t.Fatal("expected store failure on first run")
	}
	rows, _ := fs.Rows(ctx, fdt)
	if len(rows) != 2 || !strings.HasPrefix(rows[1][1], store.ErrorPrefix) {
		t.Fatalf("expected error marker after failed run, got %v", rows)
	}

	// The deal stays unmarked in the ledger, so the next cycle retries it.
	if err := o.processCorpus(ctx, pdfPath, "1", testCorpus(t)); err != nil {
		t.Fatal(err)
	}
	rows, _ = fs.Rows(ctx, fdt)
	if len(rows) != 2 {
		t.Fatalf("retried deal must end up with exactly one row, got:\n%v", rows)
	}
	if got := cell(t, rows, 1, "Loan_Proceeds"); got != "$10" {
		t.Errorf("Loan_Proceeds = %q, want $10", got)
	}
	if strings.HasPrefix(rows[1][1], store.ErrorPrefix) || rows[1][1] == processingStarted {
		t.Errorf("stale marker survived the retry: %v", rows[1])
	}
}

func TestRetryClearsOrphanedPlaceholder(t *testing.T) {
	st := store.NewMemoryStore()
	o := NewOrchestrator(testService(st, scenarioProvider()), Settings{})
	fdt := string(section.FinalDataTable)
	pdfPath := filepath.Join(t.TempDir(), "1.pdf")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := o.processCorpus(cancelled, pdfPath, "1", testCorpus(t)); err == nil {
		t.Fatal("expected cancellation error")
	}

	ctx := context.Background()
	rows, _ := st.Rows(ctx, fdt)
	if len(rows) != 2 || rows[1][1] != processingStarted {
		t.Fatalf("expected orphaned placeholder after cancellation, got %v", rows)
	}

	if err := o.processCorpus(ctx, pdfPath, "1", testCorpus(t)); err != nil {
		t.Fatal(err)
	}
	rows, _ = st.Rows(ctx, fdt)
	if len(rows) != 2 {
		t.Fatalf("placeholder must be replaced, not joined, got:\n%v", rows)
	}
	if rows[1][1] == processingStarted {
		t.Errorf("placeholder survived the retry: %v", rows[1])
	}
}

func TestProcessCorpusIdempotentRows(t *testing.T) {
	ctx := context.Background()
	pdfDir := t.TempDir()

	run := func() [][]string {
		st := store.NewMemoryStore()
		o := NewOrchestrator(testService(st, scenarioProvider()), Settings{})
		if err := o.processCorpus(ctx, filepath.Join(pdfDir, "1.pdf"), "1", testCorpus(t)); err != nil {
			t.Fatal(err)
		}
		rows, _ := st.Rows(ctx, string(section.FinalDataTable))
		return rows
	}

	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("projected rows differ between identical runs:\n%v\n%v", first, second)
	}
}

func TestProcessBatchHonorsLedger(t *testing.T) {
	ctx := context.Background()
	provider := scenarioProvider()

	ledger, err := store.OpenLedger(filepath.Join(t.TempDir(), "processed_files.txt"))
	if err != nil {
		t.Fatal(err)
	}
	ledger.Mark("file-seen")

	svc := testService(store.NewMemoryStore(), provider)
	svc.Ledger = ledger
	svc.Source = &stubSource{files: []store.RemoteFile{
		{ID: "file-seen", Name: "old.pdf"},
	}}
	o := NewOrchestrator(svc, Settings{})

	if err := o.ProcessBatch(ctx, "folder"); err != nil {
		t.Fatal(err)
	}
	if provider.calls != 0 {
		t.Errorf("already-processed file must be skipped, got %d model calls", provider.calls)
	}
}

func TestProcessBatchStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := testService(store.NewMemoryStore(), scenarioProvider())
	svc.Source = &stubSource{files: []store.RemoteFile{{ID: "a", Name: "a.pdf"}}}
	o := NewOrchestrator(svc, Settings{})

	if err := o.ProcessBatch(ctx, "folder"); err == nil {
		t.Error("expected cancellation error")
	}
}

func TestDealIDFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"tmp/ABC123.pdf", "ABC123"},
		{"/data/ppm/4444.pdf", "4444"},
		{"plain.PDF", "plain"},
		{"no-extension", "no-extension"},
	}
	for _, tc := range cases {
		if got := DealIDFromPath(tc.path); got != tc.want {
			t.Errorf("DealIDFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
