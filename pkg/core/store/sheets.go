package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsStore is a TabularStore backed by a single Google Spreadsheet.
// One worksheet per section. Mutations on the same worksheet are
// serialized so a delete-then-append rewrite cannot interleave with a
// concurrent append.
type SheetsStore struct {
	svc           *sheets.Service
	spreadsheetID string

	mu     sync.Mutex
	perTab map[string]*sync.Mutex
	tabIDs map[string]int64
}

// NewSheetsStore builds a store for the given spreadsheet. Credentials
// come from the service account file named by GOOGLE_SERVICE_ACCOUNT_FILE.
func NewSheetsStore(ctx context.Context, spreadsheetID string) (*SheetsStore, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet ID is empty")
	}

	credFile := os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE")
	if credFile == "" {
		return nil, fmt.Errorf("GOOGLE_SERVICE_ACCOUNT_FILE environment variable not set")
	}

	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &SheetsStore{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		perTab:        make(map[string]*sync.Mutex),
		tabIDs:        make(map[string]int64),
	}, nil
}

func (s *SheetsStore) AppendRows(ctx context.Context, sheet string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	lock := s.tabLock(sheet)
	lock.Lock()
	defer lock.Unlock()

	values := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		values[i] = cells
	}

	vr := &sheets.ValueRange{Values: values}
	resp, err := s.svc.Spreadsheets.Values.Append(s.spreadsheetID, sheet, vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to append to sheet %s: %w", sheet, err)
	}
	if resp.Updates != nil {
		log.Printf("[STORE] Appended %d cells to sheet %s", resp.Updates.UpdatedCells, sheet)
	}
	return nil
}

func (s *SheetsStore) DeleteLastRow(ctx context.Context, sheet string) error {
	lock := s.tabLock(sheet)
	lock.Lock()
	defer lock.Unlock()

	tabID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	numRows := int64(len(resp.Values))
	if numRows < 1 {
		log.Printf("[STORE] Sheet %s is empty, no rows to delete", sheet)
		return nil
	}
	return s.deleteRowAt(ctx, sheet, tabID, numRows-1)
}

func (s *SheetsStore) DeleteRow(ctx context.Context, sheet string, index int) error {
	lock := s.tabLock(sheet)
	lock.Lock()
	defer lock.Unlock()

	tabID, err := s.sheetID(ctx, sheet)
	if err != nil {
		return err
	}

	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if index < 0 || index >= len(resp.Values) {
		return nil
	}
	return s.deleteRowAt(ctx, sheet, tabID, int64(index))
}

func (s *SheetsStore) deleteRowAt(ctx context.Context, sheet string, tabID, index int64) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    tabID,
					Dimension:  "ROWS",
					StartIndex: index,
					EndIndex:   index + 1,
				},
			},
		}},
	}
	if _, err := s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete row %d of sheet %s: %w", index, sheet, err)
	}
	return nil
}

func (s *SheetsStore) Rows(ctx context.Context, sheet string) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, sheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, raw := range resp.Values {
		row := make([]string, len(raw))
		for j, cell := range raw {
			row[j] = fmt.Sprintf("%v", cell)
		}
		rows[i] = row
	}
	return rows, nil
}

func (s *SheetsStore) SheetNames(ctx context.Context) ([]string, error) {
	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read spreadsheet metadata: %w", err)
	}

	names := make([]string, 0, len(meta.Sheets))
	s.mu.Lock()
	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		names = append(names, sh.Properties.Title)
		s.tabIDs[sh.Properties.Title] = sh.Properties.SheetId
	}
	s.mu.Unlock()
	return names, nil
}

// sheetID resolves a worksheet title to its numeric ID, refreshing the
// cached metadata on a miss so newly created tabs are picked up.
func (s *SheetsStore) sheetID(ctx context.Context, sheet string) (int64, error) {
	s.mu.Lock()
	id, ok := s.tabIDs[sheet]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	if _, err := s.SheetNames(ctx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	id, ok = s.tabIDs[sheet]
	s.mu.Unlock()
	if !ok {
		return 0, fmt.Errorf("sheet %s not found in spreadsheet", sheet)
	}
	return id, nil
}

func (s *SheetsStore) tabLock(sheet string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.perTab[sheet]
	if !ok {
		lock = &sync.Mutex{}
		s.perTab[sheet] = lock
	}
	return lock
}
