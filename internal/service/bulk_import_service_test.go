package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/events"
	"taic-market/internal/storage"
)

type mockObjectStore struct {
	keys []string
	err  error
}

func (m *mockObjectStore) Put(_ context.Context, key string, _ []byte, _ string) error {
	if m.err != nil {
		return m.err
	}
	m.keys = append(m.keys, key)
	return nil
}

func (m *mockObjectStore) PresignPut(_ context.Context, key string, _ time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://storage.test/" + key, nil
}

func newTestBulkImportService(products *mockProductRepo, imports *mockImportRepo, store *mockObjectStore, publisher *mockPublisher) *BulkImportService {
	productSvc := NewProductService(zap.NewNop(), products, nil)
	var objectStore storage.ObjectStore
	if store != nil {
		objectStore = store
	}
	var pub events.Publisher
	if publisher != nil {
		pub = publisher
	}
	return NewBulkImportService(zap.NewNop(), productSvc, imports, objectStore, pub)
}

const importHeaderLine = "name,description,price,category,stock,image_url\n"

func TestBulkImportMixedRows(t *testing.T) {
	products := newMockProductRepo()
	imports := &mockImportRepo{}
	store := &mockObjectStore{}
	publisher := &mockPublisher{}
	svc := newTestBulkImportService(products, imports, store, publisher)

	file := []byte(importHeaderLine +
		"Trail shoes,Light running shoes,59.90,sports,10,https://img.test/shoes.png\n" +
		",Missing name,10.00,sports,1,\n" +
		"Bad price,Broken row,abc,sports,1,\n" +
		"Water bottle,,9.50,sports,0,\n")

	summary, err := svc.Import(context.Background(), "m1", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Imported != 2 || summary.Failed != 2 {
		t.Fatalf("expected 2 imported / 2 failed, got %d / %d", summary.Imported, summary.Failed)
	}
	if len(summary.Errors) != 2 {
		t.Fatalf("expected 2 row errors, got %v", summary.Errors)
	}
	if !strings.HasPrefix(summary.Errors[0], "row 3:") || !strings.HasPrefix(summary.Errors[1], "row 4:") {
		t.Fatalf("errors must carry 1-based file row numbers, got %v", summary.Errors)
	}
	if len(products.productsByID) != 2 {
		t.Fatalf("expected 2 products created, got %d", len(products.productsByID))
	}

	if len(imports.imports) != 1 {
		t.Fatalf("expected one import record, got %d", len(imports.imports))
	}
	record := imports.imports[0]
	if record.Status != domain.ImportStatusPartial {
		t.Fatalf("expected partial status, got %q", record.Status)
	}
	if record.RowCount != 4 || record.CreatedCount != 2 || record.ErrorCount != 2 {
		t.Fatalf("unexpected record counts: %+v", record)
	}
	if record.ObjectKey == "" || len(store.keys) != 1 {
		t.Fatalf("expected file archived with object key")
	}
	if len(publisher.bulkImports) != 1 || publisher.bulkImports[0] != summary.ImportID {
		t.Fatalf("expected bulk import event for %s", summary.ImportID)
	}
}

func TestBulkImportAllValidRows(t *testing.T) {
	imports := &mockImportRepo{}
	svc := newTestBulkImportService(newMockProductRepo(), imports, nil, nil)

	file := []byte(importHeaderLine + "Trail shoes,Light,59.90,sports,10,\n")
	summary, err := svc.Import(context.Background(), "m1", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Imported != 1 || summary.Failed != 0 {
		t.Fatalf("expected clean import, got %+v", summary)
	}
	if imports.imports[0].Status != domain.ImportStatusCompleted {
		t.Fatalf("expected completed status, got %q", imports.imports[0].Status)
	}
}

func TestBulkImportAllRowsInvalid(t *testing.T) {
	imports := &mockImportRepo{}
	svc := newTestBulkImportService(newMockProductRepo(), imports, nil, nil)

	file := []byte(importHeaderLine + ",no name,1.00,misc,1,\n")
	summary, err := svc.Import(context.Background(), "m1", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Imported != 0 || summary.Failed != 1 {
		t.Fatalf("expected all rows failed, got %+v", summary)
	}
	if imports.imports[0].Status != domain.ImportStatusFailed {
		t.Fatalf("expected failed status, got %q", imports.imports[0].Status)
	}
}

func TestBulkImportRejectsBadHeader(t *testing.T) {
	svc := newTestBulkImportService(newMockProductRepo(), &mockImportRepo{}, nil, nil)

	file := []byte("title,price\nShoes,10.00\n")
	if _, err := svc.Import(context.Background(), "m1", file); err == nil {
		t.Fatalf("expected error for unknown header")
	}
}

func TestBulkImportEmptyFile(t *testing.T) {
	svc := newTestBulkImportService(newMockProductRepo(), &mockImportRepo{}, nil, nil)

	if _, err := svc.Import(context.Background(), "m1", []byte(importHeaderLine)); !errors.Is(err, ErrEmptyImport) {
		t.Fatalf("expected ErrEmptyImport, got %v", err)
	}
}

func TestBulkImportArchiveFailureKeepsProducts(t *testing.T) {
	products := newMockProductRepo()
	imports := &mockImportRepo{}
	store := &mockObjectStore{err: errors.New("storage down")}
	svc := newTestBulkImportService(products, imports, store, nil)

	file := []byte(importHeaderLine + "Trail shoes,Light,59.90,sports,10,\n")
	summary, err := svc.Import(context.Background(), "m1", file)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Imported != 1 {
		t.Fatalf("expected product created despite archive failure")
	}
	if imports.imports[0].ObjectKey != "" {
		t.Fatalf("expected empty object key when archive fails")
	}
}
