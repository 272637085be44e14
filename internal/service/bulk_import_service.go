package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"taic-market/internal/domain"
	"taic-market/internal/events"
	"taic-market/internal/repository"
	"taic-market/internal/storage"
)

var ErrEmptyImport = errors.New("import file has no data rows")

var bulkImportHeader = []string{"name", "description", "price", "category", "stock", "image_url"}

// ImportSummary resume el resultado de un import masivo.
type ImportSummary struct {
	ImportID string   `json:"import_id"`
	Imported int      `json:"imported"`
	Failed   int      `json:"failed"`
	Errors   []string `json:"errors,omitempty"`
}

// BulkImportService procesa archivos CSV de productos por merchant: valida
// fila por fila, crea los productos válidos, archiva el original en object
// storage y registra el resultado. Las filas inválidas no frenan el resto.
type BulkImportService struct {
	logger   *zap.Logger
	products *ProductService
	imports  repository.ImportRepository
	store    storage.ObjectStore
	events   events.Publisher
}

func NewBulkImportService(
	logger *zap.Logger,
	products *ProductService,
	imports repository.ImportRepository,
	store storage.ObjectStore,
	publisher events.Publisher,
) *BulkImportService {
	if store == nil {
		store = storage.NewDisabledStore()
	}
	if publisher == nil {
		publisher = events.NewDisabledPublisher()
	}
	return &BulkImportService{
		logger:   logger,
		products: products,
		imports:  imports,
		store:    store,
		events:   publisher,
	}
}

func (s *BulkImportService) Import(ctx context.Context, merchantID string, file []byte) (ImportSummary, error) {
	rows, err := parseImportCSV(file)
	if err != nil {
		return ImportSummary{}, err
	}
	if len(rows) == 0 {
		return ImportSummary{}, ErrEmptyImport
	}

	summary := ImportSummary{ImportID: uuid.NewString()}
	for i, row := range rows {
		input, err := rowToProductInput(row)
		if err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		if _, err := s.products.Create(ctx, merchantID, input); err != nil {
			summary.Failed++
			summary.Errors = append(summary.Errors, fmt.Sprintf("row %d: %v", i+2, err))
			continue
		}
		summary.Imported++
	}

	objectKey := storage.ObjectKey("imports/" + merchantID)
	if err := s.store.Put(ctx, objectKey, file, "text/csv"); err != nil {
		// El archivo es un respaldo; no invalida los productos ya creados.
		s.logger.Warn("archive import file failed", zap.Error(err))
		objectKey = ""
	}

	status := domain.ImportStatusCompleted
	switch {
	case summary.Imported == 0:
		status = domain.ImportStatusFailed
	case summary.Failed > 0:
		status = domain.ImportStatusPartial
	}

	record := domain.BulkImport{
		ID:           summary.ImportID,
		MerchantID:   merchantID,
		ObjectKey:    objectKey,
		RowCount:     len(rows),
		CreatedCount: summary.Imported,
		ErrorCount:   summary.Failed,
		Status:       status,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.imports.Create(ctx, record); err != nil {
		return ImportSummary{}, err
	}

	if err := s.events.PublishBulkImport(ctx, merchantID, summary.ImportID, summary.Imported, summary.Failed); err != nil {
		s.logger.Warn("publish bulk import event failed", zap.Error(err))
	}

	return summary, nil
}

func parseImportCSV(file []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(file))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) != len(bulkImportHeader) {
		return nil, fmt.Errorf("csv header must be %s", strings.Join(bulkImportHeader, ","))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), bulkImportHeader[i]) {
			return nil, fmt.Errorf("csv header must be %s", strings.Join(bulkImportHeader, ","))
		}
	}

	var rows [][]string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func rowToProductInput(row []string) (ProductInput, error) {
	name := strings.TrimSpace(row[0])
	if name == "" {
		return ProductInput{}, errors.New("name is required")
	}

	price, err := decimal.NewFromString(strings.TrimSpace(row[2]))
	if err != nil || price.IsNegative() {
		return ProductInput{}, errors.New("invalid price")
	}

	stock := 0
	if raw := strings.TrimSpace(row[4]); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return ProductInput{}, errors.New("invalid stock")
		}
	}

	return ProductInput{
		Name:        name,
		Description: strings.TrimSpace(row[1]),
		Price:       price,
		Category:    strings.TrimSpace(row[3]),
		ImageURL:    strings.TrimSpace(row[5]),
		Stock:       stock,
	}, nil
}
