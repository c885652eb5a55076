package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Observer is notified once per finished import, successful or not.
type Observer interface {
	ObserveImport(res *ImportResult)
}

// Options configures a Service.
type Options struct {
	Engine   EngineOptions
	Observer Observer
	Logger   *slog.Logger
}

// Service is the entry point for imports, previews and templates.
type Service struct {
	store    Store
	engine   EngineOptions
	observer Observer
	logger   *slog.Logger
}

// NewService creates a Service writing to store.
func NewService(store Store, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:    store,
		engine:   opts.Engine.withDefaults(),
		observer: opts.Observer,
		logger:   logger,
	}
}

// ImportRequest is one worksheet to import.
type ImportRequest struct {
	ImportID string // generated when empty
	FileName string
	Data     []byte
	Kind     ImportKind
}

// Import reads, maps, extracts and reconciles a worksheet. It never returns
// an error: failures before the row loop are reported as a failed result
// with a single row-0 ErrorRecord.
//
// The row loop is not interrupted by ctx; cancellation only surfaces as
// store errors on the rows that follow it.
func (s *Service) Import(ctx context.Context, req ImportRequest) *ImportResult {
	start := time.Now()
	if req.ImportID == "" {
		req.ImportID = uuid.New().String()
	}
	if req.Kind == "" {
		req.Kind = KindAuto
	}

	result := &ImportResult{
		ImportID:  req.ImportID,
		FileName:  req.FileName,
		Kind:      req.Kind,
		StartedAt: start,
	}
	logger := s.logger.With("import_id", req.ImportID, "file", req.FileName, "kind", req.Kind)

	defer func() {
		result.Duration = time.Since(start)
		if s.observer != nil {
			s.observer.ObserveImport(result)
		}
	}()

	rows, unmapped, err := s.extract(req)
	result.UnmappedHeaders = unmapped
	if err != nil {
		logger.Warn("import rejected", "error", err)
		result.fail(EntityFile, err)
		return result
	}

	cache, err := warmCache(ctx, s.store)
	if err != nil {
		logger.Error("import aborted", "error", err)
		result.fail(EntityProcessing, fmt.Errorf("load existing records: %w", err))
		return result
	}
	categories, products, customers := cache.counts()
	logger.Info("import started",
		"rows", len(rows),
		"unmapped_headers", len(unmapped),
		"cached_categories", categories,
		"cached_products", products,
		"cached_customers", customers,
	)

	run := &importRun{
		ctx:    ctx,
		store:  s.store,
		cache:  cache,
		result: result,
		opts:   s.engine,
		logger: logger,
	}
	run.reconcile(rows)
	result.finalize()

	logger.Info("import completed",
		"total_rows", result.TotalRows,
		"error_rows", result.ErrorRows,
		"products_created", result.ProductsCreated,
		"products_updated", result.ProductsUpdated,
		"customers_created", result.CustomersCreated,
		"customers_updated", result.CustomersUpdated,
		"categories_created", result.CategoriesCreated,
		"sales_created", result.SalesCreated,
		"duration", time.Since(start),
	)
	return result
}

// extract runs the read, map and extract stages shared by Import and Preview.
func (s *Service) extract(req ImportRequest) ([]DenormalizedRow, []string, error) {
	ws, err := ReadWorksheet(req.FileName, req.Data)
	if err != nil {
		return nil, nil, err
	}
	headerIdx, err := ws.HeaderRow()
	if err != nil {
		return nil, nil, err
	}

	cols, unmapped := MapColumns(ws.Rows[headerIdx], req.Kind)
	if len(cols) == 0 {
		return nil, unmapped, ErrNoRecognizedColumns
	}
	s.logger.Debug("columns mapped", "file", req.FileName, "fields", cols.Fields(), "unmapped", unmapped)

	data, lines := ws.DataRows(headerIdx)
	return ExtractRows(data, lines, cols), unmapped, nil
}

// PreviewColumn describes how one header was interpreted.
type PreviewColumn struct {
	Index  int    `json:"indice"`
	Header string `json:"encabezado"`
	Field  string `json:"campo"`
}

// PreviewResult summarises a worksheet without writing anything.
type PreviewResult struct {
	FileName        string          `json:"archivo"`
	Kind            ImportKind      `json:"tipo"`
	Columns         []PreviewColumn `json:"columnas"`
	UnmappedHeaders []string        `json:"columnasIgnoradas"`
	TotalRows       int             `json:"totalFilas"`
	ProductRows     int             `json:"filasProducto"`
	CustomerRows    int             `json:"filasCliente"`
	SaleRows        int             `json:"filasVenta"`
}

// Preview maps and extracts a worksheet and reports what an import would
// consider, without touching the store.
func (s *Service) Preview(req ImportRequest) (*PreviewResult, error) {
	if req.Kind == "" {
		req.Kind = KindAuto
	}
	ws, err := ReadWorksheet(req.FileName, req.Data)
	if err != nil {
		return nil, err
	}
	headerIdx, err := ws.HeaderRow()
	if err != nil {
		return nil, err
	}
	header := ws.Rows[headerIdx]
	cols, unmapped := MapColumns(header, req.Kind)

	res := &PreviewResult{
		FileName:        req.FileName,
		Kind:            req.Kind,
		UnmappedHeaders: unmapped,
		Columns:         make([]PreviewColumn, 0, len(cols)),
	}
	for idx := range header {
		if f, ok := cols[idx]; ok {
			res.Columns = append(res.Columns, PreviewColumn{Index: idx, Header: header[idx], Field: f.String()})
		}
	}
	if res.UnmappedHeaders == nil {
		res.UnmappedHeaders = []string{}
	}

	data, lines := ws.DataRows(headerIdx)
	for _, row := range ExtractRows(data, lines, cols) {
		res.TotalRows++
		if row.HasProduct {
			res.ProductRows++
		}
		if row.HasCustomer {
			res.CustomerRows++
		}
		if row.HasSale {
			res.SaleRows++
		}
	}
	return res, nil
}

// Template renders an import template.
func (s *Service) Template(mode TemplateMode, format TemplateFormat) ([]byte, error) {
	return GenerateTemplate(mode, format)
}

// TaxRate is the rate applied to imported sales.
func (s *Service) TaxRate() string {
	return s.engine.TaxRate.String()
}
