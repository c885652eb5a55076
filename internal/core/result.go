package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrorClass is the row-level error taxonomy.
type ErrorClass string

const (
	// ClassValidation: a required value is missing or out of range.
	ClassValidation ErrorClass = "validation"
	// ClassReference: an entity the row points at could not be resolved.
	ClassReference ErrorClass = "reference"
	// ClassSystem: the store failed or an unexpected state was reached.
	ClassSystem ErrorClass = "system"
)

// Entity tags used in ErrorRecord.Entity.
const (
	EntityProduct    = "product"
	EntityCustomer   = "customer"
	EntityCategory   = "category"
	EntitySale       = "sale"
	EntityProcessing = "processing"
	EntityFile       = "file"
)

// RowError is a classified failure raised while reconciling a row.
type RowError struct {
	Class   ErrorClass
	Entity  string
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *RowError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *RowError) Unwrap() error { return e.Err }

func validationError(entity, field, value, msg string) *RowError {
	return &RowError{Class: ClassValidation, Entity: entity, Field: field, Value: value, Message: msg}
}

func referenceError(entity, field, value, msg string) *RowError {
	return &RowError{Class: ClassReference, Entity: entity, Field: field, Value: value, Message: msg}
}

// systemError wraps a store failure. System errors always carry the
// processing entity tag regardless of the step that raised them.
func systemError(op string, err error) *RowError {
	return &RowError{Class: ClassSystem, Entity: EntityProcessing, Message: op, Err: err}
}

// ErrorRecord is one row-level problem reported back to the caller.
type ErrorRecord struct {
	Row     int        `json:"fila"`
	Field   string     `json:"campo,omitempty"`
	Value   string     `json:"valor,omitempty"`
	Message string     `json:"mensaje"`
	Entity  string     `json:"entidad"`
	Class   ErrorClass `json:"tipo"`
}

func recordFromError(row int, err error) ErrorRecord {
	var re *RowError
	if !errors.As(err, &re) {
		re = systemError("unexpected error", err)
	}
	msg := re.Message
	if re.Err != nil {
		msg = re.Message + ": " + re.Err.Error()
	}
	return ErrorRecord{
		Row:     row,
		Field:   re.Field,
		Value:   re.Value,
		Message: msg,
		Entity:  re.Entity,
		Class:   re.Class,
	}
}

// ImportResult is the outcome of one import run.
type ImportResult struct {
	ImportID string     `json:"id,omitempty"`
	FileName string     `json:"archivo,omitempty"`
	Kind     ImportKind `json:"tipo,omitempty"`

	TotalRows         int `json:"totalFilas"`
	SuccessfulRows    int `json:"filasExitosas"`
	ErrorRows         int `json:"filasConError"`
	ProductsCreated   int `json:"productosCreados"`
	ProductsUpdated   int `json:"productosActualizados"`
	CustomersCreated  int `json:"clientesCreados"`
	CustomersUpdated  int `json:"clientesActualizados"`
	CategoriesCreated int `json:"categoriasCreadas"`
	SalesCreated      int `json:"ventasCreadas"`

	Success bool          `json:"exito"`
	Message string        `json:"mensaje"`
	Errors  []ErrorRecord `json:"errores"`

	UnmappedHeaders []string      `json:"columnasIgnoradas,omitempty"`
	StartedAt       time.Time     `json:"inicio"`
	Duration        time.Duration `json:"duracionNs"`
}

func (r *ImportResult) addError(rec ErrorRecord) {
	r.Errors = append(r.Errors, rec)
}

// finalize derives the success flag and summary from the counters.
func (r *ImportResult) finalize() {
	r.Success = r.ErrorRows < r.TotalRows
	r.Message = fmt.Sprintf("Import completed: %d succeeded, %d with errors.", r.SuccessfulRows, r.ErrorRows)
	if r.Errors == nil {
		r.Errors = []ErrorRecord{}
	}
}

// fail marks a batch that never reached the row loop.
func (r *ImportResult) fail(entity string, err error) {
	r.Errors = append(r.Errors, ErrorRecord{
		Row:     0,
		Message: MapError(err).Message,
		Value:   err.Error(),
		Entity:  entity,
		Class:   ClassSystem,
	})
	r.Success = false
	r.Message = "Import failed: " + FormatUserError(err)
}
