package reconcile

import (
	"context"
	"errors"

	"github.com/docentes-portal/backend/internal/models"
	"github.com/docentes-portal/backend/pkg/logger"
	"github.com/docentes-portal/backend/pkg/metrics"
)

// MsgMissingFields is the row error for a row without cedula, nombre or email.
const MsgMissingFields = "Faltan campos requeridos (cedula, nombre, email)"

// Directory is the subset of the user store a reconciliation run writes to.
type Directory interface {
	FindByIdentifier(ctx context.Context, cedula string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) (*models.User, error)
	UpdateByID(ctx context.Context, id string, up models.UserUpdate) error
}

// Archiver keeps a copy of every reconciled workbook and returns where it went.
type Archiver interface {
	Archive(ctx context.Context, data []byte) (string, error)
}

// RowStatus is the result of reconciling a single row.
type RowStatus int

const (
	RowCreated RowStatus = iota
	RowUpdated
	RowFailed
)

func (s RowStatus) String() string {
	switch s {
	case RowCreated:
		return "created"
	case RowUpdated:
		return "updated"
	default:
		return "failed"
	}
}

// RowResult records what happened to one row. Message is set for RowFailed.
type RowResult struct {
	Row     int
	Status  RowStatus
	Message string
}

// RowError is the serialized form of a failed row.
type RowError struct {
	Fila    int    `json:"fila"`
	Mensaje string `json:"mensaje"`
}

// Outcome summarises a reconciliation run.
type Outcome struct {
	Created int        `json:"creados"`
	Updated int        `json:"actualizados"`
	Errors  []RowError `json:"errores"`
}

func (o *Outcome) add(r RowResult) {
	switch r.Status {
	case RowCreated:
		o.Created++
	case RowUpdated:
		o.Updated++
	default:
		o.Errors = append(o.Errors, RowError{Fila: r.Row, Mensaje: r.Message})
	}
}

// Reconciler applies spreadsheet rows to the directory, creating unknown
// instructors and refreshing the mutable fields of known ones.
type Reconciler struct {
	dir      Directory
	archiver Archiver
}

func NewReconciler(dir Directory) *Reconciler {
	return &Reconciler{dir: dir}
}

// WithArchiver enables archiving of each workbook before its rows are applied.
func (r *Reconciler) WithArchiver(a Archiver) *Reconciler {
	r.archiver = a
	return r
}

// Reconcile parses data and applies every row in sheet order. Row failures
// are collected in the outcome; only parse errors abort the run. Once the
// workbook parses, cancelling ctx no longer stops it: every row is applied
// even if the caller has gone away.
func (r *Reconciler) Reconcile(ctx context.Context, data []byte) (*Outcome, error) {
	rows, err := ParseWorkbook(data)
	if err != nil {
		result := "invalid"
		if errors.Is(err, ErrEmptyInput) {
			result = "empty"
		}
		metrics.ImportRuns.WithLabelValues(result).Inc()
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	if r.archiver != nil {
		if key, aerr := r.archiver.Archive(ctx, data); aerr != nil {
			logger.Warnf("reconcile: archive workbook failed: %v", aerr)
		} else {
			logger.Debugf("reconcile: workbook archived as %s", key)
		}
	}

	out := &Outcome{Errors: []RowError{}}
	for _, row := range rows {
		res := r.applyRow(ctx, row)
		metrics.ImportRows.WithLabelValues(res.Status.String()).Inc()
		out.add(res)
	}
	metrics.ImportRuns.WithLabelValues("ok").Inc()
	logger.With("created", out.Created, "updated", out.Updated, "errors", len(out.Errors)).Infof("reconcile: %d rows applied", len(rows))
	return out, nil
}

// Sync reads the workbook from src and reconciles it.
func (r *Reconciler) Sync(ctx context.Context, src Source) (*Outcome, error) {
	data, err := src.Read(ctx)
	if err != nil {
		metrics.ImportRuns.WithLabelValues("missing").Inc()
		return nil, err
	}
	logger.Infof("reconcile: syncing from %s", src)
	return r.Reconcile(ctx, data)
}

func (r *Reconciler) applyRow(ctx context.Context, row Row) RowResult {
	cedula, nombre, email := row.Get(ColCedula), row.Get(ColNombre), row.Get(ColEmail)
	if cedula == "" || nombre == "" || email == "" {
		return RowResult{Row: row.Number, Status: RowFailed, Message: MsgMissingFields}
	}
	fail := func(err error) RowResult {
		logger.Debugf("reconcile: row %d failed: %v", row.Number, err)
		return RowResult{Row: row.Number, Status: RowFailed, Message: err.Error()}
	}

	fields := models.UserUpdate{
		Nombre:          nombre,
		Email:           email,
		Telefono:        row.Get(ColTelefono),
		Departamento:    row.Get(ColDepartamento),
		TituloAcademico: row.Get(ColTituloAcademico),
	}

	existing, err := r.dir.FindByIdentifier(ctx, cedula)
	if err != nil {
		return fail(err)
	}
	if existing != nil {
		if err := r.dir.UpdateByID(ctx, existing.ID, fields); err != nil {
			return fail(err)
		}
		return RowResult{Row: row.Number, Status: RowUpdated}
	}

	u := &models.User{Cedula: cedula, Role: models.RoleInstructor, Activo: models.Active(true)}
	fields.Apply(u)
	if _, err := r.dir.Insert(ctx, u); err != nil {
		return fail(err)
	}
	return RowResult{Row: row.Number, Status: RowCreated}
}
