package resource

import (
	"context"
	"fmt"
	"sync"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-records/core"
	"github.com/trezcool/masomo-records/core/record"
)

var (
	// ErrBusy is returned when a mutation is requested while another one is in flight.
	ErrBusy = errors.New("another change is in progress")

	// ErrNotEditing is returned by draft operations while the edit form is closed.
	ErrNotEditing = errors.New("no record is being edited")
)

// Phase of the collection.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseLoadFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseLoadFailed:
		return "load failed"
	}
	return "idle"
}

// EditState of the draft.
type EditState int

const (
	EditClosed EditState = iota
	EditOpen
	EditSubmitting
)

func (s EditState) String() string {
	switch s {
	case EditOpen:
		return "editing"
	case EditSubmitting:
		return "submitting"
	}
	return "closed"
}

// View is a read-only snapshot of a Controller.
type View struct {
	Schema      record.Schema
	Phase       Phase
	Edit        EditState
	Records     []record.Record
	Draft       *record.Draft // nil while the edit form is closed
	Original    *record.Record
	Err         error
	FieldErrors map[string]string
	Busy        bool
}

type Option func(*Controller)

// WithStaleLoadGuard discards load responses older than the newest one applied.
// Without it the last response to resolve wins.
func WithStaleLoadGuard() Option {
	return func(c *Controller) { c.staleGuard = true }
}

// Controller keeps the collection of one resource and a single in-flight draft.
// It is safe for concurrent use; no lock is held during backend calls.
type Controller struct {
	schema     record.Schema
	backend    Backend
	confirm    ConfirmFunc
	log        core.Logger
	staleGuard bool

	mu         sync.Mutex
	phase      Phase
	edit       EditState
	records    []record.Record
	draft      *record.Draft
	original   *record.Record
	err        error
	fieldErrs  map[string]string
	mutating   bool
	loading    int    // loads in flight
	loadSeq    uint64 // last issued
	appliedSeq uint64 // last applied
}

func NewController(schema record.Schema, backend Backend, confirm ConfirmFunc, logger core.Logger, opts ...Option) (c *Controller, err error) {
	if err = vala.BeginValidation().Validate(
		vala.StringNotEmpty(schema.Collection, "schema.Collection"),
		vala.IsNotNil(backend, "backend"),
		vala.IsNotNil(confirm, "confirm"),
		vala.IsNotNil(logger, "logger"),
	).Check(); err != nil {
		return nil, err
	}

	c = &Controller{
		schema:  schema,
		backend: backend,
		confirm: confirm,
		log:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Controller) Schema() record.Schema { return c.schema }

// Load replaces the collection with a fresh snapshot ordered by the sort key.
// On failure the previous collection is kept and a *core.FetchError is surfaced.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.phase = PhaseLoading
	c.loading++
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	recs, err := c.backend.Select(ctx, c.schema.Collection, c.schema.DefaultOrdering())
	if err == nil {
		err = checkIdentifiers(recs)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.loading--
	if c.staleGuard && seq < c.appliedSeq {
		c.settlePhase()
		c.log.Debug(fmt.Sprintf("discarded stale %s load #%d", c.schema.Collection, seq))
		return nil
	}
	c.appliedSeq = seq

	if err != nil {
		err = core.NewFetchError(c.schema.Collection, err)
		c.err = err
		if c.loading == 0 {
			c.phase = PhaseLoadFailed
		}
		c.log.Error(err.Error(), err, map[string]interface{}{"collection": c.schema.Collection})
		return err
	}

	c.records = recs
	c.err = nil
	if c.loading == 0 {
		c.phase = PhaseReady
	}
	return nil
}

// settlePhase leaves PhaseLoading once no load is in flight.
// must be called with c.mu held.
func (c *Controller) settlePhase() {
	if c.loading > 0 {
		return
	}
	if c.err != nil && core.IsFetchFailed(c.err) {
		c.phase = PhaseLoadFailed
	} else if c.phase == PhaseLoading {
		c.phase = PhaseReady
	}
}

func checkIdentifiers(recs []record.Record) error {
	seen := make(map[record.ID]struct{}, len(recs))
	for _, rec := range recs {
		if rec.ID.IsZero() {
			return errors.New("record without identifier")
		}
		if _, dup := seen[rec.ID]; dup {
			return errors.Errorf("duplicate identifier %d", rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}
	return nil
}

// BeginCreate opens the edit form on an empty draft.
func (c *Controller) BeginCreate() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.edit == EditSubmitting {
		return ErrBusy
	}
	draft := record.NewDraft(c.schema)
	c.openDraft(&draft, nil)
	return nil
}

// BeginEdit opens the edit form on a copy of rec.
func (c *Controller) BeginEdit(rec record.Record) error {
	if rec.ID.IsZero() {
		return errors.New("cannot edit a record without identifier")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.edit == EditSubmitting {
		return ErrBusy
	}
	draft := rec.Draft()
	orig := rec.Copy()
	c.openDraft(&draft, &orig)
	return nil
}

func (c *Controller) openDraft(draft *record.Draft, orig *record.Record) {
	c.draft = draft
	c.original = orig
	c.fieldErrs = nil
	c.edit = EditOpen
}

// UpdateDraftField stores a raw value; it is coerced on Submit.
func (c *Controller) UpdateDraftField(name string, value interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.edit {
	case EditClosed:
		return ErrNotEditing
	case EditSubmitting:
		return ErrBusy
	}
	if err := c.draft.Set(c.schema, name, value); err != nil {
		return err
	}
	delete(c.fieldErrs, name)
	return nil
}

// Cancel closes the edit form and discards the draft.
func (c *Controller) Cancel() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.edit == EditSubmitting {
		return ErrBusy
	}
	c.closeDraft()
	return nil
}

func (c *Controller) closeDraft() {
	c.edit = EditClosed
	c.draft = nil
	c.original = nil
	c.fieldErrs = nil
}

// Submit creates or updates the draft, then reloads the collection.
// Missing required fields fail with a *core.ValidationError before any backend call.
// A rejected change keeps the form open with the draft untouched.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case c.edit == EditSubmitting, c.mutating:
		c.mu.Unlock()
		return ErrBusy
	case c.edit == EditClosed:
		c.mu.Unlock()
		return ErrNotEditing
	}

	draft := c.draft.Copy()
	vals, err := c.prepare(draft.Values)
	if err != nil {
		c.err = err
		c.fieldErrs = fieldErrors(err)
		c.mu.Unlock()
		return err
	}
	c.edit = EditSubmitting
	c.mutating = true
	c.mu.Unlock()

	action := core.ActionUpdate
	if draft.IsNew() {
		action = core.ActionCreate
		err = c.backend.Insert(ctx, c.schema.Collection, vals)
	} else {
		err = c.backend.Update(ctx, c.schema.Collection, vals, draft.ID)
	}

	c.mu.Lock()
	c.mutating = false
	if err != nil {
		c.edit = EditOpen
		err = c.mutationFailed(action, draft.ID, err)
		c.mu.Unlock()
		return err
	}
	c.closeDraft()
	c.err = nil
	c.mu.Unlock()

	return c.Load(ctx)
}

// prepare checks presence of required fields, then coerces values to their declared types.
func (c *Controller) prepare(vals record.Values) (record.Values, error) {
	if err := c.schema.CheckRequired(vals); err != nil {
		return nil, err
	}
	return c.schema.Coerce(vals)
}

// mutationFailed records and logs a rejected change; must be called with c.mu held.
func (c *Controller) mutationFailed(action string, id record.ID, err error) error {
	err = core.NewMutationError(c.schema.Collection, action, int64(id), err)
	c.err = err
	if fe := fieldErrors(err); fe != nil {
		c.fieldErrs = fe
	}
	c.log.Error(err.Error(), err, map[string]interface{}{
		"collection": c.schema.Collection,
		"action":     action,
		"id":         int64(id),
	})
	return err
}

func fieldErrors(err error) map[string]string {
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) || len(vErr.Fields) == 0 {
		return nil
	}
	fe := make(map[string]string, len(vErr.Fields))
	for _, f := range vErr.Fields {
		fe[f.Field] = f.Error
	}
	return fe
}

// Remove deletes rec once the user confirms, then reloads the collection.
// A declined confirmation is not an error and reaches no backend.
func (c *Controller) Remove(ctx context.Context, rec record.Record) error {
	if rec.ID.IsZero() {
		return errors.New("cannot remove a record without identifier")
	}

	c.mu.Lock()
	if c.mutating || c.edit == EditSubmitting {
		c.mu.Unlock()
		return ErrBusy
	}
	c.mutating = true
	c.mu.Unlock()

	ok, err := c.confirm(ctx, rec)
	if err != nil || !ok {
		c.mu.Lock()
		c.mutating = false
		c.mu.Unlock()
		return errors.Wrap(err, "confirming removal")
	}

	err = c.backend.Delete(ctx, c.schema.Collection, rec.ID)

	c.mu.Lock()
	c.mutating = false
	if err != nil {
		err = c.mutationFailed(core.ActionDelete, rec.ID, err)
		c.mu.Unlock()
		return err
	}
	c.err = nil
	c.mu.Unlock()

	return c.Load(ctx)
}

// DismissError clears the current error signal.
func (c *Controller) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = nil
}

// Find returns the record with id from the current collection.
func (c *Controller) Find(id record.ID) (record.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range c.records {
		if rec.ID == id {
			return rec.Copy(), true
		}
	}
	return record.Record{}, false
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Schema:  c.schema,
		Phase:   c.phase,
		Edit:    c.edit,
		Records: make([]record.Record, 0, len(c.records)),
		Err:     c.err,
		Busy:    c.mutating || c.edit == EditSubmitting,
	}
	for _, rec := range c.records {
		v.Records = append(v.Records, rec.Copy())
	}
	if c.draft != nil {
		d := c.draft.Copy()
		v.Draft = &d
	}
	if c.original != nil {
		o := c.original.Copy()
		v.Original = &o
	}
	if c.fieldErrs != nil {
		v.FieldErrors = make(map[string]string, len(c.fieldErrs))
		for k, msg := range c.fieldErrs {
			v.FieldErrors[k] = msg
		}
	}
	return v
}
