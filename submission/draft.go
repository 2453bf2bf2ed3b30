// Package submission holds the product-submission media pipeline: the draft a
// supplier edits, the previews and uploads of its images, and the checks that
// gate sending it to the product service.
package submission

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrTooManyImages      = fmt.Errorf("a product can have at most %d images", MaxImages)
	ErrItemNotFound       = errors.New("image not found in draft")
	ErrDraftClosed        = errors.New("draft has been discarded")
	ErrSubmitInProgress   = errors.New("draft is already being submitted")
	ErrAlreadySubmitted   = errors.New("draft has already been submitted")
	ErrUnknownCategory    = errors.New("unknown category")
	ErrUnknownSubcategory = errors.New("subcategory does not belong to the selected category")
)

// Fields are the scalar and list fields a supplier edits directly.
type Fields struct {
	Name          string      `json:"name" validate:"required,notblank"`
	Description   string      `json:"description" validate:"required,notblank"`
	OriginalPrice *float64    `json:"originalPrice" validate:"required,gte=0"`
	DiscountPrice *float64    `json:"discountPrice" validate:"required,gte=0"`
	Stock         *int        `json:"stock" validate:"required,gte=0"`
	Brand         string      `json:"brand" validate:"required,notblank"`
	CategoryID    string      `json:"categoryId" validate:"required,notblank"`
	SubcategoryID string      `json:"subcategoryId"`
	Colors        []string    `json:"colors"`
	SizeChart     []SizeEntry `json:"sizeChart"`
}

// FieldsPatch carries the fields to overwrite; nil members are left alone.
// Category and subcategory are changed through SelectCategory and
// SelectSubcategory only.
type FieldsPatch struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	OriginalPrice *float64     `json:"originalPrice"`
	DiscountPrice *float64     `json:"discountPrice"`
	Stock         *int         `json:"stock"`
	Brand         *string      `json:"brand"`
	Colors        *[]string    `json:"colors"`
	SizeChart     *[]SizeEntry `json:"sizeChart"`
}

// Transition records one status change of an item.
type Transition struct {
	LocalID        string
	From           ItemStatus
	To             ItemStatus
	RemoteIdentity string
}

// Notice is a non-blocking message for the user.
type Notice struct {
	LocalID string `json:"localId"`
	Message string `json:"message"`
}

// Snapshot is a consistent copy of a draft for reading.
type Snapshot struct {
	ID        string `json:"id"`
	ProductID string `json:"productId,omitempty"`
	Fields
	Subcategories []Subcategory `json:"subcategories"`
	Items         []ImageItem   `json:"items"`
}

// Option configures a Draft.
type Option func(*Draft)

// WithLogger sets the logger used by the draft and its upload worker.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Draft) {
		d.logger = logger
	}
}

// WithObserver registers a callback receiving every status transition, in
// the order they happen. It is called from the upload worker and must not
// block for long.
func WithObserver(fn func(Transition)) Option {
	return func(d *Draft) {
		d.observer = fn
	}
}

// WithClock overrides time.Now for activity tracking.
func WithClock(now func() time.Time) Option {
	return func(d *Draft) {
		d.now = now
	}
}

// Draft is one in-progress product form. Items live in an arena keyed by
// local id; order holds the display order.
type Draft struct {
	mu            sync.Mutex
	id            string
	productID     string
	fields        Fields
	categories    []Category
	subcategories []Subcategory
	items         map[string]*ImageItem
	order         []string
	queue         []string
	notices       []Notice
	closed        bool
	submitting    bool
	submitted     bool
	lastActive    time.Time

	previews *PreviewManager
	uploads  *orchestrator
	observer func(Transition)
	logger   *zap.Logger
	now      func() time.Time
}

// NewDraft creates an empty draft and starts its upload worker. categories is
// the catalog read for this form session.
func NewDraft(store ObjectStore, previews *PreviewManager, categories []Category, opts ...Option) *Draft {
	d := &Draft{
		id:         uuid.NewString(),
		categories: categories,
		items:      make(map[string]*ImageItem),
		previews:   previews,
		logger:     zap.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = d.logger.With(zap.String("draft_id", d.id))
	d.lastActive = d.now()
	d.uploads = startOrchestrator(d, store)
	return d
}

// ID returns the draft identifier.
func (d *Draft) ID() string {
	return d.id
}

// Admit attaches newly selected files. The whole batch is rejected when it
// would take the draft past MaxImages.
func (d *Draft) Admit(files []RawFile) ([]ImageItem, error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDraftClosed
	}
	if len(d.order)+len(files) > MaxImages {
		d.mu.Unlock()
		return nil, ErrTooManyImages
	}

	admitted := make([]*ImageItem, 0, len(files))
	for i := range files {
		file := files[i]
		handle, err := d.previews.Acquire(file)
		if err != nil {
			for _, it := range admitted {
				d.previews.Release(it.Preview)
			}
			d.mu.Unlock()
			return nil, fmt.Errorf("failed to prepare preview for %s: %w", file.Name, err)
		}
		admitted = append(admitted, &ImageItem{
			LocalID: uuid.NewString(),
			Preview: handle,
			Status:  StatusPending,
			Source:  &file,
		})
	}

	out := make([]ImageItem, 0, len(admitted))
	for _, it := range admitted {
		d.items[it.LocalID] = it
		d.order = append(d.order, it.LocalID)
		d.queue = append(d.queue, it.LocalID)
		out = append(out, *it)
	}
	d.lastActive = d.now()
	d.mu.Unlock()

	if len(out) > 0 {
		d.logger.Info("Images admitted", zap.Int("count", len(out)))
		d.uploads.notify()
	}
	return out, nil
}

// Remove deletes an item whatever its status and releases its preview. An
// upload already in flight for it is left to finish and its result dropped.
func (d *Draft) Remove(localID string) error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return ErrDraftClosed
	}
	it, ok := d.items[localID]
	if !ok {
		d.mu.Unlock()
		return ErrItemNotFound
	}
	delete(d.items, localID)
	for i, id := range d.order {
		if id == localID {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
	d.lastActive = d.now()
	handle := it.Preview
	status := it.Status
	d.mu.Unlock()

	d.previews.Release(handle)
	d.logger.Info("Image removed", zap.String("local_id", localID), zap.Stringer("status", status))
	return nil
}

// SetFields applies a patch to the scalar fields.
func (d *Draft) SetFields(p FieldsPatch) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}

	f := &d.fields
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Description != nil {
		f.Description = *p.Description
	}
	if p.OriginalPrice != nil {
		v := *p.OriginalPrice
		f.OriginalPrice = &v
	}
	if p.DiscountPrice != nil {
		v := *p.DiscountPrice
		f.DiscountPrice = &v
	}
	if p.Stock != nil {
		v := *p.Stock
		f.Stock = &v
	}
	if p.Brand != nil {
		f.Brand = *p.Brand
	}
	if p.Colors != nil {
		f.Colors = append([]string(nil), (*p.Colors)...)
	}
	if p.SizeChart != nil {
		f.SizeChart = append([]SizeEntry(nil), (*p.SizeChart)...)
	}
	d.lastActive = d.now()
	return nil
}

// SelectCategory changes the category, clearing the subcategory and loading
// the new category's subcategories in the same update.
func (d *Draft) SelectCategory(categoryID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}

	var choices []Subcategory
	if categoryID != "" {
		cat, ok := findCategory(d.categories, categoryID)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
		}
		choices = append([]Subcategory(nil), cat.Subcategories...)
	}
	d.fields.CategoryID = categoryID
	d.fields.SubcategoryID = ""
	d.subcategories = choices
	d.lastActive = d.now()
	return nil
}

// SelectSubcategory picks one of the current category's subcategories.
func (d *Draft) SelectSubcategory(subcategoryID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}

	if subcategoryID != "" {
		if _, ok := findSubcategory(d.subcategories, subcategoryID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSubcategory, subcategoryID)
		}
	}
	d.fields.SubcategoryID = subcategoryID
	d.lastActive = d.now()
	return nil
}

// Snapshot returns a copy of the draft safe to read without locking.
func (d *Draft) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Draft) snapshotLocked() Snapshot {
	f := d.fields
	if f.OriginalPrice != nil {
		v := *f.OriginalPrice
		f.OriginalPrice = &v
	}
	if f.DiscountPrice != nil {
		v := *f.DiscountPrice
		f.DiscountPrice = &v
	}
	if f.Stock != nil {
		v := *f.Stock
		f.Stock = &v
	}
	f.Colors = append([]string(nil), f.Colors...)
	f.SizeChart = append([]SizeEntry(nil), f.SizeChart...)

	items := make([]ImageItem, 0, len(d.order))
	for _, id := range d.order {
		it := *d.items[id]
		it.Source = nil
		items = append(items, it)
	}
	return Snapshot{
		ID:            d.id,
		ProductID:     d.productID,
		Fields:        f,
		Subcategories: append([]Subcategory(nil), d.subcategories...),
		Items:         items,
	}
}

// Categories returns the catalog this draft was opened with.
func (d *Draft) Categories() []Category {
	return d.categories
}

// Previews returns the draft's preview manager.
func (d *Draft) Previews() *PreviewManager {
	return d.previews
}

// Notices drains pending user notifications.
func (d *Draft) Notices() []Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.notices
	d.notices = nil
	return out
}

// LastActive returns the time of the last change made through the draft.
func (d *Draft) LastActive() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastActive
}

// touch records activity that does not change the draft, such as a client
// polling for upload statuses.
func (d *Draft) touch() {
	d.mu.Lock()
	d.lastActive = d.now()
	d.mu.Unlock()
}

// Close tears the draft down: queued uploads are dropped, the worker is
// stopped and every outstanding preview is released. Calling Close again is
// a no-op.
func (d *Draft) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.queue = nil
	d.mu.Unlock()

	d.uploads.stop()
	d.previews.ReleaseAll()
	d.logger.Info("Draft discarded")
}

// attachStored adds an already uploaded image, as found on an existing product.
func (d *Draft) attachStored(location string) {
	it := &ImageItem{
		LocalID:        uuid.NewString(),
		Preview:        d.previews.Remote(location),
		RemoteIdentity: location,
		Status:         StatusUploaded,
	}
	d.items[it.LocalID] = it
	d.order = append(d.order, it.LocalID)
}

// load fills an empty draft from a stored product. Category and subcategory
// names are mapped back to catalog ids.
func (d *Draft) load(p *Product) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.productID = p.ID
	orig, disc, stock := p.OriginalPrice, p.DiscountPrice, p.Stock
	d.fields = Fields{
		Name:          p.Name,
		Description:   p.Description,
		OriginalPrice: &orig,
		DiscountPrice: &disc,
		Stock:         &stock,
		Brand:         p.Brand,
		Colors:        append([]string(nil), p.Colors...),
		SizeChart:     append([]SizeEntry(nil), p.SizeChart...),
	}
	for _, cat := range d.categories {
		if cat.Name != p.Category {
			continue
		}
		d.fields.CategoryID = cat.ID
		d.subcategories = append([]Subcategory(nil), cat.Subcategories...)
		for _, sub := range cat.Subcategories {
			if sub.Name == p.Subcategory {
				d.fields.SubcategoryID = sub.ID
				break
			}
		}
		break
	}
	for _, location := range p.Images {
		if len(d.order) == MaxImages {
			d.logger.Warn("Stored product has more images than a draft can hold", zap.Int("images", len(p.Images)))
			break
		}
		d.attachStored(location)
	}
}

func (d *Draft) emit(t Transition) {
	if d.observer != nil {
		d.observer(t)
	}
}

func findCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

func findSubcategory(subs []Subcategory, id string) (Subcategory, bool) {
	for _, s := range subs {
		if s.ID == id {
			return s, true
		}
	}
	return Subcategory{}, false
}
