// Package upload orchestrates "select a file → upload it → record its
// metadata → report the outcome".
//
// Controller.Upload is a two-step saga: the file bytes go to object storage
// under "{username}/{fileName}", then an UploadRecord is posted to the
// metadata endpoint. The steps are strictly sequential and never retried. A
// record failure leaves the object in place; the attempt's SagaState is
// logged at every transition so orphaned objects can be found later.
package upload

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/radif/uploads/internal/identity"
	"github.com/radif/uploads/internal/record"
	"github.com/radif/uploads/internal/storage"
	"github.com/rs/zerolog"
)

// Recorder submits upload metadata.
type Recorder interface {
	SaveUploadDetails(ctx context.Context, rec record.UploadRecord) error
}

// Controller owns the selected file and runs uploads.
// It is safe for concurrent use; overlapping uploads are rejected.
type Controller struct {
	identities identity.Source
	store      storage.Storage
	recorder   Recorder
	notifier   Notifier
	log        zerolog.Logger
	now        func() time.Time

	mu       sync.Mutex
	selected SelectedFile

	inFlight atomic.Bool
}

// Option customises a Controller.
type Option func(*Controller)

// WithNotifier sets where user-visible notices go. Defaults to discarding them.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the diagnostics logger. Defaults to a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Controller) { c.log = log }
}

// WithClock overrides the wall clock used for upload_time.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// New creates a Controller. All collaborators are required.
func New(identities identity.Source, store storage.Storage, recorder Recorder, opts ...Option) *Controller {
	c := &Controller{
		identities: identities,
		store:      store,
		recorder:   recorder,
		notifier:   discardNotifier{},
		log:        zerolog.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectFile replaces the selection with the first of files. An empty
// selection, or a nil first file, leaves the current one untouched.
func (c *Controller) SelectFile(files ...SelectedFile) {
	if len(files) == 0 || isNil(files[0]) {
		return
	}
	c.mu.Lock()
	c.selected = files[0]
	c.mu.Unlock()
}

// Selected returns the current selection, or nil.
func (c *Controller) Selected() SelectedFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// CanUpload reports whether the upload action should be enabled.
func (c *Controller) CanUpload() bool {
	return c.Selected() != nil && !c.inFlight.Load()
}

// Upload stores the selected file and records its metadata.
//
// Exactly one notice is emitted per call. The returned *Error tells the
// causes apart; the notice does not. Result is nil when the attempt was
// rejected before any remote call.
func (c *Controller) Upload(ctx context.Context) (*Result, error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		c.log.Warn().Msg("upload rejected: previous upload still in flight")
		c.notify(NoticeError, MsgInProgress)
		return nil, ErrUploadInProgress
	}
	defer c.inFlight.Store(false)

	file := c.Selected()
	id, ok := c.identities.Current()
	if file == nil || !ok {
		c.log.Warn().
			Bool("file_selected", file != nil).
			Bool("logged_in", ok).
			Msg("upload rejected: precondition failed")
		c.notify(NoticeError, MsgNotReady)
		return nil, ErrNotReady
	}

	res := &Result{
		Key:       ObjectKey(id.Username, file.Name()),
		FileName:  file.Name(),
		UserID:    id.Username,
		Size:      file.Size(),
		State:     SagaPending,
		StartedAt: c.now(),
	}
	log := c.log.With().
		Str("key", res.Key).
		Str("user_id", res.UserID).
		Str("file_name", res.FileName).
		Logger()

	if err := c.putObject(ctx, file, res.Key); err != nil {
		res.State = SagaStorageFailed
		log.Error().Err(err).Str("state", string(res.State)).Msg("object upload failed")
		c.notify(NoticeError, MsgFailure)
		return res, &Error{Kind: ErrKindStorage, Message: "store object", Key: res.Key, Cause: err}
	}
	res.State = SagaObjectStored
	res.ObjectURL = c.store.PublicURL(res.Key)
	log.Info().Str("state", string(res.State)).Msg("object stored, record pending")

	// upload_time is taken after the object write, at submission time.
	rec := record.NewUploadRecord(id.Username, file.Name(), c.now())
	res.UploadTime = rec.UploadTime

	if err := c.recorder.SaveUploadDetails(ctx, rec); err != nil {
		res.State = SagaRecordFailed
		log.Error().Err(err).
			Str("state", string(res.State)).
			Str("upload_time", rec.UploadTime).
			Msg("metadata record failed, object stored without record")
		c.notify(NoticeError, MsgFailure)
		return res, &Error{Kind: ErrKindRecord, Message: "record upload details", Key: res.Key, Cause: err}
	}
	res.State = SagaRecorded
	log.Info().Str("state", string(res.State)).Int64("size", res.Size).Msg("upload recorded")

	c.notify(NoticeSuccess, MsgSuccess)
	return res, nil
}

func (c *Controller) putObject(ctx context.Context, file SelectedFile, key string) error {
	rc, err := file.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return c.store.Upload(ctx, key, rc, file.Size(), file.ContentType())
}

func (c *Controller) notify(level NoticeLevel, msg string) {
	c.notifier.Notify(Notice{Level: level, Message: msg})
}

// isNil also catches typed nil pointers such as (*LocalFile)(nil).
func isNil(f SelectedFile) bool {
	if f == nil {
		return true
	}
	v := reflect.ValueOf(f)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// ObjectKey is the storage key for a user's file. The same user uploading
// the same file name again overwrites the previous object.
func ObjectKey(username, fileName string) string {
	return username + "/" + fileName
}
