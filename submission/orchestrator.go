package submission

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const uploadFailedMessage = "Image upload failed. Remove it and select the file again."

// orchestrator is the single consumer of a draft's upload queue. Items are
// uploaded one at a time in admission order, so at most one item is ever in
// the Uploading state.
type orchestrator struct {
	draft  *Draft
	store  ObjectStore
	wake   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

func startOrchestrator(d *Draft, store ObjectStore) *orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &orchestrator{
		draft:  d,
		store:  store,
		wake:   make(chan struct{}, 1),
		ctx:    ctx,
		cancel: cancel,
	}
	go o.run()
	return o
}

// notify wakes the worker; it never blocks.
func (o *orchestrator) notify() {
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *orchestrator) stop() {
	o.cancel()
}

func (o *orchestrator) run() {
	for {
		select {
		case <-o.ctx.Done():
			return
		case <-o.wake:
			o.drain()
		}
	}
}

func (o *orchestrator) drain() {
	for {
		id, file, ok := o.next()
		if !ok {
			return
		}
		result, err := o.store.Upload(o.ctx, file)
		if err == nil && result.Location == "" {
			err = errors.New("object store returned no location")
		}
		o.finish(id, result, err)
	}
}

// next dequeues the first item still in the draft and marks it Uploading.
func (o *orchestrator) next() (string, RawFile, bool) {
	d := o.draft
	d.mu.Lock()
	for len(d.queue) > 0 && !d.closed {
		id := d.queue[0]
		d.queue = d.queue[1:]

		it, ok := d.items[id]
		if !ok {
			continue
		}
		if it.Source == nil {
			d.logger.Error("Queued image has no source", zap.String("local_id", id))
			continue
		}
		from := it.Status
		if err := it.advance(StatusUploading, ""); err != nil {
			d.logger.Error("Skipping queued image", zap.String("local_id", id), zap.Error(err))
			continue
		}
		file := *it.Source
		d.mu.Unlock()

		d.emit(Transition{LocalID: id, From: from, To: StatusUploading})
		return id, file, true
	}
	d.mu.Unlock()
	return "", RawFile{}, false
}

func (o *orchestrator) finish(id string, result UploadResult, uploadErr error) {
	d := o.draft
	d.mu.Lock()
	it, ok := d.items[id]
	if !ok || d.closed {
		d.mu.Unlock()
		d.logger.Debug("Dropping upload result for image no longer in draft",
			zap.String("local_id", id), zap.Bool("succeeded", uploadErr == nil))
		return
	}

	t := Transition{LocalID: id, From: it.Status}
	if uploadErr != nil {
		t.To = StatusError
		if err := it.advance(StatusError, ""); err != nil {
			d.mu.Unlock()
			d.logger.Error("Failed to record upload failure", zap.String("local_id", id), zap.Error(err))
			return
		}
		d.notices = append(d.notices, Notice{LocalID: id, Message: uploadFailedMessage})
	} else {
		t.To = StatusUploaded
		t.RemoteIdentity = result.Location
		if err := it.advance(StatusUploaded, result.Location); err != nil {
			d.mu.Unlock()
			d.logger.Error("Failed to record upload", zap.String("local_id", id), zap.Error(err))
			return
		}
	}
	d.lastActive = d.now()
	d.mu.Unlock()

	if uploadErr != nil {
		d.logger.Warn("Image upload failed", zap.String("local_id", id), zap.Error(uploadErr))
	} else {
		d.logger.Info("Image uploaded", zap.String("local_id", id), zap.String("location", result.Location))
	}
	d.emit(t)
}
