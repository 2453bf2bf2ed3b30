package submission

import (
	"errors"
	"fmt"
)

// MaxImages is the number of images a draft product may carry.
const MaxImages = 5

var ErrInvalidTransition = errors.New("invalid item status transition")

// ItemStatus is the upload lifecycle state of one attached image.
type ItemStatus int

const (
	StatusPending ItemStatus = iota
	StatusUploading
	StatusUploaded
	StatusError
)

func (s ItemStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusUploading:
		return "uploading"
	case StatusUploaded:
		return "uploaded"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("ItemStatus(%d)", int(s))
	}
}

// IsValid reports whether s is one of the declared states.
func (s ItemStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusUploading, StatusUploaded, StatusError:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once the orchestrator is done with the item.
func (s ItemStatus) IsTerminal() bool {
	return s == StatusUploaded || s == StatusError
}

// InFlight returns true while the item still blocks submission.
func (s ItemStatus) InFlight() bool {
	return s == StatusPending || s == StatusUploading
}

// CanTransition checks a requested status change against the lifecycle.
// Removal is not a transition; nothing leads out of Uploaded or Error.
func (s ItemStatus) CanTransition(to ItemStatus) error {
	if !to.IsValid() {
		return fmt.Errorf("%w: unknown target %s", ErrInvalidTransition, to)
	}
	switch s {
	case StatusPending:
		if to == StatusUploading {
			return nil
		}
	case StatusUploading:
		if to == StatusUploaded || to == StatusError {
			return nil
		}
	case StatusUploaded, StatusError:
	default:
		return fmt.Errorf("%w: unknown source %s", ErrInvalidTransition, s)
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, to)
}

func (s ItemStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return []byte(s.String()), nil
}

func (s *ItemStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "pending":
		*s = StatusPending
	case "uploading":
		*s = StatusUploading
	case "uploaded":
		*s = StatusUploaded
	case "error":
		*s = StatusError
	default:
		return fmt.Errorf("unknown item status %q", string(text))
	}
	return nil
}

// RawFile is a user-selected file waiting to be previewed and uploaded.
type RawFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ImageItem is one image attached to a draft.
type ImageItem struct {
	LocalID        string        `json:"localId"`
	Preview        PreviewHandle `json:"preview"`
	RemoteIdentity string        `json:"remoteIdentity,omitempty"`
	Status         ItemStatus    `json:"status"`
	// Source is dropped once the item leaves the in-flight states.
	Source *RawFile `json:"-"`
}

// advance applies a status change, keeping RemoteIdentity set only for Uploaded.
func (it *ImageItem) advance(to ItemStatus, location string) error {
	if err := it.Status.CanTransition(to); err != nil {
		return err
	}
	switch to {
	case StatusUploading:
	case StatusUploaded:
		if location == "" {
			return fmt.Errorf("%w: uploaded without a location", ErrInvalidTransition)
		}
		it.RemoteIdentity = location
		it.Source = nil
	case StatusError:
		it.RemoteIdentity = ""
		it.Source = nil
	default:
		return fmt.Errorf("%w: %s", ErrInvalidTransition, to)
	}
	it.Status = to
	return nil
}
