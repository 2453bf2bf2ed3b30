package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/Kariqs/amexan-portal/submission"
	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotAnImage   = errors.New("file is not an image")
	ErrFileTooLarge = errors.New("file is too large")
	ErrEmptyFile    = errors.New("file is empty")
)

// ReadImage loads one uploaded part into memory and checks that its bytes
// are an image. The sniffed type replaces whatever the client declared.
func ReadImage(header *multipart.FileHeader, maxSize int64) (submission.RawFile, error) {
	if maxSize > 0 && header.Size > maxSize {
		return submission.RawFile{}, fmt.Errorf("%s: %w", header.Filename, ErrFileTooLarge)
	}

	f, err := header.Open()
	if err != nil {
		return submission.RawFile{}, fmt.Errorf("error opening file %s: %w", header.Filename, err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxSize > 0 {
		r = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return submission.RawFile{}, fmt.Errorf("error reading file %s: %w", header.Filename, err)
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return submission.RawFile{}, fmt.Errorf("%s: %w", header.Filename, ErrFileTooLarge)
	}

	return ToImage(header.Filename, data)
}

// ToImage wraps data as a RawFile after sniffing it.
func ToImage(name string, data []byte) (submission.RawFile, error) {
	if len(data) == 0 {
		return submission.RawFile{}, fmt.Errorf("%s: %w", name, ErrEmptyFile)
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return submission.RawFile{}, fmt.Errorf("%s (%s): %w", name, mt.String(), ErrNotAnImage)
	}
	return submission.RawFile{Name: name, ContentType: mt.String(), Data: data}, nil
}

// ReadImages reads every part in order and stops at the first bad one.
func ReadImages(headers []*multipart.FileHeader, maxSize int64) ([]submission.RawFile, error) {
	files := make([]submission.RawFile, 0, len(headers))
	for _, h := range headers {
		file, err := ReadImage(h, maxSize)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, nil
}
