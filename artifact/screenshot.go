package artifact

import (
	"bytes"
	"os"
	"strings"

	"github.com/titpetric/verdict/model"
)

// Source identifies where a screenshot's content comes from.
type Source int

// Source constants.
const (
	SourceBase64 Source = iota + 1
	SourceBytes
	SourceFile
)

// String returns the source name.
func (s Source) String() string {
	switch s {
	case SourceBase64:
		return "base64"
	case SourceBytes:
		return "bytes"
	case SourceFile:
		return "file"
	}
	return "unknown"
}

// Screenshot is an immutable, validated image attachment.
type Screenshot struct {
	title  string
	source Source
	base64 string
	data   []byte
	path   string
}

// FromBase64 creates a screenshot from base64 encoded image content.
func FromBase64(content, title string) (*Screenshot, error) {
	if strings.TrimSpace(content) == "" {
		return nil, model.NewError(model.ErrCodeScreenshot, "base64 content for screenshot is empty")
	}
	return &Screenshot{
		title:  strings.TrimSpace(title),
		source: SourceBase64,
		base64: content,
	}, nil
}

// FromBytes creates a screenshot from raw image bytes. The bytes are copied.
func FromBytes(data []byte, title string) (*Screenshot, error) {
	if len(data) == 0 {
		return nil, model.NewError(model.ErrCodeScreenshot, "byte content for screenshot is empty")
	}
	return &Screenshot{
		title:  strings.TrimSpace(title),
		source: SourceBytes,
		data:   bytes.Clone(data),
	}, nil
}

// FromFile creates a screenshot backed by an image file. The file must
// exist when the screenshot is created; it is read when encoded.
func FromFile(path, title string) (*Screenshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, model.WrapError(model.ErrCodeScreenshot, "screenshot file not found", err).WithContext("path", path)
	}
	if !info.Mode().IsRegular() {
		return nil, model.Errorf(model.ErrCodeScreenshot, "screenshot path %q is not a regular file", path)
	}
	return &Screenshot{
		title:  strings.TrimSpace(title),
		source: SourceFile,
		path:   path,
	}, nil
}

// Title returns the trimmed title.
func (s *Screenshot) Title() string {
	return s.title
}

// Source returns where the content comes from.
func (s *Screenshot) Source() Source {
	return s.source
}

// Path returns the file path for file backed screenshots.
func (s *Screenshot) Path() string {
	return s.path
}
