// Package watermark stamps viewer identity into document renditions.
package watermark

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnsupported is returned by Engines.For when no engine handles a content type.
var ErrUnsupported = errors.New("watermark: unsupported content type")

// Stamp is the viewer context embedded into a rendition.
type Stamp struct {
	Name      string
	Email     string
	Room      string
	Timestamp time.Time
	IP        string
}

// Lines returns the stamp text. The output depends only on the stamp fields.
func (s Stamp) Lines() []string {
	lines := []string{
		fmt.Sprintf("%s <%s>", s.Name, s.Email),
		s.Room,
		s.Timestamp.UTC().Format(time.RFC3339),
	}
	if s.IP != "" {
		lines = append(lines, s.IP)
	}
	return lines
}

// Text joins Lines with newlines.
func (s Stamp) Text() string {
	return strings.Join(s.Lines(), "\n")
}

// Header is the single-line marker placed at the top of every page.
func (s Stamp) Header() string {
	return fmt.Sprintf("CONFIDENTIAL | %s | %s | %s", s.Email, s.Room, s.Timestamp.UTC().Format(time.RFC3339))
}

// Engine applies a stamp to one family of content types. Engines never modify src.
type Engine interface {
	Supports(contentType string) bool
	Apply(ctx context.Context, contentType string, src []byte, st Stamp) ([]byte, error)
}

// Engines selects the first engine supporting a content type.
type Engines []Engine

func (es Engines) For(contentType string) (Engine, error) {
	ct := normalizeType(contentType)
	for _, e := range es {
		if e.Supports(ct) {
			return e, nil
		}
	}
	return nil, ErrUnsupported
}

// Options are shared engine settings.
type Options struct {
	// Opacity of the tiled stamp, in (0,1].
	Opacity float64
}

func (o Options) opacity() float64 {
	if o.Opacity <= 0 || o.Opacity > 1 {
		return 0.15
	}
	return o.Opacity
}

func normalizeType(ct string) string {
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
