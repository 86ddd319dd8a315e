package contentstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/faithfulaborisade1/kilkennyquads/internal/content"
	"github.com/faithfulaborisade1/kilkennyquads/internal/platform/observability"
)

// WriteMode selects which revision marker accompanies a write.
type WriteMode int

const (
	// WriteModeLoaded sends the marker captured when the document was loaded,
	// so a concurrent change surfaces as ErrConflict.
	WriteModeLoaded WriteMode = iota
	// WriteModeRefetch re-reads the document for its newest marker right
	// before writing. Changes made by others since the load are overwritten.
	WriteModeRefetch
)

// ParseWriteMode maps "loaded" or "refetch" onto a WriteMode.
func ParseWriteMode(value string) (WriteMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "loaded":
		return WriteModeLoaded, nil
	case "refetch":
		return WriteModeRefetch, nil
	default:
		return WriteModeLoaded, fmt.Errorf("contentstore: unknown write mode %q", value)
	}
}

func (m WriteMode) String() string {
	switch m {
	case WriteModeRefetch:
		return "refetch"
	default:
		return "loaded"
	}
}

// Syncer performs the read-modify-write cycle for JSON documents.
type Syncer struct {
	store  Store
	mode   WriteMode
	tracer trace.Tracer
}

// NewSyncer wraps store with the given write mode.
func NewSyncer(store Store, mode WriteMode) *Syncer {
	return &Syncer{
		store:  store,
		mode:   mode,
		tracer: observability.Tracer(tracerName),
	}
}

// Mode reports the configured write mode.
func (s *Syncer) Mode() WriteMode {
	return s.mode
}

// Store returns the underlying store.
func (s *Syncer) Store() Store {
	return s.store
}

// Load fetches the document at path and decodes it into dst. The returned
// revision is the marker to hand back to Save. When the document exists but
// is not valid JSON the revision is still returned alongside an error
// wrapping content.ErrMalformedDocument.
func (s *Syncer) Load(ctx context.Context, token, path string, dst any) (rev Revision, err error) {
	ctx, span := s.tracer.Start(ctx, "contentstore.Load", trace.WithAttributes(attribute.String("cms.path", path)))
	defer func() { observability.EndSpan(span, err) }()

	file, err := s.store.Get(ctx, token, path)
	if err != nil {
		return "", err
	}
	if err := json.Unmarshal(file.Content, dst); err != nil {
		return file.Revision, fmt.Errorf("%w: %s: %v", content.ErrMalformedDocument, path, err)
	}
	return file.Revision, nil
}

// Save serialises v and writes it to path with message. loaded is the marker
// returned by the Load that produced the in-memory document; it is ignored in
// WriteModeRefetch.
func (s *Syncer) Save(ctx context.Context, token, path string, v any, message string, loaded Revision) (rev Revision, err error) {
	ctx, span := s.tracer.Start(ctx, "contentstore.Save", trace.WithAttributes(
		attribute.String("cms.path", path),
		attribute.String("cms.write_mode", s.mode.String()),
	))
	defer func() { observability.EndSpan(span, err) }()

	data, err := content.Encode(v)
	if err != nil {
		return "", err
	}

	marker := loaded
	if s.mode == WriteModeRefetch {
		current, err := s.store.Get(ctx, token, path)
		switch {
		case err == nil:
			marker = current.Revision
		case errors.Is(err, ErrNotFound):
			marker = ""
		default:
			return "", err
		}
	}

	rev, err = s.store.Put(ctx, token, PutRequest{
		Path:     path,
		Message:  message,
		Content:  data,
		Revision: marker,
	})
	if err != nil {
		observability.FromContext(ctx).Warn("document write rejected",
			zap.String("path", path),
			zap.String("write_mode", s.mode.String()),
			zap.Error(err),
		)
		return "", err
	}
	observability.FromContext(ctx).Info("document written",
		zap.String("path", path),
		zap.String("message", message),
		zap.String("revision", string(rev)),
	)
	return rev, nil
}
