package upload

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/logger"
)

const (
	maxValueBytes = 64 << 10
	formOverhead  = 1 << 20
)

var (
	uploadRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_upload_rejected_total",
			Help: "Multipart uploads rejected by the upload guard, by reason.",
		},
		[]string{"target", "reason"},
	)

	uploadFileBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_upload_file_bytes",
			Help:    "Size of accepted uploaded files in bytes.",
			Buckets: prometheus.ExponentialBuckets(1<<10, 4, 8),
		},
		[]string{"target"},
	)
)

// rejection is a guard failure carrying its metric reason.
type rejection struct {
	reason string
	err    *apperrors.AppError
}

func (r *rejection) Error() string { return r.err.Error() }

func tooLarge(reason, msg string) *rejection {
	return &rejection{reason: reason, err: apperrors.PayloadTooLarge(msg)}
}

func invalid(reason string, err *apperrors.AppError) *rejection {
	return &rejection{reason: reason, err: err}
}

// Guard reads a multipart/form-data body into memory, enforcing limits, and
// passes the buffered Payload to next through the request context. Nothing is
// written to disk. Any violation ends the request before next runs.
func Guard(limits Limits, l *slog.Logger) func(http.Handler) http.Handler {
	if limits.MaxFileSize <= 0 || limits.MaxFiles <= 0 || limits.Field == "" {
		panic(fmt.Sprintf("upload: invalid limits %+v", limits))
	}
	bodyLimit := int64(limits.MaxFiles)*limits.MaxFileSize + formOverhead

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

			payload, err := readPayload(r, limits)
			if err != nil {
				var rej *rejection
				if !errors.As(err, &rej) {
					rej = invalid("malformed", apperrors.InvalidInput("malformed multipart body"))
				}
				uploadRejected.WithLabelValues(limits.Target, rej.reason).Inc()
				logger.FromContext(r.Context()).WarnContext(r.Context(), "upload rejected",
					slog.String("target", limits.Target),
					slog.String("reason", rej.reason),
					slog.String("error", err.Error()),
				)
				httputil.WriteError(w, r, rej.err, l)
				return
			}

			for _, f := range payload.Files {
				uploadFileBytes.WithLabelValues(limits.Target).Observe(float64(f.Size))
			}
			next.ServeHTTP(w, r.WithContext(WithPayload(r.Context(), payload)))
		})
	}
}

func readPayload(r *http.Request, limits Limits) (*Payload, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, invalid("not_multipart", apperrors.InvalidInput("multipart/form-data body required"))
	}

	payload := &Payload{Values: make(map[string]string), Target: limits.Target}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, bodyError(err)
		}

		if part.FileName() == "" {
			if err := readValue(part, payload); err != nil {
				return nil, err
			}
			continue
		}

		if part.FormName() != limits.Field {
			part.Close()
			return nil, invalid("unexpected_field",
				apperrors.Validation(part.FormName(), fmt.Sprintf("files must be sent in field %q", limits.Field)))
		}
		if len(payload.Files) >= limits.MaxFiles {
			part.Close()
			return nil, tooLarge("too_many_files", fmt.Sprintf("at most %d files per request", limits.MaxFiles))
		}

		f, err := readFile(part, limits)
		if err != nil {
			return nil, err
		}
		payload.Files = append(payload.Files, f)
	}

	if len(payload.Files) == 0 {
		return nil, invalid("no_file", apperrors.Validation(limits.Field, "file is required"))
	}
	return payload, nil
}

func readValue(part *multipart.Part, payload *Payload) error {
	defer part.Close()

	data, err := io.ReadAll(io.LimitReader(part, maxValueBytes+1))
	if err != nil {
		return bodyError(err)
	}
	if len(data) > maxValueBytes {
		return invalid("field_too_large", apperrors.Validation(part.FormName(), "form value too large"))
	}
	payload.Values[part.FormName()] = string(data)
	return nil
}

func readFile(part *multipart.Part, limits Limits) (File, error) {
	defer part.Close()

	// One byte past the ceiling is enough to know the part is too big.
	data, err := io.ReadAll(io.LimitReader(part, limits.MaxFileSize+1))
	if err != nil {
		return File{}, bodyError(err)
	}
	if int64(len(data)) > limits.MaxFileSize {
		return File{}, tooLarge("file_too_large", "file too large")
	}

	detected := mimetype.Detect(data)
	if !allowed(detected, limits.AllowedTypes) {
		return File{}, invalid("content_type", apperrors.Validation(limits.Field,
			fmt.Sprintf("unsupported file type for %s", limits.Target)))
	}

	contentType, _, _ := strings.Cut(detected.String(), ";")
	return File{
		Name:         part.FileName(),
		ContentType:  contentType,
		DeclaredType: part.Header.Get("Content-Type"),
		Size:         int64(len(data)),
		Data:         data,
	}, nil
}

func allowed(detected *mimetype.MIME, types []string) bool {
	if len(types) == 0 {
		return true
	}
	for _, t := range types {
		if detected.Is(t) {
			return true
		}
	}
	return false
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return tooLarge("body_too_large", "request body too large")
	}
	return fmt.Errorf("read multipart body: %w", err)
}
