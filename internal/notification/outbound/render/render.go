// Package render turns an issued code into the mail for its purpose.
//
// Every purpose has an embedded template defining "subject" and "body". When a
// bucket is configured, an object with the same file name under the prefix
// replaces the embedded one.
package render

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"path"

	"github.com/shandysiswandi/otpflow/internal/notification/entity"
	"github.com/shandysiswandi/otpflow/internal/pkg/instrument"
	"github.com/shandysiswandi/otpflow/internal/pkg/storage"
	"go.opentelemetry.io/otel/codes"
)

//go:embed templates/*.html
var templates embed.FS

var (
	ErrUnknownPurpose     = errors.New("render: no template for purpose")
	ErrIncompleteTemplate = errors.New("render: template misses a definition")
)

type Config struct {
	Bucket string
	Prefix string
}

type Renderer struct {
	cfg      Config
	storage  storage.Storage
	embedded map[string]*template.Template
	ins      instrument.Instrumentation
}

func New(cfg Config, store storage.Storage, ins instrument.Instrumentation) (*Renderer, error) {
	entries, err := templates.ReadDir("templates")
	if err != nil {
		return nil, err
	}

	// one set per file: every file defines the same "subject" and "body" names.
	embedded := make(map[string]*template.Template, len(entries))
	for _, e := range entries {
		raw, err := templates.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, err
		}
		tpl, err := parse(e.Name(), raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		embedded[e.Name()] = tpl
	}

	return &Renderer{cfg: cfg, storage: store, embedded: embedded, ins: ins}, nil
}

func fileName(in entity.OTPMail) string {
	return "otp_" + string(in.Purpose) + ".html"
}

func (r *Renderer) RenderOTP(ctx context.Context, in entity.OTPMail) (subject, body string, err error) {
	ctx, span := r.ins.Tracer("notification.outbound.render").Start(ctx, "RenderOTP")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tpl, err := r.lookup(ctx, in)
	if err != nil {
		return "", "", err
	}

	if subject, err = execute(tpl, "subject", in); err != nil {
		return "", "", err
	}
	if body, err = execute(tpl, "body", in); err != nil {
		return "", "", err
	}

	return subject, body, nil
}

// lookup prefers the bucket override and falls back to the embedded file.
func (r *Renderer) lookup(ctx context.Context, in entity.OTPMail) (*template.Template, error) {
	name := fileName(in)

	if r.cfg.Bucket != "" {
		raw, err := r.storage.Get(ctx, r.cfg.Bucket, path.Join(r.cfg.Prefix, name))
		switch {
		case err == nil:
			tpl, pErr := parse(name, raw)
			if pErr == nil {
				return tpl, nil
			}
			slog.WarnContext(ctx, "failed to parse template override, using embedded", "template", name, "error", pErr)
		case errors.Is(err, storage.ErrObjectNotFound):
		default:
			slog.WarnContext(ctx, "failed to load template override, using embedded", "template", name, "error", err)
		}
	}

	tpl, ok := r.embedded[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPurpose, in.Purpose)
	}

	return tpl, nil
}

// parse requires both the "subject" and the "body" definitions.
func parse(name string, raw []byte) (*template.Template, error) {
	tpl, err := template.New(name).Option("missingkey=zero").Parse(string(raw))
	if err != nil {
		return nil, err
	}

	for _, def := range []string{"subject", "body"} {
		if tpl.Lookup(def) == nil {
			return nil, fmt.Errorf("%w: %q in %s", ErrIncompleteTemplate, def, name)
		}
	}

	return tpl, nil
}

func execute(tpl *template.Template, name string, data entity.OTPMail) (string, error) {
	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
