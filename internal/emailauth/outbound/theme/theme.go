// Package theme renders the code form page and the code email from
// templates and per-locale message bundles. Built-in files are embedded;
// any of them can be replaced by an object in a storage bucket.
package theme

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/codes"
	"gopkg.in/yaml.v3"

	"github.com/shandysiswandi/emailcode/internal/emailauth/entity"
	"github.com/shandysiswandi/emailcode/internal/pkg/instrument"
	"github.com/shandysiswandi/emailcode/internal/pkg/storage"
)

const (
	fileForm      = "templates/email-code-form.html"
	fileEmailHTML = "templates/code-email.html"
	fileEmailText = "templates/code-email.txt"

	messageSubject = "emailCodeSubject"
)

//go:embed templates/* messages/*
var builtin embed.FS

// Theme is safe for concurrent use.
type Theme struct {
	ins           instrument.Instrumentation
	defaultLocale string

	mu        sync.RWMutex
	form      *htmltemplate.Template
	emailHTML *htmltemplate.Template
	emailText *texttemplate.Template
	messages  map[string]map[string]string
}

// New loads the embedded theme. defaultLocale is used when a requested
// locale has no bundle; it falls back to "en" when empty.
func New(ins instrument.Instrumentation, defaultLocale string) (*Theme, error) {
	t := &Theme{ins: ins, defaultLocale: lo.CoalesceOrEmpty(defaultLocale, "en")}

	files := map[string][]byte{}
	err := fs.WalkDir(builtin, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := builtin.ReadFile(p)
		if err != nil {
			return err
		}
		files[p] = data
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := t.apply(files); err != nil {
		return nil, err
	}
	if _, ok := t.messages[t.defaultLocale]; !ok {
		return nil, fmt.Errorf("theme: no message bundle for default locale %q", t.defaultLocale)
	}
	return t, nil
}

// LoadOverrides replaces built-in files with objects found under prefix in
// bucket. Object keys mirror the embedded layout, e.g.
// "<prefix>/templates/code-email.html" or "<prefix>/messages/messages_fr.yaml".
// Missing objects keep the built-in version. Message bundles named in
// locales are looked up in addition to the built-in ones.
func (t *Theme) LoadOverrides(ctx context.Context, src storage.Storage, bucket, prefix string, locales []string) error {
	names := []string{fileForm, fileEmailHTML, fileEmailText}
	t.mu.RLock()
	for locale := range t.messages {
		locales = append(locales, locale)
	}
	t.mu.RUnlock()
	for _, locale := range lo.Uniq(locales) {
		names = append(names, "messages/messages_"+locale+".yaml")
	}

	files := map[string][]byte{}
	for _, name := range names {
		key := path.Join(prefix, name)
		rc, _, err := src.GetObject(ctx, bucket, key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("theme: get %s: %w", key, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return fmt.Errorf("theme: read %s: %w", key, err)
		}
		files[name] = data
		slog.InfoContext(ctx, "theme override loaded", "bucket", bucket, "key", key)
	}

	if len(files) == 0 {
		return nil
	}
	return t.apply(files)
}

// apply parses files and swaps in what parsed. Nothing changes on error.
func (t *Theme) apply(files map[string][]byte) error {
	t.mu.RLock()
	form, emailHTML, emailText := t.form, t.emailHTML, t.emailText
	messages := make(map[string]map[string]string, len(t.messages))
	for k, v := range t.messages {
		messages[k] = v
	}
	t.mu.RUnlock()

	var err error
	for name, data := range files {
		switch {
		case name == fileForm:
			form, err = htmltemplate.New(path.Base(name)).Parse(string(data))
		case name == fileEmailHTML:
			emailHTML, err = htmltemplate.New(path.Base(name)).Parse(string(data))
		case name == fileEmailText:
			emailText, err = texttemplate.New(path.Base(name)).Parse(string(data))
		case strings.HasPrefix(name, "messages/messages_") && strings.HasSuffix(name, ".yaml"):
			locale := strings.TrimSuffix(strings.TrimPrefix(name, "messages/messages_"), ".yaml")
			bundle := map[string]string{}
			if err = yaml.Unmarshal(data, &bundle); err == nil {
				messages[locale] = bundle
			}
		}
		if err != nil {
			return fmt.Errorf("theme: parse %s: %w", name, err)
		}
	}

	t.mu.Lock()
	t.form, t.emailHTML, t.emailText, t.messages = form, emailHTML, emailText, messages
	t.mu.Unlock()
	return nil
}

// Message returns the localized text for key with {0}, {1}… replaced by
// params. Unknown keys render as the key itself.
func (t *Theme) Message(locale, key string, params ...string) string {
	t.mu.RLock()
	bundle, ok := t.messages[locale]
	if !ok {
		bundle = t.messages[t.defaultLocale]
	}
	text, ok := bundle[key]
	if !ok {
		text, ok = t.messages[t.defaultLocale][key]
	}
	t.mu.RUnlock()
	if !ok {
		return key
	}

	for i, p := range params {
		text = strings.ReplaceAll(text, "{"+strconv.Itoa(i)+"}", p)
	}
	return text
}

func (t *Theme) msgFunc(locale string) func(key string, params ...string) string {
	return func(key string, params ...string) string {
		return t.Message(locale, key, params...)
	}
}

type formView struct {
	Locale      string
	RealmName   string
	Username    string
	ExecutionID string
	ActionURL   string
	Error       string
	Msg         func(key string, params ...string) string
}

func (t *Theme) RenderCodeForm(ctx context.Context, form entity.CodeForm) ([]byte, error) {
	_, span := t.ins.Tracer("emailauth.outbound.theme").Start(ctx, "RenderCodeForm")
	defer span.End()

	locale := lo.CoalesceOrEmpty(form.Locale, t.defaultLocale)
	view := formView{
		Locale:      locale,
		RealmName:   lo.CoalesceOrEmpty(form.Realm.DisplayName, form.Realm.Name),
		Username:    form.Username,
		ExecutionID: form.ExecutionID,
		ActionURL:   form.ActionURL,
		Msg:         t.msgFunc(locale),
	}
	if form.Error != nil {
		view.Error = t.Message(locale, form.Error.Key, form.Error.Params...)
	}

	t.mu.RLock()
	tpl := t.form
	t.mu.RUnlock()

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return buf.Bytes(), nil
}

type emailView struct {
	Locale   string
	Username string
	Code     string
	KeyURL   string
	Msg      func(key string, params ...string) string
}

// RenderedEmail is a code email ready for the transport.
type RenderedEmail struct {
	Subject string
	HTML    string
	Text    string
}

func (t *Theme) RenderCodeEmail(ctx context.Context, msg entity.CodeEmail) (_ RenderedEmail, err error) {
	_, span := t.ins.Tracer("emailauth.outbound.theme").Start(ctx, "RenderCodeEmail")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	locale := lo.CoalesceOrEmpty(msg.Locale, t.defaultLocale)
	view := emailView{
		Locale:   locale,
		Username: msg.Username,
		Code:     msg.Code,
		KeyURL:   msg.KeyURL,
		Msg:      t.msgFunc(locale),
	}

	t.mu.RLock()
	htmlTpl, textTpl := t.emailHTML, t.emailText
	t.mu.RUnlock()

	var html, text bytes.Buffer
	if err = htmlTpl.Execute(&html, view); err != nil {
		return RenderedEmail{}, err
	}
	if err = textTpl.Execute(&text, view); err != nil {
		return RenderedEmail{}, err
	}

	return RenderedEmail{
		Subject: t.Message(locale, messageSubject, lo.CoalesceOrEmpty(msg.Realm.DisplayName, msg.Realm.Name)),
		HTML:    html.String(),
		Text:    text.String(),
	}, nil
}
