// Package bind decodes query strings into typed inputs and validates them
package bind

import (
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"sync"

	perr "comicvault/internal/platform/errors"
	"comicvault/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FieldError aliases validator.FieldError
type FieldError = validator.FieldError

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc
)

// Get returns the validator singleton with english translations; field
// names in messages come from the query tag
func Get() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := tagName(fld); name != "" {
				return name
			}
			return fld.Name
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerShort(v, trans, "min", "{0} must be at least {1}")
		registerShort(v, trans, "max", "{0} must be at most {1}")

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// ParseQuery fills T from the request query string. Fields bind by their
// `query` tag; a `default` tag supplies the value when the key is absent.
// Supported field kinds are string, ints, bool and []string (repeated keys
// or comma separated). Failures are ErrorCodeValidation with the field set
func ParseQuery[T any](r *http.Request) (T, error) {
	var dst T
	rv := reflect.ValueOf(&dst).Elem()
	if rv.Kind() != reflect.Struct {
		return dst, perr.Newf(perr.ErrorCodeUnknown, "bind: %T is not a struct", dst)
	}
	if err := decode(rv, r.URL.Query()); err != nil {
		return dst, err
	}
	if err := Get().Validator.Struct(dst); err != nil {
		field, msg := ValidationFieldAndMessage(err)
		if _, ok := err.(*validator.InvalidValidationError); ok {
			logger.C(r.Context()).Error().Err(err).Msg("bind: validator internal error")
		}
		return dst, perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s", msg), field)
	}
	return dst, nil
}

func decode(rv reflect.Value, q url.Values) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		name := tagName(sf)
		if name == "" || !sf.IsExported() {
			continue
		}
		vals, ok := q[name]
		if !ok || len(vals) == 0 || (len(vals) == 1 && strings.TrimSpace(vals[0]) == "") {
			def, has := sf.Tag.Lookup("default")
			if !has {
				continue
			}
			vals = []string{def}
		}
		if err := set(rv.Field(i), vals); err != nil {
			return perr.WithField(perr.Newf(perr.ErrorCodeValidation, "%s %s", name, err.Error()), name)
		}
	}
	return nil
}

type kindErr string

func (e kindErr) Error() string { return string(e) }

func set(f reflect.Value, vals []string) error {
	raw := strings.TrimSpace(vals[0])
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, f.Type().Bits())
		if err != nil {
			return kindErr("must be an integer")
		}
		f.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return kindErr("must be true or false")
		}
		f.SetBool(b)
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.String {
			return kindErr("has an unsupported type")
		}
		var out []string
		for _, v := range vals {
			for _, p := range strings.Split(v, ",") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
		}
		f.Set(reflect.ValueOf(out))
	default:
		return kindErr("has an unsupported type")
	}
	return nil
}

func tagName(sf reflect.StructField) string {
	tag := sf.Tag.Get("query")
	if tag == "-" {
		return ""
	}
	if idx := strings.Index(tag, ","); idx >= 0 {
		tag = tag[:idx]
	}
	return tag
}

// ValidationFieldAndMessage returns the first field and translated message
func ValidationFieldAndMessage(err error) (field, message string) {
	if err == nil {
		return "", ""
	}
	if inv, ok := err.(*validator.InvalidValidationError); ok {
		return "", inv.Error()
	}
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			return fe.Field(), fe.Translate(Get().Translator)
		}
	}
	return "", err.Error()
}

func registerShort(v *validator.Validate, trans ut.Translator, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T(tag, fe.Field(), fe.Param())
			return msg
		},
	)
}
