package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/tidwall/gjson"

	"toothless_dashboard/internal/entities"
)

// ValidationError rejects a candidate settings document. Field is the JSON
// path of the offending value, empty when the document as a whole is wrong.
type ValidationError struct {
	Category entities.Category
	Field    string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid %s settings: %s", e.Category, e.Reason)
	}
	return fmt.Sprintf("invalid %s settings: %s %s", e.Category, e.Field, e.Reason)
}

var validate = newValidator()

// rgbHex accepts #RGB and #RRGGBB; the built-in hexcolor also takes alpha forms.
var rgbHex = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("rgbhex", func(fl validator.FieldLevel) bool {
		return rgbHex.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// schema describes one category: the document every field falls back to,
// any cross-field rule the struct tags cannot express, and how to copy the
// reference-typed fields of a document.
type schema[T any] struct {
	defaults func() T
	check    func(T) *ValidationError
	clone    func(T) T
}

var (
	welcomeSchema = schema[entities.WelcomeSettings]{
		defaults: func() entities.WelcomeSettings { return entities.WelcomeSettings{Enabled: true} },
		clone:    cloneWelcome,
	}
	logSchema = schema[entities.LogSettings]{
		defaults: func() entities.LogSettings { return entities.LogSettings{Enabled: true} },
	}
	ticketSchema = schema[entities.TicketSettings]{
		defaults: func() entities.TicketSettings { return entities.TicketSettings{Enabled: true} },
	}
	levelSchema = schema[entities.LevelSettings]{
		defaults: func() entities.LevelSettings { return entities.LevelSettings{Enabled: true} },
		check:    checkXPBounds,
		clone:    cloneLevels,
	}
)

func cloneWelcome(s entities.WelcomeSettings) entities.WelcomeSettings {
	if s.Embed != nil {
		embed := *s.Embed
		s.Embed = &embed
	}
	return s
}

func cloneLevels(s entities.LevelSettings) entities.LevelSettings {
	s.XPPerMessage = maps.Clone(s.XPPerMessage)
	return s
}

func checkXPBounds(s entities.LevelSettings) *ValidationError {
	lo, hasLo := s.XPPerMessage["min"]
	hi, hasHi := s.XPPerMessage["max"]
	if hasLo && hasHi && lo > hi {
		return &ValidationError{Field: "xpPerMessage", Reason: "min must not exceed max"}
	}
	return nil
}

func (s schema[T]) copyOf(doc T) T {
	if s.clone == nil {
		return doc
	}
	return s.clone(doc)
}

// decode overlays raw onto the category defaults. JSON null leaves the
// default in place and unknown fields are ignored. No constraint is checked.
func (s schema[T]) decode(raw []byte) (T, error) {
	doc := s.defaults()
	if !gjson.ValidBytes(raw) {
		return doc, &ValidationError{Reason: "is not valid JSON"}
	}
	if !gjson.ParseBytes(raw).IsObject() {
		return doc, &ValidationError{Reason: "must be a JSON object"}
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return doc, &ValidationError{Field: typeErr.Field, Reason: fmt.Sprintf("must be %s, got %s", typeErr.Type, typeErr.Value)}
		}
		return doc, &ValidationError{Reason: err.Error()}
	}
	return doc, nil
}

// parse decodes and then enforces every constraint of the category.
func (s schema[T]) parse(raw []byte) (T, error) {
	doc, err := s.decode(raw)
	if err != nil {
		return doc, err
	}
	if err := validate.Struct(doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return doc, fieldError(fieldErrs[0])
		}
		return doc, fmt.Errorf("validate settings: %w", err)
	}
	if s.check != nil {
		if ve := s.check(doc); ve != nil {
			return doc, ve
		}
	}
	return doc, nil
}

func fieldError(fe validator.FieldError) *ValidationError {
	// Namespace is "<Struct>.<json path>"; drop the struct name.
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}

	var reason string
	switch fe.Tag() {
	case "max":
		if fe.Kind() == reflect.String {
			reason = fmt.Sprintf("must be at most %s characters", fe.Param())
		} else {
			reason = fmt.Sprintf("must be at most %s", fe.Param())
		}
	case "min":
		reason = fmt.Sprintf("must be at least %s", fe.Param())
	case "rgbhex":
		reason = "must be a hex colour such as #5865F2"
	case "oneof":
		reason = fmt.Sprintf("must be one of [%s]", fe.Param())
	default:
		reason = fmt.Sprintf("failed %q constraint", fe.Tag())
	}
	return &ValidationError{Field: field, Reason: reason}
}

// mergeTopLevel overlays the top-level keys of candidate onto current.
func mergeTopLevel(current any, candidate []byte) ([]byte, error) {
	base, err := json.Marshal(current)
	if err != nil {
		return nil, err
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(base, &fields); err != nil {
		return nil, err
	}
	gjson.ParseBytes(candidate).ForEach(func(key, value gjson.Result) bool {
		fields[key.String()] = json.RawMessage(value.Raw)
		return true
	})
	return json.Marshal(fields)
}
