package eventform

import (
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
)

// Form field names, shared by the schema, the view and the templates.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldStartTime   = "startTime"
	FieldEndTime     = "endTime"
	FieldClassID     = "classId"
)

const (
	msgTitleRequired       = "Title is required!"
	msgDescriptionRequired = "Description is required!"
	msgStartTimeRequired   = "Start time is required!"
	msgEndTimeRequired     = "End time is required!"
	msgEndBeforeStart      = "End time must be after start time!"
	msgInvalidStartTime    = "Start time is invalid!"
	msgInvalidEndTime      = "End time is invalid!"
	msgInvalidClass        = "Invalid class!"
	msgInvalidID           = "Invalid id!"
	msgIDRequired          = "Id is required!"
	msgInvalidValue        = "Invalid value!"
)

// messages maps "<field>.<tag>" of a failed rule to the text shown next to the field.
var messages = map[string]string{
	FieldTitle + ".required":       msgTitleRequired,
	FieldDescription + ".required": msgDescriptionRequired,
	FieldStartTime + ".required":   msgStartTimeRequired,
	FieldEndTime + ".required":     msgEndTimeRequired,
	FieldEndTime + ".gtfield":      msgEndBeforeStart,
	FieldClassID + ".gt":           msgInvalidClass,
	FieldID + ".gt":                msgInvalidID,
}

// FieldErrors holds one message per invalid field, keyed by form field name.
type FieldErrors map[string]string

// Schema validates event payloads against the rules declared on models.EventInput.
type Schema struct {
	validate *validator.Validate
}

func NewSchema() *Schema {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Schema{validate: v}
}

// Validate checks an already typed payload. It returns nil when the payload is valid.
func (s *Schema) Validate(in models.EventInput) FieldErrors {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	errs := make(FieldErrors)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs[""] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		if _, ok := errs[fe.Field()]; ok {
			continue
		}
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = msgInvalidValue
		}
		errs[fe.Field()] = msg
	}
	return errs
}

// Parse decodes raw form values and validates the result. Decoding errors win
// over rule violations for the same field.
func (s *Schema) Parse(values url.Values) (models.EventInput, FieldErrors) {
	in, decodeErrs := decode(values)
	errs := s.Validate(in)
	if len(decodeErrs) == 0 {
		return in, errs
	}
	if errs == nil {
		errs = make(FieldErrors)
	}
	for field, msg := range decodeErrs {
		errs[field] = msg
	}
	return in, errs
}

func decode(values url.Values) (models.EventInput, FieldErrors) {
	errs := make(FieldErrors)
	in := models.EventInput{
		Title:       strings.TrimSpace(values.Get(FieldTitle)),
		Description: strings.TrimSpace(values.Get(FieldDescription)),
	}
	if v := strings.TrimSpace(values.Get(FieldID)); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			errs[FieldID] = msgInvalidID
		} else {
			in.ID = &id
		}
	}
	if v := strings.TrimSpace(values.Get(FieldStartTime)); v != "" {
		t, err := ParseInput(v)
		if err != nil {
			errs[FieldStartTime] = msgInvalidStartTime
		} else {
			in.StartTime = t
		}
	}
	if v := strings.TrimSpace(values.Get(FieldEndTime)); v != "" {
		t, err := ParseInput(v)
		if err != nil {
			errs[FieldEndTime] = msgInvalidEndTime
		} else {
			in.EndTime = t
		}
	}
	if v := strings.TrimSpace(values.Get(FieldClassID)); v != "" {
		classID, err := strconv.Atoi(v)
		if err != nil {
			errs[FieldClassID] = msgInvalidClass
		} else {
			in.ClassID = &classID
		}
	}
	return in, errs
}
