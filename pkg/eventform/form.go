// Package eventform implements the event create/update form: it builds the
// view model of the inputs, validates submissions and forwards valid payloads
// to the create or update action. Side effects of a successful submission
// (toast, closing the dialog, refreshing the list) are requested through
// Effects so the caller decides how to deliver them.
package eventform

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/pershin-daniil/SchoolAdmin/pkg/metrics"
	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/sirupsen/logrus"
)

type Mode string

const (
	ModeCreate Mode = "create"
	ModeUpdate Mode = "update"
)

// MsgSomethingWentWrong is shown when the action reports a failure.
const MsgSomethingWentWrong = "Something went wrong!"

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeCreate, ModeUpdate:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown form mode %q", s)
}

type Actions interface {
	CreateEvent(ctx context.Context, in models.EventInput) models.Result
	UpdateEvent(ctx context.Context, in models.EventInput) models.Result
}

// Effects receives the requests a successful submission makes to its host.
type Effects interface {
	Toast(message string)
	Close()
	Refresh()
}

type Props struct {
	Mode Mode
	// Data is the event being edited. Nil in create mode.
	Data    *models.Event
	Classes []models.Class
}

// Field is one rendered input. Time inputs carry Step "1" so that stored
// seconds pass the browser's step check.
type Field struct {
	Label  string
	Name   string
	Type   string
	Step   string
	Value  string
	Error  string
	Hidden bool
}

type ClassOption struct {
	ID       int
	Name     string
	Selected bool
}

type ClassSelect struct {
	Label   string
	Name    string
	Value   string
	Error   string
	Options []ClassOption
}

type View struct {
	Mode        Mode
	Heading     string
	SubmitLabel string
	Fields      []Field
	Class       ClassSelect
	FormError   string
	// Succeeded is set once the action reported success.
	Succeeded bool
}

type Form struct {
	log     *logrus.Entry
	props   Props
	schema  *Schema
	actions Actions
}

func New(log *logrus.Logger, props Props, schema *Schema, actions Actions) *Form {
	return &Form{
		log:     log.WithField("component", "eventform"),
		props:   props,
		schema:  schema,
		actions: actions,
	}
}

// View returns the form before any submission, pre-filled from Props.Data.
func (f *Form) View() View {
	return f.render(f.initialValues(), nil, "")
}

// Submit validates values and, when they are valid, invokes exactly one action
// according to the form mode.
func (f *Form) Submit(ctx context.Context, values url.Values, effects Effects) View {
	raw := make(map[string]string, 6)
	for _, name := range []string{FieldID, FieldTitle, FieldDescription, FieldStartTime, FieldEndTime, FieldClassID} {
		raw[name] = values.Get(name)
	}

	in, errs := f.schema.Parse(values)
	switch f.props.Mode {
	case ModeCreate:
		in.ID = nil
		delete(errs, FieldID)
		delete(raw, FieldID)
	case ModeUpdate:
		if in.ID == nil && errs[FieldID] == "" {
			if errs == nil {
				errs = make(FieldErrors)
			}
			errs[FieldID] = msgIDRequired
		}
	}
	if len(errs) > 0 {
		f.log.Debugf("%s form rejected: %v", f.props.Mode, errs)
		metrics.FormSubmissions.WithLabelValues(string(f.props.Mode), "invalid").Inc()
		return f.render(raw, errs, "")
	}

	var result models.Result
	if f.props.Mode == ModeUpdate {
		result = f.actions.UpdateEvent(ctx, in)
	} else {
		result = f.actions.CreateEvent(ctx, in)
	}

	switch {
	case result.Success:
		metrics.FormSubmissions.WithLabelValues(string(f.props.Mode), "success").Inc()
		effects.Toast(f.successMessage())
		effects.Close()
		effects.Refresh()
		view := f.render(raw, nil, "")
		view.Succeeded = true
		return view
	case result.Error:
		metrics.FormSubmissions.WithLabelValues(string(f.props.Mode), "failure").Inc()
		return f.render(raw, nil, MsgSomethingWentWrong)
	}
	return f.render(raw, nil, "")
}

func (f *Form) successMessage() string {
	if f.props.Mode == ModeUpdate {
		return "Event has been updated!"
	}
	return "Event has been created!"
}

func (f *Form) initialValues() map[string]string {
	raw := make(map[string]string, 6)
	data := f.props.Data
	if data == nil {
		return raw
	}
	raw[FieldID] = strconv.Itoa(data.ID)
	raw[FieldTitle] = data.Title
	raw[FieldDescription] = data.Description
	raw[FieldStartTime] = FormatInput(data.StartTime)
	raw[FieldEndTime] = FormatInput(data.EndTime)
	if data.ClassID != nil {
		raw[FieldClassID] = strconv.Itoa(*data.ClassID)
	}
	return raw
}

func (f *Form) render(raw map[string]string, errs FieldErrors, formErr string) View {
	view := View{
		Mode:        f.props.Mode,
		Heading:     "Create Event",
		SubmitLabel: "Create",
		FormError:   formErr,
	}
	if f.props.Mode == ModeUpdate {
		view.Heading = "Update Event"
		view.SubmitLabel = "Update"
	}

	view.Fields = []Field{
		{Label: "Title", Name: FieldTitle, Type: "text"},
		{Label: "Description", Name: FieldDescription, Type: "text"},
		{Label: "Start Time", Name: FieldStartTime, Type: "datetime-local", Step: "1"},
		{Label: "End Time", Name: FieldEndTime, Type: "datetime-local", Step: "1"},
	}
	if f.props.Data != nil || f.props.Mode == ModeUpdate || raw[FieldID] != "" {
		view.Fields = append(view.Fields, Field{Label: "Id", Name: FieldID, Type: "hidden", Hidden: true})
	}
	for i := range view.Fields {
		view.Fields[i].Value = raw[view.Fields[i].Name]
		view.Fields[i].Error = errs[view.Fields[i].Name]
	}

	view.Class = ClassSelect{
		Label: "Class",
		Name:  FieldClassID,
		Value: raw[FieldClassID],
		Error: errs[FieldClassID],
	}
	for _, cls := range f.props.Classes {
		view.Class.Options = append(view.Class.Options, ClassOption{
			ID:       cls.ID,
			Name:     cls.Name,
			Selected: strconv.Itoa(cls.ID) == raw[FieldClassID],
		})
	}
	return view
}

// FieldByName returns the rendered field with the given name.
func (v View) FieldByName(name string) (Field, bool) {
	for _, fld := range v.Fields {
		if fld.Name == name {
			return fld, true
		}
	}
	return Field{}, false
}

// HasErrors reports whether any field failed validation.
func (v View) HasErrors() bool {
	if v.Class.Error != "" {
		return true
	}
	for _, fld := range v.Fields {
		if fld.Error != "" {
			return true
		}
	}
	return false
}
