package eventform

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type fakeActions struct {
	result  models.Result
	created []models.EventInput
	updated []models.EventInput
}

func (a *fakeActions) CreateEvent(_ context.Context, in models.EventInput) models.Result {
	a.created = append(a.created, in)
	return a.result
}

func (a *fakeActions) UpdateEvent(_ context.Context, in models.EventInput) models.Result {
	a.updated = append(a.updated, in)
	return a.result
}

type recordedEffects struct {
	toasts   []string
	closed   int
	refreshs int
}

func (e *recordedEffects) Toast(message string) { e.toasts = append(e.toasts, message) }
func (e *recordedEffects) Close()               { e.closed++ }
func (e *recordedEffects) Refresh()             { e.refreshs++ }

var classes = []models.Class{{ID: 3, Name: "5A"}, {ID: 4, Name: "6B"}}

func existingEvent() *models.Event {
	classID := 4
	return &models.Event{
		ID:          17,
		Title:       "Parents meeting",
		Description: "Room 204",
		StartTime:   time.Date(2024, 5, 20, 16, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2024, 5, 20, 17, 30, 0, 0, time.UTC),
		ClassID:     &classID,
	}
}

func newForm(mode Mode, data *models.Event, actions Actions) *Form {
	return New(logrus.New(), Props{Mode: mode, Data: data, Classes: classes}, NewSchema(), actions)
}

// submitted converts a view back into the values a browser would post.
func submitted(view View) url.Values {
	values := url.Values{}
	for _, fld := range view.Fields {
		values.Set(fld.Name, fld.Value)
	}
	values.Set(view.Class.Name, view.Class.Value)
	return values
}

func TestFormView(t *testing.T) {
	t.Run("create mode is empty", func(t *testing.T) {
		view := newForm(ModeCreate, nil, &fakeActions{}).View()
		require.Equal(t, "Create Event", view.Heading)
		require.Equal(t, "Create", view.SubmitLabel)
		require.Len(t, view.Fields, 4)
		for _, fld := range view.Fields {
			require.Empty(t, fld.Value, fld.Name)
		}
		_, ok := view.FieldByName(FieldID)
		require.False(t, ok)
		require.Empty(t, view.Class.Value)
		require.Len(t, view.Class.Options, 2)
		for _, opt := range view.Class.Options {
			require.False(t, opt.Selected)
		}
	})

	t.Run("update mode is pre-filled", func(t *testing.T) {
		view := newForm(ModeUpdate, existingEvent(), &fakeActions{}).View()
		require.Equal(t, "Update Event", view.Heading)
		require.Equal(t, "Update", view.SubmitLabel)

		id, ok := view.FieldByName(FieldID)
		require.True(t, ok)
		require.True(t, id.Hidden)
		require.Equal(t, "17", id.Value)

		start, _ := view.FieldByName(FieldStartTime)
		require.Equal(t, "2024-05-20T16:00", start.Value)
		require.Equal(t, "datetime-local", start.Type)
		require.Equal(t, "1", start.Step)

		require.Equal(t, "4", view.Class.Value)
		require.False(t, view.Class.Options[0].Selected)
		require.True(t, view.Class.Options[1].Selected)
	})

	t.Run("stored seconds are kept", func(t *testing.T) {
		data := existingEvent()
		data.StartTime = data.StartTime.Add(45 * time.Second)
		view := newForm(ModeUpdate, data, &fakeActions{}).View()
		start, _ := view.FieldByName(FieldStartTime)
		require.Equal(t, "2024-05-20T16:00:45", start.Value)
		require.Equal(t, "1", start.Step)
		end, _ := view.FieldByName(FieldEndTime)
		require.Equal(t, "1", end.Step)
	})

	t.Run("update without class defaults to empty selection", func(t *testing.T) {
		data := existingEvent()
		data.ClassID = nil
		view := newForm(ModeUpdate, data, &fakeActions{}).View()
		require.Empty(t, view.Class.Value)
	})
}

func TestFormSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("create mode calls create only", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Success: true}}
		effects := &recordedEffects{}
		view := newForm(ModeCreate, nil, actions).Submit(ctx, validValues(), effects)

		require.True(t, view.Succeeded)
		require.Len(t, actions.created, 1)
		require.Empty(t, actions.updated)
		require.Nil(t, actions.created[0].ID)
		require.Equal(t, []string{"Event has been created!"}, effects.toasts)
		require.Equal(t, 1, effects.closed)
		require.Equal(t, 1, effects.refreshs)
		require.Empty(t, view.FormError)
	})

	t.Run("update mode keeps the record id", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Success: true}}
		effects := &recordedEffects{}
		form := newForm(ModeUpdate, existingEvent(), actions)
		values := submitted(form.View())
		values.Set(FieldTitle, "Parents meeting (moved)")

		view := form.Submit(ctx, values, effects)
		require.True(t, view.Succeeded)
		require.Empty(t, actions.created)
		require.Len(t, actions.updated, 1)
		got := actions.updated[0]
		require.NotNil(t, got.ID)
		require.Equal(t, 17, *got.ID)
		require.Equal(t, "Parents meeting (moved)", got.Title)
		require.True(t, existingEvent().StartTime.Equal(got.StartTime))
		require.True(t, existingEvent().EndTime.Equal(got.EndTime))
		require.Equal(t, 4, *got.ClassID)
		require.Equal(t, []string{"Event has been updated!"}, effects.toasts)
	})

	t.Run("update mode requires the id", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Success: true}}
		view := newForm(ModeUpdate, nil, actions).Submit(ctx, validValues(), &recordedEffects{})
		id, ok := view.FieldByName(FieldID)
		require.True(t, ok)
		require.Equal(t, msgIDRequired, id.Error)
		require.Empty(t, actions.updated)
	})

	t.Run("invalid input blocks submission", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Success: true}}
		effects := &recordedEffects{}
		values := validValues()
		values.Set(FieldTitle, "")
		view := newForm(ModeCreate, nil, actions).Submit(ctx, values, effects)

		require.False(t, view.Succeeded)
		require.Empty(t, actions.created)
		require.Empty(t, effects.toasts)
		require.Zero(t, effects.closed)
		title, _ := view.FieldByName(FieldTitle)
		require.Equal(t, msgTitleRequired, title.Error)
		desc, _ := view.FieldByName(FieldDescription)
		require.Equal(t, "Projects in the main hall", desc.Value)
	})

	t.Run("failure keeps the form open", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Error: true}}
		effects := &recordedEffects{}
		form := newForm(ModeUpdate, existingEvent(), actions)
		view := form.Submit(ctx, submitted(form.View()), effects)

		require.False(t, view.Succeeded)
		require.Equal(t, MsgSomethingWentWrong, view.FormError)
		require.Empty(t, effects.toasts)
		require.Zero(t, effects.closed)
		require.Zero(t, effects.refreshs)
		id, ok := view.FieldByName(FieldID)
		require.True(t, ok)
		require.Equal(t, "17", id.Value)
	})

	t.Run("no class leaves the reference absent", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Success: true}}
		values := validValues()
		values.Del(FieldClassID)
		newForm(ModeCreate, nil, actions).Submit(ctx, values, &recordedEffects{})
		require.Len(t, actions.created, 1)
		require.Nil(t, actions.created[0].ClassID)
	})

	t.Run("create mode ignores a posted id", func(t *testing.T) {
		actions := &fakeActions{result: models.Result{Success: true}}
		values := validValues()
		values.Set(FieldID, "oops")
		view := newForm(ModeCreate, nil, actions).Submit(ctx, values, &recordedEffects{})
		require.True(t, view.Succeeded)
		require.Nil(t, actions.created[0].ID)
	})
}

func TestParseMode(t *testing.T) {
	mode, err := ParseMode("update")
	require.NoError(t, err)
	require.Equal(t, ModeUpdate, mode)

	_, err = ParseMode("delete")
	require.Error(t, err)
}
