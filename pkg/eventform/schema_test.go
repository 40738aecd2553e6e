package eventform

import (
	"net/url"
	"testing"
	"time"

	"github.com/pershin-daniil/SchoolAdmin/pkg/models"
	"github.com/stretchr/testify/require"
)

func validValues() url.Values {
	return url.Values{
		FieldTitle:       {"Science fair"},
		FieldDescription: {"Projects in the main hall"},
		FieldStartTime:   {"2024-03-01T09:00"},
		FieldEndTime:     {"2024-03-01T12:30"},
		FieldClassID:     {"3"},
	}
}

func TestSchemaParse(t *testing.T) {
	schema := NewSchema()

	t.Run("valid", func(t *testing.T) {
		in, errs := schema.Parse(validValues())
		require.Empty(t, errs)
		require.Nil(t, in.ID)
		require.Equal(t, "Science fair", in.Title)
		require.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), in.StartTime)
		require.Equal(t, time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC), in.EndTime)
		require.NotNil(t, in.ClassID)
		require.Equal(t, 3, *in.ClassID)
	})

	tests := []struct {
		name   string
		modify func(v url.Values)
		want   FieldErrors
	}{
		{
			name: "empty form",
			modify: func(v url.Values) {
				for k := range v {
					delete(v, k)
				}
			},
			want: FieldErrors{
				FieldTitle:       msgTitleRequired,
				FieldDescription: msgDescriptionRequired,
				FieldStartTime:   msgStartTimeRequired,
				FieldEndTime:     msgEndTimeRequired,
			},
		},
		{
			name:   "blank title",
			modify: func(v url.Values) { v.Set(FieldTitle, "   ") },
			want:   FieldErrors{FieldTitle: msgTitleRequired},
		},
		{
			name:   "end before start",
			modify: func(v url.Values) { v.Set(FieldEndTime, "2024-03-01T08:00") },
			want:   FieldErrors{FieldEndTime: msgEndBeforeStart},
		},
		{
			name:   "end equals start",
			modify: func(v url.Values) { v.Set(FieldEndTime, "2024-03-01T09:00") },
			want:   FieldErrors{FieldEndTime: msgEndBeforeStart},
		},
		{
			name:   "malformed start",
			modify: func(v url.Values) { v.Set(FieldStartTime, "tomorrow") },
			want:   FieldErrors{FieldStartTime: msgInvalidStartTime},
		},
		{
			name:   "malformed class",
			modify: func(v url.Values) { v.Set(FieldClassID, "math") },
			want:   FieldErrors{FieldClassID: msgInvalidClass},
		},
		{
			name:   "non positive class",
			modify: func(v url.Values) { v.Set(FieldClassID, "0") },
			want:   FieldErrors{FieldClassID: msgInvalidClass},
		},
		{
			name:   "malformed id",
			modify: func(v url.Values) { v.Set(FieldID, "x1") },
			want:   FieldErrors{FieldID: msgInvalidID},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := validValues()
			tc.modify(v)
			_, errs := schema.Parse(v)
			require.Equal(t, tc.want, errs)
		})
	}

	t.Run("no class selected", func(t *testing.T) {
		v := validValues()
		v.Set(FieldClassID, "")
		in, errs := schema.Parse(v)
		require.Empty(t, errs)
		require.Nil(t, in.ClassID)
	})
}

func TestSchemaValidate(t *testing.T) {
	schema := NewSchema()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	in := models.EventInput{
		Title:       "Concert",
		Description: "Spring concert",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
	}
	require.Nil(t, schema.Validate(in))

	in.Description = ""
	require.Equal(t, FieldErrors{FieldDescription: msgDescriptionRequired}, schema.Validate(in))
}

func TestInputTimeRoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 1, 9, 0, 42, 0, time.UTC),
		time.Date(2024, 3, 1, 9, 0, 42, 123456000, time.UTC),
		time.Date(2024, 3, 1, 12, 15, 0, 0, time.FixedZone("MSK", 3*60*60)),
	}
	for _, instant := range instants {
		formatted := FormatInput(instant)
		parsed, err := ParseInput(formatted)
		require.NoError(t, err, formatted)
		require.True(t, instant.Equal(parsed), "%s -> %s -> %s", instant, formatted, parsed)
	}
	require.Equal(t, "2024-03-01T09:15", FormatInput(time.Date(2024, 3, 1, 12, 15, 0, 0, time.FixedZone("MSK", 3*60*60))))
	require.Empty(t, FormatInput(time.Time{}))
}
