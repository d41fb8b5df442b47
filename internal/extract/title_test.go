package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "known pattern",
			text: "FORM - C\n  Title for Forest Land under Occupation  \nName of Holder(s): Ram Lal",
			want: "Title for Forest Land under Occupation",
		},
		{
			name: "pattern order beats line order",
			text: "Certificate of residence\nAnnexure II",
			want: "Annexure II",
		},
		{
			name: "keyword score",
			text: "12345\nRecord of land holding details\nSome other line here",
			want: "Record of land holding details",
		},
		{
			name: "upper case bonus",
			text: "Land holding register\nFOREST LAND HOLDING REGISTER",
			want: "FOREST LAND HOLDING REGISTER",
		},
		{
			name: "long line fallback",
			text: "12345678901234567\nshort\nThis line is long enough",
			want: "This line is long enough",
		},
		{
			name: "first line fallback",
			text: "\n abc \ndef",
			want: "abc",
		},
		{
			name: "empty",
			text: " \n\n ",
			want: NoTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.text))
		})
	}
}

func TestFieldEntityRecognizer(t *testing.T) {
	fields := map[string]string{
		"holder_name":        "Ram Lal",
		"father_mother_name": "Mohan Lal",
		"dependents":         "sita devi, gopal and meera\nram lal",
		"village_gram":       "Kandaghat",
		"district":           "Solan",
	}

	info, err := FieldEntityRecognizer{}.Recognize(context.Background(), "Issued by Forest Department\nName: Ram Lal", fields)
	require.NoError(t, err)

	assert.Equal(t, []string{"Ram Lal", "Mohan Lal", "Sita Devi", "Gopal", "Meera"}, info.Persons)
	assert.Equal(t, []string{"Kandaghat", "Solan"}, info.Locations)
	assert.Equal(t, []string{"Issued by Forest Department"}, info.Organizations)
}

func TestFieldEntityRecognizer_Empty(t *testing.T) {
	info, err := FieldEntityRecognizer{}.Recognize(context.Background(), "", nil)
	require.NoError(t, err)
	assert.NotNil(t, info.Persons)
	assert.Empty(t, info.Persons)
	assert.Empty(t, info.Locations)
	assert.Empty(t, info.Organizations)
}
