package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldsFromArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "typed values",
			args: []string{"title=Dune", "genre=3", "is_available=true", "library=null"},
			want: map[string]any{"title": "Dune", "genre": int64(3), "is_available": true, "library": nil},
		},
		{
			name: "quoted forces string",
			args: []string{`name="42"`},
			want: map[string]any{"name": "42"},
		},
		{
			name: "value containing equals",
			args: []string{"note=a=b"},
			want: map[string]any{"note": "a=b"},
		},
		{
			name: "empty value",
			args: []string{"address="},
			want: map[string]any{"address": ""},
		},
		{name: "missing equals", args: []string{"title"}, wantErr: true},
		{name: "missing name", args: []string{"=x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FieldsFromArgs(tt.args)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrIncorrectField)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBook_RowFromBackendJSON(t *testing.T) {
	var b Book
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"title":"Dune","genre":2,"library":null,"is_available":false}`), &b))

	assert.Equal(t, []string{"7", "Dune", "2", "-", "Borrowed"}, b.Row())
	assert.Len(t, b.Header(), len(b.Row()))
}

func TestLoan_Returned(t *testing.T) {
	var open, closed Loan
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"book":2,"member":3,"loan_date":"2024-01-01","return_date":null}`), &open))
	require.NoError(t, json.Unmarshal([]byte(`{"id":2,"book":2,"member":3,"loan_date":"2024-01-01","return_date":"2024-02-01"}`), &closed))

	assert.False(t, open.Returned())
	assert.Equal(t, "Not returned", open.Row()[4])
	assert.True(t, closed.Returned())
	assert.Equal(t, "2024-02-01", closed.Row()[4])
}

func TestMember_Role(t *testing.T) {
	age := int64(30)
	admin := Member{ID: 1, Username: "root", IsSuperuser: true, Age: &age}
	reader := Member{ID: 2, Username: "ann"}

	assert.Equal(t, []string{"1", "root", "", "Administrator", "30"}, admin.Row())
	assert.Equal(t, "Reader", reader.Row()[3])
	assert.Equal(t, "-", reader.Row()[4])
}
