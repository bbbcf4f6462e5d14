package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

func TestFromRequest(t *testing.T) {
	tests := []struct {
		query   string
		want    Params
		wantErr bool
	}{
		{query: "", want: Params{Page: 1, PerPage: 20}},
		{query: "page=3&per_page=10", want: Params{Page: 3, PerPage: 10}},
		{query: "per_page=100", want: Params{Page: 1, PerPage: 100}},
		{query: "page=0", wantErr: true},
		{query: "page=abc", wantErr: true},
		{query: "per_page=101", wantErr: true},
		{query: "per_page=-5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p, err := FromRequest(httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil))
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p)
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PerPage: 20}.Offset())
	assert.Equal(t, 40, Params{Page: 3, PerPage: 20}.Offset())
}

func TestNewResult(t *testing.T) {
	r := NewResult([]string{"a", "b"}, 45, Params{Page: 2, PerPage: 20})
	assert.Equal(t, 3, r.TotalPages)
	assert.True(t, r.HasNext)

	empty := NewResult[string](nil, 0, Params{Page: 1, PerPage: 20})
	assert.NotNil(t, empty.Data)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNext)
}
