package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/reelviewapp/reelview-server/internal/errors"
)

type searchInput struct {
	Query string `json:"q" validate:"required,min=1,max=200"`
	Page  int    `json:"page" validate:"gte=1,lte=500"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(searchInput{Query: "moana", Page: 1}))
}

func TestValidate_UsesJSONTagNames(t *testing.T) {
	v := New()

	err := v.Validate(searchInput{Query: "", Page: 0})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeBadRequest, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Contains(t, fields, "q")
	assert.Contains(t, fields, "page")
	assert.Equal(t, "is required", fields["q"])
}

func TestValidate_RangeMessages(t *testing.T) {
	v := New()

	err := v.Validate(searchInput{Query: "moana", Page: 501})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	fields := domainErr.Details.(map[string]string)
	assert.Equal(t, "must be less than or equal to 500", fields["page"])
}
