package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tourwise/cms-client/pkg/resources"
)

func TestValidate_AcceptsGoodPayload(t *testing.T) {
	v := New()

	err := v.Validate(resources.CommentInput{
		TargetType: "post",
		TargetID:   "p1",
		AuthorName: "Mika",
		Body:       "Lovely place!",
	})
	assert.NoError(t, err)
}

func TestValidate_ReportsFieldsByJSONName(t *testing.T) {
	v := New()

	err := v.Validate(resources.CommentInput{
		TargetType:  "spaceship",
		AuthorEmail: "not-an-email",
	})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, "must be one of: post hotel event activity region", verr.Fields["target_type"])
	assert.Equal(t, "is required", verr.Fields["target_id"])
	assert.Equal(t, "is required", verr.Fields["author_name"])
	assert.Equal(t, "must be a valid email address", verr.Fields["author_email"])
	assert.Equal(t, "is required", verr.Fields["body"])
}

func TestValidate_OptionalFieldsStayOptional(t *testing.T) {
	v := New()

	// No email, no slug: both are omitempty.
	err := v.Validate(resources.HotelInput{Name: "Seaside Inn"})
	assert.NoError(t, err)
}

func TestValidate_RangeTags(t *testing.T) {
	v := New()

	err := v.Validate(resources.HotelInput{Name: "Seaside Inn", Stars: 9})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be less than or equal to 5", verr.Fields["stars"])
}

func TestError_MessageIsDeterministic(t *testing.T) {
	err := &Error{Fields: map[string]string{
		"title": "is required",
		"body":  "is required",
	}}

	assert.Equal(t, "invalid payload: body is required; title is required", err.Error())
}
