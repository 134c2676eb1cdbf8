package entity

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The listing repositories filter soft-deleted rows with an equality check
// against null. Firestore's IS_NULL only matches documents where the field
// is present with an explicit null, so DeletedAt must always be written:
// an omitempty tag would drop the field for never-deleted listings and hide
// them from browse, search, and the status counts.
func TestListingDeletedAtAlwaysEncoded(t *testing.T) {
	field, ok := reflect.TypeOf(Listing{}).FieldByName("DeletedAt")
	require.True(t, ok)

	assert.Equal(t, "deletedAt", field.Tag.Get("firestore"))
	assert.NotContains(t, field.Tag.Get("firestore"), "omitempty")
}
