package scope

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/gcpwatch/internal/errs"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		kind    Kind
		id      string
		wantErr bool
	}{
		{"projects/my-project", KindProject, "my-project", false},
		{"folders/123456789", KindFolder, "123456789", false},
		{"organizations/1234", KindOrganization, "1234", false},
		{"projects/a", KindProject, "a", false},
		{"projects/../etc", "", "", true},
		{"projects/proj;rm -rf", "", "", true},
		{"projects/Upper", "", "", true},
		{"projects/trailing-", "", "", true},
		{"projects/", "", "", true},
		{"billingAccounts/123", "", "", true},
		{"my-project", "", "", true},
		{"projects/a/b", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errs.KindValidation, errs.KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.kind, s.Kind())
			assert.Equal(t, tt.id, s.ID())
			assert.Equal(t, tt.in, s.String())
		})
	}
}

func TestIDLengthLimit(t *testing.T) {
	ok := strings.Repeat("a", 63)
	assert.True(t, ValidID(ok))
	assert.False(t, ValidID(ok+"x"))
}

func TestParseEventName(t *testing.T) {
	en, err := ParseEventName("projects/proj-a/locations/global/events/evt-123")
	require.NoError(t, err)
	assert.False(t, en.Organization)
	assert.Equal(t, "proj-a", en.Parent.ID())
	assert.Equal(t, "projects/proj-a/locations/global/events/evt-123", en.String())

	en, err = ParseEventName("organizations/42/locations/us-central1/organizationEvents/abc")
	require.NoError(t, err)
	assert.True(t, en.Organization)
	assert.Equal(t, "us-central1", en.Location)

	bad := []string{
		"evt-123",
		"projects/proj-a/locations/global/organizationEvents/x",
		"organizations/42/locations/global/events/x",
		"projects/proj-a/locations/../events/x",
		"projects/proj-a/zones/global/events/x",
		"projects/proj-a/locations/global/events/x;y",
	}
	for _, name := range bad {
		_, err := ParseEventName(name)
		assert.Error(t, err, name)
	}
}

func TestAssetType(t *testing.T) {
	assert.True(t, ValidAssetType("compute.googleapis.com/Instance"))
	assert.True(t, ValidAssetType("storage.googleapis.com/Bucket"))
	assert.False(t, ValidAssetType("compute.googleapis.com/"))
	assert.False(t, ValidAssetType("Instance"))
	assert.False(t, ValidAssetType("compute.example.com/Instance"))
}

func TestValidatorTags(t *testing.T) {
	v := NewValidator()

	type input struct {
		Project  string   `validate:"required,gcp_id"`
		Scope    string   `validate:"omitempty,gcp_scope"`
		Location string   `validate:"omitempty,gcp_location"`
		Types    []string `validate:"dive,gcp_asset_type"`
		Event    string   `validate:"omitempty,gcp_event"`
	}

	assert.NoError(t, v.Struct(input{
		Project:  "proj-a",
		Scope:    "organizations/1",
		Location: "europe-west1",
		Types:    []string{"compute.googleapis.com/Instance"},
		Event:    "projects/proj-a/locations/global/events/e1",
	}))
	assert.Error(t, v.Struct(input{Project: "../etc"}))
	assert.Error(t, v.Struct(input{Project: "ok", Scope: "projects/../x"}))
	assert.Error(t, v.Struct(input{Project: "ok", Types: []string{"bad"}}))
}
