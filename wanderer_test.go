package wanderer_test

import (
	"errors"
	"testing"

	"github.com/SirWilliamIII/wanderer"
	"github.com/stretchr/testify/assert"
)

func TestErrorf(t *testing.T) {
	t.Parallel()

	err := wanderer.Errorf(wanderer.ENOTFOUND, "document %q not found", "test")

	assert.Equal(t, wanderer.ENOTFOUND, wanderer.ErrorCode(err))
	assert.Equal(t, "document \"test\" not found", wanderer.ErrorMessage(err))
}

func TestErrorCode_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, wanderer.ErrorCode(nil))
}

func TestErrorCode_NonApplicationError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, wanderer.EINTERNAL, wanderer.ErrorCode(errors.New("boom")))
}

func TestErrorMessage_NilError(t *testing.T) {
	t.Parallel()

	assert.Empty(t, wanderer.ErrorMessage(nil))
}

func TestDocument_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		doc      wanderer.Document
		wantCode string
	}{
		{
			name: "valid success document",
			doc: wanderer.Document{
				URL:    "https://example.com",
				Mode:   wanderer.ModeWander,
				Status: wanderer.StatusSuccess,
			},
		},
		{
			name:     "missing URL",
			doc:      wanderer.Document{Mode: wanderer.ModeStrict, Status: wanderer.StatusFailed},
			wantCode: wanderer.EINVALID,
		},
		{
			name:     "missing mode",
			doc:      wanderer.Document{URL: "https://example.com", Status: wanderer.StatusSuccess},
			wantCode: wanderer.EINVALID,
		},
		{
			name:     "bogus status",
			doc:      wanderer.Document{URL: "https://example.com", Mode: wanderer.ModeWander, Status: "pending"},
			wantCode: wanderer.EINVALID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.doc.Validate()
			if tt.wantCode == "" {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, tt.wantCode, wanderer.ErrorCode(err))
			}
		})
	}
}

func TestRequest_Child_increments_depth(t *testing.T) {
	t.Parallel()

	parent := wanderer.Request{URL: "https://example.com", Depth: 2}
	child := parent.Child("https://example.com/about")

	assert.Equal(t, 3, child.Depth)
	assert.Equal(t, "https://example.com", child.ParentURL)
	assert.Equal(t, "https://example.com/about", child.URL)
	assert.False(t, child.DiscoveredAt.IsZero())
}
