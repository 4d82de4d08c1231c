package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		MacroRegion: "МСК",
		Industry:    "Банки",
		Theme:       "Q1 margin shift",
		Description: "...",
	}
}

func TestDraftValidate(t *testing.T) {
	require.NoError(t, validDraft().Validate())

	d := validDraft()
	d.MacroRegion = "Луна"
	var verr *ValidationError
	require.True(t, errors.As(d.Validate(), &verr))
	require.Equal(t, "macro_region", verr.Field)

	d = validDraft()
	d.Industry = ""
	require.True(t, errors.As(d.Validate(), &verr))
	require.Equal(t, "industry", verr.Field)
	require.Equal(t, "required", verr.Reason)

	d = validDraft()
	d.Theme = strings.Repeat("я", MaxThemeLength+1)
	require.True(t, errors.As(d.Validate(), &verr))
	require.Equal(t, "theme", verr.Field)
}

func TestValidateThemeCountsCharacters(t *testing.T) {
	require.NoError(t, ValidateTheme(strings.Repeat("ж", MaxThemeLength)))
	require.Error(t, ValidateTheme(strings.Repeat("a", MaxThemeLength+1)))
	require.Error(t, ValidateTheme("   "))
}

func TestDraftInsightAndAttachment(t *testing.T) {
	ref, name := "file-1", "report.pdf"
	d := validDraft()
	d.AttachmentRef = &ref
	d.AttachmentFilename = &name

	in := d.Insight(42)
	require.Equal(t, int64(42), in.OwnerID)
	require.Equal(t, "Q1 margin shift", in.Theme)
	require.True(t, in.HasAttachment())
	require.False(t, in.IsPhoto())

	in.AttachmentFilename = nil
	require.True(t, in.IsPhoto())
	require.False(t, validDraft().Insight(1).HasAttachment())
}

func TestIndexes(t *testing.T) {
	require.Equal(t, 0, RegionIndex("МСК"))
	require.Equal(t, 7, RegionIndex("СНГ"))
	require.Equal(t, -1, RegionIndex("msk"))
	require.Equal(t, 5, IndustryIndex("Энергетика"))
	require.Len(t, Regions, 8)
	require.Len(t, Industries, 6)
}

func TestStoreErrorUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := error(&StoreError{Op: "save", Err: cause})
	require.ErrorIs(t, err, cause)
	require.Equal(t, "store save: connection reset", err.Error())
}
