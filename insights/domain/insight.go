// Package domain holds the Insight record, its classification axes and
// the errors shared by the store and the conversation engine.
package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxThemeLength bounds Insight.Theme in characters.
const MaxThemeLength = 255

// Regions lists macro-region codes in display order.
var Regions = []string{"МСК", "ЦФО", "СЗФО", "УФО", "ЮФО", "ПФО", "СДФО", "СНГ"}

// Industries lists industry names in display order.
var Industries = []string{"Оборона", "Промышленность", "Торговля", "Банки", "Нефть и газ", "Энергетика"}

// Insight is a persisted user-submitted record.
type Insight struct {
	ID                 int64     `db:"id" json:"id"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	Theme              string    `db:"theme" json:"theme"`
	Description        string    `db:"description" json:"description"`
	MacroRegion        string    `db:"macro_region" json:"macro_region"`
	Industry           string    `db:"industry" json:"industry"`
	AttachmentRef      *string   `db:"file_id" json:"file_id,omitempty"`
	AttachmentFilename *string   `db:"filename" json:"filename,omitempty"`
	OwnerID            int64     `db:"user_id" json:"user_id"`
}

// HasAttachment reports whether the record carries a file or photo.
func (i Insight) HasAttachment() bool {
	return i.AttachmentRef != nil && *i.AttachmentRef != ""
}

// IsPhoto reports whether the attachment was sent as a photo.
// Photos are stored without a filename.
func (i Insight) IsPhoto() bool {
	return i.HasAttachment() && (i.AttachmentFilename == nil || *i.AttachmentFilename == "")
}

// Draft is an Insight under construction before the store assigns id and time.
type Draft struct {
	MacroRegion        string  `json:"macro_region,omitempty" validate:"required,region"`
	Industry           string  `json:"industry,omitempty" validate:"required,industry"`
	Theme              string  `json:"theme,omitempty" validate:"required,theme"`
	Description        string  `json:"description,omitempty" validate:"required"`
	AttachmentRef      *string `json:"file_id,omitempty"`
	AttachmentFilename *string `json:"filename,omitempty"`
}

// Insight converts a complete draft into a record owned by ownerID.
func (d Draft) Insight(ownerID int64) Insight {
	return Insight{
		Theme:              d.Theme,
		Description:        d.Description,
		MacroRegion:        d.MacroRegion,
		Industry:           d.Industry,
		AttachmentRef:      d.AttachmentRef,
		AttachmentFilename: d.AttachmentFilename,
		OwnerID:            ownerID,
	}
}

// RegionIndex returns the position of code in Regions or -1.
func RegionIndex(code string) int { return indexOf(Regions, code) }

// IndustryIndex returns the position of name in Industries or -1.
func IndustryIndex(name string) int { return indexOf(Industries, name) }

func indexOf(list []string, v string) int {
	for i, item := range list {
		if item == v {
			return i
		}
	}
	return -1
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return RegionIndex(fl.Field().String()) >= 0
	})
	_ = v.RegisterValidation("industry", func(fl validator.FieldLevel) bool {
		return IndustryIndex(fl.Field().String()) >= 0
	})
	_ = v.RegisterValidation("theme", func(fl validator.FieldLevel) bool {
		return ThemeFits(fl.Field().String())
	})
	return v
}

// ThemeFits reports whether a theme is within MaxThemeLength characters.
func ThemeFits(theme string) bool {
	return utf8.RuneCountInString(theme) <= MaxThemeLength
}

// ValidateTheme checks a single theme value.
func ValidateTheme(theme string) error {
	if strings.TrimSpace(theme) == "" {
		return &ValidationError{Field: "theme", Reason: "required"}
	}
	if !ThemeFits(theme) {
		return &ValidationError{Field: "theme", Reason: "too_long"}
	}
	return nil
}

// Validate checks that a draft is ready to be saved.
func (d Draft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &ValidationError{Field: jsonName(first.Field()), Reason: first.Tag()}
	}
	return &ValidationError{Field: "draft", Reason: err.Error()}
}

func jsonName(field string) string {
	switch field {
	case "MacroRegion":
		return "macro_region"
	case "Industry":
		return "industry"
	case "Theme":
		return "theme"
	case "Description":
		return "description"
	}
	return strings.ToLower(field)
}

// Filter narrows a listing. Empty fields are unconstrained.
type Filter struct {
	MacroRegion string `json:"macro_region,omitempty"`
	Industry    string `json:"industry,omitempty"`
}
