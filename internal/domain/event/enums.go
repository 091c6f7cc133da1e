package event

// Status is the lifecycle state of an event
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusPublished Status = "PUBLISHED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusCancelled:
		return true
	}
	return false
}

// Format describes how an event is run
type Format string

const (
	FormatConference Format = "CONFERENCE"
	FormatWorkshop   Format = "WORKSHOP"
	FormatLecture    Format = "LECTURE"
	FormatFestival   Format = "FESTIVAL"
	FormatMeetup     Format = "MEETUP"
	FormatOther      Format = "OTHER"
)

// AllFormats lists formats in display order
var AllFormats = []Format{
	FormatConference,
	FormatWorkshop,
	FormatLecture,
	FormatFestival,
	FormatMeetup,
	FormatOther,
}

// IsValid reports whether f is a known format
func (f Format) IsValid() bool {
	for _, v := range AllFormats {
		if v == f {
			return true
		}
	}
	return false
}

// Theme is the subject area of an event
type Theme string

const (
	ThemeBusiness   Theme = "BUSINESS"
	ThemeTechnology Theme = "TECHNOLOGY"
	ThemeScience    Theme = "SCIENCE"
	ThemeArt        Theme = "ART"
	ThemeMusic      Theme = "MUSIC"
	ThemeSports     Theme = "SPORTS"
	ThemeEducation  Theme = "EDUCATION"
	ThemeHealth     Theme = "HEALTH"
	ThemeOther      Theme = "OTHER"
)

// AllThemes lists themes in display order
var AllThemes = []Theme{
	ThemeBusiness,
	ThemeTechnology,
	ThemeScience,
	ThemeArt,
	ThemeMusic,
	ThemeSports,
	ThemeEducation,
	ThemeHealth,
	ThemeOther,
}

// IsValid reports whether t is a known theme
func (t Theme) IsValid() bool {
	for _, v := range AllThemes {
		if v == t {
			return true
		}
	}
	return false
}
