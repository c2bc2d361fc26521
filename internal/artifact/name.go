package artifact

import (
	"regexp"
	"strings"

	"stagehand/internal/textutil"
)

var (
	datePrefixPattern = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})_`)
	dayPattern        = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// Name is what a stage artifact's filename says about the video it belongs to.
type Name struct {
	Kind Kind
	// Date is the publish day carried as a filename prefix, if any.
	Date string
	// Title is the filesystem title: suffix and date prefix removed, then
	// normalized with textutil.NormalizeTitle.
	Title string
}

// Parse recovers the filesystem title from a stage artifact filename.
func (s Suffixes) Parse(base string) (Name, bool) {
	kind, ok := s.Classify(base)
	if !ok {
		return Name{}, false
	}
	return ParseStem(kind, strings.TrimSuffix(base, s.Of(kind))), true
}

// ParseStem splits a suffix-free filename into date prefix and title.
func ParseStem(kind Kind, stem string) Name {
	name := Name{Kind: kind}
	if m := datePrefixPattern.FindStringSubmatch(stem); m != nil {
		name.Date = m[1]
		stem = stem[len(m[0]):]
	}
	name.Title = textutil.NormalizeTitle(stem)
	return name
}

// DirName returns the canonical ArtifactDirectory name for a video.
func DirName(date, title string) string {
	return date + "_" + title
}

// ParseDirName splits an ArtifactDirectory name into publish day and title.
func ParseDirName(name string) (date, title string, ok bool) {
	m := datePrefixPattern.FindStringSubmatch(name)
	if m == nil {
		return "", "", false
	}
	return m[1], name[len(m[0]):], true
}

// IsArtifactDir reports whether a directory name has the canonical shape.
func IsArtifactDir(name string) bool {
	_, title, ok := ParseDirName(name)
	return ok && strings.TrimSpace(title) != ""
}

// PublishedDay reduces a catalog publish timestamp to its YYYY-MM-DD day.
// Timestamps such as "2023-01-02T10:00:00Z" keep their first ten characters
// once ':' and '.' have been turned into '-'.
func PublishedDay(raw string) (string, bool) {
	value := strings.TrimSpace(raw)
	value = strings.NewReplacer(":", "-", ".", "-").Replace(value)
	if len(value) < len("2006-01-02") {
		return "", false
	}
	day := value[:len("2006-01-02")]
	if !dayPattern.MatchString(day) {
		return "", false
	}
	return day, true
}
