package artifact

import (
	"fmt"
	"sort"
	"strings"
)

// Kind identifies a pipeline stage output. The set is closed: Audio,
// Diarization and Transcript.
type Kind uint8

const (
	// Audio is the raw audio capture.
	Audio Kind = iota
	// Diarization is speaker-diarized utterance data derived from audio.
	Diarization
	// Transcript is segmented transcript text derived from diarization data.
	Transcript
)

// Kinds lists every kind in pipeline order.
var Kinds = []Kind{Audio, Diarization, Transcript}

func (k Kind) String() string {
	switch k {
	case Audio:
		return "audio"
	case Diarization:
		return "diarization"
	case Transcript:
		return "transcript"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Priority orders kinds by how much work they represent. Garbage collection
// only ever removes the lowest-priority artifact of a directory.
func (k Kind) Priority() int {
	return int(k)
}

// Derived reports whether the artifact is produced from another artifact.
// Derived artifacts are never garbage collected.
func (k Kind) Derived() bool {
	return k != Audio
}

// ParseKind resolves a kind name as printed by String.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "audio":
		return Audio, nil
	case "diarization":
		return Diarization, nil
	case "transcript":
		return Transcript, nil
	default:
		return 0, fmt.Errorf("unknown artifact kind %q", name)
	}
}

// Suffixes holds the filename suffix of each kind. Legacy suffixes are
// recognized as "some stage output exists" but are never relocated.
type Suffixes struct {
	Audio       string
	Diarization string
	Transcript  string
	Legacy      []string
}

// DefaultSuffixes returns the suffixes written by the stock producers.
func DefaultSuffixes() Suffixes {
	return Suffixes{
		Audio:       ".mp3",
		Diarization: "_diarized_content.json",
		Transcript:  "_diarized_content_processed_diarized.txt",
		Legacy:      []string{"_content_processed_diarized.txt"},
	}
}

// Of returns the suffix for kind k.
func (s Suffixes) Of(k Kind) string {
	switch k {
	case Audio:
		return s.Audio
	case Diarization:
		return s.Diarization
	case Transcript:
		return s.Transcript
	default:
		return ""
	}
}

// Validate checks that every kind has a distinct, non-empty suffix.
func (s Suffixes) Validate() error {
	seen := make(map[string]Kind, len(Kinds))
	for _, k := range Kinds {
		suffix := s.Of(k)
		if strings.TrimSpace(suffix) == "" {
			return fmt.Errorf("%s suffix is empty", k)
		}
		if other, ok := seen[suffix]; ok {
			return fmt.Errorf("%s and %s share suffix %q", other, k, suffix)
		}
		seen[suffix] = k
	}
	return nil
}

// Classify returns the kind whose suffix terminates name. When suffixes
// overlap, the longest one wins.
func (s Suffixes) Classify(name string) (Kind, bool) {
	ordered := make([]Kind, len(Kinds))
	copy(ordered, Kinds)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(s.Of(ordered[i])) > len(s.Of(ordered[j]))
	})
	for _, k := range ordered {
		suffix := s.Of(k)
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return k, true
		}
	}
	return 0, false
}

// Recognized reports whether name carries any stage suffix, legacy included.
func (s Suffixes) Recognized(name string) bool {
	if _, ok := s.Classify(name); ok {
		return true
	}
	for _, suffix := range s.Legacy {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}
