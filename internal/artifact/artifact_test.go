package artifact_test

import (
	"testing"

	"stagehand/internal/artifact"
)

func TestClassifyDefaultSuffixes(t *testing.T) {
	s := artifact.DefaultSuffixes()
	tests := []struct {
		name   string
		want   artifact.Kind
		wantOK bool
	}{
		{"Episode One.mp3", artifact.Audio, true},
		{"2023-01-02_Episode One_diarized_content.json", artifact.Diarization, true},
		{"2023-01-02_Episode One_diarized_content_processed_diarized.txt", artifact.Transcript, true},
		{"notes.txt", 0, false},
		{"2023-01-02_Episode One_content_processed_diarized.txt", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.Classify(tt.name)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%q) ok = %v, want %v", tt.name, ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Fatalf("Classify(%q) = %s, want %s", tt.name, got, tt.want)
			}
		})
	}
}

func TestClassifyPrefersLongestSuffix(t *testing.T) {
	s := artifact.Suffixes{Audio: ".txt", Diarization: ".json", Transcript: "_processed.txt"}
	got, ok := s.Classify("talk_processed.txt")
	if !ok || got != artifact.Transcript {
		t.Fatalf("Classify = %s/%v, want transcript", got, ok)
	}
}

func TestRecognizedIncludesLegacy(t *testing.T) {
	s := artifact.DefaultSuffixes()
	if !s.Recognized("Talk_content_processed_diarized.txt") {
		t.Fatal("expected legacy transcript suffix to be recognized")
	}
	if s.Recognized("Talk.wav") {
		t.Fatal("unexpected recognition of .wav")
	}
}

func TestSuffixesValidate(t *testing.T) {
	if err := artifact.DefaultSuffixes().Validate(); err != nil {
		t.Fatalf("default suffixes invalid: %v", err)
	}
	dup := artifact.Suffixes{Audio: ".mp3", Diarization: ".mp3", Transcript: ".txt"}
	if err := dup.Validate(); err == nil {
		t.Fatal("expected duplicate suffix error")
	}
	empty := artifact.Suffixes{Audio: ".mp3", Diarization: " ", Transcript: ".txt"}
	if err := empty.Validate(); err == nil {
		t.Fatal("expected empty suffix error")
	}
}

func TestParse(t *testing.T) {
	s := artifact.DefaultSuffixes()
	tests := []struct {
		base      string
		wantKind  artifact.Kind
		wantDate  string
		wantTitle string
	}{
		{"Episode One.mp3", artifact.Audio, "", "Episode One"},
		{"2023-01-02_Episode  One.mp3", artifact.Audio, "2023-01-02", "Episode One"},
		{"2023-01-02_Episode One_diarized_content.json", artifact.Diarization, "2023-01-02", "Episode One"},
		{`2021-05-06_The "MEV" Panel_diarized_content_processed_diarized.txt`, artifact.Transcript, "2021-05-06", "The MEV Panel"},
		{"2023-1-2_Odd Date.mp3", artifact.Audio, "", "2023-1-2_Odd Date"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			name, ok := s.Parse(tt.base)
			if !ok {
				t.Fatalf("Parse(%q) not recognized", tt.base)
			}
			if name.Kind != tt.wantKind || name.Date != tt.wantDate || name.Title != tt.wantTitle {
				t.Fatalf("Parse(%q) = %+v, want kind=%s date=%q title=%q", tt.base, name, tt.wantKind, tt.wantDate, tt.wantTitle)
			}
		})
	}
	if _, ok := s.Parse("cover.jpg"); ok {
		t.Fatal("expected cover.jpg to be unrecognized")
	}
}

func TestDirNameRoundTrip(t *testing.T) {
	dir := artifact.DirName("2023-01-02", "Episode One")
	if dir != "2023-01-02_Episode One" {
		t.Fatalf("DirName = %q", dir)
	}
	date, title, ok := artifact.ParseDirName(dir)
	if !ok || date != "2023-01-02" || title != "Episode One" {
		t.Fatalf("ParseDirName(%q) = %q, %q, %v", dir, date, title, ok)
	}
	if artifact.IsArtifactDir("@channel") {
		t.Fatal("channel directory must not look like an artifact directory")
	}
	if artifact.IsArtifactDir("2023-01-02_") {
		t.Fatal("empty title must not look like an artifact directory")
	}
}

func TestPublishedDay(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"2023-01-02", "2023-01-02", true},
		{"2023-01-02T10:00:00Z", "2023-01-02", true},
		{" 2023-01-02 10:00:00.000 ", "2023-01-02", true},
		{"02/01/2023", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := artifact.PublishedDay(tt.raw)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("PublishedDay(%q) = %q, %v; want %q, %v", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestKindOrdering(t *testing.T) {
	if !(artifact.Audio.Priority() < artifact.Diarization.Priority() && artifact.Diarization.Priority() < artifact.Transcript.Priority()) {
		t.Fatal("expected audio < diarization < transcript")
	}
	if artifact.Audio.Derived() || !artifact.Transcript.Derived() || !artifact.Diarization.Derived() {
		t.Fatal("unexpected Derived flags")
	}
	for _, k := range artifact.Kinds {
		parsed, err := artifact.ParseKind(k.String())
		if err != nil || parsed != k {
			t.Fatalf("ParseKind(%q) = %v, %v", k.String(), parsed, err)
		}
	}
	if _, err := artifact.ParseKind("video"); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}
