package stagegc_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"stagehand/internal/artifact"
	"stagehand/internal/events"
	"stagehand/internal/logging"
	"stagehand/internal/stagegc"
	"stagehand/internal/testsupport"
)

var shortSuffixes = artifact.Suffixes{
	Audio:       ".mp3",
	Diarization: "_diarized.json",
	Transcript:  "_processed.txt",
}

func TestAudioRemovedWhenDerivedExists(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"@chan/2023-01-02_Talk/video.mp3":           "audio",
		"@chan/2023-01-02_Talk/video_diarized.json": "{}",
	})
	var c events.Collector

	result, err := stagegc.New(shortSuffixes, logging.NewNop(), &c, false).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	testsupport.AssertMissing(t, filepath.Join(root, "@chan", "2023-01-02_Talk", "video.mp3"))
	testsupport.AssertExists(t, filepath.Join(root, "@chan", "2023-01-02_Talk", "video_diarized.json"))
	if len(result.Removed) != 1 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	evts := c.Events()
	if len(evts) != 1 || evts[0].Kind != events.Deleted || evts[0].Phase != events.PhaseGC {
		t.Fatalf("unexpected events %+v", evts)
	}
}

func TestAudioOnlyDirectoryUntouched(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{"@chan/2023-01-02_Talk/video.mp3": "audio"})
	before := testsupport.ListTree(t, root)
	var c events.Collector

	result, err := stagegc.New(shortSuffixes, logging.NewNop(), &c, false).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if after := testsupport.ListTree(t, root); !reflect.DeepEqual(before, after) {
		t.Fatalf("tree changed:\nbefore %v\nafter  %v", before, after)
	}
	if len(result.Removed) != 0 || len(c.Events()) != 0 {
		t.Fatalf("expected no-op, got %+v / %+v", result, c.Events())
	}
}

func TestDerivedArtifactsNeverRemoved(t *testing.T) {
	root := t.TempDir()
	dir := "@chan/2023-01-02_Episode One/"
	testsupport.WriteTree(t, root, map[string]string{
		dir + "2023-01-02_Episode One.mp3":                                     "audio",
		dir + "2023-01-02_Episode One_diarized_content.json":                   "{}",
		dir + "2023-01-02_Episode One_diarized_content_processed_diarized.txt": "text",
		dir + "cover.jpg":                                                      "jpg",
	})

	if _, err := stagegc.New(artifact.DefaultSuffixes(), logging.NewNop(), nil, false).Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"@chan/",
		dir,
		dir + "2023-01-02_Episode One_diarized_content.json",
		dir + "2023-01-02_Episode One_diarized_content_processed_diarized.txt",
		dir + "cover.jpg",
	}
	if got := testsupport.ListTree(t, root); !reflect.DeepEqual(got, want) {
		t.Fatalf("tree = %v\nwant  %v", got, want)
	}
}

func TestDerivedInOtherDirectoryDoesNotCount(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"@chan/2023-01-02_A/video.mp3":           "audio",
		"@chan/2023-01-02_B/video_diarized.json": "{}",
	})

	result, err := stagegc.New(shortSuffixes, logging.NewNop(), nil, false).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	testsupport.AssertExists(t, filepath.Join(root, "@chan", "2023-01-02_A", "video.mp3"))
	if len(result.Removed) != 0 {
		t.Fatalf("unexpected removal %+v", result)
	}
}

func TestLooseFilesInChannelDirectoryKept(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"@chan/Foo.mp3":                         "audio",
		"@chan/Bar_diarized_content.json":       "{}",
		"@chan/notes/Baz.mp3":                   "audio",
		"@chan/notes/Baz_diarized_content.json": "{}",
	})
	before := testsupport.ListTree(t, root)
	var c events.Collector

	result, err := stagegc.New(artifact.DefaultSuffixes(), logging.NewNop(), &c, false).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if after := testsupport.ListTree(t, root); !reflect.DeepEqual(before, after) {
		t.Fatalf("tree changed:\nbefore %v\nafter  %v", before, after)
	}
	if len(result.Removed) != 0 || len(c.Events()) != 0 {
		t.Fatalf("expected no-op, got %+v / %+v", result, c.Events())
	}
}

func TestRootLevelFilesIgnored(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"video.mp3":           "audio",
		"video_diarized.json": "{}",
	})

	if _, err := stagegc.New(shortSuffixes, logging.NewNop(), nil, false).Run(context.Background(), root); err != nil {
		t.Fatalf("Run: %v", err)
	}
	testsupport.AssertExists(t, filepath.Join(root, "video.mp3"))
}

func TestDryRunReportsWithoutDeleting(t *testing.T) {
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"@chan/2023-01-02_Talk/video.mp3":           "audio",
		"@chan/2023-01-02_Talk/video_processed.txt": "text",
	})
	var c events.Collector

	result, err := stagegc.New(shortSuffixes, logging.NewNop(), &c, true).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	testsupport.AssertExists(t, filepath.Join(root, "@chan", "2023-01-02_Talk", "video.mp3"))
	evts := c.Events()
	if len(result.Removed) != 1 || len(evts) != 1 || evts[0].Reason != "dry-run: superseded by derived artifact" {
		t.Fatalf("unexpected dry-run outcome %+v / %+v", result, evts)
	}
}

func TestRemoveFailureBecomesEvent(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission checks do not apply to root")
	}
	root := t.TempDir()
	testsupport.WriteTree(t, root, map[string]string{
		"@chan/2023-01-02_Talk/video.mp3":           "audio",
		"@chan/2023-01-02_Talk/video_diarized.json": "{}",
	})
	dir := filepath.Join(root, "@chan", "2023-01-02_Talk")
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })
	var c events.Collector

	result, err := stagegc.New(shortSuffixes, logging.NewNop(), &c, false).Run(context.Background(), root)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Errors) != 1 || c.Count(events.Failed) != 1 {
		t.Fatalf("expected one failure, got %+v / %+v", result, c.Events())
	}
}

func TestMissingRootIsFatal(t *testing.T) {
	_, err := stagegc.New(shortSuffixes, logging.NewNop(), nil, false).Run(context.Background(), filepath.Join(t.TempDir(), "absent"))
	if err == nil {
		t.Fatal("expected walk error")
	}
}
