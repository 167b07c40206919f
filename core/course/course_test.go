package course

import (
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/openlearn/lms-api/config"
	"github.com/openlearn/lms-api/media"
	"github.com/sirupsen/logrus"
)

func TestBuildLectureSourceValidation(t *testing.T) {
	log := logrus.New()
	up := config.Upload{Dir: t.TempDir()}

	build := func(form url.Values) (Lecture, error) {
		r := httptest.NewRequest("POST", "/courses/x", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return buildLecture(context.Background(), r, nil, up, log, "lec-1")
	}

	t.Run("url source", func(t *testing.T) {
		l, err := build(url.Values{
			"title":       {"Intro"},
			"description": {"Overview"},
			"duration":    {"9m"},
			"videoUrl":    {"https://videos.example.com/a.mp4"},
		})
		if err != nil {
			t.Fatalf("building url lecture: %v", err)
		}

		want := Lecture{
			ID:          "lec-1",
			Title:       "Intro",
			Description: "Overview",
			Duration:    "9m",
			Video:       media.Asset{SecureURL: "https://videos.example.com/a.mp4"},
		}
		if diff := cmp.Diff(want, l); diff != "" {
			t.Fatalf("lecture mismatch (-want +got):\n%s", diff)
		}
		if l.Video.Hosted() {
			t.Fatal("external lecture reports itself as hosted")
		}
	})

	t.Run("no source", func(t *testing.T) {
		_, err := build(url.Values{
			"title":       {"Intro"},
			"description": {"Overview"},
		})
		if err == nil {
			t.Fatal("lecture with no source accepted")
		}
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := build(url.Values{
			"description": {"Overview"},
			"videoUrl":    {"https://videos.example.com/a.mp4"},
		})
		if err == nil {
			t.Fatal("lecture without title accepted")
		}
	})

	t.Run("malformed url", func(t *testing.T) {
		_, err := build(url.Values{
			"title":       {"Intro"},
			"description": {"Overview"},
			"videoUrl":    {"not-a-url"},
		})
		if err == nil {
			t.Fatal("lecture with malformed url accepted")
		}
	})
}

func TestFindLecture(t *testing.T) {
	ls := Lectures{
		{ID: "a"}, {ID: "b"}, {ID: "c"},
	}

	if got := findLecture(ls, "b"); got != 1 {
		t.Fatalf("findLecture(b) = %d, want 1", got)
	}
	if got := findLecture(ls, "z"); got != -1 {
		t.Fatalf("findLecture(z) = %d, want -1", got)
	}
	if got := findLecture(nil, "a"); got != -1 {
		t.Fatalf("findLecture on empty = %d, want -1", got)
	}
}

func TestLecturesScanValue(t *testing.T) {
	in := Lectures{{
		ID:          "lec-1",
		Title:       "Intro",
		Description: "Overview",
		Video:       media.Asset{PublicID: "folder/v1", SecureURL: "https://host/v1"},
	}}

	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out Lectures
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan: %v", err)
	}

	if diff := cmp.Diff(in, out); diff != "" {
		t.Fatalf("lectures round trip mismatch (-in +out):\n%s", diff)
	}

	var empty Lectures
	if err := empty.Scan(nil); err != nil {
		t.Fatalf("scanning NULL: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("NULL column should scan to an empty sequence, got %#v", empty)
	}
}
