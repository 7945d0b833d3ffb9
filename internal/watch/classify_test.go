package watch

import (
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	root := t.TempDir()
	dirs := Dirs{
		Content:    filepath.Join(root, "content"),
		Templates:  filepath.Join(root, "templates"),
		ConfigFile: filepath.Join(root, "config.yaml"),
	}
	about := filepath.Join(root, "content", "about.md")
	post := filepath.Join(root, "content", "posts", "hello.md")

	tests := []struct {
		name string
		ev   fsnotify.Event
		want Job
	}{
		{"write to page", fsnotify.Event{Name: about, Op: fsnotify.Write}, Job{Kind: KindFile, Path: about}},
		{"write to post", fsnotify.Event{Name: post, Op: fsnotify.Write}, Job{Kind: KindFile, Path: post}},
		{"create page", fsnotify.Event{Name: about, Op: fsnotify.Create}, Job{Kind: KindFull}},
		{"remove page", fsnotify.Event{Name: about, Op: fsnotify.Remove}, Job{Kind: KindFull}},
		{"rename page", fsnotify.Event{Name: about, Op: fsnotify.Rename}, Job{Kind: KindFull}},
		{"write non markdown", fsnotify.Event{Name: filepath.Join(root, "content", "notes.txt"), Op: fsnotify.Write}, Job{}},
		{"chmod only", fsnotify.Event{Name: about, Op: fsnotify.Chmod}, Job{}},
		{"template write", fsnotify.Event{Name: filepath.Join(root, "templates", "post.html"), Op: fsnotify.Write}, Job{Kind: KindFull}},
		{"site config write", fsnotify.Event{Name: dirs.ConfigFile, Op: fsnotify.Write}, Job{Kind: KindFull}},
		{"generated output", fsnotify.Event{Name: filepath.Join(root, "index.html"), Op: fsnotify.Create}, Job{}},
		{"swap file", fsnotify.Event{Name: filepath.Join(root, "content", ".about.md.swp"), Op: fsnotify.Write}, Job{}},
		{"backup file", fsnotify.Event{Name: about + "~", Op: fsnotify.Create}, Job{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.ev, dirs))
		})
	}
}
