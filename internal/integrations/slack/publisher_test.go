package slackbot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

type fakeUploader struct {
	params []slack.UploadFileV2Parameters
	err    error
}

func (f *fakeUploader) UploadFileV2Context(_ context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error) {
	f.params = append(f.params, params)
	if f.err != nil {
		return nil, f.err
	}
	return &slack.FileSummary{ID: "F123", Title: params.Title}, nil
}

func writeReport(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "incident_report_20240101.md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write report: %v", err)
	}
	return path
}

func TestNewPublisherDisabledWithoutToken(t *testing.T) {
	if p := NewPublisher("", "C1", nil, zap.NewNop()); p.Enabled() {
		t.Fatalf("expected disabled publisher without token")
	}
	if p := NewPublisher("xoxb-test", "", nil, zap.NewNop()); p.Enabled() {
		t.Fatalf("expected disabled publisher without channel")
	}

	var p *Publisher
	if err := p.Publish(context.Background(), "x.md", "t", "c"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestPublishUploadsFile(t *testing.T) {
	api := &fakeUploader{}
	p := newPublisher(api, "C42", zap.NewNop())
	path := writeReport(t, "# Informe\n")

	if err := p.Publish(context.Background(), path, "Informe", "Top 10"); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if len(api.params) != 1 {
		t.Fatalf("expected one upload, got %d", len(api.params))
	}
	got := api.params[0]
	if got.Channel != "C42" || got.Filename != "incident_report_20240101.md" || got.FileSize != 10 {
		t.Fatalf("unexpected upload params: %+v", got)
	}
	if got.Title != "Informe" || got.InitialComment != "Top 10" {
		t.Fatalf("unexpected title/comment: %+v", got)
	}
}

func TestPublishRejectsEmptyFile(t *testing.T) {
	api := &fakeUploader{}
	p := newPublisher(api, "C42", nil)

	if err := p.Publish(context.Background(), writeReport(t, ""), "t", "c"); err == nil {
		t.Fatalf("expected error for empty file")
	}
	if len(api.params) != 0 {
		t.Fatalf("empty file must not be uploaded")
	}
}

func TestPublishWrapsUploadError(t *testing.T) {
	boom := errors.New("not_in_channel")
	p := newPublisher(&fakeUploader{err: boom}, "C42", nil)

	err := p.Publish(context.Background(), writeReport(t, "x"), "t", "c")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped upload error, got %v", err)
	}
}
