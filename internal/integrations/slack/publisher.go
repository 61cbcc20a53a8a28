// Package slackbot uploads generated reports to a Slack channel.
package slackbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

var ErrNotConfigured = errors.New("slack publishing is not configured")

type uploader interface {
	UploadFileV2Context(ctx context.Context, params slack.UploadFileV2Parameters) (*slack.FileSummary, error)
}

type Publisher struct {
	api       uploader
	channelID string
	logger    *zap.Logger
}

// NewPublisher returns nil when token or channel is empty. A nil
// *Publisher reports ErrNotConfigured from Publish.
func NewPublisher(token, channelID string, client *http.Client, logger *zap.Logger) *Publisher {
	if token == "" || channelID == "" {
		return nil
	}
	opts := []slack.Option{}
	if client != nil {
		opts = append(opts, slack.OptionHTTPClient(client))
	}
	return newPublisher(slack.New(token, opts...), channelID, logger)
}

func newPublisher(api uploader, channelID string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{api: api, channelID: channelID, logger: logger}
}

func (p *Publisher) Enabled() bool {
	return p != nil
}

// Publish uploads the file at path to the report channel.
func (p *Publisher) Publish(ctx context.Context, path, title, comment string) error {
	if p == nil {
		return ErrNotConfigured
	}
	fi, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat report file: %w", err)
	}
	if fi.Size() <= 0 {
		return fmt.Errorf("report file is empty: %s", path)
	}

	file, err := p.api.UploadFileV2Context(ctx, slack.UploadFileV2Parameters{
		File:           path,
		FileSize:       int(fi.Size()),
		Filename:       filepath.Base(path),
		Channel:        p.channelID,
		Title:          title,
		InitialComment: comment,
	})
	if err != nil {
		return fmt.Errorf("upload report file: %w", err)
	}
	p.logger.Info("report uploaded to slack",
		zap.String("file", filepath.Base(path)),
		zap.String("channel", p.channelID),
		zap.String("file_id", file.ID),
	)
	return nil
}
