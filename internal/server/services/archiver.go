package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/roomchat/internal/server/config"
	"github.com/dmitrijs2005/roomchat/internal/server/models"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// TranscriptSource is the part of DocStore the archiver reads from.
type TranscriptSource interface {
	ReadRoom(ctx context.Context, roomID string) (*models.Room, error)
	Snapshot(ctx context.Context, roomID string) ([]models.Message, error)
}

type Transcript struct {
	RoomID     string              `json:"roomId"`
	ExportedAt time.Time           `json:"exportedAt"`
	Messages   []TranscriptMessage `json:"messages"`
}

type TranscriptMessage struct {
	ID        string     `json:"id"`
	Author    string     `json:"author"`
	Text      string     `json:"text"`
	ReplyTo   string     `json:"replyTo,omitempty"`
	Deleted   bool       `json:"deleted"`
	CreatedAt time.Time  `json:"createdAt"`
	EditedAt  *time.Time `json:"editedAt,omitempty"`
}

// Archiver writes room transcripts to S3-compatible storage and hands out
// presigned links to them.
type Archiver struct {
	source TranscriptSource
	config *sc.Config
	now    func() time.Time
}

func NewArchiver(source TranscriptSource, cfg *sc.Config) *Archiver {
	return &Archiver{source: source, config: cfg, now: time.Now}
}

// TranscriptKey returns a fresh object key for a transcript of roomID.
func TranscriptKey(roomID string, d time.Time) string {
	return fmt.Sprintf("rooms/%s/%d/%d/%d/%v.json", url.PathEscape(roomID), d.Year(), d.Month(), d.Day(), uuid.New())
}

func (a *Archiver) getClients(ctx context.Context) (*s3.Client, *s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(a.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			a.config.S3RootUser,
			a.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(a.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})
	return client, newS3PresignClient(client), nil
}

func (a *Archiver) transcript(ctx context.Context, roomID string) ([]byte, error) {
	if _, err := a.source.ReadRoom(ctx, roomID); err != nil {
		return nil, err
	}
	msgs, err := a.source.Snapshot(ctx, roomID)
	if err != nil {
		return nil, err
	}

	t := Transcript{RoomID: roomID, ExportedAt: a.now().UTC(), Messages: make([]TranscriptMessage, 0, len(msgs))}
	for _, m := range msgs {
		t.Messages = append(t.Messages, TranscriptMessage{
			ID:        m.ID,
			Author:    m.Author,
			Text:      m.Text,
			ReplyTo:   m.ReplyTo,
			Deleted:   m.Deleted,
			CreatedAt: m.CreatedAt,
			EditedAt:  m.EditedAt,
		})
	}
	return json.MarshalIndent(t, "", "  ")
}

// Export uploads the current transcript of roomID and returns a presigned
// GET URL valid for the configured link lifetime.
func (a *Archiver) Export(ctx context.Context, roomID string) (string, error) {
	if err := validateRoomID(roomID); err != nil {
		return "", err
	}

	body, err := a.transcript(ctx, roomID)
	if err != nil {
		return "", err
	}

	client, presignClient, err := a.getClients(ctx)
	if err != nil {
		return "", fmt.Errorf("object storage: %w", err)
	}

	bucket := a.config.S3Bucket
	key := TranscriptKey(roomID, a.now())

	if _, err := putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return "", fmt.Errorf("upload transcript: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(a.config.ArchiveLinkTTL))
	if err != nil {
		return "", fmt.Errorf("presign transcript: %w", err)
	}

	return req.URL, nil
}
