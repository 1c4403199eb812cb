package sns

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/cronch-app/notify/internal/config"
)

// MobileSender publishes push payloads to SNS platform-application endpoints
// (mobile devices registered by the companion app).
type MobileSender interface {
	Publish(ctx context.Context, targetArn string, payload string) error
}

type sender struct {
	client *sns.Client
}

func NewSender(cfg *config.Config) (MobileSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.SNSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &sender{client: sns.NewFromConfig(awsCfg)}, nil
}

func (s *sender) Publish(ctx context.Context, targetArn string, payload string) error {
	_, err := s.client.Publish(ctx, &sns.PublishInput{
		TargetArn: &targetArn,
		Message:   &payload,
	})
	return err
}
