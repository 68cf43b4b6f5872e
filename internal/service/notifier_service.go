package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	config "github.com/craftsites/autopost/configs"
	"github.com/craftsites/autopost/internal/models"
	"github.com/go-resty/resty/v2"
)

// NotifierService pushes the run digest to the messaging sink. Delivery is
// fire-and-forget: a failed notification never changes a run result.
type NotifierService interface {
	SendRunDigest(ctx context.Context, run *models.BatchRun) error
}

type telegramNotifier struct {
	client *resty.Client
	cfg    config.Telegram
}

func NewTelegramNotifier(cfg config.Telegram) NotifierService {
	client := resty.New().
		SetBaseURL("https://api.telegram.org").
		SetTimeout(15 * time.Second)
	return &telegramNotifier{client: client, cfg: cfg}
}

func (s *telegramNotifier) SendRunDigest(ctx context.Context, run *models.BatchRun) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"chat_id": s.cfg.ChatID,
			"text":    formatDigest(run),
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", s.cfg.BotToken))
	if err != nil {
		slog.Error(err.Error())
		return err
	}
	if resp.StatusCode() != 200 {
		err = fmt.Errorf("telegram returned status %d", resp.StatusCode())
		slog.Error(err.Error())
		return err
	}
	return nil
}

func formatDigest(run *models.BatchRun) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Fleet run %s finished in %s\n", run.RunID, run.Duration.Round(time.Second))
	fmt.Fprintf(&sb, "Tenants: %d, posted: %d, failed: %d\n", run.Total, run.Succeeded, run.Failed)
	for _, o := range run.Outcomes {
		if !o.Success {
			fmt.Fprintf(&sb, "- %s: %s\n", o.Tenant, o.Error)
		}
	}
	return sb.String()
}
