package push

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// TelegramSender delivers notifications through the Telegram bot API.
type TelegramSender struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

func NewTelegramSender(token, chatID string) *TelegramSender {
	return &TelegramSender{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org/bot" + token,
		client:  http.DefaultClient,
	}
}

func (t *TelegramSender) Send(ctx context.Context, title string, opts Options) error {
	endpoint := t.baseURL + "/sendMessage"

	params := url.Values{}
	params.Add("chat_id", t.chatID)
	params.Add("text", title+"\n"+opts.Body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API error: %s", resp.Status)
	}

	return nil
}
