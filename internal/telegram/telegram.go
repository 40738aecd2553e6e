package telegram

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	tele "gopkg.in/telebot.v3"
)

type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Notifier posts event notifications into one Telegram chat.
type Notifier struct {
	log  *logrus.Entry
	bot  Sender
	chat *tele.Chat
}

func NewNotifier(log *logrus.Logger, bot Sender, chatID int64) *Notifier {
	return &Notifier{
		log:  log.WithField("component", "telegram"),
		bot:  bot,
		chat: &tele.Chat{ID: chatID},
	}
}

func NewBot(token string) (*tele.Bot, error) {
	config := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(config)
	if err != nil {
		return nil, fmt.Errorf("new bot faild: %w", err)
	}
	return b, nil
}

func (n *Notifier) Notify(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := n.bot.Send(n.chat, msg); err != nil {
		return fmt.Errorf("tg send message faild: %w", err)
	}
	n.log.Debugf("sent to chat %d: %s", n.chat.ID, msg)
	return nil
}
