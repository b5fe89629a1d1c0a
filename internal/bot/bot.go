package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/example/examportal/internal/ui"
	"github.com/example/examportal/pkg/models"
)

// sender is the part of tgbotapi.BotAPI used for outgoing messages
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// StatsSource computes result statistics for a student
type StatsSource interface {
	GetUserStats(userID string) models.TestStats
}

// RegistrationLookup lists registrations for a test
type RegistrationLookup interface {
	GetByTestName(testName string) []models.Registration
}

// Bot delivers reminder digests to a Telegram chat and answers admin commands
// sent from that chat
type Bot struct {
	api    sender
	botAPI *tgbotapi.BotAPI
	config *BotConfig
	log    logrus.FieldLogger

	stats         StatsSource
	registrations RegistrationLookup
	remind        func() int // Forced reminder check, nil until set
}

// NewBot authorizes against the Bot API with config.Token
func NewBot(config *BotConfig, stats StatsSource, registrations RegistrationLookup, log logrus.FieldLogger) (*Bot, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable is not set")
	}
	botAPI, err := tgbotapi.NewBotAPI(config.Token)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %w", err)
	}
	b := newBot(botAPI, config, stats, registrations, log)
	b.botAPI = botAPI
	b.log.Infof("Authorized on account %s", botAPI.Self.UserName)
	return b, nil
}

func newBot(api sender, config *BotConfig, stats StatsSource, registrations RegistrationLookup, log logrus.FieldLogger) *Bot {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	return &Bot{
		api:           api,
		config:        config,
		log:           log.WithField("component", "bot"),
		stats:         stats,
		registrations: registrations,
	}
}

// OnRemind sets the check run by the /remind command. check returns how many
// registrations it sent reminders for.
func (b *Bot) OnRemind(check func() int) {
	b.remind = check
}

// Start handles incoming updates until ctx is cancelled
func (b *Bot) Start(ctx context.Context) {
	if b.botAPI == nil {
		return
	}
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.UpdateTimeout
	updates := b.botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.botAPI.StopReceivingUpdates()
			b.log.Info("Bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleMessage(update.Message)
			}
		}
	}
}

// SendReminder implements the scheduler.Notifier interface
func (b *Bot) SendReminder(testName string, registrations []models.Registration) error {
	msg := tgbotapi.NewMessage(b.config.ChatID, FormatReminder(testName, registrations, b.config.Location))
	if _, err := b.api.Send(msg); err != nil {
		b.log.WithError(err).WithField("test", testName).Error("Error sending reminder")
		return err
	}
	b.log.WithField("test", testName).Infof("Sent reminder for %d registrations", len(registrations))
	return nil
}

// FormatReminder renders the digest for one upcoming test
func FormatReminder(testName string, registrations []models.Registration, loc *time.Location) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Upcoming test: %s\n", testName)
	fmt.Fprintf(&sb, "Registered students: %d\n", len(registrations))
	for _, reg := range registrations {
		sb.WriteString("\n• ")
		sb.WriteString(displayName(reg))
		if reg.Email != "" {
			fmt.Fprintf(&sb, " <%s>", reg.Email)
		}
		if t, ok := reg.PreferredTime(); ok {
			fmt.Fprintf(&sb, ", %s", ui.FormatDate(t.Format(time.RFC3339), loc))
		}
	}
	return sb.String()
}

func displayName(reg models.Registration) string {
	if reg.StudentName != "" {
		return reg.StudentName
	}
	return reg.StudentID
}

// handleMessage answers commands from the configured chat; everything else
// is ignored
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	if message.Chat == nil || message.Chat.ID != b.config.ChatID || !message.IsCommand() {
		return
	}

	args := strings.TrimSpace(message.CommandArguments())
	var text string
	switch message.Command() {
	case "start", "help":
		text = "Commands:\n/stats <student id> - result statistics\n/registered <test name> - registrations for a test\n/remind - send due reminders now"
	case "stats":
		text = b.statsText(args)
	case "registered":
		text = b.registeredText(args)
	case "remind":
		text = b.remindText()
	default:
		text = "Unknown command. Use /help to list commands."
	}

	if _, err := b.api.Send(tgbotapi.NewMessage(message.Chat.ID, text)); err != nil {
		b.log.WithError(err).WithField("command", message.Command()).Error("Error sending reply")
	}
}

func (b *Bot) statsText(studentID string) string {
	if studentID == "" {
		return "Usage: /stats <student id>"
	}
	stats := b.stats.GetUserStats(studentID)
	if stats.TotalTests == 0 {
		return fmt.Sprintf("No results for %s.", studentID)
	}
	return fmt.Sprintf("Statistics for %s\nTests taken: %d\nAverage score: %d%%\nBest score: %g%%\nTotal time: %gs",
		studentID, stats.TotalTests, stats.AverageScore, stats.BestScore, stats.TotalTime)
}

func (b *Bot) remindText() string {
	if b.remind == nil {
		return "Reminders are not scheduled."
	}
	return fmt.Sprintf("Sent reminders for %d registrations.", b.remind())
}

func (b *Bot) registeredText(testName string) string {
	if testName == "" {
		return "Usage: /registered <test name>"
	}
	regs := b.registrations.GetByTestName(testName)
	if len(regs) == 0 {
		return fmt.Sprintf("No registrations for %s.", testName)
	}
	return FormatReminder(testName, regs, b.config.Location)
}
