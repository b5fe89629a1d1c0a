package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/example/examportal/internal/bot"
	"github.com/example/examportal/internal/config"
	"github.com/example/examportal/internal/database"
	"github.com/example/examportal/internal/exam"
	"github.com/example/examportal/internal/excel"
	"github.com/example/examportal/internal/scheduler"
	"github.com/example/examportal/internal/session"
	"github.com/example/examportal/internal/ui"
	"github.com/example/examportal/internal/validation"
	"github.com/example/examportal/pkg/models"
)

const usage = `Usage: examportal <command> [arguments]

Commands:
  login <studentId> <name> [email]             store the current user
  logout                                       clear the current user
  whoami                                       show the logged-in user
  register <testName> [preferredDate]          register the current user for a test
  record <testName> <score> <total> <seconds>  save a finished test for the current user
  take <questions.xlsx|questions.csv> <answers...>
                                               grade answers for the current user and save the result
  stats [studentId]                            show result statistics
  export <studentId> <file.xlsx|file.csv>      export results and registrations
  import <file.xlsx|file.csv>                  bulk-import registrations
  serve                                        run the reminder scheduler until interrupted
`

var (
	errUsage = errors.New("invalid usage")
	// errRejected means the command was refused and the user has been told why
	errRejected = errors.New("command rejected")
)

// app wires the storage, session and presentation components for one run
type app struct {
	cfg *config.Config
	log logrus.FieldLogger
	out io.Writer

	sched         *scheduler.Scheduler
	results       *database.TestResultRepository
	exams         *exam.Module
	registrations *database.RegistrationRepository
	notifier      *ui.ConsoleNotifier
	navigator     *ui.ConsoleNavigator
	loginView     *ui.LoginStateView
	sessions      *session.Manager
	validator     *validation.Validator
}

func newApp(cfg *config.Config, db *sqlx.DB, log logrus.FieldLogger, out io.Writer) *app {
	sched := scheduler.New(log)
	sched.Start()

	store := database.NewKeyValueStore(db, cfg.Namespace,
		database.WithQuota(cfg.QuotaBytes),
		database.WithLogger(log),
	)

	notifier := ui.NewConsoleNotifier(out, sched, cfg.MessageTimeout)
	navigator := ui.NewConsoleNavigator(cfg.HomePage, sched)
	loginView := ui.NewLoginStateView()

	sessions := session.NewManager(store, notifier, navigator, session.Options{
		LoginPage:     cfg.LoginPage,
		HomePage:      cfg.HomePage,
		RedirectDelay: cfg.AuthRedirectDelay,
	})
	sessions.Observe(loginView)

	results := database.NewTestResultRepository(store)
	return &app{
		cfg:           cfg,
		log:           log,
		out:           out,
		sched:         sched,
		results:       results,
		exams:         exam.NewModule(results),
		registrations: database.NewRegistrationRepository(store),
		notifier:      notifier,
		navigator:     navigator,
		loginView:     loginView,
		sessions:      sessions,
		validator:     validation.New(notifier),
	}
}

func (a *app) close() {
	a.sched.Stop()
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]

	var fn func() error
	switch cmd {
	case "login":
		fn = func() error { return a.login(args) }
	case "logout":
		fn = func() error { return a.logout(args) }
	case "whoami":
		fn = func() error { return a.whoami(args) }
	case "register":
		fn = func() error { return a.register(args) }
	case "record":
		fn = func() error { return a.record(args) }
	case "take":
		fn = func() error { return a.take(args) }
	case "stats":
		fn = func() error { return a.stats(args) }
	case "export":
		fn = func() error { return a.export(args) }
	case "import":
		fn = func() error { return a.importRegistrations(args) }
	case "serve":
		fn = func() error { return a.serve(ctx, args) }
	default:
		return errUsage
	}
	return ui.TimeFunction(a.log, cmd, fn)()
}

func (a *app) login(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errUsage
	}
	form := validation.ValuesForm(url.Values{
		"studentId":   {args[0]},
		"studentName": {args[1]},
	})
	errs := validation.ValidateRequired(form, []validation.FieldSpec{
		{ID: "studentId", Message: "Student ID is required"},
		{ID: "studentName", Message: "Name is required"},
	})

	user := models.User{ID: args[0], Name: args[1]}
	if len(args) == 3 {
		user.Email = args[2]
		if !validation.ValidateEmail(user.Email) {
			errs = append(errs, "Please enter a valid email address")
		}
	}
	if !a.validator.ShowErrors(errs) {
		return errRejected
	}

	if !a.sessions.Login(user) {
		a.notifier.ShowError("Could not save your login. Please try again.")
		return errRejected
	}
	a.notifier.ShowSuccess(fmt.Sprintf("Welcome, %s!", user.Name))
	return nil
}

func (a *app) logout(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	a.sessions.Logout()
	a.notifier.ShowSuccess("You have been logged out.")
	return nil
}

func (a *app) whoami(args []string) error {
	if len(args) != 0 {
		return errUsage
	}
	if !a.loginView.Visible() {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}
	fmt.Fprintln(a.out, a.loginView.Label())
	return nil
}

func (a *app) register(args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errUsage
	}
	if !a.sessions.RequireAuth("") {
		return errRejected
	}
	user, _ := a.sessions.CurrentUser()

	in := models.RegistrationInput{
		StudentID:   user.ID,
		StudentName: user.Name,
		Email:       user.Email,
		TestName:    args[0],
	}
	if len(args) == 2 {
		in.PreferredDate = args[1]
	}

	form := validation.ValuesForm(url.Values{"test-select": {in.TestName}})
	errs := validation.ValidateRequired(form, []validation.FieldSpec{
		{ID: "test-select", Message: "Please select a test"},
	})
	if !a.validator.ShowErrors(errs) {
		return errRejected
	}

	if a.registrations.IsRegistered(in.StudentID, in.TestName) {
		a.notifier.ShowError("You are already registered for this test.")
		return errRejected
	}
	reg, ok := a.registrations.Save(in)
	if !ok {
		a.notifier.ShowError("Registration failed. Please try again.")
		return errRejected
	}
	a.notifier.ShowSuccess(fmt.Sprintf("Registration successful! Your registration ID is %s.", reg.ID))
	return nil
}

func (a *app) record(args []string) error {
	if len(args) != 4 {
		return errUsage
	}
	if !a.sessions.RequireAuth("") {
		return errRejected
	}
	user, _ := a.sessions.CurrentUser()

	nums := make([]int, 3)
	for i, s := range args[1:] {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			a.notifier.ShowError(fmt.Sprintf("%q is not a valid number", s))
			return errRejected
		}
		nums[i] = n
	}
	score, total, seconds := nums[0], nums[1], nums[2]
	if total == 0 || score > total {
		a.notifier.ShowError("Score must be between 0 and the number of questions")
		return errRejected
	}

	result, ok := a.results.Save(models.TestResultInput{
		StudentID:      user.ID,
		StudentName:    user.Name,
		TestName:       args[0],
		Score:          score,
		TotalQuestions: total,
		Percentage:     exam.Percentage(score, total),
		TimeUsed:       float64(seconds),
	})
	if !ok {
		a.notifier.ShowError("Could not save your result. Please try again.")
		return errRejected
	}
	a.notifier.ShowSuccess(fmt.Sprintf("Result saved with ID %s.", result.ID))
	return nil
}

func (a *app) take(args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	if !a.sessions.RequireAuth("") {
		return errRejected
	}
	user, _ := a.sessions.CurrentUser()

	started := time.Now()
	test, err := excel.LoadTest(args[0])
	if err != nil {
		return err
	}
	answers := args[1:]
	if len(answers) > len(test.Questions) {
		a.notifier.ShowError(fmt.Sprintf("%s has %d questions but %d answers were given",
			test.Name, len(test.Questions), len(answers)))
		return errRejected
	}

	result, ok := a.exams.Submit(exam.Attempt{
		Test:        test,
		StudentID:   user.ID,
		StudentName: user.Name,
		Answers:     answers,
		Started:     started,
		Finished:    time.Now(),
	})
	if !ok {
		a.notifier.ShowError("Could not save your result. Please try again.")
		return errRejected
	}
	a.notifier.ShowSuccess(fmt.Sprintf("%s: %d/%d correct (%g%%). Result saved with ID %s.",
		test.Name, result.Score, result.TotalQuestions, result.Percentage, result.ID))
	return nil
}

func (a *app) stats(args []string) error {
	if len(args) > 1 {
		return errUsage
	}
	var studentID string
	if len(args) == 1 {
		studentID = args[0]
	} else {
		if !a.sessions.RequireAuth("") {
			return errRejected
		}
		user, _ := a.sessions.CurrentUser()
		studentID = user.ID
	}

	stats := a.results.GetUserStats(studentID)
	fmt.Fprintf(a.out, "Student:       %s\n", studentID)
	fmt.Fprintf(a.out, "Tests taken:   %d\n", stats.TotalTests)
	fmt.Fprintf(a.out, "Average score: %d%%\n", stats.AverageScore)
	fmt.Fprintf(a.out, "Best score:    %g%%\n", stats.BestScore)
	fmt.Fprintf(a.out, "Total time:    %gs\n", stats.TotalTime)
	return nil
}

func (a *app) export(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	studentID, path := args[0], args[1]
	report := excel.Report{
		Results:       a.results.GetByUserID(studentID),
		Registrations: a.registrations.GetByUserID(studentID),
		Stats:         a.results.GetUserStats(studentID),
	}
	if err := excel.ExportReport(path, report); err != nil {
		return err
	}
	a.notifier.ShowSuccess(fmt.Sprintf("Exported %d results and %d registrations to %s",
		len(report.Results), len(report.Registrations), path))
	return nil
}

func (a *app) importRegistrations(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	importConfig := excel.DefaultImportConfig()
	importConfig.FilePath = args[0]

	result, err := excel.ImportRegistrations(importConfig, a.registrations)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		fmt.Fprintln(a.out, msg)
	}
	a.notifier.ShowSuccess(fmt.Sprintf("Processed %d rows: %d created, %d already registered, %d errors",
		result.TotalProcessed, result.Created, result.Duplicates, len(result.Errors)))
	return nil
}

func (a *app) serve(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errUsage
	}

	var notifier scheduler.Notifier = &logNotifier{log: a.log}
	if a.cfg.TelegramToken != "" {
		botConfig := bot.DefaultConfig(a.cfg.TelegramToken, a.cfg.TelegramChatID)
		b, err := bot.NewBot(botConfig, a.results, a.registrations, a.log)
		if err != nil {
			return err
		}
		b.OnRemind(a.sched.RunManualCheck)
		notifier = b
		go b.Start(ctx)
	} else {
		a.log.Warn("TELEGRAM_BOT_TOKEN is not set, reminders are only logged")
	}

	err := a.sched.ScheduleReminders(a.registrations, notifier, scheduler.ReminderConfig{
		StartHour: a.cfg.NotificationStartHour,
		EndHour:   a.cfg.NotificationEndHour,
		Window:    a.cfg.ReminderWindow,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminders: %w", err)
	}

	a.log.Info("Reminder scheduler started. Press Ctrl+C to stop.")
	<-ctx.Done()
	a.log.Info("Shutting down")
	return nil
}

// logNotifier writes reminder digests to the log when no bot is configured
type logNotifier struct {
	log logrus.FieldLogger
}

func (n *logNotifier) SendReminder(testName string, registrations []models.Registration) error {
	n.log.WithField("test", testName).Info(bot.FormatReminder(testName, registrations, time.Local))
	return nil
}
