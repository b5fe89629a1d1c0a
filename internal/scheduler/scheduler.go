package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/examportal/pkg/models"
)

// Scheduler manages scheduled tasks for the portal: one-shot presentation
// timers and the hourly reminder check for upcoming tests
type Scheduler struct {
	scheduler *gocron.Scheduler
	log       logrus.FieldLogger

	mu       sync.Mutex
	reminder *reminderJob
}

// Notifier interface for sending reminder digests
type Notifier interface {
	SendReminder(testName string, registrations []models.Registration) error
}

// RegistrationSource lists stored registrations
type RegistrationSource interface {
	GetAll() []models.Registration
}

// ReminderConfig controls the reminder check
type ReminderConfig struct {
	StartHour int           // First hour of the day reminders may be sent
	EndHour   int           // Last hour of the day reminders may be sent
	Window    time.Duration // How far ahead a test counts as upcoming
}

// New creates a new scheduler instance
func New(log logrus.FieldLogger) *Scheduler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		log:       log,
	}
}

// Start begins running scheduled tasks in the background
func (s *Scheduler) Start() {
	s.scheduler.StartAsync()
}

// Stop terminates all scheduled tasks. Pending timers never fire.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// AfterFunc runs fn once after d. There is no handle to cancel it.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) {
	if d <= 0 {
		go fn()
		return
	}
	_, err := s.scheduler.Every(d).WaitForSchedule().LimitRunsTo(1).Do(fn)
	if err != nil {
		s.log.WithError(err).WithField("delay", d).Error("Failed to schedule timer")
	}
}

// ScheduleReminders checks every hour for registrations whose preferred date
// falls inside the reminder window and sends one digest per test
func (s *Scheduler) ScheduleReminders(source RegistrationSource, notifier Notifier, cfg ReminderConfig) error {
	job := &reminderJob{
		source:   source,
		notifier: notifier,
		cfg:      cfg,
		log:      s.log,
		now:      time.Now,
		sent:     make(map[string]bool),
	}

	s.mu.Lock()
	s.reminder = job
	s.mu.Unlock()

	_, err := s.scheduler.Every(1).Hour().Do(job.run)
	return err
}

// RunManualCheck forces a reminder check now, ignoring notification hours
func (s *Scheduler) RunManualCheck() int {
	s.mu.Lock()
	job := s.reminder
	s.mu.Unlock()
	if job == nil {
		return 0
	}
	return job.check(true)
}

type reminderJob struct {
	mu       sync.Mutex
	source   RegistrationSource
	notifier Notifier
	cfg      ReminderConfig
	log      logrus.FieldLogger
	now      func() time.Time
	sent     map[string]bool // Registration IDs already reminded
}

func (j *reminderJob) run() {
	j.check(false)
}

// check sends reminders and returns how many registrations were covered
func (j *reminderJob) check(force bool) int {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.now()
	currentHour := now.Hour()

	// Проверяем, находится ли текущий час в диапазоне времени для отправки уведомлений
	if !force && (currentHour < j.cfg.StartHour || currentHour > j.cfg.EndHour) {
		j.log.Debugf("Current hour %d is outside notification hours (%d-%d), skipping reminders",
			currentHour, j.cfg.StartHour, j.cfg.EndHour)
		return 0
	}

	upcoming := make(map[string][]models.Registration)
	for _, reg := range j.source.GetAll() {
		if j.sent[reg.ID] {
			continue
		}
		at, ok := reg.PreferredTime()
		if !ok || !at.After(now) || at.Sub(now) > j.cfg.Window {
			continue
		}
		upcoming[reg.TestName] = append(upcoming[reg.TestName], reg)
	}

	testNames := make([]string, 0, len(upcoming))
	for name := range upcoming {
		testNames = append(testNames, name)
	}
	sort.Strings(testNames)

	covered := 0
	for _, name := range testNames {
		regs := upcoming[name]
		if err := j.notifier.SendReminder(name, regs); err != nil {
			j.log.WithError(err).WithField("test", name).Error("Error sending reminder")
			continue
		}
		for _, reg := range regs {
			j.sent[reg.ID] = true
		}
		covered += len(regs)
	}
	return covered
}
