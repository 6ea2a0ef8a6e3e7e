package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Level is the severity of a Notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a dismissable, toast-style message about a store action.
type Notification struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	UserID  uuid.UUID `json:"-"`
	At      time.Time `json:"at"`
}

// Notifier receives store notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	Log logrus.FieldLogger
}

func (l LogNotifier) Notify(n Notification) {
	entry := l.Log.WithFields(logrus.Fields{"user_id": n.UserID, "level": n.Level})
	if n.Level == LevelError {
		entry.Warn(n.Message)
		return
	}
	entry.Debug(n.Message)
}

// MultiNotifier fans a notification out to several notifiers.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(n Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(n)
		}
	}
}
