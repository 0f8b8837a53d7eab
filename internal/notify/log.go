package notify

import "log"

// LogNotifier writes alerts to the process log. Used when no Telegram token
// is configured.
type LogNotifier struct{}

func (LogNotifier) Notify(taskID uint, title string) error {
	log.Printf("[alert] task #%d %q is due today", taskID, title)
	return nil
}
