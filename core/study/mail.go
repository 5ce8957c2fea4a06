package study

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/filmsfather/CampusWoodieVer2/core"
	"github.com/filmsfather/CampusWoodieVer2/core/srs"
	"github.com/filmsfather/CampusWoodieVer2/core/workbook"
)

const (
	taskCompletedTemplate  = "task_completed"
	reviewReminderTemplate = "review_reminder"
)

type TaskCompletedData struct {
	TeacherName   string
	StudentName   string
	WorkbookTitle string
	AssignmentID  string
}

type ReviewReminderData struct {
	LearnerName string
	DueCount    int
	Workbooks   []string
}

// notifyCompletion emails the teacher who assigned the task. Failures are logged only.
func (svc *service) notifyCompletion(ctx context.Context, task Task) {
	if task.AssignedBy == "" {
		return
	}
	teacher, err := svc.usrSvc.GetByID(ctx, task.AssignedBy)
	if err != nil {
		svc.logger.Error("getting assigning teacher", errors.Wrap(err, "notifying task completion"), task)
		return
	}
	to, ok := teacher.Address()
	if !ok {
		return
	}
	learner, err := svc.usrSvc.GetByID(ctx, task.UserID)
	if err != nil {
		svc.logger.Error("getting learner", errors.Wrap(err, "notifying task completion"), task)
		return
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("%s completed %q", learner.Name, task.WorkbookTitle),
		TemplateName: taskCompletedTemplate,
		TemplateData: TaskCompletedData{
			TeacherName:   teacher.Name,
			StudentName:   learner.Name,
			WorkbookTitle: task.WorkbookTitle,
			AssignmentID:  task.AssignmentID,
		},
	})
}

type reminder struct {
	dueCount  int
	workbooks []string
}

func (svc *service) SendReviewReminders(ctx context.Context, cooldown time.Duration) (int, error) {
	now := svc.clock.Now().UTC()
	reminded, err := svc.repo.RemindedSince(ctx, now.Add(-cooldown))
	if err != nil {
		return 0, errors.Wrap(err, "listing reminded learners")
	}
	tasks, err := svc.repo.ListOpenTasks(ctx, workbook.TypeSRS)
	if err != nil {
		return 0, errors.Wrap(err, "listing open tasks")
	}

	itemsCache := make(map[string][]workbook.Item)
	reminders := make(map[string]*reminder)
	var learnerIDs []string

	for _, task := range tasks {
		if reminded[task.UserID] {
			continue
		}
		items, ok := itemsCache[task.WorkbookID]
		if !ok {
			if items, err = svc.wbSvc.Items(ctx, task.WorkbookID); err != nil {
				return 0, errors.Wrap(err, "listing items")
			}
			itemsCache[task.WorkbookID] = items
		}
		states, err := svc.repo.ListTaskStates(ctx, task.ID)
		if err != nil {
			return 0, errors.Wrap(err, "listing review states")
		}

		due := srs.DueCount(buildDeck(items, states), now)
		if due == 0 {
			continue
		}
		r, ok := reminders[task.UserID]
		if !ok {
			r = new(reminder)
			reminders[task.UserID] = r
			learnerIDs = append(learnerIDs, task.UserID)
		}
		r.dueCount += due
		r.workbooks = append(r.workbooks, task.WorkbookTitle)
	}

	msgs := make([]*core.EmailMessage, 0, len(learnerIDs))
	recipients := make([]string, 0, len(learnerIDs))
	for _, id := range learnerIDs {
		learner, err := svc.usrSvc.GetByID(ctx, id)
		if err != nil {
			return 0, errors.Wrap(err, "getting learner")
		}
		to, ok := learner.Address()
		if !ok {
			continue
		}
		r := reminders[id]
		recipients = append(recipients, id)
		msgs = append(msgs, &core.EmailMessage{
			To:           []mail.Address{to},
			Subject:      fmt.Sprintf("%d question(s) ready for review", r.dueCount),
			TemplateName: reviewReminderTemplate,
			TemplateData: ReviewReminderData{LearnerName: learner.Name, DueCount: r.dueCount, Workbooks: r.workbooks},
		})
	}
	if len(msgs) == 0 {
		return 0, nil
	}
	// recorded before sending: a failed send is not retried until the cooldown ends
	if err = svc.repo.MarkReminded(ctx, recipients, now); err != nil {
		return 0, errors.Wrap(err, "recording reminders")
	}
	svc.mailSvc.SendMessages(msgs...)
	return len(msgs), nil
}
