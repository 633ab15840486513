package main

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/diewo77/go-schools/internal/ledger"
	"github.com/diewo77/go-schools/internal/models"
	"github.com/diewo77/go-schools/internal/money"
	"github.com/diewo77/go-schools/internal/notify"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type arrearsSource interface {
	Arrears(ctx context.Context) ([]ledger.ArrearsRow, error)
}

type studentDirectory interface {
	Students(ctx context.Context, ids []uint) (map[uint]models.Student, error)
}

type sender interface {
	Send(ctx context.Context, msg notify.Message) (notify.Outcome, error)
}

// reminderJob sends one arrears reminder per overdue invoice and channel.
type reminderJob struct {
	arrears  arrearsSource
	students studentDirectory
	sender   sender
	sms      bool
	limit    int
	log      *zap.Logger
}

// Run sends reminders for every overdue row. Delivery failures are logged and
// counted; they do not stop the run.
func (j *reminderJob) Run(ctx context.Context) (sent, failed int, err error) {
	rows, err := j.arrears.Arrears(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("load arrears: %w", err)
	}

	ids := make([]uint, 0, len(rows))
	seen := make(map[uint]bool)
	for _, row := range rows {
		if row.DaysOverdue > 0 && !seen[row.StudentID] {
			seen[row.StudentID] = true
			ids = append(ids, row.StudentID)
		}
	}
	if len(ids) == 0 {
		return 0, 0, nil
	}
	students, err := j.students.Students(ctx, ids)
	if err != nil {
		return 0, 0, fmt.Errorf("load students: %w", err)
	}

	var okCount, failCount atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	if j.limit > 0 {
		g.SetLimit(j.limit)
	}
	for _, row := range rows {
		if row.DaysOverdue <= 0 {
			continue
		}
		student, ok := students[row.StudentID]
		if !ok {
			j.log.Warn("arrears row for missing student", zap.Uint("student_id", row.StudentID))
			continue
		}
		for _, msg := range reminderMessages(row, student, j.sms) {
			g.Go(func() error {
				if _, err := j.sender.Send(gctx, msg); err != nil {
					failCount.Add(1)
					j.log.Warn("reminder not delivered",
						zap.String("invoice", row.Number),
						zap.String("channel", string(msg.Channel)),
						zap.Error(err))
					return nil
				}
				okCount.Add(1)
				return nil
			})
		}
	}
	_ = g.Wait()
	return int(okCount.Load()), int(failCount.Load()), ctx.Err()
}

// reminderMessages builds an email to the student when they have an address
// and an SMS to the guardian when enabled.
func reminderMessages(row ledger.ArrearsRow, student models.Student, sms bool) []notify.Message {
	owing := owingText(row.Summary.Balance)
	var msgs []notify.Message
	if student.Email != "" {
		msgs = append(msgs, notify.Message{
			Channel:       notify.ChannelEmail,
			Recipient:     student.Email,
			RecipientName: student.FullName(),
			Subject:       fmt.Sprintf("Fee reminder: invoice %s", row.Number),
			Body: fmt.Sprintf("Dear %s,\n\nYour invoice %s (%s) was due on %s and is %d day(s) overdue. Outstanding: %s.\nPlease ask your guardian to settle it at the school office.\n",
				student.FullName(), row.Number, row.FeeType, row.DueDate.Format("2006-01-02"), row.DaysOverdue, owing),
		})
	}
	if sms && student.GuardianPhone != "" {
		msgs = append(msgs, notify.Message{
			Channel:       notify.ChannelSMS,
			Recipient:     student.GuardianPhone,
			RecipientName: student.FullName(),
			Body:          fmt.Sprintf("%s: invoice %s overdue %dd, owing %s", student.FullName(), row.Number, row.DaysOverdue, owing),
		})
	}
	return msgs
}

func owingText(balance money.Amounts) string {
	var parts []string
	for _, c := range money.Currencies {
		if v := balance.Get(c); v.IsPositive() {
			parts = append(parts, string(c)+" "+v.StringFixed(2))
		}
	}
	return strings.Join(parts, " + ")
}
