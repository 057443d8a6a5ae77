package service

import (
	"fmt"
	"time"

	"rentautopro/internal/db"
	"rentautopro/internal/repository"

	log "github.com/sirupsen/logrus"
)

// JobService holds the work run from cron: flipping unpaid invoices to
// overdue and mailing the upcoming-maintenance digest to fleet staff.
type JobService struct {
	invoices    repository.InvoiceRepository
	maintenance repository.MaintenanceRepository
	users       repository.UserRepository
	sender      *SenderService
}

func NewJobService(
	invoices repository.InvoiceRepository,
	maintenance repository.MaintenanceRepository,
	users repository.UserRepository,
	sender *SenderService,
) *JobService {
	return &JobService{invoices: invoices, maintenance: maintenance, users: users, sender: sender}
}

// MarkOverdueInvoices moves pending invoices past their due date to overdue.
func (s *JobService) MarkOverdueInvoices() error {
	n, err := s.invoices.MarkOverdue(time.Now().UTC())
	if err != nil {
		return fmt.Errorf("cron job: failed to mark overdue invoices: %w", err)
	}
	if n > 0 {
		log.Infof("cron job: marked %d invoices as overdue", n)
	}
	return nil
}

// SendMaintenanceDigest mails the list of maintenances due within the next
// 30 days to every admin and fleet manager.
func (s *JobService) SendMaintenanceDigest() error {
	now := time.Now().UTC()
	upcoming, err := s.maintenance.ListScheduled(now, 0)
	if err != nil {
		return fmt.Errorf("cron job: failed to list scheduled maintenances: %w", err)
	}
	if len(upcoming) == 0 {
		log.Info("cron job: no upcoming maintenances, skipping digest")
		return nil
	}

	users, err := s.users.List()
	if err != nil {
		return fmt.Errorf("cron job: failed to list users for digest: %w", err)
	}

	sent := 0
	for i := range users {
		if users[i].Role != db.RoleAdmin && users[i].Role != db.RoleFleetManager {
			continue
		}
		s.sender.SendMaintenanceDigest(users[i].Email, users[i].Name, upcoming)
		sent++
	}
	log.Infof("cron job: maintenance digest queued for %d recipients (%d services due)", sent, len(upcoming))
	return nil
}
