package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/raventech75/suivi-clients-sub000/internal/domain/models"
	"github.com/raventech75/suivi-clients-sub000/internal/domain/rules"
	"github.com/raventech75/suivi-clients-sub000/internal/lib/logger/sl"
	"github.com/raventech75/suivi-clients-sub000/internal/repository"
	"github.com/raventech75/suivi-clients-sub000/internal/transport/http/dto"
)

var ErrForbidden = errors.New("csv export is restricted to super admins")

type StatsService struct {
	log         *slog.Logger
	repo        repository.ProjectRepository
	superAdmins []string
}

func NewStatsService(log *slog.Logger, repo repository.ProjectRepository, superAdmins []string) *StatsService {
	return &StatsService{log: log, repo: repo, superAdmins: superAdmins}
}

// Stats агрегаты по всему портфелю, включая архив.
func (s *StatsService) Stats(ctx context.Context) (*dto.StatsResponse, error) {
	const op = "stats_service.Stats"

	projects, err := s.repo.ListProjects(ctx, true)
	if err != nil {
		s.log.Error("failed to list projects", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	resp := &dto.StatsResponse{
		TotalProjects: len(projects),
		ByPhotoStatus: make(map[string]int),
		ByVideoStatus: make(map[string]int),
	}

	for _, p := range projects {
		if p.IsArchived {
			resp.ArchivedProjects++
		} else {
			resp.ActiveProjects++
		}

		if p.HasPhoto {
			resp.ByPhotoStatus[p.StatusPhoto]++
			if p.StatusPhoto == rules.StatusDelivered {
				resp.DeliveredPhoto++
			}
		}
		if p.HasVideo {
			resp.ByVideoStatus[p.StatusVideo]++
			if p.StatusVideo == rules.StatusDelivered {
				resp.DeliveredVideo++
			}
		}

		finished := rules.IsFinished(p.StatusPhoto, p.StatusVideo)
		switch rules.Classify(p.WeddingDate, now, finished) {
		case rules.UrgencyLate:
			resp.LateProjects++
		case rules.UrgencyUrgent:
			resp.UrgentProjects++
		}

		if p.TotalPrice != nil {
			resp.RevenueTotal += *p.TotalPrice
		}
		if p.DepositAmount != nil {
			resp.RevenueDeposits += *p.DepositAmount
		}
	}

	resp.RevenueOwed = resp.RevenueTotal - resp.RevenueDeposits

	return resp, nil
}

var csvHeader = []string{
	"code", "client_names", "email", "wedding_date",
	"has_photo", "status_photo", "progress_photo",
	"has_video", "status_video", "progress_video",
	"manager_name", "urgency",
	"total_price", "deposit_amount", "is_archived",
}

// ExportCSV таблица проектов для бухгалтерии и планирования.
// Доступен только супер-админам.
func (s *StatsService) ExportCSV(ctx context.Context, actor models.Actor, includeArchived bool) ([]byte, error) {
	const op = "stats_service.ExportCSV"

	if actor.IsAnonymous || !rules.IsSuperAdmin(actor.Email, s.superAdmins) {
		return nil, ErrForbidden
	}

	projects, err := s.repo.ListProjects(ctx, includeArchived)
	if err != nil {
		s.log.Error("failed to list projects", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now()
	for _, p := range projects {
		if err := w.Write(csvRow(p, now)); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("csv export generated", slog.String("op", op), slog.Int("rows", len(projects)))

	return buf.Bytes(), nil
}

func csvRow(p models.Project, now time.Time) []string {
	finished := rules.IsFinished(p.StatusPhoto, p.StatusVideo)
	urgency := rules.Classify(p.WeddingDate, now, finished)

	return []string{
		p.Code,
		p.ClientNames,
		p.Email,
		p.WeddingDate.Format("2006-01-02"),
		strconv.FormatBool(p.HasPhoto),
		p.StatusPhoto,
		strconv.Itoa(p.ProgressPhoto),
		strconv.FormatBool(p.HasVideo),
		p.StatusVideo,
		strconv.Itoa(p.ProgressVideo),
		p.ManagerName,
		string(urgency),
		formatMoney(p.TotalPrice),
		formatMoney(p.DepositAmount),
		strconv.FormatBool(p.IsArchived),
	}
}

func formatMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}
