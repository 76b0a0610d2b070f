package app

import (
	"log/slog"

	"gradeaudit/internal/audit"
	"gradeaudit/internal/canvas"
	"gradeaudit/internal/config"
)

// NewRunner wires the upstream client, processor and batch runner from cfg.
func NewRunner(cfg *config.Config, log *slog.Logger) (*audit.Runner, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	client := canvas.NewClient(cfg.Canvas.BaseURL, cfg.Canvas.Token, cfg.Canvas.PerPage, cfg.Canvas.Timeout)

	scorePolicy := audit.ScoreNoScore
	if cfg.Audit.ScorePolicy == config.ScorePolicyZero {
		scorePolicy = audit.ScoreZero
	}
	nowPolicy := audit.NowFrozen
	if cfg.Audit.NowPolicy == config.NowPolicyPerAssignment {
		nowPolicy = audit.NowPerAssignment
	}

	proc := audit.NewProcessor(client, audit.Settings{
		Location:    loc,
		GracePeriod: cfg.Audit.GracePeriod,
		ScorePolicy: scorePolicy,
		Roles: audit.RoleNames{
			Teacher:  cfg.Audit.Roles.Teacher,
			Tutor:    cfg.Audit.Roles.Tutor,
			Director: cfg.Audit.Roles.Director,
		},
	}, log)

	return audit.NewRunner(proc,
		audit.WithWorkers(cfg.Audit.Workers),
		audit.WithNowPolicy(nowPolicy),
		audit.WithLogger(log),
	), nil
}
