// Package postgres holds the sqlx-backed repositories. Statements are
// assembled with the querybuilder package; each repository maps its
// domain type through a private row model carrying db tags.
package postgres

import (
	"time"

	"github.com/lib/pq"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/enrichment"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/roster"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/swapintent"
	"github.com/riskibarqy/fantrax-team-manager/internal/domain/synclog"
)

type playerRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Position  string    `db:"position"`
	TeamName  string    `db:"team_name"`
	Status    string    `db:"status"`
	Locked    bool      `db:"locked"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toPlayerRow(p *player.Player) playerRow {
	return playerRow{
		ID:        p.ID,
		Name:      p.Name,
		Position:  string(p.Position),
		TeamName:  p.TeamName,
		Status:    string(p.Status),
		Locked:    p.Locked,
		UpdatedAt: p.UpdatedAt,
	}
}

func (r playerRow) toDomain() player.Player {
	return player.Player{
		ID:        r.ID,
		Name:      r.Name,
		Position:  player.Position(r.Position),
		TeamName:  r.TeamName,
		Status:    player.Status(r.Status),
		Locked:    r.Locked,
		UpdatedAt: r.UpdatedAt,
	}
}

type slotRow struct {
	TeamID    string    `db:"team_id"`
	PeriodID  int       `db:"period_id"`
	PlayerID  string    `db:"player_id"`
	Role      string    `db:"role"`
	UpdatedAt time.Time `db:"updated_at"`
}

func toSlotRow(s *roster.Slot) slotRow {
	return slotRow{
		TeamID:    s.TeamID,
		PeriodID:  s.PeriodID,
		PlayerID:  s.PlayerID,
		Role:      string(s.Role),
		UpdatedAt: s.UpdatedAt,
	}
}

func (r slotRow) toDomain() roster.Slot {
	return roster.Slot{
		TeamID:    r.TeamID,
		PeriodID:  r.PeriodID,
		PlayerID:  r.PlayerID,
		Role:      roster.Role(r.Role),
		UpdatedAt: r.UpdatedAt,
	}
}

type enrichmentRow struct {
	PlayerID           string          `db:"player_id"`
	PeriodID           int             `db:"period_id"`
	RecentPoints       pq.Float64Array `db:"recent_points"`
	FixtureCoefficient float64         `db:"fixture_coefficient"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func toEnrichmentRow(rec *enrichment.Record) enrichmentRow {
	return enrichmentRow{
		PlayerID:           rec.PlayerID,
		PeriodID:           rec.PeriodID,
		RecentPoints:       pq.Float64Array(rec.RecentPoints),
		FixtureCoefficient: rec.FixtureCoefficient,
		UpdatedAt:          rec.UpdatedAt,
	}
}

func (r enrichmentRow) toDomain() enrichment.Record {
	return enrichment.Record{
		PlayerID:           r.PlayerID,
		PeriodID:           r.PeriodID,
		RecentPoints:       []float64(r.RecentPoints),
		FixtureCoefficient: r.FixtureCoefficient,
		UpdatedAt:          r.UpdatedAt,
	}
}

type syncLogRow struct {
	ID             string    `db:"id"`
	TeamID         string    `db:"team_id"`
	PeriodID       int       `db:"period_id"`
	Outcome        string    `db:"outcome"`
	PlayersSeen    int       `db:"players_seen"`
	PlayersAdded   int       `db:"players_added"`
	PlayersUpdated int       `db:"players_updated"`
	PlayersMissing int       `db:"players_missing"`
	Conflicts      int       `db:"conflicts"`
	Error          string    `db:"error"`
	StartedAt      time.Time `db:"started_at"`
	FinishedAt     time.Time `db:"finished_at"`
}

func toSyncLogRow(e *synclog.Entry) syncLogRow {
	return syncLogRow{
		ID:             e.ID,
		TeamID:         e.TeamID,
		PeriodID:       e.PeriodID,
		Outcome:        string(e.Outcome),
		PlayersSeen:    e.PlayersSeen,
		PlayersAdded:   e.PlayersAdded,
		PlayersUpdated: e.PlayersUpdated,
		PlayersMissing: e.PlayersMissing,
		Conflicts:      e.Conflicts,
		Error:          e.Error,
		StartedAt:      e.StartedAt,
		FinishedAt:     e.FinishedAt,
	}
}

func (r syncLogRow) toDomain() synclog.Entry {
	return synclog.Entry{
		ID:             r.ID,
		TeamID:         r.TeamID,
		PeriodID:       r.PeriodID,
		Outcome:        synclog.Outcome(r.Outcome),
		PlayersSeen:    r.PlayersSeen,
		PlayersAdded:   r.PlayersAdded,
		PlayersUpdated: r.PlayersUpdated,
		PlayersMissing: r.PlayersMissing,
		Conflicts:      r.Conflicts,
		Error:          r.Error,
		StartedAt:      r.StartedAt,
		FinishedAt:     r.FinishedAt,
	}
}

type swapIntentRow struct {
	ID           string    `db:"id"`
	TeamID       string    `db:"team_id"`
	PeriodID     int       `db:"period_id"`
	PlayerOut    string    `db:"player_out"`
	PlayerIn     string    `db:"player_in"`
	AttemptCount int       `db:"attempt_count"`
	Status       string    `db:"status"`
	LastError    string    `db:"last_error"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toSwapIntentRow(i *swapintent.Intent) swapIntentRow {
	return swapIntentRow{
		ID:           i.ID,
		TeamID:       i.TeamID,
		PeriodID:     i.PeriodID,
		PlayerOut:    i.PlayerOut,
		PlayerIn:     i.PlayerIn,
		AttemptCount: i.AttemptCount,
		Status:       string(i.Status),
		LastError:    i.LastError,
		UpdatedAt:    i.UpdatedAt,
	}
}

func (r swapIntentRow) toDomain() swapintent.Intent {
	return swapintent.Intent{
		ID:           r.ID,
		TeamID:       r.TeamID,
		PeriodID:     r.PeriodID,
		PlayerOut:    r.PlayerOut,
		PlayerIn:     r.PlayerIn,
		AttemptCount: r.AttemptCount,
		Status:       swapintent.Status(r.Status),
		LastError:    r.LastError,
		UpdatedAt:    r.UpdatedAt,
	}
}
