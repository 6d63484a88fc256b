package fantrax

import (
	"fmt"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
)

// Platform slot status ids: "1" is a starting slot, "2" the reserve
// bench.
const (
	starterStatusID = "1"
	reserveStatusID = "2"
)

// positionFieldIDs are the posId values the platform expects in lineup
// submissions, keyed by our position codes. Note the ids run in
// reverse field order: 704 is the goalkeeper slot, 701 the forward
// slot.
var positionFieldIDs = map[player.Position]string{
	player.PositionGoalkeeper: "704",
	player.PositionDefender:   "703",
	player.PositionMidfielder: "702",
	player.PositionForward:    "701",
}

// PositionFieldID returns the platform posId for a position.
func PositionFieldID(pos player.Position) (string, bool) {
	id, ok := positionFieldIDs[pos]
	return id, ok
}

var shortNamePositions = map[string]player.Position{
	"G": player.PositionGoalkeeper,
	"D": player.PositionDefender,
	"M": player.PositionMidfielder,
	"F": player.PositionForward,
}

func mapPosition(shortName string) (player.Position, bool) {
	pos, ok := shortNamePositions[shortName]
	return pos, ok
}

var injuryStatuses = map[string]player.Status{
	"":    player.StatusActive,
	"DTD": player.StatusDayToDay,
	"OUT": player.StatusInjured,
	"IR":  player.StatusInjured,
	"SUS": player.StatusSuspended,
}

func mapStatus(injuryStatus string) player.Status {
	if status, ok := injuryStatuses[injuryStatus]; ok {
		return status
	}
	// Unrecognized injury codes are treated as injured rather than
	// silently playable.
	return player.StatusInjured
}

// parseRosterSnapshot extracts player rows from the roster tables. A
// response with no tables at all is indistinguishable from a truncated
// payload and reported as transient.
func parseRosterSnapshot(teamID string, periodID int, data *rosterData) (*RosterSnapshot, error) {
	if len(data.Tables) == 0 {
		return nil, fmt.Errorf("%w: getTeamRosterInfo: snapshot has no roster tables", ErrTransient)
	}

	snapshot := &RosterSnapshot{TeamID: teamID, PeriodID: periodID}
	for _, table := range data.Tables {
		for _, row := range table.Rows {
			if row.Scorer == nil {
				continue
			}
			pos, ok := mapPosition(row.Scorer.PosShortNames)
			snapshot.Entries = append(snapshot.Entries, RosterEntry{
				PlayerID:    row.Scorer.ScorerID,
				Name:        row.Scorer.Name,
				TeamName:    row.Scorer.TeamName,
				RawPosition: row.Scorer.PosShortNames,
				Position:    pos,
				PositionOK:  ok,
				Status:      mapStatus(row.Scorer.InjuryStatus),
				Locked:      row.Locked,
				Starter:     row.StatusID == starterStatusID,
			})
		}
	}
	if len(snapshot.Entries) == 0 {
		return nil, fmt.Errorf("%w: getTeamRosterInfo: snapshot has no player rows", ErrTransient)
	}
	return snapshot, nil
}

// parseMatchupPeriod reads the period the platform reports as the one
// currently in play. A response without it is treated as truncated.
func parseMatchupPeriod(data *rosterData) (int, error) {
	period := data.DisplayedSelections.DisplayedPeriod
	if period <= 0 {
		return 0, fmt.Errorf("%w: getTeamRosterInfo: response carries no displayed period", ErrTransient)
	}
	return period, nil
}

func parseStandings(data *rosterData) ([]TeamStanding, error) {
	if len(data.FantasyTeams) == 0 {
		return nil, fmt.Errorf("%w: getStandingsSport: empty standings", ErrTransient)
	}
	out := make([]TeamStanding, 0, len(data.FantasyTeams))
	for _, team := range data.FantasyTeams {
		out = append(out, TeamStanding{TeamName: team.Name, Rank: team.Rank})
	}
	return out, nil
}

func parseFixtures(data *rosterData) []Fixture {
	out := make([]Fixture, 0, len(data.Fixtures))
	for _, row := range data.Fixtures {
		out = append(out, Fixture{HomeTeam: row.HomeTeam, AwayTeam: row.AwayTeam})
	}
	return out
}

func parsePlayerProfile(playerID string, data *rosterData) *PlayerProfile {
	profile := &PlayerProfile{PlayerID: playerID}
	for _, status := range data.Statuses {
		profile.RecentPoints = append(profile.RecentPoints, status.Points)
	}
	return profile
}
