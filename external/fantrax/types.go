package fantrax

import "github.com/riskibarqy/fantrax-team-manager/internal/domain/player"

// requestEnvelope is the fxpa wire format: every call is a POST with a
// batch of method invocations. We always send exactly one.
type requestEnvelope struct {
	Msgs []requestMsg `json:"msgs"`
}

type requestMsg struct {
	Method string         `json:"method"`
	Data   map[string]any `json:"data"`
}

type responseEnvelope struct {
	Responses []responseMsg `json:"responses"`
	PageError *pageError    `json:"pageError,omitempty"`
}

type responseMsg struct {
	Data      rosterData `json:"data"`
	PageError *pageError `json:"pageError,omitempty"`
}

type pageError struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

const pageErrorNotLoggedIn = "WARNING_NOT_LOGGED_IN"

type rosterData struct {
	Tables              []rosterTable       `json:"tables"`
	FantasyTeams        []standingsTeam     `json:"fantasyTeams"`
	Statuses            []profileStatus     `json:"statuses"`
	Fixtures            []fixtureRow        `json:"fixtures"`
	DisplayedSelections displayedSelections `json:"displayedSelections"`
}

// displayedSelections carries the period the platform currently
// considers active; a roster fetch without an explicit period returns
// it here.
type displayedSelections struct {
	DisplayedPeriod int `json:"displayedPeriod"`
}

type fixtureRow struct {
	HomeTeam string `json:"homeTeam"`
	AwayTeam string `json:"awayTeam"`
}

type rosterTable struct {
	Rows []rosterRow `json:"rows"`
}

type rosterRow struct {
	Scorer   *scorer `json:"scorer"`
	PosID    string  `json:"posId"`
	StatusID string  `json:"statusId"`
	Locked   bool    `json:"locked"`
}

type scorer struct {
	ScorerID      string `json:"scorerId"`
	Name          string `json:"name"`
	PosShortNames string `json:"posShortNames"`
	TeamName      string `json:"teamName"`
	InjuryStatus  string `json:"injuryStatus"`
}

type standingsTeam struct {
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

type profileStatus struct {
	PeriodID int     `json:"periodId"`
	Points   float64 `json:"points"`
}

// RosterEntry is one player row from the platform roster table, with
// positions and statuses still in platform vocabulary where we could
// not map them.
type RosterEntry struct {
	PlayerID    string
	Name        string
	TeamName    string
	RawPosition string
	Position    player.Position
	PositionOK  bool
	Status      player.Status
	Locked      bool
	Starter     bool
}

// RosterSnapshot is the full roster for one team and period.
type RosterSnapshot struct {
	TeamID   string
	PeriodID int
	Entries  []RosterEntry
}

// TeamStanding is one league-table row.
type TeamStanding struct {
	TeamName string
	Rank     int
}

// Fixture is one real-world matchup within a scoring period.
type Fixture struct {
	HomeTeam string
	AwayTeam string
}

// PlayerProfile carries the recent per-period scoring history for one
// player, newest last.
type PlayerProfile struct {
	PlayerID     string
	RecentPoints []float64
}

// RosterChange is one slot reassignment inside a lineup submission.
// Starter slots carry a position id, reserve slots the reserve status
// id, matching the platform's fieldMap contract.
type RosterChange struct {
	PlayerID string
	Starter  bool
	PosID    string
}
