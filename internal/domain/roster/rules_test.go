package roster

import (
	"testing"

	"github.com/riskibarqy/fantrax-team-manager/internal/domain/player"
)

func lineup(gk, def, mid, fwd int) []player.Position {
	var out []player.Position
	add := func(pos player.Position, n int) {
		for i := 0; i < n; i++ {
			out = append(out, pos)
		}
	}
	add(player.PositionGoalkeeper, gk)
	add(player.PositionDefender, def)
	add(player.PositionMidfielder, mid)
	add(player.PositionForward, fwd)
	return out
}

func TestDefaultFormationAcceptsExactCounts(t *testing.T) {
	rules := DefaultFormation()
	if err := rules.CheckLineup(lineup(1, 4, 4, 2)); err != nil {
		t.Fatalf("1-4-4-2 should satisfy default formation: %v", err)
	}
}

func TestFormationRejectsWrongDistribution(t *testing.T) {
	rules := DefaultFormation()

	cases := []struct {
		name     string
		starters []player.Position
	}{
		{"two goalkeepers", lineup(2, 3, 4, 2)},
		{"missing defender", lineup(1, 3, 4, 2)},
		{"extra forward", lineup(1, 4, 4, 3)},
		{"right total wrong shape", lineup(1, 5, 3, 2)},
		{"empty lineup", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := rules.CheckLineup(tc.starters); err == nil {
				t.Fatal("expected formation violation")
			}
		})
	}
}

func TestFormationValidate(t *testing.T) {
	if err := DefaultFormation().Validate(); err != nil {
		t.Fatalf("default formation should validate: %v", err)
	}

	bad := FormationRules{Starters: map[player.Position]int{"WB": 2}}
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown position should fail validation")
	}

	zero := FormationRules{Starters: map[player.Position]int{player.PositionGoalkeeper: 0}}
	if err := zero.Validate(); err == nil {
		t.Fatal("zero count should fail validation")
	}
}

func TestSlotValidate(t *testing.T) {
	ok := Slot{TeamID: "t1", PeriodID: 3, PlayerID: "p1", Role: RoleStarter}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid slot rejected: %v", err)
	}

	bad := ok
	bad.Role = "bench"
	if err := bad.Validate(); err != ErrInvalidRole {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}

	bad = ok
	bad.PeriodID = 0
	if err := bad.Validate(); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}
