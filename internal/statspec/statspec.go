// Package statspec is the explicit (position -> permitted stat set) and
// (stat -> cascade kind) dispatch table: tables encoded explicitly rather
// than reflected over record fields. Every package that needs to look up a
// Projection field by its wire stat name (the override engine, the player
// adjuster, the baseline builder) goes through this table instead of its
// own ad hoc switch statement.
package statspec

import "github.com/fantasyprojections/engine/internal/models"

// Kind classifies how a stat cascades when it is the target of a manual
// override.
type Kind int

const (
	// KindVolume stats (pass_attempts, rush_attempts, targets) drive a
	// scale-the-counting-siblings cascade and leave rates untouched.
	KindVolume Kind = iota
	// KindCounting stats recompute their paired rate from new/volume and
	// leave the volume stat and other counting siblings alone.
	KindCounting
	// KindRate stats recompute their paired counting stat as rate*volume.
	KindRate
)

// Entry is one row of the dispatch table: how to read/write the field, what
// kind of cascade it triggers, and (for counting/rate stats) the name of
// its paired volume stat and rate stat.
type Entry struct {
	Kind Kind
	Get  func(*models.Projection) *float64
	Set  func(*models.Projection, *float64)

	// VolumeStat names this stat's volume denominator (meaningful for
	// KindCounting and KindRate entries).
	VolumeStat string
	// RateStat names the paired rate (meaningful for KindCounting and
	// KindVolume-adjacent lookups); CounterpartStat names the paired
	// counting stat (meaningful for KindRate entries).
	RateStat        string
	CounterpartStat string
	// Siblings lists the counting stats that scale proportionally when
	// this volume stat is overridden (meaningful for KindVolume entries).
	Siblings []string
}

func ptrGet(f func(*models.Projection) *float64) func(*models.Projection) *float64 { return f }

// Table is the full stat-name -> Entry dispatch map, covering every
// counting, volume and rate field on models.Projection that participates
// in the override/adjust cascades.
var Table = map[string]Entry{
	// Passing volume
	"pass_attempts": {
		Kind:     KindVolume,
		Get:      func(p *models.Projection) *float64 { return p.PassAttempts },
		Set:      func(p *models.Projection, v *float64) { p.PassAttempts = v },
		Siblings: []string{"completions", "pass_yards", "pass_td", "interceptions", "sacks", "sack_yards"},
	},
	"completions": {
		Kind: KindCounting, VolumeStat: "pass_attempts", RateStat: "comp_pct",
		Get: func(p *models.Projection) *float64 { return p.Completions },
		Set: func(p *models.Projection, v *float64) { p.Completions = v },
	},
	"pass_yards": {
		Kind: KindCounting, VolumeStat: "pass_attempts", RateStat: "yards_per_att",
		Get: func(p *models.Projection) *float64 { return p.PassYards },
		Set: func(p *models.Projection, v *float64) { p.PassYards = v },
	},
	"pass_td": {
		Kind: KindCounting, VolumeStat: "pass_attempts", RateStat: "pass_td_rate",
		Get: func(p *models.Projection) *float64 { return p.PassTD },
		Set: func(p *models.Projection, v *float64) { p.PassTD = v },
	},
	"interceptions": {
		Kind: KindCounting, VolumeStat: "pass_attempts", RateStat: "int_rate",
		Get: func(p *models.Projection) *float64 { return p.Interceptions },
		Set: func(p *models.Projection, v *float64) { p.Interceptions = v },
	},
	"sacks": {
		Kind: KindCounting, VolumeStat: "pass_attempts", RateStat: "sack_rate",
		Get: func(p *models.Projection) *float64 { return p.Sacks },
		Set: func(p *models.Projection, v *float64) { p.Sacks = v },
	},
	"sack_yards": {
		Kind: KindCounting, VolumeStat: "pass_attempts",
		Get: func(p *models.Projection) *float64 { return p.SackYards },
		Set: func(p *models.Projection, v *float64) { p.SackYards = v },
	},

	// Passing rates
	"comp_pct": {
		Kind: KindRate, VolumeStat: "pass_attempts", CounterpartStat: "completions",
		Get: func(p *models.Projection) *float64 { return p.CompPct },
		Set: func(p *models.Projection, v *float64) { p.CompPct = v },
	},
	"yards_per_att": {
		Kind: KindRate, VolumeStat: "pass_attempts", CounterpartStat: "pass_yards",
		Get: func(p *models.Projection) *float64 { return p.YardsPerAtt },
		Set: func(p *models.Projection, v *float64) { p.YardsPerAtt = v },
	},
	"pass_td_rate": {
		Kind: KindRate, VolumeStat: "pass_attempts", CounterpartStat: "pass_td",
		Get: func(p *models.Projection) *float64 { return p.PassTDRate },
		Set: func(p *models.Projection, v *float64) { p.PassTDRate = v },
	},
	"int_rate": {
		Kind: KindRate, VolumeStat: "pass_attempts", CounterpartStat: "interceptions",
		Get: func(p *models.Projection) *float64 { return p.IntRate },
		Set: func(p *models.Projection, v *float64) { p.IntRate = v },
	},
	"sack_rate": {
		Kind: KindRate, VolumeStat: "pass_attempts", CounterpartStat: "sacks",
		Get: func(p *models.Projection) *float64 { return p.SackRate },
		Set: func(p *models.Projection, v *float64) { p.SackRate = v },
	},

	// Rushing volume
	"rush_attempts": {
		Kind:     KindVolume,
		Get:      func(p *models.Projection) *float64 { return p.RushAttempts },
		Set:      func(p *models.Projection, v *float64) { p.RushAttempts = v },
		Siblings: []string{"rush_yards", "rush_td", "fumbles"},
	},
	"rush_yards": {
		Kind: KindCounting, VolumeStat: "rush_attempts", RateStat: "yards_per_carry",
		Get: func(p *models.Projection) *float64 { return p.RushYards },
		Set: func(p *models.Projection, v *float64) { p.RushYards = v },
	},
	"rush_td": {
		Kind: KindCounting, VolumeStat: "rush_attempts", RateStat: "rush_td_rate",
		Get: func(p *models.Projection) *float64 { return p.RushTD },
		Set: func(p *models.Projection, v *float64) { p.RushTD = v },
	},
	"fumbles": {
		Kind: KindCounting, VolumeStat: "rush_attempts", RateStat: "fumble_rate",
		Get: func(p *models.Projection) *float64 { return p.Fumbles },
		Set: func(p *models.Projection, v *float64) { p.Fumbles = v },
	},

	// Rushing rates
	"yards_per_carry": {
		Kind: KindRate, VolumeStat: "rush_attempts", CounterpartStat: "rush_yards",
		Get: func(p *models.Projection) *float64 { return p.YardsPerCarry },
		Set: func(p *models.Projection, v *float64) { p.YardsPerCarry = v },
	},
	"rush_td_rate": {
		Kind: KindRate, VolumeStat: "rush_attempts", CounterpartStat: "rush_td",
		Get: func(p *models.Projection) *float64 { return p.RushTDRate },
		Set: func(p *models.Projection, v *float64) { p.RushTDRate = v },
	},
	"fumble_rate": {
		Kind: KindRate, VolumeStat: "rush_attempts", CounterpartStat: "fumbles",
		Get: func(p *models.Projection) *float64 { return p.FumbleRate },
		Set: func(p *models.Projection, v *float64) { p.FumbleRate = v },
	},

	// Receiving volume
	"targets": {
		Kind:     KindVolume,
		Get:      func(p *models.Projection) *float64 { return p.Targets },
		Set:      func(p *models.Projection, v *float64) { p.Targets = v },
		Siblings: []string{"receptions", "rec_yards", "rec_td"},
	},
	"receptions": {
		Kind: KindCounting, VolumeStat: "targets", RateStat: "catch_pct",
		Get: func(p *models.Projection) *float64 { return p.Receptions },
		Set: func(p *models.Projection, v *float64) { p.Receptions = v },
	},
	"rec_yards": {
		Kind: KindCounting, VolumeStat: "targets", RateStat: "yards_per_target",
		Get: func(p *models.Projection) *float64 { return p.RecYards },
		Set: func(p *models.Projection, v *float64) { p.RecYards = v },
	},
	"rec_td": {
		Kind: KindCounting, VolumeStat: "targets", RateStat: "rec_td_rate",
		Get: func(p *models.Projection) *float64 { return p.RecTD },
		Set: func(p *models.Projection, v *float64) { p.RecTD = v },
	},

	// Receiving rates
	"catch_pct": {
		Kind: KindRate, VolumeStat: "targets", CounterpartStat: "receptions",
		Get: func(p *models.Projection) *float64 { return p.CatchPct },
		Set: func(p *models.Projection, v *float64) { p.CatchPct = v },
	},
	"yards_per_target": {
		Kind: KindRate, VolumeStat: "targets", CounterpartStat: "rec_yards",
		Get: func(p *models.Projection) *float64 { return p.YardsPerTarget },
		Set: func(p *models.Projection, v *float64) { p.YardsPerTarget = v },
	},
	"rec_td_rate": {
		Kind: KindRate, VolumeStat: "targets", CounterpartStat: "rec_td",
		Get: func(p *models.Projection) *float64 { return p.RecTDRate },
		Set: func(p *models.Projection, v *float64) { p.RecTDRate = v },
	},

	// Shares — no volume/rate cascade, treated as independent counting-like
	// fields a caller may override directly (e.g. manual snap share entry).
	"snap_share":    {Kind: KindCounting, Get: func(p *models.Projection) *float64 { return p.SnapShare }, Set: func(p *models.Projection, v *float64) { p.SnapShare = v }},
	"target_share":  {Kind: KindCounting, Get: func(p *models.Projection) *float64 { return p.TargetShare }, Set: func(p *models.Projection, v *float64) { p.TargetShare = v }},
	"rush_share":    {Kind: KindCounting, Get: func(p *models.Projection) *float64 { return p.RushShare }, Set: func(p *models.Projection, v *float64) { p.RushShare = v }},
	"redzone_share": {Kind: KindCounting, Get: func(p *models.Projection) *float64 { return p.RedzoneShare }, Set: func(p *models.Projection, v *float64) { p.RedzoneShare = v }},
}

// passingStats, rushingStats and receivingStats group the table's keys by
// unit so PermittedStats can assemble a position's set without repeating
// the literal stat names a second time.
var (
	passingStats = []string{
		"pass_attempts", "completions", "pass_yards", "pass_td", "interceptions",
		"sacks", "sack_yards", "comp_pct", "yards_per_att", "pass_td_rate",
		"int_rate", "sack_rate",
	}
	rushingStats = []string{
		"rush_attempts", "rush_yards", "rush_td", "fumbles",
		"yards_per_carry", "rush_td_rate", "fumble_rate", "rush_share",
	}
	receivingStats = []string{
		"targets", "receptions", "rec_yards", "rec_td",
		"catch_pct", "yards_per_target", "rec_td_rate", "target_share",
	}
	sharedStats = []string{"snap_share", "redzone_share"}
)

// PermittedStats returns the set of stat names valid for a position's field
// set — a QB has no catch_pct.
func PermittedStats(position models.Position) map[string]bool {
	set := map[string]bool{}
	add := func(names []string) {
		for _, n := range names {
			set[n] = true
		}
	}
	add(sharedStats)
	switch position {
	case models.QB:
		add(passingStats)
		add(rushingStats)
	case models.RB:
		add(rushingStats)
		add(receivingStats)
	case models.WR, models.TE:
		add(receivingStats)
		add([]string{"rush_attempts", "rush_yards", "rush_td", "fumbles", "yards_per_carry", "rush_td_rate", "fumble_rate"})
	}
	return set
}

// Lookup returns the dispatch entry for a stat name, and whether it exists.
func Lookup(statName string) (Entry, bool) {
	e, ok := Table[statName]
	return e, ok
}
